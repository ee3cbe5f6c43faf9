package rbac

import (
	"bpm-backend/models"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRbac(t *testing.T) {
	t.Run(`pathToRegex check`, func(t *testing.T) {
		path, method, err := parseSwaggerPattern("/api/v1/tasks/{id}/approve [put]")
		require.Nil(t, err)
		require.Equal(t, PUT, method)
		r1 := pathToRegex(path)

		validUri := "/api/v1/tasks/123-321/approve"
		isMatch := r1.MatchString(validUri)
		require.Equal(t, true, isMatch)

		invalidUri := "/api/v1/tasks/approve"
		isMatch = r1.MatchString(invalidUri)
		require.Equal(t, false, isMatch)

		path, method, err = parseSwaggerPattern("/api/v1/process_templates/{id}/tasks/{taskID} [get]")
		require.Nil(t, err)
		require.Equal(t, GET, method)
		r2 := pathToRegex(path)

		validUri = "/api/v1/process_templates/123-321/tasks/qwe-ewr123-wr-12"
		isMatch = r2.MatchString(validUri)
		require.Equal(t, true, isMatch)

		invalidUri = "/api/v1/process_templates/we-ewr123-wr-12/tasks"
		isMatch = r2.MatchString(invalidUri)
		require.Equal(t, false, isMatch)
	})
	t.Run(`pattern without method`, func(t *testing.T) {
		_, _, err := parseSwaggerPattern("/api/v1/tasks/{id}/approve")
		require.Error(t, err)
	})
}

func TestRoleRules(t *testing.T) {
	NewHandler()

	check := func(method, path string, role models.UserRole) bool {
		handler, ok := Instance.GetRuleFunc(method, path)
		require.True(t, ok, "%s %s", method, path)
		return handler("user-1", role, path)
	}

	t.Run("template management", func(t *testing.T) {
		require.True(t, check("POST", "/api/v1/process_templates", models.UserRoleSuperAdmin))
		require.True(t, check("POST", "/api/v1/process_templates", models.UserRoleAdmin))
		require.False(t, check("POST", "/api/v1/process_templates", models.UserRoleManager))
		require.False(t, check("DELETE", "/api/v1/process_templates/abc", models.UserRoleEmployee))
		require.True(t, check("GET", "/api/v1/process_templates/abc", models.UserRoleManager))
		require.False(t, check("GET", "/api/v1/process_templates/abc", models.UserRoleEmployee))
	})
	t.Run("startable list is exact match", func(t *testing.T) {
		require.True(t, check("GET", "/api/v1/process_templates/startable/", models.UserRoleEmployee))
	})
	t.Run("task transitions", func(t *testing.T) {
		for _, role := range []models.UserRole{models.UserRoleSuperAdmin, models.UserRoleAdmin, models.UserRoleManager, models.UserRoleEmployee} {
			require.True(t, check("PUT", "/api/v1/tasks/abc/approve", role), role)
			require.True(t, check("POST", "/api/v1/tasks/abc/file", role), role)
		}
	})
	t.Run("all instances for admins only", func(t *testing.T) {
		require.True(t, check("POST", "/api/v1/process_instances/list", models.UserRoleAdmin))
		require.False(t, check("POST", "/api/v1/process_instances/list", models.UserRoleManager))
		require.True(t, check("GET", "/api/v1/process_instances/my", models.UserRoleEmployee))
	})
	t.Run("unknown route", func(t *testing.T) {
		_, ok := Instance.GetRuleFunc("GET", "/api/v1/unknown")
		require.False(t, ok)
	})
}

func TestHasPermission(t *testing.T) {
	require.True(t, HasPermission(models.UserRoleEmployee, models.ProcessInstancesCreate))
	require.False(t, HasPermission(models.UserRoleEmployee, models.ProcessTemplatesRead))
	require.True(t, HasPermission(models.UserRoleManager, models.UsersRead))
	require.False(t, HasPermission(models.UserRoleManager, models.UsersCreate))
	require.False(t, HasPermission(models.UserRole("GUEST"), models.ProcessInstancesRead))
	require.ElementsMatch(t, []models.UserRole{models.UserRoleSuperAdmin, models.UserRoleAdmin}, RolesWith(models.ProcessTemplatesDelete))
}
