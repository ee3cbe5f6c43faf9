package assignmentresolver

import (
	"bpm-backend/lib/bpm-store/memstore"
	"bpm-backend/models"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePositions(t *testing.T) {
	db := memstore.New()
	hr := db.SeedDepartment("HR", nil)
	it := db.SeedDepartment("IT", nil)
	recruiter := db.SeedPosition("Recruiter", hr, nil)
	hrHead := db.SeedPosition("HR head", hr, nil)
	developer := db.SeedPosition("Developer", it, nil)
	vacant := db.SeedPosition("Vacant", it, nil)
	u1 := db.SeedUser("Anna", models.UserRoleEmployee, recruiter)
	u2 := db.SeedUser("Boris", models.UserRoleEmployee, recruiter, hrHead)
	u3 := db.SeedUser("Vera", models.UserRoleManager, developer)

	resolver := NewInstance(db.Stores().Directory, false)

	t.Run("distinct union", func(t *testing.T) {
		users, err := resolver.ResolvePositions([]string{recruiter, hrHead})
		require.NoError(t, err)
		require.ElementsMatch(t, []string{u1, u2}, users)
	})
	t.Run("empty input", func(t *testing.T) {
		users, err := resolver.ResolvePositions(nil)
		require.NoError(t, err)
		require.Empty(t, users)
	})
	t.Run("no holders", func(t *testing.T) {
		users, err := resolver.ResolvePositions([]string{vacant})
		require.NoError(t, err)
		require.Empty(t, users)
	})
	t.Run("flags ignored when disabled", func(t *testing.T) {
		users, err := resolver.ResolveRule(models.RuleSet{
			PositionIDs:    []string{developer},
			SameDepartment: true,
		}, u1)
		require.NoError(t, err)
		require.Equal(t, []string{u3}, users)
	})
}

func TestResolveRuleDepartmentFlags(t *testing.T) {
	db := memstore.New()
	hr := db.SeedDepartment("HR", nil)
	it := db.SeedDepartment("IT", nil)
	boss := db.SeedUser("Boss", models.UserRoleManager)
	recruiter := db.SeedPosition("Recruiter", hr, &boss)
	developer := db.SeedPosition("Developer", it, nil)
	u1 := db.SeedUser("Anna", models.UserRoleEmployee, recruiter)
	u2 := db.SeedUser("Boris", models.UserRoleEmployee, recruiter)
	db.SeedUser("Vera", models.UserRoleEmployee, developer)

	resolver := NewInstance(db.Stores().Directory, true)

	t.Run("same department", func(t *testing.T) {
		users, err := resolver.ResolveRule(models.RuleSet{SameDepartment: true}, u1)
		require.NoError(t, err)
		require.ElementsMatch(t, []string{u1, u2}, users)
	})
	t.Run("department manager", func(t *testing.T) {
		users, err := resolver.ResolveRule(models.RuleSet{DepartmentManager: true}, u2)
		require.NoError(t, err)
		require.Equal(t, []string{boss}, users)
	})
	t.Run("reference user without positions", func(t *testing.T) {
		users, err := resolver.ResolveRule(models.RuleSet{SameDepartment: true, DepartmentManager: true}, boss)
		require.NoError(t, err)
		require.Empty(t, users)
	})
}
