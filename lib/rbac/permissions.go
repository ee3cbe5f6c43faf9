package rbac

import (
	"bpm-backend/models"
	"slices"
)

var allPermissions = []models.Permission{
	models.UsersRead, models.UsersCreate, models.UsersUpdate, models.UsersDelete,
	models.DepartmentsRead, models.DepartmentsCreate, models.DepartmentsUpdate, models.DepartmentsDelete,
	models.PositionsRead, models.PositionsCreate, models.PositionsUpdate, models.PositionsDelete,
	models.ProcessTemplatesRead, models.ProcessTemplatesCreate, models.ProcessTemplatesUpdate, models.ProcessTemplatesDelete,
	models.ProcessInstancesCreate, models.ProcessInstancesRead,
	models.TasksUpdateStatus,
}

var rolePermissions = map[models.UserRole][]models.Permission{
	models.UserRoleSuperAdmin: allPermissions,
	models.UserRoleAdmin:      allPermissions,
	models.UserRoleManager: {
		models.UsersRead,
		models.ProcessTemplatesRead,
		models.ProcessInstancesRead,
		models.ProcessInstancesCreate,
		models.TasksUpdateStatus,
	},
	models.UserRoleEmployee: {
		models.ProcessInstancesRead,
		models.ProcessInstancesCreate,
		models.TasksUpdateStatus,
	},
}

func HasPermission(role models.UserRole, permission models.Permission) bool {
	return slices.Contains(rolePermissions[role], permission)
}

// RolesWith роли, которым выдано разрешение
func RolesWith(permission models.Permission) []models.UserRole {
	result := []models.UserRole{}
	for _, role := range []models.UserRole{models.UserRoleSuperAdmin, models.UserRoleAdmin, models.UserRoleManager, models.UserRoleEmployee} {
		if HasPermission(role, permission) {
			result = append(result, role)
		}
	}
	return result
}

func PermissionsOf(role models.UserRole) []models.Permission {
	return slices.Clone(rolePermissions[role])
}
