package models

type UserRole string

const (
	UserRoleSuperAdmin UserRole = "SUPER_ADMIN"
	UserRoleAdmin      UserRole = "ADMIN"
	UserRoleManager    UserRole = "MANAGER"
	UserRoleEmployee   UserRole = "EMPLOYEE"
)

var roleHumanName = map[UserRole]string{
	UserRoleSuperAdmin: "Super admin",
	UserRoleAdmin:      "Administrator",
	UserRoleManager:    "Manager",
	UserRoleEmployee:   "Employee",
}

func (r UserRole) ToHuman() string {
	if human, exist := roleHumanName[r]; exist {
		return human
	}
	return string(r)
}

func (r UserRole) IsValid() bool {
	_, ok := roleHumanName[r]
	return ok
}

// IsAdmin роли с полным доступом к процессам и задачам
func (r UserRole) IsAdmin() bool {
	return r == UserRoleSuperAdmin || r == UserRoleAdmin
}

func (r UserRole) IsSuperAdmin() bool {
	return r == UserRoleSuperAdmin
}

const SystemUser = "System"
