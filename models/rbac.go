package models

type RbacFunc func(userID string, role UserRole, path string) bool

type Permission string

const (
	UsersRead              Permission = "users.read"
	UsersCreate            Permission = "users.create"
	UsersUpdate            Permission = "users.update"
	UsersDelete            Permission = "users.delete"
	DepartmentsRead        Permission = "departments.read"
	DepartmentsCreate      Permission = "departments.create"
	DepartmentsUpdate      Permission = "departments.update"
	DepartmentsDelete      Permission = "departments.delete"
	PositionsRead          Permission = "positions.read"
	PositionsCreate        Permission = "positions.create"
	PositionsUpdate        Permission = "positions.update"
	PositionsDelete        Permission = "positions.delete"
	ProcessTemplatesRead   Permission = "processTemplates.read"
	ProcessTemplatesCreate Permission = "processTemplates.create"
	ProcessTemplatesUpdate Permission = "processTemplates.update"
	ProcessTemplatesDelete Permission = "processTemplates.delete"
	ProcessInstancesCreate Permission = "processInstances.create"
	ProcessInstancesRead   Permission = "processInstances.read"
	TasksUpdateStatus      Permission = "tasks.updateStatus"
)
