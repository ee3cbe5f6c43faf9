package rbac

import (
	"bpm-backend/models"
)

var AdminRoleSet = []models.UserRole{models.UserRoleSuperAdmin, models.UserRoleAdmin}

func (i *impl) initRules() {
	i.directory()
	i.processTemplates()
	i.processInstances()
	i.tasks()
	i.RegisterRule("", "/api/v1/permissions [get]", AllowFunc())
}

func (i *impl) directory() {
	i.RegisterRule(models.UsersRead, "/api/v1/users [get]", nil)
	i.RegisterRule(models.UsersRead, "/api/v1/users/{id} [get]", nil)
	i.RegisterRule(models.UsersCreate, "/api/v1/users [post]", nil)
	i.RegisterRule(models.UsersUpdate, "/api/v1/users/{id} [put]", nil)
	i.RegisterRule(models.UsersUpdate, "/api/v1/users/{id}/positions [put]", nil)

	i.RegisterRule(models.DepartmentsRead, "/api/v1/departments [get]", nil)
	i.RegisterRule(models.DepartmentsCreate, "/api/v1/departments [post]", nil)
	i.RegisterRule(models.DepartmentsUpdate, "/api/v1/departments/{id} [put]", nil)

	i.RegisterRule(models.PositionsRead, "/api/v1/positions [get]", nil)
	i.RegisterRule(models.PositionsCreate, "/api/v1/positions [post]", nil)
	i.RegisterRule(models.PositionsUpdate, "/api/v1/positions/{id} [put]", nil)
}

func (i *impl) processTemplates() {
	i.RegisterRule(models.ProcessTemplatesRead, "/api/v1/process_templates [get]", nil)
	i.RegisterRule(models.ProcessInstancesCreate, "/api/v1/process_templates/startable [get]", nil)
	// деталь шаблона доступна и тем, кто может его запустить, проверка в обработчике
	i.RegisterRule(models.ProcessTemplatesRead, "/api/v1/process_templates/{id} [get]", AllowFunc())
	i.RegisterRule(models.ProcessTemplatesCreate, "/api/v1/process_templates [post]", nil)
	i.RegisterRule(models.ProcessTemplatesUpdate, "/api/v1/process_templates/{id} [put]", nil)
	i.RegisterRule(models.ProcessTemplatesDelete, "/api/v1/process_templates/{id} [delete]", nil)
}

func (i *impl) processInstances() {
	i.RegisterRule(models.ProcessInstancesCreate, "/api/v1/process_instances [post]", nil)
	i.RegisterRule(models.ProcessInstancesRead, "/api/v1/process_instances/my [get]", nil)
	i.RegisterRule(models.ProcessInstancesRead, "/api/v1/process_instances/list [post]", AllowByRoleFunc(AdminRoleSet))
	i.RegisterRule(models.ProcessInstancesRead, "/api/v1/process_instances/{id} [get]", nil)
}

func (i *impl) tasks() {
	i.RegisterRule(models.ProcessInstancesRead, "/api/v1/tasks/my [get]", nil)
	i.RegisterRule(models.TasksUpdateStatus, "/api/v1/tasks/{id}/start [put]", nil)
	i.RegisterRule(models.TasksUpdateStatus, "/api/v1/tasks/{id}/approve [put]", nil)
	i.RegisterRule(models.TasksUpdateStatus, "/api/v1/tasks/{id}/reject [put]", nil)
	i.RegisterRule(models.TasksUpdateStatus, "/api/v1/tasks/{id}/file [post]", nil)
}
