package processtemplatehandler

import (
	bpmstore "bpm-backend/lib/bpm-store"
	directoryhandler "bpm-backend/lib/directory"
	directorystore "bpm-backend/lib/directory/store"
	"bpm-backend/lib/rbac"
	bpmerrors "bpm-backend/lib/utils/bpm-errors"
	initchecker "bpm-backend/lib/utils/init-checker"
	"bpm-backend/models"
	processapimodels "bpm-backend/models/api/process"
	dbmodels "bpm-backend/models/db"
	"slices"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	Create(actorID string, data processapimodels.TemplateData) (id string, err error)
	Update(actorID, id string, data processapimodels.TemplateData) error
	Delete(actorID, id string) error
	Get(actorID, id string) (processapimodels.TemplateView, error)
	List(actorID string) ([]processapimodels.TemplateView, error)
	ListStartable(actorID string) ([]processapimodels.TemplateView, error)
}

var Instance Provider

func NewHandler(repo bpmstore.Provider) {
	initchecker.CheckInit("repo", repo)
	Instance = NewInstance(repo)
}

func NewInstance(repo bpmstore.Provider) Provider {
	return impl{
		repo: repo,
	}
}

type impl struct {
	repo bpmstore.Provider
}

// CanStart запуск разрешен администраторам и пользователям из разрешенных подразделений
func CanStart(role models.UserRole, userDepartmentIDs, allowedDepartmentIDs []string) bool {
	if role.IsAdmin() {
		return true
	}
	for _, departmentID := range userDepartmentIDs {
		if slices.Contains(allowedDepartmentIDs, departmentID) {
			return true
		}
	}
	return false
}

func (i impl) Create(actorID string, data processapimodels.TemplateData) (id string, err error) {
	err = i.repo.Transaction(func(tx bpmstore.Stores) error {
		actor, err := directoryhandler.LoadActor(tx.Directory, actorID)
		if err != nil {
			return err
		}
		if !actor.Role.IsSuperAdmin() {
			return bpmerrors.Forbidden("Forbidden")
		}
		if err = validate(tx.Directory, data); err != nil {
			return err
		}
		rec := dbmodels.ProcessTemplate{
			Name:        strings.TrimSpace(data.Name),
			Description: data.Description,
			Icon:        data.Icon,
			Revision:    1,
			CreatedByID: actor.ID,
		}
		id, err = tx.Templates.Create(rec)
		if err != nil {
			return errors.Wrap(err, "ошибка создания шаблона процесса")
		}
		err = tx.Templates.ReplaceAllowedDepartments(id, distinct(data.AllowedDepartments))
		if err != nil {
			return errors.Wrap(err, "ошибка сохранения подразделений шаблона")
		}
		return tx.Templates.AddTasks(buildTasks(id, rec.Revision, data.Tasks))
	})
	if err != nil {
		return "", err
	}
	log.WithField("actor_id", actorID).
		WithField("template_id", id).
		Info("создан шаблон процесса")
	return id, nil
}

// Update создает новую ревизию шаблона, задачи прежних ревизий остаются за запущенными экземплярами
func (i impl) Update(actorID, id string, data processapimodels.TemplateData) error {
	var revision int
	err := i.repo.Transaction(func(tx bpmstore.Stores) error {
		actor, err := directoryhandler.LoadActor(tx.Directory, actorID)
		if err != nil {
			return err
		}
		if !actor.Role.IsSuperAdmin() {
			return bpmerrors.Forbidden("Forbidden")
		}
		rec, err := tx.Templates.GetByID(id)
		if err != nil {
			return err
		}
		if rec == nil {
			return bpmerrors.NotFound("Template not found")
		}
		if err = validate(tx.Directory, data); err != nil {
			return err
		}
		revision = rec.Revision + 1
		updMap := map[string]interface{}{
			"name":        strings.TrimSpace(data.Name),
			"description": data.Description,
			"icon":        data.Icon,
			"revision":    revision,
		}
		err = tx.Templates.Update(id, updMap)
		if err != nil {
			return errors.Wrap(err, "ошибка обновления шаблона процесса")
		}
		err = tx.Templates.ReplaceAllowedDepartments(id, distinct(data.AllowedDepartments))
		if err != nil {
			return errors.Wrap(err, "ошибка сохранения подразделений шаблона")
		}
		return tx.Templates.AddTasks(buildTasks(id, revision, data.Tasks))
	})
	if err != nil {
		return err
	}
	log.WithField("actor_id", actorID).
		WithField("template_id", id).
		WithField("revision", revision).
		Info("обновлен шаблон процесса")
	return nil
}

func (i impl) Delete(actorID, id string) error {
	err := i.repo.Transaction(func(tx bpmstore.Stores) error {
		actor, err := directoryhandler.LoadActor(tx.Directory, actorID)
		if err != nil {
			return err
		}
		if !actor.Role.IsSuperAdmin() {
			return bpmerrors.Forbidden("Forbidden")
		}
		rec, err := tx.Templates.GetByID(id)
		if err != nil {
			return err
		}
		if rec == nil {
			return bpmerrors.NotFound("Template not found")
		}
		running, err := tx.Instances.CountRunningByTemplate(id)
		if err != nil {
			return err
		}
		if running > 0 {
			return bpmerrors.Validation("Template has %d running instances", running)
		}
		return tx.Templates.Delete(id)
	})
	if err != nil {
		return err
	}
	log.WithField("actor_id", actorID).
		WithField("template_id", id).
		Info("удален шаблон процесса")
	return nil
}

func (i impl) Get(actorID, id string) (processapimodels.TemplateView, error) {
	stores := i.repo.Stores()
	actor, err := directoryhandler.LoadActor(stores.Directory, actorID)
	if err != nil {
		return processapimodels.TemplateView{}, err
	}
	rec, err := stores.Templates.GetByID(id)
	if err != nil {
		return processapimodels.TemplateView{}, err
	}
	if rec == nil {
		return processapimodels.TemplateView{}, bpmerrors.NotFound("Template not found")
	}
	if !rbac.HasPermission(actor.Role, models.ProcessTemplatesRead) {
		allowed, err := i.canStart(stores.Directory, actor, *rec)
		if err != nil {
			return processapimodels.TemplateView{}, err
		}
		if !allowed {
			return processapimodels.TemplateView{}, bpmerrors.Forbidden("Forbidden")
		}
	}
	return processapimodels.TemplateConvert(*rec), nil
}

func (i impl) List(actorID string) ([]processapimodels.TemplateView, error) {
	stores := i.repo.Stores()
	actor, err := directoryhandler.LoadActor(stores.Directory, actorID)
	if err != nil {
		return nil, err
	}
	if !rbac.HasPermission(actor.Role, models.ProcessTemplatesRead) {
		return nil, bpmerrors.Forbidden("Forbidden")
	}
	list, err := stores.Templates.List()
	if err != nil {
		return nil, err
	}
	return convertList(list), nil
}

func (i impl) ListStartable(actorID string) ([]processapimodels.TemplateView, error) {
	stores := i.repo.Stores()
	actor, err := directoryhandler.LoadActor(stores.Directory, actorID)
	if err != nil {
		return nil, err
	}
	if !rbac.HasPermission(actor.Role, models.ProcessInstancesCreate) {
		return nil, bpmerrors.Forbidden("Forbidden")
	}
	list, err := stores.Templates.List()
	if err != nil {
		return nil, err
	}
	userDepartmentIDs, err := stores.Directory.DepartmentIDsOfUser(actor.ID)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения подразделений пользователя")
	}
	result := make([]dbmodels.ProcessTemplate, 0, len(list))
	for _, rec := range list {
		if CanStart(actor.Role, userDepartmentIDs, rec.AllowedDepartmentIDs()) {
			result = append(result, rec)
		}
	}
	return convertList(result), nil
}

func (i impl) canStart(dir directorystore.Provider, actor *dbmodels.User, rec dbmodels.ProcessTemplate) (bool, error) {
	if !rbac.HasPermission(actor.Role, models.ProcessInstancesCreate) {
		return false, nil
	}
	userDepartmentIDs, err := dir.DepartmentIDsOfUser(actor.ID)
	if err != nil {
		return false, errors.Wrap(err, "ошибка получения подразделений пользователя")
	}
	return CanStart(actor.Role, userDepartmentIDs, rec.AllowedDepartmentIDs()), nil
}

func validate(dir directorystore.Provider, data processapimodels.TemplateData) error {
	if err := data.Validate(); err != nil {
		return bpmerrors.Validation("%s", err.Error())
	}
	departmentIDs := distinct(data.AllowedDepartments)
	existing, err := dir.ExistingDepartmentIDs(departmentIDs)
	if err != nil {
		return err
	}
	if missing := difference(departmentIDs, existing); len(missing) > 0 {
		return bpmerrors.Validation("Unknown departments: %s", strings.Join(missing, ", "))
	}
	positionIDs := []string{}
	for _, task := range data.Tasks {
		positionIDs = append(positionIDs, task.ReferencedPositions()...)
	}
	positionIDs = distinct(positionIDs)
	existing, err = dir.ExistingPositionIDs(positionIDs)
	if err != nil {
		return err
	}
	if missing := difference(positionIDs, existing); len(missing) > 0 {
		return bpmerrors.Validation("Unknown positions: %s", strings.Join(missing, ", "))
	}
	return nil
}

// buildTasks строки задач для ревизии; при незаданном порядке используется позиция в списке
func buildTasks(templateID string, revision int, tasks []processapimodels.TaskTemplateData) []dbmodels.ProcessTaskTemplate {
	result := make([]dbmodels.ProcessTaskTemplate, 0, len(tasks))
	for idx, task := range tasks {
		order := task.Order
		if order == 0 {
			order = idx + 1
		}
		rec := dbmodels.ProcessTaskTemplate{
			ProcessTemplateID: templateID,
			Revision:          revision,
			Name:              strings.TrimSpace(task.Name),
			Description:       task.Description,
			Order:             order,
			NeedFile:          task.NeedFile,
			Mandatory:         task.Mandatory,
		}
		rec.InitID()
		rec.SetRule(models.RuleKindApprover, task.Approver.ToRuleSet())
		rec.SetRule(models.RuleKindNotifyOnStart, task.NotifyOnStart.ToRuleSet())
		rec.SetRule(models.RuleKindNotifyOnComplete, task.NotifyOnComplete.ToRuleSet())
		result = append(result, rec)
	}
	dbmodels.SortTaskTemplates(result)
	return result
}

func convertList(list []dbmodels.ProcessTemplate) []processapimodels.TemplateView {
	result := make([]processapimodels.TemplateView, 0, len(list))
	for _, rec := range list {
		result = append(result, processapimodels.TemplateConvert(rec))
	}
	return result
}

func distinct(list []string) []string {
	result := make([]string, 0, len(list))
	for _, id := range list {
		if id != "" && !slices.Contains(result, id) {
			result = append(result, id)
		}
	}
	return result
}

func difference(list, present []string) []string {
	result := []string{}
	for _, id := range list {
		if !slices.Contains(present, id) {
			result = append(result, id)
		}
	}
	return result
}
