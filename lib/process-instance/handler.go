package processinstancehandler

import (
	assignmentresolver "bpm-backend/lib/assignment-resolver"
	bpmstore "bpm-backend/lib/bpm-store"
	directoryhandler "bpm-backend/lib/directory"
	"bpm-backend/lib/metrics"
	"bpm-backend/lib/notifier"
	processinstancestore "bpm-backend/lib/process-instance/store"
	processtemplatehandler "bpm-backend/lib/process-template"
	"bpm-backend/lib/rbac"
	bpmerrors "bpm-backend/lib/utils/bpm-errors"
	"bpm-backend/lib/utils/clock"
	initchecker "bpm-backend/lib/utils/init-checker"
	"bpm-backend/models"
	apimodels "bpm-backend/models/api"
	processapimodels "bpm-backend/models/api/process"
	dbmodels "bpm-backend/models/db"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	Start(actorID string, data processapimodels.InstanceStartData) (id string, err error)
	Get(actorID, id string) (processapimodels.InstanceDetailView, error)
	ListMine(actorID string, pagination apimodels.Pagination) (list []processapimodels.InstanceView, rowCount int64, err error)
	List(actorID string, filter processapimodels.InstanceFilter) (list []processapimodels.InstanceView, rowCount int64, err error)
}

var Instance Provider

func NewHandler(repo bpmstore.Provider, notify notifier.Provider, departmentRulesEnabled bool) {
	initchecker.CheckInit(
		"repo", repo,
		"notify", notify,
	)
	Instance = NewInstance(repo, notify, departmentRulesEnabled)
}

func NewInstance(repo bpmstore.Provider, notify notifier.Provider, departmentRulesEnabled bool) Provider {
	return impl{
		repo:                   repo,
		notify:                 notify,
		departmentRulesEnabled: departmentRulesEnabled,
	}
}

type impl struct {
	repo                   bpmstore.Provider
	notify                 notifier.Provider
	departmentRulesEnabled bool
}

// Start создает экземпляр и по задаче на каждый шаблон задачи текущей ревизии.
// Исполнители вычисляются один раз и дальше не пересчитываются.
func (i impl) Start(actorID string, data processapimodels.InstanceStartData) (id string, err error) {
	logger := log.
		WithField("actor_id", actorID).
		WithField("template_id", data.TemplateID)
	events := []models.NotifyEvent{}
	var taskCount int
	err = i.repo.Transaction(func(tx bpmstore.Stores) error {
		actor, err := directoryhandler.LoadActor(tx.Directory, actorID)
		if err != nil {
			return err
		}
		if !rbac.HasPermission(actor.Role, models.ProcessInstancesCreate) {
			return bpmerrors.Forbidden("Forbidden")
		}
		if err = data.Validate(); err != nil {
			return bpmerrors.Validation("%s", err.Error())
		}
		template, err := tx.Templates.GetByID(data.TemplateID)
		if err != nil {
			return errors.Wrap(err, "ошибка получения шаблона процесса")
		}
		if template == nil {
			return bpmerrors.NotFound("Template not found")
		}
		userDepartmentIDs, err := tx.Directory.DepartmentIDsOfUser(actor.ID)
		if err != nil {
			return errors.Wrap(err, "ошибка получения подразделений пользователя")
		}
		if !processtemplatehandler.CanStart(actor.Role, userDepartmentIDs, template.AllowedDepartmentIDs()) {
			return bpmerrors.Forbidden("You are not allowed to start this process")
		}

		startDateTime := clock.Now()
		if data.StartDateTime != nil && !data.StartDateTime.IsZero() {
			startDateTime = *data.StartDateTime
		}
		name := strings.TrimSpace(data.Name)
		if name == "" {
			name = template.Name
		}
		id, err = tx.Instances.Create(dbmodels.ProcessInstance{
			ProcessTemplateID: template.ID,
			TemplateRevision:  template.Revision,
			StartedByID:       actor.ID,
			Name:              name,
			StartDateTime:     startDateTime,
			Status:            models.InstanceStatusRunning,
		})
		if err != nil {
			return errors.Wrap(err, "ошибка создания экземпляра процесса")
		}

		resolver := assignmentresolver.NewInstance(tx.Directory, i.departmentRulesEnabled)
		for _, taskTemplate := range template.LiveTasks() {
			approvers, err := resolver.ResolveRule(taskTemplate.Rule(models.RuleKindApprover), actor.ID)
			if err != nil {
				return err
			}
			assignees := make([]dbmodels.TaskAssignee, 0, len(approvers))
			for _, userID := range approvers {
				assignees = append(assignees, dbmodels.TaskAssignee{UserID: userID})
			}
			_, err = tx.Tasks.Create(dbmodels.ProcessTaskAssignment{
				ProcessInstanceID: id,
				TaskTemplateID:    taskTemplate.ID,
				Order:             taskTemplate.Order,
				Status:            models.TaskStatusPending,
				PossibleAssignees: assignees,
			})
			if err != nil {
				return errors.Wrap(err, "ошибка создания задачи экземпляра")
			}
			taskCount++

			watchers, err := resolver.ResolveRule(taskTemplate.Rule(models.RuleKindNotifyOnStart), actor.ID)
			if err != nil {
				return err
			}
			recipients, err := directoryhandler.Recipients(tx.Directory, append(approvers, watchers...))
			if err != nil {
				return err
			}
			events = append(events, models.NotifyEvent{
				Kind:        models.NotifyTaskAssigned,
				Recipients:  recipients,
				InstanceID:  id,
				ProcessName: name,
				TaskName:    taskTemplate.Name,
				ActorName:   actor.GetFullName(),
			})
		}
		return nil
	})
	if err != nil {
		if bpmerrors.KindOf(err) == "" {
			logger.WithError(err).Error("ошибка запуска процесса")
		}
		return "", err
	}
	metrics.InstanceStarted()
	i.notify.Send(events...)
	logger.
		WithField("instance_id", id).
		WithField("tasks", taskCount).
		Info("запущен экземпляр процесса")
	return id, nil
}

func (i impl) Get(actorID, id string) (processapimodels.InstanceDetailView, error) {
	stores := i.repo.Stores()
	actor, err := directoryhandler.LoadActor(stores.Directory, actorID)
	if err != nil {
		return processapimodels.InstanceDetailView{}, err
	}
	if !rbac.HasPermission(actor.Role, models.ProcessInstancesRead) {
		return processapimodels.InstanceDetailView{}, bpmerrors.Forbidden("Forbidden")
	}
	rec, err := stores.Instances.GetByID(id)
	if err != nil {
		return processapimodels.InstanceDetailView{}, err
	}
	if rec == nil {
		return processapimodels.InstanceDetailView{}, bpmerrors.NotFound("Process instance not found")
	}
	tasks, err := stores.Tasks.ListByInstance(id)
	if err != nil {
		return processapimodels.InstanceDetailView{}, err
	}
	result := processapimodels.InstanceDetailView{
		InstanceView: processapimodels.InstanceConvert(*rec),
		Tasks:        make([]processapimodels.TaskView, 0, len(tasks)),
	}
	for _, task := range tasks {
		view := processapimodels.TaskConvert(task)
		actions, err := stores.Actions.ListByTask(task.ID)
		if err != nil {
			return processapimodels.InstanceDetailView{}, err
		}
		view.Actions = make([]processapimodels.TaskActionView, 0, len(actions))
		for _, action := range actions {
			view.Actions = append(view.Actions, processapimodels.TaskActionConvert(action))
		}
		result.Tasks = append(result.Tasks, view)
	}
	return result, nil
}

func (i impl) ListMine(actorID string, pagination apimodels.Pagination) (list []processapimodels.InstanceView, rowCount int64, err error) {
	stores := i.repo.Stores()
	actor, err := directoryhandler.LoadActor(stores.Directory, actorID)
	if err != nil {
		return nil, 0, err
	}
	if !rbac.HasPermission(actor.Role, models.ProcessInstancesRead) {
		return nil, 0, bpmerrors.Forbidden("Forbidden")
	}
	page, limit := pagination.GetPage()
	return i.list(stores.Instances, processinstancestore.Filter{
		StartedByID: actor.ID,
		Page:        page,
		Limit:       limit,
	})
}

func (i impl) List(actorID string, filter processapimodels.InstanceFilter) (list []processapimodels.InstanceView, rowCount int64, err error) {
	stores := i.repo.Stores()
	actor, err := directoryhandler.LoadActor(stores.Directory, actorID)
	if err != nil {
		return nil, 0, err
	}
	if !actor.Role.IsAdmin() {
		return nil, 0, bpmerrors.Forbidden("Forbidden")
	}
	if err = filter.Validate(); err != nil {
		return nil, 0, bpmerrors.Validation("%s", err.Error())
	}
	page, limit := filter.GetPage()
	return i.list(stores.Instances, processinstancestore.Filter{
		Status:     filter.Status,
		TemplateID: filter.TemplateID,
		Page:       page,
		Limit:      limit,
	})
}

func (i impl) list(store processinstancestore.Provider, filter processinstancestore.Filter) ([]processapimodels.InstanceView, int64, error) {
	recList, rowCount, err := store.List(filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]processapimodels.InstanceView, 0, len(recList))
	for _, rec := range recList {
		result = append(result, processapimodels.InstanceConvert(rec))
	}
	return result, rowCount, nil
}
