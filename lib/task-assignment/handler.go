package taskassignmenthandler

import (
	assignmentresolver "bpm-backend/lib/assignment-resolver"
	bpmstore "bpm-backend/lib/bpm-store"
	"bpm-backend/lib/completion"
	directoryhandler "bpm-backend/lib/directory"
	filestorage "bpm-backend/lib/file-storage"
	"bpm-backend/lib/metrics"
	"bpm-backend/lib/notifier"
	bpmerrors "bpm-backend/lib/utils/bpm-errors"
	"bpm-backend/lib/utils/clock"
	htmltext "bpm-backend/lib/utils/html-text"
	initchecker "bpm-backend/lib/utils/init-checker"
	"bpm-backend/models"
	processapimodels "bpm-backend/models/api/process"
	dbmodels "bpm-backend/models/db"
	"context"
	"slices"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	Start(actorID, taskID string) error
	Approve(actorID, taskID string, data processapimodels.TaskComment) error
	Reject(actorID, taskID string, data processapimodels.TaskComment) error
	UploadFile(ctx context.Context, actorID, taskID string, file processapimodels.TaskFile) (fileURL string, err error)
	MyTasks(actorID string) ([]processapimodels.TaskView, error)
}

var Instance Provider

func NewHandler(repo bpmstore.Provider, notify notifier.Provider, storage filestorage.Provider, departmentRulesEnabled bool) {
	initchecker.CheckInit(
		"repo", repo,
		"notify", notify,
		"storage", storage,
	)
	Instance = NewInstance(repo, notify, storage, departmentRulesEnabled)
}

func NewInstance(repo bpmstore.Provider, notify notifier.Provider, storage filestorage.Provider, departmentRulesEnabled bool) Provider {
	return impl{
		repo:                   repo,
		notify:                 notify,
		storage:                storage,
		departmentRulesEnabled: departmentRulesEnabled,
	}
}

type impl struct {
	repo                   bpmstore.Provider
	notify                 notifier.Provider
	storage                filestorage.Provider
	departmentRulesEnabled bool
}

const (
	actionStart   = "start"
	actionApprove = "approve"
	actionReject  = "reject"
	actionUpload  = "upload_file"
)

func (i impl) getLogger(actorID, taskID string) *log.Entry {
	return log.
		WithField("actor_id", actorID).
		WithField("task_id", taskID)
}

// load пользователь и задача; порядок проверок: пользователь, наличие задачи, право действовать
func (i impl) load(tx bpmstore.Stores, actorID, taskID string) (*dbmodels.User, *dbmodels.ProcessTaskAssignment, error) {
	actor, err := directoryhandler.LoadActor(tx.Directory, actorID)
	if err != nil {
		return nil, nil, err
	}
	task, err := tx.Tasks.GetByID(taskID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "ошибка получения задачи")
	}
	if task == nil {
		return nil, nil, bpmerrors.NotFound("Task not found")
	}
	if !CanAct(actor, *task) {
		return nil, nil, bpmerrors.Forbidden("Forbidden")
	}
	return actor, task, nil
}

// lockInstanceOf блокирует экземпляр задачи до конца транзакции: одобрения задач
// одного экземпляра идут по очереди, и проверка завершения видит результат предыдущего
func lockInstanceOf(tx bpmstore.Stores, taskID string) error {
	task, err := tx.Tasks.GetByID(taskID)
	if err != nil {
		return errors.Wrap(err, "ошибка получения задачи")
	}
	if task == nil {
		return nil
	}
	if err = tx.Instances.LockForUpdate(task.ProcessInstanceID); err != nil {
		return errors.Wrap(err, "ошибка блокировки экземпляра процесса")
	}
	return nil
}

func (i impl) Start(actorID, taskID string) (err error) {
	logger := i.getLogger(actorID, taskID)
	defer func() { metrics.TaskTransition(actionStart, err) }()
	var event models.NotifyEvent
	err = i.repo.Transaction(func(tx bpmstore.Stores) error {
		actor, task, err := i.load(tx, actorID, taskID)
		if err != nil {
			return err
		}
		if task.Status != models.TaskStatusPending {
			return bpmerrors.InvalidState("Task cannot be started in status %s", task.Status)
		}
		now := clock.Now()
		err = i.transition(tx, actor, task, models.TaskActionStart, dbmodels.TaskTransition{
			Status:            models.TaskStatusInProgress,
			CurrentAssigneeID: &actor.ID,
			StartedAt:         &now,
		}, nil)
		if err != nil {
			return err
		}
		event, err = i.buildEvent(tx, actor, task, models.NotifyTaskStarted, models.RuleKindNotifyOnStart, task.AssigneeIDs(), "")
		return err
	})
	if err != nil {
		logError(logger, err, "ошибка начала работы по задаче")
		return err
	}
	i.notify.Send(event)
	logger.Info("задача взята в работу")
	return nil
}

func (i impl) Approve(actorID, taskID string, data processapimodels.TaskComment) (err error) {
	logger := i.getLogger(actorID, taskID)
	defer func() { metrics.TaskTransition(actionApprove, err) }()
	events := []models.NotifyEvent{}
	var completed bool
	err = i.repo.Transaction(func(tx bpmstore.Stores) error {
		if err := lockInstanceOf(tx, taskID); err != nil {
			return err
		}
		actor, task, err := i.load(tx, actorID, taskID)
		if err != nil {
			return err
		}
		if !slices.Contains(models.SourcesFor(models.TaskStatusApproved), task.Status) {
			return bpmerrors.InvalidState("Task cannot be approved in status %s", task.Status)
		}
		if task.TaskTemplate == nil {
			return errors.Errorf("не найден шаблон задачи %s", task.TaskTemplateID)
		}
		if task.TaskTemplate.NeedFile && (task.FileURL == nil || *task.FileURL == "") {
			return bpmerrors.Validation("File is required for this task")
		}
		comment := optionalComment(data.Comment)
		now := clock.Now()
		err = i.transition(tx, actor, task, models.TaskActionApprove, dbmodels.TaskTransition{
			Status:            models.TaskStatusApproved,
			CurrentAssigneeID: &actor.ID,
			CompletedAt:       &now,
			Comment:           comment,
		}, comment)
		if err != nil {
			return err
		}
		completed, err = completion.Evaluate(tx, task.ProcessInstanceID, task.ID, now)
		if err != nil {
			return err
		}
		events, err = i.completionEvents(tx, actor, task, models.NotifyTaskApproved, data.Comment, completed)
		return err
	})
	if err != nil {
		logError(logger, err, "ошибка согласования задачи")
		return err
	}
	if completed {
		metrics.InstanceCompleted()
	}
	i.notify.Send(events...)
	logger.WithField("instance_completed", completed).Info("задача согласована")
	return nil
}

func (i impl) Reject(actorID, taskID string, data processapimodels.TaskComment) (err error) {
	logger := i.getLogger(actorID, taskID)
	defer func() { metrics.TaskTransition(actionReject, err) }()
	events := []models.NotifyEvent{}
	err = i.repo.Transaction(func(tx bpmstore.Stores) error {
		actor, task, err := i.load(tx, actorID, taskID)
		if err != nil {
			return err
		}
		if !slices.Contains(models.SourcesFor(models.TaskStatusRejected), task.Status) {
			return bpmerrors.InvalidState("Task cannot be rejected in status %s", task.Status)
		}
		if htmltext.IsBlank(data.Comment) {
			return bpmerrors.Validation("Comment required for rejection")
		}
		comment := data.Comment
		now := clock.Now()
		err = i.transition(tx, actor, task, models.TaskActionReject, dbmodels.TaskTransition{
			Status:            models.TaskStatusRejected,
			CurrentAssigneeID: &actor.ID,
			CompletedAt:       &now,
			Comment:           &comment,
		}, &comment)
		if err != nil {
			return err
		}
		events, err = i.completionEvents(tx, actor, task, models.NotifyTaskRejected, comment, false)
		return err
	})
	if err != nil {
		logError(logger, err, "ошибка отклонения задачи")
		return err
	}
	i.notify.Send(events...)
	logger.Info("задача отклонена")
	return nil
}

// UploadFile статус задачи не меняется; при ошибке хранилища задача остается нетронутой
func (i impl) UploadFile(ctx context.Context, actorID, taskID string, file processapimodels.TaskFile) (fileURL string, err error) {
	logger := i.getLogger(actorID, taskID)
	defer func() { metrics.TaskTransition(actionUpload, err) }()
	stores := i.repo.Stores()
	actor, err := directoryhandler.LoadActor(stores.Directory, actorID)
	if err != nil {
		return "", err
	}
	task, err := stores.Tasks.GetByID(taskID)
	if err != nil {
		return "", errors.Wrap(err, "ошибка получения задачи")
	}
	if task == nil {
		return "", bpmerrors.NotFound("Task not found")
	}
	if task.TaskTemplate == nil || !task.TaskTemplate.NeedFile {
		return "", bpmerrors.Validation("This task does not require a file")
	}
	if !CanAct(actor, *task) {
		return "", bpmerrors.Forbidden("Forbidden")
	}
	if !task.Status.IsOpen() {
		return "", bpmerrors.InvalidState("File cannot be uploaded in status %s", task.Status)
	}
	if !i.storage.IsConfigured() {
		return "", bpmerrors.Configuration("File upload is not configured")
	}
	if len(file.Data) == 0 {
		return "", bpmerrors.Validation("No file provided")
	}

	fileName := filestorage.SanitizeFileName(file.Name)
	fileURL, err = i.storage.Put(ctx, file.Data, filestorage.TaskFilePath(task.ID, file.Name), file.ContentType)
	if err != nil {
		logger.WithError(err).Error("ошибка загрузки файла задачи")
		return "", err
	}
	err = i.repo.Transaction(func(tx bpmstore.Stores) error {
		ok, err := tx.Tasks.SetFileURL(task.ID, []models.TaskStatus{models.TaskStatusPending, models.TaskStatusInProgress}, fileURL)
		if err != nil {
			return errors.Wrap(err, "ошибка сохранения ссылки на файл")
		}
		if !ok {
			return bpmerrors.InvalidState("Task status has changed")
		}
		_, err = tx.Actions.Create(dbmodels.TaskAction{
			TaskID:  task.ID,
			UserID:  actor.ID,
			Action:  models.TaskActionUploadFile,
			Message: &fileName,
		})
		if err != nil {
			return errors.Wrap(err, "ошибка записи истории задачи")
		}
		return nil
	})
	if err != nil {
		logError(logger, err, "ошибка прикрепления файла к задаче")
		return "", err
	}
	logger.WithField("file_url", fileURL).Info("к задаче прикреплен файл")
	return fileURL, nil
}

func (i impl) MyTasks(actorID string) ([]processapimodels.TaskView, error) {
	stores := i.repo.Stores()
	actor, err := directoryhandler.LoadActor(stores.Directory, actorID)
	if err != nil {
		return nil, err
	}
	list, err := stores.Tasks.ListOpenForUser(actor.ID)
	if err != nil {
		return nil, err
	}
	result := make([]processapimodels.TaskView, 0, len(list))
	for _, rec := range list {
		result = append(result, processapimodels.TaskConvert(rec))
	}
	return result, nil
}

// transition условная смена статуса и запись в историю задачи в одной транзакции
func (i impl) transition(tx bpmstore.Stores, actor *dbmodels.User, task *dbmodels.ProcessTaskAssignment, action models.TaskActionType, upd dbmodels.TaskTransition, message *string) error {
	ok, err := tx.Tasks.Transition(task.ID, models.SourcesFor(upd.Status), upd)
	if err != nil {
		return errors.Wrap(err, "ошибка смены статуса задачи")
	}
	if !ok {
		// задачу изменил другой пользователь между чтением и обновлением
		return bpmerrors.InvalidState("Task status has changed")
	}
	_, err = tx.Actions.Create(dbmodels.TaskAction{
		TaskID:  task.ID,
		UserID:  actor.ID,
		Action:  action,
		Message: message,
	})
	if err != nil {
		return errors.Wrap(err, "ошибка записи истории задачи")
	}
	return nil
}

// completionEvents уведомления после согласования или отклонения
func (i impl) completionEvents(tx bpmstore.Stores, actor *dbmodels.User, task *dbmodels.ProcessTaskAssignment, kind models.NotifyEventKind, comment string, completed bool) ([]models.NotifyEvent, error) {
	instance, err := tx.Instances.GetByID(task.ProcessInstanceID)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения экземпляра процесса")
	}
	extra := []string{}
	if instance != nil {
		extra = append(extra, instance.StartedByID)
	}
	event, err := i.buildEvent(tx, actor, task, kind, models.RuleKindNotifyOnComplete, extra, comment)
	if err != nil {
		return nil, err
	}
	events := []models.NotifyEvent{event}
	if completed && instance != nil {
		recipients, err := directoryhandler.Recipients(tx.Directory, []string{instance.StartedByID})
		if err != nil {
			return nil, err
		}
		events = append(events, models.NotifyEvent{
			Kind:        models.NotifyProcessCompleted,
			Recipients:  recipients,
			InstanceID:  instance.ID,
			ProcessName: instance.Name,
			ActorName:   actor.GetFullName(),
		})
	}
	return events, nil
}

// buildEvent получатели: цели правила kind относительно actor плюс extra, без самого actor
func (i impl) buildEvent(tx bpmstore.Stores, actor *dbmodels.User, task *dbmodels.ProcessTaskAssignment, kind models.NotifyEventKind, ruleKind models.RuleKind, extra []string, comment string) (models.NotifyEvent, error) {
	event := models.NotifyEvent{
		Kind:       kind,
		InstanceID: task.ProcessInstanceID,
		ActorName:  actor.GetFullName(),
		Comment:    comment,
	}
	instance, err := tx.Instances.GetByID(task.ProcessInstanceID)
	if err != nil {
		return event, errors.Wrap(err, "ошибка получения экземпляра процесса")
	}
	if instance != nil {
		event.ProcessName = instance.Name
	}
	taskTemplate, err := tx.Templates.GetTask(task.TaskTemplateID)
	if err != nil {
		return event, errors.Wrap(err, "ошибка получения шаблона задачи")
	}
	targets := []string{}
	if taskTemplate != nil {
		event.TaskName = taskTemplate.Name
		resolver := assignmentresolver.NewInstance(tx.Directory, i.departmentRulesEnabled)
		targets, err = resolver.ResolveRule(taskTemplate.Rule(ruleKind), actor.ID)
		if err != nil {
			return event, err
		}
	}
	event.Recipients, err = directoryhandler.Recipients(tx.Directory, append(targets, extra...), actor.ID)
	if err != nil {
		return event, err
	}
	return event, nil
}

func optionalComment(comment string) *string {
	if htmltext.IsBlank(comment) {
		return nil
	}
	return &comment
}

// logError ошибки бизнес-правил возвращаются вызывающему без записи в лог
func logError(logger *log.Entry, err error, msg string) {
	if bpmerrors.KindOf(err) != "" {
		return
	}
	logger.WithError(err).Error(msg)
}
