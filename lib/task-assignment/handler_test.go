package taskassignmenthandler

import (
	bpmstore "bpm-backend/lib/bpm-store"
	"bpm-backend/lib/bpm-store/memstore"
	"bpm-backend/lib/notifier"
	processinstancehandler "bpm-backend/lib/process-instance"
	processinstancestore "bpm-backend/lib/process-instance/store"
	processtemplatehandler "bpm-backend/lib/process-template"
	taskassignmentstore "bpm-backend/lib/task-assignment/store"
	bpmerrors "bpm-backend/lib/utils/bpm-errors"
	"bpm-backend/models"
	processapimodels "bpm-backend/models/api/process"
	dbmodels "bpm-backend/models/db"
	"context"
	"slices"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type storageMock struct {
	configured bool
	err        error
	paths      []string
}

func (s *storageMock) IsConfigured() bool {
	return s.configured
}

func (s *storageMock) Put(ctx context.Context, data []byte, path, contentType string) (string, error) {
	if s.err != nil {
		return "", bpmerrors.ExternalService(s.err, "Failed to upload file")
	}
	s.paths = append(s.paths, path)
	return "https://files.example.com/" + path, nil
}

type env struct {
	db         *memstore.DB
	recorder   *notifier.Recorder
	storage    *storageMock
	handler    Provider
	instances  processinstancehandler.Provider
	templates  processtemplatehandler.Provider
	superAdmin string
	admin      string
	starter    string
	alice      string
	bob        string
	lawyer     string
	outsider   string
	deptID     string
	approverID string
	lawyerID   string
}

func newEnv() *env {
	db := memstore.New()
	e := &env{
		db:       db,
		recorder: &notifier.Recorder{},
		storage:  &storageMock{configured: true},
	}
	e.handler = NewInstance(db, e.recorder, e.storage, false)
	e.instances = processinstancehandler.NewInstance(db, e.recorder, false)
	e.templates = processtemplatehandler.NewInstance(db)

	e.deptID = db.SeedDepartment("Office", nil)
	clerkID := db.SeedPosition("Clerk", e.deptID, nil)
	e.approverID = db.SeedPosition("Approver", e.deptID, nil)
	e.lawyerID = db.SeedPosition("Lawyer", e.deptID, nil)
	e.superAdmin = db.SeedUser("Root", models.UserRoleSuperAdmin)
	e.admin = db.SeedUser("Admin", models.UserRoleAdmin)
	e.starter = db.SeedUser("Starter", models.UserRoleEmployee, clerkID)
	e.alice = db.SeedUser("Alice", models.UserRoleEmployee, e.approverID)
	e.bob = db.SeedUser("Bob", models.UserRoleManager, e.approverID)
	e.lawyer = db.SeedUser("Lawyer", models.UserRoleEmployee, e.lawyerID)
	e.outsider = db.SeedUser("Olga", models.UserRoleEmployee)
	return e
}

func (e *env) approverRule() processapimodels.RuleData {
	return processapimodels.RuleData{PositionIDs: []string{e.approverID}}
}

// run создает шаблон, запускает экземпляр и возвращает идентификаторы задач по порядку
func (e *env) run(t *testing.T, tasks ...processapimodels.TaskTemplateData) (instanceID string, taskIDs []string) {
	templateID, err := e.templates.Create(e.superAdmin, processapimodels.TemplateData{
		Name:               "Purchase",
		AllowedDepartments: []string{e.deptID},
		Tasks:              tasks,
	})
	require.NoError(t, err)
	instanceID, err = e.instances.Start(e.starter, processapimodels.InstanceStartData{TemplateID: templateID})
	require.NoError(t, err)
	view, err := e.instances.Get(e.admin, instanceID)
	require.NoError(t, err)
	for _, task := range view.Tasks {
		taskIDs = append(taskIDs, task.ID)
	}
	e.recorder.Reset()
	return instanceID, taskIDs
}

func (e *env) task(t *testing.T, id string) *dbmodels.ProcessTaskAssignment {
	rec, err := e.db.Stores().Tasks.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, rec)
	return rec
}

func (e *env) instance(t *testing.T, id string) *dbmodels.ProcessInstance {
	rec, err := e.db.Stores().Instances.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, rec)
	return rec
}

func (e *env) actions(t *testing.T, taskID string) []dbmodels.TaskAction {
	list, err := e.db.Stores().Actions.ListByTask(taskID)
	require.NoError(t, err)
	return list
}

func TestCanAct(t *testing.T) {
	task := dbmodels.ProcessTaskAssignment{PossibleAssignees: []dbmodels.TaskAssignee{{UserID: "u1"}}}
	require.True(t, CanAct(&dbmodels.User{BaseModel: dbmodels.BaseModel{ID: "u1"}, Role: models.UserRoleEmployee}, task))
	require.False(t, CanAct(&dbmodels.User{BaseModel: dbmodels.BaseModel{ID: "u2"}, Role: models.UserRoleManager}, task))
	require.True(t, CanAct(&dbmodels.User{BaseModel: dbmodels.BaseModel{ID: "u2"}, Role: models.UserRoleAdmin}, task))
	require.True(t, CanAct(&dbmodels.User{BaseModel: dbmodels.BaseModel{ID: "u2"}, Role: models.UserRoleSuperAdmin}, task))
	require.False(t, CanAct(nil, task))
}

func TestScenarios(t *testing.T) {
	t.Run("approving the only mandatory task completes the instance", func(t *testing.T) {
		e := newEnv()
		instanceID, tasks := e.run(t,
			processapimodels.TaskTemplateData{Name: "Approve", Mandatory: true, Approver: e.approverRule()},
			processapimodels.TaskTemplateData{Name: "Optional", Approver: e.approverRule()},
		)
		require.NoError(t, e.handler.Approve(e.alice, tasks[0], processapimodels.TaskComment{Comment: "ok"}))

		instance := e.instance(t, instanceID)
		require.Equal(t, models.InstanceStatusCompleted, instance.Status)
		require.NotNil(t, instance.EndDateTime)
		approved := e.task(t, tasks[0])
		require.Equal(t, models.TaskStatusApproved, approved.Status)
		require.Equal(t, e.alice, *approved.CurrentAssigneeID)
		require.Equal(t, "ok", *approved.Comment)
		require.NotNil(t, approved.CompletedAt)
		require.Equal(t, models.TaskStatusSkipped, e.task(t, tasks[1]).Status)

		completedEvents := e.recorder.OfKind(models.NotifyProcessCompleted)
		require.Len(t, completedEvents, 1)
		require.Equal(t, []string{e.starter}, notifier.RecipientIDs(completedEvents[0]))
	})
	t.Run("file required before approval", func(t *testing.T) {
		e := newEnv()
		instanceID, tasks := e.run(t,
			processapimodels.TaskTemplateData{Name: "Contract", Mandatory: true, NeedFile: true, Approver: e.approverRule()},
		)
		err := e.handler.Approve(e.alice, tasks[0], processapimodels.TaskComment{})
		require.True(t, bpmerrors.Is(err, bpmerrors.KindValidation))
		require.Equal(t, "File is required for this task", bpmerrors.Message(err))
		require.Equal(t, models.TaskStatusPending, e.task(t, tasks[0]).Status)

		url, err := e.handler.UploadFile(context.Background(), e.alice, tasks[0], processapimodels.TaskFile{Name: "scan 01.pdf", Data: []byte("pdf")})
		require.NoError(t, err)
		require.Equal(t, "https://files.example.com/bpm/tasks/"+tasks[0]+"/scan_01.pdf", url)

		require.NoError(t, e.handler.Approve(e.alice, tasks[0], processapimodels.TaskComment{}))
		require.Equal(t, models.InstanceStatusCompleted, e.instance(t, instanceID).Status)
	})
	t.Run("second start fails", func(t *testing.T) {
		e := newEnv()
		_, tasks := e.run(t, processapimodels.TaskTemplateData{Name: "Approve", Mandatory: true, Approver: e.approverRule()})
		require.NoError(t, e.handler.Start(e.alice, tasks[0]))
		err := e.handler.Start(e.bob, tasks[0])
		require.True(t, bpmerrors.Is(err, bpmerrors.KindInvalidState))

		task := e.task(t, tasks[0])
		require.Equal(t, models.TaskStatusInProgress, task.Status)
		require.Equal(t, e.alice, *task.CurrentAssigneeID)
		require.NotNil(t, task.StartedAt)
		require.Len(t, e.actions(t, tasks[0]), 1)
	})
	t.Run("rejecting a mandatory task leaves the instance running", func(t *testing.T) {
		e := newEnv()
		instanceID, tasks := e.run(t,
			processapimodels.TaskTemplateData{Name: "Approve", Mandatory: true, Approver: e.approverRule()},
			processapimodels.TaskTemplateData{Name: "Optional", Approver: e.approverRule()},
		)
		require.NoError(t, e.handler.Reject(e.alice, tasks[0], processapimodels.TaskComment{Comment: "not ok"}))
		require.Equal(t, models.TaskStatusRejected, e.task(t, tasks[0]).Status)

		require.NoError(t, e.handler.Approve(e.bob, tasks[1], processapimodels.TaskComment{}))
		require.Equal(t, models.InstanceStatusRunning, e.instance(t, instanceID).Status)
		require.Empty(t, e.recorder.OfKind(models.NotifyProcessCompleted))
	})
}

func TestStateMachine(t *testing.T) {
	type operation func(e *env, taskID string) error
	ops := map[string]operation{
		"start": func(e *env, taskID string) error {
			return e.handler.Start(e.admin, taskID)
		},
		"approve": func(e *env, taskID string) error {
			return e.handler.Approve(e.admin, taskID, processapimodels.TaskComment{})
		},
		"reject": func(e *env, taskID string) error {
			return e.handler.Reject(e.admin, taskID, processapimodels.TaskComment{Comment: "no"})
		},
	}
	allowed := map[models.TaskStatus][]string{
		models.TaskStatusPending:    {"start", "approve", "reject"},
		models.TaskStatusInProgress: {"approve", "reject"},
		models.TaskStatusApproved:   {},
		models.TaskStatusRejected:   {},
		models.TaskStatusSkipped:    {},
	}
	for status, valid := range allowed {
		for name, op := range ops {
			t.Run(string(status)+" "+name, func(t *testing.T) {
				e := newEnv()
				// обязательная задача в конце не дает экземпляру завершиться
				_, tasks := e.run(t,
					processapimodels.TaskTemplateData{Name: "Target", Approver: e.approverRule()},
					processapimodels.TaskTemplateData{Name: "Blocker", Mandatory: true},
				)
				if status != models.TaskStatusPending {
					ok, err := e.db.Stores().Tasks.Transition(tasks[0], []models.TaskStatus{models.TaskStatusPending}, dbmodels.TaskTransition{Status: status})
					require.NoError(t, err)
					require.True(t, ok)
				}
				err := op(e, tasks[0])
				isValid := false
				for _, v := range valid {
					isValid = isValid || v == name
				}
				if isValid {
					require.NoError(t, err)
					require.Len(t, e.actions(t, tasks[0]), 1)
					return
				}
				require.True(t, bpmerrors.Is(err, bpmerrors.KindInvalidState), err)
				require.Equal(t, status, e.task(t, tasks[0]).Status)
				require.Empty(t, e.actions(t, tasks[0]))
			})
		}
	}
}

func TestReject(t *testing.T) {
	e := newEnv()
	_, tasks := e.run(t,
		processapimodels.TaskTemplateData{Name: "Approve", Mandatory: true, Approver: e.approverRule(),
			NotifyOnComplete: processapimodels.RuleData{PositionIDs: []string{e.lawyerID}}},
	)
	for _, comment := range []string{"", "   ", "<p></p>", "<p> <br/> </p>"} {
		err := e.handler.Reject(e.alice, tasks[0], processapimodels.TaskComment{Comment: comment})
		require.True(t, bpmerrors.Is(err, bpmerrors.KindValidation), comment)
		require.Equal(t, "Comment required for rejection", bpmerrors.Message(err))
	}
	require.Equal(t, models.TaskStatusPending, e.task(t, tasks[0]).Status)

	require.NoError(t, e.handler.Reject(e.alice, tasks[0], processapimodels.TaskComment{Comment: "<p>not ok</p>"}))
	task := e.task(t, tasks[0])
	require.Equal(t, models.TaskStatusRejected, task.Status)
	require.Equal(t, "<p>not ok</p>", *task.Comment)
	actions := e.actions(t, tasks[0])
	require.Len(t, actions, 1)
	require.Equal(t, models.TaskActionReject, actions[0].Action)
	require.Equal(t, "<p>not ok</p>", *actions[0].Message)

	events := e.recorder.OfKind(models.NotifyTaskRejected)
	require.Len(t, events, 1)
	require.ElementsMatch(t, []string{e.lawyer, e.starter}, notifier.RecipientIDs(events[0]))
	require.Equal(t, "<p>not ok</p>", events[0].Comment)
	require.Equal(t, "Approve", events[0].TaskName)
	require.Equal(t, "Purchase", events[0].ProcessName)
}

func TestAuthorization(t *testing.T) {
	e := newEnv()
	_, tasks := e.run(t, processapimodels.TaskTemplateData{Name: "Approve", Mandatory: true, Approver: e.approverRule()})

	err := e.handler.Start(e.outsider, tasks[0])
	require.True(t, bpmerrors.Is(err, bpmerrors.KindForbidden))
	err = e.handler.Approve(e.starter, tasks[0], processapimodels.TaskComment{})
	require.True(t, bpmerrors.Is(err, bpmerrors.KindForbidden))
	err = e.handler.Start("", tasks[0])
	require.True(t, bpmerrors.Is(err, bpmerrors.KindUnauthorized))
	err = e.handler.Start(e.alice, "missing")
	require.True(t, bpmerrors.Is(err, bpmerrors.KindNotFound))
	// Forbidden проверяется раньше состояния задачи
	err = e.handler.Reject(e.outsider, tasks[0], processapimodels.TaskComment{})
	require.True(t, bpmerrors.Is(err, bpmerrors.KindForbidden))

	require.NoError(t, e.handler.Start(e.admin, tasks[0]))
	require.Equal(t, e.admin, *e.task(t, tasks[0]).CurrentAssigneeID)
}

func TestNotifications(t *testing.T) {
	e := newEnv()
	_, tasks := e.run(t,
		processapimodels.TaskTemplateData{Name: "Approve", Mandatory: true, Approver: e.approverRule(),
			NotifyOnStart:    processapimodels.RuleData{PositionIDs: []string{e.lawyerID}},
			NotifyOnComplete: processapimodels.RuleData{PositionIDs: []string{e.lawyerID}}},
	)
	require.NoError(t, e.handler.Start(e.alice, tasks[0]))
	started := e.recorder.OfKind(models.NotifyTaskStarted)
	require.Len(t, started, 1)
	require.ElementsMatch(t, []string{e.lawyer, e.bob}, notifier.RecipientIDs(started[0]))
	require.Equal(t, "Alice", started[0].ActorName)

	require.NoError(t, e.handler.Approve(e.alice, tasks[0], processapimodels.TaskComment{Comment: "fine"}))
	approved := e.recorder.OfKind(models.NotifyTaskApproved)
	require.Len(t, approved, 1)
	require.ElementsMatch(t, []string{e.lawyer, e.starter}, notifier.RecipientIDs(approved[0]))
	require.Len(t, e.recorder.OfKind(models.NotifyProcessCompleted), 1)
}

func TestAtomicity(t *testing.T) {
	t.Run("failed audit append keeps status", func(t *testing.T) {
		e := newEnv()
		_, tasks := e.run(t, processapimodels.TaskTemplateData{Name: "Approve", Mandatory: true, Approver: e.approverRule()})
		e.db.InjectFault(memstore.OpActionCreate, errors.New("boom"))
		err := e.handler.Start(e.alice, tasks[0])
		require.Error(t, err)
		require.Equal(t, models.TaskStatusPending, e.task(t, tasks[0]).Status)
		require.Empty(t, e.recorder.Events())
	})
	t.Run("failed completion keeps approval undone", func(t *testing.T) {
		e := newEnv()
		instanceID, tasks := e.run(t,
			processapimodels.TaskTemplateData{Name: "Approve", Mandatory: true, Approver: e.approverRule()},
			processapimodels.TaskTemplateData{Name: "Optional", Approver: e.approverRule()},
		)
		e.db.InjectFault(memstore.OpTaskSkipPending, errors.New("boom"))
		err := e.handler.Approve(e.alice, tasks[0], processapimodels.TaskComment{})
		require.Error(t, err)
		require.Equal(t, models.TaskStatusPending, e.task(t, tasks[0]).Status)
		require.Equal(t, models.TaskStatusPending, e.task(t, tasks[1]).Status)
		require.Equal(t, models.InstanceStatusRunning, e.instance(t, instanceID).Status)
		require.Empty(t, e.actions(t, tasks[0]))
	})
}

func TestUploadFile(t *testing.T) {
	ctx := context.Background()
	file := processapimodels.TaskFile{Name: "отчет.pdf", ContentType: "application/pdf", Data: []byte("pdf")}

	t.Run("task without file", func(t *testing.T) {
		e := newEnv()
		_, tasks := e.run(t, processapimodels.TaskTemplateData{Name: "Approve", Approver: e.approverRule()})
		_, err := e.handler.UploadFile(ctx, e.alice, tasks[0], file)
		require.True(t, bpmerrors.Is(err, bpmerrors.KindValidation))
		require.Equal(t, "This task does not require a file", bpmerrors.Message(err))
	})
	t.Run("checks", func(t *testing.T) {
		e := newEnv()
		_, tasks := e.run(t, processapimodels.TaskTemplateData{Name: "Contract", NeedFile: true, Approver: e.approverRule()})

		_, err := e.handler.UploadFile(ctx, e.outsider, tasks[0], file)
		require.True(t, bpmerrors.Is(err, bpmerrors.KindForbidden))

		_, err = e.handler.UploadFile(ctx, e.alice, tasks[0], processapimodels.TaskFile{Name: "empty.pdf"})
		require.True(t, bpmerrors.Is(err, bpmerrors.KindValidation))
		require.Equal(t, "No file provided", bpmerrors.Message(err))

		e.storage.configured = false
		_, err = e.handler.UploadFile(ctx, e.alice, tasks[0], file)
		require.True(t, bpmerrors.Is(err, bpmerrors.KindConfiguration))

		e.storage.configured = true
		e.storage.err = errors.New("connection refused")
		_, err = e.handler.UploadFile(ctx, e.alice, tasks[0], file)
		require.True(t, bpmerrors.Is(err, bpmerrors.KindExternalService))
		require.Nil(t, e.task(t, tasks[0]).FileURL)
		require.Empty(t, e.actions(t, tasks[0]))
	})
	t.Run("stored and logged", func(t *testing.T) {
		e := newEnv()
		_, tasks := e.run(t, processapimodels.TaskTemplateData{Name: "Contract", NeedFile: true, Approver: e.approverRule()})
		require.NoError(t, e.handler.Start(e.bob, tasks[0]))

		url, err := e.handler.UploadFile(ctx, e.alice, tasks[0], file)
		require.NoError(t, err)
		require.Equal(t, []string{"bpm/tasks/" + tasks[0] + "/_____.pdf"}, e.storage.paths)
		task := e.task(t, tasks[0])
		require.Equal(t, url, *task.FileURL)
		require.Equal(t, models.TaskStatusInProgress, task.Status)

		actions := e.actions(t, tasks[0])
		require.Len(t, actions, 2)
		require.Equal(t, models.TaskActionUploadFile, actions[0].Action)
		require.Equal(t, "_____.pdf", *actions[0].Message)
	})
	t.Run("closed task", func(t *testing.T) {
		e := newEnv()
		_, tasks := e.run(t,
			processapimodels.TaskTemplateData{Name: "Contract", NeedFile: true, Approver: e.approverRule()},
			processapimodels.TaskTemplateData{Name: "Blocker", Mandatory: true},
		)
		require.NoError(t, e.handler.Reject(e.alice, tasks[0], processapimodels.TaskComment{Comment: "no"}))
		_, err := e.handler.UploadFile(ctx, e.alice, tasks[0], file)
		require.True(t, bpmerrors.Is(err, bpmerrors.KindInvalidState))
		require.Empty(t, e.storage.paths)
	})
}

func TestMyTasks(t *testing.T) {
	e := newEnv()
	_, tasks := e.run(t,
		processapimodels.TaskTemplateData{Name: "First", Mandatory: true, Approver: e.approverRule()},
		processapimodels.TaskTemplateData{Name: "Second", Mandatory: true, Approver: e.approverRule()},
		processapimodels.TaskTemplateData{Name: "Legal", Approver: processapimodels.RuleData{PositionIDs: []string{e.lawyerID}}},
	)
	list, err := e.handler.MyTasks(e.alice)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, e.handler.Approve(e.bob, tasks[0], processapimodels.TaskComment{}))
	list, err = e.handler.MyTasks(e.alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Second", list[0].Name)

	list, err = e.handler.MyTasks(e.outsider)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestActionHistoryOrder(t *testing.T) {
	e := newEnv()
	instanceID, tasks := e.run(t, processapimodels.TaskTemplateData{Name: "Approve", Mandatory: true, Approver: e.approverRule()})
	require.NoError(t, e.handler.Start(e.alice, tasks[0]))
	time.Sleep(time.Millisecond)
	require.NoError(t, e.handler.Approve(e.alice, tasks[0], processapimodels.TaskComment{Comment: "done"}))

	view, err := e.instances.Get(e.starter, instanceID)
	require.NoError(t, err)
	require.Len(t, view.Tasks[0].Actions, 2)
	require.Equal(t, models.TaskActionApprove, view.Tasks[0].Actions[0].Action)
	require.Equal(t, models.TaskActionStart, view.Tasks[0].Actions[1].Action)
	require.Equal(t, "Alice", view.Tasks[0].Actions[0].UserName)
}

// recordingRepo пишет в calls порядок блокировок и чтений задач внутри транзакций
type recordingRepo struct {
	bpmstore.Provider
	calls *[]string
}

func (r recordingRepo) Transaction(fn func(tx bpmstore.Stores) error) error {
	return r.Provider.Transaction(func(tx bpmstore.Stores) error {
		tx.Instances = recordingInstances{Provider: tx.Instances, calls: r.calls}
		tx.Tasks = recordingTasks{Provider: tx.Tasks, calls: r.calls}
		return fn(tx)
	})
}

type recordingInstances struct {
	processinstancestore.Provider
	calls *[]string
}

func (r recordingInstances) LockForUpdate(id string) error {
	*r.calls = append(*r.calls, "lock:"+id)
	return r.Provider.LockForUpdate(id)
}

type recordingTasks struct {
	taskassignmentstore.Provider
	calls *[]string
}

func (r recordingTasks) GetByID(id string) (*dbmodels.ProcessTaskAssignment, error) {
	*r.calls = append(*r.calls, "get:"+id)
	return r.Provider.GetByID(id)
}

func (r recordingTasks) ListByInstance(instanceID string) ([]dbmodels.ProcessTaskAssignment, error) {
	*r.calls = append(*r.calls, "list:"+instanceID)
	return r.Provider.ListByInstance(instanceID)
}

func TestApproveLocksInstance(t *testing.T) {
	t.Run("lock taken before task is read", func(t *testing.T) {
		e := newEnv()
		instanceID, tasks := e.run(t,
			processapimodels.TaskTemplateData{Name: "First", Mandatory: true, Approver: e.approverRule()},
			processapimodels.TaskTemplateData{Name: "Second", Mandatory: true, Approver: e.approverRule()},
		)
		calls := []string{}
		handler := NewInstance(recordingRepo{Provider: e.db, calls: &calls}, e.recorder, e.storage, false)
		require.NoError(t, handler.Approve(e.alice, tasks[0], processapimodels.TaskComment{}))

		require.GreaterOrEqual(t, len(calls), 3)
		require.Equal(t, "get:"+tasks[0], calls[0])
		require.Equal(t, "lock:"+instanceID, calls[1])
		require.Equal(t, "get:"+tasks[0], calls[2])
		require.Contains(t, calls, "list:"+instanceID)
		require.Less(t, slices.Index(calls, "lock:"+instanceID), slices.Index(calls, "list:"+instanceID))
	})
	t.Run("second approval sees the first and completes", func(t *testing.T) {
		e := newEnv()
		instanceID, tasks := e.run(t,
			processapimodels.TaskTemplateData{Name: "First", Mandatory: true, Approver: e.approverRule()},
			processapimodels.TaskTemplateData{Name: "Second", Mandatory: true, Approver: e.approverRule()},
		)
		require.NoError(t, e.handler.Approve(e.alice, tasks[0], processapimodels.TaskComment{}))
		require.Equal(t, models.InstanceStatusRunning, e.instance(t, instanceID).Status)
		require.NoError(t, e.handler.Approve(e.bob, tasks[1], processapimodels.TaskComment{}))
		require.Equal(t, models.InstanceStatusCompleted, e.instance(t, instanceID).Status)
	})
	t.Run("failed lock leaves task untouched", func(t *testing.T) {
		e := newEnv()
		instanceID, tasks := e.run(t, processapimodels.TaskTemplateData{Name: "Approve", Mandatory: true, Approver: e.approverRule()})
		e.db.InjectFault(memstore.OpInstanceLock, errors.New("lock timeout"))
		err := e.handler.Approve(e.alice, tasks[0], processapimodels.TaskComment{})
		require.Error(t, err)
		require.Equal(t, models.TaskStatusPending, e.task(t, tasks[0]).Status)
		require.Equal(t, models.InstanceStatusRunning, e.instance(t, instanceID).Status)
		require.Empty(t, e.actions(t, tasks[0]))
		require.Empty(t, e.recorder.Events())
	})
	t.Run("missing task is not found", func(t *testing.T) {
		e := newEnv()
		err := e.handler.Approve(e.alice, "missing", processapimodels.TaskComment{})
		require.True(t, bpmerrors.Is(err, bpmerrors.KindNotFound))
	})
}

func TestApproveWithoutTaskTemplate(t *testing.T) {
	e := newEnv()
	stores := e.db.Stores()
	instanceID, err := stores.Instances.Create(dbmodels.ProcessInstance{
		Name:          "orphan",
		StartedByID:   e.starter,
		StartDateTime: time.Now(),
		Status:        models.InstanceStatusRunning,
	})
	require.NoError(t, err)
	taskID, err := stores.Tasks.Create(dbmodels.ProcessTaskAssignment{
		ProcessInstanceID: instanceID,
		TaskTemplateID:    "missing",
		Order:             1,
		Status:            models.TaskStatusPending,
		PossibleAssignees: []dbmodels.TaskAssignee{{UserID: e.alice}},
	})
	require.NoError(t, err)

	err = e.handler.Approve(e.alice, taskID, processapimodels.TaskComment{})
	require.Error(t, err)
	require.Empty(t, bpmerrors.KindOf(err))
	require.Equal(t, models.TaskStatusPending, e.task(t, taskID).Status)
	require.Equal(t, models.InstanceStatusRunning, e.instance(t, instanceID).Status)
	require.Empty(t, e.actions(t, taskID))
}
