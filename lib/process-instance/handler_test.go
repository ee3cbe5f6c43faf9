package processinstancehandler

import (
	"bpm-backend/lib/bpm-store/memstore"
	"bpm-backend/lib/notifier"
	processtemplatehandler "bpm-backend/lib/process-template"
	bpmerrors "bpm-backend/lib/utils/bpm-errors"
	"bpm-backend/models"
	apimodels "bpm-backend/models/api"
	processapimodels "bpm-backend/models/api/process"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type env struct {
	db         *memstore.DB
	recorder   *notifier.Recorder
	handler    Provider
	templates  processtemplatehandler.Provider
	superAdmin string
	admin      string
	starter    string
	reviewer   string
	reviewer2  string
	outsider   string
	hrID       string
	reviewerID string
	lawyerID   string
	templateID string
}

func newEnv(t *testing.T) env {
	db := memstore.New()
	recorder := &notifier.Recorder{}
	e := env{
		db:        db,
		recorder:  recorder,
		handler:   NewInstance(db, recorder, false),
		templates: processtemplatehandler.NewInstance(db),
	}
	e.hrID = db.SeedDepartment("HR", nil)
	salesID := db.SeedDepartment("Sales", nil)
	e.reviewerID = db.SeedPosition("Reviewer", e.hrID, nil)
	e.lawyerID = db.SeedPosition("Lawyer", e.hrID, nil)
	seller := db.SeedPosition("Seller", salesID, nil)
	e.superAdmin = db.SeedUser("Root", models.UserRoleSuperAdmin)
	e.admin = db.SeedUser("Admin", models.UserRoleAdmin)
	e.starter = db.SeedUser("Starter", models.UserRoleEmployee, e.reviewerID)
	e.reviewer = db.SeedUser("Rita", models.UserRoleEmployee, e.reviewerID)
	e.reviewer2 = db.SeedUser("Roman", models.UserRoleManager, e.reviewerID, e.lawyerID)
	e.outsider = db.SeedUser("Sam", models.UserRoleEmployee, seller)

	var err error
	e.templateID, err = e.templates.Create(e.superAdmin, processapimodels.TemplateData{
		Name:               "Vacation",
		AllowedDepartments: []string{e.hrID},
		Tasks: []processapimodels.TaskTemplateData{
			{Name: "Review", Order: 1, Mandatory: true, Approver: processapimodels.RuleData{PositionIDs: []string{e.reviewerID}}},
			{Name: "Legal", Order: 2, Approver: processapimodels.RuleData{PositionIDs: []string{e.lawyerID}},
				NotifyOnStart: processapimodels.RuleData{PositionIDs: []string{e.reviewerID}}},
			{Name: "Archive", Order: 3},
		},
	})
	require.NoError(t, err)
	return e
}

func TestStart(t *testing.T) {
	t.Run("creates pending tasks in template order", func(t *testing.T) {
		e := newEnv(t)
		id, err := e.handler.Start(e.starter, processapimodels.InstanceStartData{TemplateID: e.templateID, Name: "My vacation"})
		require.NoError(t, err)

		view, err := e.handler.Get(e.starter, id)
		require.NoError(t, err)
		require.Equal(t, models.InstanceStatusRunning, view.Status)
		require.Equal(t, "My vacation", view.Name)
		require.Equal(t, "Vacation", view.TemplateName)
		require.Equal(t, 1, view.TemplateRevision)
		require.Len(t, view.Tasks, 3)
		require.Equal(t, []string{"Review", "Legal", "Archive"}, []string{view.Tasks[0].Name, view.Tasks[1].Name, view.Tasks[2].Name})
		for _, task := range view.Tasks {
			require.Equal(t, models.TaskStatusPending, task.Status)
			require.Empty(t, task.Actions)
		}
		require.ElementsMatch(t, []string{e.starter, e.reviewer, e.reviewer2}, view.Tasks[0].PossibleAssignees)
		require.Equal(t, []string{e.reviewer2}, view.Tasks[1].PossibleAssignees)
		require.Empty(t, view.Tasks[2].PossibleAssignees)
	})
	t.Run("name and start time defaults", func(t *testing.T) {
		e := newEnv(t)
		id, err := e.handler.Start(e.starter, processapimodels.InstanceStartData{TemplateID: e.templateID, Name: "  "})
		require.NoError(t, err)
		view, err := e.handler.Get(e.starter, id)
		require.NoError(t, err)
		require.Equal(t, "Vacation", view.Name)
		require.False(t, view.StartDateTime.IsZero())

		start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
		id, err = e.handler.Start(e.starter, processapimodels.InstanceStartData{TemplateID: e.templateID, StartDateTime: &start})
		require.NoError(t, err)
		view, err = e.handler.Get(e.starter, id)
		require.NoError(t, err)
		require.True(t, start.Equal(view.StartDateTime))
	})
	t.Run("notifies assignees and watchers", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.handler.Start(e.starter, processapimodels.InstanceStartData{TemplateID: e.templateID})
		require.NoError(t, err)
		events := e.recorder.OfKind(models.NotifyTaskAssigned)
		// задача без исполнителей и наблюдателей не порождает события
		require.Len(t, events, 2)
		require.Equal(t, "Review", events[0].TaskName)
		require.ElementsMatch(t, []string{e.starter, e.reviewer, e.reviewer2}, notifier.RecipientIDs(events[0]))
		require.Equal(t, "Legal", events[1].TaskName)
		require.ElementsMatch(t, []string{e.reviewer2, e.starter, e.reviewer}, notifier.RecipientIDs(events[1]))
		require.Equal(t, "Starter", events[1].ActorName)
	})
	t.Run("errors", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.handler.Start("", processapimodels.InstanceStartData{TemplateID: e.templateID})
		require.True(t, bpmerrors.Is(err, bpmerrors.KindUnauthorized))

		_, err = e.handler.Start(e.outsider, processapimodels.InstanceStartData{TemplateID: e.templateID})
		require.True(t, bpmerrors.Is(err, bpmerrors.KindForbidden))
		require.Equal(t, "You are not allowed to start this process", bpmerrors.Message(err))

		_, err = e.handler.Start(e.starter, processapimodels.InstanceStartData{TemplateID: "missing"})
		require.True(t, bpmerrors.Is(err, bpmerrors.KindNotFound))

		_, err = e.handler.Start(e.admin, processapimodels.InstanceStartData{TemplateID: e.templateID})
		require.NoError(t, err)
	})
	t.Run("failed task creation rolls back instance", func(t *testing.T) {
		e := newEnv(t)
		e.db.InjectFault(memstore.OpAssignmentCreate, errors.New("boom"))
		_, err := e.handler.Start(e.starter, processapimodels.InstanceStartData{TemplateID: e.templateID})
		require.Error(t, err)
		list, count, err := e.handler.List(e.admin, processapimodels.InstanceFilter{})
		require.NoError(t, err)
		require.Zero(t, count)
		require.Empty(t, list)
		require.Empty(t, e.recorder.Events())
	})
}

func TestAssignmentsAreFixed(t *testing.T) {
	e := newEnv(t)
	id, err := e.handler.Start(e.starter, processapimodels.InstanceStartData{TemplateID: e.templateID})
	require.NoError(t, err)

	t.Run("membership change", func(t *testing.T) {
		require.NoError(t, e.db.Stores().Directory.SetUserPositions(e.reviewer, nil))
		newcomer := e.db.SeedUser("Nina", models.UserRoleEmployee, e.lawyerID)
		view, err := e.handler.Get(e.admin, id)
		require.NoError(t, err)
		require.Contains(t, view.Tasks[0].PossibleAssignees, e.reviewer)
		require.NotContains(t, view.Tasks[1].PossibleAssignees, newcomer)
	})
	t.Run("template edit", func(t *testing.T) {
		err := e.templates.Update(e.superAdmin, e.templateID, processapimodels.TemplateData{
			Name:               "Vacation v2",
			AllowedDepartments: []string{e.hrID},
			Tasks:              []processapimodels.TaskTemplateData{{Name: "Single step", Mandatory: true}},
		})
		require.NoError(t, err)

		view, err := e.handler.Get(e.admin, id)
		require.NoError(t, err)
		require.Equal(t, 1, view.TemplateRevision)
		require.Len(t, view.Tasks, 3)
		require.Equal(t, "Review", view.Tasks[0].Name)

		newID, err := e.handler.Start(e.starter, processapimodels.InstanceStartData{TemplateID: e.templateID})
		require.NoError(t, err)
		view, err = e.handler.Get(e.admin, newID)
		require.NoError(t, err)
		require.Equal(t, 2, view.TemplateRevision)
		require.Len(t, view.Tasks, 1)
		require.Equal(t, "Single step", view.Tasks[0].Name)
	})
}

func TestLists(t *testing.T) {
	e := newEnv(t)
	first, err := e.handler.Start(e.starter, processapimodels.InstanceStartData{TemplateID: e.templateID, Name: "first"})
	require.NoError(t, err)
	_, err = e.handler.Start(e.reviewer, processapimodels.InstanceStartData{TemplateID: e.templateID, Name: "second"})
	require.NoError(t, err)

	t.Run("mine", func(t *testing.T) {
		list, count, err := e.handler.ListMine(e.starter, apimodels.Pagination{})
		require.NoError(t, err)
		require.EqualValues(t, 1, count)
		require.Equal(t, first, list[0].ID)
	})
	t.Run("all for admins only", func(t *testing.T) {
		_, _, err := e.handler.List(e.starter, processapimodels.InstanceFilter{})
		require.True(t, bpmerrors.Is(err, bpmerrors.KindForbidden))
		list, count, err := e.handler.List(e.admin, processapimodels.InstanceFilter{Status: models.InstanceStatusRunning})
		require.NoError(t, err)
		require.EqualValues(t, 2, count)
		require.Len(t, list, 2)
	})
	t.Run("bad status filter", func(t *testing.T) {
		_, _, err := e.handler.List(e.admin, processapimodels.InstanceFilter{Status: "UNKNOWN"})
		require.True(t, bpmerrors.Is(err, bpmerrors.KindValidation))
	})
	t.Run("missing instance", func(t *testing.T) {
		_, err := e.handler.Get(e.starter, "missing")
		require.True(t, bpmerrors.Is(err, bpmerrors.KindNotFound))
	})
}
