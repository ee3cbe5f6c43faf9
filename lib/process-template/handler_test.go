package processtemplatehandler

import (
	"bpm-backend/lib/bpm-store/memstore"
	bpmerrors "bpm-backend/lib/utils/bpm-errors"
	"bpm-backend/models"
	processapimodels "bpm-backend/models/api/process"
	dbmodels "bpm-backend/models/db"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCanStart(t *testing.T) {
	require.True(t, CanStart(models.UserRoleAdmin, nil, []string{"d1"}))
	require.True(t, CanStart(models.UserRoleSuperAdmin, nil, nil))
	require.True(t, CanStart(models.UserRoleEmployee, []string{"d2", "d1"}, []string{"d1"}))
	require.False(t, CanStart(models.UserRoleEmployee, []string{"d2"}, []string{"d1"}))
	require.False(t, CanStart(models.UserRoleManager, []string{"d2"}, nil))
}

type env struct {
	db          *memstore.DB
	handler     Provider
	superAdmin  string
	admin       string
	employee    string
	outsider    string
	salesID     string
	itID        string
	developerID string
}

func newEnv() env {
	db := memstore.New()
	e := env{db: db, handler: NewInstance(db)}
	e.salesID = db.SeedDepartment("Sales", nil)
	e.itID = db.SeedDepartment("IT", nil)
	e.developerID = db.SeedPosition("Developer", e.itID, nil)
	seller := db.SeedPosition("Seller", e.salesID, nil)
	e.superAdmin = db.SeedUser("Root", models.UserRoleSuperAdmin)
	e.admin = db.SeedUser("Admin", models.UserRoleAdmin)
	e.employee = db.SeedUser("Dev", models.UserRoleEmployee, e.developerID)
	e.outsider = db.SeedUser("Sam", models.UserRoleEmployee, seller)
	return e
}

func (e env) templateData(name string) processapimodels.TemplateData {
	return processapimodels.TemplateData{
		Name:               name,
		AllowedDepartments: []string{e.itID},
		Tasks: []processapimodels.TaskTemplateData{
			{Name: "Check", Mandatory: true, Approver: processapimodels.RuleData{PositionIDs: []string{e.developerID}}},
			{Name: "Sign", NeedFile: true, NotifyOnComplete: processapimodels.RuleData{PositionIDs: []string{e.developerID}}},
		},
	}
}

func TestCreate(t *testing.T) {
	e := newEnv()
	t.Run("super admin only", func(t *testing.T) {
		_, err := e.handler.Create(e.admin, e.templateData("Onboarding"))
		require.True(t, bpmerrors.Is(err, bpmerrors.KindForbidden))
		_, err = e.handler.Create("", e.templateData("Onboarding"))
		require.True(t, bpmerrors.Is(err, bpmerrors.KindUnauthorized))
	})
	t.Run("validation", func(t *testing.T) {
		data := e.templateData("")
		_, err := e.handler.Create(e.superAdmin, data)
		require.True(t, bpmerrors.Is(err, bpmerrors.KindValidation))

		data = e.templateData("No tasks")
		data.Tasks = nil
		_, err = e.handler.Create(e.superAdmin, data)
		require.True(t, bpmerrors.Is(err, bpmerrors.KindValidation))

		data = e.templateData("Bad position")
		data.Tasks[0].Approver.PositionIDs = []string{"missing"}
		_, err = e.handler.Create(e.superAdmin, data)
		require.True(t, bpmerrors.Is(err, bpmerrors.KindValidation))

		data = e.templateData("Bad department")
		data.AllowedDepartments = []string{"missing"}
		_, err = e.handler.Create(e.superAdmin, data)
		require.True(t, bpmerrors.Is(err, bpmerrors.KindValidation))
	})
	t.Run("created with ordered tasks", func(t *testing.T) {
		id, err := e.handler.Create(e.superAdmin, e.templateData("Onboarding"))
		require.NoError(t, err)
		view, err := e.handler.Get(e.admin, id)
		require.NoError(t, err)
		require.Equal(t, 1, view.Revision)
		require.Equal(t, []string{e.itID}, view.AllowedDepartments)
		require.Len(t, view.Tasks, 2)
		require.Equal(t, "Check", view.Tasks[0].Name)
		require.Equal(t, 1, view.Tasks[0].Order)
		require.Equal(t, []string{e.developerID}, view.Tasks[0].Approver.PositionIDs)
		require.True(t, view.Tasks[1].NeedFile)
		require.Equal(t, []string{e.developerID}, view.Tasks[1].NotifyOnComplete.PositionIDs)
	})
	t.Run("task rows rolled back on failure", func(t *testing.T) {
		before, err := e.handler.List(e.admin)
		require.NoError(t, err)
		e.db.InjectFault(memstore.OpTemplateAddTasks, bpmerrors.Configuration("boom"))
		_, err = e.handler.Create(e.superAdmin, e.templateData("Broken"))
		require.Error(t, err)
		after, err := e.handler.List(e.admin)
		require.NoError(t, err)
		require.Len(t, after, len(before))
	})
}

func TestUpdate(t *testing.T) {
	e := newEnv()
	id, err := e.handler.Create(e.superAdmin, e.templateData("Onboarding"))
	require.NoError(t, err)
	first, err := e.handler.Get(e.superAdmin, id)
	require.NoError(t, err)
	oldTaskID := first.Tasks[0].ID

	data := e.templateData("Onboarding v2")
	data.Tasks = data.Tasks[:1]
	data.Tasks[0].Name = "Review"
	require.NoError(t, e.handler.Update(e.superAdmin, id, data))

	view, err := e.handler.Get(e.superAdmin, id)
	require.NoError(t, err)
	require.Equal(t, 2, view.Revision)
	require.Equal(t, "Onboarding v2", view.Name)
	require.Len(t, view.Tasks, 1)
	require.Equal(t, "Review", view.Tasks[0].Name)

	old, err := e.db.Stores().Templates.GetTask(oldTaskID)
	require.NoError(t, err)
	require.NotNil(t, old)
	require.Equal(t, 1, old.Revision)

	err = e.handler.Update(e.admin, id, data)
	require.True(t, bpmerrors.Is(err, bpmerrors.KindForbidden))
	err = e.handler.Update(e.superAdmin, "missing", data)
	require.True(t, bpmerrors.Is(err, bpmerrors.KindNotFound))
}

func TestDelete(t *testing.T) {
	e := newEnv()
	id, err := e.handler.Create(e.superAdmin, e.templateData("Onboarding"))
	require.NoError(t, err)
	instanceID, err := e.db.Stores().Instances.Create(dbmodels.ProcessInstance{
		ProcessTemplateID: id,
		Name:              "run",
		StartDateTime:     time.Now(),
		Status:            models.InstanceStatusRunning,
	})
	require.NoError(t, err)

	err = e.handler.Delete(e.superAdmin, id)
	require.True(t, bpmerrors.Is(err, bpmerrors.KindValidation))

	_, err = e.db.Stores().Instances.Complete(instanceID, time.Now())
	require.NoError(t, err)
	require.NoError(t, e.handler.Delete(e.superAdmin, id))

	_, err = e.handler.Get(e.superAdmin, id)
	require.True(t, bpmerrors.Is(err, bpmerrors.KindNotFound))
	instance, err := e.db.Stores().Instances.GetByID(instanceID)
	require.NoError(t, err)
	require.NotNil(t, instance.ProcessTemplate)
	require.Equal(t, "Onboarding", instance.ProcessTemplate.Name)
}

func TestReadAccess(t *testing.T) {
	e := newEnv()
	id, err := e.handler.Create(e.superAdmin, e.templateData("Onboarding"))
	require.NoError(t, err)
	_, err = e.handler.Create(e.superAdmin, processapimodels.TemplateData{
		Name:               "Sales deal",
		AllowedDepartments: []string{e.salesID},
		Tasks:              []processapimodels.TaskTemplateData{{Name: "Approve"}},
	})
	require.NoError(t, err)

	t.Run("employee cannot list all", func(t *testing.T) {
		_, err := e.handler.List(e.employee)
		require.True(t, bpmerrors.Is(err, bpmerrors.KindForbidden))
	})
	t.Run("startable by department", func(t *testing.T) {
		list, err := e.handler.ListStartable(e.employee)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, id, list[0].ID)

		list, err = e.handler.ListStartable(e.admin)
		require.NoError(t, err)
		require.Len(t, list, 2)
	})
	t.Run("detail for startable template", func(t *testing.T) {
		_, err := e.handler.Get(e.employee, id)
		require.NoError(t, err)
		_, err = e.handler.Get(e.outsider, id)
		require.True(t, bpmerrors.Is(err, bpmerrors.KindForbidden))
	})
}

func TestListIncludesLiveTasks(t *testing.T) {
	e := newEnv()
	id, err := e.handler.Create(e.superAdmin, e.templateData("Onboarding"))
	require.NoError(t, err)

	list, err := e.handler.List(e.admin)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].Tasks, 2)
	require.Equal(t, "Check", list[0].Tasks[0].Name)
	require.Equal(t, []string{e.developerID}, list[0].Tasks[0].Approver.PositionIDs)

	data := e.templateData("Onboarding v2")
	data.Tasks = data.Tasks[1:]
	require.NoError(t, e.handler.Update(e.superAdmin, id, data))

	startable, err := e.handler.ListStartable(e.employee)
	require.NoError(t, err)
	require.Len(t, startable, 1)
	require.Equal(t, 2, startable[0].Revision)
	require.Len(t, startable[0].Tasks, 1)
	require.Equal(t, "Sign", startable[0].Tasks[0].Name)

	detail, err := e.handler.Get(e.admin, id)
	require.NoError(t, err)
	require.Equal(t, detail.Tasks, startable[0].Tasks)
}
