package memstore

import (
	"bpm-backend/lib/utils/clock"
	"bpm-backend/models"
	dbmodels "bpm-backend/models/db"
	"slices"
	"sort"
)

type taskStore struct {
	s *session
}

func (t taskStore) Create(rec dbmodels.ProcessTaskAssignment) (id string, err error) {
	err = t.s.do(OpAssignmentCreate, func(st *state) error {
		touch(&rec.BaseModel)
		for _, existing := range st.tasks {
			if existing.ProcessInstanceID == rec.ProcessInstanceID && existing.TaskTemplateID == rec.TaskTemplateID {
				return errDuplicateAssignment
			}
		}
		assignees := make([]dbmodels.TaskAssignee, 0, len(rec.PossibleAssignees))
		for _, assignee := range rec.PossibleAssignees {
			assignee.TaskID = rec.ID
			assignees = append(assignees, assignee)
		}
		rec.PossibleAssignees = assignees
		rec.TaskTemplate = nil
		rec.CurrentAssignee = nil
		st.tasks[rec.ID] = rec
		return nil
	})
	return rec.ID, err
}

func (t taskStore) GetByID(id string) (rec *dbmodels.ProcessTaskAssignment, err error) {
	err = t.s.do("", func(st *state) error {
		if task, ok := st.tasks[id]; ok {
			task = withTaskRefs(st, task)
			rec = &task
		}
		return nil
	})
	return rec, err
}

func (t taskStore) ListByInstance(instanceID string) (list []dbmodels.ProcessTaskAssignment, err error) {
	list = []dbmodels.ProcessTaskAssignment{}
	err = t.s.do("", func(st *state) error {
		for _, task := range st.tasks {
			if task.ProcessInstanceID == instanceID {
				list = append(list, withTaskRefs(st, task))
			}
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool {
		if list[i].Order != list[j].Order {
			return list[i].Order < list[j].Order
		}
		return list[i].ID < list[j].ID
	})
	return list, err
}

func (t taskStore) Transition(id string, from []models.TaskStatus, upd dbmodels.TaskTransition) (ok bool, err error) {
	err = t.s.do(OpTaskTransition, func(st *state) error {
		task, exist := st.tasks[id]
		if !exist || !slices.Contains(from, task.Status) {
			return nil
		}
		task.Status = upd.Status
		if upd.CurrentAssigneeID != nil {
			task.CurrentAssigneeID = strPtr(*upd.CurrentAssigneeID)
		}
		if upd.StartedAt != nil {
			task.StartedAt = timePtr(*upd.StartedAt)
		}
		if upd.CompletedAt != nil {
			task.CompletedAt = timePtr(*upd.CompletedAt)
		}
		if upd.Comment != nil {
			task.Comment = strPtr(*upd.Comment)
		}
		task.UpdatedAt = clock.Now()
		st.tasks[id] = task
		ok = true
		return nil
	})
	return ok, err
}

func (t taskStore) SetFileURL(id string, from []models.TaskStatus, fileURL string) (ok bool, err error) {
	err = t.s.do("", func(st *state) error {
		task, exist := st.tasks[id]
		if !exist || !slices.Contains(from, task.Status) {
			return nil
		}
		task.FileURL = strPtr(fileURL)
		task.UpdatedAt = clock.Now()
		st.tasks[id] = task
		ok = true
		return nil
	})
	return ok, err
}

func (t taskStore) SkipPending(instanceID string) (count int64, err error) {
	err = t.s.do(OpTaskSkipPending, func(st *state) error {
		for id, task := range st.tasks {
			if task.ProcessInstanceID != instanceID || task.Status != models.TaskStatusPending {
				continue
			}
			task.Status = models.TaskStatusSkipped
			task.UpdatedAt = clock.Now()
			st.tasks[id] = task
			count++
		}
		return nil
	})
	return count, err
}

func (t taskStore) ListOpenForUser(userID string) (list []dbmodels.ProcessTaskAssignment, err error) {
	list = []dbmodels.ProcessTaskAssignment{}
	err = t.s.do("", func(st *state) error {
		for _, task := range st.tasks {
			if !task.Status.IsOpen() || !task.IsPossibleAssignee(userID) {
				continue
			}
			list = append(list, withTaskRefs(st, task))
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		if list[i].Order != list[j].Order {
			return list[i].Order < list[j].Order
		}
		return list[i].ID < list[j].ID
	})
	return list, err
}

func withTaskRefs(st *state, task dbmodels.ProcessTaskAssignment) dbmodels.ProcessTaskAssignment {
	task.PossibleAssignees = slices.Clone(task.PossibleAssignees)
	if taskTemplate, ok := st.taskTemplates[task.TaskTemplateID]; ok {
		taskTemplate.RulePositions = nil
		task.TaskTemplate = &taskTemplate
	}
	if task.CurrentAssigneeID != nil {
		if user, ok := st.users[*task.CurrentAssigneeID]; ok {
			task.CurrentAssignee = &user
		}
	}
	return task
}
