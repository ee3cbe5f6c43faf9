package memstore

import (
	processinstancestore "bpm-backend/lib/process-instance/store"
	"bpm-backend/models"
	dbmodels "bpm-backend/models/db"
	"sort"
	"time"
)

type instanceStore struct {
	s *session
}

func (i instanceStore) Create(rec dbmodels.ProcessInstance) (id string, err error) {
	err = i.s.do("", func(st *state) error {
		touch(&rec.BaseModel)
		rec.ProcessTemplate = nil
		rec.StartedBy = nil
		st.instances[rec.ID] = rec
		return nil
	})
	return rec.ID, err
}

func (i instanceStore) GetByID(id string) (rec *dbmodels.ProcessInstance, err error) {
	err = i.s.do("", func(st *state) error {
		if instance, ok := st.instances[id]; ok {
			instance = withInstanceRefs(st, instance)
			rec = &instance
		}
		return nil
	})
	return rec, err
}

func (i instanceStore) Complete(id string, endDateTime time.Time) (ok bool, err error) {
	err = i.s.do(OpInstanceComplete, func(st *state) error {
		instance, exist := st.instances[id]
		if !exist || instance.Status != models.InstanceStatusRunning {
			return nil
		}
		instance.Status = models.InstanceStatusCompleted
		instance.EndDateTime = &endDateTime
		instance.UpdatedAt = endDateTime
		st.instances[id] = instance
		ok = true
		return nil
	})
	return ok, err
}

// LockForUpdate транзакции и так выполняются под общим мьютексом
func (i instanceStore) LockForUpdate(id string) error {
	return i.s.do(OpInstanceLock, func(st *state) error {
		return nil
	})
}

func (i instanceStore) List(filter processinstancestore.Filter) (list []dbmodels.ProcessInstance, rowCount int64, err error) {
	list = []dbmodels.ProcessInstance{}
	err = i.s.do("", func(st *state) error {
		for _, instance := range st.instances {
			if filter.StartedByID != "" && instance.StartedByID != filter.StartedByID {
				continue
			}
			if filter.Status != "" && instance.Status != filter.Status {
				continue
			}
			if filter.TemplateID != "" && instance.ProcessTemplateID != filter.TemplateID {
				continue
			}
			list = append(list, withInstanceRefs(st, instance))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(list, func(a, b int) bool {
		if !list[a].StartDateTime.Equal(list[b].StartDateTime) {
			return list[a].StartDateTime.After(list[b].StartDateTime)
		}
		return list[a].ID < list[b].ID
	})
	rowCount = int64(len(list))
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		from := min((page-1)*filter.Limit, len(list))
		to := min(from+filter.Limit, len(list))
		list = list[from:to]
	}
	return list, rowCount, nil
}

func (i instanceStore) CountRunningByTemplate(templateID string) (count int64, err error) {
	err = i.s.do("", func(st *state) error {
		for _, instance := range st.instances {
			if instance.ProcessTemplateID == templateID && instance.Status == models.InstanceStatusRunning {
				count++
			}
		}
		return nil
	})
	return count, err
}

func withInstanceRefs(st *state, instance dbmodels.ProcessInstance) dbmodels.ProcessInstance {
	if template, ok := st.templates[instance.ProcessTemplateID]; ok {
		template.Tasks = nil
		template.AllowedDepartments = nil
		instance.ProcessTemplate = &template
	}
	if user, ok := st.users[instance.StartedByID]; ok {
		instance.StartedBy = &user
	}
	return instance
}
