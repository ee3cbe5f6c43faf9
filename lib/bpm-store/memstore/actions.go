package memstore

import (
	dbmodels "bpm-backend/models/db"
	"slices"
	"sort"
	"time"

	"github.com/pkg/errors"
)

var errDuplicateAssignment = errors.New("duplicate key value violates unique constraint idx_instance_task")

type actionStore struct {
	s *session
}

func (a actionStore) Create(rec dbmodels.TaskAction) (id string, err error) {
	err = a.s.do(OpActionCreate, func(st *state) error {
		touch(&rec.BaseModel)
		rec.User = nil
		st.actions = append(st.actions, actionRow{seq: st.nextSeq(), rec: rec})
		return nil
	})
	return rec.ID, err
}

func (a actionStore) ListByTask(taskID string) (list []dbmodels.TaskAction, err error) {
	rows := []actionRow{}
	err = a.s.do("", func(st *state) error {
		for _, row := range st.actions {
			if row.rec.TaskID != taskID {
				continue
			}
			if user, ok := st.users[row.rec.UserID]; ok {
				row.rec.User = &user
			}
			rows = append(rows, row)
		}
		return nil
	})
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].rec.CreatedAt.Equal(rows[j].rec.CreatedAt) {
			return rows[i].rec.CreatedAt.After(rows[j].rec.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	list = make([]dbmodels.TaskAction, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.rec)
	}
	return list, err
}

type pushStore struct {
	s *session
}

func (p pushStore) Create(rec dbmodels.PushData) error {
	return p.s.do("", func(st *state) error {
		touch(&rec.BaseModel)
		st.pushData = append(st.pushData, rec)
		return nil
	})
}

func (p pushStore) List(userID string) (list []dbmodels.PushData, err error) {
	list = []dbmodels.PushData{}
	err = p.s.do("", func(st *state) error {
		for _, rec := range st.pushData {
			if rec.UserID == userID {
				list = append(list, rec)
			}
		}
		return nil
	})
	return list, err
}

func (p pushStore) Delete(ids []string) error {
	return p.s.do("", func(st *state) error {
		kept := make([]dbmodels.PushData, 0, len(st.pushData))
		for _, rec := range st.pushData {
			if !slices.Contains(ids, rec.ID) {
				kept = append(kept, rec)
			}
		}
		st.pushData = kept
		return nil
	})
}

func (p pushStore) DeleteOlderThan(before time.Time) (count int64, err error) {
	err = p.s.do("", func(st *state) error {
		kept := make([]dbmodels.PushData, 0, len(st.pushData))
		for _, rec := range st.pushData {
			if rec.CreatedAt.Before(before) {
				count++
				continue
			}
			kept = append(kept, rec)
		}
		st.pushData = kept
		return nil
	})
	return count, err
}
