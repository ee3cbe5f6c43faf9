package memstore

import (
	dbmodels "bpm-backend/models/db"
	"slices"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

type directoryStore struct {
	s *session
}

func (d directoryStore) GetUser(id string) (rec *dbmodels.User, err error) {
	err = d.s.do("", func(st *state) error {
		if user, ok := st.users[id]; ok {
			rec = &user
		}
		return nil
	})
	return rec, err
}

func (d directoryStore) GetUserByEmail(email string) (rec *dbmodels.User, err error) {
	err = d.s.do("", func(st *state) error {
		for _, user := range st.users {
			if strings.EqualFold(user.Email, email) {
				rec = &user
				return nil
			}
		}
		return nil
	})
	return rec, err
}

func (d directoryStore) ListUsers(ids []string) (list []dbmodels.User, err error) {
	list = []dbmodels.User{}
	err = d.s.do("", func(st *state) error {
		for _, user := range st.users {
			if ids != nil && !slices.Contains(ids, user.ID) {
				continue
			}
			list = append(list, user)
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool {
		if list[i].LastName != list[j].LastName {
			return list[i].LastName < list[j].LastName
		}
		if list[i].FirstName != list[j].FirstName {
			return list[i].FirstName < list[j].FirstName
		}
		return list[i].ID < list[j].ID
	})
	return list, err
}

func (d directoryStore) SaveUser(rec dbmodels.User) (id string, err error) {
	err = d.s.do("", func(st *state) error {
		for _, user := range st.users {
			if user.Email == rec.Email && user.ID != rec.ID {
				return errors.Errorf("duplicate key value violates unique constraint: email %v", rec.Email)
			}
		}
		touch(&rec.BaseModel)
		st.users[rec.ID] = rec
		return nil
	})
	return rec.ID, err
}

func (d directoryStore) SetUserPositions(userID string, positionIDs []string) error {
	return d.s.do("", func(st *state) error {
		st.userPositions[userID] = slices.Clone(positionIDs)
		return nil
	})
}

func (d directoryStore) PositionIDsOfUser(userID string) (list []string, err error) {
	err = d.s.do("", func(st *state) error {
		list = slices.Clone(st.userPositions[userID])
		return nil
	})
	if list == nil {
		list = []string{}
	}
	sort.Strings(list)
	return list, err
}

func (d directoryStore) UserIDsByPositions(positionIDs []string) (list []string, err error) {
	list = []string{}
	err = d.s.do("", func(st *state) error {
		for userID, held := range st.userPositions {
			for _, positionID := range held {
				if slices.Contains(positionIDs, positionID) {
					list = append(list, userID)
					break
				}
			}
		}
		return nil
	})
	sort.Strings(list)
	return list, err
}

func (d directoryStore) DepartmentIDsOfUser(userID string) (list []string, err error) {
	list = []string{}
	err = d.s.do("", func(st *state) error {
		for _, positionID := range st.userPositions[userID] {
			position, ok := st.positions[positionID]
			if !ok || slices.Contains(list, position.DepartmentID) {
				continue
			}
			list = append(list, position.DepartmentID)
		}
		return nil
	})
	sort.Strings(list)
	return list, err
}

func (d directoryStore) PositionsByDepartments(departmentIDs []string) (list []dbmodels.JobPosition, err error) {
	list = []dbmodels.JobPosition{}
	err = d.s.do("", func(st *state) error {
		for _, position := range st.positions {
			if slices.Contains(departmentIDs, position.DepartmentID) {
				list = append(list, position)
			}
		}
		return nil
	})
	sortPositions(list)
	return list, err
}

func (d directoryStore) GetDepartment(id string) (rec *dbmodels.Department, err error) {
	err = d.s.do("", func(st *state) error {
		if department, ok := st.departments[id]; ok {
			rec = &department
		}
		return nil
	})
	return rec, err
}

func (d directoryStore) ListDepartments() (list []dbmodels.Department, err error) {
	list = []dbmodels.Department{}
	err = d.s.do("", func(st *state) error {
		for _, department := range st.departments {
			list = append(list, department)
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return list, err
}

func (d directoryStore) SaveDepartment(rec dbmodels.Department) (id string, err error) {
	err = d.s.do("", func(st *state) error {
		touch(&rec.BaseModel)
		st.departments[rec.ID] = rec
		return nil
	})
	return rec.ID, err
}

func (d directoryStore) ExistingDepartmentIDs(ids []string) (list []string, err error) {
	list = []string{}
	err = d.s.do("", func(st *state) error {
		for _, id := range ids {
			if _, ok := st.departments[id]; ok && !slices.Contains(list, id) {
				list = append(list, id)
			}
		}
		return nil
	})
	return list, err
}

func (d directoryStore) GetPosition(id string) (rec *dbmodels.JobPosition, err error) {
	err = d.s.do("", func(st *state) error {
		if position, ok := st.positions[id]; ok {
			position = withPositionRefs(st, position)
			rec = &position
		}
		return nil
	})
	return rec, err
}

func (d directoryStore) ListPositions() (list []dbmodels.JobPosition, err error) {
	list = []dbmodels.JobPosition{}
	err = d.s.do("", func(st *state) error {
		for _, position := range st.positions {
			list = append(list, withPositionRefs(st, position))
		}
		return nil
	})
	sortPositions(list)
	return list, err
}

func (d directoryStore) SavePosition(rec dbmodels.JobPosition) (id string, err error) {
	err = d.s.do("", func(st *state) error {
		touch(&rec.BaseModel)
		rec.Department = nil
		rec.Manager = nil
		st.positions[rec.ID] = rec
		return nil
	})
	return rec.ID, err
}

func (d directoryStore) ExistingPositionIDs(ids []string) (list []string, err error) {
	list = []string{}
	err = d.s.do("", func(st *state) error {
		for _, id := range ids {
			if _, ok := st.positions[id]; ok && !slices.Contains(list, id) {
				list = append(list, id)
			}
		}
		return nil
	})
	return list, err
}

func withPositionRefs(st *state, position dbmodels.JobPosition) dbmodels.JobPosition {
	if department, ok := st.departments[position.DepartmentID]; ok {
		position.Department = &department
	}
	if position.ManagerID != nil {
		if manager, ok := st.users[*position.ManagerID]; ok {
			position.Manager = &manager
		}
	}
	return position
}

func sortPositions(list []dbmodels.JobPosition) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
}
