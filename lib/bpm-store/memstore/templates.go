package memstore

import (
	"bpm-backend/lib/utils/clock"
	dbmodels "bpm-backend/models/db"
	"slices"
	"sort"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type templateStore struct {
	s *session
}

func (t templateStore) Create(rec dbmodels.ProcessTemplate) (id string, err error) {
	err = t.s.do("", func(st *state) error {
		touch(&rec.BaseModel)
		if rec.Revision == 0 {
			rec.Revision = 1
		}
		rec.Tasks = nil
		rec.AllowedDepartments = nil
		st.templates[rec.ID] = rec
		return nil
	})
	return rec.ID, err
}

func (t templateStore) GetByID(id string) (rec *dbmodels.ProcessTemplate, err error) {
	err = t.s.do("", func(st *state) error {
		template, ok := st.templates[id]
		if !ok || template.DeletedAt.Valid {
			return nil
		}
		template = withLiveTasks(st, withDepartments(st, template))
		rec = &template
		return nil
	})
	return rec, err
}

func withLiveTasks(st *state, template dbmodels.ProcessTemplate) dbmodels.ProcessTemplate {
	template.Tasks = []dbmodels.ProcessTaskTemplate{}
	for _, task := range st.taskTemplates {
		if task.ProcessTemplateID == template.ID && task.Revision == template.Revision {
			task.RulePositions = slices.Clone(task.RulePositions)
			template.Tasks = append(template.Tasks, task)
		}
	}
	sort.SliceStable(template.Tasks, func(i, j int) bool {
		if template.Tasks[i].Order != template.Tasks[j].Order {
			return template.Tasks[i].Order < template.Tasks[j].Order
		}
		return template.Tasks[i].ID < template.Tasks[j].ID
	})
	return template
}

func (t templateStore) List() (list []dbmodels.ProcessTemplate, err error) {
	list = []dbmodels.ProcessTemplate{}
	err = t.s.do("", func(st *state) error {
		for _, template := range st.templates {
			if template.DeletedAt.Valid {
				continue
			}
			list = append(list, withLiveTasks(st, withDepartments(st, template)))
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

func (t templateStore) Update(id string, updMap map[string]interface{}) error {
	return t.s.do("", func(st *state) error {
		template, ok := st.templates[id]
		if !ok || template.DeletedAt.Valid {
			return nil
		}
		for key, value := range updMap {
			switch key {
			case "name":
				template.Name = value.(string)
			case "description":
				template.Description = value.(string)
			case "icon":
				template.Icon = value.(string)
			case "revision":
				template.Revision = value.(int)
			default:
				return errors.Errorf("unknown column %v", key)
			}
		}
		template.UpdatedAt = clock.Now()
		st.templates[id] = template
		return nil
	})
}

func (t templateStore) ReplaceAllowedDepartments(id string, departmentIDs []string) error {
	return t.s.do("", func(st *state) error {
		st.templateDepartments[id] = slices.Clone(departmentIDs)
		return nil
	})
}

func (t templateStore) AddTasks(tasks []dbmodels.ProcessTaskTemplate) error {
	return t.s.do(OpTemplateAddTasks, func(st *state) error {
		for _, task := range tasks {
			touch(&task.BaseModel)
			rules := make([]dbmodels.TaskRulePosition, 0, len(task.RulePositions))
			for _, rule := range task.RulePositions {
				rule.TaskTemplateID = task.ID
				rules = append(rules, rule)
			}
			task.RulePositions = rules
			st.taskTemplates[task.ID] = task
		}
		return nil
	})
}

func (t templateStore) Delete(id string) error {
	return t.s.do("", func(st *state) error {
		template, ok := st.templates[id]
		if !ok {
			return nil
		}
		template.DeletedAt = gorm.DeletedAt{Time: clock.Now(), Valid: true}
		st.templates[id] = template
		return nil
	})
}

func (t templateStore) GetTask(id string) (rec *dbmodels.ProcessTaskTemplate, err error) {
	err = t.s.do("", func(st *state) error {
		if task, ok := st.taskTemplates[id]; ok {
			task.RulePositions = slices.Clone(task.RulePositions)
			rec = &task
		}
		return nil
	})
	return rec, err
}

func withDepartments(st *state, template dbmodels.ProcessTemplate) dbmodels.ProcessTemplate {
	template.AllowedDepartments = []dbmodels.ProcessTemplateDepartment{}
	for _, departmentID := range st.templateDepartments[template.ID] {
		template.AllowedDepartments = append(template.AllowedDepartments, dbmodels.ProcessTemplateDepartment{
			ProcessTemplateID: template.ID,
			DepartmentID:      departmentID,
		})
	}
	return template
}
