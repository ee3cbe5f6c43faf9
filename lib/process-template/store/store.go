package processtemplatestore

import (
	dbmodels "bpm-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Provider interface {
	Create(rec dbmodels.ProcessTemplate) (id string, err error)
	GetByID(id string) (*dbmodels.ProcessTemplate, error)
	List() ([]dbmodels.ProcessTemplate, error)
	Update(id string, updMap map[string]interface{}) error
	ReplaceAllowedDepartments(id string, departmentIDs []string) error
	AddTasks(tasks []dbmodels.ProcessTaskTemplate) error
	Delete(id string) error
	GetTask(id string) (*dbmodels.ProcessTaskTemplate, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

// Create сохраняет заголовок шаблона, задачи и подразделения добавляются отдельно
func (i impl) Create(rec dbmodels.ProcessTemplate) (id string, err error) {
	rec.InitID()
	if rec.Revision == 0 {
		rec.Revision = 1
	}
	err = i.db.
		Omit(clause.Associations).
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// GetByID шаблон с задачами текущей ревизии
func (i impl) GetByID(id string) (*dbmodels.ProcessTemplate, error) {
	rec := dbmodels.ProcessTemplate{}
	err := i.db.
		Where("id = ?", id).
		Preload("AllowedDepartments").
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	err = i.db.
		Where("process_template_id = ?", rec.ID).
		Where("revision = ?", rec.Revision).
		Preload("RulePositions").
		Order("task_order").
		Find(&rec.Tasks).
		Error
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения задач шаблона")
	}
	return &rec, nil
}

func (i impl) List() ([]dbmodels.ProcessTemplate, error) {
	list := []dbmodels.ProcessTemplate{}
	err := i.db.
		Preload("AllowedDepartments").
		Order("name").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return list, nil
	}
	ids := make([]string, 0, len(list))
	for _, rec := range list {
		ids = append(ids, rec.ID)
	}
	tasks := []dbmodels.ProcessTaskTemplate{}
	err = i.db.
		Where("process_template_id IN ?", ids).
		Preload("RulePositions").
		Order("task_order").
		Find(&tasks).
		Error
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения задач шаблонов")
	}
	// в списке только задачи текущей ревизии каждого шаблона
	for idx := range list {
		list[idx].Tasks = []dbmodels.ProcessTaskTemplate{}
		for _, task := range tasks {
			if task.ProcessTemplateID == list[idx].ID && task.Revision == list[idx].Revision {
				list[idx].Tasks = append(list[idx].Tasks, task)
			}
		}
	}
	return list, nil
}

func (i impl) Update(id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	return i.db.
		Model(&dbmodels.ProcessTemplate{}).
		Where("id = ?", id).
		Updates(updMap).
		Error
}

func (i impl) ReplaceAllowedDepartments(id string, departmentIDs []string) error {
	err := i.db.
		Where("process_template_id = ?", id).
		Delete(&dbmodels.ProcessTemplateDepartment{}).
		Error
	if err != nil {
		return errors.Wrap(err, "ошибка удаления подразделений шаблона")
	}
	if len(departmentIDs) == 0 {
		return nil
	}
	rows := make([]dbmodels.ProcessTemplateDepartment, 0, len(departmentIDs))
	for _, departmentID := range departmentIDs {
		rows = append(rows, dbmodels.ProcessTemplateDepartment{
			ProcessTemplateID: id,
			DepartmentID:      departmentID,
		})
	}
	return i.db.Create(&rows).Error
}

func (i impl) AddTasks(tasks []dbmodels.ProcessTaskTemplate) error {
	for idx := range tasks {
		task := tasks[idx]
		task.InitID()
		for ruleIdx := range task.RulePositions {
			task.RulePositions[ruleIdx].TaskTemplateID = task.ID
		}
		err := i.db.
			Omit("RulePositions").
			Create(&task).
			Error
		if err != nil {
			return errors.Wrap(err, "ошибка сохранения задачи шаблона")
		}
		if len(task.RulePositions) == 0 {
			continue
		}
		err = i.db.Create(&task.RulePositions).Error
		if err != nil {
			return errors.Wrap(err, "ошибка сохранения правил задачи шаблона")
		}
	}
	return nil
}

func (i impl) Delete(id string) error {
	rec := dbmodels.ProcessTemplate{
		BaseModel: dbmodels.BaseModel{ID: id},
	}
	return i.db.
		Delete(&rec).
		Error
}

func (i impl) GetTask(id string) (*dbmodels.ProcessTaskTemplate, error) {
	rec := dbmodels.ProcessTaskTemplate{}
	err := i.db.
		Where("id = ?", id).
		Preload("RulePositions").
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}
