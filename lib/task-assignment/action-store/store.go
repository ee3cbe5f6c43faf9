package taskactionstore

import (
	dbmodels "bpm-backend/models/db"

	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.TaskAction) (id string, err error)
	ListByTask(taskID string) ([]dbmodels.TaskAction, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.TaskAction) (id string, err error) {
	rec.InitID()
	err = i.db.
		Omit("User").
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// ListByTask история действий, новые первыми
func (i impl) ListByTask(taskID string) ([]dbmodels.TaskAction, error) {
	list := []dbmodels.TaskAction{}
	err := i.db.
		Where("task_id = ?", taskID).
		Preload("User").
		Order("created_at desc").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
