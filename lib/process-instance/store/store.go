package processinstancestore

import (
	"bpm-backend/models"
	dbmodels "bpm-backend/models/db"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Filter struct {
	StartedByID string
	Status      models.InstanceStatus
	TemplateID  string
	Page        int
	Limit       int
}

type Provider interface {
	Create(rec dbmodels.ProcessInstance) (id string, err error)
	GetByID(id string) (*dbmodels.ProcessInstance, error)
	Complete(id string, endDateTime time.Time) (bool, error)
	// LockForUpdate блокирует строку экземпляра до конца транзакции
	LockForUpdate(id string) error
	List(filter Filter) (list []dbmodels.ProcessInstance, rowCount int64, err error)
	CountRunningByTemplate(templateID string) (int64, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.ProcessInstance) (id string, err error) {
	rec.InitID()
	err = i.db.
		Omit("ProcessTemplate", "StartedBy").
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(id string) (*dbmodels.ProcessInstance, error) {
	rec := dbmodels.ProcessInstance{}
	err := i.db.
		Where("id = ?", id).
		Preload("ProcessTemplate", withDeleted).
		Preload("StartedBy").
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

// Complete переводит экземпляр в COMPLETED только из RUNNING
func (i impl) Complete(id string, endDateTime time.Time) (bool, error) {
	tx := i.db.
		Model(&dbmodels.ProcessInstance{}).
		Where("id = ?", id).
		Where("status = ?", models.InstanceStatusRunning).
		Updates(map[string]interface{}{
			"status":        models.InstanceStatusCompleted,
			"end_date_time": endDateTime,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (i impl) LockForUpdate(id string) error {
	rec := dbmodels.ProcessInstance{}
	err := i.db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", id).
		First(&rec).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

func (i impl) List(filter Filter) (list []dbmodels.ProcessInstance, rowCount int64, err error) {
	list = []dbmodels.ProcessInstance{}
	tx := i.db.Model(&dbmodels.ProcessInstance{})
	if filter.StartedByID != "" {
		tx = tx.Where("started_by_id = ?", filter.StartedByID)
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}
	if filter.TemplateID != "" {
		tx = tx.Where("process_template_id = ?", filter.TemplateID)
	}
	err = tx.Count(&rowCount).Error
	if err != nil {
		return nil, 0, err
	}
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		tx = tx.Limit(filter.Limit).Offset((page - 1) * filter.Limit)
	}
	err = tx.
		Preload("ProcessTemplate", withDeleted).
		Preload("StartedBy").
		Order("start_date_time desc").
		Find(&list).
		Error
	if err != nil {
		return nil, 0, err
	}
	return list, rowCount, nil
}

func (i impl) CountRunningByTemplate(templateID string) (int64, error) {
	var count int64
	err := i.db.
		Model(&dbmodels.ProcessInstance{}).
		Where("process_template_id = ?", templateID).
		Where("status = ?", models.InstanceStatusRunning).
		Count(&count).
		Error
	return count, err
}

func withDeleted(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}
