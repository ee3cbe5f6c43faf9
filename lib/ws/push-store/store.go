package pushdatastore

import (
	dbmodels "bpm-backend/models/db"
	"time"

	"gorm.io/gorm"
)

// Provider события для пользователей, которые не были в сети в момент отправки
type Provider interface {
	Create(rec dbmodels.PushData) error
	List(userID string) ([]dbmodels.PushData, error)
	Delete(ids []string) error
	// DeleteOlderThan удаляет недоставленные события, созданные раньше before
	DeleteOlderThan(before time.Time) (count int64, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.PushData) error {
	rec.InitID()
	return i.db.
		Save(&rec).
		Error
}

func (i impl) List(userID string) (list []dbmodels.PushData, err error) {
	list = []dbmodels.PushData{}
	err = i.db.
		Model(dbmodels.PushData{}).
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) Delete(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return i.db.Delete(&dbmodels.PushData{}, "id in (?)", ids).Error
}

func (i impl) DeleteOlderThan(before time.Time) (count int64, err error) {
	result := i.db.Delete(&dbmodels.PushData{}, "created_at < ?", before)
	return result.RowsAffected, result.Error
}
