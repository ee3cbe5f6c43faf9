package bpmstore

import (
	directorystore "bpm-backend/lib/directory/store"
	processinstancestore "bpm-backend/lib/process-instance/store"
	processtemplatestore "bpm-backend/lib/process-template/store"
	taskactionstore "bpm-backend/lib/task-assignment/action-store"
	taskassignmentstore "bpm-backend/lib/task-assignment/store"
	pushdatastore "bpm-backend/lib/ws/push-store"

	"gorm.io/gorm"
)

// Stores набор хранилищ, привязанных к одному соединению или транзакции
type Stores struct {
	Directory directorystore.Provider
	Templates processtemplatestore.Provider
	Instances processinstancestore.Provider
	Tasks     taskassignmentstore.Provider
	Actions   taskactionstore.Provider
	PushData  pushdatastore.Provider
}

type Provider interface {
	Stores() Stores
	// Transaction выполняет fn в одной транзакции, ошибка fn откатывает все изменения
	Transaction(fn func(tx Stores) error) error
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Stores() Stores {
	return newStores(i.db)
}

func (i impl) Transaction(fn func(tx Stores) error) error {
	return i.db.Transaction(func(tx *gorm.DB) error {
		return fn(newStores(tx))
	})
}

func newStores(db *gorm.DB) Stores {
	return Stores{
		Directory: directorystore.NewInstance(db),
		Templates: processtemplatestore.NewInstance(db),
		Instances: processinstancestore.NewInstance(db),
		Tasks:     taskassignmentstore.NewInstance(db),
		Actions:   taskactionstore.NewInstance(db),
		PushData:  pushdatastore.NewInstance(db),
	}
}
