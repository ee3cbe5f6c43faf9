package dbmodels

import (
	"time"

	"github.com/google/uuid"
)

type BaseModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InitID выставляет идентификатор до сохранения, если он еще не задан
func (b *BaseModel) InitID() string {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return b.ID
}
