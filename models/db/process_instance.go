package dbmodels

import (
	"bpm-backend/models"
	"time"
)

type ProcessInstance struct {
	BaseModel
	ProcessTemplateID string           `gorm:"type:varchar(36);index"`
	ProcessTemplate   *ProcessTemplate `gorm:"foreignKey:ProcessTemplateID"`
	TemplateRevision  int
	StartedByID       string `gorm:"type:varchar(36);index"`
	StartedBy         *User  `gorm:"foreignKey:StartedByID"`
	Name              string `gorm:"type:varchar(255)"`
	StartDateTime     time.Time
	EndDateTime       *time.Time
	Status            models.InstanceStatus `gorm:"type:varchar(32);index"`
}
