package dbmodels

import (
	"bpm-backend/models"
	"time"
)

type ProcessTaskAssignment struct {
	BaseModel
	ProcessInstanceID string               `gorm:"type:varchar(36);uniqueIndex:idx_instance_task"`
	TaskTemplateID    string               `gorm:"type:varchar(36);uniqueIndex:idx_instance_task"`
	TaskTemplate      *ProcessTaskTemplate `gorm:"foreignKey:TaskTemplateID"`
	Order             int                  `gorm:"column:task_order"`
	Status            models.TaskStatus    `gorm:"type:varchar(32);index"`
	PossibleAssignees []TaskAssignee       `gorm:"foreignKey:TaskID"`
	CurrentAssigneeID *string              `gorm:"type:varchar(36)"`
	CurrentAssignee   *User                `gorm:"foreignKey:CurrentAssigneeID"`
	StartedAt         *time.Time
	CompletedAt       *time.Time
	Comment           *string
	FileURL           *string
}

func (a ProcessTaskAssignment) AssigneeIDs() []string {
	result := make([]string, 0, len(a.PossibleAssignees))
	for _, assignee := range a.PossibleAssignees {
		result = append(result, assignee.UserID)
	}
	return result
}

func (a ProcessTaskAssignment) IsPossibleAssignee(userID string) bool {
	for _, assignee := range a.PossibleAssignees {
		if assignee.UserID == userID {
			return true
		}
	}
	return false
}

func (a ProcessTaskAssignment) IsMandatory() bool {
	return a.TaskTemplate != nil && a.TaskTemplate.Mandatory
}

// TaskAssignee список возможных исполнителей фиксируется при создании экземпляра
type TaskAssignee struct {
	TaskID string `gorm:"primaryKey;type:varchar(36)"`
	UserID string `gorm:"primaryKey;type:varchar(36);index"`
}

// TaskTransition изменения задачи при смене статуса, nil поля не меняются
type TaskTransition struct {
	Status            models.TaskStatus
	CurrentAssigneeID *string
	StartedAt         *time.Time
	CompletedAt       *time.Time
	Comment           *string
}

type TaskAction struct {
	BaseModel
	TaskID  string                `gorm:"type:varchar(36);index"`
	UserID  string                `gorm:"type:varchar(36)"`
	User    *User                 `gorm:"foreignKey:UserID"`
	Action  models.TaskActionType `gorm:"type:varchar(32)"`
	Message *string
}
