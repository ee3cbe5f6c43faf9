package processapimodels

import (
	"bpm-backend/models"
	dbmodels "bpm-backend/models/db"
	"time"
)

type TaskComment struct {
	Comment string `json:"comment"`
}

func (c TaskComment) Validate() error {
	return nil
}

type TaskActionView struct {
	ID        string                `json:"id"`
	UserID    string                `json:"user_id"`
	UserName  string                `json:"user_name"`
	Action    models.TaskActionType `json:"action"`
	Message   *string               `json:"message"`
	CreatedAt time.Time             `json:"created_at"`
}

func TaskActionConvert(rec dbmodels.TaskAction) TaskActionView {
	result := TaskActionView{
		ID:        rec.ID,
		UserID:    rec.UserID,
		Action:    rec.Action,
		Message:   rec.Message,
		CreatedAt: rec.CreatedAt,
	}
	if rec.User != nil {
		result.UserName = rec.User.GetFullName()
	}
	return result
}

type TaskView struct {
	ID                string            `json:"id"`
	ProcessInstanceID string            `json:"process_instance_id"`
	TaskTemplateID    string            `json:"task_template_id"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	Order             int               `json:"order"`
	NeedFile          bool              `json:"need_file"`
	Mandatory         bool              `json:"mandatory"`
	Status            models.TaskStatus `json:"status"`
	PossibleAssignees []string          `json:"possible_assignees"`
	CurrentAssigneeID *string           `json:"current_assignee_id"`
	StartedAt         *time.Time        `json:"started_at"`
	CompletedAt       *time.Time        `json:"completed_at"`
	Comment           *string           `json:"comment"`
	FileURL           *string           `json:"file_url"`
	Actions           []TaskActionView  `json:"actions,omitempty"`
}

func TaskConvert(rec dbmodels.ProcessTaskAssignment) TaskView {
	result := TaskView{
		ID:                rec.ID,
		ProcessInstanceID: rec.ProcessInstanceID,
		TaskTemplateID:    rec.TaskTemplateID,
		Order:             rec.Order,
		Status:            rec.Status,
		PossibleAssignees: rec.AssigneeIDs(),
		CurrentAssigneeID: rec.CurrentAssigneeID,
		StartedAt:         rec.StartedAt,
		CompletedAt:       rec.CompletedAt,
		Comment:           rec.Comment,
		FileURL:           rec.FileURL,
	}
	if rec.TaskTemplate != nil {
		result.Name = rec.TaskTemplate.Name
		result.Description = rec.TaskTemplate.Description
		result.NeedFile = rec.TaskTemplate.NeedFile
		result.Mandatory = rec.TaskTemplate.Mandatory
	}
	return result
}

type UploadResult struct {
	FileURL string `json:"file_url"`
}

// TaskFile файл, загружаемый к задаче
type TaskFile struct {
	Name        string
	ContentType string
	Data        []byte
}
