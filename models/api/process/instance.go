package processapimodels

import (
	"bpm-backend/models"
	apimodels "bpm-backend/models/api"
	dbmodels "bpm-backend/models/db"
	"time"

	"github.com/pkg/errors"
)

type InstanceStartData struct {
	TemplateID    string     `json:"template_id"`
	Name          string     `json:"name"`
	StartDateTime *time.Time `json:"start_date_time"`
}

func (s InstanceStartData) Validate() error {
	if s.TemplateID == "" {
		return errors.New("template id is required")
	}
	return nil
}

type InstanceFilter struct {
	apimodels.Pagination
	Status     models.InstanceStatus `json:"status"`
	TemplateID string                `json:"template_id"`
}

func (f InstanceFilter) Validate() error {
	switch f.Status {
	case "", models.InstanceStatusRunning, models.InstanceStatusCompleted, models.InstanceStatusCancelled:
		return nil
	}
	return errors.Errorf("unknown instance status %v", f.Status)
}

type InstanceView struct {
	ID                string                `json:"id"`
	Name              string                `json:"name"`
	ProcessTemplateID string                `json:"process_template_id"`
	TemplateName      string                `json:"template_name"`
	TemplateRevision  int                   `json:"template_revision"`
	StartedByID       string                `json:"started_by_id"`
	StartedByName     string                `json:"started_by_name"`
	StartDateTime     time.Time             `json:"start_date_time"`
	EndDateTime       *time.Time            `json:"end_date_time"`
	Status            models.InstanceStatus `json:"status"`
}

func InstanceConvert(rec dbmodels.ProcessInstance) InstanceView {
	result := InstanceView{
		ID:                rec.ID,
		Name:              rec.Name,
		ProcessTemplateID: rec.ProcessTemplateID,
		TemplateRevision:  rec.TemplateRevision,
		StartedByID:       rec.StartedByID,
		StartDateTime:     rec.StartDateTime,
		EndDateTime:       rec.EndDateTime,
		Status:            rec.Status,
	}
	if rec.ProcessTemplate != nil {
		result.TemplateName = rec.ProcessTemplate.Name
	}
	if rec.StartedBy != nil {
		result.StartedByName = rec.StartedBy.GetFullName()
	}
	return result
}

type InstanceDetailView struct {
	InstanceView
	Tasks []TaskView `json:"tasks"`
}
