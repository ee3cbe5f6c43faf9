package taskassignmentstore

import (
	"bpm-backend/models"
	dbmodels "bpm-backend/models/db"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.ProcessTaskAssignment) (id string, err error)
	GetByID(id string) (*dbmodels.ProcessTaskAssignment, error)
	ListByInstance(instanceID string) ([]dbmodels.ProcessTaskAssignment, error)
	Transition(id string, from []models.TaskStatus, upd dbmodels.TaskTransition) (bool, error)
	SetFileURL(id string, from []models.TaskStatus, fileURL string) (bool, error)
	SkipPending(instanceID string) (int64, error)
	ListOpenForUser(userID string) ([]dbmodels.ProcessTaskAssignment, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.ProcessTaskAssignment) (id string, err error) {
	rec.InitID()
	err = i.db.
		Omit("TaskTemplate", "CurrentAssignee", "PossibleAssignees").
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	if len(rec.PossibleAssignees) == 0 {
		return rec.ID, nil
	}
	for idx := range rec.PossibleAssignees {
		rec.PossibleAssignees[idx].TaskID = rec.ID
	}
	err = i.db.Create(&rec.PossibleAssignees).Error
	if err != nil {
		return "", errors.Wrap(err, "ошибка сохранения исполнителей задачи")
	}
	return rec.ID, nil
}

func (i impl) GetByID(id string) (*dbmodels.ProcessTaskAssignment, error) {
	rec := dbmodels.ProcessTaskAssignment{}
	err := i.db.
		Where("id = ?", id).
		Preload("TaskTemplate").
		Preload("PossibleAssignees").
		Preload("CurrentAssignee").
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

func (i impl) ListByInstance(instanceID string) ([]dbmodels.ProcessTaskAssignment, error) {
	list := []dbmodels.ProcessTaskAssignment{}
	err := i.db.
		Where("process_instance_id = ?", instanceID).
		Preload("TaskTemplate").
		Preload("PossibleAssignees").
		Preload("CurrentAssignee").
		Order("task_order").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Transition меняет статус, только если текущий статус входит в from
func (i impl) Transition(id string, from []models.TaskStatus, upd dbmodels.TaskTransition) (bool, error) {
	updMap := map[string]interface{}{
		"status": upd.Status,
	}
	if upd.CurrentAssigneeID != nil {
		updMap["current_assignee_id"] = *upd.CurrentAssigneeID
	}
	if upd.StartedAt != nil {
		updMap["started_at"] = *upd.StartedAt
	}
	if upd.CompletedAt != nil {
		updMap["completed_at"] = *upd.CompletedAt
	}
	if upd.Comment != nil {
		updMap["comment"] = *upd.Comment
	}
	tx := i.db.
		Model(&dbmodels.ProcessTaskAssignment{}).
		Where("id = ?", id).
		Where("status = ANY(?)", statusArray(from)).
		Updates(updMap)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (i impl) SetFileURL(id string, from []models.TaskStatus, fileURL string) (bool, error) {
	tx := i.db.
		Model(&dbmodels.ProcessTaskAssignment{}).
		Where("id = ?", id).
		Where("status = ANY(?)", statusArray(from)).
		Update("file_url", fileURL)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (i impl) SkipPending(instanceID string) (int64, error) {
	tx := i.db.
		Model(&dbmodels.ProcessTaskAssignment{}).
		Where("process_instance_id = ?", instanceID).
		Where("status = ?", models.TaskStatusPending).
		Update("status", models.TaskStatusSkipped)
	return tx.RowsAffected, tx.Error
}

// ListOpenForUser незавершенные задачи, где пользователь среди возможных исполнителей
func (i impl) ListOpenForUser(userID string) ([]dbmodels.ProcessTaskAssignment, error) {
	list := []dbmodels.ProcessTaskAssignment{}
	err := i.db.
		Joins("join task_assignees on task_assignees.task_id = process_task_assignments.id").
		Where("task_assignees.user_id = ?", userID).
		Where("process_task_assignments.status = ANY(?)",
			statusArray([]models.TaskStatus{models.TaskStatusPending, models.TaskStatusInProgress})).
		Preload("TaskTemplate").
		Preload("PossibleAssignees").
		Preload("CurrentAssignee").
		Order("process_task_assignments.created_at, process_task_assignments.task_order").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func statusArray(list []models.TaskStatus) pq.StringArray {
	result := make(pq.StringArray, 0, len(list))
	for _, status := range list {
		result = append(result, string(status))
	}
	return result
}
