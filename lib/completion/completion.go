package completion

import (
	bpmstore "bpm-backend/lib/bpm-store"
	"bpm-backend/models"
	dbmodels "bpm-backend/models/db"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// AllMandatoryApproved все обязательные задачи, кроме только что одобренной, в статусе APPROVED.
// Без обязательных задач условие выполнено.
func AllMandatoryApproved(tasks []dbmodels.ProcessTaskAssignment, justApprovedID string) bool {
	for _, task := range tasks {
		if !task.IsMandatory() || task.ID == justApprovedID {
			continue
		}
		if task.Status != models.TaskStatusApproved {
			return false
		}
	}
	return true
}

// Evaluate вызывается внутри транзакции одобрения. Завершает экземпляр и пропускает
// оставшиеся PENDING задачи, если все обязательные задачи одобрены.
// completed true, только если экземпляр перешел в COMPLETED в этом вызове.
func Evaluate(tx bpmstore.Stores, instanceID, justApprovedID string, now time.Time) (completed bool, err error) {
	tasks, err := tx.Tasks.ListByInstance(instanceID)
	if err != nil {
		return false, errors.Wrap(err, "ошибка получения задач экземпляра")
	}
	if !AllMandatoryApproved(tasks, justApprovedID) {
		return false, nil
	}
	completed, err = tx.Instances.Complete(instanceID, now)
	if err != nil {
		return false, errors.Wrap(err, "ошибка завершения экземпляра")
	}
	if !completed {
		// экземпляр уже завершен или отменен, статус не меняется
		return false, nil
	}
	skipped, err := tx.Tasks.SkipPending(instanceID)
	if err != nil {
		return false, errors.Wrap(err, "ошибка пропуска незавершенных задач")
	}
	log.WithField("instance_id", instanceID).
		WithField("skipped", skipped).
		Info("экземпляр процесса завершен")
	return true, nil
}
