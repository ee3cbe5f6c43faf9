package taskassignmenthandler

import (
	dbmodels "bpm-backend/models/db"
)

// CanAct единое правило доступа к действиям над задачей: администраторы
// и пользователи из списка возможных исполнителей
func CanAct(user *dbmodels.User, task dbmodels.ProcessTaskAssignment) bool {
	if user == nil {
		return false
	}
	return user.Role.IsAdmin() || task.IsPossibleAssignee(user.ID)
}
