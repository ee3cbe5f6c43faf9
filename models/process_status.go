package models

import "slices"

type InstanceStatus string

const (
	InstanceStatusRunning   InstanceStatus = "RUNNING"
	InstanceStatusCompleted InstanceStatus = "COMPLETED"
	InstanceStatusCancelled InstanceStatus = "CANCELLED"
)

func (s InstanceStatus) IsFinal() bool {
	return s == InstanceStatusCompleted || s == InstanceStatusCancelled
}

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusApproved   TaskStatus = "APPROVED"
	TaskStatusRejected   TaskStatus = "REJECTED"
	TaskStatusSkipped    TaskStatus = "SKIPPED"
)

// допустимые переходы, SKIPPED выставляется только при завершении процесса
var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusPending:    {TaskStatusInProgress, TaskStatusApproved, TaskStatusRejected, TaskStatusSkipped},
	TaskStatusInProgress: {TaskStatusApproved, TaskStatusRejected},
}

func (s TaskStatus) IsAllowChange(to TaskStatus) bool {
	return slices.Contains(taskTransitions[s], to)
}

func (s TaskStatus) IsTerminal() bool {
	return len(taskTransitions[s]) == 0
}

func (s TaskStatus) IsOpen() bool {
	return s == TaskStatusPending || s == TaskStatusInProgress
}

// SourcesFor статусы, из которых возможен переход в to
func SourcesFor(to TaskStatus) []TaskStatus {
	result := []TaskStatus{}
	for _, from := range []TaskStatus{TaskStatusPending, TaskStatusInProgress} {
		if from.IsAllowChange(to) {
			result = append(result, from)
		}
	}
	return result
}

type TaskActionType string

const (
	TaskActionStart      TaskActionType = "START"
	TaskActionApprove    TaskActionType = "APPROVE"
	TaskActionReject     TaskActionType = "REJECT"
	TaskActionUploadFile TaskActionType = "UPLOAD_FILE"
)

type RuleKind string

const (
	RuleKindApprover         RuleKind = "APPROVER"
	RuleKindNotifyOnStart    RuleKind = "NOTIFY_ON_START"
	RuleKindNotifyOnComplete RuleKind = "NOTIFY_ON_COMPLETE"
)

// RuleSet правило выбора пользователей: явные должности плюс флаги относительно
// пользователя, выполняющего действие
type RuleSet struct {
	PositionIDs       []string
	SameDepartment    bool
	DepartmentManager bool
}

func (r RuleSet) IsEmpty() bool {
	return len(r.PositionIDs) == 0 && !r.SameDepartment && !r.DepartmentManager
}
