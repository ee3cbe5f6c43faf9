package models

type NotifyEventKind string

const (
	NotifyTaskAssigned     NotifyEventKind = "TASK_ASSIGNED"
	NotifyTaskStarted      NotifyEventKind = "TASK_STARTED"
	NotifyTaskApproved     NotifyEventKind = "TASK_APPROVED"
	NotifyTaskRejected     NotifyEventKind = "TASK_REJECTED"
	NotifyProcessCompleted NotifyEventKind = "PROCESS_COMPLETED"
)

type NotifyRecipient struct {
	UserID string
	Email  string
	Name   string
}

// NotifyEvent событие для доставки: кому и о чем сообщить решает движок,
// как доставить - нотификатор
type NotifyEvent struct {
	Kind        NotifyEventKind
	Recipients  []NotifyRecipient
	InstanceID  string
	ProcessName string
	TaskName    string
	ActorName   string
	Comment     string
}
