package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultSuccess = "success"
	ResultFail    = "fail"
)

var (
	taskTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bpm_task_transitions_total",
			Help: "Task state machine operations by action and result",
		},
		[]string{"action", "result"},
	)
	instancesStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bpm_instances_started_total",
			Help: "Process instances started",
		},
	)
	instancesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bpm_instances_completed_total",
			Help: "Process instances completed",
		},
	)
	notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bpm_notifications_total",
			Help: "Notification deliveries by channel and result",
		},
		[]string{"channel", "result"},
	)
)

func TaskTransition(action string, err error) {
	taskTransitions.WithLabelValues(action, result(err)).Inc()
}

func InstanceStarted() {
	instancesStarted.Inc()
}

func InstanceCompleted() {
	instancesCompleted.Inc()
}

func Notification(channel string, err error) {
	notifications.WithLabelValues(channel, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return ResultFail
	}
	return ResultSuccess
}
