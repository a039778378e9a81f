package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		workerQueueDepth,
		workerInFlight,
		workerTasksTotal,
		workerTaskDuration,
	)
}

var (
	workerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Tasks waiting for a worker.",
		},
	)

	workerInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_in_flight",
			Help: "Tasks currently executing.",
		},
	)

	// result: ok|error|panic|rejected
	workerTasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_tasks_total",
			Help: "Background tasks by task name and result.",
		},
		[]string{"task", "result"},
	)

	workerTaskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "worker_task_duration_seconds",
			Help:    "Background task run time.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"task"},
	)
)

func SetQueueDepth(n int) { workerQueueDepth.Set(float64(n)) }

func SetInFlight(n int64) { workerInFlight.Set(float64(n)) }

func IncTask(task, result string) {
	workerTasksTotal.WithLabelValues(norm(task), norm(result)).Inc()
}

func ObserveTask(task string, d time.Duration) {
	workerTaskDuration.WithLabelValues(norm(task)).Observe(d.Seconds())
}
