package ports

import "time"

// MetricsCollector records orchestration metrics
type MetricsCollector interface {
	RecordPlan(outcome string, duration time.Duration)
	RecordSubTask(task, status string, duration time.Duration)
	RecordCacheLookup(result string)
	RecordCacheWrite(status string)
	RecordWorkerPoolStatus(idle, busy int)
}
