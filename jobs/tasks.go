package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskConsumptionFlush persists hot watched-seconds counters to postgres.
	TaskConsumptionFlush = "consumption:flush"
)

// ConsumptionFlushPayload bounds one flush run.
type ConsumptionFlushPayload struct {
	// MaxBatches caps how many dirty batches a single run drains; zero
	// means drain until the dirty set is empty.
	MaxBatches int `json:"max_batches"`
}

// NewConsumptionFlushTask constructs an Asynq task.
func NewConsumptionFlushTask(payload ConsumptionFlushPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskConsumptionFlush, data), nil
}
