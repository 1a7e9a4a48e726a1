package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/studyhall-platform/studyhall/internal/consumption"
	jobmetrics "github.com/studyhall-platform/studyhall/internal/jobs"
)

// ConsumptionFlushJob drains dirty watched-seconds counters from redis into
// postgres. Both sides merge by max, so a run racing live progress reports
// is harmless.
type ConsumptionFlushJob struct {
	store   *consumption.Store
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewConsumptionFlushJob constructs the flush job.
func NewConsumptionFlushJob(store *consumption.Store, logger *slog.Logger, metrics *jobmetrics.Metrics) *ConsumptionFlushJob {
	return &ConsumptionFlushJob{store: store, logger: logger, metrics: metrics}
}

// Handle processes TaskConsumptionFlush tasks.
func (j *ConsumptionFlushJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("consumption_flush")
	var payload ConsumptionFlushPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		_ = tracker.End(err)
		return asynq.SkipRetry
	}
	batches := 0
	total := 0
	for {
		flushed, err := j.store.FlushDirty(ctx)
		if err != nil {
			if j.logger != nil {
				j.logger.Error("consumption flush", slog.Any("error", err), slog.Int("flushed", total))
			}
			return tracker.End(err)
		}
		total += flushed
		batches++
		if flushed == 0 {
			break
		}
		if payload.MaxBatches > 0 && batches >= payload.MaxBatches {
			break
		}
	}
	if j.logger != nil && total > 0 {
		j.logger.Info("consumption flush complete", slog.Int("counters", total))
	}
	return tracker.End(nil)
}
