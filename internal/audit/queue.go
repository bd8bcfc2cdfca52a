package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue carrying audit tasks.
	QueueDefault = "default"
	// TaskTypeRecord is the task type for deferred audit appends.
	TaskTypeRecord = "audit:record"
)

// NewRecordTask constructs an asynq task carrying the entry.
func NewRecordTask(entry Entry) (*asynq.Task, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeRecord, data, asynq.Queue(QueueDefault)), nil
}

// HandleRecordTask processes TaskTypeRecord tasks in the worker. Malformed
// payloads are dropped; append failures are retried by asynq.
func (r *Recorder) HandleRecordTask(ctx context.Context, t *asynq.Task) error {
	var entry Entry
	if err := json.Unmarshal(t.Payload(), &entry); err != nil {
		r.logger.Error("audit task payload malformed", slog.Any("error", err))
		return asynq.SkipRetry
	}
	return r.Append(ctx, entry)
}
