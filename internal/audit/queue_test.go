package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
)

func TestNewRecordTaskRoundTrip(t *testing.T) {
	entry := Entry{ActorID: 1, Action: "period.close", Kind: "financial_period", ResourceID: "2026-07"}
	task, err := NewRecordTask(entry)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TaskTypeRecord {
		t.Fatalf("unexpected task type %s", task.Type())
	}
	var decoded Entry
	if err := json.Unmarshal(task.Payload(), &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.Action != entry.Action || decoded.ResourceID != entry.ResourceID {
		t.Fatalf("payload mismatch: %+v", decoded)
	}
}

func TestHandleRecordTaskSkipsMalformedPayload(t *testing.T) {
	recorder := NewRecorder(nil, nil, nil)
	task := asynq.NewTask(TaskTypeRecord, []byte("{not json"))

	err := recorder.HandleRecordTask(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("malformed payload must skip retry, got %v", err)
	}
}
