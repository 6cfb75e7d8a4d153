package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestEnsureBatchIDIsStable(t *testing.T) {
	ctx, id := EnsureBatchID(context.Background())
	if id == "" {
		t.Fatalf("expected a batch id")
	}
	ctx2, id2 := EnsureBatchID(ctx)
	if id2 != id {
		t.Fatalf("EnsureBatchID replaced existing id: %q -> %q", id, id2)
	}
	if BatchIDFromContext(ctx2) != id {
		t.Fatalf("BatchIDFromContext = %q, want %q", BatchIDFromContext(ctx2), id)
	}
}

func TestWithBatchLoggerAnnotatesRecords(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: "debug", Format: "json", Output: &buf})

	ctx, log := WithBatchLogger(context.Background(), base)
	log.Warn(ctx, "record dropped", Err(errors.New("bad field")), Int("line", 4))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["batch_id"] != BatchIDFromContext(ctx) {
		t.Fatalf("batch_id = %v, want %q", entry["batch_id"], BatchIDFromContext(ctx))
	}
	if entry["error"] != "bad field" {
		t.Fatalf("error = %v, want %q", entry["error"], "bad field")
	}
	if entry["level"] != "WARN" {
		t.Fatalf("level = %v, want WARN", entry["level"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "error", Output: &buf})
	log.Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("info record written at error level: %q", buf.String())
	}
}

func TestNoopWithNilBase(t *testing.T) {
	ctx, log := WithBatchLogger(nil, nil)
	if ctx == nil || log == nil {
		t.Fatalf("WithBatchLogger(nil, nil) returned nil values")
	}
	log.Info(ctx, "dropped")
}
