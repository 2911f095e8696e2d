package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/petal-labs/toolgate/tool"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "audit.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestObserveDispatchPersistsRecord(t *testing.T) {
	store := newTestStore(t)

	started := time.Now().Add(-time.Second)
	store.ObserveDispatch(tool.Observation{
		CallID:     "call-1",
		Tool:       "fs_read_file",
		Kind:       tool.OutcomeDomainError,
		Message:    "File not found: /missing",
		DurationMS: 12,
		StartedAt:  started,
	})

	records, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}

	rec := records[0]
	if rec.CallID != "call-1" || rec.Tool != "fs_read_file" {
		t.Fatalf("record = %+v", rec)
	}
	if rec.Outcome != tool.OutcomeDomainError {
		t.Fatalf("outcome = %q", rec.Outcome)
	}
	if rec.DurationMS != 12 {
		t.Fatalf("duration = %d", rec.DurationMS)
	}
	if rec.StartedAt.Unix() != started.Unix() {
		t.Fatalf("started = %v, want %v", rec.StartedAt, started)
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	store := newTestStore(t)

	base := time.Now()
	for i, name := range []string{"first", "second", "third"} {
		store.ObserveDispatch(tool.Observation{
			CallID:    name,
			Tool:      name,
			Kind:      tool.OutcomeSuccess,
			StartedAt: base.Add(time.Duration(i) * time.Second),
		})
	}

	records, err := store.Recent(context.Background(), 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].Tool != "third" || records[1].Tool != "second" {
		t.Fatalf("order = %s, %s", records[0].Tool, records[1].Tool)
	}
}
