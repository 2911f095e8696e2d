package tool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func newTestDispatcher(t *testing.T, defs []Definition, opts ...func(*DispatcherConfig)) *Dispatcher {
	t.Helper()
	catalog, err := NewCatalog(defs)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	cfg := DispatcherConfig{Catalog: catalog}
	for _, opt := range opts {
		opt(&cfg)
	}
	dispatcher, err := NewDispatcher(cfg)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	return dispatcher
}

func TestDispatchUnknownTool(t *testing.T) {
	d := newTestDispatcher(t, []Definition{{Name: "known", Handler: noopHandler}})

	outcome := d.Dispatch(context.Background(), "nope", nil)
	if outcome.Kind != OutcomeValidationError {
		t.Fatalf("Kind = %q, want %q", outcome.Kind, OutcomeValidationError)
	}
	if outcome.Message != "Unknown tool: nope" {
		t.Fatalf("Message = %q", outcome.Message)
	}
}

func TestDispatchValidationFailureNamesTool(t *testing.T) {
	d := newTestDispatcher(t, []Definition{{
		Name:    "fs_read_file",
		Schema:  Schema{Fields: []FieldSpec{StringField("file_path", "Path")}},
		Handler: noopHandler,
	}})

	outcome := d.Dispatch(context.Background(), "fs_read_file", map[string]any{})
	if outcome.Kind != OutcomeValidationError {
		t.Fatalf("Kind = %q, want %q", outcome.Kind, OutcomeValidationError)
	}
	want := `Invalid parameters for fs_read_file: missing required field "file_path"`
	if outcome.Message != want {
		t.Fatalf("Message = %q, want %q", outcome.Message, want)
	}
}

func TestDispatchClassifiesDomainError(t *testing.T) {
	d := newTestDispatcher(t, []Definition{{
		Name: "weather_get_current",
		Handler: func(ctx context.Context, args Args) (map[string]any, error) {
			return map[string]any{"error": "Location 'Nowhereville' not found."}, nil
		},
	}})

	outcome := d.Dispatch(context.Background(), "weather_get_current", nil)
	if outcome.Kind != OutcomeDomainError {
		t.Fatalf("Kind = %q, want %q", outcome.Kind, OutcomeDomainError)
	}
	if outcome.Message != "Location 'Nowhereville' not found." {
		t.Fatalf("Message = %q", outcome.Message)
	}
}

func TestDispatchClassifiesHandlerError(t *testing.T) {
	d := newTestDispatcher(t, []Definition{{
		Name: "boom",
		Handler: func(ctx context.Context, args Args) (map[string]any, error) {
			return nil, errors.New("backend exploded")
		},
	}})

	outcome := d.Dispatch(context.Background(), "boom", nil)
	if outcome.Kind != OutcomeFault {
		t.Fatalf("Kind = %q, want %q", outcome.Kind, OutcomeFault)
	}
	if outcome.Message != "An unexpected server error occurred: backend exploded" {
		t.Fatalf("Message = %q", outcome.Message)
	}
}

func TestDispatchRecoversPanic(t *testing.T) {
	d := newTestDispatcher(t, []Definition{{
		Name: "panics",
		Handler: func(ctx context.Context, args Args) (map[string]any, error) {
			panic("nil map write")
		},
	}})

	outcome := d.Dispatch(context.Background(), "panics", nil)
	if outcome.Kind != OutcomeFault {
		t.Fatalf("Kind = %q, want %q", outcome.Kind, OutcomeFault)
	}
	if outcome.Message != "An unexpected server error occurred: nil map write" {
		t.Fatalf("Message = %q", outcome.Message)
	}
}

func TestDispatchSuccess(t *testing.T) {
	d := newTestDispatcher(t, []Definition{{
		Name: "echo",
		Schema: Schema{Fields: []FieldSpec{
			StringField("value", "Value to echo"),
		}},
		Handler: func(ctx context.Context, args Args) (map[string]any, error) {
			return map[string]any{"value": args.String("value")}, nil
		},
	}})

	outcome := d.Dispatch(context.Background(), "echo", map[string]any{"value": "hi"})
	if !outcome.OK() {
		t.Fatalf("outcome = %+v, want success", outcome)
	}
	if outcome.Payload["value"] != "hi" {
		t.Fatalf("Payload = %v", outcome.Payload)
	}
}

func TestDispatchTimeoutCancelsHandler(t *testing.T) {
	d := newTestDispatcher(t, []Definition{{
		Name: "slow",
		Handler: func(ctx context.Context, args Args) (map[string]any, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(5 * time.Second):
				return map[string]any{}, nil
			}
		},
	}}, func(cfg *DispatcherConfig) {
		cfg.CallTimeout = 20 * time.Millisecond
	})

	outcome := d.Dispatch(context.Background(), "slow", nil)
	if outcome.Kind != OutcomeFault {
		t.Fatalf("Kind = %q, want %q", outcome.Kind, OutcomeFault)
	}
}

type recordingObserver struct {
	mu           sync.Mutex
	observations []Observation
}

func (r *recordingObserver) ObserveDispatch(obs Observation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observations = append(r.observations, obs)
}

func TestDispatchNotifiesObservers(t *testing.T) {
	observer := &recordingObserver{}
	d := newTestDispatcher(t, []Definition{{Name: "ok", Handler: noopHandler}}, func(cfg *DispatcherConfig) {
		cfg.Observers = []Observer{observer}
	})

	d.Dispatch(context.Background(), "ok", nil)
	d.Dispatch(context.Background(), "missing", nil)

	observer.mu.Lock()
	defer observer.mu.Unlock()
	if len(observer.observations) != 2 {
		t.Fatalf("observations = %d, want 2", len(observer.observations))
	}
	if observer.observations[0].Kind != OutcomeSuccess {
		t.Fatalf("first observation kind = %q", observer.observations[0].Kind)
	}
	if observer.observations[1].Kind != OutcomeValidationError {
		t.Fatalf("second observation kind = %q", observer.observations[1].Kind)
	}
	if observer.observations[0].CallID == observer.observations[1].CallID {
		t.Fatal("call IDs are not unique")
	}
}

func TestDispatchConcurrentCallsAreIndependent(t *testing.T) {
	d := newTestDispatcher(t, []Definition{{
		Name: "echo",
		Schema: Schema{Fields: []FieldSpec{
			StringField("value", "Value to echo"),
		}},
		Handler: func(ctx context.Context, args Args) (map[string]any, error) {
			return map[string]any{"value": args.String("value")}, nil
		},
	}})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			value := fmt.Sprintf("call-%d", i)
			outcome := d.Dispatch(context.Background(), "echo", map[string]any{"value": value})
			if !outcome.OK() {
				t.Errorf("call %d failed: %+v", i, outcome)
				return
			}
			if outcome.Payload["value"] != value {
				t.Errorf("call %d payload = %v, want %q", i, outcome.Payload, value)
			}
		}(i)
	}
	wg.Wait()
}
