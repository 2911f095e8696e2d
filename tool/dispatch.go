package tool

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const defaultCallTimeout = 60 * time.Second

// Observation captures one completed dispatch for observers (telemetry,
// audit). It carries no payload data, only classification and timing.
type Observation struct {
	CallID     string
	Tool       string
	Kind       OutcomeKind
	Message    string
	DurationMS int64
	StartedAt  time.Time
}

// Observer receives one observation per dispatched call.
type Observer interface {
	ObserveDispatch(obs Observation)
}

// DispatcherConfig configures a dispatcher.
type DispatcherConfig struct {
	Catalog *Catalog
	// CallTimeout bounds one backend operation. Zero means the default.
	CallTimeout time.Duration
	Logger      *slog.Logger
	Observers   []Observer
}

// Dispatcher routes validated calls to backend handlers and classifies
// their outcomes. Exactly one handler executes per call; there is no
// fan-out, retry, or fallback.
type Dispatcher struct {
	catalog   *Catalog
	timeout   time.Duration
	logger    *slog.Logger
	observers []Observer
}

// NewDispatcher creates a dispatcher over a catalog.
func NewDispatcher(cfg DispatcherConfig) (*Dispatcher, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("tool: dispatcher catalog is nil")
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Dispatcher{
		catalog:   cfg.Catalog,
		timeout:   cfg.CallTimeout,
		logger:    cfg.Logger,
		observers: cfg.Observers,
	}, nil
}

// Catalog returns the dispatcher's catalog.
func (d *Dispatcher) Catalog() *Catalog {
	return d.catalog
}

// Dispatch validates raw arguments against the named tool's schema, invokes
// its handler, and classifies the result. All failure modes come back as an
// Outcome; Dispatch never panics.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, raw map[string]any) Outcome {
	callID := uuid.NewString()
	started := time.Now()

	def, ok := d.catalog.Get(name)
	if !ok {
		return d.observe(callID, name, started, validationError(fmt.Sprintf("Unknown tool: %s", name)))
	}

	args, err := Validate(def.Schema, raw)
	if err != nil {
		return d.observe(callID, name, started, validationError(fmt.Sprintf("Invalid parameters for %s: %v", name, err)))
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	outcome := d.invoke(callCtx, def, args)
	return d.observe(callID, name, started, outcome)
}

func (d *Dispatcher) invoke(ctx context.Context, def Definition, args Args) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("tool handler panicked", "tool", def.Name, "panic", r)
			outcome = faultOutcome(fmt.Sprintf("An unexpected server error occurred: %v", r))
		}
	}()

	payload, err := def.Handler(ctx, args)
	if err != nil {
		return faultOutcome(fmt.Sprintf("An unexpected server error occurred: %v", err))
	}

	// Backends report recoverable failures in-band with an "error" key.
	if msg, found := domainErrorMessage(payload); found {
		return domainError(msg)
	}
	return successOutcome(payload)
}

func (d *Dispatcher) observe(callID, name string, started time.Time, outcome Outcome) Outcome {
	obs := Observation{
		CallID:     callID,
		Tool:       name,
		Kind:       outcome.Kind,
		Message:    outcome.Message,
		DurationMS: time.Since(started).Milliseconds(),
		StartedAt:  started,
	}
	for _, observer := range d.observers {
		observer.ObserveDispatch(obs)
	}
	if !outcome.OK() {
		d.logger.Debug("tool call failed", "tool", name, "kind", string(outcome.Kind), "message", outcome.Message)
	}
	return outcome
}

func domainErrorMessage(payload map[string]any) (string, bool) {
	raw, ok := payload["error"]
	if !ok {
		return "", false
	}
	if msg, isString := raw.(string); isString {
		return msg, true
	}
	return fmt.Sprintf("%v", raw), true
}
