package authservice

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/MrEthical07/authservice/internal/flows"
	"github.com/MrEthical07/authservice/internal/logging"
	"github.com/MrEthical07/authservice/password"
)

// Engine runs the authentication operations. It is built once by
// Builder.Build and is safe for concurrent use.
type Engine struct {
	config  Config
	flow    flows.Service
	pool    *password.Pool
	metrics *Metrics
	log     logging.Logger
	closed  atomic.Bool
}

// Close stops the password hashing workers. Operations called afterwards
// fail with ErrEngineNotReady. Backends passed to the builder are not closed.
func (e *Engine) Close() {
	if e == nil || e.closed.Swap(true) {
		return
	}
	if e.pool != nil {
		e.pool.Close()
	}
}

// Config returns a copy of the configuration the engine was built with.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

// MetricsSnapshot returns current counters. It is empty when metrics are
// disabled.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}, Histograms: map[MetricID][]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) ready() error {
	if e == nil || e.closed.Load() || !e.flow.Initialized() {
		return fmt.Errorf("%w: %w", ErrUnexpected, ErrEngineNotReady)
	}
	return nil
}

// failure maps a flow outcome onto the error taxonomy. Infrastructure faults
// are logged with their full chain; everything else only leaves a reason tag.
func (e *Engine) failure(ctx context.Context, op string, o flows.Outcome, args ...any) error {
	kind := kindOf(o.Failure)
	args = append(args, "op", op, "reason", o.Reason)

	if kind == ErrUnexpected {
		e.metrics.Inc(MetricUnexpectedError)
		e.log.Error(ctx, "operation failed", append(args, "error", o.Err)...)
	} else {
		e.log.Debug(ctx, "operation rejected", args...)
	}

	if o.Err == nil {
		return kind
	}
	return fmt.Errorf("%w: %w", kind, o.Err)
}

func kindOf(f flows.Failure) error {
	switch f {
	case flows.FailureInvalidInput:
		return ErrValidation
	case flows.FailureConflict:
		return ErrConflict
	case flows.FailureUnauthorized:
		return ErrUnauthorized
	default:
		return ErrUnexpected
	}
}
