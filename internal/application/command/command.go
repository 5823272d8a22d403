// Package command contains write operations (CQRS - Commands).
//
// Every handler follows the same shape: validate the command, lock the keys it
// mutates, run one unit of work, then publish the collected domain events once
// the unit of work has committed.
package command

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/alem-hub/studyhub/internal/domain/ledger"
	"github.com/alem-hub/studyhub/internal/domain/platform"
	"github.com/alem-hub/studyhub/internal/domain/shared"
	"github.com/alem-hub/studyhub/pkg/logger"
	"github.com/alem-hub/studyhub/pkg/timeutil"
)

var tracer = otel.Tracer("github.com/alem-hub/studyhub/internal/application/command")

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Deps are the collaborators shared by all command handlers.
type Deps struct {
	Store  platform.Store
	Locker platform.Locker
	Events shared.EventPublisher
	Clock  timeutil.Clock
	Logger *logger.Logger

	// NewID generates entity IDs. Defaults to NewID.
	NewID func(prefix string) string

	// Observe is called once per handled command, after commit or failure.
	Observe func(operation string, duration time.Duration, err error)
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = timeutil.SystemClock{}
	}
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	if d.NewID == nil {
		d.NewID = NewID
	}
	if d.Events == nil {
		d.Events = discard{}
	}
	return d
}

// NewID returns prefix followed by a time-ordered UUID, so IDs sort by
// creation time in key order.
func NewID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return prefix + id.String()
}

type discard struct{}

func (discard) Publish(shared.Event) error { return nil }

// ══════════════════════════════════════════════════════════════════════════════
// UNIT OF WORK RUNNER
// ══════════════════════════════════════════════════════════════════════════════

// work mutates state through r and returns the events to publish on commit.
// It may run more than once when the store retries a conflict, so it must
// not keep state between attempts.
type work func(ctx context.Context, r platform.Repositories) ([]shared.Event, error)

// run executes fn under the given locks inside one unit of work.
func (d Deps) run(ctx context.Context, operation string, caller shared.Identity, keys []string, fn work) (err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "command."+operation)
	span.SetAttributes(attribute.String("studyhub.caller", caller.String()))
	log := d.Logger.With(logger.Operation(operation), logger.Identity(caller.String()))

	defer func() {
		elapsed := time.Since(start)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			log.Debug("command rejected", logger.Latency(elapsed), logger.Err(err))
		} else {
			log.Debug("command committed", logger.Latency(elapsed))
		}
		span.End()
		if d.Observe != nil {
			d.Observe(operation, elapsed, err)
		}
	}()

	if d.Locker != nil && len(keys) > 0 {
		unlock, lerr := d.Locker.Lock(ctx, keys...)
		if lerr != nil {
			return lerr
		}
		defer unlock()
	}

	var events []shared.Event
	err = d.Store.Update(ctx, func(r platform.Repositories) error {
		var werr error
		events, werr = fn(ctx, r)
		return werr
	})
	if err != nil {
		return err
	}

	for _, e := range events {
		if perr := d.Events.Publish(e); perr != nil {
			log.Warn("publish event failed",
				logger.String("event_type", string(e.EventType())), logger.Err(perr))
		}
	}
	return nil
}

// credit adds a reward through the ledger and returns the credited event.
func credit(ctx context.Context, r platform.Repositories, id shared.Identity, amount uint64, reason string, at time.Time) (uint64, shared.Event, error) {
	bal, err := ledger.New(r.Balances()).Credit(ctx, id, amount)
	if err != nil {
		return 0, nil, err
	}
	return bal, shared.NewTokensCreditedEvent(id, amount, bal, reason, at), nil
}

// requireUser fails with ErrUserNotFound unless id is registered.
func requireUser(ctx context.Context, r platform.Repositories, id shared.Identity) error {
	ok, err := r.Users().Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrUserNotFound
	}
	return nil
}
