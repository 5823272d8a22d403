package messaging

import (
	"context"
	"time"

	"github.com/alem-hub/studyhub/internal/domain/shared"
	"github.com/alem-hub/studyhub/internal/infrastructure/metrics"
	"github.com/alem-hub/studyhub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REDIS RELAY
// ══════════════════════════════════════════════════════════════════════════════

// ChannelPublisher publishes a message on a named pub/sub channel.
// *redis.Cache satisfies it.
type ChannelPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// Envelope is the wire form of a relayed event.
type Envelope struct {
	Type        shared.EventType       `json:"type"`
	AggregateID string                 `json:"aggregate_id"`
	OccurredAt  time.Time              `json:"occurred_at"`
	Payload     map[string]interface{} `json:"payload"`
}

// NewEnvelope wraps event for the wire.
func NewEnvelope(event shared.Event) Envelope {
	return Envelope{
		Type:        event.EventType(),
		AggregateID: event.AggregateID(),
		OccurredAt:  event.OccurredAt(),
		Payload:     event.Payload(),
	}
}

// RelayHandler forwards every event to channelFor(type).
func RelayHandler(pub ChannelPublisher, channelFor func(string) string, timeout time.Duration) shared.EventHandler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return func(event shared.Event) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return pub.Publish(ctx, channelFor(string(event.EventType())), NewEnvelope(event))
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// AUDIT LOG
// ══════════════════════════════════════════════════════════════════════════════

// AuditHandler writes one structured line per event.
func AuditHandler(log *logger.Logger) shared.EventHandler {
	log = log.Named("audit")
	return func(event shared.Event) error {
		log.Info("domain event",
			logger.String("event_type", string(event.EventType())),
			logger.String("aggregate_id", event.AggregateID()),
			logger.Time("occurred_at", event.OccurredAt()),
			logger.Any("payload", event.Payload()),
		)
		return nil
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// LEDGER METRICS
// ══════════════════════════════════════════════════════════════════════════════

// LedgerMetricsHandler feeds credit, transfer and streak events into metrics.
func LedgerMetricsHandler() shared.EventHandler {
	return func(event shared.Event) error {
		switch e := event.(type) {
		case shared.TokensCreditedEvent:
			metrics.RecordCredit(e.Reason, e.Amount)
		case shared.TokensTransferredEvent:
			metrics.RecordTransfer(e.Amount)
		case shared.StreakUpdatedEvent:
			metrics.RecordStreak(e.Reset, e.BonusEarned > 0)
		}
		return nil
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// STATS CACHE INVALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// StatsInvalidator drops cached platform totals.
type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// countedEvents change at least one platform total.
var countedEvents = map[shared.EventType]bool{
	shared.EventUserRegistered:   true,
	shared.EventGroupCreated:     true,
	shared.EventSessionCreated:   true,
	shared.EventResourceUploaded: true,
	shared.EventTokensCredited:   true,
}

// StatsInvalidationHandler invalidates cached stats when a total changes.
func StatsInvalidationHandler(inv StatsInvalidator) shared.EventHandler {
	return func(event shared.Event) error {
		if !countedEvents[event.EventType()] {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return inv.Invalidate(ctx)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// WIRING
// ══════════════════════════════════════════════════════════════════════════════

// Subscribers bundles the optional subscribers installed by Wire.
type Subscribers struct {
	Logger  *logger.Logger
	Relay   ChannelPublisher
	Channel func(string) string
	Stats   StatsInvalidator
}

// Wire registers the standard subscribers on bus. Nil dependencies are skipped.
func Wire(bus shared.EventSubscriber, s Subscribers) error {
	if err := bus.SubscribeAll(LedgerMetricsHandler()); err != nil {
		return err
	}
	if s.Logger != nil {
		if err := bus.SubscribeAll(AuditHandler(s.Logger)); err != nil {
			return err
		}
	}
	if s.Relay != nil && s.Channel != nil {
		if err := bus.SubscribeAll(RelayHandler(s.Relay, s.Channel, 0)); err != nil {
			return err
		}
	}
	if s.Stats != nil {
		if err := bus.SubscribeAll(StatsInvalidationHandler(s.Stats)); err != nil {
			return err
		}
	}
	return nil
}
