package billing

import (
	"context"

	"streaming-api/pkg/logging"
)

type handlerFunc func(ctx context.Context, ev Event) error

// Dispatcher routes one verified event to exactly one handler. The handler
// map is closed at construction; adding an event kind means adding a typed
// event, a reconciler method, and a map entry, all checked at compile time.
type Dispatcher struct {
	handlers map[EventType]handlerFunc
}

// NewDispatcher wires the reconciler's handlers to their event types.
func NewDispatcher(rec *Reconciler) *Dispatcher {
	return &Dispatcher{
		handlers: map[EventType]handlerFunc{
			EventCheckoutCompleted: func(ctx context.Context, ev Event) error {
				return rec.HandleCheckoutCompleted(ctx, ev.(*CheckoutCompletedEvent))
			},
			EventSubscriptionUpdated: func(ctx context.Context, ev Event) error {
				return rec.HandleSubscriptionUpdated(ctx, ev.(*SubscriptionUpdatedEvent))
			},
			EventSubscriptionDeleted: func(ctx context.Context, ev Event) error {
				return rec.HandleSubscriptionDeleted(ctx, ev.(*SubscriptionDeletedEvent))
			},
			EventPaymentSucceeded: func(ctx context.Context, ev Event) error {
				return rec.HandlePaymentSucceeded(ctx, ev.(*PaymentSucceededEvent))
			},
			EventPaymentFailed: func(ctx context.Context, ev Event) error {
				return rec.HandlePaymentFailed(ctx, ev.(*PaymentFailedEvent))
			},
		},
	}
}

// Dispatch invokes the handler for the event's type. Unrecognized events are
// acknowledged as no-ops so the provider does not retry them. Handler errors
// propagate unchanged; the caller signals failure upstream and the
// provider's at-least-once delivery is the retry mechanism.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	if unknown, ok := ev.(*UnrecognizedEvent); ok {
		logging.Infof("Acknowledging unrecognized billing event - type: %s, id: %s", unknown.RawType, unknown.ID)
		return nil
	}

	handler, ok := d.handlers[ev.Type()]
	if !ok {
		logging.Infof("No handler registered for billing event - type: %s, id: %s", ev.Type(), ev.EventID())
		return nil
	}

	return handler(ctx, ev)
}
