package billing

import (
	"encoding/json"
	"fmt"
)

// EventType discriminates the provider's lifecycle events. The wire values
// follow the provider's dotted naming.
type EventType string

const (
	EventCheckoutCompleted   EventType = "checkout.session.completed"
	EventSubscriptionUpdated EventType = "customer.subscription.updated"
	EventSubscriptionDeleted EventType = "customer.subscription.deleted"
	EventPaymentSucceeded    EventType = "invoice.payment_succeeded"
	EventPaymentFailed       EventType = "invoice.payment_failed"
)

// Envelope is the canonical JSON wrapper every provider event arrives in.
type Envelope struct {
	Type string          `json:"type"`
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// Event is the closed set of verified, typed provider events. Exactly the
// concrete types in this file implement it.
type Event interface {
	EventID() string
	Type() EventType
}

// CheckoutData carries the completed checkout session. User and plan come
// from the session metadata set at checkout creation; status and period
// bounds come from the subscription object attached to the session.
type CheckoutData struct {
	UserID             uint   `json:"user_id"`
	PlanID             string `json:"plan_id"`
	SubscriptionID     string `json:"subscription_id"`
	CustomerID         string `json:"customer_id"`
	Status             string `json:"status"`
	CurrentPeriodStart int64  `json:"current_period_start"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
}

// SubscriptionData carries the provider's current view of a subscription.
type SubscriptionData struct {
	SubscriptionID     string `json:"subscription_id"`
	CustomerID         string `json:"customer_id"`
	PlanID             string `json:"plan_id"`
	Status             string `json:"status"`
	CurrentPeriodStart int64  `json:"current_period_start"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
	CancelAtPeriodEnd  bool   `json:"cancel_at_period_end"`
}

// InvoiceData carries a payment attempt outcome. AmountPaid is set on
// success events, AmountDue on failure events.
type InvoiceData struct {
	CustomerID      string `json:"customer_id"`
	PaymentIntentID string `json:"payment_intent_id"`
	AmountPaid      int64  `json:"amount_paid"`
	AmountDue       int64  `json:"amount_due"`
	Currency        string `json:"currency"`
	Description     string `json:"description"`
}

type CheckoutCompletedEvent struct {
	ID   string
	Data CheckoutData
}

func (e *CheckoutCompletedEvent) EventID() string { return e.ID }
func (e *CheckoutCompletedEvent) Type() EventType { return EventCheckoutCompleted }

type SubscriptionUpdatedEvent struct {
	ID   string
	Data SubscriptionData
}

func (e *SubscriptionUpdatedEvent) EventID() string { return e.ID }
func (e *SubscriptionUpdatedEvent) Type() EventType { return EventSubscriptionUpdated }

type SubscriptionDeletedEvent struct {
	ID   string
	Data SubscriptionData
}

func (e *SubscriptionDeletedEvent) EventID() string { return e.ID }
func (e *SubscriptionDeletedEvent) Type() EventType { return EventSubscriptionDeleted }

type PaymentSucceededEvent struct {
	ID   string
	Data InvoiceData
}

func (e *PaymentSucceededEvent) EventID() string { return e.ID }
func (e *PaymentSucceededEvent) Type() EventType { return EventPaymentSucceeded }

type PaymentFailedEvent struct {
	ID   string
	Data InvoiceData
}

func (e *PaymentFailedEvent) EventID() string { return e.ID }
func (e *PaymentFailedEvent) Type() EventType { return EventPaymentFailed }

// UnrecognizedEvent stands in for event types this system does not consume.
// It is acknowledged without processing so the provider does not retry it.
type UnrecognizedEvent struct {
	ID      string
	RawType string
}

func (e *UnrecognizedEvent) EventID() string { return e.ID }
func (e *UnrecognizedEvent) Type() EventType { return EventType(e.RawType) }

// ParseEvent decodes an envelope into its typed event. Unknown types decode
// to UnrecognizedEvent; a malformed payload for a known type is an error.
func ParseEvent(env *Envelope) (Event, error) {
	switch EventType(env.Type) {
	case EventCheckoutCompleted:
		ev := &CheckoutCompletedEvent{ID: env.ID}
		if err := json.Unmarshal(env.Data, &ev.Data); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		return ev, nil
	case EventSubscriptionUpdated:
		ev := &SubscriptionUpdatedEvent{ID: env.ID}
		if err := json.Unmarshal(env.Data, &ev.Data); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		return ev, nil
	case EventSubscriptionDeleted:
		ev := &SubscriptionDeletedEvent{ID: env.ID}
		if err := json.Unmarshal(env.Data, &ev.Data); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		return ev, nil
	case EventPaymentSucceeded:
		ev := &PaymentSucceededEvent{ID: env.ID}
		if err := json.Unmarshal(env.Data, &ev.Data); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		return ev, nil
	case EventPaymentFailed:
		ev := &PaymentFailedEvent{ID: env.ID}
		if err := json.Unmarshal(env.Data, &ev.Data); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		return ev, nil
	default:
		return &UnrecognizedEvent{ID: env.ID, RawType: env.Type}, nil
	}
}
