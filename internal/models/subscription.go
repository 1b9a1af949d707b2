package models

import (
	"time"
)

// Subscription status values pushed by the billing provider.
const (
	SubscriptionStatusTrialing = "trialing"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription stores a user's billing relationship as last reported by the
// provider. Rows are never deleted; cancellation is a status transition so
// history stays joinable against the payment ledger. The row with the newest
// created_at per user is the one authorization reads.
type Subscription struct {
	BaseModel

	UserID uint `json:"user_id" gorm:"not null;index"`

	// Provider subscription reference, the idempotency key for all
	// lifecycle events targeting this row.
	ExternalSubscriptionID string `json:"external_subscription_id" gorm:"not null;size:100;uniqueIndex"`

	PlanID string `json:"plan_id" gorm:"not null;size:50"`
	Status string `json:"status" gorm:"not null;size:20;index"`

	CurrentPeriodStart time.Time `json:"current_period_start"`
	CurrentPeriodEnd   time.Time `json:"current_period_end" gorm:"index"`
	CancelAtPeriodEnd  bool      `json:"cancel_at_period_end"`
}
