package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"streaming-api/internal/models"
	"streaming-api/pkg/logging"

	"gorm.io/gorm"
)

// PaymentNotifier is notified after a failed payment has been recorded for a
// resolvable user. Implementations must be safe to call from a goroutine;
// delivery is best effort and never affects event processing.
type PaymentNotifier interface {
	NotifyPaymentFailed(user *models.User, record *models.PaymentRecord)
}

// Reconciler applies verified provider events to the local stores. Every
// handler is an idempotent upsert keyed by the event's external id, so
// provider redelivery converges to the same stored state.
//
// Events carry no sequence number. A SubscriptionUpdated delivered out of
// order relative to a later event for the same subscription overwrites the
// newer state with the older payload; this is a known limitation of the
// provider contract and is not reordered or gated here.
type Reconciler struct {
	subs     *SubscriptionStore
	ledger   *LedgerStore
	users    *UserStore
	notifier PaymentNotifier
}

// NewReconciler builds a reconciler over the injected stores. notifier may
// be nil when payment notifications are not configured.
func NewReconciler(subs *SubscriptionStore, ledger *LedgerStore, users *UserStore, notifier PaymentNotifier) *Reconciler {
	return &Reconciler{
		subs:     subs,
		ledger:   ledger,
		users:    users,
		notifier: notifier,
	}
}

// HandleCheckoutCompleted creates the subscription row for a completed
// checkout. Redelivery overwrites the row to the payload's values.
func (r *Reconciler) HandleCheckoutCompleted(ctx context.Context, ev *CheckoutCompletedEvent) error {
	data := ev.Data
	if data.SubscriptionID == "" {
		return fmt.Errorf("checkout event %s has no subscription id", ev.ID)
	}
	if data.UserID == 0 {
		return fmt.Errorf("checkout event %s has no user id", ev.ID)
	}

	status := data.Status
	if status == "" {
		status = models.SubscriptionStatusActive
	}

	sub := &models.Subscription{
		UserID:                 data.UserID,
		ExternalSubscriptionID: data.SubscriptionID,
		PlanID:                 normalizePlanID(data.PlanID),
		Status:                 status,
		CurrentPeriodStart:     time.Unix(data.CurrentPeriodStart, 0),
		CurrentPeriodEnd:       time.Unix(data.CurrentPeriodEnd, 0),
	}

	if err := r.subs.Upsert(ctx, sub); err != nil {
		return err
	}

	logging.Infof("Subscription created - user: %d, subscription: %s, plan: %s", data.UserID, data.SubscriptionID, sub.PlanID)
	return nil
}

// HandleSubscriptionUpdated overwrites status, period bounds and the
// cancellation flag of the row matching the event's subscription id. When no
// row exists yet (the update raced ahead of the checkout event), the
// payload's customer reference is resolved and a row is created instead; an
// unresolvable customer makes the event a logged no-op.
func (r *Reconciler) HandleSubscriptionUpdated(ctx context.Context, ev *SubscriptionUpdatedEvent) error {
	data := ev.Data
	if data.SubscriptionID == "" {
		return fmt.Errorf("subscription update event %s has no subscription id", ev.ID)
	}

	rows, err := r.subs.ApplyUpdate(ctx, data.SubscriptionID, data.Status,
		time.Unix(data.CurrentPeriodStart, 0), time.Unix(data.CurrentPeriodEnd, 0), data.CancelAtPeriodEnd)
	if err != nil {
		return err
	}
	if rows > 0 {
		logging.Infof("Subscription updated - subscription: %s, status: %s", data.SubscriptionID, data.Status)
		return nil
	}

	user, err := r.users.ByExternalCustomerID(ctx, data.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logging.Infof("Skipping subscription update for unknown customer - subscription: %s, customer: %s", data.SubscriptionID, data.CustomerID)
			return nil
		}
		return fmt.Errorf("resolve customer %s: %w", data.CustomerID, err)
	}

	sub := &models.Subscription{
		UserID:                 user.ID,
		ExternalSubscriptionID: data.SubscriptionID,
		PlanID:                 normalizePlanID(data.PlanID),
		Status:                 data.Status,
		CurrentPeriodStart:     time.Unix(data.CurrentPeriodStart, 0),
		CurrentPeriodEnd:       time.Unix(data.CurrentPeriodEnd, 0),
		CancelAtPeriodEnd:      data.CancelAtPeriodEnd,
	}
	if err := r.subs.Upsert(ctx, sub); err != nil {
		return err
	}

	logging.Infof("Subscription created from update event - user: %d, subscription: %s", user.ID, data.SubscriptionID)
	return nil
}

// HandleSubscriptionDeleted transitions the subscription to canceled. The
// row is kept; a missing row is a logged no-op, matching the idempotent
// outcome of a redelivered delete.
func (r *Reconciler) HandleSubscriptionDeleted(ctx context.Context, ev *SubscriptionDeletedEvent) error {
	data := ev.Data
	if data.SubscriptionID == "" {
		return fmt.Errorf("subscription delete event %s has no subscription id", ev.ID)
	}

	rows, err := r.subs.MarkCanceled(ctx, data.SubscriptionID)
	if err != nil {
		return err
	}
	if rows == 0 {
		logging.Infof("Delete event for unknown subscription - subscription: %s", data.SubscriptionID)
		return nil
	}

	logging.Infof("Subscription canceled - subscription: %s", data.SubscriptionID)
	return nil
}

// HandlePaymentSucceeded records a successful payment in the ledger.
func (r *Reconciler) HandlePaymentSucceeded(ctx context.Context, ev *PaymentSucceededEvent) error {
	return r.recordPayment(ctx, ev.ID, ev.Data, models.PaymentStatusSucceeded)
}

// HandlePaymentFailed records a failed payment in the ledger and notifies
// the user asynchronously when a notifier is configured.
func (r *Reconciler) HandlePaymentFailed(ctx context.Context, ev *PaymentFailedEvent) error {
	return r.recordPayment(ctx, ev.ID, ev.Data, models.PaymentStatusFailed)
}

func (r *Reconciler) recordPayment(ctx context.Context, eventID string, data InvoiceData, status string) error {
	if data.PaymentIntentID == "" {
		return fmt.Errorf("payment event %s has no payment intent id", eventID)
	}

	user, err := r.users.ByExternalCustomerID(ctx, data.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Payment lifecycle events for customers this system does not
			// know are acknowledged; retrying would change nothing.
			logging.Infof("Skipping payment event for unknown customer - event: %s, customer: %s", eventID, data.CustomerID)
			return nil
		}
		return fmt.Errorf("resolve customer %s: %w", data.CustomerID, err)
	}

	amount := data.AmountPaid
	description := data.Description
	if status == models.PaymentStatusFailed {
		amount = data.AmountDue
		if description == "" {
			description = "Failed payment for subscription"
		}
	} else if description == "" {
		description = "Subscription payment"
	}

	record := &models.PaymentRecord{
		UserID:            user.ID,
		ExternalPaymentID: data.PaymentIntentID,
		Amount:            amount,
		Currency:          data.Currency,
		Status:            status,
		Description:       description,
	}

	if err := r.ledger.Upsert(ctx, record); err != nil {
		return err
	}

	logging.Infof("Payment recorded - user: %d, payment: %s, status: %s", user.ID, data.PaymentIntentID, status)

	if status == models.PaymentStatusFailed && r.notifier != nil {
		go r.notifier.NotifyPaymentFailed(user, record)
	}

	return nil
}
