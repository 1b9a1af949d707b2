package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"streaming-api/internal/models"

	"gorm.io/gorm"
)

// ReasonCode explains an entitlement decision to the caller.
type ReasonCode string

const (
	ReasonNone             ReasonCode = "NONE"
	ReasonNoSubscription   ReasonCode = "NO_SUBSCRIPTION"
	ReasonInsufficientPlan ReasonCode = "INSUFFICIENT_PLAN"
)

// Decision is the derived answer to "may this user access this content".
// It is computed on demand from the current subscription row and never
// stored.
type Decision struct {
	Allowed bool       `json:"allowed"`
	Reason  ReasonCode `json:"reason_code"`
	PlanID  string     `json:"plan_id,omitempty"`
}

// EntitlementService answers authorization questions against the
// subscription store and carries the user-initiated cancellation command.
// CheckAccess is a pure read on the playback hot path; it never mutates
// state and is safe for concurrent use.
type EntitlementService struct {
	subs *SubscriptionStore
	now  func() time.Time
}

// NewEntitlementService creates the service over a subscription store.
func NewEntitlementService(subs *SubscriptionStore) *EntitlementService {
	return &EntitlementService{
		subs: subs,
		now:  time.Now,
	}
}

// CheckAccess compares the user's current subscription against the required
// plan. requiredPlanID may be empty for content with no plan requirement.
// A missing, non-active or expired subscription yields NO_SUBSCRIPTION and
// allows access only when no plan is required. Otherwise access is granted
// when the subscription plan's rank is at least the required plan's rank.
func (s *EntitlementService) CheckAccess(ctx context.Context, userID uint, requiredPlanID string) (Decision, error) {
	sub, err := s.subs.Latest(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.noSubscription(requiredPlanID), nil
		}
		return Decision{}, fmt.Errorf("load subscription for user %d: %w", userID, err)
	}

	if sub.Status != models.SubscriptionStatusActive || !sub.CurrentPeriodEnd.After(s.now()) {
		return s.noSubscription(requiredPlanID), nil
	}

	if requiredPlanID == "" {
		return Decision{Allowed: true, Reason: ReasonNone, PlanID: sub.PlanID}, nil
	}

	if PlanRank(sub.PlanID) >= PlanRank(requiredPlanID) {
		return Decision{Allowed: true, Reason: ReasonNone, PlanID: sub.PlanID}, nil
	}
	return Decision{Allowed: false, Reason: ReasonInsufficientPlan, PlanID: sub.PlanID}, nil
}

func (s *EntitlementService) noSubscription(requiredPlanID string) Decision {
	return Decision{
		Allowed: requiredPlanID == "",
		Reason:  ReasonNoSubscription,
	}
}

// CancelAtPeriodEnd flags the user's active subscription for cancellation at
// the period boundary without changing its status. The provider-side mirror
// of this intent is a collaborator call outside this engine; the local flag
// is set regardless so authorization reflects the user's intent immediately.
// Returns ErrNoActiveSubscription when the user has nothing to cancel.
func (s *EntitlementService) CancelAtPeriodEnd(ctx context.Context, userID uint) error {
	sub, err := s.subs.LatestActive(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoActiveSubscription
		}
		return fmt.Errorf("load active subscription for user %d: %w", userID, err)
	}

	return s.subs.SetCancelAtPeriodEnd(ctx, sub.ExternalSubscriptionID)
}

// CurrentSubscription returns the user's latest subscription row, or nil
// when the user never had one.
func (s *EntitlementService) CurrentSubscription(ctx context.Context, userID uint) (*models.Subscription, error) {
	sub, err := s.subs.Latest(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load subscription for user %d: %w", userID, err)
	}
	return sub, nil
}
