package billing

import (
	"errors"
	"fmt"
)

// ErrNoActiveSubscription is returned by the cancellation command when the
// user has no active subscription to cancel. It is a caller-facing failure,
// not a retriable one.
var ErrNoActiveSubscription = errors.New("no active subscription")

// VerificationError marks inbound payloads that failed authenticity checks.
// The caller must reject with a 400-class status and never process the event.
type VerificationError struct {
	Reason string
	Err    error
}

func (e *VerificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("event verification failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("event verification failed: %s", e.Reason)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

func verificationErrorf(format string, args ...interface{}) *VerificationError {
	return &VerificationError{Reason: fmt.Sprintf(format, args...)}
}
