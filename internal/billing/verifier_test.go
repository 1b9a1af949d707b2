package billing

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test"

func TestVerifyAcceptsSignedEvent(t *testing.T) {
	v := NewVerifier(testSecret)
	body := []byte(`{"type":"customer.subscription.deleted","id":"evt_1","data":{"subscription_id":"sub_1"}}`)

	event, err := v.Verify(body, v.SignPayload(body, time.Now()))
	require.NoError(t, err)

	deleted, ok := event.(*SubscriptionDeletedEvent)
	require.True(t, ok, "expected SubscriptionDeletedEvent, got %T", event)
	assert.Equal(t, "evt_1", deleted.EventID())
	assert.Equal(t, "sub_1", deleted.Data.SubscriptionID)
}

func TestVerifyRejectsTamperedBody(t *testing.T) {
	v := NewVerifier(testSecret)
	body := []byte(`{"type":"customer.subscription.deleted","id":"evt_1","data":{}}`)
	header := v.SignPayload(body, time.Now())

	tampered := []byte(`{"type":"customer.subscription.deleted","id":"evt_2","data":{}}`)
	_, err := v.Verify(tampered, header)

	var verr *VerificationError
	require.True(t, errors.As(err, &verr), "expected VerificationError, got %v", err)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer := NewVerifier("other-secret")
	v := NewVerifier(testSecret)
	body := []byte(`{"type":"invoice.payment_succeeded","id":"evt_1","data":{}}`)

	_, err := v.Verify(body, signer.SignPayload(body, time.Now()))

	var verr *VerificationError
	require.True(t, errors.As(err, &verr), "expected VerificationError, got %v", err)
}

func TestVerifyRejectsStaleTimestamp(t *testing.T) {
	v := NewVerifier(testSecret)
	body := []byte(`{"type":"invoice.payment_succeeded","id":"evt_1","data":{}}`)

	_, err := v.Verify(body, v.SignPayload(body, time.Now().Add(-time.Hour)))

	var verr *VerificationError
	require.True(t, errors.As(err, &verr), "expected VerificationError, got %v", err)
}

func TestVerifyRejectsMissingHeader(t *testing.T) {
	v := NewVerifier(testSecret)
	body := []byte(`{"type":"invoice.payment_succeeded","id":"evt_1","data":{}}`)

	_, err := v.Verify(body, "")

	var verr *VerificationError
	require.True(t, errors.As(err, &verr), "expected VerificationError, got %v", err)
}

func TestVerifyUnknownTypeIsUnrecognized(t *testing.T) {
	v := NewVerifier(testSecret)
	body := []byte(`{"type":"customer.created","id":"evt_9","data":{"anything":true}}`)

	event, err := v.Verify(body, v.SignPayload(body, time.Now()))
	require.NoError(t, err)

	unknown, ok := event.(*UnrecognizedEvent)
	require.True(t, ok, "expected UnrecognizedEvent, got %T", event)
	assert.Equal(t, "customer.created", unknown.RawType)
}

func TestVerifyMalformedPayloadIsNotVerificationError(t *testing.T) {
	v := NewVerifier(testSecret)
	body := []byte(`{"type":"checkout.session.completed","id":"evt_1","data":"not-an-object"}`)

	_, err := v.Verify(body, v.SignPayload(body, time.Now()))
	require.Error(t, err)

	var verr *VerificationError
	assert.False(t, errors.As(err, &verr), "signed but malformed payload must not be a verification failure")
}
