package models

// Payment outcome values recorded in the ledger.
const (
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

// PaymentRecord is an append-only ledger entry for one payment attempt,
// independent of the subscription lifecycle. The unique external payment id
// deduplicates provider redelivery.
type PaymentRecord struct {
	BaseModel

	UserID uint `json:"user_id" gorm:"not null;index"`

	// Provider payment reference (payment intent id), the idempotency key.
	ExternalPaymentID string `json:"external_payment_id" gorm:"not null;size:100;uniqueIndex"`

	// Amount in minor units (cents)
	Amount      int64  `json:"amount" gorm:"not null"`
	Currency    string `json:"currency" gorm:"size:10"`
	Status      string `json:"status" gorm:"not null;size:20;index"`
	Description string `json:"description" gorm:"size:255"`
}
