package models

// Payment is an append-only settlement record: one participant paying
// down (part of) their share of an obligation. Payments are never
// updated or deleted; balances are derived from the full sequence.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// ObligationID is the obligation this payment applies to.
	ObligationID string

	// PaidBy is the participant whose share this pays down.
	PaidBy string

	// AmountCents is the payment amount in minor units. Always positive.
	AmountCents int64

	// Method is an optional free-form payment method ("cash", "venmo").
	Method string

	// Note is an optional description.
	Note string

	// PaidAt is the Unix timestamp when the payment was recorded.
	PaidAt int64
}

// Balance is a participant's derived position on one obligation.
// RemainingCents may be negative: that means overpaid, and it is
// surfaced as-is rather than clamped.
type Balance struct {
	UserID         string `json:"user_id"`
	OwedCents      int64  `json:"owed_cents"`
	PaidCents      int64  `json:"paid_cents"`
	RemainingCents int64  `json:"remaining_cents"`
	FullyPaid      bool   `json:"fully_paid"`
}

// NewBalance derives a balance from an owed amount and the sum of
// recorded payments.
func NewBalance(userID string, owedCents, paidCents int64) Balance {
	remaining := owedCents - paidCents
	return Balance{
		UserID:         userID,
		OwedCents:      owedCents,
		PaidCents:      paidCents,
		RemainingCents: remaining,
		FullyPaid:      remaining <= 0,
	}
}

// ObligationStatus is the full settlement picture for one obligation.
type ObligationStatus struct {
	ObligationID string    `json:"obligation_id"`
	TotalCents   int64     `json:"total_cents"`
	Shares       []Share   `json:"shares"`
	Balances     []Balance `json:"balances"`
	Payments     []Payment `json:"payments"`
	FullySettled bool      `json:"fully_settled"`
}
