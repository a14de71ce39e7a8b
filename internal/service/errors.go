package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPayment is returned for zero or negative payment
	// amounts.
	ErrInvalidPayment = errors.New("payment amount must be positive")

	// ErrPermissionDenied is returned when the acting user is not a
	// member of the household they are operating on.
	ErrPermissionDenied = errors.New("permission denied")
)

// PaymentOverrun describes a participant whose recorded payments exceed
// their share under a proposed edit.
type PaymentOverrun struct {
	UserID       string `json:"user_id"`
	PaidCents    int64  `json:"paid_cents"`
	NewOwedCents int64  `json:"new_owed_cents"`
}

// EditConflictError rejects an obligation edit that would push one or
// more participants' recorded payments above their new share, unless
// the caller explicitly confirmed the reduction. Historical payments
// are never adjusted; the conflict is surfaced instead.
type EditConflictError struct {
	Overruns []PaymentOverrun
}

func (e *EditConflictError) Error() string {
	return fmt.Sprintf("edit reduces %d participant share(s) below amounts already paid; confirmation required", len(e.Overruns))
}
