package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hearthledger/hearthledger/internal/calculator"
	"github.com/hearthledger/hearthledger/internal/models"
	"github.com/hearthledger/hearthledger/internal/storage"
)

// LedgerService is the settlement ledger: append-only payments against
// an obligation's shares, with balances derived on every read.
//
// Writes are serialized per obligation. The read-append-derive sequence
// in RecordPayment and MarkPaid must not interleave for the same
// obligation (a cap or a mark-paid computed against a stale payment sum
// would over- or under-charge), so each obligation gets its own mutex.
// Obligations are independent; there is no cross-obligation locking.
type LedgerService struct {
	store storage.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLedgerService creates a LedgerService with the given storage
// backend.
func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *LedgerService) lock(obligationID string) func() {
	s.mu.Lock()
	l, ok := s.locks[obligationID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[obligationID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// PaymentOptions tunes how a payment is recorded.
type PaymentOptions struct {
	// Method is an optional free-form payment method ("cash", "venmo").
	Method string

	// Note is an optional description.
	Note string

	// CapToRemaining truncates the payment to the payer's remaining
	// balance. Off by default: an overpayment is recorded in full and
	// surfaces as a negative remaining amount, because truncating
	// silently would lose information (a tip, an adjustment).
	CapToRemaining bool
}

// RecordPayment appends a payment for one participant and returns their
// derived balance. The amount must be positive; the payer must be part
// of the obligation's split.
func (s *LedgerService) RecordPayment(ctx context.Context, obligationID, paidBy string, amountCents int64, opts PaymentOptions) (models.Balance, error) {
	if amountCents <= 0 {
		return models.Balance{}, fmt.Errorf("%w: got %d cents", ErrInvalidPayment, amountCents)
	}

	unlock := s.lock(obligationID)
	defer unlock()

	obl, err := s.store.GetObligation(ctx, obligationID)
	if err != nil {
		return models.Balance{}, err
	}
	share := obl.Split.Share(paidBy)
	if share == nil {
		return models.Balance{}, fmt.Errorf("user %s is not part of obligation %s: %w", paidBy, obligationID, storage.ErrNotFound)
	}

	payments, err := s.store.ListPayments(ctx, obligationID)
	if err != nil {
		return models.Balance{}, err
	}
	var alreadyPaid int64
	for _, p := range payments {
		if p.PaidBy == paidBy {
			alreadyPaid += p.AmountCents
		}
	}

	if opts.CapToRemaining {
		remaining := share.OwedCents - alreadyPaid
		if remaining <= 0 {
			// Nothing left to pay; nothing recorded.
			return models.NewBalance(paidBy, share.OwedCents, alreadyPaid), nil
		}
		if amountCents > remaining {
			amountCents = remaining
		}
	}

	payment := &models.Payment{
		ObligationID: obligationID,
		PaidBy:       paidBy,
		AmountCents:  amountCents,
		Method:       opts.Method,
		Note:         opts.Note,
	}
	if err := s.store.AppendPayment(ctx, payment); err != nil {
		return models.Balance{}, err
	}

	balance := models.NewBalance(paidBy, share.OwedCents, alreadyPaid+amountCents)
	slog.Info("Payment recorded",
		"obligation_id", obligationID,
		"paid_by", paidBy,
		"amount_cents", amountCents,
		"remaining_cents", balance.RemainingCents,
	)
	return balance, nil
}

// MarkPaid is the offline/cash shortcut: it records a single payment
// equal to the payer's remaining balance. If nothing remains it records
// nothing and returns the current balance.
func (s *LedgerService) MarkPaid(ctx context.Context, obligationID, userID, method string) (models.Balance, error) {
	unlock := s.lock(obligationID)
	defer unlock()

	obl, err := s.store.GetObligation(ctx, obligationID)
	if err != nil {
		return models.Balance{}, err
	}
	share := obl.Split.Share(userID)
	if share == nil {
		return models.Balance{}, fmt.Errorf("user %s is not part of obligation %s: %w", userID, obligationID, storage.ErrNotFound)
	}

	payments, err := s.store.ListPayments(ctx, obligationID)
	if err != nil {
		return models.Balance{}, err
	}
	var alreadyPaid int64
	for _, p := range payments {
		if p.PaidBy == userID {
			alreadyPaid += p.AmountCents
		}
	}

	remaining := share.OwedCents - alreadyPaid
	if remaining <= 0 {
		return models.NewBalance(userID, share.OwedCents, alreadyPaid), nil
	}

	payment := &models.Payment{
		ObligationID: obligationID,
		PaidBy:       userID,
		AmountCents:  remaining,
		Method:       method,
		Note:         "marked fully paid",
	}
	if err := s.store.AppendPayment(ctx, payment); err != nil {
		return models.Balance{}, err
	}

	slog.Info("Share marked fully paid",
		"obligation_id", obligationID,
		"user_id", userID,
		"amount_cents", remaining,
	)
	return models.NewBalance(userID, share.OwedCents, share.OwedCents), nil
}

// Status returns the full settlement picture for an obligation.
func (s *LedgerService) Status(ctx context.Context, obligationID string) (models.ObligationStatus, error) {
	obl, err := s.store.GetObligation(ctx, obligationID)
	if err != nil {
		return models.ObligationStatus{}, err
	}
	payments, err := s.store.ListPayments(ctx, obligationID)
	if err != nil {
		return models.ObligationStatus{}, err
	}
	return calculator.DeriveStatus(obl, payments), nil
}
