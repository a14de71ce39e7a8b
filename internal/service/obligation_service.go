// Package service implements the domain services between the HTTP API
// and storage: obligation lifecycle, the settlement ledger, household
// rosters and authentication glue. Services return typed domain errors;
// translating them to HTTP status codes is the API layer's job.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/hearthledger/hearthledger/internal/calculator"
	"github.com/hearthledger/hearthledger/internal/models"
	"github.com/hearthledger/hearthledger/internal/storage"
)

// ObligationService owns the obligation lifecycle: preview, create with
// an immediately computed split, and edits that recompute the split
// against immutable payment history.
type ObligationService struct {
	store storage.Store
}

// NewObligationService creates an ObligationService with the given
// storage backend.
func NewObligationService(store storage.Store) *ObligationService {
	return &ObligationService{store: store}
}

// ObligationInput carries the caller-supplied fields for creating or
// editing an obligation.
type ObligationInput struct {
	HouseholdID   string
	Description   string
	Category      models.Category
	TotalCents    int64
	Method        models.SplitMethod
	Participants  []string // empty means the full household roster
	Inputs        map[string]int64
	FillRemainder bool
}

// Preview computes the split an obligation would get, without
// persisting anything. It is the exact function used at creation time,
// so a preview always matches what a subsequent create produces for
// identical inputs.
func (s *ObligationService) Preview(in ObligationInput) (*models.SplitResult, error) {
	return calculator.ComputeSplit(calculator.SplitRequest{
		TotalCents:    in.TotalCents,
		Method:        in.Method,
		Participants:  in.Participants,
		Inputs:        in.Inputs,
		FillRemainder: in.FillRemainder,
	})
}

// Create validates the input against the household roster, computes the
// split and persists the obligation.
func (s *ObligationService) Create(ctx context.Context, createdBy string, in ObligationInput) (*models.Obligation, error) {
	household, err := s.store.GetHousehold(ctx, in.HouseholdID)
	if err != nil {
		return nil, err
	}
	if !household.HasMember(createdBy) {
		return nil, fmt.Errorf("%w: user %s is not a member of household %s", ErrPermissionDenied, createdBy, in.HouseholdID)
	}

	participants := in.Participants
	if len(participants) == 0 {
		participants = household.Members
	} else {
		for _, p := range participants {
			if !household.HasMember(p) {
				return nil, fmt.Errorf("participant %s is not on the household roster: %w", p, storage.ErrNotFound)
			}
		}
	}

	split, err := calculator.ComputeSplit(calculator.SplitRequest{
		TotalCents:    in.TotalCents,
		Method:        in.Method,
		Participants:  participants,
		Inputs:        in.Inputs,
		FillRemainder: in.FillRemainder,
	})
	if err != nil {
		return nil, err
	}
	// ComputeSplit is pure; the timestamp belongs to persistence.
	split.Details.ComputedAt = time.Now().Unix()

	obl := &models.Obligation{
		HouseholdID:   in.HouseholdID,
		Description:   in.Description,
		Category:      in.Category,
		TotalCents:    in.TotalCents,
		Method:        in.Method,
		Participants:  participants,
		Inputs:        in.Inputs,
		FillRemainder: in.FillRemainder,
		Split:         split,
		CreatedBy:     createdBy,
	}
	if obl.Category == "" {
		obl.Category = models.CategoryOther
	}

	if err := s.store.CreateObligation(ctx, obl); err != nil {
		return nil, err
	}

	slog.Info("Obligation created",
		"obligation_id", obl.ID,
		"household_id", obl.HouseholdID,
		"method", obl.Method,
		"total_cents", obl.TotalCents,
		"participants", len(participants),
	)
	return obl, nil
}

// Get retrieves an obligation.
func (s *ObligationService) Get(ctx context.Context, id string) (*models.Obligation, error) {
	return s.store.GetObligation(ctx, id)
}

// UpdateInput carries an edit. Participants empty means "keep the
// current participant list". ConfirmReduced acknowledges that the edit
// may push a participant's already-recorded payments above their new
// share; without it such an edit is rejected with EditConflictError.
type UpdateInput struct {
	Description    string
	Category       models.Category
	TotalCents     int64
	Method         models.SplitMethod
	Participants   []string
	Inputs         map[string]int64
	FillRemainder  bool
	ConfirmReduced bool
}

// Update recomputes an obligation's split from scratch. Recorded
// payments stay immutable; only the owed amounts change, which shifts
// every derived remaining balance. A previously settled obligation may
// become unsettled (or the reverse) purely through that derivation.
func (s *ObligationService) Update(ctx context.Context, updatedBy, id string, in UpdateInput) (*models.Obligation, error) {
	obl, err := s.store.GetObligation(ctx, id)
	if err != nil {
		return nil, err
	}

	household, err := s.store.GetHousehold(ctx, obl.HouseholdID)
	if err != nil {
		return nil, err
	}
	if !household.HasMember(updatedBy) {
		return nil, fmt.Errorf("%w: user %s is not a member of household %s", ErrPermissionDenied, updatedBy, obl.HouseholdID)
	}

	participants := in.Participants
	if len(participants) == 0 {
		participants = obl.Participants
	} else {
		for _, p := range participants {
			if !household.HasMember(p) {
				return nil, fmt.Errorf("participant %s is not on the household roster: %w", p, storage.ErrNotFound)
			}
		}
	}

	split, err := calculator.ComputeSplit(calculator.SplitRequest{
		TotalCents:    in.TotalCents,
		Method:        in.Method,
		Participants:  participants,
		Inputs:        in.Inputs,
		FillRemainder: in.FillRemainder,
	})
	if err != nil {
		return nil, err
	}
	split.Details.ComputedAt = time.Now().Unix()

	if !in.ConfirmReduced {
		payments, err := s.store.ListPayments(ctx, id)
		if err != nil {
			return nil, err
		}
		if overruns := findOverruns(split, payments); len(overruns) > 0 {
			return nil, &EditConflictError{Overruns: overruns}
		}
	}

	obl.Description = in.Description
	obl.Category = in.Category
	obl.TotalCents = in.TotalCents
	obl.Method = in.Method
	obl.Participants = participants
	obl.Inputs = in.Inputs
	obl.FillRemainder = in.FillRemainder
	obl.Split = split
	if obl.Category == "" {
		obl.Category = models.CategoryOther
	}

	if err := s.store.UpdateObligation(ctx, obl); err != nil {
		return nil, err
	}

	slog.Info("Obligation updated",
		"obligation_id", obl.ID,
		"method", obl.Method,
		"total_cents", obl.TotalCents,
		"version", obl.Version,
	)
	return obl, nil
}

// findOverruns returns every participant whose recorded payments exceed
// their share under the new split. A payer dropped from the split
// entirely counts too: their owed amount is zero.
func findOverruns(split *models.SplitResult, payments []models.Payment) []PaymentOverrun {
	paidBy := make(map[string]int64)
	for _, p := range payments {
		paidBy[p.PaidBy] += p.AmountCents
	}

	payers := make([]string, 0, len(paidBy))
	for userID := range paidBy {
		payers = append(payers, userID)
	}
	sort.Strings(payers)

	var overruns []PaymentOverrun
	for _, userID := range payers {
		paid := paidBy[userID]
		var owed int64
		if share := split.Share(userID); share != nil {
			owed = share.OwedCents
		}
		if paid > owed {
			overruns = append(overruns, PaymentOverrun{
				UserID:       userID,
				PaidCents:    paid,
				NewOwedCents: owed,
			})
		}
	}
	return overruns
}
