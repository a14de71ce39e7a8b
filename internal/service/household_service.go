package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hearthledger/hearthledger/internal/calculator"
	"github.com/hearthledger/hearthledger/internal/models"
	"github.com/hearthledger/hearthledger/internal/storage"
)

// HouseholdService manages rosters and household-level aggregation.
// It is the roster provider: the split engine never queries membership
// itself, it receives participant lists resolved here.
type HouseholdService struct {
	store storage.Store
}

// NewHouseholdService creates a HouseholdService with the given storage
// backend.
func NewHouseholdService(store storage.Store) *HouseholdService {
	return &HouseholdService{store: store}
}

// Create persists a new household. The creator is always on the roster,
// first, so they are the default recipient of leftover cents.
func (s *HouseholdService) Create(ctx context.Context, createdBy, name string, members []string) (*models.Household, error) {
	roster := []string{createdBy}
	for _, m := range members {
		if m != createdBy {
			roster = append(roster, m)
		}
	}

	h := &models.Household{
		Name:      name,
		Members:   roster,
		CreatedBy: createdBy,
	}
	if err := s.store.CreateHousehold(ctx, h); err != nil {
		return nil, err
	}

	slog.Info("Household created", "household_id", h.ID, "members", len(roster))
	return h, nil
}

// Get retrieves a household if the requester is on its roster.
func (s *HouseholdService) Get(ctx context.Context, requestedBy, id string) (*models.Household, error) {
	h, err := s.store.GetHousehold(ctx, id)
	if err != nil {
		return nil, err
	}
	if !h.HasMember(requestedBy) {
		return nil, fmt.Errorf("%w: user %s is not a member of household %s", ErrPermissionDenied, requestedBy, id)
	}
	return h, nil
}

// AddMembers appends users to the roster.
func (s *HouseholdService) AddMembers(ctx context.Context, requestedBy, id string, userIDs []string) (*models.Household, error) {
	if _, err := s.Get(ctx, requestedBy, id); err != nil {
		return nil, err
	}
	if err := s.store.AddHouseholdMembers(ctx, id, userIDs); err != nil {
		return nil, err
	}
	return s.store.GetHousehold(ctx, id)
}

// RemoveMember drops a user from the roster. Existing obligations keep
// their participant lists; only future splits see the change.
func (s *HouseholdService) RemoveMember(ctx context.Context, requestedBy, id, userID string) error {
	if _, err := s.Get(ctx, requestedBy, id); err != nil {
		return err
	}
	return s.store.RemoveHouseholdMember(ctx, id, userID)
}

// ListObligations returns a household's obligations, newest first.
func (s *HouseholdService) ListObligations(ctx context.Context, requestedBy, id string) ([]*models.Obligation, error) {
	if _, err := s.Get(ctx, requestedBy, id); err != nil {
		return nil, err
	}
	return s.store.ListObligationsByHousehold(ctx, id)
}

// Balances aggregates every member's net position across the
// household's obligations and payments, plus a simplified debt matrix.
func (s *HouseholdService) Balances(ctx context.Context, requestedBy, id string) ([]calculator.MemberBalance, []calculator.DebtEdge, error) {
	obls, err := s.ListObligations(ctx, requestedBy, id)
	if err != nil {
		return nil, nil, err
	}

	ledgers := make([]calculator.ObligationLedger, 0, len(obls))
	for _, obl := range obls {
		payments, err := s.store.ListPayments(ctx, obl.ID)
		if err != nil {
			return nil, nil, err
		}
		ledgers = append(ledgers, calculator.ObligationLedger{
			Obligation: obl,
			Payments:   payments,
		})
	}

	members, edges := calculator.HouseholdBalances(ledgers)
	return members, edges, nil
}
