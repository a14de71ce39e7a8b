// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/hearthledger/hearthledger/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict is returned when an obligation update loses a
	// compare-and-swap on the version column to a concurrent edit.
	ErrVersionConflict = errors.New("obligation was modified concurrently")
)

// Store defines the persistence interface the services depend on.
// The abstraction allows swapping storage backends (SQLite, PostgreSQL,
// ...) without changing the service layer.
type Store interface {
	// CreateUser inserts a new user.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email. Returns (nil, nil) if
	// no user has that email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID. Returns (nil, nil) if the
	// user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// CreateHousehold persists a new household and its member roster.
	// The household ID and CreatedAt are populated by the store.
	CreateHousehold(ctx context.Context, h *models.Household) error

	// GetHousehold retrieves a household with its roster in order.
	// Returns ErrNotFound if it does not exist.
	GetHousehold(ctx context.Context, id string) (*models.Household, error)

	// AddHouseholdMembers appends members to a household roster,
	// skipping any that are already present.
	AddHouseholdMembers(ctx context.Context, householdID string, userIDs []string) error

	// RemoveHouseholdMember drops a member from the roster.
	RemoveHouseholdMember(ctx context.Context, householdID, userID string) error

	// CreateObligation persists an obligation together with its
	// computed split. ID, Version and CreatedAt are populated.
	CreateObligation(ctx context.Context, obl *models.Obligation) error

	// GetObligation retrieves an obligation including its split.
	// Returns ErrNotFound if it does not exist.
	GetObligation(ctx context.Context, id string) (*models.Obligation, error)

	// UpdateObligation replaces an obligation's amount, method and
	// split. The write compares-and-swaps on obl.Version and returns
	// ErrVersionConflict if the stored version has moved on.
	UpdateObligation(ctx context.Context, obl *models.Obligation) error

	// ListObligationsByHousehold returns a household's obligations,
	// newest first.
	ListObligationsByHousehold(ctx context.Context, householdID string) ([]*models.Obligation, error)

	// AppendPayment records a payment. Payments are append-only; there
	// is no update or delete.
	AppendPayment(ctx context.Context, p *models.Payment) error

	// ListPayments returns an obligation's payments, oldest first.
	ListPayments(ctx context.Context, obligationID string) ([]models.Payment, error)

	// Close releases any resources held by the store.
	Close() error
}
