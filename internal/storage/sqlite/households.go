package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hearthledger/hearthledger/internal/models"
	"github.com/hearthledger/hearthledger/internal/storage"
)

// CreateHousehold persists a household and its member roster. Member
// positions preserve roster order, which is the default participant
// order for remainder assignment.
func (s *SQLiteStore) CreateHousehold(ctx context.Context, h *models.Household) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	if h.CreatedAt == 0 {
		h.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO households (id, name, created_by, created_at) VALUES (?, ?, ?, ?)",
		h.ID, h.Name, h.CreatedBy, h.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert household: %w", err)
	}

	for i, userID := range h.Members {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO household_members (household_id, user_id, position) VALUES (?, ?, ?)",
			h.ID, userID, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetHousehold retrieves a household with its roster in position order.
func (s *SQLiteStore) GetHousehold(ctx context.Context, id string) (*models.Household, error) {
	h := &models.Household{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_by, created_at FROM households WHERE id = ?", id,
	).Scan(&h.ID, &h.Name, &h.CreatedBy, &h.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("household %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get household: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM household_members WHERE household_id = ? ORDER BY position",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		h.Members = append(h.Members, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return h, nil
}

// AddHouseholdMembers appends members to a roster, skipping duplicates.
// New members take positions after the current tail.
func (s *SQLiteStore) AddHouseholdMembers(ctx context.Context, householdID string, userIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position) + 1, 0) FROM household_members WHERE household_id = ?",
		householdID,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to read roster tail: %w", err)
	}

	for _, userID := range userIDs {
		res, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO household_members (household_id, user_id, position) VALUES (?, ?, ?)",
			householdID, userID, next,
		)
		if err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			next++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RemoveHouseholdMember drops a member from the roster.
func (s *SQLiteStore) RemoveHouseholdMember(ctx context.Context, householdID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM household_members WHERE household_id = ? AND user_id = ?",
		householdID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("member %s in household %s: %w", userID, householdID, storage.ErrNotFound)
	}
	return nil
}
