package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hearthledger/hearthledger/internal/models"
	"github.com/hearthledger/hearthledger/internal/storage"
)

// CreateObligation persists an obligation, its participant order and
// its computed split in one transaction.
func (s *SQLiteStore) CreateObligation(ctx context.Context, obl *models.Obligation) error {
	if obl.ID == "" {
		obl.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if obl.CreatedAt == 0 {
		obl.CreatedAt = now
	}
	obl.UpdatedAt = now
	if obl.Version == 0 {
		obl.Version = 1
	}

	splitJSON, err := json.Marshal(obl.Split)
	if err != nil {
		return fmt.Errorf("failed to marshal split: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO obligations
		 (id, household_id, description, category, total_cents, method, fill_remainder, split_json, created_by, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		obl.ID, obl.HouseholdID, obl.Description, string(obl.Category),
		obl.TotalCents, string(obl.Method), boolToInt(obl.FillRemainder),
		string(splitJSON), obl.CreatedBy, obl.Version, obl.CreatedAt, obl.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert obligation: %w", err)
	}

	for i, userID := range obl.Participants {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO obligation_participants (obligation_id, user_id, position) VALUES (?, ?, ?)",
			obl.ID, userID, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetObligation retrieves an obligation by ID, including its split and
// ordered participants.
func (s *SQLiteStore) GetObligation(ctx context.Context, id string) (*models.Obligation, error) {
	obl, err := s.scanObligation(s.db.QueryRowContext(ctx,
		`SELECT id, household_id, description, category, total_cents, method, fill_remainder, split_json, created_by, version, created_at, updated_at
		 FROM obligations WHERE id = ?`, id,
	))
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM obligation_participants WHERE obligation_id = ? ORDER BY position",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		obl.Participants = append(obl.Participants, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return obl, nil
}

// UpdateObligation rewrites an obligation's mutable fields and split,
// compare-and-swapping on the version column. A concurrent edit that
// bumped the version first causes ErrVersionConflict; historical
// payments are never touched here.
func (s *SQLiteStore) UpdateObligation(ctx context.Context, obl *models.Obligation) error {
	splitJSON, err := json.Marshal(obl.Split)
	if err != nil {
		return fmt.Errorf("failed to marshal split: %w", err)
	}
	now := time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE obligations
		 SET description = ?, category = ?, total_cents = ?, method = ?, fill_remainder = ?, split_json = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		obl.Description, string(obl.Category), obl.TotalCents, string(obl.Method),
		boolToInt(obl.FillRemainder), string(splitJSON), now,
		obl.ID, obl.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update obligation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		// Distinguish a missing row from a lost version race.
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM obligations WHERE id = ?", obl.ID).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("obligation %s: %w", obl.ID, storage.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to check obligation existence: %w", err)
		}
		return fmt.Errorf("obligation %s: %w", obl.ID, storage.ErrVersionConflict)
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM obligation_participants WHERE obligation_id = ?", obl.ID)
	if err != nil {
		return fmt.Errorf("failed to clear participants: %w", err)
	}
	for i, userID := range obl.Participants {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO obligation_participants (obligation_id, user_id, position) VALUES (?, ?, ?)",
			obl.ID, userID, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	obl.Version++
	obl.UpdatedAt = now
	return nil
}

// ListObligationsByHousehold returns a household's obligations, newest
// first. Participant lists are loaded per obligation.
func (s *SQLiteStore) ListObligationsByHousehold(ctx context.Context, householdID string) ([]*models.Obligation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, household_id, description, category, total_cents, method, fill_remainder, split_json, created_by, version, created_at, updated_at
		 FROM obligations WHERE household_id = ? ORDER BY created_at DESC, id`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list obligations: %w", err)
	}
	defer rows.Close()

	var obls []*models.Obligation
	for rows.Next() {
		obl, err := s.scanObligation(rows)
		if err != nil {
			return nil, err
		}
		obls = append(obls, obl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate obligations: %w", err)
	}

	for _, obl := range obls {
		prows, err := s.db.QueryContext(ctx,
			"SELECT user_id FROM obligation_participants WHERE obligation_id = ? ORDER BY position",
			obl.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to get participants: %w", err)
		}
		for prows.Next() {
			var userID string
			if err := prows.Scan(&userID); err != nil {
				prows.Close()
				return nil, fmt.Errorf("failed to scan participant: %w", err)
			}
			obl.Participants = append(obl.Participants, userID)
		}
		if err := prows.Err(); err != nil {
			prows.Close()
			return nil, fmt.Errorf("failed to iterate participants: %w", err)
		}
		prows.Close()
	}

	return obls, nil
}

// rowScanner lets scanObligation work for both QueryRow and Query rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanObligation(row rowScanner) (*models.Obligation, error) {
	obl := &models.Obligation{}
	var (
		category, method, splitJSON string
		fillRemainder               int
	)
	err := row.Scan(
		&obl.ID, &obl.HouseholdID, &obl.Description, &category,
		&obl.TotalCents, &method, &fillRemainder, &splitJSON,
		&obl.CreatedBy, &obl.Version, &obl.CreatedAt, &obl.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("obligation: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get obligation: %w", err)
	}

	obl.Category = models.Category(category)
	obl.Method = models.SplitMethod(method)
	obl.FillRemainder = fillRemainder != 0

	if splitJSON != "" && splitJSON != "null" {
		var split models.SplitResult
		if err := json.Unmarshal([]byte(splitJSON), &split); err != nil {
			return nil, fmt.Errorf("failed to unmarshal split: %w", err)
		}
		obl.Split = &split
		obl.Inputs = split.Details.Inputs
	}

	return obl, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
