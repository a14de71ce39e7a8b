package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hearthledger/hearthledger/internal/models"
)

// AppendPayment records a payment. The ledger is append-only: rows are
// never updated or deleted, balances are always derived from the full
// sequence.
func (s *SQLiteStore) AppendPayment(ctx context.Context, p *models.Payment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.PaidAt == 0 {
		p.PaidAt = time.Now().Unix()
	}

	var method, note any
	if p.Method != "" {
		method = p.Method
	}
	if p.Note != "" {
		note = p.Note
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payments (id, obligation_id, paid_by, amount_cents, method, note, paid_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ObligationID, p.PaidBy, p.AmountCents, method, note, p.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// ListPayments returns an obligation's payments, oldest first. The ID
// tiebreak keeps ordering stable for payments in the same second.
func (s *SQLiteStore) ListPayments(ctx context.Context, obligationID string) ([]models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, obligation_id, paid_by, amount_cents, method, note, paid_at
		 FROM payments WHERE obligation_id = ? ORDER BY paid_at, id`,
		obligationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var (
			p            models.Payment
			method, note sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.ObligationID, &p.PaidBy, &p.AmountCents, &method, &note, &p.PaidAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		if method.Valid {
			p.Method = method.String
		}
		if note.Valid {
			p.Note = note.String
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}
