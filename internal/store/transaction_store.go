package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"bookkeeping/internal/models"
)

type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

type TransactionInput struct {
	ID         string
	Date       time.Time
	Reference  string
	Value      decimal.Decimal
	Note       string
	UserID     string
	Source     string
	IsBalanced bool
}

func (s *TransactionStore) Create(ctx context.Context, tx Execer, input TransactionInput) error {
	query := `
		INSERT INTO transactions (id, date, reference, value, note, user_id, source, is_balanced)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.Date, input.Reference, input.Value,
		input.Note, input.UserID, input.Source, input.IsBalanced,
	)
	return err
}

// Delete removes a transaction and, via ON DELETE CASCADE, its lines. Only
// the failure path of entry creation uses it; committed transactions are
// immutable apart from their note.
func (s *TransactionStore) Delete(ctx context.Context, tx Execer, transactionID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, transactionID)
	return err
}

func (s *TransactionStore) UpdateNote(ctx context.Context, tx Execer, transactionID, note string) error {
	_, err := tx.ExecContext(ctx, `UPDATE transactions SET note = $1 WHERE id = $2`, note, transactionID)
	return err
}

func (s *TransactionStore) GetByID(ctx context.Context, transactionID string) (models.Transaction, error) {
	var row models.Transaction
	err := s.db.GetContext(ctx, &row, `
		SELECT id, date, reference, value, note, user_id, source, is_balanced, created_at
		FROM transactions
		WHERE id = $1
	`, transactionID)
	if err != nil {
		return models.Transaction{}, err
	}
	return row, nil
}

func (s *TransactionStore) ListByUser(ctx context.Context, userID, source string, limit, offset int) ([]models.Transaction, error) {
	var rows []models.Transaction
	query := `
		SELECT id, date, reference, value, note, user_id, source, is_balanced, created_at
		FROM transactions
		WHERE user_id = $1
	`
	args := []any{userID}
	if source != "" {
		query += ` AND source = $2`
		args = append(args, source)
	}
	query += fmt.Sprintf(` ORDER BY date DESC, created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	err := s.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
