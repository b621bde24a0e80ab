package store

import (
	"context"

	"github.com/shopspring/decimal"

	"bookkeeping/internal/models"
)

type LedgerStore struct {
	db DB
}

func NewLedgerStore(db DB) *LedgerStore {
	return &LedgerStore{db: db}
}

type LineInput struct {
	ID            string
	TransactionID string
	AccountID     string
	Value         decimal.Decimal
	Note          string
}

// InsertLines writes a transaction's postings inside the caller's
// transaction. Lines exist only as part of transaction creation.
func (s *LedgerStore) InsertLines(ctx context.Context, tx Execer, lines []LineInput) error {
	query := `
		INSERT INTO lines (id, transaction_id, account_id, value, note)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, line := range lines {
		if _, err := tx.ExecContext(ctx, query, line.ID, line.TransactionID, line.AccountID, line.Value, line.Note); err != nil {
			return err
		}
	}
	return nil
}

func (s *LedgerStore) ListByTransaction(ctx context.Context, transactionID string) ([]models.Line, error) {
	var rows []models.Line
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, transaction_id, account_id, value, note
		FROM lines
		WHERE transaction_id = $1
		ORDER BY id
	`, transactionID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SumByAccount is the account's signed running balance: positive nets to a
// debit balance.
func (s *LedgerStore) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := s.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(value), 0)
		FROM lines
		WHERE account_id = $1
	`, accountID)
	return sum, err
}
