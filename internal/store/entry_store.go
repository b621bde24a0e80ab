package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"bookkeeping/internal/models"
)

// EntryStore persists the subledger records that own ledger transactions,
// one table per variant.
type EntryStore struct {
	db DB
}

func NewEntryStore(db DB) *EntryStore {
	return &EntryStore{db: db}
}

type JournalEntryInput struct {
	ID            string
	TransactionID string
	EntityID      *string
	Additional    string
}

func (s *EntryStore) CreateJournalEntry(ctx context.Context, tx Execer, input JournalEntryInput) error {
	query := `
		INSERT INTO journal_entries (id, transaction_id, entity_id, additional)
		VALUES ($1, $2, $3, $4)
	`
	_, err := tx.ExecContext(ctx, query, input.ID, input.TransactionID, input.EntityID, input.Additional)
	return err
}

type SaleInput struct {
	ID            string
	TransactionID string
	GSTTotal      decimal.Decimal
	Additional    string
}

func (s *EntryStore) CreateSale(ctx context.Context, tx Execer, input SaleInput) error {
	query := `
		INSERT INTO sales (id, transaction_id, gst_total, additional)
		VALUES ($1, $2, $3, $4)
	`
	_, err := tx.ExecContext(ctx, query, input.ID, input.TransactionID, input.GSTTotal, input.Additional)
	return err
}

type ExpenseInput struct {
	ID            string
	TransactionID string
	EntityID      *string
	GSTTotal      decimal.Decimal
	Additional    string
}

func (s *EntryStore) CreateExpense(ctx context.Context, tx Execer, input ExpenseInput) error {
	query := `
		INSERT INTO expenses (id, transaction_id, entity_id, gst_total, additional)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := tx.ExecContext(ctx, query, input.ID, input.TransactionID, input.EntityID, input.GSTTotal, input.Additional)
	return err
}

type CreditorInvoiceInput struct {
	ID            string
	TransactionID string
	CreditorID    string
	InvoiceNumber string
	OrderNumber   string
	Reference     string
	DueDate       *time.Time
	GSTTotal      decimal.Decimal
	IsCredit      bool
	Additional    string
}

func (s *EntryStore) CreateCreditorInvoice(ctx context.Context, tx Execer, input CreditorInvoiceInput) error {
	query := `
		INSERT INTO creditor_invoices (id, transaction_id, creditor_id, invoice_number, order_number, reference, due_date, gst_total, is_credit, additional)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.TransactionID, input.CreditorID, input.InvoiceNumber,
		input.OrderNumber, input.Reference, input.DueDate, input.GSTTotal,
		input.IsCredit, input.Additional,
	)
	return err
}

func (s *EntryStore) GetCreditorInvoiceByTransaction(ctx context.Context, transactionID string) (models.CreditorInvoice, error) {
	var row models.CreditorInvoice
	err := s.db.GetContext(ctx, &row, `
		SELECT id, transaction_id, creditor_id, invoice_number, order_number, reference, due_date, gst_total, is_credit, additional, created_at
		FROM creditor_invoices
		WHERE transaction_id = $1
	`, transactionID)
	if err != nil {
		return models.CreditorInvoice{}, err
	}
	return row, nil
}
