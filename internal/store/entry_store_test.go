package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestEntryStoreCreateJournalEntry(t *testing.T) {
	var gotQuery string
	var gotArgs []any
	tx := stubExecer{
		execFn: func(ctx context.Context, query string, args ...any) (sql.Result, error) {
			gotQuery = query
			gotArgs = args
			return stubResult{rows: 1}, nil
		},
	}
	store := NewEntryStore(stubDB{})
	entityID := "e1"
	err := store.CreateJournalEntry(context.Background(), tx, JournalEntryInput{
		ID:            "j1",
		TransactionID: "t1",
		EntityID:      &entityID,
	})
	if err != nil {
		t.Fatalf("CreateJournalEntry returned error: %v", err)
	}
	if !strings.Contains(gotQuery, "INSERT INTO journal_entries") {
		t.Fatalf("unexpected query: %s", gotQuery)
	}
	if gotArgs[0] != "j1" || gotArgs[1] != "t1" {
		t.Fatalf("unexpected args: %v", gotArgs)
	}
}

func TestEntryStoreCreateCreditorInvoice(t *testing.T) {
	var gotArgs []any
	tx := stubExecer{
		execFn: func(ctx context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO creditor_invoices") {
				t.Fatalf("unexpected query: %s", query)
			}
			gotArgs = args
			return stubResult{rows: 1}, nil
		},
	}
	store := NewEntryStore(stubDB{})
	due := time.Date(2016, 2, 1, 0, 0, 0, 0, time.UTC)
	err := store.CreateCreditorInvoice(context.Background(), tx, CreditorInvoiceInput{
		ID:            "i1",
		TransactionID: "t1",
		CreditorID:    "c1",
		InvoiceNumber: "INV-042",
		DueDate:       &due,
		GSTTotal:      decimal.NewFromInt(10),
		IsCredit:      true,
	})
	if err != nil {
		t.Fatalf("CreateCreditorInvoice returned error: %v", err)
	}
	if gotArgs[2] != "c1" || gotArgs[3] != "INV-042" {
		t.Fatalf("unexpected args: %v", gotArgs)
	}
	if gotArgs[8] != true {
		t.Fatalf("is_credit arg = %v", gotArgs[8])
	}
}
