package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLedgerStoreInsertLines(t *testing.T) {
	var inserted [][]any
	tx := stubExecer{
		execFn: func(ctx context.Context, query string, args ...any) (sql.Result, error) {
			inserted = append(inserted, args)
			return stubResult{rows: 1}, nil
		},
	}
	store := NewLedgerStore(stubDB{})
	lines := []LineInput{
		{ID: "l1", TransactionID: "t1", AccountID: "a1", Value: decimal.NewFromInt(100)},
		{ID: "l2", TransactionID: "t1", AccountID: "a2", Value: decimal.NewFromInt(-100)},
	}
	if err := store.InsertLines(context.Background(), tx, lines); err != nil {
		t.Fatalf("InsertLines returned error: %v", err)
	}
	if len(inserted) != 2 {
		t.Fatalf("inserts = %d", len(inserted))
	}
	if inserted[0][0] != "l1" || inserted[1][0] != "l2" {
		t.Fatalf("insertion order lost: %v", inserted)
	}
}

func TestLedgerStoreInsertLinesStopsOnError(t *testing.T) {
	calls := 0
	boom := errors.New("constraint violated")
	tx := stubExecer{
		execFn: func(ctx context.Context, query string, args ...any) (sql.Result, error) {
			calls++
			if calls == 1 {
				return nil, boom
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewLedgerStore(stubDB{})
	lines := []LineInput{{ID: "l1"}, {ID: "l2"}}
	if err := store.InsertLines(context.Background(), tx, lines); !errors.Is(err, boom) {
		t.Fatalf("expected insert error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestLedgerStoreSumByAccount(t *testing.T) {
	db := stubDB{
		getFn: func(ctx context.Context, dest any, query string, args ...any) error {
			if args[0] != "a1" {
				t.Fatalf("unexpected args: %v", args)
			}
			sum := dest.(*decimal.Decimal)
			*sum = decimal.NewFromInt(250)
			return nil
		},
	}
	store := NewLedgerStore(db)
	sum, err := store.SumByAccount(context.Background(), "a1")
	if err != nil {
		t.Fatalf("SumByAccount returned error: %v", err)
	}
	if !sum.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("sum = %s", sum)
	}
}
