package models

import (
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsStaff      bool      `db:"is_staff" json:"is_staff"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Element is the top-level account classification. The two-digit codes are
// also the leading half of every account code string.
type Element string

const (
	ElementAsset       Element = "01"
	ElementLiability   Element = "03"
	ElementOwnerEquity Element = "05"
	ElementRevenue     Element = "10"
	ElementExpense     Element = "15"
)

func (e Element) Valid() bool {
	switch e {
	case ElementAsset, ElementLiability, ElementOwnerEquity, ElementRevenue, ElementExpense:
		return true
	}
	return false
}

func (e Element) String() string {
	switch e {
	case ElementAsset:
		return "Asset"
	case ElementLiability:
		return "Liability"
	case ElementOwnerEquity:
		return "Owner's Equity"
	case ElementRevenue:
		return "Revenue"
	case ElementExpense:
		return "Expense"
	}
	return string(e)
}

// SpecialAccount tags accounts with a system role the subledgers rely on.
type SpecialAccount string

const (
	SpecialNone               SpecialAccount = ""
	SpecialAccountsPayable    SpecialAccount = "accounts_payable"
	SpecialAccountsReceivable SpecialAccount = "accounts_receivable"
	SpecialBank               SpecialAccount = "bank"
	SpecialOwnerEquity        SpecialAccount = "owner_equity"
	SpecialSuspense           SpecialAccount = "suspense"
)

type Account struct {
	ID          string         `db:"id" json:"id"`
	Element     Element        `db:"element" json:"element"`
	Number      string         `db:"number" json:"number"`
	Name        string         `db:"name" json:"name"`
	ParentID    *string        `db:"parent_id" json:"parent_id,omitempty"`
	Special     SpecialAccount `db:"special" json:"special,omitempty"`
	Tags        pq.StringArray `db:"tags" json:"tags,omitempty"`
	Description string         `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// Code renders the canonical "{element}-{number}" form, number zero-padded
// to four digits.
func (a Account) Code() string {
	return fmt.Sprintf("%s-%04s", string(a.Element), a.Number)
}

type Entity struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Relation is a subledger counterparty row (creditor, debtor) backed 1:1 by
// an Entity.
type Relation struct {
	ID        string    `db:"id" json:"id"`
	EntityID  string    `db:"entity_id" json:"entity_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Transaction is the master ledger object. Its lines must net to zero;
// Value holds the absolute magnitude of one side.
type Transaction struct {
	ID         string          `db:"id" json:"id"`
	Date       time.Time       `db:"date" json:"date"`
	Reference  string          `db:"reference" json:"reference"`
	Value      decimal.Decimal `db:"value" json:"value"`
	Note       string          `db:"note" json:"note"`
	UserID     string          `db:"user_id" json:"user_id"`
	Source     string          `db:"source" json:"source"`
	IsBalanced bool            `db:"is_balanced" json:"is_balanced"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// Line is a single signed posting against one account. Positive is a debit.
type Line struct {
	ID            string          `db:"id" json:"id"`
	TransactionID string          `db:"transaction_id" json:"transaction_id"`
	AccountID     string          `db:"account_id" json:"account_id"`
	Value         decimal.Decimal `db:"value" json:"value"`
	Note          string          `db:"note" json:"note"`
}

type JournalEntry struct {
	ID            string    `db:"id" json:"id"`
	TransactionID string    `db:"transaction_id" json:"transaction_id"`
	EntityID      *string   `db:"entity_id" json:"entity_id,omitempty"`
	Additional    string    `db:"additional" json:"additional,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type Sale struct {
	ID            string          `db:"id" json:"id"`
	TransactionID string          `db:"transaction_id" json:"transaction_id"`
	GSTTotal      decimal.Decimal `db:"gst_total" json:"gst_total"`
	Additional    string          `db:"additional" json:"additional,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

type Expense struct {
	ID            string          `db:"id" json:"id"`
	TransactionID string          `db:"transaction_id" json:"transaction_id"`
	EntityID      *string         `db:"entity_id" json:"entity_id,omitempty"`
	GSTTotal      decimal.Decimal `db:"gst_total" json:"gst_total"`
	Additional    string          `db:"additional" json:"additional,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

type CreditorInvoice struct {
	ID            string          `db:"id" json:"id"`
	TransactionID string          `db:"transaction_id" json:"transaction_id"`
	CreditorID    string          `db:"creditor_id" json:"creditor_id"`
	InvoiceNumber string          `db:"invoice_number" json:"invoice_number"`
	OrderNumber   string          `db:"order_number" json:"order_number,omitempty"`
	Reference     string          `db:"reference" json:"reference,omitempty"`
	DueDate       *time.Time      `db:"due_date" json:"due_date,omitempty"`
	GSTTotal      decimal.Decimal `db:"gst_total" json:"gst_total"`
	IsCredit      bool            `db:"is_credit" json:"is_credit"`
	Additional    string          `db:"additional" json:"additional,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}
