// Package subledgers is the object type registry: the static, per-type
// configuration the import pipeline consults when it turns a dump row into a
// subledger record plus a balanced ledger transaction.
package subledgers

import (
	"fmt"
	"strings"

	"bookkeeping/internal/chart"
)

// Kind identifies a subledger object type.
type Kind string

const (
	KindJournalEntry    Kind = "JournalEntry"
	KindSale            Kind = "Sale"
	KindExpense         Kind = "Expense"
	KindCreditorInvoice Kind = "CreditorInvoice"
)

// RelationKind names the counterparty record a type attaches to.
type RelationKind string

const (
	RelationEntity   RelationKind = "entity"
	RelationCreditor RelationKind = "creditor"
	RelationDebtor   RelationKind = "debtor"
)

// Side is the trial-balance side a type's control account sits on.
type Side int

const (
	SideNone Side = iota
	SideDR
	SideCR
)

// Transaction-level field names shared by every type. The pipeline fills
// value itself when a dump row leaves it blank, so by completeness-check
// time both are always present.
var requiredTransactionFields = []string{"date", "value"}

// Column headers recognised as the counterparty code for a row.
var relationColumns = []string{"relation", "creditor", "debtor", "entity"}

// Spec is the registry entry for one subledger object type.
type Spec struct {
	Kind   Kind
	Source string // qualified identifier, recorded as Transaction.Source

	// Required is the full union: transaction fields + type-specific ones.
	Required      []string
	DateFields    []string
	DecimalFields []string

	// Fields are the record-level columns split off the row after typing.
	Fields       []string
	RelationKind RelationKind

	IsGST       bool
	ControlSide Side

	ControlAccount chart.Code // zero when ControlSide == SideNone
	GSTDRAccount   chart.Code
	GSTCRAccount   chart.Code
}

// HasControl reports whether the type closes its balance against a fixed
// control account.
func (s Spec) HasControl() bool {
	return s.ControlSide != SideNone
}

// IsRelationColumn reports whether a header names this row's counterparty.
func IsRelationColumn(header string) bool {
	for _, column := range relationColumns {
		if header == column {
			return true
		}
	}
	return false
}

// UnknownTypeError reports a type token no resolution strategy recognised.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("subledgers: no object type %q", e.Name)
}

// Registry maps type tokens to specs. Resolution tries an ordered list of
// strategies (kind, plain name, qualified source) and stops at the first hit.
type Registry struct {
	specs      []Spec
	byKind     map[Kind]Spec
	bySource   map[string]Spec
	strategies []func(string) (Spec, bool)
}

// New builds the registry from the fixed-account configuration. Account
// codes are validated here so a bad deployment fails at startup, not in the
// middle of an import.
func New(cfg AccountsConfig) (*Registry, error) {
	gstDR, err := cfg.parseCode(cfg.GSTDRAccount, "gst_dr_account")
	if err != nil {
		return nil, err
	}
	gstCR, err := cfg.parseCode(cfg.GSTCRAccount, "gst_cr_account")
	if err != nil {
		return nil, err
	}
	control := func(kind Kind) (chart.Code, error) {
		raw, ok := cfg.ControlAccounts[string(kind)]
		if !ok || raw == "" {
			return chart.Code{}, fmt.Errorf("accounts config: no control account for %s", kind)
		}
		return cfg.parseCode(raw, "control account for "+string(kind))
	}
	saleControl, err := control(KindSale)
	if err != nil {
		return nil, err
	}
	expenseControl, err := control(KindExpense)
	if err != nil {
		return nil, err
	}
	invoiceControl, err := control(KindCreditorInvoice)
	if err != nil {
		return nil, err
	}

	specs := []Spec{
		{
			Kind:          KindJournalEntry,
			Source:        "journals.JournalEntry",
			Required:      requiredUnion(),
			DateFields:    []string{"date"},
			DecimalFields: []string{"value"},
			Fields:        []string{"relation", "additional"},
			RelationKind:  RelationEntity,
			ControlSide:   SideNone,
			GSTDRAccount:  gstDR,
			GSTCRAccount:  gstCR,
		},
		{
			Kind:           KindSale,
			Source:         "sales.Sale",
			Required:       requiredUnion("gst_total"),
			DateFields:     []string{"date"},
			DecimalFields:  []string{"value", "gst_total"},
			Fields:         []string{"gst_total", "additional"},
			RelationKind:   RelationEntity,
			IsGST:          true,
			ControlSide:    SideDR,
			ControlAccount: saleControl,
			GSTDRAccount:   gstDR,
			GSTCRAccount:   gstCR,
		},
		{
			Kind:           KindExpense,
			Source:         "expenses.Expense",
			Required:       requiredUnion(),
			DateFields:     []string{"date"},
			DecimalFields:  []string{"value", "gst_total"},
			Fields:         []string{"relation", "gst_total", "additional"},
			RelationKind:   RelationEntity,
			IsGST:          true,
			ControlSide:    SideCR,
			ControlAccount: expenseControl,
			GSTDRAccount:   gstDR,
			GSTCRAccount:   gstCR,
		},
		{
			Kind:           KindCreditorInvoice,
			Source:         "creditors.CreditorInvoice",
			Required:       requiredUnion("relation", "invoice_number", "gst_total"),
			DateFields:     []string{"date", "due_date"},
			DecimalFields:  []string{"value", "gst_total"},
			Fields:         []string{"relation", "invoice_number", "order_number", "reference", "due_date", "gst_total", "is_credit", "additional"},
			RelationKind:   RelationCreditor,
			IsGST:          true,
			ControlSide:    SideCR,
			ControlAccount: invoiceControl,
			GSTDRAccount:   gstDR,
			GSTCRAccount:   gstCR,
		},
	}

	registry := &Registry{
		specs:    specs,
		byKind:   make(map[Kind]Spec, len(specs)),
		bySource: make(map[string]Spec, len(specs)),
	}
	for _, spec := range specs {
		registry.byKind[spec.Kind] = spec
		registry.bySource[spec.Source] = spec
	}
	registry.strategies = []func(string) (Spec, bool){
		registry.resolveKind,
		registry.resolveName,
		registry.resolveSource,
	}
	return registry, nil
}

// Specs returns every registered spec in declaration order.
func (r *Registry) Specs() []Spec {
	return r.specs
}

// Lookup fetches a spec by kind.
func (r *Registry) Lookup(kind Kind) (Spec, bool) {
	spec, ok := r.byKind[kind]
	return spec, ok
}

// Resolve maps a type token from a dump row or a caller to a spec. Exactly
// one of the strategies must succeed; otherwise *UnknownTypeError.
func (r *Registry) Resolve(token string) (Spec, error) {
	for _, strategy := range r.strategies {
		if spec, ok := strategy(token); ok {
			return spec, nil
		}
	}
	return Spec{}, &UnknownTypeError{Name: token}
}

func (r *Registry) resolveKind(token string) (Spec, bool) {
	spec, ok := r.byKind[Kind(token)]
	return spec, ok
}

func (r *Registry) resolveName(token string) (Spec, bool) {
	for _, spec := range r.specs {
		if strings.EqualFold(string(spec.Kind), token) {
			return spec, true
		}
	}
	return Spec{}, false
}

func (r *Registry) resolveSource(token string) (Spec, bool) {
	spec, ok := r.bySource[token]
	return spec, ok
}

func requiredUnion(extra ...string) []string {
	union := make([]string, 0, len(requiredTransactionFields)+len(extra))
	union = append(union, requiredTransactionFields...)
	union = append(union, extra...)
	return union
}
