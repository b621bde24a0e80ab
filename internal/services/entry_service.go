package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"bookkeeping/internal/chart"
	"bookkeeping/internal/db"
	"bookkeeping/internal/models"
	"bookkeeping/internal/money"
	"bookkeeping/internal/store"
	"bookkeeping/internal/subledgers"
	"bookkeeping/internal/tabular"
	"bookkeeping/internal/websocket"
)

// ErrMissingType means a row had no type column and the caller supplied no
// object name either.
var ErrMissingType = fmt.Errorf("no type column and no object name given")

// MissingFieldsError lists required fields still absent after typing and
// account injection.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing fields: " + strings.Join(e.Fields, ", ")
}

// UnbalancedEntryError reports a row whose declared value disagrees with the
// net of its postings.
type UnbalancedEntryError struct {
	Declared decimal.Decimal
	Computed decimal.Decimal
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("declared value %s does not equal remaining balance %s", e.Declared, e.Computed)
}

// PersistenceError wraps a subledger record insert that failed after its
// transaction was already created. The transaction is deleted before this
// propagates; Fields names what was being written.
type PersistenceError struct {
	Fields []string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("creating record (fields: %s): %v", strings.Join(e.Fields, ", "), e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

type AccountStore interface {
	List(ctx context.Context) ([]models.Account, error)
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	Delete(ctx context.Context, tx store.Execer, transactionID string) error
}

type LedgerStore interface {
	InsertLines(ctx context.Context, tx store.Execer, lines []store.LineInput) error
}

type EntryStore interface {
	CreateJournalEntry(ctx context.Context, tx store.Execer, input store.JournalEntryInput) error
	CreateSale(ctx context.Context, tx store.Execer, input store.SaleInput) error
	CreateExpense(ctx context.Context, tx store.Execer, input store.ExpenseInput) error
	CreateCreditorInvoice(ctx context.Context, tx store.Execer, input store.CreditorInvoiceInput) error
}

type EntryHub interface {
	BroadcastEntry(userID string, update websocket.EntryUpdate)
}

// CreatedEntry is the handle returned for each materialized record.
type CreatedEntry struct {
	Kind          subledgers.Kind `json:"kind"`
	EntryID       string          `json:"entry_id"`
	TransactionID string          `json:"transaction_id"`
}

// EntryService is the entry-creation pipeline: it turns a tabular dump into
// subledger records, each owning one balanced ledger transaction.
type EntryService struct {
	txRunner     db.TxRunner
	accounts     AccountStore
	transactions TransactionStore
	ledger       LedgerStore
	entries      EntryStore
	resolver     *RelationResolver
	registry     *subledgers.Registry
	hub          EntryHub
}

func NewEntryService(txRunner db.TxRunner, accounts AccountStore, entities EntityStore, transactions TransactionStore, ledger LedgerStore, entries EntryStore, registry *subledgers.Registry, hub EntryHub) *EntryService {
	return &EntryService{
		txRunner:     txRunner,
		accounts:     accounts,
		transactions: transactions,
		ledger:       ledger,
		entries:      entries,
		resolver:     NewRelationResolver(entities),
		registry:     registry,
		hub:          hub,
	}
}

// posting is one candidate ledger line: an account and a signed value.
type posting struct {
	account models.Account
	value   decimal.Decimal
}

// entryDraft carries a row through the pipeline stages as an owned value:
// resolved type, resolved relation, detected postings, typed fields, and
// finally the closed, zero-sum posting set.
type entryDraft struct {
	spec     subledgers.Spec
	row      tabular.Row
	relation *ResolvedRelation
	postings []posting
	date     time.Time
	dueDate  *time.Time
	gstTotal decimal.Decimal
	value    decimal.Decimal
	missing  []string
}

// ImportDump converts a tabular dump into created subledger records, one per
// row, in row order. The whole batch runs in a single database transaction:
// either every row materializes or none do. typeName may be empty when every
// row carries its own type column.
func (s *EntryService) ImportDump(ctx context.Context, dump, userID, typeName string) ([]CreatedEntry, error) {
	rows, err := tabular.Parse(dump)
	if err != nil {
		return nil, err
	}

	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	cofa := chart.New(accounts)

	var created []CreatedEntry
	var updates []websocket.EntryUpdate
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		for i, row := range rows {
			draft, err := s.buildDraft(ctx, tx, cofa, row, typeName)
			if err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			handle, err := s.materialize(ctx, tx, userID, draft)
			if err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			created = append(created, handle)
			updates = append(updates, websocket.EntryUpdate{
				Kind:          string(handle.Kind),
				EntryID:       handle.EntryID,
				TransactionID: handle.TransactionID,
				Date:          draft.date.Format("2006-01-02"),
				Value:         draft.value.StringFixed(2),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		for _, update := range updates {
			s.hub.BroadcastEntry(userID, update)
		}
	}
	return created, nil
}

// buildDraft runs the per-row stages that need no persistence beyond
// relation get-or-create: type resolution, relation resolution, posting
// detection, typing, GST injection, balance close, completeness check.
func (s *EntryService) buildDraft(ctx context.Context, tx store.Tx, cofa *chart.Chart, row tabular.Row, typeName string) (*entryDraft, error) {
	spec, err := s.resolveType(row, typeName)
	if err != nil {
		return nil, err
	}
	draft := &entryDraft{spec: spec, row: row}

	if err := s.resolveRelation(ctx, tx, draft); err != nil {
		return nil, err
	}
	if err := detectPostings(cofa, draft); err != nil {
		return nil, err
	}
	if err := typeFields(draft); err != nil {
		return nil, err
	}
	if err := injectGST(cofa, draft); err != nil {
		return nil, err
	}
	if err := closeBalance(cofa, draft); err != nil {
		return nil, err
	}
	if err := checkRequired(draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *EntryService) resolveType(row tabular.Row, typeName string) (subledgers.Spec, error) {
	token := row.Get("type")
	if token == "" {
		token = typeName
	}
	if token == "" {
		return subledgers.Spec{}, ErrMissingType
	}
	return s.registry.Resolve(token)
}

// resolveRelation attaches the row's counterparty when a relation column is
// present and non-empty. A present-but-blank column attaches nothing; the
// completeness check decides later whether that is fatal for this type.
func (s *EntryService) resolveRelation(ctx context.Context, tx store.Tx, draft *entryDraft) error {
	for _, header := range draft.row.Headers {
		if !subledgers.IsRelationColumn(header) {
			continue
		}
		code := draft.row.Get(header)
		if code == "" {
			return nil
		}
		resolved, err := s.resolver.Resolve(ctx, tx, code, draft.spec.RelationKind)
		if err != nil {
			return err
		}
		draft.relation = &resolved
		return nil
	}
	return nil
}

// detectPostings finds every column whose header resolves to a chart account
// and whose cell is non-empty, preserving column order.
func detectPostings(cofa *chart.Chart, draft *entryDraft) error {
	for _, header := range draft.row.Headers {
		account, ok := cofa.Resolve(header)
		if !ok {
			continue
		}
		cell := draft.row.Get(header)
		if cell == "" {
			continue
		}
		value, err := money.ParseDecimal(cell)
		if err != nil {
			return fmt.Errorf("column %s: %w", header, err)
		}
		draft.postings = append(draft.postings, posting{account: account, value: value})
	}
	return nil
}

// typeFields coerces the declared date and decimal fields that are present.
func typeFields(draft *entryDraft) error {
	for _, field := range draft.spec.DateFields {
		raw := draft.row.Get(field)
		if raw == "" {
			continue
		}
		parsed, err := money.ParseDate(raw)
		if err != nil {
			return fmt.Errorf("field %s: %w", field, err)
		}
		switch field {
		case "date":
			draft.date = parsed
		case "due_date":
			due := parsed
			draft.dueDate = &due
		}
	}
	if raw := draft.row.Get("gst_total"); raw != "" {
		parsed, err := money.ParseDecimal(raw)
		if err != nil {
			return fmt.Errorf("field gst_total: %w", err)
		}
		draft.gstTotal = parsed
	}
	return nil
}

// injectGST appends the synthetic tax posting for GST-carrying types, unless
// the row already posts to a GST account explicitly.
func injectGST(cofa *chart.Chart, draft *entryDraft) error {
	spec := draft.spec
	if !spec.IsGST {
		return nil
	}
	for _, p := range draft.postings {
		code := chart.Code{Element: p.account.Element, Number: p.account.Number}
		if code == spec.GSTDRAccount || code == spec.GSTCRAccount {
			return nil
		}
	}
	if draft.row.Get("gst_total") == "" {
		draft.missing = append(draft.missing, "gst_total")
		return nil
	}
	gstCode := spec.GSTCRAccount
	if spec.ControlSide == subledgers.SideDR {
		gstCode = spec.GSTDRAccount
	}
	account, err := cofa.Get(gstCode)
	if err != nil {
		return err
	}
	draft.postings = append(draft.postings, posting{account: account, value: draft.gstTotal})
	return nil
}

// closeBalance applies the type's sign convention once to every collected
// posting, verifies any declared value against the net, and closes the set
// to zero against the control account. Types without a control account must
// already net to zero.
func closeBalance(cofa *chart.Chart, draft *entryDraft) error {
	spec := draft.spec
	declared := draft.row.Get("value")

	if !spec.HasControl() {
		net := decimal.Zero
		debits := decimal.Zero
		for _, p := range draft.postings {
			net = net.Add(p.value)
			if p.value.IsPositive() {
				debits = debits.Add(p.value)
			}
		}
		if !net.IsZero() {
			declaredValue := decimal.Zero
			if declared != "" {
				declaredValue, _ = money.ParseDecimal(declared)
			}
			return &UnbalancedEntryError{Declared: declaredValue, Computed: net}
		}
		draft.value = debits
		if declared != "" {
			declaredValue, err := money.ParseDecimal(declared)
			if err != nil {
				return fmt.Errorf("field value: %w", err)
			}
			draft.value = declaredValue
		}
		return nil
	}

	// Sign convention is applied once, uniformly, to the collected set.
	if spec.ControlSide == subledgers.SideDR {
		for i := range draft.postings {
			draft.postings[i].value = draft.postings[i].value.Neg()
		}
	}
	net := decimal.Zero
	for _, p := range draft.postings {
		net = net.Add(p.value)
	}
	// With a required field already known missing the net is meaningless;
	// let the completeness check report instead of a spurious imbalance.
	if declared != "" && len(draft.missing) == 0 {
		declaredValue, err := money.ParseDecimal(declared)
		if err != nil {
			return fmt.Errorf("field value: %w", err)
		}
		if !declaredValue.Equal(net.Abs()) {
			return &UnbalancedEntryError{Declared: declaredValue, Computed: net}
		}
	}
	control, err := cofa.Get(spec.ControlAccount)
	if err != nil {
		return err
	}
	// The closing posting is the exact negation of the net: this lands on
	// the debit side for DR-balancing types and the credit side for
	// CR-balancing ones, and keeps mixed-sign posting sets at zero too.
	draft.postings = append(draft.postings, posting{account: control, value: net.Neg()})
	draft.value = net.Abs()
	return nil
}

// checkRequired verifies every field the registry demands is present and
// non-empty after typing and injection.
func checkRequired(draft *entryDraft) error {
	missing := draft.missing
	for _, field := range draft.spec.Required {
		switch field {
		case "date":
			if draft.date.IsZero() {
				missing = append(missing, field)
			}
		case "value":
			// computed by closeBalance, always present
		case "relation":
			if draft.relation == nil {
				missing = append(missing, field)
			}
		case "gst_total":
			if draft.row.Get("gst_total") == "" && !hasMissing(missing, "gst_total") {
				missing = append(missing, field)
			}
		default:
			if draft.row.Get(field) == "" {
				missing = append(missing, field)
			}
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: dedupe(missing)}
	}
	return nil
}

// materialize creates the transaction with its lines, then the owning
// subledger record, all inside the surrounding database transaction. A
// record failure deletes the freshly created transaction before the error
// propagates so no orphaned transaction can ever be observed.
func (s *EntryService) materialize(ctx context.Context, tx *sqlx.Tx, userID string, draft *entryDraft) (CreatedEntry, error) {
	transactionID := uuid.NewString()

	sum := decimal.Zero
	lines := make([]store.LineInput, 0, len(draft.postings))
	for _, p := range draft.postings {
		sum = sum.Add(p.value)
		lines = append(lines, store.LineInput{
			ID:            uuid.NewString(),
			TransactionID: transactionID,
			AccountID:     p.account.ID,
			Value:         p.value,
		})
	}

	reference := ""
	if !fieldClaimed(draft.spec, "reference") {
		reference = draft.row.Get("reference")
	}
	if err := s.transactions.Create(ctx, tx, store.TransactionInput{
		ID:         transactionID,
		Date:       draft.date,
		Reference:  reference,
		Value:      draft.value,
		Note:       draft.row.Get("note"),
		UserID:     userID,
		Source:     draft.spec.Source,
		IsBalanced: sum.IsZero(),
	}); err != nil {
		return CreatedEntry{}, err
	}
	if err := s.ledger.InsertLines(ctx, tx, lines); err != nil {
		return CreatedEntry{}, err
	}

	entryID := uuid.NewString()
	if err := s.createRecord(ctx, tx, entryID, transactionID, draft); err != nil {
		// Never leave a transaction with no owning record behind.
		_ = s.transactions.Delete(ctx, tx, transactionID)
		return CreatedEntry{}, &PersistenceError{Fields: draft.spec.Fields, Err: err}
	}
	return CreatedEntry{Kind: draft.spec.Kind, EntryID: entryID, TransactionID: transactionID}, nil
}

func (s *EntryService) createRecord(ctx context.Context, tx store.Execer, entryID, transactionID string, draft *entryDraft) error {
	additional := draft.row.Get("additional")
	switch draft.spec.Kind {
	case subledgers.KindJournalEntry:
		var entityID *string
		if draft.relation != nil {
			entityID = &draft.relation.EntityID
		}
		return s.entries.CreateJournalEntry(ctx, tx, store.JournalEntryInput{
			ID:            entryID,
			TransactionID: transactionID,
			EntityID:      entityID,
			Additional:    additional,
		})
	case subledgers.KindSale:
		return s.entries.CreateSale(ctx, tx, store.SaleInput{
			ID:            entryID,
			TransactionID: transactionID,
			GSTTotal:      draft.gstTotal,
			Additional:    additional,
		})
	case subledgers.KindExpense:
		var entityID *string
		if draft.relation != nil {
			entityID = &draft.relation.EntityID
		}
		return s.entries.CreateExpense(ctx, tx, store.ExpenseInput{
			ID:            entryID,
			TransactionID: transactionID,
			EntityID:      entityID,
			GSTTotal:      draft.gstTotal,
			Additional:    additional,
		})
	case subledgers.KindCreditorInvoice:
		return s.entries.CreateCreditorInvoice(ctx, tx, store.CreditorInvoiceInput{
			ID:            entryID,
			TransactionID: transactionID,
			CreditorID:    draft.relation.ID,
			InvoiceNumber: draft.row.Get("invoice_number"),
			OrderNumber:   draft.row.Get("order_number"),
			Reference:     draft.row.Get("reference"),
			DueDate:       draft.dueDate,
			GSTTotal:      draft.gstTotal,
			IsCredit:      parseFlag(draft.row.Get("is_credit")),
			Additional:    additional,
		})
	}
	return fmt.Errorf("no record writer for kind %s", draft.spec.Kind)
}

func fieldClaimed(spec subledgers.Spec, field string) bool {
	for _, f := range spec.Fields {
		if f == field {
			return true
		}
	}
	return false
}

func parseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "t", "yes", "y", "1":
		return true
	}
	return false
}

func hasMissing(missing []string, field string) bool {
	for _, m := range missing {
		if m == field {
			return true
		}
	}
	return false
}

func dedupe(fields []string) []string {
	seen := make(map[string]struct{}, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
