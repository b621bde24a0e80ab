package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"bookkeeping/internal/models"
	"bookkeeping/internal/store"
	"bookkeeping/internal/subledgers"
	"bookkeeping/internal/websocket"
)

type fakeTxRunner struct {
	calls int
}

func (r *fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	r.calls++
	return fn(nil)
}

type stubAccountStore struct {
	accounts []models.Account
}

func (s *stubAccountStore) List(ctx context.Context) ([]models.Account, error) {
	return s.accounts, nil
}

type recordingTransactionStore struct {
	created []store.TransactionInput
	deleted []string
}

func (s *recordingTransactionStore) Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error {
	s.created = append(s.created, input)
	return nil
}

func (s *recordingTransactionStore) Delete(ctx context.Context, tx store.Execer, transactionID string) error {
	s.deleted = append(s.deleted, transactionID)
	return nil
}

type recordingLedgerStore struct {
	lines [][]store.LineInput
}

func (s *recordingLedgerStore) InsertLines(ctx context.Context, tx store.Execer, lines []store.LineInput) error {
	s.lines = append(s.lines, lines)
	return nil
}

type recordingEntryStore struct {
	journals []store.JournalEntryInput
	sales    []store.SaleInput
	expenses []store.ExpenseInput
	invoices []store.CreditorInvoiceInput

	journalErr error
	invoiceErr error
}

func (s *recordingEntryStore) CreateJournalEntry(ctx context.Context, tx store.Execer, input store.JournalEntryInput) error {
	if s.journalErr != nil {
		return s.journalErr
	}
	s.journals = append(s.journals, input)
	return nil
}

func (s *recordingEntryStore) CreateSale(ctx context.Context, tx store.Execer, input store.SaleInput) error {
	s.sales = append(s.sales, input)
	return nil
}

func (s *recordingEntryStore) CreateExpense(ctx context.Context, tx store.Execer, input store.ExpenseInput) error {
	s.expenses = append(s.expenses, input)
	return nil
}

func (s *recordingEntryStore) CreateCreditorInvoice(ctx context.Context, tx store.Execer, input store.CreditorInvoiceInput) error {
	if s.invoiceErr != nil {
		return s.invoiceErr
	}
	s.invoices = append(s.invoices, input)
	return nil
}

type recordingHub struct {
	updates []websocket.EntryUpdate
}

func (h *recordingHub) BroadcastEntry(userID string, update websocket.EntryUpdate) {
	h.updates = append(h.updates, update)
}

// The chart every scenario posts against; the fixed accounts match the
// default registry configuration.
func pipelineAccounts() []models.Account {
	return []models.Account{
		{ID: "bank", Element: models.ElementAsset, Number: "0101", Name: "Bank Account"},
		{ID: "debtors", Element: models.ElementAsset, Number: "0510", Name: "Trade Debtors"},
		{ID: "creditors-control", Element: models.ElementLiability, Number: "0300", Name: "Trade Creditors"},
		{ID: "sale-control", Element: models.ElementLiability, Number: "0410", Name: "Sales Clearing"},
		{ID: "expense-control", Element: models.ElementLiability, Number: "0430", Name: "Expense Clearing"},
		{ID: "gst-dr", Element: models.ElementLiability, Number: "0713", Name: "GST Paid"},
		{ID: "gst-cr", Element: models.ElementLiability, Number: "0733", Name: "GST Collected"},
		{ID: "equity", Element: models.ElementOwnerEquity, Number: "0100", Name: "Owner Capital"},
		{ID: "income", Element: models.ElementRevenue, Number: "0100", Name: "Sales Income"},
		{ID: "expense", Element: models.ElementExpense, Number: "0100", Name: "General Expenses"},
	}
}

type pipelineFixture struct {
	service      *EntryService
	txRunner     *fakeTxRunner
	transactions *recordingTransactionStore
	ledger       *recordingLedgerStore
	entries      *recordingEntryStore
	hub          *recordingHub
}

func newPipelineFixture(t *testing.T, entities *stubEntityStore) *pipelineFixture {
	t.Helper()
	registry, err := subledgers.New(subledgers.DefaultAccountsConfig())
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}
	if entities == nil {
		entities = &stubEntityStore{}
	}
	fixture := &pipelineFixture{
		txRunner:     &fakeTxRunner{},
		transactions: &recordingTransactionStore{},
		ledger:       &recordingLedgerStore{},
		entries:      &recordingEntryStore{},
		hub:          &recordingHub{},
	}
	fixture.service = NewEntryService(
		fixture.txRunner,
		&stubAccountStore{accounts: pipelineAccounts()},
		entities,
		fixture.transactions,
		fixture.ledger,
		fixture.entries,
		registry,
		fixture.hub,
	)
	return fixture
}

func lineValue(t *testing.T, lines []store.LineInput, accountID string) decimal.Decimal {
	t.Helper()
	for _, line := range lines {
		if line.AccountID == accountID {
			return line.Value
		}
	}
	t.Fatalf("no line for account %s", accountID)
	return decimal.Zero
}

func sumLines(lines []store.LineInput) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line.Value)
	}
	return sum
}

func TestImportJournalEntry(t *testing.T) {
	fixture := newPipelineFixture(t, nil)
	dump := "date\tvalue\t[01-0101]\t[05-0100]\n11-Dec-2015\t1000\t1000\t-1000\n"
	created, err := fixture.service.ImportDump(context.Background(), dump, "user-1", "JournalEntry")
	if err != nil {
		t.Fatalf("ImportDump returned error: %v", err)
	}
	if len(created) != 1 || created[0].Kind != subledgers.KindJournalEntry {
		t.Fatalf("created = %+v", created)
	}
	if len(fixture.entries.journals) != 1 {
		t.Fatalf("journal records = %d", len(fixture.entries.journals))
	}
	lines := fixture.ledger.lines[0]
	if len(lines) != 2 {
		t.Fatalf("lines = %d", len(lines))
	}
	if !sumLines(lines).IsZero() {
		t.Fatalf("lines do not net to zero: %s", sumLines(lines))
	}
	transaction := fixture.transactions.created[0]
	if !transaction.Value.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("transaction value = %s", transaction.Value)
	}
	if !transaction.IsBalanced {
		t.Fatalf("transaction should be balanced")
	}
	if transaction.Source != "journals.JournalEntry" {
		t.Fatalf("source = %q", transaction.Source)
	}
	if transaction.Date.Format("2006-01-02") != "2015-12-11" {
		t.Fatalf("date = %s", transaction.Date)
	}
}

func TestImportJournalEntryUnbalanced(t *testing.T) {
	fixture := newPipelineFixture(t, nil)
	dump := "date\tvalue\t[01-0101]\t[05-0100]\n11-Dec-2015\t1000\t1000\t-900\n"
	_, err := fixture.service.ImportDump(context.Background(), dump, "user-1", "JournalEntry")
	var unbalanced *UnbalancedEntryError
	if !errors.As(err, &unbalanced) {
		t.Fatalf("expected UnbalancedEntryError, got %v", err)
	}
	if len(fixture.transactions.created) != 0 {
		t.Fatalf("no transaction should be created")
	}
}

func TestImportSaleInjectsGSTAndCloses(t *testing.T) {
	fixture := newPipelineFixture(t, nil)
	// A sale posts its takings as raw positives; the DR convention flips
	// them, GST lands on the GST DR account, and the control closes the set.
	dump := "date\tvalue\tgst_total\t[10-0100]\n14-Dec-2015\t1100\t100\t1000\n"
	created, err := fixture.service.ImportDump(context.Background(), dump, "user-1", "Sale")
	if err != nil {
		t.Fatalf("ImportDump returned error: %v", err)
	}
	if len(created) != 1 || created[0].Kind != subledgers.KindSale {
		t.Fatalf("created = %+v", created)
	}
	lines := fixture.ledger.lines[0]
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want income + gst + control", len(lines))
	}
	if got := lineValue(t, lines, "income"); !got.Equal(decimal.NewFromInt(-1000)) {
		t.Fatalf("income line = %s, want -1000", got)
	}
	if got := lineValue(t, lines, "gst-dr"); !got.Equal(decimal.NewFromInt(-100)) {
		t.Fatalf("gst line = %s, want -100", got)
	}
	if got := lineValue(t, lines, "sale-control"); !got.Equal(decimal.NewFromInt(1100)) {
		t.Fatalf("control line = %s, want 1100", got)
	}
	if !sumLines(lines).IsZero() {
		t.Fatalf("lines do not net to zero")
	}
	if !fixture.transactions.created[0].Value.Equal(decimal.NewFromInt(1100)) {
		t.Fatalf("transaction value = %s", fixture.transactions.created[0].Value)
	}
	sale := fixture.entries.sales[0]
	if !sale.GSTTotal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("sale gst_total = %s", sale.GSTTotal)
	}
}

func TestImportSaleExplicitGSTColumnSkipsInjection(t *testing.T) {
	fixture := newPipelineFixture(t, nil)
	dump := "date\tvalue\tgst_total\t[10-0100]\t[03-0713]\n14-Dec-2015\t1100\t100\t1000\t100\n"
	_, err := fixture.service.ImportDump(context.Background(), dump, "user-1", "Sale")
	if err != nil {
		t.Fatalf("ImportDump returned error: %v", err)
	}
	lines := fixture.ledger.lines[0]
	gstLines := 0
	for _, line := range lines {
		if line.AccountID == "gst-dr" {
			gstLines++
		}
	}
	if gstLines != 1 {
		t.Fatalf("gst lines = %d, want exactly one", gstLines)
	}
	if !sumLines(lines).IsZero() {
		t.Fatalf("lines do not net to zero")
	}
}

func TestImportSaleMissingGSTTotal(t *testing.T) {
	fixture := newPipelineFixture(t, nil)
	dump := "date\tvalue\t[10-0100]\n14-Dec-2015\t1000\t1000\n"
	_, err := fixture.service.ImportDump(context.Background(), dump, "user-1", "Sale")
	var missing *MissingFieldsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldsError, got %v", err)
	}
	found := false
	for _, field := range missing.Fields {
		if field == "gst_total" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing fields = %v, want gst_total", missing.Fields)
	}
}

func TestImportExpenseClosesOnCreditSide(t *testing.T) {
	fixture := newPipelineFixture(t, nil)
	dump := "date\tvalue\tgst_total\t[15-0100]\n15-Dec-2015\t110\t10\t100\n"
	_, err := fixture.service.ImportDump(context.Background(), dump, "user-1", "Expense")
	if err != nil {
		t.Fatalf("ImportDump returned error: %v", err)
	}
	lines := fixture.ledger.lines[0]
	if got := lineValue(t, lines, "expense"); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expense line = %s, want 100", got)
	}
	if got := lineValue(t, lines, "gst-cr"); !got.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("gst line = %s, want 10", got)
	}
	if got := lineValue(t, lines, "expense-control"); !got.Equal(decimal.NewFromInt(-110)) {
		t.Fatalf("control line = %s, want -110", got)
	}
	if len(fixture.entries.expenses) != 1 {
		t.Fatalf("expense records = %d", len(fixture.entries.expenses))
	}
}

func TestImportCreditorInvoiceResolvesRelation(t *testing.T) {
	entities := &stubEntityStore{
		getByCodeFn: func(ctx context.Context, tx store.Getter, code string) (models.Entity, error) {
			return models.Entity{ID: "e1", Code: code}, nil
		},
	}
	fixture := newPipelineFixture(t, entities)
	dump := "date\tcreditor\tinvoice_number\tvalue\tgst_total\tdue_date\t[15-0100]\n" +
		"2-Jan-2016\tACME\tINV-042\t110\t10\t1-Feb-2016\t100\n"
	created, err := fixture.service.ImportDump(context.Background(), dump, "user-1", "CreditorInvoice")
	if err != nil {
		t.Fatalf("ImportDump returned error: %v", err)
	}
	if len(created) != 1 || created[0].Kind != subledgers.KindCreditorInvoice {
		t.Fatalf("created = %+v", created)
	}
	invoice := fixture.entries.invoices[0]
	if invoice.InvoiceNumber != "INV-042" {
		t.Fatalf("invoice number = %q", invoice.InvoiceNumber)
	}
	if invoice.CreditorID == "" {
		t.Fatalf("creditor relation should be attached")
	}
	if invoice.DueDate == nil || invoice.DueDate.Format("2006-01-02") != "2016-02-01" {
		t.Fatalf("due date = %v", invoice.DueDate)
	}
	lines := fixture.ledger.lines[0]
	if got := lineValue(t, lines, "creditors-control"); !got.Equal(decimal.NewFromInt(-110)) {
		t.Fatalf("control line = %s, want -110", got)
	}
}

func TestImportCreditorInvoiceUnknownRelation(t *testing.T) {
	fixture := newPipelineFixture(t, &stubEntityStore{})
	dump := "date\tcreditor\tinvoice_number\tvalue\tgst_total\t[15-0100]\n" +
		"2-Jan-2016\tGHOST\tINV-001\t110\t10\t100\n"
	_, err := fixture.service.ImportDump(context.Background(), dump, "user-1", "CreditorInvoice")
	var notFound *RelationNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected RelationNotFoundError, got %v", err)
	}
}

func TestImportRowTypeColumnWinsOverCaller(t *testing.T) {
	fixture := newPipelineFixture(t, nil)
	dump := "type\tdate\tvalue\t[01-0101]\t[05-0100]\nJournalEntry\t11-Dec-2015\t50\t50\t-50\n"
	created, err := fixture.service.ImportDump(context.Background(), dump, "user-1", "Sale")
	if err != nil {
		t.Fatalf("ImportDump returned error: %v", err)
	}
	if created[0].Kind != subledgers.KindJournalEntry {
		t.Fatalf("kind = %s, want JournalEntry from the row", created[0].Kind)
	}
}

func TestImportMissingType(t *testing.T) {
	fixture := newPipelineFixture(t, nil)
	dump := "date\tvalue\t[01-0101]\t[05-0100]\n11-Dec-2015\t50\t50\t-50\n"
	_, err := fixture.service.ImportDump(context.Background(), dump, "user-1", "")
	if !errors.Is(err, ErrMissingType) {
		t.Fatalf("expected ErrMissingType, got %v", err)
	}
}

func TestImportUnknownType(t *testing.T) {
	fixture := newPipelineFixture(t, nil)
	dump := "date\tvalue\t[01-0101]\n11-Dec-2015\t50\t50\n"
	_, err := fixture.service.ImportDump(context.Background(), dump, "user-1", "Payslip")
	var unknown *subledgers.UnknownTypeError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownTypeError, got %v", err)
	}
}

func TestImportBatchIsOneTransaction(t *testing.T) {
	fixture := newPipelineFixture(t, nil)
	dump := "date\tvalue\t[01-0101]\t[05-0100]\n" +
		"11-Dec-2015\t100\t100\t-100\n" +
		"12-Dec-2015\t200\t200\t-200\n"
	created, err := fixture.service.ImportDump(context.Background(), dump, "user-1", "JournalEntry")
	if err != nil {
		t.Fatalf("ImportDump returned error: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created = %d rows", len(created))
	}
	if fixture.txRunner.calls != 1 {
		t.Fatalf("WithTx calls = %d, want the whole batch in one", fixture.txRunner.calls)
	}
}

func TestImportBadRowFailsWholeBatch(t *testing.T) {
	fixture := newPipelineFixture(t, nil)
	dump := "date\tvalue\t[01-0101]\t[05-0100]\n" +
		"11-Dec-2015\t100\t100\t-100\n" +
		"12-Dec-2015\t200\t200\t-150\n"
	_, err := fixture.service.ImportDump(context.Background(), dump, "user-1", "JournalEntry")
	if err == nil {
		t.Fatalf("expected error from second row")
	}
	if len(fixture.hub.updates) != 0 {
		t.Fatalf("no broadcasts on a failed batch")
	}
}

func TestImportRecordFailureDeletesTransaction(t *testing.T) {
	fixture := newPipelineFixture(t, nil)
	fixture.entries.journalErr = errors.New("record insert failed")
	dump := "date\tvalue\t[01-0101]\t[05-0100]\n11-Dec-2015\t100\t100\t-100\n"
	_, err := fixture.service.ImportDump(context.Background(), dump, "user-1", "JournalEntry")
	var persistence *PersistenceError
	if !errors.As(err, &persistence) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if len(fixture.transactions.created) != 1 || len(fixture.transactions.deleted) != 1 {
		t.Fatalf("created=%d deleted=%d, want the orphan cleaned up",
			len(fixture.transactions.created), len(fixture.transactions.deleted))
	}
	if fixture.transactions.deleted[0] != fixture.transactions.created[0].ID {
		t.Fatalf("deleted the wrong transaction")
	}
}

func TestImportBroadcastsAfterCommit(t *testing.T) {
	fixture := newPipelineFixture(t, nil)
	dump := "date\tvalue\t[01-0101]\t[05-0100]\n11-Dec-2015\t100\t100\t-100\n"
	created, err := fixture.service.ImportDump(context.Background(), dump, "user-1", "JournalEntry")
	if err != nil {
		t.Fatalf("ImportDump returned error: %v", err)
	}
	if len(fixture.hub.updates) != 1 {
		t.Fatalf("broadcasts = %d", len(fixture.hub.updates))
	}
	update := fixture.hub.updates[0]
	if update.TransactionID != created[0].TransactionID {
		t.Fatalf("broadcast transaction = %q", update.TransactionID)
	}
	if update.Value != "100.00" {
		t.Fatalf("broadcast value = %q", update.Value)
	}
}

func TestImportBlankValueComputedFromPostings(t *testing.T) {
	fixture := newPipelineFixture(t, nil)
	dump := "date\tvalue\tgst_total\t[10-0100]\n14-Dec-2015\t\t100\t1000\n"
	_, err := fixture.service.ImportDump(context.Background(), dump, "user-1", "Sale")
	if err != nil {
		t.Fatalf("ImportDump returned error: %v", err)
	}
	if !fixture.transactions.created[0].Value.Equal(decimal.NewFromInt(1100)) {
		t.Fatalf("value = %s, want 1100 computed from postings", fixture.transactions.created[0].Value)
	}
}
