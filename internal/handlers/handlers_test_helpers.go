package handlers

import (
	"context"
	"database/sql"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"bookkeeping/internal/auth"
	"bookkeeping/internal/config"
	"bookkeeping/internal/models"
	"bookkeeping/internal/services"
	"bookkeeping/internal/store"
	"bookkeeping/internal/websocket"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	return fn(nil)
}

type stubUsers struct {
	createFn     func(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error
	getByEmailFn func(ctx context.Context, email string) (models.User, error)
	getByIDFn    func(ctx context.Context, userID string) (models.User, error)
	isStaffFn    func(ctx context.Context, userID string) (bool, error)
}

func (s *stubUsers) Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, username, email, passwordHash)
}

func (s *stubUsers) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if s.getByEmailFn == nil {
		return models.User{}, sql.ErrNoRows
	}
	return s.getByEmailFn(ctx, email)
}

func (s *stubUsers) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{ID: userID}, nil
	}
	return s.getByIDFn(ctx, userID)
}

func (s *stubUsers) IsStaff(ctx context.Context, userID string) (bool, error) {
	if s.isStaffFn == nil {
		return false, nil
	}
	return s.isStaffFn(ctx, userID)
}

type stubAccounts struct {
	createFn    func(ctx context.Context, tx store.Execer, input store.AccountInput) error
	listFn      func(ctx context.Context) ([]models.Account, error)
	getByCodeFn func(ctx context.Context, element models.Element, number string) (models.Account, error)
}

func (s *stubAccounts) Create(ctx context.Context, tx store.Execer, input store.AccountInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s *stubAccounts) List(ctx context.Context) ([]models.Account, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

func (s *stubAccounts) GetByCode(ctx context.Context, element models.Element, number string) (models.Account, error) {
	if s.getByCodeFn == nil {
		return models.Account{}, sql.ErrNoRows
	}
	return s.getByCodeFn(ctx, element, number)
}

type stubEntities struct {
	createFn func(ctx context.Context, tx store.Execer, id, name, code string) error
	listFn   func(ctx context.Context) ([]models.Entity, error)
}

func (s *stubEntities) Create(ctx context.Context, tx store.Execer, id, name, code string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, name, code)
}

func (s *stubEntities) List(ctx context.Context) ([]models.Entity, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

type stubTransactions struct {
	getByIDFn    func(ctx context.Context, transactionID string) (models.Transaction, error)
	listByUserFn func(ctx context.Context, userID, source string, limit, offset int) ([]models.Transaction, error)
	updateNoteFn func(ctx context.Context, tx store.Execer, transactionID, note string) error
}

func (s *stubTransactions) GetByID(ctx context.Context, transactionID string) (models.Transaction, error) {
	if s.getByIDFn == nil {
		return models.Transaction{}, sql.ErrNoRows
	}
	return s.getByIDFn(ctx, transactionID)
}

func (s *stubTransactions) ListByUser(ctx context.Context, userID, source string, limit, offset int) ([]models.Transaction, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, source, limit, offset)
}

func (s *stubTransactions) UpdateNote(ctx context.Context, tx store.Execer, transactionID, note string) error {
	if s.updateNoteFn == nil {
		return nil
	}
	return s.updateNoteFn(ctx, tx, transactionID, note)
}

type stubLedger struct {
	listFn func(ctx context.Context, transactionID string) ([]models.Line, error)
}

func (s *stubLedger) ListByTransaction(ctx context.Context, transactionID string) ([]models.Line, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, transactionID)
}

type stubImporter struct {
	importFn func(ctx context.Context, dump, userID, typeName string) ([]services.CreatedEntry, error)
}

func (s *stubImporter) ImportDump(ctx context.Context, dump, userID, typeName string) ([]services.CreatedEntry, error) {
	if s.importFn == nil {
		return nil, nil
	}
	return s.importFn(ctx, dump, userID, typeName)
}

type handlerDeps struct {
	users        *stubUsers
	accounts     *stubAccounts
	entities     *stubEntities
	transactions *stubTransactions
	ledger       *stubLedger
	importer     *stubImporter
}

func newTestHandler(deps handlerDeps) *Handler {
	if deps.users == nil {
		deps.users = &stubUsers{}
	}
	if deps.accounts == nil {
		deps.accounts = &stubAccounts{}
	}
	if deps.entities == nil {
		deps.entities = &stubEntities{}
	}
	if deps.transactions == nil {
		deps.transactions = &stubTransactions{}
	}
	if deps.ledger == nil {
		deps.ledger = &stubLedger{}
	}
	if deps.importer == nil {
		deps.importer = &stubImporter{}
	}
	cfg := config.Config{
		JWTSecret:      "test-secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
	return New(fakeTxRunner{}, cfg, deps.users, deps.accounts, deps.entities, deps.transactions, deps.ledger, deps.importer, websocket.NewHub())
}

func testToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken("test-secret", userID, time.Minute)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	return token
}

func doRequest(t *testing.T, handler *Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)
	return rr
}
