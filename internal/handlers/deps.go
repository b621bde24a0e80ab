package handlers

import (
	"context"

	"bookkeeping/internal/models"
	"bookkeeping/internal/services"
	"bookkeeping/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
	IsStaff(ctx context.Context, userID string) (bool, error)
}

type AccountStore interface {
	Create(ctx context.Context, tx store.Execer, input store.AccountInput) error
	List(ctx context.Context) ([]models.Account, error)
	GetByCode(ctx context.Context, element models.Element, number string) (models.Account, error)
}

type EntityStore interface {
	Create(ctx context.Context, tx store.Execer, id, name, code string) error
	List(ctx context.Context) ([]models.Entity, error)
}

type TransactionStore interface {
	GetByID(ctx context.Context, transactionID string) (models.Transaction, error)
	ListByUser(ctx context.Context, userID, source string, limit, offset int) ([]models.Transaction, error)
	UpdateNote(ctx context.Context, tx store.Execer, transactionID, note string) error
}

type LedgerStore interface {
	ListByTransaction(ctx context.Context, transactionID string) ([]models.Line, error)
}

type ImportService interface {
	ImportDump(ctx context.Context, dump, userID, typeName string) ([]services.CreatedEntry, error)
}
