package store

import (
	"context"

	"github.com/lib/pq"

	"bookkeeping/internal/models"
)

type AccountStore struct {
	db DB
}

func NewAccountStore(db DB) *AccountStore {
	return &AccountStore{db: db}
}

type AccountInput struct {
	ID          string
	Element     models.Element
	Number      string
	Name        string
	ParentID    *string
	Special     models.SpecialAccount
	Tags        []string
	Description string
}

func (s *AccountStore) Create(ctx context.Context, tx Execer, input AccountInput) error {
	query := `
		INSERT INTO accounts (id, element, number, name, parent_id, special, tags, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.Element, input.Number, input.Name,
		input.ParentID, input.Special, pq.StringArray(input.Tags), input.Description,
	)
	return err
}

// List returns the whole chart, ordered the way the chart reads: by element,
// then number.
func (s *AccountStore) List(ctx context.Context) ([]models.Account, error) {
	var rows []models.Account
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, element, number, name, parent_id, special, tags, description, created_at
		FROM accounts
		ORDER BY element, number
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *AccountStore) GetByCode(ctx context.Context, element models.Element, number string) (models.Account, error) {
	var row models.Account
	err := s.db.GetContext(ctx, &row, `
		SELECT id, element, number, name, parent_id, special, tags, description, created_at
		FROM accounts
		WHERE element = $1 AND number = $2
	`, element, number)
	if err != nil {
		return models.Account{}, err
	}
	return row, nil
}

func (s *AccountStore) GetByID(ctx context.Context, accountID string) (models.Account, error) {
	var row models.Account
	err := s.db.GetContext(ctx, &row, `
		SELECT id, element, number, name, parent_id, special, tags, description, created_at
		FROM accounts
		WHERE id = $1
	`, accountID)
	if err != nil {
		return models.Account{}, err
	}
	return row, nil
}
