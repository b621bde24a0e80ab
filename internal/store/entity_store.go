package store

import (
	"context"
	"fmt"

	"bookkeeping/internal/models"
)

type EntityStore struct {
	db DB
}

func NewEntityStore(db DB) *EntityStore {
	return &EntityStore{db: db}
}

func (s *EntityStore) Create(ctx context.Context, tx Execer, id, name, code string) error {
	query := `
		INSERT INTO entities (id, name, code, is_active)
		VALUES ($1, $2, $3, TRUE)
	`
	_, err := tx.ExecContext(ctx, query, id, name, code)
	return err
}

func (s *EntityStore) List(ctx context.Context) ([]models.Entity, error) {
	var rows []models.Entity
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, code, is_active, created_at
		FROM entities
		ORDER BY code
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByCode looks an entity up inside the caller's transaction so relation
// resolution sees writes made earlier in the same batch.
func (s *EntityStore) GetByCode(ctx context.Context, tx Getter, code string) (models.Entity, error) {
	var row models.Entity
	err := tx.GetContext(ctx, &row, `
		SELECT id, name, code, is_active, created_at
		FROM entities
		WHERE code = $1
	`, code)
	if err != nil {
		return models.Entity{}, err
	}
	return row, nil
}

// relationTables whitelists the tables a relation kind maps to; anything
// else is a programming error.
var relationTables = map[string]string{
	"creditor": "creditors",
	"debtor":   "debtors",
}

func relationTable(kind string) (string, error) {
	table, ok := relationTables[kind]
	if !ok {
		return "", fmt.Errorf("store: no relation table for kind %q", kind)
	}
	return table, nil
}

// GetRelationByEntityCode fetches the creditor/debtor row joined to the
// entity with the given code.
func (s *EntityStore) GetRelationByEntityCode(ctx context.Context, tx Getter, kind, code string) (models.Relation, error) {
	table, err := relationTable(kind)
	if err != nil {
		return models.Relation{}, err
	}
	var row models.Relation
	query := fmt.Sprintf(`
		SELECT r.id, r.entity_id, r.created_at
		FROM %s r
		JOIN entities e ON e.id = r.entity_id
		WHERE e.code = $1
	`, table)
	err = tx.GetContext(ctx, &row, query, code)
	if err != nil {
		return models.Relation{}, err
	}
	return row, nil
}

// CreateRelation inserts the lazy creditor/debtor row for an entity.
func (s *EntityStore) CreateRelation(ctx context.Context, tx Execer, kind, id, entityID string) error {
	table, err := relationTable(kind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, entity_id) VALUES ($1, $2)`, table)
	_, err = tx.ExecContext(ctx, query, id, entityID)
	return err
}
