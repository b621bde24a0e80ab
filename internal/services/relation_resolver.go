package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"bookkeeping/internal/models"
	"bookkeeping/internal/store"
	"bookkeeping/internal/subledgers"
)

// RelationNotFoundError reports a counterparty code with no matching entity.
// Relations are created lazily, but only under an entity that already exists.
type RelationNotFoundError struct {
	Code string
}

func (e *RelationNotFoundError) Error() string {
	return fmt.Sprintf("no entity found with code %q", e.Code)
}

// EntityStore is the slice of the entity/relation directory the resolver
// needs. Lookups run through the caller's transaction so resolution inside
// an import batch sees the batch's own writes.
type EntityStore interface {
	GetByCode(ctx context.Context, tx store.Getter, code string) (models.Entity, error)
	GetRelationByEntityCode(ctx context.Context, tx store.Getter, kind, code string) (models.Relation, error)
	CreateRelation(ctx context.Context, tx store.Execer, kind, id, entityID string) error
}

// ResolvedRelation is the outcome of relation resolution: the relation
// record's ID (the entity's own ID when the kind is plain entity) plus the
// backing entity.
type ResolvedRelation struct {
	Kind     subledgers.RelationKind
	ID       string
	EntityID string
}

// RelationResolver maps short counterparty codes to subledger relation
// records, get-or-create style.
type RelationResolver struct {
	entities EntityStore
}

func NewRelationResolver(entities EntityStore) *RelationResolver {
	return &RelationResolver{entities: entities}
}

// CleanCode normalizes a counterparty code to its canonical short form:
// trimmed, uppercased, at most six characters.
func CleanCode(code string) string {
	cleaned := strings.ToUpper(strings.TrimSpace(code))
	if len(cleaned) > 6 {
		cleaned = cleaned[:6]
	}
	return cleaned
}

// Resolve finds the relation record of the given kind behind a code. An
// entity without the relation row gets one created inside tx; a code with no
// entity at all fails with *RelationNotFoundError. Repeated calls with the
// same code return the same record.
func (r *RelationResolver) Resolve(ctx context.Context, tx store.Tx, code string, kind subledgers.RelationKind) (ResolvedRelation, error) {
	cleaned := CleanCode(code)
	if cleaned == "" {
		return ResolvedRelation{}, &RelationNotFoundError{Code: code}
	}

	if kind == subledgers.RelationEntity {
		entity, err := r.entities.GetByCode(ctx, tx, cleaned)
		if errors.Is(err, sql.ErrNoRows) {
			return ResolvedRelation{}, &RelationNotFoundError{Code: cleaned}
		}
		if err != nil {
			return ResolvedRelation{}, err
		}
		return ResolvedRelation{Kind: kind, ID: entity.ID, EntityID: entity.ID}, nil
	}

	relation, err := r.entities.GetRelationByEntityCode(ctx, tx, string(kind), cleaned)
	if err == nil {
		return ResolvedRelation{Kind: kind, ID: relation.ID, EntityID: relation.EntityID}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return ResolvedRelation{}, err
	}

	// Entity may exist without the subledger row yet.
	entity, err := r.entities.GetByCode(ctx, tx, cleaned)
	if errors.Is(err, sql.ErrNoRows) {
		return ResolvedRelation{}, &RelationNotFoundError{Code: cleaned}
	}
	if err != nil {
		return ResolvedRelation{}, err
	}
	relationID := uuid.NewString()
	if err := r.entities.CreateRelation(ctx, tx, string(kind), relationID, entity.ID); err != nil {
		return ResolvedRelation{}, err
	}
	return ResolvedRelation{Kind: kind, ID: relationID, EntityID: entity.ID}, nil
}
