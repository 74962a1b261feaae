// Package membership resolves the zero-or-one teammate record binding a
// person to an organization. Absence of a teammate means every
// organization-scoped permission predicate denies, so callers treat
// ErrNotMember as a normal deny, not a fault.
package membership

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/cadencehq/cadence/cadenced/database"
)

// ErrNotMember is returned when the person has no teammate record in the
// organization.
var ErrNotMember = xerrors.New("person is not a member of the organization")

type Resolver struct {
	store database.Store
}

func NewResolver(store database.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve looks up the teammate binding the person to the organization.
// Pure lookup, no side effects.
func (r *Resolver) Resolve(ctx context.Context, personID, organizationID uuid.UUID) (database.Teammate, error) {
	teammate, err := r.store.GetTeammateByPersonAndOrganization(ctx, database.GetTeammateByPersonAndOrganizationParams{
		PersonID:       personID,
		OrganizationID: organizationID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return database.Teammate{}, ErrNotMember
	}
	if err != nil {
		return database.Teammate{}, xerrors.Errorf("get teammate: %w", err)
	}
	return teammate, nil
}

// ResolveByID fetches a teammate directly. Used when the session layer
// carries a teammate ID rather than a (person, organization) pair.
func (r *Resolver) ResolveByID(ctx context.Context, teammateID uuid.UUID) (database.Teammate, error) {
	teammate, err := r.store.GetTeammateByID(ctx, teammateID)
	if errors.Is(err, sql.ErrNoRows) {
		return database.Teammate{}, ErrNotMember
	}
	if err != nil {
		return database.Teammate{}, xerrors.Errorf("get teammate by id: %w", err)
	}
	return teammate, nil
}
