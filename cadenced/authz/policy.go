package authz

import (
	"context"
	"fmt"

	"golang.org/x/xerrors"

	"cdr.dev/slog/v3"

	"github.com/cadencehq/cadence/cadenced/database"
	"github.com/cadencehq/cadence/cadenced/hierarchy"
	"github.com/cadencehq/cadence/cadenced/membership"
	"github.com/cadencehq/cadence/cadenced/privacy"
)

// Environment carries the collaborators a policy may consult. Policies hold
// no state of their own; everything they need arrives per call.
type Environment struct {
	Store      database.Store
	Hierarchy  *hierarchy.Traverser
	Privacy    *privacy.Resolver
	Membership *membership.Resolver
	Logger     slog.Logger
}

// Policy decides resource-specific access for one resource type. The engine
// has already handled the cross-cutting steps (subject validation, anonymous
// handling, admin bypass, tenancy, employment gating, central flag grants)
// before Allowed runs; a policy only expresses what is particular to its
// type.
//
// Allowed returns a plain boolean; the engine wraps denies into
// UnauthorizedError centrally so every deny carries identical context.
type Policy interface {
	Type() ResourceType
	Allowed(ctx context.Context, env Environment, sub Subject, action Action, obj Object) (bool, error)
	// Scope returns the filter describing every instance of this type the
	// subject may view, for listing endpoints. Types without a listing
	// surface return ErrNoScope.
	Scope(ctx context.Context, env Environment, sub Subject) (AuthorizeFilter, error)
}

// ErrNoScope is returned by Scope for resource types that have no listing
// surface.
var ErrNoScope = xerrors.New("authz: resource type does not support scoped listing")

// unscoped is embedded by policies whose type is never listed through the
// engine.
type unscoped struct{}

func (unscoped) Scope(context.Context, Environment, Subject) (AuthorizeFilter, error) {
	return nil, ErrNoScope
}

// DefaultPolicies returns the full policy set, keyed by resource type. It
// panics on a duplicate registration since that is a programming error
// caught by any test touching the engine.
func DefaultPolicies() map[ResourceType]Policy {
	policies := map[ResourceType]Policy{}
	register := func(p Policy) {
		if _, ok := policies[p.Type()]; ok {
			panic(fmt.Sprintf("authz: duplicate policy for resource type %q", p.Type()))
		}
		policies[p.Type()] = p
	}

	register(PersonPolicy{})
	register(OrganizationPolicy{})
	register(TeammatePolicy{})
	register(ObservationPolicy{})
	register(GoalPolicy{})
	register(FeedbackRequestPolicy{})
	register(PromptPolicy{})
	register(CheckInPolicy{})
	register(OrgConfigPolicy{Resource: ResourcePosition})
	register(OrgConfigPolicy{Resource: ResourceSeat})
	register(OrgConfigPolicy{Resource: ResourceDepartment})
	register(OrgConfigPolicy{Resource: ResourceTeam})
	register(OrgConfigPolicy{Resource: ResourceKudosReward})

	return policies
}
