package authz

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/cadencehq/cadence/cadenced/database"
)

// ObservationPolicy delegates visibility to the privacy resolver; the
// declarative level on the row replaces self-reference, flag, and hierarchy
// reasoning entirely.
type ObservationPolicy struct{}

func (ObservationPolicy) Type() ResourceType { return ResourceObservation }

func (ObservationPolicy) Allowed(ctx context.Context, env Environment, sub Subject, action Action, obj Object) (bool, error) {
	switch action {
	case ActionShow, ActionViewPermalink:
		visible, err := env.Privacy.VisibleObservation(ctx, sub.privacySubject(), obj.asObservation(), obj.ObserveeIDs)
		if err != nil {
			return false, xerrors.Errorf("resolve observation visibility: %w", err)
		}
		return visible, nil
	case ActionCreate:
		return sub.employed(), nil
	case ActionUpdate, ActionDestroy:
		return sub.teammateIsRef(obj.CreatorID), nil
	default:
		return false, nil
	}
}

// Scope composes the listing filter as a disjunction mirroring the privacy
// levels. Manager visibility is precompiled into an ID list so the filter
// renders to a single bounded query instead of a per-row traversal.
func (ObservationPolicy) Scope(ctx context.Context, env Environment, sub Subject) (AuthorizeFilter, error) {
	if sub.Teammate == nil {
		// Anonymous and teammate-less subjects see only published
		// world-visible rows.
		return FilterAnd(
			termPublished{},
			termObservationLevelIn{Levels: []database.ObservationPrivacy{database.ObservationPublicToWorld}},
		), nil
	}

	managedIDs, err := env.Hierarchy.ManagedTeammateIDs(ctx, sub.Teammate.ID)
	if err != nil {
		return nil, xerrors.Errorf("resolve managed teammates: %w", err)
	}

	clauses := []AuthorizeFilter{
		termCreatorIs{TeammateID: sub.Teammate.ID},
		FilterAnd(
			termPublished{},
			termObservationLevelIn{Levels: []database.ObservationPrivacy{
				database.ObservationPublicToCompany,
				database.ObservationPublicToWorld,
			}},
		),
		FilterAnd(
			termPublished{},
			termObserveeIn{TeammateIDs: []uuid.UUID{sub.Teammate.ID}},
			termObservationLevelIn{Levels: []database.ObservationPrivacy{
				database.ObservationObservedOnly,
				database.ObservationObservedAndManagers,
			}},
		),
	}
	if len(managedIDs) > 0 {
		clauses = append(clauses, FilterAnd(
			termPublished{},
			termObserveeIn{TeammateIDs: managedIDs},
			termObservationLevelIn{Levels: []database.ObservationPrivacy{
				database.ObservationManagersOnly,
				database.ObservationObservedAndManagers,
			}},
			expNot{Expression: termSelfObservation{}},
		))
	}
	return FilterOr(clauses...), nil
}

// asObservation rebuilds the model view the privacy resolver evaluates.
// PublishedAt carries no information beyond being non-nil here.
func (z Object) asObservation() database.Observation {
	obs := database.Observation{
		ID:             z.ID,
		OrganizationID: z.OrgID,
		PrivacyLevel:   z.ObservationLevel,
	}
	if z.CreatorID.Valid {
		obs.CreatorTeammateID = z.CreatorID.UUID
	}
	if z.Published {
		at := time.Unix(0, 0)
		obs.PublishedAt = &at
	}
	return obs
}
