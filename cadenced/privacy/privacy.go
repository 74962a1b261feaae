// Package privacy evaluates the declarative privacy enumeration stored on
// observation- and goal-shaped resources against an acting subject.
//
// Publication state is evaluated strictly before the privacy level: an
// unpublished resource is visible only to its creator no matter what level
// it carries. Unknown stored levels fail closed.
package privacy

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/cadencehq/cadence/cadenced/database"
	"github.com/cadencehq/cadence/cadenced/hierarchy"
)

// Subject is the effective viewer. A zero Subject is anonymous.
type Subject struct {
	TeammateID     uuid.NullUUID
	OrganizationID uuid.NullUUID
}

func ForTeammate(t database.Teammate) Subject {
	return Subject{
		TeammateID:     uuid.NullUUID{UUID: t.ID, Valid: true},
		OrganizationID: uuid.NullUUID{UUID: t.OrganizationID, Valid: true},
	}
}

func Anonymous() Subject {
	return Subject{}
}

func (s Subject) is(teammateID uuid.UUID) bool {
	return s.TeammateID.Valid && s.TeammateID.UUID == teammateID
}

func (s Subject) inOrganization(organizationID uuid.UUID) bool {
	return s.OrganizationID.Valid && s.OrganizationID.UUID == organizationID
}

type Resolver struct {
	store     database.Store
	hierarchy *hierarchy.Traverser
}

func NewResolver(store database.Store, traverser *hierarchy.Traverser) *Resolver {
	return &Resolver{store: store, hierarchy: traverser}
}

// VisibleObservation reports whether the subject may view the observation.
// observeeIDs may be passed when the caller already has them loaded; when
// nil they are fetched from the store.
func (r *Resolver) VisibleObservation(ctx context.Context, sub Subject, obs database.Observation, observeeIDs []uuid.UUID) (bool, error) {
	if sub.is(obs.CreatorTeammateID) {
		return true, nil
	}
	// Drafts are creator-only regardless of the stored level.
	if !obs.Published() {
		return false, nil
	}
	if obs.PrivacyLevel == database.ObservationPublicToWorld {
		return true, nil
	}
	// Every remaining level requires tenancy.
	if !sub.inOrganization(obs.OrganizationID) {
		return false, nil
	}

	if observeeIDs == nil {
		var err error
		observeeIDs, err = r.store.ListObserveeIDsByObservationID(ctx, obs.ID)
		if err != nil {
			return false, xerrors.Errorf("list observees: %w", err)
		}
	}

	switch obs.PrivacyLevel {
	case database.ObservationObserverOnly:
		return false, nil
	case database.ObservationObservedOnly:
		return r.subjectIsObservee(sub, observeeIDs), nil
	case database.ObservationManagersOnly:
		return r.subjectManagesObservee(ctx, sub, obs, observeeIDs)
	case database.ObservationObservedAndManagers:
		if r.subjectIsObservee(sub, observeeIDs) {
			return true, nil
		}
		return r.subjectManagesObservee(ctx, sub, obs, observeeIDs)
	case database.ObservationPublicToCompany:
		return true, nil
	default:
		// Unknown stored level: fail closed.
		return false, nil
	}
}

func (*Resolver) subjectIsObservee(sub Subject, observeeIDs []uuid.UUID) bool {
	for _, id := range observeeIDs {
		if sub.is(id) {
			return true
		}
	}
	return false
}

// subjectManagesObservee expands manager visibility over the observee
// relation. A self-observation (the creator is the sole observee)
// intentionally suppresses the expansion: observing yourself does not put
// the record in front of your own manager. This is a deliberate business
// rule, not an oversight.
func (r *Resolver) subjectManagesObservee(ctx context.Context, sub Subject, obs database.Observation, observeeIDs []uuid.UUID) (bool, error) {
	if !sub.TeammateID.Valid {
		return false, nil
	}
	if len(observeeIDs) == 1 && observeeIDs[0] == obs.CreatorTeammateID {
		return false, nil
	}
	for _, observeeID := range observeeIDs {
		is, err := r.hierarchy.IsManagerOf(ctx, sub.TeammateID.UUID, observeeID)
		if err != nil {
			return false, xerrors.Errorf("manager of observee %s: %w", observeeID, err)
		}
		if is {
			return true, nil
		}
	}
	return false, nil
}

// VisibleGoal reports whether the subject may view the goal. When the goal
// owner is a collective, any teammate within the collective's membership
// counts as the owner.
func (r *Resolver) VisibleGoal(ctx context.Context, sub Subject, goal database.Goal) (bool, error) {
	if sub.is(goal.CreatorTeammateID) {
		return true, nil
	}
	if !sub.inOrganization(goal.OrganizationID) {
		return false, nil
	}

	switch goal.PrivacyLevel {
	case database.GoalOnlyCreator:
		return false, nil
	case database.GoalOnlyCreatorAndOwner:
		return r.ownerIncludes(ctx, goal.Owner, sub)
	case database.GoalOnlyCreatorOwnerAndManagers:
		included, err := r.ownerIncludes(ctx, goal.Owner, sub)
		if err != nil || included {
			return included, err
		}
		return r.subjectManagesOwner(ctx, sub, goal.Owner)
	case database.GoalEveryoneInCompany:
		return true, nil
	default:
		return false, nil
	}
}

// ownerIncludes resolves the tagged owner union. The switch is exhaustive
// over owner kinds; an unknown kind is malformed data and denies with an
// error so monitoring can tell it apart from a normal deny.
func (r *Resolver) ownerIncludes(ctx context.Context, owner database.GoalOwner, sub Subject) (bool, error) {
	if !sub.TeammateID.Valid {
		return false, nil
	}
	switch owner.Kind {
	case database.OwnerTeammate:
		return sub.is(owner.ID), nil
	case database.OwnerCompany:
		return sub.inOrganization(owner.ID), nil
	case database.OwnerDepartment:
		memberIDs, err := r.store.ListDepartmentMemberIDs(ctx, owner.ID)
		if err != nil {
			return false, xerrors.Errorf("list department members: %w", err)
		}
		return containsID(memberIDs, sub.TeammateID.UUID), nil
	case database.OwnerTeam:
		memberIDs, err := r.store.ListTeamMemberIDs(ctx, owner.ID)
		if err != nil {
			return false, xerrors.Errorf("list team members: %w", err)
		}
		return containsID(memberIDs, sub.TeammateID.UUID), nil
	default:
		return false, xerrors.Errorf("unknown goal owner kind %q", owner.Kind)
	}
}

// subjectManagesOwner extends visibility to the transitive managers of the
// owning teammate, or of every member when the owner is a collective.
func (r *Resolver) subjectManagesOwner(ctx context.Context, sub Subject, owner database.GoalOwner) (bool, error) {
	if !sub.TeammateID.Valid {
		return false, nil
	}

	var memberIDs []uuid.UUID
	switch owner.Kind {
	case database.OwnerTeammate:
		memberIDs = []uuid.UUID{owner.ID}
	case database.OwnerCompany:
		teammates, err := r.store.ListTeammatesByOrganizationID(ctx, owner.ID)
		if err != nil {
			return false, xerrors.Errorf("list organization teammates: %w", err)
		}
		for _, t := range teammates {
			memberIDs = append(memberIDs, t.ID)
		}
	case database.OwnerDepartment:
		var err error
		memberIDs, err = r.store.ListDepartmentMemberIDs(ctx, owner.ID)
		if err != nil {
			return false, xerrors.Errorf("list department members: %w", err)
		}
	case database.OwnerTeam:
		var err error
		memberIDs, err = r.store.ListTeamMemberIDs(ctx, owner.ID)
		if err != nil {
			return false, xerrors.Errorf("list team members: %w", err)
		}
	default:
		return false, xerrors.Errorf("unknown goal owner kind %q", owner.Kind)
	}

	for _, memberID := range memberIDs {
		is, err := r.hierarchy.IsManagerOf(ctx, sub.TeammateID.UUID, memberID)
		if err != nil {
			return false, xerrors.Errorf("manager of owner member %s: %w", memberID, err)
		}
		if is {
			return true, nil
		}
	}
	return false, nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// AudienceRank orders the observation levels by audience breadth. The
// second return is false for managers_only, which sits off the monotonic
// chain (its audience is neither a subset nor a superset of observed_only).
func AudienceRank(level database.ObservationPrivacy) (int, bool) {
	switch level {
	case database.ObservationObserverOnly:
		return 0, true
	case database.ObservationObservedOnly:
		return 1, true
	case database.ObservationObservedAndManagers:
		return 2, true
	case database.ObservationPublicToCompany:
		return 3, true
	case database.ObservationPublicToWorld:
		return 4, true
	default:
		return 0, false
	}
}
