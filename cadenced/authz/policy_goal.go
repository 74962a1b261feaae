package authz

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/cadencehq/cadence/cadenced/database"
)

// GoalPolicy delegates reads to the privacy resolver. Writes belong to the
// creator and to a teammate owner; the manage_maap flag additionally grants
// them upstream.
type GoalPolicy struct{}

func (GoalPolicy) Type() ResourceType { return ResourceGoal }

func (GoalPolicy) Allowed(ctx context.Context, env Environment, sub Subject, action Action, obj Object) (bool, error) {
	switch action {
	case ActionShow:
		visible, err := env.Privacy.VisibleGoal(ctx, sub.privacySubject(), obj.asGoal())
		if err != nil {
			return false, xerrors.Errorf("resolve goal visibility: %w", err)
		}
		return visible, nil
	case ActionCreate:
		return sub.employed(), nil
	case ActionUpdate, ActionDestroy:
		if sub.teammateIsRef(obj.CreatorID) {
			return true, nil
		}
		return obj.GoalOwner != nil &&
			obj.GoalOwner.Kind == database.OwnerTeammate &&
			sub.teammateIs(obj.GoalOwner.ID), nil
	default:
		return false, nil
	}
}

// Scope mirrors VisibleGoal as a disjunction over the goal levels. Owner
// coverage and manager reach are precompiled into ID lists at construction
// time so the rendered filter stays a single bounded query.
func (GoalPolicy) Scope(ctx context.Context, env Environment, sub Subject) (AuthorizeFilter, error) {
	if sub.Teammate == nil {
		return FilterFalse(), nil
	}
	teammate := *sub.Teammate

	departmentIDs, err := env.Store.ListDepartmentIDsByTeammateID(ctx, teammate.ID)
	if err != nil {
		return nil, xerrors.Errorf("list subject departments: %w", err)
	}
	teamIDs, err := env.Store.ListTeamIDsByTeammateID(ctx, teammate.ID)
	if err != nil {
		return nil, xerrors.Errorf("list subject teams: %w", err)
	}
	ownerCovers := FilterOr(
		termOwnerIs{Kind: database.OwnerTeammate, ID: teammate.ID},
		termOwnerIs{Kind: database.OwnerCompany, ID: teammate.OrganizationID},
		termOwnerIn{Kind: database.OwnerDepartment, IDs: departmentIDs},
		termOwnerIn{Kind: database.OwnerTeam, IDs: teamIDs},
	)

	clauses := []AuthorizeFilter{
		termCreatorIs{TeammateID: teammate.ID},
		termGoalLevelIn{Levels: []database.GoalPrivacy{database.GoalEveryoneInCompany}},
		FilterAnd(
			termGoalLevelIn{Levels: []database.GoalPrivacy{
				database.GoalOnlyCreatorAndOwner,
				database.GoalOnlyCreatorOwnerAndManagers,
			}},
			ownerCovers,
		),
	}

	managerReach, err := managedOwnerFilter(ctx, env, teammate)
	if err != nil {
		return nil, err
	}
	if managerReach != nil {
		clauses = append(clauses, FilterAnd(
			termGoalLevelIn{Levels: []database.GoalPrivacy{database.GoalOnlyCreatorOwnerAndManagers}},
			managerReach,
		))
	}
	return FilterOr(clauses...), nil
}

// managedOwnerFilter covers the owners whose membership intersects the
// subject's managed set: managed teammates directly, plus every collective
// with at least one managed member. Returns nil when the subject manages
// nobody.
func managedOwnerFilter(ctx context.Context, env Environment, teammate database.Teammate) (AuthorizeFilter, error) {
	managedIDs, err := env.Hierarchy.ManagedTeammateIDs(ctx, teammate.ID)
	if err != nil {
		return nil, xerrors.Errorf("resolve managed teammates: %w", err)
	}
	if len(managedIDs) == 0 {
		return nil, nil
	}
	managed := make(map[uuid.UUID]struct{}, len(managedIDs))
	for _, id := range managedIDs {
		managed[id] = struct{}{}
	}

	var managedDepartmentIDs []uuid.UUID
	departments, err := env.Store.ListDepartmentsByOrganizationID(ctx, teammate.OrganizationID)
	if err != nil {
		return nil, xerrors.Errorf("list departments: %w", err)
	}
	for _, department := range departments {
		memberIDs, err := env.Store.ListDepartmentMemberIDs(ctx, department.ID)
		if err != nil {
			return nil, xerrors.Errorf("list department members: %w", err)
		}
		if anyManaged(managed, memberIDs) {
			managedDepartmentIDs = append(managedDepartmentIDs, department.ID)
		}
	}

	var managedTeamIDs []uuid.UUID
	teams, err := env.Store.ListTeamsByOrganizationID(ctx, teammate.OrganizationID)
	if err != nil {
		return nil, xerrors.Errorf("list teams: %w", err)
	}
	for _, team := range teams {
		memberIDs, err := env.Store.ListTeamMemberIDs(ctx, team.ID)
		if err != nil {
			return nil, xerrors.Errorf("list team members: %w", err)
		}
		if anyManaged(managed, memberIDs) {
			managedTeamIDs = append(managedTeamIDs, team.ID)
		}
	}

	return FilterOr(
		termOwnerIn{Kind: database.OwnerTeammate, IDs: managedIDs},
		// Managing anyone in the organization reaches company-owned goals.
		termOwnerIs{Kind: database.OwnerCompany, ID: teammate.OrganizationID},
		termOwnerIn{Kind: database.OwnerDepartment, IDs: managedDepartmentIDs},
		termOwnerIn{Kind: database.OwnerTeam, IDs: managedTeamIDs},
	), nil
}

func anyManaged(managed map[uuid.UUID]struct{}, memberIDs []uuid.UUID) bool {
	for _, id := range memberIDs {
		if _, ok := managed[id]; ok {
			return true
		}
	}
	return false
}

func (z Object) asGoal() database.Goal {
	goal := database.Goal{
		ID:             z.ID,
		OrganizationID: z.OrgID,
		PrivacyLevel:   z.GoalLevel,
	}
	if z.CreatorID.Valid {
		goal.CreatorTeammateID = z.CreatorID.UUID
	}
	if z.GoalOwner != nil {
		goal.Owner = *z.GoalOwner
	}
	return goal
}
