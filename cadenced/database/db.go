// Package database contains the stateful storage layer consumed by the
// authorization engine and its collaborators.
//
// The engine itself is read-only; the insert functions exist for the
// surrounding application and for test fixtures.
package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store contains all queryable database functions.
type Store interface {
	querier
	inserter

	Ping(ctx context.Context) (time.Duration, error)
}

// querier is the read surface. Every lookup the engine performs during a
// decision goes through here.
type querier interface {
	GetPersonByID(ctx context.Context, id uuid.UUID) (Person, error)
	GetOrganizationByID(ctx context.Context, id uuid.UUID) (Organization, error)
	GetTeammateByID(ctx context.Context, id uuid.UUID) (Teammate, error)
	GetTeammateByPersonAndOrganization(ctx context.Context, arg GetTeammateByPersonAndOrganizationParams) (Teammate, error)

	// GetOpenTenureByTeammateID returns the teammate's current tenure, or
	// sql.ErrNoRows when none is open.
	GetOpenTenureByTeammateID(ctx context.Context, teammateID uuid.UUID) (EmploymentTenure, error)
	// GetLatestEndedTenureByTeammateID returns the most recently ended
	// tenure. Only consulted by policies that retain former-manager
	// visibility.
	GetLatestEndedTenureByTeammateID(ctx context.Context, teammateID uuid.UUID) (EmploymentTenure, error)
	// ListOpenTenuresByManagerID returns the open tenures whose
	// manager_teammate is the given teammate, i.e. their direct reports.
	ListOpenTenuresByManagerID(ctx context.Context, managerTeammateID uuid.UUID) ([]EmploymentTenure, error)

	GetObservationByID(ctx context.Context, id uuid.UUID) (Observation, error)
	ListObserveeIDsByObservationID(ctx context.Context, observationID uuid.UUID) ([]uuid.UUID, error)
	ListObservationsByOrganizationID(ctx context.Context, organizationID uuid.UUID) ([]Observation, error)

	GetGoalByID(ctx context.Context, id uuid.UUID) (Goal, error)
	ListGoalsByOrganizationID(ctx context.Context, organizationID uuid.UUID) ([]Goal, error)

	ListTeammatesByOrganizationID(ctx context.Context, organizationID uuid.UUID) ([]Teammate, error)
	ListDepartmentsByOrganizationID(ctx context.Context, organizationID uuid.UUID) ([]Department, error)
	ListTeamsByOrganizationID(ctx context.Context, organizationID uuid.UUID) ([]Team, error)
	ListDepartmentMemberIDs(ctx context.Context, departmentID uuid.UUID) ([]uuid.UUID, error)
	ListTeamMemberIDs(ctx context.Context, teamID uuid.UUID) ([]uuid.UUID, error)
	ListDepartmentIDsByTeammateID(ctx context.Context, teammateID uuid.UUID) ([]uuid.UUID, error)
	ListTeamIDsByTeammateID(ctx context.Context, teammateID uuid.UUID) ([]uuid.UUID, error)
}

type inserter interface {
	InsertPerson(ctx context.Context, arg InsertPersonParams) (Person, error)
	InsertOrganization(ctx context.Context, arg InsertOrganizationParams) (Organization, error)
	InsertTeammate(ctx context.Context, arg InsertTeammateParams) (Teammate, error)
	InsertEmploymentTenure(ctx context.Context, arg InsertEmploymentTenureParams) (EmploymentTenure, error)
	InsertPosition(ctx context.Context, arg InsertPositionParams) (Position, error)
	InsertSeat(ctx context.Context, arg InsertSeatParams) (Seat, error)
	InsertDepartment(ctx context.Context, arg InsertDepartmentParams) (Department, error)
	InsertTeam(ctx context.Context, arg InsertTeamParams) (Team, error)
	InsertDepartmentMembership(ctx context.Context, arg DepartmentMembership) (DepartmentMembership, error)
	InsertTeamMembership(ctx context.Context, arg TeamMembership) (TeamMembership, error)
	InsertObservation(ctx context.Context, arg InsertObservationParams) (Observation, error)
	InsertGoal(ctx context.Context, arg InsertGoalParams) (Goal, error)
	InsertFeedbackRequest(ctx context.Context, arg InsertFeedbackRequestParams) (FeedbackRequest, error)
	InsertPrompt(ctx context.Context, arg InsertPromptParams) (Prompt, error)
	InsertCheckIn(ctx context.Context, arg InsertCheckInParams) (CheckIn, error)
	InsertKudosReward(ctx context.Context, arg InsertKudosRewardParams) (KudosReward, error)
}

type GetTeammateByPersonAndOrganizationParams struct {
	PersonID       uuid.UUID `db:"person_id"`
	OrganizationID uuid.UUID `db:"organization_id"`
}

type InsertPersonParams struct {
	ID        uuid.UUID
	Name      string
	Admin     bool
	BirthDate *time.Time
}

type InsertOrganizationParams struct {
	ID   uuid.UUID
	Name string
}

type InsertTeammateParams struct {
	ID             uuid.UUID
	PersonID       uuid.UUID
	OrganizationID uuid.UUID
	Subtype        string

	FirstEmployedAt  *time.Time
	LastTerminatedAt *time.Time

	CanManageMaap                bool
	CanManageEmployment          bool
	CanCreateEmployment          bool
	CanManageDepartmentsAndTeams bool
	CanManagePrompts             bool
	CanCustomizeCompany          bool
	CanManageKudosRewards        bool
}

type InsertEmploymentTenureParams struct {
	ID                uuid.UUID
	TeammateID        uuid.UUID
	PositionID        uuid.UUID
	ManagerTeammateID uuid.NullUUID
	StartedAt         time.Time
	EndedAt           *time.Time
}

type InsertPositionParams struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Title          string
}

type InsertSeatParams struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	PositionID     uuid.UUID
	Open           bool
}

type InsertDepartmentParams struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
}

type InsertTeamParams struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	DepartmentID   uuid.UUID
	Name           string
}

type InsertObservationParams struct {
	ID                uuid.UUID
	OrganizationID    uuid.UUID
	CreatorTeammateID uuid.UUID
	PrivacyLevel      ObservationPrivacy
	PublishedAt       *time.Time
	ObserveeIDs       []uuid.UUID
}

type InsertGoalParams struct {
	ID                uuid.UUID
	OrganizationID    uuid.UUID
	CreatorTeammateID uuid.UUID
	Owner             GoalOwner
	PrivacyLevel      GoalPrivacy
	Title             string
}

type InsertFeedbackRequestParams struct {
	ID                    uuid.UUID
	OrganizationID        uuid.UUID
	SubjectTeammateID     uuid.UUID
	RequestedOfTeammateID uuid.UUID
	CreatorTeammateID     uuid.UUID
	CompletedAt           *time.Time
}

type InsertPromptParams struct {
	ID                uuid.UUID
	OrganizationID    uuid.UUID
	TeammateID        uuid.UUID
	CreatorTeammateID uuid.UUID
	ClosedAt          *time.Time
}

type InsertCheckInParams struct {
	ID                uuid.UUID
	OrganizationID    uuid.UUID
	TeammateID        uuid.UUID
	ManagerTeammateID uuid.NullUUID
	FinalizedAt       *time.Time
}

type InsertKudosRewardParams struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Cost           int32
}
