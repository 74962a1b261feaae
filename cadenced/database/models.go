package database

import (
	"time"

	"github.com/google/uuid"
)

// Person is a global identity. It is organization-independent and is never
// hard-deleted.
type Person struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Admin     bool       `db:"admin" json:"admin"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

type Organization struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Teammate binds a Person to an Organization and carries the role flags and
// employment window. At most one Teammate exists per (Person, Organization)
// pair; see UniqueTeammatePersonOrganization.
type Teammate struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PersonID       uuid.UUID `db:"person_id" json:"person_id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	Subtype        string    `db:"subtype" json:"subtype"`

	FirstEmployedAt  *time.Time `db:"first_employed_at" json:"first_employed_at"`
	LastTerminatedAt *time.Time `db:"last_terminated_at" json:"last_terminated_at"`

	CanManageMaap                bool `db:"can_manage_maap" json:"can_manage_maap"`
	CanManageEmployment          bool `db:"can_manage_employment" json:"can_manage_employment"`
	CanCreateEmployment          bool `db:"can_create_employment" json:"can_create_employment"`
	CanManageDepartmentsAndTeams bool `db:"can_manage_departments_and_teams" json:"can_manage_departments_and_teams"`
	CanManagePrompts             bool `db:"can_manage_prompts" json:"can_manage_prompts"`
	CanCustomizeCompany          bool `db:"can_customize_company" json:"can_customize_company"`
	CanManageKudosRewards        bool `db:"can_manage_kudos_rewards" json:"can_manage_kudos_rewards"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// EmploymentTenure is a time-bounded assignment of a Teammate to a Position.
// ManagerTeammateID carries the reporting line used for hierarchy traversal.
// At most one tenure per teammate is open (EndedAt unset) at a time; that
// invariant is enforced by the surrounding system, not by this engine.
type EmploymentTenure struct {
	ID                uuid.UUID     `db:"id" json:"id"`
	TeammateID        uuid.UUID     `db:"teammate_id" json:"teammate_id"`
	PositionID        uuid.UUID     `db:"position_id" json:"position_id"`
	ManagerTeammateID uuid.NullUUID `db:"manager_teammate_id" json:"manager_teammate_id"`
	StartedAt         time.Time     `db:"started_at" json:"started_at"`
	EndedAt           *time.Time    `db:"ended_at" json:"ended_at"`
}

type Position struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	Title          string    `db:"title" json:"title"`
}

type Seat struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	PositionID     uuid.UUID `db:"position_id" json:"position_id"`
	Open           bool      `db:"open" json:"open"`
}

type Department struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	Name           string    `db:"name" json:"name"`
}

type Team struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	DepartmentID   uuid.UUID `db:"department_id" json:"department_id"`
	Name           string    `db:"name" json:"name"`
}

type DepartmentMembership struct {
	DepartmentID uuid.UUID `db:"department_id" json:"department_id"`
	TeammateID   uuid.UUID `db:"teammate_id" json:"teammate_id"`
}

type TeamMembership struct {
	TeamID     uuid.UUID `db:"team_id" json:"team_id"`
	TeammateID uuid.UUID `db:"teammate_id" json:"teammate_id"`
}

// ObservationPrivacy is the closed privacy enumeration stored on an
// Observation. The engine only reads the stored level; escalation is a
// business rule that lives outside the engine.
type ObservationPrivacy string

const (
	ObservationObserverOnly        ObservationPrivacy = "observer_only"
	ObservationObservedOnly        ObservationPrivacy = "observed_only"
	ObservationManagersOnly        ObservationPrivacy = "managers_only"
	ObservationObservedAndManagers ObservationPrivacy = "observed_and_managers"
	ObservationPublicToCompany     ObservationPrivacy = "public_to_company"
	ObservationPublicToWorld       ObservationPrivacy = "public_to_world"
)

func (p ObservationPrivacy) Valid() bool {
	switch p {
	case ObservationObserverOnly, ObservationObservedOnly, ObservationManagersOnly,
		ObservationObservedAndManagers, ObservationPublicToCompany, ObservationPublicToWorld:
		return true
	}
	return false
}

type Observation struct {
	ID                uuid.UUID          `db:"id" json:"id"`
	OrganizationID    uuid.UUID          `db:"organization_id" json:"organization_id"`
	CreatorTeammateID uuid.UUID          `db:"creator_teammate_id" json:"creator_teammate_id"`
	PrivacyLevel      ObservationPrivacy `db:"privacy_level" json:"privacy_level"`
	PublishedAt       *time.Time         `db:"published_at" json:"published_at"`
	CreatedAt         time.Time          `db:"created_at" json:"created_at"`
}

// ObservationObservee names a teammate an observation is about.
type ObservationObservee struct {
	ObservationID uuid.UUID `db:"observation_id" json:"observation_id"`
	TeammateID    uuid.UUID `db:"teammate_id" json:"teammate_id"`
}

type GoalPrivacy string

const (
	GoalOnlyCreator                 GoalPrivacy = "only_creator"
	GoalOnlyCreatorAndOwner         GoalPrivacy = "only_creator_and_owner"
	GoalOnlyCreatorOwnerAndManagers GoalPrivacy = "only_creator_owner_and_managers"
	GoalEveryoneInCompany           GoalPrivacy = "everyone_in_company"
)

func (p GoalPrivacy) Valid() bool {
	switch p {
	case GoalOnlyCreator, GoalOnlyCreatorAndOwner, GoalOnlyCreatorOwnerAndManagers, GoalEveryoneInCompany:
		return true
	}
	return false
}

// GoalOwnerKind discriminates the polymorphic goal owner. Every site that
// interprets an owner must switch over all kinds and treat an unknown kind
// as an error, never a silent allow.
type GoalOwnerKind string

const (
	OwnerTeammate   GoalOwnerKind = "teammate"
	OwnerCompany    GoalOwnerKind = "company"
	OwnerDepartment GoalOwnerKind = "department"
	OwnerTeam       GoalOwnerKind = "team"
)

// GoalOwner is the tagged union of owner kinds. For OwnerCompany the ID is
// the organization ID; otherwise it is the teammate/department/team ID.
type GoalOwner struct {
	Kind GoalOwnerKind `db:"owner_kind" json:"kind"`
	ID   uuid.UUID     `db:"owner_id" json:"id"`
}

type Goal struct {
	ID                uuid.UUID   `db:"id" json:"id"`
	OrganizationID    uuid.UUID   `db:"organization_id" json:"organization_id"`
	CreatorTeammateID uuid.UUID   `db:"creator_teammate_id" json:"creator_teammate_id"`
	Owner             GoalOwner   `db:"owner" json:"owner"`
	PrivacyLevel      GoalPrivacy `db:"privacy_level" json:"privacy_level"`
	Title             string      `db:"title" json:"title"`
	CreatedAt         time.Time   `db:"created_at" json:"created_at"`
}

type FeedbackRequest struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	OrganizationID        uuid.UUID  `db:"organization_id" json:"organization_id"`
	SubjectTeammateID     uuid.UUID  `db:"subject_teammate_id" json:"subject_teammate_id"`
	RequestedOfTeammateID uuid.UUID  `db:"requested_of_teammate_id" json:"requested_of_teammate_id"`
	CreatorTeammateID     uuid.UUID  `db:"creator_teammate_id" json:"creator_teammate_id"`
	CompletedAt           *time.Time `db:"completed_at" json:"completed_at"`
}

type Prompt struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	OrganizationID    uuid.UUID  `db:"organization_id" json:"organization_id"`
	TeammateID        uuid.UUID  `db:"teammate_id" json:"teammate_id"`
	CreatorTeammateID uuid.UUID  `db:"creator_teammate_id" json:"creator_teammate_id"`
	ClosedAt          *time.Time `db:"closed_at" json:"closed_at"`
}

type CheckIn struct {
	ID                uuid.UUID     `db:"id" json:"id"`
	OrganizationID    uuid.UUID     `db:"organization_id" json:"organization_id"`
	TeammateID        uuid.UUID     `db:"teammate_id" json:"teammate_id"`
	ManagerTeammateID uuid.NullUUID `db:"manager_teammate_id" json:"manager_teammate_id"`
	FinalizedAt       *time.Time    `db:"finalized_at" json:"finalized_at"`
}

type KudosReward struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	Name           string    `db:"name" json:"name"`
	Cost           int32     `db:"cost" json:"cost"`
}
