// Package dbgen generates database fixtures for tests.
//
// All generators take a 'seed' object. Any provided fields in the seed will
// be maintained. Any fields omitted will have sensible defaults generated.
package dbgen

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cadencehq/cadence/cadenced/database"
)

func Person(t testing.TB, db database.Store, seed database.Person) database.Person {
	t.Helper()

	person, err := db.InsertPerson(context.Background(), database.InsertPersonParams{
		ID:        takeFirst(seed.ID, uuid.New()),
		Name:      takeFirst(seed.Name, fmt.Sprintf("person-%s", uuid.NewString()[:8])),
		Admin:     seed.Admin,
		BirthDate: seed.BirthDate,
	})
	require.NoError(t, err, "insert person")
	return person
}

func Organization(t testing.TB, db database.Store, seed database.Organization) database.Organization {
	t.Helper()

	org, err := db.InsertOrganization(context.Background(), database.InsertOrganizationParams{
		ID:   takeFirst(seed.ID, uuid.New()),
		Name: takeFirst(seed.Name, fmt.Sprintf("org-%s", uuid.NewString()[:8])),
	})
	require.NoError(t, err, "insert organization")
	return org
}

// Teammate defaults to a currently employed teammate with no role flags,
// creating a backing person when the seed does not name one.
func Teammate(t testing.TB, db database.Store, seed database.Teammate) database.Teammate {
	t.Helper()

	personID := seed.PersonID
	if personID == uuid.Nil {
		personID = Person(t, db, database.Person{}).ID
	}
	firstEmployedAt := seed.FirstEmployedAt
	if firstEmployedAt == nil {
		employed := time.Date(2023, 1, 9, 9, 0, 0, 0, time.UTC)
		firstEmployedAt = &employed
	}

	teammate, err := db.InsertTeammate(context.Background(), database.InsertTeammateParams{
		ID:                           takeFirst(seed.ID, uuid.New()),
		PersonID:                     personID,
		OrganizationID:               takeFirst(seed.OrganizationID, uuid.New()),
		Subtype:                      seed.Subtype,
		FirstEmployedAt:              firstEmployedAt,
		LastTerminatedAt:             seed.LastTerminatedAt,
		CanManageMaap:                seed.CanManageMaap,
		CanManageEmployment:          seed.CanManageEmployment,
		CanCreateEmployment:          seed.CanCreateEmployment,
		CanManageDepartmentsAndTeams: seed.CanManageDepartmentsAndTeams,
		CanManagePrompts:             seed.CanManagePrompts,
		CanCustomizeCompany:          seed.CanCustomizeCompany,
		CanManageKudosRewards:        seed.CanManageKudosRewards,
	})
	require.NoError(t, err, "insert teammate")
	return teammate
}

func EmploymentTenure(t testing.TB, db database.Store, seed database.EmploymentTenure) database.EmploymentTenure {
	t.Helper()

	tenure, err := db.InsertEmploymentTenure(context.Background(), database.InsertEmploymentTenureParams{
		ID:                takeFirst(seed.ID, uuid.New()),
		TeammateID:        takeFirst(seed.TeammateID, uuid.New()),
		PositionID:        takeFirst(seed.PositionID, uuid.New()),
		ManagerTeammateID: seed.ManagerTeammateID,
		StartedAt:         takeFirst(seed.StartedAt, time.Date(2023, 1, 9, 9, 0, 0, 0, time.UTC)),
		EndedAt:           seed.EndedAt,
	})
	require.NoError(t, err, "insert employment tenure")
	return tenure
}

func Position(t testing.TB, db database.Store, seed database.Position) database.Position {
	t.Helper()

	position, err := db.InsertPosition(context.Background(), database.InsertPositionParams{
		ID:             takeFirst(seed.ID, uuid.New()),
		OrganizationID: takeFirst(seed.OrganizationID, uuid.New()),
		Title:          takeFirst(seed.Title, "Engineer"),
	})
	require.NoError(t, err, "insert position")
	return position
}

func Seat(t testing.TB, db database.Store, seed database.Seat) database.Seat {
	t.Helper()

	seat, err := db.InsertSeat(context.Background(), database.InsertSeatParams{
		ID:             takeFirst(seed.ID, uuid.New()),
		OrganizationID: takeFirst(seed.OrganizationID, uuid.New()),
		PositionID:     takeFirst(seed.PositionID, uuid.New()),
		Open:           seed.Open,
	})
	require.NoError(t, err, "insert seat")
	return seat
}

func Department(t testing.TB, db database.Store, seed database.Department) database.Department {
	t.Helper()

	department, err := db.InsertDepartment(context.Background(), database.InsertDepartmentParams{
		ID:             takeFirst(seed.ID, uuid.New()),
		OrganizationID: takeFirst(seed.OrganizationID, uuid.New()),
		Name:           takeFirst(seed.Name, fmt.Sprintf("dept-%s", uuid.NewString()[:8])),
	})
	require.NoError(t, err, "insert department")
	return department
}

func Team(t testing.TB, db database.Store, seed database.Team) database.Team {
	t.Helper()

	team, err := db.InsertTeam(context.Background(), database.InsertTeamParams{
		ID:             takeFirst(seed.ID, uuid.New()),
		OrganizationID: takeFirst(seed.OrganizationID, uuid.New()),
		DepartmentID:   takeFirst(seed.DepartmentID, uuid.New()),
		Name:           takeFirst(seed.Name, fmt.Sprintf("team-%s", uuid.NewString()[:8])),
	})
	require.NoError(t, err, "insert team")
	return team
}

func DepartmentMembership(t testing.TB, db database.Store, seed database.DepartmentMembership) database.DepartmentMembership {
	t.Helper()

	membership, err := db.InsertDepartmentMembership(context.Background(), seed)
	require.NoError(t, err, "insert department membership")
	return membership
}

func TeamMembership(t testing.TB, db database.Store, seed database.TeamMembership) database.TeamMembership {
	t.Helper()

	membership, err := db.InsertTeamMembership(context.Background(), seed)
	require.NoError(t, err, "insert team membership")
	return membership
}

// Observation defaults to a published observer_only observation.
func Observation(t testing.TB, db database.Store, seed database.Observation, observeeIDs ...uuid.UUID) database.Observation {
	t.Helper()

	publishedAt := seed.PublishedAt
	if publishedAt == nil {
		published := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
		publishedAt = &published
	}

	observation, err := db.InsertObservation(context.Background(), database.InsertObservationParams{
		ID:                takeFirst(seed.ID, uuid.New()),
		OrganizationID:    takeFirst(seed.OrganizationID, uuid.New()),
		CreatorTeammateID: takeFirst(seed.CreatorTeammateID, uuid.New()),
		PrivacyLevel:      takeFirst(seed.PrivacyLevel, database.ObservationObserverOnly),
		PublishedAt:       publishedAt,
		ObserveeIDs:       observeeIDs,
	})
	require.NoError(t, err, "insert observation")
	return observation
}

// Draft inserts an unpublished observation.
func Draft(t testing.TB, db database.Store, seed database.Observation, observeeIDs ...uuid.UUID) database.Observation {
	t.Helper()

	observation, err := db.InsertObservation(context.Background(), database.InsertObservationParams{
		ID:                takeFirst(seed.ID, uuid.New()),
		OrganizationID:    takeFirst(seed.OrganizationID, uuid.New()),
		CreatorTeammateID: takeFirst(seed.CreatorTeammateID, uuid.New()),
		PrivacyLevel:      takeFirst(seed.PrivacyLevel, database.ObservationObserverOnly),
		PublishedAt:       nil,
		ObserveeIDs:       observeeIDs,
	})
	require.NoError(t, err, "insert draft observation")
	return observation
}

func Goal(t testing.TB, db database.Store, seed database.Goal) database.Goal {
	t.Helper()

	owner := seed.Owner
	if owner.Kind == "" {
		owner = database.GoalOwner{Kind: database.OwnerTeammate, ID: takeFirst(seed.CreatorTeammateID, uuid.New())}
	}

	goal, err := db.InsertGoal(context.Background(), database.InsertGoalParams{
		ID:                takeFirst(seed.ID, uuid.New()),
		OrganizationID:    takeFirst(seed.OrganizationID, uuid.New()),
		CreatorTeammateID: takeFirst(seed.CreatorTeammateID, uuid.New()),
		Owner:             owner,
		PrivacyLevel:      takeFirst(seed.PrivacyLevel, database.GoalOnlyCreator),
		Title:             takeFirst(seed.Title, "Untitled goal"),
	})
	require.NoError(t, err, "insert goal")
	return goal
}

func FeedbackRequest(t testing.TB, db database.Store, seed database.FeedbackRequest) database.FeedbackRequest {
	t.Helper()

	request, err := db.InsertFeedbackRequest(context.Background(), database.InsertFeedbackRequestParams{
		ID:                    takeFirst(seed.ID, uuid.New()),
		OrganizationID:        takeFirst(seed.OrganizationID, uuid.New()),
		SubjectTeammateID:     takeFirst(seed.SubjectTeammateID, uuid.New()),
		RequestedOfTeammateID: takeFirst(seed.RequestedOfTeammateID, uuid.New()),
		CreatorTeammateID:     takeFirst(seed.CreatorTeammateID, uuid.New()),
		CompletedAt:           seed.CompletedAt,
	})
	require.NoError(t, err, "insert feedback request")
	return request
}

func Prompt(t testing.TB, db database.Store, seed database.Prompt) database.Prompt {
	t.Helper()

	prompt, err := db.InsertPrompt(context.Background(), database.InsertPromptParams{
		ID:                takeFirst(seed.ID, uuid.New()),
		OrganizationID:    takeFirst(seed.OrganizationID, uuid.New()),
		TeammateID:        takeFirst(seed.TeammateID, uuid.New()),
		CreatorTeammateID: takeFirst(seed.CreatorTeammateID, uuid.New()),
		ClosedAt:          seed.ClosedAt,
	})
	require.NoError(t, err, "insert prompt")
	return prompt
}

func CheckIn(t testing.TB, db database.Store, seed database.CheckIn) database.CheckIn {
	t.Helper()

	checkIn, err := db.InsertCheckIn(context.Background(), database.InsertCheckInParams{
		ID:                takeFirst(seed.ID, uuid.New()),
		OrganizationID:    takeFirst(seed.OrganizationID, uuid.New()),
		TeammateID:        takeFirst(seed.TeammateID, uuid.New()),
		ManagerTeammateID: seed.ManagerTeammateID,
		FinalizedAt:       seed.FinalizedAt,
	})
	require.NoError(t, err, "insert check-in")
	return checkIn
}

func KudosReward(t testing.TB, db database.Store, seed database.KudosReward) database.KudosReward {
	t.Helper()

	reward, err := db.InsertKudosReward(context.Background(), database.InsertKudosRewardParams{
		ID:             takeFirst(seed.ID, uuid.New()),
		OrganizationID: takeFirst(seed.OrganizationID, uuid.New()),
		Name:           takeFirst(seed.Name, "Coffee"),
		Cost:           takeFirst(seed.Cost, 100),
	})
	require.NoError(t, err, "insert kudos reward")
	return reward
}

// takeFirst returns the first non-zero value.
func takeFirst[Value comparable](values ...Value) Value {
	var empty Value
	for _, v := range values {
		if v != empty {
			return v
		}
	}
	return empty
}
