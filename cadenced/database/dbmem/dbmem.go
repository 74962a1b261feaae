// Package dbmem is an in-memory implementation of database.Store used by
// tests. It mirrors the behavior of the Postgres implementation closely
// enough that the authorization engine cannot tell them apart: misses
// return sql.ErrNoRows and unique constraints are enforced.
package dbmem

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/coder/quartz"

	"github.com/cadencehq/cadence/cadenced/database"
)

// New returns an in-memory store.
func New(opts ...Option) database.Store {
	q := &fakeQuerier{
		clock: quartz.NewReal(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

type Option func(*fakeQuerier)

// WithClock substitutes the clock used for created-at stamps.
func WithClock(clock quartz.Clock) Option {
	return func(q *fakeQuerier) {
		q.clock = clock
	}
}

type fakeQuerier struct {
	mutex sync.RWMutex
	clock quartz.Clock

	persons               []database.Person
	organizations         []database.Organization
	teammates             []database.Teammate
	tenures               []database.EmploymentTenure
	positions             []database.Position
	seats                 []database.Seat
	departments           []database.Department
	teams                 []database.Team
	departmentMemberships []database.DepartmentMembership
	teamMemberships       []database.TeamMembership
	observations          []database.Observation
	observationObservees  []database.ObservationObservee
	goals                 []database.Goal
	feedbackRequests      []database.FeedbackRequest
	prompts               []database.Prompt
	checkIns              []database.CheckIn
	kudosRewards          []database.KudosReward
}

func (*fakeQuerier) Ping(_ context.Context) (time.Duration, error) {
	return 0, nil
}

func uniqueViolation(constraint database.UniqueConstraint) error {
	return &pq.Error{
		Code:       "23505",
		Constraint: string(constraint),
	}
}

func (q *fakeQuerier) GetPersonByID(_ context.Context, id uuid.UUID) (database.Person, error) {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	for _, p := range q.persons {
		if p.ID == id {
			return p, nil
		}
	}
	return database.Person{}, sql.ErrNoRows
}

func (q *fakeQuerier) GetOrganizationByID(_ context.Context, id uuid.UUID) (database.Organization, error) {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	for _, o := range q.organizations {
		if o.ID == id {
			return o, nil
		}
	}
	return database.Organization{}, sql.ErrNoRows
}

func (q *fakeQuerier) GetTeammateByID(_ context.Context, id uuid.UUID) (database.Teammate, error) {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	for _, t := range q.teammates {
		if t.ID == id {
			return t, nil
		}
	}
	return database.Teammate{}, sql.ErrNoRows
}

func (q *fakeQuerier) GetTeammateByPersonAndOrganization(_ context.Context, arg database.GetTeammateByPersonAndOrganizationParams) (database.Teammate, error) {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	for _, t := range q.teammates {
		if t.PersonID == arg.PersonID && t.OrganizationID == arg.OrganizationID {
			return t, nil
		}
	}
	return database.Teammate{}, sql.ErrNoRows
}

func (q *fakeQuerier) GetOpenTenureByTeammateID(_ context.Context, teammateID uuid.UUID) (database.EmploymentTenure, error) {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	for _, t := range q.tenures {
		if t.TeammateID == teammateID && t.Open() {
			return t, nil
		}
	}
	return database.EmploymentTenure{}, sql.ErrNoRows
}

func (q *fakeQuerier) GetLatestEndedTenureByTeammateID(_ context.Context, teammateID uuid.UUID) (database.EmploymentTenure, error) {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	var (
		latest database.EmploymentTenure
		found  bool
	)
	for _, t := range q.tenures {
		if t.TeammateID != teammateID || t.Open() {
			continue
		}
		if !found || t.EndedAt.After(*latest.EndedAt) {
			latest = t
			found = true
		}
	}
	if !found {
		return database.EmploymentTenure{}, sql.ErrNoRows
	}
	return latest, nil
}

func (q *fakeQuerier) ListOpenTenuresByManagerID(_ context.Context, managerTeammateID uuid.UUID) ([]database.EmploymentTenure, error) {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	tenures := make([]database.EmploymentTenure, 0)
	for _, t := range q.tenures {
		if t.Open() && t.ManagerTeammateID.Valid && t.ManagerTeammateID.UUID == managerTeammateID {
			tenures = append(tenures, t)
		}
	}
	return tenures, nil
}

func (q *fakeQuerier) GetObservationByID(_ context.Context, id uuid.UUID) (database.Observation, error) {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	for _, o := range q.observations {
		if o.ID == id {
			return o, nil
		}
	}
	return database.Observation{}, sql.ErrNoRows
}

func (q *fakeQuerier) ListObserveeIDsByObservationID(_ context.Context, observationID uuid.UUID) ([]uuid.UUID, error) {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	ids := make([]uuid.UUID, 0)
	for _, oo := range q.observationObservees {
		if oo.ObservationID == observationID {
			ids = append(ids, oo.TeammateID)
		}
	}
	return ids, nil
}

func (q *fakeQuerier) ListObservationsByOrganizationID(_ context.Context, organizationID uuid.UUID) ([]database.Observation, error) {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	observations := make([]database.Observation, 0)
	for _, o := range q.observations {
		if o.OrganizationID == organizationID {
			observations = append(observations, o)
		}
	}
	return observations, nil
}

func (q *fakeQuerier) GetGoalByID(_ context.Context, id uuid.UUID) (database.Goal, error) {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	for _, g := range q.goals {
		if g.ID == id {
			return g, nil
		}
	}
	return database.Goal{}, sql.ErrNoRows
}

func (q *fakeQuerier) ListGoalsByOrganizationID(_ context.Context, organizationID uuid.UUID) ([]database.Goal, error) {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	goals := make([]database.Goal, 0)
	for _, g := range q.goals {
		if g.OrganizationID == organizationID {
			goals = append(goals, g)
		}
	}
	return goals, nil
}

func (q *fakeQuerier) ListTeammatesByOrganizationID(_ context.Context, organizationID uuid.UUID) ([]database.Teammate, error) {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	teammates := make([]database.Teammate, 0)
	for _, t := range q.teammates {
		if t.OrganizationID == organizationID {
			teammates = append(teammates, t)
		}
	}
	return teammates, nil
}

func (q *fakeQuerier) ListDepartmentsByOrganizationID(_ context.Context, organizationID uuid.UUID) ([]database.Department, error) {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	departments := make([]database.Department, 0)
	for _, d := range q.departments {
		if d.OrganizationID == organizationID {
			departments = append(departments, d)
		}
	}
	return departments, nil
}

func (q *fakeQuerier) ListTeamsByOrganizationID(_ context.Context, organizationID uuid.UUID) ([]database.Team, error) {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	teams := make([]database.Team, 0)
	for _, t := range q.teams {
		if t.OrganizationID == organizationID {
			teams = append(teams, t)
		}
	}
	return teams, nil
}

func (q *fakeQuerier) ListDepartmentMemberIDs(_ context.Context, departmentID uuid.UUID) ([]uuid.UUID, error) {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	ids := make([]uuid.UUID, 0)
	for _, m := range q.departmentMemberships {
		if m.DepartmentID == departmentID {
			ids = append(ids, m.TeammateID)
		}
	}
	return ids, nil
}

func (q *fakeQuerier) ListTeamMemberIDs(_ context.Context, teamID uuid.UUID) ([]uuid.UUID, error) {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	ids := make([]uuid.UUID, 0)
	for _, m := range q.teamMemberships {
		if m.TeamID == teamID {
			ids = append(ids, m.TeammateID)
		}
	}
	return ids, nil
}

func (q *fakeQuerier) ListDepartmentIDsByTeammateID(_ context.Context, teammateID uuid.UUID) ([]uuid.UUID, error) {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	ids := make([]uuid.UUID, 0)
	for _, m := range q.departmentMemberships {
		if m.TeammateID == teammateID {
			ids = append(ids, m.DepartmentID)
		}
	}
	return ids, nil
}

func (q *fakeQuerier) ListTeamIDsByTeammateID(_ context.Context, teammateID uuid.UUID) ([]uuid.UUID, error) {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	ids := make([]uuid.UUID, 0)
	for _, m := range q.teamMemberships {
		if m.TeammateID == teammateID {
			ids = append(ids, m.TeamID)
		}
	}
	return ids, nil
}

func (q *fakeQuerier) InsertPerson(_ context.Context, arg database.InsertPersonParams) (database.Person, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	person := database.Person{
		ID:        arg.ID,
		Name:      arg.Name,
		Admin:     arg.Admin,
		BirthDate: arg.BirthDate,
		CreatedAt: q.clock.Now(),
	}
	q.persons = append(q.persons, person)
	return person, nil
}

func (q *fakeQuerier) InsertOrganization(_ context.Context, arg database.InsertOrganizationParams) (database.Organization, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	org := database.Organization{
		ID:        arg.ID,
		Name:      arg.Name,
		CreatedAt: q.clock.Now(),
	}
	q.organizations = append(q.organizations, org)
	return org, nil
}

func (q *fakeQuerier) InsertTeammate(_ context.Context, arg database.InsertTeammateParams) (database.Teammate, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	for _, t := range q.teammates {
		if t.PersonID == arg.PersonID && t.OrganizationID == arg.OrganizationID {
			return database.Teammate{}, uniqueViolation(database.UniqueTeammatePersonOrganization)
		}
	}

	teammate := database.Teammate{
		ID:                           arg.ID,
		PersonID:                     arg.PersonID,
		OrganizationID:               arg.OrganizationID,
		Subtype:                      arg.Subtype,
		FirstEmployedAt:              arg.FirstEmployedAt,
		LastTerminatedAt:             arg.LastTerminatedAt,
		CanManageMaap:                arg.CanManageMaap,
		CanManageEmployment:          arg.CanManageEmployment,
		CanCreateEmployment:          arg.CanCreateEmployment,
		CanManageDepartmentsAndTeams: arg.CanManageDepartmentsAndTeams,
		CanManagePrompts:             arg.CanManagePrompts,
		CanCustomizeCompany:          arg.CanCustomizeCompany,
		CanManageKudosRewards:        arg.CanManageKudosRewards,
		CreatedAt:                    q.clock.Now(),
	}
	q.teammates = append(q.teammates, teammate)
	return teammate, nil
}

func (q *fakeQuerier) InsertEmploymentTenure(_ context.Context, arg database.InsertEmploymentTenureParams) (database.EmploymentTenure, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	tenure := database.EmploymentTenure{
		ID:                arg.ID,
		TeammateID:        arg.TeammateID,
		PositionID:        arg.PositionID,
		ManagerTeammateID: arg.ManagerTeammateID,
		StartedAt:         arg.StartedAt,
		EndedAt:           arg.EndedAt,
	}
	q.tenures = append(q.tenures, tenure)
	return tenure, nil
}

func (q *fakeQuerier) InsertPosition(_ context.Context, arg database.InsertPositionParams) (database.Position, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	position := database.Position{
		ID:             arg.ID,
		OrganizationID: arg.OrganizationID,
		Title:          arg.Title,
	}
	q.positions = append(q.positions, position)
	return position, nil
}

func (q *fakeQuerier) InsertSeat(_ context.Context, arg database.InsertSeatParams) (database.Seat, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	seat := database.Seat{
		ID:             arg.ID,
		OrganizationID: arg.OrganizationID,
		PositionID:     arg.PositionID,
		Open:           arg.Open,
	}
	q.seats = append(q.seats, seat)
	return seat, nil
}

func (q *fakeQuerier) InsertDepartment(_ context.Context, arg database.InsertDepartmentParams) (database.Department, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	department := database.Department{
		ID:             arg.ID,
		OrganizationID: arg.OrganizationID,
		Name:           arg.Name,
	}
	q.departments = append(q.departments, department)
	return department, nil
}

func (q *fakeQuerier) InsertTeam(_ context.Context, arg database.InsertTeamParams) (database.Team, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	team := database.Team{
		ID:             arg.ID,
		OrganizationID: arg.OrganizationID,
		DepartmentID:   arg.DepartmentID,
		Name:           arg.Name,
	}
	q.teams = append(q.teams, team)
	return team, nil
}

func (q *fakeQuerier) InsertDepartmentMembership(_ context.Context, arg database.DepartmentMembership) (database.DepartmentMembership, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	q.departmentMemberships = append(q.departmentMemberships, arg)
	return arg, nil
}

func (q *fakeQuerier) InsertTeamMembership(_ context.Context, arg database.TeamMembership) (database.TeamMembership, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	q.teamMemberships = append(q.teamMemberships, arg)
	return arg, nil
}

func (q *fakeQuerier) InsertObservation(_ context.Context, arg database.InsertObservationParams) (database.Observation, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	observation := database.Observation{
		ID:                arg.ID,
		OrganizationID:    arg.OrganizationID,
		CreatorTeammateID: arg.CreatorTeammateID,
		PrivacyLevel:      arg.PrivacyLevel,
		PublishedAt:       arg.PublishedAt,
		CreatedAt:         q.clock.Now(),
	}
	q.observations = append(q.observations, observation)
	for _, observeeID := range arg.ObserveeIDs {
		q.observationObservees = append(q.observationObservees, database.ObservationObservee{
			ObservationID: observation.ID,
			TeammateID:    observeeID,
		})
	}
	return observation, nil
}

func (q *fakeQuerier) InsertGoal(_ context.Context, arg database.InsertGoalParams) (database.Goal, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	goal := database.Goal{
		ID:                arg.ID,
		OrganizationID:    arg.OrganizationID,
		CreatorTeammateID: arg.CreatorTeammateID,
		Owner:             arg.Owner,
		PrivacyLevel:      arg.PrivacyLevel,
		Title:             arg.Title,
		CreatedAt:         q.clock.Now(),
	}
	q.goals = append(q.goals, goal)
	return goal, nil
}

func (q *fakeQuerier) InsertFeedbackRequest(_ context.Context, arg database.InsertFeedbackRequestParams) (database.FeedbackRequest, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	request := database.FeedbackRequest{
		ID:                    arg.ID,
		OrganizationID:        arg.OrganizationID,
		SubjectTeammateID:     arg.SubjectTeammateID,
		RequestedOfTeammateID: arg.RequestedOfTeammateID,
		CreatorTeammateID:     arg.CreatorTeammateID,
		CompletedAt:           arg.CompletedAt,
	}
	q.feedbackRequests = append(q.feedbackRequests, request)
	return request, nil
}

func (q *fakeQuerier) InsertPrompt(_ context.Context, arg database.InsertPromptParams) (database.Prompt, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	prompt := database.Prompt{
		ID:                arg.ID,
		OrganizationID:    arg.OrganizationID,
		TeammateID:        arg.TeammateID,
		CreatorTeammateID: arg.CreatorTeammateID,
		ClosedAt:          arg.ClosedAt,
	}
	q.prompts = append(q.prompts, prompt)
	return prompt, nil
}

func (q *fakeQuerier) InsertCheckIn(_ context.Context, arg database.InsertCheckInParams) (database.CheckIn, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	checkIn := database.CheckIn{
		ID:                arg.ID,
		OrganizationID:    arg.OrganizationID,
		TeammateID:        arg.TeammateID,
		ManagerTeammateID: arg.ManagerTeammateID,
		FinalizedAt:       arg.FinalizedAt,
	}
	q.checkIns = append(q.checkIns, checkIn)
	return checkIn, nil
}

func (q *fakeQuerier) InsertKudosReward(_ context.Context, arg database.InsertKudosRewardParams) (database.KudosReward, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	reward := database.KudosReward{
		ID:             arg.ID,
		OrganizationID: arg.OrganizationID,
		Name:           arg.Name,
		Cost:           arg.Cost,
	}
	q.kudosRewards = append(q.kudosRewards, reward)
	return reward, nil
}
