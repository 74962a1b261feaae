// Package dbpg implements database.Store against PostgreSQL via sqlx.
package dbpg

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/xerrors"

	"github.com/cadencehq/cadence/cadenced/authz"
	"github.com/cadencehq/cadence/cadenced/database"
)

// Store is database.Store plus the authorized listing queries. The listing
// queries take a compiled authz.AuthorizeFilter, which cannot appear on
// database.Store itself because authz imports database.
type Store interface {
	database.Store

	ListObservationsAuthorized(ctx context.Context, filter authz.AuthorizeFilter) ([]database.Observation, error)
	ListGoalsAuthorized(ctx context.Context, filter authz.AuthorizeFilter) ([]database.Goal, error)
	ListTeammatesAuthorized(ctx context.Context, filter authz.AuthorizeFilter) ([]database.Teammate, error)
}

type store struct {
	db *sqlx.DB
}

var _ Store = (*store)(nil)

// New connects to the PostgreSQL database at dsn and verifies the
// connection.
func New(ctx context.Context, dsn string) (Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, xerrors.Errorf("connect postgres: %w", err)
	}
	return &store{db: db}, nil
}

// NewWithDB wraps an existing connection pool.
func NewWithDB(db *sqlx.DB) Store {
	return &store{db: db}
}

func (s *store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.db.PingContext(ctx); err != nil {
		return 0, xerrors.Errorf("ping database: %w", err)
	}
	return time.Since(start), nil
}

func (s *store) GetPersonByID(ctx context.Context, id uuid.UUID) (database.Person, error) {
	var person database.Person
	err := s.db.GetContext(ctx, &person,
		`SELECT id, name, admin, birth_date, created_at FROM people WHERE id = $1`, id)
	return person, err
}

func (s *store) GetOrganizationByID(ctx context.Context, id uuid.UUID) (database.Organization, error) {
	var organization database.Organization
	err := s.db.GetContext(ctx, &organization,
		`SELECT id, name, created_at FROM organizations WHERE id = $1`, id)
	return organization, err
}

const teammateColumns = `id, person_id, organization_id, subtype,
	first_employed_at, last_terminated_at,
	can_manage_maap, can_manage_employment, can_create_employment,
	can_manage_departments_and_teams, can_manage_prompts,
	can_customize_company, can_manage_kudos_rewards, created_at`

func (s *store) GetTeammateByID(ctx context.Context, id uuid.UUID) (database.Teammate, error) {
	var teammate database.Teammate
	err := s.db.GetContext(ctx, &teammate,
		`SELECT `+teammateColumns+` FROM teammates WHERE id = $1`, id)
	return teammate, err
}

func (s *store) GetTeammateByPersonAndOrganization(ctx context.Context, arg database.GetTeammateByPersonAndOrganizationParams) (database.Teammate, error) {
	var teammate database.Teammate
	err := s.db.GetContext(ctx, &teammate,
		`SELECT `+teammateColumns+` FROM teammates WHERE person_id = $1 AND organization_id = $2`,
		arg.PersonID, arg.OrganizationID)
	return teammate, err
}

const tenureColumns = `id, teammate_id, position_id, manager_teammate_id, started_at, ended_at`

func (s *store) GetOpenTenureByTeammateID(ctx context.Context, teammateID uuid.UUID) (database.EmploymentTenure, error) {
	var tenure database.EmploymentTenure
	err := s.db.GetContext(ctx, &tenure,
		`SELECT `+tenureColumns+` FROM employment_tenures
		 WHERE teammate_id = $1 AND ended_at IS NULL`, teammateID)
	return tenure, err
}

func (s *store) GetLatestEndedTenureByTeammateID(ctx context.Context, teammateID uuid.UUID) (database.EmploymentTenure, error) {
	var tenure database.EmploymentTenure
	err := s.db.GetContext(ctx, &tenure,
		`SELECT `+tenureColumns+` FROM employment_tenures
		 WHERE teammate_id = $1 AND ended_at IS NOT NULL
		 ORDER BY ended_at DESC LIMIT 1`, teammateID)
	return tenure, err
}

func (s *store) ListOpenTenuresByManagerID(ctx context.Context, managerTeammateID uuid.UUID) ([]database.EmploymentTenure, error) {
	var tenures []database.EmploymentTenure
	err := s.db.SelectContext(ctx, &tenures,
		`SELECT `+tenureColumns+` FROM employment_tenures
		 WHERE manager_teammate_id = $1 AND ended_at IS NULL`, managerTeammateID)
	return tenures, err
}

const observationColumns = `id, organization_id, creator_teammate_id, privacy_level, published_at, created_at`

func (s *store) GetObservationByID(ctx context.Context, id uuid.UUID) (database.Observation, error) {
	var observation database.Observation
	err := s.db.GetContext(ctx, &observation,
		`SELECT `+observationColumns+` FROM observations WHERE id = $1`, id)
	return observation, err
}

func (s *store) ListObserveeIDsByObservationID(ctx context.Context, observationID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.SelectContext(ctx, &ids,
		`SELECT teammate_id FROM observation_observees WHERE observation_id = $1`, observationID)
	return ids, err
}

func (s *store) ListObservationsByOrganizationID(ctx context.Context, organizationID uuid.UUID) ([]database.Observation, error) {
	var observations []database.Observation
	err := s.db.SelectContext(ctx, &observations,
		`SELECT `+observationColumns+` FROM observations
		 WHERE organization_id = $1 ORDER BY created_at DESC`, organizationID)
	return observations, err
}

// authorizedObservationsQuery renders the compiled scope filter into the
// WHERE clause so the security check and the listing are one bounded query.
func authorizedObservationsQuery(filter authz.AuthorizeFilter) string {
	return `SELECT ` + observationColumns + ` FROM observations
		 WHERE ` + filter.SQLString(authz.DefaultObservationSQLConfig()) + ` ORDER BY created_at DESC`
}

// ListObservationsAuthorized lists observations matching the compiled scope
// filter.
func (s *store) ListObservationsAuthorized(ctx context.Context, filter authz.AuthorizeFilter) ([]database.Observation, error) {
	var observations []database.Observation
	err := s.db.SelectContext(ctx, &observations, authorizedObservationsQuery(filter))
	if err != nil {
		return nil, xerrors.Errorf("list authorized observations: %w", err)
	}
	return observations, nil
}

type goalRow struct {
	ID                uuid.UUID              `db:"id"`
	OrganizationID    uuid.UUID              `db:"organization_id"`
	CreatorTeammateID uuid.UUID              `db:"creator_teammate_id"`
	OwnerKind         database.GoalOwnerKind `db:"owner_kind"`
	OwnerID           uuid.UUID              `db:"owner_id"`
	PrivacyLevel      database.GoalPrivacy   `db:"privacy_level"`
	Title             string                 `db:"title"`
	CreatedAt         time.Time              `db:"created_at"`
}

func (r goalRow) goal() database.Goal {
	return database.Goal{
		ID:                r.ID,
		OrganizationID:    r.OrganizationID,
		CreatorTeammateID: r.CreatorTeammateID,
		Owner:             database.GoalOwner{Kind: r.OwnerKind, ID: r.OwnerID},
		PrivacyLevel:      r.PrivacyLevel,
		Title:             r.Title,
		CreatedAt:         r.CreatedAt,
	}
}

const goalColumns = `id, organization_id, creator_teammate_id, owner_kind, owner_id, privacy_level, title, created_at`

func (s *store) GetGoalByID(ctx context.Context, id uuid.UUID) (database.Goal, error) {
	var row goalRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+goalColumns+` FROM goals WHERE id = $1`, id)
	if err != nil {
		return database.Goal{}, err
	}
	return row.goal(), nil
}

func (s *store) ListGoalsByOrganizationID(ctx context.Context, organizationID uuid.UUID) ([]database.Goal, error) {
	var rows []goalRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+goalColumns+` FROM goals
		 WHERE organization_id = $1 ORDER BY created_at DESC`, organizationID)
	if err != nil {
		return nil, err
	}
	goals := make([]database.Goal, 0, len(rows))
	for _, row := range rows {
		goals = append(goals, row.goal())
	}
	return goals, nil
}

func authorizedGoalsQuery(filter authz.AuthorizeFilter) string {
	return `SELECT ` + goalColumns + ` FROM goals WHERE ` +
		filter.SQLString(authz.DefaultGoalSQLConfig()) + ` ORDER BY created_at DESC`
}

// ListGoalsAuthorized lists goals matching the compiled scope filter.
func (s *store) ListGoalsAuthorized(ctx context.Context, filter authz.AuthorizeFilter) ([]database.Goal, error) {
	var rows []goalRow
	err := s.db.SelectContext(ctx, &rows, authorizedGoalsQuery(filter))
	if err != nil {
		return nil, xerrors.Errorf("list authorized goals: %w", err)
	}
	goals := make([]database.Goal, 0, len(rows))
	for _, row := range rows {
		goals = append(goals, row.goal())
	}
	return goals, nil
}

func authorizedTeammatesQuery(filter authz.AuthorizeFilter) string {
	return `SELECT ` + teammateColumns + ` FROM teammates WHERE ` +
		filter.SQLString(authz.DefaultTeammateSQLConfig())
}

// ListTeammatesAuthorized lists teammates matching the compiled scope
// filter.
func (s *store) ListTeammatesAuthorized(ctx context.Context, filter authz.AuthorizeFilter) ([]database.Teammate, error) {
	var teammates []database.Teammate
	err := s.db.SelectContext(ctx, &teammates, authorizedTeammatesQuery(filter))
	if err != nil {
		return nil, xerrors.Errorf("list authorized teammates: %w", err)
	}
	return teammates, nil
}

func (s *store) ListTeammatesByOrganizationID(ctx context.Context, organizationID uuid.UUID) ([]database.Teammate, error) {
	var teammates []database.Teammate
	err := s.db.SelectContext(ctx, &teammates,
		`SELECT `+teammateColumns+` FROM teammates WHERE organization_id = $1`, organizationID)
	return teammates, err
}

func (s *store) ListDepartmentsByOrganizationID(ctx context.Context, organizationID uuid.UUID) ([]database.Department, error) {
	var departments []database.Department
	err := s.db.SelectContext(ctx, &departments,
		`SELECT id, organization_id, name FROM departments WHERE organization_id = $1`, organizationID)
	return departments, err
}

func (s *store) ListTeamsByOrganizationID(ctx context.Context, organizationID uuid.UUID) ([]database.Team, error) {
	var teams []database.Team
	err := s.db.SelectContext(ctx, &teams,
		`SELECT id, organization_id, department_id, name FROM teams WHERE organization_id = $1`, organizationID)
	return teams, err
}

func (s *store) ListDepartmentMemberIDs(ctx context.Context, departmentID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.SelectContext(ctx, &ids,
		`SELECT teammate_id FROM department_memberships WHERE department_id = $1`, departmentID)
	return ids, err
}

func (s *store) ListTeamMemberIDs(ctx context.Context, teamID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.SelectContext(ctx, &ids,
		`SELECT teammate_id FROM team_memberships WHERE team_id = $1`, teamID)
	return ids, err
}

func (s *store) ListDepartmentIDsByTeammateID(ctx context.Context, teammateID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.SelectContext(ctx, &ids,
		`SELECT department_id FROM department_memberships WHERE teammate_id = $1`, teammateID)
	return ids, err
}

func (s *store) ListTeamIDsByTeammateID(ctx context.Context, teammateID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.SelectContext(ctx, &ids,
		`SELECT team_id FROM team_memberships WHERE teammate_id = $1`, teammateID)
	return ids, err
}

func (s *store) InsertPerson(ctx context.Context, arg database.InsertPersonParams) (database.Person, error) {
	var person database.Person
	err := s.db.GetContext(ctx, &person,
		`INSERT INTO people (id, name, admin, birth_date, created_at)
		 VALUES ($1, $2, $3, $4, now())
		 RETURNING id, name, admin, birth_date, created_at`,
		arg.ID, arg.Name, arg.Admin, arg.BirthDate)
	return person, err
}

func (s *store) InsertOrganization(ctx context.Context, arg database.InsertOrganizationParams) (database.Organization, error) {
	var organization database.Organization
	err := s.db.GetContext(ctx, &organization,
		`INSERT INTO organizations (id, name, created_at)
		 VALUES ($1, $2, now())
		 RETURNING id, name, created_at`,
		arg.ID, arg.Name)
	return organization, err
}

func (s *store) InsertTeammate(ctx context.Context, arg database.InsertTeammateParams) (database.Teammate, error) {
	var teammate database.Teammate
	err := s.db.GetContext(ctx, &teammate,
		`INSERT INTO teammates (
			id, person_id, organization_id, subtype,
			first_employed_at, last_terminated_at,
			can_manage_maap, can_manage_employment, can_create_employment,
			can_manage_departments_and_teams, can_manage_prompts,
			can_customize_company, can_manage_kudos_rewards, created_at
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())
		 RETURNING `+teammateColumns,
		arg.ID, arg.PersonID, arg.OrganizationID, arg.Subtype,
		arg.FirstEmployedAt, arg.LastTerminatedAt,
		arg.CanManageMaap, arg.CanManageEmployment, arg.CanCreateEmployment,
		arg.CanManageDepartmentsAndTeams, arg.CanManagePrompts,
		arg.CanCustomizeCompany, arg.CanManageKudosRewards)
	return teammate, err
}

func (s *store) InsertEmploymentTenure(ctx context.Context, arg database.InsertEmploymentTenureParams) (database.EmploymentTenure, error) {
	var tenure database.EmploymentTenure
	err := s.db.GetContext(ctx, &tenure,
		`INSERT INTO employment_tenures (id, teammate_id, position_id, manager_teammate_id, started_at, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+tenureColumns,
		arg.ID, arg.TeammateID, arg.PositionID, arg.ManagerTeammateID, arg.StartedAt, arg.EndedAt)
	return tenure, err
}

func (s *store) InsertPosition(ctx context.Context, arg database.InsertPositionParams) (database.Position, error) {
	var position database.Position
	err := s.db.GetContext(ctx, &position,
		`INSERT INTO positions (id, organization_id, title)
		 VALUES ($1, $2, $3)
		 RETURNING id, organization_id, title`,
		arg.ID, arg.OrganizationID, arg.Title)
	return position, err
}

func (s *store) InsertSeat(ctx context.Context, arg database.InsertSeatParams) (database.Seat, error) {
	var seat database.Seat
	err := s.db.GetContext(ctx, &seat,
		`INSERT INTO seats (id, organization_id, position_id, open)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, organization_id, position_id, open`,
		arg.ID, arg.OrganizationID, arg.PositionID, arg.Open)
	return seat, err
}

func (s *store) InsertDepartment(ctx context.Context, arg database.InsertDepartmentParams) (database.Department, error) {
	var department database.Department
	err := s.db.GetContext(ctx, &department,
		`INSERT INTO departments (id, organization_id, name)
		 VALUES ($1, $2, $3)
		 RETURNING id, organization_id, name`,
		arg.ID, arg.OrganizationID, arg.Name)
	return department, err
}

func (s *store) InsertTeam(ctx context.Context, arg database.InsertTeamParams) (database.Team, error) {
	var team database.Team
	err := s.db.GetContext(ctx, &team,
		`INSERT INTO teams (id, organization_id, department_id, name)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, organization_id, department_id, name`,
		arg.ID, arg.OrganizationID, arg.DepartmentID, arg.Name)
	return team, err
}

func (s *store) InsertDepartmentMembership(ctx context.Context, arg database.DepartmentMembership) (database.DepartmentMembership, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO department_memberships (department_id, teammate_id) VALUES ($1, $2)`,
		arg.DepartmentID, arg.TeammateID)
	return arg, err
}

func (s *store) InsertTeamMembership(ctx context.Context, arg database.TeamMembership) (database.TeamMembership, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO team_memberships (team_id, teammate_id) VALUES ($1, $2)`,
		arg.TeamID, arg.TeammateID)
	return arg, err
}

func (s *store) InsertObservation(ctx context.Context, arg database.InsertObservationParams) (database.Observation, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return database.Observation{}, xerrors.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var observation database.Observation
	err = tx.GetContext(ctx, &observation,
		`INSERT INTO observations (id, organization_id, creator_teammate_id, privacy_level, published_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, now())
		 RETURNING `+observationColumns,
		arg.ID, arg.OrganizationID, arg.CreatorTeammateID, arg.PrivacyLevel, arg.PublishedAt)
	if err != nil {
		return database.Observation{}, err
	}
	for _, observeeID := range arg.ObserveeIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO observation_observees (observation_id, teammate_id) VALUES ($1, $2)`,
			observation.ID, observeeID)
		if err != nil {
			return database.Observation{}, xerrors.Errorf("insert observee: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return database.Observation{}, xerrors.Errorf("commit: %w", err)
	}
	return observation, nil
}

func (s *store) InsertGoal(ctx context.Context, arg database.InsertGoalParams) (database.Goal, error) {
	var row goalRow
	err := s.db.GetContext(ctx, &row,
		`INSERT INTO goals (id, organization_id, creator_teammate_id, owner_kind, owner_id, privacy_level, title, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		 RETURNING `+goalColumns,
		arg.ID, arg.OrganizationID, arg.CreatorTeammateID, arg.Owner.Kind, arg.Owner.ID, arg.PrivacyLevel, arg.Title)
	if err != nil {
		return database.Goal{}, err
	}
	return row.goal(), nil
}

func (s *store) InsertFeedbackRequest(ctx context.Context, arg database.InsertFeedbackRequestParams) (database.FeedbackRequest, error) {
	var request database.FeedbackRequest
	err := s.db.GetContext(ctx, &request,
		`INSERT INTO feedback_requests (id, organization_id, subject_teammate_id, requested_of_teammate_id, creator_teammate_id, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, organization_id, subject_teammate_id, requested_of_teammate_id, creator_teammate_id, completed_at`,
		arg.ID, arg.OrganizationID, arg.SubjectTeammateID, arg.RequestedOfTeammateID, arg.CreatorTeammateID, arg.CompletedAt)
	return request, err
}

func (s *store) InsertPrompt(ctx context.Context, arg database.InsertPromptParams) (database.Prompt, error) {
	var prompt database.Prompt
	err := s.db.GetContext(ctx, &prompt,
		`INSERT INTO prompts (id, organization_id, teammate_id, creator_teammate_id, closed_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, organization_id, teammate_id, creator_teammate_id, closed_at`,
		arg.ID, arg.OrganizationID, arg.TeammateID, arg.CreatorTeammateID, arg.ClosedAt)
	return prompt, err
}

func (s *store) InsertCheckIn(ctx context.Context, arg database.InsertCheckInParams) (database.CheckIn, error) {
	var checkIn database.CheckIn
	err := s.db.GetContext(ctx, &checkIn,
		`INSERT INTO check_ins (id, organization_id, teammate_id, manager_teammate_id, finalized_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, organization_id, teammate_id, manager_teammate_id, finalized_at`,
		arg.ID, arg.OrganizationID, arg.TeammateID, arg.ManagerTeammateID, arg.FinalizedAt)
	return checkIn, err
}

func (s *store) InsertKudosReward(ctx context.Context, arg database.InsertKudosRewardParams) (database.KudosReward, error) {
	var reward database.KudosReward
	err := s.db.GetContext(ctx, &reward,
		`INSERT INTO kudos_rewards (id, organization_id, name, cost)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, organization_id, name, cost`,
		arg.ID, arg.OrganizationID, arg.Name, arg.Cost)
	return reward, err
}
