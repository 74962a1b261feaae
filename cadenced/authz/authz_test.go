package authz_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/cadencehq/cadence/cadenced/authz"
	"github.com/cadencehq/cadence/cadenced/database"
	"github.com/cadencehq/cadence/cadenced/database/dbgen"
	"github.com/cadencehq/cadence/cadenced/database/dbmem"
	"github.com/cadencehq/cadence/testutil"
)

func newAuthorizer(t *testing.T) (*authz.Authorizer, database.Store) {
	t.Helper()
	db := dbmem.New()
	return authz.New(db, testutil.Logger(t)), db
}

// member creates a person and an employed teammate for them in org.
func member(t *testing.T, db database.Store, org database.Organization, seed database.Teammate) (authz.Subject, database.Teammate) {
	t.Helper()
	person := dbgen.Person(t, db, database.Person{})
	seed.PersonID = person.ID
	seed.OrganizationID = org.ID
	teammate := dbgen.Teammate(t, db, seed)
	return authz.SubjectFor(person, &teammate), teammate
}

func terminated(t *testing.T, db database.Store, org database.Organization, seed database.Teammate) (authz.Subject, database.Teammate) {
	t.Helper()
	yearAgo := time.Now().Add(-365 * 24 * time.Hour)
	yesterday := time.Now().Add(-24 * time.Hour)
	seed.FirstEmployedAt = &yearAgo
	seed.LastTerminatedAt = &yesterday
	return member(t, db, org, seed)
}

func adminSubject(t *testing.T, db database.Store, org database.Organization) (authz.Subject, database.Teammate) {
	t.Helper()
	person := dbgen.Person(t, db, database.Person{Admin: true})
	teammate := dbgen.Teammate(t, db, database.Teammate{
		PersonID:       person.ID,
		OrganizationID: org.ID,
	})
	return authz.SubjectFor(person, &teammate), teammate
}

// reportsTo places report under manager with an open tenure.
func reportsTo(t *testing.T, db database.Store, report, manager database.Teammate) {
	t.Helper()
	position := dbgen.Position(t, db, database.Position{OrganizationID: report.OrganizationID})
	dbgen.EmploymentTenure(t, db, database.EmploymentTenure{
		TeammateID:        report.ID,
		PositionID:        position.ID,
		ManagerTeammateID: uuid.NullUUID{UUID: manager.ID, Valid: true},
	})
}

// formerlyReportedTo records an ended tenure under manager, leaving the
// report with no open tenure.
func formerlyReportedTo(t *testing.T, db database.Store, report, manager database.Teammate) {
	t.Helper()
	position := dbgen.Position(t, db, database.Position{OrganizationID: report.OrganizationID})
	ended := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	dbgen.EmploymentTenure(t, db, database.EmploymentTenure{
		TeammateID:        report.ID,
		PositionID:        position.ID,
		ManagerTeammateID: uuid.NullUUID{UUID: manager.ID, Valid: true},
		EndedAt:           &ended,
	})
}

func TestAuthorize_TenantIsolation(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t, testutil.WaitShort)
	auth, db := newAuthorizer(t)

	org := dbgen.Organization(t, db, database.Organization{})
	otherOrg := dbgen.Organization(t, db, database.Organization{})
	// All the flags in the world do not cross the tenant boundary.
	sub, _ := member(t, db, otherOrg, database.Teammate{
		CanManageMaap:                true,
		CanManageEmployment:          true,
		CanCreateEmployment:          true,
		CanManageDepartmentsAndTeams: true,
		CanManagePrompts:             true,
		CanCustomizeCompany:          true,
		CanManageKudosRewards:        true,
	})
	_, target := member(t, db, org, database.Teammate{})
	position := dbgen.Position(t, db, database.Position{OrganizationID: org.ID})
	goal := dbgen.Goal(t, db, database.Goal{OrganizationID: org.ID, CreatorTeammateID: target.ID})

	for _, action := range []authz.Action{authz.ActionShow, authz.ActionUpdate, authz.ActionDestroy} {
		err := auth.Authorize(ctx, sub, action, authz.ObjectFromTeammate(target))
		require.True(t, authz.IsUnauthorizedError(err), "teammate %s: %v", action, err)

		err = auth.Authorize(ctx, sub, action, authz.ObjectFromPosition(position))
		require.True(t, authz.IsUnauthorizedError(err), "position %s: %v", action, err)

		err = auth.Authorize(ctx, sub, action, authz.ObjectFromGoal(goal))
		require.True(t, authz.IsUnauthorizedError(err), "goal %s: %v", action, err)
	}
}

func TestAuthorize_AdminBypass(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t, testutil.WaitShort)
	auth, db := newAuthorizer(t)

	org := dbgen.Organization(t, db, database.Organization{})
	admin, _ := adminSubject(t, db, org)
	_, target := member(t, db, org, database.Teammate{})
	position := dbgen.Position(t, db, database.Position{OrganizationID: org.ID})

	require.NoError(t, auth.Authorize(ctx, admin, authz.ActionUpdate, authz.ObjectFromTeammate(target)))
	require.NoError(t, auth.Authorize(ctx, admin, authz.ActionDestroy, authz.ObjectFromPosition(position)))
}

func TestAuthorize_ImpersonationAsymmetry(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t, testutil.WaitShort)
	auth, db := newAuthorizer(t)

	org := dbgen.Organization(t, db, database.Organization{})
	admin, _ := adminSubject(t, db, org)
	targetPerson := dbgen.Person(t, db, database.Person{})
	target := dbgen.Teammate(t, db, database.Teammate{
		PersonID:       targetPerson.ID,
		OrganizationID: org.ID,
	})
	_, other := member(t, db, org, database.Teammate{})
	position := dbgen.Position(t, db, database.Position{OrganizationID: org.ID})

	impersonating := admin.Impersonate(targetPerson, &target)
	require.True(t, impersonating.Impersonating())
	require.Equal(t, admin.Person.ID, impersonating.AuditPersonID().UUID)

	// The admin alone may mutate; impersonating a non-admin they may not.
	require.NoError(t, auth.Authorize(ctx, admin, authz.ActionUpdate, authz.ObjectFromPosition(position)))
	err := auth.Authorize(ctx, impersonating, authz.ActionUpdate, authz.ObjectFromPosition(position))
	require.True(t, authz.IsUnauthorizedError(err))

	// The decision while impersonating matches the target acting alone.
	alone := authz.SubjectFor(targetPerson, &target)
	for _, obj := range []authz.Object{
		authz.ObjectFromTeammate(target),
		authz.ObjectFromTeammate(other),
		authz.ObjectFromPosition(position),
	} {
		aloneErr := auth.Authorize(ctx, alone, authz.ActionShow, obj)
		impErr := auth.Authorize(ctx, impersonating, authz.ActionShow, obj)
		require.Equal(t, aloneErr == nil, impErr == nil, "object %s", obj)
	}
}

func TestAuthorize_SelfViewAlwaysSucceeds(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t, testutil.WaitShort)
	auth, db := newAuthorizer(t)

	org := dbgen.Organization(t, db, database.Organization{})
	sub, self := terminated(t, db, org, database.Teammate{})
	_, other := member(t, db, org, database.Teammate{})

	require.NoError(t, auth.Authorize(ctx, sub, authz.ActionShow, authz.ObjectFromTeammate(self)))

	err := auth.Authorize(ctx, sub, authz.ActionShow, authz.ObjectFromTeammate(other))
	require.True(t, authz.IsUnauthorizedError(err))
}

func TestAuthorize_EmploymentGate(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t, testutil.WaitShort)
	auth, db := newAuthorizer(t)

	org := dbgen.Organization(t, db, database.Organization{})
	// Terminated, but still holding every flag.
	sub, self := terminated(t, db, org, database.Teammate{
		CanManagePrompts:    true,
		CanCustomizeCompany: true,
	})
	_, other := member(t, db, org, database.Teammate{})
	reportsTo(t, db, other, self)

	otherCheckIn := dbgen.CheckIn(t, db, database.CheckIn{
		OrganizationID: org.ID,
		TeammateID:     other.ID,
	})
	ownCheckIn := dbgen.CheckIn(t, db, database.CheckIn{
		OrganizationID: org.ID,
		TeammateID:     self.ID,
	})
	seat := dbgen.Seat(t, db, database.Seat{OrganizationID: org.ID})
	organization := authz.ObjectFromOrganization(org)

	// Denied despite managing the teammate and holding flags.
	err := auth.Authorize(ctx, sub, authz.ActionShow, authz.ObjectFromCheckIn(otherCheckIn))
	require.True(t, authz.IsUnauthorizedError(err))
	err = auth.Authorize(ctx, sub, authz.ActionShow, authz.ObjectFromSeat(seat))
	require.True(t, authz.IsUnauthorizedError(err))
	err = auth.Authorize(ctx, sub, authz.ActionViewSlackSettings, organization)
	require.True(t, authz.IsUnauthorizedError(err))
	err = auth.Authorize(ctx, sub, authz.ActionCompanyPreferences, organization)
	require.True(t, authz.IsUnauthorizedError(err))

	// The teammate's own record stays visible after termination.
	require.NoError(t, auth.Authorize(ctx, sub, authz.ActionShow, authz.ObjectFromCheckIn(ownCheckIn)))

	// An employed manager passes the gate.
	managerSub, manager := member(t, db, org, database.Teammate{})
	_, report := member(t, db, org, database.Teammate{})
	reportsTo(t, db, report, manager)
	reportCheckIn := dbgen.CheckIn(t, db, database.CheckIn{
		OrganizationID: org.ID,
		TeammateID:     report.ID,
	})
	require.NoError(t, auth.Authorize(ctx, managerSub, authz.ActionShow, authz.ObjectFromCheckIn(reportCheckIn)))
}

func TestAuthorize_FlagGrants(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t, testutil.WaitShort)
	auth, db := newAuthorizer(t)

	org := dbgen.Organization(t, db, database.Organization{})
	position := dbgen.Position(t, db, database.Position{OrganizationID: org.ID})
	department := dbgen.Department(t, db, database.Department{OrganizationID: org.ID})
	reward := dbgen.KudosReward(t, db, database.KudosReward{OrganizationID: org.ID})
	_, creator := member(t, db, org, database.Teammate{})
	goal := dbgen.Goal(t, db, database.Goal{OrganizationID: org.ID, CreatorTeammateID: creator.ID})

	cases := []struct {
		name   string
		seed   database.Teammate
		action authz.Action
		object authz.Object
	}{
		{"ManageMaapPosition", database.Teammate{CanManageMaap: true}, authz.ActionUpdate, authz.ObjectFromPosition(position)},
		{"ManageMaapGoal", database.Teammate{CanManageMaap: true}, authz.ActionDestroy, authz.ObjectFromGoal(goal)},
		{"ManageDepartments", database.Teammate{CanManageDepartmentsAndTeams: true}, authz.ActionUpdate, authz.ObjectFromDepartment(department)},
		{"ManageKudos", database.Teammate{CanManageKudosRewards: true}, authz.ActionUpdate, authz.ObjectFromKudosReward(reward)},
		{"CreateEmployment", database.Teammate{CanCreateEmployment: true}, authz.ActionCreate, authz.ShapeInOrg(authz.ResourceTeammate, org.ID)},
		{"ManageEmployment", database.Teammate{CanManageEmployment: true}, authz.ActionCreate, authz.ShapeInOrg(authz.ResourceTeammate, org.ID)},
		{"CustomizeCompany", database.Teammate{CanCustomizeCompany: true}, authz.ActionUpdate, authz.ObjectFromOrganization(org)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			flagged, _ := member(t, db, org, tc.seed)
			unflagged, _ := member(t, db, org, database.Teammate{})

			require.NoError(t, auth.Authorize(ctx, flagged, tc.action, tc.object))
			err := auth.Authorize(ctx, unflagged, tc.action, tc.object)
			require.True(t, authz.IsUnauthorizedError(err), "unflagged should be denied: %v", err)
		})
	}
}

func TestAuthorize_FeedbackRequestManagerChain(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t, testutil.WaitShort)
	auth, db := newAuthorizer(t)

	org := dbgen.Organization(t, db, database.Organization{})
	aSub, a := member(t, db, org, database.Teammate{})
	bSub, b := member(t, db, org, database.Teammate{})
	cSub, c := member(t, db, org, database.Teammate{})
	unrelatedSub, _ := member(t, db, org, database.Teammate{})
	reportsTo(t, db, a, b)
	reportsTo(t, db, b, c)

	shape := authz.ShapeAbout(authz.ResourceFeedbackRequest, org.ID, a.ID)

	// The direct manager, the transitive manager, and A themselves may
	// create a request about A; an unrelated teammate may not.
	require.NoError(t, auth.Authorize(ctx, bSub, authz.ActionCreate, shape))
	require.NoError(t, auth.Authorize(ctx, cSub, authz.ActionCreate, shape))
	require.NoError(t, auth.Authorize(ctx, aSub, authz.ActionCreate, shape))
	err := auth.Authorize(ctx, unrelatedSub, authz.ActionCreate, shape)
	require.True(t, authz.IsUnauthorizedError(err))

	_, recipient := member(t, db, org, database.Teammate{})
	request := dbgen.FeedbackRequest(t, db, database.FeedbackRequest{
		OrganizationID:        org.ID,
		SubjectTeammateID:     a.ID,
		RequestedOfTeammateID: recipient.ID,
		CreatorTeammateID:     b.ID,
	})
	obj := authz.ObjectFromFeedbackRequest(request)

	require.NoError(t, auth.Authorize(ctx, bSub, authz.ActionShow, obj))
	require.NoError(t, auth.Authorize(ctx, cSub, authz.ActionShow, obj))
	require.NoError(t, auth.Authorize(ctx, aSub, authz.ActionShow, obj))
	err = auth.Authorize(ctx, unrelatedSub, authz.ActionShow, obj)
	require.True(t, authz.IsUnauthorizedError(err))

	// Only the teammate the feedback was requested of may complete it.
	err = auth.Authorize(ctx, bSub, authz.ActionComplete, obj)
	require.True(t, authz.IsUnauthorizedError(err))
}

func TestAuthorize_FormerManagerRetention(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t, testutil.WaitShort)
	db := dbmem.New()

	org := dbgen.Organization(t, db, database.Organization{})
	_, report := member(t, db, org, database.Teammate{})
	managerSub, manager := member(t, db, org, database.Teammate{})
	unrelatedSub, _ := member(t, db, org, database.Teammate{})
	_, creator := member(t, db, org, database.Teammate{})
	formerlyReportedTo(t, db, report, manager)

	request := dbgen.FeedbackRequest(t, db, database.FeedbackRequest{
		OrganizationID:    org.ID,
		SubjectTeammateID: report.ID,
		CreatorTeammateID: creator.ID,
	})
	obj := authz.ObjectFromFeedbackRequest(request)

	// By default an ended tenure carries no visibility.
	auth := authz.New(db, testutil.Logger(t))
	err := auth.Authorize(ctx, managerSub, authz.ActionShow, obj)
	require.True(t, authz.IsUnauthorizedError(err))

	// A retaining policy keeps the former manager's view; unrelated
	// teammates stay denied.
	retaining := authz.New(db, testutil.Logger(t),
		authz.WithPolicy(authz.FeedbackRequestPolicy{RetainFormerManagers: true}),
	)
	require.NoError(t, retaining.Authorize(ctx, managerSub, authz.ActionShow, obj))
	err = retaining.Authorize(ctx, unrelatedSub, authz.ActionShow, obj)
	require.True(t, authz.IsUnauthorizedError(err))
}

func TestAuthorize_SelfObservationPermalink(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t, testutil.WaitShort)
	auth, db := newAuthorizer(t)

	org := dbgen.Organization(t, db, database.Organization{})
	pSub, p := member(t, db, org, database.Teammate{})
	mSub, m := member(t, db, org, database.Teammate{})
	reportsTo(t, db, p, m)

	obs := dbgen.Observation(t, db, database.Observation{
		OrganizationID:    org.ID,
		CreatorTeammateID: p.ID,
		PrivacyLevel:      database.ObservationObservedOnly,
	}, p.ID)
	obj := authz.ObjectFromObservation(obs, []uuid.UUID{p.ID})

	require.NoError(t, auth.Authorize(ctx, pSub, authz.ActionViewPermalink, obj))
	err := auth.Authorize(ctx, mSub, authz.ActionViewPermalink, obj)
	require.True(t, authz.IsUnauthorizedError(err))
}

func TestAuthorize_DraftSuppression(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t, testutil.WaitShort)
	auth, db := newAuthorizer(t)

	org := dbgen.Organization(t, db, database.Organization{})
	creatorSub, creator := member(t, db, org, database.Teammate{})
	coworkerSub, _ := member(t, db, org, database.Teammate{})

	draft := dbgen.Draft(t, db, database.Observation{
		OrganizationID:    org.ID,
		CreatorTeammateID: creator.ID,
		PrivacyLevel:      database.ObservationPublicToWorld,
	})
	obj := authz.ObjectFromObservation(draft, nil)

	require.NoError(t, auth.Authorize(ctx, creatorSub, authz.ActionShow, obj))
	err := auth.Authorize(ctx, coworkerSub, authz.ActionShow, obj)
	require.True(t, authz.IsUnauthorizedError(err))
	err = auth.Authorize(ctx, authz.AnonymousSubject(), authz.ActionShow, obj)
	require.True(t, authz.IsUnauthorizedError(err))
}

func TestAuthorize_Anonymous(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t, testutil.WaitShort)
	auth, db := newAuthorizer(t)

	org := dbgen.Organization(t, db, database.Organization{})
	_, creator := member(t, db, org, database.Teammate{})
	world := dbgen.Observation(t, db, database.Observation{
		OrganizationID:    org.ID,
		CreatorTeammateID: creator.ID,
		PrivacyLevel:      database.ObservationPublicToWorld,
	})
	company := dbgen.Observation(t, db, database.Observation{
		OrganizationID:    org.ID,
		CreatorTeammateID: creator.ID,
		PrivacyLevel:      database.ObservationPublicToCompany,
	})

	anon := authz.AnonymousSubject()
	require.NoError(t, auth.Authorize(ctx, anon, authz.ActionShow, authz.ObjectFromObservation(world, nil)))
	require.NoError(t, auth.Authorize(ctx, anon, authz.ActionViewPermalink, authz.ObjectFromObservation(world, nil)))

	err := auth.Authorize(ctx, anon, authz.ActionShow, authz.ObjectFromObservation(company, nil))
	require.True(t, authz.IsUnauthorizedError(err))
	err = auth.Authorize(ctx, anon, authz.ActionShow, authz.ObjectFromTeammate(creator))
	require.True(t, authz.IsUnauthorizedError(err))
	err = auth.Authorize(ctx, anon, authz.ActionUpdate, authz.ObjectFromObservation(world, nil))
	require.True(t, authz.IsUnauthorizedError(err))
}

func TestAuthorize_InvalidInput(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t, testutil.WaitShort)
	auth, db := newAuthorizer(t)

	org := dbgen.Organization(t, db, database.Organization{})
	sub, self := member(t, db, org, database.Teammate{})

	t.Run("ImpersonationWithoutEffectiveSubject", func(t *testing.T) {
		broken := authz.Subject{ImpersonatorPerson: sub.Person}
		err := auth.Authorize(ctx, broken, authz.ActionShow, authz.ObjectFromTeammate(self))
		var invalidSubject *authz.InvalidSubjectError
		require.ErrorAs(t, err, &invalidSubject)
		require.False(t, authz.IsUnauthorizedError(err))
	})

	t.Run("TeammateWithoutPerson", func(t *testing.T) {
		broken := authz.Subject{Teammate: sub.Teammate}
		err := auth.Authorize(ctx, broken, authz.ActionShow, authz.ObjectFromTeammate(self))
		var invalidSubject *authz.InvalidSubjectError
		require.ErrorAs(t, err, &invalidSubject)
	})

	t.Run("MismatchedTeammate", func(t *testing.T) {
		stranger := dbgen.Person(t, db, database.Person{})
		broken := authz.SubjectFor(stranger, sub.Teammate)
		err := auth.Authorize(ctx, broken, authz.ActionShow, authz.ObjectFromTeammate(self))
		var invalidSubject *authz.InvalidSubjectError
		require.ErrorAs(t, err, &invalidSubject)
	})

	t.Run("UnknownResourceType", func(t *testing.T) {
		err := auth.Authorize(ctx, sub, authz.ActionShow, authz.Object{Type: authz.ResourceType("spaceship"), OrgID: org.ID})
		var invalidResource *authz.InvalidResourceError
		require.ErrorAs(t, err, &invalidResource)
	})

	t.Run("MissingOrganization", func(t *testing.T) {
		err := auth.Authorize(ctx, sub, authz.ActionShow, authz.Object{Type: authz.ResourceTeammate, ID: self.ID})
		var invalidResource *authz.InvalidResourceError
		require.ErrorAs(t, err, &invalidResource)
	})
}

func TestAuthorize_Prompts(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t, testutil.WaitShort)
	auth, db := newAuthorizer(t)

	org := dbgen.Organization(t, db, database.Organization{})
	recipientSub, recipient := member(t, db, org, database.Teammate{})
	creatorSub, creator := member(t, db, org, database.Teammate{})
	flaggedSub, _ := member(t, db, org, database.Teammate{CanManagePrompts: true})
	bystanderSub, _ := member(t, db, org, database.Teammate{})

	prompt := dbgen.Prompt(t, db, database.Prompt{
		OrganizationID:    org.ID,
		TeammateID:        recipient.ID,
		CreatorTeammateID: creator.ID,
	})
	obj := authz.ObjectFromPrompt(prompt)

	require.NoError(t, auth.Authorize(ctx, recipientSub, authz.ActionShow, obj))
	require.NoError(t, auth.Authorize(ctx, creatorSub, authz.ActionShow, obj))
	require.NoError(t, auth.Authorize(ctx, flaggedSub, authz.ActionShow, obj))
	err := auth.Authorize(ctx, bystanderSub, authz.ActionShow, obj)
	require.True(t, authz.IsUnauthorizedError(err))

	// Closing your own open prompt needs no flag.
	require.NoError(t, auth.Authorize(ctx, recipientSub, authz.ActionClose, obj))
	err = auth.Authorize(ctx, bystanderSub, authz.ActionClose, obj)
	require.True(t, authz.IsUnauthorizedError(err))
}

func TestAuthorize_DenyMetrics(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t, testutil.WaitShort)
	reg := prometheus.NewRegistry()
	db := dbmem.New()
	auth := authz.New(db, testutil.Logger(t), authz.WithRegistry(reg))

	org := dbgen.Organization(t, db, database.Organization{})
	sub, _ := terminated(t, db, org, database.Teammate{})
	_, other := member(t, db, org, database.Teammate{})

	err := auth.Authorize(ctx, sub, authz.ActionShow, authz.ObjectFromTeammate(other))
	require.True(t, authz.IsUnauthorizedError(err))

	metrics, err := reg.Gather()
	require.NoError(t, err)
	require.True(t, testutil.PromCounterHasValue(t, metrics, 1, "cadence_authz_denies_total", "show", "teammate"))
}

func TestSubjectForPerson(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t, testutil.WaitShort)
	auth, db := newAuthorizer(t)

	org := dbgen.Organization(t, db, database.Organization{})
	person := dbgen.Person(t, db, database.Person{})
	teammate := dbgen.Teammate(t, db, database.Teammate{
		PersonID:       person.ID,
		OrganizationID: org.ID,
	})

	sub, err := auth.SubjectForPerson(ctx, person, org.ID)
	require.NoError(t, err)
	require.NotNil(t, sub.Teammate)
	require.Equal(t, teammate.ID, sub.Teammate.ID)

	// A non-member still acts on their own person resources.
	stranger := dbgen.Person(t, db, database.Person{})
	sub, err = auth.SubjectForPerson(ctx, stranger, org.ID)
	require.NoError(t, err)
	require.Nil(t, sub.Teammate)
	require.NoError(t, auth.Authorize(ctx, sub, authz.ActionShow, authz.ObjectFromPerson(stranger)))
	err = auth.Authorize(ctx, sub, authz.ActionShow, authz.ObjectFromPerson(person))
	require.True(t, authz.IsUnauthorizedError(err))
}

func TestFilter(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t, testutil.WaitShort)
	auth, db := newAuthorizer(t)

	org := dbgen.Organization(t, db, database.Organization{})
	terminatedSub, self := terminated(t, db, org, database.Teammate{})
	employedSub, _ := member(t, db, org, database.Teammate{})
	_, a := member(t, db, org, database.Teammate{})
	_, b := member(t, db, org, database.Teammate{})

	teammates := []database.Teammate{self, a, b}

	// An employed teammate sees the whole roster; a terminated one keeps
	// only their own record.
	visible, err := authz.Filter(ctx, auth, employedSub, teammates, authz.ObjectFromTeammate)
	require.NoError(t, err)
	require.Len(t, visible, 3)

	visible, err = authz.Filter(ctx, auth, terminatedSub, teammates, authz.ObjectFromTeammate)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	require.Equal(t, self.ID, visible[0].ID)
}
