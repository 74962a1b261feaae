package dbpg

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cadencehq/cadence/cadenced/authz"
	"github.com/cadencehq/cadence/cadenced/database"
	"github.com/cadencehq/cadence/cadenced/database/dbgen"
	"github.com/cadencehq/cadence/cadenced/database/dbmem"
	"github.com/cadencehq/cadence/testutil"
)

// TestAuthorizedQueries renders engine-compiled scopes into the listing
// queries and checks the filter lands in the WHERE clause as written.
func TestAuthorizedQueries(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t, testutil.WaitShort)

	db := dbmem.New()
	auth := authz.New(db, testutil.Logger(t))

	org := dbgen.Organization(t, db, database.Organization{})
	person := dbgen.Person(t, db, database.Person{})
	teammate := dbgen.Teammate(t, db, database.Teammate{
		PersonID:       person.ID,
		OrganizationID: org.ID,
	})
	sub := authz.SubjectFor(person, &teammate)

	t.Run("Observations", func(t *testing.T) {
		t.Parallel()
		scope, err := auth.Scope(ctx, sub, authz.ResourceObservation)
		require.NoError(t, err)

		query := authorizedObservationsQuery(scope)
		require.Contains(t, query, "FROM observations")
		require.Contains(t, query, "WHERE "+scope.SQLString(authz.DefaultObservationSQLConfig()))
		require.Contains(t, query, fmt.Sprintf("observations.organization_id = '%s'", org.ID))
		require.Contains(t, query, fmt.Sprintf("observations.creator_teammate_id = '%s'", teammate.ID))
		require.Contains(t, query, "ORDER BY created_at DESC")
	})

	t.Run("Goals", func(t *testing.T) {
		t.Parallel()
		scope, err := auth.Scope(ctx, sub, authz.ResourceGoal)
		require.NoError(t, err)

		query := authorizedGoalsQuery(scope)
		require.Contains(t, query, "FROM goals")
		require.Contains(t, query, "WHERE "+scope.SQLString(authz.DefaultGoalSQLConfig()))
		require.Contains(t, query, fmt.Sprintf("goals.organization_id = '%s'", org.ID))
	})

	t.Run("Teammates", func(t *testing.T) {
		t.Parallel()
		scope, err := auth.Scope(ctx, sub, authz.ResourceTeammate)
		require.NoError(t, err)

		query := authorizedTeammatesQuery(scope)
		require.Contains(t, query, "FROM teammates")
		require.Contains(t, query, fmt.Sprintf("teammates.organization_id = '%s'", org.ID))
	})

	t.Run("NoAccessRendersFalse", func(t *testing.T) {
		t.Parallel()
		query := authorizedGoalsQuery(authz.FilterFalse())
		require.Contains(t, query, "WHERE false")
	})
}
