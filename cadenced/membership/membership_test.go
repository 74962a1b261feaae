package membership_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cadencehq/cadence/cadenced/database"
	"github.com/cadencehq/cadence/cadenced/database/dbgen"
	"github.com/cadencehq/cadence/cadenced/database/dbmem"
	"github.com/cadencehq/cadence/cadenced/membership"
	"github.com/cadencehq/cadence/testutil"
)

func TestResolve(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t, testutil.WaitShort)
	db := dbmem.New()
	resolver := membership.NewResolver(db)

	person := dbgen.Person(t, db, database.Person{})
	org := dbgen.Organization(t, db, database.Organization{})
	otherOrg := dbgen.Organization(t, db, database.Organization{})
	teammate := dbgen.Teammate(t, db, database.Teammate{
		PersonID:       person.ID,
		OrganizationID: org.ID,
	})

	resolved, err := resolver.Resolve(ctx, person.ID, org.ID)
	require.NoError(t, err)
	require.Equal(t, teammate.ID, resolved.ID)

	// Same person, an organization they are not a member of.
	_, err = resolver.Resolve(ctx, person.ID, otherOrg.ID)
	require.ErrorIs(t, err, membership.ErrNotMember)

	_, err = resolver.Resolve(ctx, uuid.New(), org.ID)
	require.ErrorIs(t, err, membership.ErrNotMember)
}

func TestResolveByID(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t, testutil.WaitShort)
	db := dbmem.New()
	resolver := membership.NewResolver(db)

	org := dbgen.Organization(t, db, database.Organization{})
	teammate := dbgen.Teammate(t, db, database.Teammate{OrganizationID: org.ID})

	resolved, err := resolver.ResolveByID(ctx, teammate.ID)
	require.NoError(t, err)
	require.Equal(t, teammate.ID, resolved.ID)

	_, err = resolver.ResolveByID(ctx, uuid.New())
	require.ErrorIs(t, err, membership.ErrNotMember)
}
