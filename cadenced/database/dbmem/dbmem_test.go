package dbmem_test

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cadencehq/cadence/cadenced/database"
	"github.com/cadencehq/cadence/cadenced/database/dbgen"
	"github.com/cadencehq/cadence/cadenced/database/dbmem"
	"github.com/cadencehq/cadence/testutil"
)

func TestTeammateUniqueness(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t, testutil.WaitShort)
	db := dbmem.New()

	person := dbgen.Person(t, db, database.Person{})
	org := dbgen.Organization(t, db, database.Organization{})
	dbgen.Teammate(t, db, database.Teammate{PersonID: person.ID, OrganizationID: org.ID})

	_, err := db.InsertTeammate(ctx, database.InsertTeammateParams{
		ID:             uuid.New(),
		PersonID:       person.ID,
		OrganizationID: org.ID,
	})
	require.True(t, database.IsUniqueViolation(err, database.UniqueTeammatePersonOrganization))
}

func TestMissesReturnNoRows(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t, testutil.WaitShort)
	db := dbmem.New()

	_, err := db.GetTeammateByID(ctx, uuid.New())
	require.ErrorIs(t, err, sql.ErrNoRows)
	_, err = db.GetOpenTenureByTeammateID(ctx, uuid.New())
	require.ErrorIs(t, err, sql.ErrNoRows)
	_, err = db.GetObservationByID(ctx, uuid.New())
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestObservationObservees(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t, testutil.WaitShort)
	db := dbmem.New()

	org := dbgen.Organization(t, db, database.Organization{})
	creator := dbgen.Teammate(t, db, database.Teammate{OrganizationID: org.ID})
	observee := dbgen.Teammate(t, db, database.Teammate{OrganizationID: org.ID})
	obs := dbgen.Observation(t, db, database.Observation{
		OrganizationID:    org.ID,
		CreatorTeammateID: creator.ID,
	}, observee.ID)

	ids, err := db.ListObserveeIDsByObservationID(ctx, obs.ID)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{observee.ID}, ids)
}
