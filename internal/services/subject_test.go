package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traintrackhq/traintrack-backend/internal/apperr"
	"github.com/traintrackhq/traintrack-backend/internal/types"
)

func TestSubjectSoftDeleteAndRestore(t *testing.T) {
	f := newFixture(t)
	admin := f.createUser(t, "admin", types.RoleAdmin)
	subject := f.createSubject(t, "Networking basics")

	require.NoError(t, f.subjects.Delete(context.Background(), admin, subject.ID))

	listed, err := f.subjects.List(context.Background(), admin, false)
	require.NoError(t, err)
	assert.Empty(t, listed)

	// The deleted row is still visible to staff on request.
	listed, err = f.subjects.List(context.Background(), admin, true)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, subject.ID, listed[0].ID)

	require.NoError(t, f.subjects.Restore(context.Background(), admin, subject.ID))

	listed, err = f.subjects.List(context.Background(), admin, false)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, subject.ID, listed[0].ID)
}

func TestSubjectPurgeRemovesRowForGood(t *testing.T) {
	f := newFixture(t)
	admin := f.createUser(t, "admin", types.RoleAdmin)
	supervisor := f.createUser(t, "supervisor", types.RoleSupervisor)
	subject := f.createSubject(t, "Legacy subject")

	require.NoError(t, f.subjects.Delete(context.Background(), admin, subject.ID))

	err := f.subjects.Purge(context.Background(), supervisor, subject.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotAuthorized))

	require.NoError(t, f.subjects.Purge(context.Background(), admin, subject.ID))

	err = f.subjects.Restore(context.Background(), admin, subject.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.EqualValues(t, 0, f.countRows(t, &types.Subject{}))
}

func TestTraineeCatalogLimitedToEnrolledCourses(t *testing.T) {
	f := newFixture(t)
	admin := f.createUser(t, "admin", types.RoleAdmin)
	trainee := f.createUser(t, "trainee", types.RoleTrainee)

	mine := f.createCourse(t, "My course", admin)
	other := f.createCourse(t, "Other course", admin)
	offered := f.createSubject(t, "Offered subject")
	hidden := f.createSubject(t, "Hidden subject")
	f.offerSubject(t, mine, offered)
	f.offerSubject(t, other, hidden)
	f.enrollUser(t, trainee, mine)

	listed, err := f.subjects.List(context.Background(), trainee, false)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, offered.ID, listed[0].ID)

	// The include-deleted switch stays staff only.
	listed, err = f.subjects.List(context.Background(), trainee, true)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, offered.ID, listed[0].ID)
}
