package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/traintrackhq/traintrack-backend/internal/apperr"
	"github.com/traintrackhq/traintrack-backend/internal/types"
)

func TestAddSubjectRejectsDuplicateOffering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	supervisor := f.createUser(t, "sup", types.RoleSupervisor)
	course := f.createCourse(t, "Go Backend", supervisor)
	f.assignSupervisor(t, course, supervisor)
	subject := f.createSubject(t, "Databases")

	first, err := f.courses.AddSubject(ctx, supervisor, &types.CourseSubject{CourseID: course.ID, SubjectID: subject.ID})
	require.NoError(t, err)
	require.NotNil(t, first)

	_, err = f.courses.AddSubject(ctx, supervisor, &types.CourseSubject{CourseID: course.ID, SubjectID: subject.ID})
	require.True(t, apperr.IsKind(err, apperr.KindValidationFailed))
	require.Equal(t, "subject_already_added", apperr.From(err).Code)
	require.EqualValues(t, 1, f.countRows(t, &types.CourseSubject{}))
}
