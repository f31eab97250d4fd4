package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/traintrackhq/traintrack-backend/internal/apperr"
	"github.com/traintrackhq/traintrack-backend/internal/types"
)

func TestShowSubjectInitializesProgressLazily(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	supervisor := f.createUser(t, "sup", types.RoleSupervisor)
	trainee := f.createUser(t, "trainee", types.RoleTrainee)
	course := f.createCourse(t, "Go Backend", supervisor)
	f.assignSupervisor(t, course, supervisor)
	subject := f.createSubject(t, "Databases")
	cs := f.offerSubject(t, course, subject)
	f.createTask(t, "Read the docs", types.TaskableSubject, subject.ID)
	f.createTask(t, "Build the demo", types.TaskableCourseSubject, cs.ID)
	f.enrollUser(t, trainee, course)

	page, err := f.enrollment.ShowSubject(ctx, trainee, course.ID, subject.ID)
	require.NoError(t, err)
	require.NotNil(t, page.UserSubject)
	require.Equal(t, types.UserSubjectNotStarted, page.UserSubject.Status)
	require.Nil(t, page.UserSubject.StartedAt)
	require.Len(t, page.Tasks, 2)
	require.Len(t, page.UserTasks, 2)
	for _, ut := range page.UserTasks {
		require.Equal(t, types.UserTaskNotDone, ut.Status)
		require.Nil(t, ut.SpentTime)
	}

	// reopening converges on the same rows
	again, err := f.enrollment.ShowSubject(ctx, trainee, course.ID, subject.ID)
	require.NoError(t, err)
	require.Equal(t, page.UserSubject.ID, again.UserSubject.ID)
	require.EqualValues(t, 1, f.countRows(t, &types.UserSubject{}))
	require.EqualValues(t, 2, f.countRows(t, &types.UserTask{}))
}

func TestShowSubjectFillsGapsAfterNewTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	supervisor := f.createUser(t, "sup", types.RoleSupervisor)
	trainee := f.createUser(t, "trainee", types.RoleTrainee)
	course := f.createCourse(t, "Go Backend", supervisor)
	subject := f.createSubject(t, "Databases")
	cs := f.offerSubject(t, course, subject)
	f.createTask(t, "Task one", types.TaskableCourseSubject, cs.ID)
	f.enrollUser(t, trainee, course)

	first, err := f.enrollment.ShowSubject(ctx, trainee, course.ID, subject.ID)
	require.NoError(t, err)
	require.Len(t, first.UserTasks, 1)

	// mark progress on the existing row, then add a task behind the
	// trainee's back
	done := 1
	_, err = f.userTasks.UpdateStatus(ctx, trainee, first.UserSubject.ID, first.UserTasks[0].TaskID, &done)
	require.NoError(t, err)
	f.createTask(t, "Task two", types.TaskableCourseSubject, cs.ID)

	second, err := f.enrollment.ShowSubject(ctx, trainee, course.ID, subject.ID)
	require.NoError(t, err)
	require.Len(t, second.UserTasks, 2)

	// the original row kept its state
	for _, ut := range second.UserTasks {
		if ut.TaskID == first.UserTasks[0].TaskID {
			require.Equal(t, types.UserTaskDone, ut.Status)
		} else {
			require.Equal(t, types.UserTaskNotDone, ut.Status)
		}
	}
}

func TestShowSubjectWithoutEnrollmentWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	supervisor := f.createUser(t, "sup", types.RoleSupervisor)
	course := f.createCourse(t, "Go Backend", supervisor)
	f.assignSupervisor(t, course, supervisor)
	subject := f.createSubject(t, "Databases")
	cs := f.offerSubject(t, course, subject)
	f.createTask(t, "Task one", types.TaskableCourseSubject, cs.ID)

	page, err := f.enrollment.ShowSubject(ctx, supervisor, course.ID, subject.ID)
	require.NoError(t, err)
	require.Nil(t, page.UserSubject)
	require.Nil(t, page.UserTasks)
	require.Len(t, page.Tasks, 1)
	require.EqualValues(t, 0, f.countRows(t, &types.UserSubject{}))
	require.EqualValues(t, 0, f.countRows(t, &types.UserTask{}))
}

func TestShowSubjectNotOfferedInCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	supervisor := f.createUser(t, "sup", types.RoleSupervisor)
	trainee := f.createUser(t, "trainee", types.RoleTrainee)
	offering := f.createCourse(t, "Course A", supervisor)
	other := f.createCourse(t, "Course B", supervisor)
	subject := f.createSubject(t, "Databases")
	f.offerSubject(t, offering, subject)
	f.enrollUser(t, trainee, offering)
	f.enrollUser(t, trainee, other)

	// the trainee can see the subject through course A, but course B does
	// not offer it: catalog view, no progress rows for course B
	page, err := f.enrollment.ShowSubject(ctx, trainee, other.ID, subject.ID)
	require.NoError(t, err)
	require.Nil(t, page.CourseSubject)
	require.Nil(t, page.UserSubject)
	require.Empty(t, page.Tasks)
	require.EqualValues(t, 0, f.countRows(t, &types.UserSubject{}))
}

func TestShowSubjectHidesExistingCoursesFromOutsiders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	supervisor := f.createUser(t, "sup", types.RoleSupervisor)
	outsider := f.createUser(t, "outsider", types.RoleTrainee)
	course := f.createCourse(t, "Go Backend", supervisor)
	subject := f.createSubject(t, "Databases")
	f.offerSubject(t, course, subject)

	// a course the outsider may not see answers exactly like one that does
	// not exist
	_, errExisting := f.enrollment.ShowSubject(ctx, outsider, course.ID, subject.ID)
	_, errMissing := f.enrollment.ShowSubject(ctx, outsider, uuid.New(), subject.ID)
	require.True(t, apperr.IsKind(errExisting, apperr.KindNotFound))
	require.True(t, apperr.IsKind(errMissing, apperr.KindNotFound))
	require.Equal(t, apperr.From(errExisting).Code, apperr.From(errMissing).Code)
	require.Equal(t, apperr.From(errExisting).Fallback, apperr.From(errMissing).Fallback)
}

func TestEnrollIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	supervisor := f.createUser(t, "sup", types.RoleSupervisor)
	trainee := f.createUser(t, "trainee", types.RoleTrainee)
	course := f.createCourse(t, "Go Backend", supervisor)
	f.assignSupervisor(t, course, supervisor)

	first, err := f.enrollment.Enroll(ctx, supervisor, trainee.ID, course.ID)
	require.NoError(t, err)
	second, err := f.enrollment.Enroll(ctx, supervisor, trainee.ID, course.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.EqualValues(t, 1, f.countRows(t, &types.UserCourse{}))
}

func TestEnrollRequiresCourseAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.createUser(t, "owner", types.RoleSupervisor)
	unassigned := f.createUser(t, "other", types.RoleSupervisor)
	trainee := f.createUser(t, "trainee", types.RoleTrainee)
	course := f.createCourse(t, "Go Backend", owner)
	f.assignSupervisor(t, course, owner)

	_, err := f.enrollment.Enroll(ctx, unassigned, trainee.ID, course.ID)
	require.True(t, apperr.IsKind(err, apperr.KindNotAuthorized))

	admin := f.createUser(t, "admin", types.RoleAdmin)
	_, err = f.enrollment.Enroll(ctx, admin, trainee.ID, course.ID)
	require.NoError(t, err)
}
