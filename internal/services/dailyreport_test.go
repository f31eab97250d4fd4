package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/traintrackhq/traintrack-backend/internal/types"
)

func TestListForSupervisorScopesByCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	supervisor := f.createUser(t, "sup", types.RoleSupervisor)
	outsider := f.createUser(t, "other-sup", types.RoleSupervisor)
	trainee := f.createUser(t, "trainee", types.RoleTrainee)
	course := f.createCourse(t, "Go Backend", supervisor)
	f.assignSupervisor(t, course, supervisor)
	f.enrollUser(t, trainee, course)

	_, err := f.reports.Create(ctx, trainee, course.ID, "wrote tests all day", time.Now())
	require.NoError(t, err)

	mine, err := f.reports.ListForSupervisor(ctx, supervisor)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	none, err := f.reports.ListForSupervisor(ctx, outsider)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestListForSupervisorAdminSeesAllCourses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	supA := f.createUser(t, "sup-a", types.RoleSupervisor)
	supB := f.createUser(t, "sup-b", types.RoleSupervisor)
	traineeA := f.createUser(t, "trainee-a", types.RoleTrainee)
	traineeB := f.createUser(t, "trainee-b", types.RoleTrainee)
	courseA := f.createCourse(t, "Course A", supA)
	courseB := f.createCourse(t, "Course B", supB)
	f.assignSupervisor(t, courseA, supA)
	f.assignSupervisor(t, courseB, supB)
	f.enrollUser(t, traineeA, courseA)
	f.enrollUser(t, traineeB, courseB)

	_, err := f.reports.Create(ctx, traineeA, courseA.ID, "set up the repo", time.Now())
	require.NoError(t, err)
	_, err = f.reports.Create(ctx, traineeB, courseB.ID, "read the handbook", time.Now())
	require.NoError(t, err)

	// an admin supervises no course and still sees every filed report
	admin := f.createUser(t, "admin", types.RoleAdmin)
	all, err := f.reports.ListForSupervisor(ctx, admin)
	require.NoError(t, err)
	require.Len(t, all, 2)
}
