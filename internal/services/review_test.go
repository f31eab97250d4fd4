package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/traintrackhq/traintrack-backend/internal/apperr"
	"github.com/traintrackhq/traintrack-backend/internal/types"
)

type reviewFixture struct {
	*taskFixture
	supervisor *types.User
}

func newReviewFixture(t *testing.T) *reviewFixture {
	tf := newTaskFixture(t)
	supervisor := &types.User{}
	require.NoError(t, tf.db.Where("role = ?", types.RoleSupervisor).First(supervisor).Error)
	tf.assignSupervisor(t, tf.course, supervisor)
	return &reviewFixture{taskFixture: tf, supervisor: supervisor}
}

func TestFinishRequiresInProgress(t *testing.T) {
	rf := newReviewFixture(t)
	ctx := context.Background()
	usID := rf.page.UserSubject.ID

	_, err := rf.review.Finish(ctx, rf.supervisor, usID, 80)
	require.True(t, apperr.IsKind(err, apperr.KindValidationFailed))

	done := 1
	_, err = rf.userTasks.UpdateStatus(ctx, rf.trainee, usID, rf.page.UserTasks[0].TaskID, &done)
	require.NoError(t, err)

	us, err := rf.review.Finish(ctx, rf.supervisor, usID, 80)
	require.NoError(t, err)
	require.Equal(t, types.UserSubjectCompleted, us.Status)
	require.NotNil(t, us.Score)
	require.Equal(t, 80.0, *us.Score)
	require.NotNil(t, us.CompletedAt)

	// completed subjects do not transition again
	_, err = rf.review.Finish(ctx, rf.supervisor, usID, 90)
	require.True(t, apperr.IsKind(err, apperr.KindValidationFailed))
	require.Equal(t, 80.0, *rf.reloadUserSubject(t).Score)
}

func TestUpdateScoreRequiresCourseAssignment(t *testing.T) {
	rf := newReviewFixture(t)
	ctx := context.Background()
	usID := rf.page.UserSubject.ID

	unassigned := rf.createUser(t, "other-sup", types.RoleSupervisor)
	_, err := rf.review.UpdateScore(ctx, unassigned, usID, 50)
	require.True(t, apperr.IsKind(err, apperr.KindNotAuthorized))

	us, err := rf.review.UpdateScore(ctx, rf.supervisor, usID, 50)
	require.NoError(t, err)
	require.Equal(t, 50.0, *us.Score)
}

func TestUpdateScoreRejectsOutOfRange(t *testing.T) {
	rf := newReviewFixture(t)

	_, err := rf.review.UpdateScore(context.Background(), rf.supervisor, rf.page.UserSubject.ID, 150)
	require.True(t, apperr.IsKind(err, apperr.KindValidationFailed))
	_, err = rf.review.UpdateScore(context.Background(), rf.supervisor, rf.page.UserSubject.ID, -1)
	require.True(t, apperr.IsKind(err, apperr.KindValidationFailed))
}

func TestCommentsBelongToTheirAuthor(t *testing.T) {
	rf := newReviewFixture(t)
	ctx := context.Background()
	usID := rf.page.UserSubject.ID

	comment, err := rf.review.CreateComment(ctx, rf.supervisor, usID, "solid work")
	require.NoError(t, err)

	// a second supervisor on the same course cannot rewrite it
	colleague := rf.createUser(t, "colleague", types.RoleSupervisor)
	rf.assignSupervisor(t, rf.course, colleague)
	_, err = rf.review.UpdateComment(ctx, colleague, comment.ID, "actually not")
	require.True(t, apperr.IsKind(err, apperr.KindNotAuthorized))

	updated, err := rf.review.UpdateComment(ctx, rf.supervisor, comment.ID, "solid work, minor nits")
	require.NoError(t, err)
	require.Equal(t, "solid work, minor nits", updated.Content)

	require.NoError(t, rf.review.DestroyComment(ctx, rf.supervisor, comment.ID))
	require.EqualValues(t, 0, rf.countRows(t, &types.Comment{}))
}

func TestTraineesCannotReview(t *testing.T) {
	rf := newReviewFixture(t)

	_, err := rf.review.UpdateScore(context.Background(), rf.trainee, rf.page.UserSubject.ID, 10)
	require.True(t, apperr.IsKind(err, apperr.KindNotAuthorized))
	_, err = rf.review.CreateComment(context.Background(), rf.trainee, rf.page.UserSubject.ID, "self praise")
	require.True(t, apperr.IsKind(err, apperr.KindNotAuthorized))
}
