package services

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/traintrackhq/traintrack-backend/internal/types"
)

// taskFixture seeds one enrolled trainee with an initialized subject and a
// single task row ready to update.
type taskFixture struct {
	*fixture
	trainee *types.User
	course  *types.Course
	subject *types.Subject
	page    *SubjectPage
}

func newTaskFixture(t *testing.T) *taskFixture {
	f := newFixture(t)
	supervisor := f.createUser(t, "sup", types.RoleSupervisor)
	trainee := f.createUser(t, "trainee", types.RoleTrainee)
	course := f.createCourse(t, "Go Backend", supervisor)
	subject := f.createSubject(t, "Databases")
	cs := f.offerSubject(t, course, subject)
	f.createTask(t, "Build the demo", types.TaskableCourseSubject, cs.ID)
	f.enrollUser(t, trainee, course)

	page, err := f.enrollment.ShowSubject(context.Background(), trainee, course.ID, subject.ID)
	require.NoError(t, err)
	require.Len(t, page.UserTasks, 1)

	return &taskFixture{fixture: f, trainee: trainee, course: course, subject: subject, page: page}
}

func (tf *taskFixture) reloadUserSubject(t *testing.T) *types.UserSubject {
	t.Helper()
	rows, err := tf.userSubjectRepo.GetByIDs(context.Background(), nil, []uuid.UUID{tf.page.UserSubject.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	return rows[0]
}

func (tf *taskFixture) reloadUserTask(t *testing.T) *types.UserTask {
	t.Helper()
	rows, err := tf.userTaskRepo.GetByIDs(context.Background(), nil, []uuid.UUID{tf.page.UserTasks[0].ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	return rows[0]
}

func TestUpdateStatusMarksSubjectInProgressOnce(t *testing.T) {
	tf := newTaskFixture(t)
	ctx := context.Background()
	taskID := tf.page.UserTasks[0].TaskID

	done := 1
	result, err := tf.userTasks.UpdateStatus(ctx, tf.trainee, tf.page.UserSubject.ID, taskID, &done)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, MsgStatusUpdated, result.MessageKind)
	require.Equal(t, tf.course.ID, result.CourseID)
	require.Equal(t, tf.subject.ID, result.SubjectID)

	us := tf.reloadUserSubject(t)
	require.Equal(t, types.UserSubjectInProgress, us.Status)
	require.NotNil(t, us.StartedAt)
	firstStart := *us.StartedAt
	require.Equal(t, types.UserTaskDone, tf.reloadUserTask(t).Status)

	// a second update keeps the original start time
	notDone := 0
	result, err = tf.userTasks.UpdateStatus(ctx, tf.trainee, tf.page.UserSubject.ID, taskID, &notDone)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, types.UserTaskNotDone, tf.reloadUserTask(t).Status)

	us = tf.reloadUserSubject(t)
	require.Equal(t, types.UserSubjectInProgress, us.Status)
	require.Equal(t, firstStart.Unix(), us.StartedAt.Unix())
}

func TestUpdateStatusRejectsMissingValue(t *testing.T) {
	tf := newTaskFixture(t)

	result, err := tf.userTasks.UpdateStatus(context.Background(), tf.trainee, tf.page.UserSubject.ID, tf.page.UserTasks[0].TaskID, nil)
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Equal(t, MsgStatusUpdateFailed, result.MessageKind)
	require.Equal(t, types.UserSubjectNotStarted, tf.reloadUserSubject(t).Status)
}

func TestUpdateSpentTimeEnforcesMinimum(t *testing.T) {
	tf := newTaskFixture(t)
	ctx := context.Background()
	taskID := tf.page.UserTasks[0].TaskID

	zero := 0
	result, err := tf.userTasks.UpdateSpentTime(ctx, tf.trainee, tf.page.UserSubject.ID, taskID, &zero)
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Equal(t, MsgSpentTimeUpdateFailed, result.MessageKind)
	require.Equal(t, types.UserSubjectNotStarted, tf.reloadUserSubject(t).Status)

	five := 5
	result, err = tf.userTasks.UpdateSpentTime(ctx, tf.trainee, tf.page.UserSubject.ID, taskID, &five)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, MsgSpentTimeUpdated, result.MessageKind)

	ut := tf.reloadUserTask(t)
	require.NotNil(t, ut.SpentTime)
	require.Equal(t, 5, *ut.SpentTime)
	require.Equal(t, types.UserSubjectInProgress, tf.reloadUserSubject(t).Status)
}

func TestUpdateDocumentValidatesAndStores(t *testing.T) {
	tf := newTaskFixture(t)
	ctx := context.Background()
	taskID := tf.page.UserTasks[0].TaskID

	badUpload := &DocumentUpload{
		FileName:    "virus.exe",
		ContentType: "application/octet-stream",
		Size:        128,
		Content:     bytes.NewReader([]byte("nope")),
	}
	result, err := tf.userTasks.UpdateDocument(ctx, tf.trainee, tf.page.UserSubject.ID, taskID, badUpload)
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Equal(t, MsgDocumentUpdateFailed, result.MessageKind)
	require.EqualValues(t, 0, tf.countRows(t, &types.Document{}))

	payload := []byte("%PDF-1.4 fake report")
	goodUpload := &DocumentUpload{
		FileName:    "report.pdf",
		ContentType: "application/pdf",
		Size:        int64(len(payload)),
		Content:     bytes.NewReader(payload),
	}
	result, err = tf.userTasks.UpdateDocument(ctx, tf.trainee, tf.page.UserSubject.ID, taskID, goodUpload)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, MsgDocumentUpdated, result.MessageKind)
	require.NotNil(t, result.Document)

	stored, err := tf.store.Open(result.Document.StorageKey)
	require.NoError(t, err)
	defer stored.Close()
	got, err := io.ReadAll(stored)
	require.NoError(t, err)
	require.Equal(t, payload, got)

	require.Equal(t, types.UserSubjectInProgress, tf.reloadUserSubject(t).Status)
}

func TestUpdateDocumentRejectsOversize(t *testing.T) {
	tf := newTaskFixture(t)

	upload := &DocumentUpload{
		FileName:    "huge.pdf",
		ContentType: "application/pdf",
		Size:        11 << 20,
		Content:     bytes.NewReader([]byte("pretend this is huge")),
	}
	result, err := tf.userTasks.UpdateDocument(context.Background(), tf.trainee, tf.page.UserSubject.ID, tf.page.UserTasks[0].TaskID, upload)
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Equal(t, MsgDocumentUpdateFailed, result.MessageKind)
}

func TestDestroyDocumentNeverTouchesSubjectStatus(t *testing.T) {
	tf := newTaskFixture(t)
	ctx := context.Background()
	taskID := tf.page.UserTasks[0].TaskID

	payload := []byte("%PDF-1.4 fake report")
	upload := &DocumentUpload{
		FileName:    "report.pdf",
		ContentType: "application/pdf",
		Size:        int64(len(payload)),
		Content:     bytes.NewReader(payload),
	}
	created, err := tf.userTasks.UpdateDocument(ctx, tf.trainee, tf.page.UserSubject.ID, taskID, upload)
	require.NoError(t, err)
	require.True(t, created.Success)

	// reset the status so the destroy has something to (not) change
	require.NoError(t, tf.db.Model(&types.UserSubject{}).
		Where("id = ?", tf.page.UserSubject.ID).
		Updates(map[string]interface{}{"status": types.UserSubjectNotStarted, "started_at": nil}).Error)

	result, err := tf.userTasks.DestroyDocument(ctx, tf.trainee, tf.page.UserSubject.ID, taskID, created.Document.ID)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, MsgDocumentDestroyed, result.MessageKind)
	require.EqualValues(t, 0, tf.countRows(t, &types.Document{}))
	require.Equal(t, types.UserSubjectNotStarted, tf.reloadUserSubject(t).Status)

	_, err = tf.store.Open(created.Document.StorageKey)
	require.Error(t, err)
}

func TestDestroyDocumentUnknownID(t *testing.T) {
	tf := newTaskFixture(t)

	result, err := tf.userTasks.DestroyDocument(context.Background(), tf.trainee, tf.page.UserSubject.ID, tf.page.UserTasks[0].TaskID, uuid.New())
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Equal(t, MsgDocumentNotFound, result.MessageKind)
}

func TestTaskUpdatesDeniedForForeignRows(t *testing.T) {
	tf := newTaskFixture(t)
	ctx := context.Background()

	other := tf.createUser(t, "other", types.RoleTrainee)
	tf.enrollUser(t, other, tf.course)

	done := 1
	result, err := tf.userTasks.UpdateStatus(ctx, other, tf.page.UserSubject.ID, tf.page.UserTasks[0].TaskID, &done)
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Equal(t, MsgCannotDoThisTask, result.MessageKind)
	require.Equal(t, types.UserTaskNotDone, tf.reloadUserTask(t).Status)
}

func TestUpdateStatusAdoptsTaskAddedAfterOpen(t *testing.T) {
	tf := newTaskFixture(t)
	ctx := context.Background()

	// the supervisor adds a task after the trainee last opened the page, so
	// no progress row exists for it yet
	late := tf.createTask(t, "Late addition", types.TaskableCourseSubject, tf.page.CourseSubject.ID)

	done := 1
	result, err := tf.userTasks.UpdateStatus(ctx, tf.trainee, tf.page.UserSubject.ID, late.ID, &done)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, MsgStatusUpdated, result.MessageKind)
	require.EqualValues(t, 2, tf.countRows(t, &types.UserTask{}))

	row, err := tf.userTaskRepo.GetByUserAndTask(ctx, nil, tf.trainee.ID, late.ID)
	require.NoError(t, err)
	require.NotNil(t, row)
	require.Equal(t, tf.page.UserSubject.ID, row.UserSubjectID)
	require.Equal(t, types.UserTaskDone, row.Status)
}

func TestUpdateStatusLeavesForeignSubjectTasksUntracked(t *testing.T) {
	tf := newTaskFixture(t)
	ctx := context.Background()

	other := tf.createSubject(t, "Networking")
	foreign := tf.createTask(t, "Foreign task", types.TaskableSubject, other.ID)

	done := 1
	result, err := tf.userTasks.UpdateStatus(ctx, tf.trainee, tf.page.UserSubject.ID, foreign.ID, &done)
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Equal(t, MsgCannotDoThisTask, result.MessageKind)
	require.EqualValues(t, 1, tf.countRows(t, &types.UserTask{}))
}

func TestTaskUpdateUnknownTask(t *testing.T) {
	tf := newTaskFixture(t)

	done := 1
	result, err := tf.userTasks.UpdateStatus(context.Background(), tf.trainee, tf.page.UserSubject.ID, uuid.New(), &done)
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Equal(t, MsgCannotDoThisTask, result.MessageKind)
}
