package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/traintrackhq/traintrack-backend/internal/ability"
	"github.com/traintrackhq/traintrack-backend/internal/db"
	"github.com/traintrackhq/traintrack-backend/internal/logger"
	"github.com/traintrackhq/traintrack-backend/internal/repos"
	"github.com/traintrackhq/traintrack-backend/internal/storage"
	"github.com/traintrackhq/traintrack-backend/internal/types"
)

// fixture wires the full service stack against an in-memory database, one
// isolated database per test.
type fixture struct {
	db  *gorm.DB
	log *logger.Logger
	ab  *ability.Ability

	userRepo        repos.UserRepo
	userTokenRepo   repos.UserTokenRepo
	courseRepo      repos.CourseRepo
	subjectRepo     repos.SubjectRepo
	categoryRepo    repos.CategoryRepo
	courseSubjRepo  repos.CourseSubjectRepo
	taskRepo        repos.TaskRepo
	userCourseRepo  repos.UserCourseRepo
	userSubjectRepo repos.UserSubjectRepo
	userTaskRepo    repos.UserTaskRepo
	documentRepo    repos.DocumentRepo
	commentRepo     repos.CommentRepo
	dailyReportRepo repos.DailyReportRepo

	store storage.Storage

	enrollment EnrollmentService
	userTasks  UserTaskService
	review     ReviewService
	courses    CourseService
	subjects   SubjectService
	tasks      TaskService
	categories CategoryService
	reports    DailyReportService
	users      UserService
	auth       AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log, err := logger.New("dev")
	require.NoError(t, err)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(db.Models()...))

	f := &fixture{db: gdb, log: log, ab: ability.New()}
	f.userRepo = repos.NewUserRepo(gdb, log)
	f.userTokenRepo = repos.NewUserTokenRepo(gdb, log)
	f.courseRepo = repos.NewCourseRepo(gdb, log)
	f.subjectRepo = repos.NewSubjectRepo(gdb, log)
	f.categoryRepo = repos.NewCategoryRepo(gdb, log)
	f.courseSubjRepo = repos.NewCourseSubjectRepo(gdb, log)
	f.taskRepo = repos.NewTaskRepo(gdb, log)
	f.userCourseRepo = repos.NewUserCourseRepo(gdb, log)
	f.userSubjectRepo = repos.NewUserSubjectRepo(gdb, log)
	f.userTaskRepo = repos.NewUserTaskRepo(gdb, log)
	f.documentRepo = repos.NewDocumentRepo(gdb, log)
	f.commentRepo = repos.NewCommentRepo(gdb, log)
	f.dailyReportRepo = repos.NewDailyReportRepo(gdb, log)

	f.store, err = storage.NewLocalStorage(t.TempDir(), log)
	require.NoError(t, err)

	f.enrollment = NewEnrollmentService(gdb, log, f.ab,
		f.courseRepo, f.subjectRepo, f.courseSubjRepo, f.taskRepo,
		f.userCourseRepo, f.userSubjectRepo, f.userTaskRepo, f.commentRepo)
	f.userTasks = NewUserTaskService(gdb, log, f.ab, DefaultUserTaskConfig(), f.store,
		f.userSubjectRepo, f.userTaskRepo, f.taskRepo, f.documentRepo)
	f.review = NewReviewService(gdb, log, f.ab, f.userSubjectRepo, f.commentRepo)
	f.courses = NewCourseService(gdb, log, f.ab,
		f.courseRepo, f.subjectRepo, f.courseSubjRepo, f.userCourseRepo, f.userRepo)
	f.subjects = NewSubjectService(gdb, log, f.ab,
		f.subjectRepo, f.categoryRepo, f.userCourseRepo, f.courseSubjRepo)
	f.tasks = NewTaskService(gdb, log, f.ab, f.taskRepo, f.subjectRepo, f.courseSubjRepo)
	f.categories = NewCategoryService(gdb, log, f.ab, f.categoryRepo)
	f.reports = NewDailyReportService(gdb, log, f.ab, f.dailyReportRepo, f.userCourseRepo)
	f.users = NewUserService(gdb, log, f.ab, f.userRepo, f.userTokenRepo)
	f.auth = NewAuthService(gdb, log, f.userRepo, f.userTokenRepo, "test-secret", 15*time.Minute, 24*time.Hour)

	return f
}

func (f *fixture) createUser(t *testing.T, name string, role types.Role) *types.User {
	t.Helper()
	user := &types.User{
		ID:       uuid.New(),
		Name:     name,
		Email:    name + "@example.com",
		Password: "irrelevant",
		Role:     role,
	}
	_, err := f.userRepo.Create(context.Background(), nil, []*types.User{user})
	require.NoError(t, err)
	return user
}

func (f *fixture) createCourse(t *testing.T, name string, creator *types.User) *types.Course {
	t.Helper()
	course := &types.Course{
		ID:        uuid.New(),
		Name:      name,
		Status:    types.CourseInProgress,
		CreatorID: creator.ID,
	}
	_, err := f.courseRepo.Create(context.Background(), nil, []*types.Course{course})
	require.NoError(t, err)
	return course
}

// assignSupervisor links the supervisor to the course and refreshes their
// in-memory scope the way the auth middleware would.
func (f *fixture) assignSupervisor(t *testing.T, course *types.Course, supervisor *types.User) {
	t.Helper()
	require.NoError(t, f.courseRepo.AddSupervisor(context.Background(), nil, course.ID, supervisor.ID))
	ids, err := f.userRepo.GetSupervisedCourseIDs(context.Background(), nil, supervisor.ID)
	require.NoError(t, err)
	supervisor.SupervisedCourseIDs = ids
}

func (f *fixture) enrollUser(t *testing.T, user *types.User, course *types.Course) *types.UserCourse {
	t.Helper()
	uc, err := f.userCourseRepo.GetOrCreate(context.Background(), nil, &types.UserCourse{
		ID:       uuid.New(),
		UserID:   user.ID,
		CourseID: course.ID,
		Status:   types.UserCourseNotStarted,
	})
	require.NoError(t, err)
	return uc
}

func (f *fixture) createSubject(t *testing.T, name string) *types.Subject {
	t.Helper()
	subject := &types.Subject{ID: uuid.New(), Name: name, MaxScore: 100}
	_, err := f.subjectRepo.Create(context.Background(), nil, []*types.Subject{subject})
	require.NoError(t, err)
	return subject
}

func (f *fixture) offerSubject(t *testing.T, course *types.Course, subject *types.Subject) *types.CourseSubject {
	t.Helper()
	cs := &types.CourseSubject{
		ID:        uuid.New(),
		CourseID:  course.ID,
		SubjectID: subject.ID,
	}
	_, err := f.courseSubjRepo.Create(context.Background(), nil, []*types.CourseSubject{cs})
	require.NoError(t, err)
	return cs
}

func (f *fixture) createTask(t *testing.T, name string, taskableType types.TaskableType, taskableID uuid.UUID) *types.Task {
	t.Helper()
	task := &types.Task{
		ID:           uuid.New(),
		Name:         name,
		TaskableType: taskableType,
		TaskableID:   taskableID,
	}
	_, err := f.taskRepo.Create(context.Background(), nil, []*types.Task{task})
	require.NoError(t, err)
	return task
}

func (f *fixture) countRows(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}
