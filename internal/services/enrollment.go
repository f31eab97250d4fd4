package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/traintrackhq/traintrack-backend/internal/ability"
	"github.com/traintrackhq/traintrack-backend/internal/apperr"
	"github.com/traintrackhq/traintrack-backend/internal/logger"
	"github.com/traintrackhq/traintrack-backend/internal/repos"
	"github.com/traintrackhq/traintrack-backend/internal/types"
)

// SubjectPage is everything the subject view needs in one load: the catalog
// records plus, for an enrolled viewer, their own progress rows.
type SubjectPage struct {
	Course        *types.Course        `json:"course"`
	Subject       *types.Subject       `json:"subject"`
	CourseSubject *types.CourseSubject `json:"course_subject,omitempty"`
	Tasks         []*types.Task        `json:"tasks"`
	UserSubject   *types.UserSubject   `json:"user_subject,omitempty"`
	UserTasks     []*types.UserTask    `json:"user_tasks,omitempty"`
	Comments      []*types.Comment     `json:"comments,omitempty"`
}

type EnrollmentService interface {
	Enroll(ctx context.Context, actor *types.User, userID, courseID uuid.UUID) (*types.UserCourse, error)
	MyCourses(ctx context.Context, actor *types.User) ([]*types.UserCourse, error)
	UpdateUserCourseStatus(ctx context.Context, actor *types.User, userCourseID uuid.UUID, status types.UserCourseStatus) error
	RemoveUserCourse(ctx context.Context, actor *types.User, userCourseID uuid.UUID) error
	ShowSubject(ctx context.Context, actor *types.User, courseID, subjectID uuid.UUID) (*SubjectPage, error)
}

type enrollmentService struct {
	db              *gorm.DB
	log             *logger.Logger
	ability         *ability.Ability
	courseRepo      repos.CourseRepo
	subjectRepo     repos.SubjectRepo
	courseSubjRepo  repos.CourseSubjectRepo
	taskRepo        repos.TaskRepo
	userCourseRepo  repos.UserCourseRepo
	userSubjectRepo repos.UserSubjectRepo
	userTaskRepo    repos.UserTaskRepo
	commentRepo     repos.CommentRepo
}

func NewEnrollmentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	ab *ability.Ability,
	courseRepo repos.CourseRepo,
	subjectRepo repos.SubjectRepo,
	courseSubjRepo repos.CourseSubjectRepo,
	taskRepo repos.TaskRepo,
	userCourseRepo repos.UserCourseRepo,
	userSubjectRepo repos.UserSubjectRepo,
	userTaskRepo repos.UserTaskRepo,
	commentRepo repos.CommentRepo,
) EnrollmentService {
	serviceLog := baseLog.With("service", "EnrollmentService")
	return &enrollmentService{
		db:              db,
		log:             serviceLog,
		ability:         ab,
		courseRepo:      courseRepo,
		subjectRepo:     subjectRepo,
		courseSubjRepo:  courseSubjRepo,
		taskRepo:        taskRepo,
		userCourseRepo:  userCourseRepo,
		userSubjectRepo: userSubjectRepo,
		userTaskRepo:    userTaskRepo,
		commentRepo:     commentRepo,
	}
}

// Enroll adds userID to courseID. Re-enrolling an already enrolled user
// returns the existing enrollment untouched.
func (s *enrollmentService) Enroll(ctx context.Context, actor *types.User, userID, courseID uuid.UUID) (*types.UserCourse, error) {
	row := &types.UserCourse{
		ID:       uuid.New(),
		UserID:   userID,
		CourseID: courseID,
		Status:   types.UserCourseNotStarted,
	}
	// the candidate row carries its course id, so the supervisor scope
	// check applies before anything is written
	if !s.ability.Can(actor, ability.ActionCreate, row) {
		return nil, apperr.NotAuthorized("create", "UserCourse")
	}

	courses, err := s.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if len(courses) == 0 {
		return nil, apperr.NotFound("course_not_found", "/courses")
	}
	uc, err := s.userCourseRepo.GetOrCreate(ctx, nil, row)
	if err != nil {
		return nil, fmt.Errorf("enroll user: %w", err)
	}
	return uc, nil
}

func (s *enrollmentService) MyCourses(ctx context.Context, actor *types.User) ([]*types.UserCourse, error) {
	if actor == nil {
		return nil, apperr.NotAuthorized("index", "UserCourse")
	}
	return s.userCourseRepo.ListByUserID(ctx, nil, actor.ID)
}

func (s *enrollmentService) UpdateUserCourseStatus(ctx context.Context, actor *types.User, userCourseID uuid.UUID, status types.UserCourseStatus) error {
	uc, err := s.loadUserCourse(ctx, userCourseID)
	if err != nil {
		return err
	}
	if !s.ability.Can(actor, ability.ActionUpdate, uc) {
		return apperr.NotAuthorized("update", "UserCourse")
	}

	switch status {
	case types.UserCourseNotStarted, types.UserCourseInProgress, types.UserCourseFinished:
	default:
		return apperr.Validation("status_update_failed", fmt.Errorf("unknown enrollment status %q", status))
	}
	return s.userCourseRepo.UpdateStatus(ctx, nil, uc.ID, status)
}

func (s *enrollmentService) RemoveUserCourse(ctx context.Context, actor *types.User, userCourseID uuid.UUID) error {
	uc, err := s.loadUserCourse(ctx, userCourseID)
	if err != nil {
		return err
	}
	if !s.ability.Can(actor, ability.ActionDestroy, uc) {
		return apperr.NotAuthorized("destroy", "UserCourse")
	}
	return s.userCourseRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{uc.ID})
}

// ShowSubject resolves the subject view inside a course and, when the viewer
// holds an enrollment, lazily fills the progress rows behind it: one
// UserSubject for the pairing and one UserTask per task, all inside a single
// transaction. Rows that already exist are left exactly as they are, so any
// number of concurrent or repeated opens converges on the same state. A
// viewer without an enrollment gets the catalog page and zero writes.
func (s *enrollmentService) ShowSubject(ctx context.Context, actor *types.User, courseID, subjectID uuid.UUID) (*SubjectPage, error) {
	courses, err := s.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	// a course outside the viewer's scope answers exactly like a missing
	// one, so ids cannot be probed for existence
	if len(courses) == 0 || !s.ability.Can(actor, ability.ActionShow, courses[0]) {
		return nil, apperr.NotFound("course_not_found", "/courses")
	}
	course := courses[0]

	subjects, err := s.subjectRepo.GetByIDs(ctx, nil, []uuid.UUID{subjectID})
	if err != nil {
		return nil, fmt.Errorf("load subject: %w", err)
	}
	if len(subjects) == 0 {
		return nil, apperr.NotFound("subject_not_found", "/courses/"+courseID.String())
	}
	subject := subjects[0]

	enrolledIDs, err := s.subjectRepo.GetEnrolledUserIDs(ctx, nil, subject.ID)
	if err != nil {
		return nil, fmt.Errorf("load subject enrollment: %w", err)
	}
	subject.EnrolledUserIDs = enrolledIDs

	if !s.ability.Can(actor, ability.ActionShow, subject) {
		return nil, apperr.NotFound("subject_not_found", "/courses/"+courseID.String())
	}

	page := &SubjectPage{Course: course, Subject: subject}

	cs, err := s.courseSubjRepo.GetByCourseAndSubject(ctx, nil, courseID, subjectID)
	if err != nil {
		return nil, fmt.Errorf("load course subject: %w", err)
	}
	if cs == nil {
		// subject exists but is not offered in this course yet: catalog
		// view only, nothing to initialize
		return page, nil
	}
	page.CourseSubject = cs

	tasks, err := s.collectTasks(ctx, cs)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	page.Tasks = tasks

	uc, err := s.userCourseRepo.GetByUserAndCourse(ctx, nil, actor.ID, courseID)
	if err != nil {
		return nil, fmt.Errorf("load enrollment: %w", err)
	}
	if uc == nil {
		// supervisors and admins browse without progress rows
		return page, nil
	}

	var us *types.UserSubject
	var userTasks []*types.UserTask
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := &types.UserSubject{
			ID:              uuid.New(),
			UserID:          actor.ID,
			UserCourseID:    uc.ID,
			CourseSubjectID: cs.ID,
			Status:          types.UserSubjectNotStarted,
		}
		got, txErr := s.userSubjectRepo.GetOrCreate(ctx, tx, row)
		if txErr != nil {
			return txErr
		}
		us = got

		missing := make([]*types.UserTask, 0, len(tasks))
		for _, task := range tasks {
			missing = append(missing, &types.UserTask{
				ID:            uuid.New(),
				UserID:        actor.ID,
				TaskID:        task.ID,
				UserSubjectID: us.ID,
				Status:        types.UserTaskNotDone,
			})
		}
		if txErr := s.userTaskRepo.CreateMissing(ctx, tx, missing); txErr != nil {
			return txErr
		}

		userTasks, txErr = s.userTaskRepo.ListByUserSubjectID(ctx, tx, us.ID)
		return txErr
	}); err != nil {
		s.log.Error("subject progress initialization failed",
			"user_id", actor.ID, "course_id", courseID, "subject_id", subjectID, "error", err)
		return nil, apperr.ProgressInit("/courses/"+courseID.String(), err)
	}

	page.UserSubject = us
	page.UserTasks = userTasks

	comments, err := s.commentRepo.ListByUserSubjectID(ctx, nil, us.ID)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	page.Comments = comments
	return page, nil
}

// collectTasks merges the subject's catalog tasks with the tasks scoped to
// this particular course offering.
func (s *enrollmentService) collectTasks(ctx context.Context, cs *types.CourseSubject) ([]*types.Task, error) {
	subjectTasks, err := s.taskRepo.ListByTaskable(ctx, nil, types.TaskableSubject, cs.SubjectID)
	if err != nil {
		return nil, err
	}
	courseTasks, err := s.taskRepo.ListByTaskable(ctx, nil, types.TaskableCourseSubject, cs.ID)
	if err != nil {
		return nil, err
	}
	return append(subjectTasks, courseTasks...), nil
}

func (s *enrollmentService) loadUserCourse(ctx context.Context, id uuid.UUID) (*types.UserCourse, error) {
	var row types.UserCourse
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("user_course_not_found", "/courses")
		}
		return nil, fmt.Errorf("load user course: %w", err)
	}
	return &row, nil
}
