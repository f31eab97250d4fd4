package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/traintrackhq/traintrack-backend/internal/ability"
	"github.com/traintrackhq/traintrack-backend/internal/apperr"
	"github.com/traintrackhq/traintrack-backend/internal/logger"
	"github.com/traintrackhq/traintrack-backend/internal/repos"
	"github.com/traintrackhq/traintrack-backend/internal/types"
)

type CourseService interface {
	Create(ctx context.Context, actor *types.User, course *types.Course) (*types.Course, error)
	Get(ctx context.Context, actor *types.User, id uuid.UUID) (*types.Course, error)
	List(ctx context.Context, actor *types.User) ([]*types.Course, error)
	Update(ctx context.Context, actor *types.User, course *types.Course) (*types.Course, error)
	Delete(ctx context.Context, actor *types.User, id uuid.UUID) error
	Members(ctx context.Context, actor *types.User, courseID uuid.UUID) ([]*types.UserCourse, error)
	SearchMembers(ctx context.Context, actor *types.User, courseID uuid.UUID, query string) ([]*types.UserCourse, error)
	Supervisors(ctx context.Context, actor *types.User, courseID uuid.UUID) ([]*types.User, error)
	AddSupervisor(ctx context.Context, actor *types.User, courseID, userID uuid.UUID) error
	Leave(ctx context.Context, actor *types.User, courseID uuid.UUID) error
	Subjects(ctx context.Context, actor *types.User, courseID uuid.UUID) ([]*types.CourseSubject, error)
	AddSubject(ctx context.Context, actor *types.User, row *types.CourseSubject) (*types.CourseSubject, error)
	RemoveSubject(ctx context.Context, actor *types.User, courseSubjectID uuid.UUID) error
}

type courseService struct {
	db             *gorm.DB
	log            *logger.Logger
	ability        *ability.Ability
	courseRepo     repos.CourseRepo
	subjectRepo    repos.SubjectRepo
	courseSubjRepo repos.CourseSubjectRepo
	userCourseRepo repos.UserCourseRepo
	userRepo       repos.UserRepo
}

func NewCourseService(
	db *gorm.DB,
	baseLog *logger.Logger,
	ab *ability.Ability,
	courseRepo repos.CourseRepo,
	subjectRepo repos.SubjectRepo,
	courseSubjRepo repos.CourseSubjectRepo,
	userCourseRepo repos.UserCourseRepo,
	userRepo repos.UserRepo,
) CourseService {
	serviceLog := baseLog.With("service", "CourseService")
	return &courseService{
		db:             db,
		log:            serviceLog,
		ability:        ab,
		courseRepo:     courseRepo,
		subjectRepo:    subjectRepo,
		courseSubjRepo: courseSubjRepo,
		userCourseRepo: userCourseRepo,
		userRepo:       userRepo,
	}
}

// Create stores the course and assigns the creating supervisor to it in the
// same transaction, so a new course is never left without a supervisor.
func (s *courseService) Create(ctx context.Context, actor *types.User, course *types.Course) (*types.Course, error) {
	if !s.ability.Can(actor, ability.ActionCreate, &types.Course{}) {
		return nil, apperr.NotAuthorized("create", "Course")
	}
	if course == nil || course.Name == "" {
		return nil, apperr.Validation("course_name_required", fmt.Errorf("course name is required"))
	}

	course.ID = uuid.New()
	course.CreatorID = actor.ID
	if course.Status == "" {
		course.Status = types.CourseNotStarted
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.courseRepo.Create(ctx, tx, []*types.Course{course}); err != nil {
			return err
		}
		if actor.Role == types.RoleSupervisor {
			return s.courseRepo.AddSupervisor(ctx, tx, course.ID, actor.ID)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return course, nil
}

func (s *courseService) Get(ctx context.Context, actor *types.User, id uuid.UUID) (*types.Course, error) {
	return s.load(ctx, actor, id)
}

// List returns every course for staff; trainees only see the courses they
// are enrolled in.
func (s *courseService) List(ctx context.Context, actor *types.User) ([]*types.Course, error) {
	if actor == nil {
		return nil, apperr.NotAuthorized("index", "Course")
	}
	if actor.Role != types.RoleTrainee {
		return s.courseRepo.List(ctx, nil)
	}

	enrollments, err := s.userCourseRepo.ListByUserID(ctx, nil, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(enrollments))
	for _, uc := range enrollments {
		ids = append(ids, uc.CourseID)
	}
	return s.courseRepo.ListByIDs(ctx, nil, ids)
}

func (s *courseService) Update(ctx context.Context, actor *types.User, course *types.Course) (*types.Course, error) {
	if course == nil {
		return nil, apperr.Validation("course_required", fmt.Errorf("no course given"))
	}
	existing, err := s.load(ctx, actor, course.ID)
	if err != nil {
		return nil, err
	}
	if !s.ability.Can(actor, ability.ActionUpdate, existing) {
		return nil, apperr.NotAuthorized("update", "Course")
	}

	existing.Name = course.Name
	existing.Description = course.Description
	existing.Link = course.Link
	existing.StartDate = course.StartDate
	existing.FinishDate = course.FinishDate
	if course.Status != "" {
		existing.Status = course.Status
	}
	if err := s.courseRepo.Update(ctx, nil, existing); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	return existing, nil
}

func (s *courseService) Delete(ctx context.Context, actor *types.User, id uuid.UUID) error {
	course, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if !s.ability.Can(actor, ability.ActionDestroy, course) {
		return apperr.NotAuthorized("destroy", "Course")
	}
	return s.courseRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{id})
}

func (s *courseService) Members(ctx context.Context, actor *types.User, courseID uuid.UUID) ([]*types.UserCourse, error) {
	course, err := s.load(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}
	if !s.ability.Can(actor, ability.ActionMembers, course) {
		return nil, apperr.NotAuthorized("members", "Course")
	}
	return s.userCourseRepo.ListByCourseID(ctx, nil, courseID)
}

// SearchMembers filters the member list by a case-insensitive name or email
// fragment. Course rosters stay small enough to filter in memory.
func (s *courseService) SearchMembers(ctx context.Context, actor *types.User, courseID uuid.UUID, query string) ([]*types.UserCourse, error) {
	course, err := s.load(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}
	if !s.ability.Can(actor, ability.ActionSearchMembers, course) {
		return nil, apperr.NotAuthorized("search_members", "Course")
	}

	members, err := s.userCourseRepo.ListByCourseID(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return members, nil
	}
	matched := make([]*types.UserCourse, 0, len(members))
	for _, uc := range members {
		if uc.User == nil {
			continue
		}
		if strings.Contains(strings.ToLower(uc.User.Name), needle) ||
			strings.Contains(strings.ToLower(uc.User.Email), needle) {
			matched = append(matched, uc)
		}
	}
	return matched, nil
}

func (s *courseService) Supervisors(ctx context.Context, actor *types.User, courseID uuid.UUID) ([]*types.User, error) {
	course, err := s.load(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}
	if !s.ability.Can(actor, ability.ActionSupervisors, course) {
		return nil, apperr.NotAuthorized("supervisors", "Course")
	}
	return s.userRepo.GetByIDs(ctx, nil, course.SupervisorIDs)
}

func (s *courseService) AddSupervisor(ctx context.Context, actor *types.User, courseID, userID uuid.UUID) error {
	course, err := s.load(ctx, actor, courseID)
	if err != nil {
		return err
	}
	if !s.ability.Can(actor, ability.ActionUpdate, course) {
		return apperr.NotAuthorized("update", "Course")
	}

	users, err := s.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return apperr.NotFound("user_not_found", "/courses/"+courseID.String())
	}
	if users[0].Role != types.RoleSupervisor {
		return apperr.Validation("user_not_supervisor", fmt.Errorf("user %s is not a supervisor", userID))
	}
	return s.courseRepo.AddSupervisor(ctx, nil, courseID, userID)
}

// Leave removes the acting supervisor from the course. The last supervisor
// cannot leave, otherwise nobody could manage the course anymore.
func (s *courseService) Leave(ctx context.Context, actor *types.User, courseID uuid.UUID) error {
	course, err := s.load(ctx, actor, courseID)
	if err != nil {
		return err
	}
	if !s.ability.Can(actor, ability.ActionLeave, course) {
		return apperr.NotAuthorized("leave", "Course")
	}
	if len(course.SupervisorIDs) <= 1 {
		return apperr.Validation("last_supervisor", fmt.Errorf("cannot leave course %s as its last supervisor", courseID))
	}
	return s.courseRepo.RemoveSupervisor(ctx, nil, courseID, actor.ID)
}

func (s *courseService) Subjects(ctx context.Context, actor *types.User, courseID uuid.UUID) ([]*types.CourseSubject, error) {
	course, err := s.load(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}
	if !s.ability.Can(actor, ability.ActionSubjects, course) {
		return nil, apperr.NotAuthorized("subjects", "Course")
	}
	return s.courseSubjRepo.ListByCourseID(ctx, nil, courseID)
}

// AddSubject offers a catalog subject inside the course. Offering the same
// subject twice fails on the unique (course_id, subject_id) key.
func (s *courseService) AddSubject(ctx context.Context, actor *types.User, row *types.CourseSubject) (*types.CourseSubject, error) {
	if row == nil {
		return nil, apperr.Validation("course_subject_required", fmt.Errorf("no course subject given"))
	}
	course, err := s.load(ctx, actor, row.CourseID)
	if err != nil {
		return nil, err
	}
	if !s.ability.Can(actor, ability.ActionAddSubject, course) {
		return nil, apperr.NotAuthorized("add_subject", "Course")
	}

	subjects, err := s.subjectRepo.GetByIDs(ctx, nil, []uuid.UUID{row.SubjectID})
	if err != nil {
		return nil, fmt.Errorf("load subject: %w", err)
	}
	if len(subjects) == 0 {
		return nil, apperr.NotFound("subject_not_found", "/courses/"+row.CourseID.String())
	}

	row.ID = uuid.New()
	got, err := s.courseSubjRepo.GetOrCreate(ctx, nil, row)
	if err != nil {
		return nil, fmt.Errorf("add subject to course: %w", err)
	}
	if got.ID != row.ID {
		// the unique key swallowed our insert: the pair already exists
		return nil, apperr.Validation("subject_already_added", fmt.Errorf("subject %s already offered in course %s", row.SubjectID, row.CourseID))
	}
	return got, nil
}

func (s *courseService) RemoveSubject(ctx context.Context, actor *types.User, courseSubjectID uuid.UUID) error {
	rows, err := s.courseSubjRepo.GetByIDs(ctx, nil, []uuid.UUID{courseSubjectID})
	if err != nil {
		return fmt.Errorf("load course subject: %w", err)
	}
	if len(rows) == 0 {
		return apperr.NotFound("course_subject_not_found", "/courses")
	}
	if !s.ability.Can(actor, ability.ActionDestroy, rows[0]) {
		return apperr.NotAuthorized("destroy", "CourseSubject")
	}
	return s.courseSubjRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{courseSubjectID})
}

// load returns the course only when the actor may see it. A missing course
// and one outside the actor's scope answer with the same not-found error, so
// a caller can never probe which course ids exist.
func (s *courseService) load(ctx context.Context, actor *types.User, id uuid.UUID) (*types.Course, error) {
	courses, err := s.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if len(courses) == 0 || !s.ability.Can(actor, ability.ActionShow, courses[0]) {
		return nil, apperr.NotFound("course_not_found", "/courses")
	}
	return courses[0], nil
}
