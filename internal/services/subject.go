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

type SubjectService interface {
	Create(ctx context.Context, actor *types.User, subject *types.Subject, categoryIDs []uuid.UUID) (*types.Subject, error)
	Get(ctx context.Context, actor *types.User, id uuid.UUID) (*types.Subject, error)
	List(ctx context.Context, actor *types.User, includeDeleted bool) ([]*types.Subject, error)
	Update(ctx context.Context, actor *types.User, subject *types.Subject, categoryIDs []uuid.UUID) (*types.Subject, error)
	Delete(ctx context.Context, actor *types.User, id uuid.UUID) error
	Purge(ctx context.Context, actor *types.User, id uuid.UUID) error
	Restore(ctx context.Context, actor *types.User, id uuid.UUID) error
}

type subjectService struct {
	db             *gorm.DB
	log            *logger.Logger
	ability        *ability.Ability
	subjectRepo    repos.SubjectRepo
	categoryRepo   repos.CategoryRepo
	userCourseRepo repos.UserCourseRepo
	courseSubjRepo repos.CourseSubjectRepo
}

func NewSubjectService(
	db *gorm.DB,
	baseLog *logger.Logger,
	ab *ability.Ability,
	subjectRepo repos.SubjectRepo,
	categoryRepo repos.CategoryRepo,
	userCourseRepo repos.UserCourseRepo,
	courseSubjRepo repos.CourseSubjectRepo,
) SubjectService {
	serviceLog := baseLog.With("service", "SubjectService")
	return &subjectService{
		db:             db,
		log:            serviceLog,
		ability:        ab,
		subjectRepo:    subjectRepo,
		categoryRepo:   categoryRepo,
		userCourseRepo: userCourseRepo,
		courseSubjRepo: courseSubjRepo,
	}
}

func (s *subjectService) Create(ctx context.Context, actor *types.User, subject *types.Subject, categoryIDs []uuid.UUID) (*types.Subject, error) {
	if !s.ability.Can(actor, ability.ActionCreate, &types.Subject{}) {
		return nil, apperr.NotAuthorized("create", "Subject")
	}
	if subject == nil || subject.Name == "" {
		return nil, apperr.Validation("subject_name_required", fmt.Errorf("subject name is required"))
	}

	categories, err := s.resolveCategories(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}

	subject.ID = uuid.New()
	subject.Categories = categories
	if subject.MaxScore == 0 {
		subject.MaxScore = 100
	}
	if _, err := s.subjectRepo.Create(ctx, nil, []*types.Subject{subject}); err != nil {
		return nil, fmt.Errorf("create subject: %w", err)
	}
	return subject, nil
}

func (s *subjectService) Get(ctx context.Context, actor *types.User, id uuid.UUID) (*types.Subject, error) {
	subjects, err := s.subjectRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("load subject: %w", err)
	}
	if len(subjects) == 0 {
		return nil, apperr.NotFound("subject_not_found", "/subjects")
	}
	subject := subjects[0]

	enrolledIDs, err := s.subjectRepo.GetEnrolledUserIDs(ctx, nil, subject.ID)
	if err != nil {
		return nil, fmt.Errorf("load subject enrollment: %w", err)
	}
	subject.EnrolledUserIDs = enrolledIDs

	// same answer as a missing subject: show scope never leaks existence
	if !s.ability.Can(actor, ability.ActionShow, subject) {
		return nil, apperr.NotFound("subject_not_found", "/subjects")
	}
	return subject, nil
}

// List returns the full catalog for staff. Trainees get only the subjects
// offered in their own courses; includeDeleted is a staff-only switch.
func (s *subjectService) List(ctx context.Context, actor *types.User, includeDeleted bool) ([]*types.Subject, error) {
	if actor == nil {
		return nil, apperr.NotAuthorized("index", "Subject")
	}
	if actor.Role != types.RoleTrainee {
		if includeDeleted {
			return s.subjectRepo.ListIncludingDeleted(ctx, nil)
		}
		return s.subjectRepo.List(ctx, nil)
	}

	enrollments, err := s.userCourseRepo.ListByUserID(ctx, nil, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}
	seen := map[uuid.UUID]bool{}
	var subjectIDs []uuid.UUID
	for _, uc := range enrollments {
		rows, err := s.courseSubjRepo.ListByCourseID(ctx, nil, uc.CourseID)
		if err != nil {
			return nil, fmt.Errorf("load course subjects: %w", err)
		}
		for _, cs := range rows {
			if !seen[cs.SubjectID] {
				seen[cs.SubjectID] = true
				subjectIDs = append(subjectIDs, cs.SubjectID)
			}
		}
	}
	return s.subjectRepo.GetByIDs(ctx, nil, subjectIDs)
}

func (s *subjectService) Update(ctx context.Context, actor *types.User, subject *types.Subject, categoryIDs []uuid.UUID) (*types.Subject, error) {
	if subject == nil {
		return nil, apperr.Validation("subject_required", fmt.Errorf("no subject given"))
	}
	existing, err := s.loadForWrite(ctx, actor, subject.ID, ability.ActionUpdate)
	if err != nil {
		return nil, err
	}

	existing.Name = subject.Name
	existing.MaxScore = subject.MaxScore
	existing.EstimatedTimeDays = subject.EstimatedTimeDays
	if categoryIDs != nil {
		categories, err := s.resolveCategories(ctx, categoryIDs)
		if err != nil {
			return nil, err
		}
		if err := s.db.WithContext(ctx).
			Model(existing).
			Association("Categories").
			Replace(categories); err != nil {
			return nil, fmt.Errorf("replace subject categories: %w", err)
		}
	}
	if err := s.subjectRepo.Update(ctx, nil, existing); err != nil {
		return nil, fmt.Errorf("update subject: %w", err)
	}
	return existing, nil
}

// Delete soft deletes: the subject drops out of the catalog but existing
// progress rows keep pointing at it, and Restore brings it back.
func (s *subjectService) Delete(ctx context.Context, actor *types.User, id uuid.UUID) error {
	if _, err := s.loadForWrite(ctx, actor, id, ability.ActionDestroy); err != nil {
		return err
	}
	return s.subjectRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{id})
}

// Purge removes a subject for good, soft-deleted or not. Admin only.
func (s *subjectService) Purge(ctx context.Context, actor *types.User, id uuid.UUID) error {
	subjects, err := s.subjectRepo.GetByIDsIncludingDeleted(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return fmt.Errorf("load subject: %w", err)
	}
	if len(subjects) == 0 {
		return apperr.NotFound("subject_not_found", "/subjects")
	}
	if actor == nil || actor.Role != types.RoleAdmin {
		return apperr.NotAuthorized("destroy", "Subject")
	}
	return s.subjectRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{id})
}

func (s *subjectService) Restore(ctx context.Context, actor *types.User, id uuid.UUID) error {
	subjects, err := s.subjectRepo.GetByIDsIncludingDeleted(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return fmt.Errorf("load subject: %w", err)
	}
	if len(subjects) == 0 {
		return apperr.NotFound("subject_not_found", "/subjects")
	}
	if !s.ability.Can(actor, ability.ActionUpdate, subjects[0]) {
		return apperr.NotAuthorized("update", "Subject")
	}
	return s.subjectRepo.RestoreByIDs(ctx, nil, []uuid.UUID{id})
}

func (s *subjectService) loadForWrite(ctx context.Context, actor *types.User, id uuid.UUID, action ability.Action) (*types.Subject, error) {
	subjects, err := s.subjectRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("load subject: %w", err)
	}
	if len(subjects) == 0 {
		return nil, apperr.NotFound("subject_not_found", "/subjects")
	}
	if !s.ability.Can(actor, action, subjects[0]) {
		return nil, apperr.NotAuthorized(string(action), "Subject")
	}
	return subjects[0], nil
}

func (s *subjectService) resolveCategories(ctx context.Context, ids []uuid.UUID) ([]*types.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	categories, err := s.categoryRepo.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	if len(categories) != len(ids) {
		return nil, apperr.Validation("category_not_found", fmt.Errorf("one or more categories do not exist"))
	}
	return categories, nil
}
