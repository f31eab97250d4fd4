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

type TaskService interface {
	Create(ctx context.Context, actor *types.User, task *types.Task) (*types.Task, error)
	ListForTaskable(ctx context.Context, actor *types.User, taskableType types.TaskableType, taskableID uuid.UUID) ([]*types.Task, error)
	Update(ctx context.Context, actor *types.User, task *types.Task) (*types.Task, error)
	Delete(ctx context.Context, actor *types.User, id uuid.UUID) error
}

type taskService struct {
	db             *gorm.DB
	log            *logger.Logger
	ability        *ability.Ability
	taskRepo       repos.TaskRepo
	subjectRepo    repos.SubjectRepo
	courseSubjRepo repos.CourseSubjectRepo
}

func NewTaskService(
	db *gorm.DB,
	baseLog *logger.Logger,
	ab *ability.Ability,
	taskRepo repos.TaskRepo,
	subjectRepo repos.SubjectRepo,
	courseSubjRepo repos.CourseSubjectRepo,
) TaskService {
	serviceLog := baseLog.With("service", "TaskService")
	return &taskService{
		db:             db,
		log:            serviceLog,
		ability:        ab,
		taskRepo:       taskRepo,
		subjectRepo:    subjectRepo,
		courseSubjRepo: courseSubjRepo,
	}
}

// Create attaches a task to its owner: a catalog subject or a course
// subject. The owner must exist, and course-subject tasks additionally
// require the actor to supervise that course.
func (s *taskService) Create(ctx context.Context, actor *types.User, task *types.Task) (*types.Task, error) {
	if task == nil || task.Name == "" {
		return nil, apperr.Validation("task_name_required", fmt.Errorf("task name is required"))
	}
	if !task.TaskableType.Valid() {
		return nil, apperr.Validation("invalid_taskable", fmt.Errorf("unknown taskable type %q", task.TaskableType))
	}

	if err := s.authorizeOwner(ctx, actor, task.TaskableType, task.TaskableID, ability.ActionCreateTask); err != nil {
		return nil, err
	}

	task.ID = uuid.New()
	if _, err := s.taskRepo.Create(ctx, nil, []*types.Task{task}); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

func (s *taskService) ListForTaskable(ctx context.Context, actor *types.User, taskableType types.TaskableType, taskableID uuid.UUID) ([]*types.Task, error) {
	if actor == nil {
		return nil, apperr.NotAuthorized("index", "Task")
	}
	return s.taskRepo.ListByTaskable(ctx, nil, taskableType, taskableID)
}

func (s *taskService) Update(ctx context.Context, actor *types.User, task *types.Task) (*types.Task, error) {
	if task == nil {
		return nil, apperr.Validation("task_required", fmt.Errorf("no task given"))
	}
	existing, err := s.loadTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(ctx, actor, existing.TaskableType, existing.TaskableID, ability.ActionUpdateTask); err != nil {
		return nil, err
	}
	if task.Name == "" {
		return nil, apperr.Validation("task_name_required", fmt.Errorf("task name is required"))
	}

	existing.Name = task.Name
	if err := s.taskRepo.Update(ctx, nil, existing); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return existing, nil
}

// Delete soft deletes so existing user task rows keep their reference.
func (s *taskService) Delete(ctx context.Context, actor *types.User, id uuid.UUID) error {
	existing, err := s.loadTask(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeOwner(ctx, actor, existing.TaskableType, existing.TaskableID, ability.ActionUpdateTask); err != nil {
		return err
	}
	return s.taskRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{id})
}

// authorizeOwner checks the actor against the task's owner record, not the
// task itself, so course-scoped tasks honor the supervisor's course
// assignment.
func (s *taskService) authorizeOwner(ctx context.Context, actor *types.User, taskableType types.TaskableType, taskableID uuid.UUID, csAction ability.Action) error {
	switch taskableType {
	case types.TaskableSubject:
		subjects, err := s.subjectRepo.GetByIDs(ctx, nil, []uuid.UUID{taskableID})
		if err != nil {
			return fmt.Errorf("load subject: %w", err)
		}
		if len(subjects) == 0 {
			return apperr.NotFound("subject_not_found", "/subjects")
		}
		if !s.ability.Can(actor, ability.ActionCreate, &types.Task{}) {
			return apperr.NotAuthorized("manage", "Task")
		}
	case types.TaskableCourseSubject:
		rows, err := s.courseSubjRepo.GetByIDs(ctx, nil, []uuid.UUID{taskableID})
		if err != nil {
			return fmt.Errorf("load course subject: %w", err)
		}
		if len(rows) == 0 {
			return apperr.NotFound("course_subject_not_found", "/courses")
		}
		if !s.ability.Can(actor, csAction, rows[0]) {
			return apperr.NotAuthorized(string(csAction), "CourseSubject")
		}
	default:
		return apperr.Validation("invalid_taskable", fmt.Errorf("unknown taskable type %q", taskableType))
	}
	return nil
}

func (s *taskService) loadTask(ctx context.Context, id uuid.UUID) (*types.Task, error) {
	tasks, err := s.taskRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("load task: %w", err)
	}
	if len(tasks) == 0 {
		return nil, apperr.NotFound("task_not_found", "/subjects")
	}
	return tasks[0], nil
}
