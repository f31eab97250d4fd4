package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/traintrackhq/traintrack-backend/internal/ability"
	"github.com/traintrackhq/traintrack-backend/internal/apperr"
	"github.com/traintrackhq/traintrack-backend/internal/logger"
	"github.com/traintrackhq/traintrack-backend/internal/repos"
	"github.com/traintrackhq/traintrack-backend/internal/storage"
	"github.com/traintrackhq/traintrack-backend/internal/types"
)

// Task update message kinds. Handlers translate these into localized flash
// messages; the service only ever speaks in kinds.
const (
	MsgStatusUpdated         = "status_updated"
	MsgStatusUpdateFailed    = "status_update_failed"
	MsgSpentTimeUpdated      = "spent_time_updated"
	MsgSpentTimeUpdateFailed = "spent_time_update_failed"
	MsgDocumentUpdated       = "document_updated"
	MsgDocumentUpdateFailed  = "document_update_failed"
	MsgDocumentDestroyed     = "document_destroyed"
	MsgDocumentNotFound      = "document_not_found"
	MsgCannotDoThisTask      = "cannot_do_this_task"
	MsgSubjectProgressFailed = "subject_in_progress_failed"
)

// UserTaskConfig carries the tunable validation rules for task updates.
type UserTaskConfig struct {
	// DoneSentinel is the integer a client sends to mean "done"; anything
	// else flips the task back to not done.
	DoneSentinel int
	// MinSpentTime is the smallest accepted spent-time value.
	MinSpentTime int
	// AllowedContentTypes is the document upload allow-list.
	AllowedContentTypes []string
	MinDocumentSize     int64
	MaxDocumentSize     int64
}

func DefaultUserTaskConfig() UserTaskConfig {
	return UserTaskConfig{
		DoneSentinel: 1,
		MinSpentTime: 1,
		AllowedContentTypes: []string{
			"application/pdf",
			"image/png",
			"image/jpeg",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		},
		MinDocumentSize: 1,
		MaxDocumentSize: 10 << 20,
	}
}

func (c UserTaskConfig) allowsContentType(ct string) bool {
	for _, allowed := range c.AllowedContentTypes {
		if ct == allowed {
			return true
		}
	}
	return false
}

// DocumentUpload is one incoming file: validated metadata plus the byte
// stream, which goes to storage untouched.
type DocumentUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// TaskUpdateResult reports one task update. Success false with a *_failed
// kind is an ordinary outcome, not an error: the caller redirects back to
// the subject page either way.
type TaskUpdateResult struct {
	Success     bool            `json:"success"`
	MessageKind string          `json:"message_kind"`
	CourseID    uuid.UUID       `json:"course_id"`
	SubjectID   uuid.UUID       `json:"subject_id"`
	Document    *types.Document `json:"document,omitempty"`
}

type UserTaskService interface {
	UpdateStatus(ctx context.Context, actor *types.User, userSubjectID, taskID uuid.UUID, status *int) (*TaskUpdateResult, error)
	UpdateSpentTime(ctx context.Context, actor *types.User, userSubjectID, taskID uuid.UUID, spentTime *int) (*TaskUpdateResult, error)
	UpdateDocument(ctx context.Context, actor *types.User, userSubjectID, taskID uuid.UUID, upload *DocumentUpload) (*TaskUpdateResult, error)
	DestroyDocument(ctx context.Context, actor *types.User, userSubjectID, taskID, documentID uuid.UUID) (*TaskUpdateResult, error)
}

type userTaskService struct {
	db              *gorm.DB
	log             *logger.Logger
	ability         *ability.Ability
	cfg             UserTaskConfig
	store           storage.Storage
	userSubjectRepo repos.UserSubjectRepo
	userTaskRepo    repos.UserTaskRepo
	taskRepo        repos.TaskRepo
	documentRepo    repos.DocumentRepo
}

func NewUserTaskService(
	db *gorm.DB,
	baseLog *logger.Logger,
	ab *ability.Ability,
	cfg UserTaskConfig,
	store storage.Storage,
	userSubjectRepo repos.UserSubjectRepo,
	userTaskRepo repos.UserTaskRepo,
	taskRepo repos.TaskRepo,
	documentRepo repos.DocumentRepo,
) UserTaskService {
	serviceLog := baseLog.With("service", "UserTaskService")
	return &userTaskService{
		db:              db,
		log:             serviceLog,
		ability:         ab,
		cfg:             cfg,
		store:           store,
		userSubjectRepo: userSubjectRepo,
		userTaskRepo:    userTaskRepo,
		taskRepo:        taskRepo,
		documentRepo:    documentRepo,
	}
}

// taskScope is the shared prologue of every task update: resolve the user
// subject, authorize the actor against it, and find-or-create their row for
// the task. A foreign or unresolvable row surfaces as cannot_do_this_task
// rather than an error, keeping the response identical to the unauthorized
// case.
type taskScope struct {
	userSubject *types.UserSubject
	userTask    *types.UserTask
	result      *TaskUpdateResult
}

func (s *userTaskService) resolveScope(ctx context.Context, actor *types.User, userSubjectID, taskID uuid.UUID, action ability.Action) (*taskScope, error) {
	subjects, err := s.userSubjectRepo.GetByIDs(ctx, nil, []uuid.UUID{userSubjectID})
	if err != nil {
		return nil, fmt.Errorf("load user subject: %w", err)
	}
	if len(subjects) == 0 {
		return nil, apperr.NotFound(MsgCannotDoThisTask, "/courses")
	}
	us := subjects[0]

	result := &TaskUpdateResult{}
	if us.CourseSubject != nil {
		result.CourseID = us.CourseSubject.CourseID
		result.SubjectID = us.CourseSubject.SubjectID
	}

	ut, err := s.userTaskRepo.GetByUserAndTask(ctx, nil, us.UserID, taskID)
	if err != nil {
		return nil, fmt.Errorf("load user task: %w", err)
	}
	if ut == nil {
		// a task added after the subject page was last initialized has no
		// row yet; adopt it here so the update does not depend on the
		// trainee reopening the page first
		ut, err = s.adoptTask(ctx, us, taskID)
		if err != nil {
			return nil, err
		}
	}
	if ut == nil || ut.UserSubjectID != us.ID {
		result.MessageKind = MsgCannotDoThisTask
		return &taskScope{userSubject: us, result: result}, nil
	}

	if !s.ability.Can(actor, action, ut) {
		result.MessageKind = MsgCannotDoThisTask
		return &taskScope{userSubject: us, result: result}, nil
	}

	return &taskScope{userSubject: us, userTask: ut, result: result}, nil
}

// adoptTask creates the missing progress row, provided the task really
// belongs to the subject pairing behind this user subject. Tasks of other
// subjects or courses stay untracked and fall through to cannot_do_this_task.
func (s *userTaskService) adoptTask(ctx context.Context, us *types.UserSubject, taskID uuid.UUID) (*types.UserTask, error) {
	if us.CourseSubject == nil {
		return nil, nil
	}
	tasks, err := s.taskRepo.GetByIDs(ctx, nil, []uuid.UUID{taskID})
	if err != nil {
		return nil, fmt.Errorf("load task: %w", err)
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	task := tasks[0]

	belongs := (task.TaskableType == types.TaskableSubject && task.TaskableID == us.CourseSubject.SubjectID) ||
		(task.TaskableType == types.TaskableCourseSubject && task.TaskableID == us.CourseSubject.ID)
	if !belongs {
		return nil, nil
	}

	return s.userTaskRepo.GetOrCreate(ctx, nil, &types.UserTask{
		ID:            uuid.New(),
		UserID:        us.UserID,
		TaskID:        task.ID,
		UserSubjectID: us.ID,
		Status:        types.UserTaskNotDone,
	})
}

func (s *userTaskService) UpdateStatus(ctx context.Context, actor *types.User, userSubjectID, taskID uuid.UUID, status *int) (*TaskUpdateResult, error) {
	scope, err := s.resolveScope(ctx, actor, userSubjectID, taskID, ability.ActionUpdateStatus)
	if err != nil {
		return nil, err
	}
	if scope.userTask == nil {
		return scope.result, nil
	}

	if status == nil {
		scope.result.MessageKind = MsgStatusUpdateFailed
		return scope.result, nil
	}

	next := types.UserTaskNotDone
	if *status == s.cfg.DoneSentinel {
		next = types.UserTaskDone
	}
	if err := s.userTaskRepo.UpdateStatus(ctx, nil, scope.userTask.ID, next); err != nil {
		s.log.Error("task status update failed", "user_task_id", scope.userTask.ID, "error", err)
		scope.result.MessageKind = MsgStatusUpdateFailed
		return scope.result, nil
	}

	scope.result.Success = true
	scope.result.MessageKind = MsgStatusUpdated
	s.markSubjectInProgress(ctx, scope)
	return scope.result, nil
}

func (s *userTaskService) UpdateSpentTime(ctx context.Context, actor *types.User, userSubjectID, taskID uuid.UUID, spentTime *int) (*TaskUpdateResult, error) {
	scope, err := s.resolveScope(ctx, actor, userSubjectID, taskID, ability.ActionUpdateSpentTime)
	if err != nil {
		return nil, err
	}
	if scope.userTask == nil {
		return scope.result, nil
	}

	if spentTime == nil || *spentTime < s.cfg.MinSpentTime {
		scope.result.MessageKind = MsgSpentTimeUpdateFailed
		return scope.result, nil
	}

	if err := s.userTaskRepo.UpdateSpentTime(ctx, nil, scope.userTask.ID, *spentTime); err != nil {
		s.log.Error("task spent time update failed", "user_task_id", scope.userTask.ID, "error", err)
		scope.result.MessageKind = MsgSpentTimeUpdateFailed
		return scope.result, nil
	}

	scope.result.Success = true
	scope.result.MessageKind = MsgSpentTimeUpdated
	s.markSubjectInProgress(ctx, scope)
	return scope.result, nil
}

// UpdateDocument attaches one file to the task: bytes first, then the
// metadata row. A row failure rolls the stored bytes back so storage never
// holds orphans the database cannot reach.
func (s *userTaskService) UpdateDocument(ctx context.Context, actor *types.User, userSubjectID, taskID uuid.UUID, upload *DocumentUpload) (*TaskUpdateResult, error) {
	scope, err := s.resolveScope(ctx, actor, userSubjectID, taskID, ability.ActionUpdateDocument)
	if err != nil {
		return nil, err
	}
	if scope.userTask == nil {
		return scope.result, nil
	}

	if upload == nil || upload.Content == nil || upload.FileName == "" ||
		!s.cfg.allowsContentType(upload.ContentType) ||
		upload.Size < s.cfg.MinDocumentSize || upload.Size > s.cfg.MaxDocumentSize {
		scope.result.MessageKind = MsgDocumentUpdateFailed
		return scope.result, nil
	}

	key := storage.NewKey(scope.userTask.ID, upload.FileName)
	if err := s.store.Save(key, upload.Content); err != nil {
		s.log.Error("document store failed", "user_task_id", scope.userTask.ID, "error", err)
		scope.result.MessageKind = MsgDocumentUpdateFailed
		return scope.result, nil
	}

	doc := &types.Document{
		ID:          uuid.New(),
		UserTaskID:  scope.userTask.ID,
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
		ByteSize:    upload.Size,
		StorageKey:  key,
	}
	if _, err := s.documentRepo.Create(ctx, nil, []*types.Document{doc}); err != nil {
		s.log.Error("document row create failed", "user_task_id", scope.userTask.ID, "error", err)
		if delErr := s.store.Delete(key); delErr != nil {
			s.log.Warn("orphaned stored file left behind", "key", key, "error", delErr)
		}
		scope.result.MessageKind = MsgDocumentUpdateFailed
		return scope.result, nil
	}

	scope.result.Success = true
	scope.result.MessageKind = MsgDocumentUpdated
	scope.result.Document = doc
	s.markSubjectInProgress(ctx, scope)
	return scope.result, nil
}

// DestroyDocument detaches one file. Deleting never counts as working on the
// task, so the subject status is left alone.
func (s *userTaskService) DestroyDocument(ctx context.Context, actor *types.User, userSubjectID, taskID, documentID uuid.UUID) (*TaskUpdateResult, error) {
	scope, err := s.resolveScope(ctx, actor, userSubjectID, taskID, ability.ActionDestroyDocument)
	if err != nil {
		return nil, err
	}
	if scope.userTask == nil {
		return scope.result, nil
	}

	doc, err := s.documentRepo.GetByIDAndUserTask(ctx, nil, documentID, scope.userTask.ID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		scope.result.MessageKind = MsgDocumentNotFound
		return scope.result, nil
	}

	if err := s.documentRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{doc.ID}); err != nil {
		s.log.Error("document row delete failed", "document_id", doc.ID, "error", err)
		scope.result.MessageKind = MsgDocumentUpdateFailed
		return scope.result, nil
	}
	if err := s.store.Delete(doc.StorageKey); err != nil {
		s.log.Warn("stored file delete failed", "key", doc.StorageKey, "error", err)
	}

	scope.result.Success = true
	scope.result.MessageKind = MsgDocumentDestroyed
	return scope.result, nil
}

// markSubjectInProgress flips the owning subject to in_progress on the first
// successful task update. It never undoes the update itself: a failed flip
// only downgrades the message so the client can surface it.
func (s *userTaskService) markSubjectInProgress(ctx context.Context, scope *taskScope) {
	_, err := s.userSubjectRepo.MarkInProgress(ctx, nil, scope.userSubject.ID, time.Now())
	if err != nil {
		s.log.Warn("subject in_progress transition failed",
			"user_subject_id", scope.userSubject.ID, "error", err)
		scope.result.MessageKind = MsgSubjectProgressFailed
	}
}
