package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/traintrackhq/traintrack-backend/internal/ability"
	"github.com/traintrackhq/traintrack-backend/internal/apperr"
	"github.com/traintrackhq/traintrack-backend/internal/logger"
	"github.com/traintrackhq/traintrack-backend/internal/repos"
	"github.com/traintrackhq/traintrack-backend/internal/types"
)

// ReviewService is the supervisor side of subject progress: scoring,
// finishing, and commenting on a trainee's subject record.
type ReviewService interface {
	UpdateScore(ctx context.Context, actor *types.User, userSubjectID uuid.UUID, score float64) (*types.UserSubject, error)
	Finish(ctx context.Context, actor *types.User, userSubjectID uuid.UUID, score float64) (*types.UserSubject, error)
	CreateComment(ctx context.Context, actor *types.User, userSubjectID uuid.UUID, content string) (*types.Comment, error)
	UpdateComment(ctx context.Context, actor *types.User, commentID uuid.UUID, content string) (*types.Comment, error)
	DestroyComment(ctx context.Context, actor *types.User, commentID uuid.UUID) error
}

type reviewService struct {
	db              *gorm.DB
	log             *logger.Logger
	ability         *ability.Ability
	userSubjectRepo repos.UserSubjectRepo
	commentRepo     repos.CommentRepo
}

func NewReviewService(
	db *gorm.DB,
	baseLog *logger.Logger,
	ab *ability.Ability,
	userSubjectRepo repos.UserSubjectRepo,
	commentRepo repos.CommentRepo,
) ReviewService {
	serviceLog := baseLog.With("service", "ReviewService")
	return &reviewService{
		db:              db,
		log:             serviceLog,
		ability:         ab,
		userSubjectRepo: userSubjectRepo,
		commentRepo:     commentRepo,
	}
}

func (s *reviewService) UpdateScore(ctx context.Context, actor *types.User, userSubjectID uuid.UUID, score float64) (*types.UserSubject, error) {
	us, err := s.loadAuthorized(ctx, actor, userSubjectID, ability.ActionUpdateScore)
	if err != nil {
		return nil, err
	}
	if err := s.validateScore(us, score); err != nil {
		return nil, err
	}

	if err := s.userSubjectRepo.UpdateScore(ctx, nil, us.ID, score); err != nil {
		return nil, fmt.Errorf("update score: %w", err)
	}
	us.Score = &score
	return us, nil
}

// Finish moves the trainee's subject from in_progress to completed with its
// final score. A subject that never started, or is already completed, does
// not transition again.
func (s *reviewService) Finish(ctx context.Context, actor *types.User, userSubjectID uuid.UUID, score float64) (*types.UserSubject, error) {
	us, err := s.loadAuthorized(ctx, actor, userSubjectID, ability.ActionFinish)
	if err != nil {
		return nil, err
	}
	if err := s.validateScore(us, score); err != nil {
		return nil, err
	}

	completedAt := time.Now()
	transitioned, err := s.userSubjectRepo.Complete(ctx, nil, us.ID, score, completedAt)
	if err != nil {
		return nil, fmt.Errorf("finish subject: %w", err)
	}
	if !transitioned {
		return nil, apperr.Validation("cannot_finish_subject",
			fmt.Errorf("user subject %s is not in progress", us.ID))
	}

	us.Status = types.UserSubjectCompleted
	us.Score = &score
	us.CompletedAt = &completedAt
	return us, nil
}

func (s *reviewService) CreateComment(ctx context.Context, actor *types.User, userSubjectID uuid.UUID, content string) (*types.Comment, error) {
	us, err := s.loadAuthorized(ctx, actor, userSubjectID, ability.ActionCreateComment)
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, apperr.Validation("comment_content_required", fmt.Errorf("comment content is required"))
	}

	row := &types.Comment{
		ID:            uuid.New(),
		UserID:        actor.ID,
		UserSubjectID: us.ID,
		Content:       content,
	}
	if _, err := s.commentRepo.Create(ctx, nil, []*types.Comment{row}); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return row, nil
}

// UpdateComment only ever touches the author's own comment; supervising the
// course is not enough to rewrite someone else's words.
func (s *reviewService) UpdateComment(ctx context.Context, actor *types.User, commentID uuid.UUID, content string) (*types.Comment, error) {
	comment, err := s.loadOwnComment(ctx, actor, commentID, ability.ActionUpdateComment)
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, apperr.Validation("comment_content_required", fmt.Errorf("comment content is required"))
	}

	comment.Content = content
	if err := s.commentRepo.Update(ctx, nil, comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return comment, nil
}

func (s *reviewService) DestroyComment(ctx context.Context, actor *types.User, commentID uuid.UUID) error {
	comment, err := s.loadOwnComment(ctx, actor, commentID, ability.ActionDestroyComment)
	if err != nil {
		return err
	}
	return s.commentRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{comment.ID})
}

// loadAuthorized resolves the user subject and checks the action against its
// course subject, which carries the course id the supervisor scope needs.
func (s *reviewService) loadAuthorized(ctx context.Context, actor *types.User, userSubjectID uuid.UUID, action ability.Action) (*types.UserSubject, error) {
	subjects, err := s.userSubjectRepo.GetByIDs(ctx, nil, []uuid.UUID{userSubjectID})
	if err != nil {
		return nil, fmt.Errorf("load user subject: %w", err)
	}
	if len(subjects) == 0 {
		return nil, apperr.NotFound("user_subject_not_found", "/courses")
	}
	us := subjects[0]
	if us.CourseSubject == nil {
		return nil, fmt.Errorf("user subject %s has no course subject", us.ID)
	}
	if !s.ability.Can(actor, action, us.CourseSubject) {
		return nil, apperr.NotAuthorized(string(action), "CourseSubject")
	}
	return us, nil
}

func (s *reviewService) loadOwnComment(ctx context.Context, actor *types.User, commentID uuid.UUID, action ability.Action) (*types.Comment, error) {
	comments, err := s.commentRepo.GetByIDs(ctx, nil, []uuid.UUID{commentID})
	if err != nil {
		return nil, fmt.Errorf("load comment: %w", err)
	}
	if len(comments) == 0 {
		return nil, apperr.NotFound("comment_not_found", "/courses")
	}
	comment := comments[0]

	if _, err := s.loadAuthorized(ctx, actor, comment.UserSubjectID, action); err != nil {
		return nil, err
	}
	if comment.UserID != actor.ID && actor.Role != types.RoleAdmin {
		return nil, apperr.NotAuthorized(string(action), "Comment")
	}
	return comment, nil
}

func (s *reviewService) validateScore(us *types.UserSubject, score float64) error {
	maxScore := 100.0
	if us.CourseSubject != nil && us.CourseSubject.Subject != nil {
		maxScore = float64(us.CourseSubject.Subject.MaxScore)
	}
	if score < 0 || score > maxScore {
		return apperr.Validation("invalid_score",
			fmt.Errorf("score %.1f outside 0..%.0f", score, maxScore))
	}
	return nil
}
