package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/traintrackhq/traintrack-backend/internal/logger"
	"github.com/traintrackhq/traintrack-backend/internal/types"
)

type UserSubjectRepo interface {
	GetOrCreate(ctx context.Context, tx *gorm.DB, row *types.UserSubject) (*types.UserSubject, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.UserSubject, error)
	GetByUserAndCourseSubject(ctx context.Context, tx *gorm.DB, userID, courseSubjectID uuid.UUID) (*types.UserSubject, error)
	ListByUserCourseID(ctx context.Context, tx *gorm.DB, userCourseID uuid.UUID) ([]*types.UserSubject, error)
	MarkInProgress(ctx context.Context, tx *gorm.DB, id uuid.UUID, startedAt time.Time) (bool, error)
	Complete(ctx context.Context, tx *gorm.DB, id uuid.UUID, score float64, completedAt time.Time) (bool, error)
	UpdateScore(ctx context.Context, tx *gorm.DB, id uuid.UUID, score float64) error
}

type userSubjectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserSubjectRepo(db *gorm.DB, baseLog *logger.Logger) UserSubjectRepo {
	repoLog := baseLog.With("repo", "UserSubjectRepo")
	return &userSubjectRepo{db: db, log: repoLog}
}

// GetOrCreate inserts unless the unique (user_id, course_subject_id) key
// already holds a row, then fetches whichever row won the race. Never an
// exists-check followed by an insert.
func (r *userSubjectRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, row *types.UserSubject) (*types.UserSubject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil, nil
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_subject_id"}},
			DoNothing: true,
		}).
		Create(row).Error; err != nil {
		return nil, err
	}

	var result types.UserSubject
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND course_subject_id = ?", row.UserID, row.CourseSubjectID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *userSubjectRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.UserSubject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UserSubject
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("CourseSubject").
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userSubjectRepo) GetByUserAndCourseSubject(ctx context.Context, tx *gorm.DB, userID, courseSubjectID uuid.UUID) (*types.UserSubject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.UserSubject
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND course_subject_id = ?", userID, courseSubjectID).
		First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *userSubjectRepo) ListByUserCourseID(ctx context.Context, tx *gorm.DB, userCourseID uuid.UUID) ([]*types.UserSubject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UserSubject
	if userCourseID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("CourseSubject").
		Where("user_course_id = ?", userCourseID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// MarkInProgress is a single conditional update guarded on status so the
// not_started -> in_progress transition applies at most once under races.
// started_at keeps its first value if a previous write already set it.
func (r *userSubjectRepo) MarkInProgress(ctx context.Context, tx *gorm.DB, id uuid.UUID, startedAt time.Time) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.UserSubject{}).
		Where("id = ? AND status = ?", id, types.UserSubjectNotStarted).
		Updates(map[string]interface{}{
			"status":     types.UserSubjectInProgress,
			"started_at": gorm.Expr("COALESCE(started_at, ?)", startedAt),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Complete transitions in_progress -> completed, recording the score. The
// guard keeps an already-completed row untouched.
func (r *userSubjectRepo) Complete(ctx context.Context, tx *gorm.DB, id uuid.UUID, score float64, completedAt time.Time) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.UserSubject{}).
		Where("id = ? AND status = ?", id, types.UserSubjectInProgress).
		Updates(map[string]interface{}{
			"status":       types.UserSubjectCompleted,
			"score":        score,
			"completed_at": completedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *userSubjectRepo) UpdateScore(ctx context.Context, tx *gorm.DB, id uuid.UUID, score float64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.UserSubject{}).
		Where("id = ?", id).
		Update("score", score).Error
}
