package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/traintrackhq/traintrack-backend/internal/logger"
	"github.com/traintrackhq/traintrack-backend/internal/types"
)

type UserCourseRepo interface {
	GetOrCreate(ctx context.Context, tx *gorm.DB, row *types.UserCourse) (*types.UserCourse, error)
	GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) (*types.UserCourse, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserCourse, error)
	ListByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.UserCourse, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status types.UserCourseStatus) error
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type userCourseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserCourseRepo(db *gorm.DB, baseLog *logger.Logger) UserCourseRepo {
	repoLog := baseLog.With("repo", "UserCourseRepo")
	return &userCourseRepo{db: db, log: repoLog}
}

// GetOrCreate inserts the enrollment unless the unique (user_id, course_id)
// key already holds a row, then fetches whichever row won. Safe under
// concurrent duplicate enrollment attempts.
func (r *userCourseRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, row *types.UserCourse) (*types.UserCourse, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil, nil
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoNothing: true,
		}).
		Create(row).Error; err != nil {
		return nil, err
	}

	var result types.UserCourse
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", row.UserID, row.CourseID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *userCourseRepo) GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) (*types.UserCourse, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.UserCourse
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *userCourseRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserCourse, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UserCourse
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userCourseRepo) ListByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.UserCourse, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UserCourse
	if courseID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("User").
		Where("course_id = ?", courseID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userCourseRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status types.UserCourseStatus) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.UserCourse{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *userCourseRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.UserCourse{}).Error
}
