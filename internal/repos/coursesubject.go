package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/traintrackhq/traintrack-backend/internal/logger"
	"github.com/traintrackhq/traintrack-backend/internal/types"
)

type CourseSubjectRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.CourseSubject) ([]*types.CourseSubject, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.CourseSubject, error)
	GetOrCreate(ctx context.Context, tx *gorm.DB, row *types.CourseSubject) (*types.CourseSubject, error)
	GetByCourseAndSubject(ctx context.Context, tx *gorm.DB, courseID, subjectID uuid.UUID) (*types.CourseSubject, error)
	ListByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.CourseSubject, error)
	Update(ctx context.Context, tx *gorm.DB, row *types.CourseSubject) error
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type courseSubjectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseSubjectRepo(db *gorm.DB, baseLog *logger.Logger) CourseSubjectRepo {
	repoLog := baseLog.With("repo", "CourseSubjectRepo")
	return &courseSubjectRepo{db: db, log: repoLog}
}

func (r *courseSubjectRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.CourseSubject) ([]*types.CourseSubject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.CourseSubject{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *courseSubjectRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.CourseSubject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CourseSubject
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Subject").
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetOrCreate inserts the row unless the (course_id, subject_id) pair already
// exists, then returns whichever row holds the pair. Concurrent callers race
// on the unique key, not on a read-then-write gap.
func (r *courseSubjectRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, row *types.CourseSubject) (*types.CourseSubject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_id"}, {Name: "subject_id"}},
			DoNothing: true,
		}).
		Create(row).Error; err != nil {
		return nil, err
	}

	var result types.CourseSubject
	if err := transaction.WithContext(ctx).
		Where("course_id = ? AND subject_id = ?", row.CourseID, row.SubjectID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *courseSubjectRepo) GetByCourseAndSubject(ctx context.Context, tx *gorm.DB, courseID, subjectID uuid.UUID) (*types.CourseSubject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.CourseSubject
	err := transaction.WithContext(ctx).
		Where("course_id = ? AND subject_id = ?", courseID, subjectID).
		First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *courseSubjectRepo) ListByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.CourseSubject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CourseSubject
	if courseID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Subject").
		Where("course_id = ?", courseID).
		Order("position").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseSubjectRepo) Update(ctx context.Context, tx *gorm.DB, row *types.CourseSubject) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	return transaction.WithContext(ctx).Save(row).Error
}

func (r *courseSubjectRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.CourseSubject{}).Error
}
