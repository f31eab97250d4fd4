package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/traintrackhq/traintrack-backend/internal/logger"
	"github.com/traintrackhq/traintrack-backend/internal/types"
)

// SubjectRepo keeps the soft-delete variants explicit: the default methods
// exclude deleted rows, the *IncludingDeleted methods do not, and
// FullDeleteByIDs is the only physical delete path.
type SubjectRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Subject) ([]*types.Subject, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Subject, error)
	GetByIDsIncludingDeleted(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Subject, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Subject, error)
	ListIncludingDeleted(ctx context.Context, tx *gorm.DB) ([]*types.Subject, error)
	Update(ctx context.Context, tx *gorm.DB, row *types.Subject) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	RestoreByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	GetEnrolledUserIDs(ctx context.Context, tx *gorm.DB, subjectID uuid.UUID) ([]uuid.UUID, error)
}

type subjectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubjectRepo(db *gorm.DB, baseLog *logger.Logger) SubjectRepo {
	repoLog := baseLog.With("repo", "SubjectRepo")
	return &subjectRepo{db: db, log: repoLog}
}

func (r *subjectRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Subject) ([]*types.Subject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Subject{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *subjectRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Subject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Subject
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Categories").
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *subjectRepo) GetByIDsIncludingDeleted(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Subject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Subject
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Unscoped().
		Preload("Categories").
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *subjectRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Subject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Subject
	if err := transaction.WithContext(ctx).
		Preload("Categories").
		Order("name").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *subjectRepo) ListIncludingDeleted(ctx context.Context, tx *gorm.DB) ([]*types.Subject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Subject
	if err := transaction.WithContext(ctx).
		Unscoped().
		Preload("Categories").
		Order("name").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *subjectRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Subject) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	return transaction.WithContext(ctx).Save(row).Error
}

func (r *subjectRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.Subject{}).Error
}

func (r *subjectRepo) RestoreByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Unscoped().
		Model(&types.Subject{}).
		Where("id IN ?", ids).
		Update("deleted_at", nil).Error
}

func (r *subjectRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Unscoped().
		Where("id IN ?", ids).
		Delete(&types.Subject{}).Error
}

// GetEnrolledUserIDs returns the users enrolled in any course offering this
// subject, for the trainee read scope check.
func (r *subjectRepo) GetEnrolledUserIDs(ctx context.Context, tx *gorm.DB, subjectID uuid.UUID) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []uuid.UUID
	if subjectID == uuid.Nil {
		return ids, nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.UserCourse{}).
		Joins("JOIN course_subject ON course_subject.course_id = user_course.course_id").
		Where("course_subject.subject_id = ?", subjectID).
		Pluck("user_course.user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
