package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/traintrackhq/traintrack-backend/internal/logger"
	"github.com/traintrackhq/traintrack-backend/internal/types"
)

type UserTaskRepo interface {
	GetOrCreate(ctx context.Context, tx *gorm.DB, row *types.UserTask) (*types.UserTask, error)
	CreateMissing(ctx context.Context, tx *gorm.DB, rows []*types.UserTask) error
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.UserTask, error)
	GetByUserAndTask(ctx context.Context, tx *gorm.DB, userID, taskID uuid.UUID) (*types.UserTask, error)
	ListByUserSubjectID(ctx context.Context, tx *gorm.DB, userSubjectID uuid.UUID) ([]*types.UserTask, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status types.UserTaskStatus) error
	UpdateSpentTime(ctx context.Context, tx *gorm.DB, id uuid.UUID, spentTime int) error
}

type userTaskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTaskRepo(db *gorm.DB, baseLog *logger.Logger) UserTaskRepo {
	repoLog := baseLog.With("repo", "UserTaskRepo")
	return &userTaskRepo{db: db, log: repoLog}
}

// GetOrCreate inserts unless the unique (user_id, task_id) key already holds
// a row, then fetches whichever row won the race.
func (r *userTaskRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, row *types.UserTask) (*types.UserTask, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil, nil
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "task_id"}},
			DoNothing: true,
		}).
		Create(row).Error; err != nil {
		return nil, err
	}

	var result types.UserTask
	if err := transaction.WithContext(ctx).
		Preload("Documents").
		Where("user_id = ? AND task_id = ?", row.UserID, row.TaskID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateMissing is the gap-fill write: rows whose (user_id, task_id) key
// already exists are skipped, so re-running with existing rows is a no-op.
func (r *userTaskRepo) CreateMissing(ctx context.Context, tx *gorm.DB, rows []*types.UserTask) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "task_id"}},
			DoNothing: true,
		}).
		Create(&rows).Error
}

func (r *userTaskRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.UserTask, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UserTask
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Documents").
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userTaskRepo) GetByUserAndTask(ctx context.Context, tx *gorm.DB, userID, taskID uuid.UUID) (*types.UserTask, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.UserTask
	err := transaction.WithContext(ctx).
		Preload("Documents").
		Where("user_id = ? AND task_id = ?", userID, taskID).
		First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *userTaskRepo) ListByUserSubjectID(ctx context.Context, tx *gorm.DB, userSubjectID uuid.UUID) ([]*types.UserTask, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UserTask
	if userSubjectID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Documents").
		Where("user_subject_id = ?", userSubjectID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userTaskRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status types.UserTaskStatus) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.UserTask{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *userTaskRepo) UpdateSpentTime(ctx context.Context, tx *gorm.DB, id uuid.UUID, spentTime int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.UserTask{}).
		Where("id = ?", id).
		Update("spent_time", spentTime).Error
}
