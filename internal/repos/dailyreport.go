package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/traintrackhq/traintrack-backend/internal/logger"
	"github.com/traintrackhq/traintrack-backend/internal/types"
)

type DailyReportRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.DailyReport) ([]*types.DailyReport, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.DailyReport, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.DailyReport, error)
	ListByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.DailyReport, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.DailyReport, error)
	Update(ctx context.Context, tx *gorm.DB, row *types.DailyReport) error
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type dailyReportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDailyReportRepo(db *gorm.DB, baseLog *logger.Logger) DailyReportRepo {
	repoLog := baseLog.With("repo", "DailyReportRepo")
	return &dailyReportRepo{db: db, log: repoLog}
}

func (r *dailyReportRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.DailyReport) ([]*types.DailyReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.DailyReport{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *dailyReportRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.DailyReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.DailyReport
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *dailyReportRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.DailyReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.DailyReport
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("report_date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *dailyReportRepo) ListByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.DailyReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.DailyReport
	if len(courseIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("User").
		Where("course_id IN ?", courseIDs).
		Order("report_date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *dailyReportRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.DailyReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.DailyReport
	if err := transaction.WithContext(ctx).
		Preload("User").
		Order("report_date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *dailyReportRepo) Update(ctx context.Context, tx *gorm.DB, row *types.DailyReport) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	return transaction.WithContext(ctx).Save(row).Error
}

func (r *dailyReportRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.DailyReport{}).Error
}
