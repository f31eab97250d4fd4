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

type DailyReportService interface {
	Create(ctx context.Context, actor *types.User, courseID uuid.UUID, content string, reportDate time.Time) (*types.DailyReport, error)
	ListMine(ctx context.Context, actor *types.User) ([]*types.DailyReport, error)
	ListForSupervisor(ctx context.Context, actor *types.User) ([]*types.DailyReport, error)
	Update(ctx context.Context, actor *types.User, id uuid.UUID, content string) (*types.DailyReport, error)
	Delete(ctx context.Context, actor *types.User, id uuid.UUID) error
}

type dailyReportService struct {
	db              *gorm.DB
	log             *logger.Logger
	ability         *ability.Ability
	dailyReportRepo repos.DailyReportRepo
	userCourseRepo  repos.UserCourseRepo
}

func NewDailyReportService(
	db *gorm.DB,
	baseLog *logger.Logger,
	ab *ability.Ability,
	dailyReportRepo repos.DailyReportRepo,
	userCourseRepo repos.UserCourseRepo,
) DailyReportService {
	serviceLog := baseLog.With("service", "DailyReportService")
	return &dailyReportService{
		db:              db,
		log:             serviceLog,
		ability:         ab,
		dailyReportRepo: dailyReportRepo,
		userCourseRepo:  userCourseRepo,
	}
}

// Create files a report against a course the actor is enrolled in.
func (s *dailyReportService) Create(ctx context.Context, actor *types.User, courseID uuid.UUID, content string, reportDate time.Time) (*types.DailyReport, error) {
	if actor == nil {
		return nil, apperr.NotAuthorized("create", "DailyReport")
	}
	if content == "" {
		return nil, apperr.Validation("report_content_required", fmt.Errorf("report content is required"))
	}

	uc, err := s.userCourseRepo.GetByUserAndCourse(ctx, nil, actor.ID, courseID)
	if err != nil {
		return nil, fmt.Errorf("load enrollment: %w", err)
	}
	if uc == nil {
		return nil, apperr.Validation("not_enrolled", fmt.Errorf("user %s is not enrolled in course %s", actor.ID, courseID))
	}

	if reportDate.IsZero() {
		reportDate = time.Now()
	}
	row := &types.DailyReport{
		ID:         uuid.New(),
		UserID:     actor.ID,
		CourseID:   courseID,
		Content:    content,
		ReportDate: reportDate,
	}
	if !s.ability.Can(actor, ability.ActionCreate, row) {
		return nil, apperr.NotAuthorized("create", "DailyReport")
	}
	if _, err := s.dailyReportRepo.Create(ctx, nil, []*types.DailyReport{row}); err != nil {
		return nil, fmt.Errorf("create daily report: %w", err)
	}
	return row, nil
}

func (s *dailyReportService) ListMine(ctx context.Context, actor *types.User) ([]*types.DailyReport, error) {
	if actor == nil {
		return nil, apperr.NotAuthorized("index", "DailyReport")
	}
	return s.dailyReportRepo.ListByUserID(ctx, nil, actor.ID)
}

// ListForSupervisor returns the reports filed in the actor's supervised
// courses; admins see every course's reports through the same path.
func (s *dailyReportService) ListForSupervisor(ctx context.Context, actor *types.User) ([]*types.DailyReport, error) {
	if actor == nil {
		return nil, apperr.NotAuthorized("index", "DailyReport")
	}

	var reports []*types.DailyReport
	var err error
	if actor.Role == types.RoleAdmin {
		reports, err = s.dailyReportRepo.List(ctx, nil)
	} else {
		reports, err = s.dailyReportRepo.ListByCourseIDs(ctx, nil, actor.SupervisedCourseIDs)
	}
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	visible := make([]*types.DailyReport, 0, len(reports))
	for _, report := range reports {
		if s.ability.Can(actor, ability.ActionShow, report) {
			visible = append(visible, report)
		}
	}
	return visible, nil
}

func (s *dailyReportService) Update(ctx context.Context, actor *types.User, id uuid.UUID, content string) (*types.DailyReport, error) {
	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.ability.Can(actor, ability.ActionUpdate, report) {
		return nil, apperr.NotAuthorized("update", "DailyReport")
	}
	if content == "" {
		return nil, apperr.Validation("report_content_required", fmt.Errorf("report content is required"))
	}

	report.Content = content
	if err := s.dailyReportRepo.Update(ctx, nil, report); err != nil {
		return nil, fmt.Errorf("update daily report: %w", err)
	}
	return report, nil
}

func (s *dailyReportService) Delete(ctx context.Context, actor *types.User, id uuid.UUID) error {
	report, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !s.ability.Can(actor, ability.ActionDestroy, report) {
		return apperr.NotAuthorized("destroy", "DailyReport")
	}
	return s.dailyReportRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{id})
}

func (s *dailyReportService) load(ctx context.Context, id uuid.UUID) (*types.DailyReport, error) {
	reports, err := s.dailyReportRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("load daily report: %w", err)
	}
	if len(reports) == 0 {
		return nil, apperr.NotFound("report_not_found", "/daily_reports")
	}
	return reports[0], nil
}
