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

type CategoryService interface {
	Create(ctx context.Context, actor *types.User, name string) (*types.Category, error)
	List(ctx context.Context, actor *types.User) ([]*types.Category, error)
	Update(ctx context.Context, actor *types.User, id uuid.UUID, name string) (*types.Category, error)
	Delete(ctx context.Context, actor *types.User, id uuid.UUID) error
}

type categoryService struct {
	db           *gorm.DB
	log          *logger.Logger
	ability      *ability.Ability
	categoryRepo repos.CategoryRepo
}

func NewCategoryService(db *gorm.DB, baseLog *logger.Logger, ab *ability.Ability, categoryRepo repos.CategoryRepo) CategoryService {
	serviceLog := baseLog.With("service", "CategoryService")
	return &categoryService{db: db, log: serviceLog, ability: ab, categoryRepo: categoryRepo}
}

func (s *categoryService) Create(ctx context.Context, actor *types.User, name string) (*types.Category, error) {
	if !s.ability.Can(actor, ability.ActionCreate, &types.Category{}) {
		return nil, apperr.NotAuthorized("create", "Category")
	}
	if name == "" {
		return nil, apperr.Validation("category_name_required", fmt.Errorf("category name is required"))
	}

	row := &types.Category{ID: uuid.New(), Name: name}
	if _, err := s.categoryRepo.Create(ctx, nil, []*types.Category{row}); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return row, nil
}

func (s *categoryService) List(ctx context.Context, actor *types.User) ([]*types.Category, error) {
	if actor == nil {
		return nil, apperr.NotAuthorized("index", "Category")
	}
	return s.categoryRepo.List(ctx, nil)
}

func (s *categoryService) Update(ctx context.Context, actor *types.User, id uuid.UUID, name string) (*types.Category, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.ability.Can(actor, ability.ActionUpdate, row) {
		return nil, apperr.NotAuthorized("update", "Category")
	}
	if name == "" {
		return nil, apperr.Validation("category_name_required", fmt.Errorf("category name is required"))
	}

	row.Name = name
	if err := s.categoryRepo.Update(ctx, nil, row); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return row, nil
}

func (s *categoryService) Delete(ctx context.Context, actor *types.User, id uuid.UUID) error {
	row, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !s.ability.Can(actor, ability.ActionDestroy, row) {
		return apperr.NotAuthorized("destroy", "Category")
	}
	return s.categoryRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{id})
}

func (s *categoryService) load(ctx context.Context, id uuid.UUID) (*types.Category, error) {
	rows, err := s.categoryRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("category_not_found", "/categories")
	}
	return rows[0], nil
}
