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
	"github.com/traintrackhq/traintrack-backend/internal/utils"
)

type UserService interface {
	Get(ctx context.Context, actor *types.User, id uuid.UUID) (*types.User, error)
	List(ctx context.Context, actor *types.User, role types.Role) ([]*types.User, error)
	Update(ctx context.Context, actor *types.User, user *types.User) (*types.User, error)
	SetActivation(ctx context.Context, actor *types.User, id uuid.UUID, active bool) error
	BulkDeactivate(ctx context.Context, actor *types.User, ids []uuid.UUID) error
}

type userService struct {
	db            *gorm.DB
	log           *logger.Logger
	ability       *ability.Ability
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
}

func NewUserService(
	db *gorm.DB,
	baseLog *logger.Logger,
	ab *ability.Ability,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
) UserService {
	serviceLog := baseLog.With("service", "UserService")
	return &userService{
		db:            db,
		log:           serviceLog,
		ability:       ab,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
	}
}

func (s *userService) Get(ctx context.Context, actor *types.User, id uuid.UUID) (*types.User, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	// anyone may look at their own profile
	if actor != nil && actor.ID == id {
		return user, nil
	}
	if !s.ability.Can(actor, ability.ActionShow, user) {
		return nil, apperr.NotAuthorized("show", "User")
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, actor *types.User, role types.Role) ([]*types.User, error) {
	if !s.ability.Can(actor, ability.ActionIndex, &types.User{}) {
		return nil, apperr.NotAuthorized("index", "User")
	}
	return s.userRepo.List(ctx, nil, role)
}

// Update rewrites profile fields. Email and password stay under the auth
// flow; role is only writable by an admin and silently ignored for everyone
// else, so a supervisor can never promote an account.
func (s *userService) Update(ctx context.Context, actor *types.User, user *types.User) (*types.User, error) {
	if user == nil {
		return nil, apperr.Validation("user_required", fmt.Errorf("no user given"))
	}
	existing, err := s.load(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	selfEdit := actor != nil && actor.ID == user.ID
	if !selfEdit && !s.ability.Can(actor, ability.ActionUpdate, existing) {
		return nil, apperr.NotAuthorized("update", "User")
	}

	if user.Name != "" {
		existing.Name = user.Name
	}
	existing.Birthday = user.Birthday
	existing.Gender = user.Gender
	if !selfEdit && user.Role != "" && actor.Role == types.RoleAdmin {
		existing.Role = user.Role
	}
	if user.Email != "" {
		email := utils.NormalizeEmail(user.Email)
		if email != existing.Email {
			taken, err := s.userRepo.EmailExists(ctx, nil, email)
			if err != nil {
				return nil, fmt.Errorf("check email: %w", err)
			}
			if taken {
				return nil, apperr.Validation("email_taken", fmt.Errorf("email is already in use"))
			}
			existing.Email = email
		}
	}
	if err := s.userRepo.Update(ctx, nil, existing); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return existing, nil
}

// SetActivation flips one account. Deactivation also revokes the user's
// tokens so a disabled account cannot keep an existing session alive.
func (s *userService) SetActivation(ctx context.Context, actor *types.User, id uuid.UUID, active bool) error {
	user, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !s.ability.Can(actor, ability.ActionUpdateStatus, user) {
		return apperr.NotAuthorized("update_status", "User")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var activatedAt *time.Time
		if active {
			now := time.Now()
			activatedAt = &now
		}
		if err := s.userRepo.SetActivation(ctx, tx, id, activatedAt); err != nil {
			return err
		}
		if !active {
			return s.userTokenRepo.FullDeleteByUserIDs(ctx, tx, []uuid.UUID{id})
		}
		return nil
	})
}

// BulkDeactivate disables a batch of accounts in one transaction: either
// every account in the list is deactivated or none are.
func (s *userService) BulkDeactivate(ctx context.Context, actor *types.User, ids []uuid.UUID) error {
	if !s.ability.Can(actor, ability.ActionBulkDeactivate, &types.User{}) {
		return apperr.NotAuthorized("bulk_deactivate", "User")
	}
	if len(ids) == 0 {
		return nil
	}

	users, err := s.userRepo.GetByIDs(ctx, nil, ids)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	if len(users) != len(ids) {
		return apperr.NotFound("user_not_found", "/users")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			if err := s.userRepo.SetActivation(ctx, tx, id, nil); err != nil {
				return err
			}
		}
		return s.userTokenRepo.FullDeleteByUserIDs(ctx, tx, ids)
	})
}

func (s *userService) load(ctx context.Context, id uuid.UUID) (*types.User, error) {
	users, err := s.userRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return nil, apperr.NotFound("user_not_found", "/users")
	}
	return users[0], nil
}
