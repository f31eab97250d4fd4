package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/traintrackhq/traintrack-backend/internal/logger"
	"github.com/traintrackhq/traintrack-backend/internal/services"
	"github.com/traintrackhq/traintrack-backend/internal/types"
)

type UserHandler struct {
	log         *logger.Logger
	userService services.UserService
}

func NewUserHandler(log *logger.Logger, userService services.UserService) *UserHandler {
	handlerLog := log.With("handler", "UserHandler")
	return &UserHandler{log: handlerLog, userService: userService}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	actor := currentUser(c)
	if actor == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	RespondOK(c, actor)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, user)
}

func (h *UserHandler) List(c *gin.Context) {
	role := types.Role(c.Query("role"))
	users, err := h.userService.List(c.Request.Context(), currentUser(c), role)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, users)
}

type updateUserRequest struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Birthday *time.Time `json:"birthday"`
	Gender   string     `json:"gender"`
	Role     types.Role `json:"role"`
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	user, err := h.userService.Update(c.Request.Context(), currentUser(c), &types.User{
		ID:       id,
		Name:     req.Name,
		Email:    req.Email,
		Birthday: req.Birthday,
		Gender:   req.Gender,
		Role:     req.Role,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, user)
}

type activationRequest struct {
	Active bool `json:"active"`
}

func (h *UserHandler) SetActivation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req activationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := h.userService.SetActivation(c.Request.Context(), currentUser(c), id, req.Active); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "activation updated"})
}

type bulkDeactivateRequest struct {
	UserIDs []uuid.UUID `json:"user_ids" binding:"required"`
}

func (h *UserHandler) BulkDeactivate(c *gin.Context) {
	var req bulkDeactivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := h.userService.BulkDeactivate(c.Request.Context(), currentUser(c), req.UserIDs); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "users deactivated"})
}
