package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/traintrackhq/traintrack-backend/internal/logger"
	"github.com/traintrackhq/traintrack-backend/internal/services"
	"github.com/traintrackhq/traintrack-backend/internal/types"
)

type SubjectHandler struct {
	log            *logger.Logger
	subjectService services.SubjectService
}

func NewSubjectHandler(log *logger.Logger, subjectService services.SubjectService) *SubjectHandler {
	handlerLog := log.With("handler", "SubjectHandler")
	return &SubjectHandler{log: handlerLog, subjectService: subjectService}
}

type subjectRequest struct {
	Name              string      `json:"name" binding:"required"`
	MaxScore          int         `json:"max_score"`
	EstimatedTimeDays int         `json:"estimated_time_days"`
	CategoryIDs       []uuid.UUID `json:"category_ids"`
}

func (h *SubjectHandler) Create(c *gin.Context) {
	var req subjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	subject, err := h.subjectService.Create(c.Request.Context(), currentUser(c), &types.Subject{
		Name:              req.Name,
		MaxScore:          req.MaxScore,
		EstimatedTimeDays: req.EstimatedTimeDays,
	}, req.CategoryIDs)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, subject)
}

func (h *SubjectHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	subject, err := h.subjectService.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, subject)
}

func (h *SubjectHandler) List(c *gin.Context) {
	includeDeleted := c.Query("include_deleted") == "true"
	subjects, err := h.subjectService.List(c.Request.Context(), currentUser(c), includeDeleted)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, subjects)
}

func (h *SubjectHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req subjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	subject, err := h.subjectService.Update(c.Request.Context(), currentUser(c), &types.Subject{
		ID:                id,
		Name:              req.Name,
		MaxScore:          req.MaxScore,
		EstimatedTimeDays: req.EstimatedTimeDays,
	}, req.CategoryIDs)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, subject)
}

func (h *SubjectHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.subjectService.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "subject deleted"})
}

func (h *SubjectHandler) Purge(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.subjectService.Purge(c.Request.Context(), currentUser(c), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "subject purged"})
}

func (h *SubjectHandler) Restore(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.subjectService.Restore(c.Request.Context(), currentUser(c), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "subject restored"})
}
