package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/traintrackhq/traintrack-backend/internal/logger"
	"github.com/traintrackhq/traintrack-backend/internal/services"
)

type ReviewHandler struct {
	log           *logger.Logger
	reviewService services.ReviewService
}

func NewReviewHandler(log *logger.Logger, reviewService services.ReviewService) *ReviewHandler {
	handlerLog := log.With("handler", "ReviewHandler")
	return &ReviewHandler{log: handlerLog, reviewService: reviewService}
}

type scoreRequest struct {
	Score *float64 `json:"score" binding:"required"`
}

func (h *ReviewHandler) UpdateScore(c *gin.Context) {
	usID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	us, err := h.reviewService.UpdateScore(c.Request.Context(), currentUser(c), usID, *req.Score)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, us)
}

func (h *ReviewHandler) Finish(c *gin.Context) {
	usID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	us, err := h.reviewService.Finish(c.Request.Context(), currentUser(c), usID, *req.Score)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, us)
}

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *ReviewHandler) CreateComment(c *gin.Context) {
	usID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	comment, err := h.reviewService.CreateComment(c.Request.Context(), currentUser(c), usID, req.Content)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, comment)
}

func (h *ReviewHandler) UpdateComment(c *gin.Context) {
	commentID, ok := parseIDParam(c, "comment_id")
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	comment, err := h.reviewService.UpdateComment(c.Request.Context(), currentUser(c), commentID, req.Content)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, comment)
}

func (h *ReviewHandler) DestroyComment(c *gin.Context) {
	commentID, ok := parseIDParam(c, "comment_id")
	if !ok {
		return
	}
	if err := h.reviewService.DestroyComment(c.Request.Context(), currentUser(c), commentID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "comment deleted"})
}
