package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/traintrackhq/traintrack-backend/internal/logger"
	"github.com/traintrackhq/traintrack-backend/internal/services"
)

type CategoryHandler struct {
	log             *logger.Logger
	categoryService services.CategoryService
}

func NewCategoryHandler(log *logger.Logger, categoryService services.CategoryService) *CategoryHandler {
	handlerLog := log.With("handler", "CategoryHandler")
	return &CategoryHandler{log: handlerLog, categoryService: categoryService}
}

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), currentUser(c), req.Name)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, category)
}

func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context(), currentUser(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, categories)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	category, err := h.categoryService.Update(c.Request.Context(), currentUser(c), id, req.Name)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, category)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.categoryService.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "category deleted"})
}
