package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/traintrackhq/traintrack-backend/internal/logger"
	"github.com/traintrackhq/traintrack-backend/internal/services"
	"github.com/traintrackhq/traintrack-backend/internal/types"
)

type TaskHandler struct {
	log         *logger.Logger
	taskService services.TaskService
}

func NewTaskHandler(log *logger.Logger, taskService services.TaskService) *TaskHandler {
	handlerLog := log.With("handler", "TaskHandler")
	return &TaskHandler{log: handlerLog, taskService: taskService}
}

type createTaskRequest struct {
	Name         string             `json:"name" binding:"required"`
	TaskableType types.TaskableType `json:"taskable_type" binding:"required"`
	TaskableID   uuid.UUID          `json:"taskable_id" binding:"required"`
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), currentUser(c), &types.Task{
		Name:         req.Name,
		TaskableType: req.TaskableType,
		TaskableID:   req.TaskableID,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, task)
}

func (h *TaskHandler) List(c *gin.Context) {
	taskableType := types.TaskableType(c.Query("taskable_type"))
	taskableID, err := uuid.Parse(c.Query("taskable_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	tasks, err := h.taskService.ListForTaskable(c.Request.Context(), currentUser(c), taskableType, taskableID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, tasks)
}

type updateTaskRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), currentUser(c), &types.Task{ID: id, Name: req.Name})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, task)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.taskService.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "task deleted"})
}
