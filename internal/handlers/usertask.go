package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/traintrackhq/traintrack-backend/internal/logger"
	"github.com/traintrackhq/traintrack-backend/internal/services"
)

// UserTaskHandler exposes the trainee's task update surface. Routes are
// nested under the owning user subject:
//
//	PATCH  /user_subjects/:id/tasks/:task_id/status
//	PATCH  /user_subjects/:id/tasks/:task_id/spent_time
//	POST   /user_subjects/:id/tasks/:task_id/document
//	DELETE /user_subjects/:id/tasks/:task_id/documents/:document_id
type UserTaskHandler struct {
	log             *logger.Logger
	userTaskService services.UserTaskService
}

func NewUserTaskHandler(log *logger.Logger, userTaskService services.UserTaskService) *UserTaskHandler {
	handlerLog := log.With("handler", "UserTaskHandler")
	return &UserTaskHandler{log: handlerLog, userTaskService: userTaskService}
}

func respondTaskResult(c *gin.Context, result *services.TaskUpdateResult) {
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}

type statusUpdateRequest struct {
	Status *int `json:"status"`
}

func (h *UserTaskHandler) UpdateStatus(c *gin.Context) {
	usID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}
	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	result, err := h.userTaskService.UpdateStatus(c.Request.Context(), currentUser(c), usID, taskID, req.Status)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	respondTaskResult(c, result)
}

type spentTimeUpdateRequest struct {
	SpentTime *int `json:"spent_time"`
}

func (h *UserTaskHandler) UpdateSpentTime(c *gin.Context) {
	usID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}
	var req spentTimeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	result, err := h.userTaskService.UpdateSpentTime(c.Request.Context(), currentUser(c), usID, taskID, req.SpentTime)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	respondTaskResult(c, result)
}

// UpdateDocument takes a multipart form with a single "document" file.
func (h *UserTaskHandler) UpdateDocument(c *gin.Context) {
	usID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	defer file.Close()

	upload := &services.DocumentUpload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Content:     file,
	}
	result, err := h.userTaskService.UpdateDocument(c.Request.Context(), currentUser(c), usID, taskID, upload)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	respondTaskResult(c, result)
}

func (h *UserTaskHandler) DestroyDocument(c *gin.Context) {
	usID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}
	documentID, ok := parseIDParam(c, "document_id")
	if !ok {
		return
	}

	result, err := h.userTaskService.DestroyDocument(c.Request.Context(), currentUser(c), usID, taskID, documentID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	respondTaskResult(c, result)
}
