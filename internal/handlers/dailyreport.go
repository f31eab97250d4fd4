package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/traintrackhq/traintrack-backend/internal/logger"
	"github.com/traintrackhq/traintrack-backend/internal/services"
)

type DailyReportHandler struct {
	log                *logger.Logger
	dailyReportService services.DailyReportService
}

func NewDailyReportHandler(log *logger.Logger, dailyReportService services.DailyReportService) *DailyReportHandler {
	handlerLog := log.With("handler", "DailyReportHandler")
	return &DailyReportHandler{log: handlerLog, dailyReportService: dailyReportService}
}

type createReportRequest struct {
	CourseID   uuid.UUID  `json:"course_id" binding:"required"`
	Content    string     `json:"content" binding:"required"`
	ReportDate *time.Time `json:"report_date"`
}

func (h *DailyReportHandler) Create(c *gin.Context) {
	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	reportDate := time.Time{}
	if req.ReportDate != nil {
		reportDate = *req.ReportDate
	}
	report, err := h.dailyReportService.Create(c.Request.Context(), currentUser(c), req.CourseID, req.Content, reportDate)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, report)
}

func (h *DailyReportHandler) ListMine(c *gin.Context) {
	reports, err := h.dailyReportService.ListMine(c.Request.Context(), currentUser(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, reports)
}

func (h *DailyReportHandler) ListSupervised(c *gin.Context) {
	reports, err := h.dailyReportService.ListForSupervisor(c.Request.Context(), currentUser(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, reports)
}

type updateReportRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *DailyReportHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	report, err := h.dailyReportService.Update(c.Request.Context(), currentUser(c), id, req.Content)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, report)
}

func (h *DailyReportHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.dailyReportService.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "report deleted"})
}
