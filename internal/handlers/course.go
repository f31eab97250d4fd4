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

type CourseHandler struct {
	log               *logger.Logger
	courseService     services.CourseService
	enrollmentService services.EnrollmentService
}

func NewCourseHandler(log *logger.Logger, courseService services.CourseService, enrollmentService services.EnrollmentService) *CourseHandler {
	handlerLog := log.With("handler", "CourseHandler")
	return &CourseHandler{log: handlerLog, courseService: courseService, enrollmentService: enrollmentService}
}

type courseRequest struct {
	Name        string             `json:"name" binding:"required"`
	Description string             `json:"description"`
	Link        string             `json:"link"`
	StartDate   *time.Time         `json:"start_date"`
	FinishDate  *time.Time         `json:"finish_date"`
	Status      types.CourseStatus `json:"status"`
}

func (h *CourseHandler) Create(c *gin.Context) {
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), currentUser(c), &types.Course{
		Name:        req.Name,
		Description: req.Description,
		Link:        req.Link,
		StartDate:   req.StartDate,
		FinishDate:  req.FinishDate,
		Status:      req.Status,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, course)
}

func (h *CourseHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	course, err := h.courseService.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, course)
}

func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courseService.List(c.Request.Context(), currentUser(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, courses)
}

func (h *CourseHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), currentUser(c), &types.Course{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Link:        req.Link,
		StartDate:   req.StartDate,
		FinishDate:  req.FinishDate,
		Status:      req.Status,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, course)
}

func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.courseService.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "course deleted"})
}

func (h *CourseHandler) Members(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	members, err := h.courseService.Members(c.Request.Context(), currentUser(c), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, members)
}

func (h *CourseHandler) SearchMembers(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	members, err := h.courseService.SearchMembers(c.Request.Context(), currentUser(c), id, c.Query("q"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, members)
}

func (h *CourseHandler) Supervisors(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	supervisors, err := h.courseService.Supervisors(c.Request.Context(), currentUser(c), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, supervisors)
}

type memberRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

func (h *CourseHandler) AddMember(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	uc, err := h.enrollmentService.Enroll(c.Request.Context(), currentUser(c), req.UserID, id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, uc)
}

func (h *CourseHandler) AddSupervisor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := h.courseService.AddSupervisor(c.Request.Context(), currentUser(c), id, req.UserID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "supervisor added"})
}

func (h *CourseHandler) Leave(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.courseService.Leave(c.Request.Context(), currentUser(c), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "left course"})
}

func (h *CourseHandler) Subjects(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	subjects, err := h.courseService.Subjects(c.Request.Context(), currentUser(c), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, subjects)
}

type addSubjectRequest struct {
	SubjectID  uuid.UUID  `json:"subject_id" binding:"required"`
	Position   int        `json:"position"`
	StartDate  *time.Time `json:"start_date"`
	FinishDate *time.Time `json:"finish_date"`
}

func (h *CourseHandler) AddSubject(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req addSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	cs, err := h.courseService.AddSubject(c.Request.Context(), currentUser(c), &types.CourseSubject{
		CourseID:   id,
		SubjectID:  req.SubjectID,
		Position:   req.Position,
		StartDate:  req.StartDate,
		FinishDate: req.FinishDate,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, cs)
}

func (h *CourseHandler) RemoveSubject(c *gin.Context) {
	csID, ok := parseIDParam(c, "course_subject_id")
	if !ok {
		return
	}
	if err := h.courseService.RemoveSubject(c.Request.Context(), currentUser(c), csID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "subject removed from course"})
}

// ShowSubject is the subject page inside a course: catalog data plus the
// caller's own progress rows, created on first open.
func (h *CourseHandler) ShowSubject(c *gin.Context) {
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	subjectID, ok := parseIDParam(c, "subject_id")
	if !ok {
		return
	}

	page, err := h.enrollmentService.ShowSubject(c.Request.Context(), currentUser(c), courseID, subjectID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, page)
}

func (h *CourseHandler) MyCourses(c *gin.Context) {
	enrollments, err := h.enrollmentService.MyCourses(c.Request.Context(), currentUser(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, enrollments)
}

type userCourseStatusRequest struct {
	Status types.UserCourseStatus `json:"status" binding:"required"`
}

func (h *CourseHandler) UpdateUserCourseStatus(c *gin.Context) {
	ucID, ok := parseIDParam(c, "user_course_id")
	if !ok {
		return
	}
	var req userCourseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := h.enrollmentService.UpdateUserCourseStatus(c.Request.Context(), currentUser(c), ucID, req.Status); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "enrollment status updated"})
}

func (h *CourseHandler) RemoveUserCourse(c *gin.Context) {
	ucID, ok := parseIDParam(c, "user_course_id")
	if !ok {
		return
	}
	if err := h.enrollmentService.RemoveUserCourse(c.Request.Context(), currentUser(c), ucID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "enrollment removed"})
}
