package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/traintrackhq/traintrack-backend/internal/handlers"
	"github.com/traintrackhq/traintrack-backend/internal/middleware"
)

type RouterConfig struct {
	AllowedOrigins string

	AuthMiddleware *middleware.AuthMiddleware

	AuthHandler        *handlers.AuthHandler
	UserHandler        *handlers.UserHandler
	CourseHandler      *handlers.CourseHandler
	SubjectHandler     *handlers.SubjectHandler
	TaskHandler        *handlers.TaskHandler
	CategoryHandler    *handlers.CategoryHandler
	UserTaskHandler    *handlers.UserTaskHandler
	ReviewHandler      *handlers.ReviewHandler
	DailyReportHandler *handlers.DailyReportHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := []string{"http://localhost:3000"}
	if cfg.AllowedOrigins != "" {
		origins = strings.Split(cfg.AllowedOrigins, ",")
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)
	router.POST("/refresh", cfg.AuthHandler.Refresh)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Auth
	protected.POST("/logout", cfg.AuthHandler.Logout)

	// Users
	protected.GET("/user", cfg.UserHandler.GetMe)
	protected.GET("/users", cfg.UserHandler.List)
	protected.GET("/users/:id", cfg.UserHandler.Get)
	protected.PATCH("/users/:id", cfg.UserHandler.Update)
	protected.PATCH("/users/:id/activation", cfg.UserHandler.SetActivation)
	protected.POST("/users/bulk_deactivate", cfg.UserHandler.BulkDeactivate)

	// Courses
	protected.GET("/courses", cfg.CourseHandler.List)
	protected.POST("/courses", cfg.CourseHandler.Create)
	protected.GET("/courses/:id", cfg.CourseHandler.Get)
	protected.PATCH("/courses/:id", cfg.CourseHandler.Update)
	protected.DELETE("/courses/:id", cfg.CourseHandler.Delete)
	protected.GET("/courses/:id/members", cfg.CourseHandler.Members)
	protected.GET("/courses/:id/members/search", cfg.CourseHandler.SearchMembers)
	protected.POST("/courses/:id/members", cfg.CourseHandler.AddMember)
	protected.GET("/courses/:id/supervisors", cfg.CourseHandler.Supervisors)
	protected.POST("/courses/:id/supervisors", cfg.CourseHandler.AddSupervisor)
	protected.DELETE("/courses/:id/leave", cfg.CourseHandler.Leave)
	protected.GET("/courses/:id/subjects", cfg.CourseHandler.Subjects)
	protected.POST("/courses/:id/subjects", cfg.CourseHandler.AddSubject)
	protected.GET("/courses/:id/subjects/:subject_id", cfg.CourseHandler.ShowSubject)

	// Enrollments
	protected.GET("/my/courses", cfg.CourseHandler.MyCourses)
	protected.PATCH("/user_courses/:user_course_id/status", cfg.CourseHandler.UpdateUserCourseStatus)
	protected.DELETE("/user_courses/:user_course_id", cfg.CourseHandler.RemoveUserCourse)
	protected.DELETE("/course_subjects/:course_subject_id", cfg.CourseHandler.RemoveSubject)

	// Subject catalog
	protected.GET("/subjects", cfg.SubjectHandler.List)
	protected.POST("/subjects", cfg.SubjectHandler.Create)
	protected.GET("/subjects/:id", cfg.SubjectHandler.Get)
	protected.PATCH("/subjects/:id", cfg.SubjectHandler.Update)
	protected.DELETE("/subjects/:id", cfg.SubjectHandler.Delete)
	protected.POST("/subjects/:id/restore", cfg.SubjectHandler.Restore)
	protected.DELETE("/subjects/:id/purge", cfg.SubjectHandler.Purge)

	// Tasks
	protected.GET("/tasks", cfg.TaskHandler.List)
	protected.POST("/tasks", cfg.TaskHandler.Create)
	protected.PATCH("/tasks/:id", cfg.TaskHandler.Update)
	protected.DELETE("/tasks/:id", cfg.TaskHandler.Delete)

	// Categories
	protected.GET("/categories", cfg.CategoryHandler.List)
	protected.POST("/categories", cfg.CategoryHandler.Create)
	protected.PATCH("/categories/:id", cfg.CategoryHandler.Update)
	protected.DELETE("/categories/:id", cfg.CategoryHandler.Delete)

	// Trainee task updates
	protected.PATCH("/user_subjects/:id/tasks/:task_id/status", cfg.UserTaskHandler.UpdateStatus)
	protected.PATCH("/user_subjects/:id/tasks/:task_id/spent_time", cfg.UserTaskHandler.UpdateSpentTime)
	protected.POST("/user_subjects/:id/tasks/:task_id/document", cfg.UserTaskHandler.UpdateDocument)
	protected.DELETE("/user_subjects/:id/tasks/:task_id/documents/:document_id", cfg.UserTaskHandler.DestroyDocument)

	// Supervisor review
	protected.PATCH("/user_subjects/:id/score", cfg.ReviewHandler.UpdateScore)
	protected.POST("/user_subjects/:id/finish", cfg.ReviewHandler.Finish)
	protected.POST("/user_subjects/:id/comments", cfg.ReviewHandler.CreateComment)
	protected.PATCH("/comments/:comment_id", cfg.ReviewHandler.UpdateComment)
	protected.DELETE("/comments/:comment_id", cfg.ReviewHandler.DestroyComment)

	// Daily reports
	protected.GET("/daily_reports", cfg.DailyReportHandler.ListMine)
	protected.GET("/daily_reports/supervised", cfg.DailyReportHandler.ListSupervised)
	protected.POST("/daily_reports", cfg.DailyReportHandler.Create)
	protected.PATCH("/daily_reports/:id", cfg.DailyReportHandler.Update)
	protected.DELETE("/daily_reports/:id", cfg.DailyReportHandler.Delete)

	return router
}
