package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/traintrackhq/traintrack-backend/internal/ability"
	"github.com/traintrackhq/traintrack-backend/internal/db"
	"github.com/traintrackhq/traintrack-backend/internal/handlers"
	"github.com/traintrackhq/traintrack-backend/internal/logger"
	"github.com/traintrackhq/traintrack-backend/internal/middleware"
	"github.com/traintrackhq/traintrack-backend/internal/repos"
	"github.com/traintrackhq/traintrack-backend/internal/server"
	"github.com/traintrackhq/traintrack-backend/internal/services"
	"github.com/traintrackhq/traintrack-backend/internal/storage"
	"github.com/traintrackhq/traintrack-backend/internal/utils"
)

func main() {
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	documentRoot := utils.GetEnv("DOCUMENT_ROOT", "./storage/documents", log)
	allowedOrigins := utils.GetEnv("ALLOWED_ORIGINS", "", log)

	taskCfg := services.DefaultUserTaskConfig()
	taskCfg.DoneSentinel = utils.GetEnvAsInt("DONE_STATUS", taskCfg.DoneSentinel, log)
	taskCfg.MinSpentTime = utils.GetEnvAsInt("MIN_SPENT_TIME", taskCfg.MinSpentTime, log)
	taskCfg.MinDocumentSize = utils.GetEnvAsInt64("MIN_DOCUMENT_SIZE", taskCfg.MinDocumentSize, log)
	taskCfg.MaxDocumentSize = utils.GetEnvAsInt64("MAX_DOCUMENT_SIZE_MB", taskCfg.MaxDocumentSize>>20, log) << 20

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	courseRepo := repos.NewCourseRepo(thePG, log)
	categoryRepo := repos.NewCategoryRepo(thePG, log)
	subjectRepo := repos.NewSubjectRepo(thePG, log)
	courseSubjectRepo := repos.NewCourseSubjectRepo(thePG, log)
	taskRepo := repos.NewTaskRepo(thePG, log)
	userCourseRepo := repos.NewUserCourseRepo(thePG, log)
	userSubjectRepo := repos.NewUserSubjectRepo(thePG, log)
	userTaskRepo := repos.NewUserTaskRepo(thePG, log)
	documentRepo := repos.NewDocumentRepo(thePG, log)
	commentRepo := repos.NewCommentRepo(thePG, log)
	dailyReportRepo := repos.NewDailyReportRepo(thePG, log)

	// Ability + storage
	abilityEngine := ability.New()
	documentStore, err := storage.NewLocalStorage(documentRoot, log)
	if err != nil {
		log.Error("Could not init document storage", "error", err)
		os.Exit(1)
	}

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, abilityEngine, userRepo, userTokenRepo)
	courseService := services.NewCourseService(thePG, log, abilityEngine, courseRepo, subjectRepo, courseSubjectRepo, userCourseRepo, userRepo)
	subjectService := services.NewSubjectService(thePG, log, abilityEngine, subjectRepo, categoryRepo, userCourseRepo, courseSubjectRepo)
	categoryService := services.NewCategoryService(thePG, log, abilityEngine, categoryRepo)
	taskService := services.NewTaskService(thePG, log, abilityEngine, taskRepo, subjectRepo, courseSubjectRepo)
	enrollmentService := services.NewEnrollmentService(thePG, log, abilityEngine, courseRepo, subjectRepo, courseSubjectRepo, taskRepo, userCourseRepo, userSubjectRepo, userTaskRepo, commentRepo)
	userTaskService := services.NewUserTaskService(thePG, log, abilityEngine, taskCfg, documentStore, userSubjectRepo, userTaskRepo, taskRepo, documentRepo)
	reviewService := services.NewReviewService(thePG, log, abilityEngine, userSubjectRepo, commentRepo)
	dailyReportService := services.NewDailyReportService(thePG, log, abilityEngine, dailyReportRepo, userCourseRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(log, authService)
	userHandler := handlers.NewUserHandler(log, userService)
	courseHandler := handlers.NewCourseHandler(log, courseService, enrollmentService)
	subjectHandler := handlers.NewSubjectHandler(log, subjectService)
	taskHandler := handlers.NewTaskHandler(log, taskService)
	categoryHandler := handlers.NewCategoryHandler(log, categoryService)
	userTaskHandler := handlers.NewUserTaskHandler(log, userTaskService)
	reviewHandler := handlers.NewReviewHandler(log, reviewService)
	dailyReportHandler := handlers.NewDailyReportHandler(log, dailyReportService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AllowedOrigins:     allowedOrigins,
		AuthMiddleware:     authMiddleware,
		AuthHandler:        authHandler,
		UserHandler:        userHandler,
		CourseHandler:      courseHandler,
		SubjectHandler:     subjectHandler,
		TaskHandler:        taskHandler,
		CategoryHandler:    categoryHandler,
		UserTaskHandler:    userTaskHandler,
		ReviewHandler:      reviewHandler,
		DailyReportHandler: dailyReportHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
