package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prateek8318/RankUpAPI-sub001/config"
	"github.com/prateek8318/RankUpAPI-sub001/database"
	adminctrl "github.com/prateek8318/RankUpAPI-sub001/internal/controller/admin"
	userctrl "github.com/prateek8318/RankUpAPI-sub001/internal/controller/user"
	"github.com/prateek8318/RankUpAPI-sub001/internal/logger"
	"github.com/prateek8318/RankUpAPI-sub001/internal/model"
	"github.com/prateek8318/RankUpAPI-sub001/internal/repository"
	"github.com/prateek8318/RankUpAPI-sub001/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title RankUp Assessment Attempt API
// @version 1.0
// @description Timed assessment attempts: start, pause, resume, answer, submit, and deterministic scoring.
// @contact.name API Support
// @contact.email support@rankup.example.com
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core application components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
		),

		// Repositories layer
		fx.Provide(
			repository.NewAssessmentRepository,
			repository.NewQuestionRepository,
			repository.NewAttemptRepository,
			repository.NewAnswerRepository,
		),

		// Services layer
		fx.Provide(
			service.NewSystemClock,
			service.NewTimeGovernor,
			service.NewScoringService,
			service.NewAttemptService,
			service.NewAnswerService,
			service.NewQuestionService,
			service.NewAdminAssessmentService,
			service.NewUserAssessmentService,
			func(cfg *config.Config, attemptRepo repository.AttemptRepository, attempts service.AttemptService, governor *service.TimeGovernor) *service.ExpirySweeper {
				interval := time.Duration(cfg.Sweeper.IntervalSeconds) * time.Second
				return service.NewExpirySweeper(attemptRepo, attempts, governor, interval)
			},
		),

		// API controllers layer
		fx.Provide(
			adminctrl.NewAdminAssessmentController,
			userctrl.NewUserAssessmentController,
			userctrl.NewUserAttemptController,
		),

		fx.Invoke(AutoMigrateDB),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages the HTTP
// server and expiry sweeper lifecycles.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	sweeper *service.ExpirySweeper,
	adminAssessmentCtrl *adminctrl.AdminAssessmentController,
	userAssessmentCtrl *userctrl.UserAssessmentController,
	userAttemptCtrl *userctrl.UserAttemptController,
) {
	// Admin routes (prefixed with /api/v1/admin)
	adminAPIGroup := router.Group("/api/v1/admin")
	{
		assessmentsAdminGroup := adminAPIGroup.Group("/assessments")
		assessmentsAdminGroup.POST("", adminAssessmentCtrl.CreateAssessment)

		questionsAdminGroup := adminAPIGroup.Group("/questions")
		questionsAdminGroup.GET("/:question_id", adminAssessmentCtrl.GetQuestion)
		questionsAdminGroup.PUT("/:question_id", adminAssessmentCtrl.UpdateQuestion)
		questionsAdminGroup.DELETE("/:question_id", adminAssessmentCtrl.DeleteQuestion)
	}

	// User routes (prefixed with /api/v1)
	userAPIGroup := router.Group("/api/v1")
	{
		// Assessment catalog
		userAPIGroup.GET("/assessments", userAssessmentCtrl.GetAllAssessments)
		userAPIGroup.GET("/assessments/:assessment_id", userAssessmentCtrl.GetAssessmentDetails)
		userAPIGroup.GET("/assessments/:assessment_id/my-attempts", userAssessmentCtrl.GetUserAttempts)

		// Attempt lifecycle
		userAPIGroup.POST("/assessments/:assessment_id/attempts", userAttemptCtrl.StartAttempt)
		userAPIGroup.GET("/attempts/:attempt_id", userAttemptCtrl.GetAttemptStatus)
		userAPIGroup.POST("/attempts/:attempt_id/pause", userAttemptCtrl.PauseAttempt)
		userAPIGroup.POST("/attempts/:attempt_id/resume", userAttemptCtrl.ResumeAttempt)
		userAPIGroup.POST("/attempts/:attempt_id/abandon", userAttemptCtrl.AbandonAttempt)

		// Answer ledger and scoring
		userAPIGroup.PUT("/attempts/:attempt_id/answers", userAttemptCtrl.RecordAnswer)
		userAPIGroup.GET("/attempts/:attempt_id/answers", userAttemptCtrl.GetAnswers)
		userAPIGroup.POST("/attempts/:attempt_id/submit", userAttemptCtrl.SubmitAttempt)
		userAPIGroup.GET("/attempts/:attempt_id/result", userAttemptCtrl.GetAttemptResult)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	sweepCtx, cancelSweep := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Assessment API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			go sweeper.Run(sweepCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			cancelSweep()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Question{},
		&model.Assessment{},
		&model.AssessmentQuestion{},
		&model.Attempt{},
		&model.AnswerRecord{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}

	// AutoMigrate cannot express a partial unique index, so the one-active-
	// attempt rule is created directly. The predicate must match the
	// statuses AttemptStatus.IsActive considers active.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_attempt
		 ON attempts (user_id, assessment_id)
		 WHERE status IN ('in_progress', 'paused') AND deleted_at IS NULL`,
	).Error; err != nil {
		log.Error().Err(err).Msg("Failed to create active attempt index")
		return err
	}

	log.Info().Msg("Database migration completed successfully.")
	return nil
}
