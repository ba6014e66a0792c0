package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"taxdocpipeline/internal/config"
	"taxdocpipeline/internal/handlers"
	"taxdocpipeline/internal/middleware"
	"taxdocpipeline/internal/models"
	"taxdocpipeline/internal/services"
	"taxdocpipeline/pkg/database"
)

func main() {
	log.Println("Starting tax document pipeline...")

	cfg := config.Load()
	log.Printf("Environment: %s", cfg.NodeEnv)
	log.Printf("Working directory: %s", mustGetWd())

	db := database.Init(cfg.DataDir)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Job{},
		&models.JobOutcome{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_job_outcomes_job_id ON job_outcomes(job_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_job_outcomes_needs_ui ON job_outcomes(needs_ui_code, resolved)")

	for _, dir := range []string{cfg.DataDir, cfg.InboxDir, cfg.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
	log.Printf("Output directory: %s", cfg.OutputDir)

	authService := services.NewAuthService()
	jobService := services.NewJobService(cfg)

	if err := authService.EnsureAdminExists(); err != nil {
		log.Fatal("Failed to ensure admin exists:", err)
	}

	mailIntake := services.NewMailIntake(cfg, jobService)
	if mailIntake.Enabled() {
		go mailIntake.Run(context.Background())
	}

	if cfg.NodeEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.Static("/output", cfg.OutputDir)

	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.AuthRateLimitMiddleware())
	authHandler := handlers.NewAuthHandler(authService)
	authHandler.RegisterRoutes(authGroup)

	protectedGroup := api.Group("")
	protectedGroup.Use(middleware.APIRateLimitMiddleware())
	protectedGroup.Use(middleware.AuthMiddleware(authService))

	jobsHandler := handlers.NewJobsHandler(jobService)
	jobsHandler.RegisterRoutes(protectedGroup.Group("/jobs"))

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("tax document pipeline API running on port %s", cfg.Port)
	log.Println("auth system enabled")

	if err := r.Run(addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func mustGetWd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
