package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"document-tracker-api/catalog"
	"document-tracker-api/config"
	"document-tracker-api/controllers"
	"document-tracker-api/jobs"
	"document-tracker-api/middleware"
	"document-tracker-api/monitor"
	"document-tracker-api/routes"
	"document-tracker-api/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logFile, _ := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}
	logger := config.Logger
	defer logger.Sync()

	config.ReloadMailerConfig()
	config.InitDB()

	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	cat := catalog.Default()

	var scopeCache services.ScopeCache
	if client := config.InitRedis(); client != nil {
		scopeCache = services.NewRedisScopeCache(client, config.ScopeCacheTTL(), logger)
	}

	trackerOpts := []services.TrackerOption{
		services.WithCatalog(cat),
		services.WithLogger(logger),
	}
	if scopeCache != nil {
		trackerOpts = append(trackerOpts, services.WithScopeCache(scopeCache))
	}
	if mailer := config.Mailer(); mailer.Host != "" && len(mailer.Mailboxes) > 0 {
		trackerOpts = append(trackerOpts, services.WithNotifier(services.NewMailRoutingNotifier(cat, mailer.Mailboxes)))
		logger.Info("routing notifications enabled", zap.Int("mailboxes", len(mailer.Mailboxes)))
	}

	var attachments services.AttachmentStorage
	if bucket := config.AttachmentBucket(); bucket != "" {
		client, err := config.NewS3Client(context.Background())
		if err != nil {
			logger.Warn("attachment storage disabled", zap.Error(err))
		} else {
			attachments = services.NewS3AttachmentStorage(client, bucket)
		}
	}

	tokenTTL, _ := strconv.Atoi(os.Getenv("JWT_EXPIRE_HOURS"))
	remarks := services.NewRemarkService(config.DB)
	handlers := &controllers.Handlers{
		DB:          config.DB,
		Tracker:     services.NewTrackerService(config.DB, trackerOpts...),
		Remarks:     remarks,
		Scope:       services.NewScopeResolver(config.DB, cat, scopeCache),
		Query:       services.NewDocumentQuery(config.DB),
		Attachments: attachments,
		Catalog:     cat,
		Logger:      logger,
		JWTSecret:   middleware.JWTSecret(),
		TokenTTL:    tokenTTL,
	}

	if spec := os.Getenv("REMARKS_RECONCILE_CRON"); spec != "" {
		scheduler := jobs.NewScheduler(logger)
		if err := jobs.RegisterRemarksReconcile(scheduler, spec, 10*time.Minute, remarks); err != nil {
			logger.Fatal("invalid REMARKS_RECONCILE_CRON", zap.Error(err))
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})
	router.Use(middleware.CORSMiddleware())

	routes.SetupRoutes(router, handlers)
	monitor.RegisterLogsRoute(router, config.LogFilePath(), os.Getenv("MONITOR_TOKEN"))

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("server starting", zap.String("port", port), zap.String("gin_mode", gin.Mode()))
	if err := router.Run(":" + port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
