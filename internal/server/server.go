// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"skillshare/internal/cache"
	"skillshare/internal/config"
	"skillshare/internal/database"
	"skillshare/internal/middleware"
	"skillshare/internal/models"
	"skillshare/internal/notifications"
	"skillshare/internal/observability"
	"skillshare/internal/repository"
	"skillshare/internal/scheduler"
	"skillshare/internal/service"
	"skillshare/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	serviceName    = "skillshare-api"
	serviceVersion = "1.0.0"
	tokenIssuer    = "skillshare-api"
	tokenAudience  = "skillshare-client"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config              *config.Config
	db                  *gorm.DB
	redis               *redis.Client
	app                 *fiber.App
	shutdownCtx         context.Context
	shutdownFn          context.CancelFunc
	promMiddleware      *fiberprometheus.FiberPrometheus
	tracingShutdown     func(context.Context) error
	userRepo            repository.UserRepository
	postRepo            repository.PostRepository
	commentRepo         repository.CommentRepository
	planRepo            repository.LearningPlanRepository
	notificationRepo    repository.NotificationRepository
	media               *storage.MediaStore
	notifier            *notifications.Notifier
	hub                 *notifications.Hub
	sched               *scheduler.Scheduler
	notificationService *service.NotificationService
	userService         *service.UserService
	postService         *service.PostService
	commentService      *service.CommentService
	planService         *service.LearningPlanService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Initialize Redis
	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	planRepo := repository.NewLearningPlanRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	media, err := storage.NewMediaStore(cfg.UploadDir, cfg.MaxUploadSizeMB, cfg.PublicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("media store init failed: %w", err)
	}

	// Initialize Prometheus metrics
	prom := middleware.InitMetrics(serviceName)

	server := &Server{
		config:           cfg,
		db:               db,
		redis:            redisClient,
		promMiddleware:   prom,
		userRepo:         userRepo,
		postRepo:         postRepo,
		commentRepo:      commentRepo,
		planRepo:         planRepo,
		notificationRepo: notificationRepo,
		media:            media,
	}

	// Initialize notifier and hub if Redis is available
	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
		server.hub = notifications.NewHub()
	}

	server.notificationService = service.NewNotificationService(
		notificationRepo, userRepo, postRepo, commentRepo,
		server.notifier, cfg.NotificationRetentionDays,
	)
	server.userService = service.NewUserService(userRepo, server.notificationService)
	server.postService = service.NewPostService(postRepo, userRepo, commentRepo, media, server.notificationService)
	server.commentService = service.NewCommentService(commentRepo, postRepo, server.notificationService)
	server.planService = service.NewLearningPlanService(planRepo, userRepo)

	sched, err := scheduler.New(server.notificationService)
	if err != nil {
		return nil, fmt.Errorf("scheduler init failed: %w", err)
	}
	server.sched = sched

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// OpenTelemetry span per request
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.HealthCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Skillshare Backend Metrics Dashboard",
	}))

	// Uploaded media files
	app.Static(s.media.URLPath(), s.media.Dir())

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	// Callback must be registered before the generic /:provider route
	auth.Get("/oauth2/callback/:provider", s.OAuthCallback)
	auth.Get("/oauth2/:provider", s.OAuthAuthorize)

	// Post routes. Specific paths (/trending, /feed, /user/:id and
	// /:id/:resource) are registered BEFORE the generic /:id routes.
	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Get("/trending", s.GetTrendingPosts)
	posts.Get("/feed", s.AuthRequired(), s.GetFeed)
	posts.Get("/user/:id", s.GetUserPosts)
	posts.Post("/", s.AuthRequired(), middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like", s.AuthRequired(), s.LikePost)
	posts.Post("/:id/unlike", s.AuthRequired(), s.UnlikePost)
	posts.Get("/:id/is-liked", s.IsPostLiked)
	posts.Post("/:id/comments", s.AuthRequired(), middleware.RateLimit(
		s.redis, 15, time.Minute, "create_comment"), s.CreateComment)
	posts.Get("/:id/comments", s.GetPostComments)
	posts.Put("/:id", s.AuthRequired(), s.UpdatePost)
	posts.Delete("/:id", s.AuthRequired(), s.DeletePost)
	posts.Get("/:id", s.GetPost)

	// Comment routes
	comments := api.Group("/comments")
	comments.Get("/:id", s.GetComment)
	comments.Put("/:id", s.AuthRequired(), s.UpdateComment)
	comments.Delete("/:id", s.AuthRequired(), s.DeleteComment)

	// User routes. /me and /:id/:resource before generic /:username.
	users := api.Group("/users")
	users.Get("/", s.GetUsers)
	users.Get("/me", s.AuthRequired(), s.GetMyProfile)
	users.Put("/me", s.AuthRequired(), s.UpdateMyProfile)
	users.Delete("/me", s.AuthRequired(), s.DeleteMyAccount)
	users.Post("/me/profile-picture", s.AuthRequired(), s.UploadProfilePicture)
	users.Post("/:id/follow", s.AuthRequired(), s.FollowUser)
	users.Post("/:id/unfollow", s.AuthRequired(), s.UnfollowUser)
	users.Get("/:id/followers", s.GetFollowers)
	users.Get("/:id/following", s.GetFollowing)
	users.Get("/:id/is-following", s.IsFollowingUser)
	users.Get("/:userId/comments", s.GetUserComments)
	users.Get("/:username", s.GetUserByUsername)

	// Learning plan routes
	plans := api.Group("/learning-plans")
	plans.Get("/search", s.SearchLearningPlans)
	plans.Get("/validate-topic", s.ValidatePlanTopic)
	plans.Get("/validate-resource", s.ValidatePlanResource)
	plans.Get("/user/:userId/active", s.GetActiveUserPlans)
	plans.Get("/user/:userId/count/:status", s.CountUserPlansByStatus)
	plans.Get("/user/:userId/status/:status", s.GetUserPlansByStatus)
	plans.Get("/user/:userId", s.GetUserPlans)
	plans.Post("/", s.AuthRequired(), s.CreateLearningPlan)
	plans.Put("/:id", s.AuthRequired(), s.UpdateLearningPlan)
	plans.Delete("/:id", s.AuthRequired(), s.DeleteLearningPlan)
	plans.Get("/:id", s.GetLearningPlan)

	// Notification routes (all require auth)
	notifs := api.Group("/notifications", s.AuthRequired())
	notifs.Get("/", s.GetNotifications)
	notifs.Get("/unread-count", s.GetUnreadNotificationCount)
	notifs.Get("/has-unread", s.HasUnreadNotifications)
	notifs.Post("/mark-all-read", s.MarkAllNotificationsRead)
	notifs.Post("/cleanup", s.CleanupNotifications)
	notifs.Post("/:id/mark-read", s.MarkNotificationRead)
	notifs.Delete("/:id", s.DeleteNotification)
	notifs.Delete("/", s.DeleteAllNotifications)
	notifs.Get("/:id", s.GetNotification)

	// Websocket endpoint for live notification delivery
	api.Get("/ws", s.AuthRequired(), s.WebsocketHandler())
}

// HealthCheck is a legacy/simple alias for ReadinessCheck
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis is optional: caching and live delivery degrade without it
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// Browsers cannot set headers on websocket upgrades, so the token may
		// also arrive as a query parameter.
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		userID, ok := s.validateToken(tokenString)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		// Store user ID in context
		c.Locals("userID", userID)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// validateToken parses and validates an HS256 token, returning the subject
// user ID when the signature, issuer, audience and claims all check out.
func (s *Server) validateToken(tokenString string) (uint, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
		return 0, false
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
		return 0, false
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(userID), true
}

// optionalUserID attempts to extract userID from the Authorization header but
// does not enforce it. Anonymous viewers get zero.
func (s *Server) optionalUserID(c *fiber.Ctx) (uint, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, false
	}

	userID, ok := s.validateToken(parts[1])
	if !ok {
		return 0, false
	}
	return userID, true
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	tracingShutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    s.config.Env,
		Enabled:        s.config.TracingEnabled,
		Exporter:       s.config.TracingExporter,
		OTLPEndpoint:   s.config.TracingOTLPEndpoint,
		SamplerRatio:   s.config.TracingSamplerRatio,
	})
	if err != nil {
		return fmt.Errorf("tracing init failed: %w", err)
	}
	s.tracingShutdown = tracingShutdown

	app := fiber.New(fiber.Config{
		AppName: "Skillshare API",
		// Room for a full multipart post: three media files plus the JSON part.
		BodyLimit: (s.config.MaxUploadSizeMB*models.MaxMediaFiles + 1) * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	// Wire the websocket hub to the Redis subscriber if available
	if s.notifier != nil && s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				log.Printf("failed to start notification hub wiring: %v", err)
			}
		}()
	}

	s.sched.Start()

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop the hub wiring goroutine
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	// Stop accepting cron jobs and wait for a running sweep to finish
	if s.sched != nil {
		select {
		case <-s.sched.Stop().Done():
		case <-ctx.Done():
			log.Println("timed out waiting for scheduler jobs to finish")
		}
	}

	// Shutdown the HTTP/WS server
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	// Flush any buffered spans
	if s.tracingShutdown != nil {
		if terr := s.tracingShutdown(ctx); terr != nil {
			log.Printf("error shutting down tracer: %v", terr)
		}
	}

	// Close WebSocket connections gracefully
	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			log.Printf("error shutting down notification hub: %v", err)
		}
	}

	// Close database connection
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
