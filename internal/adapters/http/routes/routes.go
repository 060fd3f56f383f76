package routes

import (
	"time"

	"lifelink/internal/adapters/http/handlers"
	"lifelink/internal/adapters/http/middleware"
	"lifelink/internal/adapters/persistence/repositories"
	"lifelink/internal/config"
	"lifelink/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	requestRepo := repositories.NewRequestRepository(db)
	donationRepo := repositories.NewDonationRepository(db)
	verificationRepo := repositories.NewVerificationRepository(db)
	messageRepo := repositories.NewMessageRepository(db)
	clubRepo := repositories.NewClubRepository(db)

	// Initialize services
	notifyService := services.NewNotificationService()
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo)
	requestService := services.NewRequestService(requestRepo, userRepo, notifyService)
	verificationService := services.NewVerificationService(db, requestRepo, verificationRepo, notifyService)
	donationService := services.NewDonationService(donationRepo, requestRepo)
	messageService := services.NewMessageService(messageRepo, requestRepo, userRepo)
	clubService := services.NewClubService(clubRepo, notifyService)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	requestHandler := handlers.NewRequestHandler(requestService)
	donationHandler := handlers.NewDonationHandler(verificationService, donationService)
	messageHandler := handlers.NewMessageHandler(messageService)
	clubHandler := handlers.NewClubHandler(clubService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, userHandler, requestHandler,
		donationHandler, messageHandler, clubHandler, dashboardHandler, cfg)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	requestHandler *handlers.RequestHandler,
	donationHandler *handlers.DonationHandler,
	messageHandler *handlers.MessageHandler,
	clubHandler *handlers.ClubHandler,
	dashboardHandler *handlers.DashboardHandler,
	cfg *config.Config,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Auth routes (public, rate-limited)
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// User routes (Authenticated)
	userRoutes := router.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	setupUserRoutes(userRoutes, userHandler)

	// Blood request routes (Authenticated)
	requestRoutes := router.Group("/requests")
	requestRoutes.Use(middleware.AuthMiddleware(cfg))
	setupRequestRoutes(requestRoutes, requestHandler, donationHandler)

	// Donation routes (Authenticated)
	donationRoutes := router.Group("/donations")
	donationRoutes.Use(middleware.AuthMiddleware(cfg))
	setupDonationRoutes(donationRoutes, donationHandler)

	// Message routes (Authenticated)
	messageRoutes := router.Group("/messages")
	messageRoutes.Use(middleware.AuthMiddleware(cfg))
	setupMessageRoutes(messageRoutes, messageHandler)

	// Club & event routes (Authenticated)
	clubRoutes := router.Group("/clubs")
	clubRoutes.Use(middleware.AuthMiddleware(cfg))
	setupClubRoutes(clubRoutes, clubHandler)

	eventRoutes := router.Group("/events")
	eventRoutes.Use(middleware.AuthMiddleware(cfg))
	setupEventRoutes(eventRoutes, clubHandler)

	// Dashboard routes (Authenticated)
	dashboardRoutes := router.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	setupDashboardRoutes(dashboardRoutes, dashboardHandler)

	// Admin routes (Admin only)
	adminRoutes := router.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg))
	adminRoutes.Use(middleware.AdminOnly())
	setupAdminRoutes(adminRoutes, userHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes (5 req/min/IP)
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupUserRoutes configures user routes (Authenticated)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/profile", handler.GetProfile)
	router.Put("/profile", handler.UpdateProfile)
	router.Get("/donors", handler.FindDonors)
}

// setupRequestRoutes configures blood request routes (Authenticated)
func setupRequestRoutes(router fiber.Router, handler *handlers.RequestHandler, donationHandler *handlers.DonationHandler) {
	router.Post("/", handler.Create)
	router.Get("/", handler.List)
	router.Get("/my", handler.ListMine)
	router.Get("/:id", handler.Get)
	router.Get("/:id/donations", donationHandler.RequestDonations)
}

// setupDonationRoutes configures donation routes (Authenticated).
// The verification endpoints are behind the strict limiter (3 req/min/IP)
// so a 6-digit code cannot be brute-forced inside its 10-minute window,
// and behind no-cache headers because responses carry one-time codes.
func setupDonationRoutes(router fiber.Router, handler *handlers.DonationHandler) {
	router.Post("/initiate-verification",
		middleware.NoCacheHeaders(),
		middleware.StrictRateLimiter(),
		handler.InitiateVerification)
	router.Post("/complete-verification",
		middleware.NoCacheHeaders(),
		middleware.StrictRateLimiter(),
		handler.CompleteVerification)

	router.Get("/my", handler.MyDonations)
}

// setupMessageRoutes configures message routes (Authenticated)
func setupMessageRoutes(router fiber.Router, handler *handlers.MessageHandler) {
	router.Post("/", handler.Send)
	router.Get("/", handler.Conversation)
	router.Post("/mark-read", handler.MarkRead)
	router.Get("/unread-count", handler.UnreadCount)
}

// setupClubRoutes configures club routes (Authenticated)
func setupClubRoutes(router fiber.Router, handler *handlers.ClubHandler) {
	router.Post("/", handler.RegisterClub)
	router.Get("/", middleware.CacheControl(5*time.Minute), handler.ListClubs)
	router.Get("/:id", handler.GetClub)
	router.Put("/:id", handler.UpdateClub)
}

// setupEventRoutes configures blood drive event routes (Authenticated)
func setupEventRoutes(router fiber.Router, handler *handlers.ClubHandler) {
	router.Post("/", handler.CreateEvent)
	router.Get("/", handler.ListEvents)
	router.Post("/:id/register", handler.RegisterForEvent)
}

// setupDashboardRoutes configures dashboard routes
func setupDashboardRoutes(router fiber.Router, handler *handlers.DashboardHandler) {
	// Role-specific dashboard (All authenticated users)
	router.Get("/me", handler.MyDashboard)

	// Admin dashboard (Admin only)
	router.Get("/admin", middleware.AdminOnly(), handler.AdminDashboard)
}

// setupAdminRoutes configures admin routes
func setupAdminRoutes(router fiber.Router, userHandler *handlers.UserHandler) {
	router.Get("/users", userHandler.ListUsers)
	router.Post("/users/:id/deactivate", userHandler.DeactivateUser)
	router.Post("/users/:id/activate", userHandler.ReactivateUser)
	router.Put("/users/:id/role", userHandler.SetUserRole)
}
