package routes

import (
	"brokerage-app-server/internal/config"
	"brokerage-app-server/internal/engine"
	"brokerage-app-server/internal/handlers"
	"brokerage-app-server/internal/middleware"
	"brokerage-app-server/internal/models"
	"brokerage-app-server/internal/notify"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, eng *engine.Engine, monitor *notify.PendingMonitor) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	clientHandler := handlers.NewClientHandler(eng)
	appointmentHandler := handlers.NewAppointmentHandler(eng, cfg)
	notificationHandler := handlers.NewNotificationHandler(monitor)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}

		// Website intake funnel: creates a pending client.
		public.POST("/intake", clientHandler.CreatePendingClient)
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg)) // Apply JWT authentication middleware
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// Staff account management
		userRoutes := private.Group("/users")
		{
			// Broker directory for the assign-broker screen - all staff
			userRoutes.GET("/brokers", userHandler.GetBrokers)

			// Admin-only routes
			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin)) // Only Admins
			{
				adminRoutes.POST("", userHandler.CreateUser)
				adminRoutes.GET("", userHandler.GetUsers)
				adminRoutes.GET("/:id", userHandler.GetUserByID)
				adminRoutes.PUT("/:id", userHandler.UpdateUser)
				adminRoutes.DELETE("/:id", userHandler.DeleteUser)
			}
		}

		// Client pipeline routes. Role rules beyond coarse gating live in
		// the engine's access policy, which also checks the current stage.
		clientRoutes := private.Group("/clients")
		{
			clientRoutes.POST("", clientHandler.CreateClient)
			clientRoutes.GET("", clientHandler.GetClients)
			clientRoutes.GET("/:id", clientHandler.GetClientByID)
			clientRoutes.PATCH("/:id/status", clientHandler.UpdateClientStatus)
			clientRoutes.PATCH("/:id/assign-broker", clientHandler.AssignBroker)
			clientRoutes.POST("/:id/resync-scheduling", clientHandler.ResyncSchedulingStatus)
			clientRoutes.DELETE("/:id", clientHandler.DeleteClient)
		}

		// Appointment routes
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointments)
			appointmentRoutes.GET("/overdue", appointmentHandler.GetOverdueAppointments)
			appointmentRoutes.GET("/upcoming", appointmentHandler.GetUpcomingAppointments)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PATCH("/:id/status", appointmentHandler.UpdateAppointmentStatus)
			appointmentRoutes.PATCH("/:id/reschedule", appointmentHandler.RescheduleAppointment)
		}

		// Notification routes
		notificationRoutes := private.Group("/notifications")
		{
			notificationRoutes.GET("/pending-count", notificationHandler.GetPendingCount)
			notificationRoutes.POST("/pending-count/recount", notificationHandler.RecountPending)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
