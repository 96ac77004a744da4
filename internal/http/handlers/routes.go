package handlers

import (
	"careops/internal/app"
	"careops/internal/http/middleware"

	"github.com/labstack/echo/v4"
)

// SetupRoutes sets up all API routes
func SetupRoutes(api *echo.Group, services *app.Services) {
	// Auth routes (no authentication required)
	authHandler := NewAuthHandler(services.AuthService)
	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)

	// Public booking surface (no authentication required)
	bookingHandler := NewBookingHandler(services.DB, services.CalendarService, services.AutomationEngine)
	formHandler := NewFormHandler(services.DB, services.AutomationEngine)
	publicHandler := NewPublicHandler(services.DB, services.CalendarService, services.AutomationEngine)
	api.GET("/bookings/slots/:service_id", bookingHandler.Slots)
	api.POST("/public/form/:id", formHandler.Submit)
	api.POST("/public/contact/:slug", publicHandler.ContactForm)
	api.POST("/public/booking/:slug", publicHandler.CreateBooking)

	// WebSocket endpoint (handles authentication manually via query parameter)
	wsHandler := NewWebSocketHandler(services.DB, services.AuthService)
	api.GET("/ws/alerts", wsHandler.Alerts)

	// Protected routes (require authentication and a workspace scope)
	protected := api.Group("")
	protected.Use(middleware.JWTAuth(services.AuthService))
	protected.Use(middleware.RequireWorkspace())

	// Contact intake
	contactHandler := NewContactHandler(services.DB, services.AutomationEngine)
	protected.POST("/contacts", contactHandler.Create)
	protected.POST("/contacts/import", contactHandler.Import, middleware.RequireRole("owner"))

	// Conversations
	conversationHandler := NewConversationHandler(services.DB, services.Gateway, services.AutomationEngine)
	conversations := protected.Group("/conversations")
	conversations.GET("/:id/messages", conversationHandler.Messages)
	conversations.POST("/:id/reply", conversationHandler.Reply)
	conversations.POST("/:id/resume", conversationHandler.Resume)

	// Bookings
	bookings := protected.Group("/bookings")
	bookings.POST("", bookingHandler.Create)
	bookings.GET("/:id/ics", bookingHandler.ICS)
	bookings.GET("/:id/google-link", bookingHandler.GoogleLink)

	// Inventory
	inventoryHandler := NewInventoryHandler(services.DB, services.AutomationEngine)
	protected.POST("/inventory/:id/adjust", inventoryHandler.Adjust)

	// Forms
	protected.POST("/forms/submissions/:id/remind", formHandler.Remind)

	// Alerts and automation audit log
	alertHandler := NewAlertHandler(services.DB)
	protected.GET("/alerts", alertHandler.List)
	protected.PUT("/alerts/:id/read", alertHandler.MarkRead)
	protected.GET("/automation/log", alertHandler.AutomationLog)
}
