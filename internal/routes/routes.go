package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SaltaGet/Back-SIJAC/internal/app"
	"github.com/SaltaGet/Back-SIJAC/internal/handlers"
	"github.com/SaltaGet/Back-SIJAC/internal/middleware"
	"github.com/SaltaGet/Back-SIJAC/internal/models"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.RequestLogger(a.Log))
	r.Use(middleware.CORSMiddleware(a.Cfg.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ======================================================
	// HANDLERS
	// ======================================================
	images := handlers.NewImageUploader(a.Objects, a.Cfg.ImagePrefix)

	authHandler := handlers.NewAuthHandler(a.DB, a.Tokens, a.Cfg.SessionTTL(), a.Audit, a.Log)
	meHandler := handlers.NewMeHandler(a.DB, images, a.Objects)

	availabilityHandler := handlers.NewAvailabilityHandler(
		a.CreateAvailability,
		a.UpdateAvailability,
		a.DeleteAvailability,
		a.ListAvailabilities,
		a.Loc,
	)

	appointmentHandler := handlers.NewAppointmentHandler(
		a.Reserve,
		a.Confirm,
		a.UpdateState,
		a.List,
		a.Loc,
	)

	clientHandler := handlers.NewClientHandler(a.DB, a.Audit)
	caseHandler := handlers.NewCaseHandler(a.Cases, a.Audit)
	blogHandler := handlers.NewBlogHandler(a.Blogs, images, a.Objects, a.Audit, a.Log)
	contactHandler := handlers.NewContactHandler(a.Notifier, a.Log)
	auditLogsHandler := handlers.NewAuditLogsHandler(a.AuditLog, a.Loc)
	mediaHandler := handlers.NewMediaHandler(a.Objects, a.Cfg.ImagePrefix)

	// ======================================================
	// MEDIA (images stored without a public bucket URL)
	// ======================================================
	r.GET("/media/*key", mediaHandler.Serve)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/users", meHandler.PublicStaff)
			publicAPI.GET("/users/:user_id/availabilities", availabilityHandler.Public)
			publicAPI.GET("/users/:user_id/appointments", appointmentHandler.OpenSlots)

			publicAPI.POST("/appointments/:id/reserve", appointmentHandler.Reserve)
			publicAPI.POST("/appointments/confirm", appointmentHandler.Confirm)

			publicAPI.POST("/contact", contactHandler.Send)

			publicAPI.GET("/blogs", blogHandler.List)
			publicAPI.GET("/blogs/:id", blogHandler.Get)
		}

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// PRIVATE
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(a.Tokens))
		{
			secured.GET("/me", meHandler.GetMe)
			secured.PATCH("/me", meHandler.UpdateMe)
			secured.PUT("/me/image", meHandler.UploadImage)

			// AVAILABILITIES
			secured.POST("/me/availabilities", availabilityHandler.Create)
			secured.GET("/me/availabilities", availabilityHandler.List)
			secured.GET("/me/availabilities/:id", availabilityHandler.Get)
			secured.PUT("/me/availabilities/:id", availabilityHandler.Update)
			secured.DELETE("/me/availabilities/:id", availabilityHandler.Delete)

			// APPOINTMENTS
			secured.GET("/me/appointments", appointmentHandler.List)
			secured.GET("/me/appointments/:id", appointmentHandler.Get)
			secured.PATCH("/me/appointments/:id/state", appointmentHandler.UpdateState)

			// CLIENTS AND CASES
			secured.POST("/me/clients", clientHandler.Create)
			secured.GET("/me/clients", clientHandler.List)
			secured.GET("/me/clients/:id", clientHandler.Get)
			secured.PUT("/me/clients/:id", clientHandler.Update)
			secured.POST("/me/clients/:id/cases", caseHandler.Create)
			secured.GET("/me/clients/:id/cases", caseHandler.ListByClient)

			secured.GET("/me/cases", caseHandler.List)
			secured.GET("/me/cases/:case_id", caseHandler.Get)
			secured.PUT("/me/cases/:case_id", caseHandler.Update)
			secured.PATCH("/me/cases/:case_id/state", caseHandler.UpdateState)
			secured.POST("/me/cases/:case_id/share", caseHandler.Share)
			secured.DELETE("/me/cases/:case_id/share/:user_id", caseHandler.Unshare)

			// BLOG
			secured.POST("/me/blogs", blogHandler.Create)
			secured.PUT("/me/blogs/:id", blogHandler.Update)
			secured.DELETE("/me/blogs/:id", blogHandler.Delete)

			// ADMIN
			admin := secured.Group("/")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.POST("/users", authHandler.CreateUser)
				admin.GET("/me/audit-logs", auditLogsHandler.List)
				admin.GET("/me/audit-logs/:id", auditLogsHandler.Get)
			}
		}
	}
}
