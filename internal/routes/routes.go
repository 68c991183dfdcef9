package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/barbergrid/api/internal/audit"
	"github.com/barbergrid/api/internal/config"
	"github.com/barbergrid/api/internal/handlers"
	infraRepo "github.com/barbergrid/api/internal/infra/repository"
	"github.com/barbergrid/api/internal/locks"
	"github.com/barbergrid/api/internal/middleware"
	ucBooking "github.com/barbergrid/api/internal/usecase/booking"
)

func RegisterRoutes(
	r *gin.Engine,
	db *gorm.DB,
	cfg *config.Config,
	locker locks.StaffLocker,
) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	repo := infraRepo.NewGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	// ======================================================
	// USE CASES — BOOKING CORE
	// ======================================================
	bookUC := ucBooking.NewBook(repo, locker, auditDispatcher, cfg.LockWait)
	availabilityUC := ucBooking.NewGetAvailability(repo)
	transitionUC := ucBooking.NewTransitionAppointment(repo, auditDispatcher)
	listByDateUC := ucBooking.NewListAppointmentsByDate(repo)
	listByMonthUC := ucBooking.NewListAppointmentsByMonth(repo)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)
	barbershopHandler := handlers.NewBarbershopHandler(db)

	serviceHandler := handlers.NewServiceHandler(db)
	staffServiceHandler := handlers.NewStaffServiceHandler(db)
	clientHandler := handlers.NewClientHandler(db)
	scheduleHandler := handlers.NewScheduleHandler(db)

	appointmentHandler := handlers.NewAppointmentHandler(
		bookUC,
		availabilityUC,
		transitionUC,
		listByDateUC,
		listByMonthUC,
	)

	auditLogsHandler := handlers.NewAuditLogsHandler(db)
	publicHandler := handlers.NewPublicHandler(db, bookUC, availabilityUC)

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
			publicAPI.GET("/:slug/services", publicHandler.ListServices)
			publicAPI.GET("/:slug/staff", publicHandler.ListStaff)
			publicAPI.GET("/:slug/availability", publicHandler.Availability)
			publicAPI.POST("/:slug/bookings", publicHandler.CreateBooking)
		}

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// PRIVATE
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			secured.GET("/me/barbershop", barbershopHandler.GetMeBarbershop)
			secured.PATCH("/me/barbershop", barbershopHandler.UpdateMeBarbershop)

			secured.GET("/me/clients", clientHandler.List)

			secured.GET("/me/services", serviceHandler.List)
			secured.GET("/me/assignments", staffServiceHandler.List)
			secured.PUT("/me/assignments", staffServiceHandler.Upsert)

			// ------------------------------
			// SCHEDULE RULES
			// ------------------------------
			secured.GET("/me/weekly-rules", scheduleHandler.GetMyWeeklyRules)
			secured.PUT("/me/weekly-rules", scheduleHandler.UpdateMyWeeklyRules)
			secured.GET("/me/exceptions", scheduleHandler.ListMyExceptions)
			secured.POST("/me/exceptions", scheduleHandler.CreateMyException)
			secured.DELETE("/me/exceptions/:id", scheduleHandler.DeleteException)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.GET("/me/availability", appointmentHandler.Availability)
			secured.POST("/me/appointments", appointmentHandler.Create)
			secured.GET("/me/appointments", appointmentHandler.ListByDate)
			secured.GET("/me/appointments/month", appointmentHandler.ListByMonth)
			secured.PATCH("/me/appointments/:id/transition", appointmentHandler.Transition)

			secured.GET("/me/audit-logs", auditLogsHandler.List)

			// ------------------------------
			// OWNER ONLY
			// ------------------------------
			owner := secured.Group("/")
			owner.Use(middleware.RequireOwner())
			{
				owner.POST("/me/services", serviceHandler.Create)
				owner.PATCH("/me/services/:id", serviceHandler.Update)

				owner.GET("/shop/weekly-rules", scheduleHandler.GetShopWeeklyRules)
				owner.PUT("/shop/weekly-rules", scheduleHandler.UpdateShopWeeklyRules)
				owner.GET("/shop/exceptions", scheduleHandler.ListShopExceptions)
				owner.POST("/shop/exceptions", scheduleHandler.CreateShopException)
			}
		}
	}
}
