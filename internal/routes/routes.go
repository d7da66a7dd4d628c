package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/cache"
	"github.com/BruksfildServices01/salon-scheduler/internal/config"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/handlers"
	"github.com/BruksfildServices01/salon-scheduler/internal/idempotency"
	"github.com/BruksfildServices01/salon-scheduler/internal/metrics"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/salon-scheduler/internal/usecase/appointment"
	ucCatalog "github.com/BruksfildServices01/salon-scheduler/internal/usecase/catalog"
	"github.com/BruksfildServices01/salon-scheduler/internal/validators"
	"github.com/BruksfildServices01/salon-scheduler/internal/workinghours"
)

// Deps is everything the HTTP layer is built from. Storage, cache and
// idempotency backends are chosen by the caller.
type Deps struct {
	Config      *config.Config
	Ledger      domain.Ledger
	Catalog     domain.Catalog
	Auditor     handlers.Auditor
	AuditReader audit.Reader
	Slots       cache.SlotCache
	Idempotency idempotency.Store
	Metrics     *metrics.Booking
	Gatherer    prometheus.Gatherer
	Clock       timezone.Clock
	Log         zerolog.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) error {
	cfg := d.Config

	if err := validators.Register(); err != nil {
		return err
	}

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(d.Log),
		middleware.Tracing(),
		middleware.RequestLogger(d.Log),
		middleware.Metrics(d.Metrics),
		middleware.CORSMiddleware(),
	)

	// ======================================================
	// INFRA
	// ======================================================
	tz := timezone.NewSalon(cfg.Timezone, d.Clock)
	hoursProvider := workinghours.NewProvider(d.Catalog, cfg.WorkingHoursCacheTTL)
	minAdvance := time.Duration(cfg.MinAdvanceMinutes) * time.Minute

	// ======================================================
	// USE CASES
	// ======================================================
	availabilityUC := ucAppointment.NewGetAvailability(
		d.Catalog, d.Ledger, hoursProvider, d.Slots, tz,
		ucAppointment.AvailabilityConfig{
			GranularityMinutes: cfg.SlotGranularityMinutes,
			MinAdvance:         minAdvance,
		},
		d.Metrics, d.Log,
	)

	commitUC := ucAppointment.NewCommitBooking(
		d.Catalog, d.Ledger, hoursProvider, tz,
		ucAppointment.CommitConfig{
			MinAdvance: minAdvance,
			Timeout:    cfg.CommitTimeout,
		},
		d.Metrics,
	)

	cancelUC := ucAppointment.NewCancelAppointment(d.Ledger, tz, d.Metrics)
	statusUC := ucAppointment.NewUpdateAppointmentStatus(d.Ledger, tz, d.Metrics)
	deleteUC := ucAppointment.NewDeleteAppointment(d.Ledger)
	listByDateUC := ucAppointment.NewListAppointmentsByDate(d.Ledger, tz)
	listByMonthUC := ucAppointment.NewListAppointmentsByMonth(d.Ledger, tz)

	servicesUC := ucCatalog.NewServices(d.Catalog)
	workingHoursUC := ucCatalog.NewWorkingHours(d.Catalog, hoursProvider)

	// ======================================================
	// HANDLERS
	// ======================================================
	salonHandler := handlers.NewSalonHandler(d.Catalog)
	publicHandler := handlers.NewPublicHandler(workingHoursUC, servicesUC, availabilityUC, tz)
	appointmentHandler := handlers.NewAppointmentHandler(
		commitUC,
		cancelUC,
		statusUC,
		deleteUC,
		listByDateUC,
		listByMonthUC,
		d.Catalog,
		availabilityUC,
		d.Auditor,
		tz,
	)
	meHandler := handlers.NewMeHandler(d.Catalog)
	serviceHandler := handlers.NewServiceHandler(servicesUC, d.Auditor)
	workingHoursHandler := handlers.NewWorkingHoursHandler(workingHoursUC, d.Auditor)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.AuditReader, tz)

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  rate.Limit(cfg.RateLimitRPS),
		Burst: cfg.RateLimitBurst,
	})
	idempotent := middleware.Idempotency(d.Idempotency, d.Log)

	// ======================================================
	// OPS
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		api.GET("/salons/:slug", salonHandler.Get)
		api.GET("/salons/:slug/providers", salonHandler.ListProviders)

		api.GET("/providers/:id/working-hours", publicHandler.WorkingHours)
		api.GET("/providers/:id/services", publicHandler.Services)
		api.GET("/providers/:id/availability", publicHandler.Availability)

		api.POST("/appointments", limiter.RateLimit(), idempotent, appointmentHandler.Create)
		api.DELETE("/appointments/:id", limiter.RateLimit(), appointmentHandler.CancelByToken)

		// ------------------------------
		// PROVIDER
		// ------------------------------
		secured := api.Group("/me")
		secured.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		{
			secured.GET("", meHandler.GetMe)

			secured.GET("/appointments", appointmentHandler.ListByDate)
			secured.GET("/appointments/month", appointmentHandler.ListByMonth)
			secured.POST("/appointments", idempotent, appointmentHandler.CreateManual)
			secured.PATCH("/appointments/:id/status", appointmentHandler.UpdateStatus)
			secured.DELETE("/appointments/:id", appointmentHandler.Delete)

			secured.GET("/working-hours", workingHoursHandler.Get)
			secured.PUT("/working-hours", workingHoursHandler.Update)

			secured.GET("/services", serviceHandler.List)
			secured.POST("/services", serviceHandler.Create)
			secured.PATCH("/services/:id", serviceHandler.Update)

			secured.GET("/audit-logs", auditLogsHandler.List)
		}
	}

	return nil
}
