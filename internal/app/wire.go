package app

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/playwatch/platform/internal/auth"
	"github.com/playwatch/platform/internal/guard"
	"github.com/playwatch/platform/internal/handler"
	adminhandler "github.com/playwatch/platform/internal/handler/admin"
	"github.com/playwatch/platform/internal/infra"
	"github.com/playwatch/platform/internal/monitor"
	"github.com/playwatch/platform/internal/notify"
	"github.com/playwatch/platform/internal/provider"
	"github.com/playwatch/platform/internal/repository"
	"github.com/playwatch/platform/internal/service"
)

// On-demand checks hit the Steam API, so guardians get a small budget.
const (
	checkRateLimit  = 10
	checkRateWindow = time.Minute
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool   *pgxpool.Pool
	JWTMgr *auth.JWTManager
	Logger *slog.Logger
	Cfg    *infra.Config
	Events *infra.EventProducer
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	pool := deps.Pool
	jwtMgr := deps.JWTMgr
	logger := deps.Logger
	cfg := deps.Cfg

	// Repositories
	userRepo := repository.NewUserRepository()
	childRepo := repository.NewChildRepository()
	auditRepo := repository.NewAuditRepository()
	recordRepo := repository.NewRecordRepository()

	// Outbound
	steamClient := provider.NewSteamClientWithBaseURL(cfg.SteamBaseURL, cfg.SteamAPIKey, logger)
	dispatchers := []notify.Dispatcher{
		notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom),
		notify.NewDiscordWebhook(),
	}

	// Evaluation core
	roster := service.NewRosterStore(pool, childRepo, userRepo)
	evaluator := monitor.NewEvaluator(steamClient, dispatchers, roster, deps.Events, logger)
	limiter := guard.NewRateLimiter(checkRateLimit, checkRateWindow)

	// Services
	authSvc := service.NewAuthService(pool, userRepo, jwtMgr, logger)
	childSvc := service.NewChildService(pool, childRepo)
	settingsSvc := service.NewSettingsService(pool, userRepo)
	checkupSvc := service.NewCheckupService(pool, childRepo, userRepo, auditRepo, recordRepo, evaluator, limiter, logger)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	childHandler := handler.NewChildHandler(childSvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	checkupHandler := handler.NewCheckupHandler(checkupSvc)

	// Admin handlers
	userAdmin := adminhandler.NewUserAdminHandler(pool, userRepo)
	activityAdmin := adminhandler.NewActivityHandler(pool, auditRepo)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS(cfg.CORSAllowedOrigins))
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(pool))

	// Auth routes (no auth)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// Public quick check (no auth, no roster)
	r.Post("/check-playtime", checkupHandler.QuickCheck)

	// Guardian-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticateParent(jwtMgr))

		r.Route("/me/settings", func(r chi.Router) {
			r.Get("/", settingsHandler.Get)
			r.Put("/", settingsHandler.Update)
		})

		r.Route("/children", func(r chi.Router) {
			r.Get("/", childHandler.List)
			r.Post("/", childHandler.Create)
			r.Put("/{id}", childHandler.Update)
			r.Delete("/{id}", childHandler.Delete)
			r.Post("/{id}/check", checkupHandler.CheckChild)
		})
	})

	// Admin-authenticated routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.AuthenticateAdmin(jwtMgr))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userAdmin.ListUsers)
			r.Post("/", userAdmin.CreateUser)
			r.Put("/{id}", userAdmin.UpdateUser)
			r.Delete("/{id}", userAdmin.DeleteUser)
		})

		r.Get("/activity", activityAdmin.ListActivity)
	})

	return r
}
