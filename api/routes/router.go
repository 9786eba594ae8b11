package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/freightlink-backend/api/controllers"
	"github.com/angelmondragon/freightlink-backend/api/middleware"
	"github.com/angelmondragon/freightlink-backend/internal/authz"
	"github.com/angelmondragon/freightlink-backend/internal/corridors"
	"github.com/angelmondragon/freightlink-backend/internal/loads"
	"github.com/angelmondragon/freightlink-backend/internal/repo"
	"github.com/angelmondragon/freightlink-backend/internal/settlement"
	"github.com/angelmondragon/freightlink-backend/internal/wallets"
	"github.com/angelmondragon/freightlink-backend/pkg/config"
	"github.com/angelmondragon/freightlink-backend/pkg/db"
	"github.com/angelmondragon/freightlink-backend/pkg/logger"
	"github.com/angelmondragon/freightlink-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	metricsHandler http.Handler,
	corridorService corridors.Service,
	walletService wallets.Service,
	settlementService settlement.Service,
	loadService loads.Service,
	loadRepo repo.LoadRepository,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	readiness := map[string]controllers.Pinger{}
	if dbP != nil {
		readiness["db"] = dbP
	}

	// a nil *redis.Client must not leak into the middleware interfaces
	var (
		idempotencyStore redis.IdempotencyStore
		rateLimiter      redis.RateLimiter
	)
	if redisClient != nil {
		readiness["redis"] = redisClient
		idempotencyStore = redisClient
		rateLimiter = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	can := func(capability authz.Capability) func(http.Handler) http.Handler {
		return middleware.RequireCapability(capability, logg)
	}
	writeOnce := middleware.Idempotency(idempotencyStore, middleware.DefaultIdempotencyTTL, logg)
	settleOnce := middleware.Idempotency(idempotencyStore, middleware.SettlementIdempotencyTTL, logg)
	settlementLimit := middleware.RateLimit(
		middleware.NewRateLimitPolicy("settlement", cfg.RateLimit.SettlementWindow, cfg.RateLimit.SettlementLimit),
		rateLimiter,
		logg,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/fees", func(r chi.Router) {
			r.Use(can(authz.CapPreviewFees))
			r.Post("/preview", controllers.FeePreview(cfg.Settlement, logg))
			r.Post("/preview/dual", controllers.DualFeePreview(cfg.Settlement, logg))
		})

		r.With(can(authz.CapReadWallet)).Get("/wallet", controllers.MyWallet(walletService, logg))

		r.Route("/loads/{loadId}", func(r chi.Router) {
			r.Get("/", controllers.GetLoad(loadService, logg))
			r.With(can(authz.CapCheckWallets)).Get("/wallet-check", controllers.LoadWalletCheck(walletService, loadRepo, logg))
			r.With(can(authz.CapAssignCorridor), writeOnce).Post("/corridor", controllers.AssignLoadCorridor(corridorService, logg))
			r.With(can(authz.CapAssignTruck), writeOnce).Post("/assign", controllers.AssignTruck(loadService, logg))
			r.With(can(authz.CapUpdateLoadStatus), writeOnce).Post("/status", controllers.UpdateLoadStatus(loadService, logg))
			r.With(can(authz.CapSubmitPOD), writeOnce).Post("/pod", controllers.SubmitPOD(loadService, logg))
			r.With(can(authz.CapVerifyPOD), writeOnce).Post("/pod/verify", controllers.VerifyPOD(loadService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/corridors", func(r chi.Router) {
			r.Use(can(authz.CapManageCorridors))
			r.Get("/", controllers.AdminListCorridors(corridorService, logg))
			r.With(writeOnce).Post("/", controllers.AdminCreateCorridor(corridorService, logg))
			r.Patch("/{corridorId}", controllers.AdminUpdateCorridor(corridorService, logg))
			r.Delete("/{corridorId}", controllers.AdminDeactivateCorridor(corridorService, logg))
		})

		r.Route("/loads/{loadId}", func(r chi.Router) {
			r.With(can(authz.CapReadSettlementBook)).Get("/journal", controllers.AdminLoadJournal(settlementService, logg))

			r.Route("/settlement", func(r chi.Router) {
				r.With(can(authz.CapDeductServiceFee), settlementLimit, settleOnce).
					Post("/deduct", controllers.AdminDeductServiceFee(settlementService, logg))
				r.With(can(authz.CapRefundServiceFee), settlementLimit, settleOnce).
					Post("/refund", controllers.AdminRefundServiceFee(settlementService, logg))
				r.With(can(authz.CapManageDisputes)).Post("/dispute", controllers.AdminOpenDispute(settlementService, logg))
				r.With(can(authz.CapManageDisputes)).Post("/resolve", controllers.AdminResolveDispute(settlementService, logg))
			})
		})
	})

	return r
}
