package main

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fleetyard/fleetyard/internal/config"
	"github.com/fleetyard/fleetyard/internal/handlers"
	mw "github.com/fleetyard/fleetyard/internal/middleware"
	"github.com/fleetyard/fleetyard/internal/repo"
	"github.com/fleetyard/fleetyard/internal/service"
	"github.com/fleetyard/fleetyard/internal/storage"
	"github.com/fleetyard/fleetyard/internal/vinscan"
)

// newRouter builds the full HTTP surface. Everything under /v1 except auth and
// the VIN proxy requires a valid JWT.
func newRouter(database *sql.DB, store storage.ObjectStore, reports *service.ReportService, cfg config.Config, log *slog.Logger) http.Handler {
	vehicles := service.NewVehicleService(database, store, log)

	authH := &handlers.AuthHandler{
		UserRepo:    repo.NewUserRepo(database),
		Secret:      []byte(cfg.JWTSecret),
		ExpireHours: cfg.JWTExpireHours,
	}
	vehicleH := &handlers.VehicleHandler{Svc: vehicles}
	reportH := &handlers.ReportHandler{Svc: reports}
	vinH := &handlers.VINHandler{Client: vinscan.NewClient(cfg.VINOCRURL)}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(mw.Recoverer)
	r.Use(mw.RequestLog)
	r.Use(mw.Prometheus)
	r.Use(mw.SecurityHeaders(cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""))
	r.Use(mw.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, req *http.Request) {
		if err := database.PingContext(req.Context()); err != nil {
			handlers.JSONError(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.Handler())

	authLimiter := mw.AuthRateLimiter()
	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Use(mw.MaxBytes(mw.DefaultMaxBodyBytes))
			r.Post("/auth/register", authH.Register)
			r.Post("/auth/login", authH.Login)
		})

		// The VIN proxy serves the capture page pre-login, so it sits outside
		// the JWT group. It does its own method and OPTIONS handling.
		r.Handle("/vin/extract", http.HandlerFunc(vinH.Extract))

		r.Group(func(r chi.Router) {
			r.Use(mw.JWTMiddleware([]byte(cfg.JWTSecret)))

			r.Get("/vehicles", vehicleH.List)
			r.With(mw.MaxBytes(mw.UploadMaxBodyBytes)).Post("/vehicles", vehicleH.Register)
			r.Get("/vehicles/{vin}", vehicleH.Get)
			r.With(mw.MaxBytes(mw.UploadMaxBodyBytes)).Post("/vehicles/{vin}/edits", vehicleH.SubmitEdit)
			r.Get("/vehicles/{vin}/events", vehicleH.ListEvents)
			r.Get("/vehicles/{vin}/comments/latest", vehicleH.LatestComment)

			r.Get("/reports/on-demand", reportH.OnDemand)
			r.Post("/reports/on-demand", reportH.OnDemand)
			r.Get("/reports/latest", reportH.Latest)
			r.Post("/reports/run", reportH.Run)
		})
	})

	return r
}
