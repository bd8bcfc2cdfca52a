package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/meridian-club/meridian/internal/audit"
	"github.com/meridian-club/meridian/internal/auth"
	"github.com/meridian-club/meridian/internal/authz"
	"github.com/meridian-club/meridian/internal/joblisting"
	"github.com/meridian-club/meridian/internal/messaging"
	"github.com/meridian-club/meridian/internal/observability"
	"github.com/meridian-club/meridian/internal/period"
	"github.com/meridian-club/meridian/internal/prizedraw"
	"github.com/meridian-club/meridian/internal/scamreport"
	"github.com/meridian-club/meridian/internal/verification"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	AuthzMiddleware     authz.Middleware
	AuthHandler         *auth.Handler
	PeriodHandler       *period.Handler
	VerificationHandler *verification.Handler
	ScamReportHandler   *scamreport.Handler
	JobListingHandler   *joblisting.Handler
	PrizeDrawHandler    *prizedraw.Handler
	MessagingHandler    *messaging.Handler
	AuditHandler        *audit.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router with Meridian defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Route("/api", func(r chi.Router) {
		r.Use(params.AuthzMiddleware.RequirePrincipal)

		if params.PeriodHandler != nil {
			r.Route("/periods", params.PeriodHandler.MountRoutes)
		}
		if params.VerificationHandler != nil {
			r.Route("/verifications", params.VerificationHandler.MountRoutes)
		}
		if params.ScamReportHandler != nil {
			r.Route("/scam-reports", params.ScamReportHandler.MountRoutes)
		}
		if params.JobListingHandler != nil {
			r.Route("/job-listings", params.JobListingHandler.MountRoutes)
		}
		if params.PrizeDrawHandler != nil {
			r.Route("/prize-draws", params.PrizeDrawHandler.MountRoutes)
		}
		if params.MessagingHandler != nil {
			r.Route("/conversations", params.MessagingHandler.MountRoutes)
		}
		if params.AuditHandler != nil {
			r.Route("/audit", func(r chi.Router) {
				r.Use(params.AuthzMiddleware.Require(authz.ActionAuditView))
				params.AuditHandler.MountRoutes(r)
			})
		}
	})

	return r
}
