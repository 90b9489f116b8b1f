package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/fundament-gl/fundament/internal/ledger/accounts"
	"github.com/fundament-gl/fundament/internal/ledger/funds"
	"github.com/fundament-gl/fundament/internal/ledger/journals"
	"github.com/fundament-gl/fundament/internal/ledger/periods"
	"github.com/fundament-gl/fundament/internal/ledger/reports"
	"github.com/fundament-gl/fundament/internal/observability"
	"github.com/fundament-gl/fundament/internal/org"
	"github.com/fundament-gl/fundament/internal/subsystems"
	"github.com/fundament-gl/fundament/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	AccountsHandler   *accounts.Handler
	FundsHandler      *funds.Handler
	OrgHandler        *org.Handler
	PeriodsHandler    *periods.Handler
	JournalsHandler   *journals.Handler
	ReportsHandler    *reports.Handler
	SubsystemsHandler *subsystems.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with the service defaults.
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

	if params.AccountsHandler != nil {
		r.Route("/accounts", params.AccountsHandler.MountRoutes)
	}
	if params.FundsHandler != nil {
		r.Route("/funds", params.FundsHandler.MountRoutes)
	}
	if params.OrgHandler != nil {
		r.Route("/org", params.OrgHandler.MountRoutes)
	}
	if params.PeriodsHandler != nil {
		r.Route("/calendar", params.PeriodsHandler.MountRoutes)
	}
	if params.JournalsHandler != nil {
		r.Route("/journal-entries", params.JournalsHandler.MountRoutes)
	}
	if params.ReportsHandler != nil {
		r.Route("/reports", params.ReportsHandler.MountRoutes)
	}
	if params.SubsystemsHandler != nil {
		r.Route("/subsystems", params.SubsystemsHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
