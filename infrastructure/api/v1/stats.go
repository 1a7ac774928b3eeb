package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/raglet/raglet/application/service"
	"github.com/raglet/raglet/infrastructure/api/middleware"
	"github.com/raglet/raglet/infrastructure/api/v1/dto"
)

// StatsRouter handles the system counters endpoint.
type StatsRouter struct {
	stats  *service.StatsService
	logger *slog.Logger
}

// NewStatsRouter creates a new StatsRouter.
func NewStatsRouter(stats *service.StatsService, logger *slog.Logger) *StatsRouter {
	return &StatsRouter{
		stats:  stats,
		logger: logger,
	}
}

// Routes returns the chi router for stats endpoints.
func (r *StatsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.Stats)

	return router
}

// Stats handles GET /api/v1/stats.
func (r *StatsRouter) Stats(w http.ResponseWriter, req *http.Request) {
	snapshot, err := r.stats.Snapshot(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.StatsResponse{
		Documents:   snapshot.Documents,
		PendingJobs: snapshot.PendingJobs,
		Vectors:     snapshot.Vectors,
		VectorDim:   snapshot.VectorDim,
	})
}
