package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/raglet/raglet/application/service"
	"github.com/raglet/raglet/infrastructure/api/middleware"
	"github.com/raglet/raglet/infrastructure/api/v1/dto"
)

// QueryRouter handles question answering endpoints.
type QueryRouter struct {
	query  *service.Query
	logger *slog.Logger
}

// NewQueryRouter creates a new QueryRouter.
func NewQueryRouter(query *service.Query, logger *slog.Logger) *QueryRouter {
	return &QueryRouter{
		query:  query,
		logger: logger,
	}
}

// Routes returns the chi router for query endpoints.
func (r *QueryRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Query)

	return router
}

// Query handles POST /api/v1/query. A top_k of zero selects the configured
// default; out-of-range values are rejected.
func (r *QueryRouter) Query(w http.ResponseWriter, req *http.Request) {
	var body dto.QueryRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteBadRequest(w, "Request body is required")
		return
	}

	result, err := r.query.Ask(req.Context(), body.Query, body.TopK)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	sources := make([]dto.SourceChunk, len(result.Sources))
	for i, src := range result.Sources {
		sources[i] = dto.SourceChunk{
			Content:    src.Content,
			Distance:   src.Distance,
			ChunkIndex: src.ChunkIndex,
		}
	}
	middleware.WriteJSON(w, http.StatusOK, dto.QueryResponse{
		Query:   result.Query,
		Answer:  result.Answer,
		Sources: sources,
		Model:   result.Model,
	})
}
