// Package v1 implements the v1 HTTP API handlers.
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

// IngestRouter handles URL ingestion endpoints.
type IngestRouter struct {
	ingestor *service.Ingestor
	logger   *slog.Logger
}

// NewIngestRouter creates a new IngestRouter.
func NewIngestRouter(ingestor *service.Ingestor, logger *slog.Logger) *IngestRouter {
	return &IngestRouter{
		ingestor: ingestor,
		logger:   logger,
	}
}

// Routes returns the chi router for ingestion endpoints.
func (r *IngestRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Ingest)

	return router
}

// Ingest handles POST /api/v1/ingest-url. A new, pending, or failed URL is
// queued and answered with 202; an already ingested or in-flight URL gets
// 200 without queueing new work.
func (r *IngestRouter) Ingest(w http.ResponseWriter, req *http.Request) {
	var body dto.IngestRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteBadRequest(w, "Request body is required")
		return
	}

	result, err := r.ingestor.Accept(req.Context(), body.URL)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	doc := result.Document
	switch result.Outcome {
	case service.OutcomeAlreadyIngested:
		count := doc.ChunkCount()
		middleware.WriteJSON(w, http.StatusOK, dto.IngestResponse{
			Message:    "URL already ingested",
			URL:        doc.URL(),
			Status:     doc.Status().String(),
			ChunkCount: &count,
		})
	case service.OutcomeProcessing:
		middleware.WriteJSON(w, http.StatusAccepted, dto.IngestResponse{
			Message: "URL is currently being processed",
			URL:     doc.URL(),
			Status:  doc.Status().String(),
		})
	default:
		middleware.WriteJSON(w, http.StatusAccepted, dto.IngestResponse{
			Message: "URL ingestion job accepted",
			URL:     doc.URL(),
			Status:  doc.Status().String(),
		})
	}
}
