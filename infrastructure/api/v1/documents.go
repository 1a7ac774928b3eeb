package v1

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/raglet/raglet/application/service"
	"github.com/raglet/raglet/domain/document"
	"github.com/raglet/raglet/infrastructure/api/middleware"
	"github.com/raglet/raglet/infrastructure/api/v1/dto"
)

// defaultPageSize bounds unpaginated document listings.
const defaultPageSize = 50

// DocumentsRouter handles document inspection endpoints.
type DocumentsRouter struct {
	ingestor *service.Ingestor
	stats    *service.StatsService
	logger   *slog.Logger
}

// NewDocumentsRouter creates a new DocumentsRouter.
func NewDocumentsRouter(ingestor *service.Ingestor, stats *service.StatsService, logger *slog.Logger) *DocumentsRouter {
	return &DocumentsRouter{
		ingestor: ingestor,
		stats:    stats,
		logger:   logger,
	}
}

// Routes returns the chi router for document endpoints.
func (r *DocumentsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Get("/{id}", r.Get)

	return router
}

// List handles GET /api/v1/documents with optional limit/offset parameters.
func (r *DocumentsRouter) List(w http.ResponseWriter, req *http.Request) {
	limit := queryInt(req, "limit", defaultPageSize)
	offset := queryInt(req, "offset", 0)

	docs, err := r.ingestor.List(req.Context(), limit, offset)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	stats, err := r.stats.Snapshot(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	out := make([]dto.DocumentResponse, len(docs))
	for i, doc := range docs {
		out[i] = toDocumentResponse(doc)
	}
	middleware.WriteJSON(w, http.StatusOK, dto.DocumentListResponse{
		Documents: out,
		Total:     stats.Documents,
	})
}

// Get handles GET /api/v1/documents/{id}.
func (r *DocumentsRouter) Get(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	if err != nil {
		middleware.WriteBadRequest(w, "Invalid document id")
		return
	}

	doc, err := r.ingestor.Get(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toDocumentResponse(doc))
}

func toDocumentResponse(doc document.Document) dto.DocumentResponse {
	return dto.DocumentResponse{
		ID:            doc.ID(),
		URL:           doc.URL(),
		Title:         doc.Title(),
		Status:        doc.Status().String(),
		ContentLength: doc.ContentLength(),
		ChunkCount:    doc.ChunkCount(),
		ErrorMessage:  doc.ErrorMessage(),
		CreatedAt:     doc.CreatedAt(),
		UpdatedAt:     doc.UpdatedAt(),
		CompletedAt:   doc.CompletedAt(),
	}
}

func queryInt(req *http.Request, name string, fallback int) int {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
