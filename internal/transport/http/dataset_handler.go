package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "trendapi/internal/errors"
	"trendapi/pkg/contracts/domain"
)

const (
	// uploadField is the multipart form field carrying the file
	uploadField = "file"

	// multipartMemory is kept in memory before parts spill to temp files
	multipartMemory = 8 << 20
)

// DatasetHandler handles upload, listing, deletion and analysis of datasets
type DatasetHandler struct {
	service        DatasetServiceInterface
	maxUploadBytes int64
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// NewDatasetHandler creates a dataset handler. maxUploadBytes <= 0 disables
// the request body limit.
func NewDatasetHandler(service DatasetServiceInterface, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	return &DatasetHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "dataset_handler")),
		errorHandler:   errorHandler,
	}
}

// Routes mounts the dataset endpoints on r
func (h *DatasetHandler) Routes(r chi.Router) {
	r.Post("/upload", h.Upload)
	r.Post("/analyze/{dataset_id}", h.Analyze)

	r.Route("/datasets", func(r chi.Router) {
		r.Get("/", h.List)
		r.Delete("/{dataset_id}", h.Delete)
	})
}

// Upload handles POST /api/upload
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.errorHandler.HandleError(w, r, maxBytesErr)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			h.errorHandler.HandleError(w, r, apierrors.MissingParameter(uploadField))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	h.logger.DebugContext(ctx, "upload received",
		slog.String("request_id", middleware.GetReqID(ctx)),
		slog.String("filename", header.Filename),
		slog.Int("size", len(data)))

	result, err := h.service.Upload(ctx, header.Filename, data)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

// Analyze handles POST /api/analyze/{dataset_id}
func (h *DatasetHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "dataset_id")
	opts := domain.AnalyzeOptions{Query: r.URL.Query().Get("query")}

	result, err := h.service.Analyze(r.Context(), id, opts)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

// List handles GET /api/datasets
func (h *DatasetHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, list)
}

// Delete handles DELETE /api/datasets/{dataset_id}
func (h *DatasetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "dataset_id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, domain.DeleteResult{Message: domain.DatasetDeletedMessage})
}
