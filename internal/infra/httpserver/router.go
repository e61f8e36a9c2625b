package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalysis "github.com/bryanwahyu/accessibility-checker/internal/application/analysis"
	domain "github.com/bryanwahyu/accessibility-checker/internal/domain/analysis"
	"github.com/bryanwahyu/accessibility-checker/internal/domain/assessment"
	"github.com/bryanwahyu/accessibility-checker/internal/infra/storage"
	"github.com/bryanwahyu/accessibility-checker/internal/middleware"
)

type Router struct {
	svc       *appanalysis.Service
	uploads   *storage.Store
	maxImages int
}

func NewRouter(svc *appanalysis.Service, uploads *storage.Store, maxImages int) http.Handler {
	r := &Router{svc: svc, uploads: uploads, maxImages: maxImages}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/assessments", r.wrap(r.handleRunAssessment))
		rt.Get("/assessments", r.wrap(r.handleList))
		rt.Get("/assessments/latest", r.wrap(r.handleLatest))
		rt.Get("/assessments/{id}", r.wrap(r.handleGet))
		rt.Get("/summary", r.wrap(r.handleSummary))
		rt.Post("/uploads/presign", r.wrap(r.handlePresign))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// requestError carries a caller-fault status through the wrap layer
type requestError struct {
	code int
	err  error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &requestError{code: http.StatusBadRequest, err: err}
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var reqErr *requestError
			if errors.As(err, &reqErr) {
				http.Error(w, reqErr.Error(), reqErr.code)
				return
			}
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, domain.ErrNoImages) || errors.Is(err, domain.ErrInvalidChunkSize) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// POST /v1/{tenant}/assessments
// Body: {"images": [{"bucket": "...", "key": "..."}]}
// Runs the full analysis pipeline synchronously and returns the
// assembled assessment; per-image failures degrade the result instead
// of failing the request.
func (r *Router) handleRunAssessment(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return badRequest(err)
	}

	var body struct {
		Images []struct {
			Bucket string `json:"bucket"`
			Key    string `json:"key"`
		} `json:"images"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest(fmt.Errorf("invalid request body: %w", err))
	}
	if err := middleware.ValidateImageCount(len(body.Images), r.maxImages); err != nil {
		return badRequest(err)
	}

	images := make([]domain.ImageRef, 0, len(body.Images))
	for _, img := range body.Images {
		if err := middleware.ValidateImageRef(img.Bucket, img.Key); err != nil {
			return badRequest(err)
		}
		images = append(images, domain.ImageRef{Bucket: img.Bucket, Key: img.Key})
	}

	middleware.IncrementAssessments()
	middleware.IncrementAssessmentsRunning()
	defer middleware.DecrementAssessmentsRunning()

	a, err := r.svc.RunAssessment(req.Context(), tenant, images)
	if err != nil {
		return err
	}
	middleware.AddImagesAnalyzed(a.AnalyzedImages)
	if a.Status == assessment.StatusDegraded {
		middleware.IncrementAssessmentsDegraded()
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(a)
}

// GET /v1/{tenant}/assessments?page=&page_size=
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return badRequest(err)
	}
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.svc.Paginate(req.Context(), tenant, page, middleware.ValidateLimit(size))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/assessments/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return badRequest(err)
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.svc.Latest(req.Context(), tenant, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/assessments/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return badRequest(err)
	}
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAssessmentID(id); err != nil {
		return badRequest(err)
	}

	a, err := r.svc.Get(req.Context(), tenant, assessment.ID(id))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(a)
}

// GET /v1/{tenant}/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return badRequest(err)
	}
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))

	summary, err := r.svc.Summary(req.Context(), tenant, middleware.ValidateDays(days))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(summary)
}

// POST /v1/{tenant}/uploads/presign
// Body: {"filename": "photo.jpg", "content_type": "image/jpeg"}
func (r *Router) handlePresign(w http.ResponseWriter, req *http.Request) error {
	if r.uploads == nil {
		http.Error(w, "uploads not configured", http.StatusNotImplemented)
		return nil
	}

	var body struct {
		Filename    string `json:"filename"`
		ContentType string `json:"content_type"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest(fmt.Errorf("invalid request body: %w", err))
	}
	if err := storage.ValidateUpload(body.Filename, body.ContentType); err != nil {
		return badRequest(err)
	}

	ticket, err := r.uploads.PresignedUpload(req.Context(), body.Filename, body.ContentType)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(ticket)
}
