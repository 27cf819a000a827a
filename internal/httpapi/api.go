// Package httpapi exposes the presentation service over HTTP. Routes are
// registered on a net/http ServeMux using method+pattern handlers.
package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/slidekit/layout/internal/logging"
	"github.com/slidekit/layout/internal/presentations"
	"github.com/slidekit/layout/pkg/interfaces"
)

// API registers the presentation endpoints.
type API struct {
	basePath string
	store    presentations.Service
	ledger   presentations.LedgerService
	logger   interfaces.Logger
}

// Option mutates the API configuration.
type Option func(*API)

// NewAPI constructs an API instance.
func NewAPI(opts ...Option) *API {
	api := &API{
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath prefixes every route (defaults to the root).
func WithBasePath(path string) Option {
	return func(api *API) {
		if api == nil {
			return
		}
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithStoreService wires the presentation document service.
func WithStoreService(service presentations.Service) Option {
	return func(api *API) {
		if api != nil {
			api.store = service
		}
	}
}

// WithLedgerService wires the version ledger service.
func WithLedgerService(service presentations.LedgerService) Option {
	return func(api *API) {
		if api != nil {
			api.ledger = service
		}
	}
}

// WithLogger attaches the HTTP module logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(api *API) {
		if api != nil && logger != nil {
			api.logger = logger
		}
	}
}

// Register attaches the endpoints to the provided mux.
func (api *API) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("httpapi: mux is required")
	}
	if api.store == nil || api.ledger == nil {
		return fmt.Errorf("httpapi: store and ledger services are required")
	}

	root := joinPath(api.basePath, "presentations")
	mux.HandleFunc("POST "+root, api.handleCreate)
	mux.HandleFunc("GET "+root+"/{id}", api.handleGet)
	mux.HandleFunc("PUT "+root+"/{id}/slides/{index}", api.handleUpdateSlide)
	mux.HandleFunc("GET "+root+"/{id}/versions", api.handleListVersions)
	mux.HandleFunc("POST "+root+"/{id}/restore/{versionId}", api.handleRestore)
	mux.HandleFunc("DELETE "+root+"/{id}", api.handleDelete)
	return nil
}

type slidePayload struct {
	Layout          string         `json:"layout"`
	Content         map[string]any `json:"content,omitempty"`
	BackgroundColor string         `json:"background_color,omitempty"`
	BackgroundImage string         `json:"background_image,omitempty"`
}

type createPayload struct {
	Title     string         `json:"title"`
	Slides    []slidePayload `json:"slides"`
	CreatedBy string         `json:"created_by,omitempty"`
}

type createResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (api *API) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload createPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid JSON payload"})
		return
	}

	slides := make([]presentations.Slide, len(payload.Slides))
	for i, s := range payload.Slides {
		slides[i] = presentations.Slide{
			Layout:          s.Layout,
			Content:         s.Content,
			BackgroundColor: s.BackgroundColor,
			BackgroundImage: s.BackgroundImage,
		}
	}

	result, err := api.store.Create(r.Context(), presentations.CreateRequest{
		Title:     payload.Title,
		Slides:    slides,
		CreatedBy: payload.CreatedBy,
	})
	if err != nil {
		api.logger.Debug("create rejected", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createResponse{
		ID:  result.Presentation.ID.String(),
		URL: result.ShareURL,
	})
}

func (api *API) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	record, err := api.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

type updateSlidePayload struct {
	Layout          *string        `json:"layout,omitempty"`
	Content         map[string]any `json:"content,omitempty"`
	BackgroundColor *string        `json:"background_color,omitempty"`
	BackgroundImage *string        `json:"background_image,omitempty"`
	UpdatedBy       string         `json:"updated_by,omitempty"`
	ChangeSummary   *string        `json:"change_summary,omitempty"`
	SkipVersion     bool           `json:"skip_version,omitempty"`
}

func (api *API) handleUpdateSlide(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "slide index must be an integer"})
		return
	}

	var payload updateSlidePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid JSON payload"})
		return
	}

	record, err := api.store.UpdateSlide(r.Context(), id, index, presentations.UpdateSlideRequest{
		Patch: presentations.SlidePatch{
			Layout:          payload.Layout,
			Content:         payload.Content,
			BackgroundColor: payload.BackgroundColor,
			BackgroundImage: payload.BackgroundImage,
		},
		UpdatedBy:     payload.UpdatedBy,
		ChangeSummary: payload.ChangeSummary,
		SkipVersion:   payload.SkipVersion,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

type versionsResponse struct {
	Versions []presentations.VersionMeta `json:"versions"`
}

func (api *API) handleListVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	metas, err := api.ledger.ListVersions(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if metas == nil {
		metas = []presentations.VersionMeta{}
	}
	writeJSON(w, http.StatusOK, versionsResponse{Versions: metas})
}

type restorePayload struct {
	CreateBackup *bool  `json:"createBackup,omitempty"`
	RestoredBy   string `json:"restored_by,omitempty"`
}

func (api *API) handleRestore(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	versionID := r.PathValue("versionId")

	payload := restorePayload{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeJSON(r, &payload); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid JSON payload"})
			return
		}
	}

	record, err := api.ledger.Restore(r.Context(), id, versionID, presentations.RestoreRequest{
		CreateBackup: payload.CreateBackup,
		RestoredBy:   payload.RestoredBy,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

type deleteResponse struct {
	Success bool `json:"success"`
}

func (api *API) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	deleted, err := api.store.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Success: deleted})
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "presentation id must be a UUID"})
		return uuid.Nil, false
	}
	return id, true
}
