package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/PabloPavan/sniply_inject/internal/snippets"
)

type SnippetsService interface {
	Create(ctx context.Context, req snippets.CreateSnippetRequest) (*snippets.Snippet, error)
	GetByID(ctx context.Context, id string) (*snippets.Snippet, error)
	List(ctx context.Context, input snippets.ListInput) ([]*snippets.Snippet, error)
	ListByLocation(ctx context.Context, location string) ([]*snippets.Snippet, error)
	Update(ctx context.Context, id string, req snippets.CreateSnippetRequest) (*snippets.Snippet, error)
	SetActive(ctx context.Context, id string, active bool) error
	Toggle(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type SnippetsHandler struct {
	Service SnippetsService
}

type activeResponse struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeSnippet(w http.ResponseWriter, r *http.Request) (*SnippetWriteDTO, bool) {
	var req SnippetWriteDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return nil, false
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

// Create Snippet
// @Summary Create snippet
// @Tags snippets
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body SnippetWriteDTO true "snippet"
// @Success 201 {object} snippets.Snippet
// @Failure 400 {string} string
// @Failure 401 {string} string
// @Failure 409 {string} string
// @Failure 500 {string} string
// @Router /snippets [post]
func (h *SnippetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSnippet(w, r)
	if !ok {
		return
	}

	snippet, err := h.Service.Create(r.Context(), req.toRequest())
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, snippet)
}

// GetByID Snippet
// @Summary Get snippet by id
// @Tags snippets
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "snippet id"
// @Success 200 {object} snippets.Snippet
// @Failure 400 {string} string
// @Failure 404 {string} string
// @Failure 500 {string} string
// @Router /snippets/{id} [get]
func (h *SnippetsHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	snippet, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippet)
}

// List Snippets
// @Summary List snippets
// @Tags snippets
// @Produce json
// @Security ApiKeyAuth
// @Param active query bool false "active state"
// @Param location query string false "head, footer, everywhere or custom"
// @Param code_type query string false "php, js or css"
// @Success 200 {array} snippets.Snippet
// @Failure 400 {string} string
// @Failure 401 {string} string
// @Failure 500 {string} string
// @Router /snippets [get]
func (h *SnippetsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := snippets.ListInput{
		Location: strings.TrimSpace(q.Get("location")),
		CodeType: strings.TrimSpace(q.Get("code_type")),
	}
	if raw := strings.TrimSpace(q.Get("active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "invalid active", http.StatusBadRequest)
			return
		}
		input.Active = &active
	}

	list, err := h.Service.List(r.Context(), input)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// ListByLocation Snippets
// @Summary List snippets bound to a location
// @Tags snippets
// @Produce json
// @Security ApiKeyAuth
// @Param location path string true "head, footer, everywhere or custom"
// @Success 200 {array} snippets.Snippet
// @Failure 400 {string} string
// @Failure 401 {string} string
// @Failure 500 {string} string
// @Router /locations/{location}/snippets [get]
func (h *SnippetsHandler) ListByLocation(w http.ResponseWriter, r *http.Request) {
	location := strings.TrimSpace(chi.URLParam(r, "location"))

	list, err := h.Service.ListByLocation(r.Context(), location)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// Update Snippet
// @Summary Replace snippet
// @Tags snippets
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "snippet id"
// @Param body body SnippetWriteDTO true "snippet"
// @Success 200 {object} snippets.Snippet
// @Failure 400 {string} string
// @Failure 401 {string} string
// @Failure 404 {string} string
// @Failure 500 {string} string
// @Router /snippets/{id} [put]
func (h *SnippetsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	req, ok := decodeSnippet(w, r)
	if !ok {
		return
	}

	snippet, err := h.Service.Update(r.Context(), id, req.toRequest())
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippet)
}

// SetActive Snippet
// @Summary Activate or deactivate snippet
// @Tags snippets
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "snippet id"
// @Param body body SnippetActiveDTO true "state"
// @Success 200 {object} activeResponse
// @Failure 400 {string} string
// @Failure 401 {string} string
// @Failure 404 {string} string
// @Failure 500 {string} string
// @Router /snippets/{id}/active [put]
func (h *SnippetsHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	var req SnippetActiveDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Service.SetActive(r.Context(), id, *req.Active); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, activeResponse{ID: id, Active: *req.Active})
}

// Toggle Snippet
// @Summary Flip snippet active state
// @Tags snippets
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "snippet id"
// @Success 200 {object} activeResponse
// @Failure 401 {string} string
// @Failure 404 {string} string
// @Failure 500 {string} string
// @Router /snippets/{id}/toggle [post]
func (h *SnippetsHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	active, err := h.Service.Toggle(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, activeResponse{ID: id, Active: active})
}

// Delete Snippet
// @Summary Delete snippet
// @Tags snippets
// @Security ApiKeyAuth
// @Param id path string true "snippet id"
// @Success 204
// @Failure 400 {string} string
// @Failure 401 {string} string
// @Failure 404 {string} string
// @Failure 500 {string} string
// @Router /snippets/{id} [delete]
func (h *SnippetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
