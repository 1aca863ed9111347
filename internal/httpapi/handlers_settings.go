package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/PabloPavan/sniply_inject/internal/safemode"
	"github.com/PabloPavan/sniply_inject/internal/settings"
)

type SettingsService interface {
	HeaderFooter(ctx context.Context) (settings.HeaderFooter, error)
	SaveHeaderFooter(ctx context.Context, hf settings.HeaderFooter) error
}

type SettingsHandler struct {
	Service  SettingsService
	SafeMode *safemode.Gate
}

type safeModeResponse struct {
	Active            bool `json:"active"`
	Forced            bool `json:"forced"`
	SuppressInjection bool `json:"suppress_header_footer"`
}

// GetHeaderFooter
// @Summary Get header and footer code
// @Tags settings
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} settings.HeaderFooter
// @Failure 401 {string} string
// @Failure 500 {string} string
// @Router /settings/header-footer [get]
func (h *SettingsHandler) GetHeaderFooter(w http.ResponseWriter, r *http.Request) {
	hf, err := h.Service.HeaderFooter(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hf)
}

// PutHeaderFooter
// @Summary Save header and footer code
// @Tags settings
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body HeaderFooterDTO true "code"
// @Success 200 {object} settings.HeaderFooter
// @Failure 400 {string} string
// @Failure 401 {string} string
// @Failure 500 {string} string
// @Router /settings/header-footer [put]
func (h *SettingsHandler) PutHeaderFooter(w http.ResponseWriter, r *http.Request) {
	var req HeaderFooterDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	hf := req.toSettings()
	if err := h.Service.SaveHeaderFooter(r.Context(), hf); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hf)
}

// GetSafeMode
// @Summary Report whether safe mode is active for this request
// @Tags settings
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} safeModeResponse
// @Failure 401 {string} string
// @Router /safe-mode [get]
func (h *SettingsHandler) GetSafeMode(w http.ResponseWriter, r *http.Request) {
	resp := safeModeResponse{Active: h.SafeMode.Active(r)}
	if h.SafeMode != nil {
		resp.Forced = h.SafeMode.Forced
		resp.SuppressInjection = h.SafeMode.SuppressInjection
	}
	writeJSON(w, http.StatusOK, resp)
}
