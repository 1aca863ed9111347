package httpapi

import (
	"context"
	"net/http"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	DB Pinger
}

func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	type resp struct {
		Status string `json:"status"`
		DB     string `json:"db"`
		Time   string `json:"time"`
	}

	dbStatus := "ok"
	if h.DB == nil {
		dbStatus = "memory"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.DB.Ping(ctx); err != nil {
			dbStatus = "down"
		}
	}

	writeJSON(w, http.StatusOK, resp{
		Status: "ok",
		DB:     dbStatus,
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
