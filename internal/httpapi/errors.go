package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/PabloPavan/sniply_inject/internal/apperrors"
)

type errorMapping struct {
	status int
	// fallback is used when the error carries no message.
	fallback string
}

var kindMappings = map[apperrors.Kind]errorMapping{
	apperrors.KindInvalidInput: {http.StatusBadRequest, "invalid request"},
	apperrors.KindUnauthorized: {http.StatusUnauthorized, "unauthorized"},
	apperrors.KindNotFound:     {http.StatusNotFound, "not found"},
	apperrors.KindConflict:     {http.StatusConflict, "conflict"},
	apperrors.KindRateLimited:  {http.StatusTooManyRequests, "too many requests"},
}

// writeAppError maps service errors onto plain-text responses. Internal
// errors never expose their message.
func writeAppError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	kind := apperrors.KindOf(err)
	mapping, ok := kindMappings[kind]
	if !ok {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var appErr *apperrors.Error
	msg := mapping.fallback
	if errors.As(err, &appErr) {
		if appErr.Message != "" {
			msg = appErr.Message
		}
		if kind == apperrors.KindRateLimited && appErr.RetryAfter > 0 {
			seconds := int(appErr.RetryAfter.Seconds())
			if seconds <= 0 {
				seconds = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
		}
	}
	http.Error(w, msg, mapping.status)
}
