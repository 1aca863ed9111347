// Package safemode is the operator kill switch for snippet execution.
package safemode

import (
	"net/http"

	"github.com/PabloPavan/sniply_inject/internal/auth"
)

const DefaultParam = "sniply-safe-mode"

type Gate struct {
	// Forced turns safe mode on for every request.
	Forced bool
	// Param is the query parameter an authenticated admin sets to "1".
	Param string
	// SuppressInjection also disables the static header/footer code.
	SuppressInjection bool
}

// Active is evaluated once per request.
func (g *Gate) Active(r *http.Request) bool {
	if g == nil {
		return false
	}
	if g.Forced {
		return true
	}
	param := g.Param
	if param == "" {
		param = DefaultParam
	}
	if r == nil || r.URL.Query().Get(param) != "1" {
		return false
	}
	return auth.IsAdmin(r.Context())
}
