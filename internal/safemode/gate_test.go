package safemode

import (
	"net/http/httptest"
	"testing"

	"github.com/PabloPavan/sniply_inject/internal/auth"
)

func TestGateForced(t *testing.T) {
	g := &Gate{Forced: true}
	if !g.Active(httptest.NewRequest("GET", "/", nil)) {
		t.Fatal("forced safe mode should always be active")
	}
}

func TestGateParamRequiresAdmin(t *testing.T) {
	g := &Gate{}
	r := httptest.NewRequest("GET", "/?sniply-safe-mode=1", nil)
	if g.Active(r) {
		t.Fatal("anonymous visitors must not enable safe mode")
	}

	r = r.WithContext(auth.WithPrincipal(r.Context(), auth.Principal{ID: "admin_0", Role: auth.RoleAdmin}))
	if !g.Active(r) {
		t.Fatal("admin with parameter should enable safe mode")
	}
}

func TestGateParamValue(t *testing.T) {
	g := &Gate{Param: "safe"}
	r := httptest.NewRequest("GET", "/?safe=true", nil)
	r = r.WithContext(auth.WithPrincipal(r.Context(), auth.Principal{ID: "admin_0", Role: auth.RoleAdmin}))
	if g.Active(r) {
		t.Fatal("only the value 1 enables safe mode")
	}
}

func TestNilGate(t *testing.T) {
	var g *Gate
	if g.Active(httptest.NewRequest("GET", "/", nil)) {
		t.Fatal("nil gate should be inactive")
	}
}
