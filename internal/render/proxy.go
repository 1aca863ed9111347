package render

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"

	"github.com/PabloPavan/sniply_inject/internal/auth"
	"github.com/PabloPavan/sniply_inject/internal/dispatch"
	"github.com/PabloPavan/sniply_inject/internal/telemetry"
)

type pageStateKey struct{}

type pageState struct {
	surface dispatch.Surface
	safe    bool
}

// Proxy forwards requests to the upstream site and runs the page lifecycle
// on every HTML response.
type Proxy struct {
	Lifecycle       *Lifecycle
	AdminPathPrefix string

	rp *httputil.ReverseProxy
}

func NewProxy(upstream *url.URL, lc *Lifecycle, adminPathPrefix string, transport http.RoundTripper) *Proxy {
	p := &Proxy{
		Lifecycle:       lc,
		AdminPathPrefix: adminPathPrefix,
	}
	p.rp = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(upstream)
			pr.SetXForwarded()
			// bodies are rewritten, so ask for them uncompressed
			pr.Out.Header.Del("Accept-Encoding")
			pr.Out.Header.Del("X-API-Key")
			if auth.BearerCredential(pr.In.Context()) {
				pr.Out.Header.Del("Authorization")
			}
		},
		Transport:      transport,
		ModifyResponse: p.modifyResponse,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			telemetry.LogError(r.Context(), "upstream request failed",
				telemetry.LogString("http.target", r.URL.Path),
				telemetry.LogErr(err),
			)
			http.Error(w, "bad gateway", http.StatusBadGateway)
		},
	}
	return p
}

func (p *Proxy) surface(r *http.Request) dispatch.Surface {
	if p.AdminPathPrefix != "" && strings.HasPrefix(r.URL.Path, p.AdminPathPrefix) {
		return dispatch.SurfaceAdmin
	}
	return dispatch.SurfaceFrontend
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	state := &pageState{
		surface: p.surface(r),
		safe:    p.Lifecycle.SafeMode.Active(r),
	}
	ctx := context.WithValue(r.Context(), pageStateKey{}, state)
	p.rp.ServeHTTP(w, r.WithContext(ctx))
}

func (p *Proxy) modifyResponse(resp *http.Response) error {
	if !rewritable(resp) {
		return nil
	}
	ctx := resp.Request.Context()
	state, ok := ctx.Value(pageStateKey{}).(*pageState)
	if !ok {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return err
	}

	ctx, span := telemetry.StartSpan(ctx, "page.render")
	defer span.End()

	page := p.Lifecycle.Begin(ctx, state.surface, state.safe)
	out := page.Rewrite(ctx, body)

	resp.Body = io.NopCloser(bytes.NewReader(out))
	resp.ContentLength = int64(len(out))
	resp.Header.Set("Content-Length", strconv.Itoa(len(out)))
	resp.Header.Del("ETag")
	if state.safe {
		resp.Header.Set("X-Sniply-Safe-Mode", "1")
	}

	telemetry.LogDebug(ctx, "page rendered",
		telemetry.LogString("page.surface", string(state.surface)),
		telemetry.LogBool("page.safe", state.safe),
		telemetry.LogInt("page.bytes_added", len(out)-len(body)),
	)
	return nil
}

func rewritable(resp *http.Response) bool {
	if resp.Request != nil && resp.Request.Method == http.MethodHead {
		return false
	}
	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotModified {
		return false
	}
	if ce := strings.TrimSpace(resp.Header.Get("Content-Encoding")); ce != "" && !strings.EqualFold(ce, "identity") {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return err == nil && mediaType == "text/html"
}
