package render

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PabloPavan/sniply_inject/internal/auth"
	"github.com/PabloPavan/sniply_inject/internal/dispatch"
	"github.com/PabloPavan/sniply_inject/internal/executor"
	"github.com/PabloPavan/sniply_inject/internal/httpapi"
	"github.com/PabloPavan/sniply_inject/internal/safemode"
	"github.com/PabloPavan/sniply_inject/internal/settings"
	"github.com/PabloPavan/sniply_inject/internal/snippets"
)

const doc = `<!DOCTYPE html><html><head><title>t</title></head><body class="home"><p>hi</p><!-- sniply:hook checkout --></body></html>`

type fixture struct {
	snippets  *snippets.MemoryStore
	settings  *settings.MemoryStore
	gate      *safemode.Gate
	lifecycle *Lifecycle
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	snStore := snippets.NewMemoryStore()
	setStore := settings.NewMemoryStore()
	gate := &safemode.Gate{SuppressInjection: true}

	ex := executor.New(executor.Options{TempDir: t.TempDir()})
	ex.Runners[snippets.CodeTypePHP] = &executor.TempFileRunner{
		Dir: t.TempDir(),
		Includer: executor.IncluderFunc(func(ctx context.Context, path string, w io.Writer) error {
			_, err := io.WriteString(w, "<i>php</i>")
			return err
		}),
	}

	return &fixture{
		snippets: snStore,
		settings: setStore,
		gate:     gate,
		lifecycle: &Lifecycle{
			Engine:   &dispatch.Engine{Store: snStore, Executor: ex},
			Injector: &settings.Injector{Store: setStore},
			SafeMode: gate,
		},
	}
}

func (f *fixture) add(t *testing.T, s *snippets.Snippet) {
	t.Helper()
	if err := f.snippets.Create(context.Background(), s); err != nil {
		t.Fatalf("create: %v", err)
	}
}

func split(t *testing.T, out string) (head, body string) {
	t.Helper()
	i := strings.Index(out, "</head>")
	if i < 0 {
		t.Fatalf("no head in %q", out)
	}
	return out[:i], out[i:]
}

func TestEverywhereCSSAppearsOnlyInHead(t *testing.T) {
	f := newFixture(t)
	f.add(t, &snippets.Snippet{ID: "css", Code: "a{}", CodeType: snippets.CodeTypeCSS, Location: snippets.LocationEverywhere, Active: true})

	page := f.lifecycle.Begin(context.Background(), dispatch.SurfaceFrontend, false)
	out := string(page.Rewrite(context.Background(), []byte(doc)))

	head, body := split(t, out)
	if !strings.Contains(head, "<style>\na{}\n</style>\n") {
		t.Fatalf("style block missing from head: %q", head)
	}
	if strings.Contains(body, "<style>") {
		t.Fatalf("style block leaked into body: %q", body)
	}
}

func TestRewritePlacesEveryPoint(t *testing.T) {
	f := newFixture(t)
	f.add(t, &snippets.Snippet{ID: "php", Code: "x", CodeType: snippets.CodeTypePHP, Location: snippets.LocationEverywhere, Active: true})
	f.add(t, &snippets.Snippet{ID: "js", Code: "f()", CodeType: snippets.CodeTypeJS, Location: snippets.LocationFooter, Active: true})
	f.add(t, &snippets.Snippet{ID: "cust", Code: "c()", CodeType: snippets.CodeTypeJS, Location: snippets.LocationCustom, CustomHook: "checkout", Active: true})
	_ = f.settings.Set(context.Background(), settings.KeyHeaderCode, `<meta name="h">`)

	page := f.lifecycle.Begin(context.Background(), dispatch.SurfaceFrontend, false)
	out := string(page.Rewrite(context.Background(), []byte(doc)))

	for _, want := range []string{
		`<body class="home"><i>php</i><p>hi</p>`,
		"<!-- Sniply - Header -->\n<meta name=\"h\">\n<!-- /Sniply - Header -->\n</head>",
		"<script>\nc()\n</script>\n<script>\nf()\n</script>\n</body>",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in\n%s", want, out)
		}
	}
	if strings.Contains(out, "sniply:hook") {
		t.Fatalf("hook marker left in output: %s", out)
	}
}

func TestRewriteWithoutBodyPrependsInitOutput(t *testing.T) {
	f := newFixture(t)
	f.add(t, &snippets.Snippet{ID: "php", Code: "x", CodeType: snippets.CodeTypePHP, Location: snippets.LocationEverywhere, Active: true})

	page := f.lifecycle.Begin(context.Background(), dispatch.SurfaceFrontend, false)
	out := string(page.Rewrite(context.Background(), []byte("<p>fragment</p>")))
	if out != "<i>php</i><p>fragment</p>" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRewriteWithOmittedEndTags(t *testing.T) {
	f := newFixture(t)
	f.add(t, &snippets.Snippet{ID: "head", Code: "h{}", CodeType: snippets.CodeTypeCSS, Location: snippets.LocationHead, Active: true})
	f.add(t, &snippets.Snippet{ID: "css", Code: "e{}", CodeType: snippets.CodeTypeCSS, Location: snippets.LocationEverywhere, Active: true})
	f.add(t, &snippets.Snippet{ID: "foot", Code: "f()", CodeType: snippets.CodeTypeJS, Location: snippets.LocationFooter, Active: true})
	f.add(t, &snippets.Snippet{ID: "js", Code: "g()", CodeType: snippets.CodeTypeJS, Location: snippets.LocationEverywhere, Active: true})
	_ = f.settings.Set(context.Background(), settings.KeyHeaderCode, `<meta name="h">`)
	_ = f.settings.Set(context.Background(), settings.KeyFooterCode, "FOOT")

	page := f.lifecycle.Begin(context.Background(), dispatch.SurfaceFrontend, false)
	out := string(page.Rewrite(context.Background(), []byte(`<!DOCTYPE html><html><head><title>t</title><body><p>hi</p>`)))

	body := strings.Index(out, "<body>")
	content := strings.Index(out, "<p>hi</p>")
	for _, want := range []string{"h{}", "e{}", `<meta name="h">`} {
		i := strings.Index(out, want)
		if i < 0 || i > body || strings.Count(out, want) != 1 {
			t.Fatalf("%q should appear once before <body>:\n%s", want, out)
		}
	}
	for _, want := range []string{"f()", "g()", "FOOT"} {
		i := strings.Index(out, want)
		if i < content || strings.Count(out, want) != 1 {
			t.Fatalf("%q should appear once after the content:\n%s", want, out)
		}
	}
}

func TestRewriteFooterBeforeHTMLEndTag(t *testing.T) {
	f := newFixture(t)
	f.add(t, &snippets.Snippet{ID: "foot", Code: "f()", CodeType: snippets.CodeTypeJS, Location: snippets.LocationFooter, Active: true})

	page := f.lifecycle.Begin(context.Background(), dispatch.SurfaceFrontend, false)
	out := string(page.Rewrite(context.Background(), []byte(`<html><body><p>hi</p></html>`)))

	if !strings.HasSuffix(out, "<script>\nf()\n</script>\n</html>") {
		t.Fatalf("footer should precede </html>: %q", out)
	}
}

func TestRewriteInitOutputStaysAfterDoctype(t *testing.T) {
	f := newFixture(t)
	f.add(t, &snippets.Snippet{ID: "php", Code: "x", CodeType: snippets.CodeTypePHP, Location: snippets.LocationEverywhere, Active: true})

	cases := map[string]string{
		"<!DOCTYPE html><p>x</p>":              "<!DOCTYPE html><i>php</i><p>x</p>",
		"<!DOCTYPE html><html><p>x</p></html>": "<!DOCTYPE html><html><i>php</i><p>x</p></html>",
	}
	for in, want := range cases {
		page := f.lifecycle.Begin(context.Background(), dispatch.SurfaceFrontend, false)
		if out := string(page.Rewrite(context.Background(), []byte(in))); out != want {
			t.Fatalf("Rewrite(%q) = %q, want %q", in, out, want)
		}
	}
}

func TestSafeModeSuppressesEverything(t *testing.T) {
	f := newFixture(t)
	f.add(t, &snippets.Snippet{ID: "css", Code: "a{}", CodeType: snippets.CodeTypeCSS, Location: snippets.LocationHead, Active: true})
	f.add(t, &snippets.Snippet{ID: "php", Code: "x", CodeType: snippets.CodeTypePHP, Location: snippets.LocationEverywhere, Active: true})
	_ = f.settings.Set(context.Background(), settings.KeyHeaderCode, "HEADER")

	page := f.lifecycle.Begin(context.Background(), dispatch.SurfaceFrontend, true)
	out := string(page.Rewrite(context.Background(), []byte(doc)))

	want := strings.Replace(doc, "<!-- sniply:hook checkout -->", "", 1)
	if out != want {
		t.Fatalf("expected untouched page, got %q", out)
	}
}

func TestSafeModeCanKeepHeaderFooter(t *testing.T) {
	f := newFixture(t)
	f.gate.SuppressInjection = false
	f.add(t, &snippets.Snippet{ID: "css", Code: "a{}", CodeType: snippets.CodeTypeCSS, Location: snippets.LocationHead, Active: true})
	_ = f.settings.Set(context.Background(), settings.KeyHeaderCode, "HEADER")

	page := f.lifecycle.Begin(context.Background(), dispatch.SurfaceFrontend, true)
	out := string(page.Rewrite(context.Background(), []byte(doc)))

	if !strings.Contains(out, "HEADER") {
		t.Fatalf("header code should survive safe mode: %q", out)
	}
	if strings.Contains(out, "<style>") {
		t.Fatalf("snippets must not run in safe mode: %q", out)
	}
}

func TestHookMarker(t *testing.T) {
	cases := map[string]string{
		" sniply:hook checkout ": "checkout",
		"sniply:hook":            "",
		"sniply:hookcheckout":    "",
		"sniply:hook head":       "",
		"something else":         "",
	}
	for in, want := range cases {
		got, ok := hookMarker(in)
		if got != want || ok != (want != "") {
			t.Fatalf("hookMarker(%q) = %q, %v", in, got, ok)
		}
	}
}

func newProxyServer(t *testing.T, f *fixture, upstream http.HandlerFunc) *httptest.Server {
	t.Helper()
	up := httptest.NewServer(upstream)
	t.Cleanup(up.Close)
	u, err := url.Parse(up.URL)
	if err != nil {
		t.Fatalf("parse upstream: %v", err)
	}

	proxy := NewProxy(u, f.lifecycle, "/wp-admin", nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Test-Admin") == "1" {
			r = r.WithContext(auth.WithPrincipal(r.Context(), auth.Principal{ID: "test", Role: auth.RoleAdmin}))
		}
		proxy.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string, admin bool) (*http.Response, string) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	if admin {
		req.Header.Set("X-Test-Admin", "1")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestProxyRewritesHTML(t *testing.T) {
	f := newFixture(t)
	f.add(t, &snippets.Snippet{ID: "head", Code: "h{}", CodeType: snippets.CodeTypeCSS, Location: snippets.LocationHead, Active: true})

	srv := newProxyServer(t, f, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, doc)
	})

	resp, body := get(t, srv.URL+"/", false)
	if !strings.Contains(body, "<style>\nh{}\n</style>\n</head>") {
		t.Fatalf("snippet not injected: %s", body)
	}
	if resp.ContentLength != int64(len(body)) {
		t.Fatalf("content length %d does not match body %d", resp.ContentLength, len(body))
	}
}

func TestProxyAdminSurface(t *testing.T) {
	f := newFixture(t)
	f.add(t, &snippets.Snippet{ID: "head", Code: "h{}", CodeType: snippets.CodeTypeCSS, Location: snippets.LocationHead, Active: true})
	f.add(t, &snippets.Snippet{ID: "all", Code: "e{}", CodeType: snippets.CodeTypeCSS, Location: snippets.LocationEverywhere, Active: true})

	srv := newProxyServer(t, f, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, doc)
	})

	_, body := get(t, srv.URL+"/wp-admin/index.php", false)
	if strings.Contains(body, "h{}") {
		t.Fatalf("head snippet ran on admin surface: %s", body)
	}
	if !strings.Contains(body, "e{}") {
		t.Fatalf("everywhere css missing on admin surface: %s", body)
	}
}

func TestProxyLeavesNonHTMLAlone(t *testing.T) {
	f := newFixture(t)
	f.add(t, &snippets.Snippet{ID: "head", Code: "h{}", CodeType: snippets.CodeTypeCSS, Location: snippets.LocationHead, Active: true})

	srv := newProxyServer(t, f, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"html":"</head>"}`)
	})

	_, body := get(t, srv.URL+"/api", false)
	if body != `{"html":"</head>"}` {
		t.Fatalf("non-html body modified: %s", body)
	}
}

func TestProxySafeModeParamForAdmins(t *testing.T) {
	f := newFixture(t)
	f.add(t, &snippets.Snippet{ID: "head", Code: "h{}", CodeType: snippets.CodeTypeCSS, Location: snippets.LocationHead, Active: true})

	srv := newProxyServer(t, f, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, doc)
	})

	_, body := get(t, srv.URL+"/?sniply-safe-mode=1", false)
	if !strings.Contains(body, "h{}") {
		t.Fatalf("anonymous visitor must not trigger safe mode: %s", body)
	}

	resp, body := get(t, srv.URL+"/?sniply-safe-mode=1", true)
	if strings.Contains(body, "h{}") {
		t.Fatalf("snippet ran in safe mode: %s", body)
	}
	if resp.Header.Get("X-Sniply-Safe-Mode") != "1" {
		t.Fatal("expected safe mode header")
	}
}

func TestProxyDropsAdminBearerToken(t *testing.T) {
	f := newFixture(t)
	var seen []string
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization")+"|"+r.Header.Get("X-API-Key"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, doc)
	}))
	t.Cleanup(up.Close)
	u, _ := url.Parse(up.URL)

	authSvc := &auth.Service{
		TokenHashes: []string{"admin-token"},
		TokenVerifier: func(hashed, plain string) error {
			if hashed != plain {
				return errors.New("mismatch")
			}
			return nil
		},
	}
	srv := httptest.NewServer(httpapi.OptionalAuthMiddleware(authSvc)(NewProxy(u, f.lifecycle, "/wp-admin", nil)))
	t.Cleanup(srv.Close)

	send := func(header, value string) {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/", nil)
		req.Header.Set(header, value)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}
	send("Authorization", "Bearer admin-token")
	send("X-API-Key", "admin-token")
	send("Authorization", "Bearer site-session")

	want := []string{"|", "|", "Bearer site-session|"}
	if strings.Join(seen, ",") != strings.Join(want, ",") {
		t.Fatalf("upstream saw %q, want %q", seen, want)
	}
}
