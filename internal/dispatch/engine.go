// Package dispatch binds stored snippets to the extension points of a page
// lifecycle. It holds no state between requests: every trigger re-reads the
// store.
package dispatch

import (
	"context"
	"io"
	"sort"

	"go.opentelemetry.io/otel/attribute"

	"github.com/PabloPavan/sniply_inject/internal/hooks"
	"github.com/PabloPavan/sniply_inject/internal/snippets"
	"github.com/PabloPavan/sniply_inject/internal/telemetry"
)

type Store interface {
	List(ctx context.Context, f snippets.SnippetFilter) ([]*snippets.Snippet, error)
}

type Executor interface {
	Execute(ctx context.Context, w io.Writer, s *snippets.Snippet)
}

// Surface tells frontend renders apart from admin-facing renders.
type Surface string

const (
	SurfaceFrontend Surface = "frontend"
	SurfaceAdmin    Surface = "admin"
)

// Priorities used when attaching to the bus.
const (
	HeadPriority   = 1
	FooterPriority = 999
	InitPriority   = 20
)

type Engine struct {
	Store    Store
	Executor Executor
}

// Attach registers the engine's callbacks on a request's bus.
func (e *Engine) Attach(bus *hooks.Bus, surface Surface) {
	if surface == SurfaceAdmin {
		bus.On(hooks.PointHead, HeadPriority, e.everywhere(snippets.CodeTypeCSS))
		bus.On(hooks.PointFooter, FooterPriority, e.everywhere(snippets.CodeTypeJS))
	} else {
		bus.On(hooks.PointHead, HeadPriority, e.location(snippets.LocationHead, snippets.CodeTypeCSS))
		bus.On(hooks.PointFooter, FooterPriority, e.location(snippets.LocationFooter, snippets.CodeTypeJS))
	}

	bus.Once(hooks.PointInit, InitPriority, func(ctx context.Context, w io.Writer) {
		e.BindCustom(ctx, bus)
	})
	bus.Once(hooks.PointInit, InitPriority, e.everywhere(snippets.CodeTypePHP))
}

// location runs the snippets bound to loc, then the "everywhere" snippets
// of the given code type.
func (e *Engine) location(loc snippets.Location, everywhere snippets.CodeType) hooks.Callback {
	return func(ctx context.Context, w io.Writer) {
		e.Run(ctx, w, snippets.SnippetFilter{Location: loc})
		e.Run(ctx, w, snippets.SnippetFilter{Location: snippets.LocationEverywhere, CodeType: everywhere})
	}
}

func (e *Engine) everywhere(ct snippets.CodeType) hooks.Callback {
	return func(ctx context.Context, w io.Writer) {
		e.Run(ctx, w, snippets.SnippetFilter{Location: snippets.LocationEverywhere, CodeType: ct})
	}
}

// Run executes the active snippets matching f in priority order.
func (e *Engine) Run(ctx context.Context, w io.Writer, f snippets.SnippetFilter) {
	ctx, span := telemetry.StartSpan(ctx, "snippets.dispatch",
		attribute.String("snippet.location", string(f.Location)),
		attribute.String("snippet.code_type", string(f.CodeType)),
	)
	defer span.End()

	list := e.Active(ctx, f)
	span.SetAttributes(attribute.Int("snippet.count", len(list)))
	for _, s := range list {
		e.Executor.Execute(ctx, w, s)
	}
}

// Active returns the active snippets matching f, ordered by ascending
// priority with store order kept for ties. Store failures yield nothing.
func (e *Engine) Active(ctx context.Context, f snippets.SnippetFilter) []*snippets.Snippet {
	f.Active = snippets.ActiveOnly()
	list, err := e.Store.List(ctx, f)
	if err != nil {
		telemetry.LogWarn(ctx, "failed to load snippets for dispatch",
			telemetry.LogString("snippet.location", string(f.Location)),
			telemetry.LogString("snippet.code_type", string(f.CodeType)),
			telemetry.LogErr(err),
		)
		return nil
	}

	out := list[:0]
	for _, s := range list {
		// re-check: a Store may apply only part of the filter
		if s != nil && f.Match(s) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

// BindCustom registers one callback per active custom snippet on the event
// named by its hook. Snippets with an empty hook are never bound. Binding
// happens while init fires and init fires once, so a hook named init is
// skipped.
func (e *Engine) BindCustom(ctx context.Context, bus *hooks.Bus) {
	for _, s := range e.Active(ctx, snippets.SnippetFilter{Location: snippets.LocationCustom}) {
		if s.CustomHook == "" {
			continue
		}
		if s.CustomHook == hooks.PointInit {
			telemetry.LogDebug(ctx, "custom snippet bound to init skipped",
				telemetry.LogString("snippet.id", s.ID),
			)
			continue
		}
		snippet := s
		bus.On(snippet.CustomHook, snippet.Priority, func(ctx context.Context, w io.Writer) {
			e.Executor.Execute(ctx, w, snippet)
		})
	}
}
