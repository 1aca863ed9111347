// Package render runs the per-request page lifecycle and splices its output
// into upstream HTML.
package render

import (
	"bytes"
	"context"

	"github.com/PabloPavan/sniply_inject/internal/dispatch"
	"github.com/PabloPavan/sniply_inject/internal/hooks"
	"github.com/PabloPavan/sniply_inject/internal/safemode"
	"github.com/PabloPavan/sniply_inject/internal/settings"
)

type Lifecycle struct {
	Engine   *dispatch.Engine
	Injector *settings.Injector
	SafeMode *safemode.Gate
}

// Page is one request's view of the lifecycle. It is not safe for
// concurrent use.
type Page struct {
	bus     *hooks.Bus
	surface dispatch.Surface
	safe    bool
	initOut []byte
}

// Begin builds a fresh bus for one request and fires init on it.
// safe is the request's safe-mode decision, taken once by the caller.
func (l *Lifecycle) Begin(ctx context.Context, surface dispatch.Surface, safe bool) *Page {
	bus := hooks.NewBus()

	if !safe && l.Engine != nil {
		l.Engine.Attach(bus, surface)
	}
	if l.Injector != nil && surface == dispatch.SurfaceFrontend && !(safe && l.suppressInjection()) {
		l.Injector.Attach(bus)
	}

	var buf bytes.Buffer
	bus.Do(ctx, hooks.PointInit, &buf)

	return &Page{
		bus:     bus,
		surface: surface,
		safe:    safe,
		initOut: buf.Bytes(),
	}
}

func (l *Lifecycle) suppressInjection() bool {
	return l.SafeMode == nil || l.SafeMode.SuppressInjection
}

func (p *Page) Safe() bool {
	return p.safe
}

func (p *Page) Surface() dispatch.Surface {
	return p.surface
}

// InitOutput is whatever init callbacks wrote.
func (p *Page) InitOutput() []byte {
	return p.initOut
}

// Fire triggers a named point and returns its output.
func (p *Page) Fire(ctx context.Context, name string) []byte {
	var buf bytes.Buffer
	p.bus.Do(ctx, name, &buf)
	return buf.Bytes()
}
