package settings

import (
	"context"
	"errors"
	"io"

	"github.com/PabloPavan/sniply_inject/internal/hooks"
	"github.com/PabloPavan/sniply_inject/internal/telemetry"
)

const (
	HeadPriority   = 1
	FooterPriority = 999
)

// Injector writes the static header and footer code into every page.
type Injector struct {
	Store Store
}

// Attach must run after the dispatch engine is attached so snippets come
// first at equal priority.
func (i *Injector) Attach(bus *hooks.Bus) {
	bus.On(hooks.PointHead, HeadPriority, i.emit(KeyHeaderCode, "Header"))
	bus.On(hooks.PointFooter, FooterPriority, i.emit(KeyFooterCode, "Footer"))
}

func (i *Injector) emit(key, label string) hooks.Callback {
	return func(ctx context.Context, w io.Writer) {
		code, err := i.Store.Get(ctx, key)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				telemetry.LogWarn(ctx, "failed to load injected code",
					telemetry.LogString("setting.key", key),
					telemetry.LogErr(err),
				)
			}
			return
		}
		if code == "" {
			return
		}
		_, _ = io.WriteString(w, "\n<!-- Sniply - "+label+" -->\n"+code+"\n<!-- /Sniply - "+label+" -->\n")
	}
}
