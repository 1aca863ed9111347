package render

import (
	"bytes"
	"context"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/PabloPavan/sniply_inject/internal/hooks"
	"github.com/PabloPavan/sniply_inject/internal/telemetry"
)

const hookMarkerPrefix = "sniply:hook"

// Rewrite splices lifecycle output into an HTML document:
//
//   - init output right after <body>; without a body tag, after the doctype
//     and <html> tag, or at the very start;
//   - head output before </head>, or before <body> when </head> is omitted;
//   - footer output before </body>, or before </html> when </body> is omitted;
//   - <!-- sniply:hook NAME --> replaced by the output of firing NAME.
//
// When a full document ends with head or footer still pending they fire at
// the end. A fragment with no html, head or body tag only gets init output.
// A document the tokenizer cannot read is returned unchanged.
func (p *Page) Rewrite(ctx context.Context, doc []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(doc) + 1024)

	var headDone, footerDone, initDone, document bool
	initAt := 0
	fireHead := func(reason string) {
		if headDone {
			return
		}
		headDone = true
		if reason != "" {
			telemetry.LogDebug(ctx, "head fired without </head>", telemetry.LogString("page.anchor", reason))
		}
		out.Write(p.Fire(ctx, hooks.PointHead))
	}
	fireFooter := func(reason string) {
		if footerDone {
			return
		}
		footerDone = true
		if reason != "" {
			telemetry.LogDebug(ctx, "footer fired without </body>", telemetry.LogString("page.anchor", reason))
		}
		out.Write(p.Fire(ctx, hooks.PointFooter))
	}

	z := html.NewTokenizer(bytes.NewReader(doc))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				return doc
			}
			break
		}
		raw := append([]byte(nil), z.Raw()...)

		switch tt {
		case html.DoctypeToken:
			out.Write(raw)
			initAt = out.Len()
			continue

		case html.StartTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Html:
				document = true
				out.Write(raw)
				initAt = out.Len()
				continue
			case atom.Head:
				document = true
			case atom.Body:
				document = true
				fireHead("<body>")
				out.Write(raw)
				if !initDone {
					out.Write(p.initOut)
					initDone = true
				}
				continue
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Head:
				fireHead("")
			case atom.Body:
				fireHead("</body>")
				fireFooter("")
			case atom.Html:
				fireHead("</html>")
				fireFooter("</html>")
			}

		case html.CommentToken:
			if name, ok := hookMarker(string(z.Text())); ok {
				out.Write(p.Fire(ctx, name))
				continue
			}
		}
		out.Write(raw)
	}

	if document {
		fireHead("EOF")
		fireFooter("EOF")
	}

	if !initDone && len(p.initOut) > 0 {
		b := out.Bytes()
		res := make([]byte, 0, len(b)+len(p.initOut))
		res = append(res, b[:initAt]...)
		res = append(res, p.initOut...)
		return append(res, b[initAt:]...)
	}
	return out.Bytes()
}

func hookMarker(comment string) (string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(comment), hookMarkerPrefix)
	if !ok {
		return "", false
	}
	name := strings.TrimSpace(rest)
	if name == "" || rest == name {
		// "sniply:hookfoo" is not a marker
		return "", false
	}
	switch name {
	case hooks.PointInit, hooks.PointHead, hooks.PointFooter:
		return "", false
	}
	return name, true
}
