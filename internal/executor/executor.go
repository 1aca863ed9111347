// Package executor runs a single snippet and turns every failure into a
// diagnostic, so one bad snippet never aborts the page being rendered.
package executor

import (
	"context"
	"fmt"
	"html"
	"io"
	"runtime/debug"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/PabloPavan/sniply_inject/internal/snippets"
	"github.com/PabloPavan/sniply_inject/internal/telemetry"
)

type Options struct {
	// Debug writes failures into the page as HTML comments.
	Debug     bool
	TempDir   string
	PHPBinary string
}

type Executor struct {
	Runners map[snippets.CodeType]Runner
	Debug   bool
}

func New(opts Options) *Executor {
	return &Executor{
		Debug: opts.Debug,
		Runners: map[snippets.CodeType]Runner{
			snippets.CodeTypeCSS: MarkupRunner{Tag: "style"},
			snippets.CodeTypeJS:  MarkupRunner{Tag: "script"},
			snippets.CodeTypePHP: &TempFileRunner{
				Dir:      opts.TempDir,
				Includer: ProcessIncluder{Binary: opts.PHPBinary},
			},
		},
	}
}

// Execute runs s and never returns a failure to the caller.
func (e *Executor) Execute(ctx context.Context, w io.Writer, s *snippets.Snippet) {
	if s == nil || s.Code == "" {
		return
	}

	ctx, span := telemetry.StartSpan(ctx, "snippet.execute",
		attribute.String("snippet.id", s.ID),
		attribute.String("snippet.code_type", string(s.CodeType)),
	)
	defer span.End()

	start := time.Now()
	err := e.run(ctx, w, s)
	status := "ok"
	if err != nil {
		status = "error"
		telemetry.FailSpan(span, err, "snippet_error")
		e.diagnose(ctx, w, s, err)
	}
	telemetry.RecordSnippetExecution(ctx, string(s.CodeType), status, time.Since(start))
}

func (e *Executor) run(ctx context.Context, w io.Writer, s *snippets.Snippet) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
			telemetry.LogDebug(ctx, "snippet panic stack",
				telemetry.LogString("snippet.id", s.ID),
				telemetry.LogString("stack", string(debug.Stack())),
			)
		}
	}()

	runner, ok := e.Runners[s.CodeType]
	if !ok || runner == nil {
		return fmt.Errorf("no runner for code type %q", s.CodeType)
	}
	return runner.Run(ctx, w, s)
}

func (e *Executor) diagnose(ctx context.Context, w io.Writer, s *snippets.Snippet, err error) {
	telemetry.LogDebug(ctx, "snippet execution failed",
		telemetry.LogString("snippet.id", s.ID),
		telemetry.LogString("snippet.name", s.Name),
		telemetry.LogString("snippet.code_type", string(s.CodeType)),
		telemetry.LogErr(err),
	)
	if !e.Debug {
		return
	}
	msg := strings.ReplaceAll(err.Error(), "--", "- -")
	_, _ = fmt.Fprintf(w, "<!-- Sniply snippet error (%s): %s -->", html.EscapeString(s.Name), html.EscapeString(msg))
}
