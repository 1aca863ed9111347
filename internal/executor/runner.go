package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/PabloPavan/sniply_inject/internal/snippets"
)

// Runner executes one snippet of a given code type, writing any output to w.
type Runner interface {
	Run(ctx context.Context, w io.Writer, s *snippets.Snippet) error
}

// MarkupRunner wraps the snippet code verbatim in an element, e.g. <style>.
type MarkupRunner struct {
	Tag string
}

func (m MarkupRunner) Run(ctx context.Context, w io.Writer, s *snippets.Snippet) error {
	_, err := io.WriteString(w, "<"+m.Tag+">\n"+s.Code+"\n</"+m.Tag+">\n")
	return err
}

// Includer runs a materialized snippet file.
type Includer interface {
	Include(ctx context.Context, path string, w io.Writer) error
}

type IncluderFunc func(ctx context.Context, path string, w io.Writer) error

func (f IncluderFunc) Include(ctx context.Context, path string, w io.Writer) error {
	return f(ctx, path, w)
}

const phpOpenTag = "<?php\n"

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// TempFileRunner writes the snippet body to a private temp file prefixed with
// the PHP open tag and hands that file to an Includer. The file never
// outlives Run.
type TempFileRunner struct {
	Dir      string
	Includer Includer
}

func (t *TempFileRunner) Run(ctx context.Context, w io.Writer, s *snippets.Snippet) error {
	if t.Includer == nil {
		return errors.New("no includer configured")
	}

	pattern := "sniply_snippet_" + unsafeNameChars.ReplaceAllString(s.ID, "_") + "_*.php"
	f, err := os.CreateTemp(t.Dir, pattern)
	if err != nil {
		return fmt.Errorf("could not create temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := io.WriteString(f, phpOpenTag+s.Code); err != nil {
		_ = f.Close()
		return fmt.Errorf("could not write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not write temp file: %w", err)
	}

	return t.Includer.Include(ctx, path, w)
}

// ProcessIncluder runs the file with the PHP CLI in a child process, so a
// fatal error in the snippet only ends that process.
type ProcessIncluder struct {
	Binary string
	Args   []string
	Env    []string
}

func (p ProcessIncluder) Include(ctx context.Context, path string, w io.Writer) error {
	bin := p.Binary
	if bin == "" {
		bin = "php"
	}
	args := append(append([]string(nil), p.Args...), "-f", path)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = w
	cmd.Stderr = &stderr
	if len(p.Env) > 0 {
		cmd.Env = append(os.Environ(), p.Env...)
	}

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}
