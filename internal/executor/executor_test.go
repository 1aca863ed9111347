package executor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PabloPavan/sniply_inject/internal/snippets"
)

// fakeInclude emulates the PHP include: it echoes the body after the open tag.
func fakeInclude(t *testing.T, seen *[]string) IncluderFunc {
	t.Helper()
	return func(ctx context.Context, path string, w io.Writer) error {
		if seen != nil {
			*seen = append(*seen, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		body := string(data)
		if !strings.HasPrefix(body, "<?php\n") {
			t.Fatalf("temp file missing open tag: %q", body)
		}
		_, err = io.WriteString(w, strings.TrimPrefix(body, "<?php\n"))
		return err
	}
}

func newTestExecutor(t *testing.T, dir string, inc Includer) *Executor {
	t.Helper()
	ex := New(Options{TempDir: dir})
	ex.Runners[snippets.CodeTypePHP] = &TempFileRunner{Dir: dir, Includer: inc}
	return ex
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no temp artifacts, found %d", len(entries))
	}
}

func TestExecuteEmptyCodeIsNoop(t *testing.T) {
	dir := t.TempDir()
	calls := 0
	ex := newTestExecutor(t, dir, IncluderFunc(func(ctx context.Context, path string, w io.Writer) error {
		calls++
		return nil
	}))
	ex.Debug = true

	for _, ct := range []snippets.CodeType{snippets.CodeTypePHP, snippets.CodeTypeJS, snippets.CodeTypeCSS} {
		var buf bytes.Buffer
		ex.Execute(context.Background(), &buf, &snippets.Snippet{ID: "s", CodeType: ct})
		if buf.Len() != 0 {
			t.Fatalf("%s: expected no output, got %q", ct, buf.String())
		}
	}
	if calls != 0 {
		t.Fatalf("includer should not run for empty code, ran %d times", calls)
	}
	assertDirEmpty(t, dir)
}

func TestExecuteMarkup(t *testing.T) {
	ex := New(Options{})

	var buf bytes.Buffer
	ex.Execute(context.Background(), &buf, &snippets.Snippet{ID: "c", CodeType: snippets.CodeTypeCSS, Code: "body{color:red}"})
	ex.Execute(context.Background(), &buf, &snippets.Snippet{ID: "j", CodeType: snippets.CodeTypeJS, Code: "console.log('<b>')"})

	want := "<style>\nbody{color:red}\n</style>\n<script>\nconsole.log('<b>')\n</script>\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestExecutePHPUsesTempFileAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	var seen []string
	ex := newTestExecutor(t, dir, fakeInclude(t, &seen))

	var buf bytes.Buffer
	code := "echo 'a'; ?>\n<div>raw</div>\n<?php echo 'b';"
	ex.Execute(context.Background(), &buf, &snippets.Snippet{ID: "snp_1", CodeType: snippets.CodeTypePHP, Code: code})

	if buf.String() != code {
		t.Fatalf("unexpected output: %q", buf.String())
	}
	if len(seen) != 1 || filepath.Dir(seen[0]) != dir {
		t.Fatalf("unexpected temp file paths: %v", seen)
	}
	if !strings.HasPrefix(filepath.Base(seen[0]), "sniply_snippet_snp_1_") {
		t.Fatalf("unexpected temp file name: %s", seen[0])
	}
	assertDirEmpty(t, dir)
}

func TestExecutePHPTempFilesAreUnique(t *testing.T) {
	dir := t.TempDir()
	var seen []string
	ex := newTestExecutor(t, dir, fakeInclude(t, &seen))

	s := &snippets.Snippet{ID: "snp_1", CodeType: snippets.CodeTypePHP, Code: "x"}
	ex.Execute(context.Background(), io.Discard, s)
	ex.Execute(context.Background(), io.Discard, s)

	if len(seen) != 2 || seen[0] == seen[1] {
		t.Fatalf("expected two distinct temp files, got %v", seen)
	}
}

func TestExecuteFailureDoesNotStopNextSnippet(t *testing.T) {
	dir := t.TempDir()
	ex := newTestExecutor(t, dir, IncluderFunc(func(ctx context.Context, path string, w io.Writer) error {
		_, _ = io.WriteString(w, "partial;")
		return errors.New("Call to undefined function boom()")
	}))

	var buf bytes.Buffer
	ex.Execute(context.Background(), &buf, &snippets.Snippet{ID: "bad", Name: "bad", CodeType: snippets.CodeTypePHP, Code: "boom();"})
	ex.Execute(context.Background(), &buf, &snippets.Snippet{ID: "ok", CodeType: snippets.CodeTypeJS, Code: "run()"})

	want := "partial;<script>\nrun()\n</script>\n"
	if buf.String() != want {
		t.Fatalf("unexpected output: %q", buf.String())
	}
	assertDirEmpty(t, dir)
}

func TestExecuteRecoversPanic(t *testing.T) {
	dir := t.TempDir()
	ex := newTestExecutor(t, dir, IncluderFunc(func(ctx context.Context, path string, w io.Writer) error {
		panic("runtime fault")
	}))
	ex.Debug = true

	var buf bytes.Buffer
	ex.Execute(context.Background(), &buf, &snippets.Snippet{ID: "p", Name: "panicky", CodeType: snippets.CodeTypePHP, Code: "x"})

	if !strings.Contains(buf.String(), "<!-- Sniply snippet error (panicky): panic: runtime fault -->") {
		t.Fatalf("expected diagnostic, got %q", buf.String())
	}
	assertDirEmpty(t, dir)
}

func TestExecuteDiagnosticsHiddenWithoutDebug(t *testing.T) {
	ex := newTestExecutor(t, t.TempDir(), IncluderFunc(func(ctx context.Context, path string, w io.Writer) error {
		return errors.New("fatal")
	}))

	var buf bytes.Buffer
	ex.Execute(context.Background(), &buf, &snippets.Snippet{ID: "x", CodeType: snippets.CodeTypePHP, Code: "x"})
	if buf.Len() != 0 {
		t.Fatalf("expected silent failure, got %q", buf.String())
	}
}

func TestExecuteTempFileCreationFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	calls := 0
	ex := newTestExecutor(t, missing, IncluderFunc(func(ctx context.Context, path string, w io.Writer) error {
		calls++
		return nil
	}))
	ex.Debug = true

	var buf bytes.Buffer
	ex.Execute(context.Background(), &buf, &snippets.Snippet{ID: "x", Name: "n", CodeType: snippets.CodeTypePHP, Code: "x"})

	if calls != 0 {
		t.Fatal("includer must not run when the temp file cannot be created")
	}
	if !strings.Contains(buf.String(), "could not create temp file") {
		t.Fatalf("expected creation diagnostic, got %q", buf.String())
	}
}

func TestProcessIncluderMissingBinaryCleansUp(t *testing.T) {
	dir := t.TempDir()
	ex := New(Options{
		Debug:     true,
		TempDir:   dir,
		PHPBinary: filepath.Join(t.TempDir(), "no-such-php"),
	})

	var buf bytes.Buffer
	ex.Execute(context.Background(), &buf, &snippets.Snippet{ID: "x", Name: "n", CodeType: snippets.CodeTypePHP, Code: "echo 1;"})

	if !strings.Contains(buf.String(), "Sniply snippet error (n)") {
		t.Fatalf("expected diagnostic, got %q", buf.String())
	}
	assertDirEmpty(t, dir)
}

func TestExecuteUnknownCodeType(t *testing.T) {
	ex := New(Options{Debug: true})

	var buf bytes.Buffer
	ex.Execute(context.Background(), &buf, &snippets.Snippet{ID: "x", Name: "n", CodeType: "lua", Code: "print(1)"})
	if !strings.Contains(buf.String(), `no runner for code type &#34;lua&#34;`) {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
