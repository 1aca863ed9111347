package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), KindInternal},
		{"app", NotFound("snippet"), KindNotFound},
		{"wrapped", fmt.Errorf("ctx: %w", Invalid("bad")), KindInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestErrorMessageFallsBackToCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindInternal, "", cause)

	if err.Error() != "connection refused" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if NotFound("snippet").Error() != "snippet not found" {
		t.Fatalf("unexpected not found message")
	}
}
