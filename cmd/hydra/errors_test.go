package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	hyerrors "hydra/internal/errors"
	"hydra/internal/install"
)

func TestHandleErrorExitCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"cancelled", install.ErrCancelled, 0},
		{"wrapped cancel", fmt.Errorf("install: %w", install.ErrCancelled), 0},
		{"usage", hyerrors.New(hyerrors.CodeUsage, "bad flag", nil), 1},
		{"permission", hyerrors.New(hyerrors.CodePermissionDenied, "write /x", fs.ErrPermission), 1},
		{"plain", errors.New("boom"), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if got := handleError(&buf, tc.err, false); got != tc.want {
				t.Fatalf("handleError() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestPermissionDeniedSuggestsLocal(t *testing.T) {
	inner := hyerrors.New(hyerrors.CodePermissionDenied, "write /root/.claude/agents/hydra-scout.md: permission denied", fs.ErrPermission)
	err := partialFailure(errors.Join(inner))

	var buf bytes.Buffer
	handleError(&buf, err, false)
	out := ansi.Strip(buf.String())
	if !strings.Contains(out, "Permission denied.") || !strings.Contains(out, "hydra --local") {
		t.Fatalf("missing remediation:\n%s", out)
	}
	if !strings.Contains(out, "hydra-scout.md") {
		t.Fatalf("expected the failing path in the message:\n%s", out)
	}
}

func TestPartialFailureCodes(t *testing.T) {
	plain := partialFailure(errors.Join(errors.New("disk full")))
	if !hyerrors.IsCode(plain, hyerrors.CodeWriteFailed) {
		t.Fatalf("expected write_failed, got %s", hyerrors.CodeOf(plain))
	}
	mixed := partialFailure(errors.Join(
		errors.New("disk full"),
		hyerrors.New(hyerrors.CodePermissionDenied, "denied", fs.ErrPermission),
	))
	if !hyerrors.IsCode(mixed, hyerrors.CodePermissionDenied) {
		t.Fatalf("expected permission_denied, got %s", hyerrors.CodeOf(mixed))
	}
}

func TestTracePrintsChain(t *testing.T) {
	err := fmt.Errorf("install: %w", hyerrors.New(hyerrors.CodeWriteFailed, "write agent", errors.New("disk full")))
	var buf bytes.Buffer
	handleError(&buf, err, true)
	out := ansi.Strip(buf.String())
	for _, want := range []string{"Error chain:", "[write_failed]", "disk full"} {
		if !strings.Contains(out, want) {
			t.Fatalf("trace missing %q:\n%s", want, out)
		}
	}
}
