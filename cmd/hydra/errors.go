package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	hyerrors "hydra/internal/errors"
	"hydra/internal/install"
)

const remediationWidth = 72

// handleError prints err the way its code asks for and returns the exit
// status. nil and cancellations exit 0.
func handleError(w io.Writer, err error, trace bool) int {
	if err == nil {
		return 0
	}
	switch hyerrors.CodeOf(err) {
	case hyerrors.CodeCancelled:
		_, _ = fmt.Fprintln(w, dimStyle.Render("\n  "+cancelMessage(err)+"\n"))
		return 0
	case hyerrors.CodePermissionDenied:
		_, _ = fmt.Fprint(w, formatPermissionDenied(err))
	case hyerrors.CodeUsage:
		_, _ = fmt.Fprintf(w, "%s %v\n", errorStyle.Render("Error:"), err)
		_, _ = fmt.Fprintln(w, dimStyle.Render("Run 'hydra --help' for usage."))
		return 1
	default:
		_, _ = fmt.Fprintf(w, "\n  %s\n", errorStyle.Render("✖ Error: "+err.Error()))
	}
	if trace {
		_, _ = fmt.Fprint(w, formatErrorChain(err))
	}
	return 1
}

func cancelMessage(err error) string {
	if errors.Is(err, install.ErrCancelled) {
		return "Installation cancelled."
	}
	return "Cancelled."
}

// formatPermissionDenied explains a permission failure and points at the
// local install, which needs no elevated rights.
func formatPermissionDenied(err error) string {
	body := fmt.Sprintf("Hydra could not write to one of its install locations (%s). "+
		"The global location lives in your home directory; check its ownership, "+
		"or install into this project instead, which needs no extra permissions.", permissionDetail(err))

	var b strings.Builder
	b.WriteString("\n  " + errorStyle.Render("✖ Permission denied.") + "\n\n")
	for _, line := range strings.Split(wordwrap.String(body, remediationWidth), "\n") {
		b.WriteString("  " + dimStyle.Render(line) + "\n")
	}
	b.WriteString("\n  " + dimStyle.Render("Try:") + "\n")
	b.WriteString("    " + accentStyle.Render("hydra --local") + dimStyle.Render("   (this project only)") + "\n\n")
	return b.String()
}

// permissionDetail returns the message of the innermost permission
// failure in the chain, which names the path.
func permissionDetail(err error) string {
	detail := err.Error()
	walkChain(err, func(e error, _ int) {
		if s, ok := e.(hyerrors.Error); ok && s.Code == hyerrors.CodePermissionDenied && s.Message != "" {
			detail = s.Message
		}
	})
	return detail
}

// formatErrorChain lists every wrapped cause, outermost first.
func formatErrorChain(err error) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render("  Error chain:") + "\n")
	walkChain(err, func(e error, depth int) {
		code := ""
		if structured, ok := e.(hyerrors.Error); ok && structured.Code != "" {
			code = fmt.Sprintf(" [%s]", structured.Code)
		}
		b.WriteString(strings.Repeat("  ", depth+2) + fmt.Sprintf("%T%s: %v", e, code, e) + "\n")
	})
	return b.String()
}

// walkChain visits err and every error it wraps, depth first.
func walkChain(err error, visit func(error, int)) {
	var walk func(error, int)
	walk = func(e error, depth int) {
		if e == nil {
			return
		}
		visit(e, depth)
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner, depth+1)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap(), depth+1)
		}
	}
	walk(err, 0)
}
