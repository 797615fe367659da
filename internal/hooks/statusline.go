package hooks

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/muesli/termenv"

	"hydra/internal/update"
)

// FallbackStatusLine is printed when the session document is unusable.
const FallbackStatusLine = "🐉 Hydra"

const (
	barWidth  = 10
	separator = " │ "
)

// ANSI colour indexes.
const (
	colorGreen  = "2"
	colorYellow = "3"
	colorRed    = "1"
)

// statusProfile is fixed to ANSI: the host captures stdout through a pipe,
// so terminal detection would always pick plain ASCII.
var statusProfile = termenv.ANSI

// StatusLine renders the one-line status bar for a raw session document:
//
//	🐉 │ <model> │ Ctx: 37% ████░░░░░░ │ $0.42 │ <dir> │ ⚡ v1.2.0 available
//
// The update notice comes from the cache at cachePath and is omitted when
// the cache is missing or reports no update.
func StatusLine(data []byte, cachePath string) string {
	in, err := ParseInput(data)
	if err != nil {
		return FallbackStatusLine
	}
	return RenderStatusLine(in, readCache(cachePath))
}

// RenderStatusLine formats a decoded session document.
func RenderStatusLine(in Input, cache *update.Cache) string {
	model := in.Model.DisplayName
	if model == "" {
		model = "Unknown"
	}

	pct := int(math.Round(in.ContextWindow.UsedPercentage))
	pct = max(0, min(pct, 100))
	filled := int(math.Round(float64(pct) / 10))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	dir := in.Workspace.CurrentDir
	if dir == "" {
		dir = in.CWD
	}
	if dir != "" {
		dir = filepath.Base(dir)
	}

	parts := []string{
		styled("🐉", colorGreen, false),
		styled(model, "", true),
		styled(fmt.Sprintf("Ctx: %d%% %s", pct, bar), contextColor(pct), false),
		styled(fmt.Sprintf("$%.2f", in.Cost.TotalCostUSD), "", true),
		styled(dir, "", true),
	}
	if cache != nil && cache.UpdateAvailable && cache.Latest != "" {
		parts = append(parts, styled(fmt.Sprintf("⚡ v%s available", strings.TrimPrefix(cache.Latest, "v")), colorYellow, false))
	}
	return strings.Join(parts, separator)
}

// contextColor maps context usage to green below 50%, yellow below 80%,
// red otherwise.
func contextColor(pct int) string {
	switch {
	case pct < 50:
		return colorGreen
	case pct < 80:
		return colorYellow
	default:
		return colorRed
	}
}

func styled(s, color string, faint bool) string {
	style := statusProfile.String(s)
	if color != "" {
		style = style.Foreground(statusProfile.Color(color))
	}
	if faint {
		style = style.Faint()
	}
	return style.String()
}

func readCache(path string) *update.Cache {
	if path == "" {
		return nil
	}
	cache, err := update.ReadCache(path)
	if err != nil {
		return nil
	}
	return &cache
}
