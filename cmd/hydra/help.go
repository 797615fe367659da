package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
)

const helpWidth = 80

const helpMarkdown = `# hydra

Installs the Hydra agents, skill and hooks for your coding agent.

## Usage

    hydra [--global | --local | --both | --uninstall | --status] [flags]

Run without a location to choose one interactively.

## Locations

- ` + "`--global`" + ` install to ~/.claude/ (all projects)
- ` + "`--local`" + ` install to ./.claude/ (this project only)
- ` + "`--both`" + ` install to both locations
- ` + "`--uninstall`" + ` remove all Hydra files from both locations
- ` + "`--status`" + ` show what is installed and where

## Flags

- ` + "`-y, --yes`" + ` answer yes to every confirmation
- ` + "`--debug`" + ` write a debug log to ~/.hydra/debug.log
- ` + "`--trace`" + ` print the full error chain on failure
- ` + "`-v, --version`" + ` print version information
- ` + "`-h, --help`" + ` show this help

## Configuration

Settings are read from ~/.hydra/config.yaml, then .hydra/config.yaml in the
nearest parent of the working directory, then HYDRA_* environment variables
such as HYDRA_GLOBAL_ROOT or HYDRA_UPDATE_SOURCE.
`

func printHelp(w io.Writer) {
	render := buildMarkdownRenderer(helpStyle(w), helpWidth)
	_, _ = fmt.Fprintln(w, render(helpMarkdown))
}

// helpStyle picks the glamour style: colour on a terminal, plain text when
// output is redirected.
func helpStyle(w io.Writer) string {
	f, ok := w.(*os.File)
	if !ok || termenv.NewOutput(f).Profile == termenv.Ascii {
		return "notty"
	}
	if termenv.NewOutput(f).HasDarkBackground() {
		return "dark"
	}
	return "light"
}

func buildMarkdownRenderer(style string, width int) func(string) string {
	fallback := func(input string) string {
		return wordwrap.String(input, width)
	}

	style = strings.ToLower(strings.TrimSpace(style))
	if style == "" {
		style = "dark"
	}
	if style == "plain" {
		return fallback
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fallback
	}
	return func(input string) string {
		out, err := renderer.Render(input)
		if err != nil {
			return fallback(input)
		}
		return strings.TrimSpace(out)
	}
}
