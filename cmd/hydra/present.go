package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"

	"hydra/internal/bundle"
	"hydra/internal/install"
	"hydra/internal/manifest"
	"hydra/internal/settings"
	"hydra/internal/update"
)

const (
	logoTop = `  ██╗  ██╗██╗   ██╗██████╗ ██████╗  █████╗
  ██║  ██║╚██╗ ██╔╝██╔══██╗██╔══██╗██╔══██╗
  ███████║ ╚████╔╝ ██║  ██║██████╔╝███████║`
	logoBottom = `  ██╔══██║  ╚██╔╝  ██║  ██║██╔══██╗██╔══██║
  ██║  ██║   ██║   ██████╔╝██║  ██║██║  ██║
  ╚═╝  ╚═╝   ╚═╝   ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝`

	repoURL      = "https://github.com/AR6420/Hail_Hydra"
	dividerWidth = 50
	fillWidth    = 20
)

func printBanner(w io.Writer, version string) {
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, logoTopStyle.Render(logoTop))
	_, _ = fmt.Fprintln(w, logoBottomStyle.Render(logoBottom))
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "  "+titleStyle.Render("Hail Hydra v"+version))
	_, _ = fmt.Fprintln(w, "  "+dimStyle.Render("A multi-headed speculative execution framework for AI coding agents."))
	_, _ = fmt.Fprintln(w)
}

// modelDot marks an agent's model tier.
func modelDot(model string) string {
	switch strings.ToLower(model) {
	case "haiku":
		return "🟢"
	case "sonnet":
		return "🔵"
	case "opus":
		return "🟣"
	default:
		return "⚪"
	}
}

func modelLabel(model string) string {
	if model == "" {
		return ""
	}
	return strings.ToUpper(model[:1]) + strings.ToLower(model[1:])
}

func agentNameWidth(agents []bundle.Agent) int {
	width := 0
	for _, a := range agents {
		width = max(width, len(a.Name)+len(modelLabel(a.Model))+3)
	}
	return width
}

func printAgentPreview(w io.Writer, b *bundle.Bundle) {
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "  "+headingStyle.Render(fmt.Sprintf("This will install %d Hydra agents + SKILL.md + reference docs.", len(b.Agents))))
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "  Agents:")
	width := agentNameWidth(b.Agents)
	for _, a := range b.Agents {
		name := fmt.Sprintf("%s (%s)", a.Name, modelLabel(a.Model))
		_, _ = fmt.Fprintf(w, "    %s %s %s\n", modelDot(a.Model), headingStyle.Render(padRight(name, width)), dimStyle.Render(a.Description))
	}
	_, _ = fmt.Fprintln(w)
}

func printInstallReport(w io.Writer, r install.InstallReport) {
	for _, root := range r.Roots {
		_, _ = fmt.Fprintln(w, "  "+headingStyle.Render(fmt.Sprintf("Installing to %s...", root.Root.Label())))
		_, _ = fmt.Fprintln(w)
		for _, f := range root.Files {
			printFileLine(w, f, "Installed")
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintln(w, "  "+headingStyle.Render("Registering hooks..."))
	_, _ = fmt.Fprintln(w)
	for _, h := range r.Hooks {
		printFileLine(w, h, "Installed")
	}
	switch {
	case r.SettingsErr != nil:
		_, _ = fmt.Fprintln(w, "    "+errorStyle.Render(fmt.Sprintf("✖ Failed: %s (%v)", r.SettingsPath, r.SettingsErr)))
	default:
		_, _ = fmt.Fprintln(w, "    "+successStyle.Render("✔ Registered hooks in "+r.SettingsPath))
	}
	if r.SettingsBackup != "" {
		_, _ = fmt.Fprintln(w, "    "+warnStyle.Render("! settings.json could not be parsed; the old file was saved to "+r.SettingsBackup))
	}
	if r.SettingsErr == nil && !r.StatusLineConfigured {
		_, _ = fmt.Fprintln(w, "    "+warnStyle.Render("! Kept your existing statusLine; the Hydra status bar is not enabled"))
	}
	_, _ = fmt.Fprintln(w)

	if r.AnyFailed() {
		_, _ = fmt.Fprintln(w, "  "+warnStyle.Render("⚠ Some files failed to install. Check errors above."))
		_, _ = fmt.Fprintln(w)
		return
	}
	heads := 0
	if len(r.Roots) > 0 {
		for _, f := range r.Roots[0].Files {
			if f.Kind == manifest.KindAgent {
				heads++
			}
		}
	}
	_, _ = fmt.Fprintln(w, "  "+doneStyle.Render(fmt.Sprintf("🐉 Hail Hydra! %d heads deployed and ready.", heads)))
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "  "+dimStyle.Render("Start a new session to use the framework."))
	_, _ = fmt.Fprintln(w, "  "+dimStyle.Render("GitHub: "+repoURL))
	_, _ = fmt.Fprintln(w)
}

func printFileLine(w io.Writer, f install.FileResult, verb string) {
	if f.Err != nil {
		_, _ = fmt.Fprintln(w, "    "+errorStyle.Render(fmt.Sprintf("✖ Failed: %s (%v)", f.Rel, f.Err)))
		return
	}
	_, _ = fmt.Fprintln(w, "    "+successStyle.Render(fmt.Sprintf("✔ %s %s", verb, f.Rel)))
}

func printUninstallReport(w io.Writer, r install.UninstallReport) {
	if r.NothingToRemove {
		_, _ = fmt.Fprintln(w, "  "+dimStyle.Render("No Hydra files found. Nothing to remove."))
		_, _ = fmt.Fprintln(w)
		return
	}
	for _, f := range r.Files {
		rel := fmt.Sprintf("[%s] %s", f.Root.Scope, f.Rel)
		if f.Err != nil {
			_, _ = fmt.Fprintln(w, "  "+errorStyle.Render(fmt.Sprintf("✖ Failed to remove %s (%v)", rel, f.Err)))
			continue
		}
		_, _ = fmt.Fprintln(w, "  "+successStyle.Render("✔ Removed "+rel))
	}
	switch {
	case r.SettingsErr != nil:
		_, _ = fmt.Fprintln(w, "  "+errorStyle.Render(fmt.Sprintf("✖ Failed to update %s (%v)", r.SettingsPath, r.SettingsErr)))
	case r.SettingsChanged:
		_, _ = fmt.Fprintln(w, "  "+successStyle.Render("✔ Removed Hydra hooks from "+r.SettingsPath))
	}
	_, _ = fmt.Fprintln(w)

	if r.Failed() == 0 {
		_, _ = fmt.Fprintln(w, "  "+doneStyle.Render("🐉 All heads severed. Hydra sleeps."))
	} else {
		_, _ = fmt.Fprintln(w, "  "+warnStyle.Render(fmt.Sprintf("⚠ %d removed, %d failed.", r.Removed(), r.Failed())))
	}
	_, _ = fmt.Fprintln(w)
}

func newFillBar() progress.Model {
	return progress.New(
		progress.WithSolidFill(string(primaryColor)),
		progress.WithWidth(fillWidth),
		progress.WithoutPercentage(),
	)
}

func printStatus(w io.Writer, s install.StatusReport) {
	bar := newFillBar()
	divider := dimStyle.Render("  " + strings.Repeat("─", dividerWidth))

	_, _ = fmt.Fprintln(w, "  "+headingStyle.Render("Installation Status"))
	_, _ = fmt.Fprintln(w, divider)

	for _, loc := range []install.LocationStatus{s.Global, s.Local} {
		_, _ = fmt.Fprintln(w)
		printLocation(w, loc, bar)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "  "+headingStyle.Render("Hooks"))
	for _, h := range s.Hooks {
		_, _ = fmt.Fprintln(w, "    "+checkLine(h.Installed, h.Name+bundle.HookScriptExt))
	}
	_, _ = fmt.Fprintln(w, "    "+registrationLine(s.Settings))

	if line := updateLine(s.Update); line != "" {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "  "+line)
	}
	_, _ = fmt.Fprintln(w)
}

func printLocation(w io.Writer, loc install.LocationStatus, bar progress.Model) {
	header := headingStyle.Render(loc.Root.Label())
	if loc.Installed() == 0 {
		_, _ = fmt.Fprintln(w, "  "+header)
		_, _ = fmt.Fprintln(w, "    "+dimStyle.Render("(not installed)"))
		return
	}

	fill := 0.0
	if loc.Total() > 0 {
		fill = float64(loc.Installed()) / float64(loc.Total())
	}
	summary := fmt.Sprintf("%s %d/%d", bar.ViewAs(fill), loc.Installed(), loc.Total())
	if loc.Version != "" {
		summary += dimStyle.Render("  v" + loc.Version)
	}
	_, _ = fmt.Fprintln(w, "  "+header)
	_, _ = fmt.Fprintln(w, "    "+summary)

	agents := loc.OfKind(manifest.KindAgent)
	width := 0
	for _, a := range agents {
		width = max(width, len(a.Record.Key))
	}
	for _, a := range agents {
		name := padRight(a.Record.Key, width)
		desc := a.Record.Description
		if a.Installed {
			_, _ = fmt.Fprintf(w, "    %s %s %s %s\n", modelDot(a.Record.Model), successStyle.Render("✔"), headingStyle.Render(name), dimStyle.Render(desc))
		} else {
			_, _ = fmt.Fprintf(w, "    %s %s %s %s\n", modelDot(a.Record.Model), dimStyle.Render("✖"), dimStyle.Render(name), dimStyle.Render(desc+" (not installed)"))
		}
	}
	for _, kind := range []manifest.Kind{manifest.KindSkill, manifest.KindReference, manifest.KindCommand} {
		for _, e := range loc.OfKind(kind) {
			_, _ = fmt.Fprintln(w, "    "+checkLine(e.Installed, e.Record.Rel))
		}
	}
}

func checkLine(installed bool, name string) string {
	if installed {
		return successStyle.Render("✔ " + name)
	}
	return dimStyle.Render("✖ " + name + " (not installed)")
}

func registrationLine(r install.RegistrationStatus) string {
	mark := func(ok bool, label string) string {
		if ok {
			return successStyle.Render("✔ " + label)
		}
		return dimStyle.Render("✖ " + label)
	}
	parts := []string{
		mark(r.SessionStart, "SessionStart"),
		mark(r.PostToolUse, "PostToolUse"),
		mark(r.StatusLine, "statusLine"),
	}
	prefix := "settings.json: "
	if r.Source == settings.SourceCorrupt {
		prefix = "settings.json (unreadable): "
	}
	return dimStyle.Render(prefix) + strings.Join(parts, "  ")
}

func updateLine(c *update.Cache) string {
	switch {
	case c == nil:
		return ""
	case c.Error != "":
		return dimStyle.Render("Update check failed at " + c.CheckedTime().Format("2006-01-02 15:04") + ": " + c.Error)
	case c.UpdateAvailable:
		return warnStyle.Render(fmt.Sprintf("⚡ Update available: v%s (installed v%s)", strings.TrimPrefix(c.Latest, "v"), strings.TrimPrefix(c.Installed, "v")))
	case c.Installed == update.UnknownVersion:
		return dimStyle.Render("Latest release: v" + strings.TrimPrefix(c.Latest, "v"))
	default:
		return successStyle.Render("✔ Up to date (v" + strings.TrimPrefix(c.Installed, "v") + ")")
	}
}
