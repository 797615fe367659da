package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"

	"hydra/internal/bundle"
	"hydra/internal/config"
	"hydra/internal/debug"
	hyerrors "hydra/internal/errors"
	"hydra/internal/install"
	"hydra/internal/manifest"
	"hydra/internal/prompt"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], defaultEnv())
	stop()
	os.Exit(code)
}

// prompter is the interactive surface the CLI needs.
type prompter interface {
	install.Confirmer
	PickScope(ctx context.Context) (manifest.Scope, bool, error)
}

// env carries the process surroundings so tests can replace them.
type env struct {
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	workDir  string
	prompter prompter
	// executable resolves the binary path written into hook scripts.
	executable func() (string, error)
}

func defaultEnv() env {
	wd, _ := os.Getwd()
	return env{
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		workDir:    wd,
		prompter:   &prompt.Prompter{In: os.Stdin, Out: os.Stdout},
		executable: os.Executable,
	}
}

type options struct {
	global    bool
	local     bool
	both      bool
	uninstall bool
	status    bool
	yes       bool
	debug     bool
	trace     bool
	version   bool
	help      bool
}

func newFlagSet(opts *options, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("hydra", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false
	fs.BoolVar(&opts.global, "global", false, "Install to ~/.claude/ (all projects), no prompts")
	fs.BoolVar(&opts.local, "local", false, "Install to ./.claude/ (this project), no prompts")
	fs.BoolVar(&opts.both, "both", false, "Install to both locations, no prompts")
	fs.BoolVar(&opts.uninstall, "uninstall", false, "Remove all Hydra files from both locations")
	fs.BoolVar(&opts.status, "status", false, "Show what is installed and where")
	fs.BoolVarP(&opts.yes, "yes", "y", false, "Answer yes to every confirmation")
	fs.BoolVar(&opts.debug, "debug", false, "Write a debug log to ~/.hydra/debug.log")
	fs.BoolVar(&opts.trace, "trace", false, "Print the full error chain on failure")
	fs.BoolVarP(&opts.version, "version", "v", false, "Print version information and exit")
	fs.BoolVarP(&opts.help, "help", "h", false, "Show help")
	return fs
}

// selectors returns the names of the mutually exclusive operation flags
// that were set.
func (o options) selectors() []string {
	var set []string
	for _, s := range []struct {
		name string
		on   bool
	}{
		{"--global", o.global},
		{"--local", o.local},
		{"--both", o.both},
		{"--uninstall", o.uninstall},
		{"--status", o.status},
	} {
		if s.on {
			set = append(set, s.name)
		}
	}
	return set
}

func run(ctx context.Context, args []string, e env) int {
	if len(args) > 0 && args[0] == "hook" {
		return runHook(ctx, args[1:], e)
	}

	var opts options
	fs := newFlagSet(&opts, e.stderr)
	if err := fs.Parse(args); err != nil {
		return handleError(e.stderr, hyerrors.New(hyerrors.CodeUsage, err.Error(), err), false)
	}
	if fs.NArg() > 0 {
		err := hyerrors.New(hyerrors.CodeUsage, fmt.Sprintf("unexpected argument %q", fs.Arg(0)), nil)
		return handleError(e.stderr, err, false)
	}
	if set := opts.selectors(); len(set) > 1 {
		err := hyerrors.New(hyerrors.CodeUsage, fmt.Sprintf("%s cannot be combined", strings.Join(set, " and ")), nil)
		return handleError(e.stderr, err, false)
	}

	if opts.help {
		printHelp(e.stdout)
		return 0
	}
	if opts.version {
		printVersion(e.stdout)
		return 0
	}

	if err := config.Initialize(config.WithWorkingDir(e.workDir)); err != nil {
		return handleError(e.stderr, hyerrors.New(hyerrors.CodeConfigurationError, fmt.Sprintf("initialize config: %v", err), err), opts.trace)
	}
	overrides := map[string]any{}
	if fs.Changed("debug") {
		overrides[config.KeyDebug] = opts.debug
	}
	if fs.Changed("trace") {
		overrides[config.KeyTrace] = opts.trace
	}
	if err := config.ApplyOverrides(overrides); err != nil {
		return handleError(e.stderr, err, opts.trace)
	}
	trace := config.GetBool(config.KeyTrace)

	if err := debug.Init(config.GetBool(config.KeyDebug)); err != nil {
		_, _ = fmt.Fprintf(e.stderr, "Warning: could not start debug log: %v\n", err)
	}
	defer debug.Close()

	in, err := newInstaller(e, opts.yes)
	if err != nil {
		return handleError(e.stderr, err, trace)
	}

	printBanner(e.stdout, in.Bundle.Version())
	return handleError(e.stderr, dispatch(ctx, opts, in, e), trace)
}

func newInstaller(e env, yes bool) (*install.Installer, error) {
	b, err := bundle.Default()
	if err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	}
	globalRoot, err := config.GlobalRoot()
	if err != nil {
		return nil, hyerrors.New(hyerrors.CodeConfigurationError, err.Error(), err)
	}
	in := &install.Installer{
		Bundle:     b,
		GlobalRoot: globalRoot,
		LocalRoot:  config.LocalRoot(e.workDir),
		BinPath:    resolveBinary(e),
	}
	if !yes && e.prompter != nil {
		in.Confirmer = e.prompter
	}
	debug.Logf("roots: global=%s local=%s bin=%s", in.GlobalRoot, in.LocalRoot, in.BinPath)
	return in, nil
}

// resolveBinary picks the path hook scripts exec: hooks.binary, then the
// running executable, then "hydra" from PATH.
func resolveBinary(e env) string {
	if configured := strings.TrimSpace(config.GetString(config.KeyHookBinary)); configured != "" {
		return configured
	}
	if e.executable != nil {
		if exe, err := e.executable(); err == nil && exe != "" {
			return exe
		}
	}
	return install.DefaultBinary
}

func dispatch(ctx context.Context, opts options, in *install.Installer, e env) error {
	switch {
	case opts.status:
		printStatus(e.stdout, in.Status())
		return nil
	case opts.uninstall:
		return runUninstall(ctx, in, e, !opts.yes)
	case opts.global:
		return runInstall(ctx, in, e, manifest.ScopeGlobal)
	case opts.local:
		return runInstall(ctx, in, e, manifest.ScopeLocal)
	case opts.both:
		return runInstall(ctx, in, e, manifest.ScopeBoth)
	}

	if e.prompter == nil {
		return hyerrors.New(hyerrors.CodeUsage, "no scope given; use --global, --local or --both", nil)
	}
	scope, ok, err := e.prompter.PickScope(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return install.ErrCancelled
	}
	if !opts.yes {
		printAgentPreview(e.stdout, in.Bundle)
		proceed, err := e.prompter.Confirm(ctx, install.Confirmation{Question: "Proceed?", Default: true})
		if err != nil {
			return err
		}
		if !proceed {
			return install.ErrCancelled
		}
	}
	return runInstall(ctx, in, e, scope)
}

func runInstall(ctx context.Context, in *install.Installer, e env, scope manifest.Scope) error {
	report, err := in.Install(ctx, scope)
	if err != nil {
		return err
	}
	printInstallReport(e.stdout, report)
	if report.AnyFailed() {
		return partialFailure(report.Err())
	}
	return nil
}

func runUninstall(ctx context.Context, in *install.Installer, e env, interactive bool) error {
	report, err := in.Uninstall(ctx, interactive)
	if err != nil {
		return err
	}
	printUninstallReport(e.stdout, report)
	if report.Failed() > 0 {
		return partialFailure(report.Err())
	}
	return nil
}

// partialFailure keeps a permission code from the joined failures so the
// remediation hint still applies.
func partialFailure(err error) error {
	code := hyerrors.CodeWriteFailed
	if hyerrors.IsCode(err, hyerrors.CodePermissionDenied) || hasPermissionError(err) {
		code = hyerrors.CodePermissionDenied
	}
	return hyerrors.New(code, "some files failed; see above", err)
}

func hasPermissionError(err error) bool {
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		return false
	}
	for _, e := range joined.Unwrap() {
		if hyerrors.IsCode(e, hyerrors.CodePermissionDenied) {
			return true
		}
	}
	return false
}
