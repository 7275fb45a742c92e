package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/synchrotron/c4c4/internal/catalog"
	"github.com/synchrotron/c4c4/internal/dsl"
	"github.com/synchrotron/c4c4/internal/leanix"
	"github.com/synchrotron/c4c4/internal/logging"
	"github.com/synchrotron/c4c4/internal/model"
	"github.com/synchrotron/c4c4/internal/settings"
	"github.com/synchrotron/c4c4/internal/source"
)

// command describes a CLI subcommand.
type command struct {
	name  string
	short string
	usage string
	long  string
	run   func(args []string) error
}

// Usage lines, shared by help and flag errors.
const (
	usageGenerate = "c4c4 generate [-root dir] [-source name] [-out path] [-debug]"
	usageValidate = "c4c4 validate [-root dir] [-source name] [-debug]"
	usageSnapshot = "c4c4 snapshot [-root dir] [-source name] [-out path] [-debug]"
	usageInit     = "c4c4 init [-root dir]"
)

var commands = []command{
	{
		name:  "generate",
		short: "Build, validate and write the Structurizr DSL workspace",
		usage: usageGenerate,
		long: `Fetch a snapshot from the configured source, build and validate the
model, and write the DSL workspace.

The output is rendered in memory and written atomically, so a failed run
never leaves a partial file. Defaults come from <root>/.c4c4/settings.yaml;
-source and -out override them.
`,
		run: runGenerate,
	},
	{
		name:  "validate",
		short: "Check the model without writing output",
		usage: usageValidate,
		long: `Fetch a snapshot, build the model and run the validator.

Warnings (duplicate application names, repeated relationships) are printed.
Structural errors (dangling endpoints, orphaned applications) exit non-zero.
`,
		run: runValidate,
	},
	{
		name:  "snapshot",
		short: "Print the fetched snapshot as YAML",
		usage: usageSnapshot,
		long: `Fetch a snapshot and print it as YAML, or write it to -out.

A saved snapshot can be used later with the "file" source, e.g. to keep a
copy of LeanIX data for offline generation.
`,
		run: runSnapshot,
	},
	{
		name:  "init",
		short: "Create .c4c4/settings.yaml interactively",
		usage: usageInit,
		long: `Prompt for the source and its configuration, then write
<root>/.c4c4/settings.yaml.

Errors if the settings file already exists.
`,
		run: runInit,
	},
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "c4c4: architecture model to Structurizr DSL\n\n")
	fmt.Fprintf(w, "Usage:\n  c4c4 <command> [arguments]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.name, cmd.short)
	}
	fmt.Fprintf(w, "\nSources: %v\n", newSources(zap.NewNop(), "").Names())
	fmt.Fprintf(w, "\nRun 'c4c4 help <command>' for details on a specific command.\n")
}

func printCommandHelp(w io.Writer, name string) {
	for _, cmd := range commands {
		if cmd.name == name {
			fmt.Fprintf(w, "Usage: %s\n\n%s", cmd.usage, cmd.long)
			return
		}
	}
	fmt.Fprintf(w, "c4c4: unknown command %q\n\nRun 'c4c4 help' for usage.\n", name)
}

func dispatch(args []string) error {
	if len(args) == 0 || args[0] == "--help" || args[0] == "-h" {
		printUsage(os.Stdout)
		return nil
	}
	if args[0] == "help" {
		if len(args) >= 2 {
			printCommandHelp(os.Stdout, args[1])
		} else {
			printUsage(os.Stdout)
		}
		return nil
	}
	for _, cmd := range commands {
		if cmd.name == args[0] {
			return cmd.run(args[1:])
		}
	}
	return fmt.Errorf("unknown command %q\n\nRun 'c4c4 help' for usage.", args[0])
}

// newSources is the registry of available snapshot sources.
func newSources(log *zap.Logger, root string) *source.Registry {
	return source.NewRegistry(
		catalog.Provider{},
		source.FileProvider{Root: root},
		&leanix.Provider{Log: log},
	)
}

// ---------------------------------------------------------------------------
// shared flags and pipeline
// ---------------------------------------------------------------------------

// fetchTimeout bounds a whole source fetch, including retries.
const fetchTimeout = 2 * time.Minute

type options struct {
	root   string
	source string
	out    string
	debug  bool
}

// parseFlags parses the flags shared by the pipeline commands. withOut
// adds -out. Positional arguments are rejected.
func parseFlags(name, usage string, args []string, withOut bool) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.root, "root", ".", "project root holding .c4c4/")
	fs.StringVar(&opts.source, "source", "", "snapshot source (default from settings)")
	fs.BoolVar(&opts.debug, "debug", false, "debug logging")
	if withOut {
		fs.StringVar(&opts.out, "out", "", "output path (default from settings)")
	}
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w\nusage: %s", err, usage)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q\nusage: %s", fs.Arg(0), usage)
	}
	return opts, nil
}

// session is the per-run state shared by generate, validate and snapshot.
type session struct {
	opts     *options
	settings *settings.Settings
	log      *zap.Logger
}

func newSession(opts *options) (*session, error) {
	s, err := settings.Load(opts.root)
	if err != nil {
		return nil, err
	}
	if opts.source != "" {
		s.Source = opts.source
	}
	log, err := logging.New(opts.debug)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return &session{opts: opts, settings: s, log: log}, nil
}

// fetch reads a snapshot from the selected source. Ctrl-C cancels it.
func (s *session) fetch() (*source.Snapshot, error) {
	p, err := newSources(s.log, s.opts.root).Lookup(s.settings.Source)
	if err != nil {
		return nil, err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	start := time.Now()
	snap, err := p.Fetch(ctx, s.settings.SourceConfig(p.Name()))
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", p.Name(), err)
	}
	s.log.Debug("source.fetched",
		zap.String("source", p.Name()),
		zap.Duration("elapsed", time.Since(start)))
	return snap, nil
}

// build turns a snapshot into a validated model and prints warnings.
func (s *session) build(snap *source.Snapshot) (*model.Model, error) {
	m, err := model.FromSnapshot(snap, s.settings.Workspace.Name, s.settings.Workspace.Description)
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}
	rep, err := model.Validate(m)
	for _, w := range rep.Warnings {
		color.Yellow("⚠ %s", w)
	}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		for _, issue := range verr.Issues {
			color.Red("✗ %s", issue)
		}
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// resolve makes a relative path relative to the project root.
func (s *session) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.opts.root, path)
}

func printCounts(m *model.Model) {
	fmt.Printf("   Teams:         %d\n", len(m.Teams))
	fmt.Printf("   Platforms:     %d\n", len(m.Platforms))
	fmt.Printf("   Applications:  %d\n", m.ApplicationCount())
	fmt.Printf("   Relationships: %d\n", len(m.Relationships))
}

// ---------------------------------------------------------------------------
// generate
// ---------------------------------------------------------------------------

func runGenerate(args []string) error {
	opts, err := parseFlags("generate", usageGenerate, args, true)
	if err != nil {
		return err
	}
	sess, err := newSession(opts)
	if err != nil {
		return err
	}
	defer sess.log.Sync() //nolint:errcheck

	snap, err := sess.fetch()
	if err != nil {
		return err
	}
	m, err := sess.build(snap)
	if err != nil {
		return err
	}

	quotes, err := sess.settings.QuotePolicy()
	if err != nil {
		return err
	}
	data, err := dsl.New(sess.settings.ViewConfig(snap.Views), quotes).Serialize(m)
	if err != nil {
		return err
	}

	out := opts.out
	if out == "" {
		out = sess.settings.Output
	}
	out = sess.resolve(out)
	if err := dsl.WriteFile(out, data); err != nil {
		return err
	}
	sess.log.Info("workspace.written", zap.String("path", out), zap.Int("bytes", len(data)))

	color.Green("✓ Generated %s", out)
	printCounts(m)
	return nil
}

// ---------------------------------------------------------------------------
// validate
// ---------------------------------------------------------------------------

func runValidate(args []string) error {
	opts, err := parseFlags("validate", usageValidate, args, false)
	if err != nil {
		return err
	}
	sess, err := newSession(opts)
	if err != nil {
		return err
	}
	defer sess.log.Sync() //nolint:errcheck

	snap, err := sess.fetch()
	if err != nil {
		return err
	}
	m, err := sess.build(snap)
	if err != nil {
		return err
	}
	color.Green("✓ Model %q is valid", m.Name)
	printCounts(m)
	return nil
}

// ---------------------------------------------------------------------------
// snapshot
// ---------------------------------------------------------------------------

func runSnapshot(args []string) error {
	opts, err := parseFlags("snapshot", usageSnapshot, args, true)
	if err != nil {
		return err
	}
	sess, err := newSession(opts)
	if err != nil {
		return err
	}
	defer sess.log.Sync() //nolint:errcheck

	snap, err := sess.fetch()
	if err != nil {
		return err
	}
	if opts.out == "" {
		data, err := source.Marshal(snap)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}
	out := sess.resolve(opts.out)
	if err := source.WriteFile(out, snap); err != nil {
		return err
	}
	color.Green("✓ Snapshot written to %s", out)
	return nil
}

// ---------------------------------------------------------------------------
// init
// ---------------------------------------------------------------------------

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	root := fs.String("root", ".", "project root")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w\nusage: %s", err, usageInit)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q\nusage: %s", fs.Arg(0), usageInit)
	}
	if _, err := os.Stat(settings.Path(*root)); err == nil {
		return fmt.Errorf("settings already exist at %s", settings.Path(*root))
	}

	sources := newSources(zap.NewNop(), "")
	s := settings.Default()

	base, err := promptQuestions(initQuestions(sources))
	if err != nil {
		return fmt.Errorf("prompt: %w", err)
	}
	applyInitAnswers(s, base)

	p, err := sources.Lookup(s.Source)
	if err != nil {
		return err
	}
	answers, err := promptQuestions(p.Configure())
	if err != nil {
		return fmt.Errorf("prompt: %w", err)
	}
	if len(answers) > 0 {
		s.Sources = map[string]map[string]string{p.Name(): answers}
	}

	if err := settings.Write(*root, s); err != nil {
		return err
	}
	color.Green("✓ Created %s", settings.Path(*root))
	return nil
}

// initQuestions asks for the settings every source shares.
func initQuestions(sources *source.Registry) []source.ConfigQuestion {
	def := settings.Default()
	return []source.ConfigQuestion{
		{Key: "workspace", Prompt: "Workspace name", Type: "text", Default: def.Workspace.Name},
		{Key: "source", Prompt: fmt.Sprintf("Source %v", sources.Names()), Type: "text", Default: def.Source},
		{Key: "output", Prompt: "Output path", Type: "text", Default: def.Output},
	}
}

func applyInitAnswers(s *settings.Settings, answers map[string]string) {
	if v := answers["workspace"]; v != "" {
		s.Workspace.Name = v
	}
	if v := answers["source"]; v != "" {
		s.Source = v
	}
	if v := answers["output"]; v != "" {
		s.Output = v
	}
}

// reportError writes the one-line failure message main prints before exiting.
func reportError(w io.Writer, err error) {
	fmt.Fprintln(w, color.RedString("c4c4: %v", err))
}

func main() {
	if err := dispatch(os.Args[1:]); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}
