// Package cmd implements the colx command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/colx/internal/config"
	"github.com/oakwood-commons/colx/internal/formatter"
	"github.com/oakwood-commons/colx/internal/limiter"
	"github.com/oakwood-commons/colx/internal/ui"
	"github.com/oakwood-commons/colx/pkg/autocomplete"
	"github.com/oakwood-commons/colx/pkg/collection"
	"github.com/oakwood-commons/colx/pkg/core"
	"github.com/oakwood-commons/colx/pkg/loader"
	"github.com/oakwood-commons/colx/pkg/logger"
	"github.com/oakwood-commons/colx/pkg/match"
	"github.com/oakwood-commons/colx/pkg/settings"
)

// errShowHelp is returned by load when there is no file and stdin is a terminal.
var errShowHelp = errors.New("no input provided")

// runModel is swapped out in tests.
var runModel = ui.RunModel

type rootOptions struct {
	query       string
	expr        string
	mode        match.Mode
	sensitivity match.Sensitivity
	output      formatter.Format
	debounceMS  int

	interactive bool
	validate    bool
	debug       bool
	noColor     bool
	showKeys    bool
	maxDepth    int
	keyWidth    int
	title       string
	theme       string
	configFile  string

	limit  int
	offset int
	tail   int

	cfg config.File
	// closeLog releases the interactive log file, if one was opened.
	closeLog func()
}

// loaded is a collection read from a file or stdin.
type loaded struct {
	c    *collection.Collection
	name string
	size int64
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{
		mode:        match.ModeContains,
		sensitivity: match.SensitivityBase,
		output:      formatter.FormatTree,
		closeLog:    func() {},
	}

	rootCmd := &cobra.Command{
		Use:   settings.CliBinaryName + " [file]",
		Short: "Filter hierarchical menus and lists the way a combobox does",
		Long: `colx loads a collection of items, sections, headers and separators from
YAML, JSON or TOML and filters it structurally: sections without matches
disappear, separators are kept only between surviving sections.

Reads stdin when no file is given.`,
		Example: "\n  colx menu.yaml -q copy\n  colx menu.yaml -q cpy --mode fuzzy -o list\n" +
			"  colx menu.json --expr 'text.lowerAscii().startsWith(query)' -q re\n  cat menu.yaml | colx -i\n",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       versionString(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.prepare(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			o.closeLog()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args)
		},
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&o.query, "query", "q", "", "filter query")
	pf.Var(modeValue{&o.mode}, "mode", "match mode: "+joinModes()+" (default from config)")
	pf.Var(sensitivityValue{&o.sensitivity}, "sensitivity", "match sensitivity: "+joinSensitivities()+" (default from config)")
	pf.StringVar(&o.expr, "expr", "", "CEL predicate over 'text' and 'query', e.g. 'text.contains(query)'; overrides --mode")
	pf.StringVar(&o.configFile, "config-file", "", "path to a YAML config file (default $XDG_CONFIG_HOME/colx/config.yaml)")
	pf.BoolVar(&o.debug, "debug", false, "enable debug logging")
	pf.BoolVar(&o.noColor, "no-color", false, "disable color output")

	f := rootCmd.Flags()
	f.VarP(formatValue{&o.output}, "output", "o", "output format: "+joinFormats()+" (default from config)")
	f.BoolVarP(&o.interactive, "interactive", "i", false, "filter interactively and print the selected key")
	f.BoolVar(&o.validate, "validate", false, "check the collection links and report the node count")
	f.BoolVar(&o.showKeys, "show-keys", false, "show node keys in tree and list output")
	f.IntVar(&o.maxDepth, "tree-depth", 0, "limit tree depth (0 = unlimited)")
	f.IntVar(&o.keyWidth, "key-width", 0, "key column width for list output (0 = fit longest key)")
	f.StringVar(&o.title, "title", "", "title for tree output and exports (default: the document name)")
	f.StringVar(&o.theme, "theme", "", "theme name (default from config; see 'colx config themes')")
	f.IntVar(&o.debounceMS, "debounce", 0, "interactive input debounce in milliseconds (default from config)")
	f.IntVar(&o.limit, "limit", 0, "limit the number of records displayed")
	f.IntVar(&o.offset, "offset", 0, "skip the first N records")
	f.IntVar(&o.tail, "tail", 0, "show the last N records (mutually exclusive with --limit; ignores --offset)")

	rootCmd.AddCommand(newVersionCmd(), newConfigCmd(o), newStatsCmd(o), newNavCmd(o))
	return rootCmd
}

// Execute runs the colx command line.
func Execute() error {
	return newRootCmd().Execute()
}

// prepare resolves config, theme, logging and run settings ahead of any
// subcommand.
func (o *rootOptions) prepare(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	o.cfg = cfg
	o.applyConfigDefaults(cmd)

	colors, err := cfg.Colors(o.theme)
	if err != nil {
		return err
	}
	formatter.SetTheme(colors)
	if !o.noColor && !stdoutIsTerminal() && !o.interactive {
		o.noColor = true
	}

	var level int8
	if o.debug {
		level = -1
	}
	lgr, err := o.newLogger(level)
	if err != nil {
		return err
	}
	lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, lgr)
	ctx = settings.IntoContext(ctx, o.settings(level))
	cmd.SetContext(ctx)
	return nil
}

// applyConfigDefaults fills every option whose flag was not given from the
// merged config.
func (o *rootOptions) applyConfigDefaults(cmd *cobra.Command) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if !changed("mode") {
		if m, err := match.ParseMode(o.cfg.Filter.Mode); err == nil {
			o.mode = m
		}
	}
	if !changed("sensitivity") {
		if s, err := match.ParseSensitivity(o.cfg.Filter.Sensitivity); err == nil {
			o.sensitivity = s
		}
	}
	if !changed("output") && o.cfg.Output.Format != "" {
		o.output = formatter.Format(o.cfg.Output.Format)
	}
	if !changed("debounce") {
		o.debounceMS = o.cfg.Filter.DebounceMS
	}
	if !changed("tree-depth") {
		o.maxDepth = o.cfg.Output.Tree.MaxDepth
	}
	if !changed("key-width") {
		o.keyWidth = o.cfg.Output.List.KeyWidth
	}
	if !changed("show-keys") {
		switch o.output {
		case formatter.FormatList:
			o.showKeys = o.cfg.Output.List.ShowKeys
		case formatter.FormatTree, "":
			o.showKeys = o.cfg.Output.Tree.ShowKeys
		}
	}
}

// newLogger logs JSON to stderr, except in interactive mode where stderr
// belongs to the terminal UI: there logs go to ui.log_file or nowhere.
func (o *rootOptions) newLogger(level int8) (*logr.Logger, error) {
	if !o.interactive {
		return logger.Get(level), nil
	}
	if o.cfg.UI.LogFile == "" {
		return logger.GetNoopLogger(), nil
	}
	f, err := os.OpenFile(o.cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	o.closeLog = func() { _ = f.Close() }
	lgr := logger.New(f, level)
	return &lgr, nil
}

func (o *rootOptions) settings(level int8) *settings.Run {
	run := settings.NewCliParams()
	run.MinLogLevel = level
	run.NoColor = o.noColor
	run.Filter = settings.FilterSettings{
		Query:       o.query,
		Mode:        string(o.mode),
		Sensitivity: string(o.sensitivity),
		Expr:        o.expr,
		DebounceMS:  o.debounceMS,
	}
	return run
}

func (o *rootOptions) limits() limiter.Config {
	return limiter.Config{Limit: o.limit, Offset: o.offset, Tail: o.tail}
}

// load reads the collection from args[0], or stdin when no file is given.
func (o *rootOptions) load(cmd *cobra.Command, args []string) (*loaded, error) {
	lgr := logger.FromContext(cmd.Context())
	run, _ := settings.FromContext(cmd.Context())

	if len(args) > 0 && args[0] != "-" {
		path := args[0]
		c, doc, err := loader.LoadFile(path)
		if err != nil {
			return nil, err
		}
		var size int64
		if st, err := os.Stat(path); err == nil {
			size = st.Size()
		}
		if run != nil {
			run.Input = settings.InputSettings{Path: path}
		}
		lgr.V(1).Info("loaded collection", "path", path, "nodes", c.Size())
		return &loaded{c: c, name: doc.Name, size: size}, nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && f == os.Stdin && !stdinIsPiped() {
		return nil, errShowHelp
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	c, doc, err := loader.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("stdin: %w", err)
	}
	if run != nil {
		run.Input = settings.InputSettings{FromStdin: true}
	}
	lgr.V(1).Info("loaded collection", "path", "-", "nodes", c.Size())
	return &loaded{c: c, name: doc.Name, size: int64(len(data))}, nil
}

// engine builds a core engine from the run settings in ctx.
func engineFor(ctx context.Context) (*core.Engine, error) {
	run, ok := settings.FromContext(ctx)
	if !ok {
		return core.New()
	}
	if run.Filter.Expr != "" {
		return core.New(core.WithExpression(run.Filter.Expr))
	}
	return core.New(core.WithMatch(match.Mode(run.Filter.Mode), match.Sensitivity(run.Filter.Sensitivity)))
}

// filter applies the query or expression, if any, to c.
func (o *rootOptions) filter(ctx context.Context, engine *core.Engine, c *collection.Collection) (*collection.Collection, error) {
	if o.query == "" && o.expr == "" {
		return c, nil
	}
	out, err := engine.Filter(c, o.query)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	logger.FromContext(ctx).V(1).Info("filtered collection", "query", o.query, "before", c.Size(), "after", out.Size())
	return out, nil
}

func (o *rootOptions) run(cmd *cobra.Command, args []string) error {
	if err := o.limits().Validate(); err != nil {
		return fmt.Errorf("record limiting error: %w", err)
	}

	in, err := o.load(cmd, args)
	if errors.Is(err, errShowHelp) {
		return cmd.Help()
	}
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if o.validate {
		if err := collection.Validate(in.c); err != nil {
			return err
		}
		fmt.Fprintf(out, "valid: %d nodes\n", in.c.Size())
		return nil
	}

	ctx := cmd.Context()
	engine, err := engineFor(ctx)
	if err != nil {
		return err
	}
	title := o.title
	if title == "" {
		title = in.name
	}

	if o.interactive {
		return o.runInteractive(cmd, engine, in.c, title)
	}

	filtered, err := o.filter(ctx, engine, in.c)
	if err != nil {
		return err
	}
	rendered, err := engine.Render(filtered, formatter.Options{
		Format:   o.output,
		NoColor:  o.noColor,
		ShowKeys: o.showKeys,
		KeyWidth: o.keyWidth,
		MaxDepth: o.maxDepth,
		Title:    title,
		Limit:    o.limits(),
	})
	if err != nil {
		return err
	}
	fmt.Fprint(out, rendered)
	return nil
}

func (o *rootOptions) runInteractive(cmd *cobra.Command, engine *core.Engine, c *collection.Collection, title string) error {
	ctx := cmd.Context()
	session, err := engine.NewSession(ctx, c, autocomplete.WithWrap(o.cfg.UI.WrapFocus))
	if err != nil {
		return err
	}
	if o.query != "" {
		if _, err := session.SetInput(ctx, o.query); err != nil {
			return err
		}
	}

	progOpts, cleanup := getProgramOptions()
	defer cleanup()

	selected, err := runModel(ctx, session, ui.RunOptions{
		Title:      title,
		NoColor:    o.noColor,
		ShowKeys:   o.showKeys,
		DebounceMs: o.debounceMS,
	}, progOpts...)
	if err != nil {
		return err
	}
	if selected != nil {
		fmt.Fprintln(cmd.OutOrStdout(), selected.Key)
	}
	return nil
}

func versionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)", settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, runtime.Version())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print colx version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
			return nil
		},
	}
}
