package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// globalFlags are shared by every command and override the config file
type globalFlags struct {
	configPath  string
	backend     string
	bucket      string
	workerURL   string
	definitions string
	rules       string
	verbose     bool
	logFile     string
}

// app is what every command needs once configuration is resolved
type app struct {
	cfg         *Config
	logger      *Logger
	store       Store
	nav         *Navigator
	definitions *DefinitionsLoader
	watcher     *RuleWatcher
	closeLog    func()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "resultsview [path]",
		Short: "Browse evaluation results stored in an object store",
		Long: `resultsview browses a flat object store as a folder hierarchy.
Folders holding only files are grouped by category, and summary
spreadsheets are shown as colour-scaled report tables.

Configuration is read from .s3cfg (compatible with s3cmd) with an
extra [resultsview] section.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, flags, args)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "config file (default: .s3cfg, ~/.s3cfg, /etc/s3cfg)")
	pf.StringVar(&flags.backend, "backend", "", "store backend: s3, worker or azure")
	pf.StringVarP(&flags.bucket, "bucket", "b", "", "S3 bucket name")
	pf.StringVar(&flags.workerURL, "worker-url", "", "base URL of the listing worker")
	pf.StringVar(&flags.definitions, "definitions", "", "column definitions document (path or URL)")
	pf.StringVar(&flags.rules, "rules", "", "classification rules file (YAML)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&flags.logFile, "log-file", "", "write logs to this file instead of stderr")

	root.AddCommand(
		newBrowseCmd(flags),
		newServeCmd(flags),
		newLsCmd(flags),
		newReportCmd(flags),
		newGetCmd(flags),
		newSetupCmd(flags),
	)

	return root
}

func newBrowseCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "browse [path]",
		Short: "Browse the store in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, flags, args)
		},
	}
}

func runBrowse(cmd *cobra.Command, flags *globalFlags, args []string) error {
	// The TUI owns the terminal, so logs go to a file or nowhere
	if flags.logFile == "" {
		flags.logFile = os.DevNull
	}

	a, err := setupApp(cmd, flags, true)
	if err != nil {
		return err
	}
	defer a.closeLog()

	model := NewModel(a.nav, a.definitions, storeName(a.cfg), a.cfg.DownloadDir, firstArg(args))
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newServeCmd(flags *globalFlags) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser interface over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setupApp(cmd, flags, false)
			if err != nil {
				return err
			}
			defer a.closeLog()

			if listen != "" {
				a.cfg.Listen = listen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return NewServer(a.nav, a.definitions, a.logger).ListenAndServe(ctx, a.cfg.Listen)
			})
			if a.watcher != nil {
				g.Go(func() error {
					return a.watcher.Watch(ctx)
				})
			}
			return g.Wait()
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (default from config, 127.0.0.1:8080)")
	return cmd
}

func newLsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [path]",
		Short: "Print the listing of a location",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setupApp(cmd, flags, false)
			if err != nil {
				return err
			}
			defer a.closeLog()

			view := a.nav.Load(cmd.Context(), firstArg(args))
			out := cmd.OutOrStdout()

			switch view.Route.Mode {
			case ModeReportView, ModeRawFileView:
				fmt.Fprintf(out, "%s (%s)\n", view.Route.Key, view.Route.Mode)
			default:
				fmt.Fprint(out, RenderListing(view))
			}
			if view.ListingErr != nil {
				return view.ListingErr
			}
			return nil
		},
	}
}

func newReportCmd(flags *globalFlags) *cobra.Command {
	var showDefinitions bool

	cmd := &cobra.Command{
		Use:   "report <path>",
		Short: "Print a report table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setupApp(cmd, flags, false)
			if err != nil {
				return err
			}
			defer a.closeLog()

			ctx := cmd.Context()
			view := a.nav.Load(ctx, args[0])
			if view.Route.Mode != ModeReportView {
				return fmt.Errorf("%s is not a report location (%s)", args[0], view.Route.Mode)
			}
			if !view.Route.Found {
				return fmt.Errorf("report %s: %w", view.Route.Key, ErrObjectNotFound)
			}

			model, err := a.nav.LoadReport(ctx, view.Route, a.definitions.Get(ctx))
			if err != nil {
				return fmt.Errorf("failed to load report %s: %w", view.Route.Key, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, RenderTableTerm(model))
			if showDefinitions {
				rendered, err := RenderDefinitionsTerm(model, 100)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, rendered)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showDefinitions, "definitions-table", "d", false, "also print the column definitions")
	return cmd
}

func newGetCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key> [dest]",
		Short: "Download one object",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setupApp(cmd, flags, false)
			if err != nil {
				return err
			}
			defer a.closeLog()

			key := strings.TrimPrefix(args[0], "/")
			dest := a.cfg.DownloadDir
			if len(args) == 2 {
				dest = args[1]
			}

			target, err := DownloadObject(cmd.Context(), a.store, key, dest, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("failed to download %s: %w", key, err)
			}
			a.logger.Info().Str("key", key).Str("path", target).Msg("downloaded")
			return nil
		},
	}
}

func newSetupCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create a configuration file interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := InteractiveSetup(cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("setup cancelled or failed: %w", err)
			}
			return saveSetup(cmd, flags, cfg)
		},
	}
}

func saveSetup(cmd *cobra.Command, flags *globalFlags, cfg *Config) error {
	target := flags.configPath
	if target == "" {
		target = ".s3cfg"
	}
	if err := SaveConfig(cfg, target); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", target)
	return nil
}

// setupApp resolves configuration, logging, the store and the navigator.
// interactive allows falling back to the setup prompt when no config exists.
func setupApp(cmd *cobra.Command, flags *globalFlags, interactive bool) (*app, error) {
	logger, closeLog, err := openLogger(cmd.ErrOrStderr(), flags)
	if err != nil {
		return nil, err
	}

	cfg, err := resolveConfig(cmd, flags, interactive)
	if err != nil {
		closeLog()
		return nil, err
	}
	logger.Debug().Str("backend", cfg.Backend).Str("config", cfg.Path).Msg("configuration loaded")

	store, err := NewStore(cfg, logger)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("failed to create store client: %w", err)
	}

	if s3Client, ok := store.(*S3Client); ok {
		if err := s3Client.HeadBucket(cmd.Context()); err != nil {
			closeLog()
			return nil, fmt.Errorf("cannot access bucket '%s': %w", cfg.Bucket, err)
		}
	}

	a := &app{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		definitions: NewDefinitionsLoader(cfg.Definitions, logger),
		closeLog:    closeLog,
	}

	var rules RuleSource
	if cfg.Rules != "" {
		watcher, err := NewRuleWatcher(cfg.Rules, logger)
		if err != nil {
			closeLog()
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
		a.watcher = watcher
		rules = watcher
	}

	a.nav = NewNavigator(store, rules, NavOptions{ReportSuffixes: cfg.ReportSuffixes}, logger)
	return a, nil
}

// resolveConfig loads the config file and applies flag overrides
func resolveConfig(cmd *cobra.Command, flags *globalFlags, interactive bool) (*Config, error) {
	cfg, err := LoadConfig(flags.configPath)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && flags.configPath == "":
		cfg = DefaultConfig()
		backend := flags.backend
		if backend == "" {
			backend = BackendS3
		}
		if backend == BackendS3 && interactive && !hasS3Env() {
			fmt.Fprintf(cmd.ErrOrStderr(), "No configuration found: %s\n\n", err)
			cfg, err = InteractiveSetup(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return nil, fmt.Errorf("setup cancelled or failed: %w", err)
			}
			if err := saveSetup(cmd, flags, cfg); err != nil {
				return nil, err
			}
		}
	default:
		return nil, err
	}

	applyFlags(cfg, flags)
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyFlags(cfg *Config, flags *globalFlags) {
	if flags.backend != "" {
		cfg.Backend = strings.ToLower(flags.backend)
	}
	if flags.bucket != "" {
		cfg.Bucket = flags.bucket
	}
	if flags.workerURL != "" {
		cfg.WorkerURL = flags.workerURL
	}
	if flags.definitions != "" {
		cfg.Definitions = flags.definitions
	}
	if flags.rules != "" {
		cfg.Rules = flags.rules
	}
}

// applyEnv fills S3 credentials from the standard AWS variables when the file has none
func applyEnv(cfg *Config) {
	if cfg.S3.AccessKey == "" {
		cfg.S3.AccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
	}
	if cfg.S3.SecretKey == "" {
		cfg.S3.SecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
}

func hasS3Env() bool {
	return os.Getenv("AWS_ACCESS_KEY_ID") != "" && os.Getenv("AWS_SECRET_ACCESS_KEY") != ""
}

// openLogger writes to --log-file when set, stderr otherwise
func openLogger(stderr io.Writer, flags *globalFlags) (*Logger, func(), error) {
	if flags.logFile == "" {
		return NewLogger(stderr, flags.verbose), func() {}, nil
	}

	f, err := os.OpenFile(flags.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return NewLogger(f, flags.verbose), func() { f.Close() }, nil
}

func storeName(cfg *Config) string {
	switch cfg.Backend {
	case BackendWorker:
		return cfg.WorkerURL
	case BackendAzure:
		return cfg.AzureContainer
	default:
		return cfg.Bucket
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return "/"
	}
	return "/" + strings.TrimPrefix(path.Clean("/"+args[0]), "/")
}
