package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/apidoc/packages/body"
	"github.com/abdul-hamid-achik/apidoc/packages/core/config"
	"github.com/abdul-hamid-achik/apidoc/packages/logging"
	"github.com/abdul-hamid-achik/apidoc/packages/output"
	"github.com/abdul-hamid-achik/apidoc/packages/recorder"
	"github.com/abdul-hamid-achik/apidoc/packages/store"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag   string
	logLevelFlag string
	noColorFlag  bool

	// set by loadSettings before any command runs
	cfg    = config.DefaultConfig()
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "apidoc",
	Short: "Turn HTTP exchanges into API documentation.",
	Long: `apidoc performs HTTP requests and records them as documentation:
pretty-printed bodies, headers, query parameters and an equivalent curl
command. Binary multipart payloads are replaced with a placeholder so
uploads can be documented safely.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute(v, bt string) {
	version = v
	buildTime = bt

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Config file (default: .apidoc.json, apidoc.json, .apidoc.yml or .apidoc.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(sanitizeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadSettings loads the config file, applies global flags and builds the
// logger.
func loadSettings(cmd *cobra.Command, args []string) error {
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	overrides := &config.Config{LogLevel: logLevelFlag}
	if noColorFlag {
		overrides.NoColor = config.BoolPtr(true)
	}
	cfg = fileConfig.Merge(overrides)

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Format = cfg.LogFormat
	logCfg.File = cfg.LogFile

	l, err := logging.New(logCfg)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	logger = l

	if cfg.GetNoColor() {
		color.NoColor = true
	}

	logger.Debug("settings loaded",
		zap.String("command", cmd.Name()),
		zap.String("config", configFlag),
		zap.String("database", cfg.Database),
	)
	return nil
}

// openStore opens the configured example database.
func openStore() (*store.Store, error) {
	s, err := store.Open(cfg.Database,
		store.WithLogger(logger),
		store.WithTimeout(cfg.GetTimeout()),
	)
	if err != nil {
		return nil, withExitCode(ExitStoreError, err)
	}
	return s, nil
}

// recorderOptions builds recorder settings from the config. strict forces
// the multipart terminator check on.
func recorderOptions(strict bool) []recorder.Option {
	sanitizer := body.NewSanitizer(
		body.WithPlaceholder(cfg.Placeholder),
		body.WithStrictTerminator(strict || cfg.GetStrictMultipart()),
	)
	return []recorder.Option{
		recorder.WithSanitizer(sanitizer),
		recorder.WithHost(cfg.Host),
		recorder.WithRedactedHeaders(cfg.Redact...),
		recorder.WithLogger(logger),
	}
}

func newRecorder(session recorder.Session, strict bool) *recorder.Recorder {
	return recorder.New(session, recorderOptions(strict)...)
}

// newFormatter returns the formatter named by format, writing to the
// command's output.
func newFormatter(cmd *cobra.Command, format string) (output.Formatter, error) {
	f, err := output.New(format, cmd.OutOrStdout(), cfg.GetNoColor())
	if err != nil {
		return nil, withExitCode(ExitUsageError, err)
	}
	return f, nil
}
