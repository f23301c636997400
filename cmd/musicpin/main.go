// Package main provides the musicpin CLI application entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"musicpin/internal/core"
	"musicpin/internal/flood"
	httpserver "musicpin/internal/http"
	"musicpin/internal/i18n"
	"musicpin/pkg/fuzzy"
	"musicpin/pkg/musiclink"
)

const (
	defaultServerHost = "0.0.0.0"
	envPrefix         = "MUSICPIN"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "musicpin",
	Short: "musicpin - federated song search with playable results",
	Long: `musicpin resolves a song and/or artist to one playable track by probing third-party
music providers in a fixed priority order and checking each result for relevance.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := core.DefaultConfig()
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", "config file (default is .env)")
	flags.String("log-level", defaults.Log.Level, "log level (debug, info, warn, error)")
	flags.String("log-format", defaults.Log.Format, "log format (json, console)")

	flags.String("sby-base-url", "", "Base URL of the sby provider")
	flags.String("xf-base-url", "", "Base URL of the xf provider")
	flags.String("xzg-base-url", "", "Base URL of the xzg provider")
	flags.String("lz-base-url", "", "Base URL of the lz provider")
	flags.String("cgg-base-url", "", "Base URL of the cgg provider")

	flags.Duration("http-timeout", defaults.Upstream.Timeout, "Timeout of a single upstream call")
	flags.Int64("http-max-body-bytes", defaults.Upstream.MaxBodyBytes, "Maximum upstream response size")
	flags.Int("page-size", defaults.Upstream.PageSize, "Search page size")

	flags.Float64("relevance-split-min", defaults.Resolve.SplitPartMin, "Minimum similarity of each part when song and artist are matched separately")
	flags.Float64("relevance-whole-min", defaults.Resolve.WholeRecordMin, "Minimum similarity of the whole query against title and artist")
	flags.Float64("relevance-single-min", defaults.Resolve.SingleFieldMin, "Minimum similarity of the whole query against a single field")
	flags.StringSlice("disabled-interfaces", nil, "platform:provider pairs to skip, e.g. qq:sby,dy:cgg")

	flags.String("server-host", defaultServerHost, "HTTP server host")
	flags.Int("server-port", defaults.Server.Port, "HTTP server port")
	flags.Int("rate-limit-per-minute", defaults.Server.RateLimitPerMinute, "Maximum API requests per client per minute (0 disables)")

	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")
	flags.String("language", i18n.DefaultLanguage, fmt.Sprintf("Message language (%s)", supportedLangs))

	flags.Bool("generate-env-example", false, "Generate .env.example file from current configuration and exit")

	if err := viper.BindPFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(serveCmd, newSearchCmd(), newDetailCmd(), newLyricsCmd(), newInterfacesCmd())
}

func initConfig() {
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level, config.Log.Format)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	configureProviders(cfg)
	configureUpstream(cfg)
	configureResolve(cfg)
	configureServer(cfg)
	configureApp(cfg)

	return cfg
}

func configureProviders(cfg *core.Config) {
	cfg.Providers.SBYBaseURL = viper.GetString("sby-base-url")
	cfg.Providers.XFBaseURL = viper.GetString("xf-base-url")
	cfg.Providers.XZGBaseURL = viper.GetString("xzg-base-url")
	cfg.Providers.LZBaseURL = viper.GetString("lz-base-url")
	cfg.Providers.CGGBaseURL = viper.GetString("cgg-base-url")
}

func configureUpstream(cfg *core.Config) {
	if timeout := viper.GetDuration("http-timeout"); timeout > 0 {
		cfg.Upstream.Timeout = timeout
	}
	if limit := viper.GetInt64("http-max-body-bytes"); limit > 0 {
		cfg.Upstream.MaxBodyBytes = limit
	}
	if size := viper.GetInt("page-size"); size > 0 {
		cfg.Upstream.PageSize = size
	}
}

func configureResolve(cfg *core.Config) {
	cfg.Resolve.SplitPartMin = viper.GetFloat64("relevance-split-min")
	cfg.Resolve.WholeRecordMin = viper.GetFloat64("relevance-whole-min")
	cfg.Resolve.SingleFieldMin = viper.GetFloat64("relevance-single-min")
	cfg.Resolve.DisabledInterfaces = splitList(viper.GetStringSlice("disabled-interfaces"))
}

// splitList accepts both repeated flags and a comma or space separated env value.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || r == ' ' || r == ';'
		})...)
	}
	return out
}

func configureServer(cfg *core.Config) {
	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultServerHost
	}
	cfg.Server.Port = viper.GetInt("server-port")
	cfg.Server.RateLimitPerMinute = viper.GetInt("rate-limit-per-minute")
	cfg.Log.Level = viper.GetString("log-level")
	cfg.Log.Format = viper.GetString("log-format")
}

func configureApp(cfg *core.Config) {
	cfg.App.Language = viper.GetString("language")
	if cfg.App.Language == "" {
		cfg.App.Language = i18n.DefaultLanguage
	}

	if !i18n.IsSupported(cfg.App.Language) {
		fmt.Fprintf(os.Stderr, "Warning: Unsupported language '%s', falling back to '%s'. Supported languages: %s\n",
			cfg.App.Language, i18n.DefaultLanguage, strings.Join(i18n.GetSupportedLanguages(), ", "))
		cfg.App.Language = i18n.DefaultLanguage
	}
}

func buildLogger(level, format string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

// newStrategy wires transport, adapters, enablement table and matcher.
func newStrategy(observer musiclink.CallObserver, recorder core.Recorder) (*core.Strategy, error) {
	var clientOpts []musiclink.ClientOption
	if observer != nil {
		clientOpts = append(clientOpts, musiclink.WithObserver(observer))
	}
	client := musiclink.NewClient(musiclink.ClientConfig{
		BaseURLs:     config.Providers.BaseURLs(),
		Timeout:      config.Upstream.Timeout,
		MaxBodyBytes: config.Upstream.MaxBodyBytes,
	}, logger.Named("transport"), clientOpts...)

	manager := musiclink.NewDefaultManager(client)
	table, err := core.NewEnablementTable(manager, config.Resolve.DisabledInterfaces)
	if err != nil {
		return nil, fmt.Errorf("failed to build enablement table: %w", err)
	}

	for _, provider := range table.Providers() {
		if _, ok := config.Providers.BaseURLs()[provider]; !ok {
			logger.Warn("No base URL configured, calls will fail over to the next interface",
				zap.String("provider", string(provider)),
				zap.String("env", flagToEnvVar(string(provider)+"-base-url")))
		}
	}

	opts := []core.StrategyOption{core.WithPageSize(config.Upstream.PageSize)}
	if recorder != nil {
		opts = append(opts, core.WithRecorder(recorder))
	}
	matcher := fuzzy.NewMatcher(config.Resolve.Thresholds())
	return core.NewStrategy(manager, table, matcher, logger.Named("strategy"), opts...), nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	if viper.GetBool("generate-env-example") {
		return generateEnvExample(cmd)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting musicpin",
		zap.Int("providers_configured", len(config.Providers.BaseURLs())),
		zap.Strings("disabled_interfaces", config.Resolve.DisabledInterfaces),
		zap.String("language", config.App.Language))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := httpserver.NewMetrics(registry)

	strategy, err := newStrategy(metrics, metrics)
	if err != nil {
		return err
	}

	gate := flood.New(config.Server.RateLimitPerMinute)
	httpserver.WatchFloodgate(registry, gate)

	api := httpserver.NewAPI(strategy, gate, metrics, config.App.Language, logger)
	server := httpserver.NewServer(&config.Server, api, registry, logger)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gCtx)
	})

	localizer := i18n.NewLocalizer(config.App.Language)
	fmt.Fprintln(cmd.ErrOrStderr(), localizer.T("server.startup", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("musicpin stopped with error", zap.Error(err))
		return err
	}

	fmt.Fprintln(cmd.ErrOrStderr(), localizer.T("server.shutdown"))
	logger.Info("musicpin stopped gracefully")
	return nil
}
