package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"roombook/internal/access"
	"roombook/internal/api"
	"roombook/internal/config"
	"roombook/internal/cookies"
	"roombook/internal/dashboard"
	"roombook/internal/session"
	"roombook/internal/storage"
	"roombook/internal/telemetry"
	"roombook/internal/utils"
	"roombook/internal/validate"
)

const serviceName = "roombook"

var (
	cfgFile      string
	outputFormat string
	cfg          *config.Config
	logger       *slog.Logger

	// Set up on first use by commands that talk to the backend.
	client   *clientApp
	shutdown func(context.Context) error
	span     trace.Span
)

// clientApp is everything a command needs to talk to the backend as the
// signed in user.
type clientApp struct {
	provider  storage.Provider
	jar       *cookies.Jar
	api       *api.Client
	session   *session.Manager
	rbac      *access.RBAC
	dashboard *dashboard.Dashboard
}

var rootCmd = &cobra.Command{
	Use:   "roombook",
	Short: "Meeting room booking client",
	Long: `Book meeting rooms, manage your bookings and, as an administrator,
manage rooms and review every booking in the organisation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env file is fine
		_ = godotenv.Load()

		var err error
		if cfgFile != "" {
			cfg, err = config.LoadConfig(cfgFile)
		} else {
			cfg, err = config.LoadConfig()
		}
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if outputFormat != "" {
			cfg.Output = outputFormat
		}

		logger = initLogger(cfg)

		shutdown, err = telemetry.Setup(cmd.Context(), cfg.Tracing, serviceName, utils.GetVersion())
		if err != nil {
			logger.Warn("Tracing disabled", "error", err)
		}

		ctx, s := telemetry.Tracer().Start(cmd.Context(), cmd.CommandPath())
		span = s
		cmd.SetContext(ctx)
		return nil
	},
}

// Initialize logger. Logs go to stderr so command output stays parseable.
func initLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToUpper(cfg.LogLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
		fmt.Fprintln(os.Stderr, "Invalid log level in config, defaulting to INFO")
	}
	handlerOpts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	slog.Debug("Logger initialized", "level", level.String())
	return logger
}

// openClient builds the backend client stack: the cookie store, the API
// client carrying the jar, the session manager and the dashboard.
func openClient(ctx context.Context) (*clientApp, error) {
	if client != nil {
		return client, nil
	}

	provider, err := storage.NewProvider(ctx, &cfg.Storage, logger)
	if err != nil && !errors.Is(err, storage.ErrNoProvider) {
		return nil, fmt.Errorf("failed to open cookie storage: %w", err)
	}
	store, err := cookies.NewStore(&cfg.Storage, provider)
	if err != nil {
		if provider != nil {
			provider.Close()
		}
		return nil, err
	}

	jar := cookies.NewJar(store, logger)
	if err := jar.Prune(ctx); err != nil {
		logger.Warn("Failed to prune expired cookies", "error", err)
	}

	apiClient, err := api.New(api.Options{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.RequestTimeout(),
		Jar:       jar,
		Transport: telemetry.WrapTransport(nil),
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
		UserAgent: utils.UserAgent(),
		Logger:    logger,
	})
	if err != nil {
		if provider != nil {
			provider.Close()
		}
		return nil, err
	}

	policy, err := access.LoadPolicy(cfg.RBAC.PolicyFile)
	if err != nil {
		if provider != nil {
			provider.Close()
		}
		return nil, fmt.Errorf("failed to load RBAC policy %q: %w", cfg.RBAC.PolicyFile, err)
	}
	rbac := access.New(policy, logger)

	sess := session.NewManager(apiClient, logger)
	client = &clientApp{
		provider:  provider,
		jar:       jar,
		api:       apiClient,
		session:   sess,
		rbac:      rbac,
		dashboard: dashboard.New(apiClient, sess, rbac, dashboard.Options{Logger: logger}),
	}
	return client, nil
}

// signedIn opens the client and restores the session from the stored cookie.
func signedIn(ctx context.Context) (*clientApp, error) {
	app, err := openClient(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := app.session.Restore(ctx); err != nil {
		if errors.Is(err, session.ErrSessionExpired) {
			return nil, errors.New("not signed in, run 'roombook auth login' first")
		}
		return nil, err
	}
	return app, nil
}

func cleanup(err error) {
	if span != nil {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
	if shutdown != nil {
		if serr := shutdown(context.Background()); serr != nil && logger != nil {
			logger.Warn("Failed to flush traces", "error", serr)
		}
	}
	if client != nil && client.provider != nil {
		client.provider.Close()
	}
}

// errorText renders err for the terminal. Server messages are shown verbatim.
func errorText(err error) string {
	var verr *validate.ValidationError
	if errors.As(err, &verr) {
		return strings.Join(verr.Messages(), "\n")
	}
	if errors.Is(err, session.ErrSessionExpired) {
		return session.ErrSessionExpired.Error()
	}
	var reqErr *api.RequestError
	if errors.As(err, &reqErr) {
		return api.Message(err)
	}
	return err.Error()
}

func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	cleanup(err)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", errorText(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./instance/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: table, json or yaml")
	rootCmd.Version = utils.GetVersion()
}
