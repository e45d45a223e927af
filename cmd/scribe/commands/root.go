package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/notify"
	"scribe/internal/orchestrator"
	"scribe/internal/printer"
	"scribe/internal/registry"
	"scribe/internal/wiki"
	"scribe/pkg/docboard"
)

var (
	version string
	commit  string
	date    string
)

// Global flags shared by every subcommand. Each falls back to an
// environment variable so the CLI works unconfigured inside the daemon's
// deployment environment.
var (
	redisURL     string
	configPath   string
	instanceName string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scribe",
	Short: "Scribe - Session-to-document generation pipeline",
	Long: `Scribe turns collaboration session transcripts into structured
documents (PRDs, test plans, runbooks) driven by per-team persona
configuration.

Generated documents are versioned in an artifact registry backed by
Redis, progress is broadcast to session subscribers in real time, and
documents can optionally be published to an external wiki.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis", "", "Redis URL (default REDIS_URL or redis://localhost:6379)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to scribe.yml (default SCRIBE_CONFIG or ./scribe.yml)")
	rootCmd.PersistentFlags().StringVarP(&instanceName, "name", "n", "", "Instance name (default SCRIBE_INSTANCE_NAME or 'default')")
}

func resolvedRedisURL() string {
	if redisURL != "" {
		return redisURL
	}
	if env := os.Getenv("REDIS_URL"); env != "" {
		return env
	}
	return "redis://localhost:6379"
}

func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if env := os.Getenv("SCRIBE_CONFIG"); env != "" {
		return env
	}
	return "scribe.yml"
}

func resolvedInstanceName() string {
	if instanceName != "" {
		return instanceName
	}
	if env := os.Getenv("SCRIBE_INSTANCE_NAME"); env != "" {
		return env
	}
	return "default"
}

// newBoardClient connects to Redis and verifies connectivity.
func newBoardClient(ctx context.Context) (*docboard.Client, error) {
	rawURL := resolvedRedisURL()
	redisOpts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, printer.ErrorWithContext(
			"invalid Redis URL",
			fmt.Sprintf("Could not parse: %v", err),
			map[string]string{"url": rawURL},
			[]string{"Pass a valid URL:\n  scribe --redis redis://host:6379 ..."},
		)
	}

	board, err := docboard.NewClient(redisOpts, resolvedInstanceName())
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if err := board.Ping(ctx); err != nil {
		board.Close()
		return nil, printer.ErrorWithContext(
			"Redis not accessible",
			fmt.Sprintf("Error: %v", err),
			map[string]string{"url": rawURL},
			[]string{"Check that Redis is running and reachable."},
		)
	}

	return board, nil
}

// loadConfig reads and validates scribe.yml.
func loadConfig() (*config.ScribeConfig, error) {
	cfg, err := config.Load(resolvedConfigPath())
	if err != nil {
		return nil, printer.Error(
			"failed to load configuration",
			fmt.Sprintf("Error: %v", err),
			[]string{fmt.Sprintf("Check the file:\n  %s", resolvedConfigPath())},
		)
	}
	return cfg, nil
}

// newEngine wires a full generation engine from the configuration. The
// returned board client must be closed by the caller.
func newEngine(ctx context.Context) (*orchestrator.Engine, *docboard.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	board, err := newBoardClient(ctx)
	if err != nil {
		return nil, nil, err
	}

	engine := buildEngine(board, cfg)
	return engine, board, nil
}

// buildEngine composes the engine's collaborators around a board client.
// Shared with the daemon entry point.
func buildEngine(board *docboard.Client, cfg *config.ScribeConfig) *orchestrator.Engine {
	reg := registry.New(board)
	broadcaster := notify.New(board, notify.NewRedisTransport(board))

	opts := orchestrator.Options{
		MaxConcurrentJobs: *cfg.Orchestrator.MaxConcurrentJobs,
		MaxRetries:        *cfg.Orchestrator.MaxRetries,
	}
	if cfg.Wiki != nil {
		client := wiki.New(cfg.Wiki.BaseURL, cfg.Wiki.SpaceKey)
		client.BearerToken = cfg.Wiki.Token
		if token := os.Getenv("SCRIBE_WIKI_TOKEN"); token != "" {
			client.BearerToken = token
		}
		opts.Publisher = client
	}

	return orchestrator.NewEngine(board, reg, broadcaster, config.NewDirectory(cfg), config.NewCatalog(cfg), opts)
}
