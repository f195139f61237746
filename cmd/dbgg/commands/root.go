package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/beatX-bot/discordbots-go/internal/config"
	"github.com/beatX-bot/discordbots-go/pkg/dbgg"
	"github.com/beatX-bot/discordbots-go/pkg/discord"
)

var (
	version = "dev"
	commit  = "none"
)

func SetVersion(v, c string) {
	version, commit = v, c
	rootCmd.Version = v + "-" + c
}

var (
	configPath string
	envPath    string
	baseURL    string
	verbose    bool
)

// set by the root PersistentPreRunE
var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "dbgg",
	Short:         "dbgg talks to the discord.bots.gg API and receives its vote webhooks.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		var err error
		cfg, err = config.Load(configPath, envPath)
		if err != nil {
			return err
		}
		return cfg.Validate()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "TOML config file")
	flags.StringVar(&envPath, "env", ".env", "dotenv file, ignored when missing")
	flags.StringVar(&baseURL, "base-url", dbgg.DefaultBaseURL, "API base URL")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newClient(opts ...dbgg.Option) *dbgg.Client {
	opts = append([]dbgg.Option{dbgg.WithBaseURL(baseURL), dbgg.WithLogger(logger)}, opts...)
	return dbgg.NewClient(cfg.Token, opts...)
}

// botIDArg takes the bot ID from args, falling back to the configured one.
func botIDArg(args []string) (string, error) {
	id := cfg.BotID
	if len(args) > 0 {
		id = args[0]
	}
	if err := discord.ValidateSnowflake(id); err != nil {
		return "", fmt.Errorf("invalid bot ID %q: %w", id, err)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
