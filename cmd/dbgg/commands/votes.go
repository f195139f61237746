package commands

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"

	"github.com/beatX-bot/discordbots-go/internal/votebus"
)

func init() {
	rootCmd.AddCommand(votesCmd)
}

var votesCmd = &cobra.Command{
	Use:   "votes [bot-id]",
	Short: "Prints votes relayed over Redis by a running serve command.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		botID, err := botIDArg(args)
		if err != nil {
			return err
		}
		if cfg.RedisAddr == "" {
			return errors.New("no REDIS_ADDR specified")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer rdb.Close()

		votes, err := votebus.Subscribe(ctx, rdb, botID, logger)
		if err != nil {
			return err
		}
		for v := range votes {
			if err := printJSON(cmd.OutOrStdout(), v); err != nil {
				return err
			}
		}
		return nil
	},
}
