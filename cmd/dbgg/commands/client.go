package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beatX-bot/discordbots-go/pkg/dbgg"
	"github.com/beatX-bot/discordbots-go/pkg/discord"
)

var (
	postServers int
	postShardID int
	postShards  int

	botsFields     []string
	botsSearch     map[string]string
	botsQuery      string
	botsPage       int
	botsLimit      int
	botsLibrary    string
	botsSort       string
	botsOrder      string
	botsAuthorID   string
	botsUnverified bool
)

func init() {
	postCmd.Flags().IntVar(&postServers, "servers", -1, "server count to report (required)")
	postCmd.Flags().IntVar(&postShardID, "shard-id", -1, "shard ID, when reporting for one shard")
	postCmd.Flags().IntVar(&postShards, "shards", 0, "total shard count")

	flags := botsCmd.Flags()
	flags.StringSliceVar(&botsFields, "fields", nil, "fields to return, e.g. id,username")
	flags.StringToStringVar(&botsSearch, "search", nil, "field filters, e.g. username=shiro")
	flags.StringVarP(&botsQuery, "query", "q", "", "free-text search")
	flags.IntVar(&botsPage, "page", 0, "page number")
	flags.IntVar(&botsLimit, "limit", 0, "results per page")
	flags.StringVar(&botsLibrary, "lib", "", "only bots built on this library")
	flags.StringVar(&botsSort, "sort", "", "sort field")
	flags.StringVar(&botsOrder, "order", "", "asc or desc")
	flags.StringVar(&botsAuthorID, "author-id", "", "only bots owned by this user")
	flags.BoolVar(&botsUnverified, "unverified", false, "include unverified bots")

	rootCmd.AddCommand(postCmd, botCmd, statsCmd, botsCmd)
}

var postCmd = &cobra.Command{
	Use:   "post [bot-id] --servers <n> [--shard-id <id> --shards <n>]",
	Short: "Posts server and shard counts once.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		botID, err := botIDArg(args)
		if err != nil {
			return err
		}
		stats := dbgg.Stats{}
		if postServers >= 0 {
			stats = dbgg.NewStats(postServers)
		}
		if postShardID >= 0 {
			stats = stats.WithShard(postShardID, postShards)
		} else if postShards > 0 {
			stats.ShardCount = &postShards
		}

		posted, err := newClient().PostStats(cmd.Context(), botID, stats)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), posted)
	},
}

var botCmd = &cobra.Command{
	Use:   "bot [bot-id]",
	Short: "Prints a bot's listing.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		botID, err := botIDArg(args)
		if err != nil {
			return err
		}
		bot, err := newClient().GetBot(cmd.Context(), botID)
		if err != nil {
			return err
		}
		if created, err := discord.Snowflake(botID).CreatedAt(); err == nil {
			logger.Debug("bot account created", "created_at", created)
		}
		return printJSON(cmd.OutOrStdout(), bot)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats [bot-id]",
	Short: "Prints the server and shard counts the listing has for a bot.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		botID, err := botIDArg(args)
		if err != nil {
			return err
		}
		stats, err := newClient().GetStats(cmd.Context(), botID)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "servers: %d\nshards: %d\n", stats.ServerCount, stats.ShardCount)
		return err
	},
}

var botsCmd = &cobra.Command{
	Use:   "bots [--fields id,username] [--search username=shiro]",
	Short: "Lists bots on the listing.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		query := &dbgg.BotQuery{
			Fields:   botsFields,
			Search:   botsSearch,
			Query:    botsQuery,
			Page:     botsPage,
			Limit:    botsLimit,
			AuthorID: botsAuthorID,
			Library:  botsLibrary,
			Sort:     botsSort,
			Order:    botsOrder,
		}
		if cmd.Flags().Changed("unverified") {
			query.Unverified = &botsUnverified
		}
		res, err := newClient().GetBots(cmd.Context(), query)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}
