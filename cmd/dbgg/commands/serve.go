package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/bsm/redislock"
	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/beatX-bot/discordbots-go/internal/api"
	"github.com/beatX-bot/discordbots-go/internal/poster"
	"github.com/beatX-bot/discordbots-go/internal/votebus"
	"github.com/beatX-bot/discordbots-go/pkg/dbgg"
	"github.com/beatX-bot/discordbots-go/pkg/metrics"
	"github.com/beatX-bot/discordbots-go/pkg/webhook"
)

const shutdownTimeout = 10 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Receives vote webhooks and, with a Discord token, posts guild counts.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	reg := metrics.NewRegistry()
	client := newClient(dbgg.WithMetrics(metrics.NewClient(reg)))

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
	}

	var (
		counters []api.Counter
		posters  []*poster.Poster
	)
	if cfg.DiscordToken != "" {
		if cfg.BotID == "" {
			return errors.New("posting stats needs DBGG_BOT_ID")
		}
		for _, shardID := range cfg.ShardRange.Shards() {
			counter := poster.NewGuildCounter(logger.With("shard_id", shardID))
			session, err := poster.OpenSession(cfg.DiscordToken, shardID, cfg.NumShards, counter)
			if err != nil {
				return err
			}
			defer func(s *discordgo.Session) { _ = s.Close() }(session)

			opts := []poster.Option{
				poster.WithShard(shardID, cfg.NumShards),
				poster.WithInterval(cfg.PostInterval.Duration),
				poster.WithLogger(logger),
			}
			if rdb != nil {
				opts = append(opts, poster.WithLocker(redislock.New(rdb)))
			}
			counters = append(counters, counter)
			posters = append(posters, poster.New(client, cfg.BotID, counter, opts...))
		}
	} else {
		logger.Info("no DISCORD_BOT_TOKEN provided; not posting stats")
	}

	gin.SetMode(gin.ReleaseMode)
	app := api.NewApi(version+"-"+commit, cfg.BotID, cfg.WebhookPath, client, counters...)

	// metrics share the webhook port unless a separate one is configured
	var metricsSrv *http.Server
	var engine *gin.Engine
	if cfg.MetricsPort == 0 || cfg.MetricsPort == cfg.WebhookPort {
		engine = app.Engine(metrics.Handler(reg))
	} else {
		engine = app.Engine(nil)
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		metricsSrv = &http.Server{
			Addr:              ":" + strconv.Itoa(cfg.MetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.WebhookPort),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	opts := []webhook.Option{
		webhook.WithServer(srv),
		webhook.WithPath(cfg.WebhookPath),
		webhook.WithAuth(cfg.WebhookAuth),
		webhook.WithLogger(logger),
		webhook.WithMetrics(metrics.NewWebhook(reg)),
	}
	if rdb != nil {
		opts = append(opts, webhook.OnVote(votebus.New(rdb, logger).Forward))
	}
	if cfg.WebhookAuth == "" {
		logger.Warn("WEBHOOK_AUTH is not set; accepting unauthenticated votes")
	}
	wh, err := webhook.New(opts...)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return listen(ctx, srv)
	})
	if metricsSrv != nil {
		g.Go(func() error {
			return listen(ctx, metricsSrv)
		})
	}
	for _, p := range posters {
		p := p
		g.Go(func() error {
			select {
			case <-wh.Ready():
			case <-ctx.Done():
				return nil
			}
			if err := p.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	err = g.Wait()
	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = wh.Close(closeCtx)
	return err
}

// listen serves srv until ctx is done, then shuts it down gracefully.
func listen(ctx context.Context, srv *http.Server) error {
	errs := make(chan error, 1)
	go func() {
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
