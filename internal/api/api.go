// Package api is the small HTTP app served next to the vote webhook: health
// and bot info routes on a gin engine.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/beatX-bot/discordbots-go/pkg/dbgg"
	"github.com/beatX-bot/discordbots-go/pkg/discord"
)

type StatsFetcher interface {
	GetStats(ctx context.Context, botID string) (dbgg.BotStats, error)
}

type Counter interface {
	Count() int
}

type Api struct {
	version     string
	botID       string
	webhookPath string
	client      StatsFetcher
	counters    []Counter
	started     time.Time
}

type HttpError struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
}

// BotInfo is what GET /bot/info reports about the running process.
type BotInfo struct {
	Version     string     `json:"version"`
	BotID       string     `json:"bot_id,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	Guilds      int        `json:"guilds"`
	Shards      int        `json:"shards"`
	WebhookPath string     `json:"webhook_path"`
	Uptime      string     `json:"uptime"`
}

func NewApi(version, botID, webhookPath string, client StatsFetcher, counters ...Counter) *Api {
	return &Api{
		version:     version,
		botID:       botID,
		webhookPath: webhookPath,
		client:      client,
		counters:    counters,
		started:     time.Now(),
	}
}

// Engine builds the gin router. metrics, when non-nil, is mounted at
// /metrics.
func (api *Api) Engine(metrics http.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	botGroup := r.Group("/bot")
	botGroup.GET("/info", handleGetInfo(api))
	botGroup.GET("/stats", handleGetStats(api))

	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}
	return r
}

func (api *Api) guilds() int {
	total := 0
	for _, c := range api.counters {
		total += c.Count()
	}
	return total
}

func handleGetInfo(api *Api) func(c *gin.Context) {
	return func(c *gin.Context) {
		info := BotInfo{
			Version:     api.version,
			BotID:       api.botID,
			Guilds:      api.guilds(),
			Shards:      len(api.counters),
			WebhookPath: api.webhookPath,
			Uptime:      time.Since(api.started).Round(time.Second).String(),
		}
		if created, err := discord.Snowflake(api.botID).CreatedAt(); err == nil {
			info.CreatedAt = &created
		}
		c.JSON(http.StatusOK, info)
	}
}

// handleGetStats reports what the listing API currently has for the bot.
func handleGetStats(api *Api) func(c *gin.Context) {
	return func(c *gin.Context) {
		if discord.ValidateSnowflake(api.botID) != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, HttpError{
				StatusCode: http.StatusServiceUnavailable,
				Error:      "no bot ID configured",
			})
			return
		}
		stats, err := api.client.GetStats(c.Request.Context(), api.botID)
		if err != nil {
			status := http.StatusBadGateway
			if dbgg.IsNotFound(err) {
				status = http.StatusNotFound
			}
			c.AbortWithStatusJSON(status, HttpError{
				StatusCode: status,
				Error:      err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
