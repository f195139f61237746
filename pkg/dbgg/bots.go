package dbgg

import (
	"context"
	"fmt"
	"net/http"
)

// PostStats reports stats for botID. stats.ServerCount is required. On
// success the caller's own stats value is returned; the API's
// acknowledgement body is discarded.
func (c *Client) PostStats(ctx context.Context, botID string, stats Stats) (Stats, error) {
	if botID == "" {
		return Stats{}, &ValidationError{Op: "PostStats", Field: "botID"}
	}
	if stats.ServerCount == nil {
		return Stats{}, &ValidationError{Op: "PostStats", Field: "stats.ServerCount"}
	}

	body := StatsFields.Encode(stats.local())
	_, err := c.Request(ctx, http.MethodPost, BotStatsEndpoint, map[string]string{"id": botID}, body)
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// GetStats fetches the bot and projects its server and shard counts.
func (c *Client) GetStats(ctx context.Context, botID string) (BotStats, error) {
	if botID == "" {
		return BotStats{}, &ValidationError{Op: "GetStats", Field: "botID"}
	}
	res, err := c.Request(ctx, http.MethodGet, BotEndpoint, map[string]string{"id": botID}, nil)
	if err != nil {
		return BotStats{}, err
	}
	doc, ok := res.JSON.(map[string]any)
	if !ok {
		return BotStats{}, fmt.Errorf("dbgg: GetStats: expected a JSON object, got %s", describe(res))
	}
	stats, err := botStatsFromDocument(doc)
	if err != nil {
		return BotStats{}, fmt.Errorf("dbgg: GetStats: %w", err)
	}
	return stats, nil
}

// GetBot returns the listing entry for botID as the API sent it.
func (c *Client) GetBot(ctx context.Context, botID string) (*Bot, error) {
	if botID == "" {
		return nil, &ValidationError{Op: "GetBot", Field: "botID"}
	}
	res, err := c.Request(ctx, http.MethodGet, BotEndpoint, map[string]string{"id": botID}, nil)
	if err != nil {
		return nil, err
	}
	if _, ok := res.JSON.(map[string]any); !ok {
		return nil, fmt.Errorf("dbgg: GetBot: expected a JSON object, got %s", describe(res))
	}
	var bot Bot
	if err := res.Decode(&bot); err != nil {
		return nil, fmt.Errorf("dbgg: GetBot: %w", err)
	}
	return &bot, nil
}

// GetBots lists bots. query may be nil.
func (c *Client) GetBots(ctx context.Context, query *BotQuery) (*BotsResponse, error) {
	res, err := c.Request(ctx, http.MethodGet, BotsEndpoint, nil, query.Values())
	if err != nil {
		return nil, err
	}
	if _, ok := res.JSON.(map[string]any); !ok {
		return nil, fmt.Errorf("dbgg: GetBots: expected a JSON object, got %s", describe(res))
	}
	var out BotsResponse
	if err := res.Decode(&out); err != nil {
		return nil, fmt.Errorf("dbgg: GetBots: %w", err)
	}
	return &out, nil
}

func describe(res *Response) string {
	if !res.IsJSON {
		return fmt.Sprintf("%q text", res.ContentType)
	}
	return fmt.Sprintf("%T", res.JSON)
}
