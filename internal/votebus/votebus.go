// Package votebus relays received votes to other processes over Redis
// pub/sub.
package votebus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/beatX-bot/discordbots-go/pkg/rediskey"
	"github.com/beatX-bot/discordbots-go/pkg/webhook"
)

var errNoBot = errors.New("vote has no bot ID to route it by")

// Publisher is satisfied by *redis.Client.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type Bus struct {
	rdb     Publisher
	timeout time.Duration
	logger  *slog.Logger
}

func New(rdb Publisher, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{rdb: rdb, timeout: 2 * time.Second, logger: logger}
}

// Publish sends v on the vote channel of the bot it was cast for and reports
// how many subscribers received it.
func (b *Bus) Publish(ctx context.Context, v webhook.Vote) (int64, error) {
	if v.Bot.Empty() {
		return 0, errNoBot
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	n, err := b.rdb.Publish(ctx, rediskey.VoteChannel(v.Bot.String()), payload).Result()
	if err != nil {
		return 0, fmt.Errorf("publishing vote: %w", err)
	}
	return n, nil
}

// Forward is a webhook vote subscriber. Publishing failures are logged; the
// webhook response is never affected.
func (b *Bus) Forward(v webhook.Vote) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	n, err := b.Publish(ctx, v)
	if err != nil {
		b.logger.Error("forwarding vote", "bot_id", v.Bot.String(), "user_id", v.User.String(), "error", err)
		return
	}
	b.logger.Debug("forwarded vote", "bot_id", v.Bot.String(), "receivers", n)
}

// Subscribe streams votes published for botID until ctx is done. Malformed
// messages are logged and dropped.
func Subscribe(ctx context.Context, rdb *redis.Client, botID string, logger *slog.Logger) (<-chan webhook.Vote, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sub := rdb.Subscribe(ctx, rediskey.VoteChannel(botID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribing to votes: %w", err)
	}

	votes := make(chan webhook.Vote)
	go func() {
		defer close(votes)
		defer sub.Close()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				v, err := Decode(msg.Payload)
				if err != nil {
					logger.Warn("dropping malformed vote message", "channel", msg.Channel, "error", err)
					continue
				}
				select {
				case votes <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return votes, nil
}

// Decode reverses the encoding Publish uses.
func Decode(payload string) (webhook.Vote, error) {
	var v webhook.Vote
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		return v, fmt.Errorf("decoding vote message: %w", err)
	}
	return v, nil
}
