// Package poster periodically reports a shard's guild count to the listing
// API.
package poster

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bsm/redislock"

	"github.com/beatX-bot/discordbots-go/pkg/dbgg"
	"github.com/beatX-bot/discordbots-go/pkg/rediskey"
)

type StatsPoster interface {
	PostStats(ctx context.Context, botID string, stats dbgg.Stats) (dbgg.Stats, error)
}

// Locker is satisfied by *redislock.Client.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (*redislock.Lock, error)
}

type Counter interface {
	Count() int
}

type Poster struct {
	client     StatsPoster
	botID      string
	counter    Counter
	shardID    int
	shardCount int
	interval   time.Duration
	locker     Locker
	logger     *slog.Logger
}

type Option func(*Poster)

func WithShard(shardID, shardCount int) Option {
	return func(p *Poster) {
		p.shardID = shardID
		p.shardCount = shardCount
	}
}

// DefaultInterval is used when no interval, or a non-positive one, is given.
const DefaultInterval = 30 * time.Minute

func WithInterval(d time.Duration) Option {
	return func(p *Poster) { p.interval = d }
}

// WithLocker makes replicas of the same shard share one post per interval.
func WithLocker(l Locker) Option {
	return func(p *Poster) { p.locker = l }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Poster) { p.logger = logger }
}

func New(client StatsPoster, botID string, counter Counter, opts ...Option) *Poster {
	p := &Poster{
		client:   client,
		botID:    botID,
		counter:  counter,
		interval: DefaultInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("bot_id", botID, "shard_id", p.shardID)
	if p.interval <= 0 {
		p.logger.Warn("ignoring non-positive post interval", "interval", p.interval, "using", DefaultInterval)
		p.interval = DefaultInterval
	}
	return p
}

// ErrSkipped is returned by PostOnce when another replica holds the lock.
var ErrSkipped = errors.New("poster: another replica posted this interval")

func (p *Poster) stats() dbgg.Stats {
	stats := dbgg.NewStats(p.counter.Count())
	if p.shardCount > 1 {
		stats = stats.WithShard(p.shardID, p.shardCount)
	}
	return stats
}

// PostOnce posts the current count.
func (p *Poster) PostOnce(ctx context.Context) error {
	if p.locker != nil {
		// held until it expires, so other replicas skip the rest of the interval
		ttl := p.interval * 9 / 10
		_, err := p.locker.Obtain(ctx, rediskey.PostLock(p.botID, p.shardID), ttl, nil)
		if errors.Is(err, redislock.ErrNotObtained) {
			return ErrSkipped
		}
		if err != nil {
			return err
		}
	}

	stats, err := p.client.PostStats(ctx, p.botID, p.stats())
	if err != nil {
		return err
	}
	p.logger.Info("posted stats", "server_count", *stats.ServerCount)
	return nil
}

// Run posts immediately and then every interval until ctx is done. Failed
// posts are logged and left for the next tick.
func (p *Poster) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.tick(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Poster) tick(ctx context.Context) {
	err := p.PostOnce(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrSkipped):
		p.logger.Debug("skipping stats post", "reason", err)
	case ctx.Err() != nil:
	default:
		p.logger.Error("posting stats", "error", err)
	}
}
