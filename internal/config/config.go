// Package config loads settings for the dbgg binary.
//
// Sources, lowest precedence first: built-in defaults, an optional TOML file,
// an optional .env file, then the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/beatX-bot/discordbots-go/pkg/discord"
	"github.com/beatX-bot/discordbots-go/pkg/webhook"
)

const (
	DefaultWebhookPort  = 8080
	DefaultPostInterval = 30 * time.Minute
	DefaultMetricsPort  = 2112
)

type ShardRange struct {
	Min int `toml:"min"`
	Max int `toml:"max"`
}

type Config struct {
	Token        string `toml:"token"`
	BotID        string `toml:"bot_id"`
	DiscordToken string `toml:"discord_token"`

	WebhookPort int    `toml:"webhook_port"`
	WebhookPath string `toml:"webhook_path"`
	WebhookAuth string `toml:"webhook_auth"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_pass"`

	NumShards    int        `toml:"num_shards"`
	ShardRange   ShardRange `toml:"shard_range"`
	PostInterval Duration   `toml:"post_interval"`

	// 0 serves metrics on the webhook port
	MetricsPort int `toml:"metrics_port"`
}

// Duration is a time.Duration that decodes from TOML strings like "30m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func Default() Config {
	return Config{
		WebhookPort:  DefaultWebhookPort,
		WebhookPath:  webhook.DefaultPath,
		NumShards:    1,
		PostInterval: Duration{DefaultPostInterval},
		MetricsPort:  DefaultMetricsPort,
	}
}

// Load builds a Config. An empty tomlPath or envPath skips that file; a
// missing .env file is not an error, a missing TOML file is.
func Load(tomlPath, envPath string) (Config, error) {
	cfg := Default()

	if tomlPath != "" {
		if _, err := toml.DecodeFile(tomlPath, &cfg); err != nil {
			return cfg, fmt.Errorf("reading %s: %w", tomlPath, err)
		}
	}

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("reading %s: %w", envPath, err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", key, v)
		}
		*dst = n
		return nil
	}

	setString("DBGG_TOKEN", &c.Token)
	setString("DBGG_BOT_ID", &c.BotID)
	setString("DISCORD_BOT_TOKEN", &c.DiscordToken)
	setString("WEBHOOK_PATH", &c.WebhookPath)
	setString("WEBHOOK_AUTH", &c.WebhookAuth)
	setString("REDIS_ADDR", &c.RedisAddr)
	setString("REDIS_PASS", &c.RedisPassword)

	for key, dst := range map[string]*int{
		"WEBHOOK_PORT": &c.WebhookPort,
		"NUM_SHARDS":   &c.NumShards,
		"METRICS_PORT": &c.MetricsPort,
	} {
		if err := setInt(key, dst); err != nil {
			return err
		}
	}

	if v := getenv("POST_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("POST_INTERVAL: %w", err)
		}
		c.PostInterval = Duration{d}
	}

	if v := getenv("SHARD_RANGE"); v != "" {
		r, err := ParseShardRange(v, c.NumShards)
		if err != nil {
			return err
		}
		c.ShardRange = r
	}
	return nil
}

// Validate checks the settings every subcommand needs. Discord and Redis
// settings are optional and only switch features on.
func (c Config) Validate() error {
	if botID := discord.Snowflake(c.BotID); !botID.Empty() {
		if err := botID.Validate(); err != nil {
			return fmt.Errorf("bot id: %w", err)
		}
	}
	if c.NumShards < 1 {
		return fmt.Errorf("num_shards must be at least 1, got %d", c.NumShards)
	}
	if c.ShardRange.Min > c.ShardRange.Max || c.ShardRange.Max >= c.NumShards {
		return fmt.Errorf("shard range %d,%d does not fit %d shards", c.ShardRange.Min, c.ShardRange.Max, c.NumShards)
	}
	if c.PostInterval.Duration <= 0 {
		return errors.New("post_interval must be positive")
	}
	return nil
}

// ParseShardRange parses "min,max" where 0 <= min <= max < maxShards.
func ParseShardRange(str string, maxShards int) (ShardRange, error) {
	var r ShardRange

	tokens := strings.Split(strings.ReplaceAll(str, " ", ""), ",")
	if len(tokens) != 2 {
		return r, fmt.Errorf("parsing shard range %q: expected 2 uints separated by ,", str)
	}
	min, err := strconv.ParseUint(tokens[0], 10, 32)
	if err != nil {
		return r, fmt.Errorf("parsing shard range %q: %w", str, err)
	}
	max, err := strconv.ParseUint(tokens[1], 10, 32)
	if err != nil {
		return r, fmt.Errorf("parsing shard range %q: %w", str, err)
	}
	r.Min, r.Max = int(min), int(max)
	if r.Min > r.Max {
		return r, fmt.Errorf("shard range min %d is greater than shard range max %d", r.Min, r.Max)
	}
	if r.Max >= maxShards {
		return r, fmt.Errorf("shard range max %d must be less than the total number of shards %d", r.Max, maxShards)
	}
	return r, nil
}

// Shards lists the shard IDs this process owns.
func (r ShardRange) Shards() []int {
	ids := make([]int, 0, r.Max-r.Min+1)
	for id := r.Min; id <= r.Max; id++ {
		ids = append(ids, id)
	}
	return ids
}
