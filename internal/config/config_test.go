package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseShardRange(t *testing.T) {
	r, err := ParseShardRange("0, 3", 4)
	require.NoError(t, err)
	require.Equal(t, ShardRange{Min: 0, Max: 3}, r)
	require.Equal(t, []int{0, 1, 2, 3}, r.Shards())

	for _, bad := range []string{"1", "1,2,3", "a,2", "2,-1", "3,1", "0,4"} {
		_, err := ParseShardRange(bad, 4)
		require.Error(t, err, bad)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"DBGG_TOKEN":    "token",
		"DBGG_BOT_ID":   "264811613708746752",
		"WEBHOOK_PORT":  "9000",
		"WEBHOOK_AUTH":  "secret",
		"NUM_SHARDS":    "4",
		"SHARD_RANGE":   "2,3",
		"POST_INTERVAL": "5m",
	}
	cfg := Default()
	require.NoError(t, cfg.applyEnv(func(k string) string { return env[k] }))

	require.Equal(t, "token", cfg.Token)
	require.Equal(t, 9000, cfg.WebhookPort)
	require.Equal(t, "/dblwebhook", cfg.WebhookPath)
	require.Equal(t, "secret", cfg.WebhookAuth)
	require.Equal(t, ShardRange{Min: 2, Max: 3}, cfg.ShardRange)
	require.Equal(t, 5*time.Minute, cfg.PostInterval.Duration)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnvErrors(t *testing.T) {
	for _, env := range []map[string]string{
		{"WEBHOOK_PORT": "eighty"},
		{"POST_INTERVAL": "soon"},
		{"SHARD_RANGE": "0,1"},
	} {
		cfg := Default()
		require.Error(t, cfg.applyEnv(func(k string) string { return env[k] }))
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.BotID = "not-a-snowflake"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.NumShards = 0
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.PostInterval = Duration{}
	require.Error(t, cfg.Validate())
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "dbgg.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(`
bot_id = "264811613708746752"
webhook_path = "/votes"
num_shards = 2
post_interval = "1h"

[shard_range]
min = 1
max = 1
`), 0o600))

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("WEBHOOK_AUTH=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("WEBHOOK_AUTH") })

	cfg, err := Load(tomlPath, envPath)
	require.NoError(t, err)
	require.Equal(t, "264811613708746752", cfg.BotID)
	require.Equal(t, "/votes", cfg.WebhookPath)
	require.Equal(t, ShardRange{Min: 1, Max: 1}, cfg.ShardRange)
	require.Equal(t, time.Hour, cfg.PostInterval.Duration)
	require.Equal(t, "from-dotenv", cfg.WebhookAuth)
	require.Equal(t, DefaultWebhookPort, cfg.WebhookPort)
}

func TestLoadMissingFiles(t *testing.T) {
	_, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"), "")
	require.Error(t, err)
}
