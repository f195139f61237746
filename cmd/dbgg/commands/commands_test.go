package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/beatX-bot/discordbots-go/pkg/dbgg"
)

const testBotID = "264811613708746752"

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	body   map[string]any
}

func stubAPI(t *testing.T, status int, response string) (*httptest.Server, *[]recorded, *atomic.Int32) {
	t.Helper()
	var requests []recorded
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		rec := recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, auth: r.Header.Get("Authorization")}
		if body, _ := io.ReadAll(r.Body); len(body) > 0 {
			_ = json.Unmarshal(body, &rec.body)
		}
		requests = append(requests, rec)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests, &hits
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DBGG_TOKEN", "cli-token")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append(args, "--env", ""))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetPostFlags() {
	postServers, postShardID, postShards = -1, -1, 0
}

func TestPostCommand(t *testing.T) {
	resetPostFlags()
	srv, requests, _ := stubAPI(t, http.StatusOK, `{}`)

	out, err := run(t, "post", testBotID, "--servers", "12", "--shard-id", "1", "--shards", "2", "--base-url", srv.URL)
	require.NoError(t, err)
	require.JSONEq(t, `{"serverCount":12,"shardCount":2,"shardId":1}`, out)

	require.Len(t, *requests, 1)
	got := (*requests)[0]
	require.Equal(t, http.MethodPost, got.method)
	require.Equal(t, "/bots/"+testBotID+"/stats", got.path)
	require.Equal(t, "cli-token", got.auth)
	require.Equal(t, map[string]any{"server_count": 12.0, "shard_id": 1.0, "shard_count": 2.0}, got.body)
}

func TestPostCommandNeedsServers(t *testing.T) {
	resetPostFlags()
	srv, _, hits := stubAPI(t, http.StatusOK, `{}`)

	_, err := run(t, "post", testBotID, "--base-url", srv.URL)
	require.True(t, dbgg.IsValidation(err))
	require.Zero(t, hits.Load())
}

func TestInvalidBotID(t *testing.T) {
	srv, _, hits := stubAPI(t, http.StatusOK, `{}`)

	_, err := run(t, "stats", "not-a-snowflake", "--base-url", srv.URL)
	require.ErrorContains(t, err, "invalid bot ID")
	require.Zero(t, hits.Load())
}

func TestStatsCommand(t *testing.T) {
	srv, requests, _ := stubAPI(t, http.StatusOK, `{"guildCount":42,"shardCount":3}`)

	out, err := run(t, "stats", testBotID, "--base-url", srv.URL)
	require.NoError(t, err)
	require.Equal(t, "servers: 42\nshards: 3\n", out)
	require.Equal(t, "/bots/"+testBotID, (*requests)[0].path)
}

func TestBotsCommand(t *testing.T) {
	srv, requests, _ := stubAPI(t, http.StatusOK, `{"count":1,"limit":50,"page":0,"bots":[{"clientId":"264811613708746752","username":"Luca"}]}`)

	out, err := run(t, "bots", "--fields", "id,username", "--search", "username=shiro", "--base-url", srv.URL)
	require.NoError(t, err)
	require.Contains(t, out, `"Luca"`)

	require.Len(t, *requests, 1)
	require.Equal(t, "/bots", (*requests)[0].path)
	require.Equal(t, "fields=id%2C+username&search=username%3A+shiro", (*requests)[0].query)
}

func TestAPIErrorSurfaces(t *testing.T) {
	srv, _, _ := stubAPI(t, http.StatusNotFound, `{"message":"Unknown bot"}`)

	_, err := run(t, "bot", testBotID, "--base-url", srv.URL)
	require.True(t, dbgg.IsNotFound(err))
	require.ErrorContains(t, err, "Unknown bot")
}
