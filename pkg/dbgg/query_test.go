package dbgg

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestFormatFields(t *testing.T) {
	require.Equal(t, "id, username", FormatFields([]string{"id", "username"}))
	require.Equal(t, "id", FormatFields([]string{"id"}))
	require.Equal(t, "", FormatFields(nil))
}

func TestFormatSearch(t *testing.T) {
	require.Equal(t, "username: shiro", FormatSearch(map[string]string{"username": "shiro"}))
	require.Equal(t, "lib: discordgo username: shiro",
		FormatSearch(map[string]string{"username": "shiro", "lib": "discordgo"}))
	// no escaping, by contract
	require.Equal(t, "username: a b:c", FormatSearch(map[string]string{"username": "a b:c"}))
}

func TestBotQueryValues(t *testing.T) {
	unverified := true
	q := &BotQuery{
		Fields:     []string{"id", "username"},
		Search:     map[string]string{"username": "shiro"},
		Query:      "music",
		Page:       1,
		Limit:      50,
		AuthorID:   "141101495071408128",
		Unverified: &unverified,
		Library:    "discordgo",
		Sort:       "guildcount",
		Order:      "desc",
	}
	want := url.Values{
		"fields":     {"id, username"},
		"search":     {"username: shiro"},
		"q":          {"music"},
		"page":       {"1"},
		"limit":      {"50"},
		"authorId":   {"141101495071408128"},
		"unverified": {"true"},
		"lib":        {"discordgo"},
		"sort":       {"guildcount"},
		"order":      {"desc"},
	}
	if diff := cmp.Diff(want, q.Values()); diff != "" {
		t.Errorf("Values() mismatch (-want +got):\n%s", diff)
	}

	var nilQuery *BotQuery
	require.Empty(t, nilQuery.Values())
	require.Empty(t, (&BotQuery{}).Values())
}

func TestQueryValues(t *testing.T) {
	v, err := queryValues(nil)
	require.NoError(t, err)
	require.Nil(t, v)

	v, err = queryValues(map[string]string{"a": "b"})
	require.NoError(t, err)
	require.Equal(t, "b", v.Get("a"))

	v, err = queryValues(map[string]any{"page": 2, "skip": nil, "name": "x"})
	require.NoError(t, err)
	require.Equal(t, url.Values{"page": {"2"}, "name": {"x"}}, v)

	_, err = queryValues([]string{"not", "an", "object"})
	require.Error(t, err)
}

func TestStatsFieldMap(t *testing.T) {
	local := NewStats(10).WithShard(0, 4).local()
	remote := StatsFields.Encode(local)
	require.Equal(t, map[string]any{"server_count": 10, "shard_id": 0, "shard_count": 4}, remote)
	require.Equal(t, local, StatsFields.Decode(remote))

	name, ok := StatsFields.ToRemote("shardId")
	require.True(t, ok)
	require.Equal(t, "shard_id", name)

	name, ok = StatsFields.ToLocal("server_count")
	require.True(t, ok)
	require.Equal(t, "serverCount", name)

	_, ok = StatsFields.ToRemote("guildCount")
	require.False(t, ok)
}

func TestStatsLocalOmitsUnset(t *testing.T) {
	require.Equal(t, map[string]any{"serverCount": 3}, NewStats(3).local())
	require.Empty(t, Stats{}.local())
}

func TestBotStatsFromDocument(t *testing.T) {
	stats, err := botStatsFromDocument(map[string]any{"guildCount": 12.0, "shardCount": 2.0, "username": "x"})
	require.NoError(t, err)
	require.Equal(t, BotStats{ServerCount: 12, ShardCount: 2}, stats)

	stats, err = botStatsFromDocument(map[string]any{})
	require.NoError(t, err)
	require.Equal(t, BotStats{}, stats)

	_, err = botStatsFromDocument(map[string]any{"guildCount": "many"})
	require.Error(t, err)
}
