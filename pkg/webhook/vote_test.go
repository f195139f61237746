package webhook

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseVoteQuery(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		query map[string]string
	}{
		{name: "leading question mark", body: `{"query":"?a=b&c=d"}`, query: map[string]string{"a": "b", "c": "d"}},
		{name: "no question mark", body: `{"query":"a=b"}`, query: map[string]string{"a": "b"}},
		{name: "empty string", body: `{"query":""}`},
		{name: "absent", body: `{}`},
		{name: "null", body: `{"query":null}`},
		{name: "repeated key keeps first", body: `{"query":"a=1&a=2"}`, query: map[string]string{"a": "1"}},
		{name: "escaped", body: `{"query":"?name=a%20b"}`, query: map[string]string{"name": "a b"}},
		{name: "object", body: `{"query":{"ref":"site"}}`, query: map[string]string{"ref": "site"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vote, err := ParseVote([]byte(tt.body))
			require.NoError(t, err)
			require.Equal(t, tt.query, vote.Query)
		})
	}
}

func TestParseVoteFields(t *testing.T) {
	vote, err := ParseVote([]byte(`  {"bot":"1","user":"2","type":"test"}  `))
	require.NoError(t, err)
	require.Equal(t, "1", vote.Bot.String())
	require.Equal(t, "2", vote.User.String())
	require.True(t, vote.IsTest())
	require.Nil(t, vote.Query)
}

func TestParseVoteErrors(t *testing.T) {
	for _, body := range []string{
		``,
		`null`,
		`"vote"`,
		`[{"bot":"1"}]`,
		`{"bot":`,
		`{"query":5}`,
		`{"query":["a"]}`,
		`{"query":{"a":1}}`,
		`{"bot":true}`,
		`{"user":-2}`,
	} {
		_, err := ParseVote([]byte(body))
		require.Error(t, err, body)
	}
}
