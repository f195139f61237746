package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/beatX-bot/discordbots-go/pkg/discord"
)

type VoteType string

const (
	Upvote VoteType = "upvote"
	// Test votes come from the listing site's "test webhook" button.
	Test VoteType = "test"
)

// Vote is one accepted webhook notification. Query is nil when the
// notification carried no query string.
type Vote struct {
	Bot   discord.Snowflake `json:"bot"`
	User  discord.Snowflake `json:"user"`
	Type  VoteType          `json:"type"`
	Query map[string]string `json:"query,omitempty"`
}

func (v Vote) IsTest() bool {
	return v.Type == Test
}

var errNotObject = errors.New("vote payload is not a JSON object")

// ParseVote decodes a webhook body. A "query" string is expanded from its
// URL-encoded form into a map; an empty string means no query.
func ParseVote(body []byte) (Vote, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return Vote{}, errNotObject
	}

	var payload struct {
		Bot   discord.Snowflake `json:"bot"`
		User  discord.Snowflake `json:"user"`
		Type  VoteType          `json:"type"`
		Query json.RawMessage   `json:"query"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Vote{}, fmt.Errorf("decoding vote: %w", err)
	}

	query, err := parseQuery(payload.Query)
	if err != nil {
		return Vote{}, err
	}

	return Vote{
		Bot:   payload.Bot,
		User:  payload.User,
		Type:  payload.Type,
		Query: query,
	}, nil
}

func parseQuery(raw json.RawMessage) (map[string]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decoding query: %w", err)
		}
		if s == "" {
			return nil, nil
		}
		// malformed pairs are skipped, the rest are kept
		values, _ := url.ParseQuery(strings.TrimPrefix(s, "?"))
		query := make(map[string]string, len(values))
		for k, vs := range values {
			if len(vs) > 0 {
				query[k] = vs[0]
			}
		}
		return query, nil
	case '{':
		var query map[string]string
		if err := json.Unmarshal(raw, &query); err != nil {
			return nil, fmt.Errorf("decoding query: %w", err)
		}
		return query, nil
	default:
		return nil, fmt.Errorf("decoding query: unexpected %s", raw)
	}
}
