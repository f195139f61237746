package dbgg

import (
	"encoding/json"
	"fmt"
	"math"
)

// Stats is what a bot reports about itself. ServerCount is required by
// PostStats; the shard fields are optional.
type Stats struct {
	ServerCount *int `json:"serverCount,omitempty"`
	ShardCount  *int `json:"shardCount,omitempty"`
	ShardID     *int `json:"shardId,omitempty"`
}

// NewStats builds a Stats with only ServerCount set.
func NewStats(serverCount int) Stats {
	return Stats{ServerCount: &serverCount}
}

// WithShard returns a copy of s with the shard fields set.
func (s Stats) WithShard(shardID, shardCount int) Stats {
	s.ShardID = &shardID
	s.ShardCount = &shardCount
	return s
}

func (s Stats) local() map[string]any {
	doc := make(map[string]any, 3)
	if s.ServerCount != nil {
		doc["serverCount"] = *s.ServerCount
	}
	if s.ShardCount != nil {
		doc["shardCount"] = *s.ShardCount
	}
	if s.ShardID != nil {
		doc["shardId"] = *s.ShardID
	}
	return doc
}

// BotStats is the projection GetStats returns.
type BotStats struct {
	ServerCount int `json:"serverCount"`
	ShardCount  int `json:"shardCount"`
}

func botStatsFromDocument(doc map[string]any) (BotStats, error) {
	var stats BotStats
	local := BotStatsFields.Decode(doc)
	var err error
	if stats.ServerCount, err = intField(local, "serverCount"); err != nil {
		return stats, err
	}
	if stats.ShardCount, err = intField(local, "shardCount"); err != nil {
		return stats, err
	}
	return stats, nil
}

func intField(doc map[string]any, key string) (int, error) {
	v, ok := doc[key]
	if !ok {
		return 0, nil
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("field %s: %v is not an integer", key, n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("field %s: %w", key, err)
		}
		return int(i), nil
	default:
		return 0, fmt.Errorf("field %s: unexpected type %T", key, v)
	}
}

type BotOwner struct {
	UserID        string `json:"userId"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
}

// Bot is a listing entry. Raw keeps the document exactly as the API sent
// it, including fields this struct does not know about.
type Bot struct {
	UserID           string     `json:"userId"`
	ClientID         string     `json:"clientId"`
	Username         string     `json:"username"`
	Discriminator    string     `json:"discriminator"`
	AvatarURL        string     `json:"avatarURL"`
	CoOwners         []BotOwner `json:"coOwners"`
	Prefix           string     `json:"prefix"`
	HelpCommand      string     `json:"helpCommand"`
	LibraryName      string     `json:"libraryName"`
	Website          string     `json:"website"`
	SupportInvite    string     `json:"supportInvite"`
	BotInvite        string     `json:"botInvite"`
	ShortDescription string     `json:"shortDescription"`
	LongDescription  string     `json:"longDescription"`
	OpenSource       string     `json:"openSource"`
	ShardCount       int        `json:"shardCount"`
	GuildCount       int        `json:"guildCount"`
	Verified         bool       `json:"verified"`
	Online           bool       `json:"online"`
	InGuild          bool       `json:"inGuild"`
	Deleted          bool       `json:"deleted"`
	Owner            BotOwner   `json:"owner"`
	AddedDate        string     `json:"addedDate"`
	Status           string     `json:"status"`

	Raw json.RawMessage `json:"-"`
}

func (b *Bot) UnmarshalJSON(data []byte) error {
	type plain Bot
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*b = Bot(p)
	b.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON writes Raw back out untouched when it is set, so a Bot
// round-trips without losing unknown fields.
func (b Bot) MarshalJSON() ([]byte, error) {
	if len(b.Raw) > 0 {
		return b.Raw, nil
	}
	type plain Bot
	return json.Marshal(plain(b))
}

type BotsResponse struct {
	Count int   `json:"count"`
	Limit int   `json:"limit"`
	Page  int   `json:"page"`
	Bots  []Bot `json:"bots"`
}
