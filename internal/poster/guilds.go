package poster

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// GuildCounter tracks the guilds visible to one gateway shard.
type GuildCounter struct {
	lock   sync.RWMutex
	guilds map[string]struct{}
	logger *slog.Logger
}

func NewGuildCounter(logger *slog.Logger) *GuildCounter {
	if logger == nil {
		logger = slog.Default()
	}
	return &GuildCounter{guilds: make(map[string]struct{}), logger: logger}
}

func (c *GuildCounter) Count() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return len(c.guilds)
}

// Register installs the counter's gateway handlers on s.
func (c *GuildCounter) Register(s *discordgo.Session) {
	s.AddHandler(c.ready)
	s.AddHandler(c.guildCreate)
	s.AddHandler(c.guildDelete)
}

// ready resets the set; the guilds listed here arrive again as GuildCreate.
func (c *GuildCounter) ready(_ *discordgo.Session, r *discordgo.Ready) {
	c.lock.Lock()
	c.guilds = make(map[string]struct{}, len(r.Guilds))
	for _, g := range r.Guilds {
		c.guilds[g.ID] = struct{}{}
	}
	c.lock.Unlock()
	c.logger.Info("gateway ready", "guilds", len(r.Guilds))
}

func (c *GuildCounter) guildCreate(_ *discordgo.Session, m *discordgo.GuildCreate) {
	c.lock.Lock()
	c.guilds[m.Guild.ID] = struct{}{}
	c.lock.Unlock()
	c.logger.Debug("guild added", "guild_id", m.Guild.ID)
}

func (c *GuildCounter) guildDelete(_ *discordgo.Session, m *discordgo.GuildDelete) {
	// an outage, not a removal
	if m.Guild.Unavailable {
		return
	}
	c.lock.Lock()
	delete(c.guilds, m.Guild.ID)
	c.lock.Unlock()
	c.logger.Debug("guild removed", "guild_id", m.Guild.ID)
}

// OpenSession connects one shard to the Discord gateway with the guild intent
// only and wires counter into it.
func OpenSession(token string, shardID, shardCount int, counter *GuildCounter) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	if shardCount > 1 {
		dg.ShardID = shardID
		dg.ShardCount = shardCount
	}
	dg.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsGuilds)
	counter.Register(dg)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("connecting shard %d to discord: %w", shardID, err)
	}
	counter.logger.Info("identified to the discord gateway", "shard_id", shardID, "shard_count", shardCount)
	return dg, nil
}
