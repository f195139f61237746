package dbgg

// FieldMapping pairs a local field name with the name the remote API uses
// for it.
type FieldMapping struct {
	Local  string
	Remote string
}

// FieldMap is an ordered, bidirectional table of field names.
type FieldMap []FieldMapping

func (m FieldMap) ToRemote(local string) (string, bool) {
	for _, f := range m {
		if f.Local == local {
			return f.Remote, true
		}
	}
	return "", false
}

func (m FieldMap) ToLocal(remote string) (string, bool) {
	for _, f := range m {
		if f.Remote == remote {
			return f.Local, true
		}
	}
	return "", false
}

// Encode renames the keys of a local document to their remote names. Keys
// with no mapping are dropped, as are nil values.
func (m FieldMap) Encode(local map[string]any) map[string]any {
	remote := make(map[string]any, len(local))
	for k, v := range local {
		if v == nil {
			continue
		}
		if name, ok := m.ToRemote(k); ok {
			remote[name] = v
		}
	}
	return remote
}

// Decode is the inverse of Encode.
func (m FieldMap) Decode(remote map[string]any) map[string]any {
	local := make(map[string]any, len(remote))
	for k, v := range remote {
		if v == nil {
			continue
		}
		if name, ok := m.ToLocal(k); ok {
			local[name] = v
		}
	}
	return local
}

// StatsFields is the wire contract for POST /bots/{id}/stats.
var StatsFields = FieldMap{
	{Local: "serverCount", Remote: "server_count"},
	{Local: "shardCount", Remote: "shard_count"},
	{Local: "shardId", Remote: "shard_id"},
}

// BotStatsFields projects the stats out of a bot-info document.
var BotStatsFields = FieldMap{
	{Local: "serverCount", Remote: "guildCount"},
	{Local: "shardCount", Remote: "shardCount"},
}
