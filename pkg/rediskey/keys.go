// Package rediskey names the Redis keys and channels shared between dbgg
// processes.
package rediskey

import "strconv"

const namespace = "dbgg:"

// VoteChannel is the pub/sub channel votes for botID are published on.
func VoteChannel(botID string) string {
	return namespace + "votes:" + botID
}

// PostLock guards one stats post per interval for a bot's shard, across
// every replica that runs that shard.
func PostLock(botID string, shardID int) string {
	return namespace + "post:" + botID + ":" + strconv.Itoa(shardID) + ":lock"
}
