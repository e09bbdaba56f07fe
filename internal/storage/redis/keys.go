package redis

import (
	"fmt"

	"github.com/mcoot/multiplayer-demo/internal/model"
)

// Key prefix for all demo data
const keyPrefix = "mpdemo"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// lastSeenIndexKey returns the ZSET of player IDs scored by LastSeen (unix ms)
func lastSeenIndexKey() string {
	return fmt.Sprintf("%s:idx:last_seen", keyPrefix)
}

// createdIndexKey returns the ZSET of player IDs scored by CreatedAt (unix ms)
func createdIndexKey() string {
	return fmt.Sprintf("%s:idx:created", keyPrefix)
}
