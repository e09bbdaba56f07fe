package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/multiplayer-demo/internal/model"
	"github.com/mcoot/multiplayer-demo/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Players are JSON values; two sorted sets index them by creation and
// liveness so listing and sweeping avoid a keyspace scan.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func score(t time.Time) float64 {
	return float64(t.UnixMilli())
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	id := string(player.ID)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, playerKey(player.ID), data, s.cfg.PlayerTTL)
	pipe.ZAdd(ctx, createdIndexKey(), redis.Z{Score: score(player.CreatedAt), Member: id})
	pipe.ZAdd(ctx, lastSeenIndexKey(), redis.Z{Score: score(player.LastSeen), Member: id})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	ids, err := s.client.ZRange(ctx, createdIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	players, err := s.fetchPlayers(ctx, ids)
	if err != nil {
		return nil, err
	}
	storage.SortPlayers(players)
	return players, nil
}

func (s *Storage) UpdatePosition(ctx context.Context, id model.PlayerID, pos model.Position, seenAt time.Time) (*model.Player, error) {
	player, err := s.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	player.X = pos.X
	player.Y = pos.Y
	player.LastSeen = seenAt

	data, err := json.Marshal(player)
	if err != nil {
		return nil, err
	}

	// XX so a record removed between the read and the write stays removed
	pipe := s.client.TxPipeline()
	set := pipe.SetXX(ctx, playerKey(id), data, s.cfg.PlayerTTL)
	pipe.ZAddXX(ctx, lastSeenIndexKey(), redis.Z{Score: score(seenAt), Member: string(id)})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	if !set.Val() {
		return nil, model.ErrPlayerNotFound
	}
	return player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, playerKey(id))
	pipe.ZRem(ctx, createdIndexKey(), string(id))
	pipe.ZRem(ctx, lastSeenIndexKey(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) DeleteAllPlayers(ctx context.Context) ([]*model.Player, error) {
	var removed []*model.Player
	err := s.watchRetry(ctx, func(tx *redis.Tx) error {
		ids, err := tx.ZRange(ctx, createdIndexKey(), 0, -1).Result()
		if err != nil {
			return err
		}
		removed, err = s.fetchPlayersWith(ctx, tx, ids)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, id := range ids {
				pipe.Del(ctx, playerKey(model.PlayerID(id)))
			}
			pipe.Del(ctx, createdIndexKey(), lastSeenIndexKey())
			return nil
		})
		return err
	}, createdIndexKey(), lastSeenIndexKey())
	if err != nil {
		return nil, err
	}

	storage.SortPlayers(removed)
	return removed, nil
}

func (s *Storage) DeletePlayersSeenBefore(ctx context.Context, cutoff time.Time) ([]*model.Player, error) {
	var removed []*model.Player
	err := s.watchRetry(ctx, func(tx *redis.Tx) error {
		removed = nil
		ids, err := tx.ZRangeByScore(ctx, lastSeenIndexKey(), &redis.ZRangeBy{
			Min: "-inf",
			Max: "(" + strconv.FormatInt(cutoff.UnixMilli(), 10),
		}).Result()
		if err != nil || len(ids) == 0 {
			return err
		}

		removed, err = s.fetchPlayersWith(ctx, tx, ids)
		if err != nil {
			return err
		}

		members := make([]interface{}, len(ids))
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for i, id := range ids {
				members[i] = id
				pipe.Del(ctx, playerKey(model.PlayerID(id)))
			}
			pipe.ZRem(ctx, createdIndexKey(), members...)
			pipe.ZRem(ctx, lastSeenIndexKey(), members...)
			return nil
		})
		return err
	}, createdIndexKey(), lastSeenIndexKey())
	if err != nil {
		return nil, err
	}
	if len(removed) == 0 {
		return nil, nil
	}

	storage.SortPlayers(removed)
	return removed, nil
}

// maxTxRetries bounds optimistic retries when a watched index changes
const maxTxRetries = 10

// watchRetry runs fn under WATCH on keys, rerunning it from scratch when a
// concurrent write to a watched key aborts the transaction. Every write
// path touches the indexes, so a record created or refreshed between the
// read and the delete is never removed.
func (s *Storage) watchRetry(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return redis.TxFailedErr
}

// fetchPlayers loads the given IDs with one MGET, skipping expired entries
func (s *Storage) fetchPlayers(ctx context.Context, ids []string) ([]*model.Player, error) {
	return s.fetchPlayersWith(ctx, s.client, ids)
}

type mgetter interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

func (s *Storage) fetchPlayersWith(ctx context.Context, c mgetter, ids []string) ([]*model.Player, error) {
	if len(ids) == 0 {
		return []*model.Player{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = playerKey(model.PlayerID(id))
	}

	values, err := c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Player may have expired
		}
		var player model.Player
		if err := json.Unmarshal([]byte(val.(string)), &player); err != nil {
			continue // Skip invalid data
		}
		players = append(players, &player)
	}
	return players, nil
}
