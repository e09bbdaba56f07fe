package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mcoot/multiplayer-demo/internal/model"
	"github.com/mcoot/multiplayer-demo/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS players (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	x          REAL NOT NULL,
	y          REAL NOT NULL,
	color      TEXT NOT NULL,
	last_seen  INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS players_last_seen ON players (last_seen);
`

const selectColumns = `SELECT id, name, x, y, color, last_seen, created_at FROM players`

// Storage is a SQLite-backed implementation of the storage interface.
// Timestamps are stored as unix nanoseconds.
type Storage struct {
	db *sql.DB
}

// New opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func New(path string) (*Storage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// sqlite serialises writers; one connection also keeps ":memory:" coherent
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

type scanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row scanner) (*model.Player, error) {
	var (
		p               model.Player
		id              string
		seen, createdAt int64
	)
	if err := row.Scan(&id, &p.Name, &p.X, &p.Y, &p.Color, &seen, &createdAt); err != nil {
		return nil, err
	}
	p.ID = model.PlayerID(id)
	p.LastSeen = time.Unix(0, seen).UTC()
	p.CreatedAt = time.Unix(0, createdAt).UTC()
	return &p, nil
}

func queryPlayers(ctx context.Context, q interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
}, query string, args ...any) ([]*model.Player, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []*model.Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO players (id, name, x, y, color, last_seen, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name, x = excluded.x, y = excluded.y,
			color = excluded.color, last_seen = excluded.last_seen,
			created_at = excluded.created_at`,
		string(player.ID), player.Name, player.X, player.Y, player.Color,
		player.LastSeen.UnixNano(), player.CreatedAt.UnixNano())
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, string(id))
	p, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	return p, err
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	return queryPlayers(ctx, s.db, selectColumns+` ORDER BY created_at, id`)
}

func (s *Storage) UpdatePosition(ctx context.Context, id model.PlayerID, pos model.Position, seenAt time.Time) (*model.Player, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE players SET x = ?, y = ?, last_seen = ? WHERE id = ?`,
		pos.X, pos.Y, seenAt.UnixNano(), string(id))
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, model.ErrPlayerNotFound
	}

	p, err := scanPlayer(tx.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, string(id)))
	if err != nil {
		return nil, err
	}
	return p, tx.Commit()
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, string(id))
	return err
}

func (s *Storage) DeleteAllPlayers(ctx context.Context) ([]*model.Player, error) {
	return s.deleteWhere(ctx, `1 = 1`)
}

func (s *Storage) DeletePlayersSeenBefore(ctx context.Context, cutoff time.Time) ([]*model.Player, error) {
	return s.deleteWhere(ctx, `last_seen < ?`, cutoff.UnixNano())
}

// deleteWhere reads then deletes the matching rows in one transaction
func (s *Storage) deleteWhere(ctx context.Context, cond string, args ...any) ([]*model.Player, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	removed, err := queryPlayers(ctx, tx, selectColumns+` WHERE `+cond+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM players WHERE `+cond, args...); err != nil {
		return nil, err
	}
	return removed, tx.Commit()
}
