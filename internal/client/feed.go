package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/mcoot/multiplayer-demo/internal/api/response"
	"github.com/mcoot/multiplayer-demo/internal/model"
)

// FeedConfig controls reconnection of the change feed
type FeedConfig struct {
	HandshakeTimeout time.Duration
	InitialBackoff   time.Duration
	MaxBackoff       time.Duration
}

// DefaultFeedConfig returns the default feed settings
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		HandshakeTimeout: 5 * time.Second,
		InitialBackoff:   250 * time.Millisecond,
		MaxBackoff:       5 * time.Second,
	}
}

// FeedSubscriber keeps a Roster in sync with the server's WebSocket change
// feed, reconnecting with backoff until its context is cancelled.
type FeedSubscriber struct {
	url    string
	roster *Roster
	cfg    FeedConfig
	dialer *websocket.Dialer
	logger *slog.Logger
}

// NewFeedSubscriber creates a subscriber for the feed at url
func NewFeedSubscriber(url string, roster *Roster, cfg FeedConfig, logger *slog.Logger) *FeedSubscriber {
	return &FeedSubscriber{
		url:    url,
		roster: roster,
		cfg:    cfg,
		dialer: &websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout},
		logger: logger.With(slog.String("component", "feed")),
	}
}

// Run follows the feed until ctx is cancelled. Closing the connection on
// cancellation releases the subscription on the server.
func (f *FeedSubscriber) Run(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.cfg.InitialBackoff
	b.MaxInterval = f.cfg.MaxBackoff
	b.MaxElapsedTime = 0

	for {
		err := f.session(ctx, b.Reset)
		if ctx.Err() != nil {
			return nil
		}

		wait := b.NextBackOff()
		f.logger.Warn("feed disconnected",
			slog.Any("error", err),
			slog.Duration("retry_in", wait),
		)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// session holds one connection open, calling connected once the snapshot
// has been applied
func (f *FeedSubscriber) session(ctx context.Context, connected func()) error {
	conn, _, err := f.dialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return fmt.Errorf("dialing feed: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stop()

	first := true
	for {
		var msg response.FeedMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return errors.New("feed closed by server")
			}
			return fmt.Errorf("reading feed: %w", err)
		}
		if err := ApplyFeedMessage(f.roster, msg); err != nil {
			f.logger.Warn("ignoring feed frame", slog.String("type", msg.Type), slog.Any("error", err))
			continue
		}
		if first && msg.Type == response.FeedSnapshotType {
			first = false
			f.logger.Debug("feed connected", slog.Int("players", len(msg.Players)))
			connected()
		}
	}
}

// ApplyFeedMessage folds one feed frame into the roster
func ApplyFeedMessage(r *Roster, msg response.FeedMessage) error {
	if msg.Type == response.FeedSnapshotType {
		players := make([]*model.Player, 0, len(msg.Players))
		for _, p := range msg.Players {
			players = append(players, p.ToModel())
		}
		r.Replace(players)
		return nil
	}

	ev, err := EventFromFeed(msg)
	if err != nil {
		return err
	}
	r.Apply(ev)
	return nil
}

// EventFromFeed converts an insert, update or delete frame to an event
func EventFromFeed(msg response.FeedMessage) (model.PlayerEvent, error) {
	switch t := model.EventType(msg.Type); t {
	case model.EventInsert, model.EventUpdate, model.EventDelete:
		if msg.Player == nil {
			return model.PlayerEvent{}, fmt.Errorf("%s frame without player", t)
		}
		return model.PlayerEvent{Type: t, Player: *msg.Player.ToModel(), At: msg.At}, nil
	default:
		return model.PlayerEvent{}, fmt.Errorf("unknown frame type %q", msg.Type)
	}
}
