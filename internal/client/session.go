package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/multiplayer-demo/internal/model"
)

// SessionConfig controls how an identity is acquired
type SessionConfig struct {
	// Name is sent when a new player has to be created
	Name string
	// Reconcile checks a stored identity against the live player list and
	// replaces it if the player no longer exists
	Reconcile bool
}

// DefaultSessionConfig returns the default session settings
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Name:      "",
		Reconcile: true,
	}
}

// SessionManager gives the running client a stable player identity
type SessionManager struct {
	backend Backend
	store   IdentityStore
	cfg     SessionConfig
	logger  *slog.Logger

	mu       sync.RWMutex
	identity model.PlayerID
}

// NewSessionManager creates a new SessionManager
func NewSessionManager(backend Backend, store IdentityStore, cfg SessionConfig, logger *slog.Logger) *SessionManager {
	return &SessionManager{
		backend: backend,
		store:   store,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "session")),
	}
}

// AcquireIdentity restores the stored identity or creates a new player.
// A failed creation is logged and returned; the identity stays unset and
// the next call tries again.
func (m *SessionManager) AcquireIdentity(ctx context.Context) (model.PlayerID, error) {
	stored, ok, err := m.store.Load()
	if err != nil {
		m.logger.Warn("could not read stored identity", slog.Any("error", err))
		ok = false
	}

	if ok {
		if m.reuse(ctx, stored) {
			m.adopt(stored)
			return stored, nil
		}
		m.logger.Info("stale identity", slog.String("player_id", string(stored)))
		if err := m.store.Clear(); err != nil {
			m.logger.Warn("could not clear stale identity", slog.Any("error", err))
		}
	}

	player, err := m.backend.CreatePlayer(ctx, m.cfg.Name)
	if err != nil {
		m.logger.Error("failed to create player", slog.Any("error", err))
		return "", fmt.Errorf("creating player: %w", err)
	}

	if err := m.store.Save(player.ID); err != nil {
		m.logger.Warn("could not persist identity", slog.Any("error", err))
	}
	m.adopt(player.ID)
	m.logger.Info("player created", slog.String("player_id", string(player.ID)))
	return player.ID, nil
}

// reuse reports whether a stored identity can be kept. Without
// reconciliation, or when the player list cannot be fetched, it is kept
// unverified.
func (m *SessionManager) reuse(ctx context.Context, id model.PlayerID) bool {
	if !m.cfg.Reconcile {
		return true
	}

	list, err := m.backend.ListPlayers(ctx)
	if err != nil {
		m.logger.Warn("could not verify stored identity", slog.Any("error", err))
		return true
	}
	for _, p := range list {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (m *SessionManager) adopt(id model.PlayerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identity = id
}

// Identity returns the adopted identity, if any
func (m *SessionManager) Identity() (model.PlayerID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity, m.identity != ""
}
