package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound  = errors.New("player not found")
	ErrInvalidPosition = errors.New("invalid position")

	// Client errors
	ErrNoIdentity = errors.New("no player identity")
)
