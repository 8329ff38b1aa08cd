// Package api exposes the terminal's HTTP surface: session lifecycle, form
// operations, reference lookups and the settings cache.
package api

import (
	"github.com/rs/zerolog"

	"clt400tt-terminal/internal/evento"
	"clt400tt-terminal/internal/session"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	deps     evento.Deps
	sessions *session.Manager
	log      zerolog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(deps evento.Deps, sessions *session.Manager) *Handler {
	return &Handler{
		deps:     deps,
		sessions: sessions,
		log:      deps.Log.With().Str("component", "api").Logger(),
	}
}
