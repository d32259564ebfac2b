package controllers

import "macrolog/services"

// TokenSource hands the persisted session token to the UI client after a
// successful login. Absent in offline mode.
type TokenSource interface {
	Token() (string, bool)
}

var (
	sessionSvc *services.SessionService
	entrySvc   *services.EntryService
	hub        *services.RealtimeHub
	tokens     TokenSource
)

// Init wires the controller package to its services. Call once at startup.
func Init(s *services.SessionService, e *services.EntryService, h *services.RealtimeHub, ts TokenSource) {
	sessionSvc = s
	entrySvc = e
	hub = h
	tokens = ts
}
