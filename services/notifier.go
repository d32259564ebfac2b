package services

import (
	"log"

	"macrolog/models"
)

// Notifier is the fire-and-forget side-channel for user-visible messages.
// Nothing in the sync layer waits on it or reads from it.
type Notifier interface {
	Notify(n models.Notice)
}

// LogNotifier writes notices to the process log.
type LogNotifier struct{}

func (LogNotifier) Notify(n models.Notice) {
	log.Printf("[%s] %s: %s", n.Severity, n.Title, n.Description)
}

// MultiNotifier fans each notice out to several sinks.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(n models.Notice) {
	for _, nt := range m {
		nt.Notify(n)
	}
}
