// Package store defines the backing-store contracts the sync layer talks to,
// plus the postgres (authoritative) and local-blob (offline) implementations.
package store

import (
	"errors"

	"macrolog/models"
)

// ErrNotFound is returned when a row the caller named does not exist.
var ErrNotFound = errors.New("record not found")

// ProfileStore persists user profiles and their goals.
type ProfileStore interface {
	FetchProfile(id string) (*models.UserProfile, error)
	InsertProfile(p *models.UserProfile) error
	UpdateGoals(id string, goals models.Goals) error
}

// EntryStore persists food entries, scoped to their owner on every call.
// InsertEntry assigns the entry id; client-supplied ids are ignored.
type EntryStore interface {
	FetchEntries(ownerID string) ([]models.FoodEntry, error)
	InsertEntry(e models.FoodEntry) (models.FoodEntry, error)
	UpdateEntry(id, ownerID string, patch models.EntryPatch) error
	DeleteEntry(id, ownerID string) error
}

// KV is the durable local key-value store. Values are whole serialized
// blobs, one key per collection, not one row per entry.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}
