package store

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"macrolog/models"
)

const (
	offlineEntriesKey = "entries"
	offlineProfileKey = "profile"
)

// OfflineStore replays the backing-store contract against the local KV.
// Single-user: the whole collection lives in one JSON blob, rewritten on
// every mutation, and owner scoping is a formality.
type OfflineStore struct {
	mu sync.Mutex
	kv KV
}

func NewOfflineStore(kv KV) *OfflineStore {
	return &OfflineStore{kv: kv}
}

// EnsureProfile seeds the single local profile with baseline goals on first
// run.
func (s *OfflineStore) EnsureProfile(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok, err := s.kv.Get(offlineProfileKey)
	if err != nil || ok {
		return err
	}
	return s.saveProfile(&models.UserProfile{
		ID:    id,
		Name:  "Local user",
		Goals: models.DefaultGoals(),
	})
}

func (s *OfflineStore) FetchProfile(string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok, err := s.kv.Get(offlineProfileKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	var p models.UserProfile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *OfflineStore) InsertProfile(p *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveProfile(p)
}

func (s *OfflineStore) UpdateGoals(_ string, goals models.Goals) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok, err := s.kv.Get(offlineProfileKey)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	var p models.UserProfile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return err
	}
	p.Goals = goals
	return s.saveProfile(&p)
}

func (s *OfflineStore) FetchEntries(string) ([]models.FoodEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *OfflineStore) InsertEntry(e models.FoodEntry) (models.FoodEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.load()
	if err != nil {
		return models.FoodEntry{}, err
	}
	e.ID = uuid.NewString()
	entries = append(entries, e)
	if err := s.save(entries); err != nil {
		return models.FoodEntry{}, err
	}
	return e, nil
}

func (s *OfflineStore) UpdateEntry(id, _ string, patch models.EntryPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.load()
	if err != nil {
		return err
	}
	for i := range entries {
		if entries[i].ID == id {
			patch.Apply(&entries[i])
			return s.save(entries)
		}
	}
	return ErrNotFound
}

func (s *OfflineStore) DeleteEntry(id, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.load()
	if err != nil {
		return err
	}
	for i := range entries {
		if entries[i].ID == id {
			return s.save(append(entries[:i], entries[i+1:]...))
		}
	}
	return nil
}

func (s *OfflineStore) load() ([]models.FoodEntry, error) {
	raw, ok, err := s.kv.Get(offlineEntriesKey)
	if err != nil || !ok {
		return nil, err
	}
	var entries []models.FoodEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *OfflineStore) save(entries []models.FoodEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.kv.Set(offlineEntriesKey, string(raw))
}

func (s *OfflineStore) saveProfile(p *models.UserProfile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.kv.Set(offlineProfileKey, string(raw))
}
