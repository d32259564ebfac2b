package services

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"macrolog/models"
	"macrolog/store"
)

// EntryService owns the in-memory food-entry collection for the active
// identity and keeps it consistent with the backing store. Every mutation is
// confirm-then-apply: memory changes only after the store acknowledges, and
// never before.
type EntryService struct {
	store  store.EntryStore
	mirror store.KV // optional instant-rehydration cache
	notify Notifier
	now    func() time.Time

	mu      sync.Mutex
	ownerID string
	epoch   uint64
	entries []models.FoodEntry
}

func NewEntryService(st store.EntryStore, n Notifier) *EntryService {
	return &EntryService{store: st, notify: n, now: time.Now}
}

// WithMirror attaches a local cache that is rehydrated instantly on identity
// change. The backing store still wins once its fetch lands.
func (s *EntryService) WithMirror(kv store.KV) *EntryService {
	s.mirror = kv
	return s
}

// WithClock overrides the time source. Tests pin it.
func (s *EntryService) WithClock(now func() time.Time) *EntryService {
	s.now = now
	return s
}

// OnIdentityChange reacts to the session service publishing a new identity.
// The previous collection is discarded before anything else happens. The
// fetch is keyed by the epoch captured here: if the identity moves again
// while the fetch is in flight, its result is thrown away, so entries of a
// previous user can never surface under the next one.
func (s *EntryService) OnIdentityChange(user *models.UserProfile) {
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.entries = nil
	if user == nil {
		s.ownerID = ""
		s.mu.Unlock()
		return
	}
	s.ownerID = user.ID
	if cached, ok := s.readMirror(user.ID); ok {
		s.entries = cached
	}
	s.mu.Unlock()

	fetched, err := s.store.FetchEntries(user.ID)
	if err != nil {
		log.Printf("fetch entries for %s: %v", user.ID, err)
		s.notify.Notify(models.Notice{
			Title:       "Could not load entries",
			Description: "Your food log may be out of date.",
			Severity:    models.NoticeError,
		})
		// whatever the mirror provided stands until the next load
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return // identity moved on; stale result
	}
	s.entries = fetched
	s.writeMirrorLocked()
}

// Add stamps the creation time, persists, then appends the store-assigned
// entry. Nothing is inserted optimistically, and the store's id is the only
// one trusted. Without an active identity this is a silent no-op.
func (s *EntryService) Add(fields models.EntryFields) bool {
	s.mu.Lock()
	ownerID := s.ownerID
	epoch := s.epoch
	s.mu.Unlock()
	if ownerID == "" {
		return false
	}

	entry := models.FoodEntry{
		OwnerID:  ownerID,
		Name:     fields.Name,
		Calories: fields.Calories,
		Protein:  fields.Protein,
		Carbs:    fields.Carbs,
		Sugar:    fields.Sugar,
		Fat:      fields.Fat,
		Date:     s.now(),
	}
	confirmed, err := s.store.InsertEntry(entry)
	if err != nil {
		log.Printf("insert entry: %v", err)
		s.notify.Notify(models.Notice{
			Title:       "Entry not added",
			Description: "Could not save " + fields.Name + ".",
			Severity:    models.NoticeError,
		})
		return false
	}

	s.mu.Lock()
	if s.epoch == epoch {
		s.entries = append(s.entries, confirmed)
		s.writeMirrorLocked()
	}
	s.mu.Unlock()

	s.notify.Notify(models.Notice{
		Title:       "Entry added",
		Description: confirmed.Name,
		Severity:    models.NoticeSuccess,
	})
	return true
}

// Edit persists the patch, then applies it to the local copy, preserving id
// and date. Patching an id that has vanished locally is inert, not an error.
func (s *EntryService) Edit(id string, patch models.EntryPatch) bool {
	s.mu.Lock()
	ownerID := s.ownerID
	epoch := s.epoch
	s.mu.Unlock()
	if ownerID == "" {
		return false
	}

	if err := s.store.UpdateEntry(id, ownerID, patch); err != nil {
		log.Printf("update entry %s: %v", id, err)
		s.notify.Notify(models.Notice{
			Title:       "Entry not updated",
			Description: "Your change could not be saved.",
			Severity:    models.NoticeError,
		})
		return false
	}

	s.mu.Lock()
	if s.epoch == epoch {
		for i := range s.entries {
			if s.entries[i].ID == id {
				patch.Apply(&s.entries[i])
				s.writeMirrorLocked()
				break
			}
		}
	}
	s.mu.Unlock()

	s.notify.Notify(models.Notice{
		Title:    "Entry updated",
		Severity: models.NoticeSuccess,
	})
	return true
}

// Delete removes from the backing store first; memory follows only on
// confirmation. An id with no in-memory match is a silent no-op.
func (s *EntryService) Delete(id string) bool {
	s.mu.Lock()
	ownerID := s.ownerID
	epoch := s.epoch
	found := false
	for i := range s.entries {
		if s.entries[i].ID == id {
			found = true
			break
		}
	}
	s.mu.Unlock()
	if ownerID == "" || !found {
		return false
	}

	if err := s.store.DeleteEntry(id, ownerID); err != nil {
		log.Printf("delete entry %s: %v", id, err)
		s.notify.Notify(models.Notice{
			Title:       "Entry not deleted",
			Description: "Could not remove the entry.",
			Severity:    models.NoticeError,
		})
		return false
	}

	s.mu.Lock()
	if s.epoch == epoch {
		s.removeLocked(id)
		s.writeMirrorLocked()
	}
	s.mu.Unlock()

	s.notify.Notify(models.Notice{
		Title:    "Entry deleted",
		Severity: models.NoticeSuccess,
	})
	return true
}

// ClearOutcome reports the result of one delete inside ClearAll.
type ClearOutcome struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Deleted bool   `json:"deleted"`
}

// ClearAll deletes every loaded entry one at a time against the backing
// store and reports a per-entry outcome. Only confirmed deletions leave
// memory; anything the store refused stays, locally and remotely, and the
// summary notice says so.
func (s *EntryService) ClearAll() []ClearOutcome {
	s.mu.Lock()
	ownerID := s.ownerID
	epoch := s.epoch
	snapshot := append([]models.FoodEntry(nil), s.entries...)
	s.mu.Unlock()
	if ownerID == "" {
		return nil
	}

	outcomes := make([]ClearOutcome, 0, len(snapshot))
	deleted := make(map[string]bool, len(snapshot))
	failures := 0
	for _, e := range snapshot {
		err := s.store.DeleteEntry(e.ID, ownerID)
		if err != nil {
			log.Printf("clear: delete entry %s: %v", e.ID, err)
			failures++
		} else {
			deleted[e.ID] = true
		}
		outcomes = append(outcomes, ClearOutcome{ID: e.ID, Name: e.Name, Deleted: err == nil})
	}

	s.mu.Lock()
	if s.epoch == epoch {
		var kept []models.FoodEntry
		for _, e := range s.entries {
			if !deleted[e.ID] {
				kept = append(kept, e)
			}
		}
		s.entries = kept
		s.writeMirrorLocked()
	}
	s.mu.Unlock()

	if failures > 0 {
		s.notify.Notify(models.Notice{
			Title:       "Clear incomplete",
			Description: fmt.Sprintf("%d of %d entries could not be deleted.", failures, len(snapshot)),
			Severity:    models.NoticeError,
		})
	} else if len(snapshot) > 0 {
		s.notify.Notify(models.Notice{
			Title:    "Log cleared",
			Severity: models.NoticeSuccess,
		})
	}
	return outcomes
}

// EntriesForDay returns a fresh copy of the entries logged on the given
// local calendar date. Never a live view.
func (s *EntryService) EntriesForDay(day time.Time) []models.FoodEntry {
	y, m, d := day.Date()
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FoodEntry
	for _, e := range s.entries {
		ey, em, ed := e.Date.In(day.Location()).Date()
		if ey == y && em == m && ed == d {
			out = append(out, e)
		}
	}
	return out
}

// EntriesForToday filters on the injected clock's current local date.
func (s *EntryService) EntriesForToday() []models.FoodEntry {
	return s.EntriesForDay(s.now())
}

// Snapshot returns a copy of the whole collection.
func (s *EntryService) Snapshot() []models.FoodEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.FoodEntry(nil), s.entries...)
}

// Aggregate sums the macro fields of a set of entries. Order never matters;
// an empty set yields the zero totals.
func Aggregate(entries []models.FoodEntry) models.MacroTotals {
	var t models.MacroTotals
	for _, e := range entries {
		t.Calories += e.Calories
		t.Protein += e.Protein
		t.Carbs += e.Carbs
		t.Sugar += e.Sugar
		t.Fat += e.Fat
	}
	return t
}

func (s *EntryService) removeLocked(id string) {
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

func mirrorKey(ownerID string) string {
	return "entries." + ownerID
}

func (s *EntryService) readMirror(ownerID string) ([]models.FoodEntry, bool) {
	if s.mirror == nil {
		return nil, false
	}
	raw, ok, err := s.mirror.Get(mirrorKey(ownerID))
	if err != nil || !ok {
		return nil, false
	}
	var entries []models.FoodEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, false
	}
	return entries, true
}

// writeMirrorLocked serializes the whole collection as one blob.
func (s *EntryService) writeMirrorLocked() {
	if s.mirror == nil || s.ownerID == "" {
		return
	}
	raw, err := json.Marshal(s.entries)
	if err != nil {
		return
	}
	if err := s.mirror.Set(mirrorKey(s.ownerID), string(raw)); err != nil {
		log.Printf("mirror write for %s: %v", s.ownerID, err)
	}
}
