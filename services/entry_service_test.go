package services

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrolog/models"
	"macrolog/store"
)

var baseTime = time.Date(2025, 3, 14, 12, 30, 0, 0, time.Local)

type fakeEntryStore struct {
	mu           sync.Mutex
	seq          int
	rows         []models.FoodEntry
	insertErr    error
	fetchErr     error
	deleteErr    map[string]error
	gates        map[string]chan struct{}
	fetchStarted chan string
	fetchCalls   int
}

func newFakeEntryStore() *fakeEntryStore {
	return &fakeEntryStore{
		deleteErr: map[string]error{},
		gates:     map[string]chan struct{}{},
	}
}

func (f *fakeEntryStore) seed(e models.FoodEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, e)
}

func (f *fakeEntryStore) FetchEntries(ownerID string) ([]models.FoodEntry, error) {
	f.mu.Lock()
	f.fetchCalls++
	gate := f.gates[ownerID]
	started := f.fetchStarted
	f.mu.Unlock()

	if started != nil {
		started <- ownerID
	}
	if gate != nil {
		<-gate
	}
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.FoodEntry
	for _, e := range f.rows {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEntryStore) InsertEntry(e models.FoodEntry) (models.FoodEntry, error) {
	if f.insertErr != nil {
		return models.FoodEntry{}, f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	e.ID = fmt.Sprintf("f%d", f.seq)
	f.rows = append(f.rows, e)
	return e, nil
}

func (f *fakeEntryStore) UpdateEntry(id, ownerID string, patch models.EntryPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].OwnerID == ownerID {
			patch.Apply(&f.rows[i])
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeEntryStore) DeleteEntry(id, _ string) error {
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			break
		}
	}
	return nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []models.Notice
}

func (r *recordingNotifier) Notify(n models.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recordingNotifier) bySeverity(sev string) []models.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notice
	for _, n := range r.notices {
		if n.Severity == sev {
			out = append(out, n)
		}
	}
	return out
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notices)
}

func newTestEntryService(t *testing.T) (*EntryService, *fakeEntryStore, *recordingNotifier) {
	t.Helper()
	fs := newFakeEntryStore()
	rn := &recordingNotifier{}
	svc := NewEntryService(fs, rn).WithClock(func() time.Time { return baseTime })
	return svc, fs, rn
}

func signIn(svc *EntryService, id string) {
	svc.OnIdentityChange(&models.UserProfile{ID: id, Email: id + "@example.com"})
}

func oatmeal() models.EntryFields {
	return models.EntryFields{Name: "Oatmeal", Calories: 150, Protein: 5, Carbs: 27, Sugar: 1, Fat: 2.5}
}

func TestAggregateEmptyIsZero(t *testing.T) {
	assert.Equal(t, models.MacroTotals{}, Aggregate(nil))
	assert.Equal(t, models.MacroTotals{}, Aggregate([]models.FoodEntry{}))
}

func TestAggregateOrderIndependent(t *testing.T) {
	entries := make([]models.FoodEntry, 0, 8)
	for i := 0; i < 8; i++ {
		entries = append(entries, models.FoodEntry{
			ID:       fmt.Sprintf("e%d", i),
			Calories: float64(i * 13),
			Protein:  float64(i) * 1.5,
			Carbs:    float64(100 - i*7),
			Sugar:    float64(i % 3),
			Fat:      float64(i) / 4,
		})
	}
	want := Aggregate(entries)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := append([]models.FoodEntry(nil), entries...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, want, Aggregate(shuffled))
	}

	// associativity: aggregating the halves and adding matches the whole
	left, right := Aggregate(entries[:4]), Aggregate(entries[4:])
	sum := models.MacroTotals{
		Calories: left.Calories + right.Calories,
		Protein:  left.Protein + right.Protein,
		Carbs:    left.Carbs + right.Carbs,
		Sugar:    left.Sugar + right.Sugar,
		Fat:      left.Fat + right.Fat,
	}
	assert.Equal(t, want, sum)
}

func TestAddAppendsStoreConfirmedEntry(t *testing.T) {
	svc, _, rn := newTestEntryService(t)
	signIn(svc, "u1")

	require.True(t, svc.Add(oatmeal()))

	today := svc.EntriesForToday()
	require.Len(t, today, 1)
	assert.Equal(t, "f1", today[0].ID)
	assert.Equal(t, "Oatmeal", today[0].Name)
	assert.Equal(t, "u1", today[0].OwnerID)
	assert.True(t, today[0].Date.Equal(baseTime))
	assert.NotEmpty(t, rn.bySeverity(models.NoticeSuccess))
}

func TestAddWithoutIdentityIsSilentNoOp(t *testing.T) {
	svc, fs, rn := newTestEntryService(t)

	assert.False(t, svc.Add(oatmeal()))
	assert.Empty(t, fs.rows)
	assert.Zero(t, rn.count())
}

func TestAddFailureLeavesCollectionUntouched(t *testing.T) {
	svc, fs, rn := newTestEntryService(t)
	signIn(svc, "u1")
	fs.insertErr = errors.New("constraint violation")

	assert.False(t, svc.Add(oatmeal()))
	assert.Empty(t, svc.Snapshot())
	require.Len(t, rn.bySeverity(models.NoticeError), 1)
}

func TestEditPatchesFieldsAndPreservesDate(t *testing.T) {
	svc, _, _ := newTestEntryService(t)
	signIn(svc, "u1")
	require.True(t, svc.Add(oatmeal()))

	name := "Oatmeal Deluxe"
	cal := 200.0
	require.True(t, svc.Edit("f1", models.EntryPatch{Name: &name, Calories: &cal}))

	got := svc.Snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, "f1", got[0].ID)
	assert.Equal(t, "Oatmeal Deluxe", got[0].Name)
	assert.Equal(t, 200.0, got[0].Calories)
	assert.Equal(t, 5.0, got[0].Protein)
	assert.True(t, got[0].Date.Equal(baseTime), "date must never be recomputed on edit")
}

func TestEditOfVanishedLocalRecordIsInert(t *testing.T) {
	svc, fs, _ := newTestEntryService(t)
	signIn(svc, "u1")
	// exists remotely, never loaded locally
	fs.seed(models.FoodEntry{ID: "zz", OwnerID: "u1", Name: "Ghost"})

	name := "Renamed"
	assert.True(t, svc.Edit("zz", models.EntryPatch{Name: &name}))
	assert.Empty(t, svc.Snapshot())
}

func TestEditFailureLeavesEntryUntouched(t *testing.T) {
	svc, _, rn := newTestEntryService(t)
	signIn(svc, "u1")
	require.True(t, svc.Add(oatmeal()))

	name := "Nope"
	assert.False(t, svc.Edit("missing", models.EntryPatch{Name: &name}))
	assert.Equal(t, "Oatmeal", svc.Snapshot()[0].Name)
	require.Len(t, rn.bySeverity(models.NoticeError), 1)
}

func TestDeleteRemovesAfterConfirmation(t *testing.T) {
	svc, fs, _ := newTestEntryService(t)
	signIn(svc, "u1")
	require.True(t, svc.Add(oatmeal()))

	assert.True(t, svc.Delete("f1"))
	assert.Empty(t, svc.Snapshot())
	assert.Empty(t, fs.rows)
}

func TestDeleteUnknownIDIsNoOp(t *testing.T) {
	svc, fs, rn := newTestEntryService(t)
	signIn(svc, "u1")
	require.True(t, svc.Add(oatmeal()))
	before := rn.count()

	assert.False(t, svc.Delete("nope"))
	assert.Len(t, svc.Snapshot(), 1)
	assert.Len(t, fs.rows, 1)
	assert.Equal(t, before, rn.count(), "idempotent delete emits nothing")
}

func TestDeleteFailureKeepsEntry(t *testing.T) {
	svc, fs, rn := newTestEntryService(t)
	signIn(svc, "u1")
	require.True(t, svc.Add(oatmeal()))
	fs.deleteErr["f1"] = errors.New("transport down")

	assert.False(t, svc.Delete("f1"))
	assert.Len(t, svc.Snapshot(), 1)
	require.Len(t, rn.bySeverity(models.NoticeError), 1)
}

func TestClearAllRemovesOnlyConfirmedDeletions(t *testing.T) {
	svc, fs, rn := newTestEntryService(t)
	signIn(svc, "u1")
	require.True(t, svc.Add(oatmeal()))
	require.True(t, svc.Add(models.EntryFields{Name: "Banana", Calories: 105}))
	fs.deleteErr["f2"] = errors.New("transport down")

	outcomes := svc.ClearAll()

	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].Deleted)
	assert.False(t, outcomes[1].Deleted)
	assert.Equal(t, "Banana", outcomes[1].Name)

	kept := svc.Snapshot()
	require.Len(t, kept, 1, "failed deletion must stay in memory")
	assert.Equal(t, "f2", kept[0].ID)

	errs := rn.bySeverity(models.NoticeError)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Description, "1 of 2")
}

func TestClearAllSuccessEmptiesEverything(t *testing.T) {
	svc, fs, rn := newTestEntryService(t)
	signIn(svc, "u1")
	require.True(t, svc.Add(oatmeal()))
	require.True(t, svc.Add(models.EntryFields{Name: "Banana", Calories: 105}))

	outcomes := svc.ClearAll()

	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.True(t, o.Deleted)
	}
	assert.Empty(t, svc.Snapshot())
	assert.Empty(t, fs.rows)
	assert.NotEmpty(t, rn.bySeverity(models.NoticeSuccess))
}

func TestClearAllWithoutIdentityReturnsNil(t *testing.T) {
	svc, _, rn := newTestEntryService(t)
	assert.Nil(t, svc.ClearAll())
	assert.Zero(t, rn.count())
}

func TestIdentitySwitchDiscardsInFlightFetch(t *testing.T) {
	svc, fs, _ := newTestEntryService(t)
	fs.seed(models.FoodEntry{ID: "e1", OwnerID: "userA", Name: "A1"})
	fs.seed(models.FoodEntry{ID: "e2", OwnerID: "userA", Name: "A2"})
	fs.seed(models.FoodEntry{ID: "e3", OwnerID: "userB", Name: "B1"})

	gate := make(chan struct{})
	fs.gates["userA"] = gate
	fs.fetchStarted = make(chan string, 2)

	done := make(chan struct{})
	go func() {
		signIn(svc, "userA")
		close(done)
	}()
	require.Equal(t, "userA", <-fs.fetchStarted, "A's fetch must be in flight")

	// switch while A's fetch hangs
	signIn(svc, "userB")
	require.Equal(t, "userB", <-fs.fetchStarted)

	snapshot := svc.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "e3", snapshot[0].ID)

	// A's fetch resolves late; its result must be discarded
	close(gate)
	<-done
	snapshot = svc.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "e3", snapshot[0].ID, "stale fetch for a superseded identity leaked in")
}

func TestIdentityChangeToNoneClearsWithoutStoreCall(t *testing.T) {
	svc, fs, _ := newTestEntryService(t)
	signIn(svc, "u1")
	require.True(t, svc.Add(oatmeal()))
	calls := fs.fetchCalls

	svc.OnIdentityChange(nil)

	assert.Empty(t, svc.Snapshot())
	assert.Equal(t, calls, fs.fetchCalls)
	assert.False(t, svc.Add(oatmeal()), "mutations are gated after sign-out")
}

func TestFetchErrorYieldsEmptyCollectionAndNotice(t *testing.T) {
	svc, fs, rn := newTestEntryService(t)
	fs.fetchErr = errors.New("transport down")

	signIn(svc, "u1")

	assert.Empty(t, svc.Snapshot())
	require.Len(t, rn.bySeverity(models.NoticeError), 1)
}

func TestMirrorHydratesBeforeFetchResolves(t *testing.T) {
	fs := newFakeEntryStore()
	rn := &recordingNotifier{}
	kv := store.NewMemKV()
	require.NoError(t, kv.Set("entries.userA", `[{"id":"c1","owner_id":"userA","name":"Cached"}]`))
	fs.seed(models.FoodEntry{ID: "e1", OwnerID: "userA", Name: "Fresh"})

	gate := make(chan struct{})
	fs.gates["userA"] = gate
	fs.fetchStarted = make(chan string, 1)

	svc := NewEntryService(fs, rn).
		WithClock(func() time.Time { return baseTime }).
		WithMirror(kv)

	done := make(chan struct{})
	go func() {
		signIn(svc, "userA")
		close(done)
	}()
	require.Equal(t, "userA", <-fs.fetchStarted)

	// cache is visible while the authoritative fetch is still in flight
	snapshot := svc.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "c1", snapshot[0].ID)

	// once the fetch lands, the backing store wins
	close(gate)
	<-done
	snapshot = svc.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "e1", snapshot[0].ID)

	raw, ok, err := kv.Get("entries.userA")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, `"e1"`, "mirror rewritten with the authoritative copy")
}

func TestEntriesForDayFiltersLocalCalendarDate(t *testing.T) {
	now := baseTime
	fs := newFakeEntryStore()
	svc := NewEntryService(fs, &recordingNotifier{}).
		WithClock(func() time.Time { return now })
	signIn(svc, "u1")

	require.True(t, svc.Add(models.EntryFields{Name: "Today", Calories: 100}))
	now = baseTime.AddDate(0, 0, 1)
	require.True(t, svc.Add(models.EntryFields{Name: "Tomorrow", Calories: 200}))

	today := svc.EntriesForDay(baseTime)
	require.Len(t, today, 1)
	assert.Equal(t, "Today", today[0].Name)

	// default day tracks the injected clock, now a day later
	assert.Len(t, svc.EntriesForToday(), 1)
	assert.Equal(t, "Tomorrow", svc.EntriesForToday()[0].Name)

	// result is a fresh copy, not a live view
	today[0].Name = "Mutated"
	assert.Equal(t, "Today", svc.EntriesForDay(baseTime)[0].Name)
}

func TestAddRoundTripAppearsExactlyOnce(t *testing.T) {
	svc, _, _ := newTestEntryService(t)
	signIn(svc, "u1")
	require.True(t, svc.Add(oatmeal()))

	seen := 0
	for _, e := range svc.EntriesForToday() {
		if e.ID == "f1" {
			seen++
		}
	}
	assert.Equal(t, 1, seen)
}
