package store

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/dashboard/internal/model"
	"github.com/Makepad-fr/dashboard/internal/storage/memstore"
)

var fixedNow = time.UnixMilli(1_700_000_000_000)

func fixedClock() time.Time { return fixedNow }

type brokenKV struct {
	getErr, setErr error
}

func (b brokenKV) GetItem(string) (string, bool, error) { return "", false, b.getErr }
func (b brokenKV) SetItem(string, string) error         { return b.setErr }

func newLoaded(t *testing.T, recs []model.Record) (*Store, *memstore.Store) {
	t.Helper()
	kv := memstore.New()
	if recs != nil {
		b, err := json.Marshal(recs)
		require.NoError(t, err)
		require.NoError(t, kv.SetItem(DefaultKey, string(b)))
	}
	s := New(kv, WithClock(fixedClock))
	s.Load()
	return s, kv
}

func TestLoadMissingUsesSeed(t *testing.T) {
	s, kv := newLoaded(t, nil)

	want := SeedRecords(fixedNow)
	if diff := cmp.Diff(want, s.Records()); diff != "" {
		t.Fatalf("seed mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, s.FirstRun())
	// seeding alone does not write
	_, ok, _ := kv.GetItem(DefaultKey)
	assert.False(t, ok)
}

func TestFirstRunOnlyWhenKeyAbsent(t *testing.T) {
	kv := memstore.New()
	require.NoError(t, kv.SetItem(DefaultKey, "garbage"))
	s := New(kv)
	s.Load()
	assert.False(t, s.FirstRun(), "a corrupt blob is not a first run")

	s, _ = newLoaded(t, []model.Record{{ID: 1, Name: "a"}})
	assert.False(t, s.FirstRun())
}

func TestLoadMissingWithoutSeed(t *testing.T) {
	s := New(memstore.New(), WithSeed(false))
	s.Load()
	assert.Equal(t, 0, s.Len())
	assert.NotNil(t, s.Records())
}

func TestLoadUnparseableFallsBackToSeed(t *testing.T) {
	kv := memstore.New()
	require.NoError(t, kv.SetItem(DefaultKey, "{definitely not json"))
	s := New(kv, WithClock(fixedClock))
	s.Load()
	assert.Equal(t, 3, s.Len())
}

func TestLoadReadErrorFallsBackToSeed(t *testing.T) {
	s := New(brokenKV{getErr: errors.New("disk on fire")}, WithClock(fixedClock))
	s.Load()
	assert.Equal(t, SeedRecords(fixedNow), s.Records())
}

func TestLoadNullBlobIsEmpty(t *testing.T) {
	kv := memstore.New()
	require.NoError(t, kv.SetItem(DefaultKey, "null"))
	s := New(kv)
	s.Load()
	assert.Equal(t, 0, s.Len())
}

func TestLoadDropsDuplicateIDs(t *testing.T) {
	s, _ := newLoaded(t, []model.Record{
		{ID: 1, Name: "a", Value: 1},
		{ID: 1, Name: "b", Value: 2},
		{ID: 2, Name: "c", Value: 3},
	})
	require.Equal(t, 2, s.Len())
	r, ok := s.FindByID(1)
	require.True(t, ok)
	assert.Equal(t, "a", r.Name)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	recs := []model.Record{
		{ID: 7, Name: "Widget", Value: 42, Phone: "5551234567"},
		{ID: 9, Name: "Gadget", Value: 0.5},
		{ID: 3, Name: "Gizmo", Value: 1e6, Phone: "0123456789"},
	}
	s, kv := newLoaded(t, recs)
	require.NoError(t, s.Save())

	again := New(kv)
	again.Load()
	if diff := cmp.Diff(s.Records(), again.Records()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPersistedShape(t *testing.T) {
	s, kv := newLoaded(t, []model.Record{})
	_, err := s.Add(model.Record{Name: "Widget", Value: 42})
	require.NoError(t, err)

	blob, ok, err := kv.GetItem(DefaultKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":1700000000000,"name":"Widget","value":42}]`, blob)
}

func TestAddAppendsWithFreshID(t *testing.T) {
	s, _ := newLoaded(t, nil) // seed ids are now+1..now+3
	before := s.Len()

	r, err := s.Add(model.Record{ID: 99, Name: "Widget", Value: 42, Phone: "5551234567"})
	require.NoError(t, err)

	assert.Equal(t, before+1, s.Len())
	assert.Equal(t, fixedNow.UnixMilli()+4, r.ID)
	recs := s.Records()
	assert.Equal(t, r, recs[len(recs)-1])
}

func TestAddKeepsIDsUniqueUnderFrozenClock(t *testing.T) {
	s, _ := newLoaded(t, []model.Record{})
	seen := map[int64]bool{}
	for i := 0; i < 5; i++ {
		r, err := s.Add(model.Record{Name: "x"})
		require.NoError(t, err)
		require.False(t, seen[r.ID], "duplicate id %d", r.ID)
		seen[r.ID] = true
	}
}

func TestUpdateInPlace(t *testing.T) {
	s, _ := newLoaded(t, []model.Record{
		{ID: 1, Name: "a", Value: 1},
		{ID: 7, Name: "b", Value: 100, Phone: "3331234567"},
		{ID: 9, Name: "c", Value: 3},
	})

	ok, err := s.Update(7, "bee", 200, "3339876543")
	require.NoError(t, err)
	require.True(t, ok)

	recs := s.Records()
	require.Len(t, recs, 3)
	assert.Equal(t, model.Record{ID: 7, Name: "bee", Value: 200, Phone: "3339876543"}, recs[1])
}

func TestUpdateMissDoesNotSave(t *testing.T) {
	s := New(brokenKV{setErr: errors.New("should not be called")}, WithSeed(false))
	s.Load()
	ok, err := s.Update(42, "x", 1, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemove(t *testing.T) {
	s, kv := newLoaded(t, []model.Record{
		{ID: 1, Name: "a"}, {ID: 2, Name: "b"}, {ID: 3, Name: "c"},
	})

	ok, err := s.Remove(2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []model.Record{{ID: 1, Name: "a"}, {ID: 3, Name: "c"}}, s.Records())

	blob, _, _ := kv.GetItem(DefaultKey)
	assert.JSONEq(t, `[{"id":1,"name":"a","value":0},{"id":3,"name":"c","value":0}]`, blob)

	ok, err = s.Remove(2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, s.Len())
}

func TestSaveErrorIsWrapped(t *testing.T) {
	boom := errors.New("quota exceeded")
	s := New(brokenKV{setErr: boom}, WithSeed(false))
	s.Load()

	_, err := s.Add(model.Record{Name: "x"})
	require.ErrorIs(t, err, boom)
	// the in-memory change is kept
	assert.Equal(t, 1, s.Len())
}

func TestRecordsReturnsCopy(t *testing.T) {
	s, _ := newLoaded(t, []model.Record{{ID: 1, Name: "a"}})
	recs := s.Records()
	recs[0].Name = "mutated"
	r, _ := s.FindByID(1)
	assert.Equal(t, "a", r.Name)
}

func TestResetRestoresSeed(t *testing.T) {
	s, kv := newLoaded(t, []model.Record{{ID: 1, Name: "a"}})
	require.NoError(t, s.Reset())
	assert.Equal(t, SeedRecords(fixedNow), s.Records())

	_, ok, _ := kv.GetItem(DefaultKey)
	assert.True(t, ok)
}

func TestWithKey(t *testing.T) {
	kv := memstore.New()
	s := New(kv, WithKey("other"), WithSeed(false))
	s.Load()
	_, err := s.Add(model.Record{Name: "x"})
	require.NoError(t, err)

	_, ok, _ := kv.GetItem("other")
	assert.True(t, ok)
	_, ok, _ = kv.GetItem(DefaultKey)
	assert.False(t, ok)
}
