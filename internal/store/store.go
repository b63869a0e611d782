// Package store owns the ordered list of records and its persisted copy.
//
// The whole list is the unit of persistence: every mutation re-serialises it
// as one JSON array under a single storage key.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Makepad-fr/dashboard/internal/model"
)

// DefaultKey is the storage key the list lives under.
const DefaultKey = "dashboardItems"

// KV is the slice of the storage contract the store needs.
type KV interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
}

// Store holds records in insertion order. It is not safe for concurrent use;
// a single event loop owns it.
type Store struct {
	kv   KV
	key  string
	seed bool
	now  func() time.Time
	log  *zap.Logger

	records  []model.Record
	firstRun bool
}

type Option func(*Store)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithSeed controls whether Load falls back to sample records (default true)
// or to an empty list.
func WithSeed(enabled bool) Option { return func(s *Store) { s.seed = enabled } }

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces time.Now for id generation.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func New(kv KV, opts ...Option) *Store {
	s := &Store{
		kv:      kv,
		key:     DefaultKey,
		seed:    true,
		now:     time.Now,
		log:     zap.NewNop(),
		records: []model.Record{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load replaces the in-memory list with the persisted one. A missing,
// unreadable or unparseable blob falls back to the initial list; Load never
// fails.
func (s *Store) Load() {
	s.firstRun = false
	blob, ok, err := s.kv.GetItem(s.key)
	switch {
	case err != nil:
		s.log.Warn("read stored records, using initial data", zap.String("key", s.key), zap.Error(err))
		s.records = s.initial()
		return
	case !ok:
		s.log.Debug("no stored records, using initial data", zap.String("key", s.key))
		s.records = s.initial()
		s.firstRun = true
		return
	}

	var recs []model.Record
	if err := json.Unmarshal([]byte(blob), &recs); err != nil {
		s.log.Warn("parse stored records, using initial data", zap.String("key", s.key), zap.Error(err))
		s.records = s.initial()
		return
	}
	s.records = dedupe(recs, s.log)
	s.log.Debug("records loaded", zap.Int("count", len(s.records)))
}

// FirstRun reports whether the last Load found nothing under the key.
// Read and parse failures do not count.
func (s *Store) FirstRun() bool { return s.firstRun }

// Save writes the full list under the store key.
func (s *Store) Save() error {
	b, err := json.Marshal(s.records)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := s.kv.SetItem(s.key, string(b)); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	s.log.Debug("records saved", zap.Int("count", len(s.records)))
	return nil
}

// Records returns a copy of the list in display order.
func (s *Store) Records() []model.Record {
	out := make([]model.Record, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Store) Len() int { return len(s.records) }

// FindByID scans the list for id.
func (s *Store) FindByID(id int64) (model.Record, bool) {
	if i := s.index(id); i >= 0 {
		return s.records[i], true
	}
	return model.Record{}, false
}

// Add appends a record with a fresh id and persists the list. The id field
// of r is ignored. The record stays in memory even if the write fails.
func (s *Store) Add(r model.Record) (model.Record, error) {
	r.ID = s.nextID()
	s.records = append(s.records, r)
	s.log.Info("record added", zap.Int64("id", r.ID), zap.String("name", r.Name))
	return r, s.Save()
}

// Update overwrites the mutable fields of the record with id. It reports
// false, without persisting, when no such record exists.
func (s *Store) Update(id int64, name string, value float64, phone string) (bool, error) {
	i := s.index(id)
	if i < 0 {
		return false, nil
	}
	s.records[i].Name = name
	s.records[i].Value = value
	s.records[i].Phone = phone
	s.log.Info("record updated", zap.Int64("id", id))
	return true, s.Save()
}

// Remove deletes the record with id in place and persists the list.
// Absent ids are a no-op.
func (s *Store) Remove(id int64) (bool, error) {
	i := s.index(id)
	if i < 0 {
		return false, nil
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	s.log.Info("record removed", zap.Int64("id", id))
	return true, s.Save()
}

// Reset replaces the list with the sample records and persists it.
func (s *Store) Reset() error {
	s.records = SeedRecords(s.now())
	return s.Save()
}

func (s *Store) index(id int64) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

// nextID derives an id from the clock, bumped past every existing id so ids
// stay unique even when the clock stalls or goes backwards.
func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	for _, r := range s.records {
		if r.ID >= id {
			id = r.ID + 1
		}
	}
	return id
}

func (s *Store) initial() []model.Record {
	if !s.seed {
		return []model.Record{}
	}
	return SeedRecords(s.now())
}

// SeedRecords returns the sample data shown on first run.
func SeedRecords(now time.Time) []model.Record {
	base := now.UnixMilli()
	return []model.Record{
		{ID: base + 1, Name: "Elemento A", Value: 100, Phone: "3331234567"},
		{ID: base + 2, Name: "Elemento B", Value: 250, Phone: "3339876543"},
		{ID: base + 3, Name: "Elemento C", Value: 75, Phone: "3335555555"},
	}
}

// dedupe keeps the first record for each id.
func dedupe(recs []model.Record, log *zap.Logger) []model.Record {
	out := make([]model.Record, 0, len(recs))
	seen := make(map[int64]struct{}, len(recs))
	for _, r := range recs {
		if _, dup := seen[r.ID]; dup {
			log.Warn("dropping record with duplicate id", zap.Int64("id", r.ID))
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}
