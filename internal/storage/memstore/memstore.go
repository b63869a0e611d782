// Package memstore is a map-backed key-value store for tests and throwaway
// sessions. Nothing survives the process.
package memstore

type Store struct {
	items map[string]string
}

func New() *Store {
	return &Store{items: make(map[string]string)}
}

func (s *Store) GetItem(key string) (string, bool, error) {
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *Store) SetItem(key, value string) error {
	s.items[key] = value
	return nil
}

func (s *Store) RemoveItem(key string) error {
	delete(s.items, key)
	return nil
}

func (s *Store) Close() error { return nil }
