package storage

import "fmt"

// IDLedger exposes the stored path → id table as a cmd.IDLedger.
func (s *Storage) IDLedger() *Ledger {
	return &Ledger{s: s}
}

// Ledger persists command ids between runs.
type Ledger struct {
	s *Storage
}

// Known returns every recorded path → id pair, including paths that no
// longer exist, so their ids are never handed out again.
func (l *Ledger) Known() (map[string]int64, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()

	ids := map[string]int64{}
	if _, err := l.s.ds.Get(commandIDsKey, &ids); err != nil {
		return nil, fmt.Errorf("load command ids: %w", err)
	}
	return ids, nil
}

// Record merges ids into the stored table.
func (l *Ledger) Record(ids map[string]int64) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	stored := map[string]int64{}
	if _, err := l.s.ds.Get(commandIDsKey, &stored); err != nil {
		return fmt.Errorf("load command ids: %w", err)
	}
	for path, id := range ids {
		stored[path] = id
	}
	if err := l.s.ds.Put(commandIDsKey, stored); err != nil {
		return fmt.Errorf("store command ids: %w", err)
	}
	return nil
}
