package storage

import "sort"

// SetRemoteCommands replaces the guild's remote command table.
func (s *Storage) SetRemoteCommands(guildID string, commands map[string]RemoteCommand) error {
	return s.updateGuildRecord(guildID, func(r *Record) error {
		r.RemoteCommands = make(map[string]RemoteCommand, len(commands))
		for name, rc := range commands {
			r.RemoteCommands[name] = rc
		}
		return nil
	})
}

func (s *Storage) RemoteCommand(guildID, name string) (RemoteCommand, bool, error) {
	record, err := s.readGuildRecord(guildID)
	if err != nil {
		return RemoteCommand{}, false, err
	}
	rc, ok := record.RemoteCommands[name]
	return rc, ok, nil
}

// RemoteCommands returns a copy of the guild's remote command table.
func (s *Storage) RemoteCommands(guildID string) (map[string]RemoteCommand, error) {
	record, err := s.readGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.RemoteCommands, nil
}

// KnownCommandNames returns the remote command names registered in any
// guild or globally, sorted and deduplicated.
func (s *Storage) KnownCommandNames() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]bool{}
	for _, key := range s.ds.Keys(guildKeyPrefix) {
		var record Record
		if _, err := s.ds.Get(key, &record); err != nil {
			return nil, err
		}
		for name := range record.RemoteCommands {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
