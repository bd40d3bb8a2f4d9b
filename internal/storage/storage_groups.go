package storage

func (s *Storage) DisableGroup(guildID, group string) error {
	return s.updateGuildRecord(guildID, func(r *Record) error {
		for _, g := range r.CommandsDisabled {
			if g == group {
				return nil
			}
		}
		r.CommandsDisabled = append(r.CommandsDisabled, group)
		return nil
	})
}

func (s *Storage) EnableGroup(guildID, group string) error {
	return s.updateGuildRecord(guildID, func(r *Record) error {
		updated := make([]string, 0, len(r.CommandsDisabled))
		for _, g := range r.CommandsDisabled {
			if g != group {
				updated = append(updated, g)
			}
		}
		r.CommandsDisabled = updated
		return nil
	})
}

func (s *Storage) IsGroupDisabled(guildID, group string) (bool, error) {
	record, err := s.readGuildRecord(guildID)
	if err != nil {
		return false, err
	}
	for _, g := range record.CommandsDisabled {
		if g == group {
			return true, nil
		}
	}
	return false, nil
}

func (s *Storage) DisabledGroups(guildID string) ([]string, error) {
	record, err := s.readGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandsDisabled, nil
}

// AppendCommandHistory keeps the most recent invocations per guild.
func (s *Storage) AppendCommandHistory(guildID string, entry CommandHistory) error {
	return s.updateGuildRecord(guildID, func(r *Record) error {
		r.CommandsHistory = append(r.CommandsHistory, entry)
		if len(r.CommandsHistory) > commandHistoryLimit {
			r.CommandsHistory = r.CommandsHistory[len(r.CommandsHistory)-commandHistoryLimit:]
		}
		return nil
	})
}

func (s *Storage) CommandHistory(guildID string) ([]CommandHistory, error) {
	record, err := s.readGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandsHistory, nil
}
