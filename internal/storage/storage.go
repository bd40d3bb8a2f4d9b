package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/keshon/cmdtree/datastore"
)

const (
	commandHistoryLimit = 20

	commandIDsKey   = "command_ids"
	guildKeyPrefix  = "guild:"
	globalScopeName = "global"
)

// Storage keeps bot state in the datastore: the command id ledger and one
// record per guild.
type Storage struct {
	ds *datastore.DataStore
	// mu serialises read-modify-write cycles on records; the datastore only
	// guards single reads and writes.
	mu sync.RWMutex
}

// RemoteCommand is what the bot knows about a command registered on
// Discord under one top-level name.
type RemoteCommand struct {
	ID   string `json:"id"`
	Hash string `json:"hash"`
}

type CommandHistory struct {
	ChannelID string    `json:"channel_id"`
	GuildID   string    `json:"guild_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Outcome   string    `json:"outcome"`
	Datetime  time.Time `json:"datetime"`
}

// Record is the per-guild document.
type Record struct {
	RemoteCommands   map[string]RemoteCommand `json:"remote_commands"`
	CommandsDisabled []string                 `json:"commands_disabled"`
	CommandsHistory  []CommandHistory         `json:"cmd_history"`
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

// NewWithDataStore wraps an already opened datastore.
func NewWithDataStore(ds *datastore.DataStore) *Storage {
	return &Storage{ds: ds}
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// Save flushes pending changes to disk.
func (s *Storage) Save() error {
	return s.ds.Save()
}

// guildKey maps a guild id to its datastore key. The empty id stands for
// global (non-guild) scope.
func guildKey(guildID string) string {
	if guildID == "" {
		return guildKeyPrefix + globalScopeName
	}
	return guildKeyPrefix + guildID
}

// getOrCreateGuildRecord must be called with s.mu held.
func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	var record Record
	if _, err := s.ds.Get(guildKey(guildID), &record); err != nil {
		return nil, fmt.Errorf("load guild %q: %w", guildID, err)
	}

	if record.RemoteCommands == nil {
		record.RemoteCommands = map[string]RemoteCommand{}
	}
	if len(record.CommandsHistory) > commandHistoryLimit {
		record.CommandsHistory = record.CommandsHistory[len(record.CommandsHistory)-commandHistoryLimit:]
	}
	return &record, nil
}

// putGuildRecord must be called with s.mu held for writing.
func (s *Storage) putGuildRecord(guildID string, record *Record) error {
	if err := s.ds.Put(guildKey(guildID), record); err != nil {
		return fmt.Errorf("store guild %q: %w", guildID, err)
	}
	return nil
}

// updateGuildRecord runs fn on the guild's record under the write lock and
// stores the result unless fn fails.
func (s *Storage) updateGuildRecord(guildID string, fn func(*Record) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	if err := fn(record); err != nil {
		return err
	}
	return s.putGuildRecord(guildID, record)
}

func (s *Storage) readGuildRecord(guildID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getOrCreateGuildRecord(guildID)
}
