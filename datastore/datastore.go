// Package datastore is a small JSON file backed key/value store. Values are
// kept as raw JSON so callers read them back into their own types.
package datastore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("datastore is closed")

// Config holds configuration options for the DataStore.
type Config struct {
	FilePath string
	// AutoSaveInterval of zero disables the background save loop; changes
	// are then written by Save and Close only.
	AutoSaveInterval time.Duration
	BackupCount      int
	Logger           *log.Logger
}

// DefaultConfig returns the configuration used by New.
func DefaultConfig(filePath string) *Config {
	return &Config{
		FilePath:         filePath,
		AutoSaveInterval: 10 * time.Second,
		BackupCount:      3,
		Logger:           log.New(os.Stderr, "[datastore] ", log.LstdFlags),
	}
}

// Stats describes the store's current state.
type Stats struct {
	Keys      int
	Bytes     int
	FilePath  string
	Dirty     bool
	LastSaved time.Time
}

type DataStore struct {
	mu           sync.RWMutex
	data         map[string]json.RawMessage
	config       Config
	lastChecksum string
	lastSaved    time.Time
	closed       bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New opens the store at filePath with default settings.
func New(filePath string) (*DataStore, error) {
	return NewWithConfig(DefaultConfig(filePath))
}

// NewWithConfig opens or creates the store file and starts autosave.
func NewWithConfig(config *Config) (*DataStore, error) {
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}
	if config.FilePath == "" {
		return nil, errors.New("file path cannot be empty")
	}
	cfg := *config
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	ds := &DataStore{data: make(map[string]json.RawMessage), config: cfg}

	switch _, err := os.Stat(cfg.FilePath); {
	case errors.Is(err, os.ErrNotExist):
		if err := ds.writeFileAtomic([]byte("{}")); err != nil {
			return nil, fmt.Errorf("create empty store: %w", err)
		}
		ds.lastChecksum = checksum([]byte("{}"))
	case err == nil:
		if err := ds.load(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("stat store file: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ds.cancel = cancel
	if cfg.AutoSaveInterval > 0 {
		ds.wg.Add(1)
		go ds.autoSave(ctx)
	}
	return ds, nil
}

// Put stores v under key as JSON.
func (ds *DataStore) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.closed {
		return ErrClosed
	}
	ds.data[key] = raw
	return nil
}

// Get decodes the value under key into out. found is false when the key
// does not exist; out is then left untouched.
func (ds *DataStore) Get(key string, out any) (found bool, err error) {
	ds.mu.RLock()
	if ds.closed {
		ds.mu.RUnlock()
		return false, ErrClosed
	}
	raw, ok := ds.data[key]
	ds.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("unmarshal %q: %w", key, err)
	}
	return true, nil
}

// Has reports whether key exists.
func (ds *DataStore) Has(key string) bool {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	_, ok := ds.data[key]
	return ok
}

// Delete removes key. Deleting a missing key is a no-op.
func (ds *DataStore) Delete(key string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.closed {
		return ErrClosed
	}
	delete(ds.data, key)
	return nil
}

// Keys returns the keys starting with prefix, sorted.
func (ds *DataStore) Keys(prefix string) []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	var keys []string
	for k := range ds.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Save writes pending changes to disk now.
func (ds *DataStore) Save() error {
	ds.mu.RLock()
	closed := ds.closed
	ds.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	return ds.save()
}

// Close stops autosave and writes a final snapshot. It is safe to call
// more than once.
func (ds *DataStore) Close() error {
	ds.mu.Lock()
	if ds.closed {
		ds.mu.Unlock()
		return nil
	}
	ds.closed = true
	ds.mu.Unlock()

	ds.cancel()
	ds.wg.Wait()
	return ds.save()
}

// Stats returns a snapshot of the store's counters.
func (ds *DataStore) Stats() Stats {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	size := 0
	for _, v := range ds.data {
		size += len(v)
	}
	snapshot, _ := ds.marshalLocked()
	return Stats{
		Keys:      len(ds.data),
		Bytes:     size,
		FilePath:  ds.config.FilePath,
		Dirty:     checksum(snapshot) != ds.lastChecksum,
		LastSaved: ds.lastSaved,
	}
}

func (ds *DataStore) marshalLocked() ([]byte, error) {
	return json.MarshalIndent(ds.data, "", "  ")
}

// save writes the store atomically, skipping the write when nothing changed
// since the last save.
func (ds *DataStore) save() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	data, err := ds.marshalLocked()
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	sum := checksum(data)
	if sum == ds.lastChecksum {
		return nil
	}

	if ds.config.BackupCount > 0 {
		if err := ds.backup(); err != nil {
			ds.config.Logger.Printf("[WARN] Backup failed: %v", err)
		}
	}
	if err := ds.writeFileAtomic(data); err != nil {
		return err
	}

	written, err := os.ReadFile(ds.config.FilePath)
	if err != nil {
		return fmt.Errorf("verify store file: %w", err)
	}
	if checksum(written) != sum {
		return errors.New("verify store file: checksum mismatch")
	}

	ds.lastChecksum = sum
	ds.lastSaved = time.Now()
	return nil
}

func (ds *DataStore) load() error {
	data, err := os.ReadFile(ds.config.FilePath)
	if err != nil {
		return fmt.Errorf("read store file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}

	loaded := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("invalid store file %s: %w", ds.config.FilePath, err)
	}

	ds.data = loaded
	// Compare future saves against the normalised form, not the raw file.
	normalised, err := ds.marshalLocked()
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	ds.lastChecksum = checksum(normalised)
	return nil
}

func (ds *DataStore) writeFileAtomic(data []byte) error {
	dir := filepath.Dir(ds.config.FilePath)
	tmp, err := os.CreateTemp(dir, filepath.Base(ds.config.FilePath)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, ds.config.FilePath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (ds *DataStore) backup() error {
	src, err := os.Open(ds.config.FilePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer src.Close()

	name := fmt.Sprintf("%s.backup.%s", ds.config.FilePath, time.Now().Format("20060102_150405.000000000"))
	dst, err := os.Create(name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}

	ds.pruneBackups()
	return nil
}

// pruneBackups keeps the newest BackupCount backups. Backup names sort by
// creation time.
func (ds *DataStore) pruneBackups() {
	matches, err := filepath.Glob(ds.config.FilePath + ".backup.*")
	if err != nil || len(matches) <= ds.config.BackupCount {
		return
	}
	sort.Strings(matches)
	for _, old := range matches[:len(matches)-ds.config.BackupCount] {
		if err := os.Remove(old); err != nil {
			ds.config.Logger.Printf("[WARN] Remove old backup %s: %v", old, err)
		}
	}
}

func (ds *DataStore) autoSave(ctx context.Context) {
	defer ds.wg.Done()

	ticker := time.NewTicker(ds.config.AutoSaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ds.save(); err != nil {
				ds.config.Logger.Printf("[ERR] Autosave failed: %v", err)
			}
		}
	}
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
