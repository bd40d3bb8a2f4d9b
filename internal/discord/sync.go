package discord

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"github.com/keshon/cmdtree/internal/storage"
	"github.com/keshon/cmdtree/pkg/pacer"
)

// CommandStore persists the remote id and definition hash of every command
// registered in a guild.
type CommandStore interface {
	RemoteCommands(guildID string) (map[string]storage.RemoteCommand, error)
	SetRemoteCommands(guildID string, commands map[string]storage.RemoteCommand) error
}

// SyncObserver is told the outcome of every sync step.
type SyncObserver interface {
	ObserveSync(guildID, result string)
}

// Syncer keeps a guild's slash commands equal to a fixed set of definitions.
type Syncer struct {
	session  Session
	appID    string
	defs     []*discordgo.ApplicationCommand
	store    CommandStore
	pacer    *pacer.Pacer
	observer SyncObserver
}

// NewSyncer paces registration calls at up to perSecond, halving the pace
// whenever Discord answers 429 or 5xx.
func NewSyncer(s Session, appID string, defs []*discordgo.ApplicationCommand, store CommandStore, perSecond float64, observer SyncObserver) *Syncer {
	limit := rate.Limit(perSecond)
	return &Syncer{
		session:  s,
		appID:    appID,
		defs:     defs,
		store:    store,
		pacer:    pacer.New(limit, rate.Limit(math.Min(1, perSecond)), limit, 1, 0.5),
		observer: observer,
	}
}

// Pace returns the current registration calls per second.
func (sy *Syncer) Pace() float64 {
	return sy.pacer.Limit()
}

// restStatus exposes the HTTP status of a discordgo REST error to the pacer.
type restStatus struct {
	err  error
	code int
}

func (e restStatus) Error() string   { return e.err.Error() }
func (e restStatus) Unwrap() error   { return e.err }
func (e restStatus) StatusCode() int { return e.code }

func (sy *Syncer) observeCall(err error) {
	var re *discordgo.RESTError
	if errors.As(err, &re) && re.Response != nil {
		err = restStatus{err: err, code: re.Response.StatusCode}
	}
	sy.pacer.Observe(err)
}

func (sy *Syncer) observe(guildID, result string) {
	if sy.observer != nil {
		sy.observer.ObserveSync(guildID, result)
	}
}

// Sync deletes remote commands that are no longer defined and creates those
// whose definition hash changed since the last sync. The stored table is
// rewritten with what Discord holds afterwards.
func (sy *Syncer) Sync(ctx context.Context, guildID string) error {
	remote, err := sy.session.ApplicationCommands(sy.appID, guildID, discordgo.WithContext(ctx))
	if err != nil {
		sy.observe(guildID, "error")
		return fmt.Errorf("list commands of %q: %w", guildID, err)
	}
	stored, err := sy.store.RemoteCommands(guildID)
	if err != nil {
		return fmt.Errorf("read stored commands of %q: %w", guildID, err)
	}

	remoteByName := make(map[string]*discordgo.ApplicationCommand, len(remote))
	for _, rc := range remote {
		remoteByName[rc.Name] = rc
	}
	local := make(map[string]bool, len(sy.defs))
	for _, d := range sy.defs {
		local[d.Name] = true
	}

	table := make(map[string]storage.RemoteCommand, len(sy.defs))
	for name, rc := range remoteByName {
		if local[name] {
			continue
		}
		if err := sy.pacer.Wait(ctx); err != nil {
			return err
		}
		log.Printf("[INFO] [%s] Deleting obsolete command: %s", guildID, name)
		err := sy.session.ApplicationCommandDelete(sy.appID, guildID, rc.ID, discordgo.WithContext(ctx))
		sy.observeCall(err)
		if err != nil {
			log.Printf("[ERR] [%s] Failed to delete %s: %v", guildID, name, err)
			sy.observe(guildID, "error")
			table[name] = storage.RemoteCommand{ID: rc.ID}
			continue
		}
		sy.observe(guildID, "deleted")
	}

	var changed []*discordgo.ApplicationCommand
	hashes := make(map[string]string, len(sy.defs))
	for _, d := range sy.defs {
		h := hashDefinition(d)
		hashes[d.Name] = h
		rc, onRemote := remoteByName[d.Name]
		if onRemote && stored[d.Name].Hash == h && stored[d.Name].ID == rc.ID {
			table[d.Name] = storage.RemoteCommand{ID: rc.ID, Hash: h}
			sy.observe(guildID, "unchanged")
			continue
		}
		changed = append(changed, d)
	}

	if len(changed) > 0 {
		log.Printf("[INFO] [%s] Registering %d changed command(s)...", guildID, len(changed))
	}
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, d := range changed {
		if err := sy.pacer.Wait(ctx); err != nil {
			wg.Wait()
			return err
		}
		wg.Add(1)
		go func(d *discordgo.ApplicationCommand) {
			defer wg.Done()
			created, err := sy.session.ApplicationCommandCreate(sy.appID, guildID, d, discordgo.WithContext(ctx))
			sy.observeCall(err)
			if err != nil {
				log.Printf("[ERR] [%s] Can't create command %s: %v", guildID, d.Name, err)
				sy.observe(guildID, "error")
				// Keep the old id so the command stays addressable; no hash
				// means the next sync retries.
				if rc, ok := remoteByName[d.Name]; ok {
					mu.Lock()
					table[d.Name] = storage.RemoteCommand{ID: rc.ID}
					mu.Unlock()
				}
				return
			}
			log.Printf("[DONE] [%s] Command created: %s", guildID, d.Name)
			sy.observe(guildID, "created")
			mu.Lock()
			table[d.Name] = storage.RemoteCommand{ID: created.ID, Hash: hashes[d.Name]}
			mu.Unlock()
		}(d)
	}
	wg.Wait()

	return sy.store.SetRemoteCommands(guildID, table)
}

// Clear deletes every command registered in a guild and empties its table.
func (sy *Syncer) Clear(ctx context.Context, guildID string) error {
	remote, err := sy.session.ApplicationCommands(sy.appID, guildID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("list commands of %q: %w", guildID, err)
	}
	for _, rc := range remote {
		if err := sy.pacer.Wait(ctx); err != nil {
			return err
		}
		err := sy.session.ApplicationCommandDelete(sy.appID, guildID, rc.ID, discordgo.WithContext(ctx))
		sy.observeCall(err)
		if err != nil {
			log.Printf("[ERR] [%s] Failed to delete %s: %v", guildID, rc.Name, err)
			continue
		}
		log.Printf("[DONE] [%s] Deleted %s", guildID, rc.Name)
	}
	return sy.store.SetRemoteCommands(guildID, nil)
}
