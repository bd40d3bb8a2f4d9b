// Package discord connects the command engine to a Discord gateway session:
// it translates interactions and prefixed messages into engine events,
// renders responses, and keeps slash command definitions in sync.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/cmdtree/internal/config"
	"github.com/keshon/cmdtree/pkg/cmd"
	"github.com/keshon/cmdtree/pkg/jobmgr"
)

// Observer records routing and sync outcomes.
type Observer interface {
	SyncObserver
	ObserveResult(ev cmd.Event, res cmd.Result)
}

type nopObserver struct{}

func (nopObserver) ObserveSync(string, string)           {}
func (nopObserver) ObserveResult(cmd.Event, cmd.Result) {}

// Bot is a Discord bot feeding one engine.
type Bot struct {
	dg       *discordgo.Session
	cfg      *config.Config
	store    CommandStore
	observer Observer

	ctx    context.Context
	engine *cmd.Engine
	defs   []*discordgo.ApplicationCommand
	jobs   *jobmgr.Manager

	mu     sync.RWMutex
	syncer *Syncer
}

// NewBot creates the session without connecting it. observer may be nil.
func NewBot(cfg *config.Config, store CommandStore, observer Observer) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if observer == nil {
		observer = nopObserver{}
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	return &Bot{
		dg:       dg,
		cfg:      cfg,
		store:    store,
		observer: observer,
		ctx:      context.Background(),
		jobs:     jobmgr.NewManager(context.Background(), logJob),
	}, nil
}

func logJob(msg string) {
	log.Printf("[INFO] Job %s", msg)
}

// Session returns the underlying session for API adapters.
func (b *Bot) Session() Session { return b.dg }

// AppID returns the application id once the session is ready.
func (b *Bot) AppID() string {
	if b.dg.State != nil && b.dg.State.User != nil {
		return b.dg.State.User.ID
	}
	return ""
}

// Run connects, serves engine until ctx is done, then closes the session.
func (b *Bot) Run(ctx context.Context, engine *cmd.Engine) error {
	defs, err := Definitions(engine.Tree())
	if err != nil {
		return fmt.Errorf("build command definitions: %w", err)
	}
	b.ctx, b.engine, b.defs = ctx, engine, defs
	b.jobs = jobmgr.NewManager(ctx, logJob)

	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onGuildCreate)
	b.dg.AddHandler(b.onInteractionCreate)
	b.dg.AddHandler(b.onMessageCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	log.Println("[INFO] Shutdown signal received. Closing Discord session...")
	log.Printf("[INFO] %s", b.jobs.Status())
	b.jobs.StopAll()
	b.jobs.Wait()
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("[INFO] Logged in as %s (%s), %d guild(s)", r.User.Username, r.User.ID, len(r.Guilds))

	b.mu.Lock()
	b.syncer = NewSyncer(s, r.User.ID, b.defs, b.store, b.cfg.RegisterRate, b.observer)
	b.mu.Unlock()

	for _, g := range r.Guilds {
		b.setupGuild(s, g.ID)
	}
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	b.setupGuild(s, g.ID)
}

// setupGuild leaves blacklisted guilds and syncs commands in the others, or
// removes them all when CLEAR_SLASH_COMMANDS is set. A
// guild has at most one sync in flight; READY and GUILD_CREATE for the same
// guild collapse into one.
func (b *Bot) setupGuild(s Session, guildID string) {
	if b.cfg.IsGuildBlacklisted(guildID) {
		log.Printf("[INFO] Leaving blacklisted guild: %s", guildID)
		if err := s.GuildLeave(guildID); err != nil {
			log.Printf("[ERR] Failed to leave guild %s: %v", guildID, err)
		}
		return
	}
	if !b.cfg.InitSlashCommands && !b.cfg.ClearSlashCommands {
		return
	}

	b.mu.RLock()
	syncer := b.syncer
	b.mu.RUnlock()
	if syncer == nil {
		return
	}
	err := b.jobs.Start("sync:"+guildID, func(ctx context.Context) error {
		if b.cfg.ClearSlashCommands {
			return syncer.Clear(ctx, guildID)
		}
		if err := syncer.Sync(ctx, guildID); err != nil {
			return err
		}
		log.Printf("[DONE] [%s] Commands in sync (pace %.0f/s)", guildID, syncer.Pace())
		return nil
	})
	if errors.Is(err, jobmgr.ErrRunning) {
		log.Printf("[INFO] [%s] Command sync already running", guildID)
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.handleInteraction(b.ctx, s, i)
}

func (b *Bot) handleInteraction(ctx context.Context, s Session, i *discordgo.InteractionCreate) {
	if i.Type == discordgo.InteractionApplicationCommandAutocomplete {
		choices := AutocompleteChoices(b.engine.Tree(), i.ApplicationCommandData())
		if err := RespondChoices(s, i, choices); err != nil {
			log.Printf("[ERR] Failed to answer autocomplete: %v", err)
		}
		return
	}

	ev, err := EventFromInteraction(s, i)
	if err != nil {
		return
	}
	res := b.engine.Handle(ctx, ev)
	b.observer.ObserveResult(ev, res)

	resp := ResponseFromResult(res)
	if !res.Matched {
		log.Printf("[WARN] No handler for %q", res.Target)
		resp = cmd.Failure("This action is not available anymore.")
	}
	if err := Respond(s, i, resp); err != nil {
		log.Printf("[ERR] Failed to respond to %q: %v", res.Target, err)
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	b.handleMessage(b.ctx, s, m)
}

// handleMessage runs prefixed text commands. Unmatched text is ignored.
func (b *Bot) handleMessage(ctx context.Context, s Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	path, opts, ok := ParseText(b.engine.Tree(), b.cfg.CommandPrefix, m.Content)
	if !ok {
		return
	}

	payload := &Payload{Session: s, Message: m}
	ev := &cmd.CommandEvent{
		Path:    path,
		Options: opts,
		Inject:  cmd.Injection{cmd.KindContext: payload},
		Data:    payload,
	}
	res := b.engine.Handle(ctx, ev)
	b.observer.ObserveResult(ev, res)
	if !res.Matched {
		return
	}
	if _, err := s.ChannelMessageSendComplex(m.ChannelID, MessageSend(ResponseFromResult(res))); err != nil {
		log.Printf("[ERR] Failed to send reply for %q: %v", path, err)
	}
}
