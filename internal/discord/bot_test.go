package discord

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/cmdtree/internal/config"
	"github.com/keshon/cmdtree/pkg/cmd"
	"github.com/keshon/cmdtree/pkg/jobmgr"
)

type resultRecorder struct {
	nopObserver
	results []cmd.Result
}

func (r *resultRecorder) ObserveResult(_ cmd.Event, res cmd.Result) {
	r.results = append(r.results, res)
}

func newTestBot(t *testing.T) (*Bot, *resultRecorder) {
	t.Helper()
	router := cmd.NewRouter()
	require.NoError(t, router.Register("confirm_42", func(_ context.Context, in *cmd.Interaction) (cmd.Response, error) {
		return cmd.Reply("confirmed by " + in.Data.(*Payload).UserID()).AsUpdate(), nil
	}))
	obs := &resultRecorder{}
	return &Bot{
		cfg: &config.Config{
			CommandPrefix:     "!",
			InitSlashCommands: true,
			GuildBlacklist:    []string{"bad"},
			RegisterRate:      1000,
		},
		observer: obs,
		ctx:      context.Background(),
		engine:   cmd.NewEngine(cmd.NewDispatcher(testTree(t)), router),
		jobs:     jobmgr.NewManager(context.Background(), nil),
	}, obs
}

func TestBot_HandleInteraction_Command(t *testing.T) {
	b, obs := newTestBot(t)
	s := newFakeSession()

	b.handleInteraction(context.Background(), s, slashAdd("42", &discordgo.ApplicationCommandInteractionDataResolved{
		Users: map[string]*discordgo.User{"42": {ID: "42"}},
	}))

	resp := s.lastResponse()
	require.NotNil(t, resp)
	assert.Equal(t, "<user:42> ping allow", resp.Data.Embeds[0].Description)
	require.Len(t, obs.results, 1)
	assert.Equal(t, "slash.permissions.add", obs.results[0].Target)
}

func TestBot_HandleInteraction_DecodeError(t *testing.T) {
	b, _ := newTestBot(t)
	s := newFakeSession()

	b.handleInteraction(context.Background(), s, slashAdd("42", nil))

	resp := s.lastResponse()
	require.NotNil(t, resp)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
	assert.Equal(t, ErrorColor, resp.Data.Embeds[0].Color)
	assert.Contains(t, resp.Data.Embeds[0].Description, "who")
}

func TestBot_HandleInteraction_Component(t *testing.T) {
	b, _ := newTestBot(t)
	s := newFakeSession()
	press := func(id string) {
		b.handleInteraction(context.Background(), s, &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			Type:   discordgo.InteractionMessageComponent,
			Member: member("u9", "zed"),
			Data:   discordgo.MessageComponentInteractionData{CustomID: id, ComponentType: discordgo.ButtonComponent},
		}})
	}

	press("confirm_42")
	resp := s.lastResponse()
	assert.Equal(t, discordgo.InteractionResponseUpdateMessage, resp.Type)
	assert.Equal(t, "confirmed by u9", resp.Data.Embeds[0].Description)

	press("confirm_4")
	resp = s.lastResponse()
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, resp.Type)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
}

func TestBot_HandleInteraction_Autocomplete(t *testing.T) {
	b, _ := newTestBot(t)
	s := newFakeSession()

	i := slashAdd("", nil)
	i.Type = discordgo.InteractionApplicationCommandAutocomplete
	leaves := i.ApplicationCommandData().Options[0].Options[0].Options
	leaves[1].Value = "sl"
	leaves[1].Focused = true

	b.handleInteraction(context.Background(), s, i)
	resp := s.lastResponse()
	require.NotNil(t, resp)
	assert.Equal(t, discordgo.InteractionApplicationCommandAutocompleteResult, resp.Type)
	require.Len(t, resp.Data.Choices, 1)
	assert.Equal(t, "slash", resp.Data.Choices[0].Name)
}

func TestBot_HandleMessage(t *testing.T) {
	b, obs := newTestBot(t)
	s := newFakeSession()
	send := func(content string, isBot bool) {
		b.handleMessage(context.Background(), s, &discordgo.MessageCreate{Message: &discordgo.Message{
			ChannelID: "c1",
			GuildID:   "g1",
			Content:   content,
			Author:    &discordgo.User{ID: "u1", Bot: isBot},
		}})
	}

	send("!echo hello times=2", false)
	require.Len(t, s.messages, 1)
	assert.Equal(t, "hello hello", s.messages[0].Embeds[0].Description)

	send("!echo hello", true)
	send("hello there", false)
	send("!nope", false)
	assert.Len(t, s.messages, 1)
	assert.Len(t, obs.results, 1, "ignored text never reaches the engine")
}

func TestBot_SetupGuild(t *testing.T) {
	b, _ := newTestBot(t)
	s := newFakeSession()
	defs, err := Definitions(b.engine.Tree())
	require.NoError(t, err)
	b.syncer = NewSyncer(s, "app", defs, newStore(t), b.cfg.RegisterRate, nil)

	b.setupGuild(s, "bad")
	assert.Equal(t, []string{"bad"}, s.left)
	assert.Empty(t, s.created)

	b.setupGuild(s, "g1")
	b.jobs.Wait()
	assert.Len(t, s.created, 3)
	assert.Empty(t, b.jobs.List())

	b.cfg.InitSlashCommands = false
	b.setupGuild(s, "g2")
	b.jobs.Wait()
	assert.Len(t, s.created, 3)

	b.cfg.ClearSlashCommands = true
	b.setupGuild(s, "g1")
	b.jobs.Wait()
	assert.Empty(t, s.commands)
	assert.Len(t, s.deleted, 3)
}

func TestBot_SetupGuild_OneSyncPerGuild(t *testing.T) {
	b, _ := newTestBot(t)
	s := newFakeSession()
	defs, err := Definitions(b.engine.Tree())
	require.NoError(t, err)
	b.syncer = NewSyncer(s, "app", defs, newStore(t), b.cfg.RegisterRate, nil)

	release := make(chan struct{})
	require.NoError(t, b.jobs.Start("sync:g1", func(context.Context) error {
		<-release
		return nil
	}))
	b.setupGuild(s, "g1")
	close(release)
	b.jobs.Wait()
	assert.Empty(t, s.created, "second sync of a busy guild is dropped")
}
