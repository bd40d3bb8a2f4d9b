package discord

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/bwmarrin/discordgo"
)

type fakeSession struct {
	mu sync.Mutex

	commands map[string]*discordgo.ApplicationCommand // by name
	nextID   int
	created  []string
	deleted  []string
	failOn   map[string]bool
	failErr  error

	perms    map[string][]*discordgo.ApplicationCommandPermissions // by command id
	permsErr error

	responses []*discordgo.InteractionResponse
	messages  []*discordgo.MessageSend
	left      []string
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		commands: map[string]*discordgo.ApplicationCommand{},
		failOn:   map[string]bool{},
		perms:    map[string][]*discordgo.ApplicationCommandPermissions{},
	}
}

func (f *fakeSession) ApplicationCommands(_, _ string, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*discordgo.ApplicationCommand, 0, len(f.commands))
	for _, c := range f.commands {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeSession) ApplicationCommandCreate(_, _ string, c *discordgo.ApplicationCommand, _ ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[c.Name] {
		if f.failErr != nil {
			return nil, f.failErr
		}
		return nil, fmt.Errorf("create %s refused", c.Name)
	}
	f.nextID++
	created := *c
	created.ID = fmt.Sprintf("id%d", f.nextID)
	f.commands[c.Name] = &created
	f.created = append(f.created, c.Name)
	return &created, nil
}

func (f *fakeSession) ApplicationCommandDelete(_, _, cmdID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for name, c := range f.commands {
		if c.ID == cmdID {
			delete(f.commands, name)
			f.deleted = append(f.deleted, name)
			return nil
		}
	}
	return fmt.Errorf("unknown command %s", cmdID)
}

func (f *fakeSession) ApplicationCommandPermissions(_, guildID, cmdID string, _ ...discordgo.RequestOption) (*discordgo.GuildApplicationCommandPermissions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	perms, ok := f.perms[cmdID]
	if !ok {
		if f.permsErr != nil {
			return nil, f.permsErr
		}
		return nil, &discordgo.RESTError{
			Response:     &http.Response{StatusCode: http.StatusNotFound, Status: "404 Not Found"},
			ResponseBody: []byte(`{"message": "Unknown application command permissions", "code": 10066}`),
		}
	}
	return &discordgo.GuildApplicationCommandPermissions{ID: cmdID, GuildID: guildID, Permissions: perms}, nil
}

func (f *fakeSession) GuildApplicationCommandsPermissions(_, guildID string, _ ...discordgo.RequestOption) ([]*discordgo.GuildApplicationCommandPermissions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*discordgo.GuildApplicationCommandPermissions
	for id, perms := range f.perms {
		out = append(out, &discordgo.GuildApplicationCommandPermissions{ID: id, GuildID: guildID, Permissions: perms})
	}
	return out, nil
}

func (f *fakeSession) ApplicationCommandPermissionsEdit(_, _, cmdID string, list *discordgo.ApplicationCommandPermissionsList, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.perms[cmdID] = list.Permissions
	return nil
}

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, data)
	return &discordgo.Message{ChannelID: channelID}, nil
}

func (f *fakeSession) GuildLeave(guildID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.left = append(f.left, guildID)
	return nil
}

func (f *fakeSession) lastResponse() *discordgo.InteractionResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.responses) == 0 {
		return nil
	}
	return f.responses[len(f.responses)-1]
}
