package discord

import "github.com/bwmarrin/discordgo"

// Payload is the Data attached to every event the bot hands the engine.
// It carries the raw discordgo event for handlers that need more than the
// decoded arguments.
type Payload struct {
	Session     Session
	Interaction *discordgo.InteractionCreate
	Message     *discordgo.MessageCreate
}

func (p *Payload) GuildID() string {
	switch {
	case p.Interaction != nil:
		return p.Interaction.GuildID
	case p.Message != nil:
		return p.Message.GuildID
	}
	return ""
}

func (p *Payload) ChannelID() string {
	switch {
	case p.Interaction != nil:
		return p.Interaction.ChannelID
	case p.Message != nil:
		return p.Message.ChannelID
	}
	return ""
}

func (p *Payload) user() *discordgo.User {
	switch {
	case p.Interaction != nil && p.Interaction.Member != nil && p.Interaction.Member.User != nil:
		return p.Interaction.Member.User
	case p.Interaction != nil && p.Interaction.User != nil:
		return p.Interaction.User
	case p.Message != nil && p.Message.Author != nil:
		return p.Message.Author
	}
	return nil
}

func (p *Payload) UserID() string {
	if u := p.user(); u != nil {
		return u.ID
	}
	return ""
}

func (p *Payload) Username() string {
	if u := p.user(); u != nil {
		return u.Username
	}
	return "Unknown"
}
