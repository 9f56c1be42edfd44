// Package discord connects the bridge to the Discord gateway.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/tawada/discord-AI-bot/bridge"
	"github.com/tawada/discord-AI-bot/emit"
)

// Gateway owns the Discord session and forwards allowed messages to the
// bridge. One handler goroutine per message is discordgo's model; the
// bridge and everything below it are concurrency safe.
type Gateway struct {
	session  *discordgo.Session
	bridge   *bridge.Bridge
	emitter  emit.Emitter
	channels map[string]bool
}

// New creates a Gateway for the given bot token. channelIDs is the
// allow-list; messages in any other channel are ignored.
func New(token string, channelIDs []string, b *bridge.Bridge, emitter emit.Emitter) (*Gateway, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	if emitter == nil {
		emitter = emit.NewNullEmitter()
	}

	channels := make(map[string]bool, len(channelIDs))
	for _, id := range channelIDs {
		channels[id] = true
	}

	g := &Gateway{
		session:  session,
		bridge:   b,
		emitter:  emitter,
		channels: channels,
	}
	session.AddHandler(g.onMessage)
	return g, nil
}

// Start opens the gateway connection. An authentication failure here is
// fatal; the caller should exit.
func (g *Gateway) Start() error {
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	g.emitter.Emit(emit.Event{Msg: "gateway_connected"})
	return nil
}

// Stop closes the gateway connection.
func (g *Gateway) Stop() error {
	return g.session.Close()
}

func (g *Gateway) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if !g.shouldHandle(s.State.User.ID, m) {
		return
	}

	// Show the typing indicator while the pipeline runs. Best effort.
	_ = s.ChannelTyping(m.ChannelID)

	reply, ok := g.bridge.Reply(context.Background(), toIncoming(m))
	if !ok {
		return
	}

	for _, chunk := range bridge.Split(reply, bridge.SendLimit) {
		if _, err := s.ChannelMessageSend(m.ChannelID, chunk); err != nil {
			g.emitter.Emit(emit.Event{
				Msg:     "send_failed",
				Channel: m.ChannelID,
				Err:     err.Error(),
			})
			return
		}
	}
}

// shouldHandle filters out the bot's own messages, other bots, and
// channels outside the allow-list.
func (g *Gateway) shouldHandle(selfID string, m *discordgo.MessageCreate) bool {
	if m.Author == nil || m.Author.ID == selfID || m.Author.Bot {
		return false
	}
	return g.channels[m.ChannelID]
}

func toIncoming(m *discordgo.MessageCreate) bridge.Incoming {
	attachments := make([]bridge.Attachment, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		attachments = append(attachments, bridge.Attachment{
			Filename:    a.Filename,
			URL:         a.URL,
			ContentType: a.ContentType,
		})
	}
	return bridge.Incoming{
		ChannelID:   m.ChannelID,
		Author:      m.Author.Username,
		Content:     m.Content,
		Attachments: attachments,
	}
}
