package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/joebot/discordbridge/internal/bridge"
	"github.com/joebot/discordbridge/internal/bus"
	"github.com/joebot/discordbridge/internal/config"
)

// Discord connects the bridge to a Discord bot account.
type Discord struct {
	config   config.DiscordConfig
	inbound  Publisher
	identity IdentitySink

	mu      sync.Mutex
	session *discordgo.Session
	cancel  context.CancelFunc
}

// NewDiscord creates a new Discord channel. identity may be nil.
func NewDiscord(cfg config.DiscordConfig, inbound Publisher, identity IdentitySink) *Discord {
	return &Discord{
		config:   cfg,
		inbound:  inbound,
		identity: identity,
	}
}

func (d *Discord) Name() string      { return "discord" }
func (d *Discord) Side() bridge.Side { return bridge.SideDiscord }

// Start opens the gateway session and blocks until ctx is done. discordgo
// reconnects on its own after gateway errors.
func (d *Discord) Start(ctx context.Context) error {
	if d.config.Token == "" {
		return fmt.Errorf("discord bot token not configured")
	}

	s, err := discordgo.New("Bot " + d.config.Token)
	if err != nil {
		return fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.Intent(d.config.Intents)

	ctx, cancel := context.WithCancel(ctx)
	s.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		d.onReady(r)
	})
	s.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		d.onMessageCreate(ctx, m)
	})

	slog.Info("Connecting to Discord gateway...")
	if err := s.Open(); err != nil {
		cancel()
		return fmt.Errorf("open discord session: %w", err)
	}

	d.mu.Lock()
	d.session = s
	d.cancel = cancel
	d.mu.Unlock()

	<-ctx.Done()
	return ctx.Err()
}

// Stop closes the gateway session.
func (d *Discord) Stop() error {
	d.mu.Lock()
	s, cancel := d.session, d.cancel
	d.session, d.cancel = nil, nil
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if s == nil {
		return nil
	}
	return s.Close()
}

// Send posts msg to a channel. When Discord does not know the channel, the
// identifier is taken to be a user and the message goes out as a DM.
func (d *Discord) Send(ctx context.Context, msg *bus.OutboundMessage) error {
	d.mu.Lock()
	s := d.session
	d.mu.Unlock()
	if s == nil {
		return fmt.Errorf("discord session not connected")
	}

	data := messageSend(msg)
	_, err := s.ChannelMessageSendComplex(msg.ChatID, data, discordgo.WithContext(ctx))
	if isUnknownChannel(err) {
		slog.Debug("Unknown Discord channel, trying a DM", "side", bridge.SideDiscord, "user", msg.ChatID)
		var dm *discordgo.Channel
		dm, err = s.UserChannelCreate(msg.ChatID, discordgo.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("open dm with %s: %w", msg.ChatID, err)
		}
		_, err = s.ChannelMessageSendComplex(dm.ID, data, discordgo.WithContext(ctx))
	}
	if err != nil {
		return fmt.Errorf("send discord message to %s: %w", msg.ChatID, err)
	}
	return nil
}

func (d *Discord) onReady(r *discordgo.Ready) {
	if r.User == nil {
		return
	}
	slog.Info("Discord gateway READY", "side", bridge.SideDiscord, "user", r.User.Username, "id", r.User.ID)
	if d.identity != nil {
		d.identity.SetSelf(bridge.SideDiscord, r.User.ID)
	}
}

func (d *Discord) onMessageCreate(ctx context.Context, m *discordgo.MessageCreate) {
	msg, ok := inboundFromDiscord(m.Message)
	if !ok {
		return
	}
	slog.Debug("Discord message", "side", bridge.SideDiscord, "chat", msg.ChatID, "from", msg.SenderName, "body", msg.Body)
	if err := d.inbound.PublishInbound(ctx, msg); err != nil {
		slog.Warn("Dropping Discord message", "side", bridge.SideDiscord, "chat", msg.ChatID, "err", err)
	}
}

// inboundFromDiscord converts a gateway message. Messages without an author
// (system notices) are skipped.
func inboundFromDiscord(m *discordgo.Message) (bridge.InboundMessage, bool) {
	if m == nil || m.Author == nil {
		return bridge.InboundMessage{}, false
	}
	return bridge.InboundMessage{
		Side:       bridge.SideDiscord,
		ChatID:     m.ChannelID,
		SenderID:   m.Author.ID,
		SenderName: m.Author.Username,
		Body:       m.Content,
		Direct:     m.GuildID == "",
		FromBot:    m.Author.Bot,
	}, true
}

func messageSend(msg *bus.OutboundMessage) *discordgo.MessageSend {
	data := &discordgo.MessageSend{
		Content: msg.Content,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
		},
	}
	// Link and image previews both arrive as embeds.
	if !msg.AllowLinks || !msg.AllowImages {
		data.Flags = discordgo.MessageFlagsSuppressEmbeds
	}
	return data
}

func isUnknownChannel(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Message == nil {
		return false
	}
	return restErr.Message.Code == discordgo.ErrCodeUnknownChannel
}
