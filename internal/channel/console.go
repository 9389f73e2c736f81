package channel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joebot/discordbridge/internal/bridge"
	"github.com/joebot/discordbridge/internal/bus"
	"github.com/joebot/discordbridge/internal/cli"
	"github.com/joebot/discordbridge/internal/config"
)

// Console is the err side of the bridge driven from a terminal UI. The
// operator posts as a person into a room, and bridged messages for the err
// side are printed into the transcript.
type Console struct {
	config  config.ErrConfig
	inbound Publisher

	mu      sync.Mutex
	program *tea.Program
}

// NewConsole creates the console channel.
func NewConsole(cfg config.ErrConfig, inbound Publisher) *Console {
	return &Console{config: cfg, inbound: inbound}
}

func (c *Console) Name() string      { return "console" }
func (c *Console) Side() bridge.Side { return bridge.SideErr }

// Start runs the terminal UI until the operator quits or ctx is done.
func (c *Console) Start(ctx context.Context) error {
	p := cli.NewConsoleProgram(ctx, cli.ConsoleConfig{
		Person:   c.config.Person,
		Room:     c.config.Room,
		Identity: c.config.Identity,
		Submit: func(ctx context.Context, post cli.ConsolePost) error {
			return c.inbound.PublishInbound(ctx, inboundFromConsole(post, c.config.Identity))
		},
	})

	c.mu.Lock()
	c.program = p
	c.mu.Unlock()

	_, err := p.Run()

	c.mu.Lock()
	c.program = nil
	c.mu.Unlock()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Stop quits the terminal UI.
func (c *Console) Stop() error {
	c.mu.Lock()
	p := c.program
	c.mu.Unlock()
	if p != nil {
		p.Quit()
	}
	return nil
}

// Send shows a bridged message in the transcript.
func (c *Console) Send(_ context.Context, msg *bus.OutboundMessage) error {
	c.mu.Lock()
	p := c.program
	c.mu.Unlock()
	if p == nil {
		return fmt.Errorf("console not running")
	}
	p.Send(cli.ConsoleDelivery{ChatID: msg.ChatID, Content: msg.Content})
	return nil
}

// inboundFromConsole mirrors how err addresses messages: a direct message is
// sent to the bridge itself, a room message to the room.
func inboundFromConsole(post cli.ConsolePost, identity string) bridge.InboundMessage {
	chat := post.Room
	if post.Direct {
		chat = identity
	}
	return bridge.InboundMessage{
		Side:       bridge.SideErr,
		ChatID:     chat,
		SenderID:   post.Person,
		SenderName: post.Person,
		Body:       post.Text,
		Direct:     post.Direct,
		FromBot:    post.Bot,
	}
}
