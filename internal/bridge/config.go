package bridge

import "sync"

// ReplyMode selects how a reply bridge answers.
type ReplyMode string

const (
	ReplyThread ReplyMode = "thread"
	ReplyDirect ReplyMode = "direct"
)

// Endpoint is one side of a bridge rule.
type Endpoint struct {
	Side       Side
	Identifier string
}

// Key returns the endpoint's routing key.
func (e Endpoint) Key() RoutingKey { return Key(e.Side, e.Identifier) }

// DestinationOptions describes where and how a bridged message is delivered.
// The Allow* flags are passed through to the sender untouched.
type DestinationOptions struct {
	Side            Side
	Identifier      string
	AllowImages     bool
	AllowLinks      bool
	AllowThreads    bool
	MessageTemplate Template
}

// Endpoint returns the side and identifier of the destination.
func (d DestinationOptions) Endpoint() Endpoint {
	return Endpoint{Side: d.Side, Identifier: d.Identifier}
}

// Key returns the destination's routing key.
func (d DestinationOptions) Key() RoutingKey { return Key(d.Side, d.Identifier) }

// OneWayRule forwards messages from Source to Destination only.
type OneWayRule struct {
	Source      Endpoint
	Destination DestinationOptions
}

// TwoWayRule forwards in both directions.
type TwoWayRule struct {
	Source      Endpoint
	Destination DestinationOptions
}

// ReplyRule is routed like a TwoWayRule but tagged with a reply mode.
type ReplyRule struct {
	Source      Endpoint
	Destination DestinationOptions
	Mode        ReplyMode
}

// GeneralConfig holds bridge-wide switches.
type GeneralConfig struct {
	IgnoreMessagesFromSelf bool
	IgnoreAllBots          bool
}

// DefaultGeneralConfig returns the switches used when the document has no Config section.
func DefaultGeneralConfig() GeneralConfig {
	return GeneralConfig{IgnoreMessagesFromSelf: true}
}

// Config is a validated bridge configuration. Build it with Parse, LoadBytes
// or LoadFile; a Config must not be copied after first use.
type Config struct {
	OneWay  []OneWayRule
	TwoWay  []TwoWayRule
	Reply   []ReplyRule
	General GeneralConfig

	once  sync.Once
	table *Table
}

// RuleCount returns the number of declared rules across all sections.
func (c *Config) RuleCount() int {
	return len(c.OneWay) + len(c.TwoWay) + len(c.Reply)
}

// Destinations returns the compiled destination table. It is computed once
// per Config and shared by all callers.
func (c *Config) Destinations() *Table {
	c.once.Do(func() {
		c.table = Compile(c)
	})
	return c.table
}
