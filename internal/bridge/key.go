package bridge

// Side names the transport a message endpoint belongs to.
type Side string

const (
	SideErr     Side = "err"
	SideDiscord Side = "discord"
)

// Sides lists every known side in a stable order.
var Sides = []Side{SideErr, SideDiscord}

// Valid reports whether s is a known side.
func (s Side) Valid() bool {
	return s == SideErr || s == SideDiscord
}

func (s Side) String() string { return string(s) }

// RoutingKey is the lookup key of the destination table.
type RoutingKey string

// Key builds the routing key for an identifier on a side. Declared rules and
// inbound messages must both go through Key or lookups silently miss.
func Key(side Side, identifier string) RoutingKey {
	return RoutingKey(string(side) + "-" + identifier)
}
