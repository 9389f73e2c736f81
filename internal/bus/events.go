package bus

import (
	"time"

	"github.com/joebot/discordbridge/internal/bridge"
)

// OutboundMessage is a rendered message waiting for delivery on one side.
type OutboundMessage struct {
	ID     string
	Queued time.Time
	bridge.Outbound
}
