// Package connectors defines the platform adapter contract. Each adapter
// turns platform events into dialogue messages and delivers replies back.
package connectors

import (
	"context"

	"github.com/cubeworld/supportbot/internal/dialogue"
)

type Connector interface {
	Name() string
	Start(ctx context.Context) error
}

// Dialogue is the turn entrypoint connectors hand inbound messages to.
type Dialogue interface {
	HandleMessage(ctx context.Context, sender dialogue.Sender, msg dialogue.Message)
}
