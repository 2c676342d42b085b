package signal

import "github.com/dkeye/Relay/internal/core"

// Transport-level keepalive for clients that cannot see WebSocket pings.
const (
	EventPing = "ping"
	EventPong = "pong"
)

func (ctl *SignalWSController) handlePing(id core.ConnID) {
	_ = ctl.Hub.Send(id, EventPong, nil)
}
