package signal

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dkeye/Relay/internal/core"
	"github.com/rs/zerolog/log"
)

// Envelope is the wire frame in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Hub maps connection ids to live sockets. It is the core.Transport the
// orchestrator delivers through.
type Hub struct {
	mu    sync.RWMutex
	conns map[core.ConnID]core.SignalConnection
}

var _ core.Transport = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{conns: make(map[core.ConnID]core.SignalConnection)}
}

func (h *Hub) Register(id core.ConnID, c core.SignalConnection) {
	h.mu.Lock()
	h.conns[id] = c
	h.mu.Unlock()
}

// Unregister removes id only while it still maps to c.
func (h *Hub) Unregister(id core.ConnID, c core.SignalConnection) {
	h.mu.Lock()
	if h.conns[id] == c {
		delete(h.conns, id)
	}
	h.mu.Unlock()
}

func (h *Hub) Send(id core.ConnID, event string, payload any) error {
	h.mu.RLock()
	c, ok := h.conns[id]
	h.mu.RUnlock()
	if !ok {
		return ErrConnClosed
	}
	frame, err := encode(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("event", event).Msg("encode frame")
		return err
	}
	if err := c.TrySend(frame); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("conn", string(id)).Str("event", event).Msg("frame not queued")
		return err
	}
	return nil
}

func (h *Hub) Close(id core.ConnID) {
	h.mu.RLock()
	c, ok := h.conns[id]
	h.mu.RUnlock()
	if ok {
		c.Close()
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func encode(event string, payload any) (core.Frame, error) {
	b, err := json.Marshal(outEnvelope{Event: event, Data: payload})
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", event, err)
	}
	return b, nil
}
