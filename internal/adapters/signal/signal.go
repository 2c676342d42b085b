package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/dkeye/Relay/internal/app/orch"
	"github.com/dkeye/Relay/internal/config"
	"github.com/dkeye/Relay/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

type SignalWSController struct {
	Orch *orch.Orchestrator
	Hub  *Hub
	Cfg  *config.Config

	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, hub *Hub, cfg *config.Config) *SignalWSController {
	ctl := &SignalWSController{Orch: o, Hub: hub, Cfg: cfg}
	ctl.upgrader = websocket.Upgrader{CheckOrigin: ctl.checkOrigin}
	return ctl
}

// checkOrigin allows everything when no origins are configured. Requests
// without an Origin header are not from a browser and pass.
func (ctl *SignalWSController) checkOrigin(r *http.Request) bool {
	if len(ctl.Cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range ctl.Cfg.AllowedOrigins {
		if allowed == origin {
			return true
		}
	}
	log.Warn().Str("module", "signal").Str("origin", origin).Msg("origin rejected")
	return false
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func NewWsSignalConn(ws *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{conn: ws, send: make(chan core.Frame, buffer)}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// HandleSignal upgrades the request and runs the connection until either
// side goes away. hs carries whatever identity claims the HTTP layer found.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context, hs orch.Handshake) {
	id := core.ConnID(uuid.NewString())

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(id)).Str("user", hs.UserID).Msg("new WS connection")

	conn := NewWsSignalConn(ws, ctl.Cfg.SendBuffer)
	ctl.Hub.Register(id, conn)
	ctl.Orch.Connect(id, hs)

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, id, conn)
	go ctl.readPump(ctx, cancel, id, conn)
}
