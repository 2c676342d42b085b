package app

import (
	"sync"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// Presence is the in-memory PresenceStore.
type Presence struct {
	mu    sync.RWMutex
	users map[domain.UserID]core.ConnID
}

func NewPresence() *Presence {
	return &Presence{users: make(map[domain.UserID]core.ConnID)}
}

func (p *Presence) SetPresence(user domain.UserID, conn core.ConnID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev, had := p.users[user]
	p.users[user] = conn
	ev := log.Debug().Str("module", "app.presence").Str("user", string(user)).Str("conn", string(conn))
	if had && prev != conn {
		ev = ev.Str("replaced", string(prev))
	}
	ev.Msg("presence set")
}

func (p *Presence) Lookup(user domain.UserID) (core.ConnID, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	conn, ok := p.users[user]
	return conn, ok
}

func (p *Presence) ClearIfCurrent(user domain.UserID, conn core.ConnID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	cur, ok := p.users[user]
	if !ok || cur != conn {
		return false
	}
	delete(p.users, user)
	log.Debug().Str("module", "app.presence").Str("user", string(user)).Str("conn", string(conn)).Msg("presence cleared")
	return true
}

func (p *Presence) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.users)
}
