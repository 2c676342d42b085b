package app

import (
	"sync"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

type connSet map[core.ConnID]struct{}

// Channels is a threadsafe in-memory MembershipStore.
// A channel exists only while it has members.
type Channels struct {
	transport core.Transport

	mu     sync.RWMutex
	byChan map[domain.ChannelID]connSet
	byConn map[core.ConnID]map[domain.ChannelID]struct{}
}

func NewChannels(t core.Transport) *Channels {
	return &Channels{
		transport: t,
		byChan:    make(map[domain.ChannelID]connSet),
		byConn:    make(map[core.ConnID]map[domain.ChannelID]struct{}),
	}
}

// Join reports whether conn was newly added.
func (c *Channels) Join(channel domain.ChannelID, conn core.ConnID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	members, ok := c.byChan[channel]
	if !ok {
		members = make(connSet)
		c.byChan[channel] = members
	}
	if _, already := members[conn]; already {
		return false
	}
	members[conn] = struct{}{}

	joined, ok := c.byConn[conn]
	if !ok {
		joined = make(map[domain.ChannelID]struct{})
		c.byConn[conn] = joined
	}
	joined[channel] = struct{}{}
	log.Debug().Str("module", "app.channels").Str("channel", string(channel)).Str("conn", string(conn)).Int("members", len(members)).Msg("joined")
	return true
}

// Leave reports whether conn was a member.
func (c *Channels) Leave(channel domain.ChannelID, conn core.ConnID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	ok := c.removeLocked(channel, conn)
	if ok {
		log.Debug().Str("module", "app.channels").Str("channel", string(channel)).Str("conn", string(conn)).Msg("left")
	}
	return ok
}

func (c *Channels) LeaveAll(conn core.ConnID) []domain.ChannelID {
	c.mu.Lock()
	defer c.mu.Unlock()
	joined := c.byConn[conn]
	out := make([]domain.ChannelID, 0, len(joined))
	for channel := range joined {
		out = append(out, channel)
	}
	for _, channel := range out {
		c.removeLocked(channel, conn)
	}
	return out
}

// removeLocked drops conn from channel and forgets empty entries on both indexes.
func (c *Channels) removeLocked(channel domain.ChannelID, conn core.ConnID) bool {
	members, ok := c.byChan[channel]
	if !ok {
		return false
	}
	if _, ok := members[conn]; !ok {
		return false
	}
	delete(members, conn)
	if len(members) == 0 {
		delete(c.byChan, channel)
	}
	if joined, ok := c.byConn[conn]; ok {
		delete(joined, channel)
		if len(joined) == 0 {
			delete(c.byConn, conn)
		}
	}
	return true
}

func (c *Channels) IsMember(channel domain.ChannelID, conn core.ConnID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.byChan[channel][conn]
	return ok
}

func (c *Channels) Members(channel domain.ChannelID) []core.ConnID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	members := c.byChan[channel]
	out := make([]core.ConnID, 0, len(members))
	for conn := range members {
		out = append(out, conn)
	}
	return out
}

// Broadcast sends to every member except exclude. Delivery order is unspecified.
// The member set is copied first so the transport is never called under the lock.
func (c *Channels) Broadcast(channel domain.ChannelID, exclude core.ConnID, event string, payload any) core.PublishResult {
	res := core.PublishResult{}
	for _, conn := range c.Members(channel) {
		if conn == exclude {
			continue
		}
		if err := c.transport.Send(conn, event, payload); err != nil {
			res.Dropped = append(res.Dropped, conn)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "app.channels").Str("channel", string(channel)).Str("event", event).Str("from", string(exclude)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (c *Channels) List() []core.ChannelInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]core.ChannelInfo, 0, len(c.byChan))
	for id, members := range c.byChan {
		out = append(out, core.ChannelInfo{ID: id, MemberCount: len(members)})
	}
	return out
}

func (c *Channels) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byChan)
}
