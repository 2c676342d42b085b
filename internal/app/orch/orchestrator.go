// Package orch routes inbound connection events to presence, channel
// membership, chat fan-out and call-signaling relay.
package orch

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

type State int

const (
	StateConnected State = iota
	StateIdentified
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateIdentified:
		return "identified"
	case StateDisconnected:
		return "disconnected"
	}
	return "unknown"
}

// Handshake is the auxiliary data a transport attaches at connect time.
// All fields are optional and unverified.
type Handshake struct {
	UserID string
	Name   string
	Image  string
}

type InboundEvent struct {
	Conn core.ConnID
	Name string
	Data json.RawMessage
}

// session is per connection, not per user: a user may briefly own
// several connections while stale ones wind down.
type session struct {
	state State
	user  domain.UserID
	name  string
	image string
}

// identity falls back to the connection id for anonymous connections.
func (s *session) identity(conn core.ConnID) domain.UserID {
	if s.user != "" {
		return s.user
	}
	return domain.UserID(conn)
}

func (s *session) profile(conn core.ConnID) domain.Profile {
	return domain.NewProfile(s.identity(conn), s.name, s.image)
}

// Orchestrator is the event router. Handler invocations are serialised by mu,
// so a handler's reads and writes of Presence and Channels are atomic with
// respect to every other event.
type Orchestrator struct {
	Presence  core.PresenceStore
	Channels  core.MembershipStore
	Transport core.Transport
	Policy    app.Policy
	Now       func() time.Time

	mu       sync.Mutex
	sessions map[core.ConnID]*session
}

func New(presence core.PresenceStore, channels core.MembershipStore, transport core.Transport, policy app.Policy) *Orchestrator {
	return &Orchestrator{
		Presence:  presence,
		Channels:  channels,
		Transport: transport,
		Policy:    policy,
		Now:       time.Now,
		sessions:  make(map[core.ConnID]*session),
	}
}

// Connect registers a new connection. A handshake user id makes it Identified.
func (o *Orchestrator) Connect(conn core.ConnID, hs Handshake) Result {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.sessions[conn]; exists {
		return o.logged(conn, invalid(EventConnect, ErrDuplicateConn))
	}
	sess := &session{state: StateConnected, name: domain.ClampName(hs.Name), image: hs.Image}
	o.sessions[conn] = sess

	if hs.UserID != "" {
		user, err := domain.ValidateUserID(hs.UserID)
		if err != nil {
			log.Warn().Err(err).Str("module", "app.orch").Str("conn", string(conn)).Msg("ignoring handshake identity")
		} else {
			o.identify(conn, sess, user)
		}
	}
	log.Info().Str("module", "app.orch").Str("conn", string(conn)).Str("user", string(sess.user)).Str("state", sess.state.String()).Msg("connected")
	return ok(EventConnect, 0)
}

// Disconnect is terminal for conn. It tolerates connections that never
// identified and connections it has never seen.
func (o *Orchestrator) Disconnect(conn core.ConnID) Result {
	o.mu.Lock()
	defer o.mu.Unlock()

	sess, found := o.sessions[conn]
	if !found {
		return o.logged(conn, dropped(EventDisconnect, ErrUnknownConn))
	}
	cleared := false
	if sess.user != "" {
		cleared = o.Presence.ClearIfCurrent(sess.user, conn)
	}
	left := o.Channels.LeaveAll(conn)
	sess.state = StateDisconnected
	delete(o.sessions, conn)

	log.Info().
		Str("module", "app.orch").
		Str("conn", string(conn)).
		Str("user", string(sess.user)).
		Bool("presence_cleared", cleared).
		Int("channels_left", len(left)).
		Msg("disconnected")
	return ok(EventDisconnect, 0)
}

// Handle processes one inbound event to completion. Failures never reach
// the sender; they come back as a Result for logging and tests.
func (o *Orchestrator) Handle(ev InboundEvent) (res Result) {
	o.mu.Lock()
	defer o.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			res = invalid(ev.Name, fmt.Errorf("%w: handler panic: %v", ErrMalformedPayload, r))
		}
		o.logged(ev.Conn, res)
	}()

	sess, found := o.sessions[ev.Conn]
	if !found || sess.state == StateDisconnected {
		return dropped(ev.Name, ErrUnknownConn)
	}

	switch ev.Name {
	case EventAuthenticate:
		return o.handleAuthenticate(ev.Conn, sess, ev.Data)
	case EventJoinChannel:
		return o.handleJoin(ev.Conn, ev.Data)
	case EventLeaveChannel:
		return o.handleLeave(ev.Conn, ev.Data)
	case EventSendMessage:
		return o.handleSendMessage(ev.Conn, sess, ev.Data)
	case EventTyping, EventStopTyping:
		return o.handleTyping(ev.Name, ev.Conn, sess, ev.Data)
	case EventCallUser:
		return o.handleCallUser(ev.Conn, sess, ev.Data)
	case EventAnswerCall:
		return o.handleAnswerCall(ev.Conn, sess, ev.Data)
	case EventRejectCall:
		return o.handleRejectCall(ev.Conn, sess, ev.Data)
	case EventEndCall:
		return o.handleEndCall(ev.Conn, sess, ev.Data)
	case EventSendIceCandidate:
		return o.handleIceCandidate(ev.Conn, sess, ev.Data)
	default:
		return invalid(ev.Name, ErrUnknownEvent)
	}
}

// StateOf reports the lifecycle state of conn; unknown connections are Disconnected.
func (o *Orchestrator) StateOf(conn core.ConnID) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	if sess, ok := o.sessions[conn]; ok {
		return sess.state
	}
	return StateDisconnected
}

type Stats struct {
	Connections int                `json:"connections"`
	Identified  int                `json:"identified"`
	OnlineUsers int                `json:"online_users"`
	Channels    []core.ChannelInfo `json:"channels"`
}

func (o *Orchestrator) Stats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	st := Stats{Connections: len(o.sessions)}
	for _, sess := range o.sessions {
		if sess.state == StateIdentified {
			st.Identified++
		}
	}
	st.OnlineUsers = o.Presence.Count()
	st.Channels = o.Channels.List()
	return st
}

func (o *Orchestrator) identify(conn core.ConnID, sess *session, user domain.UserID) {
	if sess.user != "" && sess.user != user {
		o.Presence.ClearIfCurrent(sess.user, conn)
	}
	o.Presence.SetPresence(user, conn)
	sess.user = user
	sess.state = StateIdentified
}

// onDropped applies the backpressure policy to connections that could not
// accept a frame.
func (o *Orchestrator) onDropped(event string, conns []core.ConnID) {
	if o.Policy == nil {
		return
	}
	for _, conn := range conns {
		switch o.Policy.OnBackPressure(conn, event) {
		case app.KickConnection:
			log.Warn().Str("module", "app.orch").Str("conn", string(conn)).Str("event", event).Msg("kicking slow connection")
			o.Transport.Close(conn)
		case app.DropFrame, app.NoAction:
		}
	}
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty payload", ErrMalformedPayload)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}
