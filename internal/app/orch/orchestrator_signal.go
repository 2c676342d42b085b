package orch

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
)

// The relay keeps no call state. Every message resolves its target through
// Presence at delivery time, so a peer that reconnected receives the rest
// of the handshake on its new connection.

func (o *Orchestrator) handleCallUser(conn core.ConnID, sess *session, data json.RawMessage) Result {
	var p callUserPayload
	if err := decode(data, &p); err != nil {
		return invalid(EventCallUser, err)
	}
	return o.relay(EventCallUser, p.To, EventCallOffer, func(to domain.UserID) any {
		return CallOffer{
			From:      sess.identity(conn),
			To:        to,
			ChannelID: domain.ChannelID(p.ChannelID),
			Signal:    p.Signal,
			CallType:  p.CallType,
			Caller:    sess.profile(conn),
		}
	})
}

func (o *Orchestrator) handleAnswerCall(conn core.ConnID, sess *session, data json.RawMessage) Result {
	var p answerCallPayload
	if err := decode(data, &p); err != nil {
		return invalid(EventAnswerCall, err)
	}
	return o.relay(EventAnswerCall, p.To, EventCallAnswer, func(to domain.UserID) any {
		return CallAnswer{From: sess.identity(conn), To: to, Signal: p.Signal}
	})
}

func (o *Orchestrator) handleRejectCall(conn core.ConnID, sess *session, data json.RawMessage) Result {
	var p reasonPayload
	if err := decode(data, &p); err != nil {
		return invalid(EventRejectCall, err)
	}
	return o.relay(EventRejectCall, p.To, EventCallRejected, func(to domain.UserID) any {
		return CallClosed{From: sess.identity(conn), To: to, Reason: p.Reason}
	})
}

func (o *Orchestrator) handleEndCall(conn core.ConnID, sess *session, data json.RawMessage) Result {
	var p reasonPayload
	if err := decode(data, &p); err != nil {
		return invalid(EventEndCall, err)
	}
	return o.relay(EventEndCall, p.To, EventCallEnded, func(to domain.UserID) any {
		return CallClosed{From: sess.identity(conn), To: to, Reason: p.Reason}
	})
}

func (o *Orchestrator) handleIceCandidate(conn core.ConnID, sess *session, data json.RawMessage) Result {
	var p candidatePayload
	if err := decode(data, &p); err != nil {
		return invalid(EventSendIceCandidate, err)
	}
	return o.relay(EventSendIceCandidate, p.To, EventIceCandidate, func(to domain.UserID) any {
		return IceCandidate{From: sess.identity(conn), To: to, Candidate: p.Candidate}
	})
}

// relay forwards one envelope to the current connection of rawTo.
// An absent target is a normal drop, not an error.
func (o *Orchestrator) relay(event, rawTo, outEvent string, build func(to domain.UserID) any) Result {
	to, err := domain.ValidateUserID(rawTo)
	if err != nil {
		return invalid(event, fmt.Errorf("%w: to: %v", ErrMalformedPayload, err))
	}
	target, found := o.Presence.Lookup(to)
	if !found {
		return dropped(event, fmt.Errorf("%w: %s", ErrTargetOffline, to))
	}
	if err := o.Transport.Send(target, outEvent, build(to)); err != nil {
		o.onDropped(outEvent, []core.ConnID{target})
		return dropped(event, fmt.Errorf("%w: %v", ErrUndeliverable, err))
	}
	return ok(event, 1)
}
