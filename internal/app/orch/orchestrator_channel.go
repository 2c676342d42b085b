package orch

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
)

func (o *Orchestrator) handleAuthenticate(conn core.ConnID, sess *session, data json.RawMessage) Result {
	var p authenticatePayload
	if err := decode(data, &p); err != nil {
		return invalid(EventAuthenticate, err)
	}
	user, err := domain.ValidateUserID(p.UserID)
	if err != nil {
		return invalid(EventAuthenticate, fmt.Errorf("%w: %v", ErrMalformedPayload, err))
	}
	if p.Name != "" {
		sess.name = domain.ClampName(p.Name)
	}
	if p.Image != "" {
		sess.image = p.Image
	}
	o.identify(conn, sess, user)
	return ok(EventAuthenticate, 0)
}

func (o *Orchestrator) channelFrom(event string, data json.RawMessage) (domain.ChannelID, *Result) {
	var p channelPayload
	if err := decode(data, &p); err != nil {
		res := invalid(event, err)
		return "", &res
	}
	channel, err := domain.ValidateChannelID(p.ChannelID)
	if err != nil {
		res := invalid(event, fmt.Errorf("%w: %v", ErrMalformedPayload, err))
		return "", &res
	}
	return channel, nil
}

func (o *Orchestrator) handleJoin(conn core.ConnID, data json.RawMessage) Result {
	channel, bad := o.channelFrom(EventJoinChannel, data)
	if bad != nil {
		return *bad
	}
	o.Channels.Join(channel, conn)
	return ok(EventJoinChannel, 0)
}

func (o *Orchestrator) handleLeave(conn core.ConnID, data json.RawMessage) Result {
	channel, bad := o.channelFrom(EventLeaveChannel, data)
	if bad != nil {
		return *bad
	}
	o.Channels.Leave(channel, conn)
	return ok(EventLeaveChannel, 0)
}

func (o *Orchestrator) handleSendMessage(conn core.ConnID, sess *session, data json.RawMessage) Result {
	var p sendMessagePayload
	if err := decode(data, &p); err != nil {
		return invalid(EventSendMessage, err)
	}
	if p.Content == nil {
		return invalid(EventSendMessage, fmt.Errorf("%w: content must be a string", ErrMalformedPayload))
	}
	channel, err := domain.ValidateChannelID(p.ChannelID)
	if err != nil {
		return invalid(EventSendMessage, fmt.Errorf("%w: %v", ErrMalformedPayload, err))
	}

	msg := domain.NewMessage(channel, *p.Content, sess.profile(conn), o.Now())
	return o.broadcast(EventSendMessage, channel, conn, EventNewMessage, msg)
}

func (o *Orchestrator) handleTyping(event string, conn core.ConnID, sess *session, data json.RawMessage) Result {
	channel, bad := o.channelFrom(event, data)
	if bad != nil {
		return *bad
	}
	notice := TypingNotice{
		ChannelID: channel,
		UserID:    sess.identity(conn),
		UserName:  sess.name,
	}
	return o.broadcast(event, channel, conn, event, notice)
}

func (o *Orchestrator) broadcast(event string, channel domain.ChannelID, from core.ConnID, outEvent string, payload any) Result {
	res := o.Channels.Broadcast(channel, from, outEvent, payload)
	o.onDropped(outEvent, res.Dropped)
	return ok(event, res.SendTo)
}
