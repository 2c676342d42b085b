package orch

import (
	"encoding/json"

	"github.com/dkeye/Relay/internal/domain"
)

// Inbound event names.
const (
	EventConnect          = "connect"
	EventDisconnect       = "disconnect"
	EventAuthenticate     = "authenticate"
	EventJoinChannel      = "joinChannel"
	EventLeaveChannel     = "leaveChannel"
	EventSendMessage      = "sendMessage"
	EventTyping           = "typing"
	EventStopTyping       = "stopTyping"
	EventCallUser         = "callUser"
	EventAnswerCall       = "answerCall"
	EventRejectCall       = "rejectCall"
	EventEndCall          = "endCall"
	EventSendIceCandidate = "sendIceCandidate"
)

// Outbound event names. Typing notices reuse the inbound names.
const (
	EventNewMessage   = "newMessage"
	EventCallOffer    = "callOffer"
	EventCallAnswer   = "callAnswer"
	EventCallRejected = "callRejected"
	EventCallEnded    = "callEnded"
	EventIceCandidate = "iceCandidate"
)

type authenticatePayload struct {
	UserID string `json:"userId"`
	Name   string `json:"name,omitempty"`
	Image  string `json:"image,omitempty"`
}

type channelPayload struct {
	ChannelID string `json:"channelId"`
}

type sendMessagePayload struct {
	ChannelID string  `json:"channelId"`
	Content   *string `json:"content"`
}

type callUserPayload struct {
	To        string          `json:"to"`
	ChannelID string          `json:"channelId"`
	Signal    json.RawMessage `json:"signal"`
	CallType  string          `json:"callType"`
}

type answerCallPayload struct {
	To     string          `json:"to"`
	Signal json.RawMessage `json:"signal"`
}

type reasonPayload struct {
	To     string          `json:"to"`
	Reason json.RawMessage `json:"reason"`
}

type candidatePayload struct {
	To        string          `json:"to"`
	Candidate json.RawMessage `json:"candidate"`
}

type TypingNotice struct {
	ChannelID domain.ChannelID `json:"channelId"`
	UserID    domain.UserID    `json:"userId"`
	UserName  string           `json:"userName,omitempty"`
}

type CallOffer struct {
	From      domain.UserID    `json:"from"`
	To        domain.UserID    `json:"to"`
	ChannelID domain.ChannelID `json:"channelId"`
	Signal    json.RawMessage  `json:"signal"`
	CallType  string           `json:"callType"`
	Caller    domain.Profile   `json:"caller"`
}

type CallAnswer struct {
	From   domain.UserID   `json:"from"`
	To     domain.UserID   `json:"to"`
	Signal json.RawMessage `json:"signal"`
}

// CallClosed is the payload of both callRejected and callEnded.
type CallClosed struct {
	From   domain.UserID   `json:"from"`
	To     domain.UserID   `json:"to"`
	Reason json.RawMessage `json:"reason"`
}

type IceCandidate struct {
	From      domain.UserID   `json:"from"`
	To        domain.UserID   `json:"to"`
	Candidate json.RawMessage `json:"candidate"`
}
