package orch

import (
	"errors"

	"github.com/dkeye/Relay/internal/core"
	"github.com/rs/zerolog/log"
)

var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrUnknownEvent     = errors.New("unknown event")
	ErrUnknownConn      = errors.New("unknown connection")
	ErrDuplicateConn    = errors.New("duplicate connection id")
	ErrTargetOffline    = errors.New("target offline")
	ErrUndeliverable    = errors.New("undeliverable")
)

type Status int

const (
	StatusOK      Status = iota
	StatusDropped        // expected loss: target offline, stale connection, full buffer
	StatusInvalid        // payload or event rejected
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDropped:
		return "dropped"
	case StatusInvalid:
		return "invalid"
	}
	return "unknown"
}

// Result is what a handler did with an event. It is never sent to the client.
type Result struct {
	Event     string
	Status    Status
	Delivered int
	Err       error
}

func ok(event string, delivered int) Result {
	return Result{Event: event, Status: StatusOK, Delivered: delivered}
}

func dropped(event string, err error) Result {
	return Result{Event: event, Status: StatusDropped, Err: err}
}

func invalid(event string, err error) Result {
	return Result{Event: event, Status: StatusInvalid, Err: err}
}

func (o *Orchestrator) logged(conn core.ConnID, res Result) Result {
	switch res.Status {
	case StatusInvalid:
		log.Warn().Err(res.Err).Str("module", "app.orch").Str("conn", string(conn)).Str("event", res.Event).Msg("event rejected")
	case StatusDropped:
		log.Debug().Err(res.Err).Str("module", "app.orch").Str("conn", string(conn)).Str("event", res.Event).Msg("event dropped")
	default:
		log.Debug().Str("module", "app.orch").Str("conn", string(conn)).Str("event", res.Event).Int("delivered", res.Delivered).Msg("event handled")
	}
	return res
}
