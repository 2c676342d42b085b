package app

import (
	"fmt"

	"github.com/dkeye/Relay/internal/core"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickConnection
)

// Policy decides what happens to a connection whose send buffer is full.
type Policy interface {
	OnBackPressure(conn core.ConnID, event string) BackpressureAction
}

// DropPolicy loses the frame and keeps the connection.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(core.ConnID, string) BackpressureAction { return DropFrame }

// KickPolicy closes connections that cannot keep up.
type KickPolicy struct{}

func (KickPolicy) OnBackPressure(core.ConnID, string) BackpressureAction { return KickConnection }

func PolicyFromName(name string) (Policy, error) {
	switch name {
	case "", "drop":
		return DropPolicy{}, nil
	case "kick":
		return KickPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown backpressure policy %q", name)
	}
}
