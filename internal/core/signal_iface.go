package core

// Frame is a raw encoded outbound event.
type Frame []byte

type ConnID string

// SignalConnection abstracts a single transport endpoint.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Transport is everything the core needs from the messaging layer:
// addressed delivery of named events and forced close of a connection.
// Send must not block.
type Transport interface {
	Send(conn ConnID, event string, payload any) error
	Close(conn ConnID)
}
