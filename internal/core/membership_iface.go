package core

import "github.com/dkeye/Relay/internal/domain"

// PublishResult reports delivery stats/backpressure to the router.
type PublishResult struct {
	SendTo  int
	Dropped []ConnID
}

// MembershipStore owns the channel -> connections sets.
// It never touches transport resources except through Broadcast.
type MembershipStore interface {
	Join(channel domain.ChannelID, conn ConnID) bool
	Leave(channel domain.ChannelID, conn ConnID) bool
	// LeaveAll removes conn from every channel and returns those channels.
	LeaveAll(conn ConnID) []domain.ChannelID
	IsMember(channel domain.ChannelID, conn ConnID) bool
	Members(channel domain.ChannelID) []ConnID
	Broadcast(channel domain.ChannelID, exclude ConnID, event string, payload any) PublishResult
	List() []ChannelInfo
	Count() int
}

type ChannelInfo struct {
	ID          domain.ChannelID `json:"id"`
	MemberCount int              `json:"member_count"`
}
