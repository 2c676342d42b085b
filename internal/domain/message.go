package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is a chat message relayed to channel members. It is never stored.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	ChannelID ChannelID `json:"channelId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	UserID    UserID    `json:"userId"`
	User      Profile   `json:"user"`
}

func NewMessage(channel ChannelID, content string, author Profile, now time.Time) *Message {
	now = now.UTC()
	return &Message{
		ID:        NewMessageID(now),
		Content:   content,
		ChannelID: channel,
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    author.ID,
		User:      author,
	}
}

// NewMessageID returns "<unix millis>-<8 hex chars>". Unique enough for
// client-side deduplication of transient messages.
func NewMessageID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix
}
