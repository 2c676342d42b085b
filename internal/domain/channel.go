package domain

import "errors"

const MaxChannelIDLen = 128

var (
	ErrChannelIDEmpty   = errors.New("channel id empty")
	ErrChannelIDTooLong = errors.New("channel id too long")
)

type ChannelID string

func ValidateChannelID(raw string) (ChannelID, error) {
	if len(raw) == 0 {
		return "", ErrChannelIDEmpty
	}
	if len(raw) > MaxChannelIDLen {
		return "", ErrChannelIDTooLong
	}
	return ChannelID(raw), nil
}
