// Package domain contains identifiers and enums without logic, just meta-data
package domain

import (
	"errors"
)

const (
	MaxGuildIDLen   = 32
	MaxChannelIDLen = 32
)

var (
	ErrGuildEmpty     = errors.New("guild id empty")
	ErrGuildTooLong   = errors.New("guild id too long")
	ErrChannelEmpty   = errors.New("channel id empty")
	ErrChannelTooLong = errors.New("channel id too long")
)

type (
	// GuildID is the scope that owns at most one voice attachment.
	GuildID string
	// ChannelID is a voice destination inside a guild. The empty value is the
	// null channel ("not attached").
	ChannelID string
)

func (g GuildID) Validate() error {
	if len(g) == 0 {
		return ErrGuildEmpty
	}
	if len(g) > MaxGuildIDLen {
		return ErrGuildTooLong
	}
	return nil
}

func (c ChannelID) Validate() error {
	if len(c) == 0 {
		return ErrChannelEmpty
	}
	if len(c) > MaxChannelIDLen {
		return ErrChannelTooLong
	}
	return nil
}

// IsNull reports whether c names no channel.
func (c ChannelID) IsNull() bool { return c == "" }

func (c ChannelID) String() string {
	if c.IsNull() {
		return "null"
	}
	return string(c)
}
