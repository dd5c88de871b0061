package domain

import "strings"

// PlayerErrorKind is the closed set of player failures the bot reacts to.
// Raw node events are classified into one of these at the adapter boundary.
type PlayerErrorKind int

const (
	PlayerErrorUnknown PlayerErrorKind = iota
	PlayerErrorConnectionLost
	PlayerErrorTrackStuck
	PlayerErrorLoadFailed
	PlayerErrorDecodeFailure
)

var playerErrorKindNames = map[PlayerErrorKind]string{
	PlayerErrorUnknown:        "unknown",
	PlayerErrorConnectionLost: "connection_lost",
	PlayerErrorTrackStuck:     "track_stuck",
	PlayerErrorLoadFailed:     "load_failed",
	PlayerErrorDecodeFailure:  "decode_failure",
}

func (k PlayerErrorKind) String() string {
	if name, ok := playerErrorKindNames[k]; ok {
		return name
	}
	return "unknown"
}

var playerErrorPatterns = []struct {
	kind     PlayerErrorKind
	keywords []string
}{
	{PlayerErrorTrackStuck, []string{"stuck"}},
	{PlayerErrorLoadFailed, []string{
		"failed to load", "unavailable", "not available", "sign in", "no matches", "private video",
	}},
	{PlayerErrorDecodeFailure, []string{"decode", "decoding", "codec", "format"}},
	{PlayerErrorConnectionLost, []string{
		"connection", "socket", "disconnected", "reset", "timed out", "timeout",
	}},
}

// ClassifyPlayerError maps a free-text failure message to a PlayerErrorKind.
// Patterns are checked in order; the first match wins.
func ClassifyPlayerError(message string) PlayerErrorKind {
	message = strings.ToLower(message)
	for _, pattern := range playerErrorPatterns {
		for _, keyword := range pattern.keywords {
			if strings.Contains(message, keyword) {
				return pattern.kind
			}
		}
	}
	return PlayerErrorUnknown
}
