package domain

import "strings"

const mentionReply = "Hi! Use `/help` to see what I can do."

// MentionResult represents the result of evaluating a message that may
// mention the bot.
type MentionResult struct {
	ShouldRespond bool
	Response      string
}

// NewMentionResult responds only to a message that is nothing but a mention
// of the bot.
func NewMentionResult(content, botID string) *MentionResult {
	content = strings.TrimSpace(content)
	shouldRespond := botID != "" && (content == "<@"+botID+">" || content == "<@!"+botID+">")

	response := ""
	if shouldRespond {
		response = mentionReply
	}

	return &MentionResult{
		ShouldRespond: shouldRespond,
		Response:      response,
	}
}
