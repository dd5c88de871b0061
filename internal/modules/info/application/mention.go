package application

import "github.com/sglre6355/cadence/internal/modules/info/domain"

// MentionInteractor handles the mention reply use case.
type MentionInteractor struct {
	botID string
}

// NewMentionInteractor creates a new MentionInteractor for the given bot user.
func NewMentionInteractor(botID string) *MentionInteractor {
	return &MentionInteractor{botID: botID}
}

// Execute evaluates the content and returns the mention result.
func (m *MentionInteractor) Execute(content string) *domain.MentionResult {
	return domain.NewMentionResult(content, m.botID)
}
