package infrastructure

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/cadence/internal/modules/music_player/application/ports"
)

// Ensure DiscordUserInfoProvider implements ports.UserInfoProvider.
var _ ports.UserInfoProvider = (*DiscordUserInfoProvider)(nil)

// DiscordUserInfoProvider implements ports.UserInfoProvider using a Discord session.
type DiscordUserInfoProvider struct {
	session *discordgo.Session
}

// NewDiscordUserInfoProvider creates a new DiscordUserInfoProvider.
func NewDiscordUserInfoProvider(session *discordgo.Session) *DiscordUserInfoProvider {
	return &DiscordUserInfoProvider{session: session}
}

// GetUserInfo fetches display info for a user in a guild.
// The state cache is consulted before the REST API.
func (p *DiscordUserInfoProvider) GetUserInfo(guildID, userID snowflake.ID) (*ports.UserInfo, error) {
	member, err := p.session.State.Member(guildID.String(), userID.String())
	if err != nil {
		member, err = p.session.GuildMember(guildID.String(), userID.String())
		if err != nil {
			return nil, fmt.Errorf("failed to fetch guild member: %w", err)
		}
	}

	return &ports.UserInfo{
		DisplayName: displayName(member),
		AvatarURL:   member.AvatarURL(""),
	}, nil
}

// BotUser returns the bot's own ID and display info.
func (p *DiscordUserInfoProvider) BotUser() (snowflake.ID, *ports.UserInfo) {
	user := p.session.State.User
	if user == nil {
		return 0, &ports.UserInfo{DisplayName: "Cadence"}
	}

	id, _ := snowflake.Parse(user.ID)
	name := user.GlobalName
	if name == "" {
		name = user.Username
	}
	return id, &ports.UserInfo{
		DisplayName: name,
		AvatarURL:   user.AvatarURL(""),
	}
}

// displayName returns the effective display name for a guild member.
// Priority: guild nickname > global display name > username.
func displayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}
