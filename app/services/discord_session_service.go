package services

import (
	"context"
	"fmt"
	"log"
	"slices"

	"github.com/bwmarrin/discordgo"

	"github.com/lemurdu20/LeMuRobot/utils"
)

const memberFetchPageSize = 1000

// DiscordSessionService implements MemberDirectory, MemberActions, Messenger
// and PermissionOracle on top of a live discordgo session.
type DiscordSessionService struct {
	session *discordgo.Session
	logger  *log.Logger
}

// NewDiscordSessionService wraps an open session.
func NewDiscordSessionService(session *discordgo.Session, logger *log.Logger) *DiscordSessionService {
	if logger == nil {
		logger = log.Default()
	}
	return &DiscordSessionService{session: session, logger: logger}
}

// RoleMemberIDs lists every member holding roleID. The full member list is
// fetched page by page because the gateway cache only holds members already
// seen.
func (s *DiscordSessionService) RoleMemberIDs(ctx context.Context, guildID, roleID string) ([]string, error) {
	roles, err := s.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch guild roles: %w", err)
	}
	found := false
	for _, role := range roles {
		if role.ID == roleID {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrRoleNotFound
	}

	members, err := s.fetchAllMembers(ctx, guildID)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, member := range members {
		if slices.Contains(member.Roles, roleID) {
			ids = append(ids, member.User.ID)
		}
	}
	return ids, nil
}

// MemberRoleIDs lists the role IDs held by one member.
func (s *DiscordSessionService) MemberRoleIDs(ctx context.Context, guildID, memberID string) ([]string, error) {
	member, err := s.session.GuildMember(guildID, memberID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMemberNotFound, err)
	}
	return member.Roles, nil
}

func (s *DiscordSessionService) fetchAllMembers(ctx context.Context, guildID string) ([]*discordgo.Member, error) {
	var all []*discordgo.Member
	after := ""
	for {
		page, err := s.session.GuildMembers(guildID, after, memberFetchPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("fetch guild members: %w", err)
		}
		all = append(all, page...)
		if len(page) < memberFetchPageSize {
			return all, nil
		}
		after = page[len(page)-1].User.ID
	}
}

// GrantRole adds roleID to the member.
func (s *DiscordSessionService) GrantRole(ctx context.Context, guildID, memberID, roleID string) error {
	return s.session.GuildMemberRoleAdd(guildID, memberID, roleID, discordgo.WithContext(ctx))
}

// RevokeRole removes roleID from the member.
func (s *DiscordSessionService) RevokeRole(ctx context.Context, guildID, memberID, roleID string) error {
	return s.session.GuildMemberRoleRemove(guildID, memberID, roleID, discordgo.WithContext(ctx))
}

// KickMember expels the member with an audit-log reason.
func (s *DiscordSessionService) KickMember(ctx context.Context, guildID, memberID, reason string) error {
	return s.session.GuildMemberDeleteWithReason(guildID, memberID, reason, discordgo.WithContext(ctx))
}

// PostMessage sends plain content and returns the new message ID.
func (s *DiscordSessionService) PostMessage(ctx context.Context, channelID, content string) (string, error) {
	msg, err := s.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

// PostEmbed sends an embed with the given description.
func (s *DiscordSessionService) PostEmbed(ctx context.Context, channelID, description string, color int) error {
	embed := &discordgo.MessageEmbed{
		Description: description,
		Color:       color,
		Timestamp:   utils.UTCNow().Format("2006-01-02T15:04:05Z07:00"),
	}
	_, err := s.session.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx))
	return err
}

// PostCampaignPrompt sends the confirmation embed plus its button and
// returns the message ID, which becomes part of the campaign identity.
func (s *DiscordSessionService) PostCampaignPrompt(ctx context.Context, channelID string, prompt CampaignPrompt) (string, error) {
	embed := &discordgo.MessageEmbed{
		Color: utils.ColorBlurple,
		Title: "Reinscription - Nouvelle Saison",
		Description: fmt.Sprintf(
			"Clique sur le bouton ci-dessous pour confirmer ta reinscription et obtenir le role **%s** !\n\n"+
				"Tu passeras de **%s** a **%s**.",
			prompt.NewRoleName, prompt.OldRoleName, prompt.NewRoleName,
		),
		Footer: &discordgo.MessageEmbedFooter{Text: "Association sportive"},
	}

	button := discordgo.Button{
		CustomID: utils.ButtonIDResubscribe,
		Label:    "Je me reinscris",
		Style:    discordgo.SuccessButton,
		Emoji:    &discordgo.ComponentEmoji{Name: "✅"},
	}

	msg, err := s.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{button}},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

// DeleteMessage removes a message; a missing message is not an error.
func (s *DiscordSessionService) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	err := s.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
	if err == nil {
		return nil
	}
	if restErr, ok := err.(*discordgo.RESTError); ok && restErr.Response != nil && restErr.Response.StatusCode == 404 {
		return nil
	}
	return err
}

// CanManageRole verifies permission, hierarchy, and integration-management
// for one role.
func (s *DiscordSessionService) CanManageRole(ctx context.Context, guildID, roleID string) (RoleCheckResult, error) {
	botID := s.session.State.User.ID

	botMember, err := s.session.GuildMember(guildID, botID, discordgo.WithContext(ctx))
	if err != nil {
		return RoleCheckResult{Reason: "Impossible de trouver le bot sur le serveur."}, nil
	}

	roles, err := s.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return RoleCheckResult{}, fmt.Errorf("fetch guild roles: %w", err)
	}

	var target *discordgo.Role
	byID := make(map[string]*discordgo.Role, len(roles))
	for _, role := range roles {
		byID[role.ID] = role
		if role.ID == roleID {
			target = role
		}
	}
	if target == nil {
		return RoleCheckResult{Reason: "Role introuvable."}, nil
	}

	var perms int64
	botHighest := 0
	for _, id := range append([]string{guildID}, botMember.Roles...) {
		role, ok := byID[id]
		if !ok {
			continue
		}
		perms |= role.Permissions
		if role.Position > botHighest {
			botHighest = role.Position
		}
	}

	if perms&discordgo.PermissionAdministrator == 0 && perms&discordgo.PermissionManageRoles == 0 {
		return RoleCheckResult{Reason: "Le bot n'a pas la permission \"Gerer les roles\"."}, nil
	}

	if target.Position >= botHighest {
		return RoleCheckResult{Reason: fmt.Sprintf(
			"Le role \"%s\" est au-dessus ou au meme niveau que le role du bot. "+
				"Deplacez le role du bot au-dessus de \"%s\" dans les parametres du serveur.",
			target.Name, target.Name,
		)}, nil
	}

	if target.Managed {
		return RoleCheckResult{Reason: fmt.Sprintf(
			"Le role \"%s\" est gere par une integration et ne peut pas etre modifie.", target.Name,
		)}, nil
	}

	return RoleCheckResult{CanManage: true}, nil
}

// CanWriteToChannel verifies the channel is a usable text channel the bot
// can see and post in.
func (s *DiscordSessionService) CanWriteToChannel(ctx context.Context, guildID, channelID string) (ChannelCheckResult, error) {
	channel, err := s.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return ChannelCheckResult{Reason: "Impossible de recuperer le salon."}, nil
	}
	if channel.GuildID != guildID {
		return ChannelCheckResult{Reason: "Salon introuvable ou supprime."}, nil
	}
	if channel.Type != discordgo.ChannelTypeGuildText {
		return ChannelCheckResult{Reason: "Ce salon n'est pas un salon textuel."}, nil
	}

	perms, err := s.session.UserChannelPermissions(s.session.State.User.ID, channelID)
	if err != nil {
		return ChannelCheckResult{Reason: "Impossible de verifier les permissions du bot."}, nil
	}
	if perms&discordgo.PermissionViewChannel == 0 {
		return ChannelCheckResult{Reason: fmt.Sprintf("Le bot ne peut pas voir le salon #%s.", channel.Name)}, nil
	}
	if perms&discordgo.PermissionSendMessages == 0 {
		return ChannelCheckResult{Reason: fmt.Sprintf("Le bot ne peut pas envoyer de messages dans #%s.", channel.Name)}, nil
	}

	return ChannelCheckResult{CanUse: true}, nil
}
