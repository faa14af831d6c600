// Package services provides external service integrations and technical
// concerns like Discord access and notifications.
package services

import (
	"context"
	"errors"
)

// ErrRoleNotFound is returned when a referenced role no longer exists.
var ErrRoleNotFound = errors.New("role not found")

// ErrMemberNotFound is returned when a member cannot be resolved in a guild.
var ErrMemberNotFound = errors.New("member not found")

func IsRoleNotFound(err error) bool {
	return errors.Is(err, ErrRoleNotFound)
}

func IsMemberNotFound(err error) bool {
	return errors.Is(err, ErrMemberNotFound)
}

// RoleCheckResult reports whether the bot may manage a role, with a
// user-presentable reason when it may not.
type RoleCheckResult struct {
	CanManage bool
	Reason    string
}

// ChannelCheckResult reports whether the bot may write to a channel.
type ChannelCheckResult struct {
	CanUse bool
	Reason string
}

// MemberDirectory exposes guild membership lookups. Implementations must
// force-populate the member cache before filtering by role, since gateway
// caches only hold members seen so far.
type MemberDirectory interface {
	// RoleMemberIDs lists the IDs of every member holding roleID.
	// Returns ErrRoleNotFound when the role no longer exists.
	RoleMemberIDs(ctx context.Context, guildID, roleID string) ([]string, error)

	// MemberRoleIDs lists the role IDs held by one member.
	// Returns ErrMemberNotFound when the member cannot be resolved.
	MemberRoleIDs(ctx context.Context, guildID, memberID string) ([]string, error)
}

// MemberActions covers the fallible per-member mutations issued during
// confirmation and sweeps.
type MemberActions interface {
	GrantRole(ctx context.Context, guildID, memberID, roleID string) error
	RevokeRole(ctx context.Context, guildID, memberID, roleID string) error
	KickMember(ctx context.Context, guildID, memberID, reason string) error
}

// CampaignPrompt describes the interactive confirmation message posted when
// a campaign starts.
type CampaignPrompt struct {
	OldRoleName string
	NewRoleName string
}

// Messenger posts and deletes messages in guild channels.
type Messenger interface {
	// PostMessage sends plain content and returns the new message ID.
	PostMessage(ctx context.Context, channelID, content string) (string, error)

	// PostEmbed sends an embed with the given description.
	PostEmbed(ctx context.Context, channelID, description string, color int) error

	// PostCampaignPrompt sends the confirmation embed plus button and
	// returns the new message ID.
	PostCampaignPrompt(ctx context.Context, channelID string, prompt CampaignPrompt) (string, error)

	// DeleteMessage removes a message, swallowing "not found".
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

// PermissionOracle answers whether the bot still holds enough privilege for
// a state-mutating operation. Consulted before every role mutation; role
// hierarchy can drift after a campaign starts.
type PermissionOracle interface {
	CanManageRole(ctx context.Context, guildID, roleID string) (RoleCheckResult, error)
	CanWriteToChannel(ctx context.Context, guildID, channelID string) (ChannelCheckResult, error)
}
