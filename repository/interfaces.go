// Package repository provides the data access layer for the persisted
// guild-settings document store.
package repository

import (
	"time"

	"github.com/lemurdu20/LeMuRobot/models"
)

// CampaignSlot wraps the optional campaign field of a patch. A non-nil slot
// with a nil Value clears the campaign; a nil slot leaves it untouched.
type CampaignSlot struct {
	Value *models.Campaign
}

// GuildSettingsPatch is a shallow field-level merge applied to one guild's
// settings: provided fields overwrite, omitted fields are preserved.
type GuildSettingsPatch struct {
	LogChannelID  *string
	LastRelanceAt *time.Time
	Campaign      *CampaignSlot
}

// GuildSettingsRepository defines operations on the persisted store. All
// mutations are serialized by the implementation; reads never fail visibly
// (corrupt primaries are restored from backups, absent guilds yield empty
// settings).
type GuildSettingsRepository interface {
	Get(guildID string) models.GuildSettings
	Patch(guildID string, patch GuildSettingsPatch) error

	GetCampaign(guildID string) *models.Campaign
	SetCampaign(guildID string, campaign *models.Campaign) error
	ClearCampaign(guildID string) error

	// AddResubscribedMember appends memberID to the active campaign's
	// confirmed list if not already present. It returns false when the
	// member is already listed or no campaign is active.
	AddResubscribedMember(guildID, memberID string) (bool, error)

	SetLogChannel(guildID, channelID string) error
	SetLastRelanceAt(guildID string, at time.Time) error

	GuildsWithCampaign() []string

	// InvalidateCache forces the next read to hit durable storage. Test hook.
	InvalidateCache()
}
