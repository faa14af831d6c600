// Package models defines the persisted document types for the bot.
package models

import (
	"time"
)

// GuildSettings holds everything the bot persists for one guild. Entries are
// created lazily on first write and never deleted.
type GuildSettings struct {
	// LogChannelID is the optional notification sink for campaign events.
	LogChannelID string `json:"logChannelId,omitempty"`

	// LastRelanceAt is when the last reminder broadcast was sent, used for
	// the relance cooldown.
	LastRelanceAt *time.Time `json:"lastRelanceAt,omitempty"`

	// CurrentCampaign is the at-most-one active campaign for this guild.
	CurrentCampaign *Campaign `json:"currentCampaign,omitempty"`
}

// Clone returns a deep copy of the settings.
func (g GuildSettings) Clone() GuildSettings {
	cp := g
	if g.LastRelanceAt != nil {
		t := *g.LastRelanceAt
		cp.LastRelanceAt = &t
	}
	cp.CurrentCampaign = g.CurrentCampaign.Clone()
	return cp
}

// DataStore is the top-level persisted document, keyed by guild ID.
type DataStore struct {
	Guilds map[string]GuildSettings `json:"guilds"`
}

// NewDataStore returns an empty document.
func NewDataStore() *DataStore {
	return &DataStore{Guilds: make(map[string]GuildSettings)}
}

// GuildsWithCampaign lists the IDs of all guilds holding an active campaign.
func (d *DataStore) GuildsWithCampaign() []string {
	var ids []string
	for id, settings := range d.Guilds {
		if settings.CurrentCampaign != nil {
			ids = append(ids, id)
		}
	}
	return ids
}
