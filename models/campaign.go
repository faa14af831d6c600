package models

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// EndAction represents what happens to non-resubscribed members when a
// campaign ends.
type EndAction string

const (
	// EndActionDemote removes the old role and nothing else
	EndActionDemote EndAction = "demote"
	// EndActionKick expels non-resubscribed members from the guild
	EndActionKick EndAction = "kick"
)

// String returns the string representation of the action
func (a EndAction) String() string {
	return string(a)
}

// Valid checks if the action is valid
func (a EndAction) Valid() bool {
	switch a {
	case EndActionDemote, EndActionKick:
		return true
	default:
		return false
	}
}

// Campaign represents one guild's active re-enrollment cycle. Its identity
// (roles, channel, prompt message) is immutable after creation; only the
// resubscribed member list grows over its lifetime.
type Campaign struct {
	UUID                uuid.UUID  `json:"uuid"`
	OldRoleID           string     `json:"oldRoleId"`
	NewRoleID           string     `json:"newRoleId"`
	ChannelID           string     `json:"channelId"`
	MessageID           string     `json:"messageId"`
	StartedAt           time.Time  `json:"startedAt"`
	EndsAt              *time.Time `json:"endsAt,omitempty"`
	ResubscribedMembers []string   `json:"resubscribedMembers"`
}

// HasResubscribed reports whether the member already confirmed.
func (c *Campaign) HasResubscribed(memberID string) bool {
	return slices.Contains(c.ResubscribedMembers, memberID)
}

// IsExpired reports whether the campaign deadline has passed at the given
// time. Campaigns without a deadline never expire.
func (c *Campaign) IsExpired(now time.Time) bool {
	if c.EndsAt == nil {
		return false
	}
	return !now.Before(*c.EndsAt)
}

// Clone returns a deep copy of the campaign.
func (c *Campaign) Clone() *Campaign {
	if c == nil {
		return nil
	}
	cp := *c
	if c.EndsAt != nil {
		endsAt := *c.EndsAt
		cp.EndsAt = &endsAt
	}
	cp.ResubscribedMembers = slices.Clone(c.ResubscribedMembers)
	return &cp
}

// Validate checks structural invariants of a campaign record.
func (c *Campaign) Validate() error {
	if c.OldRoleID == "" || c.NewRoleID == "" {
		return fmt.Errorf("campaign requires both role IDs")
	}
	if c.OldRoleID == c.NewRoleID {
		return fmt.Errorf("campaign roles must be distinct")
	}
	if c.ChannelID == "" || c.MessageID == "" {
		return fmt.Errorf("campaign requires channel and message IDs")
	}
	return nil
}
