// Package dto defines the request and response types exchanged between the
// command/button layer and the business flows.
package dto

import (
	"time"

	"github.com/lemurdu20/LeMuRobot/models"
)

// StartCampaignRequest represents the request to start a re-enrollment campaign
type StartCampaignRequest struct {
	GuildID     string `validate:"required"`
	OldRoleID   string `validate:"required"`
	NewRoleID   string `validate:"required,nefield=OldRoleID"`
	OldRoleName string
	NewRoleName string
	ChannelID   string `validate:"required"`
	// DurationDays, when set, schedules automatic expiry.
	DurationDays *int `validate:"omitempty,min=1,max=90"`
	InitiatorID  string
}

// StartCampaignResponse represents the outcome of starting a campaign
type StartCampaignResponse struct {
	Campaign *models.Campaign
}

// CampaignStatusRequest represents the request for a campaign progress report
type CampaignStatusRequest struct {
	GuildID string `validate:"required"`
}

// CampaignStatusResponse represents a point-in-time campaign progress report
type CampaignStatusResponse struct {
	OldRoleID           string
	NewRoleID           string
	ResubscribedCount   int
	PendingCount        int
	Total               int
	Percentage          int
	EndsAt              *time.Time
	ResubscribedMembers []string
	PendingMembers      []string
}

// EndCampaignRequest represents the request to terminate a campaign
type EndCampaignRequest struct {
	GuildID     string           `validate:"required"`
	Action      models.EndAction `validate:"required"`
	InitiatorID string
	// Automatic flags expiry-driven termination (scheduler) as opposed to
	// an administrator-issued end.
	Automatic bool
}

// EndCampaignResponse represents the sweep summary after termination
type EndCampaignResponse struct {
	Action            models.EndAction
	ResubscribedCount int
	ProcessedCount    int
	ErrorCount        int
}

// RelanceCampaignRequest represents the request to remind pending members
type RelanceCampaignRequest struct {
	GuildID       string `validate:"required"`
	CustomMessage string `validate:"omitempty,max=500"`
	InitiatorID   string
}

// RelanceCampaignResponse represents the reminder broadcast summary
type RelanceCampaignResponse struct {
	ChannelID    string
	PendingCount int
	MessagesSent int
}

// ResubscribeRequest represents one member's self-service confirmation
type ResubscribeRequest struct {
	GuildID  string `validate:"required"`
	MemberID string `validate:"required"`
}

// ResubscribeResponse represents a successful confirmation
type ResubscribeResponse struct {
	MemberID  string
	OldRoleID string
	NewRoleID string
}
