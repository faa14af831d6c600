package utils

import (
	"time"
)

// Discord platform limits
const (
	// DiscordMessageLimit is the maximum length of a plain message
	DiscordMessageLimit = 2000

	// DiscordEmbedDescriptionLimit is the maximum length of an embed description
	DiscordEmbedDescriptionLimit = 4000

	// DiscordMentionLength is the reserved length of one mention: "<@123456789012345678> "
	DiscordMentionLength = 22
)

// Rate limiting constants
const (
	// RateLimitMaxCommands is the number of commands a user may run per window
	RateLimitMaxCommands = 5

	// RateLimitWindow is the rate limit window (1 minute)
	RateLimitWindow = time.Minute
)

// Scheduler constants
const (
	// SchedulerCheckInterval is how often expired campaigns are checked (1 minute)
	SchedulerCheckInterval = time.Minute
)

// Relance (reminder broadcast) constants
const (
	// RelanceCooldown is the minimum delay between two reminder broadcasts (5 minutes)
	RelanceCooldown = 5 * time.Minute

	// RelanceMaxMentionsPerMessage caps how many members are mentioned per message
	RelanceMaxMentionsPerMessage = 20

	// RelanceDelayBetweenMessages is the pause between reminder messages to respect rate limits
	RelanceDelayBetweenMessages = time.Second
)

// Campaign constants
const (
	// CampaignMaxDurationDays is the longest allowed automatic campaign duration
	CampaignMaxDurationDays = 90

	// CampaignCustomMessageMaxLength caps the custom relance message length
	CampaignCustomMessageMaxLength = 500
)

// Store constants
const (
	// StoreBackupCount is the number of rotating backups kept next to the store file
	StoreBackupCount = 3

	// StoreFileName is the name of the persisted store document
	StoreFileName = "config.json"
)

// Heartbeat constants
const (
	// HeartbeatFileName is the liveness file written under the data directory
	HeartbeatFileName = ".heartbeat"

	// HeartbeatInterval is how often the heartbeat file is refreshed (30 seconds)
	HeartbeatInterval = 30 * time.Second

	// HeartbeatMaxAge is the oldest a heartbeat may be before the bot is unhealthy (60 seconds)
	HeartbeatMaxAge = 60 * time.Second
)

// Button custom IDs
const (
	ButtonIDResubscribe        = "resubscribe"
	ButtonIDStatusResubscribed = "status_resubscribed"
	ButtonIDStatusMissing      = "status_missing"
)

// Embed colors
const (
	ColorBlurple = 0x5865F2
	ColorGreen   = 0x57F287
	ColorRed     = 0xED4245
)
