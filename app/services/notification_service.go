package services

import (
	"context"
	"log"
	"sync"

	"github.com/lemurdu20/LeMuRobot/repository"
	"github.com/lemurdu20/LeMuRobot/utils"
)

// Notifier delivers operational audit messages for a guild.
type Notifier interface {
	// LogToChannel posts message to the guild's configured log channel, or
	// falls back to process logs when no channel is usable.
	LogToChannel(ctx context.Context, guildID, message string) error
}

// ChannelNotifier posts audit embeds to the per-guild log channel stored in
// the settings repository.
type ChannelNotifier struct {
	repo      repository.GuildSettingsRepository
	oracle    PermissionOracle
	messenger Messenger
	logger    *log.Logger
}

// NewChannelNotifier builds a notifier over the given collaborators.
func NewChannelNotifier(repo repository.GuildSettingsRepository, oracle PermissionOracle, messenger Messenger, logger *log.Logger) *ChannelNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &ChannelNotifier{repo: repo, oracle: oracle, messenger: messenger, logger: logger}
}

// LogToChannel never fails the calling operation: delivery problems are
// downgraded to process-log lines.
func (n *ChannelNotifier) LogToChannel(ctx context.Context, guildID, message string) error {
	settings := n.repo.Get(guildID)
	if settings.LogChannelID == "" {
		n.logger.Printf("[LOG] guild=%s %s", guildID, message)
		return nil
	}

	check, err := n.oracle.CanWriteToChannel(ctx, guildID, settings.LogChannelID)
	if err != nil || !check.CanUse {
		n.logger.Printf("[LOG] guild=%s log channel %s unusable, falling back: %s", guildID, settings.LogChannelID, message)
		return nil
	}

	if err := n.messenger.PostEmbed(ctx, settings.LogChannelID, message, utils.ColorBlurple); err != nil {
		n.logger.Printf("[LOG] guild=%s failed to post to log channel %s: %v", guildID, settings.LogChannelID, err)
	}
	return nil
}

// MockNotifier records messages for tests.
type MockNotifier struct {
	mu       sync.Mutex
	Messages map[string][]string
	FailWith error
}

// NewMockNotifier builds an empty recorder.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{Messages: make(map[string][]string)}
}

func (m *MockNotifier) LogToChannel(_ context.Context, guildID, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Messages[guildID] = append(m.Messages[guildID], message)
	return nil
}

// MessagesFor returns a copy of the messages logged for one guild.
func (m *MockNotifier) MessagesFor(guildID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Messages[guildID]...)
}
