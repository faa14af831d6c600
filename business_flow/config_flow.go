package businessflow

import (
	"context"
	"fmt"
	"log"

	"github.com/lemurdu20/LeMuRobot/app/services"
	"github.com/lemurdu20/LeMuRobot/repository"
	"github.com/lemurdu20/LeMuRobot/utils"
)

// ConfigFlow handles per-guild bot configuration
type ConfigFlow interface {
	// SetLogChannel points the guild's audit log at channelID after checking
	// the bot can actually post there.
	SetLogChannel(ctx context.Context, guildID, channelID, initiatorID string) error
}

// ConfigFlowImpl implements the configuration flow
type ConfigFlowImpl struct {
	repo      repository.GuildSettingsRepository
	oracle    services.PermissionOracle
	messenger services.Messenger
	logger    *log.Logger
}

// NewConfigFlow creates a new configuration flow instance
func NewConfigFlow(
	repo repository.GuildSettingsRepository,
	oracle services.PermissionOracle,
	messenger services.Messenger,
	logger *log.Logger,
) ConfigFlow {
	if logger == nil {
		logger = log.Default()
	}
	return &ConfigFlowImpl{repo: repo, oracle: oracle, messenger: messenger, logger: logger}
}

func (s *ConfigFlowImpl) SetLogChannel(ctx context.Context, guildID, channelID, initiatorID string) error {
	check, err := s.oracle.CanWriteToChannel(ctx, guildID, channelID)
	if err != nil {
		return NewBusinessError("PERMISSION_CHECK_FAILED", "Failed to check channel permissions", err)
	}
	if !check.CanUse {
		return NewBusinessError("INSUFFICIENT_PERMISSIONS", check.Reason, ErrInsufficientPermissions)
	}

	if err := s.repo.SetLogChannel(guildID, channelID); err != nil {
		return NewBusinessError("STORE_WRITE_FAILED", "Failed to persist log channel", err)
	}

	if err := s.messenger.PostEmbed(ctx, channelID, fmt.Sprintf(
		"📋 Ce salon recevra desormais les logs du bot (configure par %s).",
		utils.Mention(initiatorID)), utils.ColorBlurple); err != nil {
		s.logger.Printf("config: failed to announce log channel %s in guild %s: %v", channelID, guildID, err)
	}
	return nil
}
