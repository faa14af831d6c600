// Package businessflow contains the core business logic and use cases for re-enrollment campaigns
package businessflow

import (
	"context"
	"fmt"
	"log"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/lemurdu20/LeMuRobot/app/dto"
	"github.com/lemurdu20/LeMuRobot/app/services"
	"github.com/lemurdu20/LeMuRobot/models"
	"github.com/lemurdu20/LeMuRobot/repository"
	"github.com/lemurdu20/LeMuRobot/utils"
)

// CampaignFlow handles the campaign lifecycle business logic
type CampaignFlow interface {
	StartCampaign(ctx context.Context, req *dto.StartCampaignRequest) (*dto.StartCampaignResponse, error)
	CampaignStatus(ctx context.Context, req *dto.CampaignStatusRequest) (*dto.CampaignStatusResponse, error)
	EndCampaign(ctx context.Context, req *dto.EndCampaignRequest) (*dto.EndCampaignResponse, error)
	RelanceCampaign(ctx context.Context, req *dto.RelanceCampaignRequest) (*dto.RelanceCampaignResponse, error)
}

// CampaignFlowImpl implements the campaign business flow
type CampaignFlowImpl struct {
	repo      repository.GuildSettingsRepository
	directory services.MemberDirectory
	actions   services.MemberActions
	messenger services.Messenger
	oracle    services.PermissionOracle
	notifier  services.Notifier
	validate  *validator.Validate
	logger    *log.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

// NewCampaignFlow creates a new campaign flow instance
func NewCampaignFlow(
	repo repository.GuildSettingsRepository,
	directory services.MemberDirectory,
	actions services.MemberActions,
	messenger services.Messenger,
	oracle services.PermissionOracle,
	notifier services.Notifier,
	logger *log.Logger,
) CampaignFlow {
	if logger == nil {
		logger = log.Default()
	}
	return &CampaignFlowImpl{
		repo:      repo,
		directory: directory,
		actions:   actions,
		messenger: messenger,
		oracle:    oracle,
		notifier:  notifier,
		validate:  validator.New(),
		logger:    logger,
		now:       utils.UTCNow,
		sleep:     sleepWithContext,
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// StartCampaign validates permissions, posts the confirmation prompt, then
// persists the campaign. The prompt is posted first so that a persisted
// campaign always references a real message.
func (s *CampaignFlowImpl) StartCampaign(ctx context.Context, req *dto.StartCampaignRequest) (*dto.StartCampaignResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", err)
	}

	if existing := s.repo.GetCampaign(req.GuildID); existing != nil {
		return nil, NewBusinessError("CAMPAIGN_ALREADY_ACTIVE",
			"Une campagne est deja en cours. Terminez-la avec /campagne fin avant d'en lancer une nouvelle.",
			ErrCampaignAlreadyActive)
	}

	for _, roleID := range []string{req.OldRoleID, req.NewRoleID} {
		check, err := s.oracle.CanManageRole(ctx, req.GuildID, roleID)
		if err != nil {
			return nil, NewBusinessError("PERMISSION_CHECK_FAILED", "Failed to check role permissions", err)
		}
		if !check.CanManage {
			return nil, NewBusinessError("INSUFFICIENT_PERMISSIONS", check.Reason, ErrInsufficientPermissions)
		}
	}

	channelCheck, err := s.oracle.CanWriteToChannel(ctx, req.GuildID, req.ChannelID)
	if err != nil {
		return nil, NewBusinessError("PERMISSION_CHECK_FAILED", "Failed to check channel permissions", err)
	}
	if !channelCheck.CanUse {
		return nil, NewBusinessError("INSUFFICIENT_PERMISSIONS", channelCheck.Reason, ErrInsufficientPermissions)
	}

	messageID, err := s.messenger.PostCampaignPrompt(ctx, req.ChannelID, services.CampaignPrompt{
		OldRoleName: req.OldRoleName,
		NewRoleName: req.NewRoleName,
	})
	if err != nil {
		return nil, NewBusinessError("PROMPT_POST_FAILED", "Impossible de publier le message de campagne.", err)
	}

	now := s.now()
	campaign := &models.Campaign{
		UUID:                uuid.New(),
		OldRoleID:           req.OldRoleID,
		NewRoleID:           req.NewRoleID,
		ChannelID:           req.ChannelID,
		MessageID:           messageID,
		StartedAt:           now,
		ResubscribedMembers: []string{},
	}
	if req.DurationDays != nil {
		endsAt := now.Add(time.Duration(*req.DurationDays) * 24 * time.Hour)
		campaign.EndsAt = &endsAt
	}

	if err := s.repo.SetCampaign(req.GuildID, campaign); err != nil {
		// The prompt already exists; remove it so members cannot confirm
		// into a campaign that was never recorded.
		if delErr := s.messenger.DeleteMessage(ctx, req.ChannelID, messageID); delErr != nil {
			s.logger.Printf("failed to delete orphaned prompt %s in %s: %v", messageID, req.ChannelID, delErr)
		}
		return nil, NewBusinessError("STORE_WRITE_FAILED", "Failed to persist campaign", err)
	}

	note := fmt.Sprintf("📢 Campagne de reinscription lancee par %s : %s → %s dans %s.",
		utils.Mention(req.InitiatorID),
		utils.RoleMention(req.OldRoleID), utils.RoleMention(req.NewRoleID),
		utils.ChannelMention(req.ChannelID))
	if campaign.EndsAt != nil {
		note += fmt.Sprintf(" Fin automatique %s.", utils.RelativeTimestamp(*campaign.EndsAt))
	}
	_ = s.notifier.LogToChannel(ctx, req.GuildID, note)

	return &dto.StartCampaignResponse{Campaign: campaign.Clone()}, nil
}

// CampaignStatus computes progress figures without mutating any state.
func (s *CampaignFlowImpl) CampaignStatus(ctx context.Context, req *dto.CampaignStatusRequest) (*dto.CampaignStatusResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Status validation failed", err)
	}

	campaign := s.repo.GetCampaign(req.GuildID)
	if campaign == nil {
		return nil, NewBusinessError("NO_CAMPAIGN", "Aucune campagne en cours.", ErrNoCampaign)
	}

	pending, err := s.pendingMembers(ctx, req.GuildID, campaign)
	if err != nil {
		return nil, err
	}

	resubscribed := len(campaign.ResubscribedMembers)
	total := resubscribed + len(pending)
	percentage := 0
	if total > 0 {
		percentage = int(math.Round(float64(resubscribed) / float64(total) * 100))
	}

	return &dto.CampaignStatusResponse{
		OldRoleID:           campaign.OldRoleID,
		NewRoleID:           campaign.NewRoleID,
		ResubscribedCount:   resubscribed,
		PendingCount:        len(pending),
		Total:               total,
		Percentage:          percentage,
		EndsAt:              campaign.EndsAt,
		ResubscribedMembers: append([]string(nil), campaign.ResubscribedMembers...),
		PendingMembers:      pending,
	}, nil
}

// EndCampaign sweeps the members still holding the old role, applies the end
// action to each, then clears the campaign. The campaign is cleared even when
// individual actions fail, so a finished campaign never lingers.
func (s *CampaignFlowImpl) EndCampaign(ctx context.Context, req *dto.EndCampaignRequest) (*dto.EndCampaignResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "End validation failed", err)
	}
	if !req.Action.Valid() {
		return nil, NewBusinessErrorf("CAMPAIGN_VALIDATION_FAILED", "unknown end action %q", nil, req.Action)
	}

	campaign := s.repo.GetCampaign(req.GuildID)
	if campaign == nil {
		return nil, NewBusinessError("NO_CAMPAIGN", "Aucune campagne en cours.", ErrNoCampaign)
	}

	pending, err := s.pendingMembers(ctx, req.GuildID, campaign)
	if err != nil {
		if IsRoleGone(err) {
			// The old role was deleted mid-campaign. There is nothing left
			// to sweep, so clean up and report.
			s.cleanupCampaign(ctx, req.GuildID, campaign)
			return nil, err
		}
		return nil, err
	}

	processed, errCount := 0, 0
	for _, memberID := range pending {
		var actErr error
		switch req.Action {
		case models.EndActionKick:
			actErr = s.actions.KickMember(ctx, req.GuildID, memberID, "Campagne de reinscription : non reinscrit")
		default:
			actErr = s.actions.RevokeRole(ctx, req.GuildID, memberID, campaign.OldRoleID)
		}
		if actErr != nil {
			errCount++
			s.logger.Printf("end campaign: action %s failed for member %s in guild %s: %v", req.Action, memberID, req.GuildID, actErr)
			continue
		}
		processed++
	}

	s.cleanupCampaign(ctx, req.GuildID, campaign)

	resubscribed := len(campaign.ResubscribedMembers)
	var actionLabel string
	if req.Action == models.EndActionKick {
		actionLabel = fmt.Sprintf("%d expulses", processed)
	} else {
		actionLabel = fmt.Sprintf("%d ont perdu leur role", processed)
	}
	origin := fmt.Sprintf("par %s", utils.Mention(req.InitiatorID))
	if req.Automatic {
		origin = "automatiquement (expiration)"
	}
	note := fmt.Sprintf("🏁 Campagne terminee %s : %d membres reinscrits, %s.", origin, resubscribed, actionLabel)
	if errCount > 0 {
		note += fmt.Sprintf(" %d action(s) en echec.", errCount)
	}
	_ = s.notifier.LogToChannel(ctx, req.GuildID, note)

	return &dto.EndCampaignResponse{
		Action:            req.Action,
		ResubscribedCount: resubscribed,
		ProcessedCount:    processed,
		ErrorCount:        errCount,
	}, nil
}

// cleanupCampaign deletes the prompt message best effort and clears the
// stored campaign.
func (s *CampaignFlowImpl) cleanupCampaign(ctx context.Context, guildID string, campaign *models.Campaign) {
	if err := s.messenger.DeleteMessage(ctx, campaign.ChannelID, campaign.MessageID); err != nil {
		s.logger.Printf("failed to delete campaign prompt %s in %s: %v", campaign.MessageID, campaign.ChannelID, err)
	}
	if err := s.repo.ClearCampaign(guildID); err != nil {
		s.logger.Printf("failed to clear campaign for guild %s: %v", guildID, err)
	}
}

// RelanceCampaign pings the members who have not confirmed yet, in chunks
// small enough to fit the message length limit.
func (s *CampaignFlowImpl) RelanceCampaign(ctx context.Context, req *dto.RelanceCampaignRequest) (*dto.RelanceCampaignResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Relance validation failed", err)
	}

	settings := s.repo.Get(req.GuildID)
	campaign := settings.CurrentCampaign
	if campaign == nil {
		return nil, NewBusinessError("NO_CAMPAIGN", "Aucune campagne en cours.", ErrNoCampaign)
	}

	now := s.now()
	if settings.LastRelanceAt != nil {
		elapsed := now.Sub(*settings.LastRelanceAt)
		if elapsed < utils.RelanceCooldown {
			remaining := int(math.Ceil((utils.RelanceCooldown - elapsed).Minutes()))
			if remaining < 1 {
				remaining = 1
			}
			return nil, &CooldownError{RemainingMinutes: remaining}
		}
	}

	pending, err := s.pendingMembers(ctx, req.GuildID, campaign)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, NewBusinessError("ALL_RESUBSCRIBED",
			"Tous les membres concernes se sont deja reinscrits. 🎉", ErrAllResubscribed)
	}

	base := strings.TrimSpace(req.CustomMessage)
	if base == "" {
		base = "📢 Rappel : pense a te reinscrire pour la nouvelle saison ! Clique sur le bouton du message de campagne."
	}

	chunks := utils.ChunkStrings(pending, utils.MentionChunkSize(base))
	sent := 0
	for i, chunk := range chunks {
		if i > 0 {
			s.sleep(ctx, utils.RelanceDelayBetweenMessages)
			if ctx.Err() != nil {
				break
			}
		}
		mentions := make([]string, len(chunk))
		for j, memberID := range chunk {
			mentions[j] = utils.Mention(memberID)
		}
		content := base + "\n" + strings.Join(mentions, " ")
		if _, err := s.messenger.PostMessage(ctx, campaign.ChannelID, content); err != nil {
			s.logger.Printf("relance: failed to post reminder chunk %d/%d in guild %s: %v", i+1, len(chunks), req.GuildID, err)
			continue
		}
		sent++
	}

	if err := s.repo.SetLastRelanceAt(req.GuildID, now); err != nil {
		s.logger.Printf("relance: failed to record cooldown for guild %s: %v", req.GuildID, err)
	}

	_ = s.notifier.LogToChannel(ctx, req.GuildID, fmt.Sprintf(
		"🔔 Relance envoyee par %s : %d membre(s) mentionnes en %d message(s).",
		utils.Mention(req.InitiatorID), len(pending), sent))

	return &dto.RelanceCampaignResponse{
		ChannelID:    campaign.ChannelID,
		PendingCount: len(pending),
		MessagesSent: sent,
	}, nil
}

// pendingMembers lists the holders of the old role who have not confirmed.
func (s *CampaignFlowImpl) pendingMembers(ctx context.Context, guildID string, campaign *models.Campaign) ([]string, error) {
	holders, err := s.directory.RoleMemberIDs(ctx, guildID, campaign.OldRoleID)
	if err != nil {
		if services.IsRoleNotFound(err) {
			return nil, NewBusinessError("ROLE_GONE", "L'ancien role n'existe plus.", ErrRoleGone)
		}
		return nil, NewBusinessError("MEMBER_FETCH_FAILED", "Failed to list role members", err)
	}

	pending := make([]string, 0, len(holders))
	for _, memberID := range holders {
		if !slices.Contains(campaign.ResubscribedMembers, memberID) {
			pending = append(pending, memberID)
		}
	}
	return pending, nil
}
