package businessflow

import (
	"context"
	"fmt"
	"log"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/lemurdu20/LeMuRobot/app/dto"
	"github.com/lemurdu20/LeMuRobot/app/services"
	"github.com/lemurdu20/LeMuRobot/repository"
	"github.com/lemurdu20/LeMuRobot/utils"
)

// ResubscribeFlow handles member confirmations on the campaign prompt
type ResubscribeFlow interface {
	Resubscribe(ctx context.Context, req *dto.ResubscribeRequest) (*dto.ResubscribeResponse, error)
}

// ResubscribeFlowImpl implements the confirmation business flow
type ResubscribeFlowImpl struct {
	repo      repository.GuildSettingsRepository
	directory services.MemberDirectory
	actions   services.MemberActions
	oracle    services.PermissionOracle
	notifier  services.Notifier
	validate  *validator.Validate
	logger    *log.Logger
}

// NewResubscribeFlow creates a new confirmation flow instance
func NewResubscribeFlow(
	repo repository.GuildSettingsRepository,
	directory services.MemberDirectory,
	actions services.MemberActions,
	oracle services.PermissionOracle,
	notifier services.Notifier,
	logger *log.Logger,
) ResubscribeFlow {
	if logger == nil {
		logger = log.Default()
	}
	return &ResubscribeFlowImpl{
		repo:      repo,
		directory: directory,
		actions:   actions,
		oracle:    oracle,
		notifier:  notifier,
		validate:  validator.New(),
		logger:    logger,
	}
}

// Resubscribe records the confirmation before touching any role, so that two
// concurrent clicks from the same member result in exactly one winner. The
// intent is persisted first; the new role is granted before the old one is
// revoked so the member never holds neither role.
func (s *ResubscribeFlowImpl) Resubscribe(ctx context.Context, req *dto.ResubscribeRequest) (*dto.ResubscribeResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewBusinessError("RESUBSCRIBE_VALIDATION_FAILED", "Resubscribe validation failed", err)
	}

	campaign := s.repo.GetCampaign(req.GuildID)
	if campaign == nil {
		return nil, NewBusinessError("NO_CAMPAIGN", "Aucune campagne en cours.", ErrNoCampaign)
	}

	if campaign.HasResubscribed(req.MemberID) {
		return nil, NewBusinessError("ALREADY_RESUBSCRIBED",
			"Tu as deja confirme ta reinscription. ✅", ErrAlreadyResubscribed)
	}

	memberRoles, err := s.directory.MemberRoleIDs(ctx, req.GuildID, req.MemberID)
	if err != nil {
		return nil, NewBusinessError("MEMBER_NOT_RECOGNIZED",
			"Impossible de te retrouver sur le serveur.", ErrMemberNotRecognized)
	}
	if slices.Contains(memberRoles, campaign.NewRoleID) {
		return nil, NewBusinessError("ALREADY_MIGRATED",
			"Tu as deja le nouveau role. ✅", ErrAlreadyMigrated)
	}
	if !slices.Contains(memberRoles, campaign.OldRoleID) {
		return nil, NewBusinessError("NOT_CONCERNED",
			"Tu n'es pas concerne(e) par cette campagne.", ErrNotConcerned)
	}

	for _, roleID := range []string{campaign.OldRoleID, campaign.NewRoleID} {
		check, err := s.oracle.CanManageRole(ctx, req.GuildID, roleID)
		if err != nil {
			return nil, NewBusinessError("PERMISSION_CHECK_FAILED", "Failed to check role permissions", err)
		}
		if !check.CanManage {
			return nil, NewBusinessError("INSUFFICIENT_PERMISSIONS", check.Reason, ErrInsufficientPermissions)
		}
	}

	// Record the intent first. The store serializes this check-and-append,
	// which makes it the single arbiter of concurrent clicks.
	added, err := s.repo.AddResubscribedMember(req.GuildID, req.MemberID)
	if err != nil {
		return nil, NewBusinessError("STORE_WRITE_FAILED", "Failed to record confirmation", err)
	}
	if !added {
		return nil, NewBusinessError("ALREADY_RESUBSCRIBED",
			"Tu as deja confirme ta reinscription. ✅", ErrAlreadyResubscribed)
	}

	if err := s.actions.GrantRole(ctx, req.GuildID, req.MemberID, campaign.NewRoleID); err != nil {
		// The confirmation stays recorded: the member did confirm, and an
		// admin can grant the role by hand.
		s.logger.Printf("resubscribe: failed to grant role %s to member %s in guild %s: %v",
			campaign.NewRoleID, req.MemberID, req.GuildID, err)
		return nil, NewBusinessError("ROLE_GRANT_FAILED",
			"Ta confirmation est enregistree mais le role n'a pas pu etre attribue. Contacte un admin.",
			ErrRoleGrantFailed)
	}

	if err := s.actions.RevokeRole(ctx, req.GuildID, req.MemberID, campaign.OldRoleID); err != nil {
		s.logger.Printf("resubscribe: failed to revoke role %s from member %s in guild %s: %v",
			campaign.OldRoleID, req.MemberID, req.GuildID, err)
	}

	_ = s.notifier.LogToChannel(ctx, req.GuildID, fmt.Sprintf(
		"✅ %s s'est reinscrit(e) : %s → %s.",
		utils.Mention(req.MemberID),
		utils.RoleMention(campaign.OldRoleID), utils.RoleMention(campaign.NewRoleID)))

	return &dto.ResubscribeResponse{
		MemberID:  req.MemberID,
		OldRoleID: campaign.OldRoleID,
		NewRoleID: campaign.NewRoleID,
	}, nil
}
