// Package scheduler
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/lemurdu20/LeMuRobot/app/dto"
	"github.com/lemurdu20/LeMuRobot/app/middleware"
	businessflow "github.com/lemurdu20/LeMuRobot/business_flow"
	"github.com/lemurdu20/LeMuRobot/models"
	"github.com/lemurdu20/LeMuRobot/repository"
	"github.com/lemurdu20/LeMuRobot/utils"
)

// CampaignEnder is the slice of the campaign flow the scheduler needs.
// This keeps the scheduler independent and easy to test.
type CampaignEnder interface {
	EndCampaign(ctx context.Context, req *dto.EndCampaignRequest) (*dto.EndCampaignResponse, error)
}

// CampaignScheduler periodically checks stored campaigns and ends the
// expired ones.
type CampaignScheduler struct {
	repo     repository.GuildSettingsRepository
	ender    CampaignEnder
	logger   *log.Logger
	interval time.Duration

	now func() time.Time
}

func NewCampaignScheduler(
	repo repository.GuildSettingsRepository,
	ender CampaignEnder,
	logger *log.Logger,
	interval time.Duration,
) *CampaignScheduler {
	if interval <= 0 {
		interval = utils.SchedulerCheckInterval
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CampaignScheduler{
		repo:     repo,
		ender:    ender,
		logger:   logger,
		interval: interval,
		now:      utils.UTCNow,
	}
}

// Start launches the expiry loop. The first check runs immediately so a
// restart never leaves an expired campaign waiting a full interval. The
// returned func stops the loop.
func (s *CampaignScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

// runOnce ends every expired campaign. A failure on one guild never blocks
// the others.
func (s *CampaignScheduler) runOnce(ctx context.Context) {
	now := s.now()

	guilds := s.repo.GuildsWithCampaign()
	middleware.SetActiveCampaigns(len(guilds))

	for _, guildID := range guilds {
		if ctx.Err() != nil {
			return
		}

		campaign := s.repo.GetCampaign(guildID)
		if campaign == nil || campaign.EndsAt == nil || !campaign.IsExpired(now) {
			continue
		}

		s.logger.Printf("scheduler: campaign %s in guild %s expired at %s, ending",
			campaign.UUID, guildID, campaign.EndsAt.Format(time.RFC3339))

		// Expiry always demotes. Kicking is an explicit human decision.
		resp, err := s.ender.EndCampaign(ctx, &dto.EndCampaignRequest{
			GuildID:   guildID,
			Action:    models.EndActionDemote,
			Automatic: true,
		})
		if err != nil {
			if businessflow.IsRoleGone(err) || businessflow.IsNoCampaign(err) {
				s.logger.Printf("scheduler: campaign in guild %s already unwound: %v", guildID, err)
				continue
			}
			s.logger.Printf("scheduler: failed to end expired campaign in guild %s: %v", guildID, err)
			continue
		}
		s.logger.Printf("scheduler: ended campaign in guild %s (%d resubscribed, %d demoted, %d errors)",
			guildID, resp.ResubscribedCount, resp.ProcessedCount, resp.ErrorCount)
	}
}
