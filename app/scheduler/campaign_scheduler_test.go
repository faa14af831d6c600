package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lemurdu20/LeMuRobot/app/dto"
	businessflow "github.com/lemurdu20/LeMuRobot/business_flow"
	"github.com/lemurdu20/LeMuRobot/models"
	"github.com/lemurdu20/LeMuRobot/repository"
	"github.com/lemurdu20/LeMuRobot/utils"
)

type recordingEnder struct {
	mu    sync.Mutex
	calls []dto.EndCampaignRequest
	fail  map[string]error
}

func (e *recordingEnder) EndCampaign(_ context.Context, req *dto.EndCampaignRequest) (*dto.EndCampaignResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, *req)
	if err, ok := e.fail[req.GuildID]; ok {
		return nil, err
	}
	return &dto.EndCampaignResponse{Action: req.Action}, nil
}

func (e *recordingEnder) guilds() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, len(e.calls))
	for i, call := range e.calls {
		ids[i] = call.GuildID
	}
	return ids
}

func storeCampaign(t *testing.T, repo *repository.FileGuildSettingsRepository, guildID string, endsAt *time.Time) {
	t.Helper()
	err := repo.SetCampaign(guildID, &models.Campaign{
		UUID:                uuid.New(),
		OldRoleID:           "old",
		NewRoleID:           "new",
		ChannelID:           "chan",
		MessageID:           "msg",
		StartedAt:           utils.UTCNow().Add(-48 * time.Hour),
		EndsAt:              endsAt,
		ResubscribedMembers: []string{},
	})
	require.NoError(t, err)
}

func TestSchedulerRunOnce(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	t.Run("ends only expired campaigns", func(t *testing.T) {
		repo := repository.NewFileGuildSettingsRepository(t.TempDir(), nil)
		storeCampaign(t, repo, "expired", &past)
		storeCampaign(t, repo, "running", &future)
		storeCampaign(t, repo, "open-ended", nil)

		ender := &recordingEnder{}
		s := NewCampaignScheduler(repo, ender, nil, 0)
		s.now = func() time.Time { return now }

		s.runOnce(context.Background())

		require.Equal(t, []string{"expired"}, ender.guilds())
		call := ender.calls[0]
		assert.Equal(t, models.EndActionDemote, call.Action)
		assert.True(t, call.Automatic)
	})

	t.Run("boundary instant counts as expired", func(t *testing.T) {
		repo := repository.NewFileGuildSettingsRepository(t.TempDir(), nil)
		storeCampaign(t, repo, "g", &now)

		ender := &recordingEnder{}
		s := NewCampaignScheduler(repo, ender, nil, 0)
		s.now = func() time.Time { return now }

		s.runOnce(context.Background())
		assert.Equal(t, []string{"g"}, ender.guilds())
	})

	t.Run("one guild failing does not block the rest", func(t *testing.T) {
		repo := repository.NewFileGuildSettingsRepository(t.TempDir(), nil)
		storeCampaign(t, repo, "a-fails", &past)
		storeCampaign(t, repo, "b-ok", &past)

		ender := &recordingEnder{fail: map[string]error{"a-fails": assert.AnError}}
		s := NewCampaignScheduler(repo, ender, nil, 0)
		s.now = func() time.Time { return now }

		s.runOnce(context.Background())
		assert.ElementsMatch(t, []string{"a-fails", "b-ok"}, ender.guilds())
	})

	t.Run("role gone is tolerated", func(t *testing.T) {
		repo := repository.NewFileGuildSettingsRepository(t.TempDir(), nil)
		storeCampaign(t, repo, "g", &past)

		ender := &recordingEnder{fail: map[string]error{"g": businessflow.ErrRoleGone}}
		s := NewCampaignScheduler(repo, ender, nil, 0)
		s.now = func() time.Time { return now }

		s.runOnce(context.Background())
		assert.Equal(t, []string{"g"}, ender.guilds())
	})
}

func TestSchedulerStart(t *testing.T) {
	t.Run("first check runs immediately and stop halts the loop", func(t *testing.T) {
		repo := repository.NewFileGuildSettingsRepository(t.TempDir(), nil)
		past := utils.UTCNow().Add(-time.Hour)
		storeCampaign(t, repo, "g", &past)

		ender := &recordingEnder{}
		s := NewCampaignScheduler(repo, ender, nil, time.Hour)

		stop := s.Start(context.Background())
		defer stop()

		require.Eventually(t, func() bool {
			return len(ender.guilds()) == 1
		}, time.Second, 10*time.Millisecond)
	})
}
