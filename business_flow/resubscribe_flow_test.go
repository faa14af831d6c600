package businessflow

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lemurdu20/LeMuRobot/app/dto"
	"github.com/lemurdu20/LeMuRobot/app/services"
)

func newResubscribeFixture(t *testing.T) (*flowFixture, ResubscribeFlow) {
	t.Helper()
	f := newFlowFixture(t)
	sub := NewResubscribeFlow(f.repo, f.discord, f.discord, f.discord, f.notifier, nil)
	return f, sub
}

func TestResubscribe(t *testing.T) {
	t.Run("moves member to new role and records it", func(t *testing.T) {
		f, sub := newResubscribeFixture(t)
		f.discord.SetMember(testGuildID, "m1", testOldRoleID)
		f.startCampaign(t, nil)

		resp, err := sub.Resubscribe(context.Background(), &dto.ResubscribeRequest{
			GuildID:  testGuildID,
			MemberID: "m1",
		})
		require.NoError(t, err)
		assert.Equal(t, testOldRoleID, resp.OldRoleID)
		assert.Equal(t, testNewRoleID, resp.NewRoleID)

		assert.True(t, f.discord.HasRole(testGuildID, "m1", testNewRoleID))
		assert.False(t, f.discord.HasRole(testGuildID, "m1", testOldRoleID))

		campaign := f.repo.GetCampaign(testGuildID)
		require.NotNil(t, campaign)
		assert.True(t, campaign.HasResubscribed("m1"))

		msgs := f.notifier.MessagesFor(testGuildID)
		require.NotEmpty(t, msgs)
		assert.Contains(t, msgs[len(msgs)-1], "s'est reinscrit(e)")
	})

	t.Run("second click is rejected", func(t *testing.T) {
		f, sub := newResubscribeFixture(t)
		f.discord.SetMember(testGuildID, "m1", testOldRoleID)
		f.startCampaign(t, nil)

		_, err := sub.Resubscribe(context.Background(), &dto.ResubscribeRequest{GuildID: testGuildID, MemberID: "m1"})
		require.NoError(t, err)

		_, err = sub.Resubscribe(context.Background(), &dto.ResubscribeRequest{GuildID: testGuildID, MemberID: "m1"})
		assert.True(t, IsAlreadyMigrated(err) || IsAlreadyResubscribed(err))
	})

	t.Run("no campaign", func(t *testing.T) {
		f, sub := newResubscribeFixture(t)
		f.discord.SetMember(testGuildID, "m1", testOldRoleID)

		_, err := sub.Resubscribe(context.Background(), &dto.ResubscribeRequest{GuildID: testGuildID, MemberID: "m1"})
		assert.True(t, IsNoCampaign(err))
	})

	t.Run("member without old role is not concerned", func(t *testing.T) {
		f, sub := newResubscribeFixture(t)
		f.discord.SetMember(testGuildID, "m1", "unrelated-role")
		f.startCampaign(t, nil)

		_, err := sub.Resubscribe(context.Background(), &dto.ResubscribeRequest{GuildID: testGuildID, MemberID: "m1"})
		assert.True(t, IsNotConcerned(err))
	})

	t.Run("member already holding new role", func(t *testing.T) {
		f, sub := newResubscribeFixture(t)
		f.discord.SetMember(testGuildID, "m1", testOldRoleID, testNewRoleID)
		f.startCampaign(t, nil)

		_, err := sub.Resubscribe(context.Background(), &dto.ResubscribeRequest{GuildID: testGuildID, MemberID: "m1"})
		assert.True(t, IsAlreadyMigrated(err))
	})

	t.Run("unknown member", func(t *testing.T) {
		f, sub := newResubscribeFixture(t)
		f.startCampaign(t, nil)

		_, err := sub.Resubscribe(context.Background(), &dto.ResubscribeRequest{GuildID: testGuildID, MemberID: "ghost"})
		assert.True(t, IsMemberNotRecognized(err))
	})

	t.Run("grant failure keeps the confirmation recorded", func(t *testing.T) {
		f, sub := newResubscribeFixture(t)
		f.discord.SetMember(testGuildID, "m1", testOldRoleID)
		f.startCampaign(t, nil)
		f.discord.GrantErr = assert.AnError

		_, err := sub.Resubscribe(context.Background(), &dto.ResubscribeRequest{GuildID: testGuildID, MemberID: "m1"})
		assert.True(t, IsRoleGrantFailed(err))

		campaign := f.repo.GetCampaign(testGuildID)
		require.NotNil(t, campaign)
		assert.True(t, campaign.HasResubscribed("m1"))
		// old role untouched when the grant never happened
		assert.True(t, f.discord.HasRole(testGuildID, "m1", testOldRoleID))
	})

	t.Run("revoke failure still succeeds", func(t *testing.T) {
		f, sub := newResubscribeFixture(t)
		f.discord.SetMember(testGuildID, "m1", testOldRoleID)
		f.startCampaign(t, nil)
		f.discord.RevokeErr = assert.AnError

		resp, err := sub.Resubscribe(context.Background(), &dto.ResubscribeRequest{GuildID: testGuildID, MemberID: "m1"})
		require.NoError(t, err)
		assert.Equal(t, "m1", resp.MemberID)
		assert.True(t, f.discord.HasRole(testGuildID, "m1", testNewRoleID))
		assert.True(t, f.discord.HasRole(testGuildID, "m1", testOldRoleID))
	})

	t.Run("insufficient permissions", func(t *testing.T) {
		f, sub := newResubscribeFixture(t)
		f.discord.SetMember(testGuildID, "m1", testOldRoleID)
		f.startCampaign(t, nil)
		f.discord.RoleCheck = services.RoleCheckResult{Reason: "role above bot"}

		_, err := sub.Resubscribe(context.Background(), &dto.ResubscribeRequest{GuildID: testGuildID, MemberID: "m1"})
		assert.True(t, IsInsufficientPermissions(err))

		campaign := f.repo.GetCampaign(testGuildID)
		require.NotNil(t, campaign)
		assert.False(t, campaign.HasResubscribed("m1"))
	})
}

// Simultaneous confirmations from many members must all land, and repeated
// confirmations from the same member must produce exactly one winner.
func TestResubscribeConcurrency(t *testing.T) {
	t.Run("same member clicks concurrently", func(t *testing.T) {
		f, sub := newResubscribeFixture(t)
		f.discord.SetMember(testGuildID, "m1", testOldRoleID)
		f.startCampaign(t, nil)

		const clicks = 16
		results := make([]error, clicks)
		var wg sync.WaitGroup
		for i := 0; i < clicks; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := sub.Resubscribe(context.Background(), &dto.ResubscribeRequest{
					GuildID:  testGuildID,
					MemberID: "m1",
				})
				results[i] = err
			}(i)
		}
		wg.Wait()

		winners := 0
		for _, err := range results {
			if err == nil {
				winners++
				continue
			}
			assert.True(t, IsAlreadyResubscribed(err) || IsAlreadyMigrated(err), "unexpected error: %v", err)
		}
		assert.Equal(t, 1, winners)
		assert.Equal(t, int64(1), f.discord.GrantCalls.Load())

		campaign := f.repo.GetCampaign(testGuildID)
		require.NotNil(t, campaign)
		assert.Equal(t, []string{"m1"}, campaign.ResubscribedMembers)
	})

	t.Run("distinct members confirm concurrently", func(t *testing.T) {
		f, sub := newResubscribeFixture(t)
		const members = 10
		for i := 0; i < members; i++ {
			f.discord.SetMember(testGuildID, fmt.Sprintf("m%d", i), testOldRoleID)
		}
		f.startCampaign(t, nil)

		var wg sync.WaitGroup
		errs := make([]error, members)
		for i := 0; i < members; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := sub.Resubscribe(context.Background(), &dto.ResubscribeRequest{
					GuildID:  testGuildID,
					MemberID: fmt.Sprintf("m%d", i),
				})
				errs[i] = err
			}(i)
		}
		wg.Wait()

		for i, err := range errs {
			assert.NoError(t, err, "member m%d", i)
		}
		campaign := f.repo.GetCampaign(testGuildID)
		require.NotNil(t, campaign)
		assert.Len(t, campaign.ResubscribedMembers, members)
	})
}
