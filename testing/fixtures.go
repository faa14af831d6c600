// Package testing provides shared fixtures for exercising the file store and flows
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/lemurdu20/LeMuRobot/models"
	"github.com/lemurdu20/LeMuRobot/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct{}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures() *TestFixtures {
	return &TestFixtures{}
}

// RandomSnowflake returns a plausible Discord snowflake ID.
func (tf *TestFixtures) RandomSnowflake() string {
	return fmt.Sprintf("%018d", rand.Int63n(900000000000000000)+100000000000000000)
}

// CreateTestCampaign builds a campaign that started yesterday with the given
// number of confirmed members.
func (tf *TestFixtures) CreateTestCampaign(confirmed int) *models.Campaign {
	members := make([]string, confirmed)
	for i := range members {
		members[i] = tf.RandomSnowflake()
	}
	return &models.Campaign{
		UUID:                uuid.New(),
		OldRoleID:           tf.RandomSnowflake(),
		NewRoleID:           tf.RandomSnowflake(),
		ChannelID:           tf.RandomSnowflake(),
		MessageID:           tf.RandomSnowflake(),
		StartedAt:           utils.UTCNow().Add(-24 * time.Hour),
		ResubscribedMembers: members,
	}
}

// CreateExpiringCampaign builds a campaign whose deadline is endsIn from now.
// A negative duration yields an already-expired campaign.
func (tf *TestFixtures) CreateExpiringCampaign(endsIn time.Duration) *models.Campaign {
	campaign := tf.CreateTestCampaign(0)
	campaign.EndsAt = utils.UTCNowAddPtr(endsIn)
	return campaign
}

// CreateGuildSettings builds settings with a log channel and an active
// campaign.
func (tf *TestFixtures) CreateGuildSettings(confirmed int) models.GuildSettings {
	return models.GuildSettings{
		LogChannelID:    tf.RandomSnowflake(),
		CurrentCampaign: tf.CreateTestCampaign(confirmed),
	}
}
