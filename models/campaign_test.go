package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCampaign() *Campaign {
	endsAt := time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)
	return &Campaign{
		UUID:                uuid.New(),
		OldRoleID:           "old",
		NewRoleID:           "new",
		ChannelID:           "chan",
		MessageID:           "msg",
		StartedAt:           time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		EndsAt:              &endsAt,
		ResubscribedMembers: []string{"m1", "m2"},
	}
}

func TestCampaignHasResubscribed(t *testing.T) {
	c := testCampaign()
	assert.True(t, c.HasResubscribed("m1"))
	assert.False(t, c.HasResubscribed("m3"))
}

func TestCampaignIsExpired(t *testing.T) {
	c := testCampaign()

	assert.False(t, c.IsExpired(c.EndsAt.Add(-time.Second)))
	assert.True(t, c.IsExpired(*c.EndsAt))
	assert.True(t, c.IsExpired(c.EndsAt.Add(time.Second)))

	c.EndsAt = nil
	assert.False(t, c.IsExpired(time.Now().Add(100*365*24*time.Hour)))
}

func TestCampaignClone(t *testing.T) {
	c := testCampaign()
	clone := c.Clone()

	require.Equal(t, c, clone)

	clone.ResubscribedMembers[0] = "tampered"
	*clone.EndsAt = clone.EndsAt.Add(time.Hour)
	assert.Equal(t, "m1", c.ResubscribedMembers[0])
	assert.Equal(t, time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC), *c.EndsAt)

	var nilCampaign *Campaign
	assert.Nil(t, nilCampaign.Clone())
}

func TestCampaignJSONShape(t *testing.T) {
	c := testCampaign()
	raw, err := json.Marshal(c)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, key := range []string{"uuid", "oldRoleId", "newRoleId", "channelId", "messageId", "startedAt", "endsAt", "resubscribedMembers"} {
		assert.Contains(t, doc, key)
	}
}

func TestEndAction(t *testing.T) {
	assert.True(t, EndActionDemote.Valid())
	assert.True(t, EndActionKick.Valid())
	assert.False(t, EndAction("ban").Valid())
	assert.Equal(t, "demote", EndActionDemote.String())
}

func TestGuildSettingsClone(t *testing.T) {
	last := time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC)
	s := GuildSettings{
		LogChannelID:    "logs",
		LastRelanceAt:   &last,
		CurrentCampaign: testCampaign(),
	}
	clone := s.Clone()
	require.Equal(t, s, clone)

	*clone.LastRelanceAt = last.Add(time.Hour)
	clone.CurrentCampaign.ResubscribedMembers[0] = "tampered"
	assert.Equal(t, last, *s.LastRelanceAt)
	assert.Equal(t, "m1", s.CurrentCampaign.ResubscribedMembers[0])
}

func TestDataStoreGuildsWithCampaign(t *testing.T) {
	store := NewDataStore()
	store.Guilds["with"] = GuildSettings{CurrentCampaign: testCampaign()}
	store.Guilds["without"] = GuildSettings{LogChannelID: "logs"}

	assert.Equal(t, []string{"with"}, store.GuildsWithCampaign())
}
