package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lemurdu20/LeMuRobot/repository"
)

func TestChannelNotifier(t *testing.T) {
	const guildID = "g1"
	const logChannelID = "log-chan"

	setup := func(t *testing.T) (*repository.FileGuildSettingsRepository, *MockDiscord, *ChannelNotifier) {
		t.Helper()
		repo := repository.NewFileGuildSettingsRepository(t.TempDir(), nil)
		discord := NewMockDiscord()
		return repo, discord, NewChannelNotifier(repo, discord, discord, nil)
	}

	t.Run("posts embed to configured channel", func(t *testing.T) {
		repo, discord, notifier := setup(t)
		require.NoError(t, repo.SetLogChannel(guildID, logChannelID))

		require.NoError(t, notifier.LogToChannel(context.Background(), guildID, "campagne lancee"))

		msgs := discord.MessagesIn(logChannelID)
		require.Len(t, msgs, 1)
		assert.Equal(t, "campagne lancee", msgs[0])
	})

	t.Run("no channel configured falls back silently", func(t *testing.T) {
		_, discord, notifier := setup(t)

		require.NoError(t, notifier.LogToChannel(context.Background(), guildID, "hello"))
		assert.Empty(t, discord.MessagesIn(logChannelID))
	})

	t.Run("unusable channel falls back silently", func(t *testing.T) {
		repo, discord, notifier := setup(t)
		require.NoError(t, repo.SetLogChannel(guildID, logChannelID))
		discord.ChannelCheck = ChannelCheckResult{Reason: "missing permissions"}

		require.NoError(t, notifier.LogToChannel(context.Background(), guildID, "hello"))
		assert.Empty(t, discord.MessagesIn(logChannelID))
	})

	t.Run("post failure never propagates", func(t *testing.T) {
		repo, discord, notifier := setup(t)
		require.NoError(t, repo.SetLogChannel(guildID, logChannelID))
		discord.PostMessageErr = assert.AnError

		assert.NoError(t, notifier.LogToChannel(context.Background(), guildID, "hello"))
	})
}
