package handlers

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	businessflow "github.com/lemurdu20/LeMuRobot/business_flow"
)

func TestCommandDefinitions(t *testing.T) {
	defs := CommandDefinitions()
	require.Len(t, defs, 2)

	byName := make(map[string]*discordgo.ApplicationCommand, len(defs))
	for _, def := range defs {
		byName[def.Name] = def
	}

	t.Run("campagne", func(t *testing.T) {
		cmd := byName[commandCampagne]
		require.NotNil(t, cmd)
		require.NotNil(t, cmd.DefaultMemberPermissions)
		assert.Equal(t, int64(discordgo.PermissionManageRoles), *cmd.DefaultMemberPermissions)

		subs := make(map[string]*discordgo.ApplicationCommandOption, len(cmd.Options))
		for _, opt := range cmd.Options {
			assert.Equal(t, discordgo.ApplicationCommandOptionSubCommand, opt.Type)
			subs[opt.Name] = opt
		}
		require.Contains(t, subs, subcommandStart)
		require.Contains(t, subs, subcommandEnd)
		require.Contains(t, subs, subcommandStatus)
		require.Contains(t, subs, subcommandRelance)

		start := subs[subcommandStart]
		require.Len(t, start.Options, 4)
		assert.True(t, start.Options[0].Required)
		assert.True(t, start.Options[1].Required)
		assert.True(t, start.Options[2].Required)
		assert.False(t, start.Options[3].Required)

		end := subs[subcommandEnd]
		require.Len(t, end.Options, 1)
		require.Len(t, end.Options[0].Choices, 2)
	})

	t.Run("config", func(t *testing.T) {
		cmd := byName[commandConfig]
		require.NotNil(t, cmd)
		require.Len(t, cmd.Options, 1)
		assert.Equal(t, subcommandLogs, cmd.Options[0].Name)
	})
}

func TestMessageCooldown(t *testing.T) {
	msg := messageCooldown(&businessflow.CooldownError{RemainingMinutes: 3})
	assert.Contains(t, msg, "3 minute(s)")
}
