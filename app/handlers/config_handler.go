package handlers

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/lemurdu20/LeMuRobot/app/middleware"
	"github.com/lemurdu20/LeMuRobot/utils"
)

func (h *BotHandler) handleConfig(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 || options[0].Name != subcommandLogs {
		return
	}

	channel := subOption(options[0], "salon").ChannelValue(s)

	err := h.configFlow.SetLogChannel(ctx, i.GuildID, channel.ID, i.Member.User.ID)
	if err != nil {
		middleware.RecordCommand(commandConfig+" "+subcommandLogs, "error")
		h.respondEphemeral(s, i, h.userMessage(err))
		return
	}
	middleware.RecordCommand(commandConfig+" "+subcommandLogs, "ok")

	h.respondEphemeral(s, i, fmt.Sprintf("✅ Les logs du bot seront envoyes dans %s.", utils.ChannelMention(channel.ID)))
}
