package handlers

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/lemurdu20/LeMuRobot/app/dto"
	"github.com/lemurdu20/LeMuRobot/app/middleware"
	"github.com/lemurdu20/LeMuRobot/utils"
)

func (h *BotHandler) handleResubscribeButton(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !h.deferEphemeral(s, i) {
		return
	}

	resp, err := h.resubFlow.Resubscribe(ctx, &dto.ResubscribeRequest{
		GuildID:  i.GuildID,
		MemberID: i.Member.User.ID,
	})
	if err != nil {
		middleware.RecordConfirmation("rejected")
		h.editResponse(s, i, h.userMessage(err))
		return
	}
	middleware.RecordConfirmation("ok")

	h.editResponse(s, i, fmt.Sprintf("🎉 Bienvenue dans la nouvelle saison ! Tu as recu le role %s.",
		utils.RoleMention(resp.NewRoleID)))
}

// handleStatusListButton shows the confirmed or missing member list behind
// the status buttons. Long lists are truncated to fit the embed limit.
func (h *BotHandler) handleStatusListButton(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !h.deferEphemeral(s, i) {
		return
	}

	status, err := h.campaignFlow.CampaignStatus(ctx, &dto.CampaignStatusRequest{GuildID: i.GuildID})
	if err != nil {
		h.editResponse(s, i, h.userMessage(err))
		return
	}

	var title string
	var memberIDs []string
	var color int
	if i.MessageComponentData().CustomID == buttonStatusResubscribed {
		title = fmt.Sprintf("✅ Membres reinscrits (%d)", status.ResubscribedCount)
		memberIDs = status.ResubscribedMembers
		color = utils.ColorGreen
	} else {
		title = fmt.Sprintf("⏳ Membres manquants (%d)", status.PendingCount)
		memberIDs = status.PendingMembers
		color = utils.ColorRed
	}

	description := "Personne pour le moment."
	if len(memberIDs) > 0 {
		mentions := make([]string, len(memberIDs))
		for j, memberID := range memberIDs {
			mentions[j] = utils.Mention(memberID)
		}
		var truncated bool
		description, truncated = utils.TruncateList(mentions)
		if truncated {
			description += "\n… liste tronquee"
		}
	}

	h.editResponseEmbed(s, i, &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
	}, nil)
}
