package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/lemurdu20/LeMuRobot/app/dto"
	"github.com/lemurdu20/LeMuRobot/app/middleware"
	"github.com/lemurdu20/LeMuRobot/models"
	"github.com/lemurdu20/LeMuRobot/utils"
)

func (h *BotHandler) handleCampagne(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}
	sub := options[0]

	switch sub.Name {
	case subcommandStart:
		h.handleStart(ctx, s, i, sub)
	case subcommandEnd:
		h.handleEnd(ctx, s, i, sub)
	case subcommandStatus:
		h.handleStatus(ctx, s, i)
	case subcommandRelance:
		h.handleRelance(ctx, s, i, sub)
	}
}

func subOption(sub *discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range sub.Options {
		if opt.Name == name {
			return opt
		}
	}
	return nil
}

func (h *BotHandler) handleStart(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	if !h.deferEphemeral(s, i) {
		return
	}

	oldRole := subOption(sub, "ancien_role").RoleValue(s, i.GuildID)
	newRole := subOption(sub, "nouveau_role").RoleValue(s, i.GuildID)
	channel := subOption(sub, "salon").ChannelValue(s)

	req := &dto.StartCampaignRequest{
		GuildID:     i.GuildID,
		OldRoleID:   oldRole.ID,
		NewRoleID:   newRole.ID,
		OldRoleName: oldRole.Name,
		NewRoleName: newRole.Name,
		ChannelID:   channel.ID,
		InitiatorID: i.Member.User.ID,
	}
	if opt := subOption(sub, "duree_jours"); opt != nil {
		days := int(opt.IntValue())
		req.DurationDays = &days
	}

	resp, err := h.campaignFlow.StartCampaign(ctx, req)
	if err != nil {
		middleware.RecordCommand(commandCampagne+" "+subcommandStart, "error")
		h.editResponse(s, i, h.userMessage(err))
		return
	}
	middleware.RecordCommand(commandCampagne+" "+subcommandStart, "ok")

	msg := fmt.Sprintf("✅ Campagne lancee dans %s : %s → %s.",
		utils.ChannelMention(resp.Campaign.ChannelID),
		utils.RoleMention(resp.Campaign.OldRoleID),
		utils.RoleMention(resp.Campaign.NewRoleID))
	if resp.Campaign.EndsAt != nil {
		msg += fmt.Sprintf(" Fin automatique %s.", utils.RelativeTimestamp(*resp.Campaign.EndsAt))
	}
	h.editResponse(s, i, msg)
}

func (h *BotHandler) handleEnd(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	if !h.deferEphemeral(s, i) {
		return
	}

	action := models.EndActionDemote
	if opt := subOption(sub, "action"); opt != nil && opt.StringValue() == endChoiceKick {
		action = models.EndActionKick
	}

	resp, err := h.campaignFlow.EndCampaign(ctx, &dto.EndCampaignRequest{
		GuildID:     i.GuildID,
		Action:      action,
		InitiatorID: i.Member.User.ID,
	})
	if err != nil {
		middleware.RecordCommand(commandCampagne+" "+subcommandEnd, "error")
		h.editResponse(s, i, h.userMessage(err))
		return
	}
	middleware.RecordCommand(commandCampagne+" "+subcommandEnd, "ok")
	middleware.RecordCampaignEnded(action.String(), false)

	var outcome string
	if action == models.EndActionKick {
		outcome = fmt.Sprintf("%d expulses", resp.ProcessedCount)
	} else {
		outcome = fmt.Sprintf("%d ont perdu leur role", resp.ProcessedCount)
	}
	msg := fmt.Sprintf("🏁 Campagne terminee : %d membres reinscrits, %s.", resp.ResubscribedCount, outcome)
	if resp.ErrorCount > 0 {
		msg += fmt.Sprintf(" ⚠️ %d action(s) en echec, consulte les logs.", resp.ErrorCount)
	}
	h.editResponse(s, i, msg)
}

func (h *BotHandler) handleStatus(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !h.deferEphemeral(s, i) {
		return
	}

	resp, err := h.campaignFlow.CampaignStatus(ctx, &dto.CampaignStatusRequest{GuildID: i.GuildID})
	if err != nil {
		middleware.RecordCommand(commandCampagne+" "+subcommandStatus, "error")
		h.editResponse(s, i, h.userMessage(err))
		return
	}
	middleware.RecordCommand(commandCampagne+" "+subcommandStatus, "ok")

	var b strings.Builder
	fmt.Fprintf(&b, "**Campagne en cours** : %s → %s\n\n",
		utils.RoleMention(resp.OldRoleID), utils.RoleMention(resp.NewRoleID))
	fmt.Fprintf(&b, "✅ Reinscrits : **%d**\n", resp.ResubscribedCount)
	fmt.Fprintf(&b, "⏳ En attente : **%d**\n", resp.PendingCount)
	fmt.Fprintf(&b, "📊 Progression : **%d%%** (%d/%d)\n", resp.Percentage, resp.ResubscribedCount, resp.Total)
	if resp.EndsAt != nil {
		fmt.Fprintf(&b, "🗓️ Fin automatique %s\n", utils.RelativeTimestamp(*resp.EndsAt))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Avancement de la reinscription",
		Description: b.String(),
		Color:       utils.ColorBlurple,
	}
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				CustomID: buttonStatusResubscribed,
				Label:    "Voir les reinscrits",
				Style:    discordgo.SecondaryButton,
			},
			discordgo.Button{
				CustomID: buttonStatusMissing,
				Label:    "Voir les manquants",
				Style:    discordgo.SecondaryButton,
			},
		}},
	}
	h.editResponseEmbed(s, i, embed, components)
}

func (h *BotHandler) handleRelance(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	if !h.deferEphemeral(s, i) {
		return
	}

	req := &dto.RelanceCampaignRequest{
		GuildID:     i.GuildID,
		InitiatorID: i.Member.User.ID,
	}
	if opt := subOption(sub, "message"); opt != nil {
		req.CustomMessage = opt.StringValue()
	}

	resp, err := h.campaignFlow.RelanceCampaign(ctx, req)
	if err != nil {
		middleware.RecordCommand(commandCampagne+" "+subcommandRelance, "error")
		h.editResponse(s, i, h.userMessage(err))
		return
	}
	middleware.RecordCommand(commandCampagne+" "+subcommandRelance, "ok")

	h.editResponse(s, i, fmt.Sprintf("🔔 Relance envoyee dans %s : %d membre(s) mentionnes en %d message(s).",
		utils.ChannelMention(resp.ChannelID), resp.PendingCount, resp.MessagesSent))
}
