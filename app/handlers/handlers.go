// Package handlers wires Discord interactions to the business flows.
package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/lemurdu20/LeMuRobot/app/middleware"
	businessflow "github.com/lemurdu20/LeMuRobot/business_flow"
)

// interactionTimeout bounds the work done for a single interaction. Discord
// invalidates interaction tokens after 15 minutes; role sweeps must finish
// well before that.
const interactionTimeout = 10 * time.Minute

// BotHandler dispatches slash commands and button clicks to the flows.
type BotHandler struct {
	campaignFlow businessflow.CampaignFlow
	resubFlow    businessflow.ResubscribeFlow
	configFlow   businessflow.ConfigFlow
	limiter      *middleware.CommandRateLimiter
	logger       *log.Logger
}

// NewBotHandler creates the interaction dispatcher.
func NewBotHandler(
	campaignFlow businessflow.CampaignFlow,
	resubFlow businessflow.ResubscribeFlow,
	configFlow businessflow.ConfigFlow,
	limiter *middleware.CommandRateLimiter,
	logger *log.Logger,
) *BotHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &BotHandler{
		campaignFlow: campaignFlow,
		resubFlow:    resubFlow,
		configFlow:   configFlow,
		limiter:      limiter,
		logger:       logger,
	}
}

// Register attaches the handler to the session.
func (h *BotHandler) Register(session *discordgo.Session) {
	session.AddHandler(h.onReady)
	session.AddHandler(h.onInteractionCreate)
}

func (h *BotHandler) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	h.logger.Printf("connected as %s#%s (%d guilds)", r.User.Username, r.User.Discriminator, len(r.Guilds))
}

func (h *BotHandler) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" || i.Member == nil {
		return
	}

	userID := i.Member.User.ID
	if !h.limiter.Allow(userID) {
		h.respondEphemeral(s, i, "⏳ Trop de commandes d'un coup, patiente une minute.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		h.handleCommand(ctx, s, i)
	case discordgo.InteractionMessageComponent:
		h.handleComponent(ctx, s, i)
	}
}

func (h *BotHandler) handleCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	switch data.Name {
	case commandCampagne:
		h.handleCampagne(ctx, s, i)
	case commandConfig:
		h.handleConfig(ctx, s, i)
	}
}

func (h *BotHandler) handleComponent(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.MessageComponentData().CustomID {
	case buttonResubscribe:
		h.handleResubscribeButton(ctx, s, i)
	case buttonStatusResubscribed, buttonStatusMissing:
		h.handleStatusListButton(ctx, s, i)
	}
}

// respondEphemeral answers an interaction with a message only the caller
// sees.
func (h *BotHandler) respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		h.logger.Printf("failed to respond to interaction: %v", err)
	}
}

// deferEphemeral acknowledges an interaction whose work may exceed the 3s
// response deadline. The final answer goes through editResponse.
func (h *BotHandler) deferEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		h.logger.Printf("failed to defer interaction: %v", err)
		return false
	}
	return true
}

func (h *BotHandler) editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content})
	if err != nil {
		h.logger.Printf("failed to edit interaction response: %v", err)
	}
}

func (h *BotHandler) editResponseEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	edit := &discordgo.WebhookEdit{Embeds: &[]*discordgo.MessageEmbed{embed}}
	if components != nil {
		edit.Components = &components
	}
	if _, err := s.InteractionResponseEdit(i.Interaction, edit); err != nil {
		h.logger.Printf("failed to edit interaction response: %v", err)
	}
}

// userMessage maps flow errors to something presentable in French. Unknown
// errors get a generic line and a log entry.
func (h *BotHandler) userMessage(err error) string {
	var ce *businessflow.CooldownError
	if errors.As(err, &ce) {
		return messageCooldown(ce)
	}
	var be *businessflow.BusinessError
	if errors.As(err, &be) {
		return "❌ " + be.Message
	}
	h.logger.Printf("unexpected flow error: %v", err)
	return "❌ Une erreur inattendue s'est produite. Reessaie plus tard."
}
