package handlers

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	businessflow "github.com/lemurdu20/LeMuRobot/business_flow"
	"github.com/lemurdu20/LeMuRobot/utils"
)

const (
	commandCampagne = "campagne"
	commandConfig   = "config"

	subcommandStart   = "lancer"
	subcommandEnd     = "fin"
	subcommandStatus  = "statut"
	subcommandRelance = "relance"
	subcommandLogs    = "logs"

	endChoiceDemote = "retrait"
	endChoiceKick   = "expulsion"

	buttonResubscribe        = utils.ButtonIDResubscribe
	buttonStatusResubscribed = utils.ButtonIDStatusResubscribed
	buttonStatusMissing      = utils.ButtonIDStatusMissing
)

func messageCooldown(ce *businessflow.CooldownError) string {
	return fmt.Sprintf("⏳ Une relance a deja ete envoyee recemment. Attends encore %d minute(s).", ce.RemainingMinutes)
}

// CommandDefinitions describes the slash commands the bot registers.
func CommandDefinitions() []*discordgo.ApplicationCommand {
	manageRoles := int64(discordgo.PermissionManageRoles)
	minDuration := float64(1)
	maxDuration := float64(utils.CampaignMaxDurationDays)

	return []*discordgo.ApplicationCommand{
		{
			Name:                     commandCampagne,
			Description:              "Gestion des campagnes de reinscription",
			DefaultMemberPermissions: &manageRoles,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subcommandStart,
					Description: "Lancer une campagne de reinscription",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "ancien_role",
							Description: "Role de la saison qui se termine",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "nouveau_role",
							Description: "Role de la nouvelle saison",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionChannel,
							Name:        "salon",
							Description: "Salon ou publier le message de campagne",
							Required:    true,
							ChannelTypes: []discordgo.ChannelType{
								discordgo.ChannelTypeGuildText,
							},
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "duree_jours",
							Description: "Duree avant fin automatique (en jours)",
							MinValue:    &minDuration,
							MaxValue:    maxDuration,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subcommandEnd,
					Description: "Terminer la campagne en cours",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "action",
							Description: "Que faire des membres non reinscrits",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Retirer l'ancien role", Value: endChoiceDemote},
								{Name: "Expulser du serveur", Value: endChoiceKick},
							},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subcommandStatus,
					Description: "Voir l'avancement de la campagne",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subcommandRelance,
					Description: "Relancer les membres non reinscrits",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "message",
							Description: "Message personnalise pour la relance",
							MaxLength:   utils.CampaignCustomMessageMaxLength,
						},
					},
				},
			},
		},
		{
			Name:                     commandConfig,
			Description:              "Configuration du bot",
			DefaultMemberPermissions: &manageRoles,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subcommandLogs,
					Description: "Choisir le salon des logs du bot",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionChannel,
							Name:        "salon",
							Description: "Salon qui recevra les logs",
							Required:    true,
							ChannelTypes: []discordgo.ChannelType{
								discordgo.ChannelTypeGuildText,
							},
						},
					},
				},
			},
		},
	}
}

// RegisterCommands replaces the application's command set. With a guild ID
// the commands appear instantly in that guild, which is what you want in
// development; global registration can take up to an hour to propagate.
func RegisterCommands(session *discordgo.Session, appID, guildID string) error {
	_, err := session.ApplicationCommandBulkOverwrite(appID, guildID, CommandDefinitions())
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	return nil
}
