// Package main provides the entry point for the LeMuRobot re-enrollment bot
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"

	"github.com/lemurdu20/LeMuRobot/app/handlers"
	"github.com/lemurdu20/LeMuRobot/app/middleware"
	"github.com/lemurdu20/LeMuRobot/app/router"
	"github.com/lemurdu20/LeMuRobot/app/scheduler"
	"github.com/lemurdu20/LeMuRobot/app/services"
	businessflow "github.com/lemurdu20/LeMuRobot/business_flow"
	"github.com/lemurdu20/LeMuRobot/config"
	"github.com/lemurdu20/LeMuRobot/repository"
	"github.com/lemurdu20/LeMuRobot/utils"
)

// Application holds the wired components and their stop functions
type Application struct {
	config    *config.Config
	session   *discordgo.Session
	router    router.Router
	heartbeat *services.HeartbeatWriter
	expiry    *scheduler.CampaignScheduler
	logger    *log.Logger
	stopFuncs []func()
}

func main() {
	log.Println("Starting LeMuRobot...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.start(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	app.logger.Println("Shutting down gracefully...")
	app.shutdown()
	app.logger.Println("Shutdown complete")
}

func initializeApplication(cfg *config.Config) (*Application, error) {
	logger := utils.NewRotatingLogger(
		"lemurobot ",
		cfg.Logging.FilePath,
		cfg.Logging.MaxSizeMB,
		cfg.Logging.MaxBackups,
		cfg.Logging.MaxAgeDays,
		cfg.Logging.Compress,
	)

	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	repo := repository.NewFileGuildSettingsRepository(cfg.Storage.DataDir, logger)

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	discord := services.NewDiscordSessionService(session, logger)
	notifier := services.NewChannelNotifier(repo, discord, discord, logger)

	campaignFlow := businessflow.NewCampaignFlow(repo, discord, discord, discord, discord, notifier, logger)
	resubFlow := businessflow.NewResubscribeFlow(repo, discord, discord, discord, notifier, logger)
	configFlow := businessflow.NewConfigFlow(repo, discord, discord, logger)

	limiter := middleware.NewCommandRateLimiter()
	botHandler := handlers.NewBotHandler(campaignFlow, resubFlow, configFlow, limiter, logger)
	botHandler.Register(session)

	heartbeat := services.NewHeartbeatWriter(cfg.Storage.DataDir, logger)

	app := &Application{
		config:    cfg,
		session:   session,
		heartbeat: heartbeat,
		expiry:    scheduler.NewCampaignScheduler(repo, campaignFlow, logger, cfg.Scheduler.CheckInterval),
		logger:    logger,
	}

	if cfg.Server.Enabled {
		app.router = router.NewFiberRouter(heartbeat.Path(), logger)
		app.router.SetupRoutes()
	}

	return app, nil
}

// start opens the gateway connection, registers the slash commands, and
// launches the heartbeat, the expiry scheduler, and the health server. The
// heartbeat only ticks while the session is open, which is what makes its
// freshness a valid liveness signal.
func (app *Application) start() error {
	if err := app.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	app.stopFuncs = append(app.stopFuncs, app.heartbeat.Start(context.Background()))
	app.stopFuncs = append(app.stopFuncs, app.expiry.Start(context.Background()))

	if app.config.Discord.RegisterCommands {
		if err := handlers.RegisterCommands(app.session, app.config.Discord.AppID, app.config.Discord.GuildID); err != nil {
			app.session.Close()
			return err
		}
		app.logger.Println("slash commands registered")
	}

	if app.router != nil {
		go func() {
			if err := app.router.Start(app.config.ServerAddress()); err != nil {
				app.logger.Fatalf("health server failed: %v", err)
			}
		}()
	}

	return nil
}

func (app *Application) shutdown() {
	for _, stop := range app.stopFuncs {
		stop()
	}

	if app.router != nil {
		if err := app.router.Shutdown(); err != nil {
			app.logger.Printf("health server shutdown: %v", err)
		}
	}

	if err := app.session.Close(); err != nil {
		app.logger.Printf("discord session close: %v", err)
	}
}
