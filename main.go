package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"github.com/joho/godotenv"

	"github.com/danktimes/dankgo/dankgo"
	"github.com/danktimes/dankgo/dankgo/commands"
	"github.com/danktimes/dankgo/dankgo/database"
	"github.com/danktimes/dankgo/dankgo/database/repositories"
	"github.com/danktimes/dankgo/dankgo/game"
	"github.com/danktimes/dankgo/dankgo/game/settings"
	"github.com/danktimes/dankgo/dankgo/handlers"
	"github.com/danktimes/dankgo/dankgo/logger"
	"github.com/danktimes/dankgo/dankgo/metrics"
	"github.com/danktimes/dankgo/dankgo/migration"
	"github.com/danktimes/dankgo/dankgo/plugins"
	"github.com/danktimes/dankgo/dankgo/scheduler"
	"github.com/danktimes/dankgo/dankgo/services"
	"github.com/danktimes/dankgo/dankgo/transport"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting DankGo Discord Bot",
		slog.String("version", version),
		slog.String("commit", commit))

	_ = godotenv.Load()

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	shouldImportLegacy := flag.Bool("import-legacy", false, "Import chats from the legacy MongoDB store before starting")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := dankgo.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	if token := os.Getenv("DANKGO_TOKEN"); token != "" {
		cfg.Bot.Token = token
	}
	slog.Info("Configuration loaded successfully")

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()))
		os.Exit(-1)
	}
	slog.Info("Database ready",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	b := dankgo.New(*cfg, version, commit)
	b.DB = db
	b.ChatRepository = repositories.NewChatRepository(db.BunDB())

	// Registration phase: all templates and plugins in before any chat
	// exists. Both registries freeze afterwards.
	b.Templates = settings.NewDefaultRegistry()
	b.Templates.Freeze()

	b.Events = plugins.NewHost()
	if err := b.Events.Register(metrics.GameListener{}); err != nil {
		slog.Error("Failed to register metrics plugin", slog.Any("error", err))
		os.Exit(-1)
	}
	b.Events.Freeze()

	b.Chats = game.NewRegistry(b.Templates, b.Events)
	b.State = services.NewStateService(b.ChatRepository, b.Chats, b.Templates, b.Events)

	if *shouldImportLegacy {
		migrator := migration.NewMigrator(b.ChatRepository)
		switch {
		case cfg.Legacy.MongoURI != "":
			if err := migrator.UseMongo(ctx, cfg.Legacy.MongoURI, cfg.Legacy.Database); err != nil {
				slog.Error("Legacy MongoDB unreachable", slog.Any("error", err))
				os.Exit(-1)
			}
			err = migrator.MigrateFromMongo(ctx)
		case cfg.Legacy.DumpPath != "":
			err = migrator.MigrateFromDump(ctx, cfg.Legacy.DumpPath)
		default:
			slog.Error("-import-legacy needs legacy.mongo_uri or legacy.dump_path in the config")
			os.Exit(-1)
		}
		if err != nil {
			slog.Error("Legacy import failed", slog.Any("error", err))
			os.Exit(-1)
		}
	}

	if err := b.State.RestoreAll(ctx); err != nil {
		slog.Error("Failed to restore chat state", slog.Any("error", err))
		os.Exit(-1)
	}
	metrics.ChatsTracked.Set(float64(b.Chats.Len()))

	b.ImageService = services.NewLeaderboardImageService()

	h := handler.New()
	h.Command("/version", commands.VersionHandler(b))
	h.Command("/start", handlers.WrapWithLogging("start", commands.StartHandler(b)))
	h.Command("/stop", handlers.WrapWithLogging("stop", commands.StopHandler(b)))
	h.Command("/resetchat", handlers.WrapWithLogging("resetchat", commands.ResetChatHandler(b)))
	h.Command("/danktime", handlers.WrapWithLogging("danktime", commands.DankTimeHandler(b)))
	h.Command("/settings", handlers.WrapWithLogging("settings", commands.SettingsHandler(b)))
	h.Command("/leaderboard", handlers.WrapWithLogging("leaderboard", commands.LeaderboardHandler(b)))

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady), handlers.MessageHandler(b)); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err))
		os.Exit(-1)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	b.Transport = transport.NewDiscord(b.Client, b)
	b.Scheduler = scheduler.New(b.Chats, b.Transport, b.Events)
	b.Scheduler.OnNightlyDone(func(ctx context.Context) {
		if err := b.State.SaveAll(ctx); err != nil {
			slog.Error("Post-nightly save incomplete", slog.Any("error", err))
		}
	})

	if cfg.Metrics.Enabled {
		go metrics.Serve(cfg.Metrics.Port)
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	if cfg.Backup.Enabled {
		backupService, err := services.NewBackupService(
			cfg.Backup.Key, cfg.Backup.Secret, cfg.Backup.Region, cfg.Backup.Bucket, b.Chats)
		if err != nil {
			slog.Error("Failed to initialize backup service", slog.Any("error", err))
			os.Exit(-1)
		}
		go backupService.Run(runCtx, time.Duration(cfg.Backup.IntervalHours)*time.Hour)
	}

	b.State.StartAutosave(runCtx, time.Duration(cfg.Game.AutosaveMinutes)*time.Minute)

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds))
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err))
		}
	}

	gwCtx, gwCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer gwCancel()
	if err = b.Client.OpenGateway(gwCtx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err))
		os.Exit(-1)
	}

	// Today's random dank times and timers, then the recurring midnight
	// batch.
	b.Scheduler.Bootstrap()
	go b.Scheduler.RunNightly(runCtx)

	slog.Info("Bot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s

	slog.Info("Shutting down bot...")
	runCancel()
	b.Events.FireShutdown()
	b.Scheduler.Shutdown()
	b.State.StopAutosave()

	saveCtx, saveCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer saveCancel()
	if err := b.State.SaveAll(saveCtx); err != nil {
		slog.Error("Final save incomplete", slog.Any("error", err))
	}
}
