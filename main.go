// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/retrobot/cliparse"
	"github.com/danielhkuo/retrobot/conversation"
	"github.com/danielhkuo/retrobot/db"
	"github.com/danielhkuo/retrobot/handlers"
	"github.com/danielhkuo/retrobot/metrics"
	"github.com/danielhkuo/retrobot/questions"
	"github.com/danielhkuo/retrobot/retro"
	"github.com/danielhkuo/retrobot/router"
	"github.com/danielhkuo/retrobot/session"
	"github.com/danielhkuo/retrobot/slackbot"
)

func main() {
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	slog.SetDefault(slog.New(handler))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, handler); err != nil {
		slog.Error("retrobot stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("retrobot stopped")
}

func run(ctx context.Context, cfg cliparse.Config, logHandler slog.Handler) error {
	m := metrics.New()

	// Archive is optional
	var archive *db.Archive
	if cfg.DatabaseURL != "" {
		conn, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer conn.Close()
		archive = db.NewArchive(conn, cfg.ArchiveSalt)
	} else {
		slog.Info("DATABASE_URL not set, archive disabled")
	}

	var catalog *questions.Catalog
	if cfg.QuestionsFile != "" {
		loaded, err := questions.Load(cfg.QuestionsFile)
		if err != nil {
			return err
		}
		catalog = loaded
		slog.Info("Loaded question sets", "file", cfg.QuestionsFile, "sets", catalog.Sets())
	} else {
		catalog = questions.Default()
	}

	api := slack.New(cfg.SlackBotToken,
		slack.OptionAppLevelToken(cfg.SlackAppToken),
		slack.OptionLog(slog.NewLogLogger(logHandler, slog.LevelDebug)),
	)
	auth, err := api.AuthTestContext(ctx)
	if err != nil {
		return err
	}
	slog.Info("Authenticated with Slack", "team", auth.Team, "bot_user", auth.UserID)

	socket := socketmode.New(api,
		socketmode.OptionLog(slog.NewLogLogger(logHandler, slog.LevelDebug)),
	)

	retroCfg := retro.Config{
		Sessions:      session.NewStore(cfg.ReactionKinds, m),
		Conversations: conversation.NewStore(),
		Questions:     catalog,
		Chat:          slackbot.NewClient(api, cfg.SlackRatePerSec),
		Metrics:       m,
		DefaultTopN:   cfg.DefaultTopN,
		AllowEmpty:    cfg.ZeroParticipantPolicy == cliparse.ZeroParticipantsAllow,
	}
	// A nil *db.Archive must not become a non-nil interface
	var history handlers.HistorySource
	if archive != nil {
		retroCfg.Archive = archive
		history = archive
	}
	coordinator := retro.New(retroCfg)

	server := &http.Server{
		Handler:           router.NewRouter(coordinator, history, m),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	go func() {
		slog.Info("Listening", "port", cfg.Port)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Ops server closed", "error", err)
		}
	}()

	bot := slackbot.NewBot(socket, coordinator, auth.UserID)
	return bot.Run(ctx)
}

func openDatabase(cfg cliparse.Config) (*sql.DB, error) {
	driver := "sqlite"
	if cfg.DatabaseType == "postgres" {
		driver = "postgres"
	}

	conn, err := sql.Open(driver, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		slog.Error("database ping failed", "error", err)
		return nil, err
	}

	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		slog.Error("schema creation failed", "error", err)
		return nil, err
	}
	slog.Info("Archive schema ready", "type", cfg.DatabaseType)
	return conn, nil
}
