package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"mediaBot/config"
	"mediaBot/handlers"
	"mediaBot/internal/health"
	"mediaBot/internal/netx"
	"mediaBot/services"
)

func main() {
	cfg, err := config.Load("config.env")
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("load configuration")
	}

	log := newLogger(cfg.LogLevel)

	if cfg.TelegramToken == "" {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN is not set")
	}

	extractor := services.NewYtDlpService(cfg.DownloadDir, cfg.Proxy, log)
	if err := extractor.CheckBinary(); err != nil {
		log.Fatal().Err(err).Msg("yt-dlp is not available")
	}

	client := netx.NewHTTPClient(cfg.Proxy, time.Duration(cfg.HTTPTimeout)*time.Second)
	api, err := tgbotapi.NewBotAPIWithClient(cfg.TelegramToken, tgbotapi.APIEndpoint, client)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to Telegram")
	}
	log.Info().Str("username", api.Self.UserName).Msg("bot connected")

	bot := handlers.NewBot(api, extractor, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.OnRender {
		srv := health.NewServer(cfg.Port, log)
		g.Go(func() error { return srv.Run(ctx) })
	}

	g.Go(func() error { return runUpdates(ctx, api, bot) })

	log.Info().Msg("🎬 bot is running, send a link")
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("bot stopped")
	}
	log.Info().Msg("shutdown complete")
}

// runUpdates long-polls Telegram and hands every update to its own
// goroutine: interactions are independent, and one user's download must not
// block another user's link.
func runUpdates(ctx context.Context, api *tgbotapi.BotAPI, bot *handlers.Bot) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30 // poll window; the client timeout in config sits well above it
	updates := api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go bot.HandleUpdate(ctx, update)
		}
	}
}

func newLogger(level string) zerolog.Logger {
	lvl := zerolog.InfoLevel
	if level != "" {
		if parsed, err := zerolog.ParseLevel(level); err == nil {
			lvl = parsed
		}
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).With().Timestamp().Logger()
}
