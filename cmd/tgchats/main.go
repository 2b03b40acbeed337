package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/blockedby/tgchats/internal/api"
	"github.com/blockedby/tgchats/internal/config"
	"github.com/blockedby/tgchats/internal/gotdengine"
	"github.com/blockedby/tgchats/internal/logger"
	"github.com/blockedby/tgchats/internal/nats"
	"github.com/blockedby/tgchats/internal/publisher"
	"github.com/blockedby/tgchats/internal/sessionstore"
	"github.com/blockedby/tgchats/internal/tdapi"
	"github.com/blockedby/tgchats/internal/telegram"
)

const version = "0.1.0"

type options struct {
	historyChat  int64
	historyLimit int
	resetSession bool
}

func main() {
	var opts options
	flag.Int64Var(&opts.historyChat, "history", 0, "print the history of this chat id after loading chats")
	flag.IntVar(&opts.historyLimit, "history-limit", 50, "number of messages printed with -history (0 for all)")
	flag.BoolVar(&opts.resetSession, "reset-session", false, "forget the stored session and log in again")
	flag.Parse()

	// 1. Load config
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration:\n%v\n", err)
		os.Exit(2)
	}

	// 2. Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()
	log.Info().Str("version", version).Msg("starting tgchats")

	// 3. Setup context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	if err := run(ctx, cfg, opts, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("tgchats failed")
		os.Exit(1)
	}
	log.Info().Msg("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, opts options, log *logger.Logger) error {
	// 4. Prepare directories
	for _, dir := range []string{cfg.SessionDir, cfg.DatabaseDir(), cfg.FilesDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	// 5. Open session storage
	db, err := sessionstore.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	store, err := sessionstore.New(db, log)
	if err != nil {
		return err
	}
	if opts.resetSession {
		if err := store.Reset(ctx); err != nil {
			return err
		}
		log.Info().Msg("stored session removed")
	}
	if cfg.TGSessionString != "" {
		if _, err := store.Seed(ctx, cfg.TGSessionString); err != nil {
			return err
		}
	}

	// 6. Connect to NATS
	var observer telegram.Observer
	if cfg.NatsURL != "" {
		nc, err := nats.New(ctx, cfg.NatsURL)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to nats, publishing disabled")
		} else {
			defer nc.Close()
			if err := nc.EnsureStream(ctx, nats.StreamName, []string{nats.StreamSubjects}); err != nil {
				log.Warn().Err(err).Msg("failed to ensure stream")
			}
			observer = publisher.NewNATSPublisher(nc, log)
		}
	}

	// 7. Create the session
	engine := gotdengine.New(gotdengine.Config{Storage: store, Logger: log})
	session := telegram.NewSession(engine, telegram.Options{
		Auth: telegram.AuthConfig{
			Parameters:  tdlibParameters(cfg),
			PhoneNumber: cfg.TGPhone,
			UseQR:       cfg.TGAuthMethod == config.AuthMethodQR,
		},
		Input: &telegram.StaticInput{
			CodeValue:     cfg.TGCode,
			PasswordValue: cfg.TGPassword,
			Fallback:      telegram.NewTerminalInput(os.Stdin, os.Stdout),
		},
		Observer: observer,
		Dispatcher: telegram.DispatcherConfig{
			Buffer:             cfg.UpdateBuffer,
			LogUpdateOptions:   cfg.LogUpdateOptions,
			LogConnectionState: cfg.LogConnectionState,
		},
		ChatPageSize: cfg.ChatPageSize,
		Logger:       log,
	})
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn().Err(err).Msg("close session")
		}
	}()

	// 8. Log in and classify chats
	user, err := session.Login(ctx)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	log.Info().Int64("user.id", user.ID).Str("username", user.Username).Msg("logged in")

	if err := session.LoadChats(ctx); err != nil {
		return err
	}
	printSummary(os.Stdout, session)

	if opts.historyChat != 0 {
		messages, err := session.LoadMessages(ctx, opts.historyChat, opts.historyLimit)
		if err != nil {
			return err
		}
		printHistory(os.Stdout, opts.historyChat, messages)
	}

	// 9. Serve the API until shutdown
	if cfg.HTTPPort == 0 {
		return nil
	}
	server := api.NewServer(cfg.HTTPPort, api.NewRouter(api.NewHandler(session, log)))
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("starting api server")
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	return nil
}

func tdlibParameters(cfg *config.Config) tdapi.SetTdlibParameters {
	return tdapi.SetTdlibParameters{
		UseTestDC:           cfg.TGUseTestDC,
		DatabaseDirectory:   cfg.DatabaseDir(),
		FilesDirectory:      cfg.FilesDir(),
		UseFileDatabase:     true,
		UseChatInfoDatabase: true,
		UseMessageDatabase:  true,
		UseSecretChats:      true,
		APIID:               cfg.TGApiID,
		APIHash:             cfg.TGApiHash,
		SystemLanguageCode:  "en",
		DeviceModel:         "Desktop",
		SystemVersion:       runtime.GOOS,
		ApplicationVersion:  version,
	}
}
