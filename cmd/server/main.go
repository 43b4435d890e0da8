package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cbodonnell/yahtzee/pkg/api"
	"github.com/cbodonnell/yahtzee/pkg/clients"
	"github.com/cbodonnell/yahtzee/pkg/game"
	"github.com/cbodonnell/yahtzee/pkg/game/types"
	"github.com/cbodonnell/yahtzee/pkg/leaderboard"
	"github.com/cbodonnell/yahtzee/pkg/log"
	"github.com/cbodonnell/yahtzee/pkg/network"
	"github.com/cbodonnell/yahtzee/pkg/queue"
	"github.com/cbodonnell/yahtzee/pkg/version"
	"github.com/cbodonnell/yahtzee/pkg/workers"
	"github.com/spf13/cobra"
)

const (
	eventQueueSize  = 1024
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg := &Config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}

func run(ctx context.Context, cfg *Config) error {
	parsedLogLevel, err := log.ParseLogLevel(cfg.logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting yahtzee server version %s", version.Get())
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	repository, err := openRepository(ctx, cfg.databaseURL)
	if err != nil {
		panic(fmt.Sprintf("Failed to open repository: %v", err))
	}
	defer repository.Close(context.Background())

	var session *types.Session
	if cfg.restore {
		session, err = restoreSession(ctx, repository)
		if err != nil {
			log.Error("Starting with a new session: %v", err)
		}
	}

	clientManager := clients.NewClientManager()
	eventQueue := queue.NewInMemoryQueue(eventQueueSize)

	broadcaster := workers.NewBroadcastWorker(workers.NewBroadcastWorkerOptions{
		ClientManager: clientManager,
	})

	updater := leaderboard.NewUpdater(leaderboard.NewUpdaterOptions{
		UserStore:   repository,
		RecordStore: repository,
	})

	sessionManager := game.NewSessionManager(game.NewSessionManagerOptions{
		UserStore:       repository,
		TranscriptStore: repository,
		Leaderboard:     updater,
		Publisher:       broadcaster,
		StrictTurns:     cfg.strictTurns,
		MaxRollsPerTurn: cfg.maxRolls,
		Session:         session,
	})

	eventWorker := workers.NewEventWorker(workers.NewEventWorkerOptions{
		EventQueue: eventQueue,
		Session:    sessionManager,
	})
	connectionEventWorker := workers.NewConnectionEventWorker(workers.NewConnectionEventWorkerOptions{
		ClientManager: clientManager,
		Snapshots:     sessionManager,
		Broadcaster:   broadcaster,
	})
	saveSessionWorker := workers.NewSaveSessionWorker(workers.NewSaveSessionWorkerOptions{
		Repository: repository,
		Snapshots:  sessionManager,
		Interval:   cfg.saveInterval,
	})

	var wg sync.WaitGroup
	for _, w := range []interface{ Start(context.Context) }{
		broadcaster,
		eventWorker,
		connectionEventWorker,
		saveSessionWorker,
	} {
		wg.Add(1)
		go func(w interface{ Start(context.Context) }) {
			defer wg.Done()
			w.Start(ctx)
		}(w)
	}

	wsServer := network.NewWSServer(network.NewWSServerOptions{
		ClientManager: clientManager,
		EventQueue:    eventQueue,
		AllowOrigin:   cfg.allowOrigin,
	})

	var tlsConfig *api.TLSConfig
	if cfg.tlsCert != "" {
		tlsConfig = &api.TLSConfig{
			CertFile: cfg.tlsCert,
			KeyFile:  cfg.tlsKey,
		}
	}
	apiServer := api.NewAPIServer(api.NewAPIServerOptions{
		Port:        cfg.port,
		TLS:         tlsConfig,
		AllowOrigin: cfg.allowOrigin,
		PublicURL:   cfg.publicURL,
		Session:     sessionManager,
		UserStore:   repository,
		HallOfFame:  updater,
		WSServer:    wsServer,
	})
	serverErr := make(chan error, 1)
	go func() {
		if err := apiServer.Start(); err != nil {
			serverErr <- err
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop API server: %v", err)
	}
	wg.Wait()

	select {
	case err := <-serverErr:
		return err
	default:
		return nil
	}
}
