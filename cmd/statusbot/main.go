package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/EgorLis/serverstatusbot/internal/bot"
	"github.com/EgorLis/serverstatusbot/internal/config"
	"github.com/EgorLis/serverstatusbot/internal/discord"
	"github.com/EgorLis/serverstatusbot/internal/gamequery"
	"github.com/EgorLis/serverstatusbot/internal/instancelock"
	"github.com/EgorLis/serverstatusbot/internal/logging"
	"github.com/EgorLis/serverstatusbot/internal/metrics"
	"github.com/EgorLis/serverstatusbot/internal/opsserver"
	"github.com/EgorLis/serverstatusbot/internal/scheduler"
	"github.com/EgorLis/serverstatusbot/internal/status"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "statusbot: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	envCfg, err := config.LoadEnv()
	if err != nil {
		return err
	}

	log, logCloser, err := logging.New(envCfg.LogFile, logging.ParseLevel(envCfg.LogLevel), os.Stdout)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	slog.SetDefault(log)

	lock, err := instancelock.Acquire(envCfg.LockFile)
	if err != nil {
		if errors.Is(err, instancelock.ErrLocked) {
			log.Error("another instance is already running", "lock", envCfg.LockFile, "err", err)
		}
		return err
	}
	defer lock.Release()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	catalog := gamequery.DefaultCatalog()
	querier := gamequery.New(catalog, log,
		gamequery.WithProber(gamequery.ProtocolValve, gamequery.NewValveProber(envCfg.QueryTimeout, envCfg.QueryRetries)),
	)

	rest := discord.NewREST(envCfg.Token, discord.WithRESTLogger(log))
	gw := discord.NewGateway(envCfg.Token, discord.IntentGuilds, discord.WithGatewayLogger(log))

	store := status.NewStore()
	sched, err := scheduler.New(scheduler.Config{
		Interval:    envCfg.StatusInterval,
		PurgeDelay:  envCfg.PurgeDelay,
		ServerDelay: envCfg.ServerDelay,
	}, scheduler.Deps{
		Channel: rest,
		Querier: querier,
		Config:  config.Loader{Path: envCfg.ConfigPath},
		Games:   catalog,
		Store:   store,
		Metrics: m,
		Log:     log,
	})
	if err != nil {
		return err
	}

	registry := bot.NewRegistry().MustRegister(
		bot.NewCheckCommand(querier, catalog),
		bot.PingCommand{},
	)

	b, err := bot.New(bot.Options{
		AppID:     envCfg.ClientID,
		GuildID:   envCfg.ServerID,
		REST:      rest,
		Gateway:   gw,
		Registry:  registry,
		Scheduler: sched,
		Metrics:   m,
		Log:       log,
	})
	if err != nil {
		return err
	}
	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("start bot: %w", err)
	}
	defer b.Stop()

	if envCfg.OpsAddr != "" {
		router := opsserver.NewRouter(opsserver.Deps{
			Store:    store,
			Ticks:    sched,
			Gateway:  b,
			Gatherer: reg,
			Log:      log,
			Started:  time.Now(),
		})
		go func() {
			if err := opsserver.Serve(ctx, envCfg.OpsAddr, router, log); err != nil {
				log.Error("ops server stopped", "err", err)
			}
		}()
	}

	log.Info("bot is running, press Ctrl+C to stop", "servers_config", envCfg.ConfigPath)
	<-ctx.Done()
	log.Info("shutting down")
	return nil
}
