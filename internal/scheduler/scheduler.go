package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/EgorLis/serverstatusbot/internal/metrics"
	"github.com/EgorLis/serverstatusbot/internal/status"
)

var (
	ErrTickInProgress = errors.New("status update already in progress")
	ErrNotTextChannel = errors.New("channel cannot hold messages")
)

type Config struct {
	Interval    time.Duration // между тиками, по умолчанию 10m
	PurgeLimit  int           // сколько сообщений смотреть при первой чистке, по умолчанию 100
	PurgeDelay  time.Duration // пауза между удалениями
	ServerDelay time.Duration // пауза между серверами
	Now         func() time.Time
}

func (c *Config) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = 10 * time.Minute
	}
	if c.PurgeLimit <= 0 || c.PurgeLimit > 100 {
		c.PurgeLimit = 100
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

type Deps struct {
	Channel ChannelAPI
	Querier Querier
	Config  ConfigSource
	Games   GameNames
	Store   *status.Store
	Metrics *metrics.Metrics // может быть nil
	Log     *slog.Logger
}

// TickInfo - итог последнего завершённого тика (для /healthz).
type TickInfo struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Servers   int           `json:"servers"`
	Updated   int           `json:"updated"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Errors    int           `json:"errors"`
	Err       string        `json:"error,omitempty"`
}

// Scheduler периодически сверяет список серверов с их статус-сообщениями в канале.
type Scheduler struct {
	cfg     Config
	channel ChannelAPI
	querier Querier
	source  ConfigSource
	games   GameNames
	store   *status.Store
	metrics *metrics.Metrics
	log     *slog.Logger

	purgeThrottle  *Throttle
	serverThrottle *Throttle

	running  sync.Mutex // не даёт тикам пересекаться
	firstRun bool       // под running

	infoMu   sync.RWMutex
	lastTick *TickInfo
}

func New(cfg Config, deps Deps) (*Scheduler, error) {
	if deps.Channel == nil || deps.Querier == nil || deps.Config == nil || deps.Store == nil {
		return nil, errors.New("scheduler: channel, querier, config and store are required")
	}
	if deps.Games == nil {
		deps.Games = noNames{}
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	cfg.applyDefaults()

	return &Scheduler{
		cfg:            cfg,
		channel:        deps.Channel,
		querier:        deps.Querier,
		source:         deps.Config,
		games:          deps.Games,
		store:          deps.Store,
		metrics:        deps.Metrics,
		log:            deps.Log,
		purgeThrottle:  NewThrottle(cfg.PurgeDelay),
		serverThrottle: NewThrottle(cfg.ServerDelay),
		firstRun:       true,
	}, nil
}

type noNames struct{}

func (noNames) DisplayName(id string) string { return id }

// Run: один тик сразу, дальше каждые Interval, пока ctx не отменён.
func (s *Scheduler) Run(ctx context.Context) {
	s.runTick(ctx)

	t := time.NewTicker(s.cfg.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.runTick(ctx)
		}
	}
}

func (s *Scheduler) runTick(ctx context.Context) {
	if err := s.Tick(ctx); errors.Is(err, ErrTickInProgress) {
		s.log.Warn("previous status update still running, skipping tick")
	}
}

// LastTick - итог последнего тика; false, если тиков ещё не было.
func (s *Scheduler) LastTick() (TickInfo, bool) {
	s.infoMu.RLock()
	defer s.infoMu.RUnlock()
	if s.lastTick == nil {
		return TickInfo{}, false
	}
	return *s.lastTick, true
}

// Tick выполняет ровно один проход. Ошибка означает, что проход прерван
// до сверки серверов (конфиг, канал, отмена ctx); сбои отдельных серверов
// только логируются.
func (s *Scheduler) Tick(ctx context.Context) error {
	if !s.running.TryLock() {
		return ErrTickInProgress
	}
	defer s.running.Unlock()

	info := TickInfo{ID: uuid.NewString(), StartedAt: s.cfg.Now()}
	log := s.log.With("tick", info.ID)
	log.Info("running scheduled server status update")

	err := s.tick(ctx, log, &info)
	info.Duration = s.cfg.Now().Sub(info.StartedAt)

	res := "ok"
	switch {
	case err != nil && ctx.Err() != nil:
		res = "interrupted"
		info.Err = err.Error()
		log.Warn("scheduled server status update interrupted", "err", err)
	case err != nil:
		res = "aborted"
		info.Err = err.Error()
		log.Error("scheduled server status update aborted", "err", err)
	default:
		log.Info("scheduled server status update completed",
			"servers", info.Servers, "updated", info.Updated, "failed", info.Failed,
			"skipped", info.Skipped, "errors", info.Errors, "duration", info.Duration)
	}
	s.metrics.TickDone(res, info.Duration, s.cfg.Now())
	s.metrics.SetRecords(s.store.Len())

	s.infoMu.Lock()
	s.lastTick = &info
	s.infoMu.Unlock()
	return err
}

func (s *Scheduler) tick(ctx context.Context, log *slog.Logger, info *TickInfo) error {
	file, err := s.source.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	channelID := file.Discord.ServerStatusChannelID.String()

	ch, err := s.channel.GetChannel(ctx, channelID)
	if err != nil {
		return fmt.Errorf("fetch channel %s: %w", channelID, err)
	}
	if !ch.CanHoldMessages() {
		return fmt.Errorf("%w: %s (type %d)", ErrNotTextChannel, channelID, ch.Type)
	}

	if s.firstRun {
		s.firstRun = false
		if err := s.purge(ctx, log, channelID); err != nil {
			return err
		}
	}

	info.Servers = len(file.Servers)
	for _, srv := range file.Servers {
		if err := s.serverThrottle.Wait(ctx); err != nil {
			return err
		}

		out, err := s.reconcileSafe(ctx, log, channelID, srv.Type, srv.Address)
		if err != nil {
			log.Error("error processing server", "server", srv.Address, "err", err)
			out = outcomeError
		}
		s.metrics.ServerDone(string(out))
		switch out {
		case outcomeUpdated:
			info.Updated++
		case outcomeFailed:
			info.Failed++
		case outcomeSkipped:
			info.Skipped++
		case outcomeError:
			info.Errors++
		}
	}
	return ctx.Err()
}

// purge удаляет последние сообщения канала; ошибки удаления не прерывают чистку.
func (s *Scheduler) purge(ctx context.Context, log *slog.Logger, channelID string) error {
	msgs, err := s.channel.ListMessages(ctx, channelID, s.cfg.PurgeLimit)
	s.metrics.MessageOp("list", err)
	if err != nil {
		log.Error("failed to list messages for cleanup", "channel", channelID, "err", err)
		return nil
	}

	deleted := 0
	for _, m := range msgs {
		if err := s.purgeThrottle.Wait(ctx); err != nil {
			return err
		}
		err := s.channel.DeleteMessage(ctx, channelID, m.ID)
		s.metrics.MessageOp("delete", err)
		if err != nil {
			log.Error("error deleting message", "message", m.ID, "err", err)
			continue
		}
		deleted++
	}
	log.Info("channel cleaned up", "channel", channelID, "deleted", deleted, "found", len(msgs))
	return nil
}
