package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/EgorLis/serverstatusbot/internal/discord"
	"github.com/EgorLis/serverstatusbot/internal/metrics"
)

// Runner - фоновая задача с жизненным циклом ctx (планировщик статусов).
type Runner interface {
	Run(ctx context.Context)
}

type Options struct {
	AppID    string
	GuildID  string
	REST     *discord.REST
	Gateway  *discord.Gateway
	Registry *Registry
	// Scheduler запускается после подключения к gateway; может быть nil.
	Scheduler Runner
	Metrics   *metrics.Metrics
	Log       *slog.Logger
	// ShutdownTimeout - сколько ждать закрытия gateway в Stop.
	ShutdownTimeout time.Duration
}

type Bot struct {
	appID     string
	guildID   string
	rest      *discord.REST
	gateway   *discord.Gateway
	registry  *Registry
	scheduler Runner
	metrics   *metrics.Metrics
	log       *slog.Logger
	shutdown  time.Duration

	newResponder func(*discord.Interaction) Responder

	mu       sync.Mutex
	cancel   context.CancelFunc
	stopping bool
	wg       sync.WaitGroup // планировщик + обработчики взаимодействий
}

func New(opts Options) (*Bot, error) {
	if opts.REST == nil || opts.Gateway == nil || opts.Registry == nil {
		return nil, errors.New("bot: REST, Gateway and Registry are required")
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	b := &Bot{
		appID:     opts.AppID,
		guildID:   opts.GuildID,
		rest:      opts.REST,
		gateway:   opts.Gateway,
		registry:  opts.Registry,
		scheduler: opts.Scheduler,
		metrics:   opts.Metrics,
		log:       opts.Log,
		shutdown:  opts.ShutdownTimeout,
	}
	b.newResponder = func(it *discord.Interaction) Responder {
		return discord.NewResponder(b.rest, b.appID, it)
	}
	return b, nil
}

// Start регистрирует команды, подключается к gateway и запускает планировщик.
// Ошибка регистрации команд не фатальна.
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.cancel != nil {
		b.mu.Unlock()
		return errors.New("bot already started")
	}
	runCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.stopping = false
	b.mu.Unlock()

	b.registerCommands(runCtx)

	b.gateway.OnConnecting = func() { b.log.Info("starting bot") }
	b.gateway.OnReady = func(r *discord.Ready) { b.log.Info("logged in", "user", r.User.Tag()) }
	b.gateway.OnError = func(err error) { b.log.Error("gateway error", "err", err) }
	b.gateway.OnDisconnected = func() { b.log.Warn("gateway disconnected") }
	b.gateway.OnInteraction = func(it *discord.Interaction) {
		if !b.track() {
			return
		}
		defer b.wg.Done()
		b.HandleInteraction(runCtx, it, b.newResponder(it))
	}

	if err := b.gateway.Connect(runCtx); err != nil {
		b.mu.Lock()
		b.cancel = nil
		b.mu.Unlock()
		cancel()
		return fmt.Errorf("connect gateway: %w", err)
	}

	if b.scheduler != nil {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.scheduler.Run(runCtx)
		}()
	}
	return nil
}

// track регистрирует обработчик в wg, если бот ещё не останавливается.
func (b *Bot) track() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopping || b.cancel == nil {
		return false
	}
	b.wg.Add(1)
	return true
}

// Stop идемпотентен: отменяет контекст, закрывает gateway и ждёт фоновые горутины.
func (b *Bot) Stop() {
	b.mu.Lock()
	cancel := b.cancel
	b.cancel = nil
	b.stopping = true
	b.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	b.gateway.Disconnect()
	if done := b.gateway.Done(); done != nil {
		select {
		case <-done:
		case <-time.After(b.shutdown):
			b.log.Warn("gateway did not shut down in time")
		}
	}
	b.wg.Wait()
	b.log.Info("bot stopped")
}

func (b *Bot) registerCommands(ctx context.Context) {
	out, err := b.rest.BulkOverwriteGuildCommands(ctx, b.appID, b.guildID, b.registry.Definitions())
	if err != nil {
		b.log.Error("error registering commands", "err", err)
		return
	}
	b.log.Info("registered commands with discord api", "count", len(out))
}

// Connected - состояние gateway (для /healthz).
func (b *Bot) Connected() bool {
	return b.gateway.IsConnected()
}
