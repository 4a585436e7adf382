package gamequery

import (
	"context"
	"fmt"
	"log/slog"
)

// Prober - backend конкретного протокола. Ретраи - его забота.
type Prober interface {
	Probe(ctx context.Context, game Game, host string, port int) (*ServerStatus, error)
}

type ProberFunc func(ctx context.Context, game Game, host string, port int) (*ServerStatus, error)

func (f ProberFunc) Probe(ctx context.Context, game Game, host string, port int) (*ServerStatus, error) {
	return f(ctx, game, host, port)
}

type Option func(*Querier)

func WithProber(p Protocol, prober Prober) Option {
	return func(q *Querier) { q.probers[p] = prober }
}

type Querier struct {
	catalog *Catalog
	probers map[Protocol]Prober
	log     *slog.Logger
}

func New(catalog *Catalog, log *slog.Logger, opts ...Option) *Querier {
	if log == nil {
		log = slog.Default()
	}
	q := &Querier{
		catalog: catalog,
		probers: make(map[Protocol]Prober),
		log:     log,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *Querier) Catalog() *Catalog { return q.catalog }

// Query опрашивает один сервер. Никогда не паникует и не возвращает error:
// любой сбой превращается в Result{Success: false}.
func (q *Querier) Query(ctx context.Context, gameType, address string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("query panic", "type", gameType, "address", address, "panic", r)
			res = failure(fmt.Errorf("query panic: %v", r))
		}
	}()

	host, port, err := ParseAddress(address)
	if err != nil {
		q.log.Warn("query rejected", "type", gameType, "address", address, "error", err)
		return failure(err)
	}

	game, ok := q.catalog.Lookup(gameType)
	if !ok {
		return failure(fmt.Errorf("%w: %s", ErrUnknownGame, gameType))
	}
	prober, ok := q.probers[game.Protocol]
	if !ok {
		return failure(fmt.Errorf("no backend for protocol %q", game.Protocol))
	}
	if port == 0 {
		port = game.DefaultPort
	}

	q.log.Info("querying server", "type", gameType, "host", host, "port", port)

	data, err := prober.Probe(ctx, game, host, port)
	if err != nil {
		q.log.Warn("query failed", "type", gameType, "host", host, "port", port, "error", err)
		return failure(err)
	}
	return success(data)
}
