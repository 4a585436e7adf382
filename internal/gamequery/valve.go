package gamequery

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/rumblefrog/go-a2s"
)

// a2sConn - то, что нам нужно от *a2s.Client (подменяется в тестах).
type a2sConn interface {
	QueryInfo() (*a2s.ServerInfo, error)
	QueryPlayer() (*a2s.PlayerInfo, error)
	Close() error
}

// ValveProber опрашивает сервер по Valve A2S (Source/GoldSrc и всё, что его реализует).
type ValveProber struct {
	timeout    time.Duration
	maxRetries int

	dial func(addr string, timeout time.Duration) (a2sConn, error)
}

func NewValveProber(timeout time.Duration, maxRetries int) *ValveProber {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &ValveProber{
		timeout:    timeout,
		maxRetries: maxRetries,
		dial:       dialA2S,
	}
}

func dialA2S(addr string, timeout time.Duration) (a2sConn, error) {
	return a2s.NewClient(addr, a2s.TimeoutOption(timeout))
}

// Probe делает до maxRetries попыток; наружу уходит ошибка последней.
func (p *ValveProber) Probe(ctx context.Context, game Game, host string, port int) (*ServerStatus, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	var lastErr error
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		st, err := p.probeOnce(addr, host, port)
		if err == nil {
			return st, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (p *ValveProber) probeOnce(addr, host string, port int) (*ServerStatus, error) {
	conn, err := p.dial(addr, p.timeout)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	started := time.Now()
	info, err := conn.QueryInfo()
	if err != nil {
		return nil, err
	}
	ping := time.Since(started)

	st := &ServerStatus{
		Name:       info.Name,
		Map:        info.Map,
		Online:     int(info.Players),
		MaxPlayers: int(info.MaxPlayers),
		Bots:       int(info.Bots),
		Connect:    net.JoinHostPort(host, strconv.Itoa(gamePort(info, port))),
		Ping:       ping,
	}

	// часть серверов закрывает A2S_PLAYER - тогда остаётся только Online
	players, err := conn.QueryPlayer()
	if err != nil || players == nil {
		st.Players = []Player{}
		return st, nil
	}
	st.Players = make([]Player, 0, len(players.Players))
	for _, pl := range players.Players {
		if pl == nil {
			continue
		}
		st.Players = append(st.Players, Player{
			Name:     pl.Name,
			Score:    int(pl.Score),
			Duration: time.Duration(float64(pl.Duration) * float64(time.Second)),
		})
	}
	return st, nil
}

// gamePort - порт для подключения клиента: из EDF, если сервер его сообщает.
func gamePort(info *a2s.ServerInfo, queryPort int) int {
	if info.ExtendedServerInfo != nil && info.ExtendedServerInfo.Port != 0 {
		return int(info.ExtendedServerInfo.Port)
	}
	return queryPort
}
