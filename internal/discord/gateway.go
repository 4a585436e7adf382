package discord

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const DefaultGatewayURL = "wss://gateway.discord.gg/?v=10&encoding=json"

type Intent int

const (
	IntentGuilds Intent = 1 << 0
)

// opcodes gateway v10
const (
	opDispatch       = 0
	opHeartbeat      = 1
	opIdentify       = 2
	opResume         = 6
	opReconnect      = 7
	opInvalidSession = 9
	opHello          = 10
	opHeartbeatAck   = 11
)

type gatewayPayload struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d,omitempty"`
	S  *int64          `json:"s,omitempty"`
	T  string          `json:"t,omitempty"`
}

type helloData struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

type identifyData struct {
	Token      string            `json:"token"`
	Intents    Intent            `json:"intents"`
	Properties map[string]string `json:"properties"`
}

type resumeData struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"`
}

type Ready struct {
	SessionID        string `json:"session_id"`
	ResumeGatewayURL string `json:"resume_gateway_url"`
	User             User   `json:"user"`
}

type GatewayOption func(*Gateway)

func WithGatewayURL(u string) GatewayOption { return func(g *Gateway) { g.url = u } }

func WithGatewayLogger(l *slog.Logger) GatewayOption { return func(g *Gateway) { g.log = l } }

// WithBackoff задаёт границы экспоненциального реконнекта.
func WithBackoff(initial, max time.Duration) GatewayOption {
	return func(g *Gateway) { g.backoffMin, g.backoffMax = initial, max }
}

// Gateway - websocket-соединение с Discord Gateway: identify/resume,
// heartbeat, автоматический реконнект. События отдаются через колбэки.
type Gateway struct {
	url     string
	token   string
	intents Intent
	log     *slog.Logger

	backoffMin time.Duration
	backoffMax time.Duration

	mu        sync.Mutex // conn, sessionID, resumeURL
	conn      *websocket.Conn
	sessionID string
	resumeURL string

	wmu    sync.Mutex // сериализует запись в websocket
	seq    atomic.Int64
	closed atomic.Bool

	hbMu   sync.Mutex
	hbStop chan struct{}
	acked  atomic.Bool

	loopDone chan struct{}

	OnConnecting   func()
	OnReady        func(*Ready)
	OnInteraction  func(*Interaction)
	OnDisconnected func()
	OnError        func(error)
}

func NewGateway(token string, intents Intent, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		url:        DefaultGatewayURL,
		token:      token,
		intents:    intents,
		log:        slog.Default(),
		backoffMin: time.Second,
		backoffMax: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Connect устанавливает соединение (hello + identify) и запускает readLoop.
// Отмена ctx закрывает соединение и останавливает реконнекты.
func (g *Gateway) Connect(ctx context.Context) error {
	if g.OnConnecting != nil {
		g.OnConnecting()
	}
	g.closed.Store(false)
	conn, err := g.dialAndHandshake(ctx)
	if err != nil {
		return err
	}
	g.setConn(conn)

	g.loopDone = make(chan struct{})
	go g.readLoop(ctx)
	return nil
}

func (g *Gateway) Disconnect() {
	g.closed.Store(true)
	g.closeConn(websocket.CloseNormalClosure)
}

// Done закрывается, когда readLoop завершился окончательно.
func (g *Gateway) Done() <-chan struct{} {
	return g.loopDone
}

func (g *Gateway) IsConnected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.conn != nil && !g.closed.Load()
}

func (g *Gateway) SessionID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sessionID
}

func (g *Gateway) handleDispatch(event string, data json.RawMessage) {
	switch event {
	case "READY":
		var r Ready
		if err := json.Unmarshal(data, &r); err != nil {
			g.emitError(err)
			return
		}
		g.mu.Lock()
		g.sessionID = r.SessionID
		g.resumeURL = r.ResumeGatewayURL
		g.mu.Unlock()
		g.log.Info("gateway ready", "user", r.User.Tag(), "session", r.SessionID)
		if g.OnReady != nil {
			g.OnReady(&r)
		}
	case "RESUMED":
		g.log.Info("gateway session resumed")
	case "INTERACTION_CREATE":
		var it Interaction
		if err := json.Unmarshal(data, &it); err != nil {
			g.emitError(err)
			return
		}
		if g.OnInteraction != nil {
			go g.OnInteraction(&it)
		}
	}
}

func (g *Gateway) emitError(err error) {
	if g.OnError != nil && !g.closed.Load() {
		g.OnError(err)
	}
}
