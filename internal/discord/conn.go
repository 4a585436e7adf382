package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// ========================= low-level =========================

// адрес для подключения: после READY Discord просит резюмировать через resume_gateway_url
func (g *Gateway) dialURL() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sessionID == "" {
		return g.url, false
	}
	if g.resumeURL == "" {
		return g.url, true
	}
	return strings.TrimRight(g.resumeURL, "/") + "/?v=10&encoding=json", true
}

// dial + Hello + heartbeat + Identify/Resume
func (g *Gateway) dialAndHandshake(ctx context.Context) (*websocket.Conn, error) {
	url, resume := g.dialURL()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("gateway dial: %w", err)
	}
	conn.SetReadLimit(16 << 20)

	_ = conn.SetReadDeadline(time.Now().Add(15 * time.Second))
	var hello gatewayPayload
	if err := conn.ReadJSON(&hello); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("gateway hello: %w", err)
	}
	if hello.Op != opHello {
		_ = conn.Close()
		return nil, fmt.Errorf("gateway hello: expected op %d, got %d", opHello, hello.Op)
	}
	var hd helloData
	if err := json.Unmarshal(hello.D, &hd); err != nil || hd.HeartbeatInterval <= 0 {
		_ = conn.Close()
		return nil, fmt.Errorf("gateway hello: bad heartbeat interval")
	}
	// дальше «живость» контролирует heartbeat
	_ = conn.SetReadDeadline(time.Time{})

	g.startHeartbeat(conn, time.Duration(hd.HeartbeatInterval)*time.Millisecond)

	if resume {
		err = g.sendResume(conn)
	} else {
		err = g.sendIdentify(conn)
	}
	if err != nil {
		g.stopHeartbeat()
		_ = conn.Close()
		return nil, fmt.Errorf("gateway handshake: %w", err)
	}
	return conn, nil
}

func (g *Gateway) sendIdentify(conn *websocket.Conn) error {
	d, err := json.Marshal(identifyData{
		Token:   g.token,
		Intents: g.intents,
		Properties: map[string]string{
			"os":      runtime.GOOS,
			"browser": "serverstatusbot",
			"device":  "serverstatusbot",
		},
	})
	if err != nil {
		return err
	}
	return g.writeJSON(conn, gatewayPayload{Op: opIdentify, D: d})
}

func (g *Gateway) sendResume(conn *websocket.Conn) error {
	d, err := json.Marshal(resumeData{
		Token:     g.token,
		SessionID: g.SessionID(),
		Seq:       g.seq.Load(),
	})
	if err != nil {
		return err
	}
	return g.writeJSON(conn, gatewayPayload{Op: opResume, D: d})
}

func (g *Gateway) sendHeartbeat(conn *websocket.Conn) error {
	d := json.RawMessage("null")
	if seq := g.seq.Load(); seq > 0 {
		d = json.RawMessage(fmt.Sprint(seq))
	}
	return g.writeJSON(conn, gatewayPayload{Op: opHeartbeat, D: d})
}

// запись строго через один мьютекс + write-deadline
func (g *Gateway) writeJSON(conn *websocket.Conn, v any) error {
	g.wmu.Lock()
	defer g.wmu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteJSON(v)
}

func (g *Gateway) setConn(conn *websocket.Conn) {
	g.mu.Lock()
	g.conn = conn
	g.mu.Unlock()
}

func (g *Gateway) currentConn() *websocket.Conn {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.conn
}

// closeConn закрывает текущее соединение. Код != 1000 оставляет сессию
// пригодной для resume.
func (g *Gateway) closeConn(code int) {
	g.stopHeartbeat()
	g.mu.Lock()
	conn := g.conn
	g.conn = nil
	g.mu.Unlock()
	if conn == nil {
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, "closing"),
		time.Now().Add(500*time.Millisecond))
	_ = conn.Close()
}

func (g *Gateway) startHeartbeat(conn *websocket.Conn, interval time.Duration) {
	g.stopHeartbeat()

	stop := make(chan struct{})
	g.hbMu.Lock()
	g.hbStop = stop
	g.hbMu.Unlock()
	g.acked.Store(true)

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				// ACK на прошлый heartbeat не пришёл - соединение «зомби», рвём его,
				// readLoop переподключится
				if !g.acked.Swap(false) {
					g.log.Warn("gateway heartbeat not acknowledged, dropping connection")
					_ = conn.Close()
					return
				}
				if err := g.sendHeartbeat(conn); err != nil {
					return
				}
			}
		}
	}()
}

func (g *Gateway) stopHeartbeat() {
	g.hbMu.Lock()
	defer g.hbMu.Unlock()
	if g.hbStop != nil {
		close(g.hbStop)
		g.hbStop = nil
	}
}
