package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

var (
	errReconnectRequested = errors.New("gateway requested reconnect")
	errInvalidSession     = errors.New("gateway invalidated session")
)

// close-коды, после которых переподключаться бессмысленно
func isFatalClose(err error) bool {
	var ce *websocket.CloseError
	if !errors.As(err, &ce) {
		return false
	}
	switch ce.Code {
	case 4004, 4010, 4011, 4012, 4013, 4014:
		return true
	}
	return false
}

func isSessionLost(err error) bool {
	var ce *websocket.CloseError
	return errors.As(err, &ce) && (ce.Code == 4007 || ce.Code == 4009)
}

func (g *Gateway) readLoop(ctx context.Context) {
	done := g.loopDone
	stopWatch := make(chan struct{})
	defer func() {
		close(stopWatch)
		g.closed.Store(true)
		g.closeConn(websocket.CloseNormalClosure)
		if g.OnDisconnected != nil {
			g.OnDisconnected()
		}
		close(done)
	}()

	// закрыть по отмене контекста
	go func() {
		select {
		case <-ctx.Done():
			g.closeConn(websocket.CloseNormalClosure)
		case <-stopWatch:
		}
	}()

	backoff := g.backoffMin

	for {
		err := g.readUntilBroken()
		if g.closed.Load() || ctx.Err() != nil {
			return
		}

		switch {
		case errors.Is(err, errReconnectRequested), errors.Is(err, errInvalidSession):
			g.log.Info("gateway reconnecting", "reason", err)
		case isFatalClose(err):
			g.emitError(fmt.Errorf("gateway closed permanently: %w", err))
			return
		default:
			if isSessionLost(err) {
				g.resetSession()
			}
			g.emitError(err)
		}

		// 4000 - сессию можно резюмировать
		g.closeConn(4000)

		// реконнект с backoff
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if g.closed.Load() {
				return
			}
			conn, derr := g.dialAndHandshake(ctx)
			if derr != nil {
				g.emitError(fmt.Errorf("reconnect failed (wait %v): %w", backoff, derr))
				backoff *= 2
				if backoff > g.backoffMax {
					backoff = g.backoffMax
				}
				continue
			}
			g.setConn(conn)
			backoff = g.backoffMin
			break
		}
	}
}

// readUntilBroken читает сообщения, пока соединение живо; возвращает причину разрыва.
func (g *Gateway) readUntilBroken() error {
	conn := g.currentConn()
	if conn == nil {
		return fmt.Errorf("connection is nil")
	}
	for {
		var p gatewayPayload
		if err := conn.ReadJSON(&p); err != nil {
			return err
		}
		if p.S != nil {
			g.seq.Store(*p.S)
		}

		switch p.Op {
		case opDispatch:
			g.handleDispatch(p.T, p.D)
		case opHeartbeat:
			if err := g.sendHeartbeat(conn); err != nil {
				return err
			}
		case opHeartbeatAck:
			g.acked.Store(true)
		case opReconnect:
			return errReconnectRequested
		case opInvalidSession:
			var resumable bool
			_ = json.Unmarshal(p.D, &resumable)
			if !resumable {
				g.resetSession()
			}
			return errInvalidSession
		}
	}
}

func (g *Gateway) resetSession() {
	g.mu.Lock()
	g.sessionID = ""
	g.resumeURL = ""
	g.mu.Unlock()
	g.seq.Store(0)
}
