package gamequery

import (
	"errors"
	"time"
)

var (
	ErrInvalidAddress = errors.New("invalid address format")
	ErrUnknownGame    = errors.New("unknown game type")
)

type Player struct {
	Name     string        `json:"name"`
	Score    int           `json:"score,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// ServerStatus - нормализованный ответ сервера, одинаковый для всех протоколов.
type ServerStatus struct {
	Name       string        `json:"name"`
	Map        string        `json:"map"`
	Players    []Player      `json:"players"`
	Online     int           `json:"online"` // счётчик из ответа сервера, список может быть скрыт
	MaxPlayers int           `json:"maxplayers"`
	Bots       int           `json:"bots,omitempty"`
	Connect    string        `json:"connect"`
	Ping       time.Duration `json:"ping,omitempty"`
}

// OnlineCount - сколько игроков на сервере. Список игроков сервер может
// скрыть, тогда остаётся только счётчик.
func (s *ServerStatus) OnlineCount() int {
	return max(s.Online, len(s.Players))
}

// Result - итог одного опроса: либо Success с Data, либо Error.
// Data может быть nil и при Success (backend ничего не вернул).
type Result struct {
	Success bool
	Data    *ServerStatus
	Error   string
}

func success(data *ServerStatus) Result {
	return Result{Success: true, Data: data}
}

func failure(err error) Result {
	return Result{Error: err.Error()}
}
