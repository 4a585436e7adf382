package status

import (
	"sort"
	"sync"
	"time"

	"github.com/EgorLis/serverstatusbot/internal/gamequery"
)

// Record связывает сервер (ключ - адрес) с его статус-сообщением в канале.
type Record struct {
	ServerKey string                  `json:"server"`
	MessageID string                  `json:"messageId"`
	LastData  *gamequery.ServerStatus `json:"lastData"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

// Store - in-memory реестр статус-сообщений. Живёт столько же, сколько процесс.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewStore() *Store {
	return &Store{records: make(map[string]Record)}
}

func (s *Store) Get(key string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	return rec, ok
}

// Put создаёт или полностью перезаписывает запись.
func (s *Store) Put(rec Record) {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ServerKey] = rec
}

// Snapshot - копия всех записей, отсортированная по ключу.
func (s *Store) Snapshot() []Record {
	s.mu.RLock()
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ServerKey < out[j].ServerKey })
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
