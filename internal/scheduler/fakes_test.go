package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/EgorLis/serverstatusbot/internal/config"
	"github.com/EgorLis/serverstatusbot/internal/discord"
	"github.com/EgorLis/serverstatusbot/internal/gamequery"
	"github.com/EgorLis/serverstatusbot/internal/status"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeChannel - канал в памяти с журналом вызовов.
type fakeChannel struct {
	mu sync.Mutex

	channelType   discord.ChannelType
	getChannelErr error
	messages      map[string]discord.Message
	nextID        int
	calls         []string

	deleteErr map[string]error
	editErr   error
	sendErr   error
	onSend    func()
}

func newFakeChannel(existing ...string) *fakeChannel {
	f := &fakeChannel{messages: map[string]discord.Message{}, deleteErr: map[string]error{}}
	for _, id := range existing {
		f.messages[id] = discord.Message{ID: id, ChannelID: "chan"}
	}
	return f
}

var errNotFound = &discord.APIError{Status: http.StatusNotFound, Code: 10008, Message: "Unknown Message"}

func (f *fakeChannel) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeChannel) GetChannel(_ context.Context, channelID string) (*discord.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("channel:" + channelID)
	if f.getChannelErr != nil {
		return nil, f.getChannelErr
	}
	return &discord.Channel{ID: channelID, Type: f.channelType}, nil
}

func (f *fakeChannel) ListMessages(_ context.Context, _ string, limit int) ([]discord.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("list:%d", limit))
	ids := make([]string, 0, len(f.messages))
	for id := range f.messages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]discord.Message, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.messages[id])
	}
	return out, nil
}

func (f *fakeChannel) GetMessage(_ context.Context, _ string, messageID string) (*discord.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("get:" + messageID)
	m, ok := f.messages[messageID]
	if !ok {
		return nil, errNotFound
	}
	return &m, nil
}

func (f *fakeChannel) SendMessage(_ context.Context, channelID string, msg *discord.MessageSend) (*discord.Message, error) {
	f.mu.Lock()
	if f.onSend != nil {
		f.onSend()
	}
	if f.sendErr != nil {
		f.record("send:error")
		f.mu.Unlock()
		return nil, f.sendErr
	}
	f.nextID++
	id := fmt.Sprintf("new%d", f.nextID)
	f.record("send:" + id)
	m := discord.Message{ID: id, ChannelID: channelID, Embeds: msg.Embeds}
	f.messages[id] = m
	f.mu.Unlock()
	return &m, nil
}

func (f *fakeChannel) EditMessage(_ context.Context, _ string, messageID string, edit *discord.MessageEdit) (*discord.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("edit:" + messageID)
	if f.editErr != nil {
		return nil, f.editErr
	}
	m, ok := f.messages[messageID]
	if !ok {
		return nil, errNotFound
	}
	m.Embeds = edit.Embeds
	f.messages[messageID] = m
	return &m, nil
}

func (f *fakeChannel) DeleteMessage(_ context.Context, _ string, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete:" + messageID)
	if err := f.deleteErr[messageID]; err != nil {
		return err
	}
	delete(f.messages, messageID)
	return nil
}

// externalDelete - сообщение удалил кто-то вне бота.
func (f *fakeChannel) externalDelete(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.messages, id)
}

func (f *fakeChannel) message(id string) (discord.Message, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[id]
	return m, ok
}

func (f *fakeChannel) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func (f *fakeChannel) callsWithPrefix(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeChannel) resetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// fakeQuerier отдаёт заранее заданные результаты по адресу.
type fakeQuerier struct {
	mu      sync.Mutex
	results map[string]gamequery.Result
	panics  map[string]bool
	calls   []string
	block   chan struct{}
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{results: map[string]gamequery.Result{}, panics: map[string]bool{}}
}

func (q *fakeQuerier) set(address string, res gamequery.Result) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.results[address] = res
}

func (q *fakeQuerier) Query(ctx context.Context, gameType, address string) gamequery.Result {
	q.mu.Lock()
	q.calls = append(q.calls, gameType+"@"+address)
	res, ok := q.results[address]
	panics := q.panics[address]
	block := q.block
	q.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
		}
	}
	if panics {
		panic("querier exploded")
	}
	if !ok {
		return gamequery.Result{Error: "no fake result"}
	}
	return res
}

func (q *fakeQuerier) queried() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.calls...)
}

type fakeConfig struct {
	mu    sync.Mutex
	file  *config.File
	err   error
	loads int
}

func (c *fakeConfig) Load() (*config.File, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads++
	if c.err != nil {
		return nil, c.err
	}
	cp := *c.file
	cp.Servers = append([]config.Server(nil), c.file.Servers...)
	return &cp, nil
}

func (c *fakeConfig) setErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func configFor(servers ...config.Server) *fakeConfig {
	return &fakeConfig{file: &config.File{
		Discord: config.DiscordConfig{ServerStatusChannelID: "chan"},
		Servers: servers,
	}}
}

func success(data *gamequery.ServerStatus) gamequery.Result {
	return gamequery.Result{Success: true, Data: data}
}

func failure(msg string) gamequery.Result {
	return gamequery.Result{Error: msg}
}

type testEnv struct {
	ch    *fakeChannel
	q     *fakeQuerier
	cfg   *fakeConfig
	store *status.Store
	s     *Scheduler
}

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func newTestEnv(ch *fakeChannel, cfg *fakeConfig) *testEnv {
	env := &testEnv{ch: ch, q: newFakeQuerier(), cfg: cfg, store: status.NewStore()}
	s, err := New(Config{Now: func() time.Time { return fixedNow }}, Deps{
		Channel: ch,
		Querier: env.q,
		Config:  cfg,
		Games:   gamequery.DefaultCatalog(),
		Store:   env.store,
		Log:     quietLogger(),
	})
	if err != nil {
		panic(err)
	}
	env.s = s
	return env
}

var errBoom = errors.New("boom")
