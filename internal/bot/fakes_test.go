package bot

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/EgorLis/serverstatusbot/internal/discord"
	"github.com/EgorLis/serverstatusbot/internal/gamequery"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeResponder struct {
	mu        sync.Mutex
	replies   []*discord.MessageSend
	followUps []*discord.MessageSend
	edits     []*discord.MessageEdit
	choices   [][]discord.CommandChoice
	deferred  bool
	ephemeral bool
	replied   bool
	deferErr  error
}

func (f *fakeResponder) Reply(_ context.Context, msg *discord.MessageSend) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, msg)
	f.replied = true
	return nil
}

func (f *fakeResponder) Defer(_ context.Context, ephemeral bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deferErr != nil {
		return f.deferErr
	}
	f.deferred, f.ephemeral = true, ephemeral
	return nil
}

func (f *fakeResponder) EditReply(_ context.Context, edit *discord.MessageEdit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, edit)
	return nil
}

func (f *fakeResponder) FollowUp(_ context.Context, msg *discord.MessageSend) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followUps = append(f.followUps, msg)
	return nil
}

func (f *fakeResponder) Autocomplete(_ context.Context, choices []discord.CommandChoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.choices = append(f.choices, choices)
	return nil
}

func (f *fakeResponder) Acknowledged() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deferred || f.replied
}

type fakeQuerier struct {
	res   gamequery.Result
	calls []string
}

func (q *fakeQuerier) Query(_ context.Context, gameType, address string) gamequery.Result {
	q.calls = append(q.calls, gameType+"@"+address)
	return q.res
}

// funcCommand - команда с подменяемым обработчиком.
type funcCommand struct {
	name string
	exec func(ctx context.Context, it *discord.Interaction, r Responder) error
}

func (c funcCommand) Definition() discord.ApplicationCommand {
	return discord.ApplicationCommand{Name: c.name, Description: c.name}
}

func (c funcCommand) Execute(ctx context.Context, it *discord.Interaction, r Responder) error {
	return c.exec(ctx, it, r)
}

var errBoom = errors.New("boom")

func stringOption(name, value string, focused bool) discord.CommandOption {
	raw, _ := json.Marshal(value)
	return discord.CommandOption{Name: name, Type: discord.OptionTypeString, Value: raw, Focused: focused}
}

func commandInteraction(name string, opts ...discord.CommandOption) *discord.Interaction {
	return &discord.Interaction{
		ID:     "900",
		Type:   discord.InteractionApplicationCommand,
		Token:  "itok",
		Data:   &discord.CommandData{Name: name, Options: opts},
		Member: &discord.Member{User: &discord.User{ID: "7", Username: "bob"}},
	}
}

func autocompleteInteraction(name string, opts ...discord.CommandOption) *discord.Interaction {
	it := commandInteraction(name, opts...)
	it.Type = discord.InteractionAutocomplete
	return it
}

func newTestBot(reg *Registry) *Bot {
	b, err := New(Options{
		AppID:    "app",
		GuildID:  "guild",
		REST:     discord.NewREST("tok"),
		Gateway:  discord.NewGateway("tok", discord.IntentGuilds),
		Registry: reg,
		Log:      quietLogger(),
	})
	if err != nil {
		panic(err)
	}
	return b
}
