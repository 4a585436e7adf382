package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/EgorLis/serverstatusbot/internal/discord"
)

// Responder - ответ на одно взаимодействие. *discord.Responder его реализует.
type Responder interface {
	Reply(ctx context.Context, msg *discord.MessageSend) error
	Defer(ctx context.Context, ephemeral bool) error
	EditReply(ctx context.Context, edit *discord.MessageEdit) error
	FollowUp(ctx context.Context, msg *discord.MessageSend) error
	Autocomplete(ctx context.Context, choices []discord.CommandChoice) error
	Acknowledged() bool
}

// Command - slash-команда: описание для регистрации и обработчик.
type Command interface {
	Definition() discord.ApplicationCommand
	Execute(ctx context.Context, it *discord.Interaction, r Responder) error
}

// Autocompleter реализуют команды с autocomplete-опциями.
type Autocompleter interface {
	Autocomplete(ctx context.Context, it *discord.Interaction, r Responder) error
}

// Registry - статический набор команд, собирается явными вызовами Register.
type Registry struct {
	cmds  map[string]Command
	order []string
}

func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]Command)}
}

func (r *Registry) Register(c Command) error {
	name := c.Definition().Name
	if name == "" {
		return errors.New("command without a name")
	}
	if _, dup := r.cmds[name]; dup {
		return fmt.Errorf("command %q registered twice", name)
	}
	r.cmds[name] = c
	r.order = append(r.order, name)
	return nil
}

// MustRegister - Register для сборки реестра при старте.
func (r *Registry) MustRegister(cmds ...Command) *Registry {
	for _, c := range cmds {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
	return r
}

func (r *Registry) Get(name string) (Command, bool) {
	c, ok := r.cmds[name]
	return c, ok
}

// Definitions - описания в порядке регистрации.
func (r *Registry) Definitions() []discord.ApplicationCommand {
	out := make([]discord.ApplicationCommand, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.cmds[name].Definition())
	}
	return out
}

func (r *Registry) Len() int { return len(r.order) }
