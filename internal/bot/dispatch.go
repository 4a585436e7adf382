package bot

import (
	"context"
	"fmt"

	"github.com/EgorLis/serverstatusbot/internal/discord"
)

const genericErrorText = "There was an error while executing this command!"

// HandleInteraction направляет взаимодействие нужной команде по имени.
func (b *Bot) HandleInteraction(ctx context.Context, it *discord.Interaction, r Responder) {
	switch it.Type {
	case discord.InteractionApplicationCommand:
		b.execute(ctx, it, r)
	case discord.InteractionAutocomplete:
		b.autocomplete(ctx, it, r)
	default:
		b.log.Debug("ignoring interaction", "type", it.Type, "id", it.ID)
	}
}

func (b *Bot) execute(ctx context.Context, it *discord.Interaction, r Responder) {
	name := it.CommandName()
	cmd, ok := b.registry.Get(name)
	if !ok {
		b.log.Warn("no command found", "command", name)
		return
	}

	err := safeCall(func() error { return cmd.Execute(ctx, it, r) })
	b.metrics.CommandDone(name, err)
	if err == nil {
		b.log.Info("executed command", "command", name, "user", it.Invoker().Tag())
		return
	}

	// подробности только в лог, пользователю - общий текст
	b.log.Error("error executing command", "command", name, "err", err)
	msg := &discord.MessageSend{Content: genericErrorText, Flags: discord.MessageFlagEphemeral}
	if r.Acknowledged() {
		err = r.FollowUp(ctx, msg)
	} else {
		err = r.Reply(ctx, msg)
	}
	if err != nil {
		b.log.Error("failed to report command error", "command", name, "err", err)
	}
}

func (b *Bot) autocomplete(ctx context.Context, it *discord.Interaction, r Responder) {
	cmd, ok := b.registry.Get(it.CommandName())
	if !ok {
		return
	}
	ac, ok := cmd.(Autocompleter)
	if !ok {
		return
	}
	if err := safeCall(func() error { return ac.Autocomplete(ctx, it, r) }); err != nil {
		b.log.Error("error auto-completing command", "command", it.CommandName(), "err", err)
	}
}

func safeCall(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn()
}
