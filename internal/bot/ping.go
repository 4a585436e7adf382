package bot

import (
	"context"

	"github.com/EgorLis/serverstatusbot/internal/discord"
)

type PingCommand struct{}

func (PingCommand) Definition() discord.ApplicationCommand {
	return discord.ApplicationCommand{
		Name:        "ping",
		Description: "Testing command to check if the bot is responsive",
	}
}

func (PingCommand) Execute(ctx context.Context, _ *discord.Interaction, r Responder) error {
	return r.Reply(ctx, &discord.MessageSend{Content: "Meow!"})
}
