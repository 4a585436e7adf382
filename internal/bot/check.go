package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/EgorLis/serverstatusbot/internal/discord"
	"github.com/EgorLis/serverstatusbot/internal/gamequery"
	"github.com/EgorLis/serverstatusbot/internal/status"
)

// лимит Discord на число вариантов autocomplete
const maxChoices = 25

type QueryService interface {
	Query(ctx context.Context, gameType, address string) gamequery.Result
}

// CheckCommand - /check type:<игра> address:<host[:port]>. В Store не пишет.
type CheckCommand struct {
	querier QueryService
	catalog *gamequery.Catalog
}

func NewCheckCommand(q QueryService, catalog *gamequery.Catalog) *CheckCommand {
	return &CheckCommand{querier: q, catalog: catalog}
}

func (c *CheckCommand) Definition() discord.ApplicationCommand {
	return discord.ApplicationCommand{
		Name:        "check",
		Description: "Check game server status by providing game type and IP address",
		Options: []discord.ApplicationCommandOption{
			{Type: discord.OptionTypeString, Name: "type", Description: "Game type", Required: true, Autocomplete: true},
			{Type: discord.OptionTypeString, Name: "address", Description: "Server address", Required: true},
		},
	}
}

func (c *CheckCommand) Execute(ctx context.Context, it *discord.Interaction, r Responder) error {
	gameType := it.Data.String("type")
	address := it.Data.String("address")

	if err := r.Defer(ctx, true); err != nil {
		return fmt.Errorf("defer reply: %w", err)
	}

	res := c.querier.Query(ctx, gameType, address)
	var edit *discord.MessageEdit
	switch {
	case !res.Success:
		edit = discord.EditText("Error querying server: " + res.Error)
	case res.Data == nil:
		edit = discord.EditText("No data received from server.")
	default:
		edit = discord.EditEmbeds(status.CheckEmbed(res.Data, address, c.catalog.DisplayName(gameType)))
	}
	return r.EditReply(ctx, edit)
}

func (c *CheckCommand) Autocomplete(ctx context.Context, it *discord.Interaction, r Responder) error {
	focused, ok := it.Data.Focused()
	if !ok || focused.Name != "type" {
		return r.Autocomplete(ctx, nil)
	}

	partial := strings.ToLower(strings.TrimSpace(focused.StringValue()))
	games := c.catalog.Search(partial, maxChoices)
	choices := make([]discord.CommandChoice, 0, len(games))
	for _, g := range games {
		choices = append(choices, discord.CommandChoice{
			Name:  fmt.Sprintf("%s (%s)", g.ID, g.Name),
			Value: g.ID,
		})
	}
	return r.Autocomplete(ctx, choices)
}
