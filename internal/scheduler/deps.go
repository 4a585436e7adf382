package scheduler

import (
	"context"

	"github.com/EgorLis/serverstatusbot/internal/config"
	"github.com/EgorLis/serverstatusbot/internal/discord"
	"github.com/EgorLis/serverstatusbot/internal/gamequery"
)

// ChannelAPI - операции с каналом, нужные планировщику. *discord.REST его реализует.
type ChannelAPI interface {
	GetChannel(ctx context.Context, channelID string) (*discord.Channel, error)
	ListMessages(ctx context.Context, channelID string, limit int) ([]discord.Message, error)
	GetMessage(ctx context.Context, channelID, messageID string) (*discord.Message, error)
	SendMessage(ctx context.Context, channelID string, msg *discord.MessageSend) (*discord.Message, error)
	EditMessage(ctx context.Context, channelID, messageID string, edit *discord.MessageEdit) (*discord.Message, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

type Querier interface {
	Query(ctx context.Context, gameType, address string) gamequery.Result
}

// ConfigSource отдаёт свежий конфиг; вызывается в начале каждого тика.
type ConfigSource interface {
	Load() (*config.File, error)
}

type GameNames interface {
	DisplayName(id string) string
}
