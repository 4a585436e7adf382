package status

import (
	"fmt"
	"time"

	"github.com/EgorLis/serverstatusbot/internal/discord"
	"github.com/EgorLis/serverstatusbot/internal/gamequery"
)

const (
	ColorOnline = 0x00FF00
	ColorError  = 0xFF0000

	// MaxFields - лимит Discord на число полей в embed.
	MaxFields = 25

	blankName     = "\u200b"
	footerTimeFmt = "2006-01-02 15:04:05"
)

// SummaryLine - первая строка статуса: карта, онлайн, команда подключения.
// address используется, если сервер не сообщил connect-строку.
func SummaryLine(data *gamequery.ServerStatus, address string) string {
	mapName := data.Map
	if mapName == "" {
		mapName = "N/A"
	}
	connect := data.Connect
	if connect == "" {
		connect = address
	}
	return fmt.Sprintf("Playing **%s** with **%d/%d** players\nConnect via Console: `connect %s`",
		mapName, data.OnlineCount(), data.MaxPlayers, connect)
}

// Fields - поле-сводка плюс по inline-полю на каждого игрока из списка сервера;
// игроки сверх лимита embed отбрасываются.
func Fields(data *gamequery.ServerStatus, address string) []discord.EmbedField {
	fields := make([]discord.EmbedField, 0, min(len(data.Players)+1, MaxFields))
	fields = append(fields, discord.EmbedField{Name: blankName, Value: SummaryLine(data, address)})
	for _, p := range data.Players {
		if len(fields) == MaxFields {
			break
		}
		name := p.Name
		if name == "" {
			name = "Unknown player"
		}
		fields = append(fields, discord.EmbedField{Name: blankName, Value: name, Inline: true})
	}
	return fields
}

// StatusEmbed - embed планового обновления в канале.
func StatusEmbed(data *gamequery.ServerStatus, address, game string, now time.Time) discord.Embed {
	return discord.Embed{
		Title:     data.Name,
		Color:     ColorOnline,
		Fields:    Fields(data, address),
		Footer:    &discord.EmbedFooter{Text: fmt.Sprintf("Updated %s • %s", now.Format(footerTimeFmt), game)},
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}

// CheckEmbed - embed ответа на /check.
func CheckEmbed(data *gamequery.ServerStatus, address, game string) discord.Embed {
	return discord.Embed{
		Title:  data.Name + " Server Status",
		Color:  ColorOnline,
		Fields: Fields(data, address),
		Footer: &discord.EmbedFooter{Text: game},
	}
}

func ErrorEmbed(address, errMsg string) discord.Embed {
	return discord.Embed{
		Title:       "Failed to query server " + address,
		Description: "Error: " + errMsg,
		Color:       ColorError,
		Footer:      &discord.EmbedFooter{Text: "Last successful data may be outdated."},
	}
}
