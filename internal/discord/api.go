package discord

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ========================= channels & messages =========================

func (r *REST) GetChannel(ctx context.Context, channelID string) (*Channel, error) {
	var ch Channel
	if err := r.do(ctx, http.MethodGet, "/channels/"+url.PathEscape(channelID), nil, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// ListMessages - последние limit (1..100) сообщений канала, новые первыми.
func (r *REST) ListMessages(ctx context.Context, channelID string, limit int) ([]Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var msgs []Message
	path := fmt.Sprintf("/channels/%s/messages?limit=%d", url.PathEscape(channelID), limit)
	if err := r.do(ctx, http.MethodGet, path, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *REST) GetMessage(ctx context.Context, channelID, messageID string) (*Message, error) {
	var m Message
	if err := r.do(ctx, http.MethodGet, messagePath(channelID, messageID), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *REST) SendMessage(ctx context.Context, channelID string, msg *MessageSend) (*Message, error) {
	var m Message
	path := fmt.Sprintf("/channels/%s/messages", url.PathEscape(channelID))
	if err := r.do(ctx, http.MethodPost, path, msg, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *REST) EditMessage(ctx context.Context, channelID, messageID string, edit *MessageEdit) (*Message, error) {
	var m Message
	if err := r.do(ctx, http.MethodPatch, messagePath(channelID, messageID), edit, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *REST) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return r.do(ctx, http.MethodDelete, messagePath(channelID, messageID), nil, nil)
}

func messagePath(channelID, messageID string) string {
	return fmt.Sprintf("/channels/%s/messages/%s", url.PathEscape(channelID), url.PathEscape(messageID))
}

// ========================= application commands =========================

// BulkOverwriteGuildCommands заменяет весь набор команд гильдии (без диффа).
func (r *REST) BulkOverwriteGuildCommands(ctx context.Context, appID, guildID string, cmds []ApplicationCommand) ([]ApplicationCommand, error) {
	if cmds == nil {
		cmds = []ApplicationCommand{}
	}
	var out []ApplicationCommand
	path := fmt.Sprintf("/applications/%s/guilds/%s/commands", url.PathEscape(appID), url.PathEscape(guildID))
	if err := r.do(ctx, http.MethodPut, path, cmds, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ========================= interactions =========================

func (r *REST) CreateInteractionResponse(ctx context.Context, interactionID, token string, resp *InteractionResponse) error {
	path := fmt.Sprintf("/interactions/%s/%s/callback", url.PathEscape(interactionID), url.PathEscape(token))
	return r.do(ctx, http.MethodPost, path, resp, nil)
}

func (r *REST) EditOriginalInteractionResponse(ctx context.Context, appID, token string, edit *MessageEdit) (*Message, error) {
	var m Message
	path := fmt.Sprintf("/webhooks/%s/%s/messages/@original", url.PathEscape(appID), url.PathEscape(token))
	if err := r.do(ctx, http.MethodPatch, path, edit, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *REST) CreateFollowupMessage(ctx context.Context, appID, token string, msg *MessageSend) (*Message, error) {
	var m Message
	path := fmt.Sprintf("/webhooks/%s/%s", url.PathEscape(appID), url.PathEscape(token))
	if err := r.do(ctx, http.MethodPost, path, msg, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
