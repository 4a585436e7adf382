package discord

import "encoding/json"

type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name,omitempty"`
	Bot        bool   `json:"bot,omitempty"`
}

// Tag - человекочитаемое имя для логов.
func (u *User) Tag() string {
	if u == nil {
		return "unknown"
	}
	if u.GlobalName != "" {
		return u.GlobalName + " (" + u.Username + ")"
	}
	return u.Username
}

type Member struct {
	User *User  `json:"user,omitempty"`
	Nick string `json:"nick,omitempty"`
}

type ChannelType int

const (
	ChannelTypeGuildText         ChannelType = 0
	ChannelTypeDM                ChannelType = 1
	ChannelTypeGuildVoice        ChannelType = 2
	ChannelTypeGuildAnnouncement ChannelType = 5
)

type Channel struct {
	ID      string      `json:"id"`
	Type    ChannelType `json:"type"`
	GuildID string      `json:"guild_id,omitempty"`
	Name    string      `json:"name,omitempty"`
}

// CanHoldMessages - можно ли постить в канал обычные сообщения.
func (c *Channel) CanHoldMessages() bool {
	switch c.Type {
	case ChannelTypeGuildText, ChannelTypeDM, ChannelTypeGuildVoice, ChannelTypeGuildAnnouncement:
		return true
	}
	return false
}

type Message struct {
	ID        string  `json:"id"`
	ChannelID string  `json:"channel_id"`
	Author    User    `json:"author"`
	Content   string  `json:"content"`
	Embeds    []Embed `json:"embeds,omitempty"`
	Timestamp string  `json:"timestamp,omitempty"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

type MessageFlags int

const MessageFlagEphemeral MessageFlags = 1 << 6

type MessageSend struct {
	Content string       `json:"content,omitempty"`
	Embeds  []Embed      `json:"embeds,omitempty"`
	Flags   MessageFlags `json:"flags,omitempty"`
}

// MessageEdit: nil-поля не трогают сообщение.
type MessageEdit struct {
	Content *string `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

func EditText(s string) *MessageEdit {
	return &MessageEdit{Content: &s}
}

func EditEmbeds(embeds ...Embed) *MessageEdit {
	return &MessageEdit{Embeds: embeds}
}

// ========================= slash commands =========================

type OptionType int

const (
	OptionTypeString  OptionType = 3
	OptionTypeInteger OptionType = 4
	OptionTypeBoolean OptionType = 5
)

type ApplicationCommand struct {
	ID          string                     `json:"id,omitempty"`
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	Options     []ApplicationCommandOption `json:"options,omitempty"`
}

type ApplicationCommandOption struct {
	Type         OptionType `json:"type"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Required     bool       `json:"required,omitempty"`
	Autocomplete bool       `json:"autocomplete,omitempty"`
}

type CommandChoice struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// ========================= interactions =========================

type InteractionType int

const (
	InteractionPing               InteractionType = 1
	InteractionApplicationCommand InteractionType = 2
	InteractionMessageComponent   InteractionType = 3
	InteractionAutocomplete       InteractionType = 4
)

type Interaction struct {
	ID            string          `json:"id"`
	ApplicationID string          `json:"application_id"`
	Type          InteractionType `json:"type"`
	Data          *CommandData    `json:"data,omitempty"`
	GuildID       string          `json:"guild_id,omitempty"`
	ChannelID     string          `json:"channel_id,omitempty"`
	Member        *Member         `json:"member,omitempty"`
	User          *User           `json:"user,omitempty"`
	Token         string          `json:"token"`
}

// Invoker - пользователь, вызвавший команду (в гильдии он лежит в Member).
func (i *Interaction) Invoker() *User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// CommandName - имя slash-команды или "" для прочих типов.
func (i *Interaction) CommandName() string {
	if i.Data == nil {
		return ""
	}
	return i.Data.Name
}

type CommandData struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Options []CommandOption `json:"options,omitempty"`
}

type CommandOption struct {
	Name    string          `json:"name"`
	Type    OptionType      `json:"type"`
	Value   json.RawMessage `json:"value,omitempty"`
	Focused bool            `json:"focused,omitempty"`
}

// StringValue - значение опции как строка (числа отдаются в исходной записи).
func (o CommandOption) StringValue() string {
	if len(o.Value) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(o.Value, &s); err == nil {
		return s
	}
	return string(o.Value)
}

func (d *CommandData) Option(name string) (CommandOption, bool) {
	if d == nil {
		return CommandOption{}, false
	}
	for _, o := range d.Options {
		if o.Name == name {
			return o, true
		}
	}
	return CommandOption{}, false
}

func (d *CommandData) String(name string) string {
	o, _ := d.Option(name)
	return o.StringValue()
}

// Focused - опция, для которой пришёл autocomplete.
func (d *CommandData) Focused() (CommandOption, bool) {
	if d == nil {
		return CommandOption{}, false
	}
	for _, o := range d.Options {
		if o.Focused {
			return o, true
		}
	}
	return CommandOption{}, false
}

type InteractionResponseType int

const (
	ResponsePong                             InteractionResponseType = 1
	ResponseChannelMessageWithSource         InteractionResponseType = 4
	ResponseDeferredChannelMessageWithSource InteractionResponseType = 5
	ResponseAutocompleteResult               InteractionResponseType = 8
)

type InteractionResponse struct {
	Type InteractionResponseType `json:"type"`
	Data any                     `json:"data,omitempty"`
}

type AutocompleteData struct {
	Choices []CommandChoice `json:"choices"`
}
