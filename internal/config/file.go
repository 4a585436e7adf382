package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrNoChannel = errors.New("discord.serverStatusChannelId is required")

type File struct {
	Discord DiscordConfig `yaml:"discord"`
	Servers []Server      `yaml:"servers"`
}

type DiscordConfig struct {
	ServerStatusChannelID Snowflake `yaml:"serverStatusChannelId"`
}

// Server - одна запись списка серверов. Address служит ключом статус-сообщения.
type Server struct {
	Type    string `yaml:"type"`
	Address string `yaml:"address"`
}

// Snowflake - ID Discord. В YAML его часто пишут без кавычек, поэтому
// принимаем любой скаляр как есть (без преобразования в число).
type Snowflake string

func (s *Snowflake) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: snowflake must be a scalar", value.Line)
	}
	*s = Snowflake(strings.TrimSpace(value.Value))
	return nil
}

func (s Snowflake) String() string { return string(s) }

// Loader перечитывает файл при каждом вызове Load.
type Loader struct {
	Path string
}

func (l Loader) Load() (*File, error) {
	raw, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", l.Path, err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	Normalize(&f)
	if err := Validate(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Normalize приводит значения к каноническому виду.
func Normalize(f *File) {
	for i := range f.Servers {
		f.Servers[i].Type = strings.ToLower(strings.TrimSpace(f.Servers[i].Type))
		f.Servers[i].Address = strings.TrimSpace(f.Servers[i].Address)
	}
}

// Validate проверяет только канал. Записи серверов не проверяются: пустой
// или кривой адрес и неизвестная игра дают сообщение об ошибке в канале
// для этого сервера, остальные обновляются как обычно.
func Validate(f *File) error {
	id := f.Discord.ServerStatusChannelID.String()
	if id == "" {
		return ErrNoChannel
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return fmt.Errorf("discord.serverStatusChannelId %q: must be numeric", id)
		}
	}
	return nil
}
