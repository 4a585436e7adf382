package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/EgorLis/serverstatusbot/internal/discord"
	"github.com/EgorLis/serverstatusbot/internal/gamequery"
	"github.com/EgorLis/serverstatusbot/internal/status"
)

type outcome string

const (
	outcomeUpdated outcome = "updated" // статус отрисован
	outcomeFailed  outcome = "failed"  // опрос не удался, показана ошибка
	outcomeSkipped outcome = "skipped" // успех без данных
	outcomeError   outcome = "error"   // не удалось обновить сообщение
)

// reconcileSafe изолирует сбой (в том числе панику) одного сервера от остальных.
func (s *Scheduler) reconcileSafe(ctx context.Context, log *slog.Logger, channelID, gameType, address string) (out outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.reconcile(ctx, log, channelID, gameType, address)
}

func (s *Scheduler) reconcile(ctx context.Context, log *slog.Logger, channelID, gameType, address string) (outcome, error) {
	res := s.querier.Query(ctx, gameType, address)
	s.metrics.QueryDone(gameType, res.Success)

	if !res.Success {
		if err := s.showFailure(ctx, log, channelID, address, res.Error); err != nil {
			return outcomeError, err
		}
		return outcomeFailed, nil
	}
	if res.Data == nil {
		log.Warn("no data received from server", "server", address)
		return outcomeSkipped, nil
	}
	if err := s.showStatus(ctx, log, channelID, gameType, address, res.Data); err != nil {
		return outcomeError, err
	}
	return outcomeUpdated, nil
}

// showFailure: правим существующее сообщение в embed ошибки, иначе шлём новое.
// LastData при правке не трогаем; новое сообщение начинает запись с LastData = nil.
func (s *Scheduler) showFailure(ctx context.Context, log *slog.Logger, channelID, address, errMsg string) error {
	embed := status.ErrorEmbed(address, errMsg)

	if rec, ok := s.store.Get(address); ok {
		err := s.editExisting(ctx, channelID, rec.MessageID, embed)
		if err == nil {
			log.Info("updated error message for server", "server", address)
			return nil
		}
		log.Warn("failed to update existing message for server, will create a new one", "server", address, "err", err)
	}

	msg, err := s.send(ctx, channelID, embed)
	if err != nil {
		return fmt.Errorf("post error message: %w", err)
	}
	s.store.Put(status.Record{ServerKey: address, MessageID: msg.ID, LastData: nil, UpdatedAt: s.cfg.Now()})
	log.Info("posted new error message for server", "server", address)
	return nil
}

func (s *Scheduler) showStatus(ctx context.Context, log *slog.Logger, channelID, gameType, address string, data *gamequery.ServerStatus) error {
	now := s.cfg.Now()
	embed := status.StatusEmbed(data, address, s.games.DisplayName(gameType), now)

	rec, ok := s.store.Get(address)
	if ok {
		_, err := s.channel.GetMessage(ctx, channelID, rec.MessageID)
		s.metrics.MessageOp("fetch", err)
		if err != nil {
			log.Warn("failed to fetch existing message for server, will create a new one", "server", address, "err", err)
			ok = false
		}
	}

	if !ok {
		msg, err := s.send(ctx, channelID, embed)
		if err != nil {
			return fmt.Errorf("post status message: %w", err)
		}
		s.store.Put(status.Record{ServerKey: address, MessageID: msg.ID, LastData: data, UpdatedAt: now})
		log.Info("posted new status message for server", "server", address)
		return nil
	}

	_, err := s.channel.EditMessage(ctx, channelID, rec.MessageID, discord.EditEmbeds(embed))
	s.metrics.MessageOp("edit", err)
	if err != nil {
		return fmt.Errorf("edit status message: %w", err)
	}
	s.store.Put(status.Record{ServerKey: address, MessageID: rec.MessageID, LastData: data, UpdatedAt: now})
	log.Info("updated status message for server", "server", address)
	return nil
}

func (s *Scheduler) editExisting(ctx context.Context, channelID, messageID string, embed discord.Embed) error {
	_, err := s.channel.GetMessage(ctx, channelID, messageID)
	s.metrics.MessageOp("fetch", err)
	if err != nil {
		return err
	}
	_, err = s.channel.EditMessage(ctx, channelID, messageID, discord.EditEmbeds(embed))
	s.metrics.MessageOp("edit", err)
	return err
}

func (s *Scheduler) send(ctx context.Context, channelID string, embed discord.Embed) (*discord.Message, error) {
	msg, err := s.channel.SendMessage(ctx, channelID, &discord.MessageSend{Embeds: []discord.Embed{embed}})
	s.metrics.MessageOp("send", err)
	return msg, err
}
