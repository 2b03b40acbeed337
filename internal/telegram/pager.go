package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/blockedby/tgchats/internal/logger"
	"github.com/blockedby/tgchats/internal/tdapi"
)

// loadAllChats asks the engine for chat pages until it reports that every chat
// has been announced. The chats themselves arrive as UpdateNewChat.
func loadAllChats(ctx context.Context, corr *Correlator, pageSize int32, log *logger.Logger) error {
	for page := 1; ; page++ {
		_, err := corr.Invoke(ctx, &tdapi.LoadChats{List: tdapi.ChatListMain, Limit: pageSize})
		if IsProtocolCode(err, CodeNotFound) {
			log.Debug().Int("pages", page).Msg("[response] loadChats: no more chats")
			return nil
		}
		if err != nil {
			return fmt.Errorf("load chats page %d: %w", page, err)
		}
		log.Debug().Int("page", page).Msg("[response] loadChats: ok, should load more")
	}
}

// loadForumTopics reads every topic of a forum, one topic per request, until
// the engine returns an empty page.
func loadForumTopics(ctx context.Context, corr *Correlator, chat tdapi.Chat) ([]tdapi.ForumTopic, error) {
	var (
		topics []tdapi.ForumTopic
		page   = &tdapi.ForumTopics{TotalCount: -1}
	)

	for {
		next, err := InvokeAs[*tdapi.ForumTopics](ctx, corr, &tdapi.GetForumTopics{
			ChatID:                chat.ID,
			OffsetDate:            page.NextOffsetDate,
			OffsetMessageID:       page.NextOffsetMessageID,
			OffsetMessageThreadID: page.NextOffsetMessageThreadID,
			Limit:                 1,
		})
		if err != nil {
			return nil, fmt.Errorf("load forum topics of chat %d %s: %w", chat.ID, chat.Title, err)
		}

		page = next
		if len(page.Topics) == 0 {
			return topics, nil
		}
		topics = append(topics, page.Topics...)
	}
}

// loadHistory reads messages newest first, one per request, until an empty
// page, an error reply or limit messages (0 means no limit). Error replies end the
// walk without failing it.
func loadHistory(ctx context.Context, corr *Correlator, chatID tdapi.ChatID, limit int, log *logger.Logger) ([]tdapi.Message, error) {
	var (
		messages []tdapi.Message
		from     int64
	)

	for limit <= 0 || len(messages) < limit {
		page, err := InvokeAs[*tdapi.Messages](ctx, corr, &tdapi.GetChatHistory{
			ChatID:        chatID,
			FromMessageID: from,
			Limit:         1,
		})
		var perr *ProtocolError
		if errors.As(err, &perr) {
			log.Warn().Err(err).Int64("chat.id", chatID).Msg("can't load chat history")
			break
		}
		if err != nil {
			return messages, fmt.Errorf("load history of chat %d: %w", chatID, err)
		}
		if len(page.Messages) == 0 {
			break
		}

		messages = append(messages, page.Messages...)
		from = page.Messages[len(page.Messages)-1].ID
	}

	if limit > 0 && len(messages) > limit {
		messages = messages[:limit]
	}
	return messages, nil
}
