// Package publisher forwards classified chats to NATS.
package publisher

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/blockedby/tgchats/internal/logger"
	"github.com/blockedby/tgchats/internal/telegram"
)

// SubjectPrefix is followed by the chat kind, e.g. chats.classified.forum.
const SubjectPrefix = "chats.classified."

// NATSClient interface to allow mocking
type NATSClient interface {
	Publish(ctx context.Context, subject string, data any) error
}

// TopicEvent is a forum topic inside a ChatClassifiedEvent.
type TopicEvent struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsClosed bool   `json:"is_closed,omitempty"`
	IsPinned bool   `json:"is_pinned,omitempty"`
}

// ChatClassifiedEvent is published whenever a chat is stored or replaced.
type ChatClassifiedEvent struct {
	EventID              uuid.UUID    `json:"event_id"`
	Kind                 string       `json:"kind"`
	ChatID               int64        `json:"chat_id"`
	Title                string       `json:"title"`
	SupergroupID         int64        `json:"supergroup_id,omitempty"`
	Username             string       `json:"username,omitempty"`
	MemberCount          int32        `json:"member_count,omitempty"`
	DiscussionChatID     int64        `json:"discussion_chat_id,omitempty"`
	DirectMessagesChatID int64        `json:"direct_messages_chat_id,omitempty"`
	Topics               []TopicEvent `json:"topics,omitempty"`
	ClassifiedAt         time.Time    `json:"classified_at"`
}

// NATSPublisher implements telegram.Observer.
type NATSPublisher struct {
	js  NATSClient
	log *logger.Logger
	now func() time.Time
}

var _ telegram.Observer = (*NATSPublisher)(nil)

// NewNATSPublisher creates a new publisher
func NewNATSPublisher(client NATSClient, log *logger.Logger) *NATSPublisher {
	return &NATSPublisher{
		js:  client,
		log: logger.OrGlobal(log).Component("publisher"),
		now: time.Now,
	}
}

// ChatClassified publishes the event. Failures are logged, classification goes on.
func (p *NATSPublisher) ChatClassified(ctx context.Context, info telegram.ChatInformation) {
	event := p.NewEvent(info)
	subject := SubjectPrefix + event.Kind

	if err := p.js.Publish(ctx, subject, event); err != nil {
		p.log.Error().Err(err).Int64("chat.id", event.ChatID).Str("subject", subject).Msg("publish event")
		return
	}
	p.log.Debug().Int64("chat.id", event.ChatID).Str("subject", subject).Msg("event published")
}

// NewEvent builds the event for info.
func (p *NATSPublisher) NewEvent(info telegram.ChatInformation) ChatClassifiedEvent {
	chat := info.ChatRecord()
	event := ChatClassifiedEvent{
		EventID:      uuid.New(),
		Kind:         info.Kind(),
		ChatID:       chat.ID,
		Title:        chat.Title,
		ClassifiedAt: p.now().UTC(),
	}

	switch c := info.(type) {
	case telegram.ChannelInfo:
		fillSupergroup(&event, c.Supergroup)
		if c.DiscussionChat != nil {
			event.DiscussionChatID = c.DiscussionChat.ID
		}
		if c.DirectMessagesChat != nil {
			event.DirectMessagesChatID = c.DirectMessagesChat.ID
		}
	case telegram.GroupInfo:
		fillSupergroup(&event, c.Supergroup)
	case telegram.ForumInfo:
		for _, topic := range c.Topics() {
			event.Topics = append(event.Topics, TopicEvent{
				ID:       topic.Info.ForumTopicID,
				Name:     topic.Info.Name,
				IsClosed: topic.Info.IsClosed,
				IsPinned: topic.Info.IsPinned,
			})
		}
	}

	return event
}

func fillSupergroup(event *ChatClassifiedEvent, sg telegram.SupergroupInfo) {
	event.SupergroupID = sg.ID()
	event.Username = sg.Supergroup.Username
	event.MemberCount = sg.FullInfo.MemberCount
}
