package telegram

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/blockedby/tgchats/internal/tdapi"
)

// SupergroupType is the role of a supergroup derived from its flags.
type SupergroupType int

const (
	SupergroupGroup SupergroupType = iota
	SupergroupChannel
	SupergroupForum
	SupergroupDiscussionChat
	SupergroupDirectMessageChat
)

func (t SupergroupType) String() string {
	switch t {
	case SupergroupGroup:
		return "group"
	case SupergroupChannel:
		return "channel"
	case SupergroupForum:
		return "forum"
	case SupergroupDiscussionChat:
		return "discussion"
	case SupergroupDirectMessageChat:
		return "direct_messages"
	default:
		return fmt.Sprintf("supergroup_type(%d)", int(t))
	}
}

// ClassifySupergroup derives the supergroup type. The first flag set wins, in
// the order channel, forum, linked chat, direct messages.
func ClassifySupergroup(isChannel, isForum, hasLinkedChat, isDirectMessagesGroup bool) SupergroupType {
	switch {
	case isChannel:
		return SupergroupChannel
	case isForum:
		return SupergroupForum
	case hasLinkedChat:
		return SupergroupDiscussionChat
	case isDirectMessagesGroup:
		return SupergroupDirectMessageChat
	default:
		return SupergroupGroup
	}
}

// SupergroupInfo combines a supergroup with its full info.
type SupergroupInfo struct {
	Supergroup tdapi.Supergroup
	FullInfo   tdapi.SupergroupFullInfo
	Type       SupergroupType
	// ChannelChatID is the channel chat a discussion or direct messages chat
	// belongs to. It is zero for every other type.
	ChannelChatID tdapi.ChatID
}

// NewSupergroupInfo builds the snapshot and derives its type and channel link.
func NewSupergroupInfo(sg *tdapi.Supergroup, full *tdapi.SupergroupFullInfo) (SupergroupInfo, error) {
	typ := ClassifySupergroup(sg.IsChannel, sg.IsForum, sg.HasLinkedChat, sg.IsDirectMessagesGroup)

	var target tdapi.ChatID
	switch typ {
	case SupergroupDiscussionChat:
		target = full.LinkedChatID
	case SupergroupDirectMessageChat:
		target = full.DirectMessagesChatID
	}

	return buildSupergroupInfo(sg, full, typ, target)
}

func buildSupergroupInfo(sg *tdapi.Supergroup, full *tdapi.SupergroupFullInfo, typ SupergroupType, target tdapi.ChatID) (SupergroupInfo, error) {
	if sg.IsChannel && target != 0 {
		return SupergroupInfo{}, fmt.Errorf("%w: %s, channel chat %d", ErrChannelWithLink, tdapi.ShortInfo(sg), target)
	}

	return SupergroupInfo{
		Supergroup:    *sg,
		FullInfo:      *full,
		Type:          typ,
		ChannelChatID: target,
	}, nil
}

// ID returns the supergroup identifier.
func (s SupergroupInfo) ID() tdapi.SupergroupID { return s.Supergroup.ID }

// Kinds of classified chats.
const (
	KindChat    = "chat"
	KindChannel = "channel"
	KindGroup   = "group"
	KindForum   = "forum"
)

// ChatInformation is a classified chat: PlainChat, ChannelInfo, GroupInfo or
// ForumInfo. Values are immutable once stored.
type ChatInformation interface {
	ChatRecord() tdapi.Chat
	Kind() string
	Info() string
	isChatInformation()
}

// PlainChat is a private or secret chat.
type PlainChat struct {
	Chat tdapi.Chat
}

// ChannelInfo is a broadcast channel with its optional linked chats.
type ChannelInfo struct {
	Chat               tdapi.Chat
	Supergroup         SupergroupInfo
	DiscussionChat     *tdapi.Chat
	DirectMessagesChat *tdapi.Chat
}

// WithDiscussionChat returns a copy linked to the discussion chat.
func (c ChannelInfo) WithDiscussionChat(chat tdapi.Chat) ChannelInfo {
	c.DiscussionChat = &chat
	return c
}

// WithDirectMessagesChat returns a copy linked to the direct messages chat.
func (c ChannelInfo) WithDirectMessagesChat(chat tdapi.Chat) ChannelInfo {
	c.DirectMessagesChat = &chat
	return c
}

// GroupInfo is a plain supergroup.
type GroupInfo struct {
	Chat       tdapi.Chat
	Supergroup SupergroupInfo
}

// ForumInfo is a forum with all of its topics.
type ForumInfo struct {
	Chat   tdapi.Chat
	topics map[int64]tdapi.ForumTopic
}

// NewForumInfo indexes topics by id. Later duplicates replace earlier ones.
func NewForumInfo(chat tdapi.Chat, topics []tdapi.ForumTopic) ForumInfo {
	byID := make(map[int64]tdapi.ForumTopic, len(topics))
	for _, topic := range topics {
		byID[topic.ID()] = topic
	}
	return ForumInfo{Chat: chat, topics: byID}
}

// Topics returns the topics by order, highest first.
func (f ForumInfo) Topics() []tdapi.ForumTopic {
	topics := make([]tdapi.ForumTopic, 0, len(f.topics))
	for _, topic := range f.topics {
		topics = append(topics, topic)
	}
	slices.SortFunc(topics, func(a, b tdapi.ForumTopic) int {
		if c := cmp.Compare(b.Order, a.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.ID(), b.ID())
	})
	return topics
}

// FindTopic looks a topic up by id.
func (f ForumInfo) FindTopic(id int64) (tdapi.ForumTopic, bool) {
	topic, ok := f.topics[id]
	return topic, ok
}

func (c PlainChat) ChatRecord() tdapi.Chat   { return c.Chat }
func (c ChannelInfo) ChatRecord() tdapi.Chat { return c.Chat }
func (c GroupInfo) ChatRecord() tdapi.Chat   { return c.Chat }
func (c ForumInfo) ChatRecord() tdapi.Chat   { return c.Chat }

func (PlainChat) Kind() string   { return KindChat }
func (ChannelInfo) Kind() string { return KindChannel }
func (GroupInfo) Kind() string   { return KindGroup }
func (ForumInfo) Kind() string   { return KindForum }

func (c PlainChat) Info() string   { return chatInfo(c.Chat) }
func (c ChannelInfo) Info() string { return chatInfo(c.Chat) }
func (c GroupInfo) Info() string   { return chatInfo(c.Chat) }
func (c ForumInfo) Info() string   { return chatInfo(c.Chat) }

func (PlainChat) isChatInformation()   {}
func (ChannelInfo) isChatInformation() {}
func (GroupInfo) isChatInformation()   {}
func (ForumInfo) isChatInformation()   {}

func chatInfo(chat tdapi.Chat) string {
	return fmt.Sprintf("%d %s", chat.ID, chat.Title)
}
