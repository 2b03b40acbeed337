package telegram

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/blockedby/tgchats/internal/logger"
	"github.com/blockedby/tgchats/internal/tdapi"
)

// Observer is notified after a chat is stored or replaced.
type Observer interface {
	ChatClassified(ctx context.Context, info ChatInformation)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, info ChatInformation)

// ChatClassified implements Observer.
func (f ObserverFunc) ChatClassified(ctx context.Context, info ChatInformation) { f(ctx, info) }

// Classifier sorts chats into plain chats, channels, groups and forums.
//
// All writes happen on the classification worker, one update at a time, so a
// forum topic walk delays every later update. Readers get copies.
type Classifier struct {
	corr     *Correlator
	log      *logger.Logger
	observer Observer

	mu          sync.RWMutex
	supergroups map[tdapi.SupergroupID]SupergroupInfo
	chats       map[tdapi.ChatID]PlainChat
	channels    map[tdapi.ChatID]ChannelInfo
	groups      map[tdapi.ChatID]GroupInfo
	forums      map[tdapi.ChatID]ForumInfo
}

// NewClassifier creates an empty classifier. observer may be nil.
func NewClassifier(corr *Correlator, observer Observer, log *logger.Logger) *Classifier {
	return &Classifier{
		corr:        corr,
		log:         logger.OrGlobal(log).Component("classifier"),
		observer:    observer,
		supergroups: make(map[tdapi.SupergroupID]SupergroupInfo),
		chats:       make(map[tdapi.ChatID]PlainChat),
		channels:    make(map[tdapi.ChatID]ChannelInfo),
		groups:      make(map[tdapi.ChatID]GroupInfo),
		forums:      make(map[tdapi.ChatID]ForumInfo),
	}
}

// HandleUpdate is the dispatcher handler for the classification queue.
func (c *Classifier) HandleUpdate(ctx context.Context, update tdapi.Update) error {
	switch u := update.(type) {
	case *tdapi.UpdateSupergroup:
		return c.processSupergroup(ctx, u.Supergroup)
	case *tdapi.UpdateNewChat:
		return c.processNewChat(ctx, u.Chat)
	default:
		c.log.Warn().Str("type", update.TypeName()).Msg("classifier does not process update")
		return nil
	}
}

func (c *Classifier) processSupergroup(ctx context.Context, sg *tdapi.Supergroup) error {
	if sg == nil {
		return nil
	}
	c.log.Debug().Msgf("[process] %s", tdapi.ShortInfo(sg))

	full, err := InvokeAs[*tdapi.SupergroupFullInfo](ctx, c.corr, &tdapi.GetSupergroupFullInfo{SupergroupID: sg.ID})
	if err != nil {
		return fmt.Errorf("load full info of supergroup %d: %w", sg.ID, err)
	}

	info, err := NewSupergroupInfo(sg, full)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.supergroups[sg.ID] = info
	c.mu.Unlock()
	return nil
}

func (c *Classifier) processNewChat(ctx context.Context, raw *tdapi.Chat) error {
	if raw == nil {
		return nil
	}
	chat := *raw
	c.log.Debug().Msgf("[process] %s", tdapi.ShortInfo(raw))

	switch t := chat.Type.(type) {
	case *tdapi.ChatTypeBasicGroup:
		// basic groups are deprecated
		return nil

	case *tdapi.ChatTypePrivate, *tdapi.ChatTypeSecret:
		info := PlainChat{Chat: chat}
		c.mu.Lock()
		c.chats[chat.ID] = info
		c.mu.Unlock()
		c.notify(ctx, info)
		return nil

	case *tdapi.ChatTypeSupergroup:
		return c.processSupergroupChat(ctx, chat, t.SupergroupID)
	}

	c.log.Warn().Int64("chat.id", chat.ID).Msg("chat without a known type")
	return nil
}

func (c *Classifier) processSupergroupChat(ctx context.Context, chat tdapi.Chat, supergroupID tdapi.SupergroupID) error {
	c.mu.RLock()
	sg, ok := c.supergroups[supergroupID]
	c.mu.RUnlock()

	if !ok {
		c.log.Error().
			Err(ErrSupergroupNotCached).
			Int64("supergroup.id", supergroupID).
			Int64("chat.id", chat.ID).
			Str("chat.title", chat.Title).
			Msg("unable to find supergroup")
		return nil
	}

	switch sg.Type {
	case SupergroupGroup:
		info := GroupInfo{Chat: chat, Supergroup: sg}
		c.mu.Lock()
		c.groups[chat.ID] = info
		c.mu.Unlock()
		c.notify(ctx, info)

	case SupergroupChannel:
		info := ChannelInfo{Chat: chat, Supergroup: sg}
		c.mu.Lock()
		c.channels[chat.ID] = info
		c.mu.Unlock()
		c.notify(ctx, info)

	case SupergroupDiscussionChat:
		return c.updateChannel(ctx, sg, "discussion chat", func(ch ChannelInfo) ChannelInfo {
			return ch.WithDiscussionChat(chat)
		})

	case SupergroupDirectMessageChat:
		return c.updateChannel(ctx, sg, "direct messages chat", func(ch ChannelInfo) ChannelInfo {
			return ch.WithDirectMessagesChat(chat)
		})

	case SupergroupForum:
		topics, err := loadForumTopics(ctx, c.corr, chat)
		if err != nil {
			return err
		}
		info := NewForumInfo(chat, topics)
		c.mu.Lock()
		c.forums[chat.ID] = info
		c.mu.Unlock()
		c.notify(ctx, info)
	}
	return nil
}

// updateChannel replaces the channel sg belongs to with the result of apply.
func (c *Classifier) updateChannel(ctx context.Context, sg SupergroupInfo, field string, apply func(ChannelInfo) ChannelInfo) error {
	c.mu.Lock()
	channel, ok := c.channels[sg.ChannelChatID]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: unable to set %s of channel chat %d, %s",
			ErrChannelNotClassified, field, sg.ChannelChatID, tdapi.ShortInfo(&sg.Supergroup))
	}
	next := apply(channel)
	c.channels[sg.ChannelChatID] = next
	c.mu.Unlock()

	c.notify(ctx, next)
	return nil
}

func (c *Classifier) notify(ctx context.Context, info ChatInformation) {
	if c.observer == nil {
		return
	}
	err := runSafely("observer", func() error {
		c.observer.ChatClassified(ctx, info)
		return nil
	})
	if err != nil {
		c.log.Error().Err(err).Int64("chat.id", info.ChatRecord().ID).Msg("observer failed")
	}
}

// AllChats returns every classified chat ordered by chat id.
func (c *Classifier) AllChats() []ChatInformation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	all := make([]ChatInformation, 0, len(c.chats)+len(c.channels)+len(c.groups)+len(c.forums))
	for _, v := range c.channels {
		all = append(all, v)
	}
	for _, v := range c.chats {
		all = append(all, v)
	}
	for _, v := range c.groups {
		all = append(all, v)
	}
	for _, v := range c.forums {
		all = append(all, v)
	}
	slices.SortFunc(all, func(a, b ChatInformation) int {
		return cmp.Compare(a.ChatRecord().ID, b.ChatRecord().ID)
	})
	return all
}

// Chat returns the classified chat with the given id.
func (c *Classifier) Chat(id tdapi.ChatID) (ChatInformation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if v, ok := c.channels[id]; ok {
		return v, true
	}
	if v, ok := c.chats[id]; ok {
		return v, true
	}
	if v, ok := c.groups[id]; ok {
		return v, true
	}
	if v, ok := c.forums[id]; ok {
		return v, true
	}
	return nil, false
}

// PlainChats returns private and secret chats ordered by chat id.
func (c *Classifier) PlainChats() []PlainChat {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedValues(c.chats)
}

// Channels returns channels ordered by chat id.
func (c *Classifier) Channels() []ChannelInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedValues(c.channels)
}

// Groups returns groups ordered by chat id.
func (c *Classifier) Groups() []GroupInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedValues(c.groups)
}

// Forums returns forums ordered by chat id.
func (c *Classifier) Forums() []ForumInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedValues(c.forums)
}

// Forum returns the forum with the given chat id.
func (c *Classifier) Forum(chatID tdapi.ChatID) (ForumInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.forums[chatID]
	return f, ok
}

// Supergroup returns the cached supergroup snapshot.
func (c *Classifier) Supergroup(id tdapi.SupergroupID) (SupergroupInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sg, ok := c.supergroups[id]
	return sg, ok
}

func sortedValues[V any](m map[tdapi.ChatID]V) []V {
	values := make([]V, 0, len(m))
	for _, id := range slices.Sorted(maps.Keys(m)) {
		values = append(values, m[id])
	}
	return values
}
