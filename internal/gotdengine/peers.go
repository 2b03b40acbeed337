package gotdengine

import (
	"sync"

	"github.com/gotd/td/tg"

	"github.com/blockedby/tgchats/internal/tdapi"
)

// peerCache keeps the access hashes needed to address chats by engine chat id.
type peerCache struct {
	mu        sync.RWMutex
	peers     map[tdapi.ChatID]tg.InputPeerClass
	channels  map[int64]*tg.Channel
	announced map[tdapi.ChatID]struct{}
}

func newPeerCache() *peerCache {
	return &peerCache{
		peers:     make(map[tdapi.ChatID]tg.InputPeerClass),
		channels:  make(map[int64]*tg.Channel),
		announced: make(map[tdapi.ChatID]struct{}),
	}
}

func (c *peerCache) rememberUsers(users []tg.UserClass) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, class := range users {
		user, ok := class.(*tg.User)
		if !ok {
			continue
		}
		c.peers[user.ID] = user.AsInputPeer()
	}
}

func (c *peerCache) rememberChats(chats []tg.ChatClass) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, class := range chats {
		switch chat := class.(type) {
		case *tg.Channel:
			c.channels[chat.ID] = chat
			c.peers[channelChatID(chat.ID)] = chat.AsInputPeer()
		case *tg.Chat:
			c.peers[basicGroupChatID(chat.ID)] = chat.AsInputPeer()
		}
	}
}

// rememberEntities stores the entities attached to a live update.
func (c *peerCache) rememberEntities(e tg.Entities) {
	users := make([]tg.UserClass, 0, len(e.Users))
	for _, u := range e.Users {
		users = append(users, u)
	}
	chats := make([]tg.ChatClass, 0, len(e.Chats)+len(e.Channels))
	for _, ch := range e.Chats {
		chats = append(chats, ch)
	}
	for _, ch := range e.Channels {
		chats = append(chats, ch)
	}

	c.rememberUsers(users)
	c.rememberChats(chats)
}

func (c *peerCache) inputPeer(chatID tdapi.ChatID) (tg.InputPeerClass, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	peer, ok := c.peers[chatID]
	return peer, ok
}

func (c *peerCache) channel(id int64) (*tg.Channel, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ch, ok := c.channels[id]
	return ch, ok
}

// announce reports whether chatID is seen for the first time.
func (c *peerCache) announce(chatID tdapi.ChatID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.announced[chatID]; ok {
		return false
	}
	c.announced[chatID] = struct{}{}
	return true
}
