package gotdengine

import (
	"context"

	"github.com/gotd/td/tg"

	"github.com/blockedby/tgchats/internal/tdapi"
)

// registerUpdateHandlers announces chats that show up in live updates after
// the dialog list has been loaded.
func (e *Engine) registerUpdateHandlers() {
	e.updates.OnNewMessage(func(_ context.Context, ent tg.Entities, update *tg.UpdateNewMessage) error {
		e.onMessage(ent, update.Message)
		return nil
	})
	e.updates.OnNewChannelMessage(func(_ context.Context, ent tg.Entities, update *tg.UpdateNewChannelMessage) error {
		e.onMessage(ent, update.Message)
		return nil
	})
	e.updates.OnChannel(func(_ context.Context, ent tg.Entities, update *tg.UpdateChannel) error {
		e.peers.rememberEntities(ent)
		ch, ok := ent.Channels[update.ChannelID]
		if !ok {
			return nil
		}
		chat := chatFromChannel(ch)
		e.emit(&tdapi.UpdateSupergroup{Supergroup: supergroupFromChannel(ch)})
		if e.peers.announce(chat.ID) {
			e.emit(&tdapi.UpdateNewChat{Chat: chat})
		}
		return nil
	})
}

func (e *Engine) onMessage(ent tg.Entities, class tg.MessageClass) {
	e.peers.rememberEntities(ent)

	var peer tg.PeerClass
	switch m := class.(type) {
	case *tg.Message:
		peer = m.PeerID
	case *tg.MessageService:
		peer = m.PeerID
	default:
		return
	}

	idx := entityIndex{users: ent.Users, chats: ent.Chats, channels: ent.Channels}
	e.announcePeer(peer, idx)
}
