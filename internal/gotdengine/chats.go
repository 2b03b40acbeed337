package gotdengine

import (
	"context"
	"fmt"
	"sync"

	"github.com/gotd/td/tg"

	"github.com/blockedby/tgchats/internal/tdapi"
)

var errChatNotFound = &tdapi.Error{Code: 400, Message: "CHAT_NOT_FOUND"}

// dialogPager is the position in the dialog list between LoadChats calls.
type dialogPager struct {
	mu         sync.Mutex
	offsetDate int
	offsetID   int
	offsetPeer tg.InputPeerClass
	done       bool
}

func (p *dialogPager) reset() {
	p.offsetDate = 0
	p.offsetID = 0
	p.offsetPeer = &tg.InputPeerEmpty{}
	p.done = false
}

// dialogPage is one page of the dialog list with the entities it refers to.
type dialogPage struct {
	dialogs  []tg.DialogClass
	messages []tg.MessageClass
	chats    []tg.ChatClass
	users    []tg.UserClass
	last     bool
}

// loadChats announces the next page of dialogs as UpdateNewChat before
// replying. Once the list is exhausted it replies with a 404 error.
func (e *Engine) loadChats(ctx context.Context, req *tdapi.LoadChats) (tdapi.Object, error) {
	conn, err := e.connection()
	if err != nil {
		return nil, err
	}

	e.dialogs.mu.Lock()
	defer e.dialogs.mu.Unlock()

	if e.dialogs.done {
		return nil, &tdapi.Error{Code: 404, Message: "Not Found"}
	}

	limit := int(req.Limit)
	res, err := conn.api.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
		OffsetDate: e.dialogs.offsetDate,
		OffsetID:   e.dialogs.offsetID,
		OffsetPeer: e.dialogs.offsetPeer,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}

	var page dialogPage
	switch d := res.(type) {
	case *tg.MessagesDialogs:
		page = dialogPage{dialogs: d.Dialogs, messages: d.Messages, chats: d.Chats, users: d.Users, last: true}
	case *tg.MessagesDialogsSlice:
		page = dialogPage{dialogs: d.Dialogs, messages: d.Messages, chats: d.Chats, users: d.Users, last: len(d.Dialogs) < limit}
	case *tg.MessagesDialogsNotModified:
		page = dialogPage{last: true}
	default:
		return nil, fmt.Errorf("unexpected dialogs %T", res)
	}

	if len(page.dialogs) == 0 {
		e.dialogs.done = true
		return nil, &tdapi.Error{Code: 404, Message: "Not Found"}
	}

	e.peers.rememberUsers(page.users)
	e.peers.rememberChats(page.chats)
	e.announceDialogs(page)

	e.dialogs.done = page.last
	e.advanceDialogs(page)
	return &tdapi.Ok{}, nil
}

func (e *Engine) announceDialogs(page dialogPage) {
	entities := indexEntities(page.chats, page.users)
	for _, class := range page.dialogs {
		dialog, ok := class.(*tg.Dialog)
		if !ok {
			continue
		}
		e.announcePeer(dialog.Peer, entities)
	}
}

// advanceDialogs moves the offset past the last dialog of page.
func (e *Engine) advanceDialogs(page dialogPage) {
	for i := len(page.dialogs) - 1; i >= 0; i-- {
		dialog, ok := page.dialogs[i].(*tg.Dialog)
		if !ok {
			continue
		}
		chatID := peerChatID(dialog.Peer)
		peer, ok := e.peers.inputPeer(chatID)
		if !ok {
			continue
		}
		date, _ := messageDate(page.messages, chatID, dialog.TopMessage)
		e.dialogs.offsetDate = date
		e.dialogs.offsetID = dialog.TopMessage
		e.dialogs.offsetPeer = peer
		return
	}
	e.dialogs.done = true
}

// entityIndex resolves peers of one response.
type entityIndex struct {
	users    map[int64]*tg.User
	chats    map[int64]*tg.Chat
	channels map[int64]*tg.Channel
}

func indexEntities(chats []tg.ChatClass, users []tg.UserClass) entityIndex {
	idx := entityIndex{
		users:    make(map[int64]*tg.User, len(users)),
		chats:    make(map[int64]*tg.Chat),
		channels: make(map[int64]*tg.Channel),
	}
	for _, class := range users {
		if u, ok := class.(*tg.User); ok {
			idx.users[u.ID] = u
		}
	}
	for _, class := range chats {
		switch c := class.(type) {
		case *tg.Chat:
			idx.chats[c.ID] = c
		case *tg.Channel:
			idx.channels[c.ID] = c
		}
	}
	return idx
}

// announcePeer emits UpdateNewChat for a chat seen for the first time. A
// supergroup is preceded by its UpdateSupergroup.
func (e *Engine) announcePeer(peer tg.PeerClass, idx entityIndex) {
	var chat *tdapi.Chat
	switch p := peer.(type) {
	case *tg.PeerUser:
		if u, ok := idx.users[p.UserID]; ok {
			chat = chatFromUser(u)
		}
	case *tg.PeerChat:
		if c, ok := idx.chats[p.ChatID]; ok {
			chat = chatFromBasicGroup(c)
		}
	case *tg.PeerChannel:
		if ch, ok := idx.channels[p.ChannelID]; ok {
			chat = chatFromChannel(ch)
			if e.peers.announce(chat.ID) {
				e.emit(&tdapi.UpdateSupergroup{Supergroup: supergroupFromChannel(ch)})
				e.emit(&tdapi.UpdateNewChat{Chat: chat})
			}
			return
		}
	}

	if chat == nil {
		e.log.Debug().Str("peer", peer.String()).Msg("dialog peer without entity")
		return
	}
	if e.peers.announce(chat.ID) {
		e.emit(&tdapi.UpdateNewChat{Chat: chat})
	}
}

func (e *Engine) supergroupFullInfo(ctx context.Context, req *tdapi.GetSupergroupFullInfo) (tdapi.Object, error) {
	conn, err := e.connection()
	if err != nil {
		return nil, err
	}
	ch, ok := e.peers.channel(req.SupergroupID)
	if !ok {
		return nil, errChatNotFound
	}

	res, err := conn.api.ChannelsGetFullChannel(ctx, ch.AsInput())
	if err != nil {
		return nil, err
	}
	e.peers.rememberUsers(res.Users)
	e.peers.rememberChats(res.Chats)

	full, ok := res.FullChat.(*tg.ChannelFull)
	if !ok {
		return nil, fmt.Errorf("unexpected full chat %T", res.FullChat)
	}
	if fresh, ok := e.peers.channel(req.SupergroupID); ok {
		ch = fresh
	}
	return fullInfoFromChannel(full, ch), nil
}

func (e *Engine) forumTopics(ctx context.Context, req *tdapi.GetForumTopics) (tdapi.Object, error) {
	conn, err := e.connection()
	if err != nil {
		return nil, err
	}
	peer, ok := e.peers.inputPeer(req.ChatID)
	if !ok {
		return nil, errChatNotFound
	}

	res, err := conn.api.MessagesGetForumTopics(ctx, &tg.MessagesGetForumTopicsRequest{
		Peer:        peer,
		Q:           req.Query,
		OffsetDate:  int(req.OffsetDate),
		OffsetID:    int(req.OffsetMessageID),
		OffsetTopic: int(req.OffsetMessageThreadID),
		Limit:       int(req.Limit),
	})
	if err != nil {
		return nil, err
	}
	e.peers.rememberUsers(res.Users)
	e.peers.rememberChats(res.Chats)

	out := &tdapi.ForumTopics{TotalCount: int32(res.Count)}
	for _, class := range res.Topics {
		topic, ok := class.(*tg.ForumTopic)
		if !ok {
			continue
		}
		date, ok := messageDate(res.Messages, req.ChatID, topic.TopMessage)
		if !ok {
			date = topic.Date
		}

		out.Topics = append(out.Topics, tdapi.ForumTopic{
			Info: tdapi.ForumTopicInfo{
				Name:         topic.Title,
				ChatID:       req.ChatID,
				ForumTopicID: int64(topic.ID),
				IsClosed:     topic.Closed,
				IsPinned:     topic.Pinned,
			},
			Order: topicOrder(topic, date),
		})
		out.NextOffsetDate = int32(date)
		out.NextOffsetMessageID = int64(topic.TopMessage)
		out.NextOffsetMessageThreadID = int64(topic.ID)
	}
	return out, nil
}

// chatHistory returns messages older than FromMessageID, newest first.
func (e *Engine) chatHistory(ctx context.Context, req *tdapi.GetChatHistory) (tdapi.Object, error) {
	conn, err := e.connection()
	if err != nil {
		return nil, err
	}
	peer, ok := e.peers.inputPeer(req.ChatID)
	if !ok {
		return nil, errChatNotFound
	}

	res, err := conn.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:      peer,
		OffsetID:  int(req.FromMessageID),
		AddOffset: int(req.Offset),
		Limit:     int(req.Limit),
	})
	if err != nil {
		return nil, err
	}

	var (
		messages []tg.MessageClass
		total    int
	)
	switch m := res.(type) {
	case *tg.MessagesMessages:
		messages, total = m.Messages, len(m.Messages)
		e.peers.rememberUsers(m.Users)
		e.peers.rememberChats(m.Chats)
	case *tg.MessagesMessagesSlice:
		messages, total = m.Messages, m.Count
		e.peers.rememberUsers(m.Users)
		e.peers.rememberChats(m.Chats)
	case *tg.MessagesChannelMessages:
		messages, total = m.Messages, m.Count
		e.peers.rememberUsers(m.Users)
		e.peers.rememberChats(m.Chats)
	case *tg.MessagesMessagesNotModified:
		total = m.Count
	default:
		return nil, fmt.Errorf("unexpected messages %T", res)
	}

	out := &tdapi.Messages{TotalCount: int32(total)}
	for _, class := range messages {
		if msg, ok := messageFromTG(class, req.ChatID); ok {
			out.Messages = append(out.Messages, msg)
		}
	}
	return out, nil
}
