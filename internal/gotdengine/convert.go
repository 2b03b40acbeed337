package gotdengine

import (
	"strings"

	"github.com/gotd/td/constant"
	"github.com/gotd/td/tg"

	"github.com/blockedby/tgchats/internal/tdapi"
)

func channelChatID(channelID int64) tdapi.ChatID {
	var id constant.TDLibPeerID
	id.Channel(channelID)
	return int64(id)
}

func basicGroupChatID(chatID int64) tdapi.ChatID {
	var id constant.TDLibPeerID
	id.Chat(chatID)
	return int64(id)
}

// peerChatID converts a peer into an engine chat id.
func peerChatID(peer tg.PeerClass) tdapi.ChatID {
	switch p := peer.(type) {
	case *tg.PeerUser:
		return p.UserID
	case *tg.PeerChat:
		return basicGroupChatID(p.ChatID)
	case *tg.PeerChannel:
		return channelChatID(p.ChannelID)
	default:
		return 0
	}
}

func supergroupFromChannel(ch *tg.Channel) *tdapi.Supergroup {
	return &tdapi.Supergroup{
		ID:                    ch.ID,
		Username:              ch.Username,
		IsChannel:             ch.Broadcast,
		IsForum:               ch.Forum,
		HasLinkedChat:         ch.HasLink,
		IsDirectMessagesGroup: ch.Monoforum,
	}
}

func chatFromChannel(ch *tg.Channel) *tdapi.Chat {
	return &tdapi.Chat{
		ID:    channelChatID(ch.ID),
		Title: ch.Title,
		Type:  &tdapi.ChatTypeSupergroup{SupergroupID: ch.ID, IsChannel: ch.Broadcast},
	}
}

func chatFromBasicGroup(chat *tg.Chat) *tdapi.Chat {
	return &tdapi.Chat{
		ID:    basicGroupChatID(chat.ID),
		Title: chat.Title,
		Type:  &tdapi.ChatTypeBasicGroup{BasicGroupID: chat.ID},
	}
}

func chatFromUser(u *tg.User) *tdapi.Chat {
	return &tdapi.Chat{
		ID:    u.ID,
		Title: userTitle(u),
		Type:  &tdapi.ChatTypePrivate{UserID: u.ID},
	}
}

func userTitle(u *tg.User) string {
	title := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if title == "" && u.Deleted {
		return "Deleted Account"
	}
	return title
}

func userFromTG(u *tg.User) *tdapi.User {
	return &tdapi.User{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Username:    u.Username,
		PhoneNumber: u.Phone,
	}
}

// fullInfoFromChannel maps the full channel record. ch may be nil.
func fullInfoFromChannel(full *tg.ChannelFull, ch *tg.Channel) *tdapi.SupergroupFullInfo {
	info := &tdapi.SupergroupFullInfo{
		Description: full.About,
		MemberCount: int32(full.ParticipantsCount),
	}
	if invite, ok := full.ExportedInvite.(*tg.ChatInviteExported); ok {
		info.InviteLink = invite.Link
	}
	if full.LinkedChatID != 0 {
		info.LinkedChatID = channelChatID(full.LinkedChatID)
	}
	if ch != nil && ch.LinkedMonoforumID != 0 {
		info.DirectMessagesChatID = channelChatID(ch.LinkedMonoforumID)
	}
	return info
}

// topicOrder sorts topics by the date of their last message, pinned topics first.
func topicOrder(topic *tg.ForumTopic, lastMessageDate int) int64 {
	order := int64(lastMessageDate)<<30 | int64(topic.TopMessage)&(1<<30-1)
	if topic.Pinned {
		order += 1 << 62
	}
	return order
}

func messageContent(msg *tg.Message) tdapi.MessageContent {
	if msg.Media == nil || msg.Message != "" {
		return &tdapi.MessageText{Text: msg.Message}
	}
	return &tdapi.MessageUnsupported{Kind: msg.Media.TypeName()}
}

func messageFromTG(class tg.MessageClass, chatID tdapi.ChatID) (tdapi.Message, bool) {
	switch m := class.(type) {
	case *tg.Message:
		return tdapi.Message{
			ID:      int64(m.ID),
			ChatID:  chatID,
			Date:    int32(m.Date),
			Content: messageContent(m),
		}, true
	case *tg.MessageService:
		return tdapi.Message{
			ID:      int64(m.ID),
			ChatID:  chatID,
			Date:    int32(m.Date),
			Content: &tdapi.MessageUnsupported{Kind: m.Action.TypeName()},
		}, true
	default:
		return tdapi.Message{}, false
	}
}

// messageDate finds the date of message id sent in chatID.
func messageDate(messages []tg.MessageClass, chatID tdapi.ChatID, id int) (int, bool) {
	for _, class := range messages {
		switch m := class.(type) {
		case *tg.Message:
			if m.ID == id && peerChatID(m.PeerID) == chatID {
				return m.Date, true
			}
		case *tg.MessageService:
			if m.ID == id && peerChatID(m.PeerID) == chatID {
				return m.Date, true
			}
		}
	}
	return 0, false
}
