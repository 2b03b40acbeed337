package api

import (
	"context"

	"github.com/blockedby/tgchats/internal/tdapi"
	"github.com/blockedby/tgchats/internal/telegram"
)

// ChatSource is the read side of a logged in session.
type ChatSource interface {
	Status() (telegram.State, string)
	User() (*tdapi.User, error)
	AllChats() []telegram.ChatInformation
	PlainChats() []telegram.PlainChat
	Channels() []telegram.ChannelInfo
	Groups() []telegram.GroupInfo
	Forums() []telegram.ForumInfo
	Forum(chatID tdapi.ChatID) (telegram.ForumInfo, bool)
	LoadMessages(ctx context.Context, chatID tdapi.ChatID, limit int) ([]tdapi.Message, error)
}

var _ ChatSource = (*telegram.Session)(nil)
