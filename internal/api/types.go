package api

import (
	"time"

	"github.com/blockedby/tgchats/internal/tdapi"
	"github.com/blockedby/tgchats/internal/telegram"
)

// StatusResponse is returned by GET /api/v1/status.
type StatusResponse struct {
	State    string        `json:"state"`
	Substate string        `json:"substate,omitempty"`
	User     *UserResponse `json:"user,omitempty"`
}

// UserResponse describes the logged in account.
type UserResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// ChatRef points at a linked chat.
type ChatRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// ChatResponse is one classified chat.
type ChatResponse struct {
	ID                 int64    `json:"id"`
	Title              string   `json:"title"`
	Kind               string   `json:"kind"`
	SupergroupID       int64    `json:"supergroup_id,omitempty"`
	Username           string   `json:"username,omitempty"`
	Description        string   `json:"description,omitempty"`
	InviteLink         string   `json:"invite_link,omitempty"`
	MemberCount        int32    `json:"member_count,omitempty"`
	DiscussionChat     *ChatRef `json:"discussion_chat,omitempty"`
	DirectMessagesChat *ChatRef `json:"direct_messages_chat,omitempty"`
	TopicCount         int      `json:"topic_count,omitempty"`
}

// TopicResponse is one forum topic.
type TopicResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsClosed bool   `json:"is_closed"`
	IsPinned bool   `json:"is_pinned"`
	Order    int64  `json:"order"`
}

// MessageResponse is one history message.
type MessageResponse struct {
	ID   int64     `json:"id"`
	Date time.Time `json:"date"`
	Text string    `json:"text,omitempty"`
	Kind string    `json:"kind"`
}

// ListResponse wraps a list with its size.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func newList[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Total: len(items)}
}

func toChatResponse(info telegram.ChatInformation) ChatResponse {
	chat := info.ChatRecord()
	resp := ChatResponse{ID: chat.ID, Title: chat.Title, Kind: info.Kind()}

	switch c := info.(type) {
	case telegram.ChannelInfo:
		fillSupergroup(&resp, c.Supergroup)
		resp.DiscussionChat = toChatRef(c.DiscussionChat)
		resp.DirectMessagesChat = toChatRef(c.DirectMessagesChat)
	case telegram.GroupInfo:
		fillSupergroup(&resp, c.Supergroup)
	case telegram.ForumInfo:
		resp.TopicCount = len(c.Topics())
	}
	return resp
}

func fillSupergroup(resp *ChatResponse, sg telegram.SupergroupInfo) {
	resp.SupergroupID = sg.ID()
	resp.Username = sg.Supergroup.Username
	resp.Description = sg.FullInfo.Description
	resp.InviteLink = sg.FullInfo.InviteLink
	resp.MemberCount = sg.FullInfo.MemberCount
}

func toChatRef(chat *tdapi.Chat) *ChatRef {
	if chat == nil {
		return nil
	}
	return &ChatRef{ID: chat.ID, Title: chat.Title}
}

func toChatResponses[T telegram.ChatInformation](infos []T) []ChatResponse {
	out := make([]ChatResponse, 0, len(infos))
	for _, info := range infos {
		out = append(out, toChatResponse(info))
	}
	return out
}

func toTopicResponse(topic tdapi.ForumTopic) TopicResponse {
	return TopicResponse{
		ID:       topic.Info.ForumTopicID,
		Name:     topic.Info.Name,
		IsClosed: topic.Info.IsClosed,
		IsPinned: topic.Info.IsPinned,
		Order:    topic.Order,
	}
}

func toMessageResponse(msg tdapi.Message) MessageResponse {
	resp := MessageResponse{
		ID:   msg.ID,
		Date: time.Unix(int64(msg.Date), 0).UTC(),
	}
	switch c := msg.Content.(type) {
	case *tdapi.MessageText:
		resp.Kind = "text"
		resp.Text = c.Text
	case *tdapi.MessageUnsupported:
		resp.Kind = c.Kind
	default:
		resp.Kind = "unknown"
	}
	return resp
}
