package main

import (
	"fmt"
	"io"
	"time"

	"github.com/blockedby/tgchats/internal/tdapi"
	"github.com/blockedby/tgchats/internal/telegram"
)

// summarySource is the part of telegram.Session the summary reads.
type summarySource interface {
	PlainChats() []telegram.PlainChat
	Channels() []telegram.ChannelInfo
	Groups() []telegram.GroupInfo
	Forums() []telegram.ForumInfo
}

func printSummary(w io.Writer, s summarySource) {
	chats := s.PlainChats()
	fmt.Fprintf(w, "Chats (%d):\n", len(chats))
	for _, c := range chats {
		fmt.Fprintf(w, "  %s\n", c.Info())
	}

	channels := s.Channels()
	fmt.Fprintf(w, "Channels (%d):\n", len(channels))
	for _, c := range channels {
		fmt.Fprintf(w, "  %s\n", c.Info())
		if c.DiscussionChat != nil {
			fmt.Fprintf(w, "    discussion: %d %s\n", c.DiscussionChat.ID, c.DiscussionChat.Title)
		}
		if c.DirectMessagesChat != nil {
			fmt.Fprintf(w, "    direct messages: %d %s\n", c.DirectMessagesChat.ID, c.DirectMessagesChat.Title)
		}
	}

	groups := s.Groups()
	fmt.Fprintf(w, "Groups (%d):\n", len(groups))
	for _, g := range groups {
		fmt.Fprintf(w, "  %s\n", g.Info())
	}

	forums := s.Forums()
	fmt.Fprintf(w, "Forums (%d):\n", len(forums))
	for _, f := range forums {
		fmt.Fprintf(w, "  %s\n", f.Info())
		for _, topic := range f.Topics() {
			fmt.Fprintf(w, "    # %d %s\n", topic.ID(), topic.Info.Name)
		}
	}
}

func printHistory(w io.Writer, chatID tdapi.ChatID, messages []tdapi.Message) {
	fmt.Fprintf(w, "History of %d (%d messages):\n", chatID, len(messages))
	for _, msg := range messages {
		date := time.Unix(int64(msg.Date), 0).UTC().Format(time.DateTime)
		switch c := msg.Content.(type) {
		case *tdapi.MessageText:
			fmt.Fprintf(w, "  [%d] %s %s\n", msg.ID, date, c.Text)
		case *tdapi.MessageUnsupported:
			fmt.Fprintf(w, "  [%d] %s <%s>\n", msg.ID, date, c.Kind)
		default:
			fmt.Fprintf(w, "  [%d] %s\n", msg.ID, date)
		}
	}
}
