package tdapi

// Message is a chat message as returned by GetChatHistory.
type Message struct {
	ID      int64
	ChatID  ChatID
	Date    int32
	Content MessageContent
}

// TypeName implements Object.
func (*Message) TypeName() string { return "message" }

// Messages is one page of messages.
type Messages struct {
	TotalCount int32
	Messages   []Message
}

// TypeName implements Object.
func (*Messages) TypeName() string { return "messages" }

// MessageContent is the sealed family of message payloads.
type MessageContent interface {
	Object
	isMessageContent()
}

// MessageText is a plain text message.
type MessageText struct {
	Text string
}

// MessageUnsupported is any content this client does not model. Kind is the
// content type name, kept for display.
type MessageUnsupported struct {
	Kind string
}

func (*MessageText) TypeName() string        { return "messageText" }
func (*MessageUnsupported) TypeName() string { return "messageUnsupported" }

func (*MessageText) isMessageContent()        {}
func (*MessageUnsupported) isMessageContent() {}

// ContentText returns the text of a message, or the content kind in brackets
// for non-text messages.
func ContentText(content MessageContent) string {
	switch c := content.(type) {
	case *MessageText:
		return c.Text
	case *MessageUnsupported:
		return "[" + c.Kind + "]"
	default:
		return ""
	}
}
