package tdapi

// Chat is the raw chat record announced by UpdateNewChat.
type Chat struct {
	ID    ChatID
	Title string
	Type  ChatType
}

// TypeName implements Object.
func (*Chat) TypeName() string { return "chat" }

// ChatType is the sealed family of chat kinds.
type ChatType interface {
	Object
	isChatType()
}

// ChatTypePrivate is a one-to-one chat with a user.
type ChatTypePrivate struct {
	UserID UserID
}

// ChatTypeSecret is an end-to-end encrypted chat with a user.
type ChatTypeSecret struct {
	SecretChatID int32
	UserID       UserID
}

// ChatTypeBasicGroup is a legacy small group.
type ChatTypeBasicGroup struct {
	BasicGroupID int64
}

// ChatTypeSupergroup is a channel, megagroup or forum.
type ChatTypeSupergroup struct {
	SupergroupID SupergroupID
	IsChannel    bool
}

func (*ChatTypePrivate) TypeName() string    { return "chatTypePrivate" }
func (*ChatTypeSecret) TypeName() string     { return "chatTypeSecret" }
func (*ChatTypeBasicGroup) TypeName() string { return "chatTypeBasicGroup" }
func (*ChatTypeSupergroup) TypeName() string { return "chatTypeSupergroup" }

func (*ChatTypePrivate) isChatType()    {}
func (*ChatTypeSecret) isChatType()     {}
func (*ChatTypeBasicGroup) isChatType() {}
func (*ChatTypeSupergroup) isChatType() {}

// Supergroup is the engine record of a supergroup. The four flags decide how
// chats backed by it are classified.
type Supergroup struct {
	ID                    SupergroupID
	Username              string
	IsChannel             bool // broadcast channel
	IsForum               bool // megagroup split into topics
	HasLinkedChat         bool // linked to a channel (discussion) or a discussion group
	IsDirectMessagesGroup bool // direct messages chat of a channel
}

// TypeName implements Object.
func (*Supergroup) TypeName() string { return "supergroup" }

// SupergroupFullInfo is the detail record fetched with GetSupergroupFullInfo.
type SupergroupFullInfo struct {
	Description          string
	InviteLink           string
	MemberCount          int32
	LinkedChatID         ChatID
	DirectMessagesChatID ChatID
}

// TypeName implements Object.
func (*SupergroupFullInfo) TypeName() string { return "supergroupFullInfo" }

// User is a Telegram user.
type User struct {
	ID          UserID
	FirstName   string
	LastName    string
	Username    string
	PhoneNumber string
}

// TypeName implements Object.
func (*User) TypeName() string { return "user" }
