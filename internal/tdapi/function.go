package tdapi

// SetTdlibParameters configures the session. It is the answer to
// AuthorizationStateWaitTdlibParameters.
type SetTdlibParameters struct {
	UseTestDC           bool
	DatabaseDirectory   string
	FilesDirectory      string
	UseFileDatabase     bool
	UseChatInfoDatabase bool
	UseMessageDatabase  bool
	UseSecretChats      bool
	APIID               int
	APIHash             string
	SystemLanguageCode  string
	DeviceModel         string
	SystemVersion       string
	ApplicationVersion  string
}

// PhoneNumberAuthenticationSettings tunes how the verification code is delivered.
type PhoneNumberAuthenticationSettings struct {
	AllowFlashCall        bool
	AllowMissedCall       bool
	IsCurrentPhoneNumber  bool
	HasUnknownPhoneNumber bool
	AllowSMSRetrieverAPI  bool
}

// SetAuthenticationPhoneNumber starts login with a phone number.
type SetAuthenticationPhoneNumber struct {
	PhoneNumber string
	Settings    PhoneNumberAuthenticationSettings
}

// RequestQrCodeAuthentication starts login confirmed from another device.
type RequestQrCodeAuthentication struct {
	OtherUserIDs []UserID
}

// CheckAuthenticationCode submits the verification code.
type CheckAuthenticationCode struct {
	Code string
}

// CheckAuthenticationPassword submits the two-step verification password.
type CheckAuthenticationPassword struct {
	Password string
}

// GetMe returns the current user.
type GetMe struct{}

// ChatList selects a chat list. Only the main list is used by this client.
type ChatList string

// ChatListMain is the default chat list.
const ChatListMain ChatList = "chatListMain"

// LoadChats asks the engine to announce more chats of List with UpdateNewChat.
// The reply is Ok, or Error 404 once every chat has been announced.
type LoadChats struct {
	List  ChatList
	Limit int32
}

// GetSupergroupFullInfo fetches the detail record of a supergroup.
type GetSupergroupFullInfo struct {
	SupergroupID SupergroupID
}

// GetForumTopics fetches one page of forum topics.
type GetForumTopics struct {
	ChatID                ChatID
	Query                 string
	OffsetDate            int32
	OffsetMessageID       int64
	OffsetMessageThreadID int64
	Limit                 int32
}

// GetChatHistory fetches messages older than FromMessageID (0 means newest).
type GetChatHistory struct {
	ChatID        ChatID
	FromMessageID int64
	Offset        int32
	Limit         int32
	OnlyLocal     bool
}

// Close shuts the engine down; it answers with Closing and Closed states.
type Close struct{}

func (*SetTdlibParameters) TypeName() string           { return "setTdlibParameters" }
func (*SetAuthenticationPhoneNumber) TypeName() string { return "setAuthenticationPhoneNumber" }
func (*RequestQrCodeAuthentication) TypeName() string  { return "requestQrCodeAuthentication" }
func (*CheckAuthenticationCode) TypeName() string      { return "checkAuthenticationCode" }
func (*CheckAuthenticationPassword) TypeName() string  { return "checkAuthenticationPassword" }
func (*GetMe) TypeName() string                        { return "getMe" }
func (*LoadChats) TypeName() string                    { return "loadChats" }
func (*GetSupergroupFullInfo) TypeName() string        { return "getSupergroupFullInfo" }
func (*GetForumTopics) TypeName() string               { return "getForumTopics" }
func (*GetChatHistory) TypeName() string               { return "getChatHistory" }
func (*Close) TypeName() string                        { return "close" }

func (*SetTdlibParameters) isFunction()           {}
func (*SetAuthenticationPhoneNumber) isFunction() {}
func (*RequestQrCodeAuthentication) isFunction()  {}
func (*CheckAuthenticationCode) isFunction()      {}
func (*CheckAuthenticationPassword) isFunction()  {}
func (*GetMe) isFunction()                        {}
func (*LoadChats) isFunction()                    {}
func (*GetSupergroupFullInfo) isFunction()        {}
func (*GetForumTopics) isFunction()               {}
func (*GetChatHistory) isFunction()               {}
func (*Close) isFunction()                        {}
