package tdapi

// UpdateAuthorizationState announces a new authorization step.
type UpdateAuthorizationState struct {
	State AuthorizationState
}

// UpdateNewChat announces a chat the client did not know before.
type UpdateNewChat struct {
	Chat *Chat
}

// UpdateSupergroup announces a new or changed supergroup record.
type UpdateSupergroup struct {
	Supergroup *Supergroup
}

// UpdateSupergroupFullInfo announces a changed supergroup detail record.
type UpdateSupergroupFullInfo struct {
	SupergroupID SupergroupID
	FullInfo     *SupergroupFullInfo
}

// UpdateOption announces a changed engine option.
type UpdateOption struct {
	Name  string
	Value string
}

// UpdateConnectionState announces a network state change.
type UpdateConnectionState struct {
	State string // "connecting", "updating", "ready", ...
}

// UpdateChatPosition announces a chat moved within a chat list.
type UpdateChatPosition struct {
	ChatID ChatID
	Order  int64
}

func (*UpdateAuthorizationState) TypeName() string { return "updateAuthorizationState" }
func (*UpdateNewChat) TypeName() string            { return "updateNewChat" }
func (*UpdateSupergroup) TypeName() string         { return "updateSupergroup" }
func (*UpdateSupergroupFullInfo) TypeName() string { return "updateSupergroupFullInfo" }
func (*UpdateOption) TypeName() string             { return "updateOption" }
func (*UpdateConnectionState) TypeName() string    { return "updateConnectionState" }
func (*UpdateChatPosition) TypeName() string       { return "updateChatPosition" }

func (*UpdateAuthorizationState) isUpdate() {}
func (*UpdateNewChat) isUpdate()            {}
func (*UpdateSupergroup) isUpdate()         {}
func (*UpdateSupergroupFullInfo) isUpdate() {}
func (*UpdateOption) isUpdate()             {}
func (*UpdateConnectionState) isUpdate()    {}
func (*UpdateChatPosition) isUpdate()       {}
