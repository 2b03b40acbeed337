package tdapi

// AuthorizationState is the sealed family of authorization steps announced by
// UpdateAuthorizationState.
type AuthorizationState interface {
	Object
	isAuthorizationState()
}

// AuthenticationCodeInfo describes where the verification code was sent.
type AuthenticationCodeInfo struct {
	PhoneNumber string
	Type        string // delivery channel, e.g. "app", "sms"
	Timeout     int32
}

// AuthorizationStateWaitTdlibParameters asks for session parameters.
type AuthorizationStateWaitTdlibParameters struct{}

// AuthorizationStateWaitPhoneNumber asks for the user's phone number.
type AuthorizationStateWaitPhoneNumber struct{}

// AuthorizationStateWaitCode asks for the verification code.
type AuthorizationStateWaitCode struct {
	CodeInfo AuthenticationCodeInfo
}

// AuthorizationStateWaitPassword asks for the two-step verification password.
type AuthorizationStateWaitPassword struct {
	PasswordHint string
}

// AuthorizationStateWaitOtherDeviceConfirmation asks to confirm the login by
// scanning Link from an already authorized device.
type AuthorizationStateWaitOtherDeviceConfirmation struct {
	Link string
}

// AuthorizationStateWaitEmailAddress asks for a login email address.
type AuthorizationStateWaitEmailAddress struct{}

// AuthorizationStateWaitEmailCode asks for the code sent to the login email.
type AuthorizationStateWaitEmailCode struct{}

// AuthorizationStateWaitRegistration asks to register a new account.
type AuthorizationStateWaitRegistration struct{}

// AuthorizationStateWaitPremiumPurchase asks to buy a subscription before login.
type AuthorizationStateWaitPremiumPurchase struct{}

// AuthorizationStateReady means the session can use the full API.
type AuthorizationStateReady struct{}

// AuthorizationStateLoggingOut means the session is being logged out.
type AuthorizationStateLoggingOut struct{}

// AuthorizationStateClosing means the engine is shutting down.
type AuthorizationStateClosing struct{}

// AuthorizationStateClosed means the engine is closed and will not emit more updates.
type AuthorizationStateClosed struct{}

func (*AuthorizationStateWaitTdlibParameters) TypeName() string {
	return "authorizationStateWaitTdlibParameters"
}
func (*AuthorizationStateWaitPhoneNumber) TypeName() string {
	return "authorizationStateWaitPhoneNumber"
}
func (*AuthorizationStateWaitCode) TypeName() string { return "authorizationStateWaitCode" }
func (*AuthorizationStateWaitPassword) TypeName() string {
	return "authorizationStateWaitPassword"
}
func (*AuthorizationStateWaitOtherDeviceConfirmation) TypeName() string {
	return "authorizationStateWaitOtherDeviceConfirmation"
}
func (*AuthorizationStateWaitEmailAddress) TypeName() string {
	return "authorizationStateWaitEmailAddress"
}
func (*AuthorizationStateWaitEmailCode) TypeName() string {
	return "authorizationStateWaitEmailCode"
}
func (*AuthorizationStateWaitRegistration) TypeName() string {
	return "authorizationStateWaitRegistration"
}
func (*AuthorizationStateWaitPremiumPurchase) TypeName() string {
	return "authorizationStateWaitPremiumPurchase"
}
func (*AuthorizationStateReady) TypeName() string       { return "authorizationStateReady" }
func (*AuthorizationStateLoggingOut) TypeName() string  { return "authorizationStateLoggingOut" }
func (*AuthorizationStateClosing) TypeName() string     { return "authorizationStateClosing" }
func (*AuthorizationStateClosed) TypeName() string      { return "authorizationStateClosed" }

func (*AuthorizationStateWaitTdlibParameters) isAuthorizationState()         {}
func (*AuthorizationStateWaitPhoneNumber) isAuthorizationState()             {}
func (*AuthorizationStateWaitCode) isAuthorizationState()                    {}
func (*AuthorizationStateWaitPassword) isAuthorizationState()                {}
func (*AuthorizationStateWaitOtherDeviceConfirmation) isAuthorizationState() {}
func (*AuthorizationStateWaitEmailAddress) isAuthorizationState()            {}
func (*AuthorizationStateWaitEmailCode) isAuthorizationState()               {}
func (*AuthorizationStateWaitRegistration) isAuthorizationState()            {}
func (*AuthorizationStateWaitPremiumPurchase) isAuthorizationState()         {}
func (*AuthorizationStateReady) isAuthorizationState()                       {}
func (*AuthorizationStateLoggingOut) isAuthorizationState()                  {}
func (*AuthorizationStateClosing) isAuthorizationState()                     {}
func (*AuthorizationStateClosed) isAuthorizationState()                      {}
