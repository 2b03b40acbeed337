package telegram

import (
	"context"
	"fmt"
	"sync"

	"github.com/blockedby/tgchats/internal/logger"
	"github.com/blockedby/tgchats/internal/tdapi"
)

// State is the coarse login state of a session.
type State int32

const (
	StateFailed      State = -1
	StateCreated     State = 0
	StateAuthorizing State = 1
	StateAuthorized  State = 2
)

func (s State) String() string {
	switch s {
	case StateFailed:
		return "failed"
	case StateCreated:
		return "created"
	case StateAuthorizing:
		return "authorizing"
	case StateAuthorized:
		return "authorized"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// AuthConfig holds what the authorizer sends on the user's behalf.
type AuthConfig struct {
	Parameters  tdapi.SetTdlibParameters
	PhoneNumber string
	// UseQR answers the phone number step with a QR code login request.
	UseQR bool
}

// Authorizer walks the engine through login. It reacts to authorization state
// updates one at a time and completes its future once, with the logged in user
// or with the failure of the final identity request.
type Authorizer struct {
	cfg   AuthConfig
	corr  *Correlator
	input InputProvider
	log   *logger.Logger

	mu       sync.RWMutex
	state    State
	substate string
	user     *tdapi.User

	done *Future[*tdapi.User]
}

// NewAuthorizer creates an authorizer in StateCreated.
func NewAuthorizer(cfg AuthConfig, corr *Correlator, input InputProvider, log *logger.Logger) *Authorizer {
	return &Authorizer{
		cfg:   cfg,
		corr:  corr,
		input: input,
		log:   logger.OrGlobal(log).Component("auth"),
		state: StateCreated,
		done:  NewFuture[*tdapi.User](),
	}
}

// Start moves a new authorizer to StateAuthorizing.
func (a *Authorizer) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StateCreated {
		a.state = StateAuthorizing
	}
}

// Done returns the login completion future.
func (a *Authorizer) Done() *Future[*tdapi.User] {
	return a.done
}

// State returns the current login state.
func (a *Authorizer) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Substate returns the type name of the last authorization state seen.
func (a *Authorizer) Substate() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.substate
}

// User returns the logged in user.
func (a *Authorizer) User() (*tdapi.User, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.state != StateAuthorized {
		return nil, ErrNotAuthorized
	}
	return a.user, nil
}

// HandleUpdate is the dispatcher handler for the authorization queue.
func (a *Authorizer) HandleUpdate(ctx context.Context, update tdapi.Update) error {
	u, ok := update.(*tdapi.UpdateAuthorizationState)
	if !ok || u.State == nil {
		return nil
	}

	a.mu.Lock()
	a.substate = u.State.TypeName()
	terminal := a.state == StateAuthorized || a.state == StateFailed
	a.mu.Unlock()

	if terminal {
		a.log.Debug().Str("type", u.State.TypeName()).Msg("already finished, ignoring authorization state")
		return nil
	}

	a.log.Info().Msgf("authorization state: %s", u.State.TypeName())
	return a.handleState(ctx, u.State)
}

func (a *Authorizer) handleState(ctx context.Context, state tdapi.AuthorizationState) error {
	switch s := state.(type) {
	case *tdapi.AuthorizationStateWaitTdlibParameters:
		params := a.cfg.Parameters
		return a.invoke(ctx, &params)

	case *tdapi.AuthorizationStateWaitPhoneNumber:
		if a.cfg.UseQR {
			return a.invoke(ctx, &tdapi.RequestQrCodeAuthentication{})
		}
		return a.invoke(ctx, &tdapi.SetAuthenticationPhoneNumber{
			PhoneNumber: a.cfg.PhoneNumber,
			Settings:    tdapi.PhoneNumberAuthenticationSettings{},
		})

	case *tdapi.AuthorizationStateWaitCode:
		code, err := a.input.Code(ctx, s.CodeInfo)
		if err != nil {
			return fmt.Errorf("read verification code: %w", err)
		}
		return a.invoke(ctx, &tdapi.CheckAuthenticationCode{Code: code})

	case *tdapi.AuthorizationStateWaitPassword:
		password, err := a.input.Password(ctx, s.PasswordHint)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		return a.invoke(ctx, &tdapi.CheckAuthenticationPassword{Password: password})

	case *tdapi.AuthorizationStateWaitOtherDeviceConfirmation:
		return a.input.ConfirmOnOtherDevice(ctx, s.Link)

	case *tdapi.AuthorizationStateReady:
		return a.fetchUser(ctx)

	case *tdapi.AuthorizationStateLoggingOut,
		*tdapi.AuthorizationStateClosing,
		*tdapi.AuthorizationStateClosed:
		return nil

	case *tdapi.AuthorizationStateWaitEmailAddress,
		*tdapi.AuthorizationStateWaitEmailCode,
		*tdapi.AuthorizationStateWaitRegistration,
		*tdapi.AuthorizationStateWaitPremiumPurchase:
		a.log.Warn().Str("type", state.TypeName()).Msg("unsupported authorization step")
		return nil
	}

	a.log.Warn().Str("type", state.TypeName()).Msg("unknown authorization state")
	return nil
}

func (a *Authorizer) fetchUser(ctx context.Context) error {
	user, err := InvokeAs[*tdapi.User](ctx, a.corr, &tdapi.GetMe{})
	if err != nil {
		a.mu.Lock()
		a.state = StateFailed
		a.mu.Unlock()

		err = fmt.Errorf("get current user: %w", err)
		a.done.Reject(err)
		return err
	}

	a.mu.Lock()
	a.state = StateAuthorized
	a.user = user
	a.mu.Unlock()

	a.log.Info().Msg(tdapi.ShortInfo(user))
	a.done.Resolve(user)
	return nil
}

func (a *Authorizer) invoke(ctx context.Context, fn tdapi.Function) error {
	if _, err := a.corr.Invoke(ctx, fn); err != nil {
		return fmt.Errorf("%s: %w", fn.TypeName(), err)
	}
	return nil
}
