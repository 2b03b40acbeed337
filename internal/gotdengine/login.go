package gotdengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/blockedby/tgchats/internal/tdapi"
)

func (e *Engine) setParameters(ctx context.Context, params *tdapi.SetTdlibParameters) (tdapi.Object, error) {
	e.mu.Lock()
	connected := e.conn != nil
	e.mu.Unlock()
	if connected {
		return nil, &tdapi.Error{Code: 400, Message: "unexpected setTdlibParameters"}
	}

	e.emit(&tdapi.UpdateConnectionState{State: "connecting"})
	conn, err := e.dial(ctx, params, e.updates)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		_ = conn.stop()
		return nil, errClosed
	}
	e.conn = conn
	e.mu.Unlock()

	e.log.Info().Bool("test_dc", params.UseTestDC).Msg("connected")
	e.emit(&tdapi.UpdateConnectionState{State: "ready"})

	status, err := conn.auth.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth status: %w", err)
	}
	e.goAsync(func() {
		if status.Authorized {
			e.emitAuthState(&tdapi.AuthorizationStateReady{})
			return
		}
		e.emitAuthState(&tdapi.AuthorizationStateWaitPhoneNumber{})
	})
	return &tdapi.Ok{}, nil
}

func (e *Engine) sendCode(ctx context.Context, req *tdapi.SetAuthenticationPhoneNumber) (tdapi.Object, error) {
	conn, err := e.connection()
	if err != nil {
		return nil, err
	}

	sent, err := conn.auth.SendCode(ctx, req.PhoneNumber, auth.SendCodeOptions{
		AllowFlashCall: req.Settings.AllowFlashCall,
		CurrentNumber:  req.Settings.IsCurrentPhoneNumber,
	})
	if err != nil {
		return nil, err
	}

	switch s := sent.(type) {
	case *tg.AuthSentCode:
		e.mu.Lock()
		e.phone = req.PhoneNumber
		e.codeHash = s.PhoneCodeHash
		e.mu.Unlock()

		timeout, _ := s.GetTimeout()
		e.goAsync(func() {
			e.emitAuthState(&tdapi.AuthorizationStateWaitCode{CodeInfo: tdapi.AuthenticationCodeInfo{
				PhoneNumber: req.PhoneNumber,
				Type:        codeType(s.Type),
				Timeout:     int32(timeout),
			}})
		})
	case *tg.AuthSentCodeSuccess:
		e.goAsync(func() {
			e.emitAuthState(&tdapi.AuthorizationStateReady{})
		})
	default:
		return nil, fmt.Errorf("unexpected sent code %T", sent)
	}
	return &tdapi.Ok{}, nil
}

func codeType(t tg.AuthSentCodeTypeClass) string {
	switch t.(type) {
	case *tg.AuthSentCodeTypeApp:
		return "app"
	case *tg.AuthSentCodeTypeSMS:
		return "sms"
	case *tg.AuthSentCodeTypeCall:
		return "call"
	case *tg.AuthSentCodeTypeFlashCall:
		return "flash_call"
	default:
		return "unknown"
	}
}

func (e *Engine) checkCode(ctx context.Context, req *tdapi.CheckAuthenticationCode) (tdapi.Object, error) {
	conn, err := e.connection()
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	phone, hash := e.phone, e.codeHash
	e.mu.Unlock()
	if hash == "" {
		return nil, &tdapi.Error{Code: 400, Message: "unexpected checkAuthenticationCode"}
	}

	_, err = conn.auth.SignIn(ctx, phone, req.Code, hash)
	var signUp *auth.SignUpRequired
	switch {
	case errors.Is(err, auth.ErrPasswordAuthNeeded):
		return e.askPassword(ctx, conn)
	case errors.As(err, &signUp):
		e.goAsync(func() {
			e.emitAuthState(&tdapi.AuthorizationStateWaitRegistration{})
		})
		return &tdapi.Ok{}, nil
	case err != nil:
		return nil, err
	}

	e.goAsync(func() {
		e.emitAuthState(&tdapi.AuthorizationStateReady{})
	})
	return &tdapi.Ok{}, nil
}

// askPassword moves the login to the two-step verification password.
func (e *Engine) askPassword(ctx context.Context, conn *connection) (tdapi.Object, error) {
	pwd, err := conn.api.AccountGetPassword(ctx)
	if err != nil {
		return nil, fmt.Errorf("get password settings: %w", err)
	}
	hint, _ := pwd.GetHint()
	e.goAsync(func() {
		e.emitAuthState(&tdapi.AuthorizationStateWaitPassword{PasswordHint: hint})
	})
	return &tdapi.Ok{}, nil
}

func (e *Engine) checkPassword(ctx context.Context, req *tdapi.CheckAuthenticationPassword) (tdapi.Object, error) {
	conn, err := e.connection()
	if err != nil {
		return nil, err
	}
	if _, err := conn.auth.Password(ctx, req.Password); err != nil {
		return nil, err
	}
	e.goAsync(func() {
		e.emitAuthState(&tdapi.AuthorizationStateReady{})
	})
	return &tdapi.Ok{}, nil
}

// requestQR starts the QR login in the background. Each new login link is
// announced as WaitOtherDeviceConfirmation.
func (e *Engine) requestQR(ctx context.Context) (tdapi.Object, error) {
	conn, err := e.connection()
	if err != nil {
		return nil, err
	}
	if conn.qr == nil {
		return nil, &tdapi.Error{Code: 400, Message: "QR login is not supported"}
	}

	e.goAsync(func() {
		err := conn.qr(ctx, func(_ context.Context, link string) error {
			e.emitAuthState(&tdapi.AuthorizationStateWaitOtherDeviceConfirmation{Link: link})
			return nil
		})
		switch {
		case err == nil:
			e.emitAuthState(&tdapi.AuthorizationStateReady{})
		case errors.Is(err, auth.ErrPasswordAuthNeeded) || tgerr.Is(err, "SESSION_PASSWORD_NEEDED"):
			if _, err := e.askPassword(ctx, conn); err != nil {
				e.reportError(err)
			}
		case ctx.Err() != nil:
		default:
			e.reportError(fmt.Errorf("qr login: %w", err))
		}
	})
	return &tdapi.Ok{}, nil
}

func (e *Engine) getMe(ctx context.Context) (tdapi.Object, error) {
	conn, err := e.connection()
	if err != nil {
		return nil, err
	}
	self, err := conn.self(ctx)
	if err != nil {
		return nil, err
	}
	e.peers.rememberUsers([]tg.UserClass{self})
	return userFromTG(self), nil
}
