package telegram

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blockedby/tgchats/internal/tdapi"
)

// scriptLogin makes the engine announce the next authorization step after each
// login request, the way the real engine does.
func scriptLogin(engine *fakeEngine) {
	engine.onSend = func(fn tdapi.Function) {
		var next tdapi.AuthorizationState
		switch fn.(type) {
		case *tdapi.SetTdlibParameters:
			next = &tdapi.AuthorizationStateWaitPhoneNumber{}
		case *tdapi.SetAuthenticationPhoneNumber:
			next = &tdapi.AuthorizationStateWaitCode{}
		case *tdapi.CheckAuthenticationCode:
			next = &tdapi.AuthorizationStateReady{}
		case *tdapi.LoadChats:
			if engine.countCalls("loadChats") == 1 {
				engine.emit(supergroupUpdate(tdapi.Supergroup{ID: 1, IsChannel: true}))
				engine.emit(supergroupUpdate(tdapi.Supergroup{ID: 2}))
				engine.emit(newChat(supergroupChat(-1, "news", 1)))
				engine.emit(newChat(supergroupChat(-2, "team", 2)))
				engine.emit(newChat(privateChat(3, "ann")))
			}
			return
		default:
			return
		}
		engine.emit(authUpdate(next))
	}
}

func newTestSession(t *testing.T, engine *fakeEngine) *Session {
	t.Helper()
	log, _ := newTestLogger()
	return NewSession(engine, Options{
		Auth:       AuthConfig{PhoneNumber: "+1"},
		Input:      &StaticInput{CodeValue: "12345"},
		Dispatcher: DispatcherConfig{Buffer: 16},
		Logger:     log,
	})
}

func TestSession_LoginAndLoadChats(t *testing.T) {
	defer goleak.VerifyNone(t)

	// Arrange
	engine := newFakeEngine()
	scriptLogin(engine)
	engine.reply("getMe", &tdapi.User{ID: 3, FirstName: "Ann"})
	engine.reply("loadChats", &tdapi.Ok{}, &tdapi.Error{Code: 404, Message: "Not Found"})
	s := newTestSession(t, engine)
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()

	require.NoError(t, s.Start())
	engine.emit(authUpdate(&tdapi.AuthorizationStateWaitTdlibParameters{}))

	// Act
	user, err := s.Login(ctx)
	require.NoError(t, err)
	require.NoError(t, s.LoadChats(ctx))

	// Assert
	assert.Equal(t, int64(3), user.ID)
	state, substate := s.Status()
	assert.Equal(t, StateAuthorized, state)
	assert.Equal(t, "authorizationStateReady", substate)

	require.Len(t, s.Channels(), 1)
	assert.Equal(t, "news", s.Channels()[0].Chat.Title)
	require.Len(t, s.Groups(), 1)
	require.Len(t, s.PlainChats(), 1)
	assert.Empty(t, s.Forums())
	assert.Len(t, s.AllChats(), 3)

	require.NoError(t, s.Close())
	assert.True(t, engine.closed)
	assert.Contains(t, engine.callNames(), "close")
}

func TestSession_RequiresLogin(t *testing.T) {
	defer goleak.VerifyNone(t)

	engine := newFakeEngine()
	s := newTestSession(t, engine)
	defer s.Close()

	err := s.LoadChats(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = s.LoadMessages(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = s.User()
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Empty(t, engine.callNames())
}

func TestSession_InitializeFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	engine := newFakeEngine()
	engine.initErr = errors.New("no native library")
	s := newTestSession(t, engine)
	defer s.Close()

	_, err := s.Login(context.Background())

	assert.ErrorContains(t, err, "no native library")
	_, futureErr, done := s.LoginFuture().Result()
	assert.True(t, done)
	assert.Error(t, futureErr)
}

func TestSession_CloseBeforeStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	engine := newFakeEngine()
	s := newTestSession(t, engine)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Start(), ErrSessionClosed)
	assert.Empty(t, engine.callNames())
	assert.True(t, engine.closed)
}
