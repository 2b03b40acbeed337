package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockedby/tgchats/internal/tdapi"
)

func TestCorrelator_InvokeReturnsReply(t *testing.T) {
	// Arrange
	corr, engine := newTestCorrelator(t)
	engine.reply("getMe", &tdapi.User{ID: 42, FirstName: "Ann"})

	// Act
	user, err := InvokeAs[*tdapi.User](context.Background(), corr, &tdapi.GetMe{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Zero(t, corr.Pending())
}

func TestCorrelator_ErrorReplyBecomesProtocolError(t *testing.T) {
	corr, engine := newTestCorrelator(t)
	engine.reply("loadChats", &tdapi.Error{Code: 404, Message: "Not Found"})

	_, err := corr.Invoke(context.Background(), &tdapi.LoadChats{List: tdapi.ChatListMain, Limit: 1})

	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, int32(404), perr.Code)
	assert.True(t, IsProtocolCode(err, CodeNotFound))
	assert.False(t, IsProtocolCode(err, 500))
}

func TestCorrelator_CallKeepsErrorReplyAsValue(t *testing.T) {
	corr, engine := newTestCorrelator(t)
	engine.reply("getMe", &tdapi.Error{Code: 401, Message: "Unauthorized"})

	reply, err := corr.Call(&tdapi.GetMe{}).Wait(context.Background())

	require.NoError(t, err)
	assert.IsType(t, &tdapi.Error{}, reply)
}

func TestCorrelator_UnexpectedReplyType(t *testing.T) {
	corr, _ := newTestCorrelator(t)

	_, err := InvokeAs[*tdapi.User](context.Background(), corr, &tdapi.GetMe{})

	assert.ErrorIs(t, err, ErrUnexpectedReply)
}

func TestCorrelator_SendFailureRejectsImmediately(t *testing.T) {
	corr, engine := newTestCorrelator(t)
	engine.sendErr = errors.New("engine gone")

	future := corr.Call(&tdapi.GetMe{})

	_, err, done := future.Result()
	assert.True(t, done)
	assert.ErrorContains(t, err, "engine gone")
	assert.Zero(t, corr.Pending())
}

func TestCorrelator_OutOfOrderCompletion(t *testing.T) {
	// Arrange: the engine never answers on its own
	corr, engine := newTestCorrelator(t)
	engine.reply("getMe", nil, nil)

	first := corr.Call(&tdapi.GetMe{})
	second := corr.Call(&tdapi.GetMe{})
	require.Equal(t, 2, corr.Pending())

	// Act: answer the second request first
	corr.HandleResult(2, &tdapi.User{ID: 2})
	corr.HandleResult(1, &tdapi.User{ID: 1})
	corr.HandleResult(1, &tdapi.User{ID: 99})

	// Assert
	r1, err := first.Wait(context.Background())
	require.NoError(t, err)
	r2, err := second.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), r1.(*tdapi.User).ID)
	assert.Equal(t, int64(2), r2.(*tdapi.User).ID)
	assert.Zero(t, corr.Pending())
}

func TestCorrelator_FireAndForgetRoutesErrors(t *testing.T) {
	engine := newFakeEngine()
	log, _ := newTestLogger()

	var (
		mu  sync.Mutex
		got []error
	)
	corr := NewCorrelator(engine, func(err error) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, err)
	}, log)
	require.NoError(t, engine.Initialize(Handlers{OnResult: corr.HandleResult}))
	engine.reply("close", &tdapi.Error{Code: 500, Message: "boom"})

	corr.Send(&tdapi.Close{})
	corr.Send(&tdapi.GetMe{})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.True(t, IsProtocolCode(got[0], 500))
	assert.Contains(t, got[0].Error(), "close")
}
