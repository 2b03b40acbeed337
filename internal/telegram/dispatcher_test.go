package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blockedby/tgchats/internal/tdapi"
)

type recorder struct {
	mu      sync.Mutex
	updates []string
}

func (r *recorder) handle(_ context.Context, update tdapi.Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, tdapi.ShortInfo(update))
	return nil
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.updates...)
}

func TestDispatcher_RoutesInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	// Arrange
	log, _ := newTestLogger()
	auth, classify := &recorder{}, &recorder{}
	d := NewDispatcher(DispatcherConfig{Buffer: 2}, auth.handle, classify.handle, log)
	defer d.Close()
	ctx := context.Background()

	// Act
	updates := []tdapi.Update{
		&tdapi.UpdateAuthorizationState{State: &tdapi.AuthorizationStateWaitTdlibParameters{}},
		&tdapi.UpdateSupergroup{Supergroup: &tdapi.Supergroup{ID: 1}},
		&tdapi.UpdateOption{Name: "version", Value: "1"},
		&tdapi.UpdateNewChat{Chat: privateChat(10, "a")},
		&tdapi.UpdateAuthorizationState{State: &tdapi.AuthorizationStateReady{}},
		&tdapi.UpdateConnectionState{State: "ready"},
		&tdapi.UpdateNewChat{Chat: privateChat(11, "b")},
	}
	for _, u := range updates {
		require.NoError(t, d.Publish(ctx, u))
	}
	require.NoError(t, d.WaitIdle(ctx))

	// Assert
	assert.Equal(t, []string{
		"updateAuthorizationState authorizationStateWaitTdlibParameters",
		"updateAuthorizationState authorizationStateReady",
	}, auth.got())
	assert.Equal(t, []string{
		tdapi.ShortInfo(updates[1]),
		tdapi.ShortInfo(updates[3]),
		tdapi.ShortInfo(updates[6]),
	}, classify.got())
}

func TestDispatcher_HandlerFailuresDoNotStopWorker(t *testing.T) {
	defer goleak.VerifyNone(t)

	log, logs := newTestLogger()
	classify := &recorder{}
	calls := 0
	handler := func(ctx context.Context, update tdapi.Update) error {
		calls++
		switch calls {
		case 1:
			panic("boom")
		case 2:
			return errors.New("failed")
		}
		return classify.handle(ctx, update)
	}
	d := NewDispatcher(DispatcherConfig{}, nil, handler, log)
	defer d.Close()
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, d.Publish(ctx, &tdapi.UpdateNewChat{Chat: privateChat(i, "x")}))
	}
	require.NoError(t, d.WaitIdle(ctx))

	assert.Len(t, classify.got(), 1)
	assert.Equal(t, 2, logs.errorCount())
	assert.Contains(t, logs.String(), "classify handler panic: boom")
}

func TestDispatcher_CloseUnwindsBlockedHandler(t *testing.T) {
	defer goleak.VerifyNone(t)

	log, _ := newTestLogger()
	started := make(chan struct{})
	handler := func(ctx context.Context, _ tdapi.Update) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}
	d := NewDispatcher(DispatcherConfig{Buffer: 1}, handler, nil, log)

	require.NoError(t, d.Publish(context.Background(), &tdapi.UpdateAuthorizationState{
		State: &tdapi.AuthorizationStateWaitCode{},
	}))
	<-started

	require.NoError(t, d.Close())

	err := d.Publish(context.Background(), &tdapi.UpdateNewChat{Chat: privateChat(1, "late")})
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.ErrorIs(t, d.WaitIdle(context.Background()), ErrSessionClosed)
}

func TestDispatcher_PublishHonoursContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	log, _ := newTestLogger()
	block := make(chan struct{})
	handler := func(ctx context.Context, _ tdapi.Update) error {
		select {
		case <-block:
		case <-ctx.Done():
		}
		return nil
	}
	d := NewDispatcher(DispatcherConfig{Buffer: 1}, nil, handler, log)
	defer d.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// worker, classify queue and raw queue each hold one update
	var err error
	for i := int64(1); i <= 10 && err == nil; i++ {
		err = d.Publish(ctx, &tdapi.UpdateNewChat{Chat: privateChat(i, "x")})
	}

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDispatcher_UpdateWithoutPayload(t *testing.T) {
	defer goleak.VerifyNone(t)

	// Arrange
	log, logs := newTestLogger()
	classifier := NewClassifier(nil, nil, log)
	d := NewDispatcher(DispatcherConfig{Buffer: 2}, nil, classifier.HandleUpdate, log)
	defer d.Close()
	ctx := context.Background()

	// Act
	require.NoError(t, d.Publish(ctx, &tdapi.UpdateNewChat{}))
	require.NoError(t, d.Publish(ctx, &tdapi.UpdateSupergroup{}))
	require.NoError(t, d.Publish(ctx, &tdapi.UpdateNewChat{Chat: privateChat(7, "ann")}))
	require.NoError(t, d.WaitIdle(ctx))

	// Assert
	chats := classifier.PlainChats()
	require.Len(t, chats, 1)
	assert.Equal(t, tdapi.ChatID(7), chats[0].Chat.ID)
	assert.Equal(t, 0, logs.errorCount())
	assert.Contains(t, logs.String(), "[update] updateNewChat chat")
}

func TestDispatcher_ClassifiesWhileAuthorizationWaits(t *testing.T) {
	defer goleak.VerifyNone(t)

	// Arrange
	log, _ := newTestLogger()
	started := make(chan struct{})
	auth := func(ctx context.Context, _ tdapi.Update) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}
	classify := &recorder{}
	d := NewDispatcher(DispatcherConfig{Buffer: 2}, auth, classify.handle, log)
	ctx := context.Background()

	// Act
	require.NoError(t, d.Publish(ctx, &tdapi.UpdateAuthorizationState{State: &tdapi.AuthorizationStateWaitCode{}}))
	<-started
	for i := int64(1); i <= 5; i++ {
		require.NoError(t, d.Publish(ctx, &tdapi.UpdateNewChat{Chat: privateChat(i, "x")}))
	}

	// Assert
	assert.Eventually(t, func() bool { return len(classify.got()) == 5 }, time.Second, 5*time.Millisecond)
	require.NoError(t, d.Close())
}
