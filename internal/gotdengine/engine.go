// Package gotdengine implements the session engine on top of the gotd MTProto
// client. Requests are executed on their own goroutines and answered through
// the OnResult callback; state changes are announced as updates.
package gotdengine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gotd/td/session"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/blockedby/tgchats/internal/logger"
	"github.com/blockedby/tgchats/internal/tdapi"
	"github.com/blockedby/tgchats/internal/telegram"
)

var (
	errNotInitialized = errors.New("engine not initialized")
	errClosed         = errors.New("engine closed")
)

// Config configures the engine.
type Config struct {
	// Storage keeps the MTProto session between runs. Nil keeps it in memory.
	Storage session.Storage
	Logger  *logger.Logger
}

// Engine adapts a gotd client to telegram.Engine.
type Engine struct {
	log     *logger.Logger
	dial    dialFunc
	updates *tg.UpdateDispatcher
	peers   *peerCache

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	handlers telegram.Handlers
	conn     *connection
	closed   bool
	stopOnce sync.Once

	// login state
	phone    string
	codeHash string

	dialogs dialogPager
}

var _ telegram.Engine = (*Engine)(nil)

// New creates an engine. It does not connect until the session parameters arrive.
func New(cfg Config) *Engine {
	return newEngine(cfg, gotdDialer(cfg.Storage))
}

func newEngine(cfg Config, dial dialFunc) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	dispatcher := tg.NewUpdateDispatcher()
	e := &Engine{
		log:     logger.OrGlobal(cfg.Logger).Component("gotd"),
		dial:    dial,
		updates: &dispatcher,
		peers:   newPeerCache(),
		ctx:     ctx,
		cancel:  cancel,
	}
	e.dialogs.reset()
	e.registerUpdateHandlers()
	return e
}

// Initialize implements telegram.Engine.
func (e *Engine) Initialize(handlers telegram.Handlers) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return errClosed
	}
	e.handlers = handlers
	e.goAsync(func() {
		e.emitAuthState(&tdapi.AuthorizationStateWaitTdlibParameters{})
	})
	return nil
}

// Send implements telegram.Engine.
func (e *Engine) Send(id uint64, fn tdapi.Function) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return errClosed
	}
	if e.handlers.OnResult == nil {
		return errNotInitialized
	}

	onResult := e.handlers.OnResult
	e.goAsync(func() {
		onResult(id, e.execute(e.ctx, fn))
	})
	return nil
}

// Close implements telegram.Engine. It disconnects and waits for running requests.
func (e *Engine) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	e.cancel()
	err := e.stop()
	e.wg.Wait()
	return err
}

// goAsync runs fn tracked by the wait group. Callers hold e.mu or run on a
// goroutine that is already tracked.
func (e *Engine) goAsync(fn func()) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		fn()
	}()
}

func (e *Engine) stop() error {
	var err error
	e.stopOnce.Do(func() {
		e.mu.Lock()
		conn := e.conn
		e.mu.Unlock()
		if conn != nil && conn.stop != nil {
			err = conn.stop()
		}
	})
	return err
}

func (e *Engine) execute(ctx context.Context, fn tdapi.Function) (result tdapi.Object) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Str("type", fn.TypeName()).Msg("request panicked")
			result = &tdapi.Error{Code: 500, Message: fmt.Sprintf("%s panic: %v", fn.TypeName(), r)}
		}
	}()

	var err error
	switch f := fn.(type) {
	case *tdapi.SetTdlibParameters:
		result, err = e.setParameters(ctx, f)
	case *tdapi.SetAuthenticationPhoneNumber:
		result, err = e.sendCode(ctx, f)
	case *tdapi.CheckAuthenticationCode:
		result, err = e.checkCode(ctx, f)
	case *tdapi.CheckAuthenticationPassword:
		result, err = e.checkPassword(ctx, f)
	case *tdapi.RequestQrCodeAuthentication:
		result, err = e.requestQR(ctx)
	case *tdapi.GetMe:
		result, err = e.getMe(ctx)
	case *tdapi.LoadChats:
		result, err = e.loadChats(ctx, f)
	case *tdapi.GetSupergroupFullInfo:
		result, err = e.supergroupFullInfo(ctx, f)
	case *tdapi.GetForumTopics:
		result, err = e.forumTopics(ctx, f)
	case *tdapi.GetChatHistory:
		result, err = e.chatHistory(ctx, f)
	case *tdapi.Close:
		result, err = e.closeSession()
	default:
		return &tdapi.Error{Code: 400, Message: "unsupported function " + fn.TypeName()}
	}

	if err != nil {
		return toError(err)
	}
	return result
}

// connection returns the live client or an error reply.
func (e *Engine) connection() (*connection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.conn == nil {
		return nil, &tdapi.Error{Code: 400, Message: "setTdlibParameters must be called first"}
	}
	return e.conn, nil
}

func (e *Engine) closeSession() (tdapi.Object, error) {
	e.emitAuthState(&tdapi.AuthorizationStateClosing{})
	err := e.stop()
	e.emitAuthState(&tdapi.AuthorizationStateClosed{})
	if err != nil {
		return nil, err
	}
	return &tdapi.Ok{}, nil
}

func (e *Engine) emit(update tdapi.Update) {
	e.mu.Lock()
	onUpdate := e.handlers.OnUpdate
	e.mu.Unlock()

	if onUpdate != nil {
		onUpdate(update)
	}
}

func (e *Engine) emitAuthState(state tdapi.AuthorizationState) {
	e.emit(&tdapi.UpdateAuthorizationState{State: state})
}

func (e *Engine) reportError(err error) {
	e.mu.Lock()
	onError := e.handlers.OnDefaultError
	e.mu.Unlock()

	if onError != nil {
		onError(err)
		return
	}
	e.log.Error().Err(err).Msg("engine error")
}

// toError converts a failure into an error reply, keeping RPC error codes.
func toError(err error) *tdapi.Error {
	var reply *tdapi.Error
	if errors.As(err, &reply) {
		return reply
	}
	if rpcErr, ok := tgerr.As(err); ok {
		return &tdapi.Error{Code: int32(rpcErr.Code), Message: rpcErr.Message}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &tdapi.Error{Code: 406, Message: err.Error()}
	}
	return &tdapi.Error{Code: 500, Message: err.Error()}
}
