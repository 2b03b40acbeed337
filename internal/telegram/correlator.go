package telegram

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/blockedby/tgchats/internal/logger"
	"github.com/blockedby/tgchats/internal/tdapi"
)

// Correlator matches engine replies to the requests that caused them.
type Correlator struct {
	engine  Engine
	log     *logger.Logger
	onError func(error)

	nextID  atomic.Uint64
	mu      sync.Mutex
	pending map[uint64]pendingCall
}

type pendingCall struct {
	fn     tdapi.Function
	future *Future[tdapi.Object] // nil for fire-and-forget requests
}

// NewCorrelator creates a correlator sending through engine. Error replies to
// fire-and-forget requests are passed to onError; nil means log only.
func NewCorrelator(engine Engine, onError func(error), log *logger.Logger) *Correlator {
	return &Correlator{
		engine:  engine,
		log:     logger.OrGlobal(log).Component("correlator"),
		onError: onError,
		pending: make(map[uint64]pendingCall),
	}
}

// Call sends fn and returns a future for its reply. Error replies resolve the
// future with *tdapi.Error; use Invoke to get them as errors.
func (c *Correlator) Call(fn tdapi.Function) *Future[tdapi.Object] {
	future := NewFuture[tdapi.Object]()
	if err := c.submit(pendingCall{fn: fn, future: future}); err != nil {
		future.Reject(err)
	}
	return future
}

// Invoke sends fn and waits for the reply. Error replies are returned as
// *ProtocolError.
func (c *Correlator) Invoke(ctx context.Context, fn tdapi.Function) (tdapi.Object, error) {
	result, err := c.Call(fn).Wait(ctx)
	if err != nil {
		return nil, err
	}
	if reply, ok := result.(*tdapi.Error); ok {
		return nil, newProtocolError(reply)
	}
	return result, nil
}

// InvokeAs is Invoke with a typed reply.
func InvokeAs[T tdapi.Object](ctx context.Context, c *Correlator, fn tdapi.Function) (T, error) {
	var zero T
	result, err := c.Invoke(ctx, fn)
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s answered with %s", ErrUnexpectedReply, fn.TypeName(), result.TypeName())
	}
	return typed, nil
}

// Send submits fn without waiting. An error reply goes to the shared error handler.
func (c *Correlator) Send(fn tdapi.Function) {
	if err := c.submit(pendingCall{fn: fn}); err != nil {
		c.reportError(fn, err)
	}
}

func (c *Correlator) submit(call pendingCall) error {
	id := c.nextID.Add(1)

	c.mu.Lock()
	c.pending[id] = call
	c.mu.Unlock()

	c.log.Debug().Uint64("request_id", id).Msgf("[call] %s", call.fn.TypeName())

	if err := c.engine.Send(id, call.fn); err != nil {
		c.forget(id)
		return fmt.Errorf("send %s: %w", call.fn.TypeName(), err)
	}
	return nil
}

// HandleResult completes the request with the given id. It is the engine's
// OnResult callback.
func (c *Correlator) HandleResult(id uint64, result tdapi.Object) {
	c.mu.Lock()
	call, ok := c.pending[id]
	delete(c.pending, id)
	c.mu.Unlock()

	if !ok {
		c.log.Warn().Uint64("request_id", id).Str("type", typeName(result)).Msg("reply to unknown request")
		return
	}
	c.log.Debug().Uint64("request_id", id).Msg(tdapi.ShortInfo(result))

	if call.future != nil {
		call.future.Resolve(result)
		return
	}
	if reply, ok := result.(*tdapi.Error); ok {
		c.reportError(call.fn, newProtocolError(reply))
	}
}

// Pending returns the number of requests still waiting for a reply.
func (c *Correlator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Correlator) forget(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Correlator) reportError(fn tdapi.Function, err error) {
	if c.onError != nil {
		c.onError(fmt.Errorf("%s: %w", fn.TypeName(), err))
		return
	}
	c.log.Error().Err(err).Str("type", fn.TypeName()).Msg("request failed")
}

func typeName(obj tdapi.Object) string {
	if obj == nil {
		return "<nil>"
	}
	return obj.TypeName()
}
