// Package telegram drives an authenticated session on top of a messaging engine
// and classifies the user's chats into typed views.
//
// The engine is treated as an opaque oracle: it accepts tdapi functions, answers
// each one exactly once and pushes updates on its own goroutines. Session wires
// the pieces together:
//
//	engine -> Dispatcher -> {Authorizer, Classifier} -> Correlator -> engine
package telegram

import "github.com/blockedby/tgchats/internal/tdapi"

// Handlers are the callbacks an Engine invokes. They may be called from any
// goroutine, including concurrently.
type Handlers struct {
	// OnUpdate receives every update in the order the engine produced them.
	OnUpdate func(update tdapi.Update)
	// OnResult receives the single reply to the request sent with id.
	OnResult func(id uint64, result tdapi.Object)
	// OnUpdateError receives failures of fire-and-forget requests.
	OnUpdateError func(err error)
	// OnDefaultError receives engine failures not tied to any request.
	OnDefaultError func(err error)
}

// Engine is the native messaging engine consumed by the session.
type Engine interface {
	// Initialize registers the callbacks and starts emitting updates.
	Initialize(handlers Handlers) error
	// Send submits fn. The reply is delivered to Handlers.OnResult with the same id.
	Send(id uint64, fn tdapi.Function) error
	// Close releases the engine. Replies to outstanding requests may never arrive.
	Close() error
}
