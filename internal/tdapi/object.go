// Package tdapi describes the objects exchanged with the messaging engine.
//
// Every family (functions, updates, authorization states, chat types, message
// contents) is a sealed interface: only types declared in this package can
// satisfy it, so a type switch over a family lists every possible variant.
package tdapi

import "strconv"

// Object is any value the engine accepts or produces.
type Object interface {
	// TypeName returns the engine name of the object, e.g. "updateNewChat".
	TypeName() string
}

// Function is a request that can be sent to the engine.
type Function interface {
	Object
	isFunction()
}

// Update is an object pushed by the engine without a matching request.
type Update interface {
	Object
	isUpdate()
}

// ChatID identifies a chat within a session.
type ChatID = int64

// SupergroupID identifies a supergroup (channel, megagroup or forum).
type SupergroupID = int64

// UserID identifies a user.
type UserID = int64

// Ok is the empty successful reply.
type Ok struct{}

// TypeName implements Object.
func (*Ok) TypeName() string { return "ok" }

// Error is a failed reply carrying a numeric code.
type Error struct {
	Code    int32
	Message string
}

// TypeName implements Object.
func (*Error) TypeName() string { return "error" }

// Error implements the error interface so replies can be logged directly.
func (e *Error) Error() string {
	return "engine error " + strconv.Itoa(int(e.Code)) + ": " + e.Message
}
