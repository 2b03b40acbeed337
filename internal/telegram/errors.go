package telegram

import (
	"errors"
	"fmt"

	"github.com/blockedby/tgchats/internal/tdapi"
)

// CodeNotFound is the engine error code meaning "no more results".
const CodeNotFound = 404

var (
	// ErrNotAuthorized is returned by operations that need a logged in session.
	ErrNotAuthorized = errors.New("telegram client not authorized")
	// ErrSessionClosed is returned once the session or one of its queues is closed.
	ErrSessionClosed = errors.New("telegram session closed")
	// ErrUnexpectedReply is returned when the engine answers with the wrong object type.
	ErrUnexpectedReply = errors.New("unexpected reply")
	// ErrSupergroupNotCached means a chat referenced a supergroup whose record
	// has not been processed yet. The chat is dropped.
	ErrSupergroupNotCached = errors.New("supergroup not cached")
	// ErrChannelNotClassified means a discussion or direct messages chat arrived
	// before the channel it belongs to.
	ErrChannelNotClassified = errors.New("channel not classified")
	// ErrChannelWithLink means a supergroup record claims to be a channel and a
	// linked chat at the same time.
	ErrChannelWithLink = errors.New("channel can't have a link to a channel chat")
)

// ProtocolError is an error reply from the engine.
type ProtocolError struct {
	Code    int32
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("telegram error %d: %s", e.Code, e.Message)
}

// newProtocolError converts an engine error reply.
func newProtocolError(reply *tdapi.Error) *ProtocolError {
	return &ProtocolError{Code: reply.Code, Message: reply.Message}
}

// IsProtocolCode reports whether err wraps a ProtocolError with the given code.
func IsProtocolCode(err error, code int32) bool {
	var perr *ProtocolError
	if errors.As(err, &perr) {
		return perr.Code == code
	}
	return false
}
