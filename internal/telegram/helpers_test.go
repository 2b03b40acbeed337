package telegram

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blockedby/tgchats/internal/logger"
	"github.com/blockedby/tgchats/internal/tdapi"
)

// fakeEngine answers requests from per-type scripts. A request without a
// script gets defaultReply. A nil script entry means "never answer".
type fakeEngine struct {
	mu       sync.Mutex
	handlers Handlers
	calls    []tdapi.Function
	script   map[string][]tdapi.Object
	onSend   func(fn tdapi.Function)
	initErr  error
	sendErr  error
	closed   bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{script: make(map[string][]tdapi.Object)}
}

func (e *fakeEngine) reply(typeName string, replies ...tdapi.Object) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.script[typeName] = append(e.script[typeName], replies...)
}

func (e *fakeEngine) Initialize(handlers Handlers) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.initErr != nil {
		return e.initErr
	}
	e.handlers = handlers
	return nil
}

func (e *fakeEngine) Send(id uint64, fn tdapi.Function) error {
	e.mu.Lock()
	if e.sendErr != nil {
		e.mu.Unlock()
		return e.sendErr
	}
	e.calls = append(e.calls, fn)

	reply := defaultReply(fn)
	if queue, ok := e.script[fn.TypeName()]; ok && len(queue) > 0 {
		reply = queue[0]
		e.script[fn.TypeName()] = queue[1:]
	}
	hook := e.onSend
	onResult := e.handlers.OnResult
	e.mu.Unlock()

	if hook != nil {
		hook(fn)
	}
	if reply != nil && onResult != nil {
		onResult(id, reply)
	}
	return nil
}

func defaultReply(fn tdapi.Function) tdapi.Object {
	switch fn.(type) {
	case *tdapi.GetSupergroupFullInfo:
		return &tdapi.SupergroupFullInfo{}
	case *tdapi.GetForumTopics:
		return &tdapi.ForumTopics{}
	case *tdapi.GetChatHistory:
		return &tdapi.Messages{}
	default:
		return &tdapi.Ok{}
	}
}

func (e *fakeEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func (e *fakeEngine) emit(update tdapi.Update) {
	e.mu.Lock()
	onUpdate := e.handlers.OnUpdate
	e.mu.Unlock()
	onUpdate(update)
}

func (e *fakeEngine) callNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, 0, len(e.calls))
	for _, fn := range e.calls {
		names = append(names, fn.TypeName())
	}
	return names
}

func (e *fakeEngine) countCalls(typeName string) int {
	n := 0
	for _, name := range e.callNames() {
		if name == typeName {
			n++
		}
	}
	return n
}

func (e *fakeEngine) callsOf(typeName string) []tdapi.Function {
	e.mu.Lock()
	defer e.mu.Unlock()
	var calls []tdapi.Function
	for _, fn := range e.calls {
		if fn.TypeName() == typeName {
			calls = append(calls, fn)
		}
	}
	return calls
}

// logBuffer is a goroutine safe log sink.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *logBuffer) errorCount() int {
	return strings.Count(b.String(), `"level":"error"`)
}

func newTestLogger() (*logger.Logger, *logBuffer) {
	buf := &logBuffer{}
	return logger.NewWithWriter(buf, "debug"), buf
}

// newTestCorrelator connects a correlator to a fake engine directly.
func newTestCorrelator(t *testing.T) (*Correlator, *fakeEngine) {
	t.Helper()
	engine := newFakeEngine()
	log, _ := newTestLogger()
	corr := NewCorrelator(engine, nil, log)
	require.NoError(t, engine.Initialize(Handlers{OnResult: corr.HandleResult}))
	return corr, engine
}

func privateChat(id tdapi.ChatID, title string) *tdapi.Chat {
	return &tdapi.Chat{ID: id, Title: title, Type: &tdapi.ChatTypePrivate{UserID: id}}
}

func supergroupChat(id tdapi.ChatID, title string, supergroupID tdapi.SupergroupID) *tdapi.Chat {
	return &tdapi.Chat{ID: id, Title: title, Type: &tdapi.ChatTypeSupergroup{SupergroupID: supergroupID}}
}

func topic(id int64, name string, order int64) tdapi.ForumTopic {
	return tdapi.ForumTopic{
		Info:  tdapi.ForumTopicInfo{Name: name, ForumTopicID: id},
		Order: order,
	}
}

func topicNames(topics []tdapi.ForumTopic) []string {
	names := make([]string, 0, len(topics))
	for _, t := range topics {
		names = append(names, t.Info.Name)
	}
	return names
}

const waitTimeout = 2 * time.Second
