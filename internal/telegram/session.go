package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/blockedby/tgchats/internal/logger"
	"github.com/blockedby/tgchats/internal/tdapi"
)

// DefaultChatPageSize is the LoadChats page size used when none is configured.
const DefaultChatPageSize = 100

// Options configures a Session.
type Options struct {
	Auth       AuthConfig
	Input      InputProvider
	Observer   Observer
	Dispatcher DispatcherConfig
	// ChatPageSize is the number of chats requested per LoadChats call.
	ChatPageSize int
	Logger       *logger.Logger
}

// Session is one logged in account: the engine plus the authorizer and the
// classifier fed by it.
type Session struct {
	engine     Engine
	log        *logger.Logger
	pageSize   int32
	corr       *Correlator
	auth       *Authorizer
	classifier *Classifier
	dispatcher *Dispatcher

	startOnce sync.Once
	startErr  error
	closeOnce sync.Once
	closeErr  error
}

// NewSession wires a session around engine. Nothing is sent until Start or Login.
func NewSession(engine Engine, opts Options) *Session {
	log := logger.OrGlobal(opts.Logger)
	if opts.Input == nil {
		opts.Input = &StaticInput{}
	}
	if opts.ChatPageSize <= 0 {
		opts.ChatPageSize = DefaultChatPageSize
	}

	s := &Session{
		engine:   engine,
		log:      log.Component("session"),
		pageSize: int32(opts.ChatPageSize),
	}
	s.corr = NewCorrelator(engine, s.onRequestError, log)
	s.auth = NewAuthorizer(opts.Auth, s.corr, opts.Input, log)
	s.classifier = NewClassifier(s.corr, opts.Observer, log)
	s.dispatcher = NewDispatcher(opts.Dispatcher, s.auth.HandleUpdate, s.classifier.HandleUpdate, log)
	return s
}

// Start initializes the engine and begins authorization. It is idempotent.
func (s *Session) Start() error {
	s.startOnce.Do(func() {
		s.auth.Start()
		err := s.engine.Initialize(Handlers{
			OnUpdate:       s.onUpdate,
			OnResult:       s.corr.HandleResult,
			OnUpdateError:  s.onRequestError,
			OnDefaultError: s.onDefaultError,
		})
		if err != nil {
			s.startErr = fmt.Errorf("initialize engine: %w", err)
			s.auth.Done().Reject(s.startErr)
		}
	})
	return s.startErr
}

// Login starts the session and waits until the user is logged in.
func (s *Session) Login(ctx context.Context) (*tdapi.User, error) {
	if err := s.Start(); err != nil {
		return nil, err
	}
	return s.auth.Done().Wait(ctx)
}

// LoginFuture returns the login completion future.
func (s *Session) LoginFuture() *Future[*tdapi.User] {
	return s.auth.Done()
}

// User returns the logged in user, or ErrNotAuthorized.
func (s *Session) User() (*tdapi.User, error) {
	return s.auth.User()
}

// Status returns the login state and the last authorization state seen.
func (s *Session) Status() (State, string) {
	return s.auth.State(), s.auth.Substate()
}

// LoadChats makes the engine announce every chat of the main list and waits
// until all of them are classified.
func (s *Session) LoadChats(ctx context.Context) error {
	if s.auth.State() != StateAuthorized {
		return fmt.Errorf("load chats: %w", ErrNotAuthorized)
	}
	if err := loadAllChats(ctx, s.corr, s.pageSize, s.log); err != nil {
		return err
	}
	return s.dispatcher.WaitIdle(ctx)
}

// LoadMessages returns up to limit messages of a chat, newest first. A limit of
// zero reads the whole history.
func (s *Session) LoadMessages(ctx context.Context, chatID tdapi.ChatID, limit int) ([]tdapi.Message, error) {
	if s.auth.State() != StateAuthorized {
		return nil, fmt.Errorf("load messages: %w", ErrNotAuthorized)
	}
	return loadHistory(ctx, s.corr, chatID, limit, s.log)
}

// Classifier exposes the chat snapshots.
func (s *Session) Classifier() *Classifier { return s.classifier }

// AllChats returns every classified chat.
func (s *Session) AllChats() []ChatInformation { return s.classifier.AllChats() }

// PlainChats returns private and secret chats.
func (s *Session) PlainChats() []PlainChat { return s.classifier.PlainChats() }

// Channels returns the channels the user is subscribed to.
func (s *Session) Channels() []ChannelInfo { return s.classifier.Channels() }

// Groups returns the user's groups.
func (s *Session) Groups() []GroupInfo { return s.classifier.Groups() }

// Forums returns the user's forums with their topics.
func (s *Session) Forums() []ForumInfo { return s.classifier.Forums() }

// Forum returns one forum by chat id.
func (s *Session) Forum(chatID tdapi.ChatID) (ForumInfo, bool) { return s.classifier.Forum(chatID) }

// Close asks the engine to shut down, stops the workers and releases the
// engine. Pending requests may never complete.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.startOnce.Do(func() { s.startErr = ErrSessionClosed })
		if s.startErr == nil {
			s.corr.Send(&tdapi.Close{})
		}

		s.closeErr = errors.Join(s.dispatcher.Close(), s.engine.Close())
	})
	return s.closeErr
}

func (s *Session) onUpdate(update tdapi.Update) {
	err := s.dispatcher.Publish(context.Background(), update)
	if err != nil && !errors.Is(err, ErrSessionClosed) {
		s.log.Error().Err(err).Str("type", update.TypeName()).Msg("unable to queue update")
	}
}

func (s *Session) onRequestError(err error) {
	s.log.Error().Err(err).Msg("request failed")
}

func (s *Session) onDefaultError(err error) {
	s.log.Error().Err(err).Msg("engine error")
}
