package telegram

import (
	"context"
	"sync"

	"github.com/blockedby/tgchats/internal/logger"
	"github.com/blockedby/tgchats/internal/tdapi"
)

// UpdateHandler processes one update. Errors are logged by the dispatcher.
type UpdateHandler func(ctx context.Context, update tdapi.Update) error

// DispatcherConfig controls queue sizes and update logging.
type DispatcherConfig struct {
	// Buffer is the capacity of every queue. Values below 1 mean 1.
	Buffer int
	// LogUpdateOptions enables logging of option and appearance updates.
	LogUpdateOptions bool
	// LogConnectionState enables logging of connection state updates.
	LogConnectionState bool
}

// Dispatcher is the single ordered consumer of the engine update stream. It
// routes authorization updates and classification updates to two queues, each
// drained by its own worker in arrival order.
type Dispatcher struct {
	cfg       DispatcherConfig
	log       *logger.Logger
	auth      UpdateHandler
	classify  UpdateHandler
	raw       chan tdapi.Update
	authQ     chan tdapi.Update
	classifyQ chan tdapi.Update

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once

	// inflight counts published updates not yet dropped or handled.
	mu       sync.Mutex
	inflight int
	idle     chan struct{}
}

// NewDispatcher starts the demux goroutine and both workers.
func NewDispatcher(cfg DispatcherConfig, auth, classify UpdateHandler, log *logger.Logger) *Dispatcher {
	if cfg.Buffer < 1 {
		cfg.Buffer = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		cfg:       cfg,
		log:       logger.OrGlobal(log).Component("dispatcher"),
		auth:      auth,
		classify:  classify,
		raw:       make(chan tdapi.Update, cfg.Buffer),
		authQ:     make(chan tdapi.Update, cfg.Buffer),
		classifyQ: make(chan tdapi.Update, cfg.Buffer),
		ctx:       ctx,
		cancel:    cancel,
		idle:      make(chan struct{}),
	}
	close(d.idle)

	d.wg.Add(3)
	go d.demux()
	go d.work("auth", d.authQ, d.auth)
	go d.work("classify", d.classifyQ, d.classify)

	return d
}

// Publish enqueues an update. It blocks while the raw queue is full.
func (d *Dispatcher) Publish(ctx context.Context, update tdapi.Update) error {
	if update == nil {
		return nil
	}
	if d.ctx.Err() != nil {
		return ErrSessionClosed
	}

	d.track(1)
	select {
	case d.raw <- update:
		return nil
	case <-d.ctx.Done():
		d.track(-1)
		return ErrSessionClosed
	case <-ctx.Done():
		d.track(-1)
		return ctx.Err()
	}
}

// WaitIdle blocks until every published update has been handled or dropped.
func (d *Dispatcher) WaitIdle(ctx context.Context) error {
	for {
		if d.ctx.Err() != nil {
			return ErrSessionClosed
		}

		d.mu.Lock()
		if d.inflight == 0 {
			d.mu.Unlock()
			return nil
		}
		idle := d.idle
		d.mu.Unlock()

		select {
		case <-idle:
		case <-d.ctx.Done():
			return ErrSessionClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (d *Dispatcher) track(delta int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.inflight == 0 && delta > 0 {
		d.idle = make(chan struct{})
	}
	d.inflight += delta
	if d.inflight == 0 {
		close(d.idle)
	}
}

// Close stops the demux goroutine and both workers. A handler in progress sees
// its context canceled. Close waits for all goroutines to exit.
func (d *Dispatcher) Close() error {
	d.closeOnce.Do(d.cancel)
	d.wg.Wait()
	return nil
}

func (d *Dispatcher) demux() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return
		case update := <-d.raw:
			queue := d.route(update)
			if err := runSafely("demux", func() error {
				d.logUpdate(update)
				return nil
			}); err != nil {
				d.log.Error().Err(err).Str("type", update.TypeName()).Msg("failed to log update")
			}

			if queue == nil {
				d.track(-1)
				continue
			}

			select {
			case queue <- update:
			case <-d.ctx.Done():
				return
			}
		}
	}
}

func (d *Dispatcher) route(update tdapi.Update) chan tdapi.Update {
	switch update.(type) {
	case *tdapi.UpdateAuthorizationState:
		return d.authQ
	case *tdapi.UpdateNewChat, *tdapi.UpdateSupergroup:
		return d.classifyQ
	default:
		return nil
	}
}

func (d *Dispatcher) work(name string, queue <-chan tdapi.Update, handler UpdateHandler) {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return
		case update := <-queue:
			d.handle(name, handler, update)
			d.track(-1)
		}
	}
}

func (d *Dispatcher) handle(name string, handler UpdateHandler, update tdapi.Update) {
	if handler == nil {
		return
	}
	err := runSafely(name+" handler", func() error {
		return handler(d.ctx, update)
	})
	if err != nil && d.ctx.Err() == nil {
		d.log.Error().Err(err).Str("queue", name).Msg(tdapi.ShortInfo(update))
	}
}

func (d *Dispatcher) logUpdate(update tdapi.Update) {
	if !d.cfg.LogUpdateOptions && tdapi.IsParametersOrOption(update) {
		return
	}
	if _, ok := update.(*tdapi.UpdateConnectionState); ok && !d.cfg.LogConnectionState {
		return
	}
	if e := d.log.Debug(); e.Enabled() {
		e.Str("type", update.TypeName()).Msgf("[update] %s", tdapi.ShortInfo(update))
	}
}
