package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"screen-cropper/src/commit"
	"screen-cropper/src/coordinator"
	"screen-cropper/src/hotkey"
	"screen-cropper/src/notification"
	"screen-cropper/src/screenshot"
	"screen-cropper/src/session"
	"screen-cropper/src/singleinstance"
	"screen-cropper/src/tray"
	"screen-cropper/src/worker"
)

// ErrBusy is reported to requests that arrive while another one is running.
var ErrBusy = errors.New("busy, please retry")

const defaultDeadline = 20 * time.Second

// Capturer runs one multi-display selection and returns the committed
// outcome. enter is the action the Enter key commits.
type Capturer interface {
	Capture(ctx context.Context, enter session.Action) (session.Outcome, error)
}

// CoordinatorCapturer runs a fresh coordinator per request.
type CoordinatorCapturer struct {
	Enumerator screenshot.Enumerator
	Provider   screenshot.Provider
	Windows    session.WindowFactory
	Options    coordinator.Options
}

func (c CoordinatorCapturer) Capture(ctx context.Context, enter session.Action) (session.Outcome, error) {
	opts := c.Options
	opts.EnterAction = enter
	report, err := coordinator.New(c.Enumerator, c.Provider, c.Windows, opts).Run(ctx)
	if out, ok := report.Committed(); ok {
		return out, nil
	}
	if err != nil {
		return session.Outcome{}, err
	}
	return report.Result()
}

// Options configures a Loop.
type Options struct {
	Capturer Capturer
	Deliver  worker.DeliverFunc
	Notifier notification.Notifier
	// Server defaults to singleinstance.NewServer.
	Server singleinstance.Server
	// Deadline bounds one delivery. Defaults to 20s.
	Deadline       time.Duration
	DefaultAction  session.Action
	DefaultTooltip string
}

// Loop is the single-threaded coordinator for IPC-based run-once, tray and
// hotkey flows. Only one capture runs at a time.
type Loop struct {
	capturer       Capturer
	pool           *worker.Pool
	srv            singleinstance.Server
	notifier       notification.Notifier
	busy           bool
	results        chan result
	triggers       chan session.Action
	defaultAction  session.Action
	defaultTooltip string
	deadline       time.Duration
}

type result struct {
	payload string
	action  session.Action
	err     error
	target  commit.Target
	closer  func()
	cancel  context.CancelFunc

	// inFlight marks the result of the running request, as opposed to a
	// rejection of one that arrived while busy.
	inFlight bool
}

// New creates a new event loop.
func New(opts Options) *Loop {
	deadline := opts.Deadline
	if deadline <= 0 {
		deadline = defaultDeadline
	}
	srv := opts.Server
	if srv == nil {
		srv = singleinstance.NewServer()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notification.New(false)
	}
	tooltip := opts.DefaultTooltip
	if tooltip == "" {
		tooltip = "Screen Cropper"
	}
	return &Loop{
		capturer:       opts.Capturer,
		pool:           worker.New(1, opts.Deliver),
		srv:            srv,
		notifier:       notifier,
		results:        make(chan result, 1),
		triggers:       make(chan session.Action, 4),
		defaultAction:  opts.DefaultAction,
		defaultTooltip: tooltip,
		deadline:       deadline,
	}
}

func (l *Loop) setBusy(b bool) {
	l.busy = b
	if b {
		tray.UpdateTooltip("Screen Cropper: selecting...")
	} else {
		tray.UpdateTooltip(l.defaultTooltip)
	}
}

// Trigger asks the loop for a capture that commits action on Enter. Extra
// triggers are dropped while the queue is full.
func (l *Loop) Trigger(action session.Action) {
	select {
	case l.triggers <- action:
	default:
		log.Printf("Trigger dropped: queue full")
	}
}

// StartHotkey registers a global hotkey that triggers the default action.
func (l *Loop) StartHotkey(ctx context.Context, combo string) error {
	if combo == "" {
		return nil
	}
	return hotkey.Listen(ctx, combo, func() { l.Trigger(l.defaultAction) })
}

// Run starts the singleinstance server and processes requests.
// It blocks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.srv.Start(ctx); err != nil {
		return err
	}
	defer l.srv.Close()
	if p := l.srv.Port(); p > 0 {
		log.Printf("Resident listening on 127.0.0.1:%d", p)
		tray.SetAboutExtra(fmt.Sprintf("Resident TCP port: %d", p))
	}
	defer l.pool.Close()

	// Accept loop in background to avoid blocking result handling
	reqCh := make(chan singleinstance.Conn, 4)
	go func() {
		defer close(reqCh)
		for {
			conn, err := l.srv.Next(ctx)
			if err != nil {
				return
			}
			select {
			case reqCh <- conn:
			case <-ctx.Done():
				_ = conn.Close()
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case action := <-l.triggers:
			l.handleTrigger(ctx, action)
		case conn, ok := <-reqCh:
			if !ok {
				return ctx.Err()
			}
			l.handleConn(ctx, conn)
		case res := <-l.results:
			l.handleResult(res)
		}
	}
}

func (l *Loop) handleTrigger(ctx context.Context, action session.Action) {
	log.Printf("handleTrigger: %s", action)
	l.startRequest(ctx, action, commit.NotifyTarget{Notifier: l.notifier}, nil)
}

func (l *Loop) handleConn(ctx context.Context, conn singleinstance.Conn) {
	mode := conn.Request().Mode
	log.Printf("handleConn: run-once request %s", mode)
	closer := func() { _ = conn.Close() }
	l.startRequest(ctx, commit.ActionForMode(mode), commit.DelegatedTarget{Conn: conn}, closer)
}

func (l *Loop) startRequest(ctx context.Context, action session.Action, target commit.Target, closer func()) {
	if l.busy {
		log.Printf("startRequest: busy, rejecting")
		l.handleResult(result{err: ErrBusy, target: target, closer: closer})
		return
	}
	l.setBusy(true)
	go l.capture(ctx, action, target, closer)
}

// capture runs off the loop goroutine and always posts exactly one result.
func (l *Loop) capture(ctx context.Context, action session.Action, target commit.Target, closer func()) {
	out, err := l.capturer.Capture(ctx, action)
	if err != nil {
		l.post(ctx, result{err: err, target: target, closer: closer, inFlight: true})
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, l.deadline)
	submitted := l.pool.Submit(jobCtx, out.Action, out.Crop, func(payload string, err error) {
		l.post(ctx, result{payload: payload, action: out.Action, err: err, target: target, closer: closer, cancel: cancel, inFlight: true})
	})
	if !submitted {
		cancel()
		l.post(ctx, result{err: ErrBusy, target: target, closer: closer, inFlight: true})
	}
}

func (l *Loop) post(ctx context.Context, res result) {
	select {
	case l.results <- res:
	case <-ctx.Done():
		if res.cancel != nil {
			res.cancel()
		}
		if res.closer != nil {
			res.closer()
		}
	}
}

func (l *Loop) handleResult(res result) {
	log.Printf("handleResult: action=%s payload=%q err=%v", res.action, res.payload, res.err)
	defer func() {
		if res.inFlight {
			l.setBusy(false)
		}
		if res.cancel != nil {
			res.cancel()
		}
		if res.closer != nil {
			res.closer()
		}
	}()
	if res.target == nil {
		log.Printf("handleResult: missing target")
		return
	}

	if res.err != nil {
		if err := res.target.OnFailure(res.err); err != nil {
			log.Printf("handleResult: reporting failure: %v", err)
		}
		return
	}
	if err := res.target.OnSuccess(res.action, res.payload); err != nil {
		log.Printf("handleResult: reporting success: %v", err)
	}
}

// Deadline returns the configured delivery deadline for this loop.
func (l *Loop) Deadline() time.Duration { return l.deadline }
