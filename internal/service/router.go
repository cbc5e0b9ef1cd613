package service

import (
	"context"
	"errors"
	"sync"

	"nexadomus/internal/command"
	"nexadomus/internal/connectivity"
	"nexadomus/internal/logger"
	"nexadomus/internal/models"
)

const defaultQueueSize = 16

var (
	// ErrRouterClosed is returned for submissions after Close.
	ErrRouterClosed = errors.New("command router closed")

	errOffline  = errors.New("neither the controller nor the relay is reachable")
	errNotLocal = errors.New("controller is only reachable on its local network")
)

// DirectSender issues a GET against the controller's local HTTP surface.
type DirectSender interface {
	Send(ctx context.Context, endpoint string) (string, error)
}

// RelaySender writes a command string to the cloud relay.
type RelaySender interface {
	Send(ctx context.Context, command string) (string, error)
}

type routerJob struct {
	ctx  context.Context
	run  func(ctx context.Context)
	done chan struct{}
}

// CommandRouter picks a transport per command from a fresh connectivity probe.
// A single worker drains a FIFO queue, so at most one network call is in
// flight and commands are never reordered.
type CommandRouter struct {
	probe  connectivity.Prober
	direct DirectSender
	relay  RelaySender
	log    *logger.Logger

	jobs      chan routerJob
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewCommandRouter starts the worker. queueSize <= 0 selects a default.
func NewCommandRouter(probe connectivity.Prober, direct DirectSender, relay RelaySender, log *logger.Logger, queueSize int) *CommandRouter {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	r := &CommandRouter{
		probe:  probe,
		direct: direct,
		relay:  relay,
		log:    log.OrNop(),
		jobs:   make(chan routerJob, queueSize),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *CommandRouter) loop() {
	defer close(r.done)
	for {
		select {
		case <-r.quit:
			return
		case j := <-r.jobs:
			j.run(j.ctx)
			close(j.done)
		}
	}
}

// Close stops the worker. Queued jobs that have not started fail with ErrRouterClosed.
func (r *CommandRouter) Close() {
	r.closeOnce.Do(func() { close(r.quit) })
	<-r.done
}

// submit enqueues fn and waits for it to finish.
func (r *CommandRouter) submit(ctx context.Context, fn func(ctx context.Context)) error {
	j := routerJob{ctx: ctx, run: fn, done: make(chan struct{})}
	select {
	case <-r.done:
		return ErrRouterClosed
	case <-ctx.Done():
		return ctx.Err()
	case r.jobs <- j:
	}
	select {
	case <-j.done:
		return nil
	case <-r.done:
		select {
		case <-j.done:
			return nil
		default:
			return ErrRouterClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Execute routes cmd and always returns a populated outcome. err is a
// *models.CommandError whenever the outcome is a failure.
func (r *CommandRouter) Execute(ctx context.Context, cmd models.DeviceCommand) (models.CommandOutcome, error) {
	var (
		out models.CommandOutcome
		err error
	)
	if serr := r.submit(ctx, func(jctx context.Context) { out, err = r.route(jctx, cmd) }); serr != nil {
		return fail(models.CommandOutcome{PathUsed: models.PathNone}, submitError(serr))
	}
	return out, err
}

func (r *CommandRouter) route(ctx context.Context, cmd models.DeviceCommand) (models.CommandOutcome, error) {
	out := models.CommandOutcome{PathUsed: models.PathNone}
	if err := ctx.Err(); err != nil {
		return fail(out, submitError(err))
	}

	out.Mode = r.probe.Probe(ctx)
	switch out.Mode {
	case models.ModeLocalDirect:
		endpoint, err := command.DirectPath(cmd)
		if err != nil {
			return r.failed(cmd, out, err)
		}
		out.PathUsed = models.PathDirect
		raw, err := r.direct.Send(ctx, endpoint)
		if err != nil {
			return r.failed(cmd, out, err)
		}
		out.RawResponse = raw
	case models.ModeRemoteOnly:
		payload, err := command.RelayCommand(cmd)
		if err != nil {
			return r.failed(cmd, out, err)
		}
		out.PathUsed = models.PathRelay
		raw, err := r.relay.Send(ctx, payload)
		if err != nil {
			return r.failed(cmd, out, err)
		}
		out.RawResponse = raw
	default:
		return r.failed(cmd, out, models.NewCommandError(models.ErrKindNoConnectivity, errOffline))
	}

	out.Succeeded = true
	r.log.Debugw("command_routed", "command", cmd.String(), "mode", out.Mode, "path", out.PathUsed)
	return out, nil
}

func (r *CommandRouter) failed(cmd models.DeviceCommand, out models.CommandOutcome, err error) (models.CommandOutcome, error) {
	r.log.Warnw("command_failed", "command", cmd.String(), "mode", out.Mode, "path", out.PathUsed, "err", err)
	return fail(out, err)
}

// Fetch reads a controller endpoint through the queue. It only succeeds in
// LocalDirect mode; there is no relay read path.
func (r *CommandRouter) Fetch(ctx context.Context, endpoint string) (string, models.ConnectivityMode, error) {
	var (
		body string
		mode models.ConnectivityMode
		err  error
	)
	serr := r.submit(ctx, func(jctx context.Context) {
		if err = jctx.Err(); err != nil {
			err = submitError(err)
			return
		}
		mode = r.probe.Probe(jctx)
		if mode != models.ModeLocalDirect {
			err = models.NewCommandError(models.ErrKindNoConnectivity, errNotLocal)
			return
		}
		body, err = r.direct.Send(jctx, endpoint)
	})
	if serr != nil {
		return "", "", submitError(serr)
	}
	return body, mode, err
}

func fail(out models.CommandOutcome, err error) (models.CommandOutcome, error) {
	out.Succeeded = false
	out.ErrorKind = models.KindOf(err)
	out.Error = err.Error()
	return out, err
}

// submitError classifies queueing failures so every failure carries a kind.
func submitError(err error) error {
	if models.KindOf(err) != "" {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewCommandError(models.ErrKindTimeout, err)
	}
	return models.NewCommandError(models.ErrKindNoConnectivity, err)
}
