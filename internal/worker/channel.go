package worker

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/oakwood-commons/gridx/pkg/logger"
)

// DefaultTimeout bounds how long a request may stay pending.
const DefaultTimeout = 30 * time.Second

// DefaultQueueSize is the request queue buffer. Multiple concurrent requests
// share the one worker's queue; completion order is not send order, so
// callers correlate by id only.
const DefaultQueueSize = 64

// Options configures a Channel.
type Options struct {
	// Handler executes requests on the worker goroutine. Required.
	Handler Handler
	// Timeout per request; DefaultTimeout when zero.
	Timeout time.Duration
	// Disabled turns the capability probe off so callers take the
	// synchronous path without attempting a doomed send.
	Disabled bool
	// QueueSize overrides the request buffer; DefaultQueueSize when zero.
	QueueSize int
	// Log defaults to the global logger.
	Log *logr.Logger
}

type pendingRequest struct {
	future  *Future
	timeout *time.Timer
}

// Channel correlates requests to responses by id, enforces per-request
// timeouts, and exposes a future-based API. The worker goroutine is created
// lazily on first use and persists across requests until Terminate.
type Channel struct {
	mu       sync.Mutex
	opts     Options
	log      *logr.Logger
	pending  map[string]*pendingRequest
	requests chan Request
	stop     chan struct{}
	running  bool
}

// NewChannel builds a channel; the worker is not started until the first
// Initialize or Send.
func NewChannel(opts Options) *Channel {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	log := opts.Log
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Channel{
		opts:    opts,
		log:     log,
		pending: map[string]*pendingRequest{},
	}
}

// Available reports whether this channel can offload work at all.
func (c *Channel) Available() bool {
	return !c.opts.Disabled && c.opts.Handler != nil
}

// Initialize starts the worker goroutine. Idempotent: a second call finds the
// worker already running and returns without creating a duplicate.
func (c *Channel) Initialize() error {
	if !c.Available() {
		return ErrUnavailable
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initializeLocked()
	return nil
}

func (c *Channel) initializeLocked() {
	if c.running {
		return
	}
	c.requests = make(chan Request, c.opts.QueueSize)
	c.stop = make(chan struct{})
	c.running = true
	go c.run(c.requests, c.stop)
	c.log.V(1).Info("worker started", "queue_size", c.opts.QueueSize)
}

// Send posts an envelope to the worker and returns the future that its
// response will settle. The id is fresh per call; retries are new requests
// with new ids, never re-sends.
func (c *Channel) Send(reqType RequestType, payload any) *Future {
	future := newFuture()
	if !c.Available() {
		future.settle(nil, ErrUnavailable)
		return future
	}

	id := uuid.NewString()
	req := Request{ID: id, Type: reqType, Payload: payload}

	c.mu.Lock()
	c.initializeLocked()
	queue := c.requests
	stop := c.stop
	timeout := c.opts.Timeout
	c.pending[id] = &pendingRequest{
		future: future,
		timeout: time.AfterFunc(timeout, func() {
			c.expire(id, timeout)
		}),
	}
	c.mu.Unlock()

	select {
	case queue <- req:
	case <-stop:
		c.reject(id, ErrTerminated)
	default:
		// Queue full: enqueue off the calling goroutine so Send never blocks
		// the UI thread.
		go func() {
			select {
			case queue <- req:
			case <-stop:
				c.reject(id, ErrTerminated)
			}
		}()
	}
	return future
}

// run is the worker loop. A handler panic is a worker-level fault: everything
// pending is rejected and the worker dies; the next Send re-creates it.
func (c *Channel) run(queue <-chan Request, stop <-chan struct{}) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error(nil, "worker fault", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			c.fault(&FaultError{Cause: fmt.Sprint(r)})
		}
	}()
	for {
		select {
		case <-stop:
			return
		case req := <-queue:
			resp := c.opts.Handler(req)
			resp.ID = req.ID
			c.deliver(resp)
		}
	}
}

// deliver routes a response to its pending request. An unknown id (already
// timed out, or a duplicate) is dropped silently: a late response must never
// resurrect or corrupt a removed entry.
func (c *Channel) deliver(resp Response) {
	c.mu.Lock()
	p, ok := c.pending[resp.ID]
	if ok {
		delete(c.pending, resp.ID)
		p.timeout.Stop()
	}
	c.mu.Unlock()

	if !ok {
		c.log.V(1).Info("dropped late response", "id", resp.ID, "type", string(resp.Type))
		return
	}
	if resp.Type == ErrorResult {
		p.future.settle(nil, fmt.Errorf("worker request %s: %s", resp.ID, resp.Err))
		return
	}
	p.future.settle(resp.Payload, nil)
}

// expire removes a request that hit its deadline and rejects its caller. A
// response arriving afterward for the same id is a no-op in deliver.
func (c *Channel) expire(id string, timeout time.Duration) {
	c.mu.Lock()
	p, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()
	if ok {
		c.log.V(1).Info("request timed out", "id", id, "timeout", timeout.String())
		p.future.settle(nil, &TimeoutError{ID: id, Timeout: timeout})
	}
}

// reject removes one pending request and settles it with err.
func (c *Channel) reject(id string, err error) {
	c.mu.Lock()
	p, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
		p.timeout.Stop()
	}
	c.mu.Unlock()
	if ok {
		p.future.settle(nil, err)
	}
}

// fault handles total worker failure: every pending request is rejected, the
// map cleared, and the worker marked dead so a fresh Send re-creates it.
func (c *Channel) fault(err error) {
	c.mu.Lock()
	rejected := c.drainPendingLocked()
	if c.running {
		c.running = false
		close(c.stop)
	}
	c.mu.Unlock()
	for _, p := range rejected {
		p.future.settle(nil, err)
	}
}

// Terminate destroys the worker and rejects everything pending. A subsequent
// Send lazily re-creates the worker.
func (c *Channel) Terminate() {
	c.mu.Lock()
	rejected := c.drainPendingLocked()
	if c.running {
		c.running = false
		close(c.stop)
		c.log.V(1).Info("worker terminated", "rejected", len(rejected))
	}
	c.mu.Unlock()
	for _, p := range rejected {
		p.future.settle(nil, ErrTerminated)
	}
}

func (c *Channel) drainPendingLocked() []*pendingRequest {
	rejected := make([]*pendingRequest, 0, len(c.pending))
	for id, p := range c.pending {
		p.timeout.Stop()
		rejected = append(rejected, p)
		delete(c.pending, id)
	}
	return rejected
}

// PendingCount reports the number of in-flight requests. Used by tests and
// the status footer.
func (c *Channel) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Running reports whether the worker goroutine is alive.
func (c *Channel) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
