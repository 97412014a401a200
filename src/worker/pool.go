package worker

import (
	"context"
	"image"
	"log"
	"runtime"
	"sync"

	"screen-cropper/src/session"
)

// DeliverFunc performs one delivery and returns its payload.
type DeliverFunc func(action session.Action, crop image.Image) (string, error)

// ResultCallback is invoked on delivery completion (from a worker goroutine).
// The event loop should pass a closure that posts back into the event loop safely.
type ResultCallback func(payload string, err error)

// Pool is a fixed-size delivery worker pool with a 1-slot input queue (strict back-pressure).
type Pool struct {
	deliver DeliverFunc
	jobs    chan job
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

type job struct {
	ctx    context.Context
	action session.Action
	crop   image.Image
	cb     ResultCallback
}

// New creates a worker pool. Size defaults to NumCPU when size<=0. Queue is 1 slot.
func New(size int, deliver DeliverFunc) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{deliver: deliver, jobs: make(chan job, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				b := j.crop.Bounds()
				log.Printf("Worker: delivering %s of %dx%d", j.action, b.Dx(), b.Dy())
				payload, err := p.run(j)
				log.Printf("Worker: delivery done, payload=%q, err=%v", payload, err)
				j.cb(payload, err)
			}
		}()
	}
}

// run honours the job's context: a job whose caller already gave up is
// skipped, and one that outlives its deadline reports ctx.Err().
func (p *Pool) run(j job) (string, error) {
	if err := j.ctx.Err(); err != nil {
		return "", err
	}
	if _, ok := j.ctx.Deadline(); !ok {
		return p.deliver(j.action, j.crop)
	}
	resCh := make(chan struct {
		payload string
		err     error
	}, 1)
	go func() {
		payload, err := p.deliver(j.action, j.crop)
		resCh <- struct {
			payload string
			err     error
		}{payload, err}
	}()
	select {
	case r := <-resCh:
		return r.payload, r.err
	case <-j.ctx.Done():
		return "", j.ctx.Err()
	}
}

// Submit enqueues a delivery if the single-slot queue is free. Returns false
// if dropped or if the pool is closed.
func (p *Pool) Submit(ctx context.Context, action session.Action, crop image.Image, cb ResultCallback) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	select {
	case p.jobs <- job{ctx: ctx, action: action, crop: crop, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work. Later calls and later
// submissions are no-ops.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()
	p.wg.Wait()
}
