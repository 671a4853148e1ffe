package password

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is returned for work submitted after Close.
var ErrPoolClosed = errors.New("password pool closed")

type job struct {
	run    func()
	result chan struct{}
}

// Pool runs argon2id derivations on a fixed set of worker goroutines so that
// request goroutines never execute the KDF themselves. Callers block until a
// worker finishes their job or their context ends.
type Pool struct {
	hasher    *Argon2
	jobs      chan job
	done      chan struct{}
	wg        sync.WaitGroup
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewPool starts workers goroutines. workers <= 0 means runtime.NumCPU().
func NewPool(hasher *Argon2, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	p := &Pool{
		hasher: hasher,
		jobs:   make(chan job),
		done:   make(chan struct{}),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.run()
	}

	return p
}

func (p *Pool) run() {
	defer p.wg.Done()

	for {
		select {
		case j := <-p.jobs:
			j.run()
			close(j.result)
		case <-p.done:
			return
		}
	}
}

func (p *Pool) submit(ctx context.Context, fn func()) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	j := job{run: fn, result: make(chan struct{})}
	select {
	case p.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return ErrPoolClosed
	}

	select {
	case <-j.result:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Hash derives a credential for plaintext on a worker.
func (p *Pool) Hash(ctx context.Context, plaintext string) (string, error) {
	var (
		encoded string
		err     error
	)
	if submitErr := p.submit(ctx, func() {
		encoded, err = p.hasher.Hash(plaintext)
	}); submitErr != nil {
		return "", submitErr
	}
	return encoded, err
}

// Verify checks plaintext against encoded on a worker.
func (p *Pool) Verify(ctx context.Context, plaintext, encoded string) (bool, error) {
	var (
		ok  bool
		err error
	)
	if submitErr := p.submit(ctx, func() {
		ok, err = p.hasher.Verify(plaintext, encoded)
	}); submitErr != nil {
		return false, submitErr
	}
	return ok, err
}

// Close stops the workers after their current job. It is safe to call more
// than once.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.done)
		p.wg.Wait()
	})
}
