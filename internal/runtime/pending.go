package runtime

import "context"

// Pending is the completion handle of a delayed commit.
// The commit always runs to completion; Wait only stops the caller from waiting.
type Pending[T any] struct {
	done   chan struct{}
	result T
	err    error
}

func newPending[T any]() *Pending[T] {
	return &Pending[T]{done: make(chan struct{})}
}

func resolved[T any](v T) *Pending[T] {
	p := newPending[T]()
	p.resolve(v, nil)
	return p
}

func (p *Pending[T]) resolve(v T, err error) {
	p.result = v
	p.err = err
	close(p.done)
}

// Done is closed once the commit has been applied.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the commit is applied or ctx ends.
func (p *Pending[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
