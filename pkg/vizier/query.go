package vizier

import "context"

// Query runs adql against the client's endpoint and decodes every row into T.
// It blocks until the response has been received and decoded. T may be a
// struct, a pointer to a struct, Row (or any) for the dynamic form, or any
// type encoding/json can unmarshal a JSON object into.
func Query[T any](ctx context.Context, c *Client, adql string) (*Result[T], error) {
	return run[T](ctx, c, adql)
}

// Pending is the outcome of a query started with QueryAsync.
type Pending[T any] struct {
	done   chan struct{}
	result *Result[T]
	err    error
}

// QueryAsync starts the same query as Query in a new goroutine and returns
// immediately. ctx governs the request itself.
func QueryAsync[T any](ctx context.Context, c *Client, adql string) *Pending[T] {
	p := &Pending[T]{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.result, p.err = run[T](ctx, c, adql)
	}()
	return p
}

// Done is closed once the outcome is available.
func (p *Pending[T]) Done() <-chan struct{} { return p.done }

// Wait blocks until the query finishes or ctx is done. Giving up on the wait
// does not cancel the request; cancel the context passed to QueryAsync for that.
func (p *Pending[T]) Wait(ctx context.Context) (*Result[T], error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
