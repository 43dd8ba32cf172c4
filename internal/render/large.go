package render

import "context"

// Pending is the result of a RenderLarge call.
type Pending struct {
	done   chan struct{}
	markup string
	err    error
}

// Done is closed once the result is available.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the render finishes or ctx is done. Abandoning a Pending does not
// cancel the render.
func (p *Pending) Wait(ctx context.Context) (string, error) {
	select {
	case <-p.done:
		return p.markup, p.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// RenderLarge renders text on a worker goroutine and returns immediately. Handing the
// task to the worker is the only suspension point; once the worker holds one of the
// LargeWorkers slots it runs to completion. The result is never cached. If ctx ends
// before a slot is free the Pending fails with ctx.Err(); after Stop it fails with
// ErrStopped.
func (c *Cache) RenderLarge(ctx context.Context, text string) *Pending {
	p := &Pending{done: make(chan struct{})}
	if text == "" {
		close(p.done)
		return p
	}

	// Add under the lifecycle lock so it cannot race Stop's Wait.
	c.lifecycle.Lock()
	if c.stopped {
		c.lifecycle.Unlock()
		p.err = ErrStopped
		close(p.done)
		return p
	}
	c.tasks.Add(1)
	c.lifecycle.Unlock()

	go func() {
		defer c.tasks.Done()
		defer close(p.done)

		if err := c.large.Acquire(ctx, 1); err != nil {
			p.err = err
			return
		}
		defer c.large.Release(1)

		c.stats.large.Add(1)
		p.markup, p.err = c.invoke(text)
	}()
	return p
}

// Markup routes text to RenderLarge when it is longer than LargeInputThreshold and to
// Render otherwise.
func (c *Cache) Markup(ctx context.Context, text string) (string, error) {
	if len(text) > c.opts.LargeInputThreshold {
		return c.RenderLarge(ctx, text).Wait(ctx)
	}
	return c.Render(text)
}

// IsLarge reports whether text would take the RenderLarge path.
func (c *Cache) IsLarge(text string) bool {
	return len(text) > c.opts.LargeInputThreshold
}
