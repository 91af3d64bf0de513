/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package future

import "sync"

// thunk implements Future for a computation that is run once, lazily, on its own goroutine. Its
// result is memoized: the underlying function runs exactly once no matter how many times Poll
// observes it pending and is later woken.
//
// This is the Go analogue of a JavaScript thunk-backed promise: in a single-threaded cooperative
// host, a thunk's closure and the code polling it never race. Go has no such guarantee, so the
// memoized state is guarded by a mutex.
type thunk struct {
	mu      sync.Mutex
	fn      func() (interface{}, error)
	ready   bool
	value   interface{}
	err     error
	waker   Waker
	started bool
}

var _ Future = (*thunk)(nil)

// NewThunk creates a Future that lazily runs fn on its own goroutine the first time it is polled.
// Subsequent polls (including ones made after fn has completed) observe the same memoized result.
func NewThunk(fn func() (interface{}, error)) Future {
	return &thunk{fn: fn}
}

func (t *thunk) start(fn func() (interface{}, error)) {
	go func() {
		value, err := fn()

		t.mu.Lock()
		t.ready = true
		t.value, t.err = value, err
		waker := t.waker
		t.mu.Unlock()

		if waker != nil {
			// Errors from Wake indicate the consumer is no longer interested; there's nothing
			// meaningful to do with them here.
			_ = waker.Wake()
		}
	}()
}

// Poll implements Future.
func (t *thunk) Poll(waker Waker) (PollResult, error) {
	t.mu.Lock()

	if !t.started {
		t.started = true
		fn := t.fn
		t.mu.Unlock()
		t.start(fn)
		t.mu.Lock()
	}

	if t.ready {
		value, err := t.value, t.err
		t.mu.Unlock()
		if err != nil {
			return nil, err
		}
		return value, nil
	}

	t.waker = waker
	t.mu.Unlock()
	return PollResultPending, nil
}
