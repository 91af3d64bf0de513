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

import "errors"

// readyFuture implements Future for a value that is already available. Poll never blocks and
// never registers the waker since there is nothing left to wait for.
type readyFuture struct {
	value interface{}
}

var _ Future = readyFuture{}

// Poll implements Future. It always returns immediately.
func (f readyFuture) Poll(waker Waker) (PollResult, error) {
	return f.value, nil
}

// Ready creates a Future that is immediately resolved with the given value.
func Ready(value interface{}) Future {
	return readyFuture{value: value}
}

// erredFuture implements Future for a computation that has already failed.
type erredFuture struct {
	err error
}

var _ Future = erredFuture{}

// Poll implements Future. It always returns immediately with the stored error.
func (f erredFuture) Poll(waker Waker) (PollResult, error) {
	return nil, f.err
}

// Err creates a Future that is immediately finished with the given error. A nil err is normalized
// to an empty error rather than being treated as success, since Err always indicates failure.
func Err(err error) Future {
	if err == nil {
		err = errors.New("")
	}
	return erredFuture{err: err}
}
