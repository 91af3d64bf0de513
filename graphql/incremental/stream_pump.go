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

package incremental

import (
	"runtime"

	"github.com/graphql/incremental-delivery-core/concurrent/future"
	"github.com/graphql/incremental-delivery-core/graphql"
)

// PushStreamItem enqueues item on stream's FIFO (streamItemQueue in spec terms) and wakes its pump
// if the pump is currently parked waiting for more work. This is the field executor's entry point
// for feeding a stream's items to the graph, one at a time, in source order.
func (g *Graph) PushStreamItem(stream *Stream, item *StreamItemRecord) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if stream.removed {
		return
	}
	stream.items = append(stream.items, item)
	g.signalStreamLocked(stream)
}

func (g *Graph) signalStreamLocked(stream *Stream) {
	if stream.wake == nil {
		return
	}
	select {
	case stream.wake <- struct{}{}:
	default:
	}
}

// pumpStream is the per-stream item pump (spec.md section 4.2.3). It drains stream's queue,
// resolving each item's lazy result in source order, and groups every item that resolves without
// the pump having to block into a single batch -- the Go translation of the reference algorithm's
// "two successive awaits" coalescing window: after resolving an item, the pump gives other
// goroutines one scheduling quantum (runtime.Gosched) to push more items before it decides the
// batch is closed and publishes it.
func (g *Graph) pumpStream(stream *Stream) {
	for {
		batch, terminalErrors, terminated := g.drainStreamBatch(stream)

		if len(batch) > 0 {
			items := make([]interface{}, 0, len(batch))
			var errs graphql.Errors
			var nested []IncrementalDataRecord
			for _, result := range batch {
				if result.HasItem {
					items = append(items, result.Item)
				}
				if result.Errors.HaveOccurred() {
					errs.AppendErrors(result.Errors)
				}
				nested = append(nested, result.IncrementalDataRecords...)
			}

			g.mu.Lock()
			g.output.Enqueue(&CompletedStreamItems{Stream: stream, Items: items, Errors: errs})
			g.mu.Unlock()

			if len(nested) > 0 {
				if newlyPending := g.AddIncrementalDataRecords(nested); len(newlyPending) > 0 {
					g.mu.Lock()
					g.output.Enqueue(&newlyPendingRecord{Nodes: newlyPending})
					g.mu.Unlock()
				}
			}
		}

		if terminated {
			g.mu.Lock()
			g.output.Enqueue(&CompletedStreamTerminal{Stream: stream, Errors: terminalErrors})
			delete(g.pending, stream)
			stream.pumpRunning = false
			g.maybeCloseLocked()
			g.mu.Unlock()
			return
		}

		g.mu.Lock()
		if stream.removed {
			stream.pumpRunning = false
			g.mu.Unlock()
			return
		}
		if len(stream.items) > 0 {
			g.mu.Unlock()
			continue
		}
		if stream.wake == nil {
			stream.wake = make(chan struct{}, 1)
		}
		wake := stream.wake
		g.mu.Unlock()

		<-wake
	}
}

// drainStreamBatch pulls and resolves items from stream's queue until either the queue runs dry
// (after one coalescing yield to catch concurrently-pushed items), the stream is removed, or a
// terminal sentinel (HasItem false) is reached.
func (g *Graph) drainStreamBatch(stream *Stream) (batch []StreamItemResult, terminalErrors graphql.Errors, terminated bool) {
	for {
		g.mu.Lock()
		if stream.removed {
			g.mu.Unlock()
			return batch, terminalErrors, false
		}

		if len(stream.items) == 0 {
			g.mu.Unlock()
			if len(batch) == 0 {
				return batch, terminalErrors, false
			}

			// Coalescing suspension point: give a concurrent producer one scheduling quantum to land
			// another item before this batch is considered closed.
			runtime.Gosched()

			g.mu.Lock()
			stillEmpty := len(stream.items) == 0
			g.mu.Unlock()
			if stillEmpty {
				return batch, terminalErrors, false
			}
			continue
		}

		item := stream.items[0]

		// Poll once without blocking. If the next item isn't resolved yet and a batch has already
		// accumulated, flush that batch now instead of blocking the pump on it -- the item stays at
		// the front of the queue for the next call to pick up or await.
		ready, value, err := pollFutureOnce(item.Result)
		if !ready && len(batch) > 0 {
			g.mu.Unlock()
			return batch, terminalErrors, false
		}

		stream.items = stream.items[1:]
		g.mu.Unlock()

		if !ready {
			value, err = awaitFuture(item.Result)
		}
		result := toStreamItemResult(value, err)

		if !result.HasItem {
			return batch, result.Errors, true
		}
		batch = append(batch, result)
	}
}

// pollFutureOnce performs a single, non-blocking poll of f. ready is false if f reported
// PollResultPending; the caller decides separately whether and how to block on it afterward, so this
// poll's waker does nothing when invoked.
func pollFutureOnce(f future.Future) (ready bool, value interface{}, err error) {
	result, err := f.Poll(future.WakerFunc(func() error { return nil }))
	if err != nil {
		return true, nil, err
	}
	if result == future.PollResultPending {
		return false, nil, nil
	}
	return true, result, nil
}

func toStreamItemResult(value interface{}, err error) StreamItemResult {
	if err != nil {
		var errs graphql.Errors
		errs.Append(graphql.NewError(err.Error(), graphql.ErrKindExecution))
		return StreamItemResult{Errors: errs}
	}
	result, ok := value.(StreamItemResult)
	if !ok {
		var errs graphql.Errors
		errs.Append(errUnexpectedFutureValue("incremental.drainStreamBatch", "StreamItemResult"))
		return StreamItemResult{Errors: errs}
	}
	return result
}
