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
	"sync"

	"github.com/graphql/incremental-delivery-core/graphql"
)

// CompletedRecord is one item handed out by the Graph's output queue: either a completed deferred
// grouped field set, a batch of stream items, or a stream's terminal completion.
type CompletedRecord interface {
	isCompletedRecord()
}

// CompletedDeferredGroupedFieldSet reports that record has reconciled: its data (or errors) are
// ready to be attached to every fragment in Fragments.
type CompletedDeferredGroupedFieldSet struct {
	Record    *DeferredGroupedFieldSetRecord
	Fragments []*DeferredFragment
	Result    DeferredResult
}

func (*CompletedDeferredGroupedFieldSet) isCompletedRecord() {}

// CompletedDeferredFragment reports that every execution group attached to Fragment has
// reconciled: it will never produce another IncrementalEntry and should be added to a payload's
// "completed" array.
type CompletedDeferredFragment struct {
	Fragment *DeferredFragment
}

func (*CompletedDeferredFragment) isCompletedRecord() {}

// CompletedStreamItems reports a batch of items produced synchronously (between two suspension
// points) by one stream's pump.
type CompletedStreamItems struct {
	Stream *Stream
	Items  []interface{}
	Errors graphql.Errors
}

func (*CompletedStreamItems) isCompletedRecord() {}

// CompletedStreamTerminal reports that a stream has no more items, either because its source was
// exhausted or because it failed.
type CompletedStreamTerminal struct {
	Stream *Stream
	Errors graphql.Errors
}

func (*CompletedStreamTerminal) isCompletedRecord() {}

// outputQueue is the rendezvous between producers (deferred result completions, stream item
// pumps) and the single consumer draining payloads. It is a pair of FIFOs, following the design
// note in spec.md section 9: a queue of completed records awaiting a consumer, and a queue of
// parked consumer awaits -- any push either matches a waiter or enqueues; any Next either pops or
// parks.
//
// Enqueue coalesces: when a waiter is woken, it receives the record that woke it plus every other
// record that had already accumulated in the queue at that instant, as a single batch. This is
// what lets multiple completions that land between two Next calls reach the consumer as one
// payload (spec.md section 8, Coalescing law).
type outputQueue struct {
	mu        sync.Mutex
	completed []CompletedRecord
	waiters   []chan []CompletedRecord
	done      bool
}

func newOutputQueue() *outputQueue {
	return &outputQueue{}
}

// Enqueue pushes one completed record. It is a no-op once the queue has been closed.
func (q *outputQueue) Enqueue(record CompletedRecord) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.done {
		return
	}

	if len(q.waiters) > 0 {
		waiter := q.waiters[0]
		q.waiters = q.waiters[1:]

		batch := append([]CompletedRecord{record}, q.completed...)
		q.completed = nil

		// Buffered with capacity 1; this send never blocks.
		waiter <- batch
		return
	}

	q.completed = append(q.completed, record)
}

// EnqueueBatch pushes every record in records as part of a single logical completion event: at
// most one waiter is woken, with the entire batch delivered together, instead of Enqueue's
// one-record-at-a-time coalescing (which would let a parked waiter wake on the first record while
// the rest land in q.completed for a later Next call, splitting one event across two payloads). It
// is a no-op once the queue has been closed, and a no-op if records is empty.
func (q *outputQueue) EnqueueBatch(records []CompletedRecord) {
	if len(records) == 0 {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.done {
		return
	}

	if len(q.waiters) > 0 {
		waiter := q.waiters[0]
		q.waiters = q.waiters[1:]

		batch := append(append([]CompletedRecord{}, records...), q.completed...)
		q.completed = nil

		// Buffered with capacity 1; this send never blocks.
		waiter <- batch
		return
	}

	q.completed = append(q.completed, records...)
}

// Next returns the next coalesced batch of completed records, blocking until one is available or
// the queue is closed. ok is false once the queue is closed and drained.
func (q *outputQueue) Next() (batch []CompletedRecord, ok bool) {
	q.mu.Lock()

	if len(q.completed) > 0 {
		batch = q.completed
		q.completed = nil
		q.mu.Unlock()
		return batch, true
	}

	if q.done {
		q.mu.Unlock()
		return nil, false
	}

	waiter := make(chan []CompletedRecord, 1)
	q.waiters = append(q.waiters, waiter)
	q.mu.Unlock()

	batch, chOk := <-waiter
	return batch, chOk
}

// Close resolves every currently parked Next call with "done" and marks the queue closed so that
// future Enqueue calls are silently dropped and future Next calls return immediately with ok=false.
// It implements the consumer-cancellation half of spec.md section 4.2.6/4.2.7: calling return() on
// the consumer iterator, or exhausting the pending set via removals, both route here.
func (q *outputQueue) Close() {
	q.mu.Lock()
	if q.done {
		q.mu.Unlock()
		return
	}
	q.done = true
	waiters := q.waiters
	q.waiters = nil
	q.mu.Unlock()

	for _, waiter := range waiters {
		close(waiter)
	}
}

// Done reports whether the queue has been closed.
func (q *outputQueue) Done() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.done
}
