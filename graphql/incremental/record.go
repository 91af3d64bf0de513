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
	"context"

	"github.com/graphql/incremental-delivery-core/concurrent/future"
	"github.com/graphql/incremental-delivery-core/graphql"
)

// DeferredResult is what a field executor produces when a DeferredGroupedFieldSetRecord finishes:
// either a final data value or errors (or both), plus any new incremental data records it
// discovered while resolving (nested defers/streams).
type DeferredResult struct {
	Data                  interface{}
	Errors                graphql.Errors
	IncrementalDataRecords []IncrementalDataRecord
}

// StreamItemResult is what a field executor produces for one item pulled from a stream's source:
// either an item value or errors (or both), plus any new incremental data records discovered while
// resolving the item. A StreamItemResult with HasItem false is the terminal sentinel: the stream
// has no more items (Errors, if any, describe why it ended early).
type StreamItemResult struct {
	Item                   interface{}
	HasItem                bool
	Errors                 graphql.Errors
	IncrementalDataRecords []IncrementalDataRecord
}

// IncrementalDataRecord is the tagged union of work the field executor hands to the Graph:
// either a DeferredGroupedFieldSetRecord (a unit of work that completes one or more deferred
// fragments) or a *Stream (a newly discovered streamed list).
type IncrementalDataRecord interface {
	isIncrementalDataRecord()
}

// DeferredGroupedFieldSetRecord is a unit of work attached to one or more deferred fragments. Once
// Result resolves, its data is reconciled onto every fragment in DeferredFragments.
type DeferredGroupedFieldSetRecord struct {
	// Path is the response position this record's data is resolved at. It is always at or below
	// every fragment in DeferredFragments (each fragment's Path is a prefix of Path), which is what
	// lets the Payload Publisher compute a subPath relative to whichever fragment it picks as the
	// record's identifier.
	Path graphql.ResponsePath

	// DeferredFragments are the fragments this record helps satisfy. Must be non-empty.
	DeferredFragments []*DeferredFragment

	// Result produces a DeferredResult, either immediately (future.Ready) or lazily (a Future
	// backed by future.NewThunk or an executor-supplied implementation).
	Result future.Future
}

func (*DeferredGroupedFieldSetRecord) isIncrementalDataRecord() {}

// StreamSourceIterator is the external source of items for a streamed list. It is owned by the
// Graph from installation until the stream either terminates naturally or is cancelled.
type StreamSourceIterator interface {
	// Return releases resources held by the iterator (e.g. closing an underlying cursor or
	// subscription). It is called once, at most, when the stream is cancelled or filtered out.
	Return(ctx context.Context) error
}

// StreamItemRecord is one pending item in a Stream's FIFO queue.
type StreamItemRecord struct {
	// Result produces a StreamItemResult, either immediately or lazily.
	Result future.Future
}

func (*StreamItemRecord) isIncrementalDataRecord() {}
