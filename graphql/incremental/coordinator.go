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
	"github.com/graphql/incremental-delivery-core/iterator"
)

// FieldExecutor is the external collaborator boundary a host GraphQL engine implements to drive
// execution of a grouped field set at a given defer/stream target. It is the only dependency the
// Incremental Coordinator has on "how a field actually resolves" -- the rest of this package is
// engine-agnostic. A FieldExecutor is not part of this core; it is supplied by the caller of
// Execute (see coordinator_test.go for a fake used only to exercise the coordinator).
type FieldExecutor interface {
	// ExecuteGroupedFieldSet starts resolving groupedFieldSet for target, returning the resulting
	// DeferredResult once the returned Future resolves. target is NonDeferred for the root grouped
	// field set of the initial result.
	ExecuteGroupedFieldSet(ctx context.Context, groupedFieldSet GroupedFieldSet, target Target) future.Future
}

// Coordinator is the top-level driver described by spec.md section 4.4: it builds the initial
// payload from the root grouped field set, installs whatever deferred fragments/streams that
// produced, and then exposes the graph's output queue to the consumer as a lazy sequence of
// SubsequentPayload's shaped by a Publisher.
type Coordinator struct {
	graph     *Graph
	publisher *Publisher

	cancel context.CancelFunc
}

// Execute resolves the root grouped field set via executor, builds the InitialPayload, and
// returns a Coordinator ready to be drained with Next for any subsequent payloads. Cancelling ctx
// has the same effect as calling Return on the returned Coordinator: the graph is closed and any
// still-pending streams have their sources released.
func Execute(ctx context.Context, executor FieldExecutor, rootGroupedFieldSet GroupedFieldSet) (*InitialPayload, *Coordinator) {
	runCtx, cancel := context.WithCancel(ctx)

	c := &Coordinator{
		graph:     NewGraph(),
		publisher: NewPublisher(),
		cancel:    cancel,
	}

	value, err := awaitFuture(executor.ExecuteGroupedFieldSet(runCtx, rootGroupedFieldSet, NonDeferred))
	result := toDeferredResult(value, err)

	payload := &InitialPayload{
		Data:   result.Data,
		Errors: result.Errors,
	}

	if len(result.IncrementalDataRecords) > 0 {
		newlyPending := c.graph.AddIncrementalDataRecords(result.IncrementalDataRecords)
		payload.Pending = c.publisher.PendingEntries(newlyPending)
		payload.HasNext = len(payload.Pending) > 0
	}

	if !payload.HasNext {
		c.graph.Close()
		cancel()
	} else {
		go c.watchCancellation(runCtx)
	}

	return payload, c
}

// watchCancellation closes the graph's output queue (waking any parked Next call) once ctx is
// done, giving context cancellation the same effect as an explicit call to Return.
func (c *Coordinator) watchCancellation(ctx context.Context) {
	<-ctx.Done()
	c.graph.Close()
}

// Next blocks for the next subsequent payload, returning iterator.Done once the graph has no more
// pending work and every completed record has been drained.
func (c *Coordinator) Next() (*SubsequentPayload, error) {
	records, ok := c.graph.NextCompletedRecords()
	if !ok {
		return nil, iterator.Done
	}

	payload := &SubsequentPayload{HasNext: c.graph.HasNext()}

	for _, record := range records {
		switch r := record.(type) {
		case *newlyPendingRecord:
			payload.Pending = append(payload.Pending, c.publisher.PendingEntries(r.Nodes)...)

		case *CompletedDeferredGroupedFieldSet:
			payload.Incremental = append(payload.Incremental,
				c.publisher.IncrementalEntryFor(r.Record, r.Fragments, r.Result))

		case *CompletedDeferredFragment:
			payload.Completed = append(payload.Completed,
				c.publisher.CompletedEntryFor(r.Fragment, graphql.Errors{}))

		case *CompletedStreamItems:
			if len(r.Items) > 0 || r.Errors.HaveOccurred() {
				payload.Incremental = append(payload.Incremental, IncrementalEntry{
					ID:     c.publisher.idFor(r.Stream),
					Items:  r.Items,
					Errors: r.Errors,
				})
			}

		case *CompletedStreamTerminal:
			payload.Completed = append(payload.Completed,
				c.publisher.CompletedEntryFor(r.Stream, r.Errors))
		}
	}

	// HasNext was sampled before the records above were applied to the publisher's bookkeeping, but
	// reflects the graph's pending set, which is only ever mutated by the Graph itself (already
	// reflected by the time NextCompletedRecords returned this batch).
	return payload, nil
}

// Filter implements the filter / null-propagation protocol (spec.md section 4.4): when the
// executor observes a non-null field resolving to null with errors at response path p, it calls
// Filter so that every deferred fragment or stream whose own path has p as a prefix is removed
// from the graph and, for streams, has its source iterator released.
func (c *Coordinator) Filter(ctx context.Context, p graphql.ResponsePath) {
	c.graph.FilterDescendants(ctx, p)
}

// Return cancels the coordinator: any still-pending streams have their source iterators released
// and the subsequent-payload sequence ends as though it had drained naturally.
func (c *Coordinator) Return() {
	c.cancel()
}
