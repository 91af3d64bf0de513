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
	"sync"

	"github.com/graphql/incremental-delivery-core/concurrent/future"
	"github.com/graphql/incremental-delivery-core/graphql"
)

// DeferredFragment is a node in the Incremental Graph standing for one instantiation of a deferred
// fragment at a particular response position. The same *DeferUsage can produce many
// DeferredFragment instances (one per list item, for a defer inside a streamed/list field); the
// field executor is responsible for allocating exactly one DeferredFragment per instantiation and
// reusing the same pointer for every DeferredGroupedFieldSetRecord that targets it.
type DeferredFragment struct {
	// Path is the response position this fragment's data will be attached at.
	Path graphql.ResponsePath

	// Label is the @defer directive's "label" argument, if any.
	Label string

	// HasLabel is true if Label was explicitly supplied.
	HasLabel bool

	// Parent is the nearest enclosing DeferredFragment that this fragment's own bucket of work was
	// discovered under, or nil if it was discovered outside of any still-outstanding fragment (at
	// the root, or under a fragment that had already completed).
	Parent *DeferredFragment

	installed bool
	completed bool
	removed   bool

	pendingGroups map[*DeferredGroupedFieldSetRecord]struct{}
	reconcilable  []*reconciledResult
	children      []interface{} // each element is *DeferredFragment or *Stream
}

// reconciledResult pairs a now-complete DeferredGroupedFieldSetRecord's result with the full list
// of fragments it was attached to, so the Payload Publisher can later pick the shallowest of them
// as the result's identifier (spec.md section 5, "best identifier" rule) without needing to walk
// the graph again.
type reconciledResult struct {
	record    *DeferredGroupedFieldSetRecord
	fragments []*DeferredFragment
	result    DeferredResult
}

// Stream is a node in the Incremental Graph standing for one streamed list field instance.
type Stream struct {
	// Path is the response position of the list field being streamed.
	Path graphql.ResponsePath

	// Label is the @stream directive's "label" argument, if any.
	Label string

	// HasLabel is true if Label was explicitly supplied.
	HasLabel bool

	// Source produces the stream's items; the Graph owns it for as long as the stream is pending.
	Source StreamSourceIterator

	// Parent is the nearest enclosing DeferredFragment this stream was discovered under, or nil.
	Parent *DeferredFragment

	installed bool
	removed   bool

	items       []*StreamItemRecord
	pumpRunning bool
	wake        chan struct{}
}

func (*Stream) isIncrementalDataRecord() {}

// Graph is the mutable dependency graph of deferred fragments and streams described by spec.md
// section 4.2. It tracks which nodes are currently pending (actively being worked on), reconciles
// completed deferred grouped field sets onto their fragments, coalesces completed work into an
// output queue for a single consumer, and promotes a fragment's or stream's children to pending
// once that fragment itself completes.
//
// Every exported method takes Graph's own lock, translating the single-threaded-cooperative
// graph walk of the reference algorithm into something safe to drive from multiple goroutines (the
// futures backing DeferredGroupedFieldSetRecord.Result and StreamItemRecord.Result may resolve on
// arbitrary goroutines).
type Graph struct {
	mu sync.Mutex

	pending  map[interface{}]struct{}
	output   *outputQueue
	allNodes []interface{} // every *DeferredFragment/*Stream ever installed, for FilterDescendants
}

// NewGraph creates an empty Incremental Graph.
func NewGraph() *Graph {
	return &Graph{
		pending: map[interface{}]struct{}{},
		output:  newOutputQueue(),
	}
}

// AddIncrementalDataRecords installs records into the graph, returning the subset of nodes
// (*DeferredFragment's discovered via a record's DeferredFragments, and *Stream's) that just
// became pending -- i.e. that have no outstanding ancestor and so begin executing now. Nodes whose
// parent hasn't completed yet are recorded as that parent's children instead, and will be
// surfaced by a later call once the parent completes (see completeDeferredFragmentLocked).
//
// The caller (normally the Incremental Coordinator) is expected to hand every newly pending node
// to the Payload Publisher so it can assign identifiers and include them in the next payload's
// "pending" list.
func (g *Graph) AddIncrementalDataRecords(records []IncrementalDataRecord) []interface{} {
	g.mu.Lock()
	defer g.mu.Unlock()

	var newlyPending []interface{}
	for _, record := range records {
		switch r := record.(type) {
		case *DeferredGroupedFieldSetRecord:
			for _, fragment := range r.DeferredFragments {
				if fragment.pendingGroups == nil {
					fragment.pendingGroups = map[*DeferredGroupedFieldSetRecord]struct{}{}
				}
				fragment.pendingGroups[r] = struct{}{}
				if !fragment.installed {
					newlyPending = append(newlyPending, g.installFragmentLocked(fragment)...)
				}
			}
			g.driveDeferredGroupedFieldSetLocked(r)

		case *Stream:
			if !r.installed {
				newlyPending = append(newlyPending, g.installStreamLocked(r)...)
			}
		}
	}
	return newlyPending
}

// installFragmentLocked marks fragment installed and either promotes it to pending immediately
// (no parent, or a parent that has already completed) or records it as a child of its parent, to
// be promoted when that parent completes. It returns every fragment/stream that became pending as
// a side effect, including ancestors that had to be installed first.
func (g *Graph) installFragmentLocked(fragment *DeferredFragment) []interface{} {
	if fragment.installed {
		return nil
	}
	fragment.installed = true
	g.allNodes = append(g.allNodes, fragment)

	if fragment.Parent == nil {
		g.pending[fragment] = struct{}{}
		return []interface{}{fragment}
	}

	parent := fragment.Parent
	var newlyPending []interface{}
	if !parent.installed {
		newlyPending = append(newlyPending, g.installFragmentLocked(parent)...)
	}

	switch {
	case parent.removed:
		// The ancestor was already filtered out (e.g. null-bubbled over); this child has nothing to
		// contribute and is dropped without ever becoming pending.
		fragment.removed = true
	case parent.completed:
		g.pending[fragment] = struct{}{}
		newlyPending = append(newlyPending, fragment)
	default:
		parent.children = append(parent.children, fragment)
	}
	return newlyPending
}

// installStreamLocked is installFragmentLocked's counterpart for streams: a newly pending stream
// also has its item pump started.
func (g *Graph) installStreamLocked(stream *Stream) []interface{} {
	if stream.installed {
		return nil
	}
	stream.installed = true
	g.allNodes = append(g.allNodes, stream)

	if stream.Parent == nil {
		g.pending[stream] = struct{}{}
		g.startStreamPumpLocked(stream)
		return []interface{}{stream}
	}

	parent := stream.Parent
	var newlyPending []interface{}
	if !parent.installed {
		newlyPending = append(newlyPending, g.installFragmentLocked(parent)...)
	}

	switch {
	case parent.removed:
		stream.removed = true
	case parent.completed:
		g.pending[stream] = struct{}{}
		g.startStreamPumpLocked(stream)
		newlyPending = append(newlyPending, stream)
	default:
		parent.children = append(parent.children, stream)
	}
	return newlyPending
}

// driveDeferredGroupedFieldSetLocked starts polling record.Result to completion on its own
// goroutine, following the teacher's AsyncValueTask drive loop: it parks on a channel-backed Waker
// between polls and re-polls once woken.
func (g *Graph) driveDeferredGroupedFieldSetLocked(record *DeferredGroupedFieldSetRecord) {
	drive(record.Result, func(value interface{}, err error) {
		result := toDeferredResult(value, err)
		g.AddCompletedReconcilableDeferredGroupedFieldSet(record, result)
	})
}

func toDeferredResult(value interface{}, err error) DeferredResult {
	if err != nil {
		var errs graphql.Errors
		errs.Append(graphql.NewError(err.Error(), graphql.ErrKindExecution))
		return DeferredResult{Errors: errs}
	}
	result, ok := value.(DeferredResult)
	if !ok {
		var errs graphql.Errors
		errs.Append(errUnexpectedFutureValue("incremental.driveDeferredGroupedFieldSetLocked", "DeferredResult"))
		return DeferredResult{Errors: errs}
	}
	return result
}

// AddCompletedReconcilableDeferredGroupedFieldSet records that record has reconciled with result,
// against every fragment record targets. If every pending group of a fragment has now reconciled,
// the fragment itself completes (completeDeferredFragmentLocked). Any IncrementalDataRecords
// discovered inside result are installed into the graph, parented implicitly through whatever
// DeferredFragments/Streams they name as their own .Parent.
func (g *Graph) AddCompletedReconcilableDeferredGroupedFieldSet(record *DeferredGroupedFieldSetRecord, result DeferredResult) {
	g.mu.Lock()

	rr := &reconciledResult{record: record, fragments: record.DeferredFragments, result: result}

	var (
		completedFragments []*DeferredFragment
		liveFragments       []*DeferredFragment
	)
	for _, fragment := range record.DeferredFragments {
		if fragment.removed {
			continue
		}
		liveFragments = append(liveFragments, fragment)
		fragment.reconcilable = append(fragment.reconcilable, rr)
		delete(fragment.pendingGroups, record)
		if len(fragment.pendingGroups) == 0 {
			completedFragments = append(completedFragments, fragment)
		}
	}

	// record's reconciliation and every fragment it completes are one synchronous event: they are
	// accumulated into a single slice and handed to the output queue with one EnqueueBatch call, so a
	// consumer parked in Next() wakes with the whole event in one payload instead of the group-set
	// completion and its fragments' completions splitting across two Next calls (spec.md section 8,
	// Coalescing law).
	var batch []CompletedRecord

	// If every fragment this record targeted has since been filtered out (spec.md section 4.4's
	// filter/null-propagation protocol), its result has nowhere left to attach and is dropped.
	if len(liveFragments) > 0 {
		batch = append(batch, &CompletedDeferredGroupedFieldSet{
			Record:    record,
			Fragments: liveFragments,
			Result:    result,
		})
	}

	var newlyPending []interface{}
	for _, fragment := range completedFragments {
		// A fragment that was collapsed as childless was never added to g.pending and so was never
		// announced to the consumer; it must not be announced as completed either.
		if _, wasPending := g.pending[fragment]; wasPending {
			delete(g.pending, fragment)
			batch = append(batch, &CompletedDeferredFragment{Fragment: fragment})
		}
		newlyPending = append(newlyPending, g.completeDeferredFragmentLocked(fragment)...)
	}

	// Children promoted to pending as a side effect of completing a fragment above are part of the
	// same event: fold them into the same batch rather than a separate Enqueue/EnqueueBatch call.
	if len(newlyPending) > 0 {
		batch = append(batch, &newlyPendingRecord{Nodes: newlyPending})
	}

	g.output.EnqueueBatch(batch)

	g.mu.Unlock()

	if !result.Errors.HaveOccurred() && len(result.IncrementalDataRecords) > 0 {
		if nested := g.AddIncrementalDataRecords(result.IncrementalDataRecords); len(nested) > 0 {
			g.mu.Lock()
			g.output.Enqueue(&newlyPendingRecord{Nodes: nested})
			g.mu.Unlock()
		}
	}

	// maybeCloseLocked runs last, after any nested IncrementalDataRecords this same result carried
	// have already been installed: closing the moment the pending set first hits zero would race
	// against those nested installs and could shut the queue before their own pending entries land.
	g.mu.Lock()
	g.maybeCloseLocked()
	g.mu.Unlock()
}

// newlyPendingRecord is an internal CompletedRecord variant used only to carry children promoted
// to pending as a side effect of a fragment completing, so the Coordinator's single output-queue
// read loop is the only place that needs to feed the Publisher's pending list.
type newlyPendingRecord struct {
	Nodes []interface{}
}

func (*newlyPendingRecord) isCompletedRecord() {}

// completeDeferredFragmentLocked marks fragment completed (its data is now final, modulo being
// emitted) and promotes each of its children to pending, recursively collapsing through any
// children that have no fields of their own (spec.md section 4.2.5: a DeferredFragment with an
// empty grouped field set and no reconcilable results is transparent and is skipped over, with its
// own children promoted directly instead).
//
// Every entry in fragment.children was placed there by installFragmentLocked/installStreamLocked's
// "parent not yet completed" branch, which already marked it installed and recorded it in
// g.allNodes; completing the parent is the only event that can promote it, so each entry is
// handled exactly once here with no further installed-ness check needed.
func (g *Graph) completeDeferredFragmentLocked(fragment *DeferredFragment) []interface{} {
	fragment.completed = true

	var newlyPending []interface{}
	for _, child := range fragment.children {
		switch c := child.(type) {
		case *DeferredFragment:
			if isChildless(c) {
				newlyPending = append(newlyPending, g.completeDeferredFragmentLocked(c)...)
				continue
			}
			g.pending[c] = struct{}{}
			newlyPending = append(newlyPending, c)
		case *Stream:
			g.pending[c] = struct{}{}
			g.startStreamPumpLocked(c)
			newlyPending = append(newlyPending, c)
		}
	}
	fragment.children = nil
	return newlyPending
}

// isChildless reports whether a fragment has no work of its own: no reconcilable results yet and
// no pending groups outstanding. Such a fragment contributes nothing to the response on its own
// and is collapsed so the consumer never sees an empty "pending"/"completed" pair for it.
func isChildless(fragment *DeferredFragment) bool {
	return len(fragment.pendingGroups) == 0 && len(fragment.reconcilable) == 0
}

// startStreamPumpLocked starts the per-stream item pump (stream_pump.go) if it isn't already
// running.
func (g *Graph) startStreamPumpLocked(stream *Stream) {
	if stream.pumpRunning {
		return
	}
	stream.pumpRunning = true
	go g.pumpStream(stream)
}

// RemoveDeferredFragment detaches fragment from the graph: it is no longer pending, its
// reconcilable results are discarded (the consumer has either already emitted them or they were
// never going to be emitted because an ancestor null-bubbled over this fragment's path), and any
// not-yet-promoted children are removed transitively. Any streams found in the removed subtree have
// their source iterator's Return called (asynchronously; its error, if any, is swallowed per
// spec.md section 5's filter/null-propagation protocol).
func (g *Graph) RemoveDeferredFragment(ctx context.Context, fragment *DeferredFragment) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeFragmentLocked(ctx, fragment)
	g.maybeCloseLocked()
}

func (g *Graph) removeFragmentLocked(ctx context.Context, fragment *DeferredFragment) {
	if fragment.removed {
		return
	}
	fragment.removed = true
	delete(g.pending, fragment)
	fragment.reconcilable = nil

	for _, child := range fragment.children {
		switch c := child.(type) {
		case *DeferredFragment:
			g.removeFragmentLocked(ctx, c)
		case *Stream:
			g.removeStreamLocked(ctx, c)
		}
	}
	fragment.children = nil
}

// RemoveStream detaches stream from the graph and calls Return on its source iterator.
func (g *Graph) RemoveStream(ctx context.Context, stream *Stream) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeStreamLocked(ctx, stream)
	g.maybeCloseLocked()
}

func (g *Graph) removeStreamLocked(ctx context.Context, stream *Stream) {
	if stream.removed {
		return
	}
	stream.removed = true
	delete(g.pending, stream)
	g.signalStreamLocked(stream)

	if source := stream.Source; source != nil {
		go func() {
			_ = source.Return(ctx)
		}()
	}
}

// FilterDescendants implements the filter / null-propagation protocol's graph-side effect (spec.md
// section 4.4): every currently installed fragment or stream whose own Path has p as a prefix is
// removed. A node's Path is always nested at or below the path it was discovered under, so this
// single pass also catches every true descendant of whichever node the null-bubble actually
// occurred at, without needing to walk the (partially torn-down, once children are promoted)
// parent/child tree separately.
func (g *Graph) FilterDescendants(ctx context.Context, p graphql.ResponsePath) {
	g.mu.Lock()

	var toRemove []interface{}
	for _, node := range g.allNodes {
		switch n := node.(type) {
		case *DeferredFragment:
			if !n.removed && n.Path.HasPrefix(p) {
				toRemove = append(toRemove, n)
			}
		case *Stream:
			if !n.removed && n.Path.HasPrefix(p) {
				toRemove = append(toRemove, n)
			}
		}
	}

	for _, node := range toRemove {
		switch n := node.(type) {
		case *DeferredFragment:
			g.removeFragmentLocked(ctx, n)
		case *Stream:
			g.removeStreamLocked(ctx, n)
		}
	}

	g.maybeCloseLocked()
	g.mu.Unlock()
}

// HasNext reports whether the graph still has outstanding (pending) work. Once it returns false
// the output queue will never produce another record and the consumer should stop reading.
func (g *Graph) HasNext() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending) > 0
}

// maybeCloseLocked closes the output queue once the pending set has been fully drained, so a
// consumer parked in NextCompletedRecords wakes up with ok=false instead of blocking forever.
func (g *Graph) maybeCloseLocked() {
	if len(g.pending) == 0 {
		g.output.Close()
	}
}

// Close shuts down the output queue, waking any consumer parked in a Next call. It is called once
// the graph has no more pending work, or when the consumer abandons the stream early.
func (g *Graph) Close() {
	g.output.Close()
}

// NextCompletedRecords blocks for the next coalesced batch of completed records from the graph's
// output queue. ok is false once the queue has been closed and drained.
func (g *Graph) NextCompletedRecords() (records []CompletedRecord, ok bool) {
	return g.output.Next()
}

// awaitFuture blocks the calling goroutine until f resolves. It is a thin alias for
// future.BlockOn, kept as a named local so call sites in this package read as graph vocabulary
// ("await") rather than the future package's task-executor vocabulary ("block on").
func awaitFuture(f future.Future) (interface{}, error) {
	return future.BlockOn(f)
}

// drive awaits f on a dedicated goroutine and invokes onComplete exactly once with either its
// resolved value or the error it failed with.
func drive(f future.Future, onComplete func(value interface{}, err error)) {
	go func() {
		value, err := awaitFuture(f)
		onComplete(value, err)
	}()
}
