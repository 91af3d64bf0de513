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
	"strconv"
	"sync"

	"github.com/graphql/incremental-delivery-core/graphql"
)

// Publisher shapes the Incremental Graph's internal sequence of pending/completed nodes into wire
// payloads (spec.md section 4.3). It owns identifier assignment: every delivery group (a
// *DeferredFragment or a *Stream) is given a small, monotonically increasing string id the first
// time it is observed as pending, and that id is reused for every later payload entry that
// references the same group.
type Publisher struct {
	mu     sync.Mutex
	nextID int
	ids    map[interface{}]string
}

// NewPublisher creates an empty Publisher.
func NewPublisher() *Publisher {
	return &Publisher{ids: map[interface{}]string{}}
}

func (p *Publisher) idFor(node interface{}) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if id, ok := p.ids[node]; ok {
		return id
	}
	id := strconv.Itoa(p.nextID)
	p.nextID++
	p.ids[node] = id
	return id
}

func nodePathAndLabel(node interface{}) (path graphql.ResponsePath, label string, hasLabel bool) {
	switch n := node.(type) {
	case *DeferredFragment:
		return n.Path, n.Label, n.HasLabel
	case *Stream:
		return n.Path, n.Label, n.HasLabel
	default:
		return graphql.ResponsePath{}, "", false
	}
}

// PendingEntries assigns identifiers to newly pending nodes (as returned by
// Graph.AddIncrementalDataRecords or surfaced via a *newlyPendingRecord) and shapes them into the
// "pending" array entries of a payload.
func (p *Publisher) PendingEntries(nodes []interface{}) []PendingEntry {
	if len(nodes) == 0 {
		return nil
	}
	entries := make([]PendingEntry, 0, len(nodes))
	for _, node := range nodes {
		path, label, hasLabel := nodePathAndLabel(node)
		entry := PendingEntry{ID: p.idFor(node), Path: path}
		if hasLabel {
			entry.Label = label
		}
		entries = append(entries, entry)
	}
	return entries
}

// IncrementalEntryFor shapes one completed deferred grouped field set into an IncrementalEntry,
// picking the "best identifier" among fragments: the one whose own Path is the longest prefix of
// the record's Path, which minimizes the resulting subPath (spec.md section 4.3). fragments should
// be a CompletedDeferredGroupedFieldSet's Fragments (the record's DeferredFragments with any
// already-filtered-out fragments removed), not record.DeferredFragments directly.
func (p *Publisher) IncrementalEntryFor(record *DeferredGroupedFieldSetRecord, fragments []*DeferredFragment, result DeferredResult) IncrementalEntry {
	best := bestIdentifier(record, fragments)

	entry := IncrementalEntry{
		ID:     p.idFor(best),
		Data:   result.Data,
		Errors: result.Errors,
	}

	bestPath, _, _ := nodePathAndLabel(best)
	if bestKeys, recordKeys := bestPath.Keys(), record.Path.Keys(); len(recordKeys) > len(bestKeys) {
		suffix := recordKeys[len(bestKeys):]
		for _, key := range suffix {
			switch k := key.(type) {
			case string:
				entry.SubPath.AppendFieldName(k)
			case int:
				entry.SubPath.AppendIndex(k)
			}
		}
	}

	return entry
}

// bestIdentifier picks the fragment in fragments whose Path is the longest prefix of record.Path.
// Every fragment attached to a record is, by construction, an ancestor of the record's own response
// position, so ties are broken by picking the first fragment encountered at the maximal depth.
func bestIdentifier(record *DeferredGroupedFieldSetRecord, fragments []*DeferredFragment) *DeferredFragment {
	var (
		best      *DeferredFragment
		bestDepth = -1
	)
	for _, fragment := range fragments {
		if !record.Path.HasPrefix(fragment.Path) {
			continue
		}
		depth := len(fragment.Path.Keys())
		if depth > bestDepth {
			best = fragment
			bestDepth = depth
		}
	}
	if best == nil && len(fragments) > 0 {
		// Defensive fallback: should not happen given the construction invariant above, but picking
		// the first live fragment is safer than a nil identifier.
		best = fragments[0]
	}
	return best
}

// CompletedEntryFor shapes a completed delivery group into a CompletedEntry.
func (p *Publisher) CompletedEntryFor(node interface{}, errs graphql.Errors) CompletedEntry {
	return CompletedEntry{ID: p.idFor(node), Errors: errs}
}
