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
	"sort"
	"strconv"
	"unsafe"
)

// DeferUsage identifies one lexical occurrence of a @defer directive in a query. The chain of
// Parent pointers forms a strict tree rooted at "non-deferred" (represented by a nil *DeferUsage).
type DeferUsage struct {
	// Label is the @defer directive's optional "label" argument.
	Label string

	// HasLabel is true if Label was explicitly supplied.
	HasLabel bool

	// Parent is the DeferUsage of the nearest enclosing @defer, or nil if this defer usage is
	// immediately under the non-deferred root.
	Parent *DeferUsage
}

// Target is either "non-deferred" (a nil Target) or a specific DeferUsage.
type Target = *DeferUsage

// NonDeferred is the sentinel Target representing fields that are not behind any @defer.
const NonDeferred Target = nil

// TargetSet is an unordered set of Target's, compared by content (membership) rather than by
// reference or by allocation order.
type TargetSet struct {
	members map[Target]struct{}
}

// NewTargetSet creates a TargetSet containing the given targets (duplicates collapse).
func NewTargetSet(targets ...Target) TargetSet {
	set := TargetSet{members: make(map[Target]struct{}, len(targets))}
	for _, t := range targets {
		set.members[t] = struct{}{}
	}
	return set
}

// Add inserts t into the set. It is a no-op if t is already present.
func (s *TargetSet) Add(t Target) {
	if s.members == nil {
		s.members = make(map[Target]struct{})
	}
	s.members[t] = struct{}{}
}

// Has reports whether t is a member of the set.
func (s TargetSet) Has(t Target) bool {
	_, ok := s.members[t]
	return ok
}

// Len returns the number of targets in the set.
func (s TargetSet) Len() int {
	return len(s.members)
}

// ForEach calls f once for every target in the set. Iteration order is unspecified.
func (s TargetSet) ForEach(f func(Target)) {
	for t := range s.members {
		f(t)
	}
}

// Clone makes a copy of the set that can be mutated independently.
func (s TargetSet) Clone() TargetSet {
	clone := TargetSet{members: make(map[Target]struct{}, len(s.members))}
	for t := range s.members {
		clone.members[t] = struct{}{}
	}
	return clone
}

// Equal reports whether two target sets have exactly the same members. This is a content
// (set) comparison, not a reference comparison: two TargetSets built independently from the same
// DeferUsage pointers in any order compare equal.
func (s TargetSet) Equal(other TargetSet) bool {
	if len(s.members) != len(other.members) {
		return false
	}
	for t := range s.members {
		if !other.Has(t) {
			return false
		}
	}
	return true
}

// key returns a canonical, order-independent string that uniquely identifies the set's content.
// It is used to bucket grouped field sets by masking target set in the Field Plan Builder without
// resorting to O(n^2) set-equality scans.
func (s TargetSet) key() string {
	if len(s.members) == 0 {
		return ""
	}

	ptrs := make([]uintptr, 0, len(s.members))
	for t := range s.members {
		ptrs = append(ptrs, uintptr(unsafe.Pointer(t)))
	}
	sort.Slice(ptrs, func(i, j int) bool { return ptrs[i] < ptrs[j] })

	var b []byte
	for _, p := range ptrs {
		b = strconv.AppendUint(b, uint64(p), 16)
		b = append(b, ',')
	}
	return string(b)
}
