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

// FieldNode is the opaque unit of field selection supplied by the caller (the parser / field
// collection layer, which sits outside this package). The Field Plan Builder never inspects it;
// it only threads it through so the field executor can later do something useful with it.
type FieldNode interface{}

// FieldDetails pairs a parsed field selection with the defer usage it was reached through.
// DeferUsage is NonDeferred for fields that are not behind any @defer.
type FieldDetails struct {
	Node       FieldNode
	DeferUsage Target
}

// GroupedFieldSet maps response keys to the ordered FieldDetails that produce them, preserving
// the source order in which response keys were first encountered.
type GroupedFieldSet struct {
	ResponseKeys []string
	Fields       map[string][]FieldDetails
}

func newGroupedFieldSet() GroupedFieldSet {
	return GroupedFieldSet{Fields: map[string][]FieldDetails{}}
}

// add appends fields under responseKey, recording responseKey in ResponseKeys the first time it
// is seen.
func (g *GroupedFieldSet) add(responseKey string, fields []FieldDetails) {
	if _, ok := g.Fields[responseKey]; !ok {
		g.ResponseKeys = append(g.ResponseKeys, responseKey)
	}
	g.Fields[responseKey] = append(g.Fields[responseKey], fields...)
}

// Empty reports whether the grouped field set has no response keys.
func (g GroupedFieldSet) Empty() bool {
	return len(g.ResponseKeys) == 0
}

// NewGroupedFieldSetDetails describes one bucket of fields that cross a defer boundary new to the
// current plan node.
type NewGroupedFieldSetDetails struct {
	// Targets is the masking target set shared by every field in GroupedFieldSet.
	Targets TargetSet

	// GroupedFieldSet is the set of fields to execute once a defer context is initiated for Targets.
	GroupedFieldSet GroupedFieldSet

	// ShouldInitiateDefer is true iff some target in Targets was not already active in the field
	// plan's parentTargets, meaning a new DeferredFragment must be installed to run this bucket.
	ShouldInitiateDefer bool
}

// FieldPlan is the result of partitioning a response position's fields across defer boundaries.
type FieldPlan struct {
	// GroupedFieldSet is the set of fields to execute now, at the current delivery boundary.
	GroupedFieldSet GroupedFieldSet

	// NewGroupedFieldSetDetails holds one entry per distinct masking target set that isn't
	// ParentTargets, in the order each was first encountered.
	NewGroupedFieldSetDetails []NewGroupedFieldSetDetails

	// NewDeferUsages lists defer usages encountered for the first time at this plan node, in
	// first-encountered order.
	NewDeferUsages []Target
}

// FieldPlanInput is the input to BuildFieldPlan.
type FieldPlanInput struct {
	// ResponseKeys preserves the source order in which response keys were collected.
	ResponseKeys []string

	// FieldsByResponseKey maps each response key to its (possibly multiple, when merged across
	// fragments) FieldDetails.
	FieldsByResponseKey map[string][]FieldDetails

	// ParentTargets are the defer usages active at the current delivery boundary.
	ParentTargets TargetSet

	// KnownTargets are all defer usages observed on the path down to this point, used to compute
	// NewDeferUsages.
	KnownTargets TargetSet
}

// maskingTargetsOf computes the masking targets of a field group's target set T: the members of T
// that are either NonDeferred or whose parent is not itself in T. A field reachable via a deferred
// fragment that is itself reachable via a closer deferred fragment is only "owned" by the closer
// one, so the outer defer is masked out here.
func maskingTargetsOf(targets TargetSet) TargetSet {
	masking := NewTargetSet()
	targets.ForEach(func(t Target) {
		if t == NonDeferred || !targets.Has(t.Parent) {
			masking.Add(t)
		}
	})
	return masking
}

// shouldInitiateDefer reports whether any target in masking is absent from parentTargets, i.e.
// whether this bucket crosses a defer boundary new to the current plan node.
func shouldInitiateDefer(masking, parentTargets TargetSet) bool {
	initiate := false
	masking.ForEach(func(t Target) {
		if !parentTargets.Has(t) {
			initiate = true
		}
	})
	return initiate
}

// BuildFieldPlan partitions the fields selected at a response position into the grouped field set
// to execute now and zero or more new grouped field sets to execute under newly initiated defers.
//
// BuildFieldPlan is deterministic and insensitive to the iteration order of its inputs' underlying
// maps: the only things that affect its result are response-key source order (ResponseKeys) and
// target-SET membership, never pointer identity order or map iteration order.
func BuildFieldPlan(input FieldPlanInput) FieldPlan {
	var (
		groupedFieldSet = newGroupedFieldSet()
		bucketIndex     = map[string]int{}
		buckets         []NewGroupedFieldSetDetails
		knownTargets    = input.KnownTargets.Clone()
		newDeferUsages  []Target
	)

	for _, responseKey := range input.ResponseKeys {
		fields := input.FieldsByResponseKey[responseKey]

		fieldGroupTargets := NewTargetSet()
		for _, fd := range fields {
			fieldGroupTargets.Add(fd.DeferUsage)
			if fd.DeferUsage != NonDeferred && !knownTargets.Has(fd.DeferUsage) {
				knownTargets.Add(fd.DeferUsage)
				newDeferUsages = append(newDeferUsages, fd.DeferUsage)
			}
		}

		masking := maskingTargetsOf(fieldGroupTargets)

		if masking.Equal(input.ParentTargets) {
			groupedFieldSet.add(responseKey, fields)
			continue
		}

		key := masking.key()
		idx, ok := bucketIndex[key]
		if !ok {
			idx = len(buckets)
			bucketIndex[key] = idx
			buckets = append(buckets, NewGroupedFieldSetDetails{
				Targets:             masking,
				GroupedFieldSet:     newGroupedFieldSet(),
				ShouldInitiateDefer: shouldInitiateDefer(masking, input.ParentTargets),
			})
		}
		buckets[idx].GroupedFieldSet.add(responseKey, fields)
	}

	return FieldPlan{
		GroupedFieldSet:           groupedFieldSet,
		NewGroupedFieldSetDetails: buckets,
		NewDeferUsages:            newDeferUsages,
	}
}
