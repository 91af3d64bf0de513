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

package incremental_test

import (
	"context"

	"github.com/graphql/incremental-delivery-core/concurrent/future"
	. "github.com/graphql/incremental-delivery-core/graphql/incremental"
	"github.com/graphql/incremental-delivery-core/iterator"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// fakeExecutor implements FieldExecutor by returning a fixed DeferredResult per target, used only
// to exercise the Coordinator end-to-end without a real resolver stack.
type fakeExecutor struct {
	results map[Target]DeferredResult
}

func (e *fakeExecutor) ExecuteGroupedFieldSet(ctx context.Context, groupedFieldSet GroupedFieldSet, target Target) future.Future {
	return future.Ready(e.results[target])
}

var _ = Describe("Coordinator", func() {
	It("emits a terminal-only initial payload when no fields were deferred", func() {
		executor := &fakeExecutor{results: map[Target]DeferredResult{
			NonDeferred: {Data: map[string]interface{}{"id": 1}},
		}}

		initial, _ := Execute(context.Background(), executor, GroupedFieldSet{})
		Expect(initial.Data).Should(Equal(map[string]interface{}{"id": 1}))
		Expect(initial.HasNext).Should(BeFalse())
		Expect(initial.Pending).Should(BeEmpty())
	})

	It("announces a deferred fragment as pending in the initial payload and completes it later", func() {
		fragment := &DeferredFragment{Path: pathOf("slow"), Label: "x", HasLabel: true}
		groupRecord := &DeferredGroupedFieldSetRecord{
			Path:              pathOf("slow"),
			DeferredFragments: []*DeferredFragment{fragment},
			Result:            future.Ready(DeferredResult{Data: "slow value"}),
		}

		executor := &fakeExecutor{results: map[Target]DeferredResult{
			NonDeferred: {
				Data:                   map[string]interface{}{"id": 1},
				IncrementalDataRecords: []IncrementalDataRecord{groupRecord},
			},
		}}

		initial, coordinator := Execute(context.Background(), executor, GroupedFieldSet{})
		Expect(initial.HasNext).Should(BeTrue())
		Expect(initial.Pending).Should(HaveLen(1))
		pendingID := initial.Pending[0].ID

		var sawIncremental, sawCompleted bool
		for {
			payload, err := coordinator.Next()
			if err == iterator.Done {
				break
			}
			Expect(err).ShouldNot(HaveOccurred())

			for _, entry := range payload.Incremental {
				Expect(entry.ID).Should(Equal(pendingID))
				Expect(entry.Data).Should(Equal("slow value"))
				sawIncremental = true
			}
			for _, entry := range payload.Completed {
				Expect(entry.ID).Should(Equal(pendingID))
				sawCompleted = true
			}
			if !payload.HasNext {
				break
			}
		}

		Expect(sawIncremental).Should(BeTrue())
		Expect(sawCompleted).Should(BeTrue())
	})

	It("removes a deferred fragment via Filter and never emits it", func() {
		fragment := &DeferredFragment{Path: pathOf("slow")}
		blocked := make(chan struct{})
		groupRecord := &DeferredGroupedFieldSetRecord{
			Path:              pathOf("slow"),
			DeferredFragments: []*DeferredFragment{fragment},
			Result: future.NewThunk(func() (interface{}, error) {
				<-blocked
				return DeferredResult{Data: "too late"}, nil
			}),
		}

		executor := &fakeExecutor{results: map[Target]DeferredResult{
			NonDeferred: {
				Data:                   nil,
				IncrementalDataRecords: []IncrementalDataRecord{groupRecord},
			},
		}}

		_, coordinator := Execute(context.Background(), executor, GroupedFieldSet{})
		coordinator.Filter(context.Background(), pathOf("slow"))
		close(blocked)

		_, err := coordinator.Next()
		Expect(err).Should(Equal(iterator.Done))
	})

	It("ends the subsequent sequence once Return is called", func() {
		fragment := &DeferredFragment{Path: pathOf("slow")}
		never := make(chan struct{})
		groupRecord := &DeferredGroupedFieldSetRecord{
			Path:              pathOf("slow"),
			DeferredFragments: []*DeferredFragment{fragment},
			Result: future.NewThunk(func() (interface{}, error) {
				<-never
				return DeferredResult{}, nil
			}),
		}

		executor := &fakeExecutor{results: map[Target]DeferredResult{
			NonDeferred: {IncrementalDataRecords: []IncrementalDataRecord{groupRecord}},
		}}

		_, coordinator := Execute(context.Background(), executor, GroupedFieldSet{})
		coordinator.Return()

		_, err := coordinator.Next()
		Expect(err).Should(Equal(iterator.Done))

		close(never)
	})
})
