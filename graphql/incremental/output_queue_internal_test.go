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
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("outputQueue", func() {
	It("hands a waiting consumer exactly the record that woke it", func() {
		q := newOutputQueue()

		type result struct {
			batch []CompletedRecord
			ok    bool
		}
		done := make(chan result, 1)
		go func() {
			batch, ok := q.Next()
			done <- result{batch, ok}
		}()

		// Give the goroutine a chance to park before enqueueing.
		time.Sleep(10 * time.Millisecond)

		record := &CompletedDeferredFragment{Fragment: &DeferredFragment{}}
		q.Enqueue(record)

		var r result
		Eventually(done).Should(Receive(&r))
		Expect(r.ok).Should(BeTrue())
		Expect(r.batch).Should(Equal([]CompletedRecord{record}))
	})

	It("coalesces records enqueued before a waiter woke up into one batch", func() {
		q := newOutputQueue()

		done := make(chan []CompletedRecord, 1)
		go func() {
			batch, _ := q.Next()
			done <- batch
		}()
		time.Sleep(10 * time.Millisecond)

		r1 := &CompletedDeferredFragment{Fragment: &DeferredFragment{}}
		r2 := &CompletedDeferredFragment{Fragment: &DeferredFragment{}}
		q.Enqueue(r1)
		q.Enqueue(r2)

		var batch []CompletedRecord
		Eventually(done).Should(Receive(&batch))
		Expect(batch).Should(ConsistOf(r1, r2))
	})

	It("returns already-queued records immediately without blocking", func() {
		q := newOutputQueue()
		record := &CompletedDeferredFragment{Fragment: &DeferredFragment{}}
		q.Enqueue(record)

		batch, ok := q.Next()
		Expect(ok).Should(BeTrue())
		Expect(batch).Should(Equal([]CompletedRecord{record}))
	})

	It("resolves every parked waiter with ok=false once closed", func() {
		q := newOutputQueue()

		done := make(chan bool, 1)
		go func() {
			_, ok := q.Next()
			done <- ok
		}()
		time.Sleep(10 * time.Millisecond)

		q.Close()

		Eventually(done).Should(Receive(BeFalse()))
		Expect(q.Done()).Should(BeTrue())
	})

	It("silently drops Enqueue calls once closed", func() {
		q := newOutputQueue()
		q.Close()
		q.Enqueue(&CompletedDeferredFragment{Fragment: &DeferredFragment{}})

		batch, ok := q.Next()
		Expect(ok).Should(BeFalse())
		Expect(batch).Should(BeNil())
	})

	It("returns immediately once closed even with no parked waiters", func() {
		q := newOutputQueue()
		q.Close()
		_, ok := q.Next()
		Expect(ok).Should(BeFalse())
	})

	It("wakes a parked waiter with an entire EnqueueBatch in one Next call", func() {
		q := newOutputQueue()

		done := make(chan []CompletedRecord, 1)
		go func() {
			batch, _ := q.Next()
			done <- batch
		}()
		time.Sleep(10 * time.Millisecond)

		r1 := &CompletedDeferredFragment{Fragment: &DeferredFragment{}}
		r2 := &CompletedDeferredFragment{Fragment: &DeferredFragment{}}
		q.EnqueueBatch([]CompletedRecord{r1, r2})

		var batch []CompletedRecord
		Eventually(done).Should(Receive(&batch))
		Expect(batch).Should(ConsistOf(r1, r2))
	})

	It("does not split an EnqueueBatch across two Next calls for records already queued", func() {
		q := newOutputQueue()

		r1 := &CompletedDeferredFragment{Fragment: &DeferredFragment{}}
		r2 := &CompletedDeferredFragment{Fragment: &DeferredFragment{}}
		q.EnqueueBatch([]CompletedRecord{r1, r2})

		batch, ok := q.Next()
		Expect(ok).Should(BeTrue())
		Expect(batch).Should(ConsistOf(r1, r2))
	})

	It("is a no-op when EnqueueBatch is called after close", func() {
		q := newOutputQueue()
		q.Close()
		q.EnqueueBatch([]CompletedRecord{&CompletedDeferredFragment{Fragment: &DeferredFragment{}}})

		batch, ok := q.Next()
		Expect(ok).Should(BeFalse())
		Expect(batch).Should(BeNil())
	})
})
