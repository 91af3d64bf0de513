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

package handler

import (
	"net/http"

	"github.com/graphql/incremental-delivery-core/graphql/incremental"
)

// IncrementalHandler serves one GraphQL operation whose execution may produce @defer/@stream
// incremental payloads, framing the initial payload the same way DefaultResultPresenter frames a
// plain ExecutionResult. Framing the lazy subsequent sequence itself (multipart, SSE, or otherwise)
// is transport plumbing this package does not implement; ServeInitial hands the Coordinator back so
// the caller can drain Coordinator.Next() over whatever transport it chooses once the initial
// payload reports "hasNext": true.
type IncrementalHandler struct {
	// Executor resolves one query's root grouped field set, including fields behind @defer/@stream.
	Executor incremental.FieldExecutor
}

// ServeInitial executes rootGroupedFieldSet against h.Executor and writes the resulting initial
// payload as w's JSON body.
func (h *IncrementalHandler) ServeInitial(
	w http.ResponseWriter,
	r *http.Request,
	rootGroupedFieldSet incremental.GroupedFieldSet,
) (*incremental.Coordinator, error) {
	payload, coordinator := incremental.Execute(r.Context(), h.Executor, rootGroupedFieldSet)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	return coordinator, payload.WriteJSON(w)
}
