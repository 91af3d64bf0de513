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
	"fmt"

	"github.com/graphql/incremental-delivery-core/graphql"
)

// The errors in this file all mark ErrKindInternal: they signal a programmer contract violation
// by a FieldExecutor implementation (e.g. feeding a record to the wrong graph, or resolving an
// already-resolved one) rather than anything a GraphQL document author could trigger.

func errUnexpectedFutureValue(op graphql.Op, wanted string) error {
	return graphql.NewError(
		fmt.Sprintf("%s: future resolved to a value that was not a %s", op, wanted),
		op,
		graphql.ErrKindInternal,
	)
}
