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

// Package incremental implements the incremental delivery core that coordinates @defer and
// @stream: a dependency graph of deferred fragments and streams (Graph), a builder that
// partitions a selection's fields across the defer boundaries active at a response position
// (BuildFieldPlan), a publisher that shapes completed records into wire payloads (Publisher), and
// a top-level driver that ties them together for a consumer (Coordinator).
//
// The package does not parse queries, validate them against a schema, or resolve field values --
// those remain the responsibility of a field executor (such as graphql/executor) that feeds
// IncrementalDataRecord values into the Graph as they become available.
package incremental
