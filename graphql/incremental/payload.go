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
	"io"

	"github.com/graphql/incremental-delivery-core/graphql"
	"github.com/graphql/incremental-delivery-core/jsonwriter"
)

// PendingEntry describes one delivery group (a deferred fragment or a stream instance) that just
// became pending, as listed in a payload's "pending" array.
type PendingEntry struct {
	ID    string
	Path  graphql.ResponsePath
	Label string
}

var _ jsonwriter.ValueMarshaler = PendingEntry{}

// MarshalJSONTo implements jsonwriter.ValueMarshaler.
func (p PendingEntry) MarshalJSONTo(stream *jsonwriter.Stream) error {
	stream.WriteObjectStart()
	stream.WriteObjectField("id")
	stream.WriteString(p.ID)
	stream.WriteMore()
	stream.WriteObjectField("path")
	stream.WriteInterface(p.Path.Keys())
	if p.Label != "" {
		stream.WriteMore()
		stream.WriteObjectField("label")
		stream.WriteString(p.Label)
	}
	stream.WriteObjectEnd()
	return nil
}

// IncrementalEntry is one element of a subsequent payload's "incremental" array: either a deferred
// fragment's data (Items is nil) or a batch of stream items (Data is nil).
type IncrementalEntry struct {
	ID     string
	Data   interface{}
	Items  []interface{}
	Errors graphql.Errors
	// SubPath is appended to the delivery group's own path to form the full response path this
	// entry's data is relative to; it is non-empty only when a result's best identifier is an
	// ancestor fragment rather than one of its own fragments (spec.md section 4.3 "shortest
	// observable subPath").
	SubPath graphql.ResponsePath
}

var _ jsonwriter.ValueMarshaler = IncrementalEntry{}

// MarshalJSONTo implements jsonwriter.ValueMarshaler.
func (e IncrementalEntry) MarshalJSONTo(stream *jsonwriter.Stream) error {
	stream.WriteObjectStart()
	stream.WriteObjectField("id")
	stream.WriteString(e.ID)

	if !e.SubPath.Empty() {
		stream.WriteMore()
		stream.WriteObjectField("subPath")
		stream.WriteInterface(e.SubPath.Keys())
	}

	if e.Items != nil {
		stream.WriteMore()
		stream.WriteObjectField("items")
		stream.WriteInterface(e.Items)
	} else {
		stream.WriteMore()
		stream.WriteObjectField("data")
		stream.WriteInterface(e.Data)
	}

	if e.Errors.HaveOccurred() {
		stream.WriteMore()
		stream.WriteObjectField("errors")
		stream.WriteValue(graphql.NewErrorsMarshaler(e.Errors))
	}

	stream.WriteObjectEnd()
	return nil
}

// CompletedEntry is one element of a subsequent payload's "completed" array: a delivery group that
// will never produce any further data.
type CompletedEntry struct {
	ID     string
	Errors graphql.Errors
}

var _ jsonwriter.ValueMarshaler = CompletedEntry{}

// MarshalJSONTo implements jsonwriter.ValueMarshaler.
func (c CompletedEntry) MarshalJSONTo(stream *jsonwriter.Stream) error {
	stream.WriteObjectStart()
	stream.WriteObjectField("id")
	stream.WriteString(c.ID)
	if c.Errors.HaveOccurred() {
		stream.WriteMore()
		stream.WriteObjectField("errors")
		stream.WriteValue(graphql.NewErrorsMarshaler(c.Errors))
	}
	stream.WriteObjectEnd()
	return nil
}

// InitialPayload is the first payload of an incremental delivery response (spec.md section 4.3):
// "{ data, errors?, pending: [...], hasNext: true }" when one or more delivery groups were
// introduced while building the initial response, otherwise a plain "{ data, errors? }" with no
// "hasNext" at all (there will be no subsequent payloads).
type InitialPayload struct {
	Data    interface{}
	Errors  graphql.Errors
	Pending []PendingEntry
	HasNext bool
}

var _ jsonwriter.ValueMarshaler = (*InitialPayload)(nil)

// MarshalJSONTo implements jsonwriter.ValueMarshaler.
func (p *InitialPayload) MarshalJSONTo(stream *jsonwriter.Stream) error {
	stream.WriteObjectStart()

	// Per the GraphQL response format note, "errors" is placed before "data" to make it clear up
	// front that something went wrong, matching graphql/executor/result_marshaler.go.
	wrote := false
	if p.Errors.HaveOccurred() {
		stream.WriteObjectField("errors")
		stream.WriteValue(graphql.NewErrorsMarshaler(p.Errors))
		wrote = true
	}

	if wrote {
		stream.WriteMore()
	}
	stream.WriteObjectField("data")
	stream.WriteInterface(p.Data)
	wrote = true

	if len(p.Pending) > 0 {
		stream.WriteMore()
		stream.WriteObjectField("pending")
		stream.WriteArrayStart()
		for i, entry := range p.Pending {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteValue(entry)
		}
		stream.WriteArrayEnd()

		stream.WriteMore()
		stream.WriteObjectField("hasNext")
		stream.WriteBool(p.HasNext)
	}

	stream.WriteObjectEnd()
	return nil
}

// WriteJSON writes p's JSON encoding to w, the same jsonwriter-backed convention
// graphql/executor.ExecutionResult.MarshalJSONTo uses for its own io.Writer entry point.
func (p *InitialPayload) WriteJSON(w io.Writer) error {
	stream := jsonwriter.NewStream(w)
	stream.WriteValue(p)
	return stream.Flush()
}

// SubsequentPayload is one payload of the lazy subsequent sequence (spec.md section 4.3):
// "{ pending?, incremental?, completed?, hasNext }".
type SubsequentPayload struct {
	Pending     []PendingEntry
	Incremental []IncrementalEntry
	Completed   []CompletedEntry
	HasNext     bool
}

var _ jsonwriter.ValueMarshaler = (*SubsequentPayload)(nil)

// MarshalJSONTo implements jsonwriter.ValueMarshaler.
func (p *SubsequentPayload) MarshalJSONTo(stream *jsonwriter.Stream) error {
	stream.WriteObjectStart()

	wrote := false
	if len(p.Pending) > 0 {
		stream.WriteObjectField("pending")
		stream.WriteArrayStart()
		for i, entry := range p.Pending {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteValue(entry)
		}
		stream.WriteArrayEnd()
		wrote = true
	}

	if len(p.Incremental) > 0 {
		if wrote {
			stream.WriteMore()
		}
		stream.WriteObjectField("incremental")
		stream.WriteArrayStart()
		for i, entry := range p.Incremental {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteValue(entry)
		}
		stream.WriteArrayEnd()
		wrote = true
	}

	if len(p.Completed) > 0 {
		if wrote {
			stream.WriteMore()
		}
		stream.WriteObjectField("completed")
		stream.WriteArrayStart()
		for i, entry := range p.Completed {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteValue(entry)
		}
		stream.WriteArrayEnd()
		wrote = true
	}

	if wrote {
		stream.WriteMore()
	}
	stream.WriteObjectField("hasNext")
	stream.WriteBool(p.HasNext)

	stream.WriteObjectEnd()
	return nil
}

// WriteJSON writes p's JSON encoding to w; see InitialPayload.WriteJSON.
func (p *SubsequentPayload) WriteJSON(w io.Writer) error {
	stream := jsonwriter.NewStream(w)
	stream.WriteValue(p)
	return stream.Flush()
}
