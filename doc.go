// Package jsonlive builds a JSON document from text that arrives in
// fragments, and lets consumers watch the document as it grows.
//
// The work is split across several packages:
//
// - encoding/json: a tokenizer accepting input chunked at arbitrary points
// - tree: turns tokens into a value.Value and publishes it after each change
// - store: holds the latest snapshot of a streamed document and notifies
//   subscribers, reconnecting when the transport fails
// - transport: sources of chunks over HTTP, websockets, files and stdin
// - value: the in-memory representation of JSON values
// - token: the events exchanged between the tokenizer and its consumers
//
// These form a pipeline:
//
//	transport -> tokenizer -> materializer -> store -> subscribers
//
// Every stage runs as soon as a chunk is available, so a consumer can show a
// partial document long before the last byte has arrived.  Malformed input
// is reported and skipped rather than aborting the stream.
//
// This package was designed for the pj CLI utility, which prints a document
// each time it grows.  There is no facility for unmarshaling into Go
// structures.
package jsonlive
