// Package document represents the opaque JSON documents the broker passes
// between dispatcher, handlers, and the publish pipeline. It is a thin
// wrapper over github.com/tidwall/gjson and github.com/tidwall/sjson so
// handlers never need to unmarshal into a concrete Go struct: the wire
// format is literally the document's payload.
package document

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Document is a mutable JSON value. The zero value, and the value returned
// by Empty, represents "no document" — distinct from an empty JSON object.
type Document struct {
	raw []byte
}

// Empty returns a Document with no backing bytes, matching the dispatcher's
// "request JSON is null" case for a bodyless POST.
func Empty() *Document { return &Document{} }

// Parse validates data as JSON and wraps it in a Document. An empty data
// slice is accepted and produces an empty Document (no parse error), since
// the dispatcher treats an empty POST body as "no JSON" rather than a
// malformed one.
func Parse(data []byte) (*Document, error) {
	if len(data) == 0 {
		return Empty(), nil
	}
	if !gjson.ValidBytes(data) {
		return nil, errInvalidJSON
	}
	return &Document{raw: data}, nil
}

// FromObject builds a Document from the JSON encoding of a Go value; used by
// request/response hooks that build payloads programmatically. It does not
// check that the encoding is a JSON object.
func FromObject(v interface{}) (*Document, error) {
	data, err := marshalJSON(v)
	if err != nil {
		return nil, err
	}
	return &Document{raw: data}, nil
}

// Bytes returns the document's raw JSON, or nil if the document is empty.
func (d *Document) Bytes() []byte {
	if d == nil {
		return nil
	}
	return d.raw
}

// IsEmpty reports whether the document carries no bytes at all — the
// "no payload" case, distinct from an empty JSON object "{}".
func (d *Document) IsEmpty() bool {
	return d == nil || len(d.raw) == 0
}

// IsObject reports whether the document's top-level value is a JSON object.
// The dispatcher uses this to choose between a 200 response (object body)
// and a 204 response (handler ran but populated nothing).
func (d *Document) IsObject() bool {
	if d.IsEmpty() {
		return false
	}
	return gjson.ParseBytes(d.raw).IsObject()
}

// Get returns the value at path, following gjson's dotted-path syntax.
func (d *Document) Get(path string) gjson.Result {
	if d.IsEmpty() {
		return gjson.Result{}
	}
	return gjson.GetBytes(d.raw, path)
}

// String returns the value at path as a string, or "" if absent.
func (d *Document) String(path string) string { return d.Get(path).String() }

// Set writes value at path, growing the backing object as needed. Setting
// on an empty Document starts a fresh object at "{}".
func (d *Document) Set(path string, value interface{}) error {
	base := d.raw
	if len(base) == 0 {
		base = []byte("{}")
	}
	out, err := sjson.SetBytes(base, path, value)
	if err != nil {
		return err
	}
	d.raw = out
	return nil
}

// Clone returns an independent copy backed by its own byte slice, safe to
// hand to a task running outside the caller's lock.
func (d *Document) Clone() *Document {
	if d.IsEmpty() {
		return Empty()
	}
	raw := make([]byte, len(d.raw))
	copy(raw, d.raw)
	return &Document{raw: raw}
}
