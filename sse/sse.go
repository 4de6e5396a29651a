// Package sse implements the minimal line-oriented Server-Sent-Events frame
// parser shared by the live stream state machine and the fixture replay
// path, so both decode identical bytes identically (spec.md §8 invariant 2:
// replay must reproduce exactly the chunk sequence a live run would
// produce). An SSE event is one or more "field: value" lines terminated by
// a blank line; this parser only extracts the "data" field's value,
// concatenating multiple data: lines with "\n" per the SSE spec, which is
// all any wire.Protocol.Decode implementation in this module consumes.
package sse

import "bytes"

// Buffer incrementally accumulates raw transport bytes and yields complete
// "data:" payloads as they become available, carrying any trailing partial
// event forward across calls.
type Buffer struct {
	pending []byte
}

// Feed appends b to the buffer and returns every complete event's data
// payload extracted so far, in arrival order. Incomplete trailing bytes are
// retained for the next Feed call.
func (b *Buffer) Feed(data []byte) [][]byte {
	b.pending = append(b.pending, data...)

	var events [][]byte
	for {
		idx := findEventBoundary(b.pending)
		if idx < 0 {
			break
		}
		raw := b.pending[:idx]
		b.pending = b.pending[idx:]
		b.pending = trimLeadingNewlines(b.pending)
		if payload, ok := extractData(raw); ok {
			events = append(events, payload)
		}
	}
	return events
}

// findEventBoundary locates the end of the first complete event in buf: two
// consecutive newlines (a blank line), which SSE uses to terminate an
// event. Returns -1 if no complete event is present yet.
func findEventBoundary(buf []byte) int {
	for _, sep := range [][]byte{[]byte("\n\n"), []byte("\r\n\r\n")} {
		if i := bytes.Index(buf, sep); i >= 0 {
			return i + len(sep)
		}
	}
	return -1
}

func trimLeadingNewlines(buf []byte) []byte {
	for len(buf) > 0 && (buf[0] == '\n' || buf[0] == '\r') {
		buf = buf[1:]
	}
	return buf
}

// extractData pulls the "data:" field(s) out of one raw event's lines,
// joining multiple data: lines with "\n" as SSE specifies. Events with no
// data field (e.g. bare comments, id:-only keepalives) are dropped.
func extractData(raw []byte) ([]byte, bool) {
	lines := bytes.Split(raw, []byte("\n"))
	var parts [][]byte
	for _, line := range lines {
		line = bytes.TrimRight(line, "\r")
		if bytes.HasPrefix(line, []byte("data:")) {
			val := bytes.TrimPrefix(line, []byte("data:"))
			val = bytes.TrimPrefix(val, []byte(" "))
			parts = append(parts, val)
		}
	}
	if len(parts) == 0 {
		return nil, false
	}
	return bytes.Join(parts, []byte("\n")), true
}
