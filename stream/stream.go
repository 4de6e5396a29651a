// Package stream implements the SSE-consuming state machine of spec.md §4.6:
// it turns a transport.Client's status/headers/data/done/timeout event
// sequence into a lazy sequence of chunk.Chunk values, dispatching each
// data event through the same sse.Buffer and wire.Protocol.Decode that
// fixture replay uses (spec.md §8 invariant 2), and owns the opaque
// cancellation handle described in spec.md §3 ("Response").
//
// Grounded on providers/anthropic.go's bufio.Scanner-driven streaming loop,
// generalized here into a goroutine-plus-bounded-channel producer per
// spec.md §9's design note, so a caller can stop pulling without leaking
// the underlying HTTP connection.
package stream

import (
	"context"

	"github.com/ferro-labs/reqllm-go/catalog"
	"github.com/ferro-labs/reqllm-go/chunk"
	"github.com/ferro-labs/reqllm-go/fixture"
	"github.com/ferro-labs/reqllm-go/llmerr"
	"github.com/ferro-labs/reqllm-go/sse"
	"github.com/ferro-labs/reqllm-go/transport"
	"github.com/ferro-labs/reqllm-go/wire"
)

// chunkBufferSize bounds how many decoded chunks may sit unread before the
// producer goroutine blocks on send (and thus, transitively, on the next
// transport.Event).
const chunkBufferSize = 32

// Response is the opaque handle spec.md §3 describes: a lazy sequence of
// chunks, the model descriptor, a cancellation function, and the terminal
// error (if any) once the sequence is exhausted.
type Response struct {
	Model catalog.Model

	out    chan chunk.Chunk
	cancel context.CancelFunc
	err    *llmerr.Error
}

// Chunks returns the channel of decoded chunks. It is closed once the
// stream halts (done, cancellation, or a terminal error); callers should
// check Err after the channel closes.
func (r *Response) Chunks() <-chan chunk.Chunk { return r.out }

// Cancel aborts the underlying transport exchange and causes Chunks to
// close without delivering further chunks (spec.md §5 Cancellation
// guarantees). It is idempotent and safe to call multiple times or
// concurrently with draining Chunks.
func (r *Response) Cancel() {
	r.cancel()
	// Discard whatever the producer buffered or sends before it observes the
	// cancellation, so the caller's next receive sees the closed channel.
	for range r.out {
	}
}

// Err returns the terminal error, if the stream halted abnormally. It is
// only meaningful after Chunks has been fully drained (closed).
func (r *Response) Err() *llmerr.Error { return r.err }

// Run starts the state machine: it issues req over transportClient,
// decodes the response through protocol, and returns immediately with a
// Response whose Chunks channel is fed by a background goroutine. When
// recorder is non-nil, every raw data event is captured into it
// (spec.md §4.8 Record) and the recorder is flushed once the background
// goroutine halts, whatever the outcome; a request that fails to start never
// reaches that goroutine and is not flushed.
func Run(ctx context.Context, transportClient *transport.Client, req transport.Request, protocol wire.Protocol, model catalog.Model, recorder *fixture.Recorder) *Response {
	runCtx, cancel := context.WithCancel(ctx)

	events, streamCancel, err := transportClient.Stream(runCtx, req)
	if err != nil {
		cancel()
		out := make(chan chunk.Chunk)
		close(out)
		return &Response{
			Model:  model,
			out:    out,
			cancel: func() {},
			err:    llmerr.Wrap(llmerr.APIRequest, err, "failed to start stream"),
		}
	}

	r := &Response{
		Model: model,
		out:   make(chan chunk.Chunk, chunkBufferSize),
		cancel: func() {
			streamCancel()
			cancel()
		},
	}

	go r.run(runCtx, events, protocol, model, recorder)

	return r
}

func (r *Response) run(ctx context.Context, events <-chan transport.Event, protocol wire.Protocol, model catalog.Model, recorder *fixture.Recorder) {
	defer close(r.out)
	defer func() {
		if recorder != nil {
			_ = recorder.Flush()
		}
	}()

	var buf sse.Buffer
	status := 0

	for ev := range events {
		switch ev.Kind {
		case transport.EventStatus:
			status = ev.StatusCode
			if recorder != nil {
				recorder.SetStatus(ev.StatusCode)
			}

		case transport.EventHeaders:
			if recorder != nil {
				recorder.SetHeaders(flattenHeaders(ev.Headers))
			}

		case transport.EventData:
			if status != 0 && (status < 200 || status > 299) {
				// Non-2xx bodies are plain JSON/text error payloads, not
				// SSE; the caller gets the raw body via the error, never
				// as chunks.
				r.err = llmerr.APIRequestError(status, string(ev.Data))
				continue
			}
			if recorder != nil {
				recorder.AppendChunk(ev.Data)
			}
			for _, payload := range buf.Feed(ev.Data) {
				chunks, decodeErr := protocol.Decode(wire.Event{Data: payload}, model)
				if decodeErr != nil {
					r.err = llmerr.Wrap(llmerr.APIStream, decodeErr, "failed to decode stream event")
					return
				}
				for _, c := range chunks {
					select {
					case r.out <- c:
					case <-ctx.Done():
						return
					}
					if c.Kind == chunk.Meta && c.Meta.Terminal {
						return
					}
				}
			}

		case transport.EventTimeout:
			r.err = llmerr.New(llmerr.APIStream, "stream receive timeout")
			return

		case transport.EventDone:
			if r.err == nil && status != 0 && (status < 200 || status > 299) {
				r.err = llmerr.APIRequestError(status, "")
			}
			return
		}
	}
}

func flattenHeaders(h map[string][]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
