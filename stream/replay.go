package stream

import (
	"context"

	"github.com/ferro-labs/reqllm-go/catalog"
	"github.com/ferro-labs/reqllm-go/chunk"
	"github.com/ferro-labs/reqllm-go/fixture"
	"github.com/ferro-labs/reqllm-go/llmerr"
)

// RunReplay drives a fixture.Player instead of a live transport exchange,
// producing the same Response shape Run does so callers (and the
// Executor's join_stream) cannot tell replay from a live run apart
// (spec.md §8 invariant 2). An empty fixture (zero recorded chunks) yields
// an immediately-halting empty sequence, per spec.md §9's Open Question.
func RunReplay(ctx context.Context, model catalog.Model, player *fixture.Player) *Response {
	runCtx, cancel := context.WithCancel(ctx)
	r := &Response{
		Model:  model,
		out:    make(chan chunk.Chunk, chunkBufferSize),
		cancel: cancel,
	}
	go r.runReplay(runCtx, player)
	return r
}

func (r *Response) runReplay(ctx context.Context, player *fixture.Player) {
	defer close(r.out)
	for {
		chunks, ok, err := player.Next()
		if err != nil {
			r.err = llmerr.Wrap(llmerr.APIStream, err, "failed to decode replayed fixture chunk")
			return
		}
		if !ok {
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
}
