// Package adapter implements the per-model option-transform stage of the
// pipeline (spec.md §4.5). Each Adapter is a matches/transform pair; a
// Pipeline is an ordered slice of registered adapters applied in
// registration order, the same ordered-slice-of-implementations shape as
// plugin.Manager in the teacher repo (plugin/plugin.go), generalized from
// lifecycle plugins to pure options rewrites.
package adapter

import (
	"github.com/ferro-labs/reqllm-go/catalog"
	"github.com/ferro-labs/reqllm-go/options"
)

// Adapter rewrites Options for models it matches.
type Adapter interface {
	Name() string
	Matches(model catalog.Model) bool
	TransformOpts(model catalog.Model, opts options.Options) options.Options
}

// Pipeline applies every matching adapter, in registration order, stamping
// opts.AdapterApplied with each adapter's Name().
type Pipeline struct {
	adapters []Adapter
}

// NewPipeline builds a Pipeline over the given adapters, in order.
func NewPipeline(adapters ...Adapter) *Pipeline {
	return &Pipeline{adapters: adapters}
}

// Default returns the pipeline with both built-in adapters registered, in
// the order spec.md §4.5 lists them.
func Default() *Pipeline {
	return NewPipeline(AnthropicThinking{}, OpenAIResponses{})
}

// Apply runs every adapter that matches model against opts, in order.
func (p *Pipeline) Apply(model catalog.Model, opts options.Options) options.Options {
	for _, a := range p.adapters {
		if a.Matches(model) {
			opts = a.TransformOpts(model, opts)
			opts = opts.StampAdapter(a.Name())
		}
	}
	return opts
}
