package reqllm

import (
	"strings"

	"github.com/ferro-labs/reqllm-go/catalog"
	"github.com/ferro-labs/reqllm-go/llmerr"
)

// Spec is the (provider, id) tuple form of a model specification (spec §4.1
// "tuple (provider, id)"). String() renders it in "provider:id" grammar.
type Spec struct {
	Provider string
	ID       string
}

// String implements fmt.Stringer, rendering Spec in "provider:id" form.
func (s Spec) String() string { return s.Provider + ":" + s.ID }

// resolveSpec accepts any of the forms spec §4.1 lists: a "provider:id"
// string, a Spec tuple, or a pass-through catalog.Model descriptor. Other
// forms the source grammar lists (a keyword list, a tuple with inline
// options) have no natural Go rendering beyond these two plus the ordinary
// Options parameter every Executor method already takes, so they collapse
// here.
func (c *Client) resolveSpec(spec any) (catalog.Model, error) {
	switch v := spec.(type) {
	case string:
		provider, id, ok := strings.Cut(v, ":")
		if !ok || provider == "" || id == "" {
			return catalog.Model{}, llmerr.Newf(llmerr.InvalidModelSpec, "invalid model spec %q: expected \"provider:id\"", v).
				WithContext("spec", v)
		}
		return c.lookup(provider, id, v)
	case Spec:
		return c.lookup(v.Provider, v.ID, v.String())
	case catalog.Model:
		return v, nil
	default:
		return catalog.Model{}, llmerr.Newf(llmerr.InvalidModelSpec, "unsupported model spec type %T", spec)
	}
}

func (c *Client) lookup(provider, id, raw string) (catalog.Model, error) {
	m, ok := c.catalog.Lookup(provider, id)
	if !ok {
		return catalog.Model{}, llmerr.Newf(llmerr.ModelNotFound, "model not found: %s", raw).
			WithContext("spec", raw)
	}
	return m, nil
}
