package reqllm

import "testing"

func TestNewLoadsEmbeddedCatalog(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := c.Catalog().Lookup("openai", "gpt-4o-mini"); !ok {
		t.Fatal("expected the embedded catalog to carry openai:gpt-4o-mini")
	}
}

func TestDefaultReturnsASingleton(t *testing.T) {
	a := Default()
	b := Default()
	if a != b {
		t.Fatal("expected Default() to return the same *Client across calls")
	}
}

func TestResolveSpecAcceptsStringTupleAndModel(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	want, ok := c.catalog.Lookup("openai", "gpt-4o-mini")
	if !ok {
		t.Fatal("fixture model missing from catalog")
	}

	cases := []any{
		"openai:gpt-4o-mini",
		Spec{Provider: "openai", ID: "gpt-4o-mini"},
		want,
	}
	for _, spec := range cases {
		got, err := c.resolveSpec(spec)
		if err != nil {
			t.Fatalf("resolveSpec(%v): %v", spec, err)
		}
		if got.Provider != want.Provider || got.ID != want.ID {
			t.Fatalf("resolveSpec(%v) = %+v, want %+v", spec, got, want)
		}
	}
}

func TestResolveSpecRejectsMalformedString(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.resolveSpec("gpt-4o-mini"); err == nil {
		t.Fatal("expected an error for a spec string with no \"provider:id\" separator")
	}
}

func TestResolveSpecRejectsUnknownModel(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.resolveSpec("openai:does-not-exist"); err == nil {
		t.Fatal("expected a ModelNotFound error for an unregistered model id")
	}
}

func TestResolveSpecRejectsUnsupportedType(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.resolveSpec(42); err == nil {
		t.Fatal("expected an error for an unsupported spec type")
	}
}
