package llm

import "testing"

func TestLookupCost(t *testing.T) {
	c := LookupCost("claude-haiku-4-5")
	if c == nil {
		t.Fatal("expected pricing for claude-haiku-4-5")
	}
	got := c.Cost(1_000_000, 1_000_000)
	if got != 6 {
		t.Fatalf("expected $6 for 1M in + 1M out, got %v", got)
	}

	if LookupCost("some-unknown-model") != nil {
		t.Fatal("expected nil for unknown model")
	}
}

func TestLookupCost_OpenRouterPrefix(t *testing.T) {
	direct := LookupCost("gemini-2.5-flash")
	prefixed := LookupCost("google/gemini-2.5-flash")
	if direct == nil || prefixed == nil {
		t.Fatal("expected pricing for both forms")
	}
	if *direct != *prefixed {
		t.Fatalf("prefixed lookup %v != direct lookup %v", *prefixed, *direct)
	}
}
