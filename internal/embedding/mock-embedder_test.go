package embedding

import (
	"context"
	"math"
	"testing"
)

func TestMockEmbedder(t *testing.T) {
	e := NewMockEmbedder(16)
	ctx := context.Background()
	a1, _ := e.Embed(ctx, "alpha")
	a2, _ := e.Embed(ctx, "alpha")
	b, _ := e.Embed(ctx, "beta")
	if len(a1) != 16 {
		t.Fatalf("len=%d", len(a1))
	}
	same, diff := true, false
	for i := range a1 {
		if a1[i] != a2[i] {
			same = false
		}
		if a1[i] != b[i] {
			diff = true
		}
	}
	if !same {
		t.Error("same text should give the same embedding")
	}
	if !diff {
		t.Error("different text should give a different embedding")
	}
	var norm float64
	for _, v := range a1 {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-4 {
		t.Errorf("expected unit norm, got %v", norm)
	}
	if NewMockEmbedder(0).Dimensions() != 384 {
		t.Error("non-positive dimensions should default to 384")
	}
}
