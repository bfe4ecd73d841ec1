package engine

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"mismatched dimensions", []float32{1, 0}, []float32{1, 0, 0}, 0.0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0.0},
		{"empty", nil, nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRankOrdersByDescendingScore(t *testing.T) {
	source := []float32{1, 0, 0}
	candidates := [][]float32{
		{0, 1, 0},          // score 0
		{1, 0, 0},          // score 1
		{0.7071, 0.7071, 0}, // score ~0.707
	}

	matches := Rank(source, candidates)
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	if matches[0].Index != 1 {
		t.Errorf("expected best match index 1, got %d", matches[0].Index)
	}
	if matches[1].Index != 2 {
		t.Errorf("expected second match index 2, got %d", matches[1].Index)
	}
	if matches[2].Index != 0 {
		t.Errorf("expected worst match index 0, got %d", matches[2].Index)
	}
}

func TestRankTiesKeepCandidateOrder(t *testing.T) {
	source := []float32{1, 0}
	candidates := [][]float32{
		{2, 0}, // score 1
		{3, 0}, // score 1
		{5, 0}, // score 1
	}

	matches := Rank(source, candidates)
	for i, match := range matches {
		if match.Index != i {
			t.Errorf("tie at position %d resolved to index %d, want %d", i, match.Index, i)
		}
	}
}

func TestRankEmptyCandidates(t *testing.T) {
	matches := Rank([]float32{1, 0}, nil)
	if len(matches) != 0 {
		t.Errorf("expected no matches, got %d", len(matches))
	}
}
