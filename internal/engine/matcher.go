package engine

import (
	"math"
	"sort"
)

// LinkThreshold is the similarity score a candidate must exceed (strictly)
// to be linked. Fixed design constant, not per-owner configuration.
const LinkThreshold = 0.6

// CandidateWindow bounds how many recent same-type records are considered
// when matching a new record. The engine never scans an owner's full history.
const CandidateWindow = 50

// Match is one scored candidate from a ranking pass.
type Match struct {
	Index int     // position in the candidate slice passed to Rank
	Score float64 // cosine similarity in [-1, 1]
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched dimensions or a zero vector score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank scores every candidate against the source embedding and returns all
// matches ordered by descending score. Ties keep the original candidate
// order, which makes ranking deterministic for equal scores. Candidates
// without an embedding score 0 and still appear in the result.
func Rank(source []float32, candidates [][]float32) []Match {
	matches := make([]Match, 0, len(candidates))
	for i, candidate := range candidates {
		matches = append(matches, Match{
			Index: i,
			Score: CosineSimilarity(source, candidate),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}
