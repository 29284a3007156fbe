package textutil

// CosineSimilarity scores two fingerprints in [0, 1]. Nil fingerprints score 0.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	small, large := a, b
	if len(small.tokens) > len(large.tokens) {
		small, large = large, small
	}
	var shared float64
	for token := range small.tokens {
		if _, ok := large.tokens[token]; ok {
			shared++
		}
	}
	if shared == 0 {
		return 0
	}
	return shared / (a.norm * b.norm)
}

// BestMatch returns the index of the candidate most similar to query and its
// score. Ties go to the earlier candidate. It returns -1 when nothing shares
// a token with query.
func BestMatch(query string, candidates []*Fingerprint) (int, float64) {
	q := NewFingerprint(query)
	best, bestScore := -1, 0.0
	for i, candidate := range candidates {
		if score := CosineSimilarity(q, candidate); score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, bestScore
}
