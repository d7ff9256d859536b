package ocr

import "github.com/arbovm/levenshtein"

// variantAgreement measures how much the per-variant recognitions agree, as
// the mean pairwise normalized similarity (1 = identical, 0 = disjoint). It
// is a diagnostic carried in the audit record; extraction never depends on it.
func variantAgreement(texts []string) float64 {
	if len(texts) < 2 {
		return 1.0
	}

	var total float64
	var pairs int
	for i := 0; i < len(texts); i++ {
		for j := i + 1; j < len(texts); j++ {
			total += pairSimilarity(texts[i], texts[j])
			pairs++
		}
	}
	return total / float64(pairs)
}

func pairSimilarity(a, b string) float64 {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1.0
	}
	dist := levenshtein.Distance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}
