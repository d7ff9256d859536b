package face

import (
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"go-id-verifier/internal/logger"
	"go-id-verifier/pkg/models"
)

// SimilarityEngine scores face crop pairs with multi-scale cosine similarity
// over a frozen embedding backbone.
type SimilarityEngine struct {
	embedder   Embedder
	scales     []float64
	thresholds Thresholds
}

// NewSimilarityEngine creates a similarity engine. scales are the resize
// factors tried per comparison; the best-aligned scale wins.
func NewSimilarityEngine(embedder Embedder, scales []float64, thresholds Thresholds) *SimilarityEngine {
	if len(scales) == 0 {
		scales = []float64{0.8, 1.0, 1.2}
	}
	return &SimilarityEngine{embedder: embedder, scales: scales, thresholds: thresholds}
}

// Compare embeds both crops at every scale and fuses the per-scale cosine
// similarities by maximum: scale mismatch between the uploaded photo and the
// stored reference is common and should not be penalized. A nil similarity
// means every scale attempt failed, which is distinct from a non-match.
func (e *SimilarityEngine) Compare(uploaded, stored *Crop) models.SimilarityResult {
	result := models.SimilarityResult{
		UploadedQuality: uploaded.Quality.Score,
		StoredQuality:   stored.Quality.Score,
	}

	if !e.embedder.Available() {
		result.Error = "embedding model unavailable"
		return result
	}

	var sims []float64
	for _, scale := range e.scales {
		sim, err := e.compareAtScale(uploaded, stored, scale)
		if err != nil {
			logger.WithError(err).WithField("scale", scale).Debug("Similarity failed at scale, skipping")
			continue
		}
		sims = append(sims, sim)
		logger.WithFields(logrus.Fields{
			"scale":      scale,
			"similarity": sim,
		}).Debug("Scale similarity computed")
	}

	best, ok := maxSimilarity(sims)
	if !ok {
		result.Error = "similarity calculation failed at every scale"
		return result
	}

	threshold := adaptiveThreshold(uploaded.Quality.Score, stored.Quality.Score, e.thresholds)
	result.Similarity = &best
	result.ThresholdUsed = threshold
	result.Matched = best >= threshold
	result.Confidence = matchConfidence(best, threshold)
	return result
}

func (e *SimilarityEngine) compareAtScale(uploaded, stored *Crop, scale float64) (float64, error) {
	a, err := e.embedder.Embed(uploaded.Mat, scale)
	if err != nil {
		return 0, err
	}
	b, err := e.embedder.Embed(stored.Mat, scale)
	if err != nil {
		return 0, err
	}
	return cosineSimilarity(a, b), nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Embeddings arrive L2-normalized, but the norms are divided out anyway so
// the function is safe for any non-zero input.
func cosineSimilarity(a, b []float64) float64 {
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

// maxSimilarity fuses per-scale scores by maximum; ok is false when no scale
// succeeded.
func maxSimilarity(sims []float64) (float64, bool) {
	if len(sims) == 0 {
		return 0, false
	}
	best := sims[0]
	for _, s := range sims[1:] {
		if s > best {
			best = s
		}
	}
	return best, true
}

// matchConfidence converts a similarity and its threshold into a [0,100]
// confidence.
func matchConfidence(similarity, threshold float64) float64 {
	if threshold == 0 {
		return 0
	}
	confidence := similarity / threshold * 100
	if confidence > 100 {
		confidence = 100
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}
