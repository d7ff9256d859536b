package face

import "go-id-verifier/pkg/models"

// scoreQuality combines the three independent crop checks into a [0,1] score.
// Each check contributes additively and the sum is capped at 1.0:
// resolution by shortest side, sharpness by Laplacian variance, exposure by
// mean brightness.
func scoreQuality(minDim int, sharpness, brightness float64) float64 {
	score := 0.0

	switch {
	case minDim >= 100:
		score += 0.3
	case minDim >= 50:
		score += 0.2
	default:
		score += 0.1
	}

	switch {
	case sharpness > 100:
		score += 0.4
	case sharpness > 50:
		score += 0.3
	default:
		score += 0.1
	}

	switch {
	case brightness >= 50 && brightness <= 200:
		score += 0.3
	case brightness >= 30 && brightness <= 220:
		score += 0.2
	default:
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// newQuality measures and scores a crop's quality inputs.
func newQuality(minDim int, sharpness, brightness float64) models.FaceQuality {
	return models.FaceQuality{
		Score:      scoreQuality(minDim, sharpness, brightness),
		MinDim:     minDim,
		Sharpness:  sharpness,
		Brightness: brightness,
	}
}

// Thresholds holds the adaptive match-threshold configuration.
type Thresholds struct {
	High       float64 // used when both crops are high quality
	Base       float64 // used for mixed quality
	Low        float64 // used when either crop is low quality
	HighCutoff float64 // quality above which a crop counts as high quality
	LowCutoff  float64 // quality below which a crop counts as low quality
}

// DefaultThresholds returns the stock adaptive threshold configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{High: 0.85, Base: 0.90, Low: 0.95, HighCutoff: 0.8, LowCutoff: 0.5}
}

// adaptiveThreshold picks the match boundary from the two crops' measured
// quality: high-quality pairs can be held to a looser boundary, low-quality
// input demands a stricter one.
func adaptiveThreshold(uploadedQuality, storedQuality float64, t Thresholds) float64 {
	if uploadedQuality > t.HighCutoff && storedQuality > t.HighCutoff {
		return t.High
	}
	if uploadedQuality < t.LowCutoff || storedQuality < t.LowCutoff {
		return t.Low
	}
	return t.Base
}
