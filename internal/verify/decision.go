// Package verify orchestrates the full verification pipeline and folds its
// stage outcomes into a single verdict.
package verify

import (
	"time"

	"go-id-verifier/pkg/models"
)

const (
	confidenceLegit   = 95.0
	confidenceFake    = 90.0
	confidenceUnknown = 0.0

	faceMatchBoost   = 5.0
	faceMismatchDrop = 10.0
)

// decisionInput collects the stage outcomes the decision engine folds into a
// verdict. Similarity is nil when the face stage never ran.
type decisionInput struct {
	requestID  string
	extraction models.ExtractionResult
	rotation   int
	inRegistry bool
	similarity *models.SimilarityResult
	stageErrs  []string
}

// decide produces the final verdict. Registry membership alone fixes the base
// verdict; the face comparison only nudges confidence and never flips LEGIT
// to FAKE or vice versa.
func decide(in decisionInput) models.VerificationVerdict {
	verdict := models.VerificationVerdict{
		RequestID:       in.requestID,
		ParsedFields:    in.extraction.ParsedFields,
		Errors:          append([]string{}, in.stageErrs...),
		AppliedRotation: in.rotation,
		Timestamp:       time.Now().UTC(),
	}

	if !in.extraction.Succeeded {
		verdict.Verdict = models.VerdictUnknown
		verdict.Confidence = confidenceUnknown
		verdict.Errors = append(verdict.Errors, "failed to extract ID number")
		if in.extraction.Error != "" {
			verdict.Errors = append(verdict.Errors, in.extraction.Error)
		}
		return verdict
	}
	verdict.IDNumber = *in.extraction.IDNumber

	if !in.inRegistry {
		verdict.Verdict = models.VerdictFake
		verdict.Confidence = confidenceFake
		return verdict
	}

	verdict.Verdict = models.VerdictLegit
	verdict.Confidence = confidenceLegit

	if in.similarity != nil {
		verdict.ImageSimilarity = in.similarity.Similarity
		if in.similarity.Error != "" {
			verdict.Errors = append(verdict.Errors, in.similarity.Error)
		}
		if in.similarity.Similarity != nil {
			if in.similarity.Matched {
				verdict.Confidence = clampConfidence(verdict.Confidence + faceMatchBoost)
			} else {
				verdict.Confidence = clampConfidence(verdict.Confidence - faceMismatchDrop)
			}
		}
	}
	return verdict
}

func clampConfidence(c float64) float64 {
	if c > 100 {
		return 100
	}
	if c < 0 {
		return 0
	}
	return c
}
