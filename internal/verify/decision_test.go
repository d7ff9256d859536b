package verify

import (
	"testing"

	"go-id-verifier/pkg/models"
)

func successfulExtraction(id string) models.ExtractionResult {
	return models.NewExtractionResult(&id, nil, "raw text", "")
}

func failedExtraction(errMsg string) models.ExtractionResult {
	return models.NewExtractionResult(nil, nil, "raw text", errMsg)
}

func similarityOf(sim float64, matched bool) *models.SimilarityResult {
	return &models.SimilarityResult{Similarity: &sim, Matched: matched}
}

func TestDecide_ExtractionFailed(t *testing.T) {
	verdict := decide(decisionInput{
		requestID:  "req-1",
		extraction: failedExtraction("all OCR variants failed"),
	})

	if verdict.Verdict != models.VerdictUnknown {
		t.Errorf("Expected UNKNOWN, got %s", verdict.Verdict)
	}
	if verdict.Confidence != 0 {
		t.Errorf("Expected confidence 0, got %f", verdict.Confidence)
	}
	if len(verdict.Errors) != 2 {
		t.Fatalf("Expected 2 errors, got %v", verdict.Errors)
	}
	if verdict.Errors[0] != "failed to extract ID number" {
		t.Errorf("Unexpected first error: %q", verdict.Errors[0])
	}
	if verdict.IDNumber != "" {
		t.Errorf("Expected empty ID number, got %q", verdict.IDNumber)
	}
}

func TestDecide_NotInRegistry(t *testing.T) {
	verdict := decide(decisionInput{
		requestID:  "req-2",
		extraction: successfulExtraction("MH0420250026953"),
		inRegistry: false,
	})

	if verdict.Verdict != models.VerdictFake {
		t.Errorf("Expected FAKE, got %s", verdict.Verdict)
	}
	if verdict.Confidence != 90 {
		t.Errorf("Expected confidence 90, got %f", verdict.Confidence)
	}
	if verdict.IDNumber != "MH0420250026953" {
		t.Errorf("Unexpected ID number %q", verdict.IDNumber)
	}
}

func TestDecide_InRegistryWithoutFaceStage(t *testing.T) {
	verdict := decide(decisionInput{
		requestID:  "req-3",
		extraction: successfulExtraction("MH0420250026953"),
		inRegistry: true,
	})

	if verdict.Verdict != models.VerdictLegit {
		t.Errorf("Expected LEGIT, got %s", verdict.Verdict)
	}
	if verdict.Confidence != 95 {
		t.Errorf("Expected confidence 95, got %f", verdict.Confidence)
	}
	if verdict.ImageSimilarity != nil {
		t.Error("Expected nil image similarity")
	}
}

func TestDecide_FaceAdjustments(t *testing.T) {
	tests := []struct {
		name       string
		similarity *models.SimilarityResult
		expected   float64
	}{
		{name: "match boosts capped at 100", similarity: similarityOf(0.95, true), expected: 100},
		{name: "mismatch drops", similarity: similarityOf(0.6, false), expected: 85},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := decide(decisionInput{
				requestID:  "req-4",
				extraction: successfulExtraction("MH0420250026953"),
				inRegistry: true,
				similarity: tt.similarity,
			})

			if verdict.Verdict != models.VerdictLegit {
				t.Errorf("Face comparison must not flip the verdict, got %s", verdict.Verdict)
			}
			if verdict.Confidence != tt.expected {
				t.Errorf("Expected confidence %f, got %f", tt.expected, verdict.Confidence)
			}
			if verdict.ImageSimilarity == nil {
				t.Error("Expected image similarity to be carried into the verdict")
			}
		})
	}
}

func TestDecide_FaceStageFailureIsNonFatal(t *testing.T) {
	verdict := decide(decisionInput{
		requestID:  "req-5",
		extraction: successfulExtraction("MH0420250026953"),
		inRegistry: true,
		similarity: &models.SimilarityResult{Error: "similarity calculation failed at every scale"},
	})

	if verdict.Verdict != models.VerdictLegit {
		t.Errorf("Expected LEGIT, got %s", verdict.Verdict)
	}
	if verdict.Confidence != 95 {
		t.Errorf("Expected unchanged confidence 95, got %f", verdict.Confidence)
	}
	if len(verdict.Errors) != 1 || verdict.Errors[0] != "similarity calculation failed at every scale" {
		t.Errorf("Expected the similarity error to surface, got %v", verdict.Errors)
	}
}

func TestDecide_StageErrorsCarried(t *testing.T) {
	verdict := decide(decisionInput{
		requestID:  "req-6",
		extraction: successfulExtraction("MH0420250026953"),
		inRegistry: true,
		stageErrs:  []string{"no face detected in uploaded document"},
	})

	if len(verdict.Errors) != 1 {
		t.Fatalf("Expected 1 error, got %v", verdict.Errors)
	}
	if verdict.Verdict != models.VerdictLegit || verdict.Confidence != 95 {
		t.Errorf("Stage errors must not change the verdict, got %s/%f", verdict.Verdict, verdict.Confidence)
	}
}

func TestClampConfidence(t *testing.T) {
	tests := []struct {
		in       float64
		expected float64
	}{
		{in: 105, expected: 100},
		{in: -3, expected: 0},
		{in: 42, expected: 42},
	}
	for _, tt := range tests {
		if got := clampConfidence(tt.in); got != tt.expected {
			t.Errorf("clampConfidence(%f): expected %f, got %f", tt.in, tt.expected, got)
		}
	}
}
