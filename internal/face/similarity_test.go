package face

import (
	"errors"
	"math"
	"testing"

	"gocv.io/x/gocv"

	"go-id-verifier/pkg/models"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{name: "identical", a: []float64{1, 0, 0}, b: []float64{1, 0, 0}, expected: 1.0},
		{name: "orthogonal", a: []float64{1, 0}, b: []float64{0, 1}, expected: 0.0},
		{name: "opposite", a: []float64{1, 0}, b: []float64{-1, 0}, expected: -1.0},
		{name: "unnormalized", a: []float64{3, 0}, b: []float64{7, 0}, expected: 1.0},
		{name: "zero vector", a: []float64{0, 0}, b: []float64{1, 0}, expected: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Expected %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestMaxSimilarity(t *testing.T) {
	if _, ok := maxSimilarity(nil); ok {
		t.Error("Expected ok=false for empty input")
	}

	best, ok := maxSimilarity([]float64{0.7, 0.92, 0.85})
	if !ok || best != 0.92 {
		t.Errorf("Expected 0.92, got %f (ok=%v)", best, ok)
	}

	best, ok = maxSimilarity([]float64{0.5})
	if !ok || best != 0.5 {
		t.Errorf("Expected 0.5, got %f (ok=%v)", best, ok)
	}
}

func TestMatchConfidence(t *testing.T) {
	tests := []struct {
		name       string
		similarity float64
		threshold  float64
		expected   float64
	}{
		{name: "at threshold", similarity: 0.9, threshold: 0.9, expected: 100},
		{name: "above threshold capped", similarity: 0.99, threshold: 0.9, expected: 100},
		{name: "half of threshold", similarity: 0.45, threshold: 0.9, expected: 50},
		{name: "negative floored", similarity: -0.5, threshold: 0.9, expected: 0},
		{name: "zero threshold", similarity: 0.9, threshold: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchConfidence(tt.similarity, tt.threshold)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Expected %f, got %f", tt.expected, got)
			}
		})
	}
}

// stubEmbedder returns canned vectors keyed by scale.
type stubEmbedder struct {
	vectors map[float64][]float64
	err     error
}

func (s *stubEmbedder) Available() bool { return true }

func (s *stubEmbedder) Embed(crop gocv.Mat, scale float64) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vectors[scale], nil
}

// unavailableEmbedder simulates a missing backbone model.
type unavailableEmbedder struct{}

func (unavailableEmbedder) Available() bool { return false }

func (unavailableEmbedder) Embed(crop gocv.Mat, scale float64) ([]float64, error) {
	return nil, errors.New("model not loaded")
}

func testCrop(quality float64) *Crop {
	return &Crop{Mat: gocv.NewMat(), Quality: models.FaceQuality{Score: quality}}
}

func TestCompare_MaxFusionAcrossScales(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[float64][]float64{
		0.8: {1, 0},
		1.0: {0.6, 0.8},
		1.2: {0, 1},
	}}
	engine := NewSimilarityEngine(embedder, []float64{0.8, 1.0, 1.2}, DefaultThresholds())

	uploaded := testCrop(0.9)
	defer uploaded.Close()
	stored := testCrop(0.9)
	defer stored.Close()

	result := engine.Compare(uploaded, stored)
	if result.Similarity == nil {
		t.Fatalf("Expected similarity, got error %q", result.Error)
	}
	// Each scale compares a vector against itself, so the fused score is 1.
	if math.Abs(*result.Similarity-1.0) > 1e-9 {
		t.Errorf("Expected fused similarity 1.0, got %f", *result.Similarity)
	}
	if result.ThresholdUsed != 0.85 {
		t.Errorf("Expected high-quality threshold 0.85, got %f", result.ThresholdUsed)
	}
	if !result.Matched {
		t.Error("Expected a match")
	}
	if result.Confidence != 100 {
		t.Errorf("Expected confidence 100, got %f", result.Confidence)
	}
}

func TestCompare_AllScalesFailed(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("inference failed")}
	engine := NewSimilarityEngine(embedder, []float64{1.0}, DefaultThresholds())

	uploaded := testCrop(0.9)
	defer uploaded.Close()
	stored := testCrop(0.9)
	defer stored.Close()

	result := engine.Compare(uploaded, stored)
	if result.Similarity != nil {
		t.Errorf("Expected nil similarity, got %f", *result.Similarity)
	}
	if result.Matched {
		t.Error("Expected no match when every scale failed")
	}
	if result.Error == "" {
		t.Error("Expected an error message")
	}
}

func TestCompare_ModelUnavailable(t *testing.T) {
	engine := NewSimilarityEngine(unavailableEmbedder{}, []float64{1.0}, DefaultThresholds())

	uploaded := testCrop(0.9)
	defer uploaded.Close()
	stored := testCrop(0.9)
	defer stored.Close()

	result := engine.Compare(uploaded, stored)
	if result.Similarity != nil {
		t.Error("Expected nil similarity when the model is unavailable")
	}
	if result.Error == "" {
		t.Error("Expected an error message")
	}
}
