package models

// MinUsableFaceQuality is the floor below which a detected face crop is
// rejected as unusable rather than passed downstream.
const MinUsableFaceQuality = 0.3

// FaceQuality aggregates the three independent quality checks performed on a
// face crop. Score is additive over the checks and capped at 1.0.
type FaceQuality struct {
	Score      float64 `json:"score"`
	MinDim     int     `json:"min_dim"`
	Sharpness  float64 `json:"sharpness"`
	Brightness float64 `json:"brightness"`
}

// Usable reports whether the crop meets the minimum quality floor.
func (q FaceQuality) Usable() bool {
	return q.Score >= MinUsableFaceQuality
}
