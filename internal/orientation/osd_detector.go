package orientation

import (
	"fmt"
	"image/color"

	"gocv.io/x/gocv"

	"go-id-verifier/internal/codec"
)

var colorBlack = color.RGBA{}

// TextScorer rates how much legible text the OCR engine finds in an encoded
// image. Higher is better. The ocr package's engine pool satisfies this.
type TextScorer interface {
	ScoreText(png []byte) (float64, error)
}

// minScoreGain is how much better a rotated probe must score before we trust
// it over the unrotated image.
const minScoreGain = 1.15

// osdDetector picks the cardinal rotation whose OCR probe scores best, an
// orientation-and-script style heuristic built from word confidences.
type osdDetector struct {
	scorer TextScorer
}

// NewOSDDetector creates a Detector that probes the four cardinal rotations.
func NewOSDDetector(scorer TextScorer) Detector {
	return &osdDetector{scorer: scorer}
}

// DetectRotation probes 0/90/180/270 and returns the winning angle. It fails
// when no probe finds any text signal at all.
func (d *osdDetector) DetectRotation(mat gocv.Mat) (int, error) {
	base, err := d.scoreRotation(mat, 0)
	if err != nil {
		return 0, err
	}

	best, bestScore := 0, base
	for _, angle := range []int{90, 180, 270} {
		score, err := d.scoreRotation(mat, angle)
		if err != nil {
			continue
		}
		if score > bestScore && score > base*minScoreGain {
			best, bestScore = angle, score
		}
	}

	if bestScore <= 0 {
		return 0, fmt.Errorf("no text signal in any orientation")
	}
	return best, nil
}

func (d *osdDetector) scoreRotation(mat gocv.Mat, angle int) (float64, error) {
	probe := mat
	if angle != 0 {
		rotated := gocv.NewMat()
		defer rotated.Close()
		switch angle {
		case 90:
			gocv.Rotate(mat, &rotated, gocv.Rotate90Clockwise)
		case 180:
			gocv.Rotate(mat, &rotated, gocv.Rotate180Clockwise)
		case 270:
			gocv.Rotate(mat, &rotated, gocv.Rotate90CounterClockwise)
		}
		probe = rotated
	}

	png, err := codec.Encode(probe)
	if err != nil {
		return 0, err
	}
	return d.scorer.ScoreText(png)
}
