// Package orientation normalizes document images to upright before OCR.
package orientation

import (
	"image"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"go-id-verifier/internal/logger"
)

// Detector reports the clockwise rotation (degrees) needed to bring an image
// upright, or an error when there is not enough text signal to decide.
type Detector interface {
	DetectRotation(mat gocv.Mat) (int, error)
}

// Corrector rotates images upright using a Detector. Detector failure is
// non-fatal; downstream stages tolerate residual skew.
type Corrector struct {
	detector Detector
}

// NewCorrector creates a corrector around the given orientation detector.
func NewCorrector(detector Detector) *Corrector {
	return &Corrector{detector: detector}
}

// Correct returns an upright copy of the input together with the applied
// rotation in degrees (0 when none). The input mat is not modified. Cardinal
// angles use lossless rotation; any other detected angle falls back to an
// affine warp with edge-replicated borders.
func (c *Corrector) Correct(mat gocv.Mat) (gocv.Mat, int) {
	rotation, err := c.detector.DetectRotation(mat)
	if err != nil {
		logger.WithError(err).Debug("Orientation detection failed, skipping rotation")
		return mat.Clone(), 0
	}
	rotation = ((rotation % 360) + 360) % 360
	if rotation == 0 {
		return mat.Clone(), 0
	}

	dst := gocv.NewMat()
	switch rotation {
	case 90:
		gocv.Rotate(mat, &dst, gocv.Rotate90Clockwise)
	case 180:
		gocv.Rotate(mat, &dst, gocv.Rotate180Clockwise)
	case 270:
		gocv.Rotate(mat, &dst, gocv.Rotate90CounterClockwise)
	default:
		c.warpRotate(mat, &dst, rotation)
	}

	logger.WithFields(logrus.Fields{
		"rotation": rotation,
	}).Debug("Auto-rotation applied")
	return dst, rotation
}

// warpRotate handles non-cardinal angles reported by custom detectors.
func (c *Corrector) warpRotate(src gocv.Mat, dst *gocv.Mat, degrees int) {
	cols := src.Cols()
	rows := src.Rows()
	center := image.Pt(cols/2, rows/2)

	m := gocv.GetRotationMatrix2D(center, float64(degrees), 1.0)
	defer m.Close()

	gocv.WarpAffineWithParams(src, dst, m, image.Pt(cols, rows),
		gocv.InterpolationLinear, gocv.BorderReplicate, colorBlack)
}
