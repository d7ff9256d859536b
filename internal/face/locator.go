// Package face locates and compares document-photo faces: cascade detection
// with quality gating, and multi-scale similarity over a frozen embedding
// backbone.
package face

import (
	"image"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"

	apperrors "go-id-verifier/internal/errors"
	"go-id-verifier/internal/logger"
	"go-id-verifier/pkg/models"
)

// Crop is an accepted face region together with its measured quality. The
// caller owns the mat and must Close it.
type Crop struct {
	Mat     gocv.Mat
	Quality models.FaceQuality
}

// Close releases the crop's pixel data.
func (c *Crop) Close() {
	c.Mat.Close()
}

// Locator detects the primary face in a document image and rejects crops
// below the quality floor.
type Locator struct {
	classifier gocv.CascadeClassifier
	floor      float64
}

// NewLocator loads the frontal-face cascade from cascadePath. Crops scoring
// below floor are reported as unusable rather than returned.
func NewLocator(cascadePath string, floor float64) (*Locator, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cascadePath) {
		classifier.Close()
		return nil, apperrors.NewInternalError("failed to load face cascade classifier", nil)
	}
	return &Locator{classifier: classifier, floor: floor}, nil
}

// Close releases the cascade classifier.
func (l *Locator) Close() {
	l.classifier.Close()
}

// LargestFaceCrop finds the largest detected face (the ID's primary subject
// is assumed to be the biggest face in frame), expands it with adaptive
// padding, and returns the lighting-normalized crop. It fails with a no-face
// error when detection finds nothing and a low-quality error when the best
// crop scores below the floor.
func (l *Locator) LargestFaceCrop(src gocv.Mat) (*Crop, error) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	rects := l.classifier.DetectMultiScaleWithParams(gray, 1.1, 4, 0, image.Pt(30, 30), image.Pt(0, 0))
	if len(rects) == 0 {
		return nil, apperrors.NewNoFaceError("no face detected in image")
	}

	best := rects[0]
	for _, r := range rects[1:] {
		if r.Dx()*r.Dy() > best.Dx()*best.Dy() {
			best = r
		}
	}

	padded := padRect(best, src.Cols(), src.Rows())
	region := src.Region(padded)
	crop := region.Clone()
	region.Close()

	quality := l.measureQuality(crop)
	logger.WithFields(logrus.Fields{
		"width":   crop.Cols(),
		"height":  crop.Rows(),
		"quality": quality.Score,
	}).Debug("Face detected")

	if quality.Score < l.floor {
		crop.Close()
		return nil, apperrors.NewLowFaceQualityError("face quality too low")
	}

	normalized := normalizeFace(crop)
	crop.Close()
	return &Crop{Mat: normalized, Quality: quality}, nil
}

// padRect expands a detection box by adaptive padding, clamped to the image,
// to preserve context for the embedding network.
func padRect(r image.Rectangle, maxW, maxH int) image.Rectangle {
	shortest := r.Dx()
	if r.Dy() < shortest {
		shortest = r.Dy()
	}
	padding := shortest / 10
	if padding < 20 {
		padding = 20
	}

	x0 := r.Min.X - padding
	y0 := r.Min.Y - padding
	x1 := r.Max.X + padding
	y1 := r.Max.Y + padding
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > maxW {
		x1 = maxW
	}
	if y1 > maxH {
		y1 = maxH
	}
	return image.Rect(x0, y0, x1, y1)
}

// measureQuality computes the crop's resolution, sharpness, and exposure
// inputs and scores them.
func (l *Locator) measureQuality(crop gocv.Mat) models.FaceQuality {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(crop, &gray, gocv.ColorBGRToGray)

	minDim := crop.Cols()
	if crop.Rows() < minDim {
		minDim = crop.Rows()
	}

	return newQuality(minDim, laplacianVariance(gray), gray.Mean().Val1)
}

// laplacianVariance measures sharpness as the variance of the Laplacian edge
// response; blur flattens the response toward zero.
func laplacianVariance(gray gocv.Mat) float64 {
	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Laplacian(gray, &edges, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	data, err := edges.DataPtrFloat64()
	if err != nil || len(data) == 0 {
		return 0
	}
	return stat.Variance(data, nil)
}

// normalizeFace applies lighting normalization (CLAHE on the luma channel)
// and edge-preserving denoise before the crop is handed downstream.
func normalizeFace(crop gocv.Mat) gocv.Mat {
	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(crop, &resized, image.Pt(224, 224), 0, 0, gocv.InterpolationLinear)

	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(resized, &lab, gocv.ColorBGRToLab)

	channels := gocv.Split(lab)
	clahe := gocv.NewCLAHEWithParams(2.0, image.Pt(8, 8))
	clahe.Apply(channels[0], &channels[0])
	clahe.Close()

	gocv.Merge(channels, &lab)
	for i := range channels {
		channels[i].Close()
	}

	equalized := gocv.NewMat()
	defer equalized.Close()
	gocv.CvtColor(lab, &equalized, gocv.ColorLabToBGR)

	denoised := gocv.NewMat()
	gocv.BilateralFilter(equalized, &denoised, 9, 75, 75)
	return denoised
}
