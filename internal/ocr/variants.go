package ocr

import (
	"image"

	"gocv.io/x/gocv"
)

// Variant is one preprocessing strategy. Render produces a fresh mat each
// call, so a sequence of variants can be walked more than once; the caller
// owns and closes the returned mat.
type Variant struct {
	Label  string
	Render func() (gocv.Mat, error)
}

// Bank produces the ordered preprocessing variants used to maximize OCR
// recall. Different filters recover different characters; the extractor
// unions their output rather than picking a single best variant.
type Bank struct{}

// NewBank creates a preprocessing bank.
func NewBank() *Bank {
	return &Bank{}
}

// Base converts a BGR mat to the denoised grayscale base every variant
// derives from. Both returned mats are owned by the caller.
func (b *Bank) Base(src gocv.Mat) (gray, denoised gocv.Mat) {
	gray = gocv.NewMat()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	// Edge-preserving denoise; keeps character strokes intact.
	denoised = gocv.NewMat()
	gocv.BilateralFilter(gray, &denoised, 9, 75, 75)
	return gray, denoised
}

// Variants returns the lazy, finite, restartable preprocessing sequence. The
// order only matters for dedup bookkeeping, not correctness. The gray and
// denoised mats must stay alive while the sequence is in use.
func (b *Bank) Variants(gray, denoised gocv.Mat) []Variant {
	return []Variant{
		{Label: "grayscale", Render: func() (gocv.Mat, error) {
			return gray.Clone(), nil
		}},
		{Label: "denoised", Render: func() (gocv.Mat, error) {
			return denoised.Clone(), nil
		}},
		{Label: "otsu", Render: func() (gocv.Mat, error) {
			return b.otsu(denoised), nil
		}},
		{Label: "adaptive", Render: func() (gocv.Mat, error) {
			dst := gocv.NewMat()
			gocv.AdaptiveThreshold(denoised, &dst, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, 31, 10)
			return dst, nil
		}},
		{Label: "opened", Render: func() (gocv.Mat, error) {
			thresholded := b.otsu(denoised)
			defer thresholded.Close()

			kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(1, 1))
			defer kernel.Close()

			dst := gocv.NewMat()
			gocv.MorphologyEx(thresholded, &dst, gocv.MorphOpen, kernel)
			return dst, nil
		}},
	}
}

// otsu applies global binarization with an automatically chosen threshold.
func (b *Bank) otsu(denoised gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	gocv.Threshold(denoised, &dst, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)
	return dst
}
