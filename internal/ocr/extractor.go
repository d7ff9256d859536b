package ocr

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"go-id-verifier/internal/codec"
	"go-id-verifier/internal/logger"
	"go-id-verifier/pkg/models"
)

// Options configures one extraction run.
type Options struct {
	PSM              int
	OEM              int
	FallbackPatterns bool
}

// Extractor runs the preprocessing bank through the OCR engine and parses the
// identifying code out of the combined text.
type Extractor struct {
	bank   *Bank
	engine Engine
}

// NewExtractor creates an extractor over the given engine.
func NewExtractor(bank *Bank, engine Engine) *Extractor {
	return &Extractor{bank: bank, engine: engine}
}

// Extract recognizes text across all distinct preprocessing variants of the
// upright image and parses the identifying code from their union. Per-variant
// engine failures are skipped; the run fails to extract only when no variant
// yields a matching code.
func (e *Extractor) Extract(ctx context.Context, upright gocv.Mat, opts Options) models.ExtractionResult {
	gray, denoised := e.bank.Base(upright)
	defer gray.Close()
	defer denoised.Close()

	var texts []string
	seen := make(map[uint64]bool)
	variantsRun := 0

	for _, variant := range e.bank.Variants(gray, denoised) {
		mat, err := variant.Render()
		if err != nil {
			logger.WithError(err).WithField("variant", variant.Label).Warn("Variant rendering failed, skipping")
			continue
		}

		png, err := codec.Encode(mat)
		mat.Close()
		if err != nil {
			logger.WithError(err).WithField("variant", variant.Label).Warn("Variant encoding failed, skipping")
			continue
		}

		// Two variants that produce identical bytes are recognized once.
		h := contentHash(png)
		if seen[h] {
			continue
		}
		seen[h] = true

		text, err := e.engine.Recognize(ctx, png, RecognizeParams{PSM: opts.PSM, OEM: opts.OEM})
		if err != nil {
			logger.WithError(err).WithField("variant", variant.Label).Warn("OCR failed on variant, skipping")
			continue
		}
		variantsRun++
		if text = strings.TrimSpace(text); text != "" {
			texts = append(texts, text)
		}
	}

	combined := strings.Join(texts, "\n")
	logger.WithFields(logrus.Fields{
		"variants_run": variantsRun,
		"text_length":  len(combined),
	}).Debug("OCR variants complete")

	errMsg := ""
	if variantsRun == 0 {
		errMsg = "all OCR variants failed"
	}

	parser := NewParser(opts.FallbackPatterns)
	fields, id := parser.ParseFields(combined)

	result := models.NewExtractionResult(id, fields, combined, errMsg)
	result.VariantsRun = variantsRun
	result.VariantAgreement = variantAgreement(texts)
	return result
}

func contentHash(data []byte) uint64 {
	h := fnv.New64a()
	h.Write(data)
	return h.Sum64()
}
