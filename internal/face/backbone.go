package face

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"

	apperrors "go-id-verifier/internal/errors"
	"go-id-verifier/internal/logger"
)

const embedInputSize = 224

// ImageNet channel means in RGB order. The blob conversion swaps BGR input
// to RGB before subtracting, so the scalar must stay RGB-ordered.
var imagenetMeanRGB = gocv.NewScalar(123.675, 116.28, 103.53, 0)

// Embedder produces a normalized embedding vector for a face crop resized by
// the given scale factor.
type Embedder interface {
	Available() bool
	Embed(crop gocv.Mat, scale float64) ([]float64, error)
}

// Backbone is the process-wide frozen feature extractor: a pretrained
// convolutional network with its classification head removed, loaded once at
// startup. When loading fails, the backbone stays permanently unavailable for
// the process and every request's similarity stage is skipped; nothing
// retries or blocks on it.
type Backbone struct {
	mu        sync.Mutex
	net       gocv.Net
	available bool
	reason    string
}

// LoadBackbone reads the ONNX feature extractor at path. It never fails the
// process: on any load error the returned backbone reports unavailable with
// the failure reason.
func LoadBackbone(path string) *Backbone {
	if path == "" {
		return &Backbone{reason: "no backbone model configured"}
	}

	net := gocv.ReadNetFromONNX(path)
	if net.Empty() {
		logger.WithField("path", path).Warn("Failed to load embedding backbone, similarity disabled")
		return &Backbone{reason: "failed to load model from " + path}
	}

	logger.WithField("path", path).Info("Embedding backbone loaded")
	return &Backbone{net: net, available: true}
}

// Available reports whether embedding is possible for this process.
func (b *Backbone) Available() bool {
	return b.available
}

// Reason explains why the backbone is unavailable, if it is.
func (b *Backbone) Reason() string {
	return b.reason
}

// Close releases the network.
func (b *Backbone) Close() error {
	if b.available {
		b.available = false
		return b.net.Close()
	}
	return nil
}

// Embed resizes the crop proportionally by scale, converts it to the
// network's normalized input tensor, and returns the L2-normalized embedding.
func (b *Backbone) Embed(crop gocv.Mat, scale float64) ([]float64, error) {
	if !b.available {
		return nil, apperrors.NewModelUnavailableError(b.reason, nil)
	}

	scaled := gocv.NewMat()
	defer scaled.Close()
	w := int(float64(crop.Cols()) * scale)
	h := int(float64(crop.Rows()) * scale)
	if w < 1 || h < 1 {
		return nil, apperrors.NewInternalError("face crop too small to embed", nil)
	}
	gocv.Resize(crop, &scaled, image.Pt(w, h), 0, 0, gocv.InterpolationLinear)

	blob := gocv.BlobFromImage(scaled, 1.0/57.12, image.Pt(embedInputSize, embedInputSize),
		imagenetMeanRGB, true, false)
	defer blob.Close()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.net.SetInput(blob, "")
	out := b.net.Forward("")
	defer out.Close()

	raw, err := out.DataPtrFloat32()
	if err != nil || len(raw) == 0 {
		return nil, apperrors.NewInternalError("backbone produced no embedding", err)
	}

	vec := make([]float64, len(raw))
	for i, v := range raw {
		vec[i] = float64(v)
	}

	norm := floats.Norm(vec, 2)
	if norm == 0 {
		return nil, apperrors.NewInternalError("backbone produced zero embedding", nil)
	}
	floats.Scale(1/norm, vec)
	return vec, nil
}
