package ocr

import (
	"context"
	"strconv"
	"sync"

	"github.com/otiai10/gosseract/v2"

	apperrors "go-id-verifier/internal/errors"
)

// RecognizeParams carries the caller-supplied tesseract layout and engine
// modes (PSM/OEM equivalents).
type RecognizeParams struct {
	PSM int
	OEM int
}

// Engine runs text recognition over an encoded image.
type Engine interface {
	Recognize(ctx context.Context, png []byte, params RecognizeParams) (string, error)
	ScoreText(png []byte) (float64, error)
	Close() error
}

// enginePool recycles tesseract clients through a bounded pool. Clients are
// expensive to construct and not safe for concurrent use, so each request
// checks one out for the duration of a recognition call.
type enginePool struct {
	language string
	clients  chan *gosseract.Client
	once     sync.Once

	// mu guards closed so a release racing Close never sends on the
	// closed channel.
	mu     sync.Mutex
	closed bool
}

// NewEnginePool creates an Engine backed by size pooled tesseract clients.
func NewEnginePool(language string, size int) (Engine, error) {
	if size < 1 {
		size = 1
	}
	pool := &enginePool{
		language: language,
		clients:  make(chan *gosseract.Client, size),
	}
	for i := 0; i < size; i++ {
		client := gosseract.NewClient()
		if err := client.SetLanguage(language); err != nil {
			client.Close()
			pool.Close()
			return nil, apperrors.NewOCREngineError("failed to set OCR language", err)
		}
		pool.clients <- client
	}
	return pool, nil
}

// Recognize runs tesseract on the encoded image with the given parameters.
// Errors are per-variant; callers skip the variant and continue.
func (p *enginePool) Recognize(ctx context.Context, png []byte, params RecognizeParams) (string, error) {
	client, err := p.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer p.release(client)

	if err := client.SetImageFromBytes(png); err != nil {
		return "", apperrors.NewOCREngineError("failed to set image", err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(params.PSM)); err != nil {
		return "", apperrors.NewOCREngineError("failed to set page segmentation mode", err)
	}
	if err := client.SetVariable("tessedit_ocr_engine_mode", strconv.Itoa(params.OEM)); err != nil {
		return "", apperrors.NewOCREngineError("failed to set engine mode", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", apperrors.NewOCREngineError("recognition failed", err)
	}
	return text, nil
}

// ScoreText rates the text signal in an image as the confidence-weighted word
// count. The orientation detector uses it to probe candidate rotations.
func (p *enginePool) ScoreText(png []byte) (float64, error) {
	client, err := p.acquire(context.Background())
	if err != nil {
		return 0, err
	}
	defer p.release(client)

	if err := client.SetImageFromBytes(png); err != nil {
		return 0, apperrors.NewOCREngineError("failed to set image", err)
	}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return 0, apperrors.NewOCREngineError("failed to read word boxes", err)
	}

	var score float64
	for _, box := range boxes {
		if box.Confidence > 0 {
			score += box.Confidence / 100.0
		}
	}
	return score, nil
}

// Close releases every pooled client. Clients checked out at close time are
// released by their holders when they finish.
func (p *enginePool) Close() error {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.clients)
		p.mu.Unlock()

		for client := range p.clients {
			client.Close()
		}
	})
	return nil
}

func (p *enginePool) acquire(ctx context.Context) (*gosseract.Client, error) {
	select {
	case client, ok := <-p.clients:
		if !ok {
			return nil, apperrors.NewOCREngineError("engine pool closed", nil)
		}
		return client, nil
	case <-ctx.Done():
		return nil, apperrors.NewOCREngineError("context cancelled waiting for OCR client", ctx.Err())
	}
}

func (p *enginePool) release(client *gosseract.Client) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		client.Close()
		return
	}
	select {
	case p.clients <- client:
	default:
		client.Close()
	}
}
