package verify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"go-id-verifier/internal/audit"
	"go-id-verifier/internal/codec"
	"go-id-verifier/internal/config"
	apperrors "go-id-verifier/internal/errors"
	"go-id-verifier/internal/face"
	"go-id-verifier/internal/logger"
	"go-id-verifier/internal/ocr"
	"go-id-verifier/internal/orientation"
	"go-id-verifier/internal/registry"
	"go-id-verifier/internal/storage"
	"go-id-verifier/pkg/models"
)

// Service runs the verification pipeline end to end: decode, orientation,
// OCR, registry lookup, face comparison, decision, audit.
type Service struct {
	cfg        *config.Config
	corrector  *orientation.Corrector
	extractor  *ocr.Extractor
	registry   registry.Store
	resolver   *storage.Resolver
	locator    *face.Locator
	similarity *face.SimilarityEngine
	auditStore audit.Store
	publisher  audit.Subject
}

// NewService wires the pipeline stages into a verification service.
func NewService(
	cfg *config.Config,
	corrector *orientation.Corrector,
	extractor *ocr.Extractor,
	reg registry.Store,
	resolver *storage.Resolver,
	locator *face.Locator,
	similarity *face.SimilarityEngine,
	auditStore audit.Store,
	publisher audit.Subject,
) *Service {
	return &Service{
		cfg:        cfg,
		corrector:  corrector,
		extractor:  extractor,
		registry:   reg,
		resolver:   resolver,
		locator:    locator,
		similarity: similarity,
		auditStore: auditStore,
		publisher:  publisher,
	}
}

// Verify processes one uploaded document. Pipeline stage failures past image
// decoding fold into the verdict rather than aborting the request; only an
// undecodable upload or an unreachable registry surfaces as an error.
func (s *Service) Verify(ctx context.Context, req models.VerificationRequest) (models.VerificationVerdict, error) {
	requestID := uuid.New().String()
	log := logger.WithRequest(requestID)
	started := time.Now()

	s.publish(ctx, audit.VerificationEvent{
		EventType: audit.VerificationStarted,
		Timestamp: started,
		RequestID: requestID,
	})

	src, err := codec.Decode(req.Image)
	if err != nil {
		s.publishOutcome(ctx, requestID, started, false, err.Error())
		return models.VerificationVerdict{}, err
	}
	defer src.Close()

	upright, rotation := s.corrector.Correct(src)
	defer upright.Close()
	if rotation != 0 {
		log.WithField("rotation", rotation).Info("Corrected document orientation")
	}

	extraction := s.extractor.Extract(ctx, upright, ocr.Options{
		PSM:              req.PSM,
		OEM:              req.OEM,
		FallbackPatterns: s.cfg.FallbackPatterns,
	})

	if !extraction.Succeeded {
		verdict := decide(decisionInput{
			requestID:  requestID,
			extraction: extraction,
			rotation:   rotation,
		})
		s.finish(ctx, log, req, verdict, started)
		return verdict, nil
	}

	code := registry.NormalizeKey(*extraction.IDNumber, s.cfg.RegistryKeyMinLen)
	entry, err := s.registry.Lookup(ctx, code)
	if err != nil {
		verdict := decide(decisionInput{
			requestID:  requestID,
			extraction: extraction,
			rotation:   rotation,
			stageErrs:  []string{"registry lookup failed"},
		})
		verdict.Verdict = models.VerdictUnknown
		verdict.Confidence = confidenceUnknown
		s.finish(ctx, log, req, verdict, started)
		return verdict, err
	}

	// The face stage needs a stored reference photo; registered codes
	// without one verify on registry membership alone.
	var similarity *models.SimilarityResult
	var stageErrs []string
	if entry.Exists && entry.Photo != "" {
		similarity, stageErrs = s.runFaceStage(ctx, log, requestID, upright, entry.Photo)
	}

	verdict := decide(decisionInput{
		requestID:  requestID,
		extraction: extraction,
		rotation:   rotation,
		inRegistry: entry.Exists,
		similarity: similarity,
		stageErrs:  stageErrs,
	})
	s.finish(ctx, log, req, verdict, started)
	return verdict, nil
}

// runFaceStage resolves the stored photo and compares faces. Every failure in
// this stage is non-fatal and comes back as an error string for the verdict.
func (s *Service) runFaceStage(ctx context.Context, log *logrus.Entry, requestID string, upright gocv.Mat, photo string) (*models.SimilarityResult, []string) {
	if s.locator == nil || s.similarity == nil {
		return nil, []string{"face comparison not configured"}
	}

	photoBytes, err := s.resolver.Resolve(ctx, photo)
	if err != nil {
		log.WithError(err).Warn("Failed to resolve stored photo")
		s.publish(ctx, audit.VerificationEvent{
			EventType:    audit.PhotoFetchFailed,
			Timestamp:    time.Now().UTC(),
			RequestID:    requestID,
			ErrorMessage: err.Error(),
		})
		return nil, []string{"stored photo unavailable"}
	}
	s.publish(ctx, audit.VerificationEvent{
		EventType: audit.PhotoFetched,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
		Success:   true,
	})

	stored, err := codec.Decode(photoBytes)
	if err != nil {
		log.WithError(err).Warn("Stored photo is not a decodable image")
		return nil, []string{"stored photo undecodable"}
	}
	defer stored.Close()

	uploadedCrop, err := s.locator.LargestFaceCrop(upright)
	if err != nil {
		return nil, []string{faceStageError("uploaded document", err)}
	}
	defer uploadedCrop.Close()

	storedCrop, err := s.locator.LargestFaceCrop(stored)
	if err != nil {
		return nil, []string{faceStageError("stored photo", err)}
	}
	defer storedCrop.Close()

	result := s.similarity.Compare(uploadedCrop, storedCrop)
	return &result, nil
}

func faceStageError(source string, err error) string {
	switch {
	case apperrors.IsType(err, apperrors.ErrorTypeNoFace):
		return "no face detected in " + source
	case apperrors.IsType(err, apperrors.ErrorTypeLowFaceQuality):
		return "face quality too low in " + source
	default:
		return "face processing failed for " + source
	}
}

func (s *Service) publish(ctx context.Context, event audit.VerificationEvent) {
	if s.publisher != nil {
		s.publisher.NotifyObservers(ctx, event)
	}
}

func (s *Service) publishOutcome(ctx context.Context, requestID string, started time.Time, success bool, errMsg string) {
	eventType := audit.VerificationCompleted
	if !success {
		eventType = audit.VerificationFailed
	}
	s.publish(ctx, audit.VerificationEvent{
		EventType:      eventType,
		Timestamp:      time.Now().UTC(),
		RequestID:      requestID,
		ProcessingTime: time.Since(started),
		Success:        success,
		ErrorMessage:   errMsg,
	})
}

// finish appends the audit record and publishes the completion event. Audit
// failures are logged but never alter the verdict.
func (s *Service) finish(ctx context.Context, log *logrus.Entry, req models.VerificationRequest, verdict models.VerificationVerdict, started time.Time) {
	if s.auditStore != nil {
		if err := s.auditStore.Append(ctx, audit.RecordFromVerdict(verdict, req.Metadata)); err != nil {
			log.WithError(err).Error("Failed to append audit record")
		}
	}
	s.publish(ctx, audit.VerificationEvent{
		EventType:      audit.VerificationCompleted,
		Timestamp:      time.Now().UTC(),
		RequestID:      verdict.RequestID,
		ProcessingTime: time.Since(started),
		Success:        true,
		Metadata: map[string]interface{}{
			"verdict":    string(verdict.Verdict),
			"confidence": verdict.Confidence,
		},
	})
	log.WithFields(logrus.Fields{
		"verdict":    verdict.Verdict,
		"confidence": verdict.Confidence,
		"duration":   time.Since(started),
	}).Info("Verification finished")
}
