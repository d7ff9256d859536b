package models

import "time"

// Verdict is the final outcome of a verification request.
type Verdict string

const (
	VerdictLegit   Verdict = "LEGIT"
	VerdictFake    Verdict = "FAKE"
	VerdictUnknown Verdict = "UNKNOWN"
)

// ExtractionResult holds the outcome of running OCR and ID parsing over an
// uploaded document image. Succeeded is true exactly when IDNumber is non-nil.
type ExtractionResult struct {
	IDNumber     *string            `json:"id_number"`
	ParsedFields map[string]*string `json:"parsed_fields"`
	RawText      string             `json:"raw_text"`
	Succeeded    bool               `json:"succeeded"`
	Error        string             `json:"error,omitempty"`

	// Diagnostics carried into the audit record; they never influence parsing.
	VariantsRun      int     `json:"variants_run"`
	VariantAgreement float64 `json:"variant_agreement"`
}

// NewExtractionResult builds an ExtractionResult and enforces the
// succeeded == (idNumber != nil) invariant.
func NewExtractionResult(idNumber *string, fields map[string]*string, rawText string, errMsg string) ExtractionResult {
	if fields == nil {
		fields = map[string]*string{}
	}
	// The id_number key is always present, even when extraction failed.
	fields["id_number"] = idNumber
	return ExtractionResult{
		IDNumber:     idNumber,
		ParsedFields: fields,
		RawText:      rawText,
		Succeeded:    idNumber != nil,
		Error:        errMsg,
	}
}

// SimilarityResult describes a face comparison between the uploaded document
// photo and the stored reference photo. Similarity is nil when every scale
// attempt failed, which callers must treat differently from a non-match.
type SimilarityResult struct {
	Similarity      *float64 `json:"similarity"`
	Matched         bool     `json:"matched"`
	Confidence      float64  `json:"confidence"`
	UploadedQuality float64  `json:"uploaded_quality"`
	StoredQuality   float64  `json:"stored_quality"`
	ThresholdUsed   float64  `json:"threshold_used"`
	Error           string   `json:"error,omitempty"`
}

// VerificationVerdict is the single response record built once per request by
// the decision engine. It is handed to the audit store and the caller and
// never mutated afterwards.
type VerificationVerdict struct {
	RequestID       string             `json:"request_id"`
	IDNumber        string             `json:"id_number"`
	Verdict         Verdict            `json:"verification"`
	Confidence      float64            `json:"confidence"`
	ImageSimilarity *float64           `json:"image_similarity"`
	ParsedFields    map[string]*string `json:"parsed_fields"`
	Errors          []string           `json:"errors"`
	AppliedRotation int                `json:"applied_rotation,omitempty"`
	Timestamp       time.Time          `json:"timestamp"`
}

// VerificationRequest carries the caller-supplied parameters for one
// verification call. Metadata is opaque JSON passed through into the audit
// record unmodified.
type VerificationRequest struct {
	Image    []byte
	PSM      int
	OEM      int
	Metadata string
}
