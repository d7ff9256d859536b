package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-id-verifier/internal/config"
	apperrors "go-id-verifier/internal/errors"
	"go-id-verifier/internal/logger"
	"go-id-verifier/internal/verify"
	"go-id-verifier/pkg/models"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MetricsSnapshot returns point-in-time service counters for the health
// endpoint.
type MetricsSnapshot func() map[string]interface{}

// NewHandler builds the HTTP router over the verification service.
// modelLoaded reports whether the embedding backbone initialized at startup;
// metrics may be nil when no collector is subscribed.
func NewHandler(service *verify.Service, cfg *config.Config, modelLoaded bool, metrics MetricsSnapshot) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck(modelLoaded, metrics))
	r.POST("/api/verify", verifyDocument(service, cfg))

	return r
}

func verifyDocument(service *verify.Service, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing verification request")

		req, err := parseVerificationRequest(c, cfg)
		if err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"ip": c.ClientIP(),
			}).Error("Invalid request format")
			respondError(c, apperrors.GetStatusCode(err), "invalid request", err)
			return
		}

		verdict, err := service.Verify(ctx, req)
		if err != nil {
			statusCode := determineStatusCode(err)
			logger.WithError(err).WithFields(logrus.Fields{
				"ip":          c.ClientIP(),
				"status_code": statusCode,
			}).Error("Verification request failed")
			respondError(c, statusCode, "verification failed", err)
			return
		}

		duration := time.Since(startTime)
		logger.WithFields(logrus.Fields{
			"request_id":         verdict.RequestID,
			"verdict":            verdict.Verdict,
			"confidence":         verdict.Confidence,
			"processing_time_ms": duration.Milliseconds(),
		}).Info("Verification request completed")

		c.JSON(http.StatusOK, verdict)
	}
}

// parseVerificationRequest reads the multipart form: a required file part plus
// optional psm, oem, and metadata fields.
func parseVerificationRequest(c *gin.Context, cfg *config.Config) (models.VerificationRequest, error) {
	var req models.VerificationRequest

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		return req, apperrors.NewValidationError("missing file upload", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return req, apperrors.NewValidationError("unreadable file upload", err)
	}
	if len(data) == 0 {
		return req, apperrors.NewValidationError("empty file upload", nil)
	}
	req.Image = data

	req.PSM = cfg.DefaultPSM
	if raw := c.PostForm("psm"); raw != "" {
		psm, err := strconv.Atoi(raw)
		if err != nil || psm < 0 || psm > 13 {
			return req, apperrors.NewValidationError("psm must be an integer between 0 and 13", err)
		}
		req.PSM = psm
	}

	req.OEM = cfg.DefaultOEM
	if raw := c.PostForm("oem"); raw != "" {
		oem, err := strconv.Atoi(raw)
		if err != nil || oem < 0 || oem > 3 {
			return req, apperrors.NewValidationError("oem must be an integer between 0 and 3", err)
		}
		req.OEM = oem
	}

	if raw := c.PostForm("metadata"); raw != "" {
		if !json.Valid([]byte(raw)) {
			return req, apperrors.NewValidationError("metadata must be valid JSON", nil)
		}
		req.Metadata = raw
	}

	return req, nil
}

func healthCheck(modelLoaded bool, metrics MetricsSnapshot) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload := gin.H{
			"status":       "available",
			"version":      "1.0.0",
			"model_loaded": modelLoaded,
			"time":         time.Now().UTC().Format(time.RFC3339),
		}
		if metrics != nil {
			payload["metrics"] = metrics()
		}
		c.JSON(http.StatusOK, payload)
	}
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
