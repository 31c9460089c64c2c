package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/botify-ai/botify-backend/pkg/models"
)

// Classify maps a completion failure to its outcome class.
//
// Providers report failures as free text, so classification is
// substring-based on the error message. That can misfire on an unrelated
// error that happens to mention "rate limit"; keeping the matching in one
// place lets it move to structured provider error codes later without
// touching callers.
func Classify(err error) models.Classification {
	if err == nil {
		return models.ClassSuccess
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.ClassUpstreamUnavailable
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit"):
		return models.ClassUpstreamRateLimited
	case strings.Contains(msg, "api key"):
		return models.ClassUpstreamAuthError
	default:
		return models.ClassInternalError
	}
}

// callerMessage returns the short, non-technical message shown to the
// caller for each failure class. Raw upstream text never appears here.
func callerMessage(class models.Classification) string {
	switch class {
	case models.ClassUpstreamRateLimited:
		return "The service is currently experiencing high demand. Please try again in a moment."
	case models.ClassUpstreamAuthError:
		return "Service configuration error. Please try again later."
	case models.ClassUpstreamUnavailable:
		return "The assistant is temporarily unavailable. Please try again later."
	default:
		return "An unexpected error occurred. Please try again."
	}
}
