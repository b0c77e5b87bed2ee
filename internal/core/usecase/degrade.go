package usecase

import (
	"fmt"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
)

// The generative and image services never fail a request: each failure mode
// maps to a fixed user-facing string so callers always get usable text back.

func completionFallbackMessage(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrServiceTimeout):
		return "Request to AI service timed out. Please try again later."
	case domain.IsKind(err, domain.ErrMalformedResponse):
		return "Received an invalid response from the AI service."
	default:
		return fmt.Sprintf("Failed to connect to AI service: %v", err)
	}
}

func visionFallbackMessage(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrServiceTimeout):
		return "Image summarization is currently unavailable due to a timeout. Please try again later."
	case domain.IsKind(err, domain.ErrMalformedResponse):
		return "Received an invalid response from the image summarization service."
	default:
		return "Failed to summarize the image due to an API error. Please check the API endpoint or try again later."
	}
}
