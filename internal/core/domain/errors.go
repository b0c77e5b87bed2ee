package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrChatNotFound      = errors.New("chat session not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrContentProcessing = errors.New("content processing failed")
	ErrServiceTimeout    = errors.New("external service timeout")
	ErrServiceError      = errors.New("external service error")
	ErrMalformedResponse = errors.New("malformed service response")
	ErrVersionConflict   = errors.New("concurrent modification")
	ErrAborted           = errors.New("request aborted")
	ErrTemporary         = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
