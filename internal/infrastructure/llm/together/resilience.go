package together

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
	"github.com/vaishh-cloud/tattva-project/internal/infrastructure/resilience"
)

type HTTPStatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "together status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("together status: %s", e.Status)
	}
	return fmt.Sprintf("together status: %s: %s", e.Status, strings.TrimSpace(e.Body))
}

type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return fmt.Sprintf("decode response: %v", e.err) }
func (e *decodeError) Unwrap() error { return e.err }

func classifyAPIError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusRequestTimeout,
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		default:
			return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
		}
	}

	var decodeErr *decodeError
	if errors.As(err, &decodeErr) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}

// mapTransportError folds transport failures into the typed service errors
// the degradation layer keys on.
func mapTransportError(operation string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
		return domain.WrapError(domain.ErrServiceTimeout, operation, err)
	case isDecode(err):
		return domain.WrapError(domain.ErrMalformedResponse, operation, err)
	default:
		return domain.WrapError(domain.ErrServiceError, operation, err)
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isDecode(err error) bool {
	var decodeErr *decodeError
	return errors.As(err, &decodeErr)
}
