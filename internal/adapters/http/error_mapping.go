package httpadapter

import (
	"net/http"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
)

// statusClientClosedRequest distinguishes a client-initiated cancellation
// from server-side failures in logs and metrics.
const statusClientClosedRequest = 499

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrDocumentNotFound), domain.IsKind(err, domain.ErrChatNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrVersionConflict):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrAborted):
		return statusClientClosedRequest
	case domain.IsKind(err, domain.ErrServiceTimeout):
		return http.StatusGatewayTimeout
	case domain.IsKind(err, domain.ErrServiceError), domain.IsKind(err, domain.ErrMalformedResponse):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
