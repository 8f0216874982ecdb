package testutil

import (
	"net/http"

	id "sendgate/pkg/domain"
	"sendgate/pkg/requestcontext"
)

// WithAccountID adds a sending account to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithAccountID(req *http.Request, accountID string) *http.Request {
	parsed, err := id.ParseAccountID(accountID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithAccountID(req.Context(), parsed))
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
