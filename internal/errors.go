package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrorKind is the closed taxonomy of client-visible failures.
type ErrorKind int

const (
	// KindOpaque covers responses whose body could not be interpreted.
	KindOpaque ErrorKind = iota
	KindNetworkUnreachable
	KindTimeout
	KindRateLimited
	KindOversizedBatch
	KindUnsupportedContent
	KindTransientServer
	KindBadRequest
	KindProtocolMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetworkUnreachable:
		return "network-unreachable"
	case KindTimeout:
		return "timeout"
	case KindRateLimited:
		return "rate-limited"
	case KindOversizedBatch:
		return "oversized-batch"
	case KindUnsupportedContent:
		return "unsupported-content"
	case KindTransientServer:
		return "transient-server"
	case KindBadRequest:
		return "generic-bad-request"
	case KindProtocolMismatch:
		return "protocol-mismatch"
	default:
		return "opaque"
	}
}

// APIError is a classified backend failure. Status is kept so callers can
// intercept rate limiting (429) without re-parsing the message.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsRateLimited reports whether err is a classified rate-limit failure.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindRateLimited
}

// errorBody is the error shape the backend returns on non-2xx responses.
type errorBody struct {
	Detail string `json:"detail"`
}

var (
	maxAllowedRe = regexp.MustCompile(`maximum allowed: (\d+)`)
	providedRe   = regexp.MustCompile(`provided: (\d+)`)
)

// Classify maps an HTTP status and raw error body to a typed failure with a
// human-readable message. It never returns nil and never panics; a body it
// cannot interpret yields an opaque failure naming only the status.
func Classify(status int, body []byte) *APIError {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		parsed.Detail = ""
	}

	if status == 429 {
		detail := parsed.Detail
		if detail == "" {
			detail = "10 per 1 hour"
		}
		return &APIError{
			Kind:   KindRateLimited,
			Status: status,
			Message: fmt.Sprintf("Rate limit exceeded (%s). This project is just a preview and has limited rates. Please try again later.",
				detail),
		}
	}

	if status == 500 {
		return &APIError{
			Kind:    KindTransientServer,
			Status:  status,
			Message: "The server encountered an error while processing your request. Please try again in a few moments or contact support if the issue persists.",
		}
	}

	if status == 400 && parsed.Detail != "" {
		detail := strings.ToLower(parsed.Detail)

		if strings.Contains(detail, "too many urls") {
			max := "20"
			provided := "many"
			if m := maxAllowedRe.FindStringSubmatch(parsed.Detail); m != nil {
				max = m[1]
			}
			if m := providedRe.FindStringSubmatch(parsed.Detail); m != nil {
				provided = m[1]
			}
			return &APIError{
				Kind:   KindOversizedBatch,
				Status: status,
				Message: fmt.Sprintf("Too many URLs provided (%s). Maximum allowed is %s. Please split your request into smaller batches.",
					provided, max),
			}
		}

		if strings.Contains(detail, "invalid urls") && strings.Contains(detail, "api documentation keywords") {
			return &APIError{
				Kind:    KindUnsupportedContent,
				Status:  status,
				Message: "Invalid URLs detected. Currently we only support URLs containing keywords (api, doc, docs, documentation, reference, guide).\n\nThis ensures the service is used for API documentation only.",
			}
		}

		return &APIError{Kind: KindBadRequest, Status: status, Message: parsed.Detail}
	}

	if parsed.Detail != "" {
		return &APIError{Kind: KindBadRequest, Status: status, Message: parsed.Detail}
	}

	return &APIError{
		Kind:    KindOpaque,
		Status:  status,
		Message: fmt.Sprintf("HTTP error %d", status),
	}
}

func timeoutError(op string) *APIError {
	return &APIError{
		Kind:    KindTimeout,
		Message: fmt.Sprintf("%s timed out. The server may be overloaded or the request too large.", op),
	}
}

func networkError(baseURL string) *APIError {
	return &APIError{
		Kind:    KindNetworkUnreachable,
		Message: fmt.Sprintf("Failed to connect to the backend. Make sure it is reachable at %s.", baseURL),
	}
}

func protocolMismatchError(contentType string) *APIError {
	return &APIError{
		Kind:    KindProtocolMismatch,
		Message: fmt.Sprintf("Expected streaming response but got: %s", contentType),
	}
}
