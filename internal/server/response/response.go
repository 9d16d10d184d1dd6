// Package response writes the gateway's HTTP responses. Successful bodies
// are written as-is; failures use a {data, error} envelope with a stable
// error code.
package response

import (
	"encoding/json"
	stderrors "errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/synapseflow/gateway/pkg/errors"
)

// Response is the failure envelope. Data is always null.
type Response struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
}

// Error carries a machine-readable code and a human message.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Fail builds a failure envelope.
func Fail(code, message, details string) Response {
	return Response{Error: &Error{Code: code, Message: message, Details: details}}
}

// JSON writes v with status. Encoding errors are dropped: the status line
// is already on the wire.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with 200.
func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

func BadRequest(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusBadRequest, Fail("BAD_REQUEST", message, details))
}

func NotFound(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusNotFound, Fail("NOT_FOUND", message, details))
}

func MethodNotAllowed(w http.ResponseWriter, method string) {
	JSON(w, http.StatusMethodNotAllowed, Fail("METHOD_NOT_ALLOWED", "Method not allowed",
		"Method "+method+" is not supported for this endpoint"))
}

// Unauthorized writes a 401 naming the header that carries the API key.
func Unauthorized(w http.ResponseWriter, header string) {
	JSON(w, http.StatusUnauthorized, Fail("UNAUTHORIZED", "Invalid or missing API key",
		"Provide a valid API key in the "+header+" header"))
}

// TooManyRequests writes a 429 with Retry-After rounded up to whole seconds.
func TooManyRequests(w http.ResponseWriter, retryAfter time.Duration) {
	secs := int(math.Ceil(retryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	JSON(w, http.StatusTooManyRequests, Fail("RATE_LIMITED", "Rate limit exceeded",
		"Too many requests. Please try again later."))
}

// InternalError writes a 500. err is never exposed to the client.
func InternalError(w http.ResponseWriter, _ error) {
	JSON(w, http.StatusInternalServerError, Fail("INTERNAL_ERROR", "Internal server error",
		"An unexpected error occurred"))
}

func ServiceUnavailable(w http.ResponseWriter, message string) {
	JSON(w, http.StatusServiceUnavailable, Fail("SERVICE_UNAVAILABLE", "Service unavailable", message))
}

// ErrorFromType maps the gateway's typed errors to status codes:
// validation 400, upstream timeout 504, unreachable upstream 502, upstream
// 4xx passed through, other upstream failures 502, closed hub 503.
func ErrorFromType(w http.ResponseWriter, err error) {
	var (
		validation  *errors.ValidationError
		timeout     *errors.UpstreamTimeoutError
		unavailable *errors.UpstreamUnavailableError
		upstream    *errors.UpstreamError
	)

	switch {
	case stderrors.As(err, &validation):
		BadRequest(w, validation.Error(), "")
	case stderrors.As(err, &timeout):
		JSON(w, http.StatusGatewayTimeout, Fail("UPSTREAM_TIMEOUT", "Upstream service timed out", timeout.Error()))
	case stderrors.As(err, &unavailable):
		JSON(w, http.StatusBadGateway, Fail("UPSTREAM_UNAVAILABLE", "Upstream service unavailable", unavailable.Error()))
	case stderrors.As(err, &upstream):
		status := http.StatusBadGateway
		if upstream.StatusCode >= 400 && upstream.StatusCode < 500 {
			status = upstream.StatusCode
		}
		JSON(w, status, Fail("UPSTREAM_ERROR", upstream.Message, upstream.Error()))
	case stderrors.Is(err, errors.ErrHubClosed):
		ServiceUnavailable(w, "Server is shutting down")
	default:
		InternalError(w, err)
	}
}
