package upstream

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/synapseflow/gateway/pkg/errors"
)

// maxErrorBody caps how much of a failure body is quoted in an error.
const maxErrorBody = 512

// envelope is the backend's response wrapper.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// decodeResponse reads resp and decodes it into target, unwrapping the
// data envelope when enveloped is set.
func decodeResponse(ctx context.Context, resp *http.Response, path string, timeout time.Duration, target any, enveloped bool) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return classify(ctx, path, timeout, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.NewUpstreamError(path, resp.StatusCode, failureMessage(resp.StatusCode, body))
	}

	payload := body
	if enveloped {
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return malformed(path, resp.StatusCode, err)
		}
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return malformed(path, resp.StatusCode, stderrors.New("response has no data field"))
		}
		payload = env.Data
	}

	if err := json.Unmarshal(payload, target); err != nil {
		return malformed(path, resp.StatusCode, err)
	}
	return nil
}

func malformed(path string, status int, err error) error {
	return &errors.UpstreamError{
		Endpoint:   path,
		StatusCode: status,
		Message:    err.Error(),
		Err:        errors.ErrMalformedResult,
	}
}

// failureMessage extracts a human message from a failure body.
func failureMessage(status int, body []byte) string {
	var parsed struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		var s string
		if json.Unmarshal(parsed.Error, &s) == nil && s != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(parsed.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return http.StatusText(status)
	}
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	return text
}

// classify converts a transport-level failure into a typed upstream error.
func classify(ctx context.Context, path string, timeout time.Duration, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.NewUpstreamTimeoutError(path, timeout.String(), err)
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.NewUpstreamTimeoutError(path, timeout.String(), err)
	}
	return errors.NewUpstreamUnavailableError(path, err)
}
