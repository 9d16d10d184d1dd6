// Package research defines the query and result schema exchanged with the
// upstream research service.
package research

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/synapseflow/gateway/pkg/errors"
)

// Query is a research submission.
type Query struct {
	Query        string   `json:"query" yaml:"query"`
	Domains      []string `json:"domains,omitempty" yaml:"domains,omitempty"`
	CrossDomain  bool     `json:"crossDomain,omitempty" yaml:"crossDomain,omitempty"`
	SelfLearning bool     `json:"selfLearning,omitempty" yaml:"selfLearning,omitempty"`
	Limit        int      `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// Validate checks the structural requirements of a query.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return errors.NewValidationError("query", q.Query, "research query cannot be empty")
	}
	if q.Limit < 0 {
		return errors.NewValidationError("limit", q.Limit, "must not be negative")
	}
	return nil
}

// Paper is one item of a research result. A decoded Paper re-encodes as
// the exact object it was decoded from, keys it does not declare included.
type Paper struct {
	ID        string   `json:"id" yaml:"id"`
	Title     string   `json:"title" yaml:"title"`
	Authors   []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Abstract  string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Year      int      `json:"year,omitempty" yaml:"year,omitempty"`
	Citations int      `json:"citations,omitempty" yaml:"citations,omitempty"`
	Domains   []string `json:"domains,omitempty" yaml:"domains,omitempty"`
	URL       string   `json:"url,omitempty" yaml:"url,omitempty"`

	raw json.RawMessage
}

func (p *Paper) UnmarshalJSON(b []byte) error {
	type plain Paper
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = Paper(v)
	p.raw = compact(b)
	return nil
}

func (p Paper) MarshalJSON() ([]byte, error) {
	if p.raw != nil {
		return p.raw, nil
	}
	type plain Paper
	return json.Marshal(plain(p))
}

// Result is the upstream answer to a Query.
//
// The typed fields exist for validation and for the session's summary. A
// decoded Result re-encodes as the upstream document it came from, so keys
// the gateway does not model (citationGraph, per-paper scores) reach the
// listeners unmodified. Latency and CrossDomainInsights are raw JSON since
// the upstream reports them in more than one shape.
type Result struct {
	Papers              []Paper         `json:"papers"`
	TotalResults        int             `json:"totalResults"`
	CrossDomainInsights json.RawMessage `json:"crossDomainInsights,omitempty"`
	Hypotheses          []string        `json:"hypotheses,omitempty"`
	Latency             json.RawMessage `json:"latency,omitempty"`
	AgentsUsed          []string        `json:"agentsUsed"`

	raw json.RawMessage
}

func (r *Result) UnmarshalJSON(b []byte) error {
	type plain Result
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*r = Result(v)
	r.raw = compact(b)
	return nil
}

func (r Result) MarshalJSON() ([]byte, error) {
	if r.raw != nil {
		return r.raw, nil
	}
	type plain Result
	return json.Marshal(plain(r))
}

// compact copies b without insignificant whitespace.
func compact(b []byte) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return append(json.RawMessage(nil), b...)
	}
	return buf.Bytes()
}

// Validate reports whether the result matches the expected schema.
func (r *Result) Validate() error {
	if r == nil {
		return errors.ErrMalformedResult
	}
	if r.Papers == nil {
		return errors.ErrMalformedResult
	}
	return nil
}

// Top returns at most n papers from the head of the result.
func (r *Result) Top(n int) []Paper {
	if n < 0 || n >= len(r.Papers) {
		return r.Papers
	}
	return r.Papers[:n]
}

// Stats is the upstream's aggregate statistics payload, forwarded as-is.
type Stats = json.RawMessage

// Health is the upstream liveness answer, forwarded as-is.
type Health map[string]any

// Status returns the reported status field, or "" when absent.
func (h Health) Status() string {
	s, _ := h["status"].(string)
	return s
}
