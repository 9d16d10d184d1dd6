// Package session implements the interactive binding of the gateway: a
// single line-oriented command loop over a reader/writer pair, answering
// each command with compact JSON objects, one per line.
package session

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/synapseflow/gateway/internal/gateway"
	"github.com/synapseflow/gateway/pkg/constants"
	"github.com/synapseflow/gateway/pkg/errors"
	"github.com/synapseflow/gateway/pkg/logging"
	"github.com/synapseflow/gateway/pkg/research"
)

// Response types.
const (
	TypeWelcome          = "welcome"
	TypeResearchStarted  = "research-started"
	TypeResearchComplete = "research-complete"
	TypePapers           = "papers"
	TypeHypotheses       = "hypotheses"
	TypeTools            = "tools"
	TypeStats            = "stats"
	TypeHelp             = "help"
	TypeError            = "error"
	TypeShutdown         = "shutdown"
)

const (
	welcomeMessage  = "SynapseFlow MCP Server (stdio mode)"
	shutdownMessage = "SynapseFlow MCP Server shutting down..."
	researchUsage   = "Please provide a research query. Usage: research <query>"
)

// Commands lists the verbs announced in the welcome message.
var Commands = []string{"research <query>", "tools", "stats", "help", "exit"}

// Response is one line of session output.
type Response struct {
	Type      string `json:"type"`
	Message   string `json:"message,omitempty"`
	Version   string `json:"version,omitempty"`
	Tools     int    `json:"tools,omitempty"`
	Commands  any    `json:"commands,omitempty"`
	Examples  any    `json:"examples,omitempty"`
	Query     string `json:"query,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Count     *int   `json:"count,omitempty"`
	Error     string `json:"error,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// Session is the interactive command loop. Only one Run may be active at a
// time.
type Session struct {
	caps    gateway.Capabilities
	in      io.Reader
	out     io.Writer
	logger  *zerolog.Logger
	version string
	now     func() time.Time

	running atomic.Bool

	mu  sync.Mutex
	enc *json.Encoder
}

// Option configures a Session.
type Option func(*Session)

// WithVersion overrides the version announced in the welcome message.
func WithVersion(v string) Option {
	return func(s *Session) {
		s.version = v
	}
}

// New creates a session reading commands from in and writing responses to out.
func New(caps gateway.Capabilities, in io.Reader, out io.Writer, logger *zerolog.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)

	s := &Session{
		caps:    caps,
		in:      in,
		out:     out,
		logger:  logging.Component(logger, "session"),
		version: constants.Version,
		now:     time.Now,
		enc:     enc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run emits the welcome message and serves commands until exit, end of
// input or ctx cancellation. It returns nil on every clean shutdown. A
// second concurrent Run logs a warning and returns immediately.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn().Msg("Interactive session already running")
		return nil
	}
	defer s.running.Store(false)

	s.logger.Info().Msg("Starting interactive session")

	s.emit(Response{
		Type:     TypeWelcome,
		Message:  welcomeMessage,
		Version:  s.version,
		Tools:    s.caps.Catalog().Count(),
		Commands: Commands,
	})

	done := make(chan struct{})
	defer close(done)
	lines, readErr := s.read(done)

	for {
		select {
		case <-ctx.Done():
			s.shutdown("context cancelled")
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					s.logger.Warn().Err(err).Msg("Interactive input failed")
				}
				s.shutdown("end of input")
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if exit := s.dispatch(ctx, line); exit {
				s.shutdown("exit command")
				return nil
			}
		}
	}
}

// Running reports whether a Run is active.
func (s *Session) Running() bool {
	return s.running.Load()
}

// read scans input lines on a goroutine so ctx cancellation is observed
// between commands. The error channel yields the scanner error after lines
// is closed.
func (s *Session) read(done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		scanner.Buffer(make([]byte, 0, 64*1024), constants.MaxSessionLineSize)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				errc <- nil
				return
			}
		}
		errc <- scanner.Err()
	}()

	return lines, errc
}

// splitCommand separates the lower-cased verb from its arguments at the
// first run of whitespace of any kind.
func splitCommand(line string) (verb, args string) {
	line = strings.TrimSpace(line)
	verb, args = line, ""
	if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
		verb, args = line[:i], strings.TrimSpace(line[i:])
	}
	return strings.ToLower(verb), args
}

// dispatch runs one command to completion. It reports whether the session
// should end.
func (s *Session) dispatch(ctx context.Context, line string) bool {
	verb, args := splitCommand(line)

	s.logger.Debug().Str("command", verb).Msg("Interactive command")

	switch verb {
	case "research":
		s.handleResearch(ctx, args)
	case "tools":
		s.handleTools()
	case "stats":
		s.handleStats(ctx)
	case "help":
		s.handleHelp()
	case "exit", "quit":
		return true
	default:
		err := errors.NewValidationError("command", verb, "unknown command")
		s.logger.Debug().Err(err).Msg("Rejected interactive command")
		s.emit(Response{
			Type:    TypeError,
			Message: "Unknown command: " + verb + ". Type 'help' for available commands.",
		})
	}
	return false
}

func (s *Session) handleResearch(ctx context.Context, text string) {
	q := research.Query{Query: text}
	if err := q.Validate(); err != nil {
		s.emit(Response{Type: TypeError, Message: researchUsage})
		return
	}

	s.emit(Response{
		Type:      TypeResearchStarted,
		Query:     text,
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
	})

	result, err := s.caps.Submit(ctx, q)
	if err != nil {
		s.logger.Error().Err(err).Str("query", text).Msg("Research failed")
		s.emit(Response{Type: TypeError, Message: "Research failed: " + err.Error()})
		return
	}

	s.emit(Response{
		Type: TypeResearchComplete,
		Data: map[string]any{
			"papers":       len(result.Papers),
			"totalResults": result.TotalResults,
			"latency":      result.Latency,
			"agentsUsed":   result.AgentsUsed,
		},
	})
	s.emit(Response{Type: TypePapers, Data: result.Top(constants.SessionPaperLimit)})
	if len(result.Hypotheses) > 0 {
		s.emit(Response{Type: TypeHypotheses, Data: result.Hypotheses})
	}
}

func (s *Session) handleTools() {
	list := s.caps.Catalog().Tools()
	count := len(list)
	s.emit(Response{Type: TypeTools, Count: &count, Data: list})
}

func (s *Session) handleStats(ctx context.Context) {
	stats, err := s.caps.Stats(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to get stats")
		s.emit(Response{Type: TypeError, Message: "Failed to get stats", Error: err.Error()})
		return
	}
	s.emit(Response{Type: TypeStats, Data: stats})
}

type helpCommand struct {
	Cmd         string `json:"cmd"`
	Description string `json:"description"`
}

var helpCommands = []helpCommand{
	{Cmd: "research <query>", Description: "Perform research with AI agents"},
	{Cmd: "tools", Description: "List available MCP tools"},
	{Cmd: "stats", Description: "Get system statistics"},
	{Cmd: "help", Description: "Show this help message"},
	{Cmd: "exit", Description: "Exit the MCP server"},
}

var helpExamples = []string{
	"research transformer applications in biology",
	"research quantum computing in cryptography",
	"tools",
	"stats",
}

func (s *Session) handleHelp() {
	s.emit(Response{Type: TypeHelp, Commands: helpCommands, Examples: helpExamples})
}

func (s *Session) shutdown(reason string) {
	s.logger.Info().Str("reason", reason).Msg("Shutting down interactive session")
	s.emit(Response{Type: TypeShutdown, Message: shutdownMessage})
}

// emit writes r as one compact JSON line.
func (s *Session) emit(r Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(r); err != nil {
		s.logger.Error().Err(err).Str("type", r.Type).Msg("Failed to write session response")
	}
}
