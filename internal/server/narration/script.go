// Package narration emits a scripted sequence of progress events while a
// research submission runs upstream.
//
// The script is simulated: its stages are fixed markers paced by a timer,
// not telemetry from the upstream service. The outcome (results or error)
// is real and is delivered after the last stage.
package narration

import (
	"time"

	"github.com/synapseflow/gateway/internal/server/events"
	"github.com/synapseflow/gateway/pkg/constants"
	"github.com/synapseflow/gateway/pkg/research"
)

// Submission is one accepted research request.
type Submission struct {
	RequestID   string
	Query       research.Query
	SubmittedAt time.Time
}

// Stage is one scripted event. Payload builds the event data.
type Stage struct {
	Type    events.EventType
	Payload func(Submission) any
}

// Script is a named, paced list of stages.
type Script struct {
	Name   string
	Pace   time.Duration
	Stages []Stage
}

// SimulatedName names the built-in script.
const SimulatedName = "simulated"

// static returns a payload builder for fixed data.
func static(data map[string]any) func(Submission) any {
	return func(Submission) any { return data }
}

// Simulated returns the built-in research narration. A non-positive pace
// uses the default.
func Simulated(pace time.Duration) Script {
	if pace <= 0 {
		pace = constants.NarrationPace
	}
	return Script{
		Name: SimulatedName,
		Pace: pace,
		Stages: []Stage{
			{Type: events.ResearchStarted, Payload: func(s Submission) any {
				return map[string]any{
					"query":     s.Query,
					"timestamp": s.SubmittedAt.UTC().Format(time.RFC3339Nano),
					"requestId": s.RequestID,
				}
			}},
			{Type: events.AgentStatus, Payload: static(map[string]any{"agent": "PaperScraperAgent", "status": "running"})},
			{Type: events.AgentStatus, Payload: static(map[string]any{"agent": "CrossDomainAgent", "status": "running"})},
			{Type: events.PapersFound, Payload: static(map[string]any{"count": 1000})},
			{Type: events.Processing, Payload: static(map[string]any{"progress": 25, "message": "Processing papers with ruv-swarm"})},
			{Type: events.Processing, Payload: static(map[string]any{"progress": 50, "message": "Building citation graph"})},
			{Type: events.Processing, Payload: static(map[string]any{"progress": 75, "message": "Generating hypotheses"})},
			{Type: events.ResearchComplete, Payload: static(map[string]any{"success": true, "latency": "342ms"})},
		},
	}
}
