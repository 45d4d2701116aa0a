package llm

import (
	"context"
	"log"
	"time"
)

// Event is one recorded model call.
type Event struct {
	Purpose      string
	Model        string
	LatencyMs    int64
	InputTokens  int
	OutputTokens int
	Success      bool
	ErrorMessage string
	CreatedAt    time.Time
}

// EventRecorder persists model call events.
type EventRecorder interface {
	RecordLLMCall(ctx context.Context, ev Event) error
}

// LoggingProvider is a decorator that records every request as an Event
// and, when verbose, traces prompts and replies to the standard logger.
type LoggingProvider struct {
	inner    Provider
	recorder EventRecorder
	verbose  bool
}

// WithLogging wraps a Provider with event logging. recorder may be nil.
func WithLogging(p Provider, recorder EventRecorder, verbose bool) Provider {
	return &LoggingProvider{inner: p, recorder: recorder, verbose: verbose}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	if l.verbose {
		for _, m := range req.Messages {
			log.Printf("llm %s request [%s]: %s", purpose, m.Role, m.Content)
		}
	}

	resp, err := l.inner.Generate(ctx, req)

	ev := Event{
		Purpose:   purpose,
		Model:     l.inner.ModelID(),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
		CreatedAt: start.UTC(),
	}
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		if l.verbose {
			log.Printf("llm %s response (%d ms): %s", purpose, ev.LatencyMs, resp.Text)
		}
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
		log.Printf("llm %s call failed after %d ms: %v", purpose, ev.LatencyMs, err)
	}

	if l.recorder != nil {
		if logErr := l.recorder.RecordLLMCall(ctx, ev); logErr != nil {
			log.Printf("failed to record llm event: %v", logErr)
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
