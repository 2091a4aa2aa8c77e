package rst

import (
	"fmt"
	"sync"
)

// Warning is a single diagnostic raised by the extractor, parser, or
// link graph builder. None of the three ever abort processing because of
// a Warning; they drop the offending fragment and continue.
type Warning struct {
	Source  string // file the warning originates from, if known
	Message string
}

func (w Warning) String() string {
	if w.Source == "" {
		return w.Message
	}
	return fmt.Sprintf("%s: %s", w.Source, w.Message)
}

// Sink collects warnings from across a run. It is safe for concurrent use
// so that parallel ingest workers (see internal/ingest) can all report
// into the same sink.
type Sink struct {
	mu       sync.Mutex
	warnings []Warning
}

// NewSink returns an empty Sink.
func NewSink() *Sink {
	return &Sink{}
}

// Warn records a warning. A nil Sink silently discards the warning, so
// call sites that don't care about diagnostics can pass nil.
func (s *Sink) Warn(source, format string, args ...any) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, Warning{Source: source, Message: fmt.Sprintf(format, args...)})
}

// Warnings returns a copy of everything recorded so far.
func (s *Sink) Warnings() []Warning {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}
