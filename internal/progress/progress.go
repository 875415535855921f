// Package progress defines the milestone events emitted during a harvest run.
package progress

import (
	"time"
)

// Stage denotes the type of milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageRunStart       Stage = "RUN_START"
	StagePageDone       Stage = "PAGE_DONE"
	StageArticleNew     Stage = "ARTICLE_NEW"
	StageArticleUpdated Stage = "ARTICLE_UPDATED"
	StageArticleSkipped Stage = "ARTICLE_SKIPPED"
	StageArticleFailed  Stage = "ARTICLE_FAILED"
	StageRunDone        Stage = "RUN_DONE"
)

// Event captures a single milestone of harvest progress.
type Event struct {
	// RunID uniquely identifies one harvest run.
	RunID string
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which milestone occurred.
	Stage Stage
	// Page is the 1-based listing page number, when applicable.
	Page int
	// URL is the article or listing URL, when applicable.
	URL string
	// Title is the article title, when known.
	Title string
	// Version is the article version written, for new/updated events.
	Version int
	// Note lets emitters attach low-volume context (e.g. error text).
	Note string
}

// Emitter publishes individual events; Fanout satisfies this interface so the
// engine can remain agnostic about where events end up.
type Emitter interface {
	Emit(evt Event)
}

// Sink consumes progress events. Implementations must tolerate repeated calls.
type Sink interface {
	Consume(evt Event)
}

// Fanout delivers each event to every registered sink, in order.
type Fanout struct {
	sinks []Sink
}

// NewFanout builds a Fanout over the given sinks.
func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

// Emit dispatches the event to all sinks.
func (f *Fanout) Emit(evt Event) {
	for _, s := range f.sinks {
		s.Consume(evt)
	}
}
