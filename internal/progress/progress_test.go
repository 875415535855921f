package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingSink struct {
	events []Event
}

func (r *recordingSink) Consume(evt Event) {
	r.events = append(r.events, evt)
}

func TestFanoutDeliversInOrder(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	fan := NewFanout(a, b)

	fan.Emit(Event{RunID: "r1", Stage: StageRunStart})
	fan.Emit(Event{RunID: "r1", Stage: StagePageDone, Page: 1})

	require.Len(t, a.events, 2)
	require.Len(t, b.events, 2)
	assert.Equal(t, StageRunStart, a.events[0].Stage)
	assert.Equal(t, StagePageDone, a.events[1].Stage)
}

func TestLogSinkFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := NewLogSink(zap.New(core))

	sink.Consume(Event{
		RunID:   "r1",
		TS:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Stage:   StageArticleNew,
		Page:    2,
		URL:     "https://example.com/a/",
		Title:   "Article A",
		Version: 1,
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "r1", fields["run_id"])
	assert.Equal(t, string(StageArticleNew), fields["stage"])
	assert.Equal(t, int64(2), fields["page"])
	assert.Equal(t, "https://example.com/a/", fields["url"])
	assert.Equal(t, int64(1), fields["version"])
}

func TestLogSinkOmitsZeroFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := NewLogSink(zap.New(core))

	sink.Consume(Event{RunID: "r1", Stage: StageRunDone})

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.NotContains(t, fields, "page")
	assert.NotContains(t, fields, "url")
	assert.NotContains(t, fields, "version")
}
