package progress

import (
	"go.uber.org/zap"

	"github.com/hydrocare/harvester/internal/metrics"
)

// LogSink emits structured logs for each progress event.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs the event using structured fields.
func (s *LogSink) Consume(evt Event) {
	fields := []zap.Field{
		zap.String("run_id", evt.RunID),
		zap.String("stage", string(evt.Stage)),
	}
	if evt.Page > 0 {
		fields = append(fields, zap.Int("page", evt.Page))
	}
	if evt.URL != "" {
		fields = append(fields, zap.String("url", evt.URL))
	}
	if evt.Title != "" {
		fields = append(fields, zap.String("title", evt.Title))
	}
	if evt.Version > 0 {
		fields = append(fields, zap.Int("version", evt.Version))
	}
	if evt.Note != "" {
		fields = append(fields, zap.String("note", evt.Note))
	}
	s.logger.Info("progress", fields...)
}

// MetricsSink translates progress events into Prometheus counters.
type MetricsSink struct{}

// NewMetricsSink initializes the collectors and returns the sink.
func NewMetricsSink() *MetricsSink {
	metrics.Init()
	return &MetricsSink{}
}

// Consume updates counters for the event's stage.
func (s *MetricsSink) Consume(evt Event) {
	switch evt.Stage {
	case StagePageDone:
		metrics.ObserveListingPage()
	case StageArticleNew:
		metrics.ObserveArticle(metrics.ResultNew)
	case StageArticleUpdated:
		metrics.ObserveArticle(metrics.ResultUpdated)
	case StageArticleSkipped:
		metrics.ObserveArticle(metrics.ResultSkipped)
	case StageArticleFailed:
		metrics.ObserveArticle(metrics.ResultFailed)
	}
}
