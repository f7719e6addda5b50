package audio

import "github.com/opd-ai/voxlink/metrics"

// DefaultBufferFrames is how many frames each pipeline buffer can hold.
const DefaultBufferFrames = 50

type pipelineOptions struct {
	metrics      *metrics.Metrics
	bufferFrames int
}

// Option configures a Playback or Capture pipeline.
type Option func(*pipelineOptions)

// WithMetrics records pipeline counters into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *pipelineOptions) { o.metrics = m }
}

// WithBufferFrames overrides DefaultBufferFrames.
func WithBufferFrames(n int) Option {
	return func(o *pipelineOptions) {
		if n > 0 {
			o.bufferFrames = n
		}
	}
}

func buildOptions(opts []Option) pipelineOptions {
	o := pipelineOptions{bufferFrames: DefaultBufferFrames}
	for _, opt := range opts {
		opt(&o)
	}
	o.metrics = metrics.OrNoop(o.metrics)
	return o
}
