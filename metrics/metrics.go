// Package metrics holds the OpenTelemetry instruments recorded by the voice
// client. Instruments come from whatever MeterProvider is passed to
// NewMetrics; without one, Default uses the global provider, which is a no-op
// until InitProvider installs the Prometheus bridge.
package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/opd-ai/voxlink"

// Metrics holds every instrument. Safe for concurrent use.
type Metrics struct {
	// ControlFramesRead counts frames read from the control channel.
	// Attribute: attribute.String("type", ...)
	ControlFramesRead metric.Int64Counter

	// ControlFramesWritten counts frames written to the control channel.
	// Attribute: attribute.String("type", ...)
	ControlFramesWritten metric.Int64Counter

	// VoiceFramesSent counts outbound voice datagrams.
	VoiceFramesSent metric.Int64Counter

	// VoiceFramesReceived counts inbound voice datagrams that parsed.
	VoiceFramesReceived metric.Int64Counter

	// ParseFailures counts frames that could not be interpreted.
	// Attribute: attribute.String("kind", "voice"|"control")
	ParseFailures metric.Int64Counter

	// PlaybackDrops counts packets dropped because the playback buffer was full.
	PlaybackDrops metric.Int64Counter

	// CaptureOverflows counts capture quanta rejected for lack of room.
	CaptureOverflows metric.Int64Counter

	// EncodedFrames counts frames produced by the capture encoder.
	EncodedFrames metric.Int64Counter

	// EncodedBytes records the size of each encoded frame.
	EncodedBytes metric.Int64Histogram

	// StateTransitions counts connection state changes.
	// Attribute: attribute.String("state", ...)
	StateTransitions metric.Int64Counter

	// PingRoundTrip records the server ping echo latency in seconds.
	PingRoundTrip metric.Float64Histogram
}

var frameSizeBuckets = []float64{16, 32, 64, 96, 128, 192, 256, 512, 1024, 4000}

var latencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// NewMetrics creates every instrument from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ControlFramesRead, err = m.Int64Counter("voxlink.control.frames_read",
		metric.WithDescription("Control frames read, by type."),
	); err != nil {
		return nil, err
	}
	if met.ControlFramesWritten, err = m.Int64Counter("voxlink.control.frames_written",
		metric.WithDescription("Control frames written, by type."),
	); err != nil {
		return nil, err
	}
	if met.VoiceFramesSent, err = m.Int64Counter("voxlink.voice.frames_sent",
		metric.WithDescription("Voice datagrams sent."),
	); err != nil {
		return nil, err
	}
	if met.VoiceFramesReceived, err = m.Int64Counter("voxlink.voice.frames_received",
		metric.WithDescription("Voice datagrams received."),
	); err != nil {
		return nil, err
	}
	if met.ParseFailures, err = m.Int64Counter("voxlink.parse_failures",
		metric.WithDescription("Frames that failed to parse, by kind."),
	); err != nil {
		return nil, err
	}
	if met.PlaybackDrops, err = m.Int64Counter("voxlink.audio.playback_drops",
		metric.WithDescription("Packets dropped because the playback buffer was full."),
	); err != nil {
		return nil, err
	}
	if met.CaptureOverflows, err = m.Int64Counter("voxlink.audio.capture_overflows",
		metric.WithDescription("Capture quanta rejected because the send buffer was full."),
	); err != nil {
		return nil, err
	}
	if met.EncodedFrames, err = m.Int64Counter("voxlink.audio.encoded_frames",
		metric.WithDescription("Frames produced by the capture encoder."),
	); err != nil {
		return nil, err
	}
	if met.EncodedBytes, err = m.Int64Histogram("voxlink.audio.encoded_bytes",
		metric.WithDescription("Size of encoded frames."),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(frameSizeBuckets...),
	); err != nil {
		return nil, err
	}
	if met.StateTransitions, err = m.Int64Counter("voxlink.connection.state_transitions",
		metric.WithDescription("Connection state changes, by new state."),
	); err != nil {
		return nil, err
	}
	if met.PingRoundTrip, err = m.Float64Histogram("voxlink.connection.ping_rtt",
		metric.WithDescription("Round trip of control channel pings."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once

	noopMetrics     *Metrics
	noopMetricsOnce sync.Once
)

// Default returns the package-level instance built from otel.GetMeterProvider.
// Callers that install a provider must do so before the first call.
func Default() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("metrics: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Noop returns instruments that record nothing.
func Noop() *Metrics {
	noopMetricsOnce.Do(func() {
		var err error
		noopMetrics, err = NewMetrics(noop.NewMeterProvider())
		if err != nil {
			panic("metrics: failed to create noop metrics: " + err.Error())
		}
	})
	return noopMetrics
}

// OrNoop returns m, or the no-op instance when m is nil.
func OrNoop(m *Metrics) *Metrics {
	if m == nil {
		return Noop()
	}
	return m
}

// RecordControlRead increments ControlFramesRead for a frame type.
func (m *Metrics) RecordControlRead(ctx context.Context, frameType string) {
	m.ControlFramesRead.Add(ctx, 1, metric.WithAttributes(attribute.String("type", frameType)))
}

// RecordControlWrite increments ControlFramesWritten for a frame type.
func (m *Metrics) RecordControlWrite(ctx context.Context, frameType string) {
	m.ControlFramesWritten.Add(ctx, 1, metric.WithAttributes(attribute.String("type", frameType)))
}

// RecordParseFailure increments ParseFailures for a frame kind.
func (m *Metrics) RecordParseFailure(ctx context.Context, kind string) {
	m.ParseFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordState increments StateTransitions for the state entered.
func (m *Metrics) RecordState(ctx context.Context, state string) {
	m.StateTransitions.Add(ctx, 1, metric.WithAttributes(attribute.String("state", state)))
}

// RecordEncoded records one encoded frame of n bytes.
func (m *Metrics) RecordEncoded(ctx context.Context, n int) {
	m.EncodedFrames.Add(ctx, 1)
	m.EncodedBytes.Record(ctx, int64(n))
}
