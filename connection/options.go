package connection

import (
	"runtime"
	"time"

	"github.com/opd-ai/voxlink/audio"
	"github.com/opd-ai/voxlink/control"
	"github.com/opd-ai/voxlink/metrics"
)

// DefaultPingInterval is how often a keep-alive is sent once connected.
const DefaultPingInterval = 10 * time.Second

// Params identifies the server and the credentials presented to it.
type Params struct {
	Host     string
	Port     uint16 // zero selects transport.DefaultPort
	Username string
	Password string
	Tokens   []string
}

// ClientInfo is announced to the server in the Version message.
type ClientInfo struct {
	Major, Minor, Patch uint8
	Release             string
	OS                  string
	OSVersion           string
}

// DefaultClientInfo announces protocol version 1.2.4, the last version whose
// audio travels in the legacy datagram format.
func DefaultClientInfo() ClientInfo {
	return ClientInfo{
		Major:     1,
		Minor:     2,
		Patch:     4,
		Release:   "voxlink",
		OS:        runtime.GOOS,
		OSVersion: runtime.GOARCH,
	}
}

func (ci ClientInfo) message() *control.Version {
	return &control.Version{
		Version:   control.EncodeVersion(ci.Major, ci.Minor, ci.Patch),
		Release:   ci.Release,
		OS:        ci.OS,
		OSVersion: ci.OSVersion,
		VersionV2: control.EncodeVersionV2(uint16(ci.Major), uint16(ci.Minor), uint16(ci.Patch)),
	}
}

type options struct {
	pingInterval  time.Duration
	frameDuration time.Duration
	codec         control.Codec
	metrics       *metrics.Metrics
	client        ClientInfo
}

func defaultOptions() options {
	return options{
		pingInterval:  DefaultPingInterval,
		frameDuration: audio.Frame20ms,
		codec:         control.WireCodec{},
		client:        DefaultClientInfo(),
	}
}

// Option configures a Connection.
type Option func(*options)

// WithPingInterval sets the keep-alive period. Non-positive values are ignored.
func WithPingInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pingInterval = d
		}
	}
}

// WithFrameDuration sets the duration of each outbound voice frame, which
// determines how far the frame sequence advances per SendVoice.
func WithFrameDuration(d time.Duration) Option {
	return func(o *options) { o.frameDuration = d }
}

// WithCodec replaces the control message codec.
func WithCodec(c control.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithMetrics records connection activity on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClientInfo overrides the version announced to the server.
func WithClientInfo(ci ClientInfo) Option {
	return func(o *options) { o.client = ci }
}
