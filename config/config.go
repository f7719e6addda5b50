// Package config loads the voxlink configuration from a YAML file, VOXLINK_
// environment variables and built-in defaults, in increasing order of
// precedence: defaults, file, environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/opd-ai/voxlink/audio"
	"github.com/opd-ai/voxlink/logging"
	"github.com/opd-ai/voxlink/transport"
)

// ErrInvalid classifies every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Transport kinds.
const (
	TransportTLS       = "tls"
	TransportWebSocket = "websocket"
)

// Decoder implementations.
const (
	DecoderLibopus = "libopus"
	DecoderPureGo  = "pure-go"
)

// Config is the complete client configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Audio      AudioConfig      `mapstructure:"audio" yaml:"audio"`
	Connection ConnectionConfig `mapstructure:"connection" yaml:"connection"`
	Log        logging.Config   `mapstructure:"log" yaml:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`
}

// ServerConfig identifies the server and how to reach it.
type ServerConfig struct {
	Host               string   `mapstructure:"host" yaml:"host"`
	Port               uint16   `mapstructure:"port" yaml:"port"`
	Username           string   `mapstructure:"username" yaml:"username"`
	Password           string   `mapstructure:"password" yaml:"password"`
	Tokens             []string `mapstructure:"tokens" yaml:"tokens"`
	Transport          string   `mapstructure:"transport" yaml:"transport"`
	WebSocketPath      string   `mapstructure:"websocket_path" yaml:"websocket_path"`
	WebSocketSecure    bool     `mapstructure:"websocket_secure" yaml:"websocket_secure"`
	InsecureSkipVerify bool     `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	ClientCert         string   `mapstructure:"client_cert" yaml:"client_cert"`
	ClientKey          string   `mapstructure:"client_key" yaml:"client_key"`
	ClientP12          string   `mapstructure:"client_p12" yaml:"client_p12"`
	ClientP12Password  string   `mapstructure:"client_p12_password" yaml:"client_p12_password"`
}

// AudioConfig describes the PCM format and the codec settings.
type AudioConfig struct {
	SampleRate    int           `mapstructure:"sample_rate" yaml:"sample_rate"`
	Channels      int           `mapstructure:"channels" yaml:"channels"`
	FrameDuration time.Duration `mapstructure:"frame_duration" yaml:"frame_duration"`
	Bitrate       int           `mapstructure:"bitrate" yaml:"bitrate"`
	Decoder       string        `mapstructure:"decoder" yaml:"decoder"`
}

// Setup returns the PCM format described by a.
func (a AudioConfig) Setup() audio.Setup {
	return audio.Setup{Rate: audio.SampleRate(a.SampleRate), Channels: audio.Channels(a.Channels)}
}

// ConnectionConfig tunes the control session.
type ConnectionConfig struct {
	PingInterval time.Duration `mapstructure:"ping_interval" yaml:"ping_interval"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Listen  string `mapstructure:"listen" yaml:"listen"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            transport.DefaultPort,
			Transport:       TransportTLS,
			WebSocketPath:   "/",
			WebSocketSecure: true,
		},
		Audio: AudioConfig{
			SampleRate:    int(audio.Rate48k),
			Channels:      int(audio.Stereo),
			FrameDuration: audio.Frame20ms,
			Bitrate:       audio.DefaultBitrate,
			Decoder:       DecoderLibopus,
		},
		Connection: ConnectionConfig{PingInterval: 10 * time.Second},
		Log: logging.Config{
			Level:  "info",
			Format: logging.FormatText,
			File: logging.FileConfig{
				Path:       "voxlink.log",
				MaxSizeMB:  10,
				MaxBackups: 3,
				MaxAgeDays: 7,
			},
		},
		Metrics: MetricsConfig{Listen: ":9464"},
	}
}

// Validate checks every section and joins all problems found.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	s := c.Server
	if s.Host == "" {
		invalid("server.host is required")
	}
	if s.Port == 0 {
		invalid("server.port must be non-zero")
	}
	if s.Username == "" {
		invalid("server.username is required")
	}
	switch s.Transport {
	case TransportTLS, TransportWebSocket:
	default:
		invalid("server.transport %q is not %q or %q", s.Transport, TransportTLS, TransportWebSocket)
	}
	if (s.ClientCert == "") != (s.ClientKey == "") {
		invalid("server.client_cert and server.client_key must be set together")
	}
	if s.ClientP12 != "" && s.ClientCert != "" {
		invalid("server.client_p12 and server.client_cert are mutually exclusive")
	}

	a := c.Audio
	if err := a.Setup().Validate(); err != nil {
		invalid("audio: %v", err)
	}
	if err := audio.ValidateFrameDuration(a.FrameDuration); err != nil {
		invalid("audio.frame_duration: %v", err)
	}
	if a.Bitrate < 6000 || a.Bitrate > 510000 {
		invalid("audio.bitrate %d outside 6000..510000", a.Bitrate)
	}
	switch a.Decoder {
	case DecoderLibopus, DecoderPureGo:
	default:
		invalid("audio.decoder %q is not %q or %q", a.Decoder, DecoderLibopus, DecoderPureGo)
	}

	if c.Connection.PingInterval <= 0 {
		invalid("connection.ping_interval must be positive")
	}
	if err := c.Log.Validate(); err != nil {
		invalid("log: %v", err)
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		invalid("metrics.listen is required when metrics are enabled")
	}

	return errors.Join(errs...)
}

// Redacted returns a copy of c with secrets masked, for display.
func (c *Config) Redacted() *Config {
	out := *c
	out.Server.Tokens = append([]string(nil), c.Server.Tokens...)
	if out.Server.Password != "" {
		out.Server.Password = "********"
	}
	if out.Server.ClientP12Password != "" {
		out.Server.ClientP12Password = "********"
	}
	for i := range out.Server.Tokens {
		out.Server.Tokens[i] = "********"
	}
	return &out
}
