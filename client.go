package voxlink

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voxlink/audio"
	"github.com/opd-ai/voxlink/config"
	"github.com/opd-ai/voxlink/connection"
	"github.com/opd-ai/voxlink/event"
	"github.com/opd-ai/voxlink/metrics"
	"github.com/opd-ai/voxlink/transport"
	"github.com/opd-ai/voxlink/voice"
)

// Client is a connected voice session with its audio pipelines.
type Client struct {
	cfg      *config.Config
	conn     *connection.Connection
	playback *audio.Playback
	capture  *audio.Capture

	audioToken   event.Token
	encodedToken event.Token
}

type clientOptions struct {
	dialer  transport.Dialer
	decoder audio.Decoder
	encoder audio.Encoder
	metrics *metrics.Metrics
}

// Option customizes a Client, mostly to substitute collaborators in tests.
type Option func(*clientOptions)

// WithDialer replaces the transport built from the server section.
func WithDialer(d transport.Dialer) Option {
	return func(o *clientOptions) { o.dialer = d }
}

// WithDecoder replaces the playback decoder.
func WithDecoder(d audio.Decoder) Option {
	return func(o *clientOptions) { o.decoder = d }
}

// WithEncoder replaces the capture encoder.
func WithEncoder(e audio.Encoder) Option {
	return func(o *clientOptions) { o.encoder = e }
}

// WithMetrics records client activity on m instead of metrics.Default.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// New validates cfg and assembles a client. Nothing is dialed until Connect.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("voxlink: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = metrics.Default()
	}

	var err error
	if o.dialer == nil {
		if o.dialer, err = NewDialer(cfg.Server); err != nil {
			return nil, err
		}
	}
	setup := cfg.Audio.Setup()
	if o.decoder == nil {
		if o.decoder, err = NewDecoder(cfg.Audio); err != nil {
			return nil, err
		}
	}
	if o.encoder == nil {
		if o.encoder, err = audio.NewOpusEncoder(setup, cfg.Audio.FrameDuration, cfg.Audio.Bitrate); err != nil {
			return nil, err
		}
	}

	playback, err := audio.NewPlayback(setup, o.decoder, audio.WithMetrics(o.metrics))
	if err != nil {
		return nil, fmt.Errorf("playback pipeline: %w", err)
	}
	capture, err := audio.NewCapture(setup, cfg.Audio.FrameDuration, o.encoder, audio.WithMetrics(o.metrics))
	if err != nil {
		return nil, fmt.Errorf("capture pipeline: %w", err)
	}
	conn, err := connection.New(o.dialer,
		connection.WithPingInterval(cfg.Connection.PingInterval),
		connection.WithFrameDuration(cfg.Audio.FrameDuration),
		connection.WithMetrics(o.metrics),
	)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:      cfg,
		conn:     conn,
		playback: playback,
		capture:  capture,
	}
	c.audioToken = conn.AudioReceived.Subscribe(c.onAudio)
	c.encodedToken = capture.Encoded.Subscribe(c.onEncoded)

	logrus.WithFields(logrus.Fields{
		"function":  "New",
		"session":   conn.ID(),
		"transport": cfg.Server.Transport,
		"audio":     setup.String(),
		"frame":     cfg.Audio.FrameDuration.String(),
	}).Info("Client created")
	return c, nil
}

// Connection exposes the control session and its observers.
func (c *Client) Connection() *connection.Connection { return c.conn }

// Setup returns the PCM format of both pipelines.
func (c *Client) Setup() audio.Setup { return c.capture.Setup() }

// Connect dials the configured server and authenticates.
func (c *Client) Connect(ctx context.Context) error {
	s := c.cfg.Server
	return c.conn.Connect(ctx, connection.Params{
		Host:     s.Host,
		Port:     s.Port,
		Username: s.Username,
		Password: s.Password,
		Tokens:   s.Tokens,
	})
}

// FeedCapture buffers one captured quantum. Complete codec frames are encoded
// and sent before it returns. audio.ErrCaptureOverflow means the quantum was
// dropped.
func (c *Client) FeedCapture(pcm []int16) error {
	return c.capture.BufferRawAudio(pcm)
}

// EndTransmission marks the end of a talk spurt.
func (c *Client) EndTransmission() error {
	return c.conn.SendVoiceTerminator()
}

// RenderQuantum returns up to samplesPerChannel frames of decoded audio, or
// nil when nothing is buffered.
func (c *Client) RenderQuantum(samplesPerChannel int) []int16 {
	return c.playback.ConsumeAudio(samplesPerChannel)
}

// SendEncoded transmits a frame that is already Opus encoded, bypassing the
// capture pipeline.
func (c *Client) SendEncoded(packet []byte) error {
	return c.conn.SendVoice(packet)
}

// Close detaches the pipelines and closes the connection.
func (c *Client) Close() error {
	c.conn.AudioReceived.Unsubscribe(c.audioToken)
	c.capture.Encoded.Unsubscribe(c.encodedToken)
	return c.conn.Close()
}

func (c *Client) onEncoded(frame []byte) {
	err := c.conn.SendVoice(frame)
	switch {
	case err == nil:
	case errors.Is(err, connection.ErrNotConnected), errors.Is(err, connection.ErrClosed):
		logrus.WithFields(logrus.Fields{
			"function": "Client.onEncoded",
			"bytes":    len(frame),
		}).Debug("Dropping encoded frame, not connected")
	default:
		logrus.WithFields(logrus.Fields{
			"function": "Client.onEncoded",
			"error":    err.Error(),
		}).Warn("Failed to send voice frame")
	}
}

func (c *Client) onAudio(f *voice.Frame) {
	if f.Codec != voice.CodecOpus {
		logrus.WithFields(logrus.Fields{
			"function": "Client.onAudio",
			"codec":    f.Codec.String(),
			"session":  f.SenderSession,
		}).Debug("Skipping non-Opus voice frame")
		return
	}
	if len(f.Payload) == 0 {
		return
	}
	if _, err := c.playback.DecodeToBuffer(f.Payload); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Client.onAudio",
			"session":  f.SenderSession,
			"sequence": f.FrameSequence,
			"error":    err.Error(),
		}).Warn("Failed to decode voice frame")
	}
}
