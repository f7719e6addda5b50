// Package connection drives a Mumble control session: it dials the server,
// exchanges versions, authenticates and then runs two background loops, one
// sending keep-alive pings and one reading and dispatching inbound frames.
//
// Outcomes are reported through the observer fields of Connection rather than
// through return values of the background loops. Cancellation is never
// reported as a failure.
package connection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/voxlink/audio"
	"github.com/opd-ai/voxlink/control"
	"github.com/opd-ai/voxlink/event"
	"github.com/opd-ai/voxlink/metrics"
	"github.com/opd-ai/voxlink/transport"
	"github.com/opd-ai/voxlink/voice"
)

// Connection is one session with a server. A Connection is used for a single
// Connect; create a new one to reconnect.
type Connection struct {
	// ConnectionSucceeded fires once the handshake completes.
	ConnectionSucceeded event.Event[string]
	// ConnectionFailed fires at most once, with the reason.
	ConnectionFailed event.Event[string]
	// ConnectionClosed fires once, on the first Close.
	ConnectionClosed event.Event[string]
	// PacketReceived carries a description of every inbound control message.
	PacketReceived event.Event[string]
	// AudioReceived carries every inbound voice datagram.
	AudioReceived event.Event[*voice.Frame]

	dialer  transport.Dialer
	codec   control.Codec
	metrics *metrics.Metrics
	client  ClientInfo

	pingInterval time.Duration
	ticks        uint64

	id     string
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   State
	stream  transport.Stream
	group   *errgroup.Group
	closing bool

	writeMu  sync.Mutex
	sequence uint64

	failOnce  sync.Once
	closeOnce sync.Once
	closeErr  error
}

// New returns an idle connection that will open its stream with dialer.
func New(dialer transport.Dialer, opts ...Option) (*Connection, error) {
	if dialer == nil {
		return nil, errors.New("connection: nil dialer")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := audio.ValidateFrameDuration(o.frameDuration); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		dialer:       dialer,
		codec:        o.codec,
		metrics:      metrics.OrNoop(o.metrics),
		client:       o.client,
		pingInterval: o.pingInterval,
		ticks:        audio.TicksPer(o.frameDuration),
		id:           uuid.NewString(),
		ctx:          ctx,
		cancel:       cancel,
		state:        StateIdle,
	}, nil
}

// ID returns the session identifier used in log entries.
func (c *Connection) ID() string { return c.id }

// State returns the current lifecycle state.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Connection) logger(function string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"function": function,
		"session":  c.id,
	})
}

// setState moves to next if the state machine allows it.
func (c *Connection) setState(next State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setStateLocked(next)
}

func (c *Connection) setStateLocked(next State) error {
	if c.closing && next != StateClosed {
		return ErrClosed
	}
	prev := c.state
	if !prev.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, prev, next)
	}
	c.state = next
	c.metrics.RecordState(context.Background(), next.String())

	c.logger("setState").WithFields(logrus.Fields{
		"from": prev.String(),
		"to":   next.String(),
	}).Debug("Connection state changed")
	return nil
}

// Connect dials the server, performs the handshake and starts the background
// loops. Cancelling ctx aborts the handshake but has no effect once Connect
// has returned. Failures are published to ConnectionFailed and also returned.
func (c *Connection) Connect(ctx context.Context, p Params) error {
	if err := c.setState(StateConnecting); err != nil {
		return err
	}
	if p.Port == 0 {
		p.Port = transport.DefaultPort
	}
	log := c.logger("Connect").WithField("address", transport.Address(p.Host, p.Port))
	log.Info("Connecting to server")

	raw, err := c.dialer.Dial(ctx, p.Host, p.Port)
	if err != nil {
		return c.abort(ctx, nil, fmt.Errorf("dial %s: %w", transport.Address(p.Host, p.Port), err))
	}
	stream := &onceStream{Stream: raw}

	c.mu.Lock()
	c.stream = stream
	closing := c.closing
	c.mu.Unlock()
	if closing {
		stream.Close()
		return ErrClosed
	}

	// Either context ending mid-handshake unblocks the pending read.
	stopCaller := context.AfterFunc(ctx, func() { stream.Close() })
	stopOwn := context.AfterFunc(c.ctx, func() { stream.Close() })
	err = c.handshake(stream, p)
	interrupted := !stopCaller()
	stopOwn()
	if interrupted && err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return c.abort(ctx, stream, err)
	}

	if err := c.start(stream); err != nil {
		stream.Close()
		return err
	}
	log.Info("Connected to server")
	return nil
}

// handshake waits for the server's Version, then sends the client's version
// and credentials. The server does not acknowledge authentication directly;
// a Reject, if any, arrives later through the read loop.
func (c *Connection) handshake(stream transport.Stream, p Params) error {
	if err := c.setState(StateAwaitingServerVersion); err != nil {
		return err
	}

	f, err := control.ReadFrame(stream)
	if err != nil {
		return fmt.Errorf("read server version: %w", err)
	}
	c.metrics.RecordControlRead(c.ctx, f.TypeName())
	if f.TypeNumber != uint16(control.TypeVersion) {
		return fmt.Errorf("%w: server did not send the required version message; giving up (got %s)",
			ErrProtocolViolation, f.TypeName())
	}
	r, err := control.Resolve(c.codec, f)
	if err != nil {
		c.metrics.RecordParseFailure(c.ctx, "control")
		return fmt.Errorf("server version: %w", err)
	}
	c.logger("handshake").WithField("server", r.Message.String()).Info("Received server version")
	c.PacketReceived.Publish(r.String())

	if err := c.setState(StateAuthenticating); err != nil {
		return err
	}
	if err := c.writeMessage(stream, c.client.message()); err != nil {
		return fmt.Errorf("send version: %w", err)
	}
	auth := &control.Authenticate{
		Username: p.Username,
		Password: p.Password,
		Tokens:   p.Tokens,
		Opus:     true,
	}
	if err := c.writeMessage(stream, auth); err != nil {
		return fmt.Errorf("send authenticate: %w", err)
	}
	c.logger("handshake").WithField("username", p.Username).Debug("Sent credentials")
	return nil
}

// abort ends a Connect that did not complete. Close and cancellation end it
// quietly; anything else marks the connection failed.
func (c *Connection) abort(ctx context.Context, stream transport.Stream, err error) error {
	if stream != nil {
		stream.Close()
	}

	c.mu.Lock()
	closing := c.closing
	cancelled := ctx.Err() != nil
	switch {
	case closing:
	case cancelled:
		c.setStateLocked(StateClosed)
	default:
		c.setStateLocked(StateFailed)
	}
	c.mu.Unlock()

	switch {
	case closing:
		return ErrClosed
	case cancelled:
		c.logger("Connect").WithError(err).Info("Connect cancelled")
		return fmt.Errorf("connect cancelled: %w", ctx.Err())
	}
	c.reportFailure(err)
	return err
}

// start enters Connected and launches the background loops. The loops wait
// for ConnectionSucceeded to be published before doing any work so that it
// is always the first event of a session.
func (c *Connection) start(stream transport.Stream) error {
	published := make(chan struct{})

	c.mu.Lock()
	if err := c.setStateLocked(StateConnected); err != nil {
		c.mu.Unlock()
		return err
	}
	g, gctx := errgroup.WithContext(c.ctx)
	c.group = g
	context.AfterFunc(gctx, func() { stream.Close() })
	g.Go(func() error {
		if !waitFor(gctx, published) {
			return nil
		}
		return c.pingLoop(gctx, stream)
	})
	g.Go(func() error {
		if !waitFor(gctx, published) {
			return nil
		}
		return c.readLoop(gctx, stream)
	})
	c.mu.Unlock()

	c.ConnectionSucceeded.Publish("success")
	close(published)
	return nil
}

func waitFor(ctx context.Context, ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	case <-ctx.Done():
		return false
	}
}

// reportFailure publishes to ConnectionFailed the first time it is called.
func (c *Connection) reportFailure(err error) {
	c.failOnce.Do(func() {
		c.logger("reportFailure").WithError(err).Error("Connection failed")
		c.ConnectionFailed.Publish(err.Error())
	})
}

// SendVoice transmits one encoded Opus frame and advances the frame sequence
// by the number of 10 ms ticks a frame represents.
func (c *Connection) SendVoice(payload []byte) error {
	return c.sendVoice(payload, false)
}

// SendVoiceTerminator transmits an empty frame flagged as the end of a talk
// spurt.
func (c *Connection) SendVoiceTerminator() error {
	return c.sendVoice(nil, true)
}

func (c *Connection) sendVoice(payload []byte, terminator bool) error {
	stream, err := c.connectedStream()
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	v := voice.NewOutgoing(voice.CodecOpus, c.sequence, payload)
	v.Terminator = terminator
	f, err := control.FromVoice(v)
	if err != nil {
		return err
	}
	if err := c.writeFrameLocked(stream, f); err != nil {
		return err
	}
	c.sequence += c.ticks
	c.metrics.VoiceFramesSent.Add(c.ctx, 1)
	return nil
}

// Sequence returns the frame sequence the next voice frame will carry.
func (c *Connection) Sequence() uint64 {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.sequence
}

func (c *Connection) connectedStream() (transport.Stream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.closing:
		return nil, ErrClosed
	case c.state != StateConnected:
		return nil, fmt.Errorf("%w: state %s", ErrNotConnected, c.state)
	}
	return c.stream, nil
}

func (c *Connection) writeMessage(stream transport.Stream, m control.Message) error {
	f, err := control.FromMessage(c.codec, m)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.writeFrameLocked(stream, f)
}

// writeFrameLocked is the single outbound path. The caller holds writeMu.
func (c *Connection) writeFrameLocked(stream transport.Stream, f control.Frame) error {
	if err := control.WriteFrame(stream, f); err != nil {
		return err
	}
	c.metrics.RecordControlWrite(c.ctx, f.TypeName())
	return nil
}

// Close cancels the background loops, closes the stream and waits for the
// loops to finish. It publishes ConnectionClosed on the first call only.
// Close must not be called from an observer handler, which runs on a loop
// goroutine that Close waits for.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closing = true
		if !c.state.Terminal() {
			c.setStateLocked(StateClosed)
		}
		stream, group := c.stream, c.group
		c.mu.Unlock()

		c.cancel()
		if stream != nil {
			c.closeErr = stream.Close()
		}
		if group != nil {
			group.Wait()
		}

		c.logger("Close").Info("Connection closed")
		c.ConnectionClosed.Publish("closed")
	})
	return c.closeErr
}

// onceStream closes the underlying stream once and reports that result to
// every caller. Several paths race to close it during teardown.
type onceStream struct {
	transport.Stream
	once sync.Once
	err  error
}

func (s *onceStream) Close() error {
	s.once.Do(func() { s.err = s.Stream.Close() })
	return s.err
}
