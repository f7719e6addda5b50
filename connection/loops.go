package connection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voxlink/control"
	"github.com/opd-ai/voxlink/transport"
)

// pingLoop sends a keep-alive every ping interval until ctx ends.
func (c *Connection) pingLoop(ctx context.Context, stream transport.Stream) error {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			ping := &control.Ping{Timestamp: uint64(now.UnixMilli())}
			if err := c.writeMessage(stream, ping); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				err = fmt.Errorf("send ping: %w", err)
				c.teardown(err)
				return err
			}
			c.logger("pingLoop").Debug("Sent ping")
		}
	}
}

// readLoop reads and dispatches frames until the stream fails or ctx ends.
func (c *Connection) readLoop(ctx context.Context, stream transport.Stream) error {
	for {
		f, err := control.ReadFrame(stream)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, transport.ErrRemoteClosed) {
				err = fmt.Errorf("server closed the connection: %w", err)
			}
			c.teardown(err)
			return err
		}
		c.metrics.RecordControlRead(ctx, f.TypeName())
		c.dispatch(ctx, f)
	}
}

// dispatch routes one inbound frame. Parse failures are logged and
// published as a description; they never stop the loop.
func (c *Connection) dispatch(ctx context.Context, f control.Frame) {
	if f.TypeNumber == uint16(control.TypeUDPTunnel) {
		v, err := f.Voice()
		if err != nil {
			c.metrics.RecordParseFailure(ctx, "voice")
			c.logger("dispatch").WithError(err).Warn("Dropping unparseable voice datagram")
			c.PacketReceived.Publish(control.Describe(c.codec, f))
			return
		}
		c.metrics.VoiceFramesReceived.Add(ctx, 1)
		c.AudioReceived.Publish(v)
		return
	}

	r, err := control.Resolve(c.codec, f)
	if err != nil {
		c.metrics.RecordParseFailure(ctx, "control")
		c.logger("dispatch").WithFields(logrus.Fields{
			"type":  f.TypeName(),
			"bytes": len(f.Payload),
			"error": err.Error(),
		}).Warn("Unparseable control packet")
		c.PacketReceived.Publish(control.Describe(c.codec, f))
		return
	}

	switch m := r.Message.(type) {
	case *control.Ping:
		c.recordPingEcho(ctx, m)
	case *control.Reject:
		c.logger("dispatch").WithField("reason", m.String()).Warn("Server rejected the session")
	}
	c.PacketReceived.Publish(r.String())
}

// recordPingEcho measures the round trip of a ping the server echoed back.
func (c *Connection) recordPingEcho(ctx context.Context, m *control.Ping) {
	if m.Timestamp == 0 {
		return
	}
	rtt := time.Since(time.UnixMilli(int64(m.Timestamp)))
	if rtt < 0 {
		return
	}
	c.metrics.PingRoundTrip.Record(ctx, rtt.Seconds())
}

// teardown handles a transport failure after the handshake: the failure is
// published once and the connection moves to Closed. Close still publishes
// ConnectionClosed when the owner calls it.
func (c *Connection) teardown(err error) {
	c.mu.Lock()
	if !c.closing && !c.state.Terminal() {
		c.setStateLocked(StateClosed)
	}
	c.mu.Unlock()
	c.reportFailure(err)
}
