package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voxlink/limits"
)

// WebSocketOptions configures a WebSocketDialer.
type WebSocketOptions struct {
	// Secure selects wss:// over ws://.
	Secure bool

	// Path is the request path on the proxy, "/" when empty.
	Path string

	// TLS is used for wss:// connections.
	TLS *tls.Config

	// Header is sent with the upgrade request.
	Header http.Header
}

// WebSocketDialer reaches a server through a WebSocket proxy.
type WebSocketDialer struct {
	opts WebSocketOptions
}

// NewWebSocketDialer returns a dialer using opts.
func NewWebSocketDialer(opts WebSocketOptions) *WebSocketDialer {
	if opts.Path == "" {
		opts.Path = "/"
	}
	return &WebSocketDialer{opts: opts}
}

// URL returns the endpoint Dial connects to.
func (d *WebSocketDialer) URL(host string, port uint16) string {
	scheme := "ws"
	if d.opts.Secure {
		scheme = "wss"
	}
	u := url.URL{Scheme: scheme, Host: Address(host, port), Path: d.opts.Path}
	return u.String()
}

// Dial implements Dialer.
func (d *WebSocketDialer) Dial(ctx context.Context, host string, port uint16) (Stream, error) {
	endpoint := d.URL(host, port)
	logrus.WithFields(logrus.Fields{
		"function": "WebSocketDialer.Dial",
		"url":      endpoint,
	}).Info("Dialing server over websocket")

	opts := &websocket.DialOptions{HTTPHeader: d.opts.Header}
	if d.opts.TLS != nil {
		opts.HTTPClient = &http.Client{
			Transport: &http.Transport{TLSClientConfig: d.opts.TLS},
		}
	}

	conn, _, err := websocket.Dial(ctx, endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	conn.SetReadLimit(limits.MaxControlPayload + limits.ControlHeaderSize)

	// The stream outlives the dial context; Close ends it.
	return websocket.NetConn(context.Background(), conn, websocket.MessageBinary), nil
}
