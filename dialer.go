package voxlink

import (
	"crypto/tls"
	"fmt"

	"github.com/opd-ai/voxlink/audio"
	"github.com/opd-ai/voxlink/config"
	"github.com/opd-ai/voxlink/transport"
)

// NewDialer builds the transport described by the server section.
func NewDialer(s config.ServerConfig) (transport.Dialer, error) {
	switch s.Transport {
	case config.TransportTLS, "":
		return transport.NewTLSDialer(transport.TLSOptions{
			InsecureSkipVerify: s.InsecureSkipVerify,
			CertFile:           s.ClientCert,
			KeyFile:            s.ClientKey,
			PKCS12File:         s.ClientP12,
			PKCS12Password:     s.ClientP12Password,
		}), nil
	case config.TransportWebSocket:
		opts := transport.WebSocketOptions{
			Secure: s.WebSocketSecure,
			Path:   s.WebSocketPath,
		}
		if s.WebSocketSecure {
			opts.TLS = &tls.Config{
				MinVersion:         tls.VersionTLS12,
				InsecureSkipVerify: s.InsecureSkipVerify,
			}
		}
		return transport.NewWebSocketDialer(opts), nil
	}
	return nil, fmt.Errorf("%w: unknown transport %q", config.ErrInvalid, s.Transport)
}

// NewDecoder builds the playback decoder named by the audio section.
func NewDecoder(a config.AudioConfig) (audio.Decoder, error) {
	switch a.Decoder {
	case config.DecoderLibopus, "":
		return audio.NewOpusDecoder(a.Setup())
	case config.DecoderPureGo:
		return audio.NewPureDecoder(a.Setup())
	}
	return nil, fmt.Errorf("%w: unknown decoder %q", config.ErrInvalid, a.Decoder)
}
