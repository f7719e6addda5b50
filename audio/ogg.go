package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/jonas747/ogg"
)

// ErrNotOpus indicates an Ogg stream whose first packet is not an OpusHead.
var ErrNotOpus = errors.New("ogg stream does not carry opus")

// OggReader yields the audio packets of an Ogg Opus stream.
type OggReader struct {
	decoder *ogg.PacketDecoder
	started bool
}

// NewOggReader wraps r, which must be positioned at the start of the stream.
func NewOggReader(r io.Reader) *OggReader {
	return &OggReader{decoder: ogg.NewPacketDecoder(ogg.NewDecoder(r))}
}

// Next returns the next audio packet. It returns io.EOF at the end of the
// stream.
func (o *OggReader) Next() ([]byte, error) {
	if !o.started {
		if err := o.skipHeaders(); err != nil {
			return nil, err
		}
		o.started = true
	}
	packet, _, err := o.decoder.Decode()
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	return packet, nil
}

// skipHeaders consumes the OpusHead and OpusTags packets.
func (o *OggReader) skipHeaders() error {
	head, _, err := o.decoder.Decode()
	if err != nil {
		return fmt.Errorf("read opus head: %w", err)
	}
	if !bytes.HasPrefix(head, []byte("OpusHead")) {
		return ErrNotOpus
	}
	if _, _, err := o.decoder.Decode(); err != nil {
		return fmt.Errorf("read opus tags: %w", err)
	}
	return nil
}
