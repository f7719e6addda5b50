package audio

import "errors"

var errFakeCodec = errors.New("fake codec failure")

// fakeDecoder decodes every packet to samplesPerChannel copies of packet[0].
type fakeDecoder struct {
	samplesPerChannel int
	fail              bool
	discarded         []int
}

func (d *fakeDecoder) SamplesPerChannel(packet []byte) (int, error) {
	if len(packet) == 0 {
		return 0, ErrInvalidPacket
	}
	return d.samplesPerChannel, nil
}

func (d *fakeDecoder) DecodeInto(packet []byte, pcm []int16) (int, error) {
	if d.fail {
		return 0, errFakeCodec
	}
	for i := range pcm {
		pcm[i] = int16(packet[0])
	}
	return d.samplesPerChannel, nil
}

func (d *fakeDecoder) Discard(samplesPerChannel int) {
	d.discarded = append(d.discarded, samplesPerChannel)
}

// fakeEncoder writes the first sample of each frame as a single byte.
type fakeEncoder struct {
	frames  [][]int16
	failOn  int
	written int
}

func (e *fakeEncoder) Encode(pcm []int16, out []byte) (int, error) {
	e.written++
	if e.failOn > 0 && e.written == e.failOn {
		return 0, errFakeCodec
	}
	e.frames = append(e.frames, append([]int16(nil), pcm...))
	out[0] = byte(pcm[0])
	out[1] = byte(len(pcm) >> 8)
	out[2] = byte(len(pcm))
	return 3, nil
}
