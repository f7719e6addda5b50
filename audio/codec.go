package audio

// Decoder is the codec side of the playback pipeline.
type Decoder interface {
	// SamplesPerChannel reports how many samples per channel packet decodes to.
	SamplesPerChannel(packet []byte) (int, error)

	// DecodeInto decodes packet into pcm, which holds exactly the interleaved
	// samples SamplesPerChannel announced, and returns the per-channel count.
	DecodeInto(packet []byte, pcm []int16) (int, error)

	// Discard tells the codec a packet of the given length was dropped so it
	// can keep its internal state consistent.
	Discard(samplesPerChannel int)
}

// Encoder is the codec side of the capture pipeline.
type Encoder interface {
	// Encode compresses one frame of interleaved pcm into out and returns the
	// number of bytes written.
	Encode(pcm []int16, out []byte) (int, error)
}
