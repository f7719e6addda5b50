// Package audio bridges Opus to a real-time audio graph that works in fixed-size
// quanta.
//
// # Ring Buffer
//
// RingBuffer is a fixed-capacity FIFO that never reallocates after creation. It
// hands out slices into its storage so codecs can decode into it and encode out
// of it without intermediate copies. It does no locking of its own.
//
// # Pipelines
//
// Playback decodes Opus packets arriving from the network into a RingBuffer and
// lets the render side drain whatever is available each quantum:
//
//	playback, err := audio.NewPlayback(audio.DefaultSetup, decoder)
//	n, err := playback.DecodeToBuffer(packet) // 0 means the packet was dropped
//	pcm := playback.ConsumeAudio(480)         // nil when nothing is buffered
//
// Capture accumulates raw quanta from the capture side and publishes one
// encoded packet per complete codec frame:
//
//	capture, err := audio.NewCapture(audio.DefaultSetup, 20*time.Millisecond, encoder)
//	capture.Encoded.Subscribe(func(packet []byte) { conn.SendVoice(packet) })
//	err = capture.BufferRawAudio(quantum)
//
// Both pipelines guard their buffers with a mutex, so the network side and the
// audio graph may call them from different goroutines.
//
// # Codecs
//
// OpusEncoder and OpusDecoder wrap libopus through layeh.com/gopus. PureDecoder
// uses the pure Go github.com/pion/opus decoder for builds without cgo; it only
// understands SILK packets.
//
// OggReader extracts Opus packets from an Ogg Opus file for transmission.
package audio
