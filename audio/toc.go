package audio

import "fmt"

// frameSizes48k maps the 5-bit TOC configuration number to the frame length
// in samples at 48 kHz. Configs 0-11 are SILK, 12-15 hybrid, 16-31 CELT.
var frameSizes48k = [32]int{
	480, 960, 1920, 2880, // SILK NB
	480, 960, 1920, 2880, // SILK MB
	480, 960, 1920, 2880, // SILK WB
	480, 960, // Hybrid SWB
	480, 960, // Hybrid FB
	120, 240, 480, 960, // CELT NB
	120, 240, 480, 960, // CELT WB
	120, 240, 480, 960, // CELT SWB
	120, 240, 480, 960, // CELT FB
}

// maxPacketSamples48k is 120 ms, the longest legal Opus packet.
const maxPacketSamples48k = 5760

// PacketFrames returns the number of Opus frames in packet.
func PacketFrames(packet []byte) (int, error) {
	if len(packet) == 0 {
		return 0, fmt.Errorf("%w: empty packet", ErrInvalidPacket)
	}
	switch packet[0] & 0x03 {
	case 0:
		return 1, nil
	case 1, 2:
		return 2, nil
	default:
		if len(packet) < 2 {
			return 0, fmt.Errorf("%w: code 3 packet missing frame count", ErrInvalidPacket)
		}
		return int(packet[1] & 0x3f), nil
	}
}

// PacketSamples returns the number of samples per channel packet decodes to
// at the given rate.
func PacketSamples(packet []byte, rate SampleRate) (int, error) {
	frames, err := PacketFrames(packet)
	if err != nil {
		return 0, err
	}
	samples48k := frames * frameSizes48k[packet[0]>>3]
	if samples48k == 0 || samples48k > maxPacketSamples48k {
		return 0, fmt.Errorf("%w: %d samples", ErrInvalidPacket, samples48k)
	}
	return samples48k * int(rate) / int(Rate48k), nil
}

// PacketStereo reports the stereo flag of the packet's TOC byte.
func PacketStereo(packet []byte) bool {
	return len(packet) > 0 && packet[0]&0x04 != 0
}
