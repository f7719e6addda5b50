package audio

// resampleInto converts mono input at inRate to interleaved output at outRate
// with linear interpolation, duplicating the signal across channels. It fills
// exactly len(out)/channels frames.
func resampleInto(in []int16, inRate, outRate SampleRate, channels Channels, out []int16) {
	frames := len(out) / int(channels)
	if len(in) == 0 {
		clear(out)
		return
	}

	step := float64(inRate) / float64(outRate)
	last := len(in) - 1
	for i := 0; i < frames; i++ {
		pos := float64(i) * step
		idx := int(pos)
		var sample int16
		if idx >= last {
			sample = in[last]
		} else {
			frac := pos - float64(idx)
			a, b := float64(in[idx]), float64(in[idx+1])
			sample = int16(a + (b-a)*frac)
		}
		for ch := 0; ch < int(channels); ch++ {
			out[i*int(channels)+ch] = sample
		}
	}
}
