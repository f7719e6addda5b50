package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTicksPer(t *testing.T) {
	assert.Equal(t, uint64(1), TicksPer(10*time.Millisecond))
	assert.Equal(t, uint64(2), TicksPer(20*time.Millisecond))
	assert.Equal(t, uint64(4), TicksPer(40*time.Millisecond))
	assert.Equal(t, uint64(6), TicksPer(60*time.Millisecond))
	assert.Equal(t, uint64(1), TicksPer(5*time.Millisecond))
}

func TestSetupSamples(t *testing.T) {
	assert.Equal(t, 960, DefaultSetup.SamplesPerChannel(20*time.Millisecond))
	assert.Equal(t, 1920, DefaultSetup.TotalSamples(20*time.Millisecond))
	assert.Equal(t, 5760, DefaultSetup.TotalSamples(MaxFrameDuration))

	mono16 := Setup{Rate: Rate16k, Channels: Mono}
	assert.Equal(t, 160, mono16.TotalSamples(MumbleTick))
	assert.Equal(t, "16000Hz/1ch", mono16.String())
}

func TestSetupValidate(t *testing.T) {
	assert.NoError(t, DefaultSetup.Validate())
	assert.ErrorIs(t, Setup{Rate: 44100, Channels: Stereo}.Validate(), ErrInvalidSampleRate)
	assert.ErrorIs(t, Setup{Rate: Rate48k, Channels: 6}.Validate(), ErrInvalidChannels)
}

func TestValidateFrameDuration(t *testing.T) {
	for _, d := range []time.Duration{Frame10ms, Frame20ms, Frame40ms, Frame60ms} {
		assert.NoError(t, ValidateFrameDuration(d))
	}
	assert.ErrorIs(t, ValidateFrameDuration(30*time.Millisecond), ErrInvalidFrameDuration)
	assert.ErrorIs(t, ValidateFrameDuration(80*time.Millisecond), ErrInvalidFrameDuration)
}

func TestResampleInto(t *testing.T) {
	out := make([]int16, 8)
	resampleInto([]int16{0, 100, 200, 300}, Rate16k, Rate16k, Stereo, out)
	assert.Equal(t, []int16{0, 0, 100, 100, 200, 200, 300, 300}, out)

	up := make([]int16, 4)
	resampleInto([]int16{0, 100}, Rate8k, Rate16k, Mono, up)
	assert.Equal(t, []int16{0, 50, 100, 100}, up)

	silent := []int16{1, 2}
	resampleInto(nil, Rate8k, Rate16k, Mono, silent)
	assert.Equal(t, []int16{0, 0}, silent)
}
