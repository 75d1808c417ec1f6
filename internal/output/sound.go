package output

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const (
	sampleRate   = 44100
	channelCount = 2
)

// Player plays the capture sound.
type Player interface {
	Play() error
}

// ShutterPlayer synthesizes a short two-click shutter sound and plays it
// through the default audio device.
type ShutterPlayer struct{}

var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

func audioContext() (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channelCount,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			otoErr = err
			return
		}
		<-ready
		otoCtx = ctx
	})
	return otoCtx, otoErr
}

func (ShutterPlayer) Play() error {
	ctx, err := audioContext()
	if err != nil {
		return fmt.Errorf("audio unavailable: %w", err)
	}
	p := ctx.NewPlayer(bytes.NewReader(ShutterPCM()))
	defer p.Close()
	p.Play()
	for p.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

// ShutterPCM renders the shutter sound as interleaved signed 16-bit
// little-endian stereo samples.
func ShutterPCM() []byte {
	const clickMs = 45
	const gapMs = 70
	total := sampleRate * (2*clickMs + gapMs) / 1000
	clickLen := sampleRate * clickMs / 1000
	secondStart := sampleRate * (clickMs + gapMs) / 1000

	rng := rand.New(rand.NewSource(1))
	buf := make([]byte, total*channelCount*2)
	for i := 0; i < total; i++ {
		var v float64
		switch {
		case i < clickLen:
			v = click(rng, i, clickLen, 0.6)
		case i >= secondStart && i < secondStart+clickLen:
			v = click(rng, i-secondStart, clickLen, 0.4)
		}
		s := int16(math.Max(-1, math.Min(1, v)) * math.MaxInt16)
		for ch := 0; ch < channelCount; ch++ {
			binary.LittleEndian.PutUint16(buf[(i*channelCount+ch)*2:], uint16(s))
		}
	}
	return buf
}

// click is exponentially decaying noise.
func click(rng *rand.Rand, i, n int, gain float64) float64 {
	decay := math.Exp(-6 * float64(i) / float64(n))
	return gain * decay * (rng.Float64()*2 - 1)
}
