package main

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voxlink/audio"
)

// voiceSender is the part of the client sendFile needs.
type voiceSender interface {
	SendEncoded(packet []byte) error
	EndTransmission() error
}

// sendFile transmits the packets of an Ogg Opus file in real time and ends
// the talk spurt when the file is exhausted.
func sendFile(ctx context.Context, s voiceSender, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return sendPackets(ctx, s, audio.NewOggReader(f), time.Now)
}

type packetSource interface {
	Next() ([]byte, error)
}

// sendPackets paces packets by their own duration against a monotonic
// schedule, so send jitter does not accumulate.
func sendPackets(ctx context.Context, s voiceSender, src packetSource, now func() time.Time) error {
	log := logrus.WithField("function", "sendPackets")
	next := now()
	sent := 0

	for {
		packet, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if wait := next.Sub(now()); wait > 0 {
			select {
			case <-ctx.Done():
				return s.EndTransmission()
			case <-time.After(wait):
			}
		}
		if err := s.SendEncoded(packet); err != nil {
			return err
		}
		sent++

		samples, err := audio.PacketSamples(packet, audio.Rate48k)
		if err != nil {
			log.WithError(err).Warn("Cannot determine packet duration, assuming 20ms")
			samples = 960
		}
		next = next.Add(time.Duration(samples) * time.Second / time.Duration(audio.Rate48k))
	}

	log.WithField("packets", sent).Info("Finished sending file")
	return s.EndTransmission()
}
