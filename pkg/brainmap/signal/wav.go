package signal

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavBitDepth = 16

// WriteWAV stores ts as mono 16-bit PCM, peak-normalised to full scale.
// The absolute amplitude is not preserved.
func WriteWAV(path string, ts TimeSeries) error {
	if len(ts.Samples) == 0 {
		return errors.New("time series is empty")
	}
	if ts.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", ts.SampleRate)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating wav file: %w", err)
	}
	defer f.Close()

	peak := 0.0
	for _, v := range ts.Samples {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak == 0 {
		peak = 1
	}

	maxVal := float64(int(1)<<(wavBitDepth-1) - 1)
	data := make([]int, len(ts.Samples))
	for i, v := range ts.Samples {
		data[i] = int(math.Round(v / peak * maxVal))
	}

	enc := wav.NewEncoder(f, ts.SampleRate, wavBitDepth, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: ts.SampleRate},
		Data:           data,
		SourceBitDepth: wavBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("writing pcm data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalising wav file: %w", err)
	}
	return nil
}

// ReadWAV loads a PCM WAV file as a mono series in [-1, 1]. Multi-channel
// files are averaged down to one channel.
func ReadWAV(path string) (TimeSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return TimeSeries{}, fmt.Errorf("opening wav file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return TimeSeries{}, fmt.Errorf("invalid wav file: %s", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return TimeSeries{}, fmt.Errorf("reading pcm data: %w", err)
	}

	channels := int(dec.NumChans)
	if channels < 1 {
		channels = 1
	}
	bitDepth := int(dec.BitDepth)
	if bitDepth <= 0 {
		bitDepth = wavBitDepth
	}
	maxVal := float64(int(1) << (uint(bitDepth) - 1))

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}
		samples[i] = sum / float64(channels) / maxVal
	}

	rate := int(dec.SampleRate)
	duration := 0.0
	if rate > 0 {
		duration = float64(frames) / float64(rate)
	}
	return TimeSeries{Samples: samples, SampleRate: rate, Duration: duration}, nil
}
