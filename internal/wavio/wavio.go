package wavio

import (
	"fmt"
	"os"
	"path/filepath"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// ReadWAV decodes a WAV file into per-channel float64 samples normalized to
// [-1, 1], plus the file's sample rate.
func ReadWAV(path string) ([][]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid wav file: %s", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("invalid wav buffer: %s", path)
	}

	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch

	channels := make([][]float64, ch)
	for c := range channels {
		channels[c] = make([]float64, frames)
	}

	for i := 0; i < frames; i++ {
		for c := 0; c < ch; c++ {
			channels[c][i] = float64(buf.Data[i*ch+c])
		}
	}

	return channels, buf.Format.SampleRate, nil
}

// ReadWAVMono decodes a WAV file and folds all channels into one by
// averaging.
func ReadWAVMono(path string) ([]float64, int, error) {
	channels, sampleRate, err := ReadWAV(path)
	if err != nil {
		return nil, 0, err
	}

	if len(channels) == 1 {
		return channels[0], sampleRate, nil
	}

	frames := len(channels[0])
	out := make([]float64, frames)

	for i := 0; i < frames; i++ {
		var sum float64
		for c := range channels {
			sum += channels[c][i]
		}

		out[i] = sum / float64(len(channels))
	}

	return out, sampleRate, nil
}

// Positive full scale sits one LSB below 1 in 16-bit PCM.
const maxPCMUnit = 32767.0 / 32768.0

// WriteWAV encodes per-channel float64 samples as 16-bit PCM. Samples are
// clamped to the representable range; parent directories are created as
// needed. All channels must have equal length.
func WriteWAV(path string, channels [][]float64, sampleRate int) error {
	if len(channels) == 0 {
		return fmt.Errorf("no channels to write: %s", path)
	}

	frames := len(channels[0])
	for c := 1; c < len(channels); c++ {
		if len(channels[c]) != frames {
			return fmt.Errorf("channel length mismatch: %d vs %d", len(channels[c]), frames)
		}
	}

	data := make([]float32, frames*len(channels))
	for i := 0; i < frames; i++ {
		for c := range channels {
			data[i*len(channels)+c] = float32(clamp(channels[c][i], -1, maxPCMUnit))
		}
	}

	return writeInterleavedWAV(path, data, sampleRate, len(channels))
}

// WriteMonoWAV encodes one channel as 16-bit PCM.
func WriteMonoWAV(path string, samples []float64, sampleRate int) error {
	return WriteWAV(path, [][]float64{samples}, sampleRate)
}

func writeInterleavedWAV(path string, samples []float32, sampleRate, numChannels int) error {
	if dir := filepath.Dir(path); dir != "." {
		err := os.MkdirAll(dir, 0o755)
		if err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, numChannels, 1)
	defer enc.Close()

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: numChannels,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}

	return enc.Write(buf)
}

// ResampleIfNeeded converts samples between rates, passing the input through
// unchanged when the rates already match.
func ResampleIfNeeded(in []float64, fromRate int, toRate int) ([]float64, error) {
	if fromRate == toRate {
		return in, nil
	}

	r, err := dspresample.NewForRates(
		float64(fromRate),
		float64(toRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}

	return r.Process(in), nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
