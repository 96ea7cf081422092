package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"
)

// writeArtifact turns buffered capture blocks into a mono 16-bit PCM WAV
// file at targetRate and returns its path. Blocks are concatenated in
// arrival order; multi-channel audio keeps only the first channel.
func writeArtifact(chunks [][]float32, channels, nativeRate, targetRate int) (string, error) {
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	samples := make([]float32, 0, total)
	for _, c := range chunks {
		samples = append(samples, c...)
	}

	if channels > 1 {
		samples = firstChannel(samples, channels)
	}

	if nativeRate != targetRate {
		samples = resampleLinear(samples, nativeRate, targetRate)
	}

	path := artifactPath()
	if err := writeWAV(path, pcm16(samples), targetRate); err != nil {
		return "", err
	}
	return path, nil
}

// firstChannel extracts channel 0 from interleaved samples.
func firstChannel(interleaved []float32, channels int) []float32 {
	mono := make([]float32, 0, len(interleaved)/channels)
	for i := 0; i < len(interleaved); i += channels {
		mono = append(mono, interleaved[i])
	}
	return mono
}

// resampleLinear converts samples from one rate to another by linear
// interpolation. The output length is round(n*to/from), preserving
// duration to within one sample period.
func resampleLinear(in []float32, from, to int) []float32 {
	if from == to || len(in) == 0 {
		out := make([]float32, len(in))
		copy(out, in)
		return out
	}

	n := int(math.Round(float64(len(in)) * float64(to) / float64(from)))
	if n < 1 {
		n = 1
	}

	out := make([]float32, n)
	ratio := float64(from) / float64(to)
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = in[j] + (in[j+1]-in[j])*frac
	}
	return out
}

// pcm16 converts float32 samples in [-1, 1] to signed 16-bit PCM.
// Values are clamped and scaled by 32767, truncating toward zero.
func pcm16(in []float32) []int16 {
	out := make([]int16, len(in))
	for i, v := range in {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		out[i] = int16(v * 32767)
	}
	return out
}

// writeWAV writes mono 16-bit little-endian PCM samples as a standard
// uncompressed WAV container.
func writeWAV(path string, samples []int16, rate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating artifact file: %w", err)
	}

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		enc.Close()
		f.Close()
		os.Remove(path)
		return fmt.Errorf("writing WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("finalizing WAV file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("closing artifact file: %w", err)
	}
	return nil
}

// artifactPath returns a fresh temp path for a recording artifact.
func artifactPath() string {
	return filepath.Join(os.TempDir(), "transcribe-"+uuid.NewString()+".wav")
}
