package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	silenceThreshold = int16(500)
	maxUtteranceSecs = 10
)

// utteranceRecorder accumulates samples until speech is followed by a second
// of silence, or the length cap is reached.
type utteranceRecorder struct {
	sampleRate int
	samples    []int16
	silence    int
	speech     bool
}

func newUtteranceRecorder(sampleRate int) *utteranceRecorder {
	return &utteranceRecorder{
		sampleRate: sampleRate,
		samples:    make([]int16, 0, sampleRate*5),
	}
}

// add appends a chunk and reports whether the utterance is complete.
func (r *utteranceRecorder) add(chunk []int16) bool {
	r.samples = append(r.samples, chunk...)

	loud := false
	for _, s := range chunk {
		if s > silenceThreshold || s < -silenceThreshold {
			loud = true
			break
		}
	}

	if loud {
		r.speech = true
		r.silence = 0
	} else {
		r.silence += len(chunk)
	}

	if r.speech && r.silence > r.sampleRate && len(r.samples) > r.sampleRate {
		return true
	}
	return len(r.samples) > r.sampleRate*maxUtteranceSecs
}

func (r *utteranceRecorder) heardSpeech() bool {
	return r.speech
}

func samplesToWav(samples []int16, sampleRate int) ([]byte, error) {
	var buf bytes.Buffer

	dataSize := len(samples) * 2

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, int32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, int32(16))
	binary.Write(&buf, binary.LittleEndian, int16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, int16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, int32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, int32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, int16(2))
	binary.Write(&buf, binary.LittleEndian, int16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, int32(dataSize))
	if err := binary.Write(&buf, binary.LittleEndian, samples); err != nil {
		return nil, fmt.Errorf("writing samples: %w", err)
	}

	return buf.Bytes(), nil
}

// EncodeWAV wraps 16-bit mono samples in a WAV container.
func EncodeWAV(samples []int16, sampleRate int) ([]byte, error) {
	return samplesToWav(samples, sampleRate)
}

// PCMFromWAV returns the raw sample bytes and sample rate of a 16-bit PCM WAV file.
func PCMFromWAV(data []byte) ([]byte, int, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, errors.New("not a WAV file")
	}

	var sampleRate int
	var bitsPerSample uint16
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if size < 0 || body+size > len(data) {
			size = len(data) - body
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, errors.New("short fmt chunk")
			}
			if format := binary.LittleEndian.Uint16(data[body : body+2]); format != 1 {
				return nil, 0, fmt.Errorf("unsupported WAV encoding %d", format)
			}
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = binary.LittleEndian.Uint16(data[body+14 : body+16])
		case "data":
			if sampleRate == 0 {
				return nil, 0, errors.New("data chunk before fmt chunk")
			}
			if bitsPerSample != 16 {
				return nil, 0, fmt.Errorf("unsupported bit depth %d", bitsPerSample)
			}
			return data[body : body+size], sampleRate, nil
		}

		pos = body + size + size%2
	}
	return nil, 0, errors.New("WAV file has no data chunk")
}
