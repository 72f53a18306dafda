package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// The codec speaks plain RIFF/WAVE with 16-bit PCM, which is what both the
// TTS subprocess produces and ffmpeg consumes for muxing. No third-party
// container features are needed.

const wavHeaderSize = 44

// EncodeWAV writes the clip as a canonical 44-byte-header WAV stream.
func EncodeWAV(w io.Writer, clip Clip) error {
	if clip.SampleRate <= 0 || clip.Channels <= 0 {
		return fmt.Errorf("cannot encode clip with rate %d and channels %d", clip.SampleRate, clip.Channels)
	}
	dataSize := len(clip.Samples) * 2
	byteRate := clip.SampleRate * clip.Channels * 2
	blockAlign := clip.Channels * 2

	var header bytes.Buffer
	header.WriteString("RIFF")
	binary.Write(&header, binary.LittleEndian, uint32(wavHeaderSize-8+dataSize))
	header.WriteString("WAVE")
	header.WriteString("fmt ")
	binary.Write(&header, binary.LittleEndian, uint32(16))
	binary.Write(&header, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&header, binary.LittleEndian, uint16(clip.Channels))
	binary.Write(&header, binary.LittleEndian, uint32(clip.SampleRate))
	binary.Write(&header, binary.LittleEndian, uint32(byteRate))
	binary.Write(&header, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&header, binary.LittleEndian, uint16(16)) // bits per sample
	header.WriteString("data")
	binary.Write(&header, binary.LittleEndian, uint32(dataSize))

	if _, err := w.Write(header.Bytes()); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, clip.Samples); err != nil {
		return fmt.Errorf("write wav samples: %w", err)
	}
	return nil
}

// WriteWAVFile encodes the clip to a file on disk.
func WriteWAVFile(path string, clip Clip) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav file: %w", err)
	}
	if err := EncodeWAV(file, clip); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// DecodeWAV parses a 16-bit PCM WAV stream into a clip.
func DecodeWAV(r io.Reader) (Clip, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Clip{}, fmt.Errorf("read wav: %w", err)
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Clip{}, fmt.Errorf("not a RIFF/WAVE stream")
	}

	var clip Clip
	sawFormat := false
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return Clip{}, fmt.Errorf("wav fmt chunk truncated")
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return Clip{}, fmt.Errorf("unsupported wav format %d (want PCM)", format)
			}
			clip.Channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			clip.SampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits := binary.LittleEndian.Uint16(data[body+14 : body+16])
			if bits != 16 {
				return Clip{}, fmt.Errorf("unsupported wav bit depth %d (want 16)", bits)
			}
			sawFormat = true
		case "data":
			if !sawFormat {
				return Clip{}, fmt.Errorf("wav data chunk before fmt chunk")
			}
			sampleCount := chunkSize / 2
			clip.Samples = make([]int16, sampleCount)
			for i := 0; i < sampleCount; i++ {
				clip.Samples[i] = int16(binary.LittleEndian.Uint16(data[body+i*2 : body+i*2+2]))
			}
			return clip, nil
		}

		// Chunks are word-aligned.
		if chunkSize%2 == 1 {
			chunkSize++
		}
		offset = body + chunkSize
	}
	return Clip{}, fmt.Errorf("wav stream has no data chunk")
}

// ReadWAVFile decodes a WAV file from disk.
func ReadWAVFile(path string) (Clip, error) {
	file, err := os.Open(path)
	if err != nil {
		return Clip{}, fmt.Errorf("open wav file: %w", err)
	}
	defer file.Close()
	return DecodeWAV(file)
}
