package tts

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// pcmFormat describes interleaved little-endian PCM data.
type pcmFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// segment is one decoded WAV chunk.
type segment struct {
	format pcmFormat
	pcm    []byte
	frames int
}

// decodeSegment extracts the PCM sample data and format from a WAV file.
func decodeSegment(data []byte) (*segment, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("decoding segment: not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding segment: %w", err)
	}

	format := pcmFormat{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}
	if format.Channels <= 0 || format.BitDepth <= 0 || format.BitDepth%8 != 0 {
		return nil, fmt.Errorf("decoding segment: unsupported format %+v", format)
	}

	return &segment{
		format: format,
		pcm:    pcmBytes(buf, format.BitDepth/8),
		frames: len(buf.Data) / format.Channels,
	}, nil
}

// pcmBytes serializes decoded samples as little-endian PCM.
func pcmBytes(buf *audio.IntBuffer, width int) []byte {
	pcm := make([]byte, len(buf.Data)*width)
	for i, v := range buf.Data {
		putSample(pcm[i*width:], v, width)
	}
	return pcm
}

// putSample writes one sample as little-endian PCM of the given byte width.
func putSample(dst []byte, v, width int) {
	switch width {
	case 1:
		dst[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(dst, uint16(int16(v)))
	case 3:
		u := uint32(int32(v))
		dst[0] = byte(u)
		dst[1] = byte(u >> 8)
		dst[2] = byte(u >> 16)
	default:
		binary.LittleEndian.PutUint32(dst, uint32(int32(v)))
	}
}

// pcmToWAV wraps raw PCM data in a WAV container.
func pcmToWAV(pcm []byte, f pcmFormat) []byte {
	bytesPerSample := f.BitDepth / 8
	dataLen := len(pcm)
	fileLen := 36 + dataLen // 44-byte header minus the 8-byte RIFF preamble

	buf := &bytes.Buffer{}
	buf.Grow(44 + dataLen)

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(fileLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(buf, binary.LittleEndian, uint16(f.Channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(f.SampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(f.SampleRate*f.Channels*bytesPerSample))
	_ = binary.Write(buf, binary.LittleEndian, uint16(f.Channels*bytesPerSample))
	_ = binary.Write(buf, binary.LittleEndian, uint16(f.BitDepth))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(pcm)

	return buf.Bytes()
}

// EncodeWAV wraps little-endian PCM samples in a WAV container. Backends that
// receive raw PCM (e.g., Piper) use it to produce a segment.
func EncodeWAV(pcm []byte, sampleRate, channels, bitDepth int) []byte {
	return pcmToWAV(pcm, pcmFormat{SampleRate: sampleRate, Channels: channels, BitDepth: bitDepth})
}
