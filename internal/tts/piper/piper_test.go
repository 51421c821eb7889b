package piper

import (
	"bufio"
	"bytes"
	"net"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/tts"
)

// fakePiper answers one synthesize request per connection with the given
// PCM split over two audio-chunk events.
func fakePiper(t *testing.T, pcm []byte, rate int, requests chan<- event) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				evt, _, err := readEvent(bufio.NewReader(c))
				if err != nil {
					return
				}
				requests <- *evt
				format := map[string]any{"rate": rate, "width": 2, "channels": 1}
				_ = writeEvent(c, event{Type: "audio-start", Data: format}, nil)
				half := len(pcm) / 2
				_ = writeEvent(c, event{Type: "audio-chunk", Data: format}, pcm[:half])
				_ = writeEvent(c, event{Type: "audio-chunk", Data: format}, pcm[half:])
				_ = writeEvent(c, event{Type: "audio-stop"}, nil)
			}(conn)
		}
	}()
	return ln.Addr().String()
}

func TestWyomingRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeEvent(&buf, event{Type: "audio-chunk", Data: map[string]any{"rate": 16000}}, []byte{1, 2, 3}))

	evt, payload, err := readEvent(bufio.NewReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, "audio-chunk", evt.Type)
	assert.Equal(t, 16000, evt.intField("rate", 0))
	assert.Equal(t, 7, evt.intField("missing", 7))
	assert.Equal(t, []byte{1, 2, 3}, payload)

	_, _, err = readEvent(bufio.NewReader(bytes.NewBufferString("garbage\n")))
	assert.Error(t, err)
}

func TestSynthesizeSegment(t *testing.T) {
	pcm := make([]byte, 400)
	for i := range pcm {
		pcm[i] = byte(i)
	}
	requests := make(chan event, 1)
	addr := fakePiper(t, pcm, 16000, requests)

	s := New(config.PiperConfig{Endpoint: "tcp://" + addr})
	audio, err := s.SynthesizeSegment(t.Context(), "namaste", tts.SynthesizeOpts{Language: "hi-IN"})
	require.NoError(t, err)

	req := <-requests
	assert.Equal(t, "synthesize", req.Type)
	assert.Equal(t, "namaste", req.Data["text"])
	assert.Equal(t, map[string]any{"name": "hi_IN-pratham-medium"}, req.Data["voice"])

	dec := wav.NewDecoder(bytes.NewReader(audio))
	require.True(t, dec.IsValidFile())
	assert.Equal(t, uint32(16000), dec.SampleRate)
	assert.Equal(t, uint16(1), dec.NumChans)
	assert.Equal(t, uint16(16), dec.BitDepth)
	assert.Equal(t, pcm, audio[44:])
}

func TestSynthesizeSegment_EndpointSelection(t *testing.T) {
	requests := make(chan event, 1)
	addr := fakePiper(t, make([]byte, 8), 22050, requests)

	s := New(config.PiperConfig{
		Endpoints: map[string]string{"fr": addr},
		Voices:    map[string]string{"fr": "fr_FR-siwis-medium"},
	})

	_, err := s.SynthesizeSegment(t.Context(), "bonjour", tts.SynthesizeOpts{Language: "fr"})
	require.NoError(t, err)
	req := <-requests
	assert.Equal(t, map[string]any{"name": "fr_FR-siwis-medium"}, req.Data["voice"])

	_, err = s.SynthesizeSegment(t.Context(), "hello", tts.SynthesizeOpts{Language: "en"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no piper endpoint")
}
