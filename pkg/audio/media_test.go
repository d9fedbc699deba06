package audio

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeWAV writes a silent 16-bit mono PCM file of the given length.
func writeWAV(t *testing.T, path string, sampleRate int, d time.Duration) {
	t.Helper()
	samples := int(float64(sampleRate) * d.Seconds())
	dataLen := samples * 2

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(make([]byte, dataLen))

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestGetDuration_WAVFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intro_en.mp3")
	writeWAV(t, path, 24000, 1500*time.Millisecond)

	d, err := GetDuration(path)
	require.NoError(t, err)
	assert.InDelta(t, 1500*time.Millisecond, d, float64(time.Millisecond))
}

func TestGetDuration_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := GetDuration(filepath.Join(dir, "missing.mp3"))
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.mp3")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not audio"), 0o644))
	_, err = GetDuration(garbage)
	assert.Error(t, err)
}

func TestGetDuration_MP3(t *testing.T) {
	path := filepath.Join("testdata", "intro_en.mp3")

	d, err := GetDuration(path)
	require.NoError(t, err)
	// Encoder padding varies, so only bound the length.
	assert.Greater(t, d, 100*time.Millisecond)
	assert.Less(t, d, 2*time.Second)

	streamer, format, err := DecodeMedia(path)
	require.NoError(t, err)
	defer streamer.Close()
	assert.Equal(t, 44100, int(format.SampleRate))
}
