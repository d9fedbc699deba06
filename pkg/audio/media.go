// Package audio inspects synthesized narration files.
package audio

import (
	"fmt"
	"os"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
)

// GetDuration returns the duration of the audio file at the given path.
// It decodes the stream and calculates the duration from its sample length.
func GetDuration(path string) (time.Duration, error) {
	streamer, format, err := DecodeMedia(path)
	if err != nil {
		return 0, err
	}
	defer streamer.Close()

	if format.SampleRate == 0 {
		return 0, fmt.Errorf("audio file %s reports no sample rate", path)
	}
	return format.SampleRate.D(streamer.Len()), nil
}

// DecodeMedia opens path as MP3, falling back to WAV for engines that ignore the extension.
func DecodeMedia(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	streamer, format, mp3Err := mp3.Decode(f)
	if mp3Err == nil {
		return streamer, format, nil
	}
	f.Close()

	// MP3 decode failure leaves the read offset undefined, so reopen.
	f, err = os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	streamer, format, wavErr := wav.Decode(f)
	if wavErr != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: not mp3 (%v), not wav (%w)", path, mp3Err, wavErr)
	}
	return streamer, format, nil
}
