package tts

import (
	"fmt"
	"os"
	"strings"
)

// VerifyAudioFile checks that a synthesis run left a plausible audio file behind.
func VerifyAudioFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("audio file missing: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("audio path %s is a directory", path)
	}
	if info.Size() < MinAudioSize {
		return fmt.Errorf("audio file %s too small (%d bytes, min %d)", path, info.Size(), MinAudioSize)
	}
	return nil
}

// VoiceLocale returns the locale prefix of a neural voice name,
// e.g. "hi-IN" for "hi-IN-SwaraNeural". It returns fallback when the name has no locale.
func VoiceLocale(voice, fallback string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) < 3 || len(parts[0]) < 2 || len(parts[1]) != 2 {
		return fallback
	}
	return parts[0] + "-" + strings.ToUpper(parts[1])
}

// EscapeXML escapes text for use inside an SSML element.
func EscapeXML(text string) string {
	return xmlReplacer.Replace(text)
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)
