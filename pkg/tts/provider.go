package tts

import (
	"context"
	"errors"
)

const (
	// MinAudioSize is the minimum size of a synthesized audio file (1KB).
	// Files smaller than this are likely failed synthesis attempts.
	MinAudioSize = 1024
)

// Provider defines the interface for Text-To-Speech engines.
type Provider interface {
	// Name returns the engine name used in logs and usage stats.
	Name() string

	// Synthesize generates audio from text and writes it to outputPath.
	// Returns the audio format ("mp3") and error.
	Synthesize(ctx context.Context, text, voice, outputPath string) (string, error)

	// Voices returns the voices the provider knows about.
	Voices(ctx context.Context) ([]Voice, error)
}

// Voice represents an available TTS voice.
type Voice struct {
	ID       string
	Name     string
	Language string
	IsNeural bool
}

// FatalError represents a TTS error reported by the remote service itself.
// Examples: rate limits (429), server errors (5xx), auth failures (401/403).
type FatalError struct {
	StatusCode int
	Message    string
}

func (e *FatalError) Error() string {
	return e.Message
}

// NewFatalError creates a new FatalError with the given status code and message.
func NewFatalError(statusCode int, message string) *FatalError {
	return &FatalError{StatusCode: statusCode, Message: message}
}

// IsFatalError checks if an error is, or wraps, a TTS fatal error.
func IsFatalError(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
