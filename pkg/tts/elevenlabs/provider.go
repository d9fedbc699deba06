// Package elevenlabs synthesizes narration through the ElevenLabs API.
// The voice of each language table entry is used as the ElevenLabs voice ID.
package elevenlabs

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/haguro/elevenlabs-go"

	"narrationgen/pkg/config"
	"narrationgen/pkg/tracker"
	"narrationgen/pkg/tts"
)

// speaker is the part of *elevenlabs.Client the provider needs.
type speaker interface {
	TextToSpeech(voiceID string, ttsReq elevenlabs.TextToSpeechRequest, queries ...elevenlabs.QueryFunc) ([]byte, error)
}

// Provider implements tts.Provider for ElevenLabs.
type Provider struct {
	key     string
	model   string
	timeout time.Duration
	tracker *tracker.Tracker

	newClient func(ctx context.Context) speaker
}

// NewProvider creates a new ElevenLabs provider.
func NewProvider(cfg config.ElevenLabsConfig, t *tracker.Tracker) *Provider {
	p := &Provider{
		key:     cfg.Key,
		model:   cfg.Model,
		timeout: cfg.Timeout.Std(),
		tracker: t,
	}
	if p.timeout <= 0 {
		p.timeout = 30 * time.Second
	}
	p.newClient = func(ctx context.Context) speaker {
		return elevenlabs.NewClient(ctx, p.key, p.timeout)
	}
	return p
}

// Name implements tts.Provider.
func (p *Provider) Name() string {
	return config.EngineElevenLabs
}

// Configured reports whether an API key is set.
func (p *Provider) Configured() error {
	if p.key == "" {
		return fmt.Errorf("elevenlabs needs an API key (ELEVENLABS_API_KEY)")
	}
	return nil
}

// Synthesize requests speech for text and writes the returned mp3 to outputPath.
func (p *Provider) Synthesize(ctx context.Context, text, voiceID, outputPath string) (string, error) {
	if voiceID == "" {
		return "", fmt.Errorf("voice ID is required")
	}
	if err := p.Configured(); err != nil {
		p.fail()
		return "", err
	}

	req := elevenlabs.TextToSpeechRequest{
		Text:    text,
		ModelID: p.model,
		VoiceSettings: &elevenlabs.VoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
			SpeakerBoost:    true,
		},
	}

	speech, err := p.newClient(ctx).TextToSpeech(voiceID, req)
	if err != nil {
		tts.Log("ELEVENLABS", voiceID, text, 0, err)
		p.fail()
		return "", fmt.Errorf("elevenlabs request failed: %w", err)
	}
	if len(speech) == 0 {
		tts.Log("ELEVENLABS", voiceID, text, 204, nil)
		p.fail()
		return "", fmt.Errorf("elevenlabs returned no audio")
	}

	if err := os.WriteFile(outputPath, speech, 0o644); err != nil {
		p.fail()
		return "", fmt.Errorf("failed to write audio to file: %w", err)
	}

	tts.Log("ELEVENLABS", voiceID, text, 200, nil)
	if p.tracker != nil {
		p.tracker.TrackSuccess(p.Name())
	}
	return "mp3", nil
}

func (p *Provider) fail() {
	if p.tracker != nil {
		p.tracker.TrackFailure(p.Name())
	}
}

// Voices returns ElevenLabs premade voices that read Hindi and English with the multilingual model.
func (p *Provider) Voices(ctx context.Context) ([]tts.Voice, error) {
	return []tts.Voice{
		{ID: "21m00Tcm4TlvDq8ikWAM", Name: "Rachel", Language: "multilingual", IsNeural: true},
		{ID: "EXAVITQu4vr4xnSDxMaL", Name: "Sarah", Language: "multilingual", IsNeural: true},
	}, nil
}
