package azure

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"narrationgen/pkg/config"
	"narrationgen/pkg/tracker"
	"narrationgen/pkg/tts"
)

// Provider implements tts.Provider for Azure Speech.
type Provider struct {
	key     string
	region  string
	client  *http.Client
	url     string
	tracker *tracker.Tracker
}

// NewProvider creates a new Azure Speech TTS provider.
func NewProvider(cfg config.AzureSpeechConfig, t *tracker.Tracker) *Provider {
	url := fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", cfg.Region)
	return &Provider{
		key:     cfg.Key,
		region:  cfg.Region,
		client:  &http.Client{Timeout: 2 * time.Minute},
		url:     url,
		tracker: t,
	}
}

// Name implements tts.Provider.
func (p *Provider) Name() string {
	return config.EngineAzure
}

// Configured reports whether a key and region are set.
func (p *Provider) Configured() error {
	if p.key == "" || p.region == "" {
		return fmt.Errorf("azure speech needs a key and region (AZURE_SPEECH_KEY, AZURE_SPEECH_REGION)")
	}
	return nil
}

// Synthesize generates speech from text using Azure Speech.
func (p *Provider) Synthesize(ctx context.Context, text, voiceID, outputPath string) (string, error) {
	if voiceID == "" {
		return "", fmt.Errorf("no voice ID given for Azure Speech")
	}
	if err := p.Configured(); err != nil {
		p.fail()
		return "", err
	}

	ssml := buildSSML(voiceID, text)

	req, err := http.NewRequestWithContext(ctx, "POST", p.url, bytes.NewBufferString(ssml))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Ocp-Apim-Subscription-Key", p.key)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", "audio-24khz-160kbitrate-mono-mp3")
	req.Header.Set("User-Agent", "narrationgen")

	resp, err := p.client.Do(req)
	if err != nil {
		tts.Log("AZURE", voiceID, ssml, 0, err)
		p.fail()
		return "", fmt.Errorf("api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		tts.Log("AZURE", voiceID, ssml, resp.StatusCode, nil)
		body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
		bodyStr := string(body)
		if err != nil {
			bodyStr = fmt.Sprintf("[failed to read body: %v]", err)
		}
		if bodyStr == "" {
			bodyStr = "[empty body]"
		}
		p.fail()

		errMsg := fmt.Sprintf("azure speech api error (status %d): %s", resp.StatusCode, bodyStr)
		return "", tts.NewFatalError(resp.StatusCode, errMsg)
	}

	tts.Log("AZURE", voiceID, ssml, 200, nil)

	f, err := os.Create(outputPath)
	if err != nil {
		p.fail()
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		p.fail()
		return "", fmt.Errorf("failed to write audio to file: %w", err)
	}

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

// Voices returns the Azure neural voices for the default language table.
func (p *Provider) Voices(ctx context.Context) ([]tts.Voice, error) {
	return []tts.Voice{
		{ID: "hi-IN-SwaraNeural", Name: "Swara", Language: "hi-IN", IsNeural: true},
		{ID: "en-IN-NeerjaNeural", Name: "Neerja", Language: "en-IN", IsNeural: true},
	}, nil
}

func buildSSML(voiceID, text string) string {
	lang := tts.VoiceLocale(voiceID, "en-US")
	return fmt.Sprintf(
		`<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xmlns:mstts='https://www.w3.org/2001/mstts' xml:lang='%s'><voice name='%s'>%s</voice></speak>`,
		lang, voiceID, tts.EscapeXML(text),
	)
}
