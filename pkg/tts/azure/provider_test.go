package azure

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"narrationgen/pkg/config"
	"narrationgen/pkg/tracker"
	"narrationgen/pkg/tts"
)

func TestProvider_Structure(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.AzureSpeechConfig
		tracker *tracker.Tracker
		wantErr bool
	}{
		{
			name:    "With Tracker",
			cfg:     config.AzureSpeechConfig{Key: "fake-key", Region: "centralindia"},
			tracker: tracker.New(),
		},
		{
			name:    "Missing Region",
			cfg:     config.AzureSpeechConfig{Key: "fake-key"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProvider(tt.cfg, tt.tracker)
			if p == nil {
				t.Fatal("NewProvider returned nil")
			}
			if p.tracker != tt.tracker {
				t.Error("Tracker not assigned correctly")
			}
			if p.region != tt.cfg.Region {
				t.Errorf("Region = %q, want %q", p.region, tt.cfg.Region)
			}
			if (p.Configured() != nil) != tt.wantErr {
				t.Errorf("Configured() = %v, wantErr %v", p.Configured(), tt.wantErr)
			}
		})
	}
}

var _ tts.Provider = (*Provider)(nil)

func TestBuildSSML(t *testing.T) {
	got := buildSSML("hi-IN-SwaraNeural", `नमस्ते <"friends">`)
	assert.Contains(t, got, "xml:lang='hi-IN'")
	assert.Contains(t, got, "<voice name='hi-IN-SwaraNeural'>नमस्ते &lt;&quot;friends&quot;&gt;</voice>")
}

func newTestProvider(t *testing.T, h http.HandlerFunc) (*Provider, *tracker.Tracker) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	tr := tracker.New()
	p := NewProvider(config.AzureSpeechConfig{Key: "k", Region: "centralindia"}, tr)
	p.url = srv.URL
	p.client = srv.Client()
	return p, tr
}

func TestSynthesize_Success(t *testing.T) {
	audio := strings.Repeat("A", 2048)
	p, tr := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.Header.Get("Ocp-Apim-Subscription-Key"))
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "en-IN-NeerjaNeural")
		_, _ = w.Write([]byte(audio))
	})

	out := filepath.Join(t.TempDir(), "intro_en.mp3")
	format, err := p.Synthesize(context.Background(), "Hello", "en-IN-NeerjaNeural", out)
	require.NoError(t, err)
	assert.Equal(t, "mp3", format)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, audio, string(content))
	assert.EqualValues(t, 1, tr.Snapshot()[config.EngineAzure].Generated)
}

func TestSynthesize_HTTPError(t *testing.T) {
	p, tr := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	out := filepath.Join(t.TempDir(), "intro_en.mp3")
	_, err := p.Synthesize(context.Background(), "Hello", "en-IN-NeerjaNeural", out)
	require.Error(t, err)
	assert.True(t, tts.IsFatalError(err))
	assert.Contains(t, err.Error(), "quota exceeded")

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no file should be created on HTTP errors")
	assert.EqualValues(t, 1, tr.Snapshot()[config.EngineAzure].Failed)
}
