package tts

import (
	"os"
	"path/filepath"
	"testing"
)

func TestVerifyAudioFile(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("FileDoesNotExist", func(t *testing.T) {
		if err := VerifyAudioFile(filepath.Join(tmpDir, "missing.mp3")); err == nil {
			t.Error("expected error for missing file, got nil")
		}
	})

	t.Run("FileTooSmall", func(t *testing.T) {
		path := filepath.Join(tmpDir, "small.mp3")
		if err := os.WriteFile(path, make([]byte, 512), 0o644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}
		if err := VerifyAudioFile(path); err == nil {
			t.Error("expected error for small file, got nil")
		}
	})

	t.Run("Directory", func(t *testing.T) {
		if err := VerifyAudioFile(tmpDir); err == nil {
			t.Error("expected error for directory, got nil")
		}
	})

	t.Run("FileValid", func(t *testing.T) {
		path := filepath.Join(tmpDir, "valid.mp3")
		if err := os.WriteFile(path, make([]byte, MinAudioSize+1), 0o644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}
		if err := VerifyAudioFile(path); err != nil {
			t.Errorf("expected no error for valid file, got: %v", err)
		}
	})
}

func TestVoiceLocale(t *testing.T) {
	tests := []struct {
		voice, want string
	}{
		{"hi-IN-SwaraNeural", "hi-IN"},
		{"en-IN-NeerjaNeural", "en-IN"},
		{"fil-ph-AngeloNeural", "fil-PH"},
		{"21m00Tcm4TlvDq8ikWAM", "en-US"},
		{"", "en-US"},
	}
	for _, tt := range tests {
		if got := VoiceLocale(tt.voice, "en-US"); got != tt.want {
			t.Errorf("VoiceLocale(%q) = %q, want %q", tt.voice, got, tt.want)
		}
	}
}

func TestEscapeXML(t *testing.T) {
	got := EscapeXML(`Ben & Jerry's <b>"x"</b>`)
	want := "Ben &amp; Jerry&apos;s &lt;b&gt;&quot;x&quot;&lt;/b&gt;"
	if got != want {
		t.Errorf("EscapeXML() = %q, want %q", got, want)
	}
}
