package tts

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history", "tts.log")
	SetLogPath(path)
	defer SetLogPath("logs/tts.log")

	SetEnabled(false)
	Log("TEST", "hi-IN-SwaraNeural", "disabled prompt", 200, nil)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("log written while disabled")
	}

	SetEnabled(true)
	defer SetEnabled(false)
	Log("TEST", "hi-IN-SwaraNeural", "first prompt", 200, nil)
	Log("TEST", "en-IN-NeerjaNeural", "second prompt", 0, errors.New("boom"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		"[TEST] VOICE: hi-IN-SwaraNeural STATUS: 200",
		"first prompt",
		"STATUS: ERROR(boom)",
		"second prompt",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("log missing %q", want)
		}
	}
}
