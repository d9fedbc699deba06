package tts

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	logPath = "logs/tts.log"
	enabled = false
	mu      sync.RWMutex
)

// SetLogPath configures the path for the TTS history log file.
func SetLogPath(path string) {
	mu.Lock()
	defer mu.Unlock()
	logPath = path
}

// SetEnabled toggles the TTS history log. It is off by default.
func SetEnabled(on bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = on
}

// Log appends the synthesized prompt and its outcome to the history log.
// Every provider calls it so failed prompts can be replayed by hand.
func Log(provider, voice, prompt string, status int, err error) {
	mu.RLock()
	path, on := logPath, enabled
	mu.RUnlock()
	if !on || path == "" {
		return
	}

	_ = os.MkdirAll(filepath.Dir(path), 0o755)

	f, fileErr := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if fileErr != nil {
		return
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	statusStr := fmt.Sprintf("%d", status)
	if err != nil {
		statusStr = fmt.Sprintf("ERROR(%v)", err)
	}

	// Format: [TIMESTAMP] [PROVIDER] VOICE: <voice> STATUS: <code> | PROMPT: <prompt>
	entry := fmt.Sprintf("[%s] [%s] VOICE: %s STATUS: %s\nPROMPT:\n%s\n--------------------------------------------------\n",
		timestamp, provider, voice, statusStr, prompt)

	_, _ = f.WriteString(entry)
}
