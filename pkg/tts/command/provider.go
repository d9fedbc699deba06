// Package command drives an external text-to-speech CLI such as edge-tts.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"narrationgen/pkg/config"
	"narrationgen/pkg/logging"
	"narrationgen/pkg/tracker"
	"narrationgen/pkg/tts"
)

// ErrToolNotFound is returned when the synthesis binary is not installed.
var ErrToolNotFound = errors.New("synthesis tool not found")

// maxStderr caps how much tool output is quoted in an error.
const maxStderr = 512

// waitDelay bounds how long Wait lingers on pipes held open by orphaned children after a kill.
const waitDelay = 2 * time.Second

// Provider implements tts.Provider by spawning the synthesis CLI once per call:
//
//	<binary> --text <text> --voice <voice> --write-media <outputPath>
type Provider struct {
	binary  string
	timeout time.Duration
	tracker *tracker.Tracker
}

// NewProvider creates a provider for the configured binary.
func NewProvider(cfg config.CommandConfig, t *tracker.Tracker) *Provider {
	binary := cfg.Binary
	if binary == "" {
		binary = "edge-tts"
	}
	return &Provider{binary: binary, timeout: cfg.Timeout.Std(), tracker: t}
}

// Name implements tts.Provider.
func (p *Provider) Name() string {
	return config.EngineCommand
}

// Binary returns the program the provider runs.
func (p *Provider) Binary() string {
	return p.binary
}

// Args returns the argument vector passed to the binary.
func Args(text, voice, outputPath string) []string {
	return []string{"--text", text, "--voice", voice, "--write-media", outputPath}
}

// Synthesize runs the tool and waits for it to exit. A non-zero exit is an error.
func (p *Provider) Synthesize(ctx context.Context, text, voice, outputPath string) (string, error) {
	if voice == "" {
		return "", fmt.Errorf("voice ID is required")
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	// Arguments go straight to the process, so quotes in the text need no escaping.
	cmd := exec.CommandContext(ctx, p.binary, Args(text, voice, outputPath)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	slog.Debug("Running synthesis tool", "binary", p.binary, "voice", voice, "output", outputPath)
	logging.TraceDefault("Synthesis tool argv", "args", cmd.Args)
	err := cmd.Run()
	if err != nil {
		err = p.wrapError(ctx, err, stderr.String())
		tts.Log("COMMAND", voice, text, exitCode(cmd), err)
		if p.tracker != nil {
			p.tracker.TrackFailure(p.Name())
		}
		return "", err
	}

	tts.Log("COMMAND", voice, text, 0, nil)
	if p.tracker != nil {
		p.tracker.TrackSuccess(p.Name())
	}
	return "mp3", nil
}

func (p *Provider) wrapError(ctx context.Context, err error, stderr string) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s: %v", ErrToolNotFound, p.binary, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s interrupted: %w", p.binary, ctxErr)
	}

	stderr = strings.TrimSpace(stderr)
	if len(stderr) > maxStderr {
		stderr = stderr[len(stderr)-maxStderr:]
	}
	if stderr == "" {
		return fmt.Errorf("%s failed: %w", p.binary, err)
	}
	return fmt.Errorf("%s failed: %w: %s", p.binary, err, stderr)
}

func exitCode(cmd *exec.Cmd) int {
	if cmd.ProcessState == nil {
		return -1
	}
	return cmd.ProcessState.ExitCode()
}

// Voices returns the voices of the default language table. The CLI can list
// more with --list-voices, but that needs network access.
func (p *Provider) Voices(ctx context.Context) ([]tts.Voice, error) {
	return []tts.Voice{
		{ID: "hi-IN-SwaraNeural", Name: "Swara (India)", Language: "hi-IN", IsNeural: true},
		{ID: "hi-IN-MadhurNeural", Name: "Madhur (India)", Language: "hi-IN", IsNeural: true},
		{ID: "en-IN-NeerjaNeural", Name: "Neerja (India)", Language: "en-IN", IsNeural: true},
		{ID: "en-IN-PrabhatNeural", Name: "Prabhat (India)", Language: "en-IN", IsNeural: true},
	}, nil
}

// Available reports whether the binary can be found on PATH.
func (p *Provider) Available(ctx context.Context) error {
	if _, err := exec.LookPath(p.binary); err != nil {
		return fmt.Errorf("%w: %s", ErrToolNotFound, p.binary)
	}
	return nil
}
