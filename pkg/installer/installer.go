// Package installer installs the Python tooling the narration pipeline relies on.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

// DefaultPackages are installed when the config names none.
var DefaultPackages = []string{"edge-tts", "openai-whisper", "pydub"}

// Args returns the interpreter arguments for installing packages.
func Args(packages []string) []string {
	return append([]string{"-m", "pip", "install"}, packages...)
}

// InstallDependencies runs `<python> -m pip install <packages...>`, streaming the
// installer output to stdout and stderr. It is never part of the default flow.
func InstallDependencies(ctx context.Context, python string, packages []string, stdout, stderr io.Writer) error {
	if python == "" {
		python = "python3"
	}
	if len(packages) == 0 {
		packages = DefaultPackages
	}

	slog.Info("Installing dependencies", "python", python, "packages", strings.Join(packages, " "))

	cmd := exec.CommandContext(ctx, python, Args(packages)...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("pip install failed with status %d", exitErr.ExitCode())
		}
		return fmt.Errorf("pip install failed: %w", err)
	}

	slog.Info("Dependencies installed")
	return nil
}
