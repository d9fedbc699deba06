package installer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPython writes a shell script that records its arguments and exits with code.
func stubPython(t *testing.T, code int) (bin, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub interpreter needs a POSIX shell")
	}
	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args")
	bin = filepath.Join(dir, "python")
	script := "#!/bin/sh\nfor a in \"$@\"; do echo \"$a\" >> " + argsFile + "; done\necho collecting\necho warning >&2\nexit " + strconv.Itoa(code) + "\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))
	return bin, argsFile
}

func TestInstallDependencies(t *testing.T) {
	bin, argsFile := stubPython(t, 0)
	var stdout, stderr bytes.Buffer

	err := InstallDependencies(context.Background(), bin, nil, &stdout, &stderr)
	require.NoError(t, err)

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"-m", "pip", "install", "edge-tts", "openai-whisper", "pydub"},
		strings.Fields(string(data)))
	assert.Equal(t, "collecting\n", stdout.String())
	assert.Equal(t, "warning\n", stderr.String())
}

func TestInstallDependencies_CustomPackages(t *testing.T) {
	bin, argsFile := stubPython(t, 0)

	err := InstallDependencies(context.Background(), bin, []string{"edge-tts==6.1.9"}, &bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(t, err)

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"-m", "pip", "install", "edge-tts==6.1.9"}, strings.Fields(string(data)))
}

func TestInstallDependencies_Failure(t *testing.T) {
	bin, _ := stubPython(t, 3)

	err := InstallDependencies(context.Background(), bin, nil, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 3")
}

func TestInstallDependencies_MissingInterpreter(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-python")

	err := InstallDependencies(context.Background(), missing, nil, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pip install failed")
}

func TestArgs(t *testing.T) {
	assert.Equal(t, []string{"-m", "pip", "install", "a", "b"}, Args([]string{"a", "b"}))
}
