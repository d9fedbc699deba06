package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRun(t *testing.T) {
	probes := []Probe{
		{
			Name: "Success Probe",
			Check: func(ctx context.Context) error {
				return nil
			},
			Critical: true,
		},
		{
			Name: "Failure Probe (Non-Critical)",
			Check: func(ctx context.Context) error {
				return errors.New("minor issue")
			},
			Critical: false,
		},
	}

	results := Run(context.Background(), probes)

	if len(results) != 2 {
		t.Errorf("Expected 2 results, got %d", len(results))
	}

	if results[0].Error != nil {
		t.Errorf("Expected success probe to pass, got error: %v", results[0].Error)
	}

	if results[1].Error == nil {
		t.Error("Expected failure probe to fail, got nil")
	}
}

func TestAnalyzeResults(t *testing.T) {
	tests := []struct {
		name    string
		results []Result
		wantErr bool
	}{
		{
			name: "All Pass",
			results: []Result{
				{Probe: Probe{Name: "P1", Critical: true}, Error: nil},
			},
			wantErr: false,
		},
		{
			name: "Critical Failure",
			results: []Result{
				{Probe: Probe{Name: "P1", Critical: true}, Error: errors.New("fail")},
			},
			wantErr: true,
		},
		{
			name: "Non-Critical Failure",
			results: []Result{
				{Probe: Probe{Name: "P1", Critical: false}, Error: errors.New("fail")},
			},
			wantErr: false,
		},
		{
			name: "Mixed Failure",
			results: []Result{
				{Probe: Probe{Name: "P1", Critical: false}, Error: errors.New("fail")},
				{Probe: Probe{Name: "P2", Critical: true}, Error: errors.New("fail")},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AnalyzeResults(tt.results)
			if (err != nil) != tt.wantErr {
				t.Errorf("AnalyzeResults() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOutputDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "lesson1.mp4")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "Directory", path: dir},
		{name: "Missing", path: filepath.Join(dir, "out"), wantErr: true},
		{name: "File", path: file, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := OutputDir(tt.path)
			if p.Critical {
				t.Error("output directory probe must not be critical")
			}
			err := p.Check(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCredentialsAndTool(t *testing.T) {
	missing := errors.New("AZURE_SPEECH_KEY is not set")
	results := Run(context.Background(), []Probe{
		Credentials("azure-speech", func() error { return missing }),
		Tool("edge-tts", func(ctx context.Context) error { return nil }),
	})

	if results[0].Probe.Name != "Credentials: azure-speech" || !errors.Is(results[0].Error, missing) {
		t.Errorf("unexpected credentials result: %+v", results[0])
	}
	if results[1].Probe.Name != "Tool: edge-tts" || results[1].Error != nil {
		t.Errorf("unexpected tool result: %+v", results[1])
	}
	if err := AnalyzeResults(results); err != nil {
		t.Errorf("non-critical failures must not fail startup: %v", err)
	}
}
