package config

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"10s", 10 * time.Second, false},
		{"1m", 1 * time.Minute, false},
		{"1.5h", 90 * time.Minute, false},
		{"1d", 24 * time.Hour, false},
		{"1w", 168 * time.Hour, false},
		{"2d2h", 50 * time.Hour, false},
		{"100ms", 100 * time.Millisecond, false},
		{"", 0, false},
		{"30d", 30 * 24 * time.Hour, false},
		{"0.5d", 12 * time.Hour, false},
		{"invalid", 0, true},
		{"1d junk", 0, true},
		{"7x", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDuration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestDurationYAML(t *testing.T) {
	type timeouts struct {
		Command Duration `yaml:"command"`
	}

	var cfg timeouts
	if err := yaml.Unmarshal([]byte("command: 2m\n"), &cfg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if cfg.Command.Std() != 2*time.Minute {
		t.Errorf("Expected 2m, got %v", cfg.Command.Std())
	}

	out, err := yaml.Marshal(timeouts{Command: Duration(90 * time.Second)})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != "command: 1m30s\n" {
		t.Errorf("unexpected YAML: %q", out)
	}
}

func TestDurationString(t *testing.T) {
	tests := map[Duration]string{
		0:                          "0s",
		Duration(90 * time.Second): "1m30s",
		Duration(30 * Day):         "30d",
		Duration(36 * time.Hour):   "36h0m0s",
		Duration(Week):             "7d",
	}
	for d, want := range tests {
		if got := d.String(); got != want {
			t.Errorf("Duration(%d).String() = %q, want %q", int64(d), got, want)
		}
	}

	// Written values read back unchanged.
	for d := range tests {
		back, err := ParseDuration(d.String())
		if err != nil || Duration(back) != d {
			t.Errorf("round trip of %q gave %v, %v", d.String(), back, err)
		}
	}
}
