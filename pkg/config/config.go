package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Default placeholder texts used when no transcript is available.
const (
	DefaultEnglishText = "This is a placeholder audio for the financial literacy lesson. Please provide a transcript to generate full audio."
	DefaultHindiText   = "यह वित्तीय साक्षरता पाठ के लिए एक नमूना ऑडियो है। कृपया पूर्ण ऑडियो उत्पन्न करने के लिए एक प्रतिलेख प्रदान करें।"
)

// Supported TTS engines.
const (
	EngineCommand    = "edge-tts-cli"
	EngineEdgeTTS    = "edge-tts"
	EngineAzure      = "azure-speech"
	EngineElevenLabs = "elevenlabs"
)

// Config holds the application configuration.
type Config struct {
	Narration NarrationConfig `yaml:"narration"`
	TTS       TTSConfig       `yaml:"tts"`
	Log       LogConfig       `yaml:"log"`
	History   HistoryConfig   `yaml:"history"`
	Installer InstallerConfig `yaml:"installer"`
}

// LanguageConfig maps a short language code to a synthesis voice.
type LanguageConfig struct {
	Code  string `yaml:"code"`  // e.g. "hi"
	Voice string `yaml:"voice"` // e.g. "hi-IN-SwaraNeural"
}

// NarrationConfig holds the language table and placeholder texts.
type NarrationConfig struct {
	Languages   []LanguageConfig  `yaml:"languages"`
	DefaultText string            `yaml:"default_text"`
	Texts       map[string]string `yaml:"texts"` // per-language override of default_text
}

// CommandConfig holds settings for the external synthesis CLI.
type CommandConfig struct {
	Binary  string   `yaml:"binary"`
	Timeout Duration `yaml:"timeout"` // 0 disables the timeout
}

// EdgeTTSConfig holds connection settings for the native Edge TTS engine.
// Empty fields fall back to the EDGE_TTS_* environment variables.
type EdgeTTSConfig struct {
	BaseURL            string `yaml:"base_url"`
	Origin             string `yaml:"origin"`
	UserAgent          string `yaml:"user_agent"`
	TrustedClientToken string `yaml:"trusted_client_token"`
	SecMSGecVersion    string `yaml:"sec_ms_gec_version"`
}

// AzureSpeechConfig holds settings for Azure Speech TTS.
type AzureSpeechConfig struct {
	Key    string `yaml:"key"`
	Region string `yaml:"region"` // e.g., "eastus"
}

// ElevenLabsConfig holds settings for ElevenLabs TTS.
type ElevenLabsConfig struct {
	Key     string   `yaml:"key"`
	Model   string   `yaml:"model"`
	Timeout Duration `yaml:"timeout"`
}

// TTSConfig holds Text-To-Speech settings.
type TTSConfig struct {
	Engine      string            `yaml:"engine"`
	Command     CommandConfig     `yaml:"command"`
	EdgeTTS     EdgeTTSConfig     `yaml:"edge_tts"`
	AzureSpeech AzureSpeechConfig `yaml:"azure_speech"`
	ElevenLabs  ElevenLabsConfig  `yaml:"elevenlabs"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server LogSettings `yaml:"server"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// HistoryConfig controls optional records of synthesis attempts.
type HistoryConfig struct {
	TTS HistorySettings `yaml:"tts"` // plain-text prompt log
	DB  HistorySettings `yaml:"db"`  // sqlite job ledger
}

// HistorySettings toggles a history sink.
type HistorySettings struct {
	Enabled   bool     `yaml:"enabled"`
	Path      string   `yaml:"path"`
	Retention Duration `yaml:"retention,omitempty"` // db only; 0 keeps rows forever
}

// InstallerConfig holds settings for the dependency installer.
type InstallerConfig struct {
	Python   string   `yaml:"python"`
	Packages []string `yaml:"packages"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Narration: NarrationConfig{
			Languages: []LanguageConfig{
				{Code: "hi", Voice: "hi-IN-SwaraNeural"},
				{Code: "en", Voice: "en-IN-NeerjaNeural"},
			},
			DefaultText: DefaultEnglishText,
			Texts: map[string]string{
				"hi": DefaultHindiText,
			},
		},
		TTS: TTSConfig{
			Engine: EngineCommand,
			Command: CommandConfig{
				Binary: "edge-tts",
			},
			ElevenLabs: ElevenLabsConfig{
				Model:   "eleven_multilingual_v2",
				Timeout: Duration(30 * time.Second),
			},
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "", // console only; set e.g. ./logs/narrationgen.log to keep a file
				Level: "INFO",
			},
		},
		History: HistoryConfig{
			TTS: HistorySettings{
				Enabled: false,
				Path:    "./logs/tts.log",
			},
			DB: HistorySettings{
				Enabled:   false,
				Path:      "./data/narrationgen.db",
				Retention: Duration(30 * 24 * time.Hour),
			},
		},
		Installer: InstallerConfig{
			Python:   "python3",
			Packages: []string{"edge-tts", "openai-whisper", "pydub"},
		},
	}
}

// Load loads the configuration from the given path.
// A missing file is not an error: the defaults are returned unchanged and nothing is written.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			// yaml.v3 replaces slices but merges maps, so a custom table replaces the
			// default one while per-language texts extend the defaults.
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case os.IsNotExist(err):
			// defaults
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv fills empty credentials from the environment. Values are never written back to disk.
func applyEnv(cfg *Config) {
	if cfg.TTS.AzureSpeech.Key == "" {
		cfg.TTS.AzureSpeech.Key = os.Getenv("AZURE_SPEECH_KEY")
	}
	if cfg.TTS.AzureSpeech.Region == "" {
		cfg.TTS.AzureSpeech.Region = os.Getenv("AZURE_SPEECH_REGION")
	}
	if cfg.TTS.ElevenLabs.Key == "" {
		cfg.TTS.ElevenLabs.Key = os.Getenv("ELEVENLABS_API_KEY")
	}

	e := &cfg.TTS.EdgeTTS
	for _, f := range []struct {
		dst *string
		env string
	}{
		{&e.BaseURL, "EDGE_TTS_BASE_URL"},
		{&e.Origin, "EDGE_TTS_ORIGIN"},
		{&e.UserAgent, "EDGE_TTS_USER_AGENT"},
		{&e.TrustedClientToken, "EDGE_TTS_TRUSTED_CLIENT_TOKEN"},
		{&e.SecMSGecVersion, "EDGE_TTS_SEC_MS_GEC_VERSION"},
	} {
		if *f.dst == "" {
			*f.dst = os.Getenv(f.env)
		}
	}
}

// Validate checks the language table and engine selection.
func (c *Config) Validate() error {
	if len(c.Narration.Languages) == 0 {
		return fmt.Errorf("narration.languages must not be empty")
	}
	seen := make(map[string]bool, len(c.Narration.Languages))
	for i, l := range c.Narration.Languages {
		if l.Code == "" || l.Voice == "" {
			return fmt.Errorf("narration.languages[%d]: code and voice are required", i)
		}
		if _, err := language.Parse(l.Code); err != nil {
			return fmt.Errorf("narration.languages[%d]: invalid language code %q: %w", i, l.Code, err)
		}
		if seen[l.Code] {
			return fmt.Errorf("narration.languages[%d]: duplicate language code %q", i, l.Code)
		}
		seen[l.Code] = true
	}
	if strings.TrimSpace(c.Narration.DefaultText) == "" {
		return fmt.Errorf("narration.default_text must not be empty")
	}

	switch c.TTS.Engine {
	case EngineCommand, EngineEdgeTTS, EngineAzure, EngineElevenLabs:
	default:
		return fmt.Errorf("unknown tts engine %q", c.TTS.Engine)
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# narrationgen configuration
# ---------------------------
# Output files are written as <output>/intro_<code>.mp3 for every entry in narration.languages.
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)

`)
	data = append(header, data...)

	reEngine := regexp.MustCompile(`(?m)^(\s+)engine:`)
	data = reEngine.ReplaceAll(data, []byte("${1}# Options: edge-tts-cli, edge-tts, azure-speech, elevenlabs\n${1}engine:"))

	reTimeout := regexp.MustCompile(`(?m)^(\s+)timeout: 0s`)
	data = reTimeout.ReplaceAll(data, []byte("${1}# 0s waits for the tool indefinitely\n${1}timeout: 0s"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
