package narration

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"narrationgen/pkg/config"
)

// Language is one entry of the language table.
type Language struct {
	Code  string
	Voice string
}

// Table is the ordered, read-only language table.
type Table struct {
	langs       []Language
	defaultText string
	texts       map[string]string
}

// NewTable builds a table from config. The entries and texts are copied, so later
// changes to cfg do not affect the table.
func NewTable(cfg config.NarrationConfig) *Table {
	t := &Table{
		langs:       make([]Language, 0, len(cfg.Languages)),
		defaultText: cfg.DefaultText,
		texts:       make(map[string]string, len(cfg.Texts)),
	}
	for _, l := range cfg.Languages {
		t.langs = append(t.langs, Language{Code: l.Code, Voice: l.Voice})
	}
	for code, text := range cfg.Texts {
		t.texts[code] = text
	}
	return t
}

// DefaultTable is the built-in Hindi and English table.
func DefaultTable() *Table {
	return NewTable(config.DefaultConfig().Narration)
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.langs)
}

// TextFor returns the placeholder text for a language code, falling back to the default text.
func (t *Table) TextFor(code string) string {
	if text, ok := t.texts[code]; ok && text != "" {
		return text
	}
	return t.defaultText
}

// Job is one unit of work: a single language rendered to a single file.
type Job struct {
	Language   string
	Voice      string
	OutputPath string
	Text       string
}

// Jobs derives the jobs for outputDir in table order.
func (t *Table) Jobs(outputDir string) []Job {
	jobs := make([]Job, 0, len(t.langs))
	for _, l := range t.langs {
		jobs = append(jobs, Job{
			Language:   l.Code,
			Voice:      l.Voice,
			OutputPath: OutputPath(outputDir, l.Code),
			Text:       t.TextFor(l.Code),
		})
	}
	return jobs
}

// OutputPath returns <outputDir>/intro_<code>.mp3.
func OutputPath(outputDir, code string) string {
	return filepath.Join(outputDir, fmt.Sprintf("intro_%s.mp3", code))
}

// BaseName returns the video file name without its extension.
func BaseName(videoPath string) string {
	base := filepath.Base(videoPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DisplayName returns the English name of a language code, e.g. "Hindi" for "hi".
// Unknown codes are returned unchanged.
func DisplayName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}
