package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that reads and writes day (d) and week (w) units in YAML.
type Duration time.Duration

const (
	Day  = 24 * time.Hour
	Week = 7 * Day
)

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler. Whole days are written as "<n>d".
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d Duration) String() string {
	std := time.Duration(d)
	if std != 0 && std%Day == 0 {
		return strconv.FormatInt(int64(std/Day), 10) + "d"
	}
	return std.String()
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ParseDuration parses a Go duration string extended with d and w units.
// The empty string is zero.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if !strings.ContainsAny(s, "dw") {
		return time.ParseDuration(s)
	}
	return parseExtendedDuration(s)
}

var (
	durationTerm = regexp.MustCompile(`([0-9]*\.?[0-9]+)(ns|us|µs|ms|s|m|h|d|w)`)
	unitMap      = map[string]time.Duration{
		"ns": time.Nanosecond,
		"us": time.Microsecond,
		"µs": time.Microsecond,
		"ms": time.Millisecond,
		"s":  time.Second,
		"m":  time.Minute,
		"h":  time.Hour,
		"d":  Day,
		"w":  Week,
	}
)

func parseExtendedDuration(s string) (time.Duration, error) {
	matches := durationTerm.FindAllStringSubmatch(s, -1)

	var total time.Duration
	var consumed strings.Builder
	for _, m := range matches {
		consumed.WriteString(m[0])
		val, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number in duration %q: %w", s, err)
		}
		total += time.Duration(val * float64(unitMap[m[2]]))
	}

	// Every character must belong to a term, so "1d junk" is rejected.
	if len(matches) == 0 || consumed.String() != s {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}
	return total, nil
}
