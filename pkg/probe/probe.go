package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// CheckFunc is a function that performs a health check.
// It returns nil if the check passes, or an error if it fails.
type CheckFunc func(ctx context.Context) error

// Probe represents a single startup check.
type Probe struct {
	Name     string
	Check    CheckFunc
	Critical bool // If true, a failure here should prevent any synthesis.
}

// Result holds the outcome of a single probe.
type Result struct {
	Probe    Probe
	Error    error
	Duration time.Duration
}

// Run executes a list of probes and returns their results.
// Each check gets its own five second deadline.
func Run(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, len(probes))

	for i, p := range probes {
		start := time.Now()

		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := p.Check(checkCtx)
		cancel()

		results[i] = Result{
			Probe:    p,
			Error:    err,
			Duration: time.Since(start),
		}
	}

	return results
}

// AnalyzeResults logs the results and returns a combined error if critical probes failed.
// Non-critical failures are logged at WARN: a missing tool shows up again as a per-language failure.
func AnalyzeResults(results []Result) error {
	var criticalErrors []error

	slog.Info("Startup Checks Summary")

	for _, r := range results {
		status := "PASS"
		if r.Error != nil {
			status = "FAIL"
		}

		msg := fmt.Sprintf("[%s] %-20s (%v)", status, r.Probe.Name, r.Duration.Round(time.Millisecond))

		switch {
		case r.Error == nil:
			slog.Info(msg)
		case r.Probe.Critical:
			slog.Error(msg, "error", r.Error)
			criticalErrors = append(criticalErrors, fmt.Errorf("%s: %w", r.Probe.Name, r.Error))
		default:
			slog.Warn(msg, "error", r.Error)
		}
	}

	if len(criticalErrors) > 0 {
		return errors.Join(criticalErrors...)
	}

	return nil
}

// OutputDir checks that dir exists and is a directory. Synthesis tools write into it
// but do not create it.
func OutputDir(dir string) Probe {
	return Probe{
		Name: "Output directory",
		Check: func(ctx context.Context) error {
			info, err := os.Stat(dir)
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", dir)
			}
			return nil
		},
	}
}

// Credentials wraps an engine's configuration check, e.g. azure.Provider.Configured.
func Credentials(engine string, configured func() error) Probe {
	return Probe{
		Name:  "Credentials: " + engine,
		Check: func(ctx context.Context) error { return configured() },
	}
}

// Tool wraps a lookup of an external binary, e.g. command.Provider.Available.
func Tool(name string, available CheckFunc) Probe {
	return Probe{
		Name:  "Tool: " + strings.TrimSpace(name),
		Check: available,
	}
}
