// Package narration renders the placeholder intro clip for every language of the table.
package narration

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"narrationgen/pkg/audio"
	"narrationgen/pkg/tracker"
	"narrationgen/pkg/tts"
)

// Status is the result of a single job.
type Status string

const (
	StatusSkipped   Status = "skipped"
	StatusGenerated Status = "generated"
	StatusFailed    Status = "failed"
)

// Outcome records what happened to one job.
type Outcome struct {
	Job      Job
	Status   Status
	Err      error
	Duration time.Duration // audio length, zero when unknown
	Elapsed  time.Duration // wall time spent on synthesis
}

// Report summarizes a Generate run.
type Report struct {
	RunID     string
	VideoPath string
	BaseName  string
	OutputDir string
	Engine    string
	Outcomes  []Outcome
}

// Count returns how many outcomes have the given status.
func (r *Report) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Failed returns the outcomes that did not produce a file.
func (r *Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			out = append(out, o)
		}
	}
	return out
}

// Listener observes job progress.
type Listener interface {
	OnJobStart(job Job)
	OnJobDone(outcome Outcome)
}

// Recorder persists outcomes, e.g. to the job history.
type Recorder interface {
	RecordOutcome(ctx context.Context, report *Report, outcome Outcome) error
}

// DurationFunc probes the length of a produced audio file.
type DurationFunc func(path string) (time.Duration, error)

// Generator synthesizes the intro clips. Jobs run one at a time in table order.
type Generator struct {
	table    *Table
	provider tts.Provider
	tracker  *tracker.Tracker
	logger   *slog.Logger
	listener Listener
	recorder Recorder
	probe    DurationFunc
	newRunID func() string
}

// NewGenerator creates a generator for table using provider. Durations are probed with
// audio.GetDuration and run IDs are UTC timestamps unless replaced with the setters.
func NewGenerator(table *Table, provider tts.Provider) *Generator {
	return &Generator{
		table:    table,
		provider: provider,
		logger:   slog.Default(),
		probe:    audio.GetDuration,
		newRunID: func() string { return time.Now().UTC().Format("20060102T150405.000") },
	}
}

// SetTracker counts outcomes per engine.
func (g *Generator) SetTracker(t *tracker.Tracker) { g.tracker = t }

// SetLogger replaces the default logger.
func (g *Generator) SetLogger(l *slog.Logger) { g.logger = l }

// SetListener registers a progress listener.
func (g *Generator) SetListener(l Listener) { g.listener = l }

// SetRecorder persists every outcome.
func (g *Generator) SetRecorder(r Recorder) { g.recorder = r }

// SetDurationProbe replaces the audio length probe. A nil probe disables probing.
func (g *Generator) SetDurationProbe(fn DurationFunc) { g.probe = fn }

// SetRunID sets the run ID generator.
func (g *Generator) SetRunID(fn func() string) { g.newRunID = fn }

// Generate renders every missing intro_<code>.mp3 in outputDir.
//
// An existing file counts as done and is never inspected or regenerated. A failed
// language is logged and recorded, and the run moves on to the next one, so a later
// run retries exactly the missing files. The only error returned is context cancellation.
func (g *Generator) Generate(ctx context.Context, videoPath, outputDir string) (*Report, error) {
	report := &Report{
		RunID:     g.newRunID(),
		VideoPath: videoPath,
		BaseName:  BaseName(videoPath),
		OutputDir: outputDir,
		Engine:    g.provider.Name(),
	}

	// The base name is reported but does not take part in output naming.
	g.logger.Info("Processing video", "video", videoPath, "base_name", report.BaseName, "engine", report.Engine)

	for _, job := range g.table.Jobs(outputDir) {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if g.listener != nil {
			g.listener.OnJobStart(job)
		}
		outcome := g.run(ctx, job)
		report.Outcomes = append(report.Outcomes, outcome)

		if g.recorder != nil {
			if err := g.recorder.RecordOutcome(ctx, report, outcome); err != nil {
				g.logger.Warn("Failed to record job history", "lang", job.Language, "error", err)
			}
		}
		if g.listener != nil {
			g.listener.OnJobDone(outcome)
		}
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	g.logger.Info("Processing complete", "output", outputDir,
		"generated", report.Count(StatusGenerated),
		"skipped", report.Count(StatusSkipped),
		"failed", report.Count(StatusFailed))
	return report, nil
}

func (g *Generator) run(ctx context.Context, job Job) Outcome {
	log := g.logger.With("lang", job.Language, "voice", job.Voice, "path", job.OutputPath)

	if exists(job.OutputPath) {
		log.Info("Exists, skipping")
		g.track(StatusSkipped)
		return Outcome{Job: job, Status: StatusSkipped}
	}

	log.Info(fmt.Sprintf("Generating %s audio", DisplayName(job.Language)))
	start := time.Now()

	_, err := g.provider.Synthesize(ctx, job.Text, job.Voice, job.OutputPath)
	if err == nil {
		err = tts.VerifyAudioFile(job.OutputPath)
	}
	elapsed := time.Since(start)

	if err != nil {
		// The file did not exist before this attempt, so whatever is there now is partial.
		if rmErr := os.Remove(job.OutputPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Warn("Failed to remove partial output", "error", rmErr)
		}
		log.Error("Synthesis failed", "error", err, "service_error", tts.IsFatalError(err), "elapsed", elapsed.Round(time.Millisecond))
		g.track(StatusFailed)
		return Outcome{Job: job, Status: StatusFailed, Err: err, Elapsed: elapsed}
	}

	outcome := Outcome{Job: job, Status: StatusGenerated, Elapsed: elapsed}
	if g.probe != nil {
		if d, perr := g.probe(job.OutputPath); perr != nil {
			log.Warn("Could not read audio duration", "error", perr)
		} else {
			outcome.Duration = d
		}
	}
	log.Info("Generated", "duration", outcome.Duration.Round(time.Millisecond), "elapsed", elapsed.Round(time.Millisecond))
	g.track(StatusGenerated)
	return outcome
}

func (g *Generator) track(s Status) {
	if g.tracker == nil {
		return
	}
	name := g.provider.Name() + "/jobs"
	switch s {
	case StatusGenerated:
		g.tracker.TrackSuccess(name)
	case StatusFailed:
		g.tracker.TrackFailure(name)
	case StatusSkipped:
		g.tracker.TrackSkip(name)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
