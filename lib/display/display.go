// Package display provides the log-line presentation of a containercrack run.
package display

import (
	"fmt"
	"math/big"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/unclesp1d3r/containercrack/lib/container"
	"github.com/unclesp1d3r/containercrack/lib/crackerrors"
	"github.com/unclesp1d3r/containercrack/lib/progress"
	"github.com/unclesp1d3r/containercrack/lib/session"
	"github.com/unclesp1d3r/containercrack/runstate"
)

const batchBarTemplate = `{{string . "prefix"}} {{counters . }} {{bar . }} {{percent . }} {{etime . }}`

// Startup logs the start of a run along with a short description of the host.
func Startup(version, hostname, platform string, cpus int) {
	runstate.Logger.Info("Starting containercrack", "version", version)
	runstate.Logger.Debug("Host", "hostname", hostname, "platform", platform, "cpus", cpus)
}

// Backends logs the compiled-in verification backends at debug level.
func Backends(names []string) {
	runstate.Logger.Debug("Backends available", "backends", strings.Join(names, ", "))
}

// WordlistFetched logs that a remote wordlist is available locally.
func WordlistFetched(src, dst string) {
	runstate.Logger.Info("Wordlist ready", "source", src, "path", dst)
}

// TargetsDiscovered logs how many supported files were found under roots.
func TargetsDiscovered(count int, roots []string) {
	runstate.Logger.Info("Targets discovered", "count", count, "roots", strings.Join(roots, ", "))
}

// AttackStarted logs the start of an attack against one target.
func AttackStarted(target container.Target, attack string) {
	runstate.Logger.Info("Attack started", "file", target.Name(), "type", target.Kind, "attack", attack)
}

// SearchSpace logs the size of a brute force search before it begins.
func SearchSpace(target container.Target, charset string, minLen, maxLen int, total *big.Int) {
	runstate.Logger.Info("Brute force search space",
		"file", target.Name(),
		"charset", charset,
		"charset_size", utf8.RuneCountInString(charset),
		"lengths", fmt.Sprintf("%d-%d", minLen, maxLen),
		"total", humanize.BigComma(total))
}

// AttackProgress logs a periodic progress snapshot for one target.
func AttackProgress(target container.Target, p session.Progress) {
	runstate.Logger.Info("Progress update",
		"file", target.Name(),
		"attempts", humanize.Comma(int64(p.Attempts)), //nolint:gosec // Attempt counts stay far below MaxInt64
		"speed", humanize.SIWithDigits(p.Rate, 2, "p/s"),
		"elapsed", progress.FormatDuration(p.Elapsed))
}

// AttemptCapReached logs that an attack stopped at its attempt cap.
func AttemptCapReached(target container.Target, limit uint64) {
	runstate.Logger.Info("Reached maximum attempts", "file", target.Name(), "max_attempts", humanize.Comma(int64(limit))) //nolint:gosec // Cap comes from a flag
}

// Outcome logs the final result of attacking one target.
func Outcome(o session.Outcome) {
	attempts := humanize.Comma(int64(o.Attempts)) //nolint:gosec // Attempt counts stay far below MaxInt64

	switch {
	case o.Success:
		runstate.Logger.Info("Password found",
			"file", o.Target.Name(),
			"password", *o.Password,
			"attempts", attempts,
			"elapsed", progress.FormatDuration(o.Elapsed),
			"speed", humanize.SIWithDigits(o.Rate(), 2, "p/s"))
	case o.Interrupted:
		runstate.Logger.Warn("Attack interrupted",
			"file", o.Target.Name(),
			"attempts", attempts,
			"resume_with", fmt.Sprintf("--start-line %d", o.ResumeLine))
	case o.Err != nil:
		runstate.Logger.Error("Attack failed",
			"file", o.Target.Name(),
			"error_kind", crackerrors.KindOf(o.Err),
			"error", o.Err)
	default:
		runstate.Logger.Info("Password not found",
			"file", o.Target.Name(),
			"attempts", attempts,
			"elapsed", progress.FormatDuration(o.Elapsed),
			"speed", humanize.SIWithDigits(o.Rate(), 2, "p/s"))
	}
}

// ReportWritten logs where the run's report files ended up.
func ReportWritten(jsonPath, textPath string) {
	runstate.Logger.Info("Report written", "results", jsonPath, "passwords", textPath)
}

// RunInterrupted logs that a signal stopped the run early.
func RunInterrupted() {
	runstate.Logger.Warn("Interrupt received, finishing current candidates")
}

// ShuttingDown logs the end of the run.
func ShuttingDown() {
	runstate.Logger.Info("Shutting down containercrack")
}

// BatchBar is a progress bar over the targets of a batch.
// The zero value and the bar returned when progress bars are disabled do nothing.
type BatchBar struct {
	bar *pb.ProgressBar
}

// NewBatchBar starts a bar for total targets when runstate.State.ShowProgressBar is set.
func NewBatchBar(total int) *BatchBar {
	if !runstate.State.ShowProgressBar || total <= 0 {
		return &BatchBar{}
	}

	bar := pb.New(total).
		SetTemplateString(batchBarTemplate).
		Set("prefix", "targets").
		SetWriter(os.Stderr).
		Start()

	return &BatchBar{bar: bar}
}

// Done advances the bar by one finished target.
func (b *BatchBar) Done() {
	if b.bar != nil {
		b.bar.Increment()
	}
}

// Finish stops the bar.
func (b *BatchBar) Finish() {
	if b.bar != nil {
		b.bar.Finish()
	}
}
