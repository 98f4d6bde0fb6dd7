package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/duke-git/lancet/v2/fileutil"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/unclesp1d3r/containercrack/lib/batch"
	"github.com/unclesp1d3r/containercrack/lib/crackerrors"
	"github.com/unclesp1d3r/containercrack/lib/progress"
	"github.com/unclesp1d3r/containercrack/runstate"
)

const (
	reportFilePermissions = 0o600 // Reports can hold recovered passwords
	timestampLayout       = "20060102_150405"
	ruleWidth             = 80
)

// Meta identifies the run a report belongs to.
type Meta struct {
	RunID      string
	Attack     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewMeta returns metadata for a run starting now.
func NewMeta(attack string) Meta {
	return Meta{RunID: uuid.NewString(), Attack: attack, StartedAt: time.Now()}
}

// Finish marks the end of the run.
func (m *Meta) Finish() {
	m.FinishedAt = time.Now()
}

// Elapsed returns the wall-clock duration of the run, or 0 before Finish.
func (m Meta) Elapsed() time.Duration {
	if m.FinishedAt.IsZero() || m.FinishedAt.Before(m.StartedAt) {
		return 0
	}

	return m.FinishedAt.Sub(m.StartedAt)
}

// Paths are the files written by Write.
type Paths struct {
	Results   string
	Passwords string
}

// Write stores result under dir as results_<ts>.json and cracked_passwords_<ts>.txt,
// where ts is taken from meta.StartedAt. dir is created if needed.
func Write(dir string, result batch.Result, meta Meta) (Paths, error) {
	if !fileutil.IsExist(dir) {
		if err := fileutil.CreateDir(dir); err != nil {
			return Paths{}, crackerrors.New(crackerrors.KindIOError, "create report directory", dir, err)
		}
	}

	ts := meta.StartedAt.Format(timestampLayout)
	paths := Paths{
		Results:   filepath.Join(dir, fmt.Sprintf("results_%s.json", ts)),
		Passwords: filepath.Join(dir, fmt.Sprintf("cracked_passwords_%s.txt", ts)),
	}

	rep := FromResult(result)

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return Paths{}, fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := writeFileAtomic(paths.Results, data); err != nil {
		return Paths{}, err
	}

	if err := writeFileAtomic(paths.Passwords, []byte(formatPasswords(rep, meta))); err != nil {
		return Paths{}, err
	}

	return paths, nil
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, reportFilePermissions); err != nil {
		return crackerrors.New(crackerrors.KindIOError, "write report", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		if removeErr := os.Remove(tmpPath); removeErr != nil && !os.IsNotExist(removeErr) {
			runstate.Logger.Warn("Failed to clean up temp report file", "error", removeErr, "path", tmpPath)
		}

		return crackerrors.New(crackerrors.KindIOError, "write report", path, err)
	}

	return nil
}

func formatPasswords(rep Report, meta Meta) string {
	var b strings.Builder

	b.WriteString("CRACKED PASSWORDS\n")
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	fmt.Fprintf(&b, "Run: %s\n", meta.RunID)
	fmt.Fprintf(&b, "Attack: %s\n", meta.Attack)
	fmt.Fprintf(&b, "Started: %s\n", meta.StartedAt.Format(time.RFC3339))
	if wall := meta.Elapsed(); wall > 0 {
		fmt.Fprintf(&b, "Elapsed: %s\n", progress.FormatDuration(wall))
	}
	b.WriteString("\n")

	for _, path := range rep.Paths() {
		r := rep[path]
		if !r.Success {
			continue
		}
		fmt.Fprintf(&b, "File: %s\n", r.Filename)
		fmt.Fprintf(&b, "Password: %s\n", *r.Password)
		fmt.Fprintf(&b, "Attempts: %s\n", humanize.Comma(int64(r.Attempts))) //nolint:gosec // Attempt counts stay far below MaxInt64
		fmt.Fprintf(&b, "Time: %.2fs\n", r.TimeSeconds)
		b.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	}

	return b.String()
}

// Load reads a results file written by Write.
func Load(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, crackerrors.FromFS("load report", path, err)
	}

	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, crackerrors.New(crackerrors.KindCorrupt, "load report", path, err)
	}

	return rep, nil
}
