// Package report aggregates batch outcomes into statistics and persists them as
// a JSON results file and a plain-text list of cracked passwords.
package report

import (
	"time"

	"github.com/unclesp1d3r/containercrack/lib/batch"
	"github.com/unclesp1d3r/containercrack/lib/progress"
)

// Record is the persisted form of one target's outcome.
type Record struct {
	File        string  `json:"file"`
	Filename    string  `json:"filename"`
	Success     bool    `json:"success"`
	Password    *string `json:"password"`
	Attempts    uint64  `json:"attempts"`
	TimeSeconds float64 `json:"time_seconds"`
	// Error is the error kind, e.g. "corrupt", or null.
	Error       *string `json:"error"`
	ErrorDetail string  `json:"error_detail,omitempty"`
	ResumeLine  int     `json:"resume_line,omitempty"`
	Interrupted bool    `json:"interrupted,omitempty"`
}

// Elapsed returns the recorded attack time.
func (r Record) Elapsed() time.Duration {
	return time.Duration(r.TimeSeconds * float64(time.Second))
}

// Report maps target paths to their records.
type Report map[string]Record

// FromResult converts batch outcomes into a Report.
func FromResult(result batch.Result) Report {
	rep := make(Report, len(result))
	for path, o := range result {
		rec := Record{
			File:        o.Target.Path,
			Filename:    o.Target.Name(),
			Success:     o.Success,
			Attempts:    o.Attempts,
			TimeSeconds: o.Elapsed.Seconds(),
			Interrupted: o.Interrupted,
		}
		if o.Success {
			p := *o.Password
			rec.Password = &p
		}
		if o.Err != nil {
			kind := o.ErrorKind().String()
			rec.Error = &kind
			rec.ErrorDetail = o.Err.Error()
		}
		if o.Interrupted || (!o.Success && o.Err == nil && o.ResumeLine > 0) {
			rec.ResumeLine = o.ResumeLine
		}
		rep[path] = rec
	}

	return rep
}

// Stats summarises a report. Failed targets are split into not found, errored and interrupted.
type Stats struct {
	Total         int
	Successful    int
	NotFound      int
	Errored       int
	Interrupted   int
	TotalAttempts uint64
	// TotalElapsed is the wall-clock duration of the run. Reports loaded from
	// disk carry no wall clock, so there it falls back to CumulativeElapsed.
	TotalElapsed time.Duration
	// CumulativeElapsed is the sum of the per-target attack times. It exceeds
	// TotalElapsed when targets ran in parallel.
	CumulativeElapsed time.Duration
	// AverageRate is TotalAttempts per second of TotalElapsed.
	AverageRate float64
}

// Failed returns the number of targets without a password.
func (s Stats) Failed() int {
	return s.NotFound + s.Errored + s.Interrupted
}

// Stats computes the statistics of rep.
func (rep Report) Stats() Stats {
	var s Stats
	for _, r := range rep {
		s.Total++
		s.TotalAttempts += r.Attempts
		s.CumulativeElapsed += r.Elapsed()

		switch {
		case r.Success:
			s.Successful++
		case r.Error != nil:
			s.Errored++
		case r.Interrupted:
			s.Interrupted++
		default:
			s.NotFound++
		}
	}
	s.TotalElapsed = s.CumulativeElapsed
	s.AverageRate = progress.Rate(s.TotalAttempts, s.TotalElapsed)

	return s
}

// WithWallClock returns s measured against the run's wall-clock duration.
// A non-positive wall leaves s unchanged.
func (s Stats) WithWallClock(wall time.Duration) Stats {
	if wall <= 0 {
		return s
	}
	s.TotalElapsed = wall
	s.AverageRate = progress.Rate(s.TotalAttempts, wall)

	return s
}

// Summarize computes the statistics of a batch result that took wall to run.
func Summarize(result batch.Result, wall time.Duration) Stats {
	return FromResult(result).Stats().WithWallClock(wall)
}
