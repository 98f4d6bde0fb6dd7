// Package session counts the attempts made against one target and builds the
// immutable outcome of an attack.
package session

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/unclesp1d3r/containercrack/lib/container"
	"github.com/unclesp1d3r/containercrack/lib/crackerrors"
	"github.com/unclesp1d3r/containercrack/lib/progress"
)

// DefaultInterval is the number of attempts between progress snapshots.
const DefaultInterval uint64 = 1000

// Result is the outcome of a single verify call.
type Result int

const (
	// Rejected means the verifier ran and the candidate was wrong.
	Rejected Result = iota
	// Match means the candidate opened the container.
	Match
	// VerifierError means the verifier failed to give an answer.
	VerifierError
)

// Progress is a point-in-time view of a running session.
type Progress struct {
	Attempts uint64
	Elapsed  time.Duration
	Rate     float64
}

// Outcome is the final result of attacking one target.
type Outcome struct {
	Target      container.Target
	Success     bool
	Password    *string
	Attempts    uint64
	Elapsed     time.Duration
	Err         error
	Interrupted bool
	// ResumeLine is the StartLine that continues an interrupted or capped run.
	ResumeLine int
	// Total is the size of the candidate space when it is known up front.
	Total *big.Int
}

// Rate returns attempts per second over the whole attack.
func (o Outcome) Rate() float64 {
	return progress.Rate(o.Attempts, o.Elapsed)
}

// ErrorKind classifies Err. It is KindNone for successful and not-found outcomes.
func (o Outcome) ErrorKind() crackerrors.Kind {
	return crackerrors.KindOf(o.Err)
}

// Failed builds the outcome of a target that errored before any attempt.
func Failed(target container.Target, err error) Outcome {
	return Outcome{Target: target, Err: err}
}

// NotStarted builds the outcome of a target that was never reached because the run was cancelled.
func NotStarted(target container.Target, startLine int) Outcome {
	return Outcome{Target: target, Interrupted: true, ResumeLine: startLine}
}

// Clock returns the current time.
type Clock func() time.Time

// Session tracks one attack against one target. It is owned by a single goroutine.
type Session struct {
	target    container.Target
	interval  uint64
	now       Clock
	startedAt time.Time
	attempts  uint64
	total     *big.Int
}

// New starts a session using the wall clock.
func New(target container.Target, interval uint64) *Session {
	return NewWithClock(target, interval, time.Now)
}

// NewWithClock starts a session that reads time from now.
func NewWithClock(target container.Target, interval uint64, now Clock) *Session {
	if interval == 0 {
		interval = DefaultInterval
	}
	if now == nil {
		now = time.Now
	}

	return &Session{target: target, interval: interval, now: now, startedAt: now()}
}

// Target returns the target under attack.
func (s *Session) Target() container.Target { return s.target }

// SetTotal records the size of the candidate space.
func (s *Session) SetTotal(total *big.Int) { s.total = total }

// Record counts one verify call. Every result, errors included, counts as an attempt.
func (s *Session) Record(Result) {
	s.attempts++
}

// Attempts returns the number of verify calls so far.
func (s *Session) Attempts() uint64 { return s.attempts }

// Due reports whether a progress snapshot should be emitted after the latest attempt.
func (s *Session) Due() bool {
	return s.attempts > 0 && s.attempts%s.interval == 0
}

// Snapshot returns the progress so far.
func (s *Session) Snapshot() Progress {
	elapsed := s.now().Sub(s.startedAt)

	return Progress{Attempts: s.attempts, Elapsed: elapsed, Rate: progress.Rate(s.attempts, elapsed)}
}

// Finish builds the outcome from the session.
//
// A context error in err marks the outcome interrupted rather than failed.
// resume is recorded for interrupted and unsuccessful runs only.
func (s *Session) Finish(password *string, resume int, err error) Outcome {
	snap := s.Snapshot()
	out := Outcome{
		Target:   s.target,
		Attempts: snap.Attempts,
		Elapsed:  snap.Elapsed,
		Total:    s.total,
	}

	switch {
	case err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		out.Interrupted = true
		out.ResumeLine = resume
	case err != nil:
		out.Err = err
	case password != nil:
		p := *password
		out.Success = true
		out.Password = &p
	default:
		out.ResumeLine = resume
	}

	return out
}
