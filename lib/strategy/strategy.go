// Package strategy generates candidates for a target and drives them through a verifier.
//
// Every strategy stops at the first match, honours the attempt cap, checks the
// context before each candidate and aborts the target on the first verifier error.
// An interrupted or capped run reports the StartLine that continues it.
package strategy

import (
	"context"
	"errors"
	"sort"

	"github.com/unclesp1d3r/containercrack/lib/candidates"
	"github.com/unclesp1d3r/containercrack/lib/container"
	"github.com/unclesp1d3r/containercrack/lib/display"
	"github.com/unclesp1d3r/containercrack/lib/session"
	"github.com/unclesp1d3r/containercrack/lib/verifier"
	"github.com/unclesp1d3r/containercrack/runstate"
)

// Strategy attacks one target at a time. Instances are not shared between goroutines.
type Strategy interface {
	Kind() AttackKind
	Run(ctx context.Context, target container.Target, v verifier.Verifier) session.Outcome
}

// Constructor builds a Strategy from a defaulted, validated config.
type Constructor func(cfg AttackConfig) (Strategy, error)

var registry = map[AttackKind]Constructor{ //nolint:gochecknoglobals // Strategy registry
	Dictionary: newDictionary,
	Hybrid:     newHybrid,
	BruteForce: newBruteForce,
}

// New applies defaults to cfg, validates it and builds the matching strategy.
func New(cfg AttackConfig) (Strategy, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return registry[cfg.Kind](cfg)
}

// Kinds lists the registered attack kinds in name order.
func Kinds() []AttackKind {
	kinds := make([]AttackKind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	return kinds
}

func kindNames() []string {
	kinds := Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}

	return names
}

// errCapped stops an attack that reached MaxAttempts. It never leaves the package.
var errCapped = errors.New("attempt cap reached")

// attacker holds the per-target state shared by all strategies.
type attacker struct {
	cfg      AttackConfig
	sess     *session.Session
	verifier verifier.Verifier
	progress ProgressFunc
}

func newAttacker(cfg AttackConfig, target container.Target, v verifier.Verifier) *attacker {
	progress := cfg.OnProgress
	if progress == nil {
		progress = display.AttackProgress
	}

	return &attacker{
		cfg:      cfg,
		sess:     session.New(target, cfg.ProgressInterval),
		verifier: v,
		progress: progress,
	}
}

// try verifies one candidate.
func (a *attacker) try(ctx context.Context, candidate string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if a.cfg.MaxAttempts > 0 && a.sess.Attempts() >= a.cfg.MaxAttempts {
		return false, errCapped
	}

	ok, err := a.verifier.Verify(candidate)
	switch {
	case err != nil:
		a.sess.Record(session.VerifierError)
		return false, err
	case ok:
		a.sess.Record(session.Match)
		return true, nil
	}

	a.sess.Record(session.Rejected)
	if runstate.State.ExtraDebugging {
		runstate.Logger.Debug("Candidate rejected", "target", a.sess.Target().Path, "candidate", candidate)
	}
	if a.sess.Due() {
		a.progress(a.sess.Target(), a.sess.Snapshot())
	}

	return false, nil
}

func (a *attacker) finish(password *string, resume int, err error) session.Outcome {
	if errors.Is(err, errCapped) {
		display.AttemptCapReached(a.sess.Target(), a.cfg.MaxAttempts)
		err = nil
	}

	return a.sess.Finish(password, resume, err)
}

// walk feeds every word after StartLine through expand and tries the results in order.
// resume is the last line whose expansions were all tried.
func (a *attacker) walk(ctx context.Context, src candidates.Source,
	expand func(word string) []string,
) (password *string, resume int, err error) {
	resume = a.cfg.StartLine

	it, err := src.Open()
	if err != nil {
		return nil, resume, err
	}
	defer func() {
		if cerr := it.Close(); cerr != nil {
			runstate.Logger.Debug("Error closing candidate source", "source", src.Name(), "error", cerr)
		}
	}()

	for it.Next() {
		c := it.Candidate()
		if c.Line <= a.cfg.StartLine {
			continue
		}

		for _, candidate := range expand(c.Value) {
			ok, err := a.try(ctx, candidate)
			if err != nil {
				return nil, resume, err
			}
			if ok {
				return &candidate, resume, nil
			}
		}
		resume = c.Line
	}

	return nil, resume, it.Err()
}

type dictionary struct {
	cfg AttackConfig
	src candidates.Source
}

func newDictionary(cfg AttackConfig) (Strategy, error) {
	return &dictionary{cfg: cfg, src: cfg.Source()}, nil
}

func (d *dictionary) Kind() AttackKind { return Dictionary }

// Run tries each word as-is.
func (d *dictionary) Run(ctx context.Context, target container.Target, v verifier.Verifier) session.Outcome {
	a := newAttacker(d.cfg, target, v)
	password, resume, err := a.walk(ctx, d.src, func(word string) []string {
		return []string{word}
	})

	return a.finish(password, resume, err)
}

type hybrid struct {
	cfg       AttackConfig
	src       candidates.Source
	mutations []string
}

func newHybrid(cfg AttackConfig) (Strategy, error) {
	return &hybrid{cfg: cfg, src: cfg.Source(), mutations: cfg.Mutations}, nil
}

func (h *hybrid) Kind() AttackKind { return Hybrid }

// Run tries word+m then m+word for every mutation m. An empty mutation is tried twice.
func (h *hybrid) Run(ctx context.Context, target container.Target, v verifier.Verifier) session.Outcome {
	a := newAttacker(h.cfg, target, v)
	buf := make([]string, 0, 2*len(h.mutations))
	password, resume, err := a.walk(ctx, h.src, func(word string) []string {
		buf = buf[:0]
		for _, m := range h.mutations {
			buf = append(buf, word+m, m+word)
		}

		return buf
	})

	return a.finish(password, resume, err)
}
