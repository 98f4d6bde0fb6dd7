package strategy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/duke-git/lancet/v2/fileutil"
	"github.com/duke-git/lancet/v2/strutil"
	"github.com/unclesp1d3r/containercrack/lib/candidates"
	"github.com/unclesp1d3r/containercrack/lib/container"
	"github.com/unclesp1d3r/containercrack/lib/crackerrors"
	"github.com/unclesp1d3r/containercrack/lib/session"
)

// AttackKind names a candidate-generation strategy.
type AttackKind string

// Supported attack kinds.
const (
	Dictionary AttackKind = "dictionary"
	Hybrid     AttackKind = "hybrid"
	BruteForce AttackKind = "brute_force"
)

// Defaults applied by AttackConfig.WithDefaults.
const (
	DefaultCharset   = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	DefaultMinLength = 1
	DefaultMaxLength = 6
)

// DefaultMutations returns the suffixes and prefixes a hybrid attack adds to each word.
func DefaultMutations() []string {
	return []string{"", "!", "123", "1", "12", "2024", "2025", "!@#"}
}

var (
	// ErrUnknownAttack is returned for an AttackKind with no registered strategy.
	ErrUnknownAttack = errors.New("unknown attack type")
	// ErrNoWordlist is returned when a word-based attack has nothing to read.
	ErrNoWordlist = errors.New("a wordlist is required for this attack type")
	// ErrInvalidConfig is wrapped by every other validation failure.
	ErrInvalidConfig = errors.New("invalid attack configuration")
)

// ProgressFunc receives periodic snapshots of a running attack.
type ProgressFunc func(target container.Target, p session.Progress)

// AttackConfig describes one attack. It is treated as immutable once built.
type AttackConfig struct {
	Kind AttackKind
	// Wordlist is the path of the word file for dictionary and hybrid attacks.
	Wordlist string
	// Candidates, when non-nil, replaces Wordlist with an in-memory list.
	Candidates []string
	// MaxAttempts caps the attempts per target. Zero means no cap.
	MaxAttempts uint64
	// StartLine skips that many wordlist lines, or that many candidates for brute force.
	StartLine        int
	Mutations        []string
	Charset          string
	MinLength        int
	MaxLength        int
	ProgressInterval uint64
	OnProgress       ProgressFunc
}

// ParseAttackKind converts a command-line value into an AttackKind.
func ParseAttackKind(s string) (AttackKind, error) {
	k := AttackKind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := registry[k]; !ok {
		return "", fmt.Errorf("%w: %q (valid: %s)", ErrUnknownAttack, s, strings.Join(kindNames(), ", "))
	}

	return k, nil
}

// WithDefaults returns a copy of c with unset fields filled in.
func (c AttackConfig) WithDefaults() AttackConfig {
	if len(c.Mutations) == 0 {
		c.Mutations = DefaultMutations()
	}
	if c.Charset == "" {
		c.Charset = DefaultCharset
	}
	if c.MinLength == 0 {
		c.MinLength = DefaultMinLength
	}
	if c.MaxLength == 0 {
		c.MaxLength = DefaultMaxLength
	}
	if c.ProgressInterval == 0 {
		c.ProgressInterval = session.DefaultInterval
	}

	return c
}

// UsesWordlist reports whether the attack reads candidates from a word source.
func (c AttackConfig) UsesWordlist() bool {
	return c.Kind == Dictionary || c.Kind == Hybrid
}

// Source returns the word source for dictionary and hybrid attacks.
func (c AttackConfig) Source() candidates.Source {
	if c.Candidates != nil {
		return candidates.List{Label: "candidates", Values: c.Candidates}
	}

	return candidates.File{Path: c.Wordlist}
}

// Validate checks c for consistency. Call it on the result of WithDefaults.
// For word-based attacks the wordlist must exist.
func (c AttackConfig) Validate() error {
	if _, ok := registry[c.Kind]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAttack, c.Kind)
	}
	if c.StartLine < 0 {
		return fmt.Errorf("%w: start line must not be negative", ErrInvalidConfig)
	}

	switch c.Kind {
	case Dictionary, Hybrid:
		if c.Candidates != nil {
			return nil
		}
		if strutil.IsBlank(c.Wordlist) {
			return ErrNoWordlist
		}
		if !fileutil.IsExist(c.Wordlist) {
			return crackerrors.Errorf(crackerrors.KindNotFound, "open wordlist", c.Wordlist, "wordlist does not exist")
		}
		if fileutil.IsDir(c.Wordlist) {
			return crackerrors.Errorf(crackerrors.KindIOError, "open wordlist", c.Wordlist, "wordlist is a directory")
		}
	case BruteForce:
		if c.Charset == "" {
			return fmt.Errorf("%w: charset must not be empty", ErrInvalidConfig)
		}
		if c.MinLength < 1 {
			return fmt.Errorf("%w: minimum length must be at least 1", ErrInvalidConfig)
		}
		if c.MaxLength < c.MinLength {
			return fmt.Errorf("%w: maximum length %d is below minimum length %d",
				ErrInvalidConfig, c.MaxLength, c.MinLength)
		}
	}

	return nil
}
