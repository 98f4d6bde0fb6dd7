package strategy

import (
	"context"
	"math/big"

	"github.com/unclesp1d3r/containercrack/lib/container"
	"github.com/unclesp1d3r/containercrack/lib/display"
	"github.com/unclesp1d3r/containercrack/lib/session"
	"github.com/unclesp1d3r/containercrack/lib/verifier"
)

// TotalCandidates returns the number of strings of length minLen..maxLen over an alphabet of charsetLen.
func TotalCandidates(charsetLen, minLen, maxLen int) *big.Int {
	total := new(big.Int)
	if charsetLen <= 0 || minLen > maxLen {
		return total
	}

	base := big.NewInt(int64(charsetLen))
	for length := minLen; length <= maxLen; length++ {
		total.Add(total, new(big.Int).Exp(base, big.NewInt(int64(length)), nil))
	}

	return total
}

type bruteForce struct {
	cfg     AttackConfig
	charset []rune
	total   *big.Int
}

func newBruteForce(cfg AttackConfig) (Strategy, error) {
	charset := []rune(cfg.Charset)

	return &bruteForce{
		cfg:     cfg,
		charset: charset,
		total:   TotalCandidates(len(charset), cfg.MinLength, cfg.MaxLength),
	}, nil
}

func (b *bruteForce) Kind() AttackKind { return BruteForce }

// Charset returns the alphabet in enumeration order. Repeated characters are kept.
func (b *bruteForce) Charset() string { return string(b.charset) }

// Total returns the size of the search space.
func (b *bruteForce) Total() *big.Int { return new(big.Int).Set(b.total) }

// Run enumerates every string from MinLength to MaxLength, shortest first and
// in charset order within a length. StartLine skips that many candidates.
func (b *bruteForce) Run(ctx context.Context, target container.Target, v verifier.Verifier) session.Outcome {
	a := newAttacker(b.cfg, target, v)
	a.sess.SetTotal(b.Total())
	display.SearchSpace(target, b.Charset(), b.cfg.MinLength, b.cfg.MaxLength, b.total)

	n := len(b.charset)
	base := big.NewInt(int64(n))
	skip := big.NewInt(int64(b.cfg.StartLine))
	consumed := b.cfg.StartLine
	buf := make([]rune, b.cfg.MaxLength)

	for length := b.cfg.MinLength; length <= b.cfg.MaxLength; length++ {
		count := new(big.Int).Exp(base, big.NewInt(int64(length)), nil)
		if skip.Cmp(count) >= 0 {
			skip.Sub(skip, count)
			continue
		}

		// skip now fits in an int64 because it started as an int.
		idx := make([]int, length)
		rest := skip.Int64()
		for i := length - 1; i >= 0; i-- {
			idx[i] = int(rest % int64(n))
			rest /= int64(n)
		}
		skip.SetInt64(0)

		for {
			for i, j := range idx {
				buf[i] = b.charset[j]
			}
			candidate := string(buf[:length])

			ok, err := a.try(ctx, candidate)
			if err != nil {
				return a.finish(nil, consumed, err)
			}
			if ok {
				return a.finish(&candidate, consumed, nil)
			}
			consumed++

			if !advance(idx, n) {
				break
			}
		}
	}

	return a.finish(nil, consumed, nil)
}

// advance steps idx to the next combination, rightmost position fastest.
// It returns false after the last combination.
func advance(idx []int, n int) bool {
	for i := len(idx) - 1; i >= 0; i-- {
		idx[i]++
		if idx[i] < n {
			return true
		}
		idx[i] = 0
	}

	return false
}
