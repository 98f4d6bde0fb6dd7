package session

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unclesp1d3r/containercrack/lib/container"
	"github.com/unclesp1d3r/containercrack/lib/crackerrors"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestSession(interval uint64) (*Session, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	target := container.Target{Path: "/tmp/a.zip", Kind: container.KindZip}

	return NewWithClock(target, interval, clock.Now), clock
}

func TestSession_Record(t *testing.T) {
	s, _ := newTestSession(10)

	s.Record(Rejected)
	s.Record(Rejected)
	s.Record(VerifierError)
	s.Record(Match)

	assert.Equal(t, uint64(4), s.Attempts(), "errors and matches count as attempts")
}

func TestSession_Due(t *testing.T) {
	s, _ := newTestSession(3)
	assert.False(t, s.Due(), "no attempts yet")

	var due []uint64
	for range 9 {
		s.Record(Rejected)
		if s.Due() {
			due = append(due, s.Attempts())
		}
	}

	assert.Equal(t, []uint64{3, 6, 9}, due)
}

func TestSession_DefaultInterval(t *testing.T) {
	s, _ := newTestSession(0)
	for range DefaultInterval - 1 {
		s.Record(Rejected)
	}
	assert.False(t, s.Due())
	s.Record(Rejected)
	assert.True(t, s.Due())
}

func TestSession_Snapshot(t *testing.T) {
	s, clock := newTestSession(10)

	snap := s.Snapshot()
	assert.Equal(t, uint64(0), snap.Attempts)
	assert.Zero(t, snap.Rate, "rate is zero when no time has passed")

	for range 50 {
		s.Record(Rejected)
	}
	clock.Advance(2 * time.Second)

	snap = s.Snapshot()
	assert.Equal(t, uint64(50), snap.Attempts)
	assert.Equal(t, 2*time.Second, snap.Elapsed)
	assert.InDelta(t, 25.0, snap.Rate, 1e-9)
}

func TestSession_FinishSuccess(t *testing.T) {
	s, clock := newTestSession(10)
	s.Record(Rejected)
	s.Record(Match)
	clock.Advance(time.Second)

	password := "hunter2"
	out := s.Finish(&password, 7, nil)
	password = "changed"

	assert.True(t, out.Success)
	require.NotNil(t, out.Password)
	assert.Equal(t, "hunter2", *out.Password, "outcome keeps its own copy")
	assert.Equal(t, uint64(2), out.Attempts)
	assert.Equal(t, time.Second, out.Elapsed)
	assert.Zero(t, out.ResumeLine)
	assert.False(t, out.Interrupted)
	assert.NoError(t, out.Err)
	assert.InDelta(t, 2.0, out.Rate(), 1e-9)
}

func TestSession_FinishNotFound(t *testing.T) {
	s, _ := newTestSession(10)
	s.Record(Rejected)
	s.SetTotal(big.NewInt(62))

	out := s.Finish(nil, 5, nil)

	assert.False(t, out.Success)
	assert.Nil(t, out.Password)
	assert.Equal(t, 5, out.ResumeLine)
	assert.Equal(t, crackerrors.KindNone, out.ErrorKind())
	assert.Equal(t, int64(62), out.Total.Int64())
}

func TestSession_FinishInterrupted(t *testing.T) {
	s, _ := newTestSession(10)
	s.Record(Rejected)

	out := s.Finish(nil, 1, context.Canceled)

	assert.True(t, out.Interrupted)
	assert.False(t, out.Success)
	assert.NoError(t, out.Err, "cancellation is not an error")
	assert.Equal(t, 1, out.ResumeLine)
}

func TestSession_FinishError(t *testing.T) {
	s, _ := newTestSession(10)
	s.Record(VerifierError)

	cause := crackerrors.New(crackerrors.KindCorrupt, "verify", "/tmp/a.zip", errors.New("bad header"))
	out := s.Finish(nil, 3, cause)

	assert.False(t, out.Success)
	assert.False(t, out.Interrupted)
	assert.Equal(t, crackerrors.KindCorrupt, out.ErrorKind())
	assert.Zero(t, out.ResumeLine)
	assert.Equal(t, uint64(1), out.Attempts)
}

func TestFailedAndNotStarted(t *testing.T) {
	target := container.Target{Path: "/tmp/x.pdf", Kind: container.KindPDF}

	failed := Failed(target, crackerrors.ErrNotFound)
	assert.Equal(t, crackerrors.KindNotFound, failed.ErrorKind())
	assert.Zero(t, failed.Attempts)

	skipped := NotStarted(target, 42)
	assert.True(t, skipped.Interrupted)
	assert.Equal(t, 42, skipped.ResumeLine)
	assert.Zero(t, skipped.Attempts)
	assert.NoError(t, skipped.Err)
}
