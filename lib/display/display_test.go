package display

import (
	"bytes"
	"errors"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/unclesp1d3r/containercrack/lib/container"
	"github.com/unclesp1d3r/containercrack/lib/crackerrors"
	"github.com/unclesp1d3r/containercrack/lib/session"
	"github.com/unclesp1d3r/containercrack/runstate"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	runstate.Logger.SetOutput(&buf)
	t.Cleanup(func() { runstate.Logger.SetOutput(os.Stdout) })

	return &buf
}

func TestOutcome(t *testing.T) {
	target := container.Target{Path: "/data/a.zip", Kind: container.KindZip}
	password := "hunter2"

	tests := []struct {
		name    string
		outcome session.Outcome
		want    []string
	}{
		{
			name:    "success",
			outcome: session.Outcome{Target: target, Success: true, Password: &password, Attempts: 1234, Elapsed: time.Second},
			want:    []string{"Password found", "hunter2", "1,234"},
		},
		{
			name:    "interrupted",
			outcome: session.Outcome{Target: target, Interrupted: true, Attempts: 10, ResumeLine: 42},
			want:    []string{"Attack interrupted", "--start-line 42"},
		},
		{
			name:    "error",
			outcome: session.Failed(target, crackerrors.New(crackerrors.KindCorrupt, "open", target.Path, errors.New("bad header"))),
			want:    []string{"Attack failed", "corrupt", "bad header"},
		},
		{
			name:    "not found",
			outcome: session.Outcome{Target: target, Attempts: 3, Elapsed: time.Second},
			want:    []string{"Password not found", "a.zip"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)
			Outcome(tt.outcome)
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestSearchSpace(t *testing.T) {
	buf := captureLogs(t)
	total, _ := new(big.Int).SetString("5117422739938208349194", 10)

	SearchSpace(container.Target{Path: "/x/b.pdf", Kind: container.KindPDF}, "0123456789", 1, 11, total)

	assert.Contains(t, buf.String(), "5,117,422,739,938,208,349,194")
	assert.Contains(t, buf.String(), "charset=0123456789")
	assert.Contains(t, buf.String(), "charset_size=10")
}

func TestBatchBar_DisabledIsNoop(t *testing.T) {
	runstate.State.ShowProgressBar = false

	bar := NewBatchBar(3)
	assert.NotPanics(t, func() {
		bar.Done()
		bar.Finish()
	})

	var zero BatchBar
	assert.NotPanics(t, zero.Done)
}
