package wordlist

// Progress tracking for downloads, after the go-getter command's pool of bars.

import (
	"io"
	"path/filepath"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"github.com/hashicorp/go-getter"
)

const downloadBarTemplate = `{{string . "prefix"}} {{counters . }} {{bar . }} {{percent . }} {{speed . }}`

// DefaultProgressBar is the shared download progress tracker.
var DefaultProgressBar getter.ProgressTracker = &progressBar{} //nolint:gochecknoglobals // Shared tracker

// progressBar shows one bar per active download in a single pool.
type progressBar struct {
	// lock everything below
	lock sync.Mutex

	pool *pb.Pool

	pbs int
}

// TrackProgress instantiates a new progress bar that will
// display the progress of stream until closed.
// total can be 0.
func (cpb *progressBar) TrackProgress(src string, currentSize, totalSize int64, stream io.ReadCloser) io.ReadCloser {
	cpb.lock.Lock()
	defer cpb.lock.Unlock()

	bar := pb.New64(totalSize).
		Set(pb.Bytes, true).
		Set("prefix", filepath.Base(src)).
		SetTemplateString(downloadBarTemplate)
	bar.SetCurrent(currentSize)

	if cpb.pool == nil {
		cpb.pool = pb.NewPool()
		_ = cpb.pool.Start() //nolint:errcheck // A pool that fails to render does not affect the download
	}
	cpb.pool.Add(bar)
	reader := bar.NewProxyReader(stream)

	cpb.pbs++

	return &readCloser{
		Reader: reader,
		close: func() error {
			cpb.lock.Lock()
			defer cpb.lock.Unlock()

			bar.Finish()
			cpb.pbs--
			if cpb.pbs <= 0 {
				_ = cpb.pool.Stop() //nolint:errcheck // See Start above
				cpb.pool = nil
			}

			return stream.Close()
		},
	}
}

type readCloser struct {
	io.Reader
	close func() error
}

func (c *readCloser) Close() error { return c.close() }
