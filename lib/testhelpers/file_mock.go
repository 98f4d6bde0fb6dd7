package testhelpers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/duke-git/lancet/v2/cryptor"
)

// CreateTestFile creates a test file with the specified content in the given directory.
// Returns the full file path.
func CreateTestFile(t *testing.T, dir, filename string, content []byte) string {
	t.Helper()
	filePath := filepath.Join(dir, filename)
	if err := os.WriteFile(filePath, content, 0o600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return filePath
}

// CreateWordlist writes words one per line to words.txt in dir and returns its path.
func CreateWordlist(t *testing.T, dir string, words ...string) string {
	t.Helper()
	return CreateTestFile(t, dir, "words.txt", []byte(strings.Join(words, "\n")+"\n"))
}

// DownloadServer is an httptest server that serves files from a directory and
// counts the GET requests it answered.
type DownloadServer struct {
	*httptest.Server
	gets atomic.Int64
}

// Gets returns the number of GET requests served.
func (s *DownloadServer) Gets() int64 { return s.gets.Load() }

// MockDownloadServer creates a test HTTP server that serves files from baseDir.
// The server is closed via t.Cleanup().
func MockDownloadServer(t *testing.T, baseDir string) *DownloadServer {
	t.Helper()
	ds := &DownloadServer{}
	ds.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filename := filepath.Base(r.URL.Path)
		filePath := filepath.Join(baseDir, filename)

		file, err := os.Open(filePath)
		if err != nil {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		defer file.Close()

		w.Header().Set("Content-Type", "application/octet-stream")
		if r.Method != http.MethodGet {
			return
		}
		ds.gets.Add(1)
		_, _ = io.Copy(w, file)
	}))

	t.Cleanup(func() {
		ds.Close()
	})

	return ds
}

// CalculateTestChecksum returns the MD5 of content as a hex string, the format
// accepted for wordlist checksums.
func CalculateTestChecksum(content []byte) string {
	return cryptor.Md5String(string(content))
}
