//go:build !nozip

package verifier

import (
	"bytes"
	"io"
	"os"

	"github.com/unclesp1d3r/containercrack/lib/container"
	"github.com/unclesp1d3r/containercrack/lib/crackerrors"
	"github.com/yeka/zip"
)

func init() {
	Default.Register(ZipBackend{})
}

// ZipBackend verifies passwords for ZIP archives using ZipCrypto or WinZip AES.
type ZipBackend struct{}

// Kind implements Backend.
func (ZipBackend) Kind() container.Kind { return container.KindZip }

// Name implements Backend.
func (ZipBackend) Name() string { return "zip (ZipCrypto, WinZip AES)" }

// Open loads the archive into memory and selects the first file entry.
// Archives without encrypted entries open every candidate.
func (ZipBackend) Open(path string) (Verifier, error) {
	if _, err := container.CheckSignature(path, container.KindZip); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, crackerrors.FromFS("read", path, err)
	}

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, crackerrors.New(crackerrors.KindCorrupt, "open", path, err)
	}

	var first *zip.File
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		first = f
		break
	}
	if first == nil {
		return nil, crackerrors.Errorf(crackerrors.KindCorrupt, "open", path, "archive has no file entries")
	}

	if !first.IsEncrypted() {
		return acceptAll{}, nil
	}

	return &zipVerifier{path: path, entry: first}, nil
}

type zipVerifier struct {
	path  string
	entry *zip.File
}

// Verify extracts the whole first entry under candidate. Any decryption,
// authentication, decompression or checksum failure is a rejection.
func (v *zipVerifier) Verify(candidate string) (bool, error) {
	v.entry.SetPassword(candidate)

	rc, err := v.entry.Open()
	if err != nil {
		return false, nil //nolint:nilerr // wrong password
	}
	defer func() { _ = rc.Close() }()

	if _, err := io.Copy(io.Discard, rc); err != nil {
		return false, nil //nolint:nilerr // wrong password
	}

	return true, nil
}

func (v *zipVerifier) Close() error {
	v.entry = nil
	return nil
}
