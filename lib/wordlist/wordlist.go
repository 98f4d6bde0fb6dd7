// Package wordlist resolves the wordlist argument of a run, downloading remote
// wordlists into the data directory with go-getter.
package wordlist

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/duke-git/lancet/v2/cryptor"
	"github.com/duke-git/lancet/v2/fileutil"
	"github.com/duke-git/lancet/v2/strutil"
	"github.com/hashicorp/go-getter"
	"github.com/unclesp1d3r/containercrack/lib/crackerrors"
	"github.com/unclesp1d3r/containercrack/runstate"
)

const (
	defaultUmask = 0o022 // Default umask for file permissions
)

// ErrChecksumMismatch is returned when a downloaded wordlist does not match its checksum.
var ErrChecksumMismatch = errors.New("downloaded wordlist checksum does not match")

// remoteSchemes are the URL schemes fetched with go-getter.
var remoteSchemes = map[string]bool{ //nolint:gochecknoglobals // Lookup table
	"http":  true,
	"https": true,
	"s3":    true,
	"gcs":   true,
	"git":   true,
}

// IsRemote reports whether src names a wordlist that has to be downloaded.
// Forced getters such as "s3::https://..." count as remote.
func IsRemote(src string) bool {
	if strings.Contains(src, "::") {
		return true
	}

	u, err := url.Parse(src)
	if err != nil || len(u.Scheme) < 2 {
		return false
	}

	return remoteSchemes[strings.ToLower(u.Scheme)]
}

// Resolve returns a local path for src. Local paths are returned unchanged.
// Remote sources are downloaded once into runstate.State.WordlistsPath and
// reused on later runs; checksum, if set, is the expected MD5 of the file.
func Resolve(ctx context.Context, src, checksum string) (string, error) {
	if !IsRemote(src) {
		return src, nil
	}

	dst := filepath.Join(runstate.State.WordlistsPath, LocalName(src))
	if FileExistsAndValid(dst, checksum) {
		runstate.Logger.Info("Wordlist already downloaded", "path", dst)
		return dst, nil
	}

	runstate.State.SetCurrentActivity(runstate.CurrentActivityFetching)
	if err := download(ctx, src, dst, checksum); err != nil {
		return "", err
	}

	return dst, nil
}

// LocalName derives the cached file name for a remote source.
// The name carries a short hash of src so different URLs never collide.
func LocalName(src string) string {
	prefix := cryptor.Md5String(src)[:8]

	base := src
	if i := strings.LastIndex(base, "::"); i >= 0 {
		base = base[i+2:]
	}
	if u, err := url.Parse(base); err == nil {
		base = u.Path
	}
	base = path.Base(base)
	if base == "." || base == "/" || strutil.IsBlank(base) {
		base = "wordlist.txt"
	}

	return prefix + "-" + base
}

// FileExistsAndValid checks if a file exists at the given path and, if a checksum is provided, verifies its validity.
// A file whose checksum does not match is removed.
func FileExistsAndValid(filePath, checksum string) bool {
	if !fileutil.IsExist(filePath) {
		return false
	}

	if strutil.IsBlank(checksum) {
		return true
	}

	fileChecksum, err := cryptor.Md5File(filePath)
	if err != nil {
		runstate.Logger.Error("Error calculating file checksum", "path", filePath, "error", err)

		return false
	}

	if strings.EqualFold(fileChecksum, checksum) {
		return true
	}

	runstate.Logger.Warn("Checksums do not match",
		"path", filePath,
		"expected_checksum", checksum,
		"file_checksum", fileChecksum)

	if err := os.Remove(filePath); err != nil {
		runstate.Logger.Error("Error removing file with mismatched checksum", "path", filePath, "error", err)
	}

	return false
}

// download fetches src into dst, verifying the checksum if provided.
func download(ctx context.Context, src, dst, checksum string) error {
	if strutil.IsNotBlank(checksum) && !strings.Contains(src, "::") {
		var err error

		src, err = appendChecksumToURL(src, checksum)
		if err != nil {
			return err
		}
	}

	pwd, err := os.Getwd()
	if err != nil {
		return crackerrors.New(crackerrors.KindIOError, "fetch wordlist", dst, err)
	}

	client := &getter.Client{
		Ctx:  ctx,
		Dst:  dst,
		Src:  src,
		Pwd:  pwd,
		Mode: getter.ClientModeFile,
	}

	opts := []getter.ClientOption{getter.WithUmask(os.FileMode(defaultUmask))}
	if runstate.State.ShowProgressBar {
		opts = append(opts, getter.WithProgress(DefaultProgressBar))
	}
	if err := client.Configure(opts...); err != nil {
		return fmt.Errorf("configuring wordlist download: %w", err)
	}

	runstate.Logger.Info("Downloading wordlist", "source", src, "path", dst)
	if err := client.Get(); err != nil {
		runstate.Logger.Debug("Error downloading wordlist", "error", err)

		return crackerrors.New(crackerrors.KindIOError, "fetch wordlist", src, err)
	}

	if strutil.IsNotBlank(checksum) && !FileExistsAndValid(dst, checksum) {
		return ErrChecksumMismatch
	}

	return nil
}

// appendChecksumToURL appends a checksum to the URL query string.
// It returns the modified URL or an error if the URL is invalid.
func appendChecksumToURL(rawURL, checksum string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("checksum", "md5:"+checksum)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
