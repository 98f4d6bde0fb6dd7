package batch

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/duke-git/lancet/v2/fileutil"
	"github.com/duke-git/lancet/v2/slice"
	"github.com/unclesp1d3r/containercrack/lib/container"
	"github.com/unclesp1d3r/containercrack/lib/crackerrors"
)

var (
	// ErrNoRoots is returned when Discover is given no directories.
	ErrNoRoots = errors.New("no target directories given")
	// ErrNoTargets is returned when there is nothing to attack.
	ErrNoTargets = errors.New("no supported files found")
)

// Discover collects the supported files under roots, deduplicated by absolute
// path and sorted. Only the top level of each root is scanned unless recursive is set.
// A root naming a regular file is taken as a target itself; if its extension is
// not supported the target is kept and later reported as unsupported.
func Discover(roots []string, recursive bool) ([]container.Target, error) {
	if len(roots) == 0 {
		return nil, ErrNoRoots
	}

	var paths []string
	for _, root := range roots {
		found, err := scanRoot(root, recursive)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}

	paths = slice.Unique(paths)
	sort.Strings(paths)

	targets := make([]container.Target, 0, len(paths))
	for _, p := range paths {
		targets = append(targets, container.Target{Path: p, Kind: container.KindFromExtension(p)})
	}

	return targets, nil
}

func scanRoot(root string, recursive bool) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, crackerrors.New(crackerrors.KindIOError, "discover", root, err)
	}
	if !fileutil.IsExist(abs) {
		return nil, crackerrors.Errorf(crackerrors.KindNotFound, "discover", root, "target does not exist")
	}
	if !fileutil.IsDir(abs) {
		info, err := os.Stat(abs)
		if err != nil {
			return nil, crackerrors.FromFS("discover", root, err)
		}
		if !info.Mode().IsRegular() {
			return nil, crackerrors.Errorf(crackerrors.KindIOError, "discover", root, "not a directory or regular file")
		}

		return []string{abs}, nil
	}

	if !recursive {
		entries, err := os.ReadDir(abs)
		if err != nil {
			return nil, crackerrors.FromFS("discover", root, err)
		}

		var out []string
		for _, e := range entries {
			if e.Type().IsRegular() && container.IsSupported(e.Name()) {
				out = append(out, filepath.Join(abs, e.Name()))
			}
		}

		return out, nil
	}

	var out []string
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && container.IsSupported(path) {
			out = append(out, path)
		}

		return nil
	})
	if err != nil {
		return nil, crackerrors.FromFS("discover", root, err)
	}

	return out, nil
}
