package wix

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/go-kit/kit/log/level"
	"github.com/kolide/wixfrag/pkg/contexts/ctxlog"
	"github.com/pkg/errors"
	ignore "github.com/sabhiram/go-gitignore"
	"go.opencensus.io/trace"
)

// Dir is a scanned directory. Files and Dirs are in lexical order.
type Dir struct {
	Name  string
	Path  string // slash separated, starting with the root's name
	Files []string
	Dirs  []*Dir
}

// Count returns the number of directories and files at and below d.
func (d *Dir) Count() (dirs int, files int) {
	dirs, files = 1, len(d.Files)
	for _, sub := range d.Dirs {
		sd, sf := sub.Count()
		dirs += sd
		files += sf
	}
	return dirs, files
}

type scanOptions struct {
	excludeFile     string
	excludePatterns []string
	excluder        *ignore.GitIgnore
}

type ScanOpt func(*scanOptions)

// WithExcludeFile skips anything matching the gitignore style patterns
// in path. Patterns match against paths relative to the scan root.
func WithExcludeFile(path string) ScanOpt {
	return func(so *scanOptions) {
		so.excludeFile = path
	}
}

// WithExcludePatterns is WithExcludeFile, with the patterns given
// directly. Both may be used, a path matching either is skipped.
func WithExcludePatterns(patterns ...string) ScanOpt {
	return func(so *scanOptions) {
		so.excludePatterns = append(so.excludePatterns, patterns...)
	}
}

// Scan reads the tree rooted at root. Any error reading the tree is
// returned, there is no partial result.
func Scan(ctx context.Context, root string, opts ...ScanOpt) (*Dir, error) {
	ctx, span := trace.StartSpan(ctx, "wix.Scan")
	defer span.End()

	so := &scanOptions{}
	for _, opt := range opts {
		opt(so)
	}

	if so.excludeFile != "" {
		gi, err := ignore.CompileIgnoreFileAndLines(so.excludeFile, so.excludePatterns...)
		if err != nil {
			return nil, errors.Wrapf(err, "reading exclude file %s", so.excludeFile)
		}
		so.excluder = gi
	} else if len(so.excludePatterns) > 0 {
		so.excluder = ignore.CompileIgnoreLines(so.excludePatterns...)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", root)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, errors.Wrap(err, "stat root")
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%s is not a directory", absRoot)
	}

	name := filepath.Base(absRoot)
	return so.scanDir(ctx, absRoot, "", &Dir{Name: name, Path: name})
}

func (so *scanOptions) scanDir(ctx context.Context, fsPath, rel string, d *Dir) (*Dir, error) {
	level.Debug(ctxlog.FromContext(ctx)).Log(
		"msg", "scanning directory",
		"path", d.Path,
	)

	entries, err := os.ReadDir(fsPath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading directory %s", fsPath)
	}

	for _, entry := range entries {
		entryRel := path.Join(rel, entry.Name())

		if entry.IsDir() {
			if so.excluded(entryRel, true) {
				continue
			}
			sub := &Dir{Name: entry.Name(), Path: path.Join(d.Path, entry.Name())}
			if _, err := so.scanDir(ctx, filepath.Join(fsPath, entry.Name()), entryRel, sub); err != nil {
				return nil, err
			}
			d.Dirs = append(d.Dirs, sub)
			continue
		}

		if so.excluded(entryRel, false) {
			continue
		}
		d.Files = append(d.Files, entry.Name())
	}

	return d, nil
}

func (so *scanOptions) excluded(rel string, isDir bool) bool {
	if so.excluder == nil {
		return false
	}
	if so.excluder.MatchesPath(rel) {
		return true
	}
	return isDir && so.excluder.MatchesPath(rel+"/")
}
