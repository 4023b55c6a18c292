package packaging

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-kit/kit/log/level"
	"github.com/kolide/wixfrag/pkg/contexts/ctxlog"
	"github.com/kolide/wixfrag/pkg/packagekit/wix"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
)

// FragmentOptions configures a Generate run. Empty fields fall back to
// the variant's constants.
type FragmentOptions struct {
	Variant         Variant
	Root            string // overrides Variant.StagingRoot
	OutputDir       string
	DirectoriesPath string // overrides OutputDir/Variant.DirectoriesFile
	FeaturesPath    string // overrides OutputDir/Variant.FeaturesFile
	ExcludeFile     string
	ExcludePatterns []string

	guidFunc wix.GuidFunc // Allows test overrides
}

// FragmentPaths is where Generate wrote, and what.
type FragmentPaths struct {
	Directories string
	Features    string
	Stats       wix.Stats
}

// Generate harvests the variant's staging tree into the directories and
// features include files. Existing files are overwritten. If writing
// fails part way, the partial files are left in place.
func Generate(ctx context.Context, fo FragmentOptions) (*FragmentPaths, error) {
	ctx, span := trace.StartSpan(ctx, "packaging.Generate")
	defer span.End()

	ctx = ctxlog.With(ctx, "variant", fo.Variant.Name)
	logger := ctxlog.FromContext(ctx)

	root := fo.Root
	if root == "" {
		root = fo.Variant.StagingRoot
	}
	if root == "" {
		return nil, errors.New("no staging root")
	}

	paths := &FragmentPaths{
		Directories: fo.DirectoriesPath,
		Features:    fo.FeaturesPath,
	}
	if paths.Directories == "" {
		paths.Directories = filepath.Join(fo.OutputDir, fo.Variant.DirectoriesFile)
	}
	if paths.Features == "" {
		paths.Features = filepath.Join(fo.OutputDir, fo.Variant.FeaturesFile)
	}
	if paths.Directories == paths.Features {
		return nil, errors.Errorf("directories and features would both be written to %s", paths.Directories)
	}

	var scanOpts []wix.ScanOpt
	if fo.ExcludeFile != "" {
		scanOpts = append(scanOpts, wix.WithExcludeFile(fo.ExcludeFile))
	}
	if len(fo.ExcludePatterns) > 0 {
		scanOpts = append(scanOpts, wix.WithExcludePatterns(fo.ExcludePatterns...))
	}

	tree, err := wix.Scan(ctx, root, scanOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "scanning staging root")
	}

	dirCount, fileCount := tree.Count()
	level.Debug(logger).Log(
		"msg", "scanned staging root",
		"root", root,
		"directories", dirCount,
		"files", fileCount,
	)

	directoriesFH, err := os.Create(paths.Directories)
	if err != nil {
		return nil, errors.Wrap(err, "creating directories file")
	}
	defer directoriesFH.Close()

	featuresFH, err := os.Create(paths.Features)
	if err != nil {
		return nil, errors.Wrap(err, "creating features file")
	}
	defer featuresFH.Close()

	fragmentOpts := []wix.FragmentOpt{
		wix.WithPrefix(fo.Variant.Prefix()),
		wix.WithWin64(fo.Variant.Win64),
		wix.WithKeyPath(fo.Variant.KeyPath),
		wix.WithSourcePrefix(fo.Variant.SourcePrefix),
		wix.WithExtraComponents(fo.Variant.Extras...),
	}
	if fo.Variant.Separator != "" {
		fragmentOpts = append(fragmentOpts, wix.WithSeparator(fo.Variant.Separator))
	}
	if fo.guidFunc != nil {
		fragmentOpts = append(fragmentOpts, wix.WithGuidFunc(fo.guidFunc))
	}

	stats, err := wix.NewFragmentWriter(directoriesFH, featuresFH, fragmentOpts...).Write(ctx, tree)
	if err != nil {
		return nil, errors.Wrap(err, "writing fragments")
	}
	paths.Stats = stats

	if err := directoriesFH.Close(); err != nil {
		return nil, errors.Wrap(err, "closing directories file")
	}
	if err := featuresFH.Close(); err != nil {
		return nil, errors.Wrap(err, "closing features file")
	}

	level.Info(logger).Log(
		"msg", "output complete",
		"files", stats.Files,
		"directories", stats.Directories,
		"components", stats.Components,
		"directories_file", paths.Directories,
		"features_file", paths.Features,
	)

	// wix tracks files across upgrades by component guid. We issue new
	// ones every run, so the operator has to keep the shipped ones.
	level.Warn(logger).Log(
		"msg", "every guid is new. Diff against version control and keep any guid that has already shipped. Copy the components for each directory into the destination wxi by hand.",
	)

	return paths, nil
}
