package main

import (
	"context"
	"flag"
	"strings"

	"github.com/go-kit/kit/log/level"
	"github.com/kolide/kit/logutil"
	"github.com/kolide/wixfrag/pkg/contexts/ctxlog"
	"github.com/kolide/wixfrag/pkg/packagekit/wix"
	"github.com/kolide/wixfrag/pkg/packaging"
	"github.com/peterbourgon/ff/v3"
	"github.com/pkg/errors"
)

func runGenerate(args []string) error {
	flagset := flag.NewFlagSet("generate", flag.ExitOnError)
	var (
		flDebug = flagset.Bool(
			"debug",
			false,
			"enable debug logging",
		)
		flVariant = flagset.String(
			"variant",
			packaging.OpenVRDriver,
			"the variant to generate fragments for. See `wixfrag variants`",
		)
		flRoot = flagset.String(
			"root",
			"",
			"the staging root to harvest. Defaults to the variant's",
		)
		flOutDir = flagset.String(
			"out",
			".",
			"directory to write the variant's fragment files into",
		)
		flDirectories = flagset.String(
			"directories",
			"",
			"path for the directories fragment. Overrides -out",
		)
		flFeatures = flagset.String(
			"features",
			"",
			"path for the features fragment. Overrides -out",
		)
		flSourcePrefix = flagset.String(
			"source_prefix",
			"",
			"prefix for every File Source. Defaults to the variant's",
		)
		flSeparator = flagset.String(
			"separator",
			"",
			`path separator in File Source, \ or /. Defaults to the variant's`,
		)
		flWin64 = flagset.Bool(
			"win64",
			false,
			"mark components as 64bit. Defaults to the variant's",
		)
		flKeyPath = flagset.Bool(
			"keypath",
			false,
			"mark each file as its component's key path. Defaults to the variant's",
		)
		flExcludeFile = flagset.String(
			"exclude_file",
			"",
			"gitignore style file of paths to leave out of the fragments",
		)
		flExclude = flagset.String(
			"exclude",
			"",
			"comma separated gitignore style patterns to leave out, added to -exclude_file",
		)
		_ = flagset.String("config", "", "config file to parse options from (optional)")
	)

	flagset.Usage = usageFor(flagset, "wixfrag generate [flags]")

	ffOpts := []ff.Option{
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithEnvVarPrefix("WIXFRAG"),
	}

	if err := ff.Parse(flagset, args, ffOpts...); err != nil {
		return errors.Wrap(err, "parsing flags")
	}

	logger := logutil.NewCLILogger(*flDebug)
	ctx := ctxlog.NewContext(context.Background(), logger)

	// Flags only override the variant when they're actually set. ff
	// sets env and config values through the flagset, so they show up
	// here too.
	setFlags := make(map[string]bool)
	flagset.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	variant, err := packaging.VariantFromString(*flVariant)
	if err != nil {
		return err
	}

	if setFlags["source_prefix"] {
		variant.SourcePrefix = *flSourcePrefix
	}
	if setFlags["separator"] {
		if *flSeparator != `\` && *flSeparator != "/" {
			return errors.Errorf(`separator must be \ or /, not %q`, *flSeparator)
		}
		variant.Separator = *flSeparator
	}
	if setFlags["win64"] {
		variant.Win64 = wix.YesNo(*flWin64)
	}
	if setFlags["keypath"] {
		variant.KeyPath = wix.YesNo(*flKeyPath)
	}

	var excludePatterns []string
	for _, p := range strings.Split(*flExclude, ",") {
		if p = strings.TrimSpace(p); p != "" {
			excludePatterns = append(excludePatterns, p)
		}
	}

	level.Debug(logger).Log(
		"msg", "generating fragments",
		"variant", variant.Name,
		"prefix", variant.Prefix(),
		"win64", variant.Win64,
		"source_prefix", variant.SourcePrefix,
	)

	if _, err := packaging.Generate(ctx, packaging.FragmentOptions{
		Variant:         variant,
		Root:            *flRoot,
		OutputDir:       *flOutDir,
		DirectoriesPath: *flDirectories,
		FeaturesPath:    *flFeatures,
		ExcludeFile:     *flExcludeFile,
		ExcludePatterns: excludePatterns,
	}); err != nil {
		return errors.Wrap(err, "could not generate fragments")
	}

	return nil
}
