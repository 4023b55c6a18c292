package packaging

import (
	"sort"
	"strings"

	"github.com/kolide/wixfrag/pkg/packagekit/wix"
	"github.com/pkg/errors"
	"github.com/serenize/snaker"
)

// Variant is a product flavor. Each one carries the constants needed
// to harvest its staging tree, and prefixes every generated identifier
// so fragments from different variants can live in one installer.
type Variant struct {
	Name            string
	Win64           wix.YesNoType
	KeyPath         wix.YesNoType // empty omits the attribute
	StagingRoot     string        // the tree to harvest
	SourcePrefix    string        // candle's path to the parent of StagingRoot
	Separator       string        // path separator in File Source
	DirectoriesFile string
	FeaturesFile    string
	Extras          []wix.ExtraComponent
}

const (
	OpenVRDriver   = "OpenVRDriver"
	StudioLauncher = "StudioLauncher"
)

var knownVariants = map[string]Variant{
	OpenVRDriver: {
		Name:            OpenVRDriver,
		Win64:           wix.No,
		StagingRoot:     "massless",
		SourcePrefix:    `..\driver_massless\Output\driver\`,
		Separator:       `\`,
		DirectoriesFile: "openvrdriver_directories.wxi",
		FeaturesFile:    "openvrdriver_features.wxi",
	},
	StudioLauncher: {
		Name:            StudioLauncher,
		Win64:           wix.Yes,
		KeyPath:         wix.Yes,
		StagingRoot:     "StudioLauncherStaging",
		Separator:       "/",
		DirectoriesFile: "studio_directories.wxi",
		FeaturesFile:    "studio_features.wxi",
		Extras: []wix.ExtraComponent{
			{
				Id:     "UnityPlayer",
				FileId: "UnityPlayerDLL",
				Name:   "UnityPlayer.dll",
				Source: "StudioLauncherStaging/UnityPlayer.dll",
			},
			{
				Id:     "MasslessStudioLauncher",
				FileId: "MasslessStudioLauncherexe",
				Name:   "Massless Studio.exe",
				Source: "StudioLauncherStaging/StudioLauncher.exe",
				Shortcut: &wix.Shortcut{
					Id:               "MasslessStudioStartMenuShortcut",
					Name:             "Massless Studio",
					WorkingDirectory: StudioLauncher,
					Icon:             "MasslessIcon.ico",
					IconIndex:        "0",
					Directory:        "ApplicationProgramsFolder",
					Advertise:        wix.Yes,
				},
			},
		},
	},
}

// KnownVariants returns the names of the built in variants.
func KnownVariants() []string {
	names := make([]string, 0, len(knownVariants))
	for name := range knownVariants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// VariantFromString returns the built in variant matching s. Matching
// is case insensitive.
func VariantFromString(s string) (Variant, error) {
	for name, v := range knownVariants {
		if strings.EqualFold(name, s) {
			// copy the extras, so callers can't edit the built in
			v.Extras = append([]wix.ExtraComponent(nil), v.Extras...)
			return v, nil
		}
	}
	return Variant{}, errors.Errorf("unknown variant %s", s)
}

// Prefix returns the identifier prefix for the variant. The name is
// normalized to CamelCase, so `studio-launcher` and `StudioLauncher`
// produce the same identifiers.
func (v Variant) Prefix() string {
	r := strings.NewReplacer(
		"-", "_",
		" ", "_",
		".", "_",
	)

	return snaker.SnakeToCamel(r.Replace(v.Name))
}
