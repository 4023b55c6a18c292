package packaging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-kit/kit/log"
	"github.com/kolide/wixfrag/pkg/contexts/ctxlog"
	"github.com/kolide/wixfrag/pkg/packagekit/wix"
	"github.com/stretchr/testify/require"
)

func fixedGuids() wix.GuidFunc {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("11111111-2222-3333-4444-%012d", n), nil
	}
}

func setupStagingRoot(t *testing.T, name string) string {
	t.Helper()

	root := filepath.Join(t.TempDir(), name)
	for _, p := range []string{"driver.dll", "bin/win64/driver_massless.dll", "resources/readme.txt"} {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(p), 0644))
	}
	return root
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	ctx := ctxlog.NewContext(context.TODO(), log.NewNopLogger())

	variant, err := VariantFromString(OpenVRDriver)
	require.NoError(t, err)

	outDir := t.TempDir()
	paths, err := Generate(ctx, FragmentOptions{
		Variant:   variant,
		Root:      setupStagingRoot(t, "massless"),
		OutputDir: outDir,
		guidFunc:  fixedGuids(),
	})
	require.NoError(t, err)

	require.Equal(t, filepath.Join(outDir, "openvrdriver_directories.wxi"), paths.Directories)
	require.Equal(t, filepath.Join(outDir, "openvrdriver_features.wxi"), paths.Features)
	require.Equal(t, wix.Stats{Directories: 4, Files: 3, Components: 3}, paths.Stats)

	directories, err := os.ReadFile(paths.Directories)
	require.NoError(t, err)
	features, err := os.ReadFile(paths.Features)
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(string(directories), `<?xml version="1.0" encoding="utf-8"?>`))
	require.Contains(t, string(directories), `<Directory Id="OpenVRDriver_massless0" Name="massless">`)
	require.Contains(t, string(directories), `<Component Id="OpenVRDriverdriverdll0" Guid="11111111-2222-3333-4444-000000000001" Win64="no">`)
	require.Contains(t, string(directories), `Source="..\driver_massless\Output\driver\massless\bin\win64\driver_massless.dll"`)
	require.Contains(t, string(features), `<ComponentRef Id="OpenVRDriverdriver_masslessdll2"></ComponentRef>`)
	require.Equal(t, 3, strings.Count(string(features), "<ComponentRef "))
}

func TestGenerateStudioLauncher(t *testing.T) {
	t.Parallel()

	variant, err := VariantFromString(StudioLauncher)
	require.NoError(t, err)

	outDir := t.TempDir()
	paths, err := Generate(context.TODO(), FragmentOptions{
		Variant:   variant,
		Root:      setupStagingRoot(t, "StudioLauncherStaging"),
		OutputDir: outDir,
		guidFunc:  fixedGuids(),
	})
	require.NoError(t, err)
	require.Equal(t, wix.Stats{Directories: 4, Files: 3, Components: 5}, paths.Stats)

	directories, err := os.ReadFile(paths.Directories)
	require.NoError(t, err)
	features, err := os.ReadFile(paths.Features)
	require.NoError(t, err)

	require.Contains(t, string(directories), `Win64="yes"`)
	require.Contains(t, string(directories), `Source="StudioLauncherStaging/resources/readme.txt" KeyPath="yes"`)
	require.Contains(t, string(directories), `<File Id="StudioLauncherUnityPlayerDLL" Name="UnityPlayer.dll" Source="StudioLauncherStaging/UnityPlayer.dll" KeyPath="yes">`)
	require.Contains(t, string(directories), `<Shortcut Id="MasslessStudioStartMenuShortcut" Name="Massless Studio" WorkingDirectory="StudioLauncher" Icon="MasslessIcon.ico" IconIndex="0" Directory="ApplicationProgramsFolder" Advertise="yes">`)
	require.True(t, strings.HasSuffix(strings.TrimSpace(string(features)),
		`<ComponentRef Id="StudioLauncherUnityPlayer"></ComponentRef>
  <ComponentRef Id="StudioLauncherMasslessStudioLauncher"></ComponentRef>
</Include>`))
}

func TestGenerateOverwrites(t *testing.T) {
	t.Parallel()

	variant, err := VariantFromString(OpenVRDriver)
	require.NoError(t, err)

	root := setupStagingRoot(t, "massless")
	outDir := t.TempDir()

	var runs [][]byte
	for i := 0; i < 2; i++ {
		paths, err := Generate(context.TODO(), FragmentOptions{Variant: variant, Root: root, OutputDir: outDir})
		require.NoError(t, err)

		directories, err := os.ReadFile(paths.Directories)
		require.NoError(t, err)
		require.Equal(t, 1, strings.Count(string(directories), "<Include>"))
		runs = append(runs, directories)
	}

	// Fresh guids each run
	require.NotEqual(t, string(runs[0]), string(runs[1]))
}

func TestGenerateErrors(t *testing.T) {
	t.Parallel()

	variant, err := VariantFromString(OpenVRDriver)
	require.NoError(t, err)

	outDir := t.TempDir()

	_, err = Generate(context.TODO(), FragmentOptions{
		Variant:   variant,
		Root:      filepath.Join(outDir, "missing"),
		OutputDir: outDir,
	})
	require.Error(t, err)

	_, err = Generate(context.TODO(), FragmentOptions{
		Variant:         variant,
		Root:            setupStagingRoot(t, "massless"),
		DirectoriesPath: filepath.Join(outDir, "same.wxi"),
		FeaturesPath:    filepath.Join(outDir, "same.wxi"),
	})
	require.Error(t, err)

	_, err = Generate(context.TODO(), FragmentOptions{
		Variant:   variant,
		Root:      setupStagingRoot(t, "massless"),
		OutputDir: filepath.Join(outDir, "no", "such", "dir"),
	})
	require.Error(t, err)

	_, err = Generate(context.TODO(), FragmentOptions{Variant: Variant{Name: "bare"}})
	require.Error(t, err)
}
