package wix

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// makeTree creates paths under root. Paths ending in a slash are
// created as (possibly empty) directories, everything else as files.
func makeTree(t *testing.T, root string, paths ...string) {
	t.Helper()

	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if strings.HasSuffix(p, "/") {
			require.NoError(t, os.MkdirAll(full, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(p), 0644))
	}
}

func TestScan(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "staging")
	makeTree(t, root,
		"zeta.dll",
		"Alpha.exe",
		"resources/b.pak",
		"resources/a.pak",
		"resources/locales/en-US.pak",
		"bin/",
		"readme.txt",
	)

	tree, err := Scan(context.TODO(), root)
	require.NoError(t, err)

	require.Equal(t, "staging", tree.Name)
	require.Equal(t, "staging", tree.Path)
	require.Equal(t, []string{"Alpha.exe", "readme.txt", "zeta.dll"}, tree.Files)

	// use require, not assert, so we don't traverse into a 0 length array
	require.Len(t, tree.Dirs, 2)
	require.Equal(t, "bin", tree.Dirs[0].Name)
	require.Empty(t, tree.Dirs[0].Files)
	require.Empty(t, tree.Dirs[0].Dirs)

	resources := tree.Dirs[1]
	require.Equal(t, "staging/resources", resources.Path)
	require.Equal(t, []string{"a.pak", "b.pak"}, resources.Files)
	require.Len(t, resources.Dirs, 1)
	require.Equal(t, "staging/resources/locales", resources.Dirs[0].Path)
	require.Equal(t, []string{"en-US.pak"}, resources.Dirs[0].Files)

	dirs, files := tree.Count()
	require.Equal(t, 4, dirs)
	require.Equal(t, 6, files)
}

func TestScanEmptyRoot(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.Mkdir(root, 0755))

	tree, err := Scan(context.TODO(), root)
	require.NoError(t, err)
	require.Equal(t, "empty", tree.Name)
	require.Empty(t, tree.Files)
	require.Empty(t, tree.Dirs)
}

func TestScanErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	makeTree(t, dir, "file.txt")

	_, err := Scan(context.TODO(), filepath.Join(dir, "does-not-exist"))
	require.Error(t, err)

	_, err = Scan(context.TODO(), filepath.Join(dir, "file.txt"))
	require.Error(t, err)

	_, err = Scan(context.TODO(), dir, WithExcludeFile(filepath.Join(dir, "no-such-exclude-file")))
	require.Error(t, err)
}

func TestScanExcludeFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	root := filepath.Join(dir, "staging")
	makeTree(t, root,
		"app.exe",
		"app.pdb",
		"cache/blob.bin",
		"plugins/plugin.dll",
		"plugins/plugin.pdb",
	)

	excludeFile := filepath.Join(dir, "exclude")
	require.NoError(t, os.WriteFile(excludeFile, []byte("*.pdb\ncache\n"), 0644))

	tree, err := Scan(context.TODO(), root, WithExcludeFile(excludeFile))
	require.NoError(t, err)

	require.Equal(t, []string{"app.exe"}, tree.Files)
	require.Len(t, tree.Dirs, 1)
	require.Equal(t, "plugins", tree.Dirs[0].Name)
	require.Equal(t, []string{"plugin.dll"}, tree.Dirs[0].Files)
}

func TestScanExcludePatterns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	root := filepath.Join(dir, "staging")
	makeTree(t, root,
		"app.exe",
		"app.pdb",
		"cache/blob.bin",
		"plugins/plugin.dll",
		"plugins/plugin.pdb",
		"plugins/plugin.log",
	)

	tree, err := Scan(context.TODO(), root, WithExcludePatterns("*.pdb", "cache"))
	require.NoError(t, err)
	require.Equal(t, []string{"app.exe"}, tree.Files)
	require.Len(t, tree.Dirs, 1)
	require.Equal(t, []string{"plugin.dll", "plugin.log"}, tree.Dirs[0].Files)

	// patterns add to the exclude file
	excludeFile := filepath.Join(dir, "exclude")
	require.NoError(t, os.WriteFile(excludeFile, []byte("*.pdb\ncache\n"), 0644))

	tree, err = Scan(context.TODO(), root, WithExcludeFile(excludeFile), WithExcludePatterns("*.log"))
	require.NoError(t, err)
	require.Equal(t, []string{"app.exe"}, tree.Files)
	require.Len(t, tree.Dirs, 1)
	require.Equal(t, []string{"plugin.dll"}, tree.Dirs[0].Files)
}
