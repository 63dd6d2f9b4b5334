package fileset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	werrors "github.com/wheelhouse/cli/internal/errors"
	"github.com/wheelhouse/cli/internal/metadata"
	"github.com/wheelhouse/cli/internal/testutil"
)

// fakeLister returns a canned tracked-file list.
type fakeLister struct {
	files []string
}

func (f *fakeLister) ListTracked(string) ([]string, error) { return f.files, nil }

func demoMeta() *metadata.ProjectMetadata {
	return &metadata.ProjectMetadata{RawName: "demo", Name: "demo", Version: "1.0.0"}
}

func archivePaths(s *Set) []string {
	var out []string
	for _, e := range s.Entries() {
		out = append(out, e.ArchivePath)
	}
	return out
}

func TestBuildFlatLayout(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"pyproject.toml":       "[project]\nname = \"demo\"\n",
		"demo/__init__.py":     "",
		"demo/core.py":         "x = 1",
		"demo/sub/__init__.py": "",
		"README.md":            "# demo",
	})

	b := &Builder{Lister: &fakeLister{files: []string{
		"pyproject.toml", "demo/__init__.py", "demo/core.py", "demo/sub/__init__.py", "README.md",
	}}}

	result, err := b.Build(demoMeta(), root, Config{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"README.md", "demo/__init__.py", "demo/core.py", "demo/sub/__init__.py", "pyproject.toml",
	}, archivePaths(result.Sdist))

	assert.Equal(t, []string{
		"demo/__init__.py", "demo/core.py", "demo/sub/__init__.py",
	}, archivePaths(result.Wheel))
}

func TestBuildSrcLayout(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"pyproject.toml":       "[project]\nname = \"demo\"\n",
		"src/demo/__init__.py": "",
		"src/demo/core.py":     "",
	})

	b := &Builder{}

	t.Run("explicit src location", func(t *testing.T) {
		result, err := b.Build(demoMeta(), root, Config{ModuleLocation: LocationSrc})
		require.NoError(t, err)
		assert.Equal(t, []string{"demo/__init__.py", "demo/core.py"}, archivePaths(result.Wheel))
	})

	t.Run("src layout detected when unambiguous", func(t *testing.T) {
		result, err := b.Build(demoMeta(), root, Config{})
		require.NoError(t, err)
		assert.Equal(t, []string{"demo/__init__.py", "demo/core.py"}, archivePaths(result.Wheel))
	})

	t.Run("src location without src directory fails", func(t *testing.T) {
		flat := t.TempDir()
		testutil.WriteTree(t, flat, map[string]string{"pyproject.toml": ""})
		_, err := b.Build(demoMeta(), flat, Config{ModuleLocation: LocationSrc})
		assert.True(t, errors.Is(err, werrors.ErrConfig))
	})
}

func TestBuildAmbiguousLayout(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"pyproject.toml":        "",
		"demo/__init__.py":      "",
		"src/other/__init__.py": "",
	})

	b := &Builder{}
	_, err := b.Build(demoMeta(), root, Config{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, werrors.ErrConfig))
	assert.Contains(t, err.Error(), "module-location")
}

func TestBuildWheelSet(t *testing.T) {
	b := &Builder{}

	t.Run("empty package set fails", func(t *testing.T) {
		root := t.TempDir()
		testutil.WriteTree(t, root, map[string]string{"pyproject.toml": ""})
		_, err := b.Build(demoMeta(), root, Config{})
		assert.True(t, errors.Is(err, werrors.ErrConfig))
	})

	t.Run("declared module missing on disk fails", func(t *testing.T) {
		root := t.TempDir()
		testutil.WriteTree(t, root, map[string]string{"pyproject.toml": ""})
		_, err := b.Build(demoMeta(), root, Config{TopLevelModules: []string{"nope"}})
		assert.True(t, errors.Is(err, werrors.ErrConfig))
	})

	t.Run("single-file module inferred from project name", func(t *testing.T) {
		root := t.TempDir()
		testutil.WriteTree(t, root, map[string]string{
			"pyproject.toml": "",
			"demo.py":        "x = 1",
		})
		result, err := b.Build(demoMeta(), root, Config{})
		require.NoError(t, err)
		assert.Equal(t, []string{"demo.py"}, archivePaths(result.Wheel))
	})

	t.Run("bytecode never ships", func(t *testing.T) {
		root := t.TempDir()
		testutil.WriteTree(t, root, map[string]string{
			"pyproject.toml":                    "",
			"demo/__init__.py":                  "",
			"demo/__pycache__/core.cpython.pyc": "",
			"demo/stale.pyc":                    "",
		})
		result, err := b.Build(demoMeta(), root, Config{})
		require.NoError(t, err)
		assert.Equal(t, []string{"demo/__init__.py"}, archivePaths(result.Wheel))
	})
}

func TestBuildSdistRules(t *testing.T) {
	t.Run("walk fallback skips build directories", func(t *testing.T) {
		root := t.TempDir()
		testutil.WriteTree(t, root, map[string]string{
			"pyproject.toml":      "",
			"demo/__init__.py":    "",
			"dist/old-1.0.tar.gz": "",
			".git/config":         "",
			".tox/env/x":          "",
		})

		b := &Builder{}
		result, err := b.Build(demoMeta(), root, Config{})
		require.NoError(t, err)
		assert.Equal(t, []string{"demo/__init__.py", "pyproject.toml"}, archivePaths(result.Sdist))
	})

	t.Run("include and exclude patterns apply", func(t *testing.T) {
		root := t.TempDir()
		testutil.WriteTree(t, root, map[string]string{
			"pyproject.toml":   "",
			"demo/__init__.py": "",
			"assets/logo.dat":  "",
			"docs/guide.rst":   "",
		})

		b := &Builder{Lister: &fakeLister{files: []string{
			"pyproject.toml", "demo/__init__.py", "docs/guide.rst",
		}}}
		result, err := b.Build(demoMeta(), root, Config{
			SourceInclude: []string{"assets/*.dat"},
			SourceExclude: []string{"docs"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{
			"assets/logo.dat", "demo/__init__.py", "pyproject.toml",
		}, archivePaths(result.Sdist))
	})

	t.Run("exclude patterns apply to included files", func(t *testing.T) {
		root := t.TempDir()
		testutil.WriteTree(t, root, map[string]string{
			"pyproject.toml":   "",
			"demo/__init__.py": "",
			"assets/logo.dat":  "",
			"assets/skip.dat":  "",
		})

		b := &Builder{Lister: &fakeLister{files: []string{
			"pyproject.toml", "demo/__init__.py",
		}}}
		result, err := b.Build(demoMeta(), root, Config{
			SourceInclude: []string{"assets/*.dat"},
			SourceExclude: []string{"assets/skip.dat"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{
			"assets/logo.dat", "demo/__init__.py", "pyproject.toml",
		}, archivePaths(result.Sdist))
	})

	t.Run("referenced license file must exist", func(t *testing.T) {
		root := t.TempDir()
		testutil.WriteTree(t, root, map[string]string{
			"pyproject.toml":   "",
			"demo/__init__.py": "",
		})

		meta := demoMeta()
		meta.License.File = "LICENSE"

		b := &Builder{}
		_, err := b.Build(meta, root, Config{})
		assert.True(t, errors.Is(err, werrors.ErrNotFound))
	})
}

func TestSetDuplicates(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.Add(Entry{ArchivePath: "a.py", SourcePath: "/x/a.py"}))
	require.NoError(t, s.Add(Entry{ArchivePath: "a.py", SourcePath: "/x/a.py"}))
	assert.Equal(t, 1, s.Len())

	err := s.Add(Entry{ArchivePath: "a.py", SourcePath: "/y/a.py"})
	assert.True(t, errors.Is(err, werrors.ErrConfig))
}

func TestConfigFromDoc(t *testing.T) {
	t.Run("reads tool table", func(t *testing.T) {
		doc := map[string]any{
			"tool": map[string]any{
				"wheelhouse": map[string]any{
					"top-level-modules": []any{"demo"},
					"module-location":   "src",
					"source-include":    []any{"assets/*"},
				},
			},
		}
		cfg, err := ConfigFromDoc(doc)
		require.NoError(t, err)
		assert.Equal(t, []string{"demo"}, cfg.TopLevelModules)
		assert.Equal(t, LocationSrc, cfg.ModuleLocation)
		assert.Equal(t, []string{"assets/*"}, cfg.SourceInclude)
	})

	t.Run("rejects unknown module-location", func(t *testing.T) {
		doc := map[string]any{
			"tool": map[string]any{
				"wheelhouse": map[string]any{"module-location": "nested"},
			},
		}
		_, err := ConfigFromDoc(doc)
		assert.True(t, errors.Is(err, werrors.ErrConfig))
	})
}
