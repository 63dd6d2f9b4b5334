package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	werrors "github.com/wheelhouse/cli/internal/errors"
	"github.com/wheelhouse/cli/internal/project"
)

func minimalDoc() map[string]any {
	return map[string]any{
		"project": map[string]any{
			"name":    "Sample_Project",
			"version": "0.1.0",
		},
	}
}

func TestResolveMinimal(t *testing.T) {
	meta, err := Resolve(minimalDoc(), t.TempDir(), nil)
	require.NoError(t, err)

	assert.Equal(t, "sample-project", meta.Name)
	assert.Equal(t, "Sample_Project", meta.RawName)
	assert.Equal(t, "0.1.0", meta.Version)
}

func TestResolveIdempotent(t *testing.T) {
	root := t.TempDir()
	doc := map[string]any{
		"project": map[string]any{
			"name":        "demo",
			"version":     "v1.0.0-rc1",
			"description": "a demo",
			"dependencies": []any{
				"requests>=2",
			},
			"scripts": map[string]any{
				"demo": "demo:main",
			},
		},
	}

	first, err := Resolve(doc, root, nil)
	require.NoError(t, err)
	second, err := Resolve(doc, root, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "1.0.0rc1", first.Version)
}

func TestResolveRequiredFields(t *testing.T) {
	t.Run("missing name", func(t *testing.T) {
		_, err := Resolve(map[string]any{"project": map[string]any{"version": "1.0"}}, t.TempDir(), nil)
		assert.True(t, errors.Is(err, werrors.ErrConfig))
	})

	t.Run("missing version and not dynamic", func(t *testing.T) {
		_, err := Resolve(map[string]any{"project": map[string]any{"name": "x"}}, t.TempDir(), nil)
		assert.True(t, errors.Is(err, werrors.ErrConfig))
	})

	t.Run("missing project table", func(t *testing.T) {
		_, err := Resolve(map[string]any{}, t.TempDir(), nil)
		assert.True(t, errors.Is(err, werrors.ErrConfig))
	})
}

func TestResolveDynamic(t *testing.T) {
	dynDoc := func(fields ...any) map[string]any {
		return map[string]any{
			"project": map[string]any{
				"name":    "demo",
				"dynamic": fields,
			},
		}
	}

	t.Run("version from provider", func(t *testing.T) {
		providers := map[string]Provider{
			"version": func() (any, error) { return "v0.1.0", nil },
		}
		meta, err := Resolve(dynDoc("version"), t.TempDir(), providers)
		require.NoError(t, err)
		assert.Equal(t, "0.1.0", meta.Version)
	})

	t.Run("dynamic field without provider fails", func(t *testing.T) {
		_, err := Resolve(dynDoc("version"), t.TempDir(), nil)
		assert.True(t, errors.Is(err, werrors.ErrConfig))
	})

	t.Run("unsupported dynamic field fails", func(t *testing.T) {
		_, err := Resolve(dynDoc("name"), t.TempDir(), nil)
		assert.True(t, errors.Is(err, werrors.ErrConfig))
	})

	t.Run("dynamic field with static value fails", func(t *testing.T) {
		doc := dynDoc("version")
		doc["project"].(map[string]any)["version"] = "1.0"
		_, err := Resolve(doc, t.TempDir(), nil)
		assert.True(t, errors.Is(err, werrors.ErrConfig))
	})

	t.Run("provider failure propagates", func(t *testing.T) {
		providers := map[string]Provider{
			"version": func() (any, error) {
				return nil, werrors.NewConfigError("no version source", "project.version", "")
			},
		}
		_, err := Resolve(dynDoc("version"), t.TempDir(), providers)
		assert.True(t, errors.Is(err, werrors.ErrConfig))
	})
}

func TestResolveLicense(t *testing.T) {
	t.Run("file and text are mutually exclusive", func(t *testing.T) {
		doc := minimalDoc()
		doc["project"].(map[string]any)["license"] = map[string]any{
			"file": "LICENSE",
			"text": "MIT",
		}
		_, err := Resolve(doc, t.TempDir(), nil)
		assert.True(t, errors.Is(err, werrors.ErrConfig))
	})

	t.Run("bare string is an expression", func(t *testing.T) {
		doc := minimalDoc()
		doc["project"].(map[string]any)["license"] = "MIT"
		meta, err := Resolve(doc, t.TempDir(), nil)
		require.NoError(t, err)
		assert.Equal(t, "MIT", meta.License.Text)
	})

	t.Run("neither string nor table fails", func(t *testing.T) {
		doc := minimalDoc()
		doc["project"].(map[string]any)["license"] = int64(42)
		_, err := Resolve(doc, t.TempDir(), nil)
		assert.True(t, errors.Is(err, werrors.ErrConfig))
	})
}

func TestResolvePersons(t *testing.T) {
	t.Run("array-of-tables syntax parses end to end", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "pyproject.toml"), []byte(`[project]
name = "demo"
version = "1.0.0"

[[project.authors]]
name = "Jo"
email = "jo@example.com"

[[project.authors]]
name = "Sam"

[[project.maintainers]]
email = "maint@example.com"
`), 0o644))

		doc, err := project.Load(root)
		require.NoError(t, err)

		meta, err := Resolve(doc, root, nil)
		require.NoError(t, err)
		assert.Equal(t, []Person{{Name: "Jo", Email: "jo@example.com"}, {Name: "Sam"}}, meta.Authors)
		assert.Equal(t, []Person{{Email: "maint@example.com"}}, meta.Maintainers)
	})

	t.Run("inline array of tables parses", func(t *testing.T) {
		doc := minimalDoc()
		doc["project"].(map[string]any)["authors"] = []any{
			map[string]any{"name": "Jo"},
		}
		meta, err := Resolve(doc, t.TempDir(), nil)
		require.NoError(t, err)
		assert.Equal(t, []Person{{Name: "Jo"}}, meta.Authors)
	})

	t.Run("entry without name or email fails", func(t *testing.T) {
		doc := minimalDoc()
		doc["project"].(map[string]any)["authors"] = []any{map[string]any{}}
		_, err := Resolve(doc, t.TempDir(), nil)
		assert.True(t, errors.Is(err, werrors.ErrConfig))
	})

	t.Run("non-table entry fails", func(t *testing.T) {
		doc := minimalDoc()
		doc["project"].(map[string]any)["authors"] = []any{"Jo"}
		_, err := Resolve(doc, t.TempDir(), nil)
		assert.True(t, errors.Is(err, werrors.ErrConfig))
	})
}

func TestResolveReadme(t *testing.T) {
	t.Run("reads file and infers content type", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# Demo\n"), 0o644))

		doc := minimalDoc()
		doc["project"].(map[string]any)["readme"] = "README.md"

		meta, err := Resolve(doc, root, nil)
		require.NoError(t, err)
		assert.Equal(t, "text/markdown", meta.Readme.ContentType)
		assert.Equal(t, "# Demo\n", meta.Readme.Text)
	})

	t.Run("missing readme file fails", func(t *testing.T) {
		doc := minimalDoc()
		doc["project"].(map[string]any)["readme"] = "README.md"
		_, err := Resolve(doc, t.TempDir(), nil)
		assert.True(t, errors.Is(err, werrors.ErrNotFound))
	})

	t.Run("unknown extension requires explicit content type", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "README.weird"), []byte("x"), 0o644))

		doc := minimalDoc()
		doc["project"].(map[string]any)["readme"] = "README.weird"
		_, err := Resolve(doc, root, nil)
		assert.True(t, errors.Is(err, werrors.ErrConfig))
	})
}

func TestResolveEntryPoints(t *testing.T) {
	t.Run("scripts fold into console_scripts", func(t *testing.T) {
		doc := minimalDoc()
		doc["project"].(map[string]any)["scripts"] = map[string]any{"foo": "pkg:main"}

		meta, err := Resolve(doc, t.TempDir(), nil)
		require.NoError(t, err)
		assert.Equal(t, "pkg:main", meta.EntryPoints["console_scripts"]["foo"])
		assert.True(t, meta.HasEntryPoints())
	})

	t.Run("invalid script name fails", func(t *testing.T) {
		doc := minimalDoc()
		doc["project"].(map[string]any)["scripts"] = map[string]any{"foo-bar!": "pkg:main"}

		_, err := Resolve(doc, t.TempDir(), nil)
		assert.True(t, errors.Is(err, werrors.ErrConfig))
	})

	t.Run("reserved group in entry-points fails", func(t *testing.T) {
		doc := minimalDoc()
		doc["project"].(map[string]any)["entry-points"] = map[string]any{
			"console_scripts": map[string]any{"foo": "pkg:main"},
		}

		_, err := Resolve(doc, t.TempDir(), nil)
		assert.True(t, errors.Is(err, werrors.ErrConfig))
	})
}

func TestCoreMetadata(t *testing.T) {
	meta := &ProjectMetadata{
		RawName:        "demo",
		Name:           "demo",
		Version:        "1.0.0",
		Summary:        "A demo project",
		RequiresPython: ">=3.8",
		Authors:        []Person{{Name: "Jo", Email: "jo@example.com"}, {Name: "Sam"}},
		Classifiers:    []string{"Programming Language :: Python :: 3"},
		Dependencies:   []string{"requests>=2"},
		OptionalDependencies: map[string][]string{
			"test": {"pytest", `mock; python_version < "3.8"`},
		},
		URLs:   map[string]string{"homepage": "https://example.com"},
		Readme: Readme{Text: "Long description\n", ContentType: "text/markdown"},
	}

	body := string(meta.CoreMetadata())

	assert.Contains(t, body, "Metadata-Version: 2.1\n")
	assert.Contains(t, body, "Name: demo\n")
	assert.Contains(t, body, "Version: 1.0.0\n")
	assert.Contains(t, body, "Author: Sam\n")
	assert.Contains(t, body, "Author-email: Jo <jo@example.com>\n")
	assert.Contains(t, body, "Requires-Dist: requests>=2\n")
	assert.Contains(t, body, "Provides-Extra: test\n")
	assert.Contains(t, body, `Requires-Dist: pytest; extra == "test"`+"\n")
	assert.Contains(t, body, `Requires-Dist: mock; (python_version < "3.8") and extra == "test"`+"\n")
	assert.Contains(t, body, "Project-URL: homepage, https://example.com\n")
	assert.True(t, len(body) > 0 && body[len(body)-1] == '\n')

	// Deterministic rendering
	assert.Equal(t, meta.CoreMetadata(), meta.CoreMetadata())
}
