package backend

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheelhouse/cli/internal/config"
	werrors "github.com/wheelhouse/cli/internal/errors"
	"github.com/wheelhouse/cli/internal/task"
	"github.com/wheelhouse/cli/internal/testutil"
	"github.com/wheelhouse/cli/internal/vcs"
)

// fakeVCS answers all queries from canned values and can double as a
// tracked-file lister.
type fakeVCS struct {
	describe *vcs.Describe
	dirty    bool
	tracked  []string
}

func (f *fakeVCS) Describe(string) (*vcs.Describe, error)           { return f.describe, nil }
func (f *fakeVCS) IsDirty(string) (bool, error)                     { return f.dirty, nil }
func (f *fakeVCS) ExportSubstitution(string) (*vcs.Describe, error) { return nil, nil }
func (f *fakeVCS) ListTracked(string) ([]string, error)             { return f.tracked, nil }

// scaffold writes a minimal buildable project and returns its root.
func scaffold(t *testing.T, pyproject string) string {
	t.Helper()
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"pyproject.toml":             pyproject,
		"sample_project/__init__.py": "",
	})
	return root
}

const dynamicPyproject = `[project]
name = "Sample_Project"
dynamic = ["version"]
`

func TestResolveWithDetectedVersion(t *testing.T) {
	root := scaffold(t, dynamicPyproject)
	q := &fakeVCS{describe: &vcs.Describe{Tag: "0.1.0"}}

	b, err := New(Options{Root: root, Querier: q, Lister: q})
	require.NoError(t, err)

	meta, err := b.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "sample-project", meta.Name)
	assert.Equal(t, "0.1.0", meta.Version)
}

func TestBuildBothArchives(t *testing.T) {
	root := scaffold(t, dynamicPyproject)
	q := &fakeVCS{describe: &vcs.Describe{Tag: "v0.1.0"}}

	b, err := New(Options{Root: root, Querier: q, Lister: q})
	require.NoError(t, err)

	outDir := filepath.Join(root, "dist")

	sdist, err := b.BuildSdist(outDir)
	require.NoError(t, err)
	assert.Equal(t, "sample_project-0.1.0.tar.gz", sdist)

	wheel, err := b.BuildWheel(outDir)
	require.NoError(t, err)
	assert.Equal(t, "sample_project-0.1.0-py3-none-any.whl", wheel)

	for _, name := range []string{sdist, wheel} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, "archive %s not written", name)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	root := scaffold(t, dynamicPyproject)
	q := &fakeVCS{describe: &vcs.Describe{Tag: "v0.1.0", Distance: 2, ShortRev: "abc1234"}}

	b, err := New(Options{Root: root, Querier: q, Lister: q})
	require.NoError(t, err)

	first := filepath.Join(root, "d1")
	second := filepath.Join(root, "d2")

	f1, err := b.BuildWheel(first)
	require.NoError(t, err)
	f2, err := b.BuildWheel(second)
	require.NoError(t, err)
	assert.Equal(t, f1, f2)

	b1, err := os.ReadFile(filepath.Join(first, f1))
	require.NoError(t, err)
	b2, err := os.ReadFile(filepath.Join(second, f2))
	require.NoError(t, err)
	assert.Equal(t, b1, b2, "two builds from the same state must be byte-identical")
}

func TestVersionOverride(t *testing.T) {
	root := scaffold(t, dynamicPyproject)
	q := &fakeVCS{describe: &vcs.Describe{Tag: "v9.9.9"}}

	settings := config.DefaultSettings()
	settings.VCSVersion = "1.2.3"

	b, err := New(Options{Root: root, Querier: q, Lister: q, Settings: settings})
	require.NoError(t, err)

	meta, err := b.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", meta.Version)
}

func TestDynamicVersionWithoutSourceFails(t *testing.T) {
	root := scaffold(t, dynamicPyproject)
	q := &fakeVCS{} // no describe, no export substitution

	b, err := New(Options{Root: root, Querier: q, Lister: q})
	require.NoError(t, err)

	_, err = b.Resolve()
	assert.True(t, errors.Is(err, werrors.ErrConfig))
}

func TestRequires(t *testing.T) {
	root := scaffold(t, dynamicPyproject)
	b, err := New(Options{Root: root, Querier: &fakeVCS{}})
	require.NoError(t, err)

	assert.Empty(t, b.RequiresForSdist())
	assert.Empty(t, b.RequiresForWheel())
}

func TestTaskHooks(t *testing.T) {
	root := scaffold(t, dynamicPyproject)
	q := &fakeVCS{describe: &vcs.Describe{Tag: "v0.1.0"}}

	t.Run("pre-metadata steps can set the summary", func(t *testing.T) {
		tasks := task.NewRunner()
		tasks.Register(task.HookPreMetadata, "set-summary", func(ctx *task.Context) error {
			meta, err := ctx.MutableMetadata()
			if err != nil {
				return err
			}
			meta.Summary = "filled in by a step"
			return nil
		})

		b, err := New(Options{Root: root, Querier: q, Lister: q, Tasks: tasks})
		require.NoError(t, err)

		meta, err := b.Resolve()
		require.NoError(t, err)
		assert.Equal(t, "filled in by a step", meta.Summary)
	})

	t.Run("pre-build steps can add generated files", func(t *testing.T) {
		generated := filepath.Join(root, ".generated", "_build_info.py")
		require.NoError(t, os.MkdirAll(filepath.Dir(generated), 0o755))
		require.NoError(t, os.WriteFile(generated, []byte("BUILT = True\n"), 0o644))

		tasks := task.NewRunner()
		tasks.Register(task.HookPreBuild, "add-build-info", func(ctx *task.Context) error {
			return ctx.AddWheelFile("sample_project/_build_info.py", generated)
		})

		b, err := New(Options{Root: root, Querier: q, Lister: q, Tasks: tasks})
		require.NoError(t, err)

		outDir := filepath.Join(root, "dist-task")
		_, err = b.BuildWheel(outDir)
		require.NoError(t, err)
	})

	t.Run("failing step aborts the build", func(t *testing.T) {
		tasks := task.NewRunner()
		tasks.Register(task.HookPreBuild, "explode", func(*task.Context) error {
			return errors.New("boom")
		})

		b, err := New(Options{Root: root, Querier: q, Lister: q, Tasks: tasks})
		require.NoError(t, err)

		_, err = b.BuildWheel(filepath.Join(root, "dist-fail"))
		assert.True(t, errors.Is(err, werrors.ErrTask))

		_, statErr := os.Stat(filepath.Join(root, "dist-fail"))
		assert.True(t, os.IsNotExist(statErr), "no output directory should appear for an aborted build")
	})
}

func TestStaticVersionProject(t *testing.T) {
	root := scaffold(t, "[project]\nname = \"Sample_Project\"\nversion = \"2.0.0\"\n")

	// Static versions never consult the VCS.
	b, err := New(Options{Root: root, Querier: &fakeVCS{}, Lister: &fakeVCS{}})
	require.NoError(t, err)

	meta, err := b.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", meta.Version)
}
