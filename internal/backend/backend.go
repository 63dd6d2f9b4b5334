// Package backend orchestrates the build pipeline: metadata resolution,
// version detection, file-set computation, task hooks, and archive
// assembly. It implements the four operations a build frontend invokes:
// listing extra requirements per archive kind and building each archive.
package backend

import (
	"path/filepath"

	"github.com/wheelhouse/cli/internal/archive"
	"github.com/wheelhouse/cli/internal/config"
	"github.com/wheelhouse/cli/internal/fileset"
	"github.com/wheelhouse/cli/internal/metadata"
	"github.com/wheelhouse/cli/internal/output"
	"github.com/wheelhouse/cli/internal/project"
	"github.com/wheelhouse/cli/internal/task"
	"github.com/wheelhouse/cli/internal/vcs"
	"github.com/wheelhouse/cli/internal/version"
)

// Options configures a backend for one project.
type Options struct {
	// Root is the project root directory.
	Root string

	// Doc is the pre-parsed pyproject mapping. When nil it is loaded
	// from Root.
	Doc map[string]any

	// Settings are the tool-level settings (output dir, overrides).
	// When nil the defaults apply.
	Settings *config.Settings

	// Tasks holds user-registered build steps. When nil no steps run.
	Tasks *task.Runner

	// Querier answers VCS queries; defaults to the git implementation.
	Querier vcs.Querier

	// Lister lists tracked files; defaults to the git implementation.
	Lister fileset.TrackedLister
}

// Backend is a single-project build pipeline. Every operation is
// independent and idempotent: repeated calls over the same project state
// produce equivalent output.
type Backend struct {
	root     string
	doc      map[string]any
	settings *config.Settings
	tasks    *task.Runner
	querier  vcs.Querier
	lister   fileset.TrackedLister
	detector *vcs.Detector
	scratch  map[string]any
}

// New creates a backend for a project root.
func New(opts Options) (*Backend, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, err
	}

	doc := opts.Doc
	if doc == nil {
		if doc, err = project.Load(root); err != nil {
			return nil, err
		}
	}

	settings := opts.Settings
	if settings == nil {
		settings = config.DefaultSettings()
	}
	tasks := opts.Tasks
	if tasks == nil {
		tasks = task.NewRunner()
	}

	querier := opts.Querier
	if querier == nil {
		querier = vcs.Git{}
	}
	lister := opts.Lister
	if lister == nil {
		if git, ok := querier.(vcs.Git); ok {
			lister = git
		} else {
			lister = vcs.Git{}
		}
	}

	return &Backend{
		root:     root,
		doc:      doc,
		settings: settings,
		tasks:    tasks,
		querier:  querier,
		lister:   lister,
		detector: &vcs.Detector{Root: root, Querier: querier, Override: settings.VCSVersion},
		scratch:  map[string]any{},
	}, nil
}

// RequiresForSdist lists extra requirements for a source-archive build.
// The backend is self-contained, so there are none.
func (b *Backend) RequiresForSdist() []string {
	return []string{}
}

// RequiresForWheel lists extra requirements for a binary-archive build.
func (b *Backend) RequiresForWheel() []string {
	return []string{}
}

// Resolve produces the canonical project record, wiring the version
// detector in as the provider for a dynamic version.
func (b *Backend) Resolve() (*metadata.ProjectMetadata, error) {
	providers := map[string]metadata.Provider{
		"version": func() (any, error) {
			spec, err := b.detector.Detect()
			if err != nil {
				return nil, err
			}
			output.Debug("detected project version", "version", spec.Value, "source", string(spec.Source))
			return spec.Value, nil
		},
	}

	meta, err := metadata.Resolve(b.doc, b.root, providers)
	if err != nil {
		return nil, err
	}

	ctx := task.NewContext(task.HookPreMetadata, meta, nil, b.scratch)
	if err := b.tasks.Run(task.HookPreMetadata, ctx); err != nil {
		return nil, err
	}
	return meta, nil
}

// fileSets computes both archive file sets for resolved metadata.
func (b *Backend) fileSets(meta *metadata.ProjectMetadata) (*fileset.Result, error) {
	cfg, err := fileset.ConfigFromDoc(b.doc)
	if err != nil {
		return nil, err
	}
	builder := &fileset.Builder{Lister: b.lister}
	return builder.Build(meta, b.root, cfg)
}

// BuildSdist builds the source archive into outDir and returns its
// filename.
func (b *Backend) BuildSdist(outDir string) (string, error) {
	meta, files, err := b.prepare()
	if err != nil {
		return "", err
	}

	builder := &archive.SdistBuilder{Meta: meta, Epoch: b.settings.Epoch()}
	filename, err := builder.Build(outDir, files.Sdist)
	if err != nil {
		return "", err
	}
	output.Debug("sdist written", "file", filename)

	ctx := task.NewContext(task.HookPostBuild, meta, files, b.scratch)
	if err := b.tasks.Run(task.HookPostBuild, ctx); err != nil {
		return "", err
	}
	return filename, nil
}

// BuildWheel builds the binary archive into outDir and returns its
// filename.
func (b *Backend) BuildWheel(outDir string) (string, error) {
	meta, files, err := b.prepare()
	if err != nil {
		return "", err
	}

	builder := &archive.WheelBuilder{
		Meta:      meta,
		Generator: version.Generator(),
		Epoch:     b.settings.Epoch(),
	}
	filename, err := builder.Build(outDir, files.Wheel)
	if err != nil {
		return "", err
	}
	output.Debug("wheel written", "file", filename)

	ctx := task.NewContext(task.HookPostBuild, meta, files, b.scratch)
	if err := b.tasks.Run(task.HookPostBuild, ctx); err != nil {
		return "", err
	}
	return filename, nil
}

// prepare runs the shared pipeline head: resolve metadata, compute the
// file sets, and give pre-build steps their chance to adjust the wheel
// contents.
func (b *Backend) prepare() (*metadata.ProjectMetadata, *fileset.Result, error) {
	meta, err := b.Resolve()
	if err != nil {
		return nil, nil, err
	}

	files, err := b.fileSets(meta)
	if err != nil {
		return nil, nil, err
	}

	ctx := task.NewContext(task.HookPreBuild, meta, files, b.scratch)
	if err := b.tasks.Run(task.HookPreBuild, ctx); err != nil {
		return nil, nil, err
	}
	return meta, files, nil
}
