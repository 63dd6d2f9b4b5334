package fileset

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	werrors "github.com/wheelhouse/cli/internal/errors"
	"github.com/wheelhouse/cli/internal/metadata"
	"github.com/wheelhouse/cli/internal/output"
	"github.com/wheelhouse/cli/internal/project"
)

// TrackedLister lists version-controlled files. A (nil, nil) result means
// no VCS information is available and the builder walks the tree instead.
type TrackedLister interface {
	ListTracked(root string) ([]string, error)
}

// walkExcludes are directory names skipped when no VCS file list is
// available.
var walkExcludes = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"__pycache__":  true,
	"build":        true,
	"dist":         true,
	".eggs":        true,
	".tox":         true,
	".nox":         true,
	".venv":        true,
	"venv":         true,
	"node_modules": true,
}

// Builder computes the definitive file sets for both archive kinds.
type Builder struct {
	// Lister supplies the tracked-file list; nil forces the walk fallback.
	Lister TrackedLister
}

// Build returns the sdist and wheel entry sets for a project.
func (b *Builder) Build(meta *metadata.ProjectMetadata, root string, cfg Config) (*Result, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	sdist, err := b.buildSdist(meta, root, cfg)
	if err != nil {
		return nil, err
	}
	wheel, err := b.buildWheel(meta, root, cfg)
	if err != nil {
		return nil, err
	}
	return &Result{Sdist: sdist, Wheel: wheel}, nil
}

func (b *Builder) buildSdist(meta *metadata.ProjectMetadata, root string, cfg Config) (*Set, error) {
	set := NewSet()

	files, err := b.trackedFiles(root)
	if err != nil {
		return nil, err
	}
	for _, rel := range files {
		if excluded(rel, cfg.SourceExclude) || strings.HasSuffix(rel, ".pyc") {
			continue
		}
		if err := addRel(set, root, rel); err != nil {
			return nil, err
		}
	}

	for _, pattern := range cfg.SourceInclude {
		matches, err := filepath.Glob(filepath.Join(root, filepath.FromSlash(pattern)))
		if err != nil {
			return nil, werrors.NewConfigError(
				fmt.Sprintf("invalid source-include pattern %q", pattern),
				"tool.wheelhouse.source-include", "")
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			rel, err := filepath.Rel(root, match)
			if err != nil {
				return nil, err
			}
			// Excludes apply to included files too: the set is tracked
			// files plus includes minus excludes.
			slashed := filepath.ToSlash(rel)
			if excluded(slashed, cfg.SourceExclude) || strings.HasSuffix(slashed, ".pyc") {
				continue
			}
			if err := addRel(set, root, slashed); err != nil {
				return nil, err
			}
		}
	}

	// Always-required files: the project descriptor and any referenced
	// license and readme files ship regardless of tracking state.
	required := []string{project.DescriptorName}
	if meta.License.File != "" {
		required = append(required, filepath.ToSlash(meta.License.File))
	}
	if meta.Readme.File != "" {
		required = append(required, filepath.ToSlash(meta.Readme.File))
	}
	for _, rel := range required {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			return nil, werrors.NewNotFoundError(
				fmt.Sprintf("required file %q is missing", rel), rel, "")
		}
		if err := addRel(set, root, rel); err != nil {
			return nil, err
		}
	}

	if set.Len() == 0 {
		return nil, werrors.NewConfigError("computed source file set is empty", "", "")
	}
	return set, nil
}

// trackedFiles returns the authoritative source list: VCS-tracked files
// when available, otherwise a filesystem walk minus the fixed excludes.
func (b *Builder) trackedFiles(root string) ([]string, error) {
	if b.Lister != nil {
		files, err := b.Lister.ListTracked(root)
		if err != nil {
			output.Debug("tracked-file listing unavailable, walking tree", "error", err)
		} else if files != nil {
			return files, nil
		}
	}

	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if p != root && (walkExcludes[name] || strings.HasSuffix(name, ".egg-info")) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	return files, err
}

func (b *Builder) buildWheel(meta *metadata.ProjectMetadata, root string, cfg Config) (*Set, error) {
	srcRoot, err := resolveSourceRoot(meta, root, cfg)
	if err != nil {
		return nil, err
	}

	modules := cfg.TopLevelModules
	if len(modules) == 0 {
		if modules, err = inferModules(meta, srcRoot); err != nil {
			return nil, err
		}
	}

	set := NewSet()
	for _, module := range modules {
		if base := strings.TrimSuffix(module, ".py"); base == "test" || base == "tests" {
			output.Warn("top-level module looks like a test suite, it will be installed", "module", module)
		}
		if err := addModule(set, srcRoot, module); err != nil {
			return nil, err
		}
	}

	if set.Len() == 0 {
		return nil, werrors.NewConfigError(
			"computed package file set is empty", "tool.wheelhouse.top-level-modules",
			"declare top-level modules explicitly or add a package directory with an __init__.py")
	}
	return set, nil
}

// resolveSourceRoot applies the module-location policy. When the policy is
// not declared and both a src/ layout and a root-level package are
// plausible, the configuration is ambiguous and the user must choose.
func resolveSourceRoot(meta *metadata.ProjectMetadata, root string, cfg Config) (string, error) {
	srcDir := filepath.Join(root, "src")

	switch cfg.ModuleLocation {
	case LocationFlat:
		return root, nil
	case LocationSrc:
		if info, err := os.Stat(srcDir); err != nil || !info.IsDir() {
			return "", werrors.NewConfigError(
				"module-location is \"src\" but there is no src/ directory",
				"tool.wheelhouse.module-location", "")
		}
		return srcDir, nil
	}

	flatHas := hasModules(meta, root)
	srcHas := false
	if info, err := os.Stat(srcDir); err == nil && info.IsDir() {
		srcHas = hasModules(meta, srcDir)
	}

	switch {
	case flatHas && srcHas:
		return "", werrors.NewConfigError(
			"found package candidates both at the project root and under src/",
			"tool.wheelhouse.module-location", `set module-location to "flat" or "src" to disambiguate`)
	case srcHas:
		return srcDir, nil
	default:
		return root, nil
	}
}

// hasModules reports whether dir holds any top-level module candidate.
func hasModules(meta *metadata.ProjectMetadata, dir string) bool {
	modules, err := inferModules(meta, dir)
	return err == nil && len(modules) > 0
}

// inferModules lists top-level module candidates directly under srcRoot:
// package directories with an __init__.py, and a single-file module named
// after the project.
func inferModules(meta *metadata.ProjectMetadata, srcRoot string) ([]string, error) {
	entries, err := os.ReadDir(srcRoot)
	if err != nil {
		return nil, err
	}

	var modules []string
	fileModule := meta.DistName() + ".py"
	for _, entry := range entries {
		if entry.IsDir() {
			if _, err := os.Stat(filepath.Join(srcRoot, entry.Name(), "__init__.py")); err == nil {
				modules = append(modules, entry.Name())
			}
			continue
		}
		if entry.Name() == fileModule {
			modules = append(modules, entry.Name())
		}
	}
	return modules, nil
}

// addModule adds a package directory or single-file module to the set.
func addModule(set *Set, srcRoot, module string) error {
	full := filepath.Join(srcRoot, filepath.FromSlash(module))
	info, err := os.Stat(full)
	if err != nil {
		return werrors.NewConfigError(
			fmt.Sprintf("top-level module %q does not exist", module),
			"tool.wheelhouse.top-level-modules", "")
	}

	if !info.IsDir() {
		return set.Add(Entry{ArchivePath: filepath.ToSlash(module), SourcePath: full})
	}

	return filepath.WalkDir(full, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "__pycache__" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".pyc") {
			return nil
		}
		rel, err := filepath.Rel(srcRoot, p)
		if err != nil {
			return err
		}
		return set.Add(Entry{ArchivePath: filepath.ToSlash(rel), SourcePath: p})
	})
}

func addRel(set *Set, root, rel string) error {
	return set.Add(Entry{
		ArchivePath: rel,
		SourcePath:  filepath.Join(root, filepath.FromSlash(rel)),
	})
}

// excluded reports whether a slash-separated relative path matches any
// exclude pattern, either directly or as a file under a matched directory.
func excluded(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		if strings.HasPrefix(rel, strings.TrimSuffix(pattern, "/")+"/") {
			return true
		}
	}
	return false
}
