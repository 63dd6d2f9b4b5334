// Package task invokes user-registered build steps at defined pipeline
// points. The core defines only the invocation contract; it ships no
// built-in steps.
package task

import (
	"fmt"

	werrors "github.com/wheelhouse/cli/internal/errors"
	"github.com/wheelhouse/cli/internal/fileset"
	"github.com/wheelhouse/cli/internal/metadata"
	"github.com/wheelhouse/cli/internal/output"
)

// HookPoint names a pipeline point where steps run.
type HookPoint string

const (
	// HookPreMetadata runs after metadata resolution, before the record
	// is frozen. Only here may steps mutate the metadata.
	HookPreMetadata HookPoint = "pre-metadata"

	// HookPreBuild runs after the file set is computed, before archives
	// are written. Only here may steps mutate the file set.
	HookPreBuild HookPoint = "pre-build"

	// HookPostBuild runs after an archive has been published.
	HookPostBuild HookPoint = "post-build"
)

// Step is a user build step.
type Step struct {
	Name string
	Run  func(*Context) error
}

// Context is the restricted view handed to each step. Mutation outside the
// fields permitted for the current hook point is rejected with an error.
type Context struct {
	hook    HookPoint
	meta    *metadata.ProjectMetadata
	files   *fileset.Result
	scratch map[string]any
}

// NewContext builds a step context for one hook point.
func NewContext(hook HookPoint, meta *metadata.ProjectMetadata, files *fileset.Result, scratch map[string]any) *Context {
	if scratch == nil {
		scratch = map[string]any{}
	}
	return &Context{hook: hook, meta: meta, files: files, scratch: scratch}
}

// Hook returns the current hook point.
func (c *Context) Hook() HookPoint {
	return c.hook
}

// Metadata returns a read-only copy of the in-progress project record.
func (c *Context) Metadata() metadata.ProjectMetadata {
	if c.meta == nil {
		return metadata.ProjectMetadata{}
	}
	return *c.meta
}

// MutableMetadata exposes the project record for mutation. Permitted only
// at the pre-metadata hook.
func (c *Context) MutableMetadata() (*metadata.ProjectMetadata, error) {
	if c.hook != HookPreMetadata {
		return nil, werrors.NewConfigError(
			fmt.Sprintf("metadata is immutable at the %s hook", c.hook), "",
			"mutate metadata from a pre-metadata step")
	}
	return c.meta, nil
}

// Files returns the computed file sets, read-only by convention. It is nil
// before the pre-build hook.
func (c *Context) Files() *fileset.Result {
	return c.files
}

// AddWheelFile adds a generated file to the wheel set. Permitted only at
// the pre-build hook.
func (c *Context) AddWheelFile(archivePath, sourcePath string) error {
	if c.hook != HookPreBuild {
		return werrors.NewConfigError(
			fmt.Sprintf("the file set is immutable at the %s hook", c.hook), "",
			"add generated files from a pre-build step")
	}
	return c.files.Wheel.Add(fileset.Entry{
		ArchivePath: archivePath,
		SourcePath:  sourcePath,
		Kind:        fileset.KindGenerated,
	})
}

// ExcludeWheelFile removes a path from the wheel set. Permitted only at
// the pre-build hook.
func (c *Context) ExcludeWheelFile(archivePath string) error {
	if c.hook != HookPreBuild {
		return werrors.NewConfigError(
			fmt.Sprintf("the file set is immutable at the %s hook", c.hook), "", "")
	}
	c.files.Wheel.Remove(archivePath)
	return nil
}

// Scratch returns the cross-hook key/value storage shared by all steps of
// one build invocation.
func (c *Context) Scratch() map[string]any {
	return c.scratch
}

// Runner holds the registered steps per hook point.
type Runner struct {
	steps map[HookPoint][]Step
}

// NewRunner returns a runner with no registered steps.
func NewRunner() *Runner {
	return &Runner{steps: map[HookPoint][]Step{}}
}

// Register appends a step at a hook point. Steps run in declaration order.
func (r *Runner) Register(hook HookPoint, name string, run func(*Context) error) {
	r.steps[hook] = append(r.steps[hook], Step{Name: name, Run: run})
}

// Len returns the number of steps registered at a hook point.
func (r *Runner) Len(hook HookPoint) int {
	return len(r.steps[hook])
}

// Run executes the steps registered at a hook point. The first failing
// step aborts with its error wrapped as a build failure; there is no
// partial-success continuation.
func (r *Runner) Run(hook HookPoint, ctx *Context) error {
	for _, step := range r.steps[hook] {
		output.Debug("running build step", "hook", string(hook), "step", step.Name)
		if err := step.Run(ctx); err != nil {
			return werrors.NewTaskError(step.Name, err)
		}
	}
	return nil
}
