package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	werrors "github.com/wheelhouse/cli/internal/errors"
	"github.com/wheelhouse/cli/internal/output"
	"github.com/wheelhouse/cli/internal/project"
)

// Provider supplies the value of a field declared dynamic. Providers are
// registered by field name before resolution; a declared-dynamic field
// without a provider is a configuration error.
type Provider func() (any, error)

// validDynamic enumerates the fields that may be declared dynamic.
var validDynamic = map[string]bool{
	"version":      true,
	"description":  true,
	"dependencies": true,
}

// Resolve validates and normalizes a parsed pyproject mapping into a
// complete ProjectMetadata record. root is used to read the referenced
// readme file; all other file references are validated later, when the
// file set is computed.
func Resolve(doc map[string]any, root string, providers map[string]Provider) (*ProjectMetadata, error) {
	f := project.NewFetcher(doc)

	if !f.Has("project") {
		return nil, werrors.NewConfigError("missing [project] table", "project", "")
	}

	dynamic, err := f.StringList("project.dynamic")
	if err != nil {
		return nil, err
	}
	for _, field := range dynamic {
		if !validDynamic[field] {
			return nil, werrors.NewConfigError(
				fmt.Sprintf("unsupported dynamic field %q", field), "project.dynamic", "")
		}
		if f.Has("project." + field) {
			return nil, werrors.NewConfigError(
				fmt.Sprintf("field %q is declared dynamic but has a static value", field),
				"project."+field, "remove the static value or drop it from `dynamic`")
		}
	}

	meta := &ProjectMetadata{Dynamic: dynamic}

	rawName, ok, err := f.String("project.name")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, werrors.NewConfigError("missing required field", "project.name", "")
	}
	meta.RawName = rawName
	if meta.Name, err = NormalizeName(rawName); err != nil {
		return nil, err
	}

	if err := resolveVersion(f, meta, dynamic, providers); err != nil {
		return nil, err
	}
	if err := resolveDescription(f, meta, dynamic, providers); err != nil {
		return nil, err
	}
	if err := resolveDependencies(f, meta, dynamic, providers); err != nil {
		return nil, err
	}

	if err := resolveReadme(f, meta, root); err != nil {
		return nil, err
	}
	if err := resolveLicense(f, meta); err != nil {
		return nil, err
	}
	if meta.Authors, err = resolvePersons(f, "project.authors"); err != nil {
		return nil, err
	}
	if meta.Maintainers, err = resolvePersons(f, "project.maintainers"); err != nil {
		return nil, err
	}
	if meta.Keywords, err = f.StringList("project.keywords"); err != nil {
		return nil, err
	}
	if meta.Classifiers, err = f.StringList("project.classifiers"); err != nil {
		return nil, err
	}
	if meta.RequiresPython, _, err = f.String("project.requires-python"); err != nil {
		return nil, err
	}
	if meta.OptionalDependencies, err = f.StringListTable("project.optional-dependencies"); err != nil {
		return nil, err
	}
	if meta.URLs, err = f.StringTable("project.urls"); err != nil {
		return nil, err
	}
	if err := resolveEntryPoints(f, meta); err != nil {
		return nil, err
	}

	if meta.Summary == "" && !contains(dynamic, "description") {
		output.Warn("no project description set", "field", "project.description")
	}

	return meta, nil
}

func dynamicValue(field string, providers map[string]Provider) (any, error) {
	provider, ok := providers[field]
	if !ok {
		return nil, werrors.NewConfigError(
			fmt.Sprintf("no provider registered for dynamic field %q", field),
			"project.dynamic", "")
	}
	return provider()
}

func resolveVersion(f *project.Fetcher, meta *ProjectMetadata, dynamic []string, providers map[string]Provider) error {
	if contains(dynamic, "version") {
		value, err := dynamicValue("version", providers)
		if err != nil {
			return err
		}
		version, ok := value.(string)
		if !ok {
			return werrors.NewConfigError("version provider returned a non-string value", "project.version", "")
		}
		meta.Version, err = NormalizeVersion(version)
		return err
	}

	version, ok, err := f.String("project.version")
	if err != nil {
		return err
	}
	if !ok {
		return werrors.NewConfigError(
			"missing required field", "project.version",
			"declare a static version or add \"version\" to `project.dynamic` to detect it from VCS state")
	}
	meta.Version, err = NormalizeVersion(version)
	return err
}

func resolveDescription(f *project.Fetcher, meta *ProjectMetadata, dynamic []string, providers map[string]Provider) error {
	if contains(dynamic, "description") {
		value, err := dynamicValue("description", providers)
		if err != nil {
			return err
		}
		summary, ok := value.(string)
		if !ok {
			return werrors.NewConfigError("description provider returned a non-string value", "project.description", "")
		}
		meta.Summary = summary
		return nil
	}

	summary, _, err := f.String("project.description")
	meta.Summary = summary
	return err
}

func resolveDependencies(f *project.Fetcher, meta *ProjectMetadata, dynamic []string, providers map[string]Provider) error {
	if contains(dynamic, "dependencies") {
		value, err := dynamicValue("dependencies", providers)
		if err != nil {
			return err
		}
		deps, ok := value.([]string)
		if !ok {
			return werrors.NewConfigError("dependencies provider returned a non-list value", "project.dependencies", "")
		}
		meta.Dependencies = deps
		return nil
	}

	deps, err := f.StringList("project.dependencies")
	meta.Dependencies = deps
	return err
}

// contentTypes maps readme file suffixes to their content types.
var contentTypes = map[string]string{
	".md":  "text/markdown",
	".rst": "text/x-rst",
	".txt": "text/plain",
}

func resolveReadme(f *project.Fetcher, meta *ProjectMetadata, root string) error {
	if !f.Has("project.readme") {
		return nil
	}

	// Either a bare filename or a table with file|text and content-type.
	file, isString, err := f.String("project.readme")
	if err == nil && isString {
		meta.Readme.File = file
	} else {
		if _, err := f.Table("project.readme"); err != nil {
			return err
		}
		if meta.Readme.File, _, err = f.String("project.readme.file"); err != nil {
			return err
		}
		if meta.Readme.Text, _, err = f.String("project.readme.text"); err != nil {
			return err
		}
		if meta.Readme.ContentType, _, err = f.String("project.readme.content-type"); err != nil {
			return err
		}
		if meta.Readme.File != "" && meta.Readme.Text != "" {
			return werrors.NewConfigError(
				"readme `file` and `text` are mutually exclusive", "project.readme", "")
		}
	}

	if meta.Readme.File != "" {
		if meta.Readme.ContentType == "" {
			meta.Readme.ContentType = contentTypes[strings.ToLower(filepath.Ext(meta.Readme.File))]
		}
		if meta.Readme.ContentType == "" {
			return werrors.NewConfigError(
				fmt.Sprintf("cannot infer content type of readme %q", meta.Readme.File),
				"project.readme", "set `project.readme.content-type` explicitly")
		}
		data, err := os.ReadFile(filepath.Join(root, meta.Readme.File))
		if err != nil {
			return werrors.NewNotFoundError("readme file not readable", meta.Readme.File, "")
		}
		meta.Readme.Text = string(data)
	}
	return nil
}

func resolveLicense(f *project.Fetcher, meta *ProjectMetadata) error {
	if !f.Has("project.license") {
		return nil
	}

	// A bare string is an SPDX license expression.
	expr, isString, err := f.String("project.license")
	if err == nil && isString {
		meta.License.Text = expr
		return nil
	}

	// Present but not a string: it must be a table.
	if _, err := f.Table("project.license"); err != nil {
		return err
	}

	if meta.License.File, _, err = f.String("project.license.file"); err != nil {
		return err
	}
	if meta.License.Text, _, err = f.String("project.license.text"); err != nil {
		return err
	}
	if meta.License.File != "" && meta.License.Text != "" {
		return werrors.NewConfigError(
			"license `file` and `text` are mutually exclusive", "project.license", "")
	}
	return nil
}

func resolvePersons(f *project.Fetcher, key string) ([]Person, error) {
	items, err := f.TableList(key)
	if err != nil || items == nil {
		return nil, err
	}

	persons := make([]Person, 0, len(items))
	for _, entry := range items {
		var p Person
		if name, ok := entry["name"]; ok {
			if p.Name, ok = name.(string); !ok {
				return nil, werrors.NewConfigError("`name` must be a string", key, "")
			}
		}
		if email, ok := entry["email"]; ok {
			if p.Email, ok = email.(string); !ok {
				return nil, werrors.NewConfigError("`email` must be a string", key, "")
			}
		}
		if p.Name == "" && p.Email == "" {
			return nil, werrors.NewConfigError("entry needs a `name` or an `email`", key, "")
		}
		persons = append(persons, p)
	}
	return persons, nil
}

func resolveEntryPoints(f *project.Fetcher, meta *ProjectMetadata) error {
	groups := map[string]map[string]string{}

	declared, err := f.Table("project.entry-points")
	if err != nil {
		return err
	}
	for name := range declared {
		group, err := f.StringTable("project.entry-points." + name)
		if err != nil {
			return err
		}
		if name == "console_scripts" || name == "gui_scripts" {
			return werrors.NewConfigError(
				fmt.Sprintf("group %q must be declared via its dedicated table", name),
				"project.entry-points",
				"use [project.scripts] or [project.gui-scripts]")
		}
		groups[name] = group
	}

	scripts, err := f.StringTable("project.scripts")
	if err != nil {
		return err
	}
	if len(scripts) > 0 {
		groups["console_scripts"] = scripts
	}
	guiScripts, err := f.StringTable("project.gui-scripts")
	if err != nil {
		return err
	}
	if len(guiScripts) > 0 {
		groups["gui_scripts"] = guiScripts
	}

	for _, groupName := range []string{"console_scripts", "gui_scripts"} {
		for name := range groups[groupName] {
			if !validScriptName(name) {
				return werrors.NewConfigError(
					fmt.Sprintf("invalid script name %q in %s", name, groupName),
					"project.scripts", "script names must be valid identifiers")
			}
		}
	}

	if len(groups) > 0 {
		meta.EntryPoints = groups
	}
	return nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
