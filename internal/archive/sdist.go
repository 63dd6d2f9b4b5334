package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/klauspost/compress/gzip"

	werrors "github.com/wheelhouse/cli/internal/errors"
	"github.com/wheelhouse/cli/internal/fileset"
	"github.com/wheelhouse/cli/internal/metadata"
)

// generatedLicenseName is where inline license text lands in the sdist.
const generatedLicenseName = "LICENSE"

// SdistBuilder emits the source archive: a gzip-compressed pax tar with
// every source file under a `<name>-<version>/` top directory plus the
// generated PKG-INFO manifest.
type SdistBuilder struct {
	Meta *metadata.ProjectMetadata

	// Epoch stamps every entry; the zero value means the unix epoch.
	Epoch time.Time
}

// Filename returns the archive filename.
func (b *SdistBuilder) Filename() string {
	return fmt.Sprintf("%s-%s.tar.gz", b.Meta.DistName(), b.Meta.Version)
}

// baseDir is the top-level directory inside the archive.
func (b *SdistBuilder) baseDir() string {
	return fmt.Sprintf("%s-%s", b.Meta.DistName(), b.Meta.Version)
}

// sdistEntry is one file to write: either sourced from disk or generated.
type sdistEntry struct {
	archivePath string
	sourcePath  string
	content     []byte
}

// Build writes the sdist into outDir and returns its filename.
func (b *SdistBuilder) Build(outDir string, entries *fileset.Set) (string, error) {
	filename := b.Filename()
	base := b.baseDir()

	all := make([]sdistEntry, 0, entries.Len()+2)
	for _, e := range entries.Entries() {
		all = append(all, sdistEntry{
			archivePath: base + "/" + e.ArchivePath,
			sourcePath:  e.SourcePath,
		})
	}
	all = append(all, sdistEntry{
		archivePath: base + "/PKG-INFO",
		content:     b.Meta.CoreMetadata(),
	})
	if b.Meta.License.Text != "" && !entries.Contains(generatedLicenseName) {
		all = append(all, sdistEntry{
			archivePath: base + "/" + generatedLicenseName,
			content:     []byte(b.Meta.License.Text),
		})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].archivePath < all[j].archivePath })

	epoch := b.Epoch
	if epoch.IsZero() {
		epoch = time.Unix(0, 0).UTC()
	}

	err := writeAtomic(outDir, filename, func(w io.Writer) error {
		gz := gzip.NewWriter(w)
		gz.Name = ""
		gz.ModTime = epoch
		gz.OS = 255

		tw := tar.NewWriter(gz)
		for _, entry := range all {
			if err := writeTarEntry(tw, entry, epoch); err != nil {
				return err
			}
		}
		if err := tw.Close(); err != nil {
			return err
		}
		return gz.Close()
	})
	if err != nil {
		return "", err
	}
	return filename, nil
}

// writeTarEntry streams one entry with normalized header fields: fixed
// ownership and timestamps so archive bytes do not depend on the build
// host.
func writeTarEntry(tw *tar.Writer, entry sdistEntry, epoch time.Time) error {
	hdr := &tar.Header{
		Name:    entry.archivePath,
		Mode:    0o644,
		ModTime: epoch,
		Format:  tar.FormatPAX,
	}

	if entry.content != nil {
		hdr.Size = int64(len(entry.content))
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		_, err := tw.Write(entry.content)
		return err
	}

	f, err := os.Open(entry.sourcePath)
	if err != nil {
		return werrors.NewNotFoundError(
			fmt.Sprintf("file disappeared before archiving: %q", entry.archivePath),
			entry.sourcePath, "")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	hdr.Size = info.Size()
	if info.Mode()&0o111 != 0 {
		hdr.Mode = 0o755
	}

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("archiving %q: %w", entry.archivePath, err)
	}
	return nil
}
