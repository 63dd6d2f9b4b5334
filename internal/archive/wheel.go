package archive

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	werrors "github.com/wheelhouse/cli/internal/errors"
	"github.com/wheelhouse/cli/internal/fileset"
	"github.com/wheelhouse/cli/internal/metadata"
)

// Compatibility tags for pure-Python wheels: any interpreter of the major
// version, no ABI, any platform. Native extensions are out of scope.
const (
	PythonTag   = "py3"
	ABITag      = "none"
	PlatformTag = "any"
)

// wheelEpoch is the fallback entry timestamp; zip cannot represent times
// before 1980.
var wheelEpoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// WheelBuilder emits the binary archive: a zip with the package files and
// a `<name>-<version>.dist-info/` directory holding METADATA, WHEEL, the
// entry-points descriptor and the RECORD checksum manifest.
type WheelBuilder struct {
	Meta *metadata.ProjectMetadata

	// Generator identifies the builder in the WHEEL descriptor.
	Generator string

	// Epoch stamps every entry; the zero value means 1980-01-01.
	Epoch time.Time
}

// Tag returns the full compatibility tag.
func (b *WheelBuilder) Tag() string {
	return PythonTag + "-" + ABITag + "-" + PlatformTag
}

// Filename returns the archive filename.
func (b *WheelBuilder) Filename() string {
	return fmt.Sprintf("%s-%s-%s.whl", b.Meta.DistName(), b.Meta.Version, b.Tag())
}

// distInfoDir is the metadata directory inside the archive.
func (b *WheelBuilder) distInfoDir() string {
	return fmt.Sprintf("%s-%s.dist-info", b.Meta.DistName(), b.Meta.Version)
}

// wheelText is the WHEEL format descriptor.
func (b *WheelBuilder) wheelText() []byte {
	var s strings.Builder
	s.WriteString("Wheel-Version: 1.0\n")
	s.WriteString("Generator: " + b.Generator + "\n")
	s.WriteString("Root-Is-Purelib: true\n")
	s.WriteString("Tag: " + b.Tag() + "\n")
	return []byte(s.String())
}

// Build writes the wheel into outDir and returns its filename.
func (b *WheelBuilder) Build(outDir string, entries *fileset.Set) (string, error) {
	filename := b.Filename()
	distInfo := b.distInfoDir()

	epoch := b.Epoch
	if epoch.IsZero() || epoch.Before(wheelEpoch) {
		epoch = wheelEpoch
	}

	err := writeAtomic(outDir, filename, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		rec := &record{}

		for _, entry := range entries.Entries() {
			if err := writeZipFile(zw, rec, entry, epoch); err != nil {
				return err
			}
		}

		if err := writeZipBytes(zw, rec, distInfo+"/METADATA", b.Meta.CoreMetadata(), epoch); err != nil {
			return err
		}
		if err := writeZipBytes(zw, rec, distInfo+"/WHEEL", b.wheelText(), epoch); err != nil {
			return err
		}
		if b.Meta.HasEntryPoints() {
			if err := writeZipBytes(zw, rec, distInfo+"/entry_points.txt", EntryPointsText(b.Meta), epoch); err != nil {
				return err
			}
		}

		// RECORD lists every other file with hash and size, and itself
		// without either.
		recordPath := distInfo + "/RECORD"
		if err := writeZipBytes(zw, nil, recordPath, rec.render(recordPath), epoch); err != nil {
			return err
		}

		return zw.Close()
	})
	if err != nil {
		return "", err
	}
	return filename, nil
}

// record accumulates the per-file checksum manifest while entries are
// written.
type record struct {
	rows []string
}

func (r *record) add(path string, sum []byte, size int64) {
	digest := base64.RawURLEncoding.EncodeToString(sum)
	r.rows = append(r.rows, fmt.Sprintf("%s,sha256=%s,%d", path, digest, size))
}

// render emits the full RECORD body, closing with RECORD's own hashless row.
func (r *record) render(recordPath string) []byte {
	var b strings.Builder
	for _, row := range r.rows {
		b.WriteString(row)
		b.WriteString("\n")
	}
	b.WriteString(recordPath + ",,\n")
	return []byte(b.String())
}

// zipHeader returns a normalized entry header: fixed method, mode and
// timestamp.
func zipHeader(path string, epoch time.Time) *zip.FileHeader {
	hdr := &zip.FileHeader{
		Name:     path,
		Method:   zip.Deflate,
		Modified: epoch,
	}
	hdr.SetMode(0o644)
	return hdr
}

// writeZipFile streams a source file into the archive while hashing it.
func writeZipFile(zw *zip.Writer, rec *record, entry fileset.Entry, epoch time.Time) error {
	f, err := os.Open(entry.SourcePath)
	if err != nil {
		return werrors.NewNotFoundError(
			fmt.Sprintf("file disappeared before archiving: %q", entry.ArchivePath),
			entry.SourcePath, "")
	}
	defer f.Close()

	w, err := zw.CreateHeader(zipHeader(entry.ArchivePath, epoch))
	if err != nil {
		return err
	}

	h := sha256.New()
	size, err := io.Copy(io.MultiWriter(w, h), f)
	if err != nil {
		return fmt.Errorf("archiving %q: %w", entry.ArchivePath, err)
	}
	rec.add(entry.ArchivePath, h.Sum(nil), size)
	return nil
}

// writeZipBytes writes generated manifest content. rec may be nil for the
// RECORD file itself.
func writeZipBytes(zw *zip.Writer, rec *record, path string, content []byte, epoch time.Time) error {
	w, err := zw.CreateHeader(zipHeader(path, epoch))
	if err != nil {
		return err
	}
	if _, err := w.Write(content); err != nil {
		return err
	}
	if rec != nil {
		sum := sha256.Sum256(content)
		rec.add(path, sum[:], int64(len(content)))
	}
	return nil
}
