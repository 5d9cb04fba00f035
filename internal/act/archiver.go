// internal/act/archiver.go
package act

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/flate"

	commonerrors "github.com/judzis-sketch/gedimu-registras/internal/common/errors"
	"github.com/judzis-sketch/gedimu-registras/internal/common/logger"
	"github.com/judzis-sketch/gedimu-registras/internal/common/metrics"
	"github.com/judzis-sketch/gedimu-registras/internal/models"
)

// ArchiveResult is a bundle of act documents plus the user-facing summary
// counts.
type ArchiveResult struct {
	Bundle   []byte
	Filename string
	Included int
	Skipped  int
}

// Archiver batches completed acts into a single downloadable zip bundle.
// When outputDir is non-empty every bundle is also written there, so
// operators keep a copy next to the served download.
type Archiver struct {
	now       func() time.Time
	outputDir string
	logger    logger.Logger
}

func NewArchiver(now func() time.Time, outputDir string, log logger.Logger) *Archiver {
	if now == nil {
		now = time.Now
	}
	return &Archiver{now: now, outputDir: outputDir, logger: log}
}

// Archive filters its input to completed faults carrying an act snapshot,
// renders each into a PDF document and collects them into one zip bundle.
// Ineligible faults are silently skipped and counted. The loop is strictly
// sequential: a failing single document is skipped and counted, never
// aborting the batch. Zero eligible faults yield an EMPTY_ARCHIVE error
// instead of an empty bundle.
func (a *Archiver) Archive(faults []models.Fault) (*ArchiveResult, error) {
	now := a.now().UTC()
	skipped := 0

	var eligible []*models.Fault
	for i := range faults {
		f := &faults[i]
		if f.Status != models.StatusCompleted || len(f.ActSnapshot) == 0 {
			skipped++
			continue
		}
		eligible = append(eligible, f)
	}
	if len(eligible) == 0 {
		metrics.ArchiveSkipped.Add(float64(skipped))
		return nil, commonerrors.NewEmptyArchiveError()
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	included := 0
	for _, f := range eligible {
		doc, err := PackageAsDocument(f.ActSnapshot)
		if err != nil {
			a.logger.Warn("skipping fault during archiving", map[string]interface{}{
				"faultId":   f.ID,
				"displayId": f.DisplayID,
				"error":     err,
			})
			skipped++
			continue
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     DocumentFilename(f.DisplayID),
			Method:   zip.Deflate,
			Modified: now,
		})
		if err != nil {
			return nil, commonerrors.NewStoreWriteFailedError(err)
		}
		if _, err := w.Write(doc); err != nil {
			return nil, commonerrors.NewStoreWriteFailedError(err)
		}
		included++
	}
	if err := zw.Close(); err != nil {
		return nil, commonerrors.NewStoreWriteFailedError(err)
	}

	if included == 0 {
		// Every eligible fault failed to package.
		metrics.ArchiveSkipped.Add(float64(skipped))
		return nil, commonerrors.NewEmptyArchiveError()
	}

	metrics.ArchiveDocuments.Add(float64(included))
	metrics.ArchiveSkipped.Add(float64(skipped))

	result := &ArchiveResult{
		Bundle:   buf.Bytes(),
		Filename: BundleFilename(now),
		Included: included,
		Skipped:  skipped,
	}
	a.dumpBundle(result)
	return result, nil
}

// dumpBundle writes the bundle into the configured output directory. The
// write is best effort: the caller already holds the bundle in memory.
func (a *Archiver) dumpBundle(result *ArchiveResult) {
	if a.outputDir == "" {
		return
	}
	if err := os.MkdirAll(a.outputDir, 0o755); err != nil {
		a.logger.Warn("archive output directory unavailable", map[string]interface{}{
			"dir":   a.outputDir,
			"error": err,
		})
		return
	}
	path := filepath.Join(a.outputDir, result.Filename)
	if err := os.WriteFile(path, result.Bundle, 0o644); err != nil {
		a.logger.Warn("archive bundle write failed", map[string]interface{}{
			"path":  path,
			"error": err,
		})
		return
	}
	a.logger.Info("archive bundle written", map[string]interface{}{
		"path":      path,
		"documents": result.Included,
	})
}
