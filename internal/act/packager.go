// internal/act/packager.go
package act

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	commonerrors "github.com/judzis-sketch/gedimu-registras/internal/common/errors"
)

// DocumentFilename is the fixed export name of a single act document.
func DocumentFilename(displayID string) string {
	return fmt.Sprintf("atliktu-darbu-aktas-%s.pdf", displayID)
}

// BundleFilename is the fixed export name of an archive bundle.
func BundleFilename(date time.Time) string {
	return fmt.Sprintf("aktai-%s.zip", date.UTC().Format("2006-01-02"))
}

// PackageAsDocument embeds a PNG act snapshot into a single-page A4 PDF.
func PackageAsDocument(imageBytes []byte) ([]byte, error) {
	if len(imageBytes) == 0 {
		return nil, commonerrors.NewCompositionFailedError(fmt.Errorf("act snapshot is empty"))
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(true)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("act", opts, bytes.NewReader(imageBytes))
	if pdf.Err() {
		return nil, commonerrors.NewCompositionFailedError(pdf.Error())
	}
	// 190mm wide inside 10mm margins, height follows the image aspect.
	pdf.ImageOptions("act", 10, 10, 190, 0, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, commonerrors.NewCompositionFailedError(err)
	}
	return buf.Bytes(), nil
}
