// Package act turns a completed, doubly-signed fault into a fixed visual
// artifact and bundles such artifacts for bulk export.
package act

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	commonerrors "github.com/judzis-sketch/gedimu-registras/internal/common/errors"
	"github.com/judzis-sketch/gedimu-registras/internal/common/logger"
	"github.com/judzis-sketch/gedimu-registras/internal/common/metrics"
	"github.com/judzis-sketch/gedimu-registras/internal/models"
	"github.com/judzis-sketch/gedimu-registras/internal/notify"
)

// A4 proportions at screen resolution.
const (
	pageWidth  = 1240
	pageHeight = 1754
	margin     = 80.0
	sigBoxW    = 420.0
	sigBoxH    = 160.0
)

// typeLabels are the user-facing Lithuanian names of fault types.
var typeLabels = map[models.FaultType]string{
	models.FaultTypeElectricity: "Elektra",
	models.FaultTypePlumbing:    "Santechnika",
	models.FaultTypeRenovation:  "Remontas",
	models.FaultTypeGeneral:     "Bendri gedimai",
}

// TypeLabel returns the Lithuanian display label for a fault type.
func TypeLabel(t models.FaultType) string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

// Compositor renders the completion act of a fault into a PNG snapshot.
// It is a pure function of its inputs and the injected clock: identical
// inputs and a fixed Now produce byte-identical output.
type Compositor struct {
	now    func() time.Time
	logger logger.Logger
}

func NewCompositor(now func() time.Time, log logger.Logger) *Compositor {
	if now == nil {
		now = time.Now
	}
	return &Compositor{now: now, logger: log}
}

// Compose renders the act for a completed fault. worker may be nil when the
// assigned technician record has been deleted; the act then names the
// technician "Nežinomas". Fails without side effects if either signature is
// missing or not a decodable image; the caller must not transition the
// fault's status on failure.
func (c *Compositor) Compose(f *models.Fault, worker *models.Worker, techSig, custSig []byte) ([]byte, error) {
	techImg, err := decodeSignature("technicianSignature", techSig)
	if err != nil {
		metrics.Compositions.WithLabelValues("failed").Inc()
		return nil, err
	}
	custImg, err := decodeSignature("customerSignature", custSig)
	if err != nil {
		metrics.Compositions.WithLabelValues("failed").Inc()
		return nil, err
	}

	technicianName := notify.UnknownWorkerName
	if worker != nil {
		technicianName = worker.Name
	}

	dc := gg.NewContext(pageWidth, pageHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)
	dc.SetFontFace(basicfont.Face7x13)

	y := margin
	line := func(s string) {
		dc.DrawString(s, margin, y)
		y += 26
	}

	dc.DrawStringAnchored("ATLIKTŲ DARBŲ AKTAS", pageWidth/2, y, 0.5, 0.5)
	y += 60

	line(fmt.Sprintf("Gedimo ID: %s", f.DisplayID))
	line(fmt.Sprintf("Data: %s", c.now().UTC().Format("2006-01-02")))
	line(fmt.Sprintf("Tipas: %s", TypeLabel(f.Type)))
	line(fmt.Sprintf("Adresas: %s", f.Address))
	line(fmt.Sprintf("Užsakovas: %s", f.ReporterName))
	line(fmt.Sprintf("Specialistas: %s", technicianName))
	line(fmt.Sprintf("Būsena: %s", notify.StatusLabel(models.StatusCompleted)))
	y += 14

	line("Gedimo aprašymas:")
	dc.DrawStringWrapped(f.Description, margin, y, 0, 0, pageWidth-2*margin, 1.6, gg.AlignLeft)
	y += 220

	sigY := y
	drawSignature(dc, techImg, margin, sigY)
	dc.DrawString("Specialisto parašas", margin, sigY+sigBoxH+30)

	custX := pageWidth - margin - sigBoxW
	drawSignature(dc, custImg, custX, sigY)
	dc.DrawString("Užsakovo parašas", custX, sigY+sigBoxH+30)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		metrics.Compositions.WithLabelValues("failed").Inc()
		return nil, commonerrors.NewCompositionFailedError(err)
	}

	metrics.Compositions.WithLabelValues("composed").Inc()
	return buf.Bytes(), nil
}

func decodeSignature(field string, data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, commonerrors.NewCompositionFailedError(fmt.Errorf("%s is missing", field))
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, commonerrors.NewCompositionFailedError(fmt.Errorf("%s is not a valid image: %w", field, err))
	}
	return img, nil
}

// drawSignature scales the signature image into its box, preserving aspect.
func drawSignature(dc *gg.Context, img image.Image, x, y float64) {
	dc.DrawRectangle(x, y, sigBoxW, sigBoxH)
	dc.Stroke()

	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	if w == 0 || h == 0 {
		return
	}
	scale := sigBoxW / w
	if s := sigBoxH / h; s < scale {
		scale = s
	}
	dc.Push()
	dc.Translate(x+(sigBoxW-w*scale)/2, y+(sigBoxH-h*scale)/2)
	dc.Scale(scale, scale)
	dc.DrawImage(img, 0, 0)
	dc.Pop()
}
