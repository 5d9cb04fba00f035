package act

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/judzis-sketch/gedimu-registras/internal/common/errors"
	"github.com/judzis-sketch/gedimu-registras/internal/common/logger"
	"github.com/judzis-sketch/gedimu-registras/internal/models"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
}

// signaturePNG draws a small diagonal stroke, close enough to a pen capture.
func signaturePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 60, 20))
	for x := 0; x < 60; x++ {
		img.Set(x, x/3, color.Black)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func completedFault() *models.Fault {
	return &models.Fault{
		ID:                   "doc-1",
		DisplayID:            "FAULT-0003",
		Type:                 models.FaultTypeRenovation,
		Description:          "Reikalingas kosmetinis remontas koridoriuje po vamzdyno avarijos.",
		Address:              "Gedimino pr. 9, Vilnius",
		ReporterName:         "Barbora Barboriuke",
		ReporterEmail:        "barbora@email.com",
		ReporterPhone:        "+37061234569",
		Status:               models.StatusInProgress,
		AssignedTechnicianID: "w3",
	}
}

func testWorker() *models.Worker {
	return &models.Worker{
		ID:          "w3",
		Name:        "Ona Onaitė",
		Specialties: []models.FaultType{models.FaultTypeRenovation},
	}
}

func TestCompose_ProducesPNG(t *testing.T) {
	c := NewCompositor(fixedClock, logger.NewNoOpLogger())
	sig := signaturePNG(t)

	snapshot, err := c.Compose(completedFault(), testWorker(), sig, sig)

	require.NoError(t, err)
	img, format, err := image.Decode(bytes.NewReader(snapshot))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, pageWidth, img.Bounds().Dx())
	assert.Equal(t, pageHeight, img.Bounds().Dy())
}

func TestCompose_Deterministic(t *testing.T) {
	c := NewCompositor(fixedClock, logger.NewNoOpLogger())
	sig := signaturePNG(t)

	first, err := c.Compose(completedFault(), testWorker(), sig, sig)
	require.NoError(t, err)
	second, err := c.Compose(completedFault(), testWorker(), sig, sig)
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical inputs and clock must produce byte-identical snapshots")
}

func TestCompose_MissingSignature(t *testing.T) {
	c := NewCompositor(fixedClock, logger.NewNoOpLogger())
	sig := signaturePNG(t)

	_, err := c.Compose(completedFault(), testWorker(), nil, sig)
	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeCompositionFailed))

	_, err = c.Compose(completedFault(), testWorker(), sig, nil)
	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeCompositionFailed))
}

func TestCompose_MalformedSignature(t *testing.T) {
	c := NewCompositor(fixedClock, logger.NewNoOpLogger())

	_, err := c.Compose(completedFault(), testWorker(), []byte("not an image"), signaturePNG(t))

	require.Error(t, err)
	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeCompositionFailed))
}

func TestCompose_DanglingWorkerReference(t *testing.T) {
	c := NewCompositor(fixedClock, logger.NewNoOpLogger())
	sig := signaturePNG(t)

	snapshot, err := c.Compose(completedFault(), nil, sig, sig)

	require.NoError(t, err)
	assert.NotEmpty(t, snapshot)
}

func TestTypeLabel(t *testing.T) {
	assert.Equal(t, "Santechnika", TypeLabel(models.FaultTypePlumbing))
	assert.Equal(t, "Bendri gedimai", TypeLabel(models.FaultTypeGeneral))
	assert.Equal(t, "other", TypeLabel(models.FaultType("other")))
}
