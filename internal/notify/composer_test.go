package notify

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/judzis-sketch/gedimu-registras/internal/models"
)

func sampleFault() *models.Fault {
	return &models.Fault{
		DisplayID:     "FAULT-0007",
		ReporterName:  "Marija Marijona",
		ReporterEmail: "marija@email.com",
		ReporterPhone: "+37061234567",
	}
}

func TestDraftAssigned(t *testing.T) {
	d := DraftAssigned(sampleFault(), "Petras Petraitis")

	assert.Equal(t, "Atnaujinta informacija apie jūsų gedimą FAULT-0007", d.Subject)
	assert.Contains(t, d.EmailBody, "Laba diena, Marija Marijona")
	assert.Contains(t, d.EmailBody, "„Priskirtas“")
	assert.Contains(t, d.EmailBody, "Petras Petraitis")
	assert.Contains(t, d.SMSBody, "FAULT-0007")
	assert.Equal(t, "marija@email.com", d.RecipientEmail)
	assert.Equal(t, "+37061234567", d.RecipientPhone)
}

func TestDraftAssigned_UnknownTechnician(t *testing.T) {
	d := DraftAssigned(sampleFault(), "")
	assert.NotContains(t, d.EmailBody, "specialistas ")
	assert.Contains(t, d.EmailBody, "„Priskirtas“")
}

func TestDraftCompleted(t *testing.T) {
	d := DraftCompleted(sampleFault())
	assert.Contains(t, d.EmailBody, "„Užbaigtas“")
	assert.Contains(t, d.EmailBody, "aktas")
}

func TestMailtoURL(t *testing.T) {
	d := DraftInProgress(sampleFault())
	u := MailtoURL(d)

	require.True(t, strings.HasPrefix(u, "mailto:marija@email.com?subject="))
	assert.NotContains(t, u, " ")
	assert.NotContains(t, u, "+37061234567") // phone has no place in mailto

	// Spaces must be %20, not '+'.
	assert.Contains(t, u, "%20")
	queryPart := u[strings.Index(u, "?")+1:]
	for _, kv := range strings.Split(queryPart, "&") {
		parts := strings.SplitN(kv, "=", 2)
		require.Len(t, parts, 2)
		decoded, err := url.QueryUnescape(parts[1])
		require.NoError(t, err)
		assert.NotContains(t, decoded, "+37061234567")
	}
}

func TestSMSURL(t *testing.T) {
	d := DraftInProgress(sampleFault())
	u := SMSURL(d)

	require.True(t, strings.HasPrefix(u, "sms:+37061234567?body="))
	assert.NotContains(t, u[len("sms:+37061234567"):], " ")

	body := strings.TrimPrefix(u, "sms:+37061234567?body=")
	decoded, err := url.QueryUnescape(body)
	require.NoError(t, err)
	assert.Contains(t, decoded, "Vykdomas")
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Naujas", StatusLabel(models.StatusNew))
	assert.Equal(t, "Užbaigtas", StatusLabel(models.StatusCompleted))
	assert.Equal(t, "weird", StatusLabel(models.Status("weird")))
}
