// Package notify prepares status-change notification content and hands it
// to the notification collaborator. The engine never sends anything itself:
// drafts are exposed as pre-filled mailto/sms compose actions, and direct
// delivery via SES/SNS is an opt-in collaborator concern.
package notify

import (
	"fmt"
	"strings"

	"github.com/judzis-sketch/gedimu-registras/internal/models"
)

// UnknownWorkerName is the display fallback for a dangling technician
// reference, e.g. after the worker record was deleted.
const UnknownWorkerName = "Nežinomas"

// statusLabels are the user-facing Lithuanian names of fault statuses.
var statusLabels = map[models.Status]string{
	models.StatusNew:        "Naujas",
	models.StatusAssigned:   "Priskirtas",
	models.StatusInProgress: "Vykdomas",
	models.StatusCompleted:  "Užbaigtas",
}

// StatusLabel returns the Lithuanian display label for a status.
func StatusLabel(s models.Status) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// DraftAssigned announces that a technician was bound to the fault.
// technicianName may be empty when the worker record has since vanished.
func DraftAssigned(f *models.Fault, technicianName string) *models.NotificationDraft {
	details := ""
	if technicianName != "" {
		details = fmt.Sprintf("Gedimą tvarkys specialistas %s.", technicianName)
	}
	return draft(f, models.StatusAssigned, details)
}

// DraftInProgress announces that work on the fault has started.
func DraftInProgress(f *models.Fault) *models.NotificationDraft {
	return draft(f, models.StatusInProgress, "Specialistas pradėjo darbus.")
}

// DraftCompleted announces completion of the fault and the signed act.
func DraftCompleted(f *models.Fault) *models.NotificationDraft {
	return draft(f, models.StatusCompleted,
		"Darbai užbaigti, atliktų darbų aktas pasirašytas abiejų šalių.")
}

func draft(f *models.Fault, status models.Status, details string) *models.NotificationDraft {
	label := StatusLabel(status)

	var body strings.Builder
	fmt.Fprintf(&body, "Laba diena, %s,\n\n", f.ReporterName)
	fmt.Fprintf(&body, "Informuojame, kad jūsų užregistruoto gedimo %s būsena buvo atnaujinta į „%s“.\n", f.DisplayID, label)
	if details != "" {
		body.WriteString(details)
		body.WriteString("\n")
	}
	body.WriteString("\nPagarbiai,\nGedimų Registro komanda")

	return &models.NotificationDraft{
		Subject:        fmt.Sprintf("Atnaujinta informacija apie jūsų gedimą %s", f.DisplayID),
		EmailBody:      body.String(),
		SMSBody:        fmt.Sprintf("Gedimo %s būsena: %s. %s", f.DisplayID, label, details),
		RecipientEmail: f.ReporterEmail,
		RecipientPhone: f.ReporterPhone,
	}
}
