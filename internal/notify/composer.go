// internal/notify/composer.go
package notify

import (
	"net/url"
	"strings"

	"github.com/judzis-sketch/gedimu-registras/internal/models"
)

// MailtoURL renders the draft as a pre-filled, user-reviewable email
// compose action.
func MailtoURL(d *models.NotificationDraft) string {
	var b strings.Builder
	b.WriteString("mailto:")
	b.WriteString(d.RecipientEmail)
	b.WriteString("?subject=")
	b.WriteString(escape(d.Subject))
	b.WriteString("&body=")
	b.WriteString(escape(d.EmailBody))
	return b.String()
}

// SMSURL renders the draft as a pre-filled SMS compose action.
func SMSURL(d *models.NotificationDraft) string {
	return "sms:" + d.RecipientPhone + "?body=" + escape(d.SMSBody)
}

// escape percent-encodes for URI payloads. QueryEscape's plus-for-space
// convention is misread by mail and SMS clients, so spaces become %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
