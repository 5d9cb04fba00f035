// internal/models/notification.go
package models

// NotificationDraft is the transient content of a status-change
// notification. It is handed to the notification collaborator for the user
// to review and send; it is never persisted.
type NotificationDraft struct {
	Subject        string `json:"subject"`
	EmailBody      string `json:"emailBody"`
	SMSBody        string `json:"smsBody"`
	RecipientEmail string `json:"recipientEmail"`
	RecipientPhone string `json:"recipientPhone"`
}
