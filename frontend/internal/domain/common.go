package frontend_domain

import (
	"html/template"
	"strings"
)

// CommonTemplateData holds fields that are common to all page templates.
// Available in templates as .Common via the TemplateData wrapper.
type CommonTemplateData struct {
	CSRFToken    string
	Notification *Notification
	Notice       template.HTML // rendered portal notice, already sanitised
	Validation   ValidationData
}

// ValidationData carries the limits rendered into form inputs.
type ValidationData struct {
	NationalIDLength int
}

type NotificationKind string

const (
	NotificationInfo    NotificationKind = "info"
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is the dismissible banner shown at the top of the page.
type Notification struct {
	Text  string
	Kind  NotificationKind
	TTLMs int64 // auto-dismiss after this many milliseconds
}

// ClassifyNotification picks a banner style from the wording of a system
// message, for messages that arrive without one (e.g. from a redirect).
func ClassifyNotification(msg string) NotificationKind {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "confirmed"), strings.Contains(lower, "success"):
		return NotificationSuccess
	case strings.Contains(lower, "invalid"), strings.Contains(lower, "error"), strings.Contains(lower, "expired"):
		return NotificationError
	default:
		return NotificationInfo
	}
}
