package models

// NotificationKind classifies computed alerts.
type NotificationKind string

const (
	NotificationLate    NotificationKind = "late"
	NotificationAbsent  NotificationKind = "absent"
	NotificationLowRate NotificationKind = "low_rate"
)

// Notification is a derived alert; nothing is persisted.
type Notification struct {
	ID       string           `json:"id"`
	Kind     NotificationKind `json:"kind"`
	Title    string           `json:"title"`
	Message  string           `json:"message"`
	Time     string           `json:"time"`
	Priority string           `json:"priority"`
}
