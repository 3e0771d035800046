package enums

import "fmt"

// NotificationRecipient maps to the notification_recipient enum in Postgres.
type NotificationRecipient string

const (
	NotificationRecipientUser  NotificationRecipient = "user"
	NotificationRecipientAdmin NotificationRecipient = "admin"
)

var validNotificationRecipients = []NotificationRecipient{
	NotificationRecipientUser,
	NotificationRecipientAdmin,
}

// IsValid checks whether the given recipient matches the canonical enum.
func (n NotificationRecipient) IsValid() bool {
	for _, candidate := range validNotificationRecipients {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationRecipient converts raw strings into NotificationRecipient.
func ParseNotificationRecipient(value string) (NotificationRecipient, error) {
	for _, candidate := range validNotificationRecipients {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification recipient %q", value)
}
