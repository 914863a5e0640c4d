package domain

import "time"

// AuditLog is one recorded authentication event. UserID may be empty for
// events with no resolved user, such as a failed login.
type AuditLog struct {
	ID        string
	UserID    string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
