package core

import "time"

// SystemUserID is the reserved roster id of the system announcer.
const SystemUserID = "system"

// Message is the domain model for a chat message. Messages are immutable once stored.
type Message struct {
	ID        string
	Text      string
	Username  string
	Room      string
	Timestamp int64 // epoch milliseconds
}

// Time returns the message timestamp as time.Time.
func (m Message) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// User is a roster entry. Usernames are display strings and may repeat.
type User struct {
	ID       string
	Username string
}

// IsSystem reports whether u is the system sentinel.
func (u User) IsSystem() bool {
	return u.ID == SystemUserID
}
