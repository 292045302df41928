package session

//go:generate mockgen -source=notification.go -destination=mocks/mock_notifier.go -package=mocks Notifier

import "github.com/rs/zerolog"

// Variant selects how a view should present a notification.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a toast-style message for the user.
type Notification struct {
	Title       string
	Description string
	Variant     Variant
}

// Notifier receives every notification the session surfaces.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notification) { f(n) }

// LogNotifier writes notifications to logger.
func LogNotifier(logger *zerolog.Logger) Notifier {
	return NotifierFunc(func(n Notification) {
		ev := logger.Info()
		if n.Variant == VariantDestructive {
			ev = logger.Warn()
		}
		ev.Str("title", n.Title).Msg(n.Description)
	})
}

func errorNotification(description string) Notification {
	return Notification{Title: "Error", Description: description, Variant: VariantDestructive}
}
