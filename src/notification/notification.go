package notification

import "log"

// Notifier shows short, non-blocking messages to the user.
type Notifier interface {
	Show(title, message string) error
}

// New returns the platform notifier, or one that only logs when disabled.
func New(enabled bool) Notifier {
	if !enabled {
		return logNotifier{}
	}
	return newPlatformNotifier()
}

type logNotifier struct{}

func (logNotifier) Show(title, message string) error {
	log.Printf("Notification: %s: %s", title, truncate(message, 200))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
