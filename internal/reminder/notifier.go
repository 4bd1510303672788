package reminder

import (
	"fmt"
	"io"

	"taskdeck/internal/logger"

	"go.uber.org/zap"
)

type PermissionState string

const (
	PermissionDefault PermissionState = "default"
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
)

// Notifier is the host notification capability. The scheduler never talks to
// the host directly, which is what lets tests substitute an instant double.
type Notifier interface {
	Supported() bool
	RequestPermission() PermissionState
	Show(title, body string) error
}

// ConsoleNotifier stands in for a browser notification surface in the
// terminal client: permission is always granted and notifications are printed.
type ConsoleNotifier struct {
	Out io.Writer
}

func (n *ConsoleNotifier) Supported() bool {
	return n.Out != nil
}

func (n *ConsoleNotifier) RequestPermission() PermissionState {
	return PermissionGranted
}

func (n *ConsoleNotifier) Show(title, body string) error {
	if n.Out == nil {
		return fmt.Errorf("no output attached")
	}
	if _, err := fmt.Fprintf(n.Out, "\n*** %s ***\n    %s\n", title, body); err != nil {
		return fmt.Errorf("writing notification: %w", err)
	}
	logger.Info("Reminder: notification shown", zap.String("title", title))
	return nil
}
