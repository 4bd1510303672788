package reminder

import (
	"encoding/json"
	"os"

	"taskdeck/internal/logger"

	"go.uber.org/zap"
)

// settings mirrors the single flag the browser build keeps in local storage.
type settings struct {
	NotificationsEnabled bool `json:"notificationsEnabled"`
}

func loadEnabled(path string) bool {
	if path == "" {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var s settings
	if err := json.Unmarshal(data, &s); err != nil {
		logger.Warn("Reminder: unreadable settings file", zap.String("path", path), zap.Error(err))
		return false
	}
	return s.NotificationsEnabled
}

func saveEnabled(path string, enabled bool) {
	if path == "" {
		return
	}
	data, err := json.Marshal(settings{NotificationsEnabled: enabled})
	if err != nil {
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Warn("Reminder: failed to persist settings", zap.String("path", path), zap.Error(err))
	}
}
