package engine

import (
	"github.com/spaghettifunk/screenfx/engine/config"
)

type ApplicationConfig struct {
	// The application name used in logs.
	Name string
	// SettingsPath is the TOML settings file. Empty means the defaults and no
	// hot reload.
	SettingsPath string
	// Settings overrides the file when set.
	Settings *config.Config
	// WatchSettings reloads the settings file between frames when it changes.
	WatchSettings bool
}
