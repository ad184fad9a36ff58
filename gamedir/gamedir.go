// Package gamedir locates the default game directory for the current
// platform. The result is only a suggestion for callers choosing where to
// reconcile; nothing else in green-lib depends on it.
package gamedir

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
)

// Default returns the default game directory:
//
//   - Windows: %APPDATA%\.minecraft
//   - macOS: ~/Library/Application Support/minecraft
//   - elsewhere: ~/.minecraft
func Default() string {
	return defaultDir(runtime.GOOS, os.Getenv, xdg.Home)
}

func defaultDir(goos string, getenv func(string) string, home string) string {
	switch goos {
	case "windows":
		appData := getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, ".minecraft")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "minecraft")
	default:
		return filepath.Join(home, ".minecraft")
	}
}
