package infra

import (
	"os"
	"path/filepath"
)

const AppName = "swapflow"

// ResolveConfigPath attempts to find config.yaml.
// Priority: 1. SWAPFLOW_CONFIG, 2. Current Dir, 3. OS Config Dir
func ResolveConfigPath() string {
	if path := os.Getenv("SWAPFLOW_CONFIG"); path != "" {
		return path
	}

	defaultPath := "config.yaml"

	// 1. Current working directory (standard)
	if _, err := os.Stat(defaultPath); err == nil {
		return defaultPath
	}

	// 2. OS Standard Config Dir
	configRoot, err := os.UserConfigDir()
	if err == nil {
		osPath := filepath.Join(configRoot, AppName, "config.yaml")
		if _, err := os.Stat(osPath); err == nil {
			return osPath
		}
	}

	// Return default and let LoadConfig handle the "file not found" error
	return defaultPath
}
