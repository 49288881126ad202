// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

// Package xdg provides XDG Base Directory paths for abduction.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "abduction"

// ConfigFileName is the name of the config file inside ConfigDir.
const ConfigFileName = "config.yaml"

// ConfigDir returns the XDG config directory for abduction.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() string {
	return dir("XDG_CONFIG_HOME", ".config")
}

// ConfigFile returns the default config file path.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

func dir(env, fallback string) string {
	base := os.Getenv(env)
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), fallback)
	}
	return filepath.Join(base, appName)
}
