// Glowclock Core
// Copyright (c) 2026 The Glowclock Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Glowclock Core.
//
// Glowclock Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Glowclock Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Glowclock Core.  If not, see <http://www.gnu.org/licenses/>.

package helpers

import (
	"fmt"
	"path/filepath"

	"github.com/GlowclockProject/glowclock-core/pkg/config"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// FSHelper provides utilities for filesystem mocking in tests
type FSHelper struct {
	Fs afero.Fs
}

// NewMemoryFS creates a new in-memory filesystem for testing
func NewMemoryFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewMemMapFs(),
	}
}

// NewOSFS creates a filesystem helper using the real filesystem (for integration tests)
func NewOSFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewOsFs(),
	}
}

// NewTestConfig creates a config instance rooted in configDir with default
// values, saved to disk so reload paths can be exercised. The filesystem
// helper is used by callers to stage surrounding files before the config is
// created.
func NewTestConfig(_ *FSHelper, configDir string) (*config.Instance, error) {
	cfg, err := config.NewConfig(configDir, config.BaseDefaults)
	if err != nil {
		return nil, fmt.Errorf("failed to create test config: %w", err)
	}
	return cfg, nil
}

// CreateConfigFile creates a TOML config file with the provided configuration map
func (h *FSHelper) CreateConfigFile(path string, cfg map[string]any) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to TOML: %w", err)
	}

	// Ensure directory exists
	if err := h.Fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for config file: %w", err)
	}

	if err := afero.WriteFile(h.Fs, path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// CreateSoundDirectory creates a sound directory with sample WAV files
func (h *FSHelper) CreateSoundDirectory(basePath string) error {
	if err := h.Fs.MkdirAll(basePath, 0o755); err != nil {
		return fmt.Errorf("failed to create sound directory: %w", err)
	}

	sounds := []string{
		"chime.wav",
		"alert.wav",
		"startup.wav",
	}

	for _, sound := range sounds {
		soundPath := filepath.Join(basePath, sound)
		// RIFF header bytes so format sniffing has something to chew on
		if err := afero.WriteFile(h.Fs, soundPath, []byte("RIFF"), 0o644); err != nil {
			return fmt.Errorf("failed to create sound file %s: %w", soundPath, err)
		}
	}

	return nil
}

// CreateDirectoryStructure creates a complex directory structure for testing
func (h *FSHelper) CreateDirectoryStructure(structure map[string]any) error {
	return h.createStructureRecursive("", structure)
}

// createStructureRecursive recursively creates directory structures
func (h *FSHelper) createStructureRecursive(basePath string, structure map[string]any) error {
	for name, content := range structure {
		fullPath := filepath.Join(basePath, name)

		switch v := content.(type) {
		case string:
			// It's a file with content
			if err := h.Fs.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
				return fmt.Errorf("failed to create directory for file %s: %w", fullPath, err)
			}
			if err := afero.WriteFile(h.Fs, fullPath, []byte(v), 0o644); err != nil {
				return fmt.Errorf("failed to write file %s: %w", fullPath, err)
			}
		case []byte:
			// It's a file with binary content
			if err := h.Fs.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
				return fmt.Errorf("failed to create directory for binary file %s: %w", fullPath, err)
			}
			if err := afero.WriteFile(h.Fs, fullPath, v, 0o644); err != nil {
				return fmt.Errorf("failed to write binary file %s: %w", fullPath, err)
			}
		case map[string]any:
			// It's a directory with subdirectories/files
			if err := h.Fs.MkdirAll(fullPath, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", fullPath, err)
			}
			if err := h.createStructureRecursive(fullPath, v); err != nil {
				return err
			}
		case nil:
			// It's an empty directory
			if err := h.Fs.MkdirAll(fullPath, 0o755); err != nil {
				return fmt.Errorf("failed to create empty directory %s: %w", fullPath, err)
			}
		}
	}
	return nil
}

// FileExists checks if a file exists
func (h *FSHelper) FileExists(path string) bool {
	exists, err := afero.Exists(h.Fs, path)
	if err != nil {
		return false
	}
	return exists
}

// ReadFile reads a file and returns its content
func (h *FSHelper) ReadFile(path string) ([]byte, error) {
	data, err := afero.ReadFile(h.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return data, nil
}

// WriteFile writes content to a file
func (h *FSHelper) WriteFile(path string, content []byte, _ int) error {
	// Ensure directory exists
	if err := h.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for file %s: %w", path, err)
	}
	if err := afero.WriteFile(h.Fs, path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

// ListFiles lists all files in a directory
func (h *FSHelper) ListFiles(path string) ([]string, error) {
	files, err := afero.ReadDir(h.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
	}

	fileNames := make([]string, len(files))
	for i, file := range files {
		fileNames[i] = file.Name()
	}

	return fileNames, nil
}

// CleanupDir removes all contents from a directory
func (h *FSHelper) CleanupDir(path string) error {
	if err := h.Fs.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove directory %s: %w", path, err)
	}
	return nil
}

// Common test directory structures

// GetBasicTestStructure returns a basic directory structure for testing
func GetBasicTestStructure() map[string]any {
	return map[string]any{
		"config": map[string]any{
			"config.toml": "[service]\napi_port = 7342\n",
		},
		"sounds": map[string]any{
			"chime.wav": []byte("RIFF"),
			"alert.wav": []byte("RIFF"),
		},
		"database": nil, // Empty directory
		"logs":     nil, // Empty directory
	}
}

// GetComplexTestStructure returns a more complex directory structure for integration testing
func GetComplexTestStructure() map[string]any {
	return map[string]any{
		"config": map[string]any{
			"config.toml": "[service]\napi_port = 7342\n\n" +
				"[display]\nbrightness = 200\n\n" +
				"[weather]\nenabled = true\noffice = \"MPX\"\ngrid_x = 107\ngrid_y = 70\n",
		},
		"sounds": map[string]any{
			"chime.wav":   []byte("RIFF"),
			"alert.wav":   []byte("RIFF"),
			"startup.wav": []byte("RIFF"),
		},
		"database": map[string]any{
			"user.db": nil, // Will be created by tests
		},
		"cache": map[string]any{
			"forecast.json": `{"name":"Tonight","temperature":58}`,
		},
		"logs": map[string]any{
			"glowclock.log": "Test log file content\n",
		},
		"tmp": nil, // Temporary directory
	}
}

// SetupMemoryFilesystem creates a new in-memory filesystem helper with basic directory structure
func SetupMemoryFilesystem() *FSHelper {
	helper := NewMemoryFS()

	structure := GetBasicTestStructure()
	if err := helper.CreateDirectoryStructure(structure); err != nil {
		// Fall back to a minimal structure
		_ = helper.Fs.MkdirAll("/config", 0o755)
		_ = helper.Fs.MkdirAll("/sounds", 0o755)
		_ = helper.Fs.MkdirAll("/database", 0o755)
	}

	return helper
}
