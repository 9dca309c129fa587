// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: gemini-api-key, tavily-api-key.
// Environment variables take precedence over key files so CI can inject
// credentials without touching disk.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Env var names checked by Resolve, in order, per key file name.
var envAliases = map[string][]string{
	"gemini-api-key": {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"tavily-api-key": {"TAVILY_API_KEY"},
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Resolve returns the value for a key, preferring its environment variable
// aliases over the loaded key-file value. Returns empty when neither is set.
func Resolve(loaded map[string]string, key string) string {
	for _, env := range envAliases[key] {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return loaded[key]
}
