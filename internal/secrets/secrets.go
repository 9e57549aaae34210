// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: onshape-access-key, onshape-secret-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Key files recognized for Onshape API access.
const (
	AccessKeyFile = "onshape-access-key"
	SecretKeyFile = "onshape-secret-key"
)

// Credentials are the Onshape API key pair found in a secrets directory.
type Credentials struct {
	AccessKey string
	SecretKey string
}

// Configured reports whether both keys are present. Unsigned requests reach
// only public endpoints.
func (c Credentials) Configured() bool {
	return c.AccessKey != "" && c.SecretKey != ""
}

// Keys extracts the Onshape credentials from a loaded secrets map.
func Keys(m map[string]string) Credentials {
	return Credentials{
		AccessKey: m[AccessKeyFile],
		SecretKey: m[SecretKeyFile],
	}
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
