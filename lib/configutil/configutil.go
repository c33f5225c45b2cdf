package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/titanous/json5"
)

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

// LocalName returns the path of the local override file for a config,
// ex. "config/absence.json5" -> "config/absence.local.json5".
func LocalName(name string) string {
	prefixname, ext := splitExt(filepath.Base(name))
	return filepath.Join(
		filepath.Dir(name),
		fmt.Sprintf("%s.local.%s", prefixname, ext),
	)
}

// decodeFile unmarshals a json5 file on top of `out`, fields the file does not
// mention keep their current value. An empty or missing file is not found.
func decodeFile[T any](name string, out *T) (bool, error) {
	contents, err := os.ReadFile(name)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return false, nil
	}
	err = json5.Unmarshal(contents, out)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", name, err)
	}
	return true, nil
}

// readLayers decodes <name>.<ext> and then <name>.local.<ext> on top of `out`.
func readLayers[T any](name string, out *T) error {
	found, err := decodeFile(name, out)
	if err != nil {
		return err
	}

	localFilepath := LocalName(name)
	localFound, err := decodeFile(localFilepath, out)
	if err != nil {
		return err
	}
	if localFound {
		slog.Info("merging config with local overrides", "local", localFilepath)
	}

	if !found && !localFound {
		return os.ErrNotExist
	}
	return nil
}

// reads a configuration file, `name` should come with a file extension,
// it will automatically be lopped off to produce the other extensions.
// this function will merge the following files, where higher number is more prioritized.
// 1. <name>.<ext>
// 2. <name>.local.<ext>
func ReadConfig[T any](name string) (T, error) {
	var out T
	err := readLayers(name, &out)
	return out, err
}

// ReadConfigWithDefaults is ReadConfig, but the config files are decoded on
// top of `defaults`. A field keeps its default only when no file sets it, so
// an explicit zero (ex. a column index of 0) is kept. A missing config file is
// not an error, `defaults` is returned as is.
func ReadConfigWithDefaults[T any](name string, defaults T) (T, error) {
	out := defaults
	err := readLayers(name, &out)
	if os.IsNotExist(err) {
		return defaults, nil
	}
	if err != nil {
		return out, err
	}
	return out, nil
}

// ReadConfig but it recursively goes up the filesystem until the root
// to find a configuration file matching the name.
func ReadRecursively[T any](name string) (T, error) {
	var defaultOut T

	root, err := filepath.Abs("/")
	if err != nil {
		return defaultOut, err
	}
	current, err := os.Getwd()
	if err != nil {
		return defaultOut, err
	}

	for current != root {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if os.IsNotExist(err) {
			current = filepath.Dir(current)
			continue
		}
		if err != nil {
			return defaultOut, err
		}

		return config, nil
	}

	return defaultOut, os.ErrNotExist
}
