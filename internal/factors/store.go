package factors

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"absence-tracker/internal/components/telemetry"
)

const report_load = "factors.load"

// Load reads a factor file, a missing file is reported as an error satisfying
// os.IsNotExist / errors.Is(err, os.ErrNotExist).
func Load(path string) (*Factors, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(contents)) == 0 {
		return New(), nil
	}

	out := New()
	err = json.Unmarshal(contents, out)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return out, nil
}

// LoadOrEmpty is Load that never fails: a missing file yields an empty mapping,
// an unreadable or invalid file yields an empty mapping and a warning.
func LoadOrEmpty(path string, tel telemetry.API) *Factors {
	f, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		tel.ReportDebug("no factor file, starting with an empty mapping", path)
		return New()
	}
	if err != nil {
		tel.ReportWarning(report_load, err, path)
		return New()
	}
	return f
}

// Save writes the mapping as an indented json object, non-ascii course names
// are written as is. The file is replaced atomically.
func Save(path string, f *Factors) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	err := encoder.Encode(f)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(buf.Bytes())
	if err != nil {
		tmp.Close()
		return err
	}
	err = tmp.Close()
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
