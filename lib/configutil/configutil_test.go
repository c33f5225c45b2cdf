package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testPortal struct {
	BaseUrl string `json:"base_url"`
	Timeout int    `json:"timeout_seconds"`
}

type testConfig struct {
	Account string     `json:"account"`
	Portal  testPortal `json:"portal"`
}

func writeFile(t testing.TB, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestLocalName(t *testing.T) {
	require.Equal(t, filepath.Join("config", "absence.local.json5"), LocalName("config/absence.json5"))
	require.Equal(t, "absence.local.json5", LocalName("absence.json5"))
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "absence.json5")

	writeFile(t, name, `{
		// comments are allowed
		account: "D11213201",
		portal: { base_url: "https://std.uch.edu.tw", timeout_seconds: 10 },
	}`)
	writeFile(t, LocalName(name), `{ portal: { timeout_seconds: 30 } }`)

	cfg, err := ReadConfig[testConfig](name)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "D11213201", cfg.Account)
	require.Equal(t, "https://std.uch.edu.tw", cfg.Portal.BaseUrl)
	require.Equal(t, 30, cfg.Portal.Timeout)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "nothing.json5"))
	require.True(t, os.IsNotExist(err))
}

func TestReadConfigWithDefaults(t *testing.T) {
	defaults := testConfig{
		Portal: testPortal{BaseUrl: "https://default", Timeout: 10},
	}

	cfg, err := ReadConfigWithDefaults(filepath.Join(t.TempDir(), "nothing.json5"), defaults)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, defaults, cfg)

	dir := t.TempDir()
	name := filepath.Join(dir, "absence.json5")
	writeFile(t, name, `{ account: "a1", portal: { timeout_seconds: 5 } }`)

	cfg, err = ReadConfigWithDefaults(name, defaults)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "a1", cfg.Account)
	require.Equal(t, "https://default", cfg.Portal.BaseUrl)
	require.Equal(t, 5, cfg.Portal.Timeout)
}

func TestReadConfigWithDefaultsExplicitZero(t *testing.T) {
	defaults := testConfig{
		Account: "default",
		Portal:  testPortal{BaseUrl: "https://default", Timeout: 10},
	}

	dir := t.TempDir()
	name := filepath.Join(dir, "absence.json5")
	writeFile(t, name, `{ portal: { timeout_seconds: 0 } }`)
	writeFile(t, LocalName(name), `{ account: "" }`)

	cfg, err := ReadConfigWithDefaults(name, defaults)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, testConfig{
		Account: "",
		Portal:  testPortal{BaseUrl: "https://default", Timeout: 0},
	}, cfg)
	require.Equal(t, "default", defaults.Account)
}

func TestReadConfigMalformed(t *testing.T) {
	name := filepath.Join(t.TempDir(), "absence.json5")
	writeFile(t, name, `{ account: `)

	_, err := ReadConfig[testConfig](name)
	require.Error(t, err)
	require.False(t, os.IsNotExist(err))
}
