package factors

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"absence-tracker/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func mustFactors(t testing.TB, pairs ...any) *Factors {
	f := New()
	for i := 0; i < len(pairs); i += 2 {
		err := f.Set(pairs[i].(string), pairs[i+1].(int))
		if err != nil {
			t.Fatal(err)
		}
	}
	return f
}

func TestSetKeepsOrder(t *testing.T) {
	f := mustFactors(t, "B", 2, "A", 4, "C", 3)
	require.Equal(t, []string{"B", "A", "C"}, f.Keys())

	// updating an existing course keeps its position
	require.NoError(t, f.Set("B", 5))
	require.Equal(t, []string{"B", "A", "C"}, f.Keys())
	periods, ok := f.Get("B")
	require.True(t, ok)
	require.Equal(t, 5, periods)

	_, ok = f.Get("D")
	require.False(t, ok)
}

func TestSetRejectsInvalid(t *testing.T) {
	f := New()
	require.ErrorIs(t, f.Set("Math", 0), ErrInvalidFactor)
	require.ErrorIs(t, f.Set("Math", -3), ErrInvalidFactor)
	require.ErrorIs(t, f.Set("  ", 3), ErrEmptyCourse)
	require.Equal(t, 0, f.Len())
}

func TestDelete(t *testing.T) {
	f := mustFactors(t, "B", 2, "A", 4, "C", 3)
	keys := f.Keys()

	require.True(t, f.Delete("A"))
	require.False(t, f.Delete("A"))
	require.Equal(t, []string{"B", "C"}, f.Keys())
	require.Equal(t, []string{"B", "A", "C"}, keys)
}

func TestCloneAndEqual(t *testing.T) {
	f := mustFactors(t, "B", 2, "A", 4)
	clone := f.Clone()
	require.True(t, f.Equal(clone))

	require.NoError(t, clone.Set("A", 1))
	require.False(t, f.Equal(clone))

	reordered := mustFactors(t, "A", 4, "B", 2)
	require.False(t, f.Equal(reordered))
}

func TestUnmarshalKeepsFileOrder(t *testing.T) {
	f := New()
	err := json.Unmarshal([]byte(`{"程式設計": 3, "Calculus": 4, "英文閱讀": 2}`), f)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, []string{"程式設計", "Calculus", "英文閱讀"}, f.Keys())
}

func TestUnmarshalRejectsInvalid(t *testing.T) {
	table := []string{
		`{"Math": 0}`,
		`{"Math": -1}`,
		`{"Math": 2.5}`,
		`{"Math": null}`,
		`{"Math": "four"}`,
		`{"Math": {"periods": 4}}`,
		`{"Math": 4, "Math": 2}`,
		`{"": 4}`,
		`["Math", 4]`,
	}

	for _, input := range table {
		f := New()
		err := json.Unmarshal([]byte(input), f)
		require.Error(t, err, input)
	}
}

func TestMarshal(t *testing.T) {
	f := mustFactors(t, "R&D 實務", 3, "Math", 4)
	out, err := f.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, `{"R&D 實務":3,"Math":4}`, string(out))

	out, err = json.Marshal(New())
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, `{}`, string(out))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "course_factors.json")
	f := mustFactors(t,
		"程式設計", 3,
		"Calculus", 4,
		"體育 (二)", 2,
		"R&D \"lab\"", 1,
	)

	require.NoError(t, Save(path, f))

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	require.True(t, strings.Contains(string(contents), "程式設計"))
	require.True(t, strings.Contains(string(contents), "\n    \"Calculus\": 4"))

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	require.True(t, f.Equal(loaded))
	require.Equal(t, f.Keys(), loaded.Keys())
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "course_factors.json")
	require.NoError(t, Save(path, mustFactors(t, "A", 1, "B", 2)))
	require.NoError(t, Save(path, mustFactors(t, "C", 3)))

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, []string{"C"}, loaded.Keys())

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, entries, 1)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "course_factors.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0600))

	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 0, f.Len())
}

func TestLoadOrEmpty(t *testing.T) {
	dir := t.TempDir()

	recorder := &telemetry.Recorder{}
	f := LoadOrEmpty(filepath.Join(dir, "missing.json"), recorder)
	require.Equal(t, 0, f.Len())
	require.Empty(t, recorder.Reports(telemetry.REPORT_WARNING))

	corrupted := filepath.Join(dir, "corrupted.json")
	require.NoError(t, os.WriteFile(corrupted, []byte(`{"Math": 4,`), 0600))
	f = LoadOrEmpty(corrupted, recorder)
	require.Equal(t, 0, f.Len())
	require.Equal(t, []string{report_load}, recorder.Ids(telemetry.REPORT_WARNING))

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"Math": 0}`), 0600))
	f = LoadOrEmpty(invalid, recorder)
	require.Equal(t, 0, f.Len())
	require.Len(t, recorder.Reports(telemetry.REPORT_WARNING), 2)

	valid := filepath.Join(dir, "valid.json")
	require.NoError(t, Save(valid, mustFactors(t, "Math", 4)))
	f = LoadOrEmpty(valid, recorder)
	require.Equal(t, []string{"Math"}, f.Keys())
}
