package configlibsql

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "history.db")
	db, err := Struct{File: path}.OpenDB()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	_, err = db.Exec("create table t (x integer)")
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestOpenMemory(t *testing.T) {
	db, err := Struct{File: ":memory:"}.OpenDB()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	_, err = db.Exec("create table t (x integer)")
	require.NoError(t, err)
	_, err = db.Exec("insert into t values (1)")
	require.NoError(t, err)
}

func TestOpenNothing(t *testing.T) {
	_, err := Struct{}.OpenDB()
	require.Error(t, err)
}
