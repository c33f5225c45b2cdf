package testutil

import (
	"database/sql"
	"testing"

	configlibsql "absence-tracker/lib/configutil/libsql"
)

type DBParams struct {
	// if unspecified, no tables are created
	Schema string
	// if unspecified, it will use `:memory:`
	Path string
}

// SetupDB opens a sqlite database that is closed when the test ends.
func SetupDB(t testing.TB, params DBParams) *sql.DB {
	path := params.Path
	if path == "" {
		path = ":memory:"
	}
	db, err := configlibsql.Struct{File: path}.OpenDB()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	if params.Schema != "" {
		_, err = db.Exec(params.Schema)
		if err != nil {
			t.Fatal(err)
		}
	}
	return db
}
