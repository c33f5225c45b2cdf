package globals

import (
	"absence-tracker/internal/attendance"
	"absence-tracker/internal/notify"
	"absence-tracker/internal/portal"
	configlibsql "absence-tracker/lib/configutil/libsql"
)

// Config is the contents of absence.json5 (and absence.local.json5), every
// field left out falls back to Defaults.
type Config struct {
	Account string `json:"account"`
	// Password is better left out of the file, see the ABSENCE_PASSWORD
	// environment variable.
	Password    string `json:"password"`
	FactorsFile string `json:"factors_file"`
	Timezone    string `json:"timezone"`
	// DumpDir receives every HTTP message exchanged with the portal when
	// running with --verbose.
	DumpDir string `json:"dump_dir"`

	Portal  portal.Config       `json:"portal"`
	Layout  attendance.Layout   `json:"layout"`
	History configlibsql.Struct `json:"history"`

	Smtp     notify.SmtpConfig `json:"smtp"`
	NotifyTo []string          `json:"notify_to"`
}

func Defaults() Config {
	return Config{
		FactorsFile: "course_factors.json",
		Timezone:    "Asia/Taipei",
		DumpDir:     ".dev/resty/portal",
		Portal:      portal.DefaultConfig(),
		Layout:      attendance.DefaultLayout(),
		History: configlibsql.Struct{
			File: "absence-history.db",
		},
		Smtp: notify.SmtpConfig{
			Port: 587,
		},
	}
}
