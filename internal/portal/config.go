package portal

import (
	"fmt"
	"net/url"
	"time"
)

type Config struct {
	// BaseUrl is the root every path below is relative to.
	BaseUrl        string `json:"base_url"`
	LoginPath      string `json:"login_path"`
	AttendancePath string `json:"attendance_path"`
	LeaveFormPath  string `json:"leave_form_path"`
	// TableId is the id of the report table, both report pages use the same one.
	TableId string `json:"table_id"`
	// TimeoutSeconds bounds every request to the portal.
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	CloudflareBypass  bool    `json:"cloudflare_bypass"`
}

func DefaultConfig() Config {
	return Config{
		BaseUrl:           "https://std.uch.edu.tw/Std_Xerox",
		LoginPath:         "/Login_Index.aspx",
		AttendancePath:    "/Miss_ct.aspx",
		LeaveFormPath:     "/Xerox.aspx",
		TableId:           "ctl00_ContentPlaceHolder1_gw_absent",
		TimeoutSeconds:    10,
		RequestsPerSecond: 2,
	}
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) Validate() error {
	parsed, err := url.Parse(c.BaseUrl)
	if err != nil {
		return fmt.Errorf("portal: base_url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("portal: base_url must be an absolute url (got %q)", c.BaseUrl)
	}
	if c.LoginPath == "" || c.AttendancePath == "" || c.LeaveFormPath == "" {
		return fmt.Errorf("portal: login_path, attendance_path and leave_form_path must be set")
	}
	if c.TableId == "" {
		return fmt.Errorf("portal: table_id must be set")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("portal: timeout_seconds must be positive (got %d)", c.TimeoutSeconds)
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("portal: requests_per_second must be positive (got %v)", c.RequestsPerSecond)
	}
	return nil
}
