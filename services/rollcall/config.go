package rollcall

import (
	"log/slog"
	"os"

	"rollcall-backend/lib/configutil"
)

// SheetLink points at one group's attendance sheet. Note is only used in
// status messages and failure context.
type SheetLink struct {
	Link string `toml:"link"`
	Note string `toml:"note"`
}

// Config is everything one job needs. It is read-only for the duration of
// a run.
type Config struct {
	Account   string `toml:"account"`
	Password  string `toml:"password"`
	Character string `toml:"character"`
	ClassName string `toml:"class_name"`

	GoogleAPIPrivateKeyID string `toml:"google_api_private_key_id"`
	GoogleAPIPrivateKey   string `toml:"google_api_private_key"`

	AttendanceReportSheetLinks []SheetLink `toml:"attendance_report_sheet_links"`

	Headless bool `toml:"headless"`
}

// LoadConfig reads the config file at path. A missing or malformed file
// is not fatal: defaults are constructed and persisted so the operator
// has something to fill in.
func LoadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if err == nil {
		return cfg, nil
	}
	if !os.IsNotExist(err) {
		slog.Warn("config file is malformed, rewriting defaults", "path", path, "err", err)
	}

	cfg = Config{AttendanceReportSheetLinks: []SheetLink{}}
	saveErr := cfg.Save(path)
	if saveErr != nil {
		return cfg, saveErr
	}
	return cfg, nil
}

// Save rewrites the config file wholesale.
func (c Config) Save(path string) error {
	return configutil.WriteConfig(path, c)
}
