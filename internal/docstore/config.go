package docstore

import (
	"errors"
	"flag"
	"fmt"
)

// Driver names a document store backend.
type Driver string

const (
	DriverYAML     Driver = "yaml"     // directory of collection files (default)
	DriverPostgres Driver = "postgres" // documents table in PostgreSQL
	DriverSQLite   Driver = "sqlite"   // documents table in a SQLite file
	DriverMemory   Driver = "memory"   // in-memory, empty until seeded
)

// Config selects the document store backend.
type Config struct {
	Driver     string
	DataDir    string
	SQLitePath string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Driver, "doc-driver", string(DriverYAML), "document store backend: yaml|postgres|sqlite|memory")
	fs.StringVar(&c.DataDir, "data-dir", "db", "directory of collection files for the yaml driver")
	fs.StringVar(&c.SQLitePath, "sqlite-path", "preslist.db", "database file for the sqlite driver")
}

// Validate checks the selected driver has what it needs. The postgres driver
// reads its connection URL from the caller.
func (c *Config) Validate() error {
	var errs []error
	switch Driver(c.Driver) {
	case DriverYAML:
		if c.DataDir == "" {
			errs = append(errs, errors.New("DATA_DIR is required for the yaml doc driver"))
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite doc driver"))
		}
	case DriverPostgres, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("invalid DOC_DRIVER %q (must be yaml|postgres|sqlite|memory)", c.Driver))
	}
	return errors.Join(errs...)
}
