package constants

import (
	"net/http"
	"time"
)

// Server API Constants
const (
	// DefaultOCSAPIVersion selects /ocs/v2.php; v1 answers every request with HTTP 200.
	DefaultOCSAPIVersion = 2
	// DefaultCapabilitySeparator splits capability paths such as "files@@@bigfilechunking".
	DefaultCapabilitySeparator = "@@@"
	// TestingAppPath is the OCS prefix of the server's testing app.
	TestingAppPath = "/apps/testing/api/v1"

	// LocalStorageDir holds local storage mounts, relative to the server root.
	LocalStorageDir = "work/local_storage"
	// TechPreviewKey is the system config key toggling the DAV tech preview.
	TechPreviewKey = "dav.enable.tech_preview"

	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin"
	DefaultUserPassword  = "123456"
)

// Occ Constants
const (
	OccModeRemote    = "remote"
	OccModeLocal     = "local"
	DefaultPHPBinary = "php"
	DefaultOccScript = "occ"
)

// Database Constants
const (
	// PostgreSQL defaults
	DefaultPostgresPort    = 5432
	DefaultPostgresSSLMode = "disable"

	// Connection pool settings
	DefaultPostgresMaxConnections = 10
	DefaultPostgresMaxIdleConns   = 2
	DefaultSQLiteMaxConnections   = 1 // SQLite allows only one writer
	DefaultSQLiteMaxIdleConns     = 1

	// Default journal table names
	DefaultRunsTable     = "occaccept_runs"
	DefaultCommandsTable = "occaccept_commands"

	// Table name suffixes when using prefixes
	RunsSuffix     = "_runs"
	CommandsSuffix = "_commands"

	// DefaultJournalFile is the sqlite file created next to the config.
	DefaultJournalFile = "occaccept.db"
)

// Time and Duration Constants
const (
	// Connection pool lifetimes
	DefaultMaxConnLifetime = 5 * time.Minute
	DefaultMaxIdleTime     = 1 * time.Minute
	DefaultSQLiteLifetime  = 10 * time.Minute
	DefaultSQLiteIdleTime  = 5 * time.Minute

	// DefaultRequestTimeout bounds a single OCS request or remote occ call.
	DefaultRequestTimeout = 2 * time.Minute
)

// Wait Configuration Constants
const (
	DefaultWaitTimeout  = 60 * time.Second
	DefaultWaitInterval = 2 * time.Second
	DefaultWaitStatus   = http.StatusOK
	DefaultWaitPath     = "/status.php"
)
