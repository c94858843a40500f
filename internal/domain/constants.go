package domain

import "time"

// File permission constants.
const (
	// DirectoryPermissions is the default mode for created directories.
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the mode for files holding credentials.
	SecureFilePermissions = 0o600
	// RCFilePermissions is the mode used when an rc file must be created.
	RCFilePermissions = 0o644
)

// Timeout constants.
const (
	// DefaultHTTPClientTimeout bounds a single provider call.
	DefaultHTTPClientTimeout = 60 * time.Second
	// ModelListTimeout bounds the model discovery request during setup.
	ModelListTimeout = 4 * time.Second
	// ModelCacheTTL is how long a fetched model list stays fresh.
	ModelCacheTTL = 24 * time.Hour
)

// DefaultHistoryLimit is the number of records `b history` shows by default.
const DefaultHistoryLimit = 20
