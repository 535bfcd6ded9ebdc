package config

import "errors"

// Configuration validation errors returned by Config.Validate. Callers match
// them with errors.Is.
var (
	// ErrInvalidAddr is returned when the listen address is not host:port.
	ErrInvalidAddr = errors.New("invalid listen address: must be host:port")

	// ErrNoOutputDir is returned when no artifact directory is configured.
	ErrNoOutputDir = errors.New("no output directory configured")

	// ErrInvalidLimits is returned when a size or dimension limit is not positive.
	ErrInvalidLimits = errors.New("invalid limits: max_size_mb and max_dimension must be positive")

	// ErrInvalidJPEGQuality is returned when the JPEG quality is outside 1-100.
	ErrInvalidJPEGQuality = errors.New("invalid jpeg quality: must be between 1 and 100")

	// ErrInvalidRetention is returned when the retention age or sweep interval
	// is negative. Zero disables the sweeper.
	ErrInvalidRetention = errors.New("invalid retention: durations must be non-negative")

	// ErrInvalidLogLevel is returned for an unknown log level name.
	ErrInvalidLogLevel = errors.New("invalid log level: must be debug, info, warn or error")

	// ErrInvalidLogFormat is returned for a log format other than json or text.
	ErrInvalidLogFormat = errors.New("invalid log format: must be json or text")

	// ErrInvalidEnv is returned when an environment override cannot be parsed.
	ErrInvalidEnv = errors.New("invalid environment override")
)
