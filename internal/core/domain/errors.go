package domain

import "go.trai.ch/zerr"

var (
	// ErrFilenameParse is returned when an archive filename cannot be decomposed
	// into name and version. Recoverable: callers skip the archive and log.
	ErrFilenameParse = zerr.New("cannot parse archive filename")

	// ErrCacheMiss is returned when a cache key has no artifacts in remote storage.
	ErrCacheMiss = zerr.New("cache miss")

	// ErrRequirementsNotFound is returned when the requirements manifest is missing.
	ErrRequirementsNotFound = zerr.New("requirements manifest not found")

	// ErrRequirementsRead is returned when the requirements manifest cannot be read.
	ErrRequirementsRead = zerr.New("failed to read requirements manifest")

	// ErrRequirementsWrite is returned when the requirements manifest cannot be written back.
	ErrRequirementsWrite = zerr.New("failed to write requirements manifest")

	// ErrWheelsDirRead is returned when a wheel directory cannot be listed.
	ErrWheelsDirRead = zerr.New("failed to read wheel directory")

	// ErrNoArchivesFound is returned when a directory expected to hold built
	// wheels contains none. Fatal: publishing an empty set hides build failures.
	ErrNoArchivesFound = zerr.New("no wheel archives found")

	// ErrValidationMismatch marks an advisory mismatch between a declared
	// dependency pin and the retained custom archive. Logged, never fatal.
	ErrValidationMismatch = zerr.New("declared dependency version does not match retained archive")

	// ErrUploadIncomplete is returned when any copy of a multi-destination
	// upload fails, leaving the published repository in a partial state.
	ErrUploadIncomplete = zerr.New("upload incomplete, published repository may be partial")

	// ErrRecipeRead is returned when the build recipe file cannot be read for hashing.
	ErrRecipeRead = zerr.New("failed to read build recipe")

	// ErrIndexWrite is returned when the static index tree cannot be written.
	ErrIndexWrite = zerr.New("failed to write index tree")

	// ErrMetadataRead is returned when a wheel's METADATA cannot be extracted.
	ErrMetadataRead = zerr.New("failed to read wheel metadata")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigInvalid is returned when the config file is missing required fields.
	ErrConfigInvalid = zerr.New("invalid config")

	// ErrObjectStoreUnavailable is returned when the object store client cannot be constructed.
	ErrObjectStoreUnavailable = zerr.New("failed to initialize object store client")
)

// Detail attaches a key-value pair to a sentinel error. The sentinel is
// wrapped first so it stays at the head of the chain and remains matchable
// with errors.Is; attaching metadata directly would replace it with a copy.
func Detail(sentinel error, key string, value any) error {
	return zerr.With(zerr.Wrap(sentinel, ""), key, value)
}
