package atlas

import "errors"

// Error definitions for the atlas package.
var (
	ErrInvalidName       = errors.New("atlas name should be non-empty text without path separators")
	ErrUnknownAtlas      = errors.New("atlas is not available in the remote repository")
	ErrNotInstalled      = errors.New("atlas is not installed")
	ErrDeleteIncomplete  = errors.New("something went wrong while trying to delete the old version of the atlas, aborting")
	ErrRemoteUnavailable = errors.New("remote atlas repository is unavailable")
	ErrDownloadFailed    = errors.New("atlas download failed")
	ErrExtractionFailed  = errors.New("atlas extraction failed")
	ErrInvalidVersion    = errors.New("invalid atlas version")
)
