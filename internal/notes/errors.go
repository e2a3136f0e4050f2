package notes

import "errors"

var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrDataCorrupt        = errors.New("stored data is corrupt")
	ErrNotFound           = errors.New("note not found")
	ErrValidation         = errors.New("note rejected by storage")
)
