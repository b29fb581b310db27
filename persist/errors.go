package persist

import "errors"

var (
	// ErrStorageUnavailable wraps backend failures on Save and Clear.
	ErrStorageUnavailable = errors.New("persist: storage unavailable")
	// ErrNilStorage is returned by constructors given no backend.
	ErrNilStorage = errors.New("persist: nil storage")
)
