package v1

import (
	"errors"
	"fmt"
)

// Errors returned by the configuration sync path. Check them with errors.Is.
var (
	// ErrMalformedDocument is a client input error: bad JSON, missing fields, duplicate monitor ids.
	ErrMalformedDocument = errors.New("malformed configuration document")

	// ErrIncompleteMirrorCredentials is returned when some but not all mirror credentials were
	// supplied. It also matches ErrMalformedDocument.
	ErrIncompleteMirrorCredentials = fmt.Errorf("%w: mirror token, owner and repo must be supplied together", ErrMalformedDocument)

	// ErrNotConfigured means the authoritative store holds no configuration yet.
	ErrNotConfigured = errors.New("configuration not found")

	// ErrStoreUnavailable wraps transport or backend failures of the authoritative store.
	ErrStoreUnavailable = errors.New("configuration store unavailable")

	ErrMirrorNotFound    = errors.New("mirror file not found")
	ErrMirrorConflict    = errors.New("mirror file changed since it was read")
	ErrMirrorAuth        = errors.New("mirror credentials rejected")
	ErrMirrorUnavailable = errors.New("mirror unavailable")
)

// MirrorError records a failed call against the mirror host. Kind is one of the ErrMirror*
// sentinels.
type MirrorError struct {
	Op         string
	StatusCode int
	Kind       error
	Err        error
}

func (e *MirrorError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("mirror %s: %v (status %d): %v", e.Op, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("mirror %s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *MirrorError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedDocument, fmt.Sprintf(format, args...))
}

func storeUnavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
